// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreMediaTable represents the 'core.media' table
type CoreMediaTable struct {
	Table          string
	ID             string
	Name           string
	StoredFileName string
	MimeType       string
	SizeBytes      string
	Width          string
	Height         string
	URL            string
	Usage          string
	Description    string
	CreatedAt      string
	UpdatedAt      string
}

// CoreMedia is the schema definition for core.media
var CoreMedia = CoreMediaTable{
	Table:          "core.media",
	ID:             "id",
	Name:           "name",
	StoredFileName: "storedfilename",
	MimeType:       "mimetype",
	SizeBytes:      "sizebytes",
	Width:          "width",
	Height:         "height",
	URL:            "url",
	Usage:          "usage",
	Description:    "description",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t CoreMediaTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.StoredFileName, t.MimeType, t.SizeBytes, t.Width, t.Height,
		t.URL, t.Usage, t.Description, t.CreatedAt, t.UpdatedAt,
	}
}
