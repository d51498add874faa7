// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreImageFormatTable represents the 'core.imageformat' table
type CoreImageFormatTable struct {
	Table     string
	ID        string
	MediaID   string
	Format    string
	Width     string
	Height    string
	SizeBytes string
	URL       string
}

// CoreImageFormat is the schema definition for core.imageformat
var CoreImageFormat = CoreImageFormatTable{
	Table:     "core.imageformat",
	ID:        "id",
	MediaID:   "mediaid",
	Format:    "format",
	Width:     "width",
	Height:    "height",
	SizeBytes: "sizebytes",
	URL:       "url",
}

func (t CoreImageFormatTable) Columns() []string {
	return []string{t.ID, t.MediaID, t.Format, t.Width, t.Height, t.SizeBytes, t.URL}
}
