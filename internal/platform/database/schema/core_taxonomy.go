// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreTaxonomyTable represents the 'core.taxonomy' table
type CoreTaxonomyTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	EntityName  string
	Kind        string
	ParentID    string
	ImageID     string
	CreatedAt   string
	UpdatedAt   string
}

// CoreTaxonomy is the schema definition for core.taxonomy
var CoreTaxonomy = CoreTaxonomyTable{
	Table:       "core.taxonomy",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	EntityName:  "entityname",
	Kind:        "kind",
	ParentID:    "parentid",
	ImageID:     "imageid",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CoreTaxonomyTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Description, t.EntityName, t.Kind,
		t.ParentID, t.ImageID, t.CreatedAt, t.UpdatedAt,
	}
}
