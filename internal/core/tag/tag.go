// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package tag manages flat labels scoped to an entity kind.
//
// Tag names and slugs are unique per entity name only: "React" may exist once
// for "article" and once for "product".
package tag

import "time"

// # Field Identifiers

const (
	FieldName       = "name"
	FieldSlug       = "slug"
	FieldEntityName = "entityName"
)

// OrderFields lists the accepted values of [Filter.OrderField].
var OrderFields = []string{"id", "name", "slug", "entityName", "createdAt", "updatedAt"}

// Tag is a label applicable to entities of one kind.
type Tag struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	EntityName string    `json:"entityName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateInput carries a new tag. An empty Slug requests generation from Name.
type CreateInput struct {
	Name       string  `json:"name"`
	Slug       *string `json:"slug"`
	EntityName string  `json:"entityName"`
}

// UpdateInput carries the present fields of a partial update.
type UpdateInput struct {
	Name       *string `json:"name"`
	Slug       *string `json:"slug"`
	EntityName *string `json:"entityName"`
}

// Filter narrows tag listings.
type Filter struct {
	EntityName string
	Search     string
	OrderField string
	Order      string
}
