// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package taxonomy manages the category tree used to classify directory entities.
//
// # Tree Rules
//
//   - Slugs are unique across all taxonomies.
//   - A child always takes its parent's entity name, whatever the caller sent. Renaming a
//     root's entity name or re-parenting a node carries the new name down its subtree.
//   - Lookups load at most [TreeDepth] levels of children; deeper nodes are cut off.
//   - Deleting a node leaves its children in place as roots (parent set to NULL).
package taxonomy

import (
	"time"

	"github.com/taibuivan/yomira-directory/internal/core/media"
)

// TreeDepth is the number of child levels loaded by [Service.Get].
const TreeDepth = 4

// # Field Identifiers

const (
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldEntityName  = "entityName"
	FieldKind        = "kind"
	FieldParentID    = "parentId"
	FieldImageID     = "imageId"
	FieldImage       = "image"

	kindMaxLen = 50
)

// OrderFields lists the accepted values of [Filter.OrderField].
var OrderFields = []string{"id", "name", "slug", "entityName", "kind", "createdAt", "updatedAt"}

// Taxonomy is one node of the category tree.
type Taxonomy struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description"`
	EntityName  string       `json:"entityName"`
	Kind        *string      `json:"kind"`
	ParentID    *int64       `json:"parentId"`
	ImageID     *int64       `json:"imageId"`
	Image       *media.Asset `json:"image"`
	Children    []*Taxonomy  `json:"children,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateInput carries a new node. Image takes precedence over ImageID.
type CreateInput struct {
	Name        string      `json:"name"`
	Slug        *string     `json:"slug"`
	Description *string     `json:"description"`
	EntityName  string      `json:"entityName"`
	Kind        *string     `json:"kind"`
	ParentID    *int64      `json:"parentId"`
	ImageID     *int64      `json:"imageId"`
	Image       *media.File `json:"-"`
}

// UpdateInput carries the present fields of a partial update.
type UpdateInput struct {
	Name        *string     `json:"name"`
	Slug        *string     `json:"slug"`
	Description *string     `json:"description"`
	EntityName  *string     `json:"entityName"`
	Kind        *string     `json:"kind"`
	ParentID    *int64      `json:"parentId"`
	ImageID     *int64      `json:"imageId"`
	Image       *media.File `json:"-"`
}

// Filter narrows taxonomy listings. A nil ParentID lists root nodes.
type Filter struct {
	EntityName string
	Name       string
	ParentID   *int64
	Kind       string
	OrderField string
	Order      string
}
