// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import "context"

// Repository defines the data access contract for taxonomies.
//
// Returned nodes carry ImageID but neither Image nor Children; the service hydrates both.
type Repository interface {
	Create(context context.Context, taxonomy *Taxonomy) error
	FindByID(context context.Context, id int64) (*Taxonomy, error)
	FindByIDs(context context.Context, ids []int64) ([]*Taxonomy, error)
	List(context context.Context, filter Filter, limit, offset int) ([]*Taxonomy, int, error)

	// ListChildren returns the direct children of every id, ordered by name.
	ListChildren(context context.Context, parentIDs []int64) ([]*Taxonomy, error)

	// Update saves the node and copies its entity name to every descendant.
	Update(context context.Context, taxonomy *Taxonomy) error
	Delete(context context.Context, id int64) error

	// SlugExists reports whether a node other than excludeID uses slug.
	SlugExists(context context.Context, slug string, excludeID int64) (bool, error)
}
