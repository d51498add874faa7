// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// Repository defines the data access contract for tags.
type Repository interface {
	Create(context context.Context, tag *Tag) error
	FindByID(context context.Context, id int64) (*Tag, error)
	List(context context.Context, filter Filter, limit, offset int) ([]*Tag, int, error)
	Update(context context.Context, tag *Tag) error
	Delete(context context.Context, id int64) error

	// NameExists reports whether another tag of entityName already uses name.
	NameExists(context context.Context, entityName, name string, excludeID int64) (bool, error)

	// SlugExists reports whether another tag of entityName already uses slug.
	SlugExists(context context.Context, entityName, slug string, excludeID int64) (bool, error)
}
