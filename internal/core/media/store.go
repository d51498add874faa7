// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import "context"

// # Media Data Access

// Repository defines the data access contract for assets and their formats.
type Repository interface {

	/*
		Create inserts the asset and all of its formats atomically.

		Parameters:
		  - context: context.Context
		  - asset: *Asset (ID, timestamps and format IDs are filled in on success)

		Returns:
		  - error: Storage or constraint failures; nothing is persisted on error
	*/
	Create(context context.Context, asset *Asset) error

	/*
		FindByID returns one asset with its formats ordered as created.

		Returns:
		  - *Asset: The hydrated asset
		  - error: dberr.ErrNotFound if missing
	*/
	FindByID(context context.Context, id int64) (*Asset, error)

	/*
		FindByIDs returns the assets that exist among ids, keyed by ID.
	*/
	FindByIDs(context context.Context, ids []int64) (map[int64]*Asset, error)

	/*
		List returns a page of assets (newest first) and the total matching count.
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Asset, int, error)

	/*
		UpdateMeta persists name and description and refreshes UpdatedAt.

		Returns:
		  - error: dberr.ErrNotFound if missing
	*/
	UpdateMeta(context context.Context, asset *Asset) error

	/*
		Delete removes the format rows, then the asset row, in one transaction.

		Returns:
		  - error: dberr.ErrNotFound if missing
	*/
	Delete(context context.Context, id int64) error

	/*
		Referenced reports whether a taxonomy image or a company logo or cover
		still points at the asset.
	*/
	Referenced(context context.Context, id int64) (bool, error)
}
