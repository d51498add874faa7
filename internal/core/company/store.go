// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package company

import "context"

// Repository defines persistence for companies and their owner and taxonomy links.
//
// FindByID and List return companies with Owners and TaxonomyIDs filled in.
type Repository interface {
	// Create inserts the company, its owners and its taxonomy links in one transaction.
	Create(context context.Context, company *Company) error
	FindByID(context context.Context, id int64) (*Company, error)
	List(context context.Context, filter Filter, limit, offset int) ([]*Company, int, error)

	// Update saves the row and, when taxonomyIDs is non-nil, replaces the taxonomy links.
	Update(context context.Context, company *Company, taxonomyIDs []int64) error
	Delete(context context.Context, id int64) error

	LinkTaxonomy(context context.Context, companyID, taxonomyID int64) error
	NameExists(context context.Context, name string, excludeID int64) (bool, error)
	SlugExists(context context.Context, slug string, excludeID int64) (bool, error)
}
