// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-directory/internal/platform/database/schema"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
	"github.com/taibuivan/yomira-directory/internal/platform/postgres"
)

// orderColumns maps [OrderFields] onto columns.
var orderColumns = map[string]string{
	"id":        schema.CoreCompany.ID,
	"name":      schema.CoreCompany.Name,
	"slug":      schema.CoreCompany.Slug,
	"createdAt": schema.CoreCompany.CreatedAt,
	"updatedAt": schema.CoreCompany.UpdatedAt,
}

// PostgresRepository implements [Repository] on top of pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectColumns is the column list matched by [scanCompany], qualified with alias c.
func selectColumns() string {
	return schema.Prefixed("c", schema.CoreCompany.Columns())
}

func scanCompany(row pgx.Row) (*Company, error) {
	company := &Company{}
	err := row.Scan(
		&company.ID, &company.Name, &company.Slug, &company.Description, &company.WhatsApp,
		&company.IsActive, &company.OffersFullDayService, &company.LogoID, &company.CoverID,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return company, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, company *Company) error {
	table := schema.CoreCompany

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s, %s`,
		table.Table,
		table.Name, table.Slug, table.Description, table.WhatsApp,
		table.IsActive, table.OffersFullDay, table.LogoID, table.CoverID,
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {

		// 1. Company row
		err := tx.QueryRow(context, query,
			company.Name, company.Slug, company.Description, company.WhatsApp,
			company.IsActive, company.OffersFullDayService, company.LogoID, company.CoverID,
		).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
		if err != nil {
			return err
		}

		// 2. Owners
		owner := schema.CoreCompanyOwner
		ownerQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
			owner.Table, owner.CompanyID, owner.UserID)
		for _, userID := range company.Owners {
			if _, err := tx.Exec(context, ownerQuery, company.ID, userID); err != nil {
				return err
			}
		}

		// 3. Taxonomy links
		return insertLinks(context, tx, company.ID, company.TaxonomyIDs)
	})

	return dberr.Wrap(err, "create_company")
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = $1`,
		selectColumns(), schema.CoreCompany.Table, schema.CoreCompany.ID)

	company, err := scanCompany(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_company")
	}

	if err := repository.attachLinks(context, []*Company{company}); err != nil {
		return nil, dberr.Wrap(err, "find_company_links")
	}
	return company, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Company, int, error) {
	table := schema.CoreCompany

	var where strings.Builder
	where.WriteString("1=1")
	args := []any{}
	argID := 1

	// Taxonomy membership
	if filter.TaxonomyID != nil {
		link := schema.CoreCompanyTaxonomy
		where.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM %s l WHERE l.%s = c.%s AND l.%s = $%d)",
			link.Table, link.CompanyID, table.ID, link.TaxonomyID, argID))
		args = append(args, *filter.TaxonomyID)
		argID++
	}

	// Name substring
	if filter.Name != "" {
		where.WriteString(fmt.Sprintf(" AND c.%s ILIKE '%%' || $%d || '%%'", table.Name, argID))
		args = append(args, filter.Name)
		argID++
	}

	if filter.ActiveOnly {
		where.WriteString(fmt.Sprintf(" AND c.%s", table.IsActive))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s c WHERE %s`, table.Table, where.String())
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_companies")
	}

	column, ok := orderColumns[filter.OrderField]
	if !ok {
		column = table.Name
	}
	direction := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE %s ORDER BY c.%s %s, c.%s ASC LIMIT $%d OFFSET $%d`,
		selectColumns(), table.Table, where.String(),
		column, direction, table.ID,
		argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_companies")
	}
	defer rows.Close()

	companies := make([]*Company, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_company")
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_companies")
	}

	if err := repository.attachLinks(context, companies); err != nil {
		return nil, 0, dberr.Wrap(err, "list_company_links")
	}
	return companies, total, nil
}

// Update implements [Repository].
func (repository *PostgresRepository) Update(context context.Context, company *Company, taxonomyIDs []int64) error {
	table := schema.CoreCompany

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = now()
		WHERE %s = $1
		RETURNING %s`,
		table.Table,
		table.Name, table.Slug, table.Description, table.WhatsApp,
		table.IsActive, table.OffersFullDay, table.LogoID, table.CoverID, table.UpdatedAt,
		table.ID,
		table.UpdatedAt,
	)

	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, query,
			company.ID, company.Name, company.Slug, company.Description, company.WhatsApp,
			company.IsActive, company.OffersFullDayService, company.LogoID, company.CoverID,
		).Scan(&company.UpdatedAt)
		if err != nil {
			return err
		}

		if taxonomyIDs == nil {
			return nil
		}

		link := schema.CoreCompanyTaxonomy
		clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, link.Table, link.CompanyID)
		if _, err := tx.Exec(context, clearQuery, company.ID); err != nil {
			return err
		}
		if err := insertLinks(context, tx, company.ID, taxonomyIDs); err != nil {
			return err
		}
		company.TaxonomyIDs = taxonomyIDs
		return nil
	})

	return dberr.Wrap(err, "update_company")
}

// Delete implements [Repository]. Owner and taxonomy links cascade.
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreCompany.Table, schema.CoreCompany.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_company")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// LinkTaxonomy implements [Repository].
func (repository *PostgresRepository) LinkTaxonomy(context context.Context, companyID, taxonomyID int64) error {
	link := schema.CoreCompanyTaxonomy
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, link.Table, link.CompanyID, link.TaxonomyID)

	_, err := repository.pool.Exec(context, query, companyID, taxonomyID)
	return dberr.Wrap(err, "link_company_taxonomy")
}

// NameExists implements [Repository].
func (repository *PostgresRepository) NameExists(context context.Context, name string, excludeID int64) (bool, error) {
	return repository.exists(context, schema.CoreCompany.Name, name, excludeID)
}

// SlugExists implements [Repository].
func (repository *PostgresRepository) SlugExists(context context.Context, slug string, excludeID int64) (bool, error) {
	return repository.exists(context, schema.CoreCompany.Slug, slug, excludeID)
}

// # Helpers

func (repository *PostgresRepository) exists(context context.Context, column, value string, excludeID int64) (bool, error) {
	table := schema.CoreCompany

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`,
		table.Table, column, table.ID)

	var found bool
	if err := repository.pool.QueryRow(context, query, value, excludeID).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "company_"+column+"_exists")
	}
	return found, nil
}

func insertLinks(context context.Context, tx pgx.Tx, companyID int64, taxonomyIDs []int64) error {
	if len(taxonomyIDs) == 0 {
		return nil
	}

	link := schema.CoreCompanyTaxonomy
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, unnest($2::bigint[])`,
		link.Table, link.CompanyID, link.TaxonomyID)

	_, err := tx.Exec(context, query, companyID, taxonomyIDs)
	return err
}

// attachLinks fills Owners and TaxonomyIDs with one query per junction table.
func (repository *PostgresRepository) attachLinks(context context.Context, companies []*Company) error {
	if len(companies) == 0 {
		return nil
	}

	byID := make(map[int64]*Company, len(companies))
	ids := make([]int64, 0, len(companies))
	for _, company := range companies {
		company.Owners = []string{}
		company.TaxonomyIDs = []int64{}
		byID[company.ID] = company
		ids = append(ids, company.ID)
	}

	owner := schema.CoreCompanyOwner
	ownerQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s`,
		owner.CompanyID, owner.UserID, owner.Table, owner.CompanyID, owner.CreatedAt)

	err := repository.scanPairs(context, ownerQuery, ids, func(rows pgx.Rows) error {
		var companyID int64
		var userID string
		if err := rows.Scan(&companyID, &userID); err != nil {
			return err
		}
		byID[companyID].Owners = append(byID[companyID].Owners, userID)
		return nil
	})
	if err != nil {
		return err
	}

	link := schema.CoreCompanyTaxonomy
	linkQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s`,
		link.CompanyID, link.TaxonomyID, link.Table, link.CompanyID, link.TaxonomyID)

	return repository.scanPairs(context, linkQuery, ids, func(rows pgx.Rows) error {
		var companyID, taxonomyID int64
		if err := rows.Scan(&companyID, &taxonomyID); err != nil {
			return err
		}
		byID[companyID].TaxonomyIDs = append(byID[companyID].TaxonomyIDs, taxonomyID)
		return nil
	})
}

func (repository *PostgresRepository) scanPairs(context context.Context, query string, ids []int64, scan func(pgx.Rows) error) error {
	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
