// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

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
	"id":         schema.CoreTaxonomy.ID,
	"name":       schema.CoreTaxonomy.Name,
	"slug":       schema.CoreTaxonomy.Slug,
	"entityName": schema.CoreTaxonomy.EntityName,
	"kind":       schema.CoreTaxonomy.Kind,
	"createdAt":  schema.CoreTaxonomy.CreatedAt,
	"updatedAt":  schema.CoreTaxonomy.UpdatedAt,
}

// PostgresRepository implements [Repository] on top of pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectColumns is the column list matched by [scanTaxonomy].
func selectColumns() string {
	return strings.Join(schema.CoreTaxonomy.Columns(), ", ")
}

func scanTaxonomy(row pgx.Row) (*Taxonomy, error) {
	taxonomy := &Taxonomy{}
	err := row.Scan(
		&taxonomy.ID, &taxonomy.Name, &taxonomy.Slug, &taxonomy.Description,
		&taxonomy.EntityName, &taxonomy.Kind, &taxonomy.ParentID, &taxonomy.ImageID,
		&taxonomy.CreatedAt, &taxonomy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return taxonomy, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, taxonomy *Taxonomy) error {
	table := schema.CoreTaxonomy

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s`,
		table.Table,
		table.Name, table.Slug, table.Description, table.EntityName, table.Kind, table.ParentID, table.ImageID,
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		taxonomy.Name, taxonomy.Slug, taxonomy.Description, taxonomy.EntityName,
		taxonomy.Kind, taxonomy.ParentID, taxonomy.ImageID,
	).Scan(&taxonomy.ID, &taxonomy.CreatedAt, &taxonomy.UpdatedAt)

	return dberr.Wrap(err, "create_taxonomy")
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Taxonomy, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns(), schema.CoreTaxonomy.Table, schema.CoreTaxonomy.ID)

	taxonomy, err := scanTaxonomy(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_taxonomy")
	}
	return taxonomy, nil
}

// FindByIDs implements [Repository].
func (repository *PostgresRepository) FindByIDs(context context.Context, ids []int64) ([]*Taxonomy, error) {
	if len(ids) == 0 {
		return []*Taxonomy{}, nil
	}

	table := schema.CoreTaxonomy
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s`,
		selectColumns(), table.Table, table.ID, table.Name)

	taxonomies, err := repository.query(context, query, ids)
	return taxonomies, dberr.Wrap(err, "find_taxonomies")
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Taxonomy, int, error) {
	table := schema.CoreTaxonomy

	var where strings.Builder
	args := []any{}
	argID := 1

	// Tree level
	if filter.ParentID == nil {
		where.WriteString(fmt.Sprintf("%s IS NULL", table.ParentID))
	} else {
		where.WriteString(fmt.Sprintf("%s = $%d", table.ParentID, argID))
		args = append(args, *filter.ParentID)
		argID++
	}

	// Entity scope
	if filter.EntityName != "" {
		where.WriteString(fmt.Sprintf(" AND %s = $%d", table.EntityName, argID))
		args = append(args, filter.EntityName)
		argID++
	}

	// Name substring
	if filter.Name != "" {
		where.WriteString(fmt.Sprintf(" AND %s ILIKE '%%' || $%d || '%%'", table.Name, argID))
		args = append(args, filter.Name)
		argID++
	}

	// Type tag
	if filter.Kind != "" {
		where.WriteString(fmt.Sprintf(" AND %s = $%d", table.Kind, argID))
		args = append(args, filter.Kind)
		argID++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, where.String())
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_taxonomies")
	}

	column, ok := orderColumns[filter.OrderField]
	if !ok {
		column = table.Name
	}
	direction := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s %s, %s ASC LIMIT $%d OFFSET $%d`,
		selectColumns(), table.Table, where.String(),
		column, direction, table.ID,
		argID, argID+1,
	)
	args = append(args, limit, offset)

	taxonomies, err := repository.query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_taxonomies")
	}
	return taxonomies, total, nil
}

// ListChildren implements [Repository].
func (repository *PostgresRepository) ListChildren(context context.Context, parentIDs []int64) ([]*Taxonomy, error) {
	if len(parentIDs) == 0 {
		return []*Taxonomy{}, nil
	}

	table := schema.CoreTaxonomy
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s, %s`,
		selectColumns(), table.Table, table.ParentID, table.Name, table.ID)

	children, err := repository.query(context, query, parentIDs)
	return children, dberr.Wrap(err, "list_taxonomy_children")
}

// Update implements [Repository].
func (repository *PostgresRepository) Update(context context.Context, taxonomy *Taxonomy) error {
	table := schema.CoreTaxonomy

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = now()
		WHERE %s = $1
		RETURNING %s`,
		table.Table,
		table.Name, table.Slug, table.Description, table.EntityName, table.Kind, table.ParentID, table.ImageID, table.UpdatedAt,
		table.ID,
		table.UpdatedAt,
	)

	// UNION (not UNION ALL) stops the walk even if a cycle slipped in.
	descendantsQuery := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT %[2]s FROM %[1]s WHERE %[3]s = $1
			UNION
			SELECT child.%[2]s FROM %[1]s child JOIN subtree ON child.%[3]s = subtree.%[2]s
		)
		UPDATE %[1]s
		SET %[4]s = $2, %[5]s = now()
		WHERE %[2]s IN (SELECT %[2]s FROM subtree) AND %[4]s <> $2`,
		table.Table, table.ID, table.ParentID, table.EntityName, table.UpdatedAt,
	)

	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, query,
			taxonomy.ID, taxonomy.Name, taxonomy.Slug, taxonomy.Description,
			taxonomy.EntityName, taxonomy.Kind, taxonomy.ParentID, taxonomy.ImageID,
		).Scan(&taxonomy.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(context, descendantsQuery, taxonomy.ID, taxonomy.EntityName)
		return err
	})

	return dberr.Wrap(err, "update_taxonomy")
}

// Delete implements [Repository].
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTaxonomy.Table, schema.CoreTaxonomy.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_taxonomy")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// SlugExists implements [Repository].
func (repository *PostgresRepository) SlugExists(context context.Context, slug string, excludeID int64) (bool, error) {
	table := schema.CoreTaxonomy

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`,
		table.Table, table.Slug, table.ID)

	var found bool
	if err := repository.pool.QueryRow(context, query, slug, excludeID).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "taxonomy_slug_exists")
	}
	return found, nil
}

func (repository *PostgresRepository) query(context context.Context, query string, args ...any) ([]*Taxonomy, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taxonomies := make([]*Taxonomy, 0)
	for rows.Next() {
		taxonomy, err := scanTaxonomy(rows)
		if err != nil {
			return nil, err
		}
		taxonomies = append(taxonomies, taxonomy)
	}
	return taxonomies, rows.Err()
}
