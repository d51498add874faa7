// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-directory/internal/platform/database/schema"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
)

// orderColumns whitelists the sortable fields.
var orderColumns = map[string]string{
	"id":         schema.CoreTag.ID,
	"name":       schema.CoreTag.Name,
	"slug":       schema.CoreTag.Slug,
	"entityName": schema.CoreTag.EntityName,
	"createdAt":  schema.CoreTag.CreatedAt,
	"updatedAt":  schema.CoreTag.UpdatedAt,
}

// PostgresRepository implements [Repository] on top of pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanTag(row pgx.Row) (*Tag, error) {
	tag := &Tag{}
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.EntityName, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
		return nil, err
	}
	return tag, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, tag *Tag) error {
	table := schema.CoreTag

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s, %s`,
		table.Table, table.Name, table.Slug, table.EntityName,
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, tag.Name, tag.Slug, tag.EntityName).
		Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	return dberr.Wrap(err, "create_tag")
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Tag, error) {
	table := schema.CoreTag

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.ID)

	tag, err := scanTag(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_tag")
	}
	return tag, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Tag, int, error) {
	table := schema.CoreTag

	var where strings.Builder
	where.WriteString("TRUE")
	args := []any{}
	argID := 1

	// Entity scope
	if filter.EntityName != "" {
		where.WriteString(fmt.Sprintf(" AND %s = $%d", table.EntityName, argID))
		args = append(args, filter.EntityName)
		argID++
	}

	// Name substring
	if filter.Search != "" {
		where.WriteString(fmt.Sprintf(" AND %s ILIKE '%%' || $%d || '%%'", table.Name, argID))
		args = append(args, filter.Search)
		argID++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, where.String())
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_tags")
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
		strings.Join(table.Columns(), ", "), table.Table, where.String(),
		column, direction, table.ID,
		argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_tags")
	}
	return tags, total, nil
}

// Update implements [Repository].
func (repository *PostgresRepository) Update(context context.Context, tag *Tag) error {
	table := schema.CoreTag

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = now()
		WHERE %s = $1
		RETURNING %s`,
		table.Table, table.Name, table.Slug, table.EntityName, table.UpdatedAt,
		table.ID,
		table.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, tag.ID, tag.Name, tag.Slug, tag.EntityName).Scan(&tag.UpdatedAt)
	return dberr.Wrap(err, "update_tag")
}

// Delete implements [Repository].
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	table := schema.CoreTag

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// NameExists implements [Repository].
func (repository *PostgresRepository) NameExists(context context.Context, entityName, name string, excludeID int64) (bool, error) {
	return repository.exists(context, schema.CoreTag.Name, entityName, name, excludeID)
}

// SlugExists implements [Repository].
func (repository *PostgresRepository) SlugExists(context context.Context, entityName, slug string, excludeID int64) (bool, error) {
	return repository.exists(context, schema.CoreTag.Slug, entityName, slug, excludeID)
}

func (repository *PostgresRepository) exists(context context.Context, column, entityName, value string, excludeID int64) (bool, error) {
	table := schema.CoreTag

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s <> $3)`,
		table.Table, table.EntityName, column, table.ID)

	var found bool
	if err := repository.pool.QueryRow(context, query, entityName, value, excludeID).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "tag_exists")
	}
	return found, nil
}
