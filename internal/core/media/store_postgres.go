// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

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

// # PostgreSQL Implementation

// PostgresRepository implements [Repository] on top of pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// scanAsset reads one core.media row in [schema.CoreMediaTable.Columns] order.
func scanAsset(row pgx.Row) (*Asset, error) {
	asset := &Asset{ImageFormats: []ImageFormat{}}
	err := row.Scan(
		&asset.ID, &asset.Name, &asset.StoredFileName, &asset.Mime, &asset.Size,
		&asset.Width, &asset.Height, &asset.URL, &asset.Usage, &asset.Description,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, asset *Asset) error {
	media := schema.CoreMedia
	format := schema.CoreImageFormat

	assetQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s, %s`,
		media.Table,
		media.Name, media.StoredFileName, media.MimeType, media.SizeBytes,
		media.Width, media.Height, media.URL, media.Usage, media.Description,
		media.ID, media.CreatedAt, media.UpdatedAt,
	)

	formatQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		format.Table,
		format.MediaID, format.Format, format.Width, format.Height, format.SizeBytes, format.URL,
		format.ID,
	)

	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {

		// 1. Parent row first to obtain its identity
		err := tx.QueryRow(context, assetQuery,
			asset.Name, asset.StoredFileName, asset.Mime, asset.Size,
			asset.Width, asset.Height, asset.URL, asset.Usage, asset.Description,
		).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
		if err != nil {
			return err
		}

		// 2. One row per derivative, in processing order
		for index := range asset.ImageFormats {
			imageFormat := &asset.ImageFormats[index]
			imageFormat.MediaID = asset.ID

			err := tx.QueryRow(context, formatQuery,
				imageFormat.MediaID, imageFormat.Format, imageFormat.Width,
				imageFormat.Height, imageFormat.Size, imageFormat.URL,
			).Scan(&imageFormat.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})

	return dberr.Wrap(err, "create_media")
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Asset, error) {
	media := schema.CoreMedia

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(media.Columns(), ", "), media.Table, media.ID)

	asset, err := scanAsset(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_media")
	}

	if err := repository.attachFormats(context, []*Asset{asset}); err != nil {
		return nil, err
	}
	return asset, nil
}

// FindByIDs implements [Repository].
func (repository *PostgresRepository) FindByIDs(context context.Context, ids []int64) (map[int64]*Asset, error) {
	result := make(map[int64]*Asset, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	media := schema.CoreMedia
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1)`,
		strings.Join(media.Columns(), ", "), media.Table, media.ID)

	assets, err := repository.queryAssets(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "find_media_batch")
	}

	if err := repository.attachFormats(context, assets); err != nil {
		return nil, err
	}

	for _, asset := range assets {
		result[asset.ID] = asset
	}
	return result, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Asset, int, error) {
	media := schema.CoreMedia

	where := "TRUE"
	args := []any{}
	if filter.Usage != "" {
		args = append(args, filter.Usage)
		where = fmt.Sprintf("%s = $%d", media.Usage, len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, media.Table, where)
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_media")
	}

	pageArgs := append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY %s DESC, %s DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(media.Columns(), ", "), media.Table,
		where,
		media.CreatedAt, media.ID,
		len(pageArgs)-1, len(pageArgs),
	)

	assets, err := repository.queryAssets(context, query, pageArgs...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_media")
	}

	if err := repository.attachFormats(context, assets); err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// UpdateMeta implements [Repository].
func (repository *PostgresRepository) UpdateMeta(context context.Context, asset *Asset) error {
	media := schema.CoreMedia

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = now()
		WHERE %s = $1
		RETURNING %s`,
		media.Table, media.Name, media.Description, media.UpdatedAt,
		media.ID,
		media.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, asset.ID, asset.Name, asset.Description).Scan(&asset.UpdatedAt)
	return dberr.Wrap(err, "update_media")
}

// Delete implements [Repository].
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	media := schema.CoreMedia
	format := schema.CoreImageFormat

	formatQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, format.Table, format.MediaID)
	assetQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, media.Table, media.ID)

	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, formatQuery, id); err != nil {
			return err
		}

		tag, err := tx.Exec(context, assetQuery, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})

	return dberr.Wrap(err, "delete_media")
}

// Referenced implements [Repository].
func (repository *PostgresRepository) Referenced(context context.Context, id int64) (bool, error) {
	taxonomy := schema.CoreTaxonomy
	company := schema.CoreCompany

	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)
		    OR EXISTS (SELECT 1 FROM %s WHERE %s = $1 OR %s = $1)`,
		taxonomy.Table, taxonomy.ImageID,
		company.Table, company.LogoID, company.CoverID,
	)

	var found bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "media_referenced")
	}
	return found, nil
}

// # Helpers

func (repository *PostgresRepository) queryAssets(context context.Context, query string, args ...any) ([]*Asset, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]*Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// attachFormats loads the formats of every asset with a single query.
func (repository *PostgresRepository) attachFormats(context context.Context, assets []*Asset) error {
	if len(assets) == 0 {
		return nil
	}

	format := schema.CoreImageFormat

	byID := make(map[int64]*Asset, len(assets))
	ids := make([]int64, 0, len(assets))
	for _, asset := range assets {
		byID[asset.ID] = asset
		ids = append(ids, asset.ID)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s, %s`,
		strings.Join(format.Columns(), ", "), format.Table, format.MediaID,
		format.MediaID, format.ID,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "list_image_formats")
	}
	defer rows.Close()

	for rows.Next() {
		var imageFormat ImageFormat
		err := rows.Scan(
			&imageFormat.ID, &imageFormat.MediaID, &imageFormat.Format,
			&imageFormat.Width, &imageFormat.Height, &imageFormat.Size, &imageFormat.URL,
		)
		if err != nil {
			return dberr.Wrap(err, "scan_image_format")
		}

		if asset, ok := byID[imageFormat.MediaID]; ok {
			asset.ImageFormats = append(asset.ImageFormats, imageFormat)
		}
	}
	return dberr.Wrap(rows.Err(), "list_image_formats")
}
