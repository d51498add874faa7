// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// constraintFields maps unique constraint names (see migrations/) to the API
// field reported back to the client.
var constraintFields = map[string]string{
	"media_storedfilename_key":     "storedFileName",
	"imageformat_media_format_key": "format",
	"taxonomy_slug_key":            "slug",
	"tag_entityname_name_key":      "name",
	"tag_entityname_slug_key":      "slug",
	"company_name_key":             "name",
	"company_slug_key":             "slug",
	"companytaxonomy_pkey":         "taxonomyIds",
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations carry a SQLSTATE
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			field, ok := constraintFields[pgErr.ConstraintName]
			if !ok {
				field = pgErr.ColumnName
			}
			return apperr.Duplicate(field, fmt.Sprintf("The value of '%s' is already in use", field))

		case pgerrcode.ForeignKeyViolation:
			return apperr.ValidationError("Referenced resource does not exist")

		case pgerrcode.StringDataRightTruncationDataException, pgerrcode.CheckViolation:
			return apperr.ValidationError("Value rejected by storage constraints")
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsNotFound reports whether err is the not-found sentinel produced by [Wrap].
func IsNotFound(err error) bool {
	appError := apperr.As(err)
	return appError != nil && appError.Code == ErrNotFound.Code
}
