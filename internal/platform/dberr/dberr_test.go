// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
)

/*
TestWrap_Classification maps driver errors onto the application error taxonomy.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantField  string
	}{
		{
			name:       "no_rows",
			err:        pgx.ErrNoRows,
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unique_slug",
			err:        &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "taxonomy_slug_key"},
			wantCode:   "VALIDATION_ERROR",
			wantStatus: http.StatusBadRequest,
			wantField:  "slug",
		},
		{
			name:       "unique_tag_pair",
			err:        &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "tag_entityname_name_key"},
			wantCode:   "VALIDATION_ERROR",
			wantStatus: http.StatusBadRequest,
			wantField:  "name",
		},
		{
			name:       "foreign_key",
			err:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantCode:   "VALIDATION_ERROR",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown",
			err:        errors.New("connection reset"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			appError := apperr.As(wrapped)
			require.NotNil(t, appError)

			assert.Equal(t, tt.wantCode, appError.Code)
			assert.Equal(t, tt.wantStatus, appError.HTTPStatus)

			if tt.wantField != "" {
				require.Len(t, appError.Details, 1)
				assert.Equal(t, tt.wantField, appError.Details[0].Field)
			}
		})
	}
}

/*
TestWrap_Nil keeps nil errors nil.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestIsNotFound recognizes the wrapped sentinel only.
*/
func TestIsNotFound(t *testing.T) {
	assert.True(t, dberr.IsNotFound(dberr.Wrap(pgx.ErrNoRows, "find")))
	assert.False(t, dberr.IsNotFound(apperr.Internal(errors.New("x"))))
	assert.False(t, dberr.IsNotFound(nil))
}
