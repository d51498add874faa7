// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/respond"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
)

/*
TestEmpty checks the annotated empty page shape.
*/
func TestEmpty(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Empty(recorder, pagination.NewMeta(1, 20, 0))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, respond.NoResultsMessage, body["message"])
}

/*
TestError_Mapping checks status codes for typed, untyped and oversized-body errors.
*/
func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperr.Duplicate("slug", "taken"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not_found", apperr.NotFound("Media"), http.StatusNotFound, "NOT_FOUND"},
		{"untyped", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"too_large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.True(t, strings.Contains(recorder.Body.String(), tt.wantCode))
		})
	}
}
