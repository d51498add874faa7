// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/internal/api"
)

type readyBody struct {
	Data struct {
		Status string `json:"status"`
		Checks []struct {
			Name  string `json:"name"`
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		} `json:"checks"`
	} `json:"data"`
}

func probe(t *testing.T, handler http.HandlerFunc) (int, readyBody) {
	t.Helper()

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body readyBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body
}

/*
TestReadiness reports every dependency and degrades when one fails.
*/
func TestReadiness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	healthy := func(context.Context) error { return nil }

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: healthy,
		CheckCache:    healthy,
	}, logger)

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	status, body := probe(t, readiness)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body.Data.Status)
	assert.Len(t, body.Data.Checks, 2)

	_, readiness = api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: healthy,
		CheckCache:    func(context.Context) error { return errors.New("redis: connection refused") },
	}, logger)

	status, body = probe(t, readiness)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body.Data.Status)
	require.Len(t, body.Data.Checks, 2)
	assert.True(t, body.Data.Checks[0].OK)
	assert.False(t, body.Data.Checks[1].OK)
	assert.Equal(t, "redis", body.Data.Checks[1].Name)
	assert.Contains(t, body.Data.Checks[1].Error, "refused")
}
