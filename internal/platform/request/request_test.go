// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requestutil "github.com/taibuivan/yomira-directory/internal/platform/request"
)

func withParam(request *http.Request, name, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(name, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))
}

/*
TestID parses numeric path ids and rejects anything else.
*/
func TestID(t *testing.T) {
	request := withParam(httptest.NewRequest(http.MethodGet, "/media/12", nil), "id", "12")
	id, err := requestutil.ID(request, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		request := withParam(httptest.NewRequest(http.MethodGet, "/media/x", nil), "id", raw)
		_, err := requestutil.ID(request, "id")
		assert.Error(t, err, raw)
	}
}

/*
TestMultipart reads files and optional fields.
*/
func TestMultipart(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("usage", "avatar"))
	part, err := writer.CreateFormFile("file", "face.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("pixels"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/media/upload", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	require.True(t, requestutil.IsMultipart(request))
	require.NoError(t, requestutil.ParseMultipart(request))

	file, err := requestutil.File(request, "file")
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "face.png", file.OriginalName)
	assert.Equal(t, int64(6), file.Size)

	missing, err := requestutil.File(request, "cover")
	require.NoError(t, err)
	assert.Nil(t, missing)

	usage := requestutil.FormValue(request, "usage")
	require.NotNil(t, usage)
	assert.Equal(t, "avatar", *usage)
	assert.Nil(t, requestutil.FormValue(request, "name"))
}

/*
TestQueryInt64 distinguishes absent, blank and malformed parameters.
*/
func TestQueryInt64(t *testing.T) {
	value, err := requestutil.QueryInt64(httptest.NewRequest(http.MethodGet, "/taxonomies?parentId=7", nil), "parentId")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, int64(7), *value)

	value, err = requestutil.QueryInt64(httptest.NewRequest(http.MethodGet, "/taxonomies", nil), "parentId")
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = requestutil.QueryInt64(httptest.NewRequest(http.MethodGet, "/taxonomies?parentId=", nil), "parentId")
	require.NoError(t, err)
	assert.Nil(t, value)

	_, err = requestutil.QueryInt64(httptest.NewRequest(http.MethodGet, "/taxonomies?parentId=root", nil), "parentId")
	assert.Error(t, err)
}

/*
TestFormBoolAndInt64s parses typed multipart fields.
*/
func TestFormBoolAndInt64s(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("isActive", "false"))
	require.NoError(t, writer.WriteField("open", "maybe"))
	require.NoError(t, writer.WriteField("taxonomyIds", "3,4"))
	require.NoError(t, writer.WriteField("taxonomyIds", "9"))
	require.NoError(t, writer.WriteField("empty", ""))
	require.NoError(t, writer.WriteField("broken", "1,x"))
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/companies", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, requestutil.ParseMultipart(request))

	active, err := requestutil.FormBool(request, "isActive")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.False(t, *active)

	_, err = requestutil.FormBool(request, "open")
	assert.Error(t, err)

	absent, err := requestutil.FormBool(request, "offersFullDayService")
	require.NoError(t, err)
	assert.Nil(t, absent)

	ids, err := requestutil.FormInt64s(request, "taxonomyIds")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 9}, ids)

	ids, err = requestutil.FormInt64s(request, "empty")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	ids, err = requestutil.FormInt64s(request, "missing")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = requestutil.FormInt64s(request, "broken")
	assert.Error(t, err)
}
