// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/internal/platform/filestore"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
}

func newDiskStore(t *testing.T) (*filestore.Store, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "uploads")
	backend, err := filestore.NewDiskBackend(root)
	require.NoError(t, err)

	store := filestore.New(backend, "/uploads",
		filestore.WithClock(fixedClock),
		filestore.WithIDGenerator(func() string { return "0123456789abcdef0123456789abcdef" }),
	)
	return store, root
}

/*
TestAllocate checks the <usage>/<yyyy>/<mm>/<id>.<ext> layout and directory creation.
*/
func TestAllocate(t *testing.T) {
	store, root := newDiskStore(t)

	allocation, err := store.Allocate(context.Background(), "avatar", ".JPG")
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef0123456789abcdef.jpg", allocation.FileName)
	assert.Equal(t, "avatar/2026/03", allocation.Dir)
	assert.Equal(t, "avatar/2026/03/0123456789abcdef0123456789abcdef.jpg", allocation.Key)

	info, err := os.Stat(filepath.Join(root, "avatar", "2026", "03"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

/*
TestAllocate_RejectsUnsafeUsage keeps usages to a single path segment.
*/
func TestAllocate_RejectsUnsafeUsage(t *testing.T) {
	store, _ := newDiskStore(t)

	for _, usage := range []string{"", "../etc", "a/b", ".hidden"} {
		_, err := store.Allocate(context.Background(), usage, "png")
		assert.ErrorIs(t, err, filestore.ErrInvalidUsage, usage)
	}
}

/*
TestWriteReadUnlink exercises the byte-level round trip and the missing-file tolerance.
*/
func TestWriteReadUnlink(t *testing.T) {
	ctx := context.Background()
	store, _ := newDiskStore(t)

	allocation, err := store.Allocate(ctx, "logo", "png")
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, allocation.Key, []byte("bytes")))

	exists, err := store.Exists(ctx, allocation.Key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Read(ctx, allocation.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	require.NoError(t, store.Unlink(ctx, allocation.Key))
	exists, err = store.Exists(ctx, allocation.Key)
	require.NoError(t, err)
	assert.False(t, exists)

	// A second unlink of the same key is a no-op.
	assert.NoError(t, store.Unlink(ctx, allocation.Key))
}

/*
TestURLMapping checks that URLs reverse to the keys they were built from.
*/
func TestURLMapping(t *testing.T) {
	store, _ := newDiskStore(t)

	key := "gallery/2026/03/abc.png"
	url := store.URL(key)
	assert.Equal(t, "/uploads/gallery/2026/03/abc.png", url)

	back, err := store.KeyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, key, back)

	for _, foreign := range []string{
		"/static/gallery/abc.png",
		"/uploads/",
		"/uploads/../secrets.txt",
		"/uploads/gallery//abc.png",
		"https://cdn.example/uploads/a.png",
	} {
		_, err := store.KeyFromURL(foreign)
		assert.ErrorIs(t, err, filestore.ErrForeignURL, foreign)
	}
}

/*
TestDiskBackend_WriteCreatesParents writes below directories that were never allocated.
*/
func TestDiskBackend_WriteCreatesParents(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "uploads")
	backend, err := filestore.NewDiskBackend(root)
	require.NoError(t, err)

	require.NoError(t, backend.WriteFile(ctx, "gallery/2026/04/a.png", []byte("png")))

	data, err := os.ReadFile(filepath.Join(root, "gallery", "2026", "04", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	assert.Error(t, backend.WriteFile(ctx, "../outside.png", []byte("png")))
}

/*
TestHandler serves stored files and 404s on unknown keys.
*/
func TestHandler(t *testing.T) {
	ctx := context.Background()
	store, _ := newDiskStore(t)
	require.NoError(t, store.Write(ctx, "logo/2026/03/x.png", []byte("png")))

	handler := http.StripPrefix("/uploads", store.Handler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/uploads/logo/2026/03/x.png", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "png", recorder.Body.String())

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/uploads/logo/2026/03/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
