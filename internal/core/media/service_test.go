// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/dberr"
	"github.com/taibuivan/yomira-directory/internal/platform/filestore"
	"github.com/taibuivan/yomira-directory/internal/platform/imageproc"
	"github.com/taibuivan/yomira-directory/pkg/pagination"
	"github.com/taibuivan/yomira-directory/pkg/pointer"
)

// # Fakes

// memoryRepository is an in-memory [media.Repository].
type memoryRepository struct {
	mu           sync.Mutex
	nextID       int64
	nextFormatID int64
	assets       map[int64]*media.Asset

	// references stands in for taxonomy and company rows pointing at assets.
	references map[int64]bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{assets: map[int64]*media.Asset{}, references: map[int64]bool{}}
}

func cloneAsset(asset *media.Asset) *media.Asset {
	clone := *asset
	clone.ImageFormats = append([]media.ImageFormat{}, asset.ImageFormats...)
	return &clone
}

func (repo *memoryRepository) Create(_ context.Context, asset *media.Asset) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.nextID++
	asset.ID = repo.nextID
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = asset.CreatedAt
	for index := range asset.ImageFormats {
		repo.nextFormatID++
		asset.ImageFormats[index].ID = repo.nextFormatID
		asset.ImageFormats[index].MediaID = asset.ID
	}
	repo.assets[asset.ID] = cloneAsset(asset)
	return nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id int64) (*media.Asset, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	asset, ok := repo.assets[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return cloneAsset(asset), nil
}

func (repo *memoryRepository) FindByIDs(_ context.Context, ids []int64) (map[int64]*media.Asset, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	result := map[int64]*media.Asset{}
	for _, id := range ids {
		if asset, ok := repo.assets[id]; ok {
			result[id] = cloneAsset(asset)
		}
	}
	return result, nil
}

func (repo *memoryRepository) List(_ context.Context, filter media.Filter, limit, offset int) ([]*media.Asset, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	matches := make([]*media.Asset, 0)
	for _, asset := range repo.assets {
		if filter.Usage == "" || asset.Usage == filter.Usage {
			matches = append(matches, cloneAsset(asset))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })

	total := len(matches)
	if offset >= total {
		return []*media.Asset{}, total, nil
	}
	end := min(offset+limit, total)
	return matches[offset:end], total, nil
}

func (repo *memoryRepository) UpdateMeta(_ context.Context, asset *media.Asset) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.assets[asset.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	stored.Name = asset.Name
	stored.Description = asset.Description
	stored.UpdatedAt = time.Now()
	asset.UpdatedAt = stored.UpdatedAt
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id int64) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.assets[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repo.assets, id)
	return nil
}

func (repo *memoryRepository) Referenced(_ context.Context, id int64) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.references[id], nil
}

func (repo *memoryRepository) reference(id int64) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.references[id] = true
}

func (repo *memoryRepository) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.assets)
}

// faultyBackend injects failures into selected backend calls.
type faultyBackend struct {
	filestore.Backend
	failWritePrefix string
	failRemove      error
}

func (backend *faultyBackend) WriteFile(ctx context.Context, key string, data []byte) error {
	if backend.failWritePrefix != "" && strings.HasPrefix(path.Base(key), backend.failWritePrefix) {
		return errors.New("disk full")
	}
	return backend.Backend.WriteFile(ctx, key, data)
}

func (backend *faultyBackend) Remove(ctx context.Context, key string) error {
	if backend.failRemove != nil {
		return backend.failRemove
	}
	return backend.Backend.Remove(ctx, key)
}

// # Fixture

type fixture struct {
	service *media.Service
	repo    *memoryRepository
	backend *faultyBackend
	root    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := filepath.Join(t.TempDir(), "uploads")
	disk, err := filestore.NewDiskBackend(root)
	require.NoError(t, err)

	backend := &faultyBackend{Backend: disk}

	var sequence atomic.Int64
	files := filestore.New(backend, "/uploads",
		filestore.WithClock(func() time.Time { return time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC) }),
		filestore.WithIDGenerator(func() string { return fmt.Sprintf("%032x", sequence.Add(1)) }),
	)

	processor, err := imageproc.NewProcessor([]imageproc.Format{
		{Name: "large", Width: 1024},
		{Name: "medium", Width: 512},
		{Name: "small", Width: 256},
	}, files)
	require.NoError(t, err)

	repo := newMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service: media.NewService(repo, files, processor, logger),
		repo:    repo,
		backend: backend,
		root:    root,
	}
}

// storedFiles lists every file under the storage root, relative and sorted.
func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(f.root, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			relative, _ := filepath.Rel(f.root, current)
			files = append(files, filepath.ToSlash(relative))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func jpegFile(t *testing.T, name string, width, height int) *media.File {
	t.Helper()

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y += 16 {
		for x := 0; x < width; x += 16 {
			canvas.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}

	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, canvas, nil))

	return &media.File{
		OriginalName: name,
		MimeType:     "image/jpeg",
		Buffer:       buffer.Bytes(),
		Size:         int64(buffer.Len()),
	}
}

func assertCode(t *testing.T, err error, code string) *apperr.AppError {
	t.Helper()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an application error, got %v", err)
	assert.Equal(t, code, appError.Code)
	return appError
}

// # Upload

/*
TestUpload_EndToEnd stores a 2000x1500 JPEG and checks the record, its
formats and the four files on disk.
*/
func TestUpload_EndToEnd(t *testing.T) {
	f := newFixture(t)

	asset, err := f.service.Upload(context.Background(), media.UploadInput{
		File:  jpegFile(t, "holiday.jpg", 2000, 1500),
		Usage: "avatar",
	})
	require.NoError(t, err)

	assert.NotZero(t, asset.ID)
	assert.Equal(t, "holiday.jpg", asset.Name)
	assert.Equal(t, "image/jpeg", asset.Mime)
	assert.Equal(t, "avatar", asset.Usage)
	assert.Equal(t, 2000, asset.Width)
	assert.Equal(t, 1500, asset.Height)
	assert.Equal(t, "00000000000000000000000000000001.jpg", asset.StoredFileName)
	assert.Equal(t, "/uploads/avatar/2026/03/00000000000000000000000000000001.jpg", asset.URL)

	require.Len(t, asset.ImageFormats, 3)
	expected := []struct {
		format        string
		width, height int
	}{
		{"large", 1024, 768},
		{"medium", 512, 384},
		{"small", 256, 192},
	}
	for index, want := range expected {
		got := asset.ImageFormats[index]
		assert.Equal(t, want.format, got.Format)
		assert.Equal(t, want.width, got.Width)
		assert.Equal(t, want.height, got.Height)
		assert.Positive(t, got.Size)
		assert.Equal(t, "/uploads/avatar/2026/03/"+want.format+"-00000000000000000000000000000001.jpg", got.URL)
	}

	assert.Equal(t, []string{
		"avatar/2026/03/00000000000000000000000000000001.jpg",
		"avatar/2026/03/large-00000000000000000000000000000001.jpg",
		"avatar/2026/03/medium-00000000000000000000000000000001.jpg",
		"avatar/2026/03/small-00000000000000000000000000000001.jpg",
	}, f.storedFiles(t))

	stored, err := f.service.Get(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ImageFormats, 3)
}

/*
TestUpload_NameAndDescription prefers the supplied name and sanitizes the description.
*/
func TestUpload_NameAndDescription(t *testing.T) {
	f := newFixture(t)

	asset, err := f.service.Upload(context.Background(), media.UploadInput{
		File:        jpegFile(t, "IMG_0001.jpg", 40, 30),
		Usage:       "gallery",
		Name:        pointer.To("  Front door  "),
		Description: pointer.To("<b>Main</b> entrance"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Front door", asset.Name)
	require.NotNil(t, asset.Description)
	assert.Equal(t, "Main entrance", *asset.Description)
}

/*
TestUpload_RejectsUnknownUsage names the allowed set and writes nothing.
*/
func TestUpload_RejectsUnknownUsage(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Upload(context.Background(), media.UploadInput{
		File:  jpegFile(t, "a.jpg", 40, 30),
		Usage: "wallpaper",
	})

	appError := assertCode(t, err, "VALIDATION_ERROR")
	require.Len(t, appError.Details, 1)
	assert.Equal(t, media.FieldUsage, appError.Details[0].Field)
	assert.Contains(t, appError.Details[0].Message, "avatar, city, service, banner, logo, gallery, image")

	assert.Empty(t, f.storedFiles(t))
	assert.Zero(t, f.repo.count())
}

/*
TestUsage_Valid accepts the closed set only.
*/
func TestUsage_Valid(t *testing.T) {
	for _, usage := range media.Usages {
		assert.True(t, usage.Valid(), usage)
	}
	assert.False(t, media.Usage("wallpaper").Valid())
	assert.False(t, media.Usage("Logo").Valid())
	assert.False(t, media.Usage("").Valid())
}

/*
TestUpload_RejectsMissingOrInvalidFile covers absent, empty and non-image payloads.
*/
func TestUpload_RejectsMissingOrInvalidFile(t *testing.T) {
	tests := []struct {
		name string
		file *media.File
	}{
		{"missing", nil},
		{"empty", &media.File{OriginalName: "a.jpg"}},
		{"not_an_image", &media.File{OriginalName: "a.jpg", Buffer: []byte("plain text"), Size: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.Upload(context.Background(), media.UploadInput{File: tt.file, Usage: "logo"})

			appError := assertCode(t, err, "VALIDATION_ERROR")
			assert.Equal(t, media.FieldFile, appError.Details[0].Field)
			assert.Zero(t, f.repo.count())
		})
	}
}

/*
TestUpload_DerivativeFailurePersistsNothing aborts on the second format and keeps the database clean.
*/
func TestUpload_DerivativeFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.backend.failWritePrefix = "medium-"

	_, err := f.service.Upload(context.Background(), media.UploadInput{
		File:  jpegFile(t, "a.jpg", 800, 600),
		Usage: "banner",
	})

	assertCode(t, err, "INTERNAL_ERROR")
	assert.Zero(t, f.repo.count())

	// Files written before the failure are an accepted leak.
	assert.Equal(t, []string{
		"banner/2026/03/00000000000000000000000000000001.jpg",
		"banner/2026/03/large-00000000000000000000000000000001.jpg",
	}, f.storedFiles(t))
}

/*
TestUploadForEntity stores taxonomy images under the entity name.
*/
func TestUploadForEntity(t *testing.T) {
	f := newFixture(t)

	asset, err := f.service.UploadForEntity(context.Background(), "Company", jpegFile(t, "pin.jpg", 300, 300), nil)
	require.NoError(t, err)
	assert.Equal(t, "Company", asset.Usage)
	assert.True(t, strings.HasPrefix(asset.URL, "/uploads/Company/2026/03/"))

	_, err = f.service.UploadForEntity(context.Background(), "../etc", jpegFile(t, "pin.jpg", 30, 30), nil)
	assertCode(t, err, "VALIDATION_ERROR")
}

// # Lookups

/*
TestGet_NotFound reports a missing asset as NOT_FOUND.
*/
func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), 42)
	appError := assertCode(t, err, "NOT_FOUND")
	assert.Contains(t, appError.Message, "Media")
}

/*
TestList_ClampsLimit bounds page size to 100 and derives page count from the clamped value.
*/
func TestList_ClampsLimit(t *testing.T) {
	f := newFixture(t)

	for index := 0; index < 150; index++ {
		require.NoError(t, f.repo.Create(context.Background(), &media.Asset{
			Name:  fmt.Sprintf("seed-%d", index),
			Usage: "gallery",
		}))
	}

	assets, meta, err := f.service.List(context.Background(), media.Filter{}, pagination.Params{Page: 1, Limit: 500})
	require.NoError(t, err)

	assert.Len(t, assets, 100)
	assert.Equal(t, 100, meta.Limit)
	assert.Equal(t, 150, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

/*
TestList_FiltersByUsage returns only matching assets.
*/
func TestList_FiltersByUsage(t *testing.T) {
	f := newFixture(t)

	for _, usage := range []string{"logo", "logo", "banner"} {
		require.NoError(t, f.repo.Create(context.Background(), &media.Asset{Name: usage, Usage: usage}))
	}

	assets, meta, err := f.service.List(context.Background(), media.Filter{Usage: "logo"}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, assets, 2)
	assert.Equal(t, pagination.DefaultLimit, meta.Limit)
}

// # Management

/*
TestUpdateMeta changes name and description only.
*/
func TestUpdateMeta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, media.UploadInput{File: jpegFile(t, "a.jpg", 60, 40), Usage: "city"})
	require.NoError(t, err)

	updated, err := f.service.UpdateMeta(ctx, asset.ID, media.UpdateInput{
		Name:        pointer.To("Skyline"),
		Description: pointer.To("<i>Night</i> view"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Skyline", updated.Name)
	assert.Equal(t, "Night view", *updated.Description)
	assert.Equal(t, asset.URL, updated.URL)
	assert.Len(t, updated.ImageFormats, 3)

	_, err = f.service.UpdateMeta(ctx, asset.ID, media.UpdateInput{Name: pointer.To("   ")})
	assertCode(t, err, "VALIDATION_ERROR")

	_, err = f.service.UpdateMeta(ctx, 999, media.UpdateInput{Name: pointer.To("x")})
	assertCode(t, err, "NOT_FOUND")
}

/*
TestDelete_RemovesFilesThenRows leaves neither files nor rows behind.
*/
func TestDelete_RemovesFilesThenRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, media.UploadInput{File: jpegFile(t, "a.jpg", 600, 400), Usage: "service"})
	require.NoError(t, err)
	require.Len(t, f.storedFiles(t), 4)

	snapshot, err := f.service.Delete(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, snapshot.ID)
	assert.Len(t, snapshot.ImageFormats, 3)

	assert.Empty(t, f.storedFiles(t))

	_, err = f.service.Get(ctx, asset.ID)
	assertCode(t, err, "NOT_FOUND")

	_, err = f.service.Delete(ctx, asset.ID)
	assertCode(t, err, "NOT_FOUND")
}

/*
TestDelete_ToleratesMissingFiles completes when a file was already removed.
*/
func TestDelete_ToleratesMissingFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, media.UploadInput{File: jpegFile(t, "a.jpg", 600, 400), Usage: "service"})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.root, "service", "2026", "03", "small-"+asset.StoredFileName)))

	_, err = f.service.Delete(ctx, asset.ID)
	require.NoError(t, err)
	assert.Zero(t, f.repo.count())
}

/*
TestDelete_UnlinkFailureKeepsRows surfaces INTERNAL_ERROR and leaves the asset retrievable.
*/
func TestDelete_UnlinkFailureKeepsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, media.UploadInput{File: jpegFile(t, "a.jpg", 600, 400), Usage: "service"})
	require.NoError(t, err)

	f.backend.failRemove = fs.ErrPermission
	_, err = f.service.Delete(ctx, asset.ID)
	appError := assertCode(t, err, "INTERNAL_ERROR")
	assert.ErrorIs(t, appError.Cause, fs.ErrPermission)

	stored, err := f.service.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ImageFormats, 3)

	// Retry succeeds once storage recovers.
	f.backend.failRemove = nil
	_, err = f.service.Delete(ctx, asset.ID)
	require.NoError(t, err)
}

/*
TestRelease deletes unreferenced assets and keeps the ones still shown elsewhere.
*/
func TestRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shared, err := f.service.Upload(ctx, media.UploadInput{File: jpegFile(t, "shared.jpg", 600, 400), Usage: "city"})
	require.NoError(t, err)
	orphan, err := f.service.Upload(ctx, media.UploadInput{File: jpegFile(t, "orphan.jpg", 600, 400), Usage: "city"})
	require.NoError(t, err)

	f.repo.reference(shared.ID)

	f.service.Release(ctx, shared.ID)
	f.service.Release(ctx, orphan.ID)

	_, err = f.service.Get(ctx, shared.ID)
	require.NoError(t, err)

	_, err = f.service.Get(ctx, orphan.ID)
	assertCode(t, err, "NOT_FOUND")
	assert.Len(t, f.storedFiles(t), 4)
}
