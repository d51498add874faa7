// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package filestore maps uploaded files onto a storage backend and back to
// public URLs.
//
// # Layout
//
// Every stored file lives under a key of the form
//
//	<usage>/<yyyy>/<mm>/<opaque-id>.<ext>
//
// relative to the backend's root. The public URL is the key prefixed with the
// configured mount point (default "/uploads"), so a URL stored in the database
// can always be reversed to its key for deletion.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/taibuivan/yomira-directory/pkg/uuid"
)

// usagePattern keeps usage directories to a single safe path segment.
var usagePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,49}$`)

var (
	// ErrInvalidUsage is returned when a usage cannot be used as a directory name.
	ErrInvalidUsage = errors.New("filestore: invalid usage directory")

	// ErrForeignURL is returned when a URL does not belong to this store.
	ErrForeignURL = errors.New("filestore: url outside the public prefix")
)

// Backend is the byte-level storage a [Store] writes through.
//
// Paths are slash-separated keys relative to the backend root.
type Backend interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, key string, data []byte) error
	ReadFile(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)

	// Remove deletes key. A missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Allocation is a freshly reserved location for one stored file.
type Allocation struct {
	// FileName is "<opaque-id><ext>".
	FileName string
	// Dir is "<usage>/<yyyy>/<mm>".
	Dir string
	// Key is Dir + "/" + FileName.
	Key string
}

// Store owns the path scheme and the key <-> URL mapping.
type Store struct {
	backend      Backend
	publicPrefix string
	now          func() time.Time
	newID        func() string
}

// Option customizes a [Store].
type Option func(*Store)

// WithClock overrides the clock used for the year/month directories.
func WithClock(now func() time.Time) Option {
	return func(store *Store) { store.now = now }
}

// WithIDGenerator overrides the opaque file id generator.
func WithIDGenerator(newID func() string) Option {
	return func(store *Store) { store.newID = newID }
}

// New creates a [Store] writing through backend and serving under publicPrefix.
func New(backend Backend, publicPrefix string, options ...Option) *Store {
	store := &Store{
		backend:      backend,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		now:          time.Now,
		newID:        uuid.Opaque,
	}
	for _, option := range options {
		option(store)
	}
	return store
}

/*
Allocate reserves a new key for a file of the given usage and extension.

The year/month directory is created as a side effect. Uniqueness rests on
the 128-bit random id alone; no existence probe is made.

Parameters:
  - ctx: context.Context
  - usage: string (single path segment, e.g. "avatar" or "Company")
  - extension: string (with or without the leading dot)

Returns:
  - Allocation: FileName, Dir and Key
  - error: ErrInvalidUsage or the backend failure
*/
func (store *Store) Allocate(ctx context.Context, usage, extension string) (Allocation, error) {
	if !usagePattern.MatchString(usage) {
		return Allocation{}, fmt.Errorf("%w: %q", ErrInvalidUsage, usage)
	}

	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	fileName := store.newID()
	if extension != "" {
		fileName += "." + extension
	}

	current := store.now()
	dir := fmt.Sprintf("%s/%04d/%02d", usage, current.Year(), int(current.Month()))

	if err := store.backend.EnsureDir(ctx, dir); err != nil {
		return Allocation{}, fmt.Errorf("filestore: create %s: %w", dir, err)
	}

	return Allocation{FileName: fileName, Dir: dir, Key: path.Join(dir, fileName)}, nil
}

// Join builds the key of a sibling file in dir.
func (store *Store) Join(dir, fileName string) string {
	return path.Join(dir, fileName)
}

// Write stores data under key.
func (store *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := store.backend.WriteFile(ctx, key, data); err != nil {
		return fmt.Errorf("filestore: write %s: %w", key, err)
	}
	return nil
}

// Read returns the bytes stored under key.
func (store *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := store.backend.ReadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether key is present.
func (store *Store) Exists(ctx context.Context, key string) (bool, error) {
	return store.backend.Exists(ctx, key)
}

// Unlink removes key. Missing files are ignored.
func (store *Store) Unlink(ctx context.Context, key string) error {
	if err := store.backend.Remove(ctx, key); err != nil {
		return fmt.Errorf("filestore: remove %s: %w", key, err)
	}
	return nil
}

// URL returns the public, root-relative URL of key.
func (store *Store) URL(key string) string {
	return store.publicPrefix + "/" + strings.TrimPrefix(key, "/")
}

/*
KeyFromURL reverses [Store.URL].

Returns:
  - string: The storage key
  - error: ErrForeignURL when the URL is outside the prefix or escapes it
*/
func (store *Store) KeyFromURL(url string) (string, error) {
	key, found := strings.CutPrefix(url, store.publicPrefix+"/")
	if !found || key == "" {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, url)
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrForeignURL, url)
		}
	}

	return key, nil
}

// UnlinkURL removes the file behind a public URL.
func (store *Store) UnlinkURL(ctx context.Context, url string) error {
	key, err := store.KeyFromURL(url)
	if err != nil {
		return err
	}
	return store.Unlink(ctx, key)
}
