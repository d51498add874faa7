// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// DiskBackend stores files on the local filesystem below Root.
type DiskBackend struct {
	Root string
}

// NewDiskBackend creates the root directory if needed.
func NewDiskBackend(root string) (*DiskBackend, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("filestore: create root %s: %w", root, err)
	}
	return &DiskBackend{Root: root}, nil
}

// resolve maps a key to a path inside Root and refuses anything that escapes it.
func (backend *DiskBackend) resolve(key string) (string, error) {
	full := filepath.Join(backend.Root, filepath.FromSlash(key))

	relative, err := filepath.Rel(backend.Root, full)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("filestore: key %q escapes root", key)
	}
	return full, nil
}

func (backend *DiskBackend) EnsureDir(_ context.Context, dir string) error {
	full, err := backend.resolve(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, dirPerm)
}

// WriteFile creates missing parent directories before writing.
func (backend *DiskBackend) WriteFile(_ context.Context, key string, data []byte) error {
	full, err := backend.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return err
	}
	return os.WriteFile(full, data, filePerm)
}

func (backend *DiskBackend) ReadFile(_ context.Context, key string) ([]byte, error) {
	full, err := backend.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (backend *DiskBackend) Exists(_ context.Context, key string) (bool, error) {
	full, err := backend.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (backend *DiskBackend) Remove(_ context.Context, key string) error {
	full, err := backend.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
