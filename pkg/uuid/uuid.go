// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides unique identifiers for the platform.

Two flavors are exposed:

  - New: time-ordered UUIDv7 strings, used for request correlation ids.
  - Opaque: random UUIDv4 hex strings, used as stored file names so that
    nothing about the upload (time, original name) leaks into public URLs.
*/
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Opaque returns 32 lowercase hex characters from a random UUIDv4.
func Opaque() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
