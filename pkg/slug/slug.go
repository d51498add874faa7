// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are used as human-readable identifiers for taxonomies, tags and
// companies (e.g., "cafe-de-olla"). This package handles normalization, accent
// removal, character sanitization and the suffix probing used to keep slugs unique.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxAttempts bounds the suffix probing loop of [Unique].
const MaxAttempts = 1000

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)

	// strictPattern is the canonical slug shape: hyphen-separated alphanumeric words.
	strictPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	// loosePattern also accepts leading, trailing and repeated hyphens.
	loosePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

var (
	// ErrEmpty is returned when a name normalizes to an empty slug.
	ErrEmpty = errors.New("slug: name produces an empty slug")

	// ErrExhausted is returned when [MaxAttempts] candidates are all taken.
	ErrExhausted = errors.New("slug: no free suffix found")
)

// ExistsFunc reports whether a candidate slug is already taken in the backing store.
type ExistsFunc func(context context.Context, candidate string) (bool, error)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFD and removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces whitespace and any non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, strings.TrimSpace(s))

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with hyphens
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

/*
Unique derives the base slug of name and probes exists until a free candidate is found.

The base slug is tried first, then "<base>-1", "<base>-2", ... in order.
The probe is not atomic: two concurrent callers may receive the same
candidate, so callers must keep a storage-level unique constraint.

Parameters:
  - context: context.Context
  - name: string (display name)
  - exists: ExistsFunc (backing store lookup)

Returns:
  - string: First free candidate
  - error: ErrEmpty, ErrExhausted or the lookup error
*/
func Unique(context context.Context, name string, exists ExistsFunc) (string, error) {
	base := From(name)
	if base == "" {
		return "", ErrEmpty
	}

	candidate := base
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		taken, err := exists(context, candidate)
		if err != nil {
			return "", fmt.Errorf("slug: probe %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	return "", ErrExhausted
}

// Valid reports whether s matches the canonical slug shape.
func Valid(s string) bool {
	return strictPattern.MatchString(s)
}

// ValidLoose reports whether s only contains lowercase letters, digits and hyphens.
func ValidLoose(s string) bool {
	return loosePattern.MatchString(s)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
