// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"errors"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/pkg/slug"
)

// Name length bounds shared by taxonomies, tags and companies.
const (
	NameMinLen = 3
	NameMaxLen = 50

	// DescriptionMaxLen applies after sanitizing.
	DescriptionMaxLen = 255
)

// strict strips every HTML element and attribute.
var strict = bluemonday.StrictPolicy()

/*
FormatName trims a display name and upper-cases its first character.

The rest of the string is left untouched, so FormatName is idempotent.

Parameters:
  - name: string (raw input)

Returns:
  - string: Formatted name
  - *apperr.AppError: VALIDATION_ERROR on field "name" when outside 3–50 characters
*/
func FormatName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)

	length := utf8.RuneCountInString(trimmed)
	if length < NameMinLen || length > NameMaxLen {
		return "", RequiredError("name", "Name must be between 3 and 50 characters")
	}

	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + trimmed[size:], nil
}

// Sanitize removes markup from free text and trims the result.
//
// Entities escaped by the policy are decoded again so that stored text stays plain.
func Sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(text)))
}

/*
Description sanitizes an optional description and enforces its length.

Parameters:
  - text: *string (nil means "not provided")

Returns:
  - *string: Sanitized text, nil when absent or blank after sanitizing
  - error: VALIDATION_ERROR on field "description" when too long
*/
func Description(text *string) (*string, error) {
	if text == nil {
		return nil, nil
	}

	clean := Sanitize(*text)
	if clean == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(clean) > DescriptionMaxLen {
		return nil, RequiredError("description", "Maximum 255 characters")
	}
	return &clean, nil
}

/*
SlugFailure converts a slug generation failure into an application error.

Application errors pass through unchanged, so persist errors returned through
[slug.Reserve] keep their shape.
*/
func SlugFailure(err error) error {
	if err == nil {
		return nil
	}
	if apperr.IsAppError(err) {
		return apperr.As(err)
	}

	switch {
	case errors.Is(err, slug.ErrEmpty):
		return RequiredError("name", "Name must contain at least one letter or digit")
	case errors.Is(err, slug.ErrExhausted):
		return apperr.Conflict("Too many entries share this name")
	default:
		return apperr.Internal(err)
	}
}
