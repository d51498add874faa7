// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the service layer, never in handlers or
// storage. It ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/pkg/slug"
)

var (
	// entityNameRegex matches the names of entity kinds that own taxonomies and tags.
	entityNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,49}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Positive fails unless id is a usable surrogate key.
func (v *Validator) Positive(field string, id int64) *Validator {
	if id <= 0 {
		v.add(field, "Must be a positive integer")
	}
	return v
}

// Slug fails if the value is not a canonical URL slug.
//
// # Format
//
// Slugs must consist only of lowercase letters, digits, and hyphens,
// with no leading, trailing or repeated hyphens.
func (v *Validator) Slug(field, value string) *Validator {
	if !slug.Valid(value) {
		v.add(field, "Must be a valid URL slug (lowercase letters, digits, hyphens only)")
	}
	return v
}

// LooseSlug fails if the value contains anything but lowercase letters, digits and hyphens.
func (v *Validator) LooseSlug(field, value string) *Validator {
	if !slug.ValidLoose(value) {
		v.add(field, "Must contain only lowercase letters, digits and hyphens")
	}
	return v
}

// EntityName fails if the value cannot name an entity kind (e.g., "Company").
func (v *Validator) EntityName(field, value string) *Validator {
	if !entityNameRegex.MatchString(value) {
		v.add(field, "Must start with a letter and contain only letters, digits, '_' or '-' (max 50)")
	}
	return v
}

// Digits fails unless the value is only ASCII digits with a length in [min, max].
func (v *Validator) Digits(field, value string, min, max int) *Validator {
	valid := len(value) >= min && len(value) <= max
	for _, r := range value {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			valid = false
			break
		}
	}
	if !valid {
		v.add(field, fmt.Sprintf("Must contain between %d and %d digits", min, max))
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("taxonomy_ids", len(ids) > 50, "At most 50 taxonomies")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method. Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
