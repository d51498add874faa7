// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-directory/internal/platform/apperr"
	"github.com/taibuivan/yomira-directory/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
	"github.com/taibuivan/yomira-directory/internal/platform/validate"
	"github.com/taibuivan/yomira-directory/pkg/query"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to temp files.
const multipartMemory = 8 << 20

// UploadedFile is an already-parsed multipart file part.
type UploadedFile struct {
	OriginalName string
	MimeType     string
	Buffer       []byte
	Size         int64
}

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID parses a numeric URL parameter.

Returns:
  - int64: The identifier
  - error: VALIDATION_ERROR when the parameter is not a positive integer
*/
func ID(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
IsMultipart reports whether the request carries a multipart/form-data body.
*/
func IsMultipart(request *http.Request) bool {
	return strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data")
}

/*
ParseMultipart parses a multipart body once so that form values and files can be read.
*/
func ParseMultipart(request *http.Request) error {
	if err := request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return apperr.ValidationError("Invalid multipart payload")
	}
	return nil
}

/*
File reads a single file part into memory.

The request must have been parsed with [ParseMultipart].

Returns:
  - *UploadedFile: nil when the part is absent
  - error: read failures
*/
func File(request *http.Request, field string) (*UploadedFile, error) {
	file, header, err := request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ValidationError("Invalid file part: " + field)
	}
	defer closeQuietly(file)

	buffer, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &UploadedFile{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Buffer:       buffer,
		Size:         int64(len(buffer)),
	}, nil
}

/*
FormValue returns a pointer to a form field, or nil when the field was not sent.
*/
func FormValue(request *http.Request, field string) *string {
	if request.MultipartForm == nil {
		return nil
	}
	values, ok := request.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

/*
FormValues returns every value sent for a repeated form field.
*/
func FormValues(request *http.Request, field string) []string {
	if request.MultipartForm == nil {
		return nil
	}
	return request.MultipartForm.Value[field]
}

/*
FormInt64 parses an optional numeric form field.

Returns:
  - *int64: nil when the field was not sent or is blank
  - error: VALIDATION_ERROR on field when the value is not an integer
*/
func FormInt64(request *http.Request, field string) (*int64, error) {
	return optionalInt64(FormValue(request, field), field)
}

/*
QueryInt64 parses an optional numeric query parameter.
*/
func QueryInt64(request *http.Request, name string) (*int64, error) {
	if !request.URL.Query().Has(name) {
		return nil, nil
	}
	raw := request.URL.Query().Get(name)
	return optionalInt64(&raw, name)
}

/*
FormBool parses an optional boolean form field ("true", "false", "1", "0").
*/
func FormBool(request *http.Request, field string) (*bool, error) {
	raw := FormValue(request, field)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(strings.TrimSpace(*raw))
	if err != nil {
		return nil, validate.RequiredError(field, "Must be true or false")
	}
	return &value, nil
}

/*
FormInt64s parses a repeated numeric form field. Each value may also hold a
comma-separated list.

Returns:
  - []int64: nil when the field was not sent, empty when it was sent blank
  - error: VALIDATION_ERROR on field when a value is not an integer
*/
func FormInt64s(request *http.Request, field string) ([]int64, error) {
	values := FormValues(request, field)
	if values == nil {
		return nil, nil
	}

	ids := make([]int64, 0, len(values))
	for _, value := range values {
		for _, part := range query.StringSlice(value) {
			id, err := optionalInt64(&part, field)
			if err != nil {
				return nil, err
			}
			if id != nil {
				ids = append(ids, *id)
			}
		}
	}
	return ids, nil
}

func optionalInt64(raw *string, field string) (*int64, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	value, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
	if err != nil {
		return nil, validate.RequiredError(field, "Must be an integer")
	}
	return &value, nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get user claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

func closeQuietly(file multipart.File) {
	_ = file.Close()
}
