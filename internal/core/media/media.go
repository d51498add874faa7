// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package media manages uploaded images and their resized derivatives.
//
// An [Asset] is the stored original. Every upload also produces one
// [ImageFormat] per configured width (large, medium, small by default).
// Assets and formats are created together and deleted together; format rows
// are never edited in place.
package media

import (
	"time"
)

// # Usage Categories

// Usage is the functional role of an uploaded asset.
//
// Direct uploads must use one of the fixed values below. Taxonomy images use
// the owning entity name instead (e.g., "Company"), see [Service.UploadForEntity].
type Usage string

const (
	UsageAvatar  Usage = "avatar"
	UsageCity    Usage = "city"
	UsageService Usage = "service"
	UsageBanner  Usage = "banner"
	UsageLogo    Usage = "logo"
	UsageGallery Usage = "gallery"
	UsageImage   Usage = "image"
)

// Usages lists the accepted direct-upload categories in display order.
var Usages = []Usage{
	UsageAvatar, UsageCity, UsageService, UsageBanner, UsageLogo, UsageGallery, UsageImage,
}

// Valid reports whether u is one of [Usages].
func (u Usage) Valid() bool {
	for _, usage := range Usages {
		if u == usage {
			return true
		}
	}
	return false
}

// UsageNames returns [Usages] as plain strings.
func UsageNames() []string {
	names := make([]string, len(Usages))
	for index, usage := range Usages {
		names[index] = string(usage)
	}
	return names
}

// # Field Identifiers

const (
	FieldFile        = "file"
	FieldUsage       = "usage"
	FieldName        = "name"
	FieldDescription = "description"

	// nameMaxLen bounds display names of assets.
	nameMaxLen = 255
)

// # Entities

// Asset is a stored original image.
type Asset struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	StoredFileName string        `json:"storedFileName"`
	Mime           string        `json:"mime"`
	Description    *string       `json:"description"`
	Size           int64         `json:"size"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	URL            string        `json:"url"`
	Usage          string        `json:"usage"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	ImageFormats   []ImageFormat `json:"imageFormats"`
}

// ImageFormat is one resized derivative of an [Asset].
type ImageFormat struct {
	ID      int64  `json:"id"`
	MediaID int64  `json:"-"`
	Format  string `json:"format"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Size    int64  `json:"size"`
	URL     string `json:"url"`
}

// # Inputs

// File is an uploaded file as received from the HTTP boundary.
type File struct {
	OriginalName string
	MimeType     string
	Buffer       []byte
	Size         int64
}

// UploadInput carries one direct upload.
type UploadInput struct {
	File        *File
	Usage       string
	Name        *string
	Description *string
}

// UpdateInput carries the mutable metadata of an asset. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Filter narrows asset listings.
type Filter struct {
	Usage string
}
