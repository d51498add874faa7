// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package imageproc derives resized variants of uploaded images.
//
// # Pipeline
//
// The source is decoded once (EXIF orientation applied), then every configured
// format is produced in order: resize to the target width keeping the aspect
// ratio, encode, write through the file store, and re-read the written file to
// measure it. Measured values are authoritative because encoders may round.
//
// Any failure aborts the batch. Files already written stay behind; callers must
// not persist rows for a failed batch.
package imageproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/disintegration/imaging"

	// Registers the WebP decoder with image.Decode; bmp and tiff come with imaging.
	_ "golang.org/x/image/webp"
)

// jpegQuality is used for every JPEG derivative.
const jpegQuality = 85

// ErrUnsupportedImage is returned when the bytes are not a decodable image.
var ErrUnsupportedImage = errors.New("imageproc: unsupported or corrupt image")

// Format is one derivative target.
type Format struct {
	Name   string
	Width  int
	Prefix string
}

// Files is the storage surface the processor writes through.
type Files interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Join(dir, fileName string) string
}

// Derivative describes one written variant, measured after writing.
type Derivative struct {
	Format   string
	Key      string
	FileName string
	Size     int64
	Width    int
	Height   int
}

// Probe describes a source image without decoding its pixels.
type Probe struct {
	Width  int
	Height int
	// Codec is the registered decoder name ("jpeg", "png", "gif", "bmp", "tiff", "webp").
	Codec string
}

// Extension returns the canonical file extension for the probed codec.
func (probe Probe) Extension() string {
	switch probe.Codec {
	case "jpeg":
		return "jpg"
	default:
		return probe.Codec
	}
}

// Processor produces the configured derivatives.
type Processor struct {
	formats []Format
	files   Files
}

/*
NewProcessor builds a Processor for formats, written through files.

Formats are processed in the given order; an empty Prefix defaults to "<name>-".
*/
func NewProcessor(formats []Format, files Files) (*Processor, error) {
	if len(formats) == 0 {
		return nil, errors.New("imageproc: at least one format is required")
	}

	normalized := make([]Format, len(formats))
	for index, format := range formats {
		if format.Name == "" || format.Width <= 0 {
			return nil, fmt.Errorf("imageproc: invalid format %+v", format)
		}
		if format.Prefix == "" {
			format.Prefix = format.Name + "-"
		}
		normalized[index] = format
	}

	return &Processor{formats: normalized, files: files}, nil
}

// Formats returns the configured targets in processing order.
func (processor *Processor) Formats() []Format {
	return append([]Format(nil), processor.formats...)
}

// Inspect reads the header of raw and reports its dimensions and codec.
func (processor *Processor) Inspect(raw []byte) (Probe, error) {
	config, codec, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Probe{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return Probe{Width: config.Width, Height: config.Height, Codec: codec}, nil
}

/*
CreateFormats writes one derivative per configured format.

Derivative file names are "<prefix><baseFileName>". Sources whose codec cannot
be encoded (WebP) produce JPEG derivatives with a ".jpg" extension.

Parameters:
  - ctx: context.Context
  - raw: []byte (original bytes)
  - dir: string (storage directory of the original)
  - baseFileName: string (stored file name of the original)

Returns:
  - []Derivative: One per format, in configured order
  - error: Decode, encode or storage failure (the batch is aborted)
*/
func (processor *Processor) CreateFormats(ctx context.Context, raw []byte, dir, baseFileName string) ([]Derivative, error) {
	source, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	encoding, fileName := encodingFor(baseFileName)

	derivatives := make([]Derivative, 0, len(processor.formats))
	for _, format := range processor.formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		derivative, err := processor.derive(ctx, source, format, encoding, dir, format.Prefix+fileName)
		if err != nil {
			return nil, fmt.Errorf("imageproc: %s: %w", format.Name, err)
		}
		derivatives = append(derivatives, derivative)
	}

	return derivatives, nil
}

// derive resizes, encodes, writes and measures one format. Sources narrower
// than the target are enlarged to it.
func (processor *Processor) derive(ctx context.Context, source image.Image, format Format, encoding imaging.Format, dir, fileName string) (Derivative, error) {
	resized := imaging.Resize(source, format.Width, 0, imaging.Lanczos)

	var buffer bytes.Buffer
	if err := imaging.Encode(&buffer, resized, encoding, imaging.JPEGQuality(jpegQuality)); err != nil {
		return Derivative{}, fmt.Errorf("encode: %w", err)
	}

	key := processor.files.Join(dir, fileName)
	if err := processor.files.Write(ctx, key, buffer.Bytes()); err != nil {
		return Derivative{}, err
	}

	// Measure what was actually stored.
	written, err := processor.files.Read(ctx, key)
	if err != nil {
		return Derivative{}, err
	}

	config, _, err := image.DecodeConfig(bytes.NewReader(written))
	if err != nil {
		return Derivative{}, fmt.Errorf("measure: %w", err)
	}

	return Derivative{
		Format:   format.Name,
		Key:      key,
		FileName: fileName,
		Size:     int64(len(written)),
		Width:    config.Width,
		Height:   config.Height,
	}, nil
}

// encodingFor picks the output codec from the file name, falling back to JPEG.
func encodingFor(baseFileName string) (imaging.Format, string) {
	format, err := imaging.FormatFromFilename(baseFileName)
	if err == nil {
		return format, baseFileName
	}

	extension := path.Ext(baseFileName)
	return imaging.JPEG, strings.TrimSuffix(baseFileName, extension) + ".jpg"
}
