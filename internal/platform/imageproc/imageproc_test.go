// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package imageproc_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-directory/internal/platform/imageproc"
)

// memoryFiles keeps written files in a map.
type memoryFiles struct {
	mu       sync.Mutex
	data     map[string][]byte
	failOn   string
	failWith error
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{data: map[string][]byte{}}
}

func (files *memoryFiles) Write(_ context.Context, key string, data []byte) error {
	files.mu.Lock()
	defer files.mu.Unlock()

	if files.failOn != "" && path.Base(key) == files.failOn {
		return files.failWith
	}
	files.data[key] = append([]byte(nil), data...)
	return nil
}

func (files *memoryFiles) Read(_ context.Context, key string) ([]byte, error) {
	files.mu.Lock()
	defer files.mu.Unlock()

	data, ok := files.data[key]
	if !ok {
		return nil, errors.New("missing " + key)
	}
	return data, nil
}

func (files *memoryFiles) Join(dir, fileName string) string {
	return path.Join(dir, fileName)
}

func defaultFormats() []imageproc.Format {
	return []imageproc.Format{
		{Name: "large", Width: 1024},
		{Name: "medium", Width: 512},
		{Name: "small", Width: 256},
	}
}

// solidImage renders a width x height gradient so encoders have something to do.
func solidImage(width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y += 7 {
		for x := 0; x < width; x += 7 {
			canvas.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return canvas
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, solidImage(width, height), &jpeg.Options{Quality: 80}))
	return buffer.Bytes()
}

/*
TestCreateFormats_Dimensions resizes a 2000x1500 JPEG to 1024/512/256 keeping the ratio.
*/
func TestCreateFormats_Dimensions(t *testing.T) {
	files := newMemoryFiles()
	processor, err := imageproc.NewProcessor(defaultFormats(), files)
	require.NoError(t, err)

	raw := encodeJPEG(t, 2000, 1500)

	probe, err := processor.Inspect(raw)
	require.NoError(t, err)
	assert.Equal(t, imageproc.Probe{Width: 2000, Height: 1500, Codec: "jpeg"}, probe)
	assert.Equal(t, "jpg", probe.Extension())

	derivatives, err := processor.CreateFormats(context.Background(), raw, "avatar/2026/03", "abc.jpg")
	require.NoError(t, err)
	require.Len(t, derivatives, 3)

	want := []struct {
		format string
		width  int
		height int
		name   string
	}{
		{"large", 1024, 768, "large-abc.jpg"},
		{"medium", 512, 384, "medium-abc.jpg"},
		{"small", 256, 192, "small-abc.jpg"},
	}

	for index, expected := range want {
		derivative := derivatives[index]
		assert.Equal(t, expected.format, derivative.Format)
		assert.Equal(t, expected.width, derivative.Width)
		assert.Equal(t, expected.height, derivative.Height)
		assert.Equal(t, expected.name, derivative.FileName)
		assert.Equal(t, "avatar/2026/03/"+expected.name, derivative.Key)
		assert.Equal(t, int64(len(files.data[derivative.Key])), derivative.Size)
		assert.Positive(t, derivative.Size)
	}

	// Widths never increase along the configured order.
	for index := 1; index < len(derivatives); index++ {
		assert.LessOrEqual(t, derivatives[index].Width, derivatives[index-1].Width)
	}
}

/*
TestCreateFormats_KeepsPNG encodes derivatives in the source codec.
*/
func TestCreateFormats_KeepsPNG(t *testing.T) {
	files := newMemoryFiles()
	processor, err := imageproc.NewProcessor([]imageproc.Format{{Name: "thumb", Width: 10, Prefix: "t_"}}, files)
	require.NoError(t, err)

	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, solidImage(40, 20)))

	derivatives, err := processor.CreateFormats(context.Background(), buffer.Bytes(), "logo/2026/03", "x.png")
	require.NoError(t, err)
	require.Len(t, derivatives, 1)

	_, codec, err := image.DecodeConfig(bytes.NewReader(files.data["logo/2026/03/t_x.png"]))
	require.NoError(t, err)
	assert.Equal(t, "png", codec)
	assert.Equal(t, 5, derivatives[0].Height)
}

/*
TestCreateFormats_EnlargesNarrowSources scales a 300x150 source up to every target width.
*/
func TestCreateFormats_EnlargesNarrowSources(t *testing.T) {
	processor, err := imageproc.NewProcessor(defaultFormats(), newMemoryFiles())
	require.NoError(t, err)

	derivatives, err := processor.CreateFormats(context.Background(), encodeJPEG(t, 300, 150), "avatar/2026/03", "abc.jpg")
	require.NoError(t, err)
	require.Len(t, derivatives, 3)

	assert.Equal(t, []int{1024, 512, 256}, []int{derivatives[0].Width, derivatives[1].Width, derivatives[2].Width})
	assert.Equal(t, []int{512, 256, 128}, []int{derivatives[0].Height, derivatives[1].Height, derivatives[2].Height})
}

/*
TestCreateFormats_AbortsOnFailure returns no derivatives when one write fails.
*/
func TestCreateFormats_AbortsOnFailure(t *testing.T) {
	files := newMemoryFiles()
	files.failOn = "medium-abc.jpg"
	files.failWith = errors.New("disk full")

	processor, err := imageproc.NewProcessor(defaultFormats(), files)
	require.NoError(t, err)

	derivatives, err := processor.CreateFormats(context.Background(), encodeJPEG(t, 600, 300), "avatar/2026/03", "abc.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, files.failWith)
	assert.Nil(t, derivatives)
}

/*
TestInspect_RejectsGarbage reports non-images as unsupported.
*/
func TestInspect_RejectsGarbage(t *testing.T) {
	processor, err := imageproc.NewProcessor(defaultFormats(), newMemoryFiles())
	require.NoError(t, err)

	_, err = processor.Inspect([]byte("definitely not an image"))
	assert.ErrorIs(t, err, imageproc.ErrUnsupportedImage)

	_, err = processor.CreateFormats(context.Background(), []byte("nope"), "a", "b.jpg")
	assert.ErrorIs(t, err, imageproc.ErrUnsupportedImage)
}

/*
TestNewProcessor_Validates rejects empty and non-positive configurations.
*/
func TestNewProcessor_Validates(t *testing.T) {
	_, err := imageproc.NewProcessor(nil, newMemoryFiles())
	assert.Error(t, err)

	_, err = imageproc.NewProcessor([]imageproc.Format{{Name: "bad", Width: 0}}, newMemoryFiles())
	assert.Error(t, err)

	processor, err := imageproc.NewProcessor(defaultFormats(), newMemoryFiles())
	require.NoError(t, err)
	assert.Equal(t, "large-", processor.Formats()[0].Prefix)
}
