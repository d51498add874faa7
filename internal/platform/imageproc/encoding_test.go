// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package imageproc

import (
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		input    string
		format   imaging.Format
		fileName string
	}{
		{"a.jpg", imaging.JPEG, "a.jpg"},
		{"a.png", imaging.PNG, "a.png"},
		{"a.gif", imaging.GIF, "a.gif"},
		{"a.webp", imaging.JPEG, "a.jpg"},
	}

	for _, tt := range tests {
		format, fileName := encodingFor(tt.input)
		assert.Equal(t, tt.format, format, tt.input)
		assert.Equal(t, tt.fileName, fileName, tt.input)
	}
}
