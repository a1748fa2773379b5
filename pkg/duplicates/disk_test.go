// TagVault Core
// Copyright (c) 2026 The TagVault Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of TagVault Core.
//
// TagVault Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TagVault Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TagVault Core.  If not, see <http://www.gnu.org/licenses/>.

package duplicates

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagvault/tagvault-core/pkg/analysis"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/testing/fixtures"
	"github.com/tagvault/tagvault-core/pkg/testing/mocks"
)

func checkerboard(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			c := color.NRGBA{R: 0x20, G: 0x40, B: 0x60, A: 0xFF}
			if (x/4+y/4)%2 == 0 {
				c = color.NRGBA{R: 0xF0, G: 0xE0, B: 0xD0, A: 0xFF}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestComparer_WithDiskAnalyzer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	img := checkerboard(32)

	write := func(name string, encode func(*bytes.Buffer) error) string {
		var buf bytes.Buffer
		require.NoError(t, encode(&buf))
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
		return path
	}

	best := write("best.jpg", func(b *bytes.Buffer) error { return jpeg.Encode(b, img, &jpeg.Options{Quality: 100}) })
	worst := write("worst.jpg", func(b *bytes.Buffer) error { return jpeg.Encode(b, img, &jpeg.Options{Quality: 10}) })
	pngA := write("a.png", func(b *bytes.Buffer) error { return png.Encode(b, img) })
	pngB := write("b.png", func(b *bytes.Buffer) error {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(b, img)
	})

	bestFile := fixtures.NewResultBuilder(1).Resolution(32, 32).Singleton()
	worstFile := fixtures.NewResultBuilder(2).Resolution(32, 32).Singleton()
	pngFileA := fixtures.NewResultBuilder(3).Mime(files.MimeImagePNG).Resolution(32, 32).Singleton()
	pngFileB := fixtures.NewResultBuilder(4).Mime(files.MimeImagePNG).Resolution(32, 32).Singleton()

	locator := mocks.StaticLocator{Paths: map[files.Hash]string{
		bestFile.Hash():  best,
		worstFile.Hash(): worst,
		pngFileA.Hash():  pngA,
		pngFileB.Hash():  pngB,
	}}
	cache, err := NewAnalysisCache(locator, analysis.NewAnalyzer(afero.NewOsFs()), 8, 8)
	require.NoError(t, err)
	c := newComparer(cache)

	st, err := c.Statements(context.Background(), bestFile, worstFile)
	require.NoError(t, err)
	assert.Equal(t, Statement{Text: "extremely high vs very low jpeg quality", Score: 20}, st[CriterionJPEGQuality])
	assert.NotContains(t, st, CriterionPixelDuplicates, "lossy encodes differ")

	st, err = c.Statements(context.Background(), pngFileA, pngFileB)
	require.NoError(t, err)
	assert.Equal(t, Statement{Text: "images are pixel-for-pixel duplicates!"}, st[CriterionPixelDuplicates])
}
