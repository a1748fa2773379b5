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

package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/tagvault/tagvault-core/pkg/files"
)

var ErrNotStaticImage = errors.New("not a static image")

// Analyzer reads files from fs. Cancellation is checked before each file
// is opened and after it is decoded.
type Analyzer struct {
	fs afero.Fs
}

func NewAnalyzer(fs afero.Fs) *Analyzer {
	return &Analyzer{fs: fs}
}

func (a *Analyzer) open(path string) (afero.File, func(), error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("failed to close file")
		}
	}, nil
}

// JPEGQuality estimates the quality of the JPEG at path.
func (a *Analyzer) JPEGQuality(ctx context.Context, path string) (Quality, error) {
	if err := ctx.Err(); err != nil {
		return Quality{}, err
	}

	f, done, err := a.open(path)
	if err != nil {
		return Quality{}, err
	}
	defer done()

	q, err := EstimateJPEGQuality(f)
	if err != nil {
		return Quality{}, fmt.Errorf("estimate quality of %s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("label", q.Label).Float64("value", q.Value).Msg("estimated jpeg quality")
	return q, nil
}

// PixelHash decodes the static image at path and hashes its pixels.
func (a *Analyzer) PixelHash(ctx context.Context, path string, mime files.Mime) (files.Hash, error) {
	if !mime.IsImage() {
		return files.Hash{}, fmt.Errorf("%w: %s", ErrNotStaticImage, mime)
	}
	if err := ctx.Err(); err != nil {
		return files.Hash{}, err
	}

	f, done, err := a.open(path)
	if err != nil {
		return files.Hash{}, err
	}
	defer done()

	img, err := imaging.Decode(f)
	if err != nil {
		return files.Hash{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return files.Hash{}, err
	}
	return PixelHash(img), nil
}
