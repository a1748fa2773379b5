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
	"crypto/sha256"
	"encoding/binary"
	"image"

	"github.com/disintegration/imaging"
	"github.com/tagvault/tagvault-core/pkg/files"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// PixelHash hashes the decoded NRGBA pixels of img along with its
// dimensions. Two files with identical pixel content hash the same
// regardless of container format.
func PixelHash(img image.Image) files.Hash {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()

	h := sha256.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:], uint32(b.Dy()))
	_, _ = h.Write(dims[:])
	_, _ = h.Write(nrgba.Pix)

	var out files.Hash
	copy(out[:], h.Sum(nil))
	return out
}
