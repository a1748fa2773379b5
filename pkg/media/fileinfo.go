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

package media

import (
	"github.com/tagvault/tagvault-core/pkg/files"
)

// FileInfo is the immutable description of one file. Optional fields are
// nil when unknown. Replace a Result's FileInfo whole rather than editing
// it.
type FileInfo struct {
	Size      *int64
	Width     *int
	Height    *int
	Duration  *int // milliseconds
	NumFrames *int
	HasAudio  *bool
	NumWords  *int
	HashID    int64
	Hash      files.Hash
	Mime      files.Mime
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Duplicate returns a copy that shares no pointers with fi.
func (fi FileInfo) Duplicate() FileInfo {
	out := fi
	out.Size = clonePtr(fi.Size)
	out.Width = clonePtr(fi.Width)
	out.Height = clonePtr(fi.Height)
	out.Duration = clonePtr(fi.Duration)
	out.NumFrames = clonePtr(fi.NumFrames)
	out.HasAudio = clonePtr(fi.HasAudio)
	out.NumWords = clonePtr(fi.NumWords)
	return out
}

// Resolution returns width and height when both are known.
func (fi FileInfo) Resolution() (width, height int, ok bool) {
	if fi.Width == nil || fi.Height == nil {
		return 0, 0, false
	}
	return *fi.Width, *fi.Height, true
}

// IsStaticImage reports an image mime with no duration.
func (fi FileInfo) IsStaticImage() bool {
	return fi.Mime.IsImage() && (fi.Duration == nil || *fi.Duration == 0)
}
