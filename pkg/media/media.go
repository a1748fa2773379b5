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
	"time"

	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// Media is a node of the media tree: a *Singleton or a *Collection.
type Media interface {
	ID() ID
	IsCollection() bool

	// Hash is the hash of the display media.
	Hash() files.Hash
	Hashes(filter HashFilter) files.HashSet
	OrderedHashes(filter HashFilter) []files.Hash
	HasAnyOfTheseHashes(hashes files.HashSet) bool

	// Size is 0 when unknown.
	Size() int64
	IsSizeDefinite() bool
	Mime() files.Mime
	// Duration is in milliseconds.
	Duration() (int, bool)
	HasDuration() bool
	NumFrames() (int, bool)
	NumWords() (int, bool)
	// Resolution is (0, 0) when unknown.
	Resolution() (width, height int)
	HasAudio() bool

	HasInbox() bool
	HasArchive() bool
	HasImages() bool
	IsImage() bool
	IsStaticImage() bool
	NumFiles() int
	NumInbox() int

	TagsManager() *tags.Manager
	LocationsManager() *LocationsManager
	RatingsManager() *RatingsManager
	ViewingStats() *ViewingStats
	Timestamp(key services.Key) (time.Time, bool)

	DisplayMedia() *Singleton
	PrettyInfoLines(env *Env) []string
}

// Discriminant narrows media by inbox or location state.
type Discriminant int

const (
	DiscriminantNone Discriminant = iota
	DiscriminantInbox
	DiscriminantArchive
	DiscriminantLocal
	DiscriminantLocalButNotInTrash
	DiscriminantNotLocal
	DiscriminantDownloading
)

func (d Discriminant) matches(inbox bool, lm *LocationsManager) bool {
	switch d {
	case DiscriminantInbox:
		return inbox
	case DiscriminantArchive:
		return !inbox
	case DiscriminantLocal:
		return lm.IsLocal()
	case DiscriminantLocalButNotInTrash:
		return lm.IsLocal() && !lm.IsTrashed()
	case DiscriminantNotLocal:
		return !lm.IsLocal()
	case DiscriminantDownloading:
		return lm.IsDownloading()
	default:
		return true
	}
}

// HashFilter selects hashes. Zero fields do not filter.
type HashFilter struct {
	// HasLocation keeps files current on this service.
	HasLocation services.Key
	// NotUploadedTo drops files already current on this remote service.
	NotUploadedTo services.Key
	Discriminant  Discriminant
}

// IsZero reports whether the filter keeps everything.
func (f HashFilter) IsZero() bool {
	return f == HashFilter{}
}
