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

package fixtures

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/media"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// Common test media fixtures for use in tests

const (
	RepositoryKey services.Key = "public file repository"
	RatingKey     services.Key = "favourites"
)

// Epoch is the fixed time fake clocks in fixtures start at.
var Epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// NewRegistry returns the default services plus a file repository and a
// numerical rating service.
func NewRegistry() *services.MemoryRegistry {
	reg := services.NewMemoryRegistry(services.DefaultServices()...)
	reg.Add(services.Service{Key: RepositoryKey, Name: "public files", Type: services.TypeFileRepository})
	reg.Add(services.Service{Key: RatingKey, Name: "favourites", Type: services.TypeLocalRatingNumerical})
	return reg
}

// NewClock returns a fake clock at Epoch.
func NewClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(Epoch)
}

// ResultBuilder builds a media.Result for tests. The zero file is a local
// jpeg with no size, resolution or tags.
type ResultBuilder struct {
	ratings map[services.Key]float64
	clock   clockwork.Clock
	tags    []string
	loc     media.Locations
	info    media.FileInfo
}

// NewResultBuilder starts a local jpeg whose hash and hash id are n.
func NewResultBuilder(n byte) *ResultBuilder {
	return &ResultBuilder{
		info: media.FileInfo{Hash: files.Hash{n}, HashID: int64(n), Mime: files.MimeImageJPEG},
		loc: media.Locations{
			Current: []services.Key{services.LocalFileKey, services.CombinedLocalFileKey},
		},
		clock: NewClock(),
	}
}

func (b *ResultBuilder) Mime(m files.Mime) *ResultBuilder {
	b.info.Mime = m
	return b
}

func (b *ResultBuilder) Size(n int64) *ResultBuilder {
	b.info.Size = &n
	return b
}

func (b *ResultBuilder) Resolution(w, h int) *ResultBuilder {
	b.info.Width = &w
	b.info.Height = &h
	return b
}

func (b *ResultBuilder) Duration(ms, frames int) *ResultBuilder {
	b.info.Duration = &ms
	b.info.NumFrames = &frames
	return b
}

// Tags adds current tags on the local tag service.
func (b *ResultBuilder) Tags(t ...string) *ResultBuilder {
	b.tags = append(b.tags, t...)
	return b
}

// Imported sets the local import time.
func (b *ResultBuilder) Imported(t time.Time) *ResultBuilder {
	if b.loc.Timestamps == nil {
		b.loc.Timestamps = make(map[services.Key]time.Time)
	}
	b.loc.Timestamps[services.CombinedLocalFileKey] = t
	b.loc.Timestamps[services.LocalFileKey] = t
	return b
}

func (b *ResultBuilder) Rating(key services.Key, v float64) *ResultBuilder {
	if b.ratings == nil {
		b.ratings = make(map[services.Key]float64)
	}
	b.ratings[key] = v
	return b
}

func (b *ResultBuilder) Inbox() *ResultBuilder {
	b.loc.Inbox = true
	return b
}

func (b *ResultBuilder) Clock(c clockwork.Clock) *ResultBuilder {
	b.clock = c
	return b
}

func (b *ResultBuilder) Build() *media.Result {
	var storage map[services.Key]tags.StatusesToTags
	if len(b.tags) > 0 {
		stt := tags.NewStatusesToTags()
		stt[tags.StatusCurrent].Append(b.tags...)
		storage = map[services.Key]tags.StatusesToTags{services.LocalTagKey: stt}
	}
	return media.NewResult(
		b.info,
		tags.NewManager(tags.Resolver{}, storage),
		media.NewLocationsManager(b.loc, b.clock),
		media.NewRatingsManager(b.ratings),
		&media.ViewingStats{},
	)
}

// Singleton builds the result and wraps it.
func (b *ResultBuilder) Singleton() *media.Singleton {
	return media.NewSingleton(b.Build())
}

// NewPhoto returns a 1080p jpeg of 1 MB imported a year before Epoch.
func NewPhoto(n byte) *ResultBuilder {
	return NewResultBuilder(n).
		Size(1_000_000).
		Resolution(1920, 1080).
		Imported(Epoch.AddDate(-1, 0, 0)).
		Tags("series:holiday", "beach")
}

// NewClip returns a 720p mp4 clip with audio metadata.
func NewClip(n byte) *ResultBuilder {
	return NewResultBuilder(n).
		Mime(files.MimeVideoMP4).
		Size(5_000_000).
		Resolution(1280, 720).
		Duration(12_000, 300).
		Imported(Epoch.AddDate(0, -2, 0))
}
