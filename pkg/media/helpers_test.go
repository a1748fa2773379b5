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
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

const (
	repoFileKey  services.Key = "public file repository"
	otherRepoKey services.Key = "other file repository"
	ratingKey    services.Key = "favourites"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testRegistry() *services.MemoryRegistry {
	reg := services.NewMemoryRegistry(services.DefaultServices()...)
	reg.Add(services.Service{Key: repoFileKey, Name: "public files", Type: services.TypeFileRepository})
	reg.Add(services.Service{Key: otherRepoKey, Name: "other files", Type: services.TypeFileRepository})
	reg.Add(services.Service{Key: ratingKey, Name: "favourites", Type: services.TypeLocalRatingNumerical})
	return reg
}

func testEnv() (*Env, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(epoch)
	env := NewEnv(testRegistry())
	env.Clock = clock
	env.Rand = rand.New(rand.NewPCG(1, 2))
	return env, clock
}

type resultParams struct {
	ratings map[services.Key]float64
	tags    []string
	loc     Locations
	viewing ViewingStats
	info    FileInfo
}

type resultOpt func(*resultParams)

func withSize(n int64) resultOpt {
	return func(s *resultParams) { s.info.Size = &n }
}

func withTags(t ...string) resultOpt {
	return func(s *resultParams) { s.tags = append(s.tags, t...) }
}

func withMime(m files.Mime) resultOpt {
	return func(s *resultParams) { s.info.Mime = m }
}

func withDuration(ms, frames int) resultOpt {
	return func(s *resultParams) {
		s.info.Duration = &ms
		s.info.NumFrames = &frames
	}
}

func withResolution(w, h int) resultOpt {
	return func(s *resultParams) {
		s.info.Width = &w
		s.info.Height = &h
	}
}

func withRating(key services.Key, v float64) resultOpt {
	return func(s *resultParams) {
		if s.ratings == nil {
			s.ratings = make(map[services.Key]float64)
		}
		s.ratings[key] = v
	}
}

func withImported(t time.Time) resultOpt {
	return func(s *resultParams) {
		if s.loc.Timestamps == nil {
			s.loc.Timestamps = make(map[services.Key]time.Time)
		}
		s.loc.Timestamps[services.CombinedLocalFileKey] = t
		s.loc.Timestamps[services.LocalFileKey] = t
	}
}

func withLocations(current ...services.Key) resultOpt {
	return func(s *resultParams) { s.loc.Current = current }
}

func withInbox() resultOpt {
	return func(s *resultParams) { s.loc.Inbox = true }
}

func withViews(n int) resultOpt {
	return func(s *resultParams) { s.viewing.MediaViews = n }
}

// testResult builds a local jpeg whose hash and hash id are n.
func testResult(n byte, opts ...resultOpt) *Result {
	spec := resultParams{
		info: FileInfo{Hash: files.Hash{n}, HashID: int64(n), Mime: files.MimeImageJPEG},
		loc: Locations{
			Current: []services.Key{services.LocalFileKey, services.CombinedLocalFileKey},
		},
	}
	for _, opt := range opts {
		opt(&spec)
	}

	var storage map[services.Key]tags.StatusesToTags
	if len(spec.tags) > 0 {
		stt := tags.NewStatusesToTags()
		stt[tags.StatusCurrent].Append(spec.tags...)
		storage = map[services.Key]tags.StatusesToTags{services.LocalTagKey: stt}
	}
	viewing := spec.viewing
	return NewResult(
		spec.info,
		tags.NewManager(tags.Resolver{}, storage),
		NewLocationsManager(spec.loc, clockwork.NewFakeClockAt(epoch)),
		NewRatingsManager(spec.ratings),
		&viewing,
	)
}

func filesUpdate(action content.Action, hashes ...files.Hash) content.Update {
	return content.MustNewUpdate(content.DataFiles, action, content.FilesRow{Hashes: hashes})
}

func mappingUpdate(action content.Action, tag string, hashes ...files.Hash) content.Update {
	return content.MustNewUpdate(content.DataMappings, action, content.MappingsRow{Tag: tag, Hashes: hashes})
}

func hashOf(n byte) files.Hash { return files.Hash{n} }

func sizesOf(media []Media) []int64 {
	out := make([]int64, len(media))
	for i, m := range media {
		out[i] = m.Size()
	}
	return out
}
