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
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// Singleton is a leaf of the media tree wrapping one Result.
type Singleton struct {
	result *Result
	id     ID
}

// NewSingleton wraps result with a fresh ID.
func NewSingleton(result *Result) *Singleton {
	return &Singleton{id: NewID(), result: result}
}

func (s *Singleton) ID() ID              { return s.id }
func (s *Singleton) IsCollection() bool  { return false }
func (s *Singleton) Result() *Result     { return s.result }
func (s *Singleton) Hash() files.Hash    { return s.result.Hash() }
func (s *Singleton) Mime() files.Mime    { return s.result.Mime() }
func (s *Singleton) HasAudio() bool      { return s.result.HasAudio() }
func (s *Singleton) HasInbox() bool      { return s.result.Inbox() }
func (s *Singleton) HasArchive() bool    { return !s.result.Inbox() }
func (s *Singleton) HasImages() bool     { return s.IsImage() }
func (s *Singleton) IsStaticImage() bool { return s.result.IsStaticImage() }
func (s *Singleton) NumFiles() int       { return 1 }
func (s *Singleton) DisplayMedia() *Singleton {
	return s
}

func (s *Singleton) TagsManager() *tags.Manager          { return s.result.TagsManager() }
func (s *Singleton) LocationsManager() *LocationsManager { return s.result.LocationsManager() }
func (s *Singleton) RatingsManager() *RatingsManager     { return s.result.RatingsManager() }
func (s *Singleton) ViewingStats() *ViewingStats         { return s.result.ViewingStats() }

// Duplicate wraps a deep copy of the result in a new singleton.
func (s *Singleton) Duplicate() *Singleton {
	return NewSingleton(s.result.Duplicate())
}

func (s *Singleton) NumInbox() int {
	if s.HasInbox() {
		return 1
	}
	return 0
}

func derefInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (s *Singleton) Duration() (int, bool)  { return derefInt(s.result.info.Duration) }
func (s *Singleton) NumFrames() (int, bool) { return derefInt(s.result.info.NumFrames) }
func (s *Singleton) NumWords() (int, bool)  { return derefInt(s.result.info.NumWords) }

// HasDuration needs both a non-zero duration and a non-zero frame count.
func (s *Singleton) HasDuration() bool {
	d, ok := s.Duration()
	if !ok || d == 0 {
		return false
	}
	f, ok := s.NumFrames()
	return ok && f != 0
}

func (s *Singleton) IsImage() bool {
	return s.result.Mime().IsImage() && !s.HasDuration()
}

func (s *Singleton) Size() int64 {
	if s.result.info.Size == nil {
		return 0
	}
	return *s.result.info.Size
}

func (s *Singleton) IsSizeDefinite() bool { return s.result.info.Size != nil }

func (s *Singleton) Resolution() (width, height int) {
	w, h, ok := s.result.info.Resolution()
	if !ok {
		return 0, 0
	}
	return w, h
}

func (s *Singleton) Timestamp(key services.Key) (time.Time, bool) {
	return s.result.LocationsManager().Timestamp(key)
}

// MatchesFilter reports whether the file passes every set field of f.
func (s *Singleton) MatchesFilter(f HashFilter) bool {
	lm := s.result.LocationsManager()
	if !f.Discriminant.matches(s.result.Inbox(), lm) {
		return false
	}
	if f.HasLocation != "" && !lm.IsCurrent(f.HasLocation) {
		return false
	}
	if f.NotUploadedTo != "" && lm.CurrentRemote().ContainsOne(f.NotUploadedTo) {
		return false
	}
	return true
}

func (s *Singleton) Hashes(f HashFilter) files.HashSet {
	if !s.MatchesFilter(f) {
		return files.NewHashSet()
	}
	return files.NewHashSet(s.Hash())
}

func (s *Singleton) OrderedHashes(f HashFilter) []files.Hash {
	if !s.MatchesFilter(f) {
		return nil
	}
	return []files.Hash{s.Hash()}
}

func (s *Singleton) HasAnyOfTheseHashes(hashes files.HashSet) bool {
	return hashes.Has(s.Hash())
}

func prettyTimeDelta(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// PrettyInfoLines describes the file for a status bar: size, mime,
// dimensions and the history of where it has been.
func (s *Singleton) PrettyInfoLines(env *Env) []string {
	info := s.result.FileInfo()
	now := env.now()

	var sb strings.Builder
	sb.WriteString(humanize.Bytes(uint64(s.Size())) + " " + info.Mime.String())
	if w, h, ok := info.Resolution(); ok {
		sb.WriteString(" (" + humanize.Comma(int64(w)) + "x" + humanize.Comma(int64(h)) + ")")
	}
	if info.Duration != nil {
		sb.WriteString(", " + (time.Duration(*info.Duration) * time.Millisecond).String())
	}
	if info.NumFrames != nil {
		sb.WriteString(" (" + humanize.Comma(int64(*info.NumFrames)) + " frames)")
	}
	if s.HasAudio() {
		sb.WriteString(", has audio")
	}
	if info.NumWords != nil {
		sb.WriteString(" (" + humanize.Comma(int64(*info.NumWords)) + " words)")
	}
	lines := []string{sb.String()}

	lm := s.result.LocationsManager()
	if lm.IsCurrent(services.CombinedLocalFileKey) {
		if t, ok := lm.Timestamp(services.CombinedLocalFileKey); ok {
			lines = append(lines, "imported "+prettyTimeDelta(t, now))
		}
	}
	if lm.IsTrashed() {
		if t, ok := lm.Timestamp(services.TrashKey); ok {
			lines = append(lines, "trashed "+prettyTimeDelta(t, now))
		}
	}
	if lm.deleted.ContainsOne(services.CombinedLocalFileKey) {
		lines = append(lines, "was once previously in this client")
	}
	if t, ok := lm.FileModifiedTimestamp(); ok {
		lines = append(lines, "file modified: "+prettyTimeDelta(t, now))
	}

	if env == nil || env.Registry == nil {
		return lines
	}
	remote := lm.CurrentRemote().ToSlice()
	slices.Sort(remote)
	for _, key := range remote {
		svc, err := env.Registry.Service(key)
		if err != nil {
			continue
		}
		verb := "uploaded "
		if svc.Type == services.TypeIPFS {
			verb = "pinned "
		}
		line := verb + "to " + svc.Name
		if t, ok := lm.Timestamp(key); ok {
			line += " " + prettyTimeDelta(t, now)
		}
		lines = append(lines, line)
	}
	return lines
}
