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
	"cmp"
	"fmt"
	"strings"

	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// SortType is what a Sort orders by.
type SortType int

const (
	SortFilesize SortType = iota + 1
	SortDuration
	SortHeight
	SortWidth
	SortRatio
	SortNumPixels
	SortApproxBitrate
	SortMime
	SortImportTime
	SortFileModifiedTime
	SortNumTags
	SortHasAudio
	SortRandom
	SortMediaViews
	SortMediaViewtime
	SortNamespaces
	SortRating
)

type sortTypeInfo struct {
	name       string
	label      string
	ascLabel   string
	descLabel  string
	defaultAsc bool
}

var sortTypes = map[SortType]sortTypeInfo{
	SortFilesize:         {"filesize", "file: filesize", "smallest first", "largest first", false},
	SortDuration:         {"duration", "dimensions: duration", "shortest first", "longest first", false},
	SortHeight:           {"height", "dimensions: height", "shortest first", "tallest first", true},
	SortWidth:            {"width", "dimensions: width", "slimmest first", "widest first", true},
	SortRatio:            {"ratio", "dimensions: resolution ratio", "tallest first", "widest first", true},
	SortNumPixels:        {"num_pixels", "dimensions: number of pixels", "ascending", "descending", false},
	SortApproxBitrate:    {"approx_bitrate", "file: approximate bitrate", "smallest first", "largest first", false},
	SortMime:             {"mime", "file: filetype", "mime", "mime", true},
	SortImportTime:       {"import_time", "file: time imported", "oldest first", "newest first", false},
	SortFileModifiedTime: {"file_modified_time", "file: modified time", "oldest first", "newest first", false},
	SortNumTags:          {"num_tags", "tags: number of tags", "ascending", "descending", true},
	SortHasAudio:         {"has_audio", "file: has audio", "audio first", "silent first", true},
	SortRandom:           {"random", "random", "random", "random", true},
	SortMediaViews:       {"media_views", "views: media views", "ascending", "descending", false},
	SortMediaViewtime:    {"media_viewtime", "views: media viewtime", "ascending", "descending", false},
	SortNamespaces:       {"namespaces", "tags", "ascending", "descending", false},
	SortRating:           {"rating", "rating", "ascending", "descending", false},
}

func (t SortType) String() string {
	if info, ok := sortTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("sort_type_%d", int(t))
}

// ParseSortType maps a config name such as "import_time" to its SortType.
func ParseSortType(name string) (SortType, error) {
	for t, info := range sortTypes {
		if info.name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown sort type %q", name)
}

// Sort is a sort type and direction. Namespaces is used by SortNamespaces
// and RatingService by SortRating.
type Sort struct {
	RatingService services.Key
	Namespaces    []string
	Type          SortType
	Asc           bool
}

// CanAsc reports whether the direction of the sort means anything.
func (s Sort) CanAsc() bool {
	switch s.Type {
	case SortMime, SortRandom, SortNamespaces:
		return false
	default:
		return true
	}
}

// TypeString is the human label, e.g. "sort by file: filesize".
func (s Sort) TypeString(reg services.Registry) string {
	switch s.Type {
	case SortNamespaces:
		return "sort by tags: " + strings.Join(s.Namespaces, "-")
	case SortRating:
		name := "unknown service"
		if reg != nil {
			if svc, err := reg.Service(s.RatingService); err == nil {
				name = svc.Name
			}
		}
		return "sort by rating: " + name
	}
	if info, ok := sortTypes[s.Type]; ok {
		return "sort by " + info.label
	}
	return "sort by " + s.Type.String()
}

// AscStrings returns the labels for ascending and descending order and
// whether ascending is the natural default.
func (s Sort) AscStrings() (asc, desc string, defaultAsc bool) {
	info, ok := sortTypes[s.Type]
	if !ok {
		return "ascending", "descending", false
	}
	return info.ascLabel, info.descLabel, info.defaultAsc
}

// Key is a sort key: numeric components compared first, then namespace
// slices, each lexicographically.
type Key struct {
	Values     []float64
	Namespaces [][]tags.Sortable
}

func numKey(values ...float64) Key { return Key{Values: values} }

func compareSortables(a, b []tags.Sortable) int {
	for i := range min(len(a), len(b)) {
		if c := tags.CompareSortable(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Compare is a total order over keys.
func (k Key) Compare(o Key) int {
	for i := range min(len(k.Values), len(o.Values)) {
		if c := cmp.Compare(k.Values[i], o.Values[i]); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(len(k.Values), len(o.Values)); c != 0 {
		return c
	}
	for i := range min(len(k.Namespaces), len(o.Namespaces)) {
		if c := compareSortables(k.Namespaces[i], o.Namespaces[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(k.Namespaces), len(o.Namespaces))
}

func intOrMissing(v int, ok bool) float64 {
	if !ok {
		return -1
	}
	return float64(v)
}

func floatOrMissing(v float64, ok bool) float64 {
	if !ok {
		return -1
	}
	return v
}

// knownResolution reports the resolution of a singleton. Collections have
// none.
func knownResolution(m Media) (width, height int, ok bool) {
	s, isSingleton := m.(*Singleton)
	if !isSingleton {
		return 0, 0, false
	}
	return s.result.info.Resolution()
}

func approxBitrate(m Media) Key {
	size := float64(m.Size())
	duration, hasDuration := m.Duration()
	frames, _ := m.NumFrames()

	if size == 0 {
		return numKey(-1, -1)
	}
	if !hasDuration || duration == 0 {
		w, h, ok := knownResolution(m)
		if !ok {
			return numKey(0, 0)
		}
		if w*h == 0 {
			return numKey(0, -1)
		}
		return numKey(0, size/float64(w*h))
	}
	durationBitrate := size / float64(duration)
	if frames == 0 {
		return numKey(durationBitrate, 0)
	}
	return numKey(durationBitrate, durationBitrate/float64(frames))
}

func unixOrMissing(m Media, key services.Key) float64 {
	t, ok := m.Timestamp(key)
	if !ok {
		return -1
	}
	return float64(t.Unix())
}

// KeyFunc returns the key extractor for s over a list bound to
// fileServiceKey, and whether the sort runs in reverse.
func (s Sort) KeyFunc(env *Env, fileServiceKey services.Key) (keyFn func(Media) Key, reverse bool) {
	reverse = !s.Asc

	switch s.Type {
	case SortRandom:
		return func(Media) Key { return numKey(env.float64()) }, reverse
	case SortApproxBitrate:
		return approxBitrate, reverse
	case SortFilesize:
		return func(m Media) Key { return numKey(float64(m.Size())) }, reverse
	case SortDuration:
		return func(m Media) Key { return numKey(intOrMissing(m.Duration())) }, reverse
	case SortHasAudio:
		return func(m Media) Key {
			if m.HasAudio() {
				return numKey(-1)
			}
			return numKey(0)
		}, reverse
	case SortImportTime:
		key := fileServiceKey
		if env != nil && env.Registry != nil {
			if svc, err := env.Registry.Service(fileServiceKey); err == nil && svc.Type == services.TypeLocalFileDomain {
				key = services.CombinedLocalFileKey
			}
		}
		return func(m Media) Key { return numKey(unixOrMissing(m, key)) }, reverse
	case SortFileModifiedTime:
		return func(m Media) Key {
			t, ok := m.LocationsManager().FileModifiedTimestamp()
			if !ok {
				return numKey(-1)
			}
			return numKey(float64(t.Unix()))
		}, reverse
	case SortHeight:
		return func(m Media) Key {
			_, h := m.Resolution()
			return numKey(float64(h))
		}, reverse
	case SortWidth:
		return func(m Media) Key {
			w, _ := m.Resolution()
			return numKey(float64(w))
		}, reverse
	case SortRatio:
		return func(m Media) Key {
			w, h := m.Resolution()
			if w == 0 || h == 0 {
				return numKey(-1)
			}
			return numKey(float64(w) / float64(h))
		}, reverse
	case SortNumPixels:
		return func(m Media) Key {
			w, h := m.Resolution()
			return numKey(float64(w * h))
		}, reverse
	case SortNumTags:
		return func(m Media) Key {
			n := m.TagsManager().CurrentAndPending(services.CombinedTagKey, tags.DisplaySingleMedia).Cardinality()
			return numKey(float64(n))
		}, reverse
	case SortMime:
		return func(m Media) Key { return numKey(float64(m.Mime())) }, reverse
	case SortMediaViews:
		return func(m Media) Key { return numKey(float64(m.ViewingStats().MediaViews)) }, reverse
	case SortMediaViewtime:
		return func(m Media) Key { return numKey(m.ViewingStats().MediaViewtime) }, reverse
	case SortNamespaces:
		namespaces := s.Namespaces
		return func(m Media) Key {
			return Key{Namespaces: m.TagsManager().ComparableNamespaceSlice(namespaces, tags.DisplaySingleMedia)}
		}, reverse
	case SortRating:
		service := s.RatingService
		return func(m Media) Key { return numKey(floatOrMissing(m.RatingsManager().Rating(service))) }, reverse
	default:
		return func(Media) Key { return Key{} }, reverse
	}
}
