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

package tags

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Status is a tag's relationship to a service.
type Status int

const (
	StatusCurrent Status = iota
	StatusPending
	StatusDeleted
	StatusPetitioned
)

// AllStatuses lists every status in a stable order.
var AllStatuses = []Status{StatusCurrent, StatusPending, StatusDeleted, StatusPetitioned}

func (s Status) String() string {
	switch s {
	case StatusCurrent:
		return "current"
	case StatusPending:
		return "pending"
	case StatusDeleted:
		return "deleted"
	case StatusPetitioned:
		return "petitioned"
	default:
		return "unknown"
	}
}

// Set is a set of tags. Sets handed out by a Manager's getters are cache
// snapshots and must not be modified.
type Set = mapset.Set[string]

// NewSet builds a tag set.
func NewSet(tags ...string) Set {
	return mapset.NewThreadUnsafeSet(tags...)
}

// SortedTags returns the members of s in lexical order.
func SortedTags(s Set) []string {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}

// StatusesToTags maps each status to the tags holding it for one service.
type StatusesToTags map[Status]Set

// NewStatusesToTags returns a map with an empty set for every status.
func NewStatusesToTags() StatusesToTags {
	stt := make(StatusesToTags, len(AllStatuses))
	for _, s := range AllStatuses {
		stt[s] = NewSet()
	}
	return stt
}

// Get returns the set for status, never nil.
func (stt StatusesToTags) Get(status Status) Set {
	if s, ok := stt[status]; ok && s != nil {
		return s
	}
	return NewSet()
}

// Clone deep-copies every status set.
func (stt StatusesToTags) Clone() StatusesToTags {
	out := NewStatusesToTags()
	for status, s := range stt {
		if s != nil {
			out[status] = s.Clone()
		}
	}
	return out
}

// ensure fills in any missing status sets in place.
func (stt StatusesToTags) ensure() StatusesToTags {
	for _, s := range AllStatuses {
		if stt[s] == nil {
			stt[s] = NewSet()
		}
	}
	return stt
}
