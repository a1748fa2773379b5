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
	"strings"

	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/helpers/syncutil"
	"github.com/tagvault/tagvault-core/pkg/metrics"
	"github.com/tagvault/tagvault-core/pkg/services"
)

type cacheState int

const (
	cacheDirty cacheState = iota
	cacheClean
)

type layer map[services.Key]StatusesToTags

// Manager holds one file's (or one collection's) tags per service and
// status, plus the derived display layers built from them. Storage is the
// only write surface. Any write, or a display rule change, marks the whole
// cache dirty; the next read rebuilds every layer at once.
//
// A Manager is safe for concurrent use. Sets returned by its getters are
// snapshots of the current cache and must not be modified.
type Manager struct {
	resolver Resolver
	storage  layer
	views    map[DisplayType]layer
	state    cacheState
	mu       syncutil.Mutex
}

// NewManager takes ownership of storage. A nil storage is an empty manager.
func NewManager(resolver Resolver, storage map[services.Key]StatusesToTags) *Manager {
	s := make(layer, len(storage))
	for key, stt := range storage {
		if stt == nil {
			stt = NewStatusesToTags()
		}
		s[key] = stt.ensure()
	}
	return &Manager{
		resolver: resolver,
		storage:  s,
		state:    cacheDirty,
	}
}

// Merge builds a storage-only manager whose per-service current and pending
// sets are the unions of the inputs'. Deleted and petitioned tags are
// dropped. The resolver is taken from the first input.
func Merge(managers []*Manager) *Manager {
	var resolver Resolver
	haveResolver := false
	merged := make(map[services.Key]StatusesToTags)
	for _, m := range managers {
		if m == nil {
			continue
		}
		m.mu.Lock()
		if !haveResolver {
			resolver = m.resolver
			haveResolver = true
		}
		for key, stt := range m.storage {
			out, ok := merged[key]
			if !ok {
				out = NewStatusesToTags()
				merged[key] = out
			}
			out[StatusCurrent].Append(stt[StatusCurrent].ToSlice()...)
			out[StatusPending].Append(stt[StatusPending].ToSlice()...)
		}
		m.mu.Unlock()
	}
	return NewManager(resolver, merged)
}

func (m *Manager) storageFor(key services.Key) StatusesToTags {
	stt, ok := m.storage[key]
	if !ok {
		stt = NewStatusesToTags()
		m.storage[key] = stt
	}
	return stt
}

// ProcessContentUpdate applies a mappings update from service key. Updates
// of other data types are ignored. Pend on a current tag and petition on a
// non-current tag are silent no-ops.
func (m *Manager) ProcessContentUpdate(key services.Key, update content.Update) {
	if update.DataType() != content.DataMappings {
		return
	}
	tag := update.MappingsRow().Tag

	m.mu.Lock()
	defer m.mu.Unlock()

	stt := m.storageFor(key)
	current := stt[StatusCurrent]
	switch update.Action() {
	case content.ActionAdd:
		current.Add(tag)
		stt[StatusDeleted].Remove(tag)
		stt[StatusPending].Remove(tag)
	case content.ActionDelete:
		stt[StatusDeleted].Add(tag)
		current.Remove(tag)
		stt[StatusPetitioned].Remove(tag)
	case content.ActionPend:
		if !current.ContainsOne(tag) {
			stt[StatusPending].Add(tag)
		}
	case content.ActionRescindPend:
		stt[StatusPending].Remove(tag)
	case content.ActionPetition:
		if current.ContainsOne(tag) {
			stt[StatusPetitioned].Add(tag)
		}
	case content.ActionRescindPetition:
		stt[StatusPetitioned].Remove(tag)
	default:
		return
	}
	m.state = cacheDirty
}

// DeletePending drops every pending and petitioned tag of service key.
func (m *Manager) DeletePending(key services.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stt, ok := m.storage[key]
	if !ok {
		return
	}
	if stt[StatusPending].Cardinality() == 0 && stt[StatusPetitioned].Cardinality() == 0 {
		return
	}
	stt[StatusPending] = NewSet()
	stt[StatusPetitioned] = NewSet()
	m.state = cacheDirty
}

// ResetService forgets every tag of service key.
func (m *Manager) ResetService(key services.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.storage[key]; !ok {
		return
	}
	delete(m.storage, key)
	m.state = cacheDirty
}

// NewTagDisplayRules marks the cache dirty after sibling or display rules
// changed.
func (m *Manager) NewTagDisplayRules() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = cacheDirty
}

// Duplicate returns an independent deep copy sharing the resolver.
func (m *Manager) Duplicate() *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	storage := make(map[services.Key]StatusesToTags, len(m.storage))
	for key, stt := range m.storage {
		storage[key] = stt.Clone()
	}
	return NewManager(m.resolver, storage)
}

// ensureFresh rebuilds every display layer if the cache is dirty. Caller
// must hold m.mu.
func (m *Manager) ensureFresh() {
	if m.state == cacheClean {
		return
	}

	views := make(map[DisplayType]layer, len(AllDisplayTypes))

	stored := make(layer, len(m.storage))
	for key, stt := range m.storage {
		if key == services.CombinedTagKey {
			continue
		}
		stored[key] = stt.Clone()
	}
	views[DisplayStorage] = stored

	siblings := make(layer, len(stored))
	for key, stt := range stored {
		siblings[key] = m.resolver.collapse(key, stt)
	}
	views[DisplaySiblingsAndParents] = siblings

	for _, dt := range []DisplayType{DisplaySingleMedia, DisplaySelectionList} {
		filtered := make(layer, len(siblings))
		for key, stt := range siblings {
			if !m.resolver.filters(dt, key) {
				filtered[key] = stt
				continue
			}
			out := make(StatusesToTags, len(stt))
			for status, s := range stt {
				f := m.resolver.Display.FilterTags(dt, key, s)
				if f.Cardinality() == s.Cardinality() {
					out[status] = s
				} else {
					out[status] = f
				}
			}
			filtered[key] = out.ensure()
		}
		views[dt] = filtered
	}

	for _, l := range views {
		combined := NewStatusesToTags()
		for _, stt := range l {
			for status, s := range stt {
				combined[status].Append(s.ToSlice()...)
			}
		}
		l[services.CombinedTagKey] = combined
	}

	m.views = views
	m.state = cacheClean
	metrics.TagCacheRebuildsTotal.Inc()
}

func (m *Manager) view(key services.Key, displayType DisplayType) StatusesToTags {
	m.ensureFresh()
	if stt, ok := m.views[displayType][key]; ok {
		return stt
	}
	return NewStatusesToTags()
}

func (m *Manager) get(key services.Key, displayType DisplayType, status Status) Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view(key, displayType).Get(status)
}

// Current returns the current tags of service key in a display layer.
func (m *Manager) Current(key services.Key, displayType DisplayType) Set {
	return m.get(key, displayType, StatusCurrent)
}

// Pending returns the pending tags of service key in a display layer.
func (m *Manager) Pending(key services.Key, displayType DisplayType) Set {
	return m.get(key, displayType, StatusPending)
}

// Deleted returns the deleted tags of service key in a display layer.
func (m *Manager) Deleted(key services.Key, displayType DisplayType) Set {
	return m.get(key, displayType, StatusDeleted)
}

// Petitioned returns the petitioned tags of service key in a display layer.
func (m *Manager) Petitioned(key services.Key, displayType DisplayType) Set {
	return m.get(key, displayType, StatusPetitioned)
}

// CurrentAndPending returns a new set of current and pending tags.
func (m *Manager) CurrentAndPending(key services.Key, displayType DisplayType) Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return union(m.view(key, displayType))
}

func union(stt StatusesToTags) Set {
	out := NewSet(stt.Get(StatusCurrent).ToSlice()...)
	out.Append(stt.Get(StatusPending).ToSlice()...)
	return out
}

// StatusesToTags returns the status sets of service key in a display layer.
func (m *Manager) StatusesToTags(key services.Key, displayType DisplayType) StatusesToTags {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view(key, displayType)
}

// ServiceKeysToStatusesToTags returns every service of a display layer,
// including the combined tag service.
func (m *Manager) ServiceKeysToStatusesToTags(displayType DisplayType) map[services.Key]StatusesToTags {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureFresh()
	out := make(map[services.Key]StatusesToTags, len(m.views[displayType]))
	for key, stt := range m.views[displayType] {
		out[key] = stt
	}
	return out
}

// NamespaceSlice returns the sorted combined current and pending tags that
// belong to any of namespaces.
func (m *Manager) NamespaceSlice(namespaces []string, displayType DisplayType) []string {
	combined := m.CurrentAndPending(services.CombinedTagKey, displayType)
	out := make([]string, 0)
	combined.Each(func(tag string) bool {
		for _, ns := range namespaces {
			if strings.HasPrefix(tag, ns+":") {
				out = append(out, tag)
				break
			}
		}
		return false
	})
	slices.Sort(out)
	return out
}

// ComparableNamespaceSlice returns, per namespace in order, the natural-order
// keys of the subtags the media has in that namespace.
func (m *Manager) ComparableNamespaceSlice(namespaces []string, displayType DisplayType) [][]Sortable {
	combined := m.CurrentAndPending(services.CombinedTagKey, displayType)
	bySpace := make(map[string][]Sortable, len(namespaces))
	combined.Each(func(tag string) bool {
		ns, sub := SplitTag(tag)
		bySpace[ns] = append(bySpace[ns], ConvertTagToSortable(sub))
		return false
	})
	out := make([][]Sortable, len(namespaces))
	for i, ns := range namespaces {
		s := bySpace[ns]
		slices.SortFunc(s, CompareSortable)
		out[i] = s
	}
	return out
}

// HasTag reports whether the combined service has tag current or pending.
func (m *Manager) HasTag(tag string, displayType DisplayType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	stt := m.view(services.CombinedTagKey, displayType)
	return stt.Get(StatusCurrent).ContainsOne(tag) || stt.Get(StatusPending).ContainsOne(tag)
}

// NumTags adds up the current and/or pending tag counts of service key.
func (m *Manager) NumTags(key services.Key, displayType DisplayType, includeCurrent, includePending bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	stt := m.view(key, displayType)
	n := 0
	if includeCurrent {
		n += stt.Get(StatusCurrent).Cardinality()
	}
	if includePending {
		n += stt.Get(StatusPending).Cardinality()
	}
	return n
}
