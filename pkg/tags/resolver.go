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

	"github.com/tagvault/tagvault-core/pkg/helpers/syncutil"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// DisplayType selects one layer of a Manager's display cache.
type DisplayType int

const (
	// DisplayStorage is the raw stored tags.
	DisplayStorage DisplayType = iota
	// DisplaySiblingsAndParents is storage with sibling rules applied.
	DisplaySiblingsAndParents
	// DisplaySingleMedia is what a single-media view shows.
	DisplaySingleMedia
	// DisplaySelectionList is what a selection tag list shows.
	DisplaySelectionList
)

// AllDisplayTypes lists the cache layers in build order.
var AllDisplayTypes = []DisplayType{
	DisplayStorage,
	DisplaySiblingsAndParents,
	DisplaySingleMedia,
	DisplaySelectionList,
}

func (d DisplayType) String() string {
	switch d {
	case DisplayStorage:
		return "storage"
	case DisplaySiblingsAndParents:
		return "siblings_and_parents"
	case DisplaySingleMedia:
		return "single_media"
	case DisplaySelectionList:
		return "selection_list"
	default:
		return "unknown"
	}
}

// SiblingCollapser maps a service's storage tags onto their ideal siblings.
// Implementations return new sets and leave the input untouched.
type SiblingCollapser interface {
	CollapseStatusesToTags(key services.Key, stt StatusesToTags) StatusesToTags
}

// DisplayFilter removes tags hidden in a display context.
type DisplayFilter interface {
	FiltersTags(displayType DisplayType, key services.Key) bool
	FilterTags(displayType DisplayType, key services.Key, tags Set) Set
}

// SiblingLister reports every tag that shares a tag's ideal sibling.
type SiblingLister interface {
	AllSiblings(key services.Key, tag string) []string
}

// Resolver bundles the collaborators a Manager needs to build its display
// layers. Nil fields behave as identity.
type Resolver struct {
	Siblings SiblingCollapser
	Display  DisplayFilter
}

func (r Resolver) collapse(key services.Key, stt StatusesToTags) StatusesToTags {
	if r.Siblings == nil {
		return stt.Clone()
	}
	return r.Siblings.CollapseStatusesToTags(key, stt).ensure()
}

func (r Resolver) filters(displayType DisplayType, key services.Key) bool {
	return r.Display != nil && r.Display.FiltersTags(displayType, key)
}

// SiblingRules is an in-memory sibling store: per tag service, a map of bad
// tag to better tag. Chains are followed to their end and cycles stop at the
// first repeated tag. Pairs under services.CombinedTagKey apply to every
// service that has no pair of its own for a tag.
type SiblingRules struct {
	pairs map[services.Key]map[string]string
	mu    syncutil.RWMutex
}

func NewSiblingRules() *SiblingRules {
	return &SiblingRules{pairs: make(map[services.Key]map[string]string)}
}

// AddPair records that bad should display as good on service key.
func (r *SiblingRules) AddPair(key services.Key, bad, good string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.pairs[key]
	if !ok {
		m = make(map[string]string)
		r.pairs[key] = m
	}
	m[bad] = good
}

// SetPairs replaces every pair for service key.
func (r *SiblingRules) SetPairs(key services.Key, pairs map[string]string) {
	m := make(map[string]string, len(pairs))
	for bad, good := range pairs {
		m[bad] = good
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[key] = m
}

func (r *SiblingRules) next(key services.Key, tag string) (string, bool) {
	if m, ok := r.pairs[key]; ok {
		if good, ok := m[tag]; ok {
			return good, true
		}
	}
	if key != services.CombinedTagKey {
		if good, ok := r.pairs[services.CombinedTagKey][tag]; ok {
			return good, true
		}
	}
	return "", false
}

func (r *SiblingRules) ideal(key services.Key, tag string) string {
	seen := map[string]struct{}{tag: {}}
	for {
		good, ok := r.next(key, tag)
		if !ok {
			return tag
		}
		if _, loop := seen[good]; loop {
			return tag
		}
		seen[good] = struct{}{}
		tag = good
	}
}

// Ideal returns the tag that tag displays as on service key.
func (r *SiblingRules) Ideal(key services.Key, tag string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ideal(key, tag)
}

// CollapseStatusesToTags implements SiblingCollapser.
func (r *SiblingRules) CollapseStatusesToTags(key services.Key, stt StatusesToTags) StatusesToTags {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewStatusesToTags()
	for status, s := range stt {
		if s == nil {
			continue
		}
		collapsed := NewSet()
		s.Each(func(tag string) bool {
			collapsed.Add(r.ideal(key, tag))
			return false
		})
		out[status] = collapsed
	}
	return out
}

// AllSiblings implements SiblingLister. The result includes tag itself and
// is sorted.
func (r *SiblingRules) AllSiblings(key services.Key, tag string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target := r.ideal(key, tag)
	found := NewSet(tag, target)
	for _, k := range []services.Key{key, services.CombinedTagKey} {
		for bad := range r.pairs[k] {
			if r.ideal(key, bad) == target {
				found.Add(bad)
			}
		}
	}
	out := found.ToSlice()
	slices.Sort(out)
	return out
}

type blacklist struct {
	namespaces Set
	tags       Set
}

func (b blacklist) hides(tag string) bool {
	if b.tags.ContainsOne(tag) {
		return true
	}
	ns, _ := SplitTag(tag)
	return b.namespaces.ContainsOne(ns)
}

type displayKey struct {
	key         services.Key
	displayType DisplayType
}

// DisplayRules is an in-memory display filter store. Each display type and
// service can hide whole namespaces (the empty namespace means unnamespaced
// tags) and exact tags.
type DisplayRules struct {
	rules map[displayKey]blacklist
	mu    syncutil.RWMutex
}

func NewDisplayRules() *DisplayRules {
	return &DisplayRules{rules: make(map[displayKey]blacklist)}
}

func (r *DisplayRules) entry(displayType DisplayType, key services.Key) blacklist {
	dk := displayKey{displayType: displayType, key: key}
	b, ok := r.rules[dk]
	if !ok {
		b = blacklist{namespaces: NewSet(), tags: NewSet()}
		r.rules[dk] = b
	}
	return b
}

// HideNamespace hides every tag in namespace for the display type and
// service.
func (r *DisplayRules) HideNamespace(displayType DisplayType, key services.Key, namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(displayType, key).namespaces.Add(namespace)
}

// HideTag hides one exact tag for the display type and service.
func (r *DisplayRules) HideTag(displayType DisplayType, key services.Key, tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(displayType, key).tags.Add(tag)
}

// Clear drops every rule.
func (r *DisplayRules) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[displayKey]blacklist)
}

// FiltersTags implements DisplayFilter.
func (r *DisplayRules) FiltersTags(displayType DisplayType, key services.Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.rules[displayKey{displayType: displayType, key: key}]
	return ok && (b.namespaces.Cardinality() > 0 || b.tags.Cardinality() > 0)
}

// FilterTags implements DisplayFilter. It returns a new set.
func (r *DisplayRules) FilterTags(displayType DisplayType, key services.Key, tags Set) Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewSet()
	b, ok := r.rules[displayKey{displayType: displayType, key: key}]
	tags.Each(func(tag string) bool {
		if !ok || !b.hides(tag) {
			out.Add(tag)
		}
		return false
	})
	return out
}
