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
	"context"
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/metrics"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// ErrNoReader is returned when a refresh needs a ResultReader and the Env
// has none.
var ErrNoReader = errors.New("no result reader configured")

// List is an ordered set of media bound to one file service: the files of a
// search page, or the children of a collection. Files are unique by hash.
type List struct {
	env              *Env
	hashes           files.HashSet
	singletonByHash  map[files.Hash]*Singleton
	collectionByHash map[files.Hash]*Collection
	singletons       map[ID]*Singleton
	collections      map[ID]*Collection
	sorted           *SortedList[Media]
	fileServiceKey   services.Key
	collect          Collect
	sort             Sort
}

// NewList wraps each result in a singleton. Results repeating an earlier
// hash are dropped.
func NewList(env *Env, fileServiceKey services.Key, results []*Result) *List {
	seen := files.NewHashSet()
	media := make([]Media, 0, len(results))
	singletons := make(map[ID]*Singleton, len(results))
	for _, r := range results {
		if seen.Has(r.Hash()) {
			continue
		}
		seen.Add(r.Hash())
		s := NewSingleton(r)
		singletons[s.ID()] = s
		media = append(media, s)
	}

	l := &List{
		env:            env,
		fileServiceKey: fileServiceKey,
		singletons:     singletons,
		collections:    make(map[ID]*Collection),
		sorted:         NewSortedList(media),
		sort:           Sort{Type: SortFilesize, Asc: true},
	}
	l.recalcHashes()
	return l
}

// FileServiceKey is the file service this list views.
func (l *List) FileServiceKey() services.Key { return l.fileServiceKey }

// Len counts files, looking inside collections.
func (l *List) Len() int {
	n := len(l.singletons)
	for _, c := range l.collections {
		n += c.Len()
	}
	return n
}

func (l *List) recalcHashes() {
	l.hashes = files.NewHashSet()
	l.singletonByHash = make(map[files.Hash]*Singleton, len(l.singletons))
	l.collectionByHash = make(map[files.Hash]*Collection)
	for _, c := range l.collections {
		for h := range c.hashes {
			l.hashes.Add(h)
			l.collectionByHash[h] = c
		}
	}
	for _, s := range l.singletons {
		l.hashes.Add(s.Hash())
		l.singletonByHash[s.Hash()] = s
	}
}

// orderedCollections returns the child collections in display order.
func (l *List) orderedCollections() []*Collection {
	out := make([]*Collection, 0, len(l.collections))
	for _, m := range l.sorted.Items() {
		if c, ok := m.(*Collection); ok {
			out = append(out, c)
		}
	}
	return out
}

func (l *List) removeByHashes(hashes files.HashSet) {
	if l.hashes.Disjoint(hashes) {
		return
	}

	deadSingletons := make([]Media, 0)
	for h := range hashes {
		if s, ok := l.singletonByHash[h]; ok {
			deadSingletons = append(deadSingletons, s)
		}
	}

	// a collection may already have emptied itself while processing the
	// same update
	deadCollections := make([]Media, 0)
	for _, c := range l.orderedCollections() {
		if !c.hashes.Disjoint(hashes) {
			c.List.removeByHashes(hashes)
			c.recalcInternals()
		}
		if c.HasNoMedia() {
			deadCollections = append(deadCollections, c)
		}
	}

	l.removeDirectly(deadSingletons, deadCollections)
}

func (l *List) removeDirectly(singletons, collections []Media) {
	for _, m := range singletons {
		delete(l.singletons, m.ID())
	}
	for _, m := range collections {
		delete(l.collections, m.ID())
	}
	if err := l.sorted.Remove(slices.Concat(singletons, collections)...); err != nil {
		// membership maps and the sorted list disagree; rebuild from the maps
		log.Error().Err(err).Msg("media list out of sync, rebuilding order")
		l.rebuildSorted()
	}
	l.recalcHashes()
}

func (l *List) rebuildSorted() {
	items := make([]Media, 0, len(l.singletons)+len(l.collections))
	for _, m := range l.sorted.Items() {
		_, isSingleton := l.singletons[m.ID()]
		_, isCollection := l.collections[m.ID()]
		if isSingleton || isCollection {
			items = append(items, m)
		}
	}
	l.sorted = NewSortedList(items)
}

func flatten(media []Media) []*Singleton {
	out := make([]*Singleton, 0, len(media))
	for _, m := range media {
		switch v := m.(type) {
		case *Singleton:
			out = append(out, v)
		case *Collection:
			out = append(out, v.FlatMedia()...)
		}
	}
	return out
}

// AddMedia flattens media to singletons and appends those whose hash is
// new to the list. It returns the accepted singletons.
func (l *List) AddMedia(media []Media) []*Singleton {
	accepted := make([]*Singleton, 0, len(media))
	added := make([]Media, 0, len(media))
	for _, s := range flatten(media) {
		if l.hashes.Has(s.Hash()) {
			continue
		}
		l.hashes.Add(s.Hash())
		l.singletonByHash[s.Hash()] = s
		l.singletons[s.ID()] = s
		accepted = append(accepted, s)
		added = append(added, s)
	}
	l.sorted.Append(added...)
	return accepted
}

// Collect regroups every file of the list by c. A nil c reuses the last
// config. Files inside existing collections get new singletons.
func (l *List) Collect(c *Collect) {
	if c != nil {
		l.collect = *c
	}

	flat := make([]*Singleton, 0, l.Len())
	for _, m := range l.sorted.Items() {
		switch v := m.(type) {
		case *Singleton:
			flat = append(flat, v)
		case *Collection:
			for _, r := range v.GenerateResults(GenerateOptions{}) {
				flat = append(flat, NewSingleton(r))
			}
		}
	}

	l.singletons = make(map[ID]*Singleton)
	l.collections = make(map[ID]*Collection)
	items := make([]Media, 0, len(flat))

	if !l.collect.DoesACollect() {
		for _, s := range flat {
			l.singletons[s.ID()] = s
			items = append(items, s)
		}
	} else {
		for _, g := range l.collect.group(flat) {
			if g.key == "" && !l.collect.CollectUnmatched {
				for _, s := range g.media {
					l.singletons[s.ID()] = s
					items = append(items, s)
				}
				continue
			}
			results := make([]*Result, len(g.media))
			for i, s := range g.media {
				results[i] = s.Result()
			}
			coll := NewCollection(l.env, l.fileServiceKey, results)
			l.collections[coll.ID()] = coll
			items = append(items, coll)
		}
	}

	l.sorted = NewSortedList(items)
	l.recalcHashes()
}

// DeletePending lets child collections pick up dropped pending state.
func (l *List) DeletePending(key services.Key) {
	for _, c := range l.orderedCollections() {
		c.DeletePending(key)
	}
}

// GenerateOptions filters GenerateResults. Zero fields do not filter.
type GenerateOptions struct {
	Selected       mapset.Set[ID]
	HasLocation    services.Key
	Unrated        services.Key
	Discriminant   Discriminant
	ForMediaViewer bool
}

// GenerateResults returns the results of the list's files in display order.
func (l *List) GenerateResults(opts GenerateOptions) []*Result {
	out := make([]*Result, 0, len(l.hashes))
	for _, m := range l.sorted.Items() {
		if opts.HasLocation != "" && !m.LocationsManager().IsCurrent(opts.HasLocation) {
			continue
		}
		if opts.Selected != nil && !opts.Selected.ContainsOne(m.ID()) {
			continue
		}

		switch v := m.(type) {
		case *Collection:
			// selection does not apply inside a collection
			out = append(out, v.GenerateResults(GenerateOptions{
				HasLocation:    opts.HasLocation,
				Unrated:        opts.Unrated,
				Discriminant:   opts.Discriminant,
				ForMediaViewer: true,
			})...)
		case *Singleton:
			if !opts.Discriminant.matches(v.HasInbox(), v.LocationsManager()) {
				continue
			}
			if opts.Unrated != "" {
				if _, rated := v.RatingsManager().Rating(opts.Unrated); rated {
					continue
				}
			}
			if opts.ForMediaViewer && l.env != nil && l.env.HiddenViewerMimes[v.Mime()] {
				continue
			}
			out = append(out, v.Result())
		}
	}
	return out
}

// APIInfo is the list summary served to API clients.
type APIInfo struct {
	HashIDs  []int64  `json:"hash_ids"`
	Hashes   []string `json:"hashes,omitempty"`
	NumFiles int      `json:"num_files"`
}

// APIInfo summarises the list. Simple info leaves out the hex hashes.
func (l *List) APIInfo(simple bool) APIInfo {
	flat := l.FlatMedia()
	info := APIInfo{
		NumFiles: l.NumFiles(),
		HashIDs:  make([]int64, len(flat)),
	}
	for i, s := range flat {
		info.HashIDs[i] = s.Result().HashID()
	}
	if !simple {
		for _, h := range l.OrderedHashes(HashFilter{}) {
			info.Hashes = append(info.Hashes, h.Hex())
		}
	}
	return info
}

// First returns the first media in display order.
func (l *List) First() (Media, error) {
	if l.sorted.Len() == 0 {
		return nil, ErrMediaMissing
	}
	return l.sorted.At(0), nil
}

// Last returns the last media in display order.
func (l *List) Last() (Media, error) {
	if l.sorted.Len() == 0 {
		return nil, ErrMediaMissing
	}
	return l.sorted.At(l.sorted.Len() - 1), nil
}

// MediaIndex returns the display position of m.
func (l *List) MediaIndex(m Media) (int, error) {
	if m == nil {
		return 0, ErrMediaMissing
	}
	i, err := l.sorted.Index(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMediaMissing, err)
	}
	return i, nil
}

// Next returns the media after m, wrapping to the first.
func (l *List) Next(m Media) (Media, error) {
	i, err := l.MediaIndex(m)
	if err != nil {
		return nil, err
	}
	if i+1 == l.sorted.Len() {
		return l.First()
	}
	return l.sorted.At(i + 1), nil
}

// Previous returns the media before m, wrapping to the last.
func (l *List) Previous(m Media) (Media, error) {
	i, err := l.MediaIndex(m)
	if err != nil {
		return nil, err
	}
	if i == 0 {
		return l.Last()
	}
	return l.sorted.At(i - 1), nil
}

// FlatMedia returns every singleton, expanding collections, in display
// order.
func (l *List) FlatMedia() []*Singleton {
	return flatten(l.sorted.Items())
}

// Hashes returns the hashes passing f.
func (l *List) Hashes(f HashFilter) files.HashSet {
	out := files.NewHashSet()
	if f.IsZero() {
		for h := range l.hashes {
			out.Add(h)
		}
		return out
	}
	for _, m := range l.sorted.Items() {
		for h := range m.Hashes(f) {
			out.Add(h)
		}
	}
	return out
}

// OrderedHashes returns the hashes passing f in display order.
func (l *List) OrderedHashes(f HashFilter) []files.Hash {
	out := make([]files.Hash, 0, len(l.hashes))
	for _, m := range l.sorted.Items() {
		out = append(out, m.OrderedHashes(f)...)
	}
	return out
}

func (l *List) NumFiles() int { return len(l.hashes) }

func (l *List) NumInbox() int {
	n := 0
	for _, m := range l.sorted.Items() {
		n += m.NumInbox()
	}
	return n
}

func (l *List) NumArchive() int {
	n := 0
	for _, s := range l.singletons {
		if !s.HasInbox() {
			n++
		}
	}
	for _, c := range l.collections {
		n += c.NumArchive()
	}
	return n
}

// SortedMedia returns the top-level media in display order. Callers must
// not modify the slice.
func (l *List) SortedMedia() []Media { return l.sorted.Items() }

func (l *List) HasAnyOfTheseHashes(hashes files.HashSet) bool {
	return !l.hashes.Disjoint(hashes)
}

// HasMedia reports whether m is in the list or any of its collections.
func (l *List) HasMedia(m Media) bool {
	if m == nil {
		return false
	}
	if _, ok := l.singletons[m.ID()]; ok {
		return true
	}
	if _, ok := l.collections[m.ID()]; ok {
		return true
	}
	for _, c := range l.collections {
		if c.HasMedia(m) {
			return true
		}
	}
	return false
}

func (l *List) HasNoMedia() bool { return l.sorted.Len() == 0 }

func sortedServiceKeys[V any](m map[services.Key]V) []services.Key {
	keys := make([]services.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// shouldRemoveOnDelete decides whether a file delete from service key takes
// the file out of this list.
func (l *List) shouldRemoveOnDelete(key services.Key) bool {
	var localDomains []services.Key
	if l.env != nil && l.env.Registry != nil {
		localDomains = services.LocalFileDomainKeys(l.env.Registry)
	}
	allLocal := append(slices.Clone(localDomains), services.CombinedLocalFileKey, services.TrashKey)

	physicallyDeleted := key == services.TrashKey || key == services.CombinedLocalFileKey
	trashed := slices.Contains(localDomains, key)
	deletedFromOurDomain := key == l.fileServiceKey
	removeTrashed := l.env != nil && l.env.RemoveTrashedFiles

	physicallyDeletedAndLocalView := physicallyDeleted && slices.Contains(allLocal, l.fileServiceKey)
	userSaysRemoveTrashed := removeTrashed && trashed && deletedFromOurDomain
	deletedFromRepoAndRepoView := !slices.Contains(allLocal, key) && deletedFromOurDomain

	return physicallyDeletedAndLocalView || userSaysRemoveTrashed || deletedFromRepoAndRepoView
}

// ProcessContentUpdates applies the structural effects of updates: child
// collections first, then removal of files deleted out of this view. The
// results themselves are updated by whoever owns them.
func (l *List) ProcessContentUpdates(updates content.Updates) {
	for _, c := range l.orderedCollections() {
		c.ProcessContentUpdates(updates)
	}
	for _, key := range sortedServiceKeys(updates) {
		for _, u := range updates[key] {
			if u.DataType() != content.DataFiles || u.Action() != content.ActionDelete {
				continue
			}
			if l.shouldRemoveOnDelete(key) {
				l.removeByHashes(files.NewHashSet(u.Hashes()...))
			}
		}
	}
}

// ProcessServiceUpdates applies service-wide updates.
func (l *List) ProcessServiceUpdates(updates content.ServiceUpdates) {
	for _, key := range sortedServiceKeys(updates) {
		for _, u := range updates[key] {
			switch u.Action {
			case content.ServiceDeletePending:
				l.DeletePending(key)
			case content.ServiceReset:
				l.ResetService(key)
			}
			metrics.ServiceUpdatesTotal.WithLabelValues(u.Action.String()).Inc()
		}
	}
}

// ResetService empties the list when its own file service is reset.
func (l *List) ResetService(key services.Key) {
	if key == l.fileServiceKey {
		singletons := make([]Media, 0, len(l.singletons))
		collections := make([]Media, 0, len(l.collections))
		for _, m := range l.sorted.Items() {
			if m.IsCollection() {
				collections = append(collections, m)
			} else {
				singletons = append(singletons, m)
			}
		}
		l.removeDirectly(singletons, collections)
		return
	}
	for _, c := range l.orderedCollections() {
		c.ResetService(key)
	}
}

// Sort orders child collections by s, then this list by the fallback sort
// and then by s. Both passes are stable so ties keep fallback order. A nil
// s reuses the last sort.
func (l *List) Sort(s *Sort) {
	for _, c := range l.orderedCollections() {
		c.Sort(s)
	}
	if s != nil {
		l.sort = *s
	}
	if l.env != nil {
		keyFn, reverse := l.env.FallbackSort.KeyFunc(l.env, l.fileServiceKey)
		l.sorted.SortStable(keyFn, reverse)
	}
	keyFn, reverse := l.sort.KeyFunc(l.env, l.fileServiceKey)
	l.sorted.SortStable(keyFn, reverse)
}

// CurrentSort returns the last requested sort.
func (l *List) CurrentSort() Sort { return l.sort }

// CurrentCollect returns the last collect config.
func (l *List) CurrentCollect() Collect { return l.collect }

// NewTagDisplayRules dirties every tag cache in the list.
func (l *List) NewTagDisplayRules() {
	for _, m := range l.sorted.Items() {
		switch v := m.(type) {
		case *Singleton:
			v.TagsManager().NewTagDisplayRules()
		case *Collection:
			v.NewTagDisplayRules()
		}
	}
}

// RefreshFileInfo reloads every file's result from the Env's reader.
// Files the reader does not return keep their old result.
func (l *List) RefreshFileInfo(ctx context.Context) error {
	if l.env == nil || l.env.Reader == nil {
		return ErrNoReader
	}
	flat := l.FlatMedia()
	hashes := make([]files.Hash, len(flat))
	for i, s := range flat {
		hashes[i] = s.Hash()
	}
	results, err := l.env.Reader.ReadResults(ctx, hashes)
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}
	byHash := make(map[files.Hash]*Result, len(results))
	for _, r := range results {
		byHash[r.Hash()] = r
	}
	for _, s := range flat {
		if r, ok := byHash[s.Hash()]; ok {
			s.result = r
		}
	}
	l.recalcCollections()
	return nil
}

func (l *List) recalcCollections() {
	for _, c := range l.orderedCollections() {
		c.List.recalcCollections()
		c.recalcInternals()
	}
}

// singletonsTagsManagers collects the tag managers of every file.
func (l *List) singletonsTagsManagers() []*tags.Manager {
	flat := l.FlatMedia()
	out := make([]*tags.Manager, len(flat))
	for i, s := range flat {
		out[i] = s.TagsManager()
	}
	return out
}
