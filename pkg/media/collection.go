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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/metrics"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// Collection is a group of files shown as one media item. Its aggregate
// fields are recomputed from the children after every change and are never
// patched in place.
type Collection struct {
	*List
	tags         *tags.Manager
	locations    *LocationsManager
	ratings      *RatingsManager
	viewing      *ViewingStats
	size         int64
	duration     int
	id           ID
	sizeDefinite bool
	hasDuration  bool
	archive      bool
	inbox        bool
	hasAudio     bool
}

// NewCollection wraps results in a new collection with a fresh ID.
func NewCollection(env *Env, fileServiceKey services.Key, results []*Result) *Collection {
	c := &Collection{
		List: NewList(env, fileServiceKey, results),
		id:   NewID(),
	}
	c.recalcInternals()
	return c
}

func (c *Collection) recalcInternals() {
	children := c.sorted.Items()

	c.archive = false
	c.inbox = false
	c.hasAudio = false
	c.size = 0
	c.sizeDefinite = true
	c.duration = 0
	tms := make([]*tags.Manager, len(children))
	lms := make([]*LocationsManager, len(children))
	viewing := &ViewingStats{}

	for i, m := range children {
		c.archive = c.archive || m.HasArchive()
		c.inbox = c.inbox || m.HasInbox()
		c.hasAudio = c.hasAudio || m.HasAudio()
		c.size += m.Size()
		c.sizeDefinite = c.sizeDefinite && m.IsSizeDefinite()
		if m.HasDuration() {
			d, _ := m.Duration()
			c.duration += d
		}
		tms[i] = m.TagsManager()
		lms[i] = m.LocationsManager()
		viewing.add(m.ViewingStats())
	}
	c.hasDuration = c.duration > 0

	c.tags = tags.Merge(tms)
	if len(children) > 0 {
		c.ratings = children[0].RatingsManager()
	} else {
		c.ratings = NewRatingsManager(nil)
	}
	c.locations = intersectLocations(lms, c.clock())
	c.viewing = viewing

	metrics.ListRecalcsTotal.Inc()
}

func (c *Collection) clock() clockwork.Clock {
	if c.env == nil {
		return nil
	}
	return c.env.Clock
}

func (c *Collection) ID() ID                              { return c.id }
func (c *Collection) IsCollection() bool                  { return true }
func (c *Collection) Mime() files.Mime                    { return files.MimeApplicationCollection }
func (c *Collection) Size() int64                         { return c.size }
func (c *Collection) IsSizeDefinite() bool                { return c.sizeDefinite }
func (c *Collection) HasDuration() bool                   { return c.hasDuration }
func (c *Collection) HasAudio() bool                      { return c.hasAudio }
func (c *Collection) HasInbox() bool                      { return c.inbox }
func (c *Collection) HasArchive() bool                    { return c.archive }
func (c *Collection) IsImage() bool                       { return false }
func (c *Collection) IsStaticImage() bool                 { return false }
func (c *Collection) TagsManager() *tags.Manager          { return c.tags }
func (c *Collection) LocationsManager() *LocationsManager { return c.locations }
func (c *Collection) RatingsManager() *RatingsManager     { return c.ratings }
func (c *Collection) ViewingStats() *ViewingStats         { return c.viewing }

// Resolution of a collection is always unknown.
func (c *Collection) Resolution() (width, height int) { return 0, 0 }

// Timestamp of a collection is always unknown.
func (c *Collection) Timestamp(services.Key) (time.Time, bool) { return time.Time{}, false }

func (c *Collection) Duration() (int, bool) {
	return c.duration, c.hasDuration
}

func (c *Collection) NumFrames() (int, bool) {
	n := 0
	for _, m := range c.sorted.Items() {
		if f, ok := m.NumFrames(); ok {
			n += f
		}
	}
	return n, true
}

func (c *Collection) NumWords() (int, bool) {
	n := 0
	for _, m := range c.sorted.Items() {
		if w, ok := m.NumWords(); ok {
			n += w
		}
	}
	return n, true
}

func (c *Collection) HasImages() bool {
	for _, m := range c.sorted.Items() {
		if m.HasImages() {
			return true
		}
	}
	return false
}

// DisplayMedia is the first child's display media, or nil when empty.
func (c *Collection) DisplayMedia() *Singleton {
	first, err := c.First()
	if err != nil {
		return nil
	}
	return first.DisplayMedia()
}

// Hash is the display media's hash.
func (c *Collection) Hash() files.Hash {
	if d := c.DisplayMedia(); d != nil {
		return d.Hash()
	}
	return files.Hash{}
}

// SingletonsTagsManagers returns the tag manager of every file in the
// collection.
func (c *Collection) SingletonsTagsManagers() []*tags.Manager {
	return c.singletonsTagsManagers()
}

func (c *Collection) PrettyInfoLines(*Env) []string {
	return []string{
		humanize.Bytes(uint64(c.size)) + " " + files.MimeApplicationCollection.String() +
			" (" + humanize.Comma(int64(c.NumFiles())) + " files)",
	}
}

// AddMedia adds to the collection and recomputes its aggregates.
func (c *Collection) AddMedia(media []Media) []*Singleton {
	accepted := c.List.AddMedia(media)
	c.recalcInternals()
	return accepted
}

func (c *Collection) DeletePending(key services.Key) {
	c.List.DeletePending(key)
	c.recalcInternals()
}

func (c *Collection) ProcessContentUpdates(updates content.Updates) {
	c.List.ProcessContentUpdates(updates)
	c.recalcInternals()
}

func (c *Collection) ProcessServiceUpdates(updates content.ServiceUpdates) {
	c.List.ProcessServiceUpdates(updates)
	c.recalcInternals()
}

func (c *Collection) ResetService(key services.Key) {
	c.List.ResetService(key)
	c.recalcInternals()
}

func (c *Collection) RefreshFileInfo(ctx context.Context) error {
	if err := c.List.RefreshFileInfo(ctx); err != nil {
		return err
	}
	c.recalcInternals()
	return nil
}

// NewTagDisplayRules dirties the children's tag caches and the merged one.
func (c *Collection) NewTagDisplayRules() {
	c.List.NewTagDisplayRules()
	c.tags.NewTagDisplayRules()
}

// RecalcInternals recomputes the aggregates from the children.
func (c *Collection) RecalcInternals() {
	c.recalcInternals()
}
