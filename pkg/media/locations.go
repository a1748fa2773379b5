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
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jonboulle/clockwork"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// KeySet is a set of service keys.
type KeySet = mapset.Set[services.Key]

func newKeySet(keys ...services.Key) KeySet {
	return mapset.NewThreadUnsafeSet(keys...)
}

var localLocations = newKeySet(services.LocalFileKey, services.TrashKey, services.CombinedLocalFileKey)

// Locations seeds a LocationsManager.
type Locations struct {
	Timestamps   map[services.Key]time.Time
	FileModified time.Time
	Current      []services.Key
	Deleted      []services.Key
	Pending      []services.Key
	Petitioned   []services.Key
	URLs         []string
	Inbox        bool
}

// LocationsManager tracks which file services a file is current, deleted,
// pending or petitioned on, plus its inbox flag, known urls and timestamps.
// No service key is ever both current and deleted, or current and pending.
type LocationsManager struct {
	clock        clockwork.Clock
	current      KeySet
	deleted      KeySet
	pending      KeySet
	petitioned   KeySet
	urls         mapset.Set[string]
	timestamps   map[services.Key]time.Time
	fileModified time.Time
	inbox        bool
}

// NewLocationsManager builds a manager from l. A nil clock is the real
// clock.
func NewLocationsManager(l Locations, clock clockwork.Clock) *LocationsManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	m := &LocationsManager{
		clock:        clock,
		current:      newKeySet(l.Current...),
		deleted:      newKeySet(l.Deleted...),
		pending:      newKeySet(l.Pending...),
		petitioned:   newKeySet(l.Petitioned...),
		urls:         mapset.NewThreadUnsafeSet(l.URLs...),
		timestamps:   make(map[services.Key]time.Time, len(l.Timestamps)),
		fileModified: l.FileModified,
		inbox:        l.Inbox,
	}
	for k, t := range l.Timestamps {
		m.timestamps[k] = t
	}
	return m
}

func (m *LocationsManager) stamp(key services.Key) {
	m.timestamps[key] = m.clock.Now()
}

// setCurrent is the only way a key enters current.
func (m *LocationsManager) setCurrent(key services.Key) {
	m.current.Add(key)
	m.deleted.Remove(key)
	m.pending.Remove(key)
}

// ProcessContentUpdate applies a files or urls update from service key.
func (m *LocationsManager) ProcessContentUpdate(key services.Key, update content.Update) {
	switch update.DataType() {
	case content.DataFiles:
		m.processFiles(key, update.Action())
	case content.DataURLs:
		row := update.URLsRow()
		switch update.Action() {
		case content.ActionAdd:
			m.urls.Append(row.URLs...)
		case content.ActionDelete:
			m.urls.RemoveAll(row.URLs...)
		default:
		}
	default:
	}
}

func (m *LocationsManager) processFiles(key services.Key, action content.Action) {
	switch action {
	case content.ActionArchive:
		m.inbox = false
	case content.ActionInbox:
		m.inbox = true
	case content.ActionAdd:
		m.setCurrent(key)
		if key == services.LocalFileKey {
			m.current.Remove(services.TrashKey)
			m.pending.Remove(services.CombinedLocalFileKey)
			if !m.current.ContainsOne(services.CombinedLocalFileKey) {
				m.inbox = true
				m.setCurrent(services.CombinedLocalFileKey)
				m.stamp(services.CombinedLocalFileKey)
			}
		}
		m.stamp(key)
	case content.ActionDelete:
		m.deleted.Add(key)
		m.current.Remove(key)
		m.petitioned.Remove(key)
		switch key {
		case services.LocalFileKey:
			m.setCurrent(services.TrashKey)
			m.stamp(services.TrashKey)
		case services.TrashKey:
			m.inbox = false
			m.current.Remove(services.CombinedLocalFileKey)
			m.deleted.Add(services.CombinedLocalFileKey)
		default:
		}
	case content.ActionUndelete:
		m.current.Remove(services.TrashKey)
		m.setCurrent(services.LocalFileKey)
	case content.ActionPend:
		if !m.current.ContainsOne(key) {
			m.pending.Add(key)
		}
	case content.ActionPetition:
		if m.current.ContainsOne(key) && !m.deleted.ContainsOne(key) {
			m.petitioned.Add(key)
		}
	case content.ActionRescindPend:
		m.pending.Remove(key)
	case content.ActionRescindPetition:
		m.petitioned.Remove(key)
	default:
	}
}

// DeletePending forgets pending and petitioned state for service key.
func (m *LocationsManager) DeletePending(key services.Key) {
	m.pending.Remove(key)
	m.petitioned.Remove(key)
}

// ResetService forgets every status of service key.
func (m *LocationsManager) ResetService(key services.Key) {
	m.current.Remove(key)
	m.deleted.Remove(key)
	m.pending.Remove(key)
	m.petitioned.Remove(key)
}

// Duplicate returns an independent copy sharing the clock.
func (m *LocationsManager) Duplicate() *LocationsManager {
	return NewLocationsManager(m.snapshot(), m.clock)
}

func (m *LocationsManager) snapshot() Locations {
	return Locations{
		Current:      m.current.ToSlice(),
		Deleted:      m.deleted.ToSlice(),
		Pending:      m.pending.ToSlice(),
		Petitioned:   m.petitioned.ToSlice(),
		URLs:         m.urls.ToSlice(),
		Timestamps:   m.timestamps,
		FileModified: m.fileModified,
		Inbox:        m.inbox,
	}
}

// Current returns a copy of the current set.
func (m *LocationsManager) Current() KeySet { return m.current.Clone() }

// Deleted returns a copy of the deleted set.
func (m *LocationsManager) Deleted() KeySet { return m.deleted.Clone() }

// Pending returns a copy of the pending set.
func (m *LocationsManager) Pending() KeySet { return m.pending.Clone() }

// Petitioned returns a copy of the petitioned set.
func (m *LocationsManager) Petitioned() KeySet { return m.petitioned.Clone() }

func (m *LocationsManager) CurrentRemote() KeySet    { return m.current.Difference(localLocations) }
func (m *LocationsManager) DeletedRemote() KeySet    { return m.deleted.Difference(localLocations) }
func (m *LocationsManager) PendingRemote() KeySet    { return m.pending.Difference(localLocations) }
func (m *LocationsManager) PetitionedRemote() KeySet { return m.petitioned.Difference(localLocations) }

// IsCurrent reports whether the file is current on service key.
func (m *LocationsManager) IsCurrent(key services.Key) bool {
	return m.current.ContainsOne(key)
}

// Inbox reports the inbox flag.
func (m *LocationsManager) Inbox() bool { return m.inbox }

// Timestamp returns when the file became current on service key.
func (m *LocationsManager) Timestamp(key services.Key) (time.Time, bool) {
	t, ok := m.timestamps[key]
	return t, ok
}

// FileModifiedTimestamp returns the file's modified time, if known.
func (m *LocationsManager) FileModifiedTimestamp() (time.Time, bool) {
	return m.fileModified, !m.fileModified.IsZero()
}

// URLs returns the known urls, sorted.
func (m *LocationsManager) URLs() []string {
	out := m.urls.ToSlice()
	slices.Sort(out)
	return out
}

func (m *LocationsManager) IsDownloading() bool {
	return m.pending.ContainsOne(services.CombinedLocalFileKey)
}

func (m *LocationsManager) IsLocal() bool {
	return m.current.ContainsOne(services.CombinedLocalFileKey)
}

func (m *LocationsManager) IsRemote() bool {
	return !m.IsLocal()
}

func (m *LocationsManager) IsTrashed() bool {
	return m.current.ContainsOne(services.TrashKey)
}

// ShouldIdeallyHaveThumbnail reports whether the file is current anywhere.
func (m *LocationsManager) ShouldIdeallyHaveThumbnail() bool {
	return m.current.Cardinality() > 0
}

// RemoteLocationStrings names the remote file services the file is on,
// sorted by service name. Pending entries end in " (+)" and petitioned ones
// in " (-)".
func (m *LocationsManager) RemoteLocationStrings(reg services.Registry) []string {
	current := m.CurrentRemote()
	pending := m.PendingRemote()
	petitioned := m.PetitionedRemote()

	out := make([]string, 0)
	for _, svc := range reg.ServicesOfType(services.TypeFileRepository, services.TypeIPFS) {
		switch {
		case pending.ContainsOne(svc.Key):
			out = append(out, svc.Name+" (+)")
		case current.ContainsOne(svc.Key) && petitioned.ContainsOne(svc.Key):
			out = append(out, svc.Name+" (-)")
		case current.ContainsOne(svc.Key):
			out = append(out, svc.Name)
		}
	}
	return out
}

// intersectLocations builds the locations every one of managers shares.
// Inbox, urls and timestamps are not carried.
func intersectLocations(managers []*LocationsManager, clock clockwork.Clock) *LocationsManager {
	out := NewLocationsManager(Locations{}, clock)
	if len(managers) == 0 {
		return out
	}
	out.current = managers[0].current.Clone()
	out.deleted = managers[0].deleted.Clone()
	out.pending = managers[0].pending.Clone()
	out.petitioned = managers[0].petitioned.Clone()
	for _, lm := range managers[1:] {
		out.current = out.current.Intersect(lm.current)
		out.deleted = out.deleted.Intersect(lm.deleted)
		out.pending = out.pending.Intersect(lm.pending)
		out.petitioned = out.petitioned.Intersect(lm.petitioned)
	}
	return out
}
