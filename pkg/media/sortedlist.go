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
	"fmt"
	"slices"

	"github.com/tagvault/tagvault-core/pkg/services"
)

// Identified is anything with a media ID.
type Identified interface {
	ID() ID
}

// SortedList is an ordered slice with an ID to index map. The map is
// rebuilt lazily on the first lookup after a structural change.
type SortedList[T Identified] struct {
	index   map[ID]int
	keyFn   func(T) Key
	items   []T
	reverse bool
	dirty   bool
}

// NewSortedList copies items.
func NewSortedList[T Identified](items []T) *SortedList[T] {
	return &SortedList[T]{items: slices.Clone(items), dirty: true}
}

func (l *SortedList[T]) recalc() {
	l.index = make(map[ID]int, len(l.items))
	for i, item := range l.items {
		l.index[item.ID()] = i
	}
	l.dirty = false
}

func (l *SortedList[T]) Len() int { return len(l.items) }

// At returns the item at i. It panics when i is out of range.
func (l *SortedList[T]) At(i int) T { return l.items[i] }

// Items returns the backing slice. Callers must not modify it.
func (l *SortedList[T]) Items() []T { return l.items }

// Append adds items to the end, keeping the index current.
func (l *SortedList[T]) Append(items ...T) {
	if !l.dirty {
		for i, item := range items {
			l.index[item.ID()] = len(l.items) + i
		}
	}
	l.items = append(l.items, items...)
}

// Insert appends items and re-sorts with the last sort key, if any.
func (l *SortedList[T]) Insert(items ...T) {
	l.Append(items...)
	l.SortStable(l.keyFn, l.reverse)
}

// Index returns the position of item. A missing item is an error wrapping
// services.ErrDataMissing.
func (l *SortedList[T]) Index(item T) (int, error) {
	if l.dirty {
		l.recalc()
	}
	i, ok := l.index[item.ID()]
	if !ok {
		return 0, fmt.Errorf("media %s not in list: %w", item.ID(), services.ErrDataMissing)
	}
	return i, nil
}

// Contains reports whether item is in the list.
func (l *SortedList[T]) Contains(item T) bool {
	_, err := l.Index(item)
	return err == nil
}

// Remove deletes items, highest index first. Every item must be present.
func (l *SortedList[T]) Remove(items ...T) error {
	indices := make([]int, 0, len(items))
	for _, item := range items {
		i, err := l.Index(item)
		if err != nil {
			return err
		}
		indices = append(indices, i)
	}
	slices.Sort(indices)
	indices = slices.Compact(indices)
	for _, i := range slices.Backward(indices) {
		l.items = slices.Delete(l.items, i, i+1)
	}
	l.dirty = true
	return nil
}

// SortStable orders the list by keyFn, descending when reverse is set.
// Items with equal keys keep their relative order either way.
func (l *SortedList[T]) SortStable(keyFn func(T) Key, reverse bool) {
	if keyFn == nil {
		return
	}
	l.keyFn = keyFn
	l.reverse = reverse
	keys := make(map[ID]Key, len(l.items))
	for _, item := range l.items {
		keys[item.ID()] = keyFn(item)
	}
	slices.SortStableFunc(l.items, func(a, b T) int {
		c := keys[a.ID()].Compare(keys[b.ID()])
		if reverse {
			return -c
		}
		return c
	})
	l.dirty = true
}
