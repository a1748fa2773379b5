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
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
	"pgregory.net/rapid"
)

var (
	locationKeys = []services.Key{
		services.LocalFileKey, services.TrashKey, services.CombinedLocalFileKey, repoFileKey, otherRepoKey,
	}
	fileActions = []content.Action{
		content.ActionAdd, content.ActionDelete, content.ActionUndelete,
		content.ActionPend, content.ActionRescindPend,
		content.ActionPetition, content.ActionRescindPetition,
		content.ActionArchive, content.ActionInbox,
	}
)

// TestPropertyLocationsDisjoint checks that no file location is both
// current and deleted, or both current and pending, after any sequence of
// file updates.
func TestPropertyLocationsDisjoint(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		lm := NewLocationsManager(Locations{}, clockwork.NewFakeClockAt(epoch))
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			key := rapid.SampledFrom(locationKeys).Draw(t, "key")
			action := rapid.SampledFrom(fileActions).Draw(t, "action")
			lm.ProcessContentUpdate(key, filesUpdate(action, hashOf(1)))

			if inter := lm.Current().Intersect(lm.Deleted()); inter.Cardinality() != 0 {
				t.Fatalf("current and deleted overlap: %v", inter.ToSlice())
			}
			if inter := lm.Current().Intersect(lm.Pending()); inter.Cardinality() != 0 {
				t.Fatalf("current and pending overlap: %v", inter.ToSlice())
			}
		}
	})
}

// TestPropertySortStable checks that sorting orders by key and keeps
// equal keys in their previous relative order, in both directions.
func TestPropertySortStable(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.IntRange(0, 5)).Draw(t, "values")
		reverse := rapid.Bool().Draw(t, "reverse")

		items := newItems(values...)
		before := make(map[ID]int, len(items))
		for i, it := range items {
			before[it.id] = i
		}

		l := NewSortedList(items)
		l.SortStable(itemKey, reverse)
		out := l.Items()

		for i := 1; i < len(out); i++ {
			a, b := out[i-1], out[i]
			if (!reverse && a.val > b.val) || (reverse && a.val < b.val) {
				t.Fatalf("out of order at %d: %v", i, vals(out))
			}
			if a.val == b.val && before[a.id] > before[b.id] {
				t.Fatalf("equal keys swapped at %d", i)
			}
		}
	})
}

// TestPropertyCollectKeepsFiles checks that collecting and uncollecting
// never gains or loses a file.
func TestPropertyCollectKeepsFiles(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		results := make([]*Result, n)
		want := files.NewHashSet()
		for i := range n {
			tag := rapid.SampledFrom([]string{"", "series:a", "series:b", "creator:c"}).Draw(t, "tag")
			var opts []resultOpt
			if tag != "" {
				opts = append(opts, withTags(tag))
			}
			results[i] = testResult(byte(i+1), opts...)
			want.Add(hashOf(byte(i + 1)))
		}

		env, _ := testEnv()
		l := NewList(env, services.LocalFileKey, results)
		unmatched := rapid.Bool().Draw(t, "unmatched")
		l.Collect(&Collect{Namespaces: []string{"series"}, CollectUnmatched: unmatched})

		if l.NumFiles() != n || len(l.FlatMedia()) != n {
			t.Fatalf("collect changed file count: %d files, %d flat, want %d", l.NumFiles(), len(l.FlatMedia()), n)
		}
		got := l.Hashes(HashFilter{})
		if len(got) != len(want) {
			t.Fatalf("hash set changed size: %d, want %d", len(got), len(want))
		}
		for h := range want {
			if !got.Has(h) {
				t.Fatalf("lost %s", h)
			}
		}

		l.Collect(&Collect{})
		if len(l.SortedMedia()) != n {
			t.Fatalf("uncollect left %d media, want %d", len(l.SortedMedia()), n)
		}
	})
}

// TestPropertyNextPreviousInverse checks that Previous undoes Next for every
// media of a list.
func TestPropertyNextPreviousInverse(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		results := make([]*Result, n)
		for i := range n {
			results[i] = testResult(byte(i + 1))
		}
		env, _ := testEnv()
		l := NewList(env, services.LocalFileKey, results)

		for _, m := range l.SortedMedia() {
			next, err := l.Next(m)
			if err != nil {
				t.Fatal(err)
			}
			back, err := l.Previous(next)
			if err != nil {
				t.Fatal(err)
			}
			if !Same(m, back) {
				t.Fatalf("previous(next(m)) is not m")
			}
		}
	})
}
