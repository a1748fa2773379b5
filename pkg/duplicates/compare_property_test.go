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

package duplicates

import (
	"context"
	"testing"

	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/media"
	"github.com/tagvault/tagvault-core/pkg/testing/fixtures"
	"pgregory.net/rapid"
)

func singletonGen(n byte) *rapid.Generator[*media.Singleton] {
	return rapid.Custom(func(t *rapid.T) *media.Singleton {
		b := fixtures.NewResultBuilder(n)
		if rapid.Bool().Draw(t, "sized") {
			b.Size(rapid.Int64Range(1, 1<<32).Draw(t, "size"))
		}
		if rapid.Bool().Draw(t, "resolution") {
			b.Resolution(rapid.IntRange(1, 4000).Draw(t, "w"), rapid.IntRange(1, 4000).Draw(t, "h"))
		}
		numTags := rapid.IntRange(0, 5).Draw(t, "numTags")
		for i := range numTags {
			b.Tags(string(rune('a' + i)))
		}
		if rapid.Bool().Draw(t, "imported") {
			days := rapid.IntRange(0, 400).Draw(t, "days")
			b.Imported(fixtures.Epoch.AddDate(0, 0, -days))
		}
		if rapid.Bool().Draw(t, "png") {
			b.Mime(files.MimeImagePNG)
		}
		return b.Singleton()
	})
}

// TestPropertyStatementsAntisymmetric verifies swapping the files negates
// every score and keeps the same criteria.
func TestPropertyStatementsAntisymmetric(t *testing.T) {
	t.Parallel()
	c := newComparer(nil)
	rapid.Check(t, func(t *rapid.T) {
		a := singletonGen(1).Draw(t, "a")
		b := singletonGen(2).Draw(t, "b")

		ab, err := c.Statements(context.Background(), a, b)
		if err != nil {
			t.Fatalf("statements failed: %v", err)
		}
		ba, err := c.Statements(context.Background(), b, a)
		if err != nil {
			t.Fatalf("statements failed: %v", err)
		}
		if len(ab) != len(ba) {
			t.Fatalf("criteria differ: %v vs %v", ab, ba)
		}
		for crit, st := range ab {
			other, ok := ba[crit]
			if !ok {
				t.Fatalf("criterion %s missing when swapped", crit)
			}
			if st.Score != -other.Score {
				t.Fatalf("%s: %d (%q) is not the negation of %d (%q)", crit, st.Score, st.Text, other.Score, other.Text)
			}
		}
		if ab.Total() != -ba.Total() {
			t.Fatalf("totals %d and %d are not negated", ab.Total(), ba.Total())
		}
	})
}

// TestPropertySelfComparisonScoresZero verifies a file compared with an
// identical copy scores nothing.
func TestPropertySelfComparisonScoresZero(t *testing.T) {
	t.Parallel()
	c := newComparer(nil)
	rapid.Check(t, func(t *rapid.T) {
		a := singletonGen(1).Draw(t, "a")
		st, err := c.Statements(context.Background(), a, a.Duplicate())
		if err != nil {
			t.Fatalf("statements failed: %v", err)
		}
		if len(st) != 0 {
			t.Fatalf("self comparison made statements: %v", st)
		}
	})
}
