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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsComplexWildcard(t *testing.T) {
	t.Parallel()

	assert.False(t, IsComplexWildcard("sam"))
	assert.False(t, IsComplexWildcard("sam*"))
	assert.True(t, IsComplexWildcard("*sam"))
	assert.True(t, IsComplexWildcard("s*m"))
	assert.True(t, IsComplexWildcard("*sam*"))
}

func TestConvertTagToSearchable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "samus (metroid)", want: "samus metroid"},
		{input: `"quoted" [tag]*`, want: "quoted tag*"},
		{input: "sam**", want: "sam*"},
		{input: "*(sam)*", want: "*(sam)*"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ConvertTagToSearchable(tt.input))
		})
	}
}

func TestConvertEntryTextToSearchText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "character:sam*", ConvertEntryTextToSearchText("  Character : Sam"))
	assert.Equal(t, "sam*", ConvertEntryTextToSearchText("sam*"))
	assert.Equal(t, "*sam", ConvertEntryTextToSearchText("*sam"))
}

func TestFilterTagsBySearchText(t *testing.T) {
	t.Parallel()

	tags := []string{
		"character:samus aran",
		"samurai",
		"blue sky",
		"series:metroid (series)",
		"awesome",
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "prefix", text: "sam*", want: []string{"character:samus aran", "samurai"}},
		{name: "word inside tag", text: "aran*", want: []string{"character:samus aran"}},
		{name: "exact word", text: "sky", want: []string{"blue sky"}},
		{name: "no mid-word match", text: "some*", want: []string{}},
		{name: "leading wildcard", text: "*some", want: []string{"awesome"}},
		{name: "brackets ignored", text: "metroid series*", want: []string{"series:metroid (series)"}},
		{name: "namespace prefix", text: "character:*", want: []string{"character:samus aran"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FilterTagsBySearchText(repoKey, tt.text, tags, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterTagsBySearchTextSiblings(t *testing.T) {
	t.Parallel()

	rules := NewSiblingRules()
	rules.AddPair(repoKey, "metroid girl", "character:samus aran")

	got, err := FilterTagsBySearchText(repoKey, "metroid*", []string{"character:samus aran", "blue sky"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = FilterTagsBySearchText(repoKey, "metroid*", []string{"character:samus aran", "blue sky"}, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"character:samus aran"}, got)
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	counts := Counts{
		Current: map[string]int{"a": 3, "b": 1200, "c": 3},
		Pending: map[string]int{"c": 2, "d": 1},
	}
	preds := PredicatesFromCounts(counts)
	require.Len(t, preds, 4)

	SortPredicates(preds)
	order := make([]string, len(preds))
	for i, p := range preds {
		order[i] = p.Tag
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, order)

	assert.Equal(t, "b (1,200)", preds[0].String())
	assert.Equal(t, "c (3) (+2)", preds[1].String())
	excluded := Predicate{Tag: "d", PendingCount: 1}
	assert.Equal(t, "-d (+1)", excluded.String())
}
