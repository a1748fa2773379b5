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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag       string
		namespace string
		subtag    string
	}{
		{tag: "character:samus aran", namespace: "character", subtag: "samus aran"},
		{tag: "blue sky", namespace: "", subtag: "blue sky"},
		{tag: "series:metroid: other m", namespace: "series", subtag: "metroid: other m"},
		{tag: ":)", namespace: "", subtag: ":)"},
		{tag: "", namespace: "", subtag: ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()
			ns, sub := SplitTag(tt.tag)
			assert.Equal(t, tt.namespace, ns)
			assert.Equal(t, tt.subtag, sub)
		})
	}
}

func TestCombineTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "page:1", CombineTag("page", "1"))
	assert.Equal(t, "blue sky", CombineTag("", "blue sky"))
	assert.Equal(t, "::)", CombineTag("", ":)"))
}

func TestCleanTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims", input: "  blue sky  ", want: "blue sky"},
		{name: "lowercases", input: "Character:Samus", want: "character:samus"},
		{name: "collapses whitespace", input: "blue \t  sky", want: "blue sky"},
		{name: "colon spacing", input: "series :  metroid", want: "series:metroid"},
		{name: "only first colon", input: "title: a : b", want: "title:a : b"},
		{name: "empty", input: "   ", want: ""},
		{name: "compatibility forms", input: "Ｓｅｒｉｅｓ：Ｍｅｔｒｏｉｄ", want: "series:metroid"},
		{name: "no-break space", input: "blue\u00a0sky", want: "blue sky"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanTag(tt.input))
		})
	}
}

func TestConvertTagToSortable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Sortable{Num: 12, HasNum: true, Str: "b"}, ConvertTagToSortable("12b"))
	assert.Equal(t, Sortable{Str: "cover"}, ConvertTagToSortable("cover"))
	assert.Equal(t, Sortable{Str: "99999999999999999999999"}, ConvertTagToSortable("99999999999999999999999"))
}

func TestCompareSortableNaturalOrder(t *testing.T) {
	t.Parallel()

	subtags := []string{"10", "cover", "2", "0b", "1", "0", "0a"}
	keys := make([]Sortable, len(subtags))
	for i, s := range subtags {
		keys[i] = ConvertTagToSortable(s)
	}
	slices.SortFunc(keys, CompareSortable)

	got := make([]string, len(keys))
	for i, k := range keys {
		if k.HasNum {
			got[i] = strconv.FormatInt(k.Num, 10) + k.Str
		} else {
			got[i] = k.Str
		}
	}
	assert.Equal(t, []string{"0", "0a", "0b", "1", "2", "10", "cover"}, got)
}
