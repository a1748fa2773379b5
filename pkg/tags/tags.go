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

// Package tags implements the tag model: "namespace:subtag" strings held per
// service and status, the layered display cache built over them, and the
// sibling/display rule stores that feed the cache.
package tags

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reColonSpacing = regexp.MustCompile(`^([^:]*?)\s*:\s*`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// SplitTag returns the namespace and subtag of a tag. Unnamespaced tags have
// an empty namespace.
func SplitTag(tag string) (namespace, subtag string) {
	ns, sub, ok := strings.Cut(tag, ":")
	if !ok || ns == "" {
		return "", tag
	}
	return ns, sub
}

// CombineTag joins a namespace and subtag. Subtags that themselves start
// with a colon keep a leading colon so they survive a round trip.
func CombineTag(namespace, subtag string) string {
	if namespace == "" {
		if strings.HasPrefix(subtag, ":") {
			return ":" + subtag
		}
		return subtag
	}
	return namespace + ":" + subtag
}

// CleanTag normalises user-entered tag text for storage and comparison.
// Rules: fold compatibility forms (NFKC), trim whitespace, lowercase,
// collapse inner whitespace runs to one space, and drop spaces around the
// namespace colon.
func CleanTag(s string) string {
	s = norm.NFKC.String(s)
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	s = reColonSpacing.ReplaceAllString(s, "$1:")
	return s
}

// Sortable is a natural-order sort key for a subtag: a leading run of digits
// compares numerically, so "2" < "10" and "0" < "0a" < "0b" < "1".
type Sortable struct {
	Str    string
	Num    int64
	HasNum bool
}

// ConvertTagToSortable builds the natural-order key of a subtag.
func ConvertTagToSortable(subtag string) Sortable {
	i := 0
	for i < len(subtag) && subtag[i] >= '0' && subtag[i] <= '9' {
		i++
	}
	if i == 0 {
		return Sortable{Str: subtag}
	}
	n, err := strconv.ParseInt(subtag[:i], 10, 64)
	if err != nil {
		// too many digits for an int64, fall back to text ordering
		return Sortable{Str: subtag}
	}
	return Sortable{Num: n, HasNum: true, Str: subtag[i:]}
}

// CompareSortable orders numeric-led subtags before text ones, numbers by
// value, then by the remaining text.
func CompareSortable(a, b Sortable) int {
	switch {
	case a.HasNum && !b.HasNum:
		return -1
	case !a.HasNum && b.HasNum:
		return 1
	case a.HasNum && b.HasNum && a.Num != b.Num:
		if a.Num < b.Num {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Str, b.Str)
}
