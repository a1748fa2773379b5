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
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tagvault/tagvault-core/pkg/services"
)

var ignoredSearchChars = strings.NewReplacer(
	"[", "", "]", "", "(", "", ")", "", "{", "", "}", "", `"`, "", "'", "",
)

// IsComplexWildcard reports whether search text has a wildcard anywhere
// other than a single trailing star.
func IsComplexWildcard(text string) bool {
	n := strings.Count(text, "*")
	return n > 1 || (n == 1 && !strings.HasSuffix(text, "*"))
}

// ConvertTagToSearchable collapses repeated stars and, unless the text is a
// complex wildcard, strips brackets and quotes so they never block a match.
func ConvertTagToSearchable(tag string) string {
	if tag == "" {
		return ""
	}
	for strings.Contains(tag, "**") {
		tag = strings.ReplaceAll(tag, "**", "*")
	}
	if IsComplexWildcard(tag) {
		return tag
	}
	return ignoredSearchChars.Replace(tag)
}

// ConvertEntryTextToSearchText turns typed autocomplete text into search
// text, appending a trailing star for prefix matching.
func ConvertEntryTextToSearchText(text string) string {
	text = ConvertTagToSearchable(CleanTag(text))
	if !IsComplexWildcard(text) && !strings.HasSuffix(text, "*") {
		text += "*"
	}
	return text
}

func compileSearch(text string) (*regexp.Regexp, error) {
	parts := strings.Split(text, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	body := strings.Join(parts, ".*")

	begin := `(\A|:|\s)`
	if strings.HasPrefix(body, ".*") {
		begin = `(\A|:)`
	}
	end := `(\s|\z)`
	if strings.HasSuffix(body, ".*") {
		end = `\z`
	}
	re, err := regexp.Compile(begin + body + end)
	if err != nil {
		return nil, fmt.Errorf("compile search text %q: %w", text, err)
	}
	return re, nil
}

// FilterTagsBySearchText returns the tags, in input order, that match
// search text. Matches may start at the beginning of the tag, after the
// namespace colon, or after whitespace. With a non-nil siblings lister a tag
// also matches when any of its siblings on service key does.
func FilterTagsBySearchText(
	key services.Key,
	text string,
	tags []string,
	siblings SiblingLister,
) ([]string, error) {
	re, err := compileSearch(text)
	if err != nil {
		return nil, err
	}
	complexWildcard := IsComplexWildcard(text)

	out := make([]string, 0)
	for _, tag := range tags {
		candidates := []string{tag}
		if siblings != nil {
			candidates = siblings.AllSiblings(key, tag)
		}
		for _, c := range candidates {
			if !complexWildcard {
				c = ConvertTagToSearchable(c)
			}
			if re.MatchString(c) {
				out = append(out, tag)
				break
			}
		}
	}
	return out, nil
}

// Predicate is a tag search predicate with the number of files that carry
// the tag as current and as pending.
type Predicate struct {
	Tag          string
	CurrentCount int
	PendingCount int
	Inclusive    bool
}

// Count is the predicate's total file count.
func (p Predicate) Count() int {
	return p.CurrentCount + p.PendingCount
}

// String renders the predicate the way autocomplete lists show it, e.g.
// "-series:metroid (1,024) (+3)".
func (p Predicate) String() string {
	var sb strings.Builder
	if !p.Inclusive {
		sb.WriteString("-")
	}
	sb.WriteString(p.Tag)
	if p.CurrentCount > 0 {
		sb.WriteString(" (" + humanize.Comma(int64(p.CurrentCount)) + ")")
	}
	if p.PendingCount > 0 {
		sb.WriteString(" (+" + humanize.Comma(int64(p.PendingCount)) + ")")
	}
	return sb.String()
}

// PredicatesFromCounts builds inclusive predicates for every current or
// pending tag in c.
func PredicatesFromCounts(c Counts) []Predicate {
	byTag := make(map[string]*Predicate, len(c.Current)+len(c.Pending))
	get := func(tag string) *Predicate {
		p, ok := byTag[tag]
		if !ok {
			p = &Predicate{Tag: tag, Inclusive: true}
			byTag[tag] = p
		}
		return p
	}
	for tag, n := range c.Current {
		get(tag).CurrentCount = n
	}
	for tag, n := range c.Pending {
		get(tag).PendingCount = n
	}
	out := make([]Predicate, 0, len(byTag))
	for _, p := range byTag {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Predicate) int { return strings.Compare(a.Tag, b.Tag) })
	return out
}

// SortPredicates orders predicates by descending count. Equal counts keep
// their relative order.
func SortPredicates(preds []Predicate) {
	slices.SortStableFunc(preds, func(a, b Predicate) int {
		return b.Count() - a.Count()
	})
}
