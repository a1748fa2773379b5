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
	"strconv"
	"strings"

	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// Collect groups media sharing the same tags in Namespaces and the same
// ratings on RatingServices into collections. With CollectUnmatched unset,
// media that match none of them stay as singletons.
type Collect struct {
	Namespaces       []string
	RatingServices   []services.Key
	CollectUnmatched bool
}

// DoesACollect reports whether the config groups anything.
func (c Collect) DoesACollect() bool {
	return len(c.Namespaces) > 0 || len(c.RatingServices) > 0
}

// key builds the grouping key of m. The empty key is the unmatched bucket.
func (c Collect) key(m Media) string {
	var sb strings.Builder
	if len(c.Namespaces) > 0 {
		for _, tag := range m.TagsManager().NamespaceSlice(c.Namespaces, tags.DisplaySiblingsAndParents) {
			sb.WriteString(tag)
			sb.WriteByte(0)
		}
	}
	if len(c.RatingServices) > 0 {
		for _, r := range m.RatingsManager().RatingSlice(c.RatingServices) {
			sb.WriteByte(1)
			sb.WriteString(string(r.Service))
			sb.WriteByte('=')
			sb.WriteString(strconv.FormatFloat(r.Value, 'g', -1, 64))
		}
	}
	return sb.String()
}

type collectGroup struct {
	key   string
	media []*Singleton
}

// group buckets media by key, in first-seen order.
func (c Collect) group(flat []*Singleton) []collectGroup {
	index := make(map[string]int)
	groups := make([]collectGroup, 0)
	for _, s := range flat {
		k := c.key(s)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, collectGroup{key: k})
		}
		groups[i].media = append(groups[i].media, s)
	}
	return groups
}

// CountMediaTags tallies tags of service key across media. Collections
// contribute each of their files rather than their merged view.
func CountMediaTags(media []Media, key services.Key, displayType tags.DisplayType) tags.Counts {
	managers := make([]*tags.Manager, 0, len(media))
	for _, m := range media {
		if c, ok := m.(*Collection); ok {
			managers = append(managers, c.SingletonsTagsManagers()...)
			continue
		}
		managers = append(managers, m.TagsManager())
	}
	return tags.CountTags(managers, key, displayType)
}
