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

import "github.com/tagvault/tagvault-core/pkg/services"

// Counts holds how many managers carry each tag, per status.
type Counts struct {
	Current    map[string]int
	Deleted    map[string]int
	Pending    map[string]int
	Petitioned map[string]int
}

func (c Counts) byStatus(status Status) map[string]int {
	switch status {
	case StatusCurrent:
		return c.Current
	case StatusDeleted:
		return c.Deleted
	case StatusPending:
		return c.Pending
	default:
		return c.Petitioned
	}
}

// CountTags tallies the tags of service key in a display layer across
// managers. Each manager counts a tag at most once per status.
func CountTags(managers []*Manager, key services.Key, displayType DisplayType) Counts {
	c := Counts{
		Current:    make(map[string]int),
		Deleted:    make(map[string]int),
		Pending:    make(map[string]int),
		Petitioned: make(map[string]int),
	}
	for _, m := range managers {
		stt := m.StatusesToTags(key, displayType)
		for _, status := range AllStatuses {
			counts := c.byStatus(status)
			stt.Get(status).Each(func(tag string) bool {
				counts[tag]++
				return false
			})
		}
	}
	return c
}
