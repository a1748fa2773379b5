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

package config

import "slices"

// SortValues names a media sort. Type is one of the sort type names such
// as "filesize" or "import_time".
type SortValues struct {
	Type          string   `toml:"type" validate:"required,oneof=filesize duration height width ratio num_pixels approx_bitrate mime import_time file_modified_time num_tags has_audio random media_views media_viewtime namespaces rating"` //nolint:lll // validator tag
	RatingService string   `toml:"rating_service,omitempty" validate:"required_if=Type rating"`
	Namespaces    []string `toml:"namespaces,omitempty" validate:"required_if=Type namespaces,dive,required"`
	Asc           bool     `toml:"asc"`
}

type CollectValues struct {
	Namespaces       []string `toml:"namespaces,omitempty" validate:"dive,required"`
	RatingServices   []string `toml:"rating_services,omitempty" validate:"dive,required"`
	CollectUnmatched bool     `toml:"collect_unmatched"`
}

type Media struct {
	HiddenViewerMimes  []string      `toml:"hidden_viewer_mimes,omitempty,multiline" validate:"dive,required,contains=/"`
	DefaultSort        SortValues    `toml:"default_sort"`
	FallbackSort       SortValues    `toml:"fallback_sort"`
	Collect            CollectValues `toml:"collect"`
	RemoveTrashedFiles bool          `toml:"remove_trashed_files"`
}

func (m Media) clone() Media {
	out := m
	out.HiddenViewerMimes = slices.Clone(m.HiddenViewerMimes)
	out.DefaultSort.Namespaces = slices.Clone(m.DefaultSort.Namespaces)
	out.FallbackSort.Namespaces = slices.Clone(m.FallbackSort.Namespaces)
	out.Collect.Namespaces = slices.Clone(m.Collect.Namespaces)
	out.Collect.RatingServices = slices.Clone(m.Collect.RatingServices)
	return out
}

// Media returns a copy of the media list settings.
func (c *Instance) Media() Media {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Media.clone()
}

// SetDefaultSort changes the sort new lists start with.
func (c *Instance) SetDefaultSort(s SortValues) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vals
	next.Media = next.Media.clone()
	next.Media.DefaultSort = s
	if err := Validate(next); err != nil {
		return err
	}
	c.vals = next
	return nil
}

// SetCollect changes the collect config new lists start with.
func (c *Instance) SetCollect(cv CollectValues) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vals
	next.Media = next.Media.clone()
	next.Media.Collect = cv
	if err := Validate(next); err != nil {
		return err
	}
	c.vals = next
	return nil
}

// RemoveTrashedFiles reports whether lists drop files trashed from their own
// local file domain.
func (c *Instance) RemoveTrashedFiles() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Media.RemoveTrashedFiles
}

func (c *Instance) SetRemoveTrashedFiles(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Media.RemoveTrashedFiles = enabled
}
