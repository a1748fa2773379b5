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

// Duplicates holds the duplicate comparison score weights and thresholds.
// Ratios compare the larger value to the smaller one.
type Duplicates struct {
	OlderThan             string  `toml:"older_than" validate:"required,duration"`
	HigherRatio           float64 `toml:"higher_ratio" validate:"gt=1"`
	MuchHigherRatio       float64 `toml:"much_higher_ratio" validate:"gtfield=HigherRatio"`
	HigherJPEGQuality     int     `toml:"higher_jpeg_quality" validate:"gte=0"`
	MuchHigherJPEGQuality int     `toml:"much_higher_jpeg_quality" validate:"gtefield=HigherJPEGQuality"`
	HigherFilesize        int     `toml:"higher_filesize" validate:"gte=0"`
	MuchHigherFilesize    int     `toml:"much_higher_filesize" validate:"gtefield=HigherFilesize"`
	HigherResolution      int     `toml:"higher_resolution" validate:"gte=0"`
	MuchHigherResolution  int     `toml:"much_higher_resolution" validate:"gtefield=HigherResolution"`
	MoreTags              int     `toml:"more_tags" validate:"gte=0"`
	Older                 int     `toml:"older" validate:"gte=0"`
	NiceRatio             int     `toml:"nice_ratio" validate:"gte=0"`
	PNGPixelDuplicate     int     `toml:"png_pixel_duplicate" validate:"gte=0"`
	JPEGQualityCacheSize  int     `toml:"jpeg_quality_cache_size" validate:"gte=1"`
	PixelHashCacheSize    int     `toml:"pixel_hash_cache_size" validate:"gte=1"`
	Workers               int     `toml:"workers" validate:"gte=1,lte=64"`
}

var DefaultDuplicates = Duplicates{
	HigherJPEGQuality:     10,
	MuchHigherJPEGQuality: 20,
	HigherFilesize:        10,
	MuchHigherFilesize:    20,
	HigherResolution:      20,
	MuchHigherResolution:  50,
	MoreTags:              8,
	Older:                 4,
	NiceRatio:             10,
	PNGPixelDuplicate:     100,
	HigherRatio:           1.05,
	MuchHigherRatio:       2.0,
	OlderThan:             "720h",
	JPEGQualityCacheSize:  1024,
	PixelHashCacheSize:    1024,
	Workers:               4,
}

// Duplicates returns the duplicate comparison settings.
func (c *Instance) Duplicates() Duplicates {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Duplicates
}

// SetDuplicates replaces the duplicate comparison settings after
// validating them.
//
//nolint:gocritic // config struct copied for immutability
func (c *Instance) SetDuplicates(d Duplicates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vals
	next.Duplicates = d
	if err := Validate(next); err != nil {
		return err
	}
	c.vals = next
	return nil
}
