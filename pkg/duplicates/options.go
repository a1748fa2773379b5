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

// Package duplicates scores a pair of files to suggest which one of a
// duplicate pair is better. Positive scores favour the first file.
package duplicates

import (
	"fmt"
	"time"

	"github.com/tagvault/tagvault-core/pkg/config"
)

// Options holds score weights and thresholds. Ratios compare the larger
// value against the smaller one so every criterion is antisymmetric.
type Options struct {
	// HigherRatio is the larger/smaller size ratio above which a file
	// counts as bigger. The lower bound is its reciprocal, so x is smaller
	// than y only when y/x exceeds HigherRatio.
	HigherRatio float64
	// MuchHigherRatio bounds ">>" and "<<" the same way.
	MuchHigherRatio       float64
	OlderThan             time.Duration
	HigherJPEGQuality     int
	MuchHigherJPEGQuality int
	HigherFilesize        int
	MuchHigherFilesize    int
	HigherResolution      int
	MuchHigherResolution  int
	MoreTags              int
	Older                 int
	NiceRatio             int
	PNGPixelDuplicate     int
}

// OptionsFromConfig converts the [duplicates] config section.
//
//nolint:gocritic // config struct passed by value like the other getters
func OptionsFromConfig(d config.Duplicates) (Options, error) {
	older, err := time.ParseDuration(d.OlderThan)
	if err != nil {
		return Options{}, fmt.Errorf("invalid older_than %q: %w", d.OlderThan, err)
	}
	return Options{
		HigherRatio:           d.HigherRatio,
		MuchHigherRatio:       d.MuchHigherRatio,
		OlderThan:             older,
		HigherJPEGQuality:     d.HigherJPEGQuality,
		MuchHigherJPEGQuality: d.MuchHigherJPEGQuality,
		HigherFilesize:        d.HigherFilesize,
		MuchHigherFilesize:    d.MuchHigherFilesize,
		HigherResolution:      d.HigherResolution,
		MuchHigherResolution:  d.MuchHigherResolution,
		MoreTags:              d.MoreTags,
		Older:                 d.Older,
		NiceRatio:             d.NiceRatio,
		PNGPixelDuplicate:     d.PNGPixelDuplicate,
	}, nil
}

// DefaultOptions returns the options of config.DefaultDuplicates.
func DefaultOptions() Options {
	opts, err := OptionsFromConfig(config.DefaultDuplicates)
	if err != nil {
		panic(err)
	}
	return opts
}
