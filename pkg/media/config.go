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
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/tagvault/tagvault-core/pkg/config"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// SortFromConfig converts a configured sort into a Sort.
func SortFromConfig(v config.SortValues) (Sort, error) {
	t, err := ParseSortType(v.Type)
	if err != nil {
		return Sort{}, err
	}
	s := Sort{Type: t, Asc: v.Asc}
	switch t {
	case SortRating:
		if v.RatingService == "" {
			return Sort{}, errors.New("rating sort needs a rating service")
		}
		s.RatingService = services.Key(v.RatingService)
	case SortNamespaces:
		if len(v.Namespaces) == 0 {
			return Sort{}, errors.New("namespace sort needs at least one namespace")
		}
		s.Namespaces = slices.Clone(v.Namespaces)
	default:
	}
	return s, nil
}

// CollectFromConfig converts configured collect settings into a Collect.
func CollectFromConfig(v config.CollectValues) Collect {
	c := Collect{
		Namespaces:       slices.Clone(v.Namespaces),
		CollectUnmatched: v.CollectUnmatched,
	}
	for _, k := range v.RatingServices {
		c.RatingServices = append(c.RatingServices, services.Key(k))
	}
	return c
}

// NewEnvFromConfig returns an Env using the configured fallback sort,
// trash handling and hidden viewer mimes. Unknown mime names are logged
// and ignored.
func NewEnvFromConfig(reg services.Registry, cfg *config.Instance) (*Env, error) {
	m := cfg.Media()

	fallback, err := SortFromConfig(m.FallbackSort)
	if err != nil {
		return nil, fmt.Errorf("fallback sort: %w", err)
	}

	env := NewEnv(reg)
	env.FallbackSort = fallback
	env.RemoveTrashedFiles = m.RemoveTrashedFiles
	for _, name := range m.HiddenViewerMimes {
		mime := files.MimeFromType(name)
		if mime == files.MimeUnknown {
			log.Warn().Str("mime", name).Msg("ignoring unknown hidden viewer mime")
			continue
		}
		env.HiddenViewerMimes[mime] = true
	}
	return env, nil
}
