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
	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// Rating is one service's rating, normalised to 0..1.
type Rating struct {
	Service services.Key
	Value   float64
}

// RatingsManager holds a file's ratings per rating service.
type RatingsManager struct {
	ratings map[services.Key]float64
}

// NewRatingsManager copies ratings.
func NewRatingsManager(ratings map[services.Key]float64) *RatingsManager {
	r := &RatingsManager{ratings: make(map[services.Key]float64, len(ratings))}
	for k, v := range ratings {
		r.ratings[k] = v
	}
	return r
}

// Rating returns the rating of service key, if set.
func (r *RatingsManager) Rating(key services.Key) (float64, bool) {
	v, ok := r.ratings[key]
	return v, ok
}

// RatingSlice returns the set ratings among keys, in keys order.
func (r *RatingsManager) RatingSlice(keys []services.Key) []Rating {
	out := make([]Rating, 0, len(keys))
	for _, k := range keys {
		if v, ok := r.ratings[k]; ok {
			out = append(out, Rating{Service: k, Value: v})
		}
	}
	return out
}

// ProcessContentUpdate sets or clears the rating of service key.
func (r *RatingsManager) ProcessContentUpdate(key services.Key, update content.Update) {
	if update.DataType() != content.DataRatings || update.Action() != content.ActionAdd {
		return
	}
	row := update.RatingsRow()
	if row.Rating == nil {
		delete(r.ratings, key)
		return
	}
	r.ratings[key] = *row.Rating
}

// Duplicate returns an independent copy.
func (r *RatingsManager) Duplicate() *RatingsManager {
	return NewRatingsManager(r.ratings)
}
