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
	"fmt"

	"github.com/tagvault/tagvault-core/pkg/content"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// Result is everything known about one file: its info and the tag,
// location, rating and viewing managers. Singletons wrap a Result; a Result
// may be shared by several singletons and is updated in place.
type Result struct {
	tags      *tags.Manager
	locations *LocationsManager
	ratings   *RatingsManager
	viewing   *ViewingStats
	info      FileInfo
}

// NewResult assembles a result. Nil managers are replaced with empty ones.
func NewResult(
	info FileInfo,
	tm *tags.Manager,
	lm *LocationsManager,
	rm *RatingsManager,
	vs *ViewingStats,
) *Result {
	if tm == nil {
		tm = tags.NewManager(tags.Resolver{}, nil)
	}
	if lm == nil {
		lm = NewLocationsManager(Locations{}, nil)
	}
	if rm == nil {
		rm = NewRatingsManager(nil)
	}
	if vs == nil {
		vs = &ViewingStats{}
	}
	return &Result{info: info, tags: tm, locations: lm, ratings: rm, viewing: vs}
}

func (r *Result) FileInfo() FileInfo                  { return r.info }
func (r *Result) Hash() files.Hash                    { return r.info.Hash }
func (r *Result) HashID() int64                       { return r.info.HashID }
func (r *Result) Mime() files.Mime                    { return r.info.Mime }
func (r *Result) Inbox() bool                         { return r.locations.Inbox() }
func (r *Result) TagsManager() *tags.Manager          { return r.tags }
func (r *Result) LocationsManager() *LocationsManager { return r.locations }
func (r *Result) RatingsManager() *RatingsManager     { return r.ratings }
func (r *Result) ViewingStats() *ViewingStats         { return r.viewing }

// HasAudio is true only when the file is known to have audio.
func (r *Result) HasAudio() bool {
	return r.info.HasAudio != nil && *r.info.HasAudio
}

func (r *Result) IsStaticImage() bool { return r.info.IsStaticImage() }

// SetFileInfo replaces the file info whole.
func (r *Result) SetFileInfo(info FileInfo) { r.info = info }

// SetTagsManager replaces the tag manager.
func (r *Result) SetTagsManager(tm *tags.Manager) { r.tags = tm }

// Duplicate deep-copies the result and all of its managers.
func (r *Result) Duplicate() *Result {
	return &Result{
		info:      r.info.Duplicate(),
		tags:      r.tags.Duplicate(),
		locations: r.locations.Duplicate(),
		ratings:   r.ratings.Duplicate(),
		viewing:   r.viewing.Duplicate(),
	}
}

func lookupService(reg services.Registry, key services.Key) (services.Service, error) {
	svc, err := reg.Service(key)
	if err != nil {
		return services.Service{}, fmt.Errorf("service %q: %w", key, err)
	}
	return svc, nil
}

// ProcessContentUpdate routes an update from service key to the manager
// that owns its data. An unknown service returns an error wrapping
// services.ErrDataMissing and changes nothing.
func (r *Result) ProcessContentUpdate(reg services.Registry, key services.Key, update content.Update) error {
	svc, err := lookupService(reg, key)
	if err != nil {
		return err
	}
	switch {
	case svc.Type.IsTagService():
		r.tags.ProcessContentUpdate(key, update)
	case svc.Type.IsFileService():
		if update.DataType() == content.DataFileViewingStats {
			r.viewing.ProcessContentUpdate(update)
		} else {
			r.locations.ProcessContentUpdate(key, update)
		}
	case svc.Type.IsRatingService():
		r.ratings.ProcessContentUpdate(key, update)
	}
	return nil
}

// DeletePending drops pending and petitioned state of service key from the
// tag or location manager, by service type.
func (r *Result) DeletePending(reg services.Registry, key services.Key) error {
	svc, err := lookupService(reg, key)
	if err != nil {
		return err
	}
	switch {
	case svc.Type.IsTagService():
		r.tags.DeletePending(key)
	case svc.Type.IsFileService():
		r.locations.DeletePending(key)
	}
	return nil
}

// ResetService forgets service key in the tag and location managers.
func (r *Result) ResetService(key services.Key) {
	r.tags.ResetService(key)
	r.locations.ResetService(key)
}
