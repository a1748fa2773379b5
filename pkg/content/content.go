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

// Package content defines the update stream the media model reduces over:
// per-service content updates (tags, files, urls, ratings, viewing stats)
// and service-wide updates (reset, delete pending).
package content

import (
	"errors"
	"fmt"

	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// ErrMalformedUpdate is returned when an update's row does not fit its data
// type or action.
var ErrMalformedUpdate = errors.New("malformed content update")

// DataType is the kind of content an update carries.
type DataType int

const (
	DataFiles DataType = iota + 1
	DataMappings
	DataURLs
	DataRatings
	DataFileViewingStats
)

func (d DataType) String() string {
	switch d {
	case DataFiles:
		return "files"
	case DataMappings:
		return "mappings"
	case DataURLs:
		return "urls"
	case DataRatings:
		return "ratings"
	case DataFileViewingStats:
		return "file_viewing_stats"
	default:
		return fmt.Sprintf("data_type_%d", int(d))
	}
}

// Action is what an update does to its content.
type Action int

const (
	ActionAdd Action = iota + 1
	ActionDelete
	ActionUndelete
	ActionPend
	ActionRescindPend
	ActionPetition
	ActionRescindPetition
	ActionArchive
	ActionInbox
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionDelete:
		return "delete"
	case ActionUndelete:
		return "undelete"
	case ActionPend:
		return "pend"
	case ActionRescindPend:
		return "rescind_pend"
	case ActionPetition:
		return "petition"
	case ActionRescindPetition:
		return "rescind_petition"
	case ActionArchive:
		return "archive"
	case ActionInbox:
		return "inbox"
	default:
		return fmt.Sprintf("action_%d", int(a))
	}
}

var allowedActions = map[DataType]map[Action]bool{
	DataFiles: {
		ActionAdd: true, ActionDelete: true, ActionUndelete: true,
		ActionPend: true, ActionRescindPend: true,
		ActionPetition: true, ActionRescindPetition: true,
		ActionArchive: true, ActionInbox: true,
	},
	DataMappings: {
		ActionAdd: true, ActionDelete: true,
		ActionPend: true, ActionRescindPend: true,
		ActionPetition: true, ActionRescindPetition: true,
	},
	DataURLs:             {ActionAdd: true, ActionDelete: true},
	DataRatings:          {ActionAdd: true},
	DataFileViewingStats: {ActionAdd: true},
}

// FilesRow targets files by hash.
type FilesRow struct {
	Hashes []files.Hash
}

// MappingsRow applies one tag to a set of files.
type MappingsRow struct {
	Tag    string
	Hashes []files.Hash
}

// URLsRow associates known urls with files.
type URLsRow struct {
	URLs   []string
	Hashes []files.Hash
}

// RatingsRow sets a rating on files. A nil Rating clears it.
type RatingsRow struct {
	Rating *float64
	Hashes []files.Hash
}

// ViewingStatsRow carries additive view counters for one file.
type ViewingStatsRow struct {
	Hash                 files.Hash
	PreviewViewsDelta    int
	PreviewViewtimeDelta float64
	MediaViewsDelta      int
	MediaViewtimeDelta   float64
}

// Update is a single validated content update. Build with NewUpdate.
type Update struct {
	row      any
	dataType DataType
	action   Action
}

// NewUpdate validates that row matches dataType and action.
func NewUpdate(dataType DataType, action Action, row any) (Update, error) {
	actions, ok := allowedActions[dataType]
	if !ok {
		return Update{}, fmt.Errorf("%w: unknown data type %s", ErrMalformedUpdate, dataType)
	}
	if !actions[action] {
		return Update{}, fmt.Errorf("%w: action %s not valid for %s", ErrMalformedUpdate, action, dataType)
	}

	switch r := row.(type) {
	case FilesRow:
		ok = dataType == DataFiles
	case MappingsRow:
		ok = dataType == DataMappings && r.Tag != ""
	case URLsRow:
		ok = dataType == DataURLs
	case RatingsRow:
		ok = dataType == DataRatings
	case ViewingStatsRow:
		ok = dataType == DataFileViewingStats
	default:
		ok = false
	}
	if !ok {
		return Update{}, fmt.Errorf("%w: row %T does not fit %s/%s", ErrMalformedUpdate, row, dataType, action)
	}

	return Update{dataType: dataType, action: action, row: row}, nil
}

// MustNewUpdate is NewUpdate for statically known rows. It panics on error.
func MustNewUpdate(dataType DataType, action Action, row any) Update {
	u, err := NewUpdate(dataType, action, row)
	if err != nil {
		panic(err)
	}
	return u
}

// DataType returns the update's data type.
func (u Update) DataType() DataType { return u.dataType }

// Action returns the update's action.
func (u Update) Action() Action { return u.action }

// Row returns the raw row.
func (u Update) Row() any { return u.row }

// Hashes returns every file hash the update touches.
func (u Update) Hashes() []files.Hash {
	switch r := u.row.(type) {
	case FilesRow:
		return r.Hashes
	case MappingsRow:
		return r.Hashes
	case URLsRow:
		return r.Hashes
	case RatingsRow:
		return r.Hashes
	case ViewingStatsRow:
		return []files.Hash{r.Hash}
	default:
		return nil
	}
}

// The typed row accessors below panic when the row does not match. An
// Update that did not come from NewUpdate is an upstream contract break and
// must not be allowed to corrupt cache state.

// MappingsRow returns the row of a mappings update.
func (u Update) MappingsRow() MappingsRow {
	r, ok := u.row.(MappingsRow)
	if !ok {
		panic(fmt.Sprintf("content: %s/%s update has row %T, want MappingsRow", u.dataType, u.action, u.row))
	}
	return r
}

// URLsRow returns the row of a urls update.
func (u Update) URLsRow() URLsRow {
	r, ok := u.row.(URLsRow)
	if !ok {
		panic(fmt.Sprintf("content: %s/%s update has row %T, want URLsRow", u.dataType, u.action, u.row))
	}
	return r
}

// RatingsRow returns the row of a ratings update.
func (u Update) RatingsRow() RatingsRow {
	r, ok := u.row.(RatingsRow)
	if !ok {
		panic(fmt.Sprintf("content: %s/%s update has row %T, want RatingsRow", u.dataType, u.action, u.row))
	}
	return r
}

// ViewingStatsRow returns the row of a viewing stats update.
func (u Update) ViewingStatsRow() ViewingStatsRow {
	r, ok := u.row.(ViewingStatsRow)
	if !ok {
		panic(fmt.Sprintf("content: %s/%s update has row %T, want ViewingStatsRow", u.dataType, u.action, u.row))
	}
	return r
}

// Updates groups content updates by service. Order within a service is the
// order of application.
type Updates map[services.Key][]Update

// ServiceAction is a service-wide operation.
type ServiceAction int

const (
	ServiceDeletePending ServiceAction = iota + 1
	ServiceReset
)

func (a ServiceAction) String() string {
	switch a {
	case ServiceDeletePending:
		return "delete_pending"
	case ServiceReset:
		return "reset"
	default:
		return fmt.Sprintf("service_action_%d", int(a))
	}
}

// ServiceUpdate is a service-wide update.
type ServiceUpdate struct {
	Action ServiceAction
}

// ServiceUpdates groups service updates by service.
type ServiceUpdates map[services.Key][]ServiceUpdate
