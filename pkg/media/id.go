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

// Package media implements the in-memory media model: file results and
// their sub-managers, the singleton/collection/list composite, sorting and
// collecting, and the reducers that apply content and service updates.
//
// Lists and collections have a single owner. Mutation and reads of one list
// must be serialised by the caller; ListeningList does that for lists fed
// from the event bus.
package media

import (
	"errors"

	"github.com/google/uuid"
)

// ErrMediaMissing is returned when a media item is not in a list.
var ErrMediaMissing = errors.New("media missing")

// ID identifies one constructed media object. Two constructions over the
// same file get different IDs.
type ID uuid.UUID

// NewID draws a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Same reports whether a and b are the same media object. Content is never
// compared.
func Same(a, b Media) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}
