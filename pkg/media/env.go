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
	"context"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/services"
)

// ResultReader loads fresh results from the backing store.
type ResultReader interface {
	ReadResults(ctx context.Context, hashes []files.Hash) ([]*Result, error)
}

// Env carries the collaborators and settings a List needs. One Env is
// normally shared by every list of a process.
type Env struct {
	Registry services.Registry
	Clock    clockwork.Clock
	Reader   ResultReader
	// Rand draws random sort keys.
	Rand              *rand.Rand
	HiddenViewerMimes map[files.Mime]bool
	FallbackSort      Sort
	// RemoveTrashedFiles drops files trashed from a list's own local file
	// domain.
	RemoveTrashedFiles bool
}

// NewEnv returns an Env with a real clock, a random source and an import
// time fallback sort.
func NewEnv(reg services.Registry) *Env {
	return &Env{
		Registry:          reg,
		Clock:             clockwork.NewRealClock(),
		Rand:              rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		HiddenViewerMimes: make(map[files.Mime]bool),
		FallbackSort:      Sort{Type: SortImportTime, Asc: true},
	}
}

func (e *Env) now() time.Time {
	if e == nil || e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Env) float64() float64 {
	if e == nil || e.Rand == nil {
		return rand.Float64()
	}
	return e.Rand.Float64()
}
