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

//go:build deadlock

// Package syncutil provides the mutexes used by the media model caches.
// Build with -tags=deadlock to swap in go-deadlock for lock-order checking.
package syncutil

import (
	"time"

	"github.com/rs/zerolog/log"
	deadlock "github.com/sasha-s/go-deadlock"
	"github.com/tagvault/tagvault-core/pkg/metrics"
)

// DeadlockEnabled reports whether lock-order checking is compiled in.
const DeadlockEnabled = true

func init() {
	// collection recalcs over very large lists hold the list lock for a while
	deadlock.Opts.DeadlockTimeout = 20 * time.Second

	exit := deadlock.Opts.OnPotentialDeadlock
	deadlock.Opts.OnPotentialDeadlock = func() {
		metrics.PotentialDeadlocksTotal.Inc()
		log.Error().Msg("potential deadlock detected, lock report written to stderr")
		exit()
	}
}

// A Mutex guards a media model cache. The zero value is unlocked.
type Mutex struct {
	deadlock.Mutex
}

// An RWMutex guards caches read far more often than rebuilt, such as
// the tag display cache and the service registry.
type RWMutex struct {
	deadlock.RWMutex
}
