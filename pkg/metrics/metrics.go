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

// Package metrics holds the Prometheus collectors for the media model. They
// register on the default registry so a host process can expose them with
// promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lock metrics, only incremented in -tags=deadlock builds
var (
	PotentialDeadlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagvault_potential_deadlocks_total",
			Help: "Total number of potential deadlocks reported by the lock checker",
		},
	)
)

// Tag cache metrics
var (
	TagCacheRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagvault_tag_cache_rebuilds_total",
			Help: "Total number of tag manager display cache rebuilds",
		},
	)
)

// Content update metrics
var (
	ContentUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagvault_content_updates_total",
			Help: "Total number of content updates applied to media results",
		},
		[]string{"data_type", "result"}, // "applied", "missing"
	)

	ServiceUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagvault_service_updates_total",
			Help: "Total number of service updates applied to media lists",
		},
		[]string{"action"},
	)

	ListRecalcsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagvault_collection_recalcs_total",
			Help: "Total number of collection aggregate recalculations",
		},
	)
)

// Duplicate analysis metrics
var (
	AnalysisCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagvault_analysis_cache_lookups_total",
			Help: "Total number of duplicate analysis cache lookups",
		},
		[]string{"cache", "result"}, // "hit", "miss", "error"
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagvault_analysis_duration_seconds",
			Help:    "Time spent decoding a file for duplicate analysis",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"cache"},
	)
)
