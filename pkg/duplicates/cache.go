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

package duplicates

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/tagvault/tagvault-core/pkg/analysis"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	cacheJPEG   = "jpeg_quality"
	cachePixels = "pixel_hash"
)

// FileLocator finds the file on disk for a hash.
type FileLocator interface {
	FilePath(hash files.Hash, mime files.Mime) (string, error)
}

// ImageAnalyzer decodes files. analysis.Analyzer is the disk backed
// implementation.
type ImageAnalyzer interface {
	JPEGQuality(ctx context.Context, path string) (analysis.Quality, error)
	PixelHash(ctx context.Context, path string, mime files.Mime) (files.Hash, error)
}

// AnalysisCache memoizes analysis results per file hash in bounded LRU
// caches. Concurrent lookups of the same hash share one decode. A caller
// whose context ends stops waiting, but the shared decode still finishes
// and fills the cache for the next caller.
type AnalysisCache struct {
	locator  FileLocator
	analyzer ImageAnalyzer
	jpeg     *lru.Cache[files.Hash, analysis.Quality]
	pixels   *lru.Cache[files.Hash, files.Hash]
	group    singleflight.Group
}

func NewAnalysisCache(
	locator FileLocator,
	analyzer ImageAnalyzer,
	jpegSize, pixelSize int,
) (*AnalysisCache, error) {
	jpeg, err := lru.New[files.Hash, analysis.Quality](jpegSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create jpeg quality cache: %w", err)
	}
	pixels, err := lru.New[files.Hash, files.Hash](pixelSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pixel hash cache: %w", err)
	}
	return &AnalysisCache{
		locator:  locator,
		analyzer: analyzer,
		jpeg:     jpeg,
		pixels:   pixels,
	}, nil
}

// JPEGQuality returns the quality estimate of the file with hash.
func (c *AnalysisCache) JPEGQuality(ctx context.Context, hash files.Hash, mime files.Mime) (analysis.Quality, error) {
	return lookup(ctx, c, c.jpeg, cacheJPEG, hash, mime, func(ctx context.Context, path string) (analysis.Quality, error) {
		return c.analyzer.JPEGQuality(ctx, path)
	})
}

// PixelHash returns the pixel content hash of the file with hash.
func (c *AnalysisCache) PixelHash(ctx context.Context, hash files.Hash, mime files.Mime) (files.Hash, error) {
	return lookup(ctx, c, c.pixels, cachePixels, hash, mime, func(ctx context.Context, path string) (files.Hash, error) {
		return c.analyzer.PixelHash(ctx, path, mime)
	})
}

// Len returns the number of cached jpeg and pixel entries.
func (c *AnalysisCache) Len() (jpeg, pixels int) {
	return c.jpeg.Len(), c.pixels.Len()
}

// Purge empties both caches.
func (c *AnalysisCache) Purge() {
	c.jpeg.Purge()
	c.pixels.Purge()
}

func lookup[V any](
	ctx context.Context,
	c *AnalysisCache,
	cache *lru.Cache[files.Hash, V],
	name string,
	hash files.Hash,
	mime files.Mime,
	load func(context.Context, string) (V, error),
) (V, error) {
	if v, ok := cache.Get(hash); ok {
		metrics.AnalysisCacheLookupsTotal.WithLabelValues(name, "hit").Inc()
		return v, nil
	}
	metrics.AnalysisCacheLookupsTotal.WithLabelValues(name, "miss").Inc()

	// the shared load outlives any single caller
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(name+":"+hash.Hex(), func() (any, error) {
		if v, ok := cache.Get(hash); ok {
			return v, nil
		}
		path, err := c.locator.FilePath(hash, mime)
		if err != nil {
			return nil, fmt.Errorf("locate %s: %w", hash.Hex(), err)
		}
		start := time.Now()
		v, err := load(loadCtx, path)
		metrics.AnalysisDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		cache.Add(hash, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.AnalysisCacheLookupsTotal.WithLabelValues(name, "error").Inc()
			log.Debug().Err(res.Err).Str("cache", name).Str("hash", hash.Hex()).Msg("analysis failed")
			return zero, res.Err
		}
		v, ok := res.Val.(V)
		if !ok {
			return zero, fmt.Errorf("unexpected %s cache value %T", name, res.Val)
		}
		return v, nil
	}
}
