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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/tagvault/tagvault-core/pkg/analysis"
	"github.com/tagvault/tagvault-core/pkg/config"
	"github.com/tagvault/tagvault-core/pkg/duplicates"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/helpers/syncutil"
)

// walkFiles returns every regular file under dir, sorted by path.
func walkFiles(ctx context.Context, dir string) ([]string, error) {
	var (
		mu    syncutil.Mutex
		paths []string
	)
	conf := fastwalk.DefaultConfig
	err := fastwalk.Walk(&conf, dir, fastwalk.IgnorePermissionErrors(
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !d.Type().IsRegular() {
				return nil
			}
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// Scan walks dir, reports byte-identical images and scores every
// pixel-for-pixel duplicate against the first file of its group.
func Scan(ctx context.Context, out io.Writer, cfg *config.Instance, fsys afero.Fs, dir string) error {
	d := cfg.Duplicates()
	opts, err := duplicates.OptionsFromConfig(d)
	if err != nil {
		return err
	}

	paths, err := walkFiles(ctx, dir)
	if err != nil {
		return err
	}

	locator := make(pathLocator)
	var images []fileReport
	identical := 0
	for _, p := range paths {
		r, err := inspectFile(ctx, fsys, p)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn().Err(err).Str("path", p).Msg("skipping unreadable file")
			continue
		}
		if !r.mime.IsImage() {
			continue
		}
		if prev, ok := locator[r.hash]; ok {
			identical++
			_, _ = fmt.Fprintf(out, "identical: %s = %s\n", prev, r.path)
			continue
		}
		locator[r.hash] = r.path
		images = append(images, r)
	}

	cache, err := duplicates.NewAnalysisCache(
		locator,
		analysis.NewAnalyzer(fsys),
		d.JPEGQualityCacheSize,
		d.PixelHashCacheSize,
	)
	if err != nil {
		return err
	}

	groups := make(map[files.Hash][]fileReport)
	var order []files.Hash
	for _, r := range images {
		ph, err := cache.PixelHash(ctx, r.hash, r.mime)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Warn().Err(err).Str("path", r.path).Msg("skipping undecodable image")
			continue
		}
		if _, ok := groups[ph]; !ok {
			order = append(order, ph)
		}
		groups[ph] = append(groups[ph], r)
	}

	clock := clockwork.NewRealClock()
	var (
		pairs  []duplicates.Pair
		labels [][2]string
	)
	for _, ph := range order {
		group := groups[ph]
		if len(group) < 2 {
			continue
		}
		first := group[0].singleton(clock)
		for _, other := range group[1:] {
			pairs = append(pairs, duplicates.Pair{A: first, B: other.singleton(clock)})
			labels = append(labels, [2]string{group[0].path, other.path})
		}
	}

	scores, err := duplicates.NewComparer(opts, cache, clock).ScoreBatch(ctx, pairs, d.Workers)
	if err != nil {
		return err
	}
	for i, score := range scores {
		_, _ = fmt.Fprintf(out, "%s vs %s: %+d\n", labels[i][0], labels[i][1], score)
	}

	_, _ = fmt.Fprintf(
		out,
		"scanned %s files: %s images, %d identical, %d pixel duplicate pairs\n",
		humanize.Comma(int64(len(paths))),
		humanize.Comma(int64(len(images)+identical)),
		identical,
		len(pairs),
	)
	return nil
}
