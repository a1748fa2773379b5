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
	"crypto/sha256"
	"fmt"
	"image"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/tagvault/tagvault-core/pkg/analysis"
	"github.com/tagvault/tagvault-core/pkg/config"
	"github.com/tagvault/tagvault-core/pkg/duplicates"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/media"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
)

// fileReport is what can be learned about a file without a database.
type fileReport struct {
	modified time.Time
	path     string
	mimeType string
	size     int64
	width    int
	height   int
	hash     files.Hash
	mime     files.Mime
}

func inspectFile(ctx context.Context, fs afero.Fs, path string) (fileReport, error) {
	if err := ctx.Err(); err != nil {
		return fileReport{}, err
	}

	f, err := fs.Open(path)
	if err != nil {
		return fileReport{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("failed to close file")
		}
	}()

	stat, err := f.Stat()
	if err != nil {
		return fileReport{}, fmt.Errorf("failed to stat file: %w", err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return fileReport{}, fmt.Errorf("failed to detect file type: %w", err)
	}
	mimeType, _, _ := strings.Cut(mt.String(), ";")
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fileReport{}, fmt.Errorf("failed to rewind file: %w", err)
	}

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return fileReport{}, fmt.Errorf("failed to hash file: %w", err)
	}

	r := fileReport{
		path:     path,
		mimeType: mimeType,
		mime:     files.MimeFromType(mimeType),
		size:     size,
		modified: stat.ModTime(),
	}
	copy(r.hash[:], h.Sum(nil))

	if r.mime.IsImage() {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fileReport{}, fmt.Errorf("failed to rewind file: %w", err)
		}
		imgCfg, _, err := image.DecodeConfig(f)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("no resolution for image")
		} else {
			r.width, r.height = imgCfg.Width, imgCfg.Height
		}
	}

	log.Debug().
		Str("path", path).
		Str("mime", mimeType).
		Str("hash", r.hash.Hex()).
		Msg("inspected file")
	return r, nil
}

// singleton wraps the report as a local file imported at its modified time.
func (r fileReport) singleton(clock clockwork.Clock) *media.Singleton {
	size := r.size
	info := media.FileInfo{Hash: r.hash, Mime: r.mime, Size: &size}
	if r.width > 0 && r.height > 0 {
		w, h := r.width, r.height
		info.Width, info.Height = &w, &h
	}
	loc := media.Locations{
		Current: []services.Key{services.LocalFileKey, services.CombinedLocalFileKey},
		Timestamps: map[services.Key]time.Time{
			services.LocalFileKey:         r.modified,
			services.CombinedLocalFileKey: r.modified,
		},
		FileModified: r.modified,
	}
	return media.NewSingleton(media.NewResult(
		info,
		tags.NewManager(tags.Resolver{}, nil),
		media.NewLocationsManager(loc, clock),
		media.NewRatingsManager(nil),
		&media.ViewingStats{},
	))
}

// pathLocator serves the files named on the command line.
type pathLocator map[files.Hash]string

func (l pathLocator) FilePath(hash files.Hash, _ files.Mime) (string, error) {
	if p, ok := l[hash]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown file %s", hash.Hex())
}

// Compare prints the duplicate comparison of pathA against pathB.
func Compare(ctx context.Context, out io.Writer, cfg *config.Instance, fs afero.Fs, pathA, pathB string) error {
	d := cfg.Duplicates()
	opts, err := duplicates.OptionsFromConfig(d)
	if err != nil {
		return err
	}

	a, err := inspectFile(ctx, fs, pathA)
	if err != nil {
		return fmt.Errorf("%s: %w", pathA, err)
	}
	b, err := inspectFile(ctx, fs, pathB)
	if err != nil {
		return fmt.Errorf("%s: %w", pathB, err)
	}

	cache, err := duplicates.NewAnalysisCache(
		pathLocator{a.hash: a.path, b.hash: b.path},
		analysis.NewAnalyzer(fs),
		d.JPEGQualityCacheSize,
		d.PixelHashCacheSize,
	)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	comparer := duplicates.NewComparer(opts, cache, clock)
	st, err := comparer.Statements(ctx, a.singleton(clock), b.singleton(clock))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "a: %s (%s)\n", a.path, a.mimeType)
	_, _ = fmt.Fprintf(out, "b: %s (%s)\n", b.path, b.mimeType)
	for _, crit := range duplicates.Criteria {
		s, ok := st[crit]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(out, "%s: %s (%+d)\n", crit, s.Text, s.Score)
	}
	_, _ = fmt.Fprintf(out, "total: %+d\n", st.Total())
	return nil
}

// Quality prints the jpeg quality estimate of path.
func Quality(ctx context.Context, out io.Writer, fs afero.Fs, path string) error {
	q, err := analysis.NewAnalyzer(fs).JPEGQuality(ctx, path)
	if err != nil {
		return err
	}
	if !q.Known {
		_, _ = fmt.Fprintf(out, "%s: %s\n", path, q.Label)
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s: %s (%.0f)\n", path, q.Label, q.Value)
	return nil
}

// Inspect prints the info lines of path as a local file.
func Inspect(ctx context.Context, out io.Writer, cfg *config.Instance, fs afero.Fs, path string) error {
	r, err := inspectFile(ctx, fs, path)
	if err != nil {
		return err
	}
	env, err := media.NewEnvFromConfig(services.NewMemoryRegistry(services.DefaultServices()...), cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s\n", r.hash.Hex())
	for _, line := range r.singleton(env.Clock).PrettyInfoLines(env) {
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}
