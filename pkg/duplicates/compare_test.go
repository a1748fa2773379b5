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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tagvault/tagvault-core/pkg/analysis"
	"github.com/tagvault/tagvault-core/pkg/config"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/media"
	"github.com/tagvault/tagvault-core/pkg/testing/fixtures"
	"github.com/tagvault/tagvault-core/pkg/testing/mocks"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newComparer(cache *AnalysisCache) *Comparer {
	return NewComparer(DefaultOptions(), cache, fixtures.NewClock())
}

func statements(t *testing.T, c *Comparer, a, b *media.Singleton) Statements {
	t.Helper()
	st, err := c.Statements(context.Background(), a, b)
	require.NoError(t, err)
	return st
}

// requireNegated checks every score of b-vs-a is the negation of a-vs-b.
func requireNegated(t *testing.T, c *Comparer, a, b *media.Singleton) {
	t.Helper()
	ab := statements(t, c, a, b)
	ba := statements(t, c, b, a)
	require.Len(t, ba, len(ab))
	for crit, st := range ab {
		require.Contains(t, ba, crit)
		assert.Equal(t, -st.Score, ba[crit].Score, "criterion %s", crit)
	}
}

func TestStatements_FilesizeSign(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Size(2_000_000).Singleton()
	b := fixtures.NewResultBuilder(2).Size(500_000).Singleton()
	c := newComparer(nil)

	ab := statements(t, c, a, b)
	assert.Equal(t, Statements{CriterionFilesize: {Text: "2.0 MB >> 500 kB", Score: 20}}, ab)

	ba := statements(t, c, b, a)
	assert.Equal(t, Statements{CriterionFilesize: {Text: "500 kB << 2.0 MB", Score: -20}}, ba)

	score, err := c.Score(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 20, score)
}

func TestStatements_FilesizeThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   int64
		text   string
		score  int
		absent bool
	}{
		{name: "equal", a: 1000, b: 1000, absent: true},
		{name: "unknown size", a: 0, b: 1000, absent: true},
		{name: "about the same", a: 1040, b: 1000, text: "1.0 kB ≈ 1.0 kB", score: 0},
		{name: "about the same reversed", a: 1000, b: 1040, text: "1.0 kB ≈ 1.0 kB", score: 0},
		{name: "higher", a: 1100, b: 1000, text: "1.1 kB > 1.0 kB", score: 10},
		{name: "lower", a: 1000, b: 1100, text: "1.0 kB < 1.1 kB", score: -10},
		{name: "exactly double", a: 2000, b: 1000, text: "2.0 kB > 1.0 kB", score: 10},
		{name: "exactly half", a: 1000, b: 2000, text: "1.0 kB < 2.0 kB", score: -10},
		{name: "much lower", a: 1000, b: 2500, text: "1.0 kB << 2.5 kB", score: -20},
		{name: "lower bound is reciprocal", a: 951, b: 1000, text: "951 B < 1.0 kB", score: -10},
		{name: "inside reciprocal bound", a: 953, b: 1000, text: "953 B ≈ 1.0 kB", score: 0},
	}

	c := newComparer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := fixtures.NewResultBuilder(1).Size(tt.a).Singleton()
			b := fixtures.NewResultBuilder(2).Size(tt.b).Singleton()
			st := statements(t, c, a, b)
			if tt.absent {
				assert.NotContains(t, st, CriterionFilesize)
				return
			}
			assert.Equal(t, Statement{Text: tt.text, Score: tt.score}, st[CriterionFilesize])
		})
	}
}

func TestStatements_Resolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resolution Statement
		ratio      *Statement
		aw, ah     int
		bw, bh     int
	}{
		{
			name: "nice resolutions",
			aw:   1920, ah: 1080, bw: 1280, bh: 720,
			resolution: Statement{Text: "1080p >> 720p", Score: 50},
			ratio:      &Statement{Text: "both 16:9", Score: 0},
		},
		{
			name: "unusual against nice",
			aw:   1921, ah: 1081, bw: 1920, bh: 1080,
			resolution: Statement{Text: "1,921x1,081 (unusual) > 1080p", Score: 20},
			ratio:      &Statement{Text: "unusual < 16:9", Score: -10},
		},
		{
			name: "nice ratio against unusual",
			aw:   800, ah: 600, bw: 1000, bh: 700,
			resolution: Statement{Text: "800x600 < 1,000x700", Score: -20},
			ratio:      &Statement{Text: "4:3 > unusual", Score: 10},
		},
		{
			name: "different nice ratios",
			aw:   400, ah: 300, bw: 1600, bh: 900,
			resolution: Statement{Text: "400x300 << 1,600x900", Score: -50},
			ratio:      &Statement{Text: "4:3 - 16:9", Score: 0},
		},
		{
			name: "same pixel count",
			aw:   100, ah: 200, bw: 200, bh: 100,
			resolution: Statement{Text: "100x200 != 200x100", Score: 0},
		},
	}

	c := newComparer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := fixtures.NewResultBuilder(1).Resolution(tt.aw, tt.ah).Singleton()
			b := fixtures.NewResultBuilder(2).Resolution(tt.bw, tt.bh).Singleton()
			st := statements(t, c, a, b)
			assert.Equal(t, tt.resolution, st[CriterionResolution])
			if tt.ratio == nil {
				assert.NotContains(t, st, CriterionRatio)
			} else {
				assert.Equal(t, *tt.ratio, st[CriterionRatio])
			}
			requireNegated(t, c, a, b)
		})
	}
}

func TestStatements_SameResolutionHasNoRatio(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Resolution(640, 480).Singleton()
	b := fixtures.NewResultBuilder(2).Resolution(640, 480).Singleton()
	st := statements(t, newComparer(nil), a, b)
	assert.NotContains(t, st, CriterionResolution)
	assert.NotContains(t, st, CriterionRatio)
}

func TestStatements_Mime(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Singleton()
	b := fixtures.NewResultBuilder(2).Mime(files.MimeImagePNG).Singleton()
	st := statements(t, newComparer(nil), a, b)
	assert.Equal(t, Statement{Text: "jpeg vs png"}, st[CriterionMime])
}

func TestStatements_NumTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		a, b  []string
		score int
	}{
		{name: "more", a: []string{"x", "y", "z"}, b: []string{"x"}, text: "3 tags > 1 tags", score: 8},
		{name: "fewer", a: []string{"x"}, b: []string{"x", "y"}, text: "1 tags < 2 tags", score: -8},
		{name: "only a", a: []string{"x", "y"}, b: nil, text: "2 tags >> 0 tags", score: 8},
		{name: "only b", a: nil, b: []string{"x"}, text: "0 tags << 1 tags", score: -8},
	}

	c := newComparer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := fixtures.NewResultBuilder(1).Tags(tt.a...).Singleton()
			b := fixtures.NewResultBuilder(2).Tags(tt.b...).Singleton()
			assert.Equal(t, Statement{Text: tt.text, Score: tt.score}, statements(t, c, a, b)[CriterionNumTags])
		})
	}

	same := statements(t, c,
		fixtures.NewResultBuilder(1).Tags("x").Singleton(),
		fixtures.NewResultBuilder(2).Tags("y").Singleton(),
	)
	assert.NotContains(t, same, CriterionNumTags)
}

func TestStatements_TimeImported(t *testing.T) {
	t.Parallel()

	c := newComparer(nil)
	old := fixtures.NewResultBuilder(1).Imported(fixtures.Epoch.AddDate(0, 0, -100)).Singleton()
	recent := fixtures.NewResultBuilder(2).Imported(fixtures.Epoch.AddDate(0, 0, -2)).Singleton()
	nearby := fixtures.NewResultBuilder(3).Imported(fixtures.Epoch.AddDate(0, 0, -20)).Singleton()

	st := statements(t, c, old, recent)[CriterionTimeImported]
	assert.Equal(t, 4, st.Score)
	assert.Contains(t, st.Text, " older than ")
	assert.Contains(t, st.Text, "2 days ago")

	st = statements(t, c, recent, old)[CriterionTimeImported]
	assert.Equal(t, -4, st.Score)
	assert.Contains(t, st.Text, " newer than ")

	assert.NotContains(t, statements(t, c, nearby, recent), CriterionTimeImported)
	assert.NotContains(t, statements(t, c, old, fixtures.NewResultBuilder(4).Singleton()), CriterionTimeImported)
}

func TestStatements_JPEGQuality(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Singleton()
	b := fixtures.NewResultBuilder(2).Singleton()
	unknown := fixtures.NewResultBuilder(3).Singleton()

	locator := mocks.StaticLocator{Paths: map[files.Hash]string{
		a.Hash(): "a.jpg", b.Hash(): "b.jpg", unknown.Hash(): "unknown.jpg",
	}}
	analyzer := &mocks.MockImageAnalyzer{}
	analyzer.On("JPEGQuality", mock.Anything, "a.jpg").Return(analysis.QualityFromTables([][]int{make64(5)}), nil)
	analyzer.On("JPEGQuality", mock.Anything, "b.jpg").Return(analysis.QualityFromTables([][]int{make64(17)}), nil)
	analyzer.On("JPEGQuality", mock.Anything, "unknown.jpg").Return(analysis.QualityFromTables(nil), nil)

	cache, err := NewAnalysisCache(locator, analyzer, 8, 8)
	require.NoError(t, err)
	c := newComparer(cache)

	assert.Equal(t,
		Statement{Text: "very high vs medium jpeg quality", Score: 20},
		statements(t, c, a, b)[CriterionJPEGQuality],
	)
	assert.Equal(t,
		Statement{Text: "medium vs very high jpeg quality", Score: -20},
		statements(t, c, b, a)[CriterionJPEGQuality],
	)
	assert.Equal(t,
		Statement{Text: "unknown vs very high jpeg quality", Score: 0},
		statements(t, c, unknown, a)[CriterionJPEGQuality],
	)

	// second lookups hit the cache
	analyzer.AssertNumberOfCalls(t, "JPEGQuality", 3)
}

func make64(v int) []int {
	out := make([]int, 64)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestStatements_JPEGQualitySkippedForOtherMimes(t *testing.T) {
	t.Parallel()

	analyzer := &mocks.MockImageAnalyzer{}
	cache, err := NewAnalysisCache(mocks.StaticLocator{}, analyzer, 8, 8)
	require.NoError(t, err)

	a := fixtures.NewResultBuilder(1).Mime(files.MimeImagePNG).Resolution(10, 10).Singleton()
	b := fixtures.NewResultBuilder(2).Resolution(20, 20).Singleton()
	st := statements(t, newComparer(cache), a, b)
	assert.NotContains(t, st, CriterionJPEGQuality)
	assert.NotContains(t, st, CriterionPixelDuplicates)
	analyzer.AssertNotCalled(t, "JPEGQuality", mock.Anything, mock.Anything)
	analyzer.AssertNotCalled(t, "PixelHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatements_PixelDuplicates(t *testing.T) {
	t.Parallel()

	pngFile := fixtures.NewResultBuilder(1).Mime(files.MimeImagePNG).Resolution(64, 64).Singleton()
	jpgFile := fixtures.NewResultBuilder(2).Resolution(64, 64).Singleton()
	otherPNG := fixtures.NewResultBuilder(3).Mime(files.MimeImagePNG).Resolution(64, 64).Singleton()
	different := fixtures.NewResultBuilder(4).Mime(files.MimeImagePNG).Resolution(64, 64).Singleton()

	locator := mocks.StaticLocator{Paths: map[files.Hash]string{
		pngFile.Hash(): "1", jpgFile.Hash(): "2", otherPNG.Hash(): "3", different.Hash(): "4",
	}}
	analyzer := &mocks.MockImageAnalyzer{}
	same := files.Hash{0xEE}
	analyzer.On("PixelHash", mock.Anything, "1", files.MimeImagePNG).Return(same, nil)
	analyzer.On("PixelHash", mock.Anything, "2", files.MimeImageJPEG).Return(same, nil)
	analyzer.On("PixelHash", mock.Anything, "3", files.MimeImagePNG).Return(same, nil)
	analyzer.On("PixelHash", mock.Anything, "4", files.MimeImagePNG).Return(files.Hash{0xDD}, nil)
	analyzer.On("JPEGQuality", mock.Anything, "2").Return(analysis.QualityFromTables([][]int{make64(5)}), nil)

	cache, err := NewAnalysisCache(locator, analyzer, 8, 8)
	require.NoError(t, err)
	c := newComparer(cache)

	assert.Equal(t,
		Statement{Text: "this is a pixel-for-pixel duplicate png!", Score: -100},
		statements(t, c, pngFile, jpgFile)[CriterionPixelDuplicates],
	)
	assert.Equal(t,
		Statement{Text: "other file is a pixel-for-pixel duplicate png!", Score: 100},
		statements(t, c, jpgFile, pngFile)[CriterionPixelDuplicates],
	)
	assert.Equal(t,
		Statement{Text: "images are pixel-for-pixel duplicates!"},
		statements(t, c, pngFile, otherPNG)[CriterionPixelDuplicates],
	)
	assert.NotContains(t, statements(t, c, pngFile, different), CriterionPixelDuplicates)
}

func TestStatements_AnalysisFailureSkipsCriterion(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Size(100).Singleton()
	b := fixtures.NewResultBuilder(2).Size(300).Singleton()

	locator := &mocks.MockFileLocator{}
	locator.On("FilePath", a.Hash(), files.MimeImageJPEG).Return("", errors.New("file is gone"))
	locator.On("FilePath", b.Hash(), files.MimeImageJPEG).Return("b.jpg", nil)
	analyzer := &mocks.MockImageAnalyzer{}

	cache, err := NewAnalysisCache(locator, analyzer, 8, 8)
	require.NoError(t, err)

	st := statements(t, newComparer(cache), a, b)
	assert.NotContains(t, st, CriterionJPEGQuality)
	assert.Equal(t, -20, st[CriterionFilesize].Score)
}

func TestStatements_ContextCanceled(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Singleton()
	b := fixtures.NewResultBuilder(2).Singleton()

	locator := mocks.StaticLocator{Paths: map[files.Hash]string{a.Hash(): "a", b.Hash(): "b"}}
	analyzer := &mocks.MockImageAnalyzer{}
	analyzer.On("JPEGQuality", mock.Anything, mock.Anything).Return(analysis.Quality{}, context.Canceled)

	cache, err := NewAnalysisCache(locator, analyzer, 8, 8)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newComparer(cache).Statements(ctx, a, b)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScoreBatch(t *testing.T) {
	t.Parallel()

	big := fixtures.NewResultBuilder(1).Size(10_000).Singleton()
	small := fixtures.NewResultBuilder(2).Size(1_000).Singleton()
	tagged := fixtures.NewResultBuilder(3).Size(1_000).Tags("x").Singleton()

	pairs := []Pair{
		{A: big, B: small},
		{A: small, B: big},
		{A: tagged, B: small},
		{A: small, B: small},
	}
	scores, err := newComparer(nil).ScoreBatch(context.Background(), pairs, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{20, -20, 8, 0}, scores)
}

func TestScoreBatch_Canceled(t *testing.T) {
	t.Parallel()

	a := fixtures.NewResultBuilder(1).Singleton()
	b := fixtures.NewResultBuilder(2).Singleton()
	locator := mocks.StaticLocator{Paths: map[files.Hash]string{a.Hash(): "a", b.Hash(): "b"}}
	analyzer := &mocks.MockImageAnalyzer{}
	analyzer.On("JPEGQuality", mock.Anything, mock.Anything).Return(analysis.Quality{}, context.Canceled)
	cache, err := NewAnalysisCache(locator, analyzer, 8, 8)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newComparer(cache).ScoreBatch(ctx, []Pair{{A: a, B: b}}, 4)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, 30*24*time.Hour, opts.OlderThan)
	assert.InDelta(t, 1.05, opts.HigherRatio, 1e-9)
	assert.Equal(t, 50, opts.MuchHigherResolution)

	d := config.DefaultDuplicates
	d.OlderThan = "never"
	_, err := OptionsFromConfig(d)
	require.Error(t, err)
}

func TestStatements_ConfiguredWeights(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.MuchHigherFilesize = 3
	c := NewComparer(opts, nil, fixtures.NewClock())

	a := fixtures.NewResultBuilder(1).Size(2_000_000).Singleton()
	b := fixtures.NewResultBuilder(2).Size(500_000).Singleton()
	assert.Equal(t, 3, statements(t, c, a, b)[CriterionFilesize].Score)
}
