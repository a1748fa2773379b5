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
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/tagvault/tagvault-core/pkg/files"
	"github.com/tagvault/tagvault-core/pkg/media"
	"github.com/tagvault/tagvault-core/pkg/services"
	"github.com/tagvault/tagvault-core/pkg/tags"
	"golang.org/x/sync/errgroup"
)

// Criterion names one comparison signal.
type Criterion string

const (
	CriterionFilesize        Criterion = "filesize"
	CriterionResolution      Criterion = "resolution"
	CriterionRatio           Criterion = "ratio"
	CriterionMime            Criterion = "mime"
	CriterionNumTags         Criterion = "num_tags"
	CriterionTimeImported    Criterion = "time_imported"
	CriterionJPEGQuality     Criterion = "jpeg_quality"
	CriterionPixelDuplicates Criterion = "pixel_duplicates"
)

// Criteria lists every criterion in display order.
var Criteria = []Criterion{
	CriterionFilesize,
	CriterionResolution,
	CriterionRatio,
	CriterionMime,
	CriterionNumTags,
	CriterionTimeImported,
	CriterionJPEGQuality,
	CriterionPixelDuplicates,
}

// Statement is a human readable comparison and its signed score.
type Statement struct {
	Text  string
	Score int
}

// Statements maps each criterion that produced a signal to its statement.
type Statements map[Criterion]Statement

// Total sums the scores.
func (s Statements) Total() int {
	total := 0
	for _, st := range s {
		total += st.Score
	}
	return total
}

var niceResolutions = map[[2]int]string{
	{640, 480}:   "480p",
	{1280, 720}:  "720p",
	{1920, 1080}: "1080p",
	{3840, 2060}: "4k",
}

var niceRatios = []struct {
	w, h  int
	label string
}{
	{1, 1, "1:1"},
	{4, 3, "4:3"},
	{5, 4, "5:4"},
	{16, 9, "16:9"},
	{21, 9, "21:9"},
	{47, 20, "2.35:1"},
	{9, 16, "9:16"},
	{2, 3, "2:3"},
	{4, 5, "4:5"},
}

// Comparer scores pairs of files. Without an AnalysisCache the jpeg
// quality and pixel duplicate criteria are skipped.
type Comparer struct {
	cache *AnalysisCache
	clock clockwork.Clock
	opts  Options
}

func NewComparer(opts Options, cache *AnalysisCache, clock clockwork.Clock) *Comparer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Comparer{opts: opts, cache: cache, clock: clock}
}

// Statements compares a against b. Swapping the arguments negates every
// score. Analysis failures skip their criterion; only context errors are
// returned.
func (c *Comparer) Statements(ctx context.Context, a, b *media.Singleton) (Statements, error) {
	out := make(Statements)

	if st, ok := c.filesize(a, b); ok {
		out[CriterionFilesize] = st
	}
	if res, ratio, ok := c.resolution(a, b); ok {
		out[CriterionResolution] = res
		if ratio.Text != "" {
			out[CriterionRatio] = ratio
		}
	}
	if a.Mime() != b.Mime() {
		out[CriterionMime] = Statement{Text: a.Mime().String() + " vs " + b.Mime().String()}
	}
	if st, ok := c.numTags(a, b); ok {
		out[CriterionNumTags] = st
	}
	if st, ok := c.timeImported(a, b); ok {
		out[CriterionTimeImported] = st
	}

	if c.cache == nil {
		return out, nil
	}

	st, ok, err := c.jpegQuality(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if ok {
		out[CriterionJPEGQuality] = st
	}

	st, ok, err = c.pixelDuplicates(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if ok {
		out[CriterionPixelDuplicates] = st
	}

	return out, nil
}

// Score is the total of Statements.
func (c *Comparer) Score(ctx context.Context, a, b *media.Singleton) (int, error) {
	st, err := c.Statements(ctx, a, b)
	if err != nil {
		return 0, err
	}
	return st.Total(), nil
}

// Pair is one comparison of a batch.
type Pair struct {
	A *media.Singleton
	B *media.Singleton
}

// ScoreBatch scores every pair with at most workers comparisons running
// at once. Scores are returned in pair order.
func (c *Comparer) ScoreBatch(ctx context.Context, pairs []Pair, workers int) ([]int, error) {
	scores := make([]int, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, p := range pairs {
		g.Go(func() error {
			s, err := c.Score(gctx, p.A, p.B)
			if err != nil {
				return err
			}
			scores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// compareRatio compares x against y by the ratio of the larger to the
// smaller value. Ratios at or below higherRatio give equalOp and zero.
func (c *Comparer) compareRatio(x, y, higherRatio float64, higher, much int, equalOp string) (string, int) {
	bigger := x > y
	r := x / y
	if !bigger {
		r = y / x
	}

	var op string
	var score int
	switch {
	case r > c.opts.MuchHigherRatio:
		op, score = ">>", much
	case r > higherRatio:
		op, score = ">", higher
	default:
		return equalOp, 0
	}
	if !bigger {
		op = strings.ReplaceAll(op, ">", "<")
		score = -score
	}
	return op, score
}

func (c *Comparer) filesize(a, b *media.Singleton) (Statement, bool) {
	sa, sb := a.Size(), b.Size()
	if sa == sb || sa <= 0 || sb <= 0 {
		return Statement{}, false
	}
	op, score := c.compareRatio(
		float64(sa), float64(sb),
		c.opts.HigherRatio, c.opts.HigherFilesize, c.opts.MuchHigherFilesize,
		"≈",
	)
	return Statement{
		Text:  humanize.Bytes(uint64(sa)) + " " + op + " " + humanize.Bytes(uint64(sb)),
		Score: score,
	}, true
}

func resolutionString(w, h int) string {
	if s, ok := niceResolutions[[2]int{w, h}]; ok {
		return s
	}
	s := humanize.Comma(int64(w)) + "x" + humanize.Comma(int64(h))
	if w%2 == 1 || h%2 == 1 {
		s += " (unusual)"
	}
	return s
}

func niceRatio(w, h int) (string, bool) {
	for _, r := range niceRatios {
		if w*r.h == h*r.w {
			return r.label, true
		}
	}
	return "unusual", false
}

// resolution compares pixel counts. The aspect ratio statement is only
// made when the resolutions differ and at least one ratio is nice.
func (c *Comparer) resolution(a, b *media.Singleton) (res, ratio Statement, ok bool) {
	aw, ah := a.Resolution()
	bw, bh := b.Resolution()
	if aw*ah == 0 || bw*bh == 0 || (aw == bw && ah == bh) {
		return Statement{}, Statement{}, false
	}

	op, score := c.compareRatio(
		float64(aw*ah), float64(bw*bh),
		1, c.opts.HigherResolution, c.opts.MuchHigherResolution,
		"!=",
	)
	res = Statement{
		Text:  resolutionString(aw, ah) + " " + op + " " + resolutionString(bw, bh),
		Score: score,
	}

	aLabel, aNice := niceRatio(aw, ah)
	bLabel, bNice := niceRatio(bw, bh)
	switch {
	case aNice && bNice:
		op, score = "-", 0
	case aNice:
		op, score = ">", c.opts.NiceRatio
	case bNice:
		op, score = "<", -c.opts.NiceRatio
	default:
		return res, Statement{}, true
	}
	if aLabel == bLabel {
		ratio = Statement{Text: "both " + aLabel, Score: score}
	} else {
		ratio = Statement{Text: aLabel + " " + op + " " + bLabel, Score: score}
	}
	return res, ratio, true
}

func numTags(s *media.Singleton) int {
	return s.TagsManager().CurrentAndPending(services.CombinedTagKey, tags.DisplaySiblingsAndParents).Cardinality()
}

func (c *Comparer) numTags(a, b *media.Singleton) (Statement, bool) {
	na, nb := numTags(a), numTags(b)
	if na == nb {
		return Statement{}, false
	}

	var op string
	var score int
	switch {
	case na > 0 && nb > 0 && na > nb:
		op, score = ">", c.opts.MoreTags
	case na > 0 && nb > 0:
		op, score = "<", -c.opts.MoreTags
	case na > 0:
		op, score = ">>", c.opts.MoreTags
	default:
		op, score = "<<", -c.opts.MoreTags
	}
	return Statement{
		Text:  humanize.Comma(int64(na)) + " tags " + op + " " + humanize.Comma(int64(nb)) + " tags",
		Score: score,
	}, true
}

func (c *Comparer) timeImported(a, b *media.Singleton) (Statement, bool) {
	ta, okA := a.Timestamp(services.CombinedLocalFileKey)
	tb, okB := b.Timestamp(services.CombinedLocalFileKey)
	if !okA || !okB {
		return Statement{}, false
	}
	diff := ta.Sub(tb)
	if diff.Abs() <= c.opts.OlderThan {
		return Statement{}, false
	}

	op, score := "older than", c.opts.Older
	if diff > 0 {
		op, score = "newer than", -c.opts.Older
	}
	now := c.clock.Now()
	return Statement{
		Text:  prettyTimeDelta(ta, now) + " " + op + " " + prettyTimeDelta(tb, now),
		Score: score,
	}, true
}

func prettyTimeDelta(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// analysisFailed decides whether err ends the comparison. Context errors
// do; anything else is logged and the criterion skipped.
func analysisFailed(ctx context.Context, criterion Criterion, s *media.Singleton, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Warn().Err(err).
		Str("criterion", string(criterion)).
		Str("hash", s.Hash().Hex()).
		Msg("skipping duplicate criterion")
	return nil
}

func (c *Comparer) jpegQuality(ctx context.Context, a, b *media.Singleton) (Statement, bool, error) {
	if a.Mime() != files.MimeImageJPEG || b.Mime() != files.MimeImageJPEG {
		return Statement{}, false, nil
	}

	qa, err := c.cache.JPEGQuality(ctx, a.Hash(), a.Mime())
	if err != nil {
		return Statement{}, false, analysisFailed(ctx, CriterionJPEGQuality, a, err)
	}
	qb, err := c.cache.JPEGQuality(ctx, b.Hash(), b.Mime())
	if err != nil {
		return Statement{}, false, analysisFailed(ctx, CriterionJPEGQuality, b, err)
	}
	if qa.Label == qb.Label {
		return Statement{}, false, nil
	}

	score := 0
	if qa.Known && qb.Known {
		// a lower table sum is better quality, so compare b against a
		_, score = c.compareRatio(qb.Value, qa.Value, 1, c.opts.HigherJPEGQuality, c.opts.MuchHigherJPEGQuality, "")
	}
	return Statement{Text: qa.Label + " vs " + qb.Label + " jpeg quality", Score: score}, true, nil
}

func (c *Comparer) pixelDuplicates(ctx context.Context, a, b *media.Singleton) (Statement, bool, error) {
	if !a.IsStaticImage() || !b.IsStaticImage() {
		return Statement{}, false, nil
	}
	aw, ah := a.Resolution()
	bw, bh := b.Resolution()
	if aw*ah == 0 || aw != bw || ah != bh {
		return Statement{}, false, nil
	}

	pa, err := c.cache.PixelHash(ctx, a.Hash(), a.Mime())
	if err != nil {
		return Statement{}, false, analysisFailed(ctx, CriterionPixelDuplicates, a, err)
	}
	pb, err := c.cache.PixelHash(ctx, b.Hash(), b.Mime())
	if err != nil {
		return Statement{}, false, analysisFailed(ctx, CriterionPixelDuplicates, b, err)
	}
	if pa != pb {
		return Statement{}, false, nil
	}

	aPNG := a.Mime() == files.MimeImagePNG
	bPNG := b.Mime() == files.MimeImagePNG
	switch {
	case aPNG && !bPNG:
		return Statement{Text: "this is a pixel-for-pixel duplicate png!", Score: -c.opts.PNGPixelDuplicate}, true, nil
	case !aPNG && bPNG:
		return Statement{Text: "other file is a pixel-for-pixel duplicate png!", Score: c.opts.PNGPixelDuplicate}, true, nil
	default:
		return Statement{Text: "images are pixel-for-pixel duplicates!"}, true, nil
	}
}
