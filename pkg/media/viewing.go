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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tagvault/tagvault-core/pkg/content"
)

// ViewingStats counts how often and how long a file was looked at.
// Viewtimes are in seconds.
type ViewingStats struct {
	PreviewViews    int
	PreviewViewtime float64
	MediaViews      int
	MediaViewtime   float64
}

// ProcessContentUpdate adds the deltas of a viewing stats update.
func (v *ViewingStats) ProcessContentUpdate(update content.Update) {
	if update.DataType() != content.DataFileViewingStats || update.Action() != content.ActionAdd {
		return
	}
	row := update.ViewingStatsRow()
	v.PreviewViews += row.PreviewViewsDelta
	v.PreviewViewtime += row.PreviewViewtimeDelta
	v.MediaViews += row.MediaViewsDelta
	v.MediaViewtime += row.MediaViewtimeDelta
}

// Duplicate returns an independent copy.
func (v *ViewingStats) Duplicate() *ViewingStats {
	out := *v
	return &out
}

func (v *ViewingStats) add(o *ViewingStats) {
	v.PreviewViews += o.PreviewViews
	v.PreviewViewtime += o.PreviewViewtime
	v.MediaViews += o.MediaViews
	v.MediaViewtime += o.MediaViewtime
}

func prettyViewtime(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

func (v *ViewingStats) PrettyCombinedLine() string {
	return "viewed " + humanize.Comma(int64(v.MediaViews+v.PreviewViews)) +
		" times, totalling " + prettyViewtime(v.MediaViewtime+v.PreviewViewtime)
}

func (v *ViewingStats) PrettyMediaLine() string {
	return "viewed " + humanize.Comma(int64(v.MediaViews)) +
		" times in media viewer, totalling " + prettyViewtime(v.MediaViewtime)
}

func (v *ViewingStats) PrettyPreviewLine() string {
	return "viewed " + humanize.Comma(int64(v.PreviewViews)) +
		" times in preview window, totalling " + prettyViewtime(v.PreviewViewtime)
}
