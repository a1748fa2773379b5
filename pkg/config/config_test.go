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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstance(t *testing.T, content string) *Instance {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return &Instance{
		cfgPath:  cfgPath,
		vals:     BaseDefaults,
		defaults: BaseDefaults,
	}
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg, err := NewConfig(tempDir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, CfgFile), cfg.Path())
	assert.FileExists(t, cfg.Path())

	m := cfg.Media()
	assert.Equal(t, "filesize", m.DefaultSort.Type)
	assert.True(t, m.DefaultSort.Asc)
	assert.Equal(t, "import_time", m.FallbackSort.Type)
	assert.Equal(t, DefaultDuplicates, cfg.Duplicates())
	assert.False(t, cfg.DebugLogging())
}

func TestNewConfig_EnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "custom.toml")
	t.Setenv(CfgEnv, cfgPath)

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, cfg.Path())
	assert.FileExists(t, cfgPath)
}

func TestLoad_PreservesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, fmt.Sprintf("config_schema = %d\n", SchemaVersion))
	require.NoError(t, cfg.Load())

	assert.Equal(t, BaseDefaults.Media.DefaultSort, cfg.Media().DefaultSort)
	assert.Equal(t, DefaultDuplicates, cfg.Duplicates())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, fmt.Sprintf(`config_schema = %d
debug_logging = true

[media]
hidden_viewer_mimes = ["application/pdf"]
remove_trashed_files = true

[media.default_sort]
type = "namespaces"
namespaces = ["series", "creator"]
asc = false

[media.collect]
namespaces = ["series"]

[duplicates]
more_tags = 12
older_than = "48h"
`, SchemaVersion))
	require.NoError(t, cfg.Load())

	assert.True(t, cfg.DebugLogging())
	assert.True(t, cfg.RemoveTrashedFiles())

	m := cfg.Media()
	assert.Equal(t, []string{"application/pdf"}, m.HiddenViewerMimes)
	assert.Equal(t, "namespaces", m.DefaultSort.Type)
	assert.Equal(t, []string{"series", "creator"}, m.DefaultSort.Namespaces)
	assert.False(t, m.DefaultSort.Asc)
	assert.Equal(t, []string{"series"}, m.Collect.Namespaces)
	assert.Equal(t, "import_time", m.FallbackSort.Type, "untouched section keeps default")

	d := cfg.Duplicates()
	assert.Equal(t, 12, d.MoreTags)
	assert.Equal(t, "48h", d.OlderThan)
	assert.Equal(t, DefaultDuplicates.HigherResolution, d.HigherResolution)
}

func TestLoad_DoesNotLeakIntoDefaults(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, fmt.Sprintf(`config_schema = %d
[media]
hidden_viewer_mimes = ["video/mp4"]
`, SchemaVersion))
	require.NoError(t, cfg.Load())

	m := cfg.Media()
	m.HiddenViewerMimes[0] = "changed/by-caller"
	assert.Equal(t, []string{"video/mp4"}, cfg.Media().HiddenViewerMimes)
	assert.Empty(t, BaseDefaults.Media.HiddenViewerMimes)
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "config_schema = 99\n")
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown sort type",
			content: "[media.default_sort]\ntype = \"colour\"\n",
		},
		{
			name:    "rating sort without service",
			content: "[media.default_sort]\ntype = \"rating\"\n",
		},
		{
			name:    "namespace sort without namespaces",
			content: "[media.fallback_sort]\ntype = \"namespaces\"\n",
		},
		{
			name:    "mime without slash",
			content: "[media]\nhidden_viewer_mimes = [\"pdf\"]\n",
		},
		{
			name:    "bad duration",
			content: "[duplicates]\nolder_than = \"a month\"\n",
		},
		{
			name:    "much higher ratio below higher ratio",
			content: "[duplicates]\nhigher_ratio = 1.5\nmuch_higher_ratio = 1.2\n",
		},
		{
			name:    "ratio not above one",
			content: "[duplicates]\nhigher_ratio = 1.0\n",
		},
		{
			name:    "zero workers",
			content: "[duplicates]\nworkers = 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := newTestInstance(t, fmt.Sprintf("config_schema = %d\n%s", SchemaVersion, tt.content))
			err := cfg.Load()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Equal(t, BaseDefaults.Media.DefaultSort, cfg.Media().DefaultSort, "failed load keeps values")
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "config_schema = [\n")
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoad_NoPath(t *testing.T) {
	t.Parallel()

	cfg := &Instance{}
	require.Error(t, cfg.Load())
	require.Error(t, cfg.Save())
}

func TestLoad_ReloadCycle(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	require.NoError(t, cfg.SetDefaultSort(SortValues{Type: "rating", RatingService: "favourites"}))
	require.NoError(t, cfg.SetCollect(CollectValues{Namespaces: []string{"series"}, CollectUnmatched: true}))
	cfg.SetRemoveTrashedFiles(true)
	cfg.SetDebugLogging(true)
	require.NoError(t, cfg.Save())

	require.NoError(t, cfg.Load())

	m := cfg.Media()
	assert.Equal(t, "rating", m.DefaultSort.Type)
	assert.Equal(t, "favourites", m.DefaultSort.RatingService)
	assert.Equal(t, []string{"series"}, m.Collect.Namespaces)
	assert.True(t, m.Collect.CollectUnmatched)
	assert.True(t, cfg.RemoveTrashedFiles())
	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, "import_time", m.FallbackSort.Type)
}

func TestSetDefaultSort_RejectsInvalid(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "")
	err := cfg.SetDefaultSort(SortValues{Type: "namespaces"})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "filesize", cfg.Media().DefaultSort.Type)
}

func TestSetCollect_RejectsEmptyNamespace(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "")
	err := cfg.SetCollect(CollectValues{Namespaces: []string{"series", ""}})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, cfg.Media().Collect.Namespaces)
}

func TestSetDuplicates(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "")

	d := DefaultDuplicates
	d.Workers = 8
	require.NoError(t, cfg.SetDuplicates(d))
	assert.Equal(t, 8, cfg.Duplicates().Workers)

	d.OlderThan = "soon"
	require.ErrorIs(t, cfg.SetDuplicates(d), ErrInvalidConfig)
	assert.Equal(t, "720h", cfg.Duplicates().OlderThan)
}

func TestSave_RejectsInvalid(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "")
	cfg.vals.Duplicates.Workers = 0
	require.ErrorIs(t, cfg.Save(), ErrInvalidConfig)
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(BaseDefaults))
}
