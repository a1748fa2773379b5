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
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/tagvault/tagvault-core/pkg/config"
	"github.com/tagvault/tagvault-core/pkg/helpers"
)

var ErrUsage = errors.New("usage error")

type Flags struct {
	ConfigDir *string
	LogDir    *string
	Version   *bool
	Debug     *bool
}

// SetupFlags defines the CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigDir: fs.String(
			"config-dir",
			"",
			"directory holding "+config.CfgFile+" (default: XDG config home)",
		),
		LogDir: fs.String(
			"log-dir",
			"",
			"directory for "+config.LogFile+" (default: XDG state home)",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging to stderr",
		),
	}
}

func defaultDir(base, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Join(base, config.AppName)
}

// Setup initializes logging and the user config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(f *Flags, defaultConfig config.Values, writers []io.Writer) (*config.Instance, error) {
	logDir := defaultDir(xdg.StateHome, *f.LogDir)
	if err := helpers.InitLogging(logDir, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(defaultDir(xdg.ConfigHome, *f.ConfigDir), defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if *f.Debug {
		cfg.SetDebugLogging(true)
	}
	helpers.ApplyLogLevel(cfg)

	return cfg, nil
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintf(out, "Usage: %s [flags] <command> [args]\n\n", config.AppName)
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  compare <file> <file>  score two files as a duplicate pair")
	_, _ = fmt.Fprintln(out, "  quality <file>         estimate jpeg quality")
	_, _ = fmt.Fprintln(out, "  inspect <file>         print file metadata")
	_, _ = fmt.Fprintln(out, "  scan <dir>             find and score duplicate images in a directory")
	_, _ = fmt.Fprintln(out, "\nFlags:")
	fs.PrintDefaults()
}

// Run parses args and runs one command. The return value is the process
// exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := SetupFlags(fs)
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *f.Version {
		_, _ = fmt.Fprintln(stdout, config.AppVersion)
		return 0
	}

	var writers []io.Writer
	if *f.Debug {
		writers = append(writers, zerolog.ConsoleWriter{Out: stderr})
	}
	cfg, err := Setup(f, config.BaseDefaults, writers)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	err = runCommand(ctx, cfg, afero.NewOsFs(), fs.Args(), stdout)
	switch {
	case errors.Is(err, ErrUsage):
		_, _ = fmt.Fprintf(stderr, "Error: %v\n\n", err)
		usage(fs)
		return 2
	case err != nil:
		log.Error().Err(err).Msg("command failed")
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	default:
		return 0
	}
}

func runCommand(ctx context.Context, cfg *config.Instance, fsys afero.Fs, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "compare":
		if len(rest) != 2 {
			return fmt.Errorf("%w: compare needs two files", ErrUsage)
		}
		return Compare(ctx, out, cfg, fsys, rest[0], rest[1])
	case "quality":
		if len(rest) != 1 {
			return fmt.Errorf("%w: quality needs one file", ErrUsage)
		}
		return Quality(ctx, out, fsys, rest[0])
	case "inspect":
		if len(rest) != 1 {
			return fmt.Errorf("%w: inspect needs one file", ErrUsage)
		}
		return Inspect(ctx, out, cfg, fsys, rest[0])
	case "scan":
		if len(rest) != 1 {
			return fmt.Errorf("%w: scan needs one directory", ErrUsage)
		}
		return Scan(ctx, out, cfg, fsys, rest[0])
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}
