/*
* Command-line entry point of the sample entropy file scanner
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Gilah-EnE/sampen_scanner/internal/config"
	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
)

const usage = "Usage: sampen_scanner [flags] <directory> <shingle_size>"

// invocation is the parsed command line.
type invocation struct {
	cfg  *config.Config
	root string
	gui  bool
}

func parseArgs(args []string, stderr io.Writer) (*invocation, error) {
	fs := flag.NewFlagSet("sampen_scanner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	defaults := config.DefaultConfig()
	var (
		configPath = fs.String("config", "", "Path to a TOML, JSON or YAML configuration file")
		threshold  = fs.Float64("threshold", defaults.Scan.Threshold, "Absolute z-score above which a file is anomalous")
		m          = fs.Int("m", defaults.Scan.ComparisonLength, "Template length for sample entropy")
		r          = fs.Float64("r", defaults.Scan.Tolerance, "Normalized Hamming tolerance for template matches")
		workers    = fs.Int("workers", defaults.Scan.Workers, "Match counter workers (0 = one per CPU)")
		format     = fs.String("format", defaults.Report.Format, "Report format (text, json)")
		output     = fs.String("o", defaults.Report.Output, "Write the JSON report to this file")
		details    = fs.Bool("details", defaults.Report.Details, "Add byte statistics and signature sweeps to findings")
		noColor    = fs.Bool("no-color", false, "Disable colored output")
		db         = fs.String("db", "", "Record runs in this SQLite database")
		watch      = fs.Bool("watch", defaults.Watch.Enabled, "Rescan whenever files under the directory change")
		logLevel   = fs.String("log-level", defaults.Logging.Level, "Log level (debug, info, warn, error)")
		logFormat  = fs.String("log-format", defaults.Logging.Format, "Log format (text, json)")
		gui        = fs.Bool("gui", false, "Start the graphical interface")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	// Explicit flags win over the file and the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			cfg.Scan.Threshold = *threshold
		case "m":
			cfg.Scan.ComparisonLength = *m
		case "r":
			cfg.Scan.Tolerance = *r
		case "workers":
			cfg.Scan.Workers = *workers
		case "format":
			cfg.Report.Format = *format
		case "o":
			cfg.Report.Output = *output
			cfg.Report.Format = "json"
		case "details":
			cfg.Report.Details = *details
		case "no-color":
			cfg.Report.Color = !*noColor
		case "db":
			cfg.Store.Enabled = *db != ""
			cfg.Store.Path = *db
		case "watch":
			cfg.Watch.Enabled = *watch
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		}
	})

	inv := &invocation{cfg: cfg, gui: *gui}
	rest := fs.Args()
	switch {
	case len(rest) > 2:
		return nil, errors.New(usage)
	case len(rest) == 0 && !inv.gui:
		return nil, errors.New(usage)
	}
	if len(rest) > 0 {
		inv.root = rest[0]
	}
	if len(rest) == 2 {
		k, err := strconv.Atoi(rest[1])
		if err != nil {
			return nil, errors.New("shingle size must be an integer")
		}
		cfg.Scan.ShingleLength = k
	}

	if inv.gui && cfg.Scan.ShingleLength == 0 {
		// The window asks for it.
		return inv, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logCfg, err := inv.cfg.LoggerConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer logger.Close()

	if inv.gui {
		return runGUI(inv.cfg, inv.root, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(inv.cfg, logger, stdout)
	if err != nil {
		logger.Error("Cannot start scanner", "error", err)
		return 1
	}
	defer a.Close()

	if err := a.scanOnce(ctx, inv.root); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Scan interrupted")
		} else {
			logger.Error("Scan failed", "root", inv.root, "error", err)
		}
		return 1
	}

	if inv.cfg.Watch.Enabled {
		if err := a.watch(ctx, inv.root); err != nil {
			logger.Error("Watch failed", "root", inv.root, "error", err)
			return 1
		}
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
