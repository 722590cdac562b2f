/*
* Scan, report and watch loop shared by the command line and the GUI
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
	"io"

	"github.com/Gilah-EnE/sampen_scanner/internal/catalog"
	"github.com/Gilah-EnE/sampen_scanner/internal/config"
	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
	"github.com/Gilah-EnE/sampen_scanner/internal/report"
	"github.com/Gilah-EnE/sampen_scanner/internal/scanner"
	"github.com/Gilah-EnE/sampen_scanner/internal/store"
	"github.com/Gilah-EnE/sampen_scanner/internal/watcher"
)

type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	scanner *scanner.Scanner
	store   *store.Store
	out     io.Writer
}

func newApp(cfg *config.Config, logger *logging.Logger, out io.Writer) (*app, error) {
	s, err := scanner.New(scanner.OptionsFromConfig(cfg), catalog.Default(), logger)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, scanner: s, out: out}
	if cfg.Store.Enabled {
		if a.store, err = store.Open(cfg.Store.Path); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// scanOnce runs one scan, writes the report and records the run.
func (a *app) scanOnce(ctx context.Context, root string) error {
	res, err := a.scanner.Run(ctx, root)
	if err != nil {
		return err
	}
	return a.publish(ctx, res)
}

func (a *app) publish(ctx context.Context, res *scanner.Result) error {
	switch {
	case a.cfg.Report.Format == "json" && a.cfg.Report.Output != "":
		if err := report.WriteFile(a.cfg.Report.Output, res); err != nil {
			return err
		}
		a.logger.Info("Report written", "path", a.cfg.Report.Output, "anomalies", res.Anomalies())
	case a.cfg.Report.Format == "json":
		if err := report.JSON(a.out, res); err != nil {
			return err
		}
	default:
		level, _ := logging.ParseLevel(a.cfg.Logging.Level)
		opts := report.TextOptions{
			Color:   a.cfg.Report.Color,
			Verbose: level == logging.LevelDebug,
		}
		if err := report.Text(a.out, res, opts); err != nil {
			return err
		}
	}

	if a.store != nil {
		if err := a.store.SaveRun(ctx, res); err != nil {
			a.logger.Error("Cannot record run", "path", a.cfg.Store.Path, "error", err)
		} else {
			a.logger.Debug("Run recorded", "run", res.ID.String())
		}
	}
	return nil
}

// watch rescans root after every settled burst of changes until ctx ends.
func (a *app) watch(ctx context.Context, root string) error {
	w, err := watcher.New(root, a.cfg.Debounce(), a.logger)
	if err != nil {
		return err
	}
	if a.store != nil {
		db := a.cfg.Store.Path
		w.Ignore(db, db+"-wal", db+"-shm", db+"-journal")
	}
	if a.cfg.Report.Output != "" {
		w.Ignore(a.cfg.Report.Output)
	}
	if a.cfg.Logging.FilePath != "" {
		w.Ignore(a.cfg.Logging.FilePath)
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	a.logger.Info("Watching for changes", "root", root, "debounce", a.cfg.Debounce())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped")
			return nil
		case tr, ok := <-w.Triggers():
			if !ok {
				return nil
			}
			a.logger.Info("Changes detected, rescanning", "changed", len(tr.Paths))
			if err := a.scanOnce(ctx, root); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Error("Rescan failed", "root", root, "error", err)
			}
		case err, ok := <-w.Errors():
			if ok {
				a.logger.Warn("Watcher error", "error", err)
			}
		}
	}
}
