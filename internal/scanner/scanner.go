/*
* Directory scan pipeline
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

// Package scanner runs the whole analysis over a directory tree: it groups
// files by signature agreement, estimates the sample entropy of each file,
// flags per-group outliers and re-checks their signatures.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Gilah-EnE/sampen_scanner/internal/anomaly"
	"github.com/Gilah-EnE/sampen_scanner/internal/catalog"
	"github.com/Gilah-EnE/sampen_scanner/internal/config"
	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
	"github.com/Gilah-EnE/sampen_scanner/internal/sampen"
	"github.com/Gilah-EnE/sampen_scanner/internal/sigscan"
)

var (
	// ErrTooSmall marks a file shorter than k+m bytes.
	ErrTooSmall = errors.New("file too small for analysis")
	// ErrTooLarge marks a file above the configured size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Options are the scan parameters.
type Options struct {
	ShingleLength    int // k
	ComparisonLength int // m
	Tolerance        float64
	Threshold        float64
	Workers          int
	FollowSymlinks   bool
	MaxFileSize      int64

	Details    bool
	SweepLimit int
}

// DefaultOptions returns the default parameters for shingle length k.
func DefaultOptions(k int) Options {
	return Options{
		ShingleLength:    k,
		ComparisonLength: sampen.DefaultComparisonLength,
		Tolerance:        sampen.DefaultTolerance,
		Threshold:        anomaly.DefaultThreshold,
	}
}

// OptionsFromConfig extracts the scan parameters from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ShingleLength:    cfg.Scan.ShingleLength,
		ComparisonLength: cfg.Scan.ComparisonLength,
		Tolerance:        cfg.Scan.Tolerance,
		Threshold:        cfg.Scan.Threshold,
		Workers:          cfg.Scan.Workers,
		FollowSymlinks:   cfg.Scan.FollowSymlinks,
		MaxFileSize:      cfg.Scan.MaxFileSize,
		Details:          cfg.Report.Details,
		SweepLimit:       cfg.Report.SweepLimit,
	}
}

// Skip records a file excluded from analysis.
type Skip struct {
	Path string
	Err  error
}

// Reason describes why the file was skipped.
func (s Skip) Reason() string {
	return s.Err.Error()
}

// Finding is one anomalous file.
type Finding struct {
	Path    string
	Entropy float64 // may be +Inf
	ZScore  float64 // +Inf for non-finite entropies
	// SignatureConfirmed is the re-check of the group's nominal type.
	SignatureConfirmed bool
	Digest             string
	Details            *Details
}

// Infinite reports whether the finding was flagged for a non-finite entropy.
func (f Finding) Infinite() bool {
	return anomaly.Record{Entropy: f.Entropy}.Infinite()
}

// GroupFindings are the anomalies of one group.
type GroupFindings struct {
	Key      catalog.GroupKey
	Stats    anomaly.Stats
	Findings []Finding
}

// Result is the outcome of one run.
type Result struct {
	ID       uuid.UUID
	Root     string
	Options  Options
	Started  time.Time
	Finished time.Time

	// Files is the number of files found under Root.
	Files int
	// Profiles are the per-group entropies in first-seen order.
	Profiles []anomaly.Group
	// Groups are the groups with at least one anomaly.
	Groups  []GroupFindings
	Skipped []Skip
}

// Analyzed is the number of files with an entropy estimate.
func (r *Result) Analyzed() int {
	n := 0
	for _, g := range r.Profiles {
		n += len(g.Entries)
	}
	return n
}

// Anomalies is the total number of flagged files.
func (r *Result) Anomalies() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Findings)
	}
	return n
}

// Scanner runs scans with fixed parameters. It is safe to reuse for
// sequential runs.
type Scanner struct {
	opts    Options
	catalog *catalog.Catalog
	counter sampen.Counter
	sigs    *sigscan.Scanner
	logger  *logging.Logger
}

// New creates a scanner over cat. A nil logger discards records.
func New(opts Options, cat *catalog.Catalog, logger *logging.Logger) (*Scanner, error) {
	if opts.ShingleLength < 1 {
		return nil, fmt.Errorf("%w: shingle length %d", sampen.ErrInvalidParameter, opts.ShingleLength)
	}
	if opts.ComparisonLength < 1 {
		return nil, fmt.Errorf("%w: comparison length %d", sampen.ErrInvalidParameter, opts.ComparisonLength)
	}
	if opts.Tolerance < 0 || opts.Tolerance > 1 {
		return nil, fmt.Errorf("%w: tolerance %v", sampen.ErrInvalidParameter, opts.Tolerance)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Scanner{
		opts:    opts,
		catalog: cat,
		counter: sampen.Counter{M: opts.ComparisonLength, R: opts.Tolerance, Workers: opts.Workers},
		logger:  logger.WithComponent("scanner"),
	}
	if opts.Details {
		sigs, err := sigscan.New(cat)
		if err != nil {
			return nil, err
		}
		s.sigs = sigs
	}
	return s, nil
}

// Options returns the scan parameters.
func (s *Scanner) Options() Options {
	return s.opts
}

type fileRecord struct {
	path string
	key  catalog.GroupKey
}

// Classify reads the header of every path and groups the paths by key in
// first-seen order. A header read failure is logged and treated as an empty
// header.
func (s *Scanner) Classify(paths []string) ([]catalog.GroupKey, map[catalog.GroupKey][]string) {
	var order []catalog.GroupKey
	groups := make(map[catalog.GroupKey][]string)
	for _, path := range paths {
		header, err := catalog.ReadHeader(path, s.catalog.MaxPrefixLen())
		if err != nil {
			s.logger.Warn("Error reading file header", "path", path, "error", err)
			header = nil
		}
		key := s.catalog.Classify(catalog.DeclaredType(path), header)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], path)
	}
	return order, groups
}

// Run scans root. Per-file failures are collected in Result.Skipped; the
// returned error is reserved for an unwalkable root, invalid parameters and
// cancellation.
func (s *Scanner) Run(ctx context.Context, root string) (*Result, error) {
	res := &Result{
		ID:      uuid.New(),
		Root:    root,
		Options: s.opts,
		Started: time.Now(),
	}

	paths, err := s.Walk(ctx, root)
	if err != nil {
		return nil, err
	}
	res.Files = len(paths)
	if len(paths) == 0 {
		s.logger.Info("No files found in the directory", "root", root)
		res.Finished = time.Now()
		return res, nil
	}

	order, grouped := s.Classify(paths)
	digests := make(map[string]string)
	for _, key := range order {
		files := grouped[key]
		s.logger.Info(fmt.Sprintf("Processing %d files with extension %s", len(files), key),
			"group", key.String(), "files", len(files))

		group := anomaly.Group{Key: key}
		for _, path := range files {
			entropy, digest, err := s.profile(ctx, path)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				res.Skipped = append(res.Skipped, Skip{Path: path, Err: err})
				continue
			}
			group.Entries = append(group.Entries, anomaly.Entry{Path: path, Entropy: entropy})
			digests[path] = digest
		}
		res.Profiles = append(res.Profiles, group)
	}

	detected, err := anomaly.Detect(res.Profiles, s.opts.Threshold)
	if err != nil {
		return nil, err
	}
	for _, f := range detected {
		s.logger.Debug("Group statistics", "group", f.Key.String(),
			"mean", f.Stats.Mean, "std", f.Stats.StdDev, "finite", f.Stats.Finite)

		gf := GroupFindings{Key: f.Key, Stats: f.Stats}
		for _, rec := range f.Records {
			finding := s.finding(f.Key, rec)
			finding.Digest = digests[rec.Path]
			gf.Findings = append(gf.Findings, finding)
		}
		res.Groups = append(res.Groups, gf)
	}

	if len(res.Groups) == 0 {
		s.logger.Info("No anomalies detected")
	}
	res.Finished = time.Now()
	return res, nil
}

// profile estimates the entropy of one file and returns its digest.
func (s *Scanner) profile(ctx context.Context, path string) (float64, string, error) {
	if s.opts.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("Error processing file", "path", path, "error", err)
			return 0, "", err
		}
		if info.Size() > s.opts.MaxFileSize {
			s.logger.Info("Skipping file", "path", path, "reason", ErrTooLarge, "size", info.Size())
			return 0, "", fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("Error processing file", "path", path, "error", err)
		return 0, "", fmt.Errorf("read content: %w", err)
	}
	if len(content) < s.opts.ShingleLength+s.opts.ComparisonLength {
		s.logger.Info("Skipping file", "path", path, "reason", ErrTooSmall, "size", len(content))
		return 0, "", fmt.Errorf("%w: %d bytes", ErrTooSmall, len(content))
	}

	res, err := s.counter.Estimate(ctx, sampen.Extract(content, s.opts.ShingleLength))
	if err != nil {
		return 0, "", err
	}
	s.logger.Debug("Calculated entropy", "path", path, "entropy", res.Entropy,
		"m_matches", res.Counts.M, "m1_matches", res.Counts.M1)
	return res.Entropy, Digest(content), nil
}

// finding re-checks the signature of a flagged file and attaches details
// when enabled.
func (s *Scanner) finding(key catalog.GroupKey, rec anomaly.Record) Finding {
	f := Finding{Path: rec.Path, Entropy: rec.Entropy, ZScore: rec.ZScore}

	confirmed, err := s.catalog.Recheck(rec.Path, key.Type)
	if err != nil {
		s.logger.Warn("Error reading file", "path", rec.Path, "error", err)
	}
	f.SignatureConfirmed = confirmed

	if s.sigs != nil {
		content, err := os.ReadFile(rec.Path)
		if err != nil {
			s.logger.Warn("Cannot read file for details", "path", rec.Path, "error", err)
			return f
		}
		d, err := describe(content, s.opts.SweepLimit, s.sigs)
		if err != nil {
			s.logger.Warn("Cannot compute details", "path", rec.Path, "error", err)
			return f
		}
		f.Details = d
	}
	return f
}
