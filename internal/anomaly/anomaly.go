/*
* Group statistics and z-score outlier detection
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

// Package anomaly scores per-group entropy profiles and flags outliers by
// z-score. Statistics never cross group boundaries.
package anomaly

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/Gilah-EnE/sampen_scanner/internal/catalog"
)

// DefaultThreshold is the |z| above which a finite entropy is anomalous.
const DefaultThreshold = 1.5

// Entry is one file's entropy within a group. Entropy may be +Inf.
type Entry struct {
	Path    string
	Entropy float64
}

// Group is the ordered entropy profile of one group key.
type Group struct {
	Key     catalog.GroupKey
	Entries []Entry
}

// Stats summarizes the finite entropies of a group.
type Stats struct {
	Count  int // all entries
	Finite int
	Mean   float64
	StdDev float64 // population
}

// Record is a flagged file. ZScore is +Inf for non-finite entropies.
type Record struct {
	Path    string
	Entropy float64
	ZScore  float64
}

// Infinite reports whether the record was flagged for a non-finite entropy.
func (r Record) Infinite() bool {
	return math.IsInf(r.Entropy, 0) || math.IsNaN(r.Entropy)
}

// Findings are the anomalies of one group, in input order.
type Findings struct {
	Key     catalog.GroupKey
	Stats   Stats
	Records []Record
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Summarize computes mean and population standard deviation over the finite
// entries. It returns false when no entry is finite.
func Summarize(entries []Entry) (Stats, bool, error) {
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		if finite(e.Entropy) {
			values = append(values, e.Entropy)
		}
	}
	s := Stats{Count: len(entries), Finite: len(values)}
	if len(values) == 0 {
		return s, false, nil
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return s, false, fmt.Errorf("mean: %w", err)
	}
	std, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return s, false, fmt.Errorf("standard deviation: %w", err)
	}
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	if lo == hi {
		// Identical values; rounding in the mean must not invent spread.
		std = 0
	}
	s.Mean, s.StdDev = mean, std
	return s, true, nil
}

// ZScore standardizes v against s. A zero deviation yields 0.
func (s Stats) ZScore(v float64) float64 {
	if s.StdDev > 0 {
		return (v - s.Mean) / s.StdDev
	}
	return 0
}

// Score flags the entries of one group. Finite entries with |z| > threshold
// and every non-finite entry are returned. A group without any finite
// entropy yields nothing at all.
func Score(g Group, threshold float64) (Findings, error) {
	f := Findings{Key: g.Key}
	s, ok, err := Summarize(g.Entries)
	if err != nil || !ok {
		return f, err
	}
	f.Stats = s

	for _, e := range g.Entries {
		if !finite(e.Entropy) {
			f.Records = append(f.Records, Record{Path: e.Path, Entropy: e.Entropy, ZScore: math.Inf(1)})
			continue
		}
		z := s.ZScore(e.Entropy)
		if math.Abs(z) > threshold {
			f.Records = append(f.Records, Record{Path: e.Path, Entropy: e.Entropy, ZScore: z})
		}
	}
	return f, nil
}

// Detect scores every group and keeps those with at least one anomaly, in
// input order.
func Detect(groups []Group, threshold float64) ([]Findings, error) {
	var out []Findings
	for _, g := range groups {
		f, err := Score(g, threshold)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Key, err)
		}
		if len(f.Records) > 0 {
			out = append(out, f)
		}
	}
	return out, nil
}
