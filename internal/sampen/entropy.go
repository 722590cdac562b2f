/*
* Sample entropy estimation
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

package sampen

import (
	"context"
	"math"
)

// Result is the outcome of one estimation.
type Result struct {
	Counts  MatchCounts
	Entropy float64
}

// Entropy is -ln(M1/M). Degenerate counts (no m-matches, no m+1 matches)
// give +Inf, meaning maximally irregular or undefined.
func Entropy(c MatchCounts) float64 {
	if c.M <= 0 {
		return math.Inf(1)
	}
	ratio := float64(c.M1) / float64(c.M)
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return math.Inf(1)
	}
	e := -math.Log(ratio)
	if e == 0 {
		return 0
	}
	return e
}

// Estimate computes the sample entropy of seq. Sequences with fewer than
// m+1 shingles are reported as +Inf without counting.
func (c Counter) Estimate(ctx context.Context, seq Sequence) (Result, error) {
	if err := c.validate(); err != nil {
		return Result{}, err
	}
	if seq.Len() < c.M+1 {
		return Result{Entropy: math.Inf(1)}, nil
	}
	counts, err := c.Count(ctx, seq)
	if err != nil {
		return Result{}, err
	}
	return Result{Counts: counts, Entropy: Entropy(counts)}, nil
}
