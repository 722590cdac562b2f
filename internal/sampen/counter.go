/*
* Parallel template match counting
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
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultComparisonLength is the template length m.
	DefaultComparisonLength = 2
	// DefaultTolerance is the normalized Hamming distance r under which two
	// templates match.
	DefaultTolerance = 0.2
)

// ErrInvalidParameter is returned for a counter with unusable m or r.
var ErrInvalidParameter = errors.New("sampen: invalid parameter")

// MatchCounts holds the number of template matches at length m and m+1.
type MatchCounts struct {
	M  int64
	M1 int64
}

// Add sums two partial counts.
func (c MatchCounts) Add(o MatchCounts) MatchCounts {
	return MatchCounts{M: c.M + o.M, M1: c.M1 + o.M1}
}

// Counter counts approximate template matches over a shingle sequence,
// splitting the outer index range across a bounded worker pool.
type Counter struct {
	M       int
	R       float64
	Workers int // 0 means runtime.NumCPU()
}

// NewCounter returns a counter with the default m and r.
func NewCounter(workers int) Counter {
	return Counter{M: DefaultComparisonLength, R: DefaultTolerance, Workers: workers}
}

func (c Counter) validate() error {
	if c.M < 1 {
		return fmt.Errorf("%w: comparison length %d", ErrInvalidParameter, c.M)
	}
	if math.IsNaN(c.R) || c.R < 0 {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidParameter, c.R)
	}
	return nil
}

func (c Counter) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// span is a half-open range of outer indices.
type span struct {
	lo, hi int
}

// partition splits [0, total) into at most parts contiguous spans of
// near-equal size.
func partition(total, parts int) []span {
	if total <= 0 {
		return nil
	}
	parts = max(1, min(parts, total))
	size := (total + parts - 1) / parts
	spans := make([]span, 0, parts)
	for lo := 0; lo < total; lo += size {
		spans = append(spans, span{lo: lo, hi: min(lo+size, total)})
	}
	return spans
}

// allowedMismatches is the largest mismatch count c with c/n <= r.
func allowedMismatches(n int, r float64) int {
	allowed := -1
	for c := 0; c <= n && float64(c)/float64(n) <= r; c++ {
		allowed = c
	}
	return allowed
}

// Count returns the match totals for seq. Pairs (i, j) are drawn from
// 0 <= i < j < seq.Len()-m. The m+1 comparison only runs for pairs that
// already matched at m. Totals do not depend on the worker count.
// Templates are read from the underlying content, so when k <= m the m+1
// template extends past the end of its shingle into the following bytes.
func (c Counter) Count(ctx context.Context, seq Sequence) (MatchCounts, error) {
	if err := c.validate(); err != nil {
		return MatchCounts{}, err
	}
	spans := partition(seq.Len()-c.M, c.workers())
	if len(spans) == 0 {
		return MatchCounts{}, nil
	}

	partial := make([]MatchCounts, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for idx, sp := range spans {
		g.Go(func() error {
			counts, err := c.countSpan(gctx, seq, sp)
			partial[idx] = counts
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return MatchCounts{}, err
	}

	var total MatchCounts
	for _, p := range partial {
		total = total.Add(p)
	}
	return total, nil
}

// countSpan counts matches for outer indices in sp against every later index.
func (c Counter) countSpan(ctx context.Context, seq Sequence, sp span) (MatchCounts, error) {
	var counts MatchCounts
	m := c.M
	limit := seq.Len() - m
	allowedM := allowedMismatches(m, c.R)
	allowedM1 := allowedMismatches(m+1, c.R)

	for i := sp.lo; i < sp.hi; i++ {
		if err := ctx.Err(); err != nil {
			return MatchCounts{}, err
		}
		ti := seq.template(i, m+1)
		for j := i + 1; j < limit; j++ {
			tj := seq.template(j, m+1)
			d := hamming(ti[:m], tj[:m], allowedM)
			if d > allowedM {
				continue
			}
			counts.M++
			if ti[m] != tj[m] {
				d++
			}
			if d <= allowedM1 {
				counts.M1++
			}
		}
	}
	return counts, nil
}

// hamming counts differing bytes, stopping once the count exceeds limit.
func hamming(a, b []byte, limit int) int {
	d := 0
	for x := range a {
		if a[x] != b[x] {
			d++
			if d > limit {
				return d
			}
		}
	}
	return d
}
