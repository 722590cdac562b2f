/*
* Kolmogorov-Smirnov test module
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

package bytestats

import (
	"math"
)

// KSResult is the Kolmogorov-Smirnov distance between the empirical byte CDF
// and the uniform CDF.
type KSResult struct {
	Statistic       float64
	MaxDiffPosition int
	Critical001     float64
	Critical005     float64
}

func KsTest(h Histogram) KSResult {
	total := h.Total()
	if total == 0 {
		return KSResult{}
	}

	var empiricalCumSum, theoreticalCumSum float64
	var result KSResult

	for i := 0; i < 256; i++ {
		empiricalCumSum += float64(h[i]) / float64(total)
		theoreticalCumSum += 1.0 / 256
		diff := math.Abs(empiricalCumSum - theoreticalCumSum)
		if diff > result.Statistic {
			result.Statistic = diff
			result.MaxDiffPosition = i
		}
	}
	result.Critical001 = 1.63 / math.Sqrt(float64(total))
	result.Critical005 = 1.36 / math.Sqrt(float64(total))
	return result
}
