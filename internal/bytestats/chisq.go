/*
* Pearson chi-squared test module
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

// ChiSquare is Pearson's statistic of the histogram against a uniform
// distribution over 256 values.
func ChiSquare(h Histogram) float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	expected := float64(total) / 256

	var chiSquare float64
	for i := 0; i < 256; i++ {
		chiSquare += math.Pow(float64(h[i])-expected, 2) / expected
	}
	return chiSquare
}
