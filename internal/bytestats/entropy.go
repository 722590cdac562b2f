/*
* Shannon entropy estimation module
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

// ShannonEntropy returns the entropy of the byte distribution in bits per
// byte, between 0 and 8.
func ShannonEntropy(h Histogram) float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}

	var entropy float64
	for i := 0; i < 256; i++ {
		if h[i] == 0 {
			continue
		}
		p := float64(h[i]) / float64(total)
		entropy += p * math.Log2(p)
	}
	if entropy == 0 {
		return 0
	}
	return -entropy
}
