/*
* Byte histogram helpers
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

// Package bytestats computes whole-file byte statistics used to describe
// flagged files: Shannon entropy, chi-square and Kolmogorov-Smirnov distance
// from the uniform distribution, autocorrelation and compression ratio.
package bytestats

// Histogram counts occurrences of each byte value.
type Histogram [256]int

// CountBytes builds the histogram of data.
func CountBytes(data []byte) Histogram {
	var h Histogram
	for _, b := range data {
		h[b]++
	}
	return h
}

// Merge adds the counts of o to h.
func (h Histogram) Merge(o Histogram) Histogram {
	for i := range h {
		h[i] += o[i]
	}
	return h
}

// Total is the number of bytes counted.
func (h Histogram) Total() int {
	var total int
	for _, v := range h {
		total += v
	}
	return total
}

func CountTrueBools(bools ...bool) int {
	var trueCount int
	for _, b := range bools {
		if b {
			trueCount++
		}
	}
	return trueCount
}

func meanBytes(array []byte) float64 {
	var sum float64
	for _, value := range array {
		sum += float64(value)
	}
	return sum / float64(len(array))
}
