/*
* Shingle sequence construction
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

// Package sampen estimates shingle-based sample entropy of byte content.
package sampen

// Sequence is the ordered run of overlapping k-byte windows of a file.
// Windows are views into the content and are never copied.
type Sequence struct {
	data []byte
	k    int
}

// Extract returns the shingle sequence of data for window length k.
func Extract(data []byte, k int) Sequence {
	return Sequence{data: data, k: k}
}

// Len is the number of shingles, max(0, len(data)-k+1).
func (s Sequence) Len() int {
	if s.k < 1 || len(s.data) < s.k {
		return 0
	}
	return len(s.data) - s.k + 1
}

// K is the window length.
func (s Sequence) K() int {
	return s.k
}

// At returns the shingle starting at offset i.
func (s Sequence) At(i int) []byte {
	return s.data[i : i+s.k : i+s.k]
}

// template returns the leading n bytes of shingle i. It reads through the
// content, so n may exceed k as long as the bytes exist.
func (s Sequence) template(i, n int) []byte {
	return s.data[i : i+n : i+n]
}
