/*
* Combined byte statistics and encryption indicator
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

import "fmt"

// DefaultBlockSize is the autocorrelation block size.
const DefaultBlockSize = 1048576

// Summary collects every statistic for one file.
type Summary struct {
	Size             int
	Shannon          float64
	ChiSquare        float64
	KS               KSResult
	Autocorrelation  float64
	CompressionRatio float64
}

// Thresholds decide when a statistic counts as a vote for encrypted or
// compressed content.
type Thresholds struct {
	Autocorrelation  float64
	KS               float64
	Compression      float64
	SignatureDensity float64
	Shannon          float64
}

// DefaultThresholds are the reference values of the combined method.
var DefaultThresholds = Thresholds{
	Autocorrelation:  0.125,
	KS:               0.1,
	Compression:      1.1,
	SignatureDensity: 150.0,
	Shannon:          7.95,
}

// Summarize computes all statistics of data.
func Summarize(data []byte) (Summary, error) {
	h := CountBytes(data)
	s := Summary{
		Size:      len(data),
		Shannon:   ShannonEntropy(h),
		ChiSquare: ChiSquare(h),
		KS:        KsTest(h),
	}

	var err error
	if s.Autocorrelation, err = Autocorrelation(data, DefaultBlockSize); err != nil {
		return s, fmt.Errorf("autocorrelation: %w", err)
	}
	if s.CompressionRatio, err = CompressionRatio(data); err != nil {
		return s, fmt.Errorf("compression: %w", err)
	}
	return s, nil
}

// Votes counts how many statistics point at encrypted or compressed content.
// signatureDensity is the number of embedded file signatures per MiB.
func (s Summary) Votes(signatureDensity float64, t Thresholds) int {
	return CountTrueBools(
		s.Autocorrelation <= t.Autocorrelation,
		s.KS.Statistic <= t.KS,
		s.CompressionRatio <= t.Compression,
		signatureDensity <= t.SignatureDensity,
		s.Shannon >= t.Shannon,
	)
}

// LikelyEncrypted applies the majority rule: three or more of five votes.
func LikelyEncrypted(votes int) bool {
	return votes >= 3
}
