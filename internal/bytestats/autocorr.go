/*
* Autocorrelation test module
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
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// MaxLag bounds the lags examined per block.
const MaxLag = 50

// Autocorrelation returns the mean absolute autocorrelation over lags
// 1..MaxLag-1, averaged across blocks of blockSize bytes. A trailing partial
// block is ignored unless it is the only one.
func Autocorrelation(data []byte, blockSize int) (float64, error) {
	if len(data) < 2 {
		return 0, nil
	}
	if blockSize <= 0 || blockSize > len(data) {
		blockSize = len(data)
	}

	var blockMeans []float64
	for start := 0; start+blockSize <= len(data); start += blockSize {
		block := data[start : start+blockSize]
		inputMean := meanBytes(block)

		floatBuffer := make([]float64, len(block))
		for i, val := range block {
			floatBuffer[i] = float64(val) - inputMean
		}

		maxLag := min(len(floatBuffer), MaxLag)
		results := make([]float64, 0, maxLag)
		for lag := 1; lag < maxLag; lag++ {
			correlation, err := stats.Correlation(floatBuffer[lag:], floatBuffer[:len(floatBuffer)-lag])
			if err != nil {
				return 0, fmt.Errorf("autocorrelation at lag %d: %w", lag, err)
			}
			results = append(results, math.Abs(correlation))
		}
		if len(results) == 0 {
			continue
		}
		mean, err := stats.Mean(results)
		if err != nil {
			return 0, err
		}
		blockMeans = append(blockMeans, mean)
	}

	if len(blockMeans) == 0 {
		return 0, nil
	}
	return stats.Mean(blockMeans)
}
