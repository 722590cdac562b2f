/*
* Per-file detail statistics
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

package scanner

import (
	"encoding/hex"
	"fmt"

	"github.com/h2non/filetype"
	"github.com/zeebo/blake3"

	"github.com/Gilah-EnE/sampen_scanner/internal/bytestats"
	"github.com/Gilah-EnE/sampen_scanner/internal/sigscan"
)

// Details are optional statistics attached to a finding.
type Details struct {
	// ContentType is the MIME type sniffed from the content, if known.
	ContentType string

	Shannon          float64 // bits per byte
	ChiSquare        float64
	KSStatistic      float64
	Autocorrelation  float64
	CompressionRatio float64

	// EncryptionTools maps tool name to header matches, non-zero only.
	EncryptionTools map[string]int
	// SignatureDensity is embedded catalog signatures per MiB.
	SignatureDensity float64

	Votes           int
	LikelyEncrypted bool
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentType sniffs the MIME type of data. Unknown content yields "".
func ContentType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// describe computes the details of content, looking at no more than limit
// bytes. A limit of 0 examines everything.
func describe(content []byte, limit int, sigs *sigscan.Scanner) (*Details, error) {
	if limit > 0 && len(content) > limit {
		content = content[:limit]
	}

	summary, err := bytestats.Summarize(content)
	if err != nil {
		return nil, fmt.Errorf("byte statistics: %w", err)
	}

	d := &Details{
		ContentType:      ContentType(content),
		Shannon:          summary.Shannon,
		ChiSquare:        summary.ChiSquare,
		KSStatistic:      summary.KS.Statistic,
		Autocorrelation:  summary.Autocorrelation,
		CompressionRatio: summary.CompressionRatio,
		EncryptionTools:  map[string]int{},
		SignatureDensity: sigs.SignatureAnalysis(content),
	}

	found := sigs.EncToolDetection(content)
	for _, name := range sigscan.FoundTools(found) {
		d.EncryptionTools[name] = found[name]
	}
	d.Votes = summary.Votes(d.SignatureDensity, bytestats.DefaultThresholds)
	d.LikelyEncrypted = bytestats.LikelyEncrypted(d.Votes) || len(d.EncryptionTools) > 0
	return d, nil
}
