/*
* Signature search (encryption tool and embedded file signature detection) module
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

// Package sigscan sweeps file content for encryption container headers and
// embedded file signatures. Patterns are regular expressions over the
// hex-encoded content.
package sigscan

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/rure-go"

	"github.com/Gilah-EnE/sampen_scanner/internal/catalog"
)

// Location restricts where a pattern is searched.
type Location int

const (
	Anywhere Location = iota
	Head              // first window of the content
	Tail              // last window of the content
)

// DefaultWindow is the size of the head and tail windows.
const DefaultWindow = 1048576

type SignatureData struct {
	Name     string
	Regex    string
	Location Location
}

// EncryptionTools are on-disk headers of full-volume encryption tools.
var EncryptionTools = []SignatureData{
	{"FreeBSD GELI", "(?i)(47454f4d3a3a454c49)", Tail},
	{"BitLocker", "(?i)(eb58902d4656452d46532d0002080000)", Head},
	{"LUKSv1", "(?i)4c554b53babe0001", Head},
	{"LUKSv2", "(?i)4c554b53babe0002", Head},
	{"FileVault v2", "(?i)41505342.{456}0800000000000000", Anywhere},
	{"PGP WDE", "(?i)(eb489050475047554152440000000000)", Head},
}

type compiledSignature struct {
	SignatureData
	regex *rure.Regex
}

// Scanner holds compiled patterns; it is safe for sequential reuse.
type Scanner struct {
	tools    []compiledSignature
	embedded *rure.Regex
	window   int
}

// New compiles the encryption tool patterns and an alternation of every
// prefix in cat for the embedded signature sweep.
func New(cat *catalog.Catalog) (*Scanner, error) {
	s := &Scanner{window: DefaultWindow}
	for _, sig := range EncryptionTools {
		regex, err := rure.Compile(sig.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for %s: %w", sig.Name, err)
		}
		s.tools = append(s.tools, compiledSignature{SignatureData: sig, regex: regex})
	}

	var alternatives []string
	for _, e := range cat.Entries() {
		for _, p := range e.Prefixes {
			alternatives = append(alternatives, hex.EncodeToString(p))
		}
	}
	if len(alternatives) > 0 {
		regex, err := rure.Compile("(?i)(" + strings.Join(alternatives, "|") + ")")
		if err != nil {
			return nil, fmt.Errorf("failed to compile embedded signatures: %w", err)
		}
		s.embedded = regex
	}
	return s, nil
}

// FindBytesPattern counts matches of regex in hex-encoded data. Only matches
// starting on a byte boundary count.
func FindBytesPattern(data string, regex *rure.Regex) int {
	matches := regex.FindAll(data)
	// FindAll returns start and end positions for each match
	var count int
	for i := 0; i < len(matches); i += 2 {
		if matches[i]%2 == 0 {
			count++
		}
	}
	return count
}

func (s *Scanner) region(data []byte, loc Location) []byte {
	switch loc {
	case Head:
		return data[:min(len(data), s.window)]
	case Tail:
		return data[max(0, len(data)-s.window):]
	default:
		return data
	}
}

// EncToolDetection counts encryption tool header matches in data.
func (s *Scanner) EncToolDetection(data []byte) map[string]int {
	found := make(map[string]int, len(s.tools))
	encoded := map[Location]string{}
	for _, sig := range s.tools {
		hexData, ok := encoded[sig.Location]
		if !ok {
			hexData = hex.EncodeToString(s.region(data, sig.Location))
			encoded[sig.Location] = hexData
		}
		found[sig.Name] = FindBytesPattern(hexData, sig.regex)
	}
	return found
}

// SignatureAnalysis returns the number of embedded catalog signatures per MiB
// of data.
func (s *Scanner) SignatureAnalysis(data []byte) float64 {
	if s.embedded == nil || len(data) == 0 {
		return 0
	}
	hits := FindBytesPattern(hex.EncodeToString(data), s.embedded)
	return float64(hits) / (float64(len(data)) / 1048576.0)
}

// FoundTools lists tools with at least one match, sorted by name.
func FoundTools(found map[string]int) []string {
	var names []string
	for name, count := range found {
		if count > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Readable renders found tools as "name - count" pairs.
func Readable(found map[string]int) string {
	names := FoundTools(found)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s - %d", name, found[name]))
	}
	return strings.Join(parts, ", ")
}
