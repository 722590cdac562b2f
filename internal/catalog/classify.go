/*
* Declared and detected type classification of files
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

package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// NoExtension is the declared type of a path without a suffix.
const NoExtension = "[no extension]"

// Annotation qualifies a GroupKey.
type Annotation int

const (
	// Confirmed: the detected type agrees with the declared one.
	Confirmed Annotation = iota
	// Unconfirmed: no catalog signature matched the header.
	Unconfirmed
	// Mismatch: the header belongs to a different catalogued type.
	Mismatch
)

func (a Annotation) String() string {
	switch a {
	case Unconfirmed:
		return "[no file sig confirmed]"
	case Mismatch:
		return "[signature mismatch]"
	default:
		return ""
	}
}

// GroupKey is the bucket a file's entropy is compared within. Type is the
// declared type, or the detected type for a mismatch.
type GroupKey struct {
	Type       string
	Annotation Annotation
}

func (k GroupKey) String() string {
	if k.Annotation == Confirmed {
		return k.Type
	}
	return k.Type + " " + k.Annotation.String()
}

// DeclaredType derives the lower-cased extension of path. Leading dots of the
// base name do not start an extension, so ".bashrc" has none.
func DeclaredType(path string) string {
	name := strings.TrimLeft(filepath.Base(path), ".")
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return NoExtension
	}
	return ext
}

// Classify assigns the group key for a file declared as declared whose first
// bytes are header.
func (c *Catalog) Classify(declared string, header []byte) GroupKey {
	detected, ok := c.Detect(header)
	switch {
	case !ok:
		return GroupKey{Type: declared, Annotation: Unconfirmed}
	case detected == declared:
		return GroupKey{Type: declared}
	default:
		return GroupKey{Type: detected, Annotation: Mismatch}
	}
}

// ReadHeader reads at most n bytes from the start of path. A file shorter
// than n yields a short header.
func ReadHeader(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	return buf[:read], nil
}

// Recheck reports whether the current header of path matches a prefix
// registered for typ. Types without prefixes, or missing from the catalog,
// are accepted as-is.
func (c *Catalog) Recheck(path, typ string) (bool, error) {
	prefixes, _ := c.Prefixes(typ)
	if len(prefixes) == 0 {
		return true, nil
	}
	longest := 0
	for _, p := range prefixes {
		longest = max(longest, len(p))
	}
	header, err := ReadHeader(path, longest)
	if err != nil {
		return false, err
	}
	return matchesAny(header, prefixes), nil
}
