/*
* Catalog of known file types and their signatures
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

// Package catalog holds the built-in magic-byte signature table and the
// classifier that groups files by agreement between their declared extension
// and their detected type.
package catalog

import "bytes"

// Entry maps a file type label to its candidate byte prefixes. An entry with
// no prefixes never matches; it exists so the type is known to the catalog.
type Entry struct {
	Type     string
	Prefixes [][]byte
}

// Catalog is an ordered signature table. Order is priority: when several
// types share a prefix the first registered one is reported.
type Catalog struct {
	entries []Entry
	index   map[string]int
	maxLen  int
}

// New builds a catalog from entries in the given order. Later duplicates of a
// type label are ignored.
func New(entries []Entry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := c.index[e.Type]; dup {
			continue
		}
		prefixes := make([][]byte, 0, len(e.Prefixes))
		for _, p := range e.Prefixes {
			if len(p) == 0 {
				continue
			}
			prefixes = append(prefixes, bytes.Clone(p))
			c.maxLen = max(c.maxLen, len(p))
		}
		c.index[e.Type] = len(c.entries)
		c.entries = append(c.entries, Entry{Type: e.Type, Prefixes: prefixes})
	}
	return c
}

// Default returns the built-in catalog.
//
// .exe and .dll share "MZ", and every ZIP based container shares "PK\x03\x04";
// those files are always detected as .exe and .zip respectively.
func Default() *Catalog {
	return New([]Entry{
		{".exe", [][]byte{[]byte("MZ")}},
		{".dll", [][]byte{[]byte("MZ")}},
		{".jpg", [][]byte{{0xFF, 0xD8, 0xFF}}},
		{".png", [][]byte{[]byte("\x89PNG\r\n\x1a\n")}},
		{".pdf", [][]byte{[]byte("%PDF")}},
		{".zip", [][]byte{[]byte("PK\x03\x04")}},
		{".docx", [][]byte{[]byte("PK\x03\x04")}},
		{".xlsx", [][]byte{[]byte("PK\x03\x04")}},
		{".pptx", [][]byte{[]byte("PK\x03\x04")}},
		{".jar", [][]byte{[]byte("PK\x03\x04")}},
		{".apk", [][]byte{[]byte("PK\x03\x04")}},
		{".odt", [][]byte{[]byte("PK\x03\x04")}},
		{".epub", [][]byte{[]byte("PK\x03\x04")}},
		{".txt", nil},
		{".tar", [][]byte{[]byte("ustar")}},
		{".gz", [][]byte{{0x1F, 0x8B}}},
		{".bz2", [][]byte{[]byte("BZh")}},
		{".7z", [][]byte{{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}}},
		{".mp3", [][]byte{[]byte("ID3")}},
		{".mp4", [][]byte{[]byte("\x00\x00\x00\x18ftypmp42")}},
		{".iso", [][]byte{[]byte("CD001")}},
		{".dmg", [][]byte{[]byte("koly")}},
		{".sqlite", [][]byte{[]byte("SQLite format 3\x00")}},
		{".deb", [][]byte{[]byte("!<arch>\ndebian-binary")}},
		{".rpm", [][]byte{{0xED, 0xAB, 0xEE, 0xDB}}},
		{".sh", nil},
		{".py", nil},
		{".js", nil},
		{".html", [][]byte{[]byte("<!DOCTYPE HTML")}},
		{".xml", [][]byte{[]byte(`<?xml version="1.0"`)}},
	})
}

// MaxPrefixLen is the length of the longest prefix in the catalog, i.e. how
// many header bytes are needed to classify any file.
func (c *Catalog) MaxPrefixLen() int {
	return c.maxLen
}

// Entries returns the table in priority order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Prefixes returns the candidate prefixes registered for typ and whether the
// type is catalogued at all.
func (c *Catalog) Prefixes(typ string) ([][]byte, bool) {
	i, ok := c.index[typ]
	if !ok {
		return nil, false
	}
	return c.entries[i].Prefixes, true
}

// Detect returns the first type whose prefix starts header.
func (c *Catalog) Detect(header []byte) (string, bool) {
	for _, e := range c.entries {
		if matchesAny(header, e.Prefixes) {
			return e.Type, true
		}
	}
	return "", false
}

func matchesAny(header []byte, prefixes [][]byte) bool {
	for _, p := range prefixes {
		if bytes.HasPrefix(header, p) {
			return true
		}
	}
	return false
}
