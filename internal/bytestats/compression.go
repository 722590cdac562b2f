/*
* Compression ratio estimation module
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
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

type compressor struct {
	name     string
	compress func([]byte) (int, error)
}

var compressors = []compressor{
	{"gzip", gzipSize},
	{"lz4", lz4Size},
	{"zstd", zstdSize},
	{"xz", xzSize},
}

func gzipSize(data []byte) (int, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func lz4Size(data []byte) (int, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Incompressible input is stored as-is by the frame format.
		return len(data), nil
	}
	return n, nil
}

func zstdSize(data []byte) (int, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	defer encoder.Close()
	return len(encoder.EncodeAll(data, make([]byte, 0, len(data)))), nil
}

func xzSize(data []byte) (int, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// CompressionRatio is the original size divided by the compressed size,
// averaged over gzip, lz4, zstd and xz. Random or encrypted data stays close
// to (or below) 1.
func CompressionRatio(data []byte) (float64, error) {
	if len(data) == 0 {
		return 0, nil
	}

	var sum float64
	for _, c := range compressors {
		size, err := c.compress(data)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", c.name, err)
		}
		sum += float64(len(data)) / float64(size)
	}
	return sum / float64(len(compressors)), nil
}
