// TagVault Core
// Copyright (c) 2026 The TagVault Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of TagVault Core.
//
// TagVault Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TagVault Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TagVault Core.  If not, see <http://www.gnu.org/licenses/>.

// Package analysis decodes image files for duplicate comparison: a JPEG
// quantization quality estimate and a hash of decoded pixel content.
package analysis

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrNotJPEG = errors.New("not a jpeg file")

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerDQT  = 0xDB
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// Quality is a JPEG quantization quality estimate. Value is the average
// sum of the quantization tables, so lower is better. Known is false
// when the file carries no tables.
type Quality struct {
	Label string
	Value float64
	Known bool
}

var qualityLabels = []struct {
	min   float64
	label string
}{
	{3400, "very low"},
	{2000, "low"},
	{1400, "medium low"},
	{1000, "medium"},
	{700, "medium high"},
	{400, "high"},
	{200, "very high"},
}

// QualityFromTables estimates quality from decoded quantization tables.
func QualityFromTables(tables [][]int) Quality {
	if len(tables) == 0 {
		return Quality{Label: "unknown"}
	}
	total := 0
	for _, t := range tables {
		for _, v := range t {
			total += v
		}
	}
	value := float64(total) / float64(len(tables))
	label := "extremely high"
	for _, l := range qualityLabels {
		if value >= l.min {
			label = l.label
			break
		}
	}
	return Quality{Label: label, Value: value, Known: true}
}

// EstimateJPEGQuality reads the quantization tables from a JPEG stream
// and estimates its quality.
func EstimateJPEGQuality(r io.Reader) (Quality, error) {
	tables, err := QuantizationTables(r)
	if err != nil {
		return Quality{}, err
	}
	return QualityFromTables(tables), nil
}

// QuantizationTables returns every DQT table found before the first scan.
// Values are in zigzag order.
func QuantizationTables(r io.Reader) ([][]int, error) {
	br := bufio.NewReader(r)

	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if soi[0] != 0xFF || soi[1] != markerSOI {
		return nil, ErrNotJPEG
	}

	var tables [][]int
	for {
		marker, err := nextMarker(br)
		if err != nil {
			return nil, err
		}
		switch {
		case marker == markerSOS || marker == markerEOI:
			return tables, nil
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7):
			continue
		}

		var lenBuf [2]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("read segment length: %w", err)
		}
		length := int(binary.BigEndian.Uint16(lenBuf[:])) - 2
		if length < 0 {
			return nil, fmt.Errorf("invalid segment length for marker 0x%02x", marker)
		}

		if marker != markerDQT {
			if _, err := br.Discard(length); err != nil {
				return nil, fmt.Errorf("skip segment 0x%02x: %w", marker, err)
			}
			continue
		}

		seg := make([]byte, length)
		if _, err := io.ReadFull(br, seg); err != nil {
			return nil, fmt.Errorf("read quantization segment: %w", err)
		}
		parsed, err := parseDQT(seg)
		if err != nil {
			return nil, err
		}
		tables = append(tables, parsed...)
	}
}

func nextMarker(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("read marker: %w", err)
	}
	if b != 0xFF {
		return 0, fmt.Errorf("expected marker, got 0x%02x", b)
	}
	// fill bytes
	for {
		b, err = br.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("read marker: %w", err)
		}
		if b != 0xFF {
			return b, nil
		}
	}
}

// parseDQT splits a DQT segment into its 8 or 16 bit tables.
func parseDQT(seg []byte) ([][]int, error) {
	var tables [][]int
	for len(seg) > 0 {
		precision := seg[0] >> 4
		var size int
		switch precision {
		case 0:
			size = 64
		case 1:
			size = 128
		default:
			return nil, fmt.Errorf("invalid quantization precision %d", precision)
		}
		if len(seg) < 1+size {
			return nil, errors.New("truncated quantization table")
		}

		table := make([]int, 64)
		for i := range table {
			if precision == 0 {
				table[i] = int(seg[1+i])
			} else {
				table[i] = int(binary.BigEndian.Uint16(seg[1+2*i:]))
			}
		}
		tables = append(tables, table)
		seg = seg[1+size:]
	}
	return tables, nil
}
