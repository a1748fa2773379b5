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

// Package files holds the primitive file descriptors shared by the media
// model and the update stream: content hashes and mime types.
package files

import (
	"encoding/hex"
	"fmt"
)

// Hash is a sha256 content hash.
type Hash [32]byte

// Hex returns the lowercase hex form of the hash.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// ParseHash decodes a 64 character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("invalid hash %q: want %d bytes, got %d", s, len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashSet collects hashes without order.
type HashSet map[Hash]struct{}

// NewHashSet builds a set from the given hashes.
func NewHashSet(hashes ...Hash) HashSet {
	s := make(HashSet, len(hashes))
	for _, h := range hashes {
		s[h] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s HashSet) Has(h Hash) bool {
	_, ok := s[h]
	return ok
}

// Add inserts h.
func (s HashSet) Add(h Hash) {
	s[h] = struct{}{}
}

// Disjoint reports whether s and other share no hash.
func (s HashSet) Disjoint(other HashSet) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for h := range small {
		if big.Has(h) {
			return false
		}
	}
	return true
}
