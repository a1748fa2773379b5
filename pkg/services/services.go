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

// Package services describes the named data domains media can belong to:
// tag stores, file domains, trash and rating services. Service identity is
// an opaque Key; the Registry resolves a Key to its Service.
package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tagvault/tagvault-core/pkg/helpers/syncutil"
)

// ErrDataMissing is returned when a service or media lookup misses. Callers
// treat it as a soft failure and skip the entry.
var ErrDataMissing = errors.New("data missing")

// Key is an opaque service identifier.
type Key string

// Well-known keys for the local and virtual services every install has.
const (
	LocalFileKey         Key = "local files"
	TrashKey             Key = "trash"
	CombinedLocalFileKey Key = "all local files"
	CombinedFileKey      Key = "all known files"
	LocalTagKey          Key = "my tags"
	CombinedTagKey       Key = "all known tags"
)

// Type is the kind of data domain a service represents.
type Type int

const (
	TypeLocalTag Type = iota
	TypeTagRepository
	TypeLocalFileDomain
	TypeFileRepository
	TypeIPFS
	TypeLocalFileTrashDomain
	TypeCombinedLocalFile
	TypeCombinedFile
	TypeCombinedTag
	TypeLocalRatingLike
	TypeLocalRatingNumerical
)

var typeNames = map[Type]string{
	TypeLocalTag:             "local tag service",
	TypeTagRepository:        "tag repository",
	TypeLocalFileDomain:      "local file domain",
	TypeFileRepository:       "file repository",
	TypeIPFS:                 "ipfs daemon",
	TypeLocalFileTrashDomain: "local trash",
	TypeCombinedLocalFile:    "virtual combined local file service",
	TypeCombinedFile:         "virtual combined file service",
	TypeCombinedTag:          "virtual combined tag service",
	TypeLocalRatingLike:      "local like/dislike rating service",
	TypeLocalRatingNumerical: "local numerical rating service",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown service type %d", int(t))
}

// IsTagService reports whether updates for this type touch tag storage.
func (t Type) IsTagService() bool {
	switch t {
	case TypeLocalTag, TypeTagRepository, TypeCombinedTag:
		return true
	default:
		return false
	}
}

// IsFileService reports whether updates for this type touch file locations.
func (t Type) IsFileService() bool {
	switch t {
	case TypeLocalFileDomain, TypeFileRepository, TypeIPFS,
		TypeLocalFileTrashDomain, TypeCombinedLocalFile, TypeCombinedFile:
		return true
	default:
		return false
	}
}

// IsRatingService reports whether updates for this type touch ratings.
func (t Type) IsRatingService() bool {
	return t == TypeLocalRatingLike || t == TypeLocalRatingNumerical
}

// IsRemoteFileService reports whether files on this service live elsewhere.
func (t Type) IsRemoteFileService() bool {
	return t == TypeFileRepository || t == TypeIPFS
}

// Service is the registry's view of a single data domain.
type Service struct {
	Key  Key
	Name string
	Type Type
}

// Registry resolves service keys. Lookups of unknown keys return an error
// wrapping ErrDataMissing.
type Registry interface {
	Service(key Key) (Service, error)
	ServicesOfType(types ...Type) []Service
}

// MemoryRegistry is a goroutine-safe in-memory Registry.
type MemoryRegistry struct {
	services map[Key]Service
	mu       syncutil.RWMutex
}

// NewMemoryRegistry returns a registry seeded with the given services.
func NewMemoryRegistry(svcs ...Service) *MemoryRegistry {
	r := &MemoryRegistry{services: make(map[Key]Service, len(svcs))}
	for _, s := range svcs {
		r.services[s.Key] = s
	}
	return r
}

// DefaultServices returns the local and virtual services of a fresh install.
func DefaultServices() []Service {
	return []Service{
		{Key: LocalFileKey, Name: "my files", Type: TypeLocalFileDomain},
		{Key: TrashKey, Name: "trash", Type: TypeLocalFileTrashDomain},
		{Key: CombinedLocalFileKey, Name: "all local files", Type: TypeCombinedLocalFile},
		{Key: CombinedFileKey, Name: "all known files", Type: TypeCombinedFile},
		{Key: LocalTagKey, Name: "my tags", Type: TypeLocalTag},
		{Key: CombinedTagKey, Name: "all known tags", Type: TypeCombinedTag},
	}
}

// Service implements Registry.
func (r *MemoryRegistry) Service(key Key) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[key]
	if !ok {
		return Service{}, fmt.Errorf("service %q: %w", key, ErrDataMissing)
	}
	return s, nil
}

// ServicesOfType implements Registry. Results are ordered by name.
func (r *MemoryRegistry) ServicesOfType(types ...Type) []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[Type]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}
	out := make([]Service, 0, len(r.services))
	for _, s := range r.services {
		if _, ok := want[s.Type]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Key < out[j].Key
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Add registers or replaces a service.
func (r *MemoryRegistry) Add(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.Key] = s
}

// Remove forgets a service. Removing an unknown key is a no-op.
func (r *MemoryRegistry) Remove(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, key)
}

// LocalFileDomainKeys returns the keys of every local file domain.
func LocalFileDomainKeys(reg Registry) []Key {
	svcs := reg.ServicesOfType(TypeLocalFileDomain)
	keys := make([]Key, 0, len(svcs))
	for _, s := range svcs {
		keys = append(keys, s.Key)
	}
	return keys
}
