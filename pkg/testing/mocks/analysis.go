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

package mocks

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"
	"github.com/tagvault/tagvault-core/pkg/analysis"
	"github.com/tagvault/tagvault-core/pkg/files"
)

// MockFileLocator is a mock implementation of duplicates.FileLocator using testify/mock
type MockFileLocator struct {
	mock.Mock
}

// FilePath returns the path of the file with hash
func (m *MockFileLocator) FilePath(hash files.Hash, mime files.Mime) (string, error) {
	args := m.Called(hash, mime)
	if err := args.Error(1); err != nil {
		return "", fmt.Errorf("mock operation failed: %w", err)
	}
	return args.String(0), nil
}

// MockImageAnalyzer is a mock implementation of duplicates.ImageAnalyzer using testify/mock
type MockImageAnalyzer struct {
	mock.Mock
}

// JPEGQuality returns the quality estimate for path
func (m *MockImageAnalyzer) JPEGQuality(ctx context.Context, path string) (analysis.Quality, error) {
	args := m.Called(ctx, path)
	if err := args.Error(1); err != nil {
		return analysis.Quality{}, fmt.Errorf("mock operation failed: %w", err)
	}
	if q, ok := args.Get(0).(analysis.Quality); ok {
		return q, nil
	}
	return analysis.Quality{}, nil
}

// PixelHash returns the pixel hash for path
func (m *MockImageAnalyzer) PixelHash(ctx context.Context, path string, mime files.Mime) (files.Hash, error) {
	args := m.Called(ctx, path, mime)
	if err := args.Error(1); err != nil {
		return files.Hash{}, fmt.Errorf("mock operation failed: %w", err)
	}
	if h, ok := args.Get(0).(files.Hash); ok {
		return h, nil
	}
	return files.Hash{}, nil
}

// StaticLocator looks paths up in a fixed map, ignoring mime.
type StaticLocator struct {
	Paths map[files.Hash]string
}

func (l StaticLocator) FilePath(hash files.Hash, _ files.Mime) (string, error) {
	if p, ok := l.Paths[hash]; ok {
		return p, nil
	}
	return "", fmt.Errorf("no file for %s", hash.Hex())
}
