// ShareMount Core
// Copyright (c) 2026 The ShareMount Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ShareMount Core.
//
// ShareMount Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ShareMount Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ShareMount Core.  If not, see <http://www.gnu.org/licenses/>.

package mocks

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

// MockSyncer is a mock implementation of the service.Syncer interface using
// testify/mock.
type MockSyncer struct {
	mock.Mock
}

// NewMockSyncer creates a new MockSyncer instance.
func NewMockSyncer() *MockSyncer {
	return &MockSyncer{}
}

// AllowAll accepts every syncer call, reporting no mount point as mirrored.
func (m *MockSyncer) AllowAll() {
	m.On("Enabled", mock.Anything).Return(false).Maybe()
	m.On("Enable", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Disable", mock.Anything).Maybe()
}

// Enable starts mirroring a mount point into mirrorDir.
func (m *MockSyncer) Enable(mountPoint, mirrorDir string) error {
	args := m.Called(mountPoint, mirrorDir)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// Disable stops mirroring a mount point.
func (m *MockSyncer) Disable(mountPoint string) {
	m.Called(mountPoint)
}

// Enabled reports whether a mount point is being mirrored.
func (m *MockSyncer) Enabled(mountPoint string) bool {
	args := m.Called(mountPoint)
	return args.Bool(0)
}
