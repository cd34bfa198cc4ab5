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
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of the notifier.Notifier interface
// using testify/mock.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a new MockNotifier instance.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// MountSuccess announces a successful mount.
func (m *MockNotifier) MountSuccess(volumeName, mountPoint string) {
	m.Called(volumeName, mountPoint)
}

// MountFailure announces a failed mount attempt.
func (m *MockNotifier) MountFailure(server, share, reason string) {
	m.Called(server, share, reason)
}

// UnmountFailure announces a failed unmount attempt.
func (m *MockNotifier) UnmountFailure(mountPoint, reason string) {
	m.Called(mountPoint, reason)
}

// Reconnected announces a share coming back after a connection loss.
func (m *MockNotifier) Reconnected(volumeName string) {
	m.Called(volumeName)
}

// Disconnected announces a lost connection.
func (m *MockNotifier) Disconnected(volumeName string) {
	m.Called(volumeName)
}

// AutoMountComplete announces the outcome of an auto-mount run.
func (m *MockNotifier) AutoMountComplete(succeeded, failed int) {
	m.Called(succeeded, failed)
}

// SyncComplete announces a finished mirror pass.
func (m *MockNotifier) SyncComplete(mountPoint string, copied int) {
	m.Called(mountPoint, copied)
}

// SyncConflict announces a file skipped because the mirror copy changed.
func (m *MockNotifier) SyncConflict(mountPoint, path string) {
	m.Called(mountPoint, path)
}

// AllowAll accepts every notification without recording expectations, for
// tests that exercise flows where banners are incidental.
func (m *MockNotifier) AllowAll() {
	m.On("MountSuccess", mock.Anything, mock.Anything).Maybe()
	m.On("MountFailure", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("UnmountFailure", mock.Anything, mock.Anything).Maybe()
	m.On("Reconnected", mock.Anything).Maybe()
	m.On("Disconnected", mock.Anything).Maybe()
	m.On("AutoMountComplete", mock.Anything, mock.Anything).Maybe()
	m.On("SyncComplete", mock.Anything, mock.Anything).Maybe()
	m.On("SyncConflict", mock.Anything, mock.Anything).Maybe()
}
