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

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/stretchr/testify/mock"
)

// MockWatcher is a mock implementation of the volumes.Watcher interface
// using testify/mock. The event stream is a real channel so tests can feed
// events through EmitEvent exactly as the OS watcher would.
type MockWatcher struct {
	mock.Mock
	events chan mounts.Event
}

// NewMockWatcher creates a new MockWatcher instance.
func NewMockWatcher() *MockWatcher {
	return &MockWatcher{events: make(chan mounts.Event, 16)}
}

// AllowAll accepts every watcher call without recording expectations.
// Registered catch-alls take precedence over later specific ones, so tests
// that hook or count individual calls must set those up instead.
func (m *MockWatcher) AllowAll() {
	m.On("StartMonitoring").Return(nil).Maybe()
	m.On("StopMonitoring").Maybe()
	m.On("AddMountPoint", mock.Anything).Maybe()
	m.On("RemoveMountPoint", mock.Anything).Maybe()
}

// StartMonitoring begins observation.
func (m *MockWatcher) StartMonitoring() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// StopMonitoring halts observation.
func (m *MockWatcher) StopMonitoring() {
	m.Called()
}

// AddMountPoint registers a mount point for tracking.
func (m *MockWatcher) AddMountPoint(path string) {
	m.Called(path)
}

// RemoveMountPoint drops a mount point from tracking.
func (m *MockWatcher) RemoveMountPoint(path string) {
	m.Called(path)
}

// Events is the stream of observed changes.
func (m *MockWatcher) Events() <-chan mounts.Event {
	return m.events
}

// EmitEvent pushes an event into the watcher stream as if the OS had
// reported it.
func (m *MockWatcher) EmitEvent(ev mounts.Event) {
	m.events <- ev
}
