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
	"context"
	"fmt"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/stretchr/testify/mock"
)

// MockMountService is a mock implementation of the requests.MountService
// interface using testify/mock, for exercising API handlers without a full
// mount manager.
type MockMountService struct {
	mock.Mock
}

// NewMockMountService creates a new MockMountService instance.
func NewMockMountService() *MockMountService {
	return &MockMountService{}
}

// Mount attaches one share and starts tracking it.
func (m *MockMountService) Mount(
	ctx context.Context,
	cfg mounts.Config,
	creds *mounts.Credentials,
) (mounts.Volume, error) {
	args := m.Called(ctx, cfg, creds)
	vol, _ := args.Get(0).(mounts.Volume)
	if err := args.Error(1); err != nil {
		return vol, fmt.Errorf("mock operation failed: %w", err)
	}
	return vol, nil
}

// Unmount detaches the volume at mountPoint.
func (m *MockMountService) Unmount(ctx context.Context, mountPoint string) error {
	args := m.Called(ctx, mountPoint)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// AutoMount mounts every enabled configuration.
func (m *MockMountService) AutoMount(ctx context.Context) *mounts.AutoMountSummary {
	args := m.Called(ctx)
	summary, _ := args.Get(0).(*mounts.AutoMountSummary)
	return summary
}

// CancelAutoMount aborts an in-progress auto-mount run.
func (m *MockMountService) CancelAutoMount() {
	m.Called()
}

// CancelReconnect aborts the pending reconnect for one mount point.
func (m *MockMountService) CancelReconnect(mountPoint string) bool {
	args := m.Called(mountPoint)
	return args.Bool(0)
}

// CancelReconnects aborts every pending reconnect.
func (m *MockMountService) CancelReconnects() int {
	args := m.Called()
	return args.Int(0)
}

// ScanNetwork browses the local network for SMB servers.
func (m *MockMountService) ScanNetwork(ctx context.Context) ([]models.ScanHost, error) {
	args := m.Called(ctx)
	hosts, _ := args.Get(0).([]models.ScanHost)
	if err := args.Error(1); err != nil {
		return hosts, fmt.Errorf("mock operation failed: %w", err)
	}
	return hosts, nil
}
