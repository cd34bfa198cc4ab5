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
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of the backends.Backend interface
// using testify/mock.
type MockBackend struct {
	mock.Mock
}

// NewMockBackend creates a new MockBackend instance.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Mount attaches a share and returns the resulting volume.
func (m *MockBackend) Mount(
	ctx context.Context,
	cfg mounts.Config,
	creds *mounts.Credentials,
) (*mounts.Volume, error) {
	args := m.Called(ctx, cfg, creds)
	vol, _ := args.Get(0).(*mounts.Volume)
	if err := args.Error(1); err != nil {
		return vol, fmt.Errorf("mock operation failed: %w", err)
	}
	return vol, nil
}

// Unmount detaches the volume mounted at mountPoint.
func (m *MockBackend) Unmount(ctx context.Context, mountPoint string) error {
	args := m.Called(ctx, mountPoint)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// MountedVolumes returns the volumes the fake mount table currently holds.
func (m *MockBackend) MountedVolumes(ctx context.Context) ([]mounts.Volume, error) {
	args := m.Called(ctx)
	vols, _ := args.Get(0).([]mounts.Volume)
	if err := args.Error(1); err != nil {
		return vols, fmt.Errorf("mock operation failed: %w", err)
	}
	return vols, nil
}

// VolumeFor builds the volume the real driver would report after mounting
// cfg, for use as a canned Mount return value.
func VolumeFor(cfg mounts.Config) mounts.Volume {
	return mounts.Volume{
		ID:         uuid.NewString(),
		Server:     cfg.Server,
		Share:      cfg.Share,
		MountPoint: cfg.EffectiveMountPoint(),
		VolumeName: cfg.VolumeName(),
		Status:     mounts.StatusMounted,
		MountedAt:  time.Now(),
	}
}
