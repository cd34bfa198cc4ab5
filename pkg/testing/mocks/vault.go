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

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/stretchr/testify/mock"
)

// MockVault is a mock implementation of the vault.Vault interface using
// testify/mock.
type MockVault struct {
	mock.Mock
}

// NewMockVault creates a new MockVault instance.
func NewMockVault() *MockVault {
	return &MockVault{}
}

// Retrieve returns the stored credentials for a share.
func (m *MockVault) Retrieve(ctx context.Context, server, share string) (mounts.Credentials, error) {
	args := m.Called(ctx, server, share)
	creds, _ := args.Get(0).(mounts.Credentials)
	if err := args.Error(1); err != nil {
		return creds, fmt.Errorf("mock operation failed: %w", err)
	}
	return creds, nil
}

// Store inserts or replaces the credentials for a share.
func (m *MockVault) Store(ctx context.Context, server, share string, creds mounts.Credentials) error {
	args := m.Called(ctx, server, share, creds)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// Delete removes the credentials for a share.
func (m *MockVault) Delete(ctx context.Context, server, share string) error {
	args := m.Called(ctx, server, share)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// NotFoundError builds the typed lookup miss the real vaults report, for
// use as a canned Retrieve return value.
func NotFoundError(server, share string) error {
	return &mounts.Error{
		Op:     "retrieve",
		Server: server,
		Share:  share,
		Kind:   mounts.ErrCredentialNotFound,
	}
}
