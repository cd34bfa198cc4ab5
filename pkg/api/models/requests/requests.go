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

package requests

import (
	"context"
	"encoding/json"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/ShareMountProject/sharemount-core/pkg/vault"
	"github.com/google/uuid"
)

// MountService is the slice of the mount manager that API handlers call
// into. Keeping it here lets handlers stay decoupled from the service
// package, which imports this one.
type MountService interface {
	// Mount attaches one share and starts tracking it. A nil creds mounts
	// as guest or with whatever the vault holds for the share.
	Mount(ctx context.Context, cfg mounts.Config, creds *mounts.Credentials) (mounts.Volume, error)
	// Unmount detaches the volume at mountPoint and stops tracking it.
	Unmount(ctx context.Context, mountPoint string) error
	// AutoMount mounts every enabled configuration concurrently. The
	// summary covers whatever finished; cancellation is not an error.
	AutoMount(ctx context.Context) *mounts.AutoMountSummary
	// CancelAutoMount aborts an in-progress auto-mount run, if any.
	CancelAutoMount()
	// CancelReconnect aborts the pending reconnect for one mount point,
	// reporting whether there was one.
	CancelReconnect(mountPoint string) bool
	// CancelReconnects aborts every pending reconnect and returns how
	// many were stopped.
	CancelReconnects() int
	// ScanNetwork browses the local network for SMB servers.
	ScanNetwork(ctx context.Context) ([]models.ScanHost, error)
}

type RequestEnv struct {
	Mounts  MountService
	Vault   vault.Vault
	Config  *config.Instance
	State   *state.State
	Params  json.RawMessage
	ID      uuid.UUID
	IsLocal bool
}
