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

// Package backends defines the contract between the mount service and the
// OS-level drivers that attach and detach SMB shares.
package backends

import (
	"context"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

type Backend interface {
	// Mount attaches the share described by cfg at its effective mount
	// point and returns the volume as it appears in the mount table.
	// A nil creds mounts without explicit credentials, leaving it to the
	// server whether guest access is allowed. Failures carry a typed
	// mounts.Error; a cancelled context propagates context.Canceled.
	Mount(ctx context.Context, cfg mounts.Config, creds *mounts.Credentials) (*mounts.Volume, error)
	// Unmount detaches the volume mounted at mountPoint.
	Unmount(ctx context.Context, mountPoint string) error
	// MountedVolumes returns a snapshot of the SMB volumes currently
	// present in the system mount table.
	MountedVolumes(ctx context.Context) ([]mounts.Volume, error)
}
