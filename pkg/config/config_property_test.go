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

package config

import (
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"pgregory.net/rapid"
)

// ============================================================================
// Mount Configuration Store Property Tests
// ============================================================================

// TestPropertyAddThenGetRoundTrip verifies any valid configuration can be
// added and read back unchanged.
func TestPropertyAddThenGetRoundTrip(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg, err := NewConfig(tempDir, BaseDefaults)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		server := rapid.StringMatching(`[a-z0-9]([a-z0-9-]{0,10}[a-z0-9])?(\.[a-z0-9]{1,8}){0,2}`).Draw(t, "server")
		share := rapid.StringMatching(`[a-zA-Z0-9][a-zA-Z0-9_-]{0,15}`).Draw(t, "share")
		mountPoint := "/mnt/" + rapid.StringMatching(`[a-z0-9]{1,20}`).Draw(t, "mp")
		autoMount := rapid.Bool().Draw(t, "autoMount")

		added, err := cfg.AddMountConfig(mounts.Config{
			Server:     server,
			Share:      share,
			MountPoint: mountPoint,
			AutoMount:  autoMount,
		})
		if err != nil {
			// The only acceptable rejection is a mount point collision
			// with a previously drawn case.
			if !mounts.IsKind(err, mounts.ErrInvalidConfiguration) {
				t.Fatalf("unexpected add error: %v", err)
			}
			return
		}

		got, err := cfg.MountConfig(added.ID)
		if err != nil {
			t.Fatalf("added config not found: %v", err)
		}
		if got.Server != server || got.Share != share || got.AutoMount != autoMount {
			t.Fatalf("round trip mismatch: added %+v, got %+v", added, got)
		}
	})
}

// TestPropertyRemoveIsComplete verifies removing a configuration always
// leaves the store without it.
func TestPropertyRemoveIsComplete(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg, err := NewConfig(tempDir, BaseDefaults)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		share := rapid.StringMatching(`[a-z0-9]{1,16}`).Draw(t, "share")
		mountPoint := "/mnt/" + rapid.StringMatching(`[a-z0-9]{1,20}`).Draw(t, "mp")

		added, err := cfg.AddMountConfig(mounts.Config{
			Server:     "nas.local",
			Share:      share,
			MountPoint: mountPoint,
		})
		if err != nil {
			return // mount point collision between draws
		}

		if err := cfg.RemoveMountConfig(added.ID); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := cfg.MountConfig(added.ID); err == nil {
			t.Fatalf("config %s still present after remove", added.ID)
		}
		for _, mc := range cfg.MountConfigs() {
			if mc.ID == added.ID {
				t.Fatalf("config %s still listed after remove", added.ID)
			}
		}
	})
}
