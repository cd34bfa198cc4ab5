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

// Package vault stores SMB credentials outside the mount configuration
// file: in the macOS Keychain through security(1), or in a mode-0600 TOML
// file for setups where the Keychain is not available. Entries are keyed
// by server and share so one server can carry different credentials per
// share.
package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

type Vault interface {
	// Retrieve returns the stored credentials for a share. A missing
	// entry reports the credential_item_not_found kind.
	Retrieve(ctx context.Context, server, share string) (mounts.Credentials, error)
	// Store inserts or replaces the credentials for a share.
	Store(ctx context.Context, server, share string, creds mounts.Credentials) error
	// Delete removes the credentials for a share. Deleting an entry that
	// does not exist is a no-op.
	Delete(ctx context.Context, server, share string) error
}

// New returns the vault selected by the mounts configuration.
func New(cfg *config.Instance) (Vault, error) {
	switch cfg.VaultBackend() {
	case config.VaultFile:
		return NewFileVault(cfg.VaultPath()), nil
	case config.VaultKeychain:
		return newKeychain()
	default:
		return nil, &mounts.Error{
			Op:   "vault",
			Kind: mounts.ErrInvalidConfiguration,
			Err:  fmt.Errorf("unknown vault backend %q", cfg.VaultBackend()),
		}
	}
}

// entryKey is the canonical lookup key for a share's credentials. SMB
// server names are case-insensitive; share paths are kept as given.
func entryKey(server, share string) string {
	return strings.ToLower(server) + "/" + share
}
