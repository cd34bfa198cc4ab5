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

package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	toml "github.com/pelletier/go-toml/v2"
)

type fileEntry struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Domain   string `toml:"domain,omitempty"`
}

// FileVault keeps credentials in a TOML file with one table per share:
//
//	["nas.local/Media"]
//	username = "alice"
//	password = "secret"
//
// The file is written with mode 0600. This backend exists for headless
// setups and tests; the Keychain is the default on macOS.
type FileVault struct {
	path string
	mu   sync.Mutex
}

func NewFileVault(path string) *FileVault {
	return &FileVault{path: path}
}

func (v *FileVault) Retrieve(ctx context.Context, server, share string) (mounts.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return mounts.Credentials{}, fmt.Errorf("retrieve //%s/%s: %w", server, share, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.load("retrieve", server, share)
	if err != nil {
		return mounts.Credentials{}, err
	}

	entry, ok := entries[entryKey(server, share)]
	if !ok {
		return mounts.Credentials{}, &mounts.Error{
			Op:     "retrieve",
			Server: server,
			Share:  share,
			Kind:   mounts.ErrCredentialNotFound,
			Err:    errors.New("no stored credentials"),
		}
	}

	return mounts.Credentials{
		Username: entry.Username,
		Password: entry.Password,
		Domain:   entry.Domain,
	}, nil
}

func (v *FileVault) Store(ctx context.Context, server, share string, creds mounts.Credentials) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store //%s/%s: %w", server, share, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.load("store", server, share)
	if err != nil {
		return err
	}

	key := entryKey(server, share)
	_, existed := entries[key]
	entries[key] = fileEntry{
		Username: creds.Username,
		Password: creds.Password,
		Domain:   creds.Domain,
	}

	kind := mounts.ErrCredentialSaveFailed
	if existed {
		kind = mounts.ErrCredentialUpdateFailed
	}
	return v.save("store", kind, entries, server, share)
}

func (v *FileVault) Delete(ctx context.Context, server, share string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete //%s/%s: %w", server, share, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.load("delete", server, share)
	if err != nil {
		return err
	}

	key := entryKey(server, share)
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)

	return v.save("delete", mounts.ErrCredentialDeleteFailed, entries, server, share)
}

// load reads the whole file. A missing file is an empty vault. Caller
// must hold mu.
func (v *FileVault) load(op, server, share string) (map[string]fileEntry, error) {
	data, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]fileEntry{}, nil
	}
	if err != nil {
		return nil, &mounts.Error{
			Op:     op,
			Server: server,
			Share:  share,
			Kind:   mounts.ErrCredentialAccessDenied,
			Err:    err,
		}
	}

	var entries map[string]fileEntry
	if err := toml.Unmarshal(data, &entries); err != nil {
		return nil, &mounts.Error{
			Op:     op,
			Server: server,
			Share:  share,
			Kind:   mounts.ErrCredentialAccessDenied,
			Err:    fmt.Errorf("unreadable vault file: %w", err),
		}
	}
	if entries == nil {
		entries = map[string]fileEntry{}
	}
	return entries, nil
}

// save writes the entries back with restrictive permissions. Caller must
// hold mu.
func (v *FileVault) save(op string, kind mounts.ErrorKind, entries map[string]fileEntry, server, share string) error {
	data, err := toml.Marshal(entries)
	if err == nil {
		if err = os.MkdirAll(filepath.Dir(v.path), 0o700); err == nil {
			err = os.WriteFile(v.path, data, 0o600)
		}
	}
	if err != nil {
		return &mounts.Error{
			Op:     op,
			Server: server,
			Share:  share,
			Kind:   kind,
			Err:    err,
		}
	}
	return nil
}
