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

//go:build darwin

package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

// smbProtocol is the four-character SecProtocolType code for SMB items.
const smbProtocol = "smb "

// Keychain stores credentials as internet passwords in the user's login
// keychain via security(1). Items carry the SMB protocol code, the server
// as the item server and the share as the item path, which matches how
// macOS files credentials when it mounts a share itself.
type Keychain struct{}

func NewKeychain() *Keychain {
	return &Keychain{}
}

func newKeychain() (Vault, error) {
	return NewKeychain(), nil
}

func (k *Keychain) Retrieve(ctx context.Context, server, share string) (mounts.Credentials, error) {
	// -g prints the password on stderr and the item attributes on stdout.
	stdout, stderr, err := k.run(ctx,
		"find-internet-password",
		"-s", strings.ToLower(server),
		"-p", share,
		"-r", smbProtocol,
		"-g",
	)
	if err != nil {
		return mounts.Credentials{}, k.opError(ctx, "retrieve", server, share, err, stderr)
	}

	username, domain := parseFindAttributes(stdout)
	password, ok := parsePasswordOutput(stderr)
	if !ok {
		return mounts.Credentials{}, &mounts.Error{
			Op:     "retrieve",
			Server: server,
			Share:  share,
			Kind:   mounts.ErrCredentialAccessDenied,
			Err:    errors.New("keychain item has no readable password"),
		}
	}

	return mounts.Credentials{
		Username: username,
		Password: password,
		Domain:   domain,
	}, nil
}

func (k *Keychain) Store(ctx context.Context, server, share string, creds mounts.Credentials) error {
	// TODO: feed the command through `security -i` so the password stays
	// off the process argument list.
	args := []string{
		"add-internet-password",
		"-a", creds.Username,
		"-s", strings.ToLower(server),
		"-p", share,
		"-r", smbProtocol,
		"-l", server + "/" + share,
		"-U",
		"-w", creds.Password,
	}
	if creds.Domain != "" {
		args = append(args, "-d", creds.Domain)
	}

	if _, stderr, err := k.run(ctx, args...); err != nil {
		return k.opError(ctx, "store", server, share, err, stderr)
	}
	return nil
}

func (k *Keychain) Delete(ctx context.Context, server, share string) error {
	_, stderr, err := k.run(ctx,
		"delete-internet-password",
		"-s", strings.ToLower(server),
		"-p", share,
		"-r", smbProtocol,
	)
	if err != nil {
		if securityExitStatus(err) == secExitItemNotFound {
			return nil
		}
		return k.opError(ctx, "delete", server, share, err, stderr)
	}
	return nil
}

func (*Keychain) run(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, "security", args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

func (*Keychain) opError(ctx context.Context, op, server, share string, runErr error, stderr string) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s //%s/%s: %w", op, server, share, context.Canceled)
	}

	err := runErr
	if reason := strings.TrimSpace(stderr); reason != "" {
		err = errors.New(reason)
	}
	return &mounts.Error{
		Op:     op,
		Server: server,
		Share:  share,
		Kind:   kindForSecurityExit(op, securityExitStatus(runErr)),
		Err:    err,
	}
}
