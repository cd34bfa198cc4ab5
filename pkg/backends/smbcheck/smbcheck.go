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

// Package smbcheck probes SMB endpoints over port 445. It exists to turn
// the coarse failures reported by mount tooling into precise error
// kinds: each probe stage (TCP dial, session setup, share connect) that
// fails maps to exactly one classification.
package smbcheck

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/cloudsoda/go-smb2"
	"github.com/rs/zerolog/log"
)

const defaultDialTimeout = 10 * time.Second

type Checker struct {
	dialTimeout time.Duration
}

func New() *Checker {
	return &Checker{dialTimeout: defaultDialTimeout}
}

// Probe verifies that server exposes share to the given credentials.
// With nil or username-less credentials only TCP reachability is
// checked, since an anonymous session being rejected says nothing about
// whether a mount with keychain credentials would have succeeded.
func (c *Checker) Probe(
	ctx context.Context,
	server, share string,
	creds *mounts.Credentials,
) error {
	addr := probeAddr(server)

	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("probe %s: %w", addr, ctxErr)
		}
		return &mounts.Error{
			Op:     "probe",
			Server: server,
			Share:  share,
			Kind:   mounts.ErrNetworkUnreachable,
			Err:    err,
		}
	}
	if closeErr := conn.Close(); closeErr != nil {
		log.Debug().Err(closeErr).Msg("error closing probe connection")
	}

	if creds == nil || creds.Username == "" {
		return nil
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     creds.Username,
			Password: creds.Password,
			Domain:   creds.Domain,
		},
	}

	session, err := d.Dial(ctx, addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("probe %s: %w", addr, ctxErr)
		}
		// Reachability was proven above, so session setup failing
		// means the server rejected the login.
		return &mounts.Error{
			Op:     "probe",
			Server: server,
			Share:  share,
			Kind:   mounts.ErrAuthenticationFailed,
			Err:    err,
		}
	}
	defer func() {
		if logoffErr := session.Logoff(); logoffErr != nil {
			log.Warn().Err(logoffErr).Msg("error logging off SMB session")
		}
	}()

	fs, err := session.Mount(share)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("probe %s: %w", addr, ctxErr)
		}
		kind := mounts.ErrShareNotFound
		if strings.Contains(strings.ToLower(err.Error()), "access denied") {
			kind = mounts.ErrPermissionDenied
		}
		return &mounts.Error{
			Op:     "probe",
			Server: server,
			Share:  share,
			Kind:   kind,
			Err:    err,
		}
	}
	if umountErr := fs.Umount(); umountErr != nil {
		log.Warn().Err(umountErr).Msg("error disconnecting probe share")
	}

	return nil
}

// probeAddr normalizes a configured server into a dialable host:port,
// defaulting to the SMB port. Bare and bracketed IPv6 literals are both
// accepted.
func probeAddr(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	host := strings.TrimSuffix(strings.TrimPrefix(server, "["), "]")
	return net.JoinHostPort(host, "445")
}
