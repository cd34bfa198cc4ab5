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

package netfs

import (
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

// classifyMountOutput maps mount_smbfs stderr to an error kind. The tool
// reports failures as errno strings, so matching is on the stable errno
// text rather than exit codes, which only distinguish usage errors.
func classifyMountOutput(stderr string) mounts.ErrorKind {
	out := strings.ToLower(stderr)

	switch {
	case strings.Contains(out, "authentication error"),
		strings.Contains(out, "logon failure"):
		return mounts.ErrAuthenticationFailed
	case strings.Contains(out, "permission denied"):
		return mounts.ErrPermissionDenied
	case strings.Contains(out, "no route to host"),
		strings.Contains(out, "connection refused"),
		strings.Contains(out, "host is down"),
		strings.Contains(out, "unknown host"),
		strings.Contains(out, "could not resolve"),
		strings.Contains(out, "network is down"),
		strings.Contains(out, "network is unreachable"),
		strings.Contains(out, "connection reset"),
		strings.Contains(out, "broken pipe"):
		return mounts.ErrNetworkUnreachable
	case strings.Contains(out, "timed out"):
		return mounts.ErrMountTimeout
	case strings.Contains(out, "no such file or directory"):
		// The server accepted the connection but rejected the share path.
		return mounts.ErrShareNotFound
	case strings.Contains(out, "file exists"),
		strings.Contains(out, "resource busy"):
		return mounts.ErrMountPointExists
	default:
		return mounts.ErrMountFailed
	}
}
