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
	"encoding/hex"
	"errors"
	"os/exec"
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

// security(1) exits with the low byte of the Security framework OSStatus.
// Only the statuses the vault reacts to are named here.
const (
	secExitInteractionNotAllowed = 36 // errSecInteractionNotAllowed (-25308)
	secExitItemNotFound          = 44 // errSecItemNotFound (-25300)
	secExitDuplicateItem         = 45 // errSecDuplicateItem (-25299)
	secExitAuthFailed            = 51 // errSecAuthFailed (-25293)
)

// securityExitStatus digs the exit code out of an exec error, or -1 when
// the process never ran.
func securityExitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// kindForSecurityExit maps a security(1) exit code to the credential error
// kind for the operation that ran it.
func kindForSecurityExit(op string, code int) mounts.ErrorKind {
	switch code {
	case secExitItemNotFound:
		return mounts.ErrCredentialNotFound
	case secExitInteractionNotAllowed, secExitAuthFailed:
		return mounts.ErrCredentialAccessDenied
	case secExitDuplicateItem:
		return mounts.ErrCredentialUpdateFailed
	}
	switch op {
	case "store":
		return mounts.ErrCredentialSaveFailed
	case "delete":
		return mounts.ErrCredentialDeleteFailed
	default:
		return mounts.ErrCredentialAccessDenied
	}
}

// parseFindAttributes pulls the account name and security domain out of
// `security find-internet-password` attribute output, which lists one
// attribute per line:
//
//	"acct"<blob>="alice"
//	"sdmn"<blob>=<NULL>
func parseFindAttributes(out string) (username, domain string) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, `"acct"<blob>=`):
			username = decodeBlobValue(strings.TrimPrefix(line, `"acct"<blob>=`))
		case strings.HasPrefix(line, `"sdmn"<blob>=`):
			domain = decodeBlobValue(strings.TrimPrefix(line, `"sdmn"<blob>=`))
		}
	}
	return username, domain
}

// parsePasswordOutput extracts the secret from the "password:" line that
// the -g flag prints on stderr. Reports false when no password line is
// present at all.
func parsePasswordOutput(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "password:") {
			continue
		}
		return decodeBlobValue(strings.TrimPrefix(line, "password:")), true
	}
	return "", false
}

// decodeBlobValue decodes one attribute value. Plain values are quoted;
// values that do not fit the quoted form are printed as a hex blob,
// optionally followed by a lossy quoted rendering:
//
//	"alice"
//	0x70c3a46ccc88  "p\303\244l\314\210"
//	<NULL>
func decodeBlobValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "<NULL>" {
		return ""
	}
	if strings.HasPrefix(v, "0x") {
		hexPart := v[2:]
		if i := strings.IndexAny(hexPart, " \t"); i >= 0 {
			hexPart = hexPart[:i]
		}
		if decoded, err := hex.DecodeString(hexPart); err == nil {
			return string(decoded)
		}
		return ""
	}
	if strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) && len(v) >= 2 {
		return v[1 : len(v)-1]
	}
	return v
}
