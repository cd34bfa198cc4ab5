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

package mounts

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a mount operation failure. Kinds are stable strings
// so they can cross the API boundary unchanged.
type ErrorKind string

const (
	ErrNetworkUnreachable       ErrorKind = "network_unreachable"
	ErrAuthenticationFailed     ErrorKind = "authentication_failed"
	ErrMountPointExists         ErrorKind = "mount_point_exists"
	ErrMountPointCreation       ErrorKind = "mount_point_creation_failed"
	ErrPermissionDenied         ErrorKind = "permission_denied"
	ErrInvalidURL               ErrorKind = "invalid_url"
	ErrMountFailed              ErrorKind = "mount_operation_failed"
	ErrShareNotFound            ErrorKind = "share_not_found"
	ErrMountTimeout             ErrorKind = "mount_timeout"
	ErrNotMounted               ErrorKind = "not_mounted"
	ErrUnmountFailed            ErrorKind = "unmount_failed"
	ErrCredentialAccessDenied   ErrorKind = "credential_access_denied"
	ErrCredentialNotFound       ErrorKind = "credential_item_not_found"
	ErrCredentialSaveFailed     ErrorKind = "credential_save_failed"
	ErrCredentialUpdateFailed   ErrorKind = "credential_update_failed"
	ErrCredentialDeleteFailed   ErrorKind = "credential_delete_failed"
	ErrConfigurationNotFound    ErrorKind = "configuration_not_found"
	ErrConfigurationReadFailed  ErrorKind = "configuration_read_failed"
	ErrConfigurationWriteFailed ErrorKind = "configuration_write_failed"
	ErrInvalidConfiguration     ErrorKind = "invalid_configuration"
	ErrScannerInit              ErrorKind = "scanner_initialization_failed"
	ErrScanTimeout              ErrorKind = "scan_timeout"
	ErrSyncConflict             ErrorKind = "sync_conflict"
	ErrSyncFailed               ErrorKind = "sync_failed"
	ErrCancelled                ErrorKind = "cancelled"
	ErrInvalidInput             ErrorKind = "invalid_input"
	ErrUnknown                  ErrorKind = "unknown"
)

// Error is a classified failure from a mount, unmount, credential or
// configuration operation. Server, Share and Path are filled in when the
// operation had them in scope.
type Error struct {
	Err    error
	Kind   ErrorKind
	Op     string
	Server string
	Share  string
	Path   string
}

func (e *Error) Error() string {
	target := ""
	switch {
	case e.Server != "" && e.Share != "":
		target = " //" + e.Server + "/" + e.Share
	case e.Server != "":
		target = " //" + e.Server
	case e.Path != "":
		target = " " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s:%s %s: %v", e.Op, target, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s:%s %s", e.Op, target, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the classification of err, unwrapping as needed.
// Errors that carry no *Error anywhere in their chain are ErrUnknown,
// except context cancellation which always maps to ErrCancelled.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return ErrUnknown
}

// IsKind reports whether err's classification matches kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// IsCancelled reports whether err represents cooperative cancellation.
// Cancellation is an expected outcome and is never surfaced as a failure.
func IsCancelled(err error) bool {
	return KindOf(err) == ErrCancelled
}
