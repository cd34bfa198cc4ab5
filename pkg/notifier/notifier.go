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

// Package notifier posts user-facing banners for mount lifecycle events.
// Banners are best-effort: a failure to display is logged and swallowed,
// and the whole layer is gated by the notifications setting, checked at
// call time so changes apply without a restart.
package notifier

import (
	"fmt"

	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/rs/zerolog/log"
)

const appTitle = "ShareMount"

type Notifier interface {
	MountSuccess(volumeName, mountPoint string)
	MountFailure(server, share, reason string)
	UnmountFailure(mountPoint, reason string)
	Reconnected(volumeName string)
	Disconnected(volumeName string)
	AutoMountComplete(succeeded, failed int)
	SyncComplete(mountPoint string, copied int)
	SyncConflict(mountPoint, path string)
}

// New returns the platform notifier: notification center banners on
// macOS, log lines elsewhere.
func New(cfg *config.Instance) Notifier {
	return newPlatformNotifier(cfg)
}

func mountSuccessText(volumeName, mountPoint string) string {
	return fmt.Sprintf("Mounted %s at %s", volumeName, mountPoint)
}

func mountFailureText(server, share, reason string) string {
	return fmt.Sprintf("Could not mount //%s/%s: %s", server, share, reason)
}

func unmountFailureText(mountPoint, reason string) string {
	return fmt.Sprintf("Could not unmount %s: %s", mountPoint, reason)
}

func reconnectedText(volumeName string) string {
	return fmt.Sprintf("Reconnected %s", volumeName)
}

func disconnectedText(volumeName string) string {
	return fmt.Sprintf("Lost connection to %s", volumeName)
}

func autoMountCompleteText(succeeded, failed int) string {
	if failed == 0 {
		if succeeded == 1 {
			return "Mounted 1 share"
		}
		return fmt.Sprintf("Mounted %d shares", succeeded)
	}
	return fmt.Sprintf("Mounted %d of %d shares, %d failed",
		succeeded, succeeded+failed, failed)
}

func syncCompleteText(mountPoint string, copied int) string {
	if copied == 1 {
		return fmt.Sprintf("Mirror of %s updated, 1 file copied", mountPoint)
	}
	return fmt.Sprintf("Mirror of %s updated, %d files copied", mountPoint, copied)
}

func syncConflictText(mountPoint, path string) string {
	return fmt.Sprintf("Sync conflict on %s: %s was changed in the mirror and was skipped", mountPoint, path)
}

// LogNotifier renders banners as log lines. It backs the darwin notifier
// on other platforms and headless service runs.
type LogNotifier struct {
	cfg *config.Instance
}

func NewLogNotifier(cfg *config.Instance) *LogNotifier {
	return &LogNotifier{cfg: cfg}
}

func (n *LogNotifier) post(text string) {
	if !n.cfg.NotificationsEnabled() {
		return
	}
	log.Info().Msgf("%s: %s", appTitle, text)
}

func (n *LogNotifier) MountSuccess(volumeName, mountPoint string) {
	n.post(mountSuccessText(volumeName, mountPoint))
}

func (n *LogNotifier) MountFailure(server, share, reason string) {
	n.post(mountFailureText(server, share, reason))
}

func (n *LogNotifier) UnmountFailure(mountPoint, reason string) {
	n.post(unmountFailureText(mountPoint, reason))
}

func (n *LogNotifier) Reconnected(volumeName string) {
	n.post(reconnectedText(volumeName))
}

func (n *LogNotifier) Disconnected(volumeName string) {
	n.post(disconnectedText(volumeName))
}

func (n *LogNotifier) AutoMountComplete(succeeded, failed int) {
	n.post(autoMountCompleteText(succeeded, failed))
}

func (n *LogNotifier) SyncComplete(mountPoint string, copied int) {
	n.post(syncCompleteText(mountPoint, copied))
}

func (n *LogNotifier) SyncConflict(mountPoint, path string) {
	n.post(syncConflictText(mountPoint, path))
}
