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

package notifier

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/rs/zerolog/log"
)

const bannerTimeout = 5 * time.Second

// Desktop posts banners through the macOS notification center.
type Desktop struct {
	cfg *config.Instance
}

func NewDesktop(cfg *config.Instance) *Desktop {
	return &Desktop{cfg: cfg}
}

func newPlatformNotifier(cfg *config.Instance) Notifier {
	return NewDesktop(cfg)
}

// post hands the banner to osascript without waiting for it. Banners are
// cosmetic, so errors only show up at debug level.
func (n *Desktop) post(text string) {
	if !n.cfg.NotificationsEnabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), bannerTimeout)
		defer cancel()

		script := fmt.Sprintf("display notification %q with title %q", text, appTitle)
		if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
			log.Debug().Err(err).Msgf("notification not displayed: %s", text)
		}
	}()
}

func (n *Desktop) MountSuccess(volumeName, mountPoint string) {
	n.post(mountSuccessText(volumeName, mountPoint))
}

func (n *Desktop) MountFailure(server, share, reason string) {
	n.post(mountFailureText(server, share, reason))
}

func (n *Desktop) UnmountFailure(mountPoint, reason string) {
	n.post(unmountFailureText(mountPoint, reason))
}

func (n *Desktop) Reconnected(volumeName string) {
	n.post(reconnectedText(volumeName))
}

func (n *Desktop) Disconnected(volumeName string) {
	n.post(disconnectedText(volumeName))
}

func (n *Desktop) AutoMountComplete(succeeded, failed int) {
	n.post(autoMountCompleteText(succeeded, failed))
}

func (n *Desktop) SyncComplete(mountPoint string, copied int) {
	n.post(syncCompleteText(mountPoint, copied))
}

func (n *Desktop) SyncConflict(mountPoint, path string) {
	n.post(syncConflictText(mountPoint, path))
}
