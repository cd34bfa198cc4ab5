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

package service

import (
	"context"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/rs/zerolog/log"
)

// consumeEvents is the manager's event loop. Events are handled strictly
// in emission order, one at a time, so the volume table never sees
// interleaved mutations from the same stream.
func (m *MountManager) consumeEvents(ctx context.Context, done chan struct{}) {
	defer close(done)
	events := m.watcher.Events()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("volume event loop stopping")
			return
		case ev := <-events:
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *MountManager) handleEvent(ctx context.Context, ev mounts.Event) {
	log.Debug().Str("kind", string(ev.Kind)).
		Str("mount_point", ev.MountPoint).Msg("volume event")

	switch ev.Kind {
	case mounts.EventMounted:
		m.handleMounted(ev)
	case mounts.EventUnmounted:
		m.handleUnmounted(ev.MountPoint)
	case mounts.EventDisconnected:
		m.handleDisconnected(ctx, ev.MountPoint)
	case mounts.EventReconnecting:
		// Informational: surface the connecting indicator, nothing else.
		m.st.SetVolumeStatus(ev.MountPoint, mounts.StatusReconnecting)
	}
}

// handleMounted refreshes the table entry for a volume that appeared in
// the system mount table, including mounts made outside the service
// (Finder's Connect to Server ends up here).
func (m *MountManager) handleMounted(ev mounts.Event) {
	if ev.Volume == nil {
		log.Warn().Str("mount_point", ev.MountPoint).Msg("mounted event without volume")
		return
	}
	m.st.AddVolume(*ev.Volume)
	m.watcher.AddMountPoint(ev.MountPoint)
}

// handleUnmounted drops a volume the system no longer has mounted. The
// eject was intentional (the server still answered), so no reconnect.
func (m *MountManager) handleUnmounted(mountPoint string) {
	if m.syncer != nil && m.syncer.Enabled(mountPoint) {
		m.syncer.Disable(mountPoint)
	}
	m.watcher.RemoveMountPoint(mountPoint)
	m.st.RemoveVolume(mountPoint)
}

// handleDisconnected marks the volume disconnected and, when automatic
// reconnection is on, schedules a reconnect attempt for its mount point.
func (m *MountManager) handleDisconnected(_ context.Context, mountPoint string) {
	vol, tracked := m.st.Volume(mountPoint)
	m.st.SetVolumeStatus(mountPoint, mounts.StatusDisconnected)

	name := mountPoint
	if tracked {
		name = vol.VolumeName
	}
	m.notifier.Disconnected(name)

	if !m.cfg.AutoReconnect() {
		log.Info().Str("mount_point", mountPoint).
			Msg("disconnected, automatic reconnection disabled")
		return
	}
	m.scheduleReconnect(mountPoint)
}
