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

// Package volumes watches the system mount table and turns changes into
// volume events for the mount service.
package volumes

import "github.com/ShareMountProject/sharemount-core/pkg/mounts"

type Watcher interface {
	// StartMonitoring begins observation. Calling it while running is a
	// no-op; after StopMonitoring it starts a fresh observation run.
	StartMonitoring() error
	// StopMonitoring halts observation and waits for the run to wind
	// down. The Events channel stays open across restarts.
	StopMonitoring()
	// AddMountPoint registers a mount point for connection-state
	// tracking. Registering an already tracked path is a no-op.
	AddMountPoint(path string)
	// RemoveMountPoint drops a mount point from tracking. No events are
	// emitted for the path once the call returns, which is what lets an
	// intentional unmount suppress the disconnect it would otherwise
	// look like.
	RemoveMountPoint(path string)
	// Events is the stream of observed changes. It is never closed.
	Events() <-chan mounts.Event
}
