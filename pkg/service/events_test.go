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
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleMountedEventTracksVolume(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	vol := mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	}
	f.watcher.On("AddMountPoint", "/Volumes/media").Once()

	f.mgr.handleEvent(context.Background(), mounts.Event{
		Kind:       mounts.EventMounted,
		MountPoint: "/Volumes/media",
		Volume:     &vol,
	})

	tracked, ok := f.st.Volume("/Volumes/media")
	require.True(t, ok)
	assert.Equal(t, "nas.local", tracked.Server)
	f.watcher.AssertExpectations(t)
}

func TestHandleMountedEventWithoutVolume(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)

	// malformed event, must not panic or track anything
	f.mgr.handleEvent(context.Background(), mounts.Event{
		Kind:       mounts.EventMounted,
		MountPoint: "/Volumes/media",
	})

	_, ok := f.st.Volume("/Volumes/media")
	assert.False(t, ok)
}

func TestHandleUnmountedEventCleansUp(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	})

	f.syncer.On("Enabled", "/Volumes/media").Return(true)
	f.syncer.On("Disable", "/Volumes/media").Once()
	f.watcher.On("RemoveMountPoint", "/Volumes/media").Once()

	f.mgr.handleEvent(context.Background(), mounts.Event{
		Kind:       mounts.EventUnmounted,
		MountPoint: "/Volumes/media",
	})

	_, ok := f.st.Volume("/Volumes/media")
	assert.False(t, ok)
	f.syncer.AssertExpectations(t)
	f.watcher.AssertExpectations(t)
}

func TestHandleDisconnectedWithoutAutoReconnect(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.cfg.SetAutoReconnect(false)
	f.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		VolumeName: "media",
		Status:     mounts.StatusMounted,
	})
	f.notifier.On("Disconnected", "media").Once()

	f.mgr.handleEvent(context.Background(), mounts.Event{
		Kind:       mounts.EventDisconnected,
		MountPoint: "/Volumes/media",
	})

	vol, ok := f.st.Volume("/Volumes/media")
	require.True(t, ok)
	assert.Equal(t, mounts.StatusDisconnected, vol.Status)
	assert.Equal(t, 0, f.mgr.reconnects.count(), "no reconnect scheduled")
	f.notifier.AssertExpectations(t)
}

func TestHandleDisconnectedSchedulesReconnect(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		VolumeName: "media",
		Status:     mounts.StatusMounted,
	})
	f.notifier.On("Disconnected", "media").Once()

	f.mgr.handleEvent(context.Background(), mounts.Event{
		Kind:       mounts.EventDisconnected,
		MountPoint: "/Volumes/media",
	})

	assert.Equal(t, 1, f.mgr.reconnects.count())

	// no saved configuration, so the attempt unwinds once the delay elapses
	f.clock.BlockUntil(1)
	f.clock.Advance(f.cfg.ReconnectDelay())
	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick)
}

func TestHandleReconnectingEventUpdatesStatus(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		Status:     mounts.StatusMounted,
	})

	f.mgr.handleEvent(context.Background(), mounts.Event{
		Kind:       mounts.EventReconnecting,
		MountPoint: "/Volumes/media",
	})

	vol, ok := f.st.Volume("/Volumes/media")
	require.True(t, ok)
	assert.Equal(t, mounts.StatusReconnecting, vol.Status)
}

func TestEventLoopConsumesWatcherStream(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.watcher.On("StartMonitoring").Return(nil).Once()
	f.watcher.On("AddMountPoint", mock.Anything).Maybe()
	f.start(t)

	vol := mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	}
	f.watcher.EmitEvent(mounts.Event{
		Kind:       mounts.EventMounted,
		MountPoint: vol.MountPoint,
		Volume:     &vol,
	})

	require.Eventually(t, func() bool {
		_, ok := f.st.Volume("/Volumes/media")
		return ok
	}, waitFor, tick)
}
