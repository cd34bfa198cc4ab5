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
	"github.com/ShareMountProject/sharemount-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistryReplacesNotQueues(t *testing.T) {
	t.Parallel()

	r := newReconnectRegistry()

	ctx1, task1 := r.begin(context.Background(), "/Volumes/media")
	ctx2, task2 := r.begin(context.Background(), "/Volumes/media")

	// the first attempt was cancelled by the second, never queued behind it
	require.Error(t, ctx1.Err())
	require.NoError(t, ctx2.Err())
	assert.Equal(t, 1, r.count())

	// the replaced task unwinding leaves the newer registration alone
	r.finish("/Volumes/media", task1)
	assert.Equal(t, 1, r.count())

	r.finish("/Volumes/media", task2)
	assert.Equal(t, 0, r.count())
}

func TestRegistryCancel(t *testing.T) {
	t.Parallel()

	r := newReconnectRegistry()
	ctx, task := r.begin(context.Background(), "/Volumes/media")

	assert.False(t, r.cancel("/Volumes/other"))
	assert.True(t, r.cancel("/Volumes/media"))
	require.Error(t, ctx.Err())

	r.finish("/Volumes/media", task)
	assert.Equal(t, 0, r.count())
}

func TestRegistryCancelAll(t *testing.T) {
	t.Parallel()

	r := newReconnectRegistry()
	_, t1 := r.begin(context.Background(), "/Volumes/a")
	_, t2 := r.begin(context.Background(), "/Volumes/b")

	assert.Equal(t, 2, r.cancelAll())
	r.finish("/Volumes/a", t1)
	r.finish("/Volumes/b", t2)
	assert.Equal(t, 0, r.cancelAll())
}

func TestReconnectRemountsShare(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := savedConfig(t, f, nil)
	mountPoint := cfg.EffectiveMountPoint()

	f.st.AddVolume(mounts.Volume{
		MountPoint: mountPoint,
		Server:     cfg.Server,
		Share:      cfg.Share,
		VolumeName: cfg.VolumeName(),
		Status:     mounts.StatusDisconnected,
	})

	vol := mocks.VolumeFor(cfg)
	f.backend.On("Mount", mock.Anything, mock.MatchedBy(func(c mounts.Config) bool {
		return c.ID == cfg.ID
	}), (*mounts.Credentials)(nil)).Return(&vol, nil)
	f.watcher.On("AddMountPoint", mountPoint).Once()
	f.notifier.On("Reconnected", cfg.VolumeName()).Once()

	f.mgr.scheduleReconnect(mountPoint)
	f.clock.BlockUntil(1)
	f.clock.Advance(f.cfg.ReconnectDelay())

	require.Eventually(t, func() bool {
		tracked, ok := f.st.Volume(mountPoint)
		return ok && tracked.Status == mounts.StatusMounted
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick)
	f.notifier.AssertExpectations(t)
}

func TestReconnectFailureLeavesVolumeDisconnected(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := savedConfig(t, f, nil)
	mountPoint := cfg.EffectiveMountPoint()

	f.st.AddVolume(mounts.Volume{
		MountPoint: mountPoint,
		Server:     cfg.Server,
		Share:      cfg.Share,
		Status:     mounts.StatusDisconnected,
	})

	f.backend.On("Mount", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &mounts.Error{
			Op:     "mount",
			Server: cfg.Server,
			Share:  cfg.Share,
			Kind:   mounts.ErrNetworkUnreachable,
		})

	f.mgr.scheduleReconnect(mountPoint)
	f.clock.BlockUntil(1)
	f.clock.Advance(f.cfg.ReconnectDelay())

	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick)

	vol, ok := f.st.Volume(mountPoint)
	require.True(t, ok, "failed reconnects keep the volume in the table")
	assert.Equal(t, mounts.StatusDisconnected, vol.Status)
	f.notifier.AssertNotCalled(t, "Reconnected", mock.Anything)
}

func TestReconnectWithoutConfigGivesUp(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)

	f.mgr.scheduleReconnect("/Volumes/unknown")
	f.clock.BlockUntil(1)
	f.clock.Advance(f.cfg.ReconnectDelay())

	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick)
	f.backend.AssertNotCalled(t, "Mount", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconnectZeroDelayCancelledBeforeLookup(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := savedConfig(t, f, nil)
	mountPoint := cfg.EffectiveMountPoint()
	require.NoError(t, f.cfg.SetReconnectDelay("0s"))

	f.st.AddVolume(mounts.Volume{
		MountPoint: mountPoint,
		Server:     cfg.Server,
		Share:      cfg.Share,
		Status:     mounts.StatusDisconnected,
	})

	// With no settle delay there is no wait to interrupt; a cancelled
	// attempt must still unwind before touching anything.
	ctx, task := f.mgr.reconnects.begin(context.Background(), mountPoint)
	require.True(t, f.mgr.CancelReconnect(mountPoint))
	require.Error(t, ctx.Err())

	f.mgr.runReconnect(ctx, task, mountPoint)

	f.backend.AssertNotCalled(t, "Mount", mock.Anything, mock.Anything, mock.Anything)
	vol, ok := f.st.Volume(mountPoint)
	require.True(t, ok)
	assert.Equal(t, mounts.StatusDisconnected, vol.Status,
		"a cancelled attempt must not flip the volume to reconnecting")
	assert.Equal(t, 0, f.mgr.reconnects.count())
}

func TestCancelReconnectWhileWaiting(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	savedConfig(t, f, nil)

	f.mgr.scheduleReconnect("/Volumes/media")
	f.clock.BlockUntil(1)

	assert.True(t, f.mgr.CancelReconnect("/Volumes/media"))
	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick)
	assert.False(t, f.mgr.CancelReconnect("/Volumes/media"))
	f.backend.AssertNotCalled(t, "Mount", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelReconnectsCountsPending(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)

	f.mgr.scheduleReconnect("/Volumes/a")
	f.mgr.scheduleReconnect("/Volumes/b")
	f.clock.BlockUntil(2)

	assert.Equal(t, 2, f.mgr.CancelReconnects())
	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick)
	assert.Equal(t, 0, f.mgr.CancelReconnects())
}
