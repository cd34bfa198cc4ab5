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
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/ShareMountProject/sharemount-core/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Polling bounds for require.Eventually across the service tests.
const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// managerFixture wires a MountManager to mocks. The watcher's event stream
// is real, so tests can feed events exactly as the OS poller would.
type managerFixture struct {
	cfg      *config.Instance
	st       *state.State
	notifs   <-chan models.Notification
	backend  *mocks.MockBackend
	watcher  *mocks.MockWatcher
	vault    *mocks.MockVault
	notifier *mocks.MockNotifier
	syncer   *mocks.MockSyncer
	clock    *clockwork.FakeClock
	mgr      *MountManager
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	st, notifs := state.NewState()
	t.Cleanup(st.StopService)

	f := &managerFixture{
		cfg:      cfg,
		st:       st,
		notifs:   notifs,
		backend:  mocks.NewMockBackend(),
		watcher:  mocks.NewMockWatcher(),
		vault:    mocks.NewMockVault(),
		notifier: mocks.NewMockNotifier(),
		syncer:   mocks.NewMockSyncer(),
		clock:    clockwork.NewFakeClock(),
	}
	f.mgr = NewMountManager(cfg, st, f.backend, f.watcher, f.vault,
		f.notifier, f.syncer, f.clock)
	return f
}

// start runs the manager with an empty system mount table and waits for
// the event loop to wind down at cleanup.
func (f *managerFixture) start(t *testing.T) {
	t.Helper()

	f.backend.On("MountedVolumes", mock.Anything).Return([]mounts.Volume{}, nil).Once()
	require.NoError(t, f.mgr.Start())
	t.Cleanup(func() {
		f.st.StopService()
		if done := f.mgr.EventsDone(); done != nil {
			<-done
		}
	})
}

// drainNotifications empties the state's notification queue so later
// assertions see only what the test produced.
func (f *managerFixture) drainNotifications() {
	for {
		select {
		case <-f.notifs:
		default:
			return
		}
	}
}

func savedConfig(t *testing.T, f *managerFixture, mutate func(*mounts.Config)) mounts.Config {
	t.Helper()
	cfg := mounts.NewConfig("nas.local", "media")
	if mutate != nil {
		mutate(&cfg)
	}
	saved, err := f.cfg.AddMountConfig(cfg)
	require.NoError(t, err)
	return saved
}

func TestManagerStartSeedsExistingMounts(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	existing := mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	}
	f.backend.On("MountedVolumes", mock.Anything).Return([]mounts.Volume{existing}, nil).Once()
	f.watcher.On("AddMountPoint", "/Volumes/media").Once()
	f.watcher.On("StartMonitoring").Return(nil).Once()
	f.watcher.On("StopMonitoring").Once()

	require.NoError(t, f.mgr.Start())
	t.Cleanup(func() {
		f.st.StopService()
		<-f.mgr.EventsDone()
	})

	vols := f.mgr.MountedVolumes()
	require.Len(t, vols, 1)
	assert.Equal(t, "/Volumes/media", vols[0].MountPoint)

	f.mgr.Stop()
	f.watcher.AssertExpectations(t)
}

func TestManagerStartIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.backend.On("MountedVolumes", mock.Anything).Return([]mounts.Volume{}, nil).Once()
	f.watcher.On("StartMonitoring").Return(nil).Once()

	require.NoError(t, f.mgr.Start())
	t.Cleanup(func() {
		f.st.StopService()
		<-f.mgr.EventsDone()
	})

	// second start must not touch the watcher again
	require.NoError(t, f.mgr.Start())
	f.watcher.AssertExpectations(t)
}

func TestStopHaltsEventLoop(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.watcher.On("StartMonitoring").Return(nil).Once()
	f.watcher.On("StopMonitoring").Once()
	f.start(t)

	done := f.mgr.EventsDone()
	f.mgr.Stop()

	select {
	case <-done:
	default:
		t.Fatal("event loop should have exited before Stop returned")
	}
	f.watcher.AssertExpectations(t)
}

func TestRestartReplacesEventConsumer(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.backend.On("MountedVolumes", mock.Anything).Return([]mounts.Volume{}, nil).Twice()
	f.watcher.On("StartMonitoring").Return(nil).Twice()
	f.watcher.On("StopMonitoring").Once()

	require.NoError(t, f.mgr.Start())
	firstDone := f.mgr.EventsDone()
	f.mgr.Stop()

	select {
	case <-firstDone:
	default:
		t.Fatal("first event loop must be gone before a restart")
	}

	require.NoError(t, f.mgr.Start())
	t.Cleanup(func() {
		f.st.StopService()
		<-f.mgr.EventsDone()
	})

	// Only the restarted loop consumes the stream now, so the event lands.
	vol := mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	}
	f.watcher.On("AddMountPoint", "/Volumes/media").Once()
	f.watcher.EmitEvent(mounts.Event{
		Kind:       mounts.EventMounted,
		MountPoint: vol.MountPoint,
		Volume:     &vol,
	})

	require.Eventually(t, func() bool {
		_, ok := f.st.Volume("/Volumes/media")
		return ok
	}, waitFor, tick)
	f.watcher.AssertExpectations(t)
}

func TestMountRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)

	_, err := f.mgr.Mount(context.Background(), mounts.Config{Share: "media"}, nil)
	require.Error(t, err)
	assert.True(t, mounts.IsKind(err, mounts.ErrInvalidConfiguration))

	lastErr := f.st.LastMountError()
	require.NotNil(t, lastErr)
	assert.Equal(t, string(mounts.ErrInvalidConfiguration), lastErr.Kind)
}

func TestMountTracksVolumeAndNotifies(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := mounts.NewConfig("nas.local", "media")
	vol := mocks.VolumeFor(cfg)

	f.backend.On("Mount", mock.Anything, cfg, (*mounts.Credentials)(nil)).Return(&vol, nil)
	f.watcher.On("AddMountPoint", vol.MountPoint).Once()
	f.notifier.On("MountSuccess", vol.VolumeName, vol.MountPoint).Once()

	got, err := f.mgr.Mount(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, vol.MountPoint, got.MountPoint)

	tracked, ok := f.st.Volume(vol.MountPoint)
	require.True(t, ok)
	assert.Equal(t, mounts.StatusMounted, tracked.Status)

	f.watcher.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestMountUsesSavedCredentials(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := mounts.NewConfig("nas.local", "media")
	cfg.SaveCredentials = true
	vol := mocks.VolumeFor(cfg)
	creds := mounts.Credentials{Username: "alex", Password: "hunter2"}

	f.vault.On("Retrieve", mock.Anything, "nas.local", "media").Return(creds, nil)
	f.backend.On("Mount", mock.Anything, cfg, &creds).Return(&vol, nil)
	f.watcher.AllowAll()
	f.notifier.AllowAll()

	_, err := f.mgr.Mount(context.Background(), cfg, nil)
	require.NoError(t, err)
	f.backend.AssertExpectations(t)
}

func TestMountToleratesVaultMiss(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := mounts.NewConfig("nas.local", "media")
	cfg.SaveCredentials = true
	vol := mocks.VolumeFor(cfg)

	f.vault.On("Retrieve", mock.Anything, "nas.local", "media").
		Return(mounts.Credentials{}, mocks.NotFoundError("nas.local", "media"))
	f.backend.On("Mount", mock.Anything, cfg, (*mounts.Credentials)(nil)).Return(&vol, nil)
	f.watcher.AllowAll()
	f.notifier.AllowAll()

	_, err := f.mgr.Mount(context.Background(), cfg, nil)
	require.NoError(t, err)
	f.backend.AssertExpectations(t)
}

func TestMountBackendFailure(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := mounts.NewConfig("nas.local", "media")
	mountErr := &mounts.Error{
		Op:     "mount",
		Server: cfg.Server,
		Share:  cfg.Share,
		Kind:   mounts.ErrAuthenticationFailed,
	}

	f.backend.On("Mount", mock.Anything, cfg, (*mounts.Credentials)(nil)).
		Return(nil, mountErr)
	f.notifier.On("MountFailure", "nas.local", "media", mock.Anything).Once()

	_, err := f.mgr.Mount(context.Background(), cfg, nil)
	require.Error(t, err)

	lastErr := f.st.LastMountError()
	require.NotNil(t, lastErr)
	assert.Equal(t, string(mounts.ErrAuthenticationFailed), lastErr.Kind)
	assert.Empty(t, f.mgr.MountedVolumes())
	f.notifier.AssertExpectations(t)
}

func TestMountCancelledContextIsQuiet(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	cfg := mounts.NewConfig("nas.local", "media")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.mgr.Mount(ctx, cfg, nil)
	require.Error(t, err)
	assert.True(t, mounts.IsCancelled(err))
	assert.Nil(t, f.st.LastMountError(), "cancellation is not a failure")
	f.notifier.AssertNotCalled(t, "MountFailure", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnmountUntracked(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)

	err := f.mgr.Unmount(context.Background(), "/Volumes/nothing")
	require.Error(t, err)
	assert.True(t, mounts.IsKind(err, mounts.ErrNotMounted))
}

func TestUnmountStopsSyncAndMonitoring(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	})

	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}
	f.syncer.On("Enabled", "/Volumes/media").Return(true)
	f.syncer.On("Disable", "/Volumes/media").Run(record("sync disable")).Once()
	f.watcher.On("RemoveMountPoint", "/Volumes/media").Run(record("remove mount point")).Once()
	f.backend.On("Unmount", mock.Anything, "/Volumes/media").Run(record("backend unmount")).Return(nil)

	require.NoError(t, f.mgr.Unmount(context.Background(), "/Volumes/media"))

	_, ok := f.st.Volume("/Volumes/media")
	assert.False(t, ok, "volume should be dropped from the table")
	// sync stops and monitoring drops the mount point strictly before the
	// backend call, so the disconnect an unmount causes is never seen.
	assert.Equal(t,
		[]string{"sync disable", "remove mount point", "backend unmount"},
		calls)
	f.syncer.AssertExpectations(t)
	f.watcher.AssertExpectations(t)
}

func TestUnmountFailureResumesMonitoring(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	})

	unmountErr := &mounts.Error{
		Op:   "unmount",
		Path: "/Volumes/media",
		Kind: mounts.ErrUnmountFailed,
	}
	f.syncer.On("Enabled", "/Volumes/media").Return(false)
	f.watcher.On("RemoveMountPoint", "/Volumes/media").Once()
	f.watcher.On("AddMountPoint", "/Volumes/media").Once()
	f.backend.On("Unmount", mock.Anything, "/Volumes/media").Return(unmountErr)
	f.notifier.On("UnmountFailure", "/Volumes/media", mock.Anything).Once()

	err := f.mgr.Unmount(context.Background(), "/Volumes/media")
	require.Error(t, err)

	vol, ok := f.st.Volume("/Volumes/media")
	require.True(t, ok, "the volume is still mounted")
	assert.Equal(t, mounts.StatusMounted, vol.Status)
	f.watcher.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestStopCancelsPendingWork(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	f.watcher.On("StartMonitoring").Return(nil).Once()
	f.watcher.On("StopMonitoring").Once()
	f.start(t)

	f.mgr.scheduleReconnect("/Volumes/media")
	require.Equal(t, 1, f.mgr.reconnects.count())

	f.mgr.Stop()
	require.Eventually(t, func() bool {
		return f.mgr.reconnects.count() == 0
	}, waitFor, tick, "stop should abort pending reconnects")
	f.watcher.AssertExpectations(t)
}
