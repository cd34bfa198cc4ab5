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

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/ShareMountProject/sharemount-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// receivedNotification reports whether the state queue holds a pending
// notification with the given method, draining up to it.
func receivedNotification(f *managerFixture, method string) bool {
	for {
		select {
		case n := <-f.notifs:
			if n.Method == method {
				return true
			}
		default:
			return false
		}
	}
}

func TestAutoMountMountsEnabledConfigs(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	enabled := savedConfig(t, f, func(c *mounts.Config) {
		c.AutoMount = true
	})
	// a second config without the flag must be left alone
	savedConfig(t, f, func(c *mounts.Config) {
		c.Share = "backup"
		c.MountPoint = "/Volumes/backup"
	})

	vol := mocks.VolumeFor(enabled)
	f.backend.On("Mount", mock.Anything, mock.MatchedBy(func(c mounts.Config) bool {
		return c.ID == enabled.ID
	}), (*mounts.Credentials)(nil)).Return(&vol, nil).Once()
	f.watcher.AllowAll()
	f.syncer.AllowAll()
	f.notifier.On("AutoMountComplete", 1, 0).Once()

	summary := f.mgr.AutoMount(context.Background())

	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.True(t, summary.AllSucceeded())

	assert.True(t, receivedNotification(f, models.NotificationAutoMountCompleted))
	f.backend.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAutoMountCountsFailures(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	good := savedConfig(t, f, func(c *mounts.Config) { c.AutoMount = true })
	bad := savedConfig(t, f, func(c *mounts.Config) {
		c.Share = "backup"
		c.MountPoint = "/Volumes/backup"
		c.AutoMount = true
	})

	goodVol := mocks.VolumeFor(good)
	f.backend.On("Mount", mock.Anything, mock.MatchedBy(func(c mounts.Config) bool {
		return c.ID == good.ID
	}), mock.Anything).Return(&goodVol, nil)
	f.backend.On("Mount", mock.Anything, mock.MatchedBy(func(c mounts.Config) bool {
		return c.ID == bad.ID
	}), mock.Anything).Return(nil, &mounts.Error{
		Op:     "mount",
		Server: bad.Server,
		Share:  bad.Share,
		Kind:   mounts.ErrShareNotFound,
	})
	f.watcher.AllowAll()
	f.syncer.AllowAll()
	f.notifier.On("AutoMountComplete", 1, 1).Once()

	summary := f.mgr.AutoMount(context.Background())

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.AllSucceeded())
	require.Len(t, summary.Successful(), 1)
	assert.Equal(t, good.Share, summary.Successful()[0].Share)
	f.notifier.AssertExpectations(t)
}

func TestAutoMountWithNothingEnabledIsQuiet(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	savedConfig(t, f, nil) // AutoMount off

	summary := f.mgr.AutoMount(context.Background())

	assert.Equal(t, 0, summary.Total)
	assert.False(t, receivedNotification(f, models.NotificationAutoMountCompleted))
	f.notifier.AssertNotCalled(t, "AutoMountComplete", mock.Anything, mock.Anything)
	f.backend.AssertNotCalled(t, "Mount", mock.Anything, mock.Anything, mock.Anything)
}

func TestAutoMountEnablesSyncForConfiguredShares(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	enabled := savedConfig(t, f, func(c *mounts.Config) {
		c.AutoMount = true
		c.SyncEnabled = true
		c.SyncPath = "/Users/alex/Mirrors/media"
	})

	vol := mocks.VolumeFor(enabled)
	f.backend.On("Mount", mock.Anything, mock.Anything, mock.Anything).Return(&vol, nil)
	f.watcher.AllowAll()
	f.notifier.AllowAll()
	f.syncer.On("Enable", vol.MountPoint, "/Users/alex/Mirrors/media").Return(nil).Once()

	summary := f.mgr.AutoMount(context.Background())

	assert.Equal(t, 1, summary.Succeeded)
	f.syncer.AssertExpectations(t)
}

func TestAutoMountSyncEnableFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	enabled := savedConfig(t, f, func(c *mounts.Config) {
		c.AutoMount = true
		c.SyncEnabled = true
		c.SyncPath = "/Users/alex/Mirrors/media"
	})

	vol := mocks.VolumeFor(enabled)
	f.backend.On("Mount", mock.Anything, mock.Anything, mock.Anything).Return(&vol, nil)
	f.watcher.AllowAll()
	f.notifier.AllowAll()
	f.syncer.On("Enable", mock.Anything, mock.Anything).Return(assert.AnError)

	summary := f.mgr.AutoMount(context.Background())

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
}

func TestAutoMountCancelledRunReportsPartialResults(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	savedConfig(t, f, func(c *mounts.Config) { c.AutoMount = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := f.mgr.AutoMount(ctx)

	require.NotNil(t, summary, "a cancelled run still returns a summary")
	assert.Equal(t, 0, summary.Total)
	f.backend.AssertNotCalled(t, "Mount", mock.Anything, mock.Anything, mock.Anything)
}
