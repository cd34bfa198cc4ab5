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

package methods

import (
	"errors"
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleMounts_Empty(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	result, err := HandleMounts(te.env(t, nil))
	require.NoError(t, err)

	resp, ok := result.(models.MountsResponse)
	require.True(t, ok)
	assert.Empty(t, resp.Volumes)
	assert.Nil(t, resp.LastError)
}

func TestHandleMounts_WithVolumeAndLastError(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.st.AddVolume(mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	})
	te.st.SetLastMountError(errors.New("connection refused"), "nas.local", "backup")

	result, err := HandleMounts(te.env(t, nil))
	require.NoError(t, err)

	resp, ok := result.(models.MountsResponse)
	require.True(t, ok)
	require.Len(t, resp.Volumes, 1)
	assert.Equal(t, "/Volumes/media", resp.Volumes[0].MountPoint)
	require.NotNil(t, resp.LastError)
	assert.Equal(t, "nas.local", resp.LastError.Server)
}

func TestHandleMount_AdHoc(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("Mount", mock.Anything,
		mock.MatchedBy(func(cfg mounts.Config) bool {
			return cfg.Server == "nas.local" && cfg.Share == "media" &&
				cfg.MountPoint == "/Volumes/media"
		}),
		(*mounts.Credentials)(nil),
	).Return(mounts.Volume{
		MountPoint: "/Volumes/media",
		Server:     "nas.local",
		Share:      "media",
		Status:     mounts.StatusMounted,
	}, nil)

	result, err := HandleMount(te.env(t, map[string]any{
		"server":     "nas.local",
		"share":      "media",
		"mountPoint": "/Volumes/media",
	}))
	require.NoError(t, err)

	vol, ok := result.(mounts.Volume)
	require.True(t, ok)
	assert.Equal(t, "/Volumes/media", vol.MountPoint)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleMount_ByConfigID(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	saved, err := te.cfg.AddMountConfig(mounts.NewConfig("nas.local", "media"))
	require.NoError(t, err)

	te.mountSvc.On("Mount", mock.Anything,
		mock.MatchedBy(func(cfg mounts.Config) bool { return cfg.ID == saved.ID }),
		(*mounts.Credentials)(nil),
	).Return(mounts.Volume{Status: mounts.StatusMounted}, nil)

	_, err = HandleMount(te.env(t, map[string]any{"configId": saved.ID}))
	require.NoError(t, err)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleMount_UnknownConfigID(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleMount(te.env(t, map[string]any{
		"configId": "b7f5cb7e-3e0a-4d2c-9ee4-9f9f4f6f13b9",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config")
}

func TestHandleMount_RemembersCredentials(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	creds := mounts.Credentials{Username: "alex", Password: "hunter2"}
	te.vault.On("Store", mock.Anything, "nas.local", "media", creds).Return(nil)
	te.mountSvc.On("Mount", mock.Anything, mock.Anything,
		mock.MatchedBy(func(c *mounts.Credentials) bool {
			return c != nil && c.Username == "alex"
		}),
	).Return(mounts.Volume{Status: mounts.StatusMounted}, nil)

	_, err := HandleMount(te.env(t, map[string]any{
		"server":   "nas.local",
		"share":    "media",
		"username": "alex",
		"password": "hunter2",
		"remember": true,
	}))
	require.NoError(t, err)
	te.vault.AssertExpectations(t)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleMount_VaultFailureStillMounts(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.vault.On("Store", mock.Anything, "nas.local", "media", mock.Anything).
		Return(assert.AnError)
	te.mountSvc.On("Mount", mock.Anything, mock.Anything, mock.Anything).
		Return(mounts.Volume{Status: mounts.StatusMounted}, nil)

	_, err := HandleMount(te.env(t, map[string]any{
		"server":   "nas.local",
		"share":    "media",
		"username": "alex",
		"remember": true,
	}))
	require.NoError(t, err)
}

func TestHandleMount_MissingParams(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleMount(te.env(t, nil))
	assert.ErrorIs(t, err, ErrMissingParams)
}

func TestHandleMount_NeitherConfigNorShare(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleMount(te.env(t, map[string]any{"remember": true}))
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestHandleMount_RelativeMountPointRejected(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleMount(te.env(t, map[string]any{
		"server":     "nas.local",
		"share":      "media",
		"mountPoint": "Volumes/media",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute path")
}

func TestHandleMount_ServiceError(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("Mount", mock.Anything, mock.Anything, mock.Anything).
		Return(mounts.Volume{}, assert.AnError)

	_, err := HandleMount(te.env(t, map[string]any{
		"server": "nas.local",
		"share":  "media",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mount failed")
}

func TestHandleUnmount(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("Unmount", mock.Anything, "/Volumes/media").Return(nil)

	result, err := HandleUnmount(te.env(t, map[string]any{
		"mountPoint": "/Volumes/media",
	}))
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleUnmount_ServiceError(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("Unmount", mock.Anything, "/Volumes/media").Return(assert.AnError)

	_, err := HandleUnmount(te.env(t, map[string]any{
		"mountPoint": "/Volumes/media",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmount failed")
}

func TestHandleUnmount_MissingParams(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleUnmount(te.env(t, nil))
	assert.ErrorIs(t, err, ErrMissingParams)
}

func TestHandleAutoMount(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	summary := &mounts.AutoMountSummary{Total: 2, Succeeded: 2}
	te.mountSvc.On("AutoMount", mock.Anything).Return(summary)

	result, err := HandleAutoMount(te.env(t, nil))
	require.NoError(t, err)
	assert.Equal(t, summary, result)
}

func TestHandleAutoMountCancel(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("CancelAutoMount").Return()

	result, err := HandleAutoMountCancel(te.env(t, nil))
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleReconnectCancel_All(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("CancelReconnects").Return(2)

	result, err := HandleReconnectCancel(te.env(t, nil))
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleReconnectCancel_One(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("CancelReconnect", "/Volumes/media").Return(true)

	result, err := HandleReconnectCancel(te.env(t, map[string]any{
		"mountPoint": "/Volumes/media",
	}))
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)
	te.mountSvc.AssertExpectations(t)
}

func TestHandleReconnectCancel_NonePending(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mountSvc.On("CancelReconnect", "/Volumes/media").Return(false)

	_, err := HandleReconnectCancel(te.env(t, map[string]any{
		"mountPoint": "/Volumes/media",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending reconnect")
}
