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
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleConfigs(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	saved, err := te.cfg.AddMountConfig(mounts.NewConfig("nas.local", "media"))
	require.NoError(t, err)

	result, err := HandleConfigs(te.env(t, nil))
	require.NoError(t, err)

	resp, ok := result.(models.ConfigsResponse)
	require.True(t, ok)
	require.Len(t, resp.Configs, 1)
	assert.Equal(t, saved.ID, resp.Configs[0].ID)
}

func TestHandleNewConfig(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	result, err := HandleNewConfig(te.env(t, map[string]any{
		"server":     "nas.local",
		"share":      "media",
		"mountPoint": "/Volumes/media",
		"autoMount":  true,
	}))
	require.NoError(t, err)

	saved, ok := result.(mounts.Config)
	require.True(t, ok)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "nas.local", saved.Server)
	assert.True(t, saved.AutoMount)

	// persisted under the returned id
	stored, err := te.cfg.MountConfig(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "/Volumes/media", stored.MountPoint)
}

func TestHandleNewConfig_StoresCredentials(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.vault.On("Store", mock.Anything, "nas.local", "media",
		mounts.Credentials{Username: "alex", Password: "hunter2"}).Return(nil)

	_, err := HandleNewConfig(te.env(t, map[string]any{
		"server":          "nas.local",
		"share":           "media",
		"saveCredentials": true,
		"username":        "alex",
		"password":        "hunter2",
	}))
	require.NoError(t, err)
	te.vault.AssertExpectations(t)
}

func TestHandleNewConfig_InvalidShare(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleNewConfig(te.env(t, map[string]any{
		"server": "nas.local",
		"share":  "media/tv",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path separators")
}

func TestHandleNewConfig_MissingServer(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleNewConfig(te.env(t, map[string]any{"share": "media"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server is required")
}

func TestHandleUpdateConfig(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	saved, err := te.cfg.AddMountConfig(mounts.NewConfig("nas.local", "media"))
	require.NoError(t, err)

	result, err := HandleUpdateConfig(te.env(t, map[string]any{
		"id":         saved.ID,
		"mountPoint": "/Volumes/media2",
		"autoMount":  true,
	}))
	require.NoError(t, err)

	updated, ok := result.(mounts.Config)
	require.True(t, ok)
	assert.Equal(t, "/Volumes/media2", updated.MountPoint)
	assert.True(t, updated.AutoMount)
	// untouched fields stay put
	assert.Equal(t, "nas.local", updated.Server)

	stored, err := te.cfg.MountConfig(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "/Volumes/media2", stored.MountPoint)
}

func TestHandleUpdateConfig_UnknownID(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	_, err := HandleUpdateConfig(te.env(t, map[string]any{
		"id": "b7f5cb7e-3e0a-4d2c-9ee4-9f9f4f6f13b9",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config")
}

func TestHandleDeleteConfig(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	cfg := mounts.NewConfig("nas.local", "media")
	cfg.SaveCredentials = true
	saved, err := te.cfg.AddMountConfig(cfg)
	require.NoError(t, err)

	te.vault.On("Delete", mock.Anything, "nas.local", "media").Return(nil)

	result, err := HandleDeleteConfig(te.env(t, map[string]any{"id": saved.ID}))
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)

	_, err = te.cfg.MountConfig(saved.ID)
	require.Error(t, err, "config should be gone")
	te.vault.AssertExpectations(t)
}

func TestHandleDeleteConfig_KeepsSharedCredentials(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	first := mounts.NewConfig("nas.local", "media")
	first.SaveCredentials = true
	saved, err := te.cfg.AddMountConfig(first)
	require.NoError(t, err)

	// a second config for the same share keeps the credentials alive
	second := mounts.NewConfig("nas.local", "media")
	second.MountPoint = "/Volumes/media-alt"
	_, err = te.cfg.AddMountConfig(second)
	require.NoError(t, err)

	_, err = HandleDeleteConfig(te.env(t, map[string]any{"id": saved.ID}))
	require.NoError(t, err)
	te.vault.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDeleteConfig_NoSavedCredentials(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	saved, err := te.cfg.AddMountConfig(mounts.NewConfig("nas.local", "media"))
	require.NoError(t, err)

	_, err = HandleDeleteConfig(te.env(t, map[string]any{"id": saved.ID}))
	require.NoError(t, err)
	te.vault.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
