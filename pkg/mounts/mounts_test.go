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

package mounts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeClone(t *testing.T) {
	t.Parallel()

	used := uint64(100)
	total := uint64(500)
	v := Volume{
		ID:         "abc",
		Server:     "nas.local",
		Share:      "media",
		MountPoint: "/Volumes/media",
		VolumeName: "media",
		Status:     StatusMounted,
		MountedAt:  time.Now(),
		BytesUsed:  &used,
		BytesTotal: &total,
	}

	c := v.Clone()
	require.Equal(t, v.ID, c.ID)
	require.Equal(t, v.Status, c.Status)

	// Mutating the original must not leak into the clone.
	*v.BytesUsed = 999
	v.Status = StatusDisconnected
	assert.Equal(t, uint64(100), *c.BytesUsed)
	assert.Equal(t, StatusMounted, c.Status)
}

func TestVolumeCloneNilUsage(t *testing.T) {
	t.Parallel()

	v := Volume{ID: "abc", Status: StatusMounted}
	c := v.Clone()
	assert.Nil(t, c.BytesUsed)
	assert.Nil(t, c.BytesTotal)
}

func TestResultSuccess(t *testing.T) {
	t.Parallel()

	ok := Result{Server: "nas.local", Share: "media", MountPoint: "/Volumes/media"}
	assert.True(t, ok.Success())

	failed := Result{Server: "nas.local", Share: "media", Err: errors.New("boom")}
	assert.False(t, failed.Success())
}

func TestAutoMountSummary(t *testing.T) {
	t.Parallel()

	results := []Result{
		{Server: "a", Share: "s1", MountPoint: "/Volumes/s1"},
		{Server: "b", Share: "s2", Err: &Error{Kind: ErrNetworkUnreachable, Op: "mount"}},
		{Server: "c", Share: "s3", MountPoint: "/Volumes/s3"},
	}
	summary := AutoMountSummary{
		Results:     results,
		Total:       3,
		Succeeded:   2,
		Failed:      1,
		CompletedAt: time.Now(),
	}

	assert.False(t, summary.AllSucceeded())
	successful := summary.Successful()
	require.Len(t, successful, 2)
	assert.Equal(t, "s1", successful[0].Share)
	assert.Equal(t, "s3", successful[1].Share)

	clean := AutoMountSummary{Total: 1, Succeeded: 1}
	assert.True(t, clean.AllSucceeded())

	empty := AutoMountSummary{}
	assert.True(t, empty.AllSucceeded())
	assert.Empty(t, empty.Successful())
}
