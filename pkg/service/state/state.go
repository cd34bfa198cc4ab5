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

package state

import (
	"context"
	"sort"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/api/notifications"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

// State holds the runtime state of the mount service: the table of mounted
// volumes keyed by mount point, and the most recent mount failure.
//
// LOCKING RULES: The mu mutex protects all mutable fields. To prevent deadlocks:
//   - Never send to channels while holding the lock (notifications)
//   - Pattern: lock → modify state → copy needed data → unlock → send notifications
//
// See AddVolume, RemoveVolume, SetVolumeStatus for examples.
type State struct {
	ctx           context.Context
	ctxCancelFunc context.CancelFunc
	volumes       map[string]*mounts.Volume
	lastError     *models.MountErrorInfo
	Notifications chan<- models.Notification
	mu            syncutil.RWMutex
}

// NewState creates the service state and the notification channel consumed
// by the broker.
func NewState() (state *State, notificationCh <-chan models.Notification) {
	// Buffer size of 500 provides headroom for bursts (an auto-mount batch
	// can change several volumes at once) without dropping notifications.
	ns := make(chan models.Notification, 500)
	ctx, ctxCancelFunc := context.WithCancel(context.Background())
	return &State{
		volumes:       make(map[string]*mounts.Volume),
		Notifications: ns,
		ctx:           ctx,
		ctxCancelFunc: ctxCancelFunc,
	}, ns
}

// AddVolume inserts or replaces the table entry for the volume's mount
// point. A volume that is new to the table, or that was not in the mounted
// status before, is announced; refreshing an already-mounted entry is quiet.
func (s *State) AddVolume(volume mounts.Volume) {
	s.mu.Lock()

	announce := true
	if existing, ok := s.volumes[volume.MountPoint]; ok && existing.Status == mounts.StatusMounted {
		announce = false
	}

	v := volume.Clone()
	s.volumes[v.MountPoint] = &v

	// Prepare notification payload inside lock, send outside
	var payload *mounts.Volume
	if announce {
		p := v.Clone()
		payload = &p
	}

	s.mu.Unlock()

	if payload != nil {
		notifications.VolumesMounted(s.Notifications, *payload)
	}
}

// RemoveVolume deletes the table entry for a mount point and announces the
// unmount. Removing an unknown mount point is a quiet no-op.
func (s *State) RemoveVolume(mountPoint string) (mounts.Volume, bool) {
	s.mu.Lock()

	existing, ok := s.volumes[mountPoint]
	var removed mounts.Volume
	if ok {
		removed = existing.Clone()
		delete(s.volumes, mountPoint)
	}

	s.mu.Unlock()

	if !ok {
		return mounts.Volume{}, false
	}

	notifications.VolumesUnmounted(s.Notifications, models.VolumeEventParams{
		MountPoint: removed.MountPoint,
		Server:     removed.Server,
		Share:      removed.Share,
	})
	return removed, true
}

// SetVolumeStatus updates the connection status of a tracked volume and
// announces disconnected and reconnecting transitions. Returns false when
// the mount point is not tracked or the status is unchanged.
func (s *State) SetVolumeStatus(mountPoint string, status mounts.Status) bool {
	s.mu.Lock()

	v, ok := s.volumes[mountPoint]
	if !ok || v.Status == status {
		s.mu.Unlock()
		return false
	}
	v.Status = status

	// Prepare payload inside lock
	payload := models.VolumeEventParams{
		MountPoint: v.MountPoint,
		Server:     v.Server,
		Share:      v.Share,
	}

	s.mu.Unlock()

	// Send notification outside lock to prevent deadlock
	switch status {
	case mounts.StatusDisconnected:
		notifications.VolumesDisconnected(s.Notifications, payload)
	case mounts.StatusReconnecting:
		notifications.VolumesReconnecting(s.Notifications, payload)
	case mounts.StatusMounted, mounts.StatusUnmounting, mounts.StatusError:
		// quiet transitions; AddVolume announces remounts
	}
	return true
}

// SetVolumeStatusIf moves a volume from an expected status to a new one.
// It returns false when the mount point is untracked or not in the expected
// status. Check and update happen under one lock, so a racing transition
// cannot be overwritten.
func (s *State) SetVolumeStatusIf(mountPoint string, from, to mounts.Status) bool {
	s.mu.Lock()

	v, ok := s.volumes[mountPoint]
	if !ok || v.Status != from {
		s.mu.Unlock()
		return false
	}
	v.Status = to

	payload := models.VolumeEventParams{
		MountPoint: v.MountPoint,
		Server:     v.Server,
		Share:      v.Share,
	}

	s.mu.Unlock()

	switch to {
	case mounts.StatusDisconnected:
		notifications.VolumesDisconnected(s.Notifications, payload)
	case mounts.StatusReconnecting:
		notifications.VolumesReconnecting(s.Notifications, payload)
	case mounts.StatusMounted, mounts.StatusUnmounting, mounts.StatusError:
	}
	return true
}

// MountedVolumes returns a snapshot of the volume table sorted by mount
// point. Entries are deep copies; mutating them does not touch the table.
func (s *State) MountedVolumes() []mounts.Volume {
	s.mu.RLock()
	vols := make([]mounts.Volume, 0, len(s.volumes))
	for _, v := range s.volumes {
		vols = append(vols, v.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(vols, func(i, j int) bool {
		return vols[i].MountPoint < vols[j].MountPoint
	})
	return vols
}

// Volume returns a copy of the table entry for a mount point.
func (s *State) Volume(mountPoint string) (mounts.Volume, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.volumes[mountPoint]
	if !ok {
		return mounts.Volume{}, false
	}
	return v.Clone(), true
}

// TracksMountPoint reports whether the table has an entry for the path.
func (s *State) TracksMountPoint(mountPoint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.volumes[mountPoint]
	return ok
}

// SetLastMountError records a failed mount attempt. The server and share
// identify which configuration failed.
func (s *State) SetLastMountError(err error, server, share string) {
	if err == nil {
		return
	}
	info := &models.MountErrorInfo{
		Time:    time.Now(),
		Kind:    string(mounts.KindOf(err)),
		Message: err.Error(),
		Server:  server,
		Share:   share,
	}
	s.mu.Lock()
	s.lastError = info
	s.mu.Unlock()
}

// LastMountError returns the most recent mount failure, or nil if every
// attempt so far succeeded.
func (s *State) LastMountError() *models.MountErrorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastError == nil {
		return nil
	}
	cp := *s.lastError
	return &cp
}

// StopService cancels the service context, which winds down every loop
// that was started from it.
func (s *State) StopService() {
	s.ctxCancelFunc()
}

func (s *State) GetContext() context.Context {
	return s.ctx
}
