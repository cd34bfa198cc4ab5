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

// Package mounts defines the domain model shared by the mount service, its
// backends and the API layer: volumes, mount configurations, mount results
// and the volume event stream.
package mounts

import (
	"time"
)

// Status is the connection state of a mounted volume.
type Status string

const (
	StatusMounted      Status = "mounted"
	StatusDisconnected Status = "disconnected"
	StatusReconnecting Status = "reconnecting"
	StatusUnmounting   Status = "unmounting"
	StatusError        Status = "error"
)

// Volume is one currently-tracked mount. The mount point is the unique key:
// the service never tracks two volumes with the same mount point.
type Volume struct {
	MountedAt  time.Time `json:"mountedAt"`
	BytesUsed  *uint64   `json:"bytesUsed,omitempty"`
	BytesTotal *uint64   `json:"bytesTotal,omitempty"`
	ID         string    `json:"id"`
	Server     string    `json:"server"`
	Share      string    `json:"share"`
	MountPoint string    `json:"mountPoint"`
	VolumeName string    `json:"volumeName"`
	Status     Status    `json:"status"`
}

// Clone returns a deep copy, so callers can hand out snapshots without
// exposing the service's live table entries.
func (v *Volume) Clone() Volume {
	c := *v
	if v.BytesUsed != nil {
		used := *v.BytesUsed
		c.BytesUsed = &used
	}
	if v.BytesTotal != nil {
		total := *v.BytesTotal
		c.BytesTotal = &total
	}
	return c
}

// Credentials authenticate a mount attempt. They are held only for the
// duration of the call; persistence is the vault's job.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain,omitempty"`
}

// EventKind tags a volume event.
type EventKind string

const (
	EventMounted      EventKind = "mounted"
	EventUnmounted    EventKind = "unmounted"
	EventDisconnected EventKind = "disconnected"
	EventReconnecting EventKind = "reconnecting"
)

// Event describes a change in a mount point's connection state, produced by
// a volume watcher and consumed exactly once by the service's event loop.
// Volume is only set for EventMounted.
type Event struct {
	Volume     *Volume
	Kind       EventKind
	MountPoint string
}

// Result is the immutable outcome of a single mount attempt.
type Result struct {
	Err        error  `json:"-"`
	Server     string `json:"server"`
	Share      string `json:"share"`
	MountPoint string `json:"mountPoint,omitempty"`
	VolumeName string `json:"volumeName,omitempty"`
}

func (r Result) Success() bool {
	return r.Err == nil
}

// AutoMountSummary aggregates one auto-mount batch run. Result order does
// not correspond to configuration order; attempts run concurrently.
type AutoMountSummary struct {
	CompletedAt time.Time `json:"completedAt"`
	Results     []Result  `json:"results"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
}

func (s AutoMountSummary) AllSucceeded() bool {
	return s.Failed == 0
}

// Successful filters the summary down to the results that mounted.
func (s AutoMountSummary) Successful() []Result {
	ok := make([]Result, 0, s.Succeeded)
	for _, r := range s.Results {
		if r.Success() {
			ok = append(ok, r)
		}
	}
	return ok
}
