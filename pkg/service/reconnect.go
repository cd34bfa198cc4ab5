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

	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/rs/zerolog/log"
)

type reconnectTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// reconnectRegistry tracks the one in-flight reconnect attempt allowed per
// mount point. Scheduling a new attempt for a mount point that already has
// one cancels and replaces it; attempts are never queued.
type reconnectRegistry struct {
	tasks map[string]*reconnectTask
	mu    syncutil.Mutex
}

func newReconnectRegistry() *reconnectRegistry {
	return &reconnectRegistry{tasks: make(map[string]*reconnectTask)}
}

// begin registers a fresh task for mountPoint, cancelling any task it
// replaces. The returned context ends when the task is cancelled, replaced
// or parent ends.
func (r *reconnectRegistry) begin(
	parent context.Context, mountPoint string,
) (context.Context, *reconnectTask) {
	ctx, cancel := context.WithCancel(parent)
	task := &reconnectTask{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	prior := r.tasks[mountPoint]
	r.tasks[mountPoint] = task
	r.mu.Unlock()

	if prior != nil {
		log.Debug().Str("mount_point", mountPoint).Msg("replacing pending reconnect")
		prior.cancel()
	}
	return ctx, task
}

// finish drops the task's registration so a later disconnect can schedule a
// fresh attempt. A task that was already replaced leaves the newer
// registration in place.
func (r *reconnectRegistry) finish(mountPoint string, task *reconnectTask) {
	r.mu.Lock()
	if r.tasks[mountPoint] == task {
		delete(r.tasks, mountPoint)
	}
	r.mu.Unlock()

	task.cancel()
	close(task.done)
}

// cancel aborts the pending task for mountPoint, reporting whether there
// was one. The task unregisters itself once it has unwound.
func (r *reconnectRegistry) cancel(mountPoint string) bool {
	r.mu.Lock()
	task := r.tasks[mountPoint]
	r.mu.Unlock()

	if task == nil {
		return false
	}
	task.cancel()
	return true
}

// cancelAll aborts every pending task and returns how many there were.
func (r *reconnectRegistry) cancelAll() int {
	r.mu.Lock()
	tasks := make([]*reconnectTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	r.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
	}
	return len(tasks)
}

func (r *reconnectRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// scheduleReconnect starts a background attempt to remount mountPoint,
// replacing any attempt already pending for it. The attempt is tied to the
// service context so shutdown aborts it.
func (m *MountManager) scheduleReconnect(mountPoint string) {
	ctx, task := m.reconnects.begin(m.st.GetContext(), mountPoint)
	log.Info().Str("mount_point", mountPoint).Msg("scheduling reconnect")
	go m.runReconnect(ctx, task, mountPoint)
}

// runReconnect is one reconnect attempt. It is best effort: failures are
// logged and reflected in the volume's status, never propagated, and a
// cancelled attempt is an expected outcome. Cancellation is rechecked after
// every step that can take time so a superseded attempt stops before it
// reaches the backend.
func (m *MountManager) runReconnect(ctx context.Context, task *reconnectTask, mountPoint string) {
	defer m.reconnects.finish(mountPoint, task)

	if delay := m.cfg.ReconnectDelay(); delay > 0 {
		select {
		case <-m.clock.After(delay):
		case <-ctx.Done():
			log.Debug().Str("mount_point", mountPoint).Msg("reconnect cancelled while waiting")
			return
		}
	}

	// With no settle delay configured the select above never ran, so check
	// before the config lookup as well.
	if ctx.Err() != nil {
		log.Debug().Str("mount_point", mountPoint).Msg("reconnect cancelled")
		return
	}

	cfg, ok := m.cfg.MountConfigForMountPoint(mountPoint)
	if !ok {
		log.Debug().Str("mount_point", mountPoint).
			Msg("no saved configuration for mount point, not reconnecting")
		return
	}

	if ctx.Err() != nil {
		return
	}

	m.st.SetVolumeStatus(mountPoint, mounts.StatusReconnecting)
	log.Info().Str("url", cfg.SMBURL()).Str("mount_point", mountPoint).Msg("reconnecting")

	creds := m.savedCredentials(ctx, cfg)

	// The credential lookup may have taken a while; do not start a mount
	// for an attempt that has been superseded or shut down meanwhile.
	if ctx.Err() != nil {
		m.st.SetVolumeStatus(mountPoint, mounts.StatusDisconnected)
		return
	}

	_, err := m.mount(ctx, cfg, creds, false)
	switch {
	case err == nil:
		log.Info().Str("mount_point", mountPoint).Msg("reconnected")
		m.notifier.Reconnected(cfg.VolumeName())
	case mounts.IsCancelled(err):
		m.st.SetVolumeStatus(mountPoint, mounts.StatusDisconnected)
		log.Debug().Str("mount_point", mountPoint).Msg("reconnect cancelled")
	default:
		// The volume stays in the table as disconnected; the next
		// disconnect event starts a fresh attempt.
		m.st.SetVolumeStatus(mountPoint, mounts.StatusDisconnected)
		log.Warn().Err(err).Str("mount_point", mountPoint).Msg("reconnect failed")
	}
}

// CancelReconnect aborts the pending reconnect for one mount point,
// reporting whether there was one.
func (m *MountManager) CancelReconnect(mountPoint string) bool {
	cancelled := m.reconnects.cancel(mountPoint)
	if cancelled {
		log.Info().Str("mount_point", mountPoint).Msg("reconnect cancelled on request")
	}
	return cancelled
}

// CancelReconnects aborts every pending reconnect and returns how many
// were stopped.
func (m *MountManager) CancelReconnects() int {
	n := m.reconnects.cancelAll()
	if n > 0 {
		log.Info().Msgf("cancelled %d pending reconnect(s)", n)
	}
	return n
}
