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

	"github.com/ShareMountProject/sharemount-core/pkg/api/notifications"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// AutoMount mounts every configuration flagged for automatic connection,
// all attempts running concurrently. It always returns a summary: a run
// cancelled midway reports whatever attempts had completed rather than an
// error. Starting a new run cancels the previous one.
func (m *MountManager) AutoMount(ctx context.Context) *mounts.AutoMountSummary {
	run := m.autoRun.NewRun(ctx)

	var enabled []mounts.Config
	for _, cfg := range m.cfg.MountConfigs() {
		if cfg.AutoMount {
			enabled = append(enabled, cfg)
		}
	}
	log.Info().Msgf("auto-mount: %d configuration(s) enabled", len(enabled))

	var (
		results []mounts.Result
		mu      syncutil.Mutex
	)
	var grp errgroup.Group
	for _, cfg := range enabled {
		grp.Go(func() error {
			res, done := m.autoMountOne(run, cfg)
			if !done {
				// Cancelled before completing; nothing materialized.
				return nil
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()

	summary := &mounts.AutoMountSummary{
		CompletedAt: m.clock.Now(),
		Results:     results,
		Total:       len(results),
	}
	for _, r := range results {
		if r.Success() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	m.postProcess(run, summary)

	if summary.Total > 0 {
		notifications.AutoMountCompleted(m.st.Notifications, *summary)
		m.notifier.AutoMountComplete(summary.Succeeded, summary.Failed)
	}
	log.Info().Msgf("auto-mount finished: %d mounted, %d failed",
		summary.Succeeded, summary.Failed)
	return summary
}

// autoMountOne is one batch attempt. done is false when the attempt was
// cancelled; cancellation is an expected outcome and never counts as a
// failed result.
func (m *MountManager) autoMountOne(ctx context.Context, cfg mounts.Config) (res mounts.Result, done bool) {
	creds := m.savedCredentials(ctx, cfg)

	// Credential lookup can take time; a superseded run stops here
	// instead of reaching the backend.
	if ctx.Err() != nil {
		return mounts.Result{}, false
	}

	vol, err := m.mount(ctx, cfg, creds, false)
	if mounts.IsCancelled(err) {
		return mounts.Result{}, false
	}
	res = mounts.Result{
		Server: cfg.Server,
		Share:  cfg.Share,
		Err:    err,
	}
	if err == nil {
		res.MountPoint = vol.MountPoint
		res.VolumeName = vol.VolumeName
	}
	return res, true
}

// postProcess registers each newly-mounted volume for monitoring and
// enables sync where configured. Volumes are independent: every one gets
// its own task, so a failing sync enable cannot block or fail the others.
func (m *MountManager) postProcess(ctx context.Context, summary *mounts.AutoMountSummary) {
	var grp errgroup.Group
	for _, res := range summary.Successful() {
		grp.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			m.watcher.AddMountPoint(res.MountPoint)

			cfg, ok := m.cfg.MountConfigForMountPoint(res.MountPoint)
			if !ok || !cfg.SyncEnabled || m.syncer == nil {
				return nil
			}
			if cfg.SyncPath == "" {
				log.Warn().Str("mount_point", res.MountPoint).
					Msg("sync enabled but no sync path configured")
				return nil
			}
			if err := m.syncer.Enable(res.MountPoint, cfg.SyncPath); err != nil {
				log.Error().Err(err).Str("mount_point", res.MountPoint).
					Msg("could not enable sync after auto-mount")
			}
			return nil
		})
	}
	_ = grp.Wait()
}
