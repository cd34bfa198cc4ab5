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

// Package syncer keeps one-way local mirrors of mounted shares. Each
// enabled mount point gets a background job that copies changed files from
// the share into its mirror directory on an interval and shortly after
// filesystem activity. Files changed on the mirror side are never
// overwritten; they are skipped and reported as conflicts.
package syncer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/api/notifications"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/ShareMountProject/sharemount-core/pkg/notifier"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// debounceDelay batches bursts of filesystem events into one mirror pass.
const debounceDelay = 2 * time.Second

// Manager runs the mirror jobs. One job per mount point; enabling a mount
// point that already has a job replaces it.
type Manager struct {
	cfg      *config.Instance
	fs       afero.Fs
	ns       chan<- models.Notification
	notifier notifier.Notifier
	clock    clockwork.Clock
	jobs     map[string]*job
	mu       syncutil.Mutex
}

type job struct {
	cancel    context.CancelFunc
	done      chan struct{}
	mirrorDir string
	// mirrored records the mirror-side mod time written by the last
	// pass, keyed by relative path. A mirror file whose mod time moved
	// away from this is a conflict.
	mirrored map[string]time.Time
}

// New creates a sync manager. fs is the filesystem both sides live on;
// tests hand in an afero.MemMapFs. clock may be nil for a real clock.
func New(
	cfg *config.Instance,
	fs afero.Fs,
	ns chan<- models.Notification,
	ntf notifier.Notifier,
	clock clockwork.Clock,
) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		cfg:      cfg,
		fs:       fs,
		ns:       ns,
		notifier: ntf,
		clock:    clock,
		jobs:     make(map[string]*job),
	}
}

// Enable starts mirroring mountPoint into mirrorDir. An existing job for
// the mount point is replaced. The first pass runs immediately.
func (m *Manager) Enable(mountPoint, mirrorDir string) error {
	if mirrorDir == "" {
		return &mounts.Error{
			Op:   "sync.enable",
			Path: mountPoint,
			Kind: mounts.ErrInvalidInput,
			Err:  fmt.Errorf("no mirror directory configured"),
		}
	}
	if err := m.fs.MkdirAll(mirrorDir, 0o750); err != nil {
		return &mounts.Error{
			Op:   "sync.enable",
			Path: mirrorDir,
			Kind: mounts.ErrSyncFailed,
			Err:  err,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		cancel:    cancel,
		done:      make(chan struct{}),
		mirrorDir: mirrorDir,
		mirrored:  make(map[string]time.Time),
	}

	m.mu.Lock()
	prior := m.jobs[mountPoint]
	m.jobs[mountPoint] = j
	m.mu.Unlock()

	if prior != nil {
		prior.cancel()
		<-prior.done
	}

	log.Info().Str("mount_point", mountPoint).Str("mirror", mirrorDir).Msg("sync enabled")
	go m.run(ctx, j, mountPoint)
	return nil
}

// Disable stops mirroring mountPoint and waits for its job to wind down.
func (m *Manager) Disable(mountPoint string) {
	m.mu.Lock()
	j := m.jobs[mountPoint]
	delete(m.jobs, mountPoint)
	m.mu.Unlock()

	if j == nil {
		return
	}
	j.cancel()
	<-j.done
	log.Info().Str("mount_point", mountPoint).Msg("sync disabled")
}

// Enabled reports whether mountPoint has a running mirror job.
func (m *Manager) Enabled(mountPoint string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[mountPoint]
	return ok
}

// Stop disables every mirror job.
func (m *Manager) Stop() {
	m.mu.Lock()
	jobs := make(map[string]*job, len(m.jobs))
	for mp, j := range m.jobs {
		jobs[mp] = j
	}
	m.jobs = make(map[string]*job)
	m.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
		<-j.done
	}
}

// run is one mirror job: an initial pass, then a pass per interval tick
// and a debounced pass after filesystem activity on the share.
func (m *Manager) run(ctx context.Context, j *job, mountPoint string) {
	defer close(j.done)

	watchEvents := m.watch(ctx, mountPoint)

	m.pass(ctx, j, mountPoint)

	ticker := m.clock.NewTicker(m.cfg.SyncInterval())
	defer ticker.Stop()

	debounce := m.clock.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.Chan()
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.pass(ctx, j, mountPoint)
		case <-watchEvents:
			debounce.Reset(debounceDelay)
		case <-debounce.Chan():
			m.pass(ctx, j, mountPoint)
		}
	}
}

// watch wires fsnotify on the share root. Watching is best effort; when
// it cannot start (network filesystems do not always support it, and the
// in-memory test filesystem never does) the job falls back to interval
// passes only.
func (m *Manager) watch(ctx context.Context, mountPoint string) <-chan struct{} {
	if _, ok := m.fs.(*afero.OsFs); !ok {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Str("mount_point", mountPoint).
			Msg("no filesystem watch for sync, using interval only")
		return nil
	}
	if err := watcher.Add(mountPoint); err != nil {
		log.Warn().Err(err).Str("mount_point", mountPoint).
			Msg("no filesystem watch for sync, using interval only")
		_ = watcher.Close()
		return nil
	}

	events := make(chan struct{}, 1)
	go func() {
		defer func() {
			_ = watcher.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug().Err(err).Msg("sync watch error")
			}
		}
	}()
	return events
}

// pass copies every new or changed file from the share into the mirror.
// Mirror-side edits win: a file whose mirror copy changed since the last
// pass is skipped and reported as a conflict.
func (m *Manager) pass(ctx context.Context, j *job, mountPoint string) {
	var copied, skipped int

	err := afero.Walk(m.fs, mountPoint, func(path string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("sync walk error")
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(mountPoint, path)
		if relErr != nil {
			return nil
		}
		dst := filepath.Join(j.mirrorDir, rel)

		switch m.fileAction(j, path, dst, rel, info) {
		case actionSkip:
		case actionConflict:
			skipped++
			notifications.SyncConflict(m.ns, models.SyncConflictParams{
				MountPoint: mountPoint,
				Path:       rel,
			})
			if m.notifier != nil {
				m.notifier.SyncConflict(mountPoint, rel)
			}
		case actionCopy:
			if copyErr := m.copyFile(path, dst); copyErr != nil {
				log.Warn().Err(copyErr).Str("path", rel).Msg("sync copy failed")
				return nil
			}
			if dstInfo, statErr := m.fs.Stat(dst); statErr == nil {
				j.mirrored[rel] = dstInfo.ModTime()
			}
			copied++
		}
		return nil
	})
	if err != nil && ctx.Err() != nil {
		log.Debug().Str("mount_point", mountPoint).Msg("sync pass cancelled")
		return
	}

	if copied > 0 || skipped > 0 {
		log.Info().Str("mount_point", mountPoint).
			Msgf("sync pass finished: %d copied, %d skipped", copied, skipped)
		notifications.SyncCompleted(m.ns, models.SyncCompletedParams{
			MountPoint: mountPoint,
			MirrorDir:  j.mirrorDir,
			Copied:     copied,
			Skipped:    skipped,
		})
		if m.notifier != nil && copied > 0 {
			m.notifier.SyncComplete(mountPoint, copied)
		}
	}
}

type action int

const (
	actionSkip action = iota
	actionCopy
	actionConflict
)

func (m *Manager) fileAction(j *job, src, dst, rel string, srcInfo os.FileInfo) action {
	dstInfo, err := m.fs.Stat(dst)
	if err != nil {
		// Not mirrored yet.
		return actionCopy
	}

	if recorded, ok := j.mirrored[rel]; ok && !dstInfo.ModTime().Equal(recorded) {
		return actionConflict
	}

	if srcInfo.ModTime().After(dstInfo.ModTime()) || srcInfo.Size() != dstInfo.Size() {
		return actionCopy
	}
	return actionSkip
}

func (m *Manager) copyFile(src, dst string) error {
	if err := m.fs.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create mirror directory: %w", err)
	}

	in, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := m.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("create mirror file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close mirror file: %w", err)
	}
	return nil
}
