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
	"errors"
	"strings"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/backends"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/ShareMountProject/sharemount-core/pkg/notifier"
	"github.com/ShareMountProject/sharemount-core/pkg/service/scanner"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/ShareMountProject/sharemount-core/pkg/vault"
	"github.com/ShareMountProject/sharemount-core/pkg/volumes"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Syncer is the slice of the mirror sync engine the mount manager drives:
// sync is disabled before an unmount and enabled after a successful
// auto-mount of a sync-enabled configuration.
type Syncer interface {
	// Enable starts mirroring mountPoint into mirrorDir.
	Enable(mountPoint, mirrorDir string) error
	// Disable stops mirroring mountPoint. Disabling a mount point that
	// is not mirrored is a no-op.
	Disable(mountPoint string)
	// Enabled reports whether mountPoint is being mirrored.
	Enabled(mountPoint string) bool
}

// MountManager owns the mount lifecycle: it is the only writer of the
// mounted-volume table, runs auto-mount batches, consumes the volume
// watcher's event stream and supervises reconnect attempts. Public
// methods hand out snapshots; internal state stays behind the manager.
type MountManager struct {
	cfg        *config.Instance
	st         *state.State
	backend    backends.Backend
	watcher    volumes.Watcher
	vault      vault.Vault
	notifier   notifier.Notifier
	syncer     Syncer
	clock      clockwork.Clock
	reconnects *reconnectRegistry
	autoRun    *state.RunScope
	scanRun    *state.RunScope
	loopCancel context.CancelFunc
	eventsDone chan struct{}
	running    bool
	mu         syncutil.Mutex
}

// NewMountManager wires a manager from its collaborators. clock may be nil
// for a real clock; tests pass a fake one.
func NewMountManager(
	cfg *config.Instance,
	st *state.State,
	backend backends.Backend,
	watcher volumes.Watcher,
	vlt vault.Vault,
	ntf notifier.Notifier,
	sync Syncer,
	clock clockwork.Clock,
) *MountManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MountManager{
		cfg:        cfg,
		st:         st,
		backend:    backend,
		watcher:    watcher,
		vault:      vlt,
		notifier:   ntf,
		syncer:     sync,
		clock:      clock,
		reconnects: newReconnectRegistry(),
		autoRun:    state.NewRunScope(),
		scanRun:    state.NewRunScope(),
	}
}

// Start seeds the volume table from the system mount table and begins
// consuming the watcher's event stream. Calling it while already running
// is a no-op.
func (m *MountManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		log.Debug().Msg("mount manager already running")
		return nil
	}

	// The event loop gets its own context under the service one, so Stop
	// ends the loop without ending the service.
	ctx, cancel := context.WithCancel(m.st.GetContext())
	existing, err := m.backend.MountedVolumes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not read existing mounts at startup")
	}
	for i := range existing {
		m.st.AddVolume(existing[i])
		m.watcher.AddMountPoint(existing[i].MountPoint)
	}
	if len(existing) > 0 {
		log.Info().Msgf("tracking %d existing SMB mount(s)", len(existing))
	}

	if err := m.watcher.StartMonitoring(); err != nil {
		cancel()
		return err
	}

	m.loopCancel = cancel
	m.eventsDone = make(chan struct{})
	go m.consumeEvents(ctx, m.eventsDone)

	m.running = true
	return nil
}

// Stop cancels the auto-mount batch, any network scan and every pending
// reconnect, halts volume monitoring and waits for the event loop to
// exit, so a later Start never races a stale consumer on the watcher
// stream. Safe to call repeatedly and when nothing is running.
func (m *MountManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}

	m.autoRun.Cancel()
	m.scanRun.Cancel()
	if n := m.reconnects.cancelAll(); n > 0 {
		log.Debug().Msgf("stop cancelled %d pending reconnect(s)", n)
	}
	m.watcher.StopMonitoring()
	m.loopCancel()
	<-m.eventsDone
	m.running = false
}

// EventsDone exposes the event loop's completion channel for tests and
// shutdown accounting. It is nil before the first Start.
func (m *MountManager) EventsDone() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsDone
}

// Mount attaches one share and starts tracking it. A nil creds falls back
// to the vault when the configuration saves credentials, otherwise the
// backend decides whether guest access works.
func (m *MountManager) Mount(
	ctx context.Context,
	cfg mounts.Config,
	creds *mounts.Credentials,
) (mounts.Volume, error) {
	if issues := cfg.Validate(); len(issues) > 0 {
		err := &mounts.Error{
			Op:     "mount",
			Server: cfg.Server,
			Share:  cfg.Share,
			Kind:   mounts.ErrInvalidConfiguration,
			Err:    validationError(issues),
		}
		m.st.SetLastMountError(err, cfg.Server, cfg.Share)
		return mounts.Volume{}, err
	}
	if creds == nil {
		creds = m.savedCredentials(ctx, cfg)
	}
	return m.mount(ctx, cfg, creds, true)
}

// mount is the single entrypoint every mount path funnels through:
// explicit mounts, auto-mount batch items and reconnect attempts. notify
// controls the user-facing banners; reconnects announce their own.
func (m *MountManager) mount(
	ctx context.Context,
	cfg mounts.Config,
	creds *mounts.Credentials,
	notify bool,
) (mounts.Volume, error) {
	if err := ctx.Err(); err != nil {
		return mounts.Volume{}, err
	}

	mctx, cancel := context.WithTimeout(ctx, m.cfg.MountTimeout())
	defer cancel()

	log.Info().Str("url", cfg.SMBURL()).
		Str("mount_point", cfg.EffectiveMountPoint()).
		Msg("mounting share")

	vol, err := m.backend.Mount(mctx, cfg, creds)
	if err != nil {
		if !mounts.IsCancelled(err) {
			m.st.SetLastMountError(err, cfg.Server, cfg.Share)
			if notify {
				m.notifier.MountFailure(cfg.Server, cfg.Share, failureReason(err))
			}
			log.Error().Err(err).Str("url", cfg.SMBURL()).Msg("mount failed")
		}
		return mounts.Volume{}, err
	}

	m.st.AddVolume(*vol)
	m.watcher.AddMountPoint(vol.MountPoint)
	if notify {
		m.notifier.MountSuccess(vol.VolumeName, vol.MountPoint)
	}
	log.Info().Str("mount_point", vol.MountPoint).Msg("mounted")
	return vol.Clone(), nil
}

// Unmount detaches the volume at mountPoint. Sync is disabled and the
// mount point dropped from monitoring before the backend call, so the
// disconnect this unmount causes can never be mistaken for a lost
// connection and trigger a reconnect.
func (m *MountManager) Unmount(ctx context.Context, mountPoint string) error {
	vol, ok := m.st.Volume(mountPoint)
	if !ok {
		return &mounts.Error{
			Op:   "unmount",
			Path: mountPoint,
			Kind: mounts.ErrNotMounted,
		}
	}

	m.st.SetVolumeStatus(mountPoint, mounts.StatusUnmounting)
	if m.syncer != nil && m.syncer.Enabled(mountPoint) {
		m.syncer.Disable(mountPoint)
	}
	m.watcher.RemoveMountPoint(mountPoint)

	if err := m.backend.Unmount(ctx, mountPoint); err != nil {
		// Still mounted, so monitoring resumes and the table entry stays.
		m.watcher.AddMountPoint(mountPoint)
		m.st.SetVolumeStatus(mountPoint, mounts.StatusMounted)
		if !mounts.IsCancelled(err) {
			m.st.SetLastMountError(err, vol.Server, vol.Share)
			m.notifier.UnmountFailure(mountPoint, failureReason(err))
			log.Error().Err(err).Str("mount_point", mountPoint).Msg("unmount failed")
		}
		return err
	}

	m.st.RemoveVolume(mountPoint)
	log.Info().Str("mount_point", mountPoint).Msg("unmounted")
	return nil
}

// MountedVolumes returns a snapshot of the tracked volumes.
func (m *MountManager) MountedVolumes() []mounts.Volume {
	return m.st.MountedVolumes()
}

// CancelAutoMount aborts an in-progress auto-mount run, if any.
func (m *MountManager) CancelAutoMount() {
	m.autoRun.Cancel()
	log.Debug().Msg("auto-mount cancel requested")
}

// ScanNetwork browses the local network for SMB servers. A new scan
// replaces a running one, and Stop aborts any in-flight scan.
func (m *MountManager) ScanNetwork(ctx context.Context) ([]models.ScanHost, error) {
	run := m.scanRun.NewRun(ctx)
	return scanner.Scan(run, m.cfg.ScanTimeout())
}

// savedCredentials looks up the vault entry for a configuration that
// remembers credentials. Lookup failures are tolerated: mounting without
// credentials lets the backend report a clearer authentication error if
// they were actually required.
func (m *MountManager) savedCredentials(ctx context.Context, cfg mounts.Config) *mounts.Credentials {
	if !cfg.SaveCredentials || m.vault == nil {
		return nil
	}
	creds, err := m.vault.Retrieve(ctx, cfg.Server, cfg.Share)
	if err != nil {
		log.Debug().Err(err).Str("key", cfg.KeychainID()).
			Msg("no saved credentials, mounting without")
		return nil
	}
	return &creds
}

// failureReason is the short, human text for a notification banner.
func failureReason(err error) string {
	var me *mounts.Error
	if errors.As(err, &me) && me.Err != nil {
		return me.Err.Error()
	}
	return err.Error()
}

// validationError flattens a validation issue set into one error value.
func validationError(issues []mounts.ValidationIssue) error {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, string(issue))
	}
	return errors.New(strings.Join(parts, ", "))
}
