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

//go:build darwin

// Package netfs mounts SMB shares through mount_smbfs(8) and detaches
// them with unmount(2). Mount failures are classified from the tool's
// stderr and optionally refined with an SMB preflight probe.
package netfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/unix"
)

// Prober preflights an SMB endpoint. It is consulted when mount_smbfs
// fails without a classifiable reason, to tell apart unreachable
// servers, rejected logins and missing shares.
type Prober interface {
	Probe(ctx context.Context, server, share string, creds *mounts.Credentials) error
}

type Backend struct {
	prober Prober
}

// New returns a mount_smbfs backed driver. prober may be nil, in which
// case ambiguous failures stay classified as mount_operation_failed.
func New(prober Prober) *Backend {
	return &Backend{prober: prober}
}

func (b *Backend) Mount(
	ctx context.Context,
	cfg mounts.Config,
	creds *mounts.Credentials,
) (*mounts.Volume, error) {
	mountPoint := cfg.EffectiveMountPoint()

	tracked, err := b.MountedVolumes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not read mount table before mounting")
	}
	for i := range tracked {
		if tracked[i].MountPoint == mountPoint {
			return nil, &mounts.Error{
				Op:     "mount",
				Server: cfg.Server,
				Share:  cfg.Share,
				Path:   mountPoint,
				Kind:   mounts.ErrMountPointExists,
				Err:    fmt.Errorf("%s is already mounted", mountPoint),
			}
		}
	}

	created, err := ensureMountPoint(cfg, mountPoint)
	if err != nil {
		return nil, err
	}

	// -N suppresses the interactive password prompt; credentials travel
	// in the device URL and mount_smbfs otherwise falls back to
	// nsmb.conf, the keychain or guest access.
	args := []string{"-N", deviceURL(cfg, creds), mountPoint}
	cmd := exec.CommandContext(ctx, "mount_smbfs", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		if created {
			if rmErr := os.Remove(mountPoint); rmErr != nil {
				log.Debug().Err(rmErr).Msgf("could not remove mount point %s", mountPoint)
			}
		}
		return nil, b.mountError(ctx, cfg, creds, mountPoint, stderr.String(), runErr)
	}

	vol := &mounts.Volume{
		ID:         uuid.NewString(),
		Server:     cfg.Server,
		Share:      cfg.Share,
		MountPoint: mountPoint,
		VolumeName: cfg.VolumeName(),
		Status:     mounts.StatusMounted,
		MountedAt:  time.Now(),
	}
	fillUsage(ctx, vol)

	return vol, nil
}

func (b *Backend) mountError(
	ctx context.Context,
	cfg mounts.Config,
	creds *mounts.Credentials,
	mountPoint, stderr string,
	runErr error,
) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return &mounts.Error{
				Op:     "mount",
				Server: cfg.Server,
				Share:  cfg.Share,
				Path:   mountPoint,
				Kind:   mounts.ErrMountTimeout,
				Err:    ctxErr,
			}
		}
		return fmt.Errorf("mount %s: %w", mountPoint, context.Canceled)
	}

	kind := classifyMountOutput(stderr)
	if kind == mounts.ErrMountFailed && b.prober != nil {
		if probeErr := b.prober.Probe(ctx, cfg.Server, cfg.Share, creds); probeErr != nil {
			if k := mounts.KindOf(probeErr); k != mounts.ErrUnknown && k != mounts.ErrCancelled {
				kind = k
			}
		}
	}

	reason := strings.TrimSpace(stderr)
	if reason == "" {
		reason = runErr.Error()
	}

	return &mounts.Error{
		Op:     "mount",
		Server: cfg.Server,
		Share:  cfg.Share,
		Path:   mountPoint,
		Kind:   kind,
		Err:    errors.New(reason),
	}
}

func (b *Backend) Unmount(ctx context.Context, mountPoint string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("unmount %s: %w", mountPoint, err)
	}

	if err := unix.Unmount(mountPoint, 0); err != nil {
		kind := mounts.ErrUnmountFailed
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOENT) {
			kind = mounts.ErrNotMounted
		}
		return &mounts.Error{
			Op:   "unmount",
			Path: mountPoint,
			Kind: kind,
			Err:  err,
		}
	}

	if err := os.Remove(mountPoint); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Msgf("mount point directory %s left in place", mountPoint)
	}

	return nil
}

func (b *Backend) MountedVolumes(ctx context.Context) ([]mounts.Volume, error) {
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("reading mount table: %w", err)
	}

	vols := make([]mounts.Volume, 0, len(parts))
	for _, p := range parts {
		if !strings.EqualFold(p.Fstype, "smbfs") {
			continue
		}
		server, share := mounts.ParseDevice(p.Device)
		vol := mounts.Volume{
			ID:         uuid.NewString(),
			Server:     server,
			Share:      share,
			MountPoint: p.Mountpoint,
			VolumeName: filepath.Base(p.Mountpoint),
			Status:     mounts.StatusMounted,
			// statfs does not report when the mount happened, so
			// discovery time stands in for mount time.
			MountedAt: time.Now(),
		}
		fillUsage(ctx, &vol)
		vols = append(vols, vol)
	}

	return vols, nil
}

func fillUsage(ctx context.Context, vol *mounts.Volume) {
	usage, err := disk.UsageWithContext(ctx, vol.MountPoint)
	if err != nil {
		log.Debug().Err(err).Msgf("usage unavailable for %s", vol.MountPoint)
		return
	}
	used := usage.Used
	total := usage.Total
	vol.BytesUsed = &used
	vol.BytesTotal = &total
}

func ensureMountPoint(cfg mounts.Config, path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, &mounts.Error{
			Op:     "mount",
			Server: cfg.Server,
			Share:  cfg.Share,
			Path:   path,
			Kind:   mounts.ErrMountPointCreation,
			Err:    err,
		}
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		kind := mounts.ErrMountPointCreation
		if os.IsPermission(err) {
			kind = mounts.ErrPermissionDenied
		}
		return false, &mounts.Error{
			Op:     "mount",
			Server: cfg.Server,
			Share:  cfg.Share,
			Path:   path,
			Kind:   kind,
			Err:    err,
		}
	}

	return true, nil
}
