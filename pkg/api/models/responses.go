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

package models

import (
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
)

// MountErrorInfo is the wire form of the service's last mount error slot.
type MountErrorInfo struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Server  string    `json:"server,omitempty"`
	Share   string    `json:"share,omitempty"`
}

type MountsResponse struct {
	LastError *MountErrorInfo `json:"lastError,omitempty"`
	Volumes   []mounts.Volume `json:"volumes"`
}

type ConfigsResponse struct {
	Configs []mounts.Config `json:"configs"`
}

// VolumeEventParams is the payload for unmounted, disconnected and
// reconnecting notifications, where only the identity of the mount is known.
type VolumeEventParams struct {
	MountPoint string `json:"mountPoint"`
	Server     string `json:"server,omitempty"`
	Share      string `json:"share,omitempty"`
}

type SyncCompletedParams struct {
	MountPoint string `json:"mountPoint"`
	MirrorDir  string `json:"mirrorDir"`
	Copied     int    `json:"copied"`
	Skipped    int    `json:"skipped"`
}

type SyncConflictParams struct {
	MountPoint string `json:"mountPoint"`
	Path       string `json:"path"`
}

// ScanHost is one SMB server found by a network scan.
type ScanHost struct {
	Name string `json:"name"`
	Host string `json:"host"`
	Addr string `json:"addr,omitempty"`
	Port int    `json:"port"`
}

type NetworkScanResponse struct {
	Hosts []ScanHost `json:"hosts"`
	Total int        `json:"total"`
}

type SettingsResponse struct {
	VaultBackend         string `json:"vaultBackend"`
	MountTimeout         string `json:"mountTimeout"`
	ReconnectDelay       string `json:"reconnectDelay"`
	PollInterval         string `json:"pollInterval"`
	ScanTimeout          string `json:"scanTimeout"`
	SyncInterval         string `json:"syncInterval"`
	DebugLogging         bool   `json:"debugLogging"`
	AutoReconnect        bool   `json:"autoReconnect"`
	AutoMountOnStart     bool   `json:"autoMountOnStart"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	TelemetryEnabled     bool   `json:"telemetryEnabled"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}
