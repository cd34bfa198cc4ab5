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

package config

import (
	"fmt"
	"time"
)

// Mounts configures mount lifecycle behavior: reconnection, auto-mount and
// the volume poller.
type Mounts struct {
	AutoReconnect    *bool  `toml:"auto_reconnect,omitempty"`
	AutoMountOnStart *bool  `toml:"auto_mount_on_start,omitempty"`
	Vault            string `toml:"vault,omitempty"`
	MountTimeout     string `toml:"mount_timeout,omitempty"`
	ReconnectDelay   string `toml:"reconnect_delay,omitempty"`
	PollInterval     string `toml:"poll_interval,omitempty"`
}

// Scanner configures network share discovery.
type Scanner struct {
	Timeout string `toml:"timeout,omitempty"`
}

// Sync configures local mirror synchronization.
type Sync struct {
	Interval string `toml:"interval,omitempty"`
}

// AutoReconnect returns true if disconnected shares should be remounted
// automatically. Defaults on.
func (c *Instance) AutoReconnect() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Mounts.AutoReconnect == nil {
		return true
	}
	return *c.vals.Mounts.AutoReconnect
}

func (c *Instance) SetAutoReconnect(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Mounts.AutoReconnect = &enabled
}

// AutoMountOnStart returns true if the auto-mount batch should run when the
// service starts. Defaults on.
func (c *Instance) AutoMountOnStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Mounts.AutoMountOnStart == nil {
		return true
	}
	return *c.vals.Mounts.AutoMountOnStart
}

func (c *Instance) SetAutoMountOnStart(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Mounts.AutoMountOnStart = &enabled
}

// VaultBackend selects the credential store, "keychain" or "file".
// Defaults to the keychain.
func (c *Instance) VaultBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Mounts.Vault == "" {
		return VaultKeychain
	}
	return c.vals.Mounts.Vault
}

// SetVaultBackend sets the credential store. Returns an error for unknown
// backends.
func (c *Instance) SetVaultBackend(backend string) error {
	if backend != VaultKeychain && backend != VaultFile {
		return fmt.Errorf("unknown vault backend: %s", backend)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Mounts.Vault = backend
	return nil
}

// MountTimeout returns the time limit for a single backend mount call.
// Returns 30 seconds if not configured or if the duration cannot be parsed.
func (c *Instance) MountTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Mounts.MountTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.vals.Mounts.MountTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SetMountTimeout sets the mount timeout from a duration string (e.g., "45s").
// Returns an error if the duration string is invalid.
// Pass empty string to use the default.
func (c *Instance) SetMountTimeout(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid mount timeout duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Mounts.MountTimeout = duration
	return nil
}

// ReconnectDelay returns the settle time between a disconnect event and the
// reconnect attempt it triggers. Returns 2 seconds by default; "0" disables
// the delay.
func (c *Instance) ReconnectDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Mounts.ReconnectDelay == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(c.vals.Mounts.ReconnectDelay)
	if err != nil || d < 0 {
		return 2 * time.Second
	}
	return d
}

// SetReconnectDelay sets the reconnect settle time from a duration string.
// Returns an error if the duration string is invalid.
func (c *Instance) SetReconnectDelay(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid reconnect delay duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Mounts.ReconnectDelay = duration
	return nil
}

// PollInterval returns how often the volume watcher samples the mount
// table. Returns 5 seconds if not configured or unparseable.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Mounts.PollInterval == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.vals.Mounts.PollInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ScanTimeout returns how long a network scan browses before reporting.
// Returns 10 seconds if not configured or unparseable.
func (c *Instance) ScanTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scanner.Timeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(c.vals.Scanner.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// SetScanTimeout sets the network scan timeout from a duration string.
// Returns an error if the duration string is invalid.
func (c *Instance) SetScanTimeout(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid scan timeout duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scanner.Timeout = duration
	return nil
}

// SyncInterval returns the time between mirror passes for sync-enabled
// mounts. Returns 5 minutes if not configured or unparseable.
func (c *Instance) SyncInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Sync.Interval == "" {
		return 5 * time.Minute
	}
	d, err := time.ParseDuration(c.vals.Sync.Interval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// SetSyncInterval sets the mirror pass interval from a duration string.
// Returns an error if the duration string is invalid.
func (c *Instance) SetSyncInterval(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid sync interval duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Sync.Interval = duration
	return nil
}
