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
	"os"
	"strings"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// mountsDoc is the on-disk shape of mounts.toml: a list of [[mounts]]
// tables.
type mountsDoc struct {
	Mounts []mounts.Config `toml:"mounts,omitempty"`
}

// loadMounts reads mounts.toml next to the config file. A missing file is
// an empty list, not an error. Callers must hold the write lock.
func (c *Instance) loadMounts() error {
	if c.mountsPath == "" {
		c.mountCfgs = nil
		return nil
	}

	if _, err := os.Stat(c.mountsPath); os.IsNotExist(err) {
		c.mountCfgs = nil
		return nil
	}

	data, err := os.ReadFile(c.mountsPath)
	if err != nil {
		return &mounts.Error{
			Kind: mounts.ErrConfigurationReadFailed,
			Op:   "config.load",
			Path: c.mountsPath,
			Err:  err,
		}
	}

	var doc mountsDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return &mounts.Error{
			Kind: mounts.ErrConfigurationReadFailed,
			Op:   "config.load",
			Path: c.mountsPath,
			Err:  err,
		}
	}

	c.mountCfgs = doc.Mounts
	log.Debug().Msgf("loaded %d mount configurations", len(c.mountCfgs))
	return nil
}

// saveMounts writes the current list to mounts.toml. Callers must hold the
// write lock.
func (c *Instance) saveMounts() error {
	doc := mountsDoc{Mounts: c.mountCfgs}
	data, err := toml.Marshal(&doc)
	if err != nil {
		return &mounts.Error{
			Kind: mounts.ErrConfigurationWriteFailed,
			Op:   "config.save",
			Path: c.mountsPath,
			Err:  fmt.Errorf("failed to marshal mounts: %w", err),
		}
	}
	if err := os.WriteFile(c.mountsPath, data, 0o600); err != nil {
		return &mounts.Error{
			Kind: mounts.ErrConfigurationWriteFailed,
			Op:   "config.save",
			Path: c.mountsPath,
			Err:  err,
		}
	}
	return nil
}

// MountConfigs returns a snapshot of every saved mount configuration.
func (c *Instance) MountConfigs() []mounts.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfgs := make([]mounts.Config, len(c.mountCfgs))
	copy(cfgs, c.mountCfgs)
	return cfgs
}

// MountConfig looks up one configuration by id.
func (c *Instance) MountConfig(id string) (mounts.Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.mountCfgs {
		if c.mountCfgs[i].ID == id {
			return c.mountCfgs[i], nil
		}
	}
	return mounts.Config{}, &mounts.Error{
		Kind: mounts.ErrConfigurationNotFound,
		Op:   "config.get",
		Path: id,
	}
}

// MountConfigForMountPoint finds the configuration whose effective mount
// point matches. Used by the reconnect path to map a disconnected mount
// point back to its share definition.
func (c *Instance) MountConfigForMountPoint(mountPoint string) (mounts.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.mountCfgs {
		if c.mountCfgs[i].EffectiveMountPoint() == mountPoint {
			return c.mountCfgs[i], true
		}
	}
	return mounts.Config{}, false
}

//nolint:gocritic // config passed by value, stored as given
func (c *Instance) AddMountConfig(cfg mounts.Config) (mounts.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg.Server = mounts.NormalizeServer(cfg.Server)
	cfg.Share = strings.TrimSpace(cfg.Share)
	if issues := cfg.Validate(); len(issues) > 0 {
		return mounts.Config{}, invalidConfigErr("config.add", issues)
	}

	for i := range c.mountCfgs {
		if c.mountCfgs[i].EffectiveMountPoint() == cfg.EffectiveMountPoint() {
			return mounts.Config{}, &mounts.Error{
				Kind:   mounts.ErrInvalidConfiguration,
				Op:     "config.add",
				Server: cfg.Server,
				Share:  cfg.Share,
				Err:    fmt.Errorf("mount point already configured: %s", cfg.EffectiveMountPoint()),
			}
		}
	}

	now := time.Now().UTC()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.ModifiedAt = now

	c.mountCfgs = append(c.mountCfgs, cfg)
	if err := c.saveMounts(); err != nil {
		c.mountCfgs = c.mountCfgs[:len(c.mountCfgs)-1]
		return mounts.Config{}, err
	}
	return cfg, nil
}

//nolint:gocritic // config passed by value, stored as given
func (c *Instance) UpdateMountConfig(cfg mounts.Config) (mounts.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg.Server = mounts.NormalizeServer(cfg.Server)
	cfg.Share = strings.TrimSpace(cfg.Share)
	if issues := cfg.Validate(); len(issues) > 0 {
		return mounts.Config{}, invalidConfigErr("config.update", issues)
	}

	for i := range c.mountCfgs {
		if c.mountCfgs[i].ID != cfg.ID {
			continue
		}
		prev := c.mountCfgs[i]
		cfg.CreatedAt = prev.CreatedAt
		cfg.ModifiedAt = time.Now().UTC()
		c.mountCfgs[i] = cfg
		if err := c.saveMounts(); err != nil {
			c.mountCfgs[i] = prev
			return mounts.Config{}, err
		}
		return cfg, nil
	}

	return mounts.Config{}, &mounts.Error{
		Kind: mounts.ErrConfigurationNotFound,
		Op:   "config.update",
		Path: cfg.ID,
	}
}

func (c *Instance) RemoveMountConfig(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.mountCfgs {
		if c.mountCfgs[i].ID != id {
			continue
		}
		removed := c.mountCfgs[i]
		c.mountCfgs = append(c.mountCfgs[:i], c.mountCfgs[i+1:]...)
		if err := c.saveMounts(); err != nil {
			c.mountCfgs = append(c.mountCfgs[:i], append([]mounts.Config{removed}, c.mountCfgs[i:]...)...)
			return err
		}
		return nil
	}

	return &mounts.Error{
		Kind: mounts.ErrConfigurationNotFound,
		Op:   "config.delete",
		Path: id,
	}
}

func invalidConfigErr(op string, issues []mounts.ValidationIssue) error {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = string(issue)
	}
	return &mounts.Error{
		Kind: mounts.ErrInvalidConfiguration,
		Op:   op,
		Err:  fmt.Errorf("validation failed: %s", strings.Join(parts, ", ")),
	}
}
