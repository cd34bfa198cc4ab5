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

package mounts

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultVolumesDir is where mount points are created when a configuration
// does not name one explicitly.
const DefaultVolumesDir = "/Volumes"

// Config is a saved share definition. Persistence lives in the config
// store; this type only carries the fields and their derivations.
type Config struct {
	CreatedAt       time.Time `toml:"created_at" json:"createdAt"`
	ModifiedAt      time.Time `toml:"modified_at" json:"modifiedAt"`
	ID              string    `toml:"id" json:"id"`
	Server          string    `toml:"server" json:"server"`
	Share           string    `toml:"share" json:"share"`
	MountPoint      string    `toml:"mount_point,omitempty" json:"mountPoint,omitempty"`
	SyncPath        string    `toml:"sync_path,omitempty" json:"syncPath,omitempty"`
	AutoMount       bool      `toml:"auto_mount" json:"autoMount"`
	SaveCredentials bool      `toml:"save_credentials" json:"saveCredentials"`
	SyncEnabled     bool      `toml:"sync_enabled,omitempty" json:"syncEnabled,omitempty"`
}

// NewConfig returns a Config with a fresh ID and timestamps. The server is
// normalized; validation is the caller's responsibility.
func NewConfig(server, share string) Config {
	now := time.Now().UTC()
	return Config{
		ID:         uuid.NewString(),
		Server:     NormalizeServer(server),
		Share:      strings.TrimSpace(share),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// NormalizeServer trims whitespace and strips an smb:// scheme and any
// trailing slashes, so "smb://nas.local/" and "nas.local" compare equal.
func NormalizeServer(server string) string {
	s := strings.TrimSpace(server)
	for _, prefix := range []string{"smb://", "SMB://", "cifs://"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	return strings.TrimRight(s, "/")
}

// ValidationIssue identifies one problem found by Config.Validate.
type ValidationIssue string

const (
	IssueServerEmpty         ValidationIssue = "server_empty"
	IssueShareEmpty          ValidationIssue = "share_empty"
	IssueServerFormatInvalid ValidationIssue = "server_format_invalid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every issue with the configuration, not just the first.
// An empty result means the configuration is mountable.
func (c *Config) Validate() []ValidationIssue {
	var issues []ValidationIssue
	server := strings.TrimSpace(c.Server)
	if server == "" {
		issues = append(issues, IssueServerEmpty)
	} else if validate.Var(server, "hostname_rfc1123|ip") != nil {
		issues = append(issues, IssueServerFormatInvalid)
	}
	if strings.TrimSpace(c.Share) == "" {
		issues = append(issues, IssueShareEmpty)
	}
	return issues
}

// SMBURL renders the configuration as an smb:// URL with the share path
// escaped, suitable for handing to the mount backend. IPv6 servers are
// bracketed.
func (c *Config) SMBURL() string {
	host := c.Server
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	u := url.URL{
		Scheme: "smb",
		Host:   host,
		Path:   "/" + c.Share,
	}
	return u.String()
}

// KeychainID is the stable vault key for this share's credentials. It is
// derived from server and share, not the config ID, so re-created
// configurations keep finding their saved credentials.
func (c *Config) KeychainID() string {
	return c.Server + "/" + c.Share
}

// ParseDevice extracts the server and share from an SMB mount table device
// string such as //bob@nas.local/Media or //DOM;bob@host/My%20Share.
// Userinfo is discarded. It is the read-side counterpart of SMBURL.
func ParseDevice(device string) (server, share string) {
	s := strings.TrimPrefix(device, "//")

	if slash := strings.Index(s, "/"); slash >= 0 {
		share = s[slash+1:]
		s = s[:slash]
	}

	if at := strings.LastIndex(s, "@"); at >= 0 {
		s = s[at+1:]
	}
	server = strings.Trim(s, "[]")

	if unescaped, err := url.PathUnescape(share); err == nil {
		share = unescaped
	}

	return server, share
}

// EffectiveMountPoint returns the configured mount point, or the default
// one under /Volumes named after the share.
func (c *Config) EffectiveMountPoint() string {
	if c.MountPoint != "" {
		return c.MountPoint
	}
	return filepath.Join(DefaultVolumesDir, c.Share)
}

// VolumeName is the display name for the mounted volume.
func (c *Config) VolumeName() string {
	return c.Share
}
