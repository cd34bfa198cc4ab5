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

package helpers

import (
	"os"
	"path/filepath"

	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir is where config.toml, mounts.toml and the file vault live.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir holds mirror state and other durable app data.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// TempDir holds logs and the pid file.
func TempDir() string {
	return filepath.Join(os.TempDir(), config.AppName)
}

// LogPath is the active log file location.
func LogPath() string {
	return filepath.Join(TempDir(), config.LogFile)
}

// PidPath is the running service's pid file location.
func PidPath() string {
	return filepath.Join(TempDir(), config.PidFile)
}
