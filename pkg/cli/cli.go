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

// Package cli implements the command line flags shared by every entry
// point. Flags that talk to a running service go through the local API.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/ShareMountProject/sharemount-core/internal/telemetry"
	"github.com/ShareMountProject/sharemount-core/pkg/api/client"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Mount     *string
	Unmount   *string
	AutoMount *bool
	Status    *bool
	Scan      *bool
	API       *string
	Version   *bool
	Reload    *bool
}

// SetupFlags defines all common CLI flags between entry points.
func SetupFlags() *Flags {
	return &Flags{
		Mount: flag.String(
			"mount",
			"",
			"mount a share now, given as server/share or smb://server/share",
		),
		Unmount: flag.String(
			"unmount",
			"",
			"unmount the share at the given mount point",
		),
		AutoMount: flag.Bool(
			"automount",
			false,
			"mount every share configured for auto-mount",
		),
		Status: flag.Bool(
			"status",
			false,
			"list currently mounted shares",
		),
		Scan: flag.Bool(
			"scan",
			false,
			"scan the local network for SMB servers",
		),
		API: flag.String(
			"api",
			"",
			"send method and params to API and print response",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Reload: flag.Bool(
			"reload",
			false,
			"reload config from disk",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("ShareMount v%s (%s)\n", config.AppVersion, runtime.GOOS)
		os.Exit(0)
	}
}

func apiCall(cfg *config.Instance, method, params string) string {
	resp, err := client.LocalClient(context.Background(), cfg, method, params)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("error calling API")
		_, _ = fmt.Fprintf(os.Stderr, "Error calling API: %v\n", err)
		os.Exit(1)
	}
	return resp
}

func mountFlag(cfg *config.Instance, value string) {
	value = strings.TrimPrefix(value, "smb://")
	server, share, ok := strings.Cut(value, "/")
	if !ok || server == "" || share == "" {
		_, _ = fmt.Fprint(os.Stderr, "Error: mount flag requires server/share\n")
		os.Exit(1)
	}

	data, err := json.Marshal(&models.MountParams{
		Server: &server,
		Share:  &share,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error encoding params: %v\n", err)
		os.Exit(1)
	}

	apiCall(cfg, models.MethodMountsMount, string(data))
	_, _ = fmt.Printf("Mounted //%s/%s\n", server, share)
	os.Exit(0)
}

func unmountFlag(cfg *config.Instance, mountPoint string) {
	data, err := json.Marshal(&models.UnmountParams{
		MountPoint: mountPoint,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error encoding params: %v\n", err)
		os.Exit(1)
	}

	apiCall(cfg, models.MethodMountsUnmount, string(data))
	_, _ = fmt.Printf("Unmounted %s\n", mountPoint)
	os.Exit(0)
}

func statusFlag(cfg *config.Instance) {
	resp := apiCall(cfg, models.MethodMounts, "")

	var mountsResp models.MountsResponse
	if err := json.Unmarshal([]byte(resp), &mountsResp); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error decoding response: %v\n", err)
		os.Exit(1)
	}

	if len(mountsResp.Volumes) == 0 {
		_, _ = fmt.Println("No shares mounted")
	}
	for _, vol := range mountsResp.Volumes {
		_, _ = fmt.Printf("//%s/%s at %s (%s)\n",
			vol.Server, vol.Share, vol.MountPoint, vol.Status)
	}
	if mountsResp.LastError != nil {
		_, _ = fmt.Printf("Last error: //%s/%s: %s\n",
			mountsResp.LastError.Server,
			mountsResp.LastError.Share,
			mountsResp.LastError.Message)
	}
	os.Exit(0)
}

func scanFlag(cfg *config.Instance) {
	resp := apiCall(cfg, models.MethodNetworkScan, "")

	var scanResp models.NetworkScanResponse
	if err := json.Unmarshal([]byte(resp), &scanResp); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error decoding response: %v\n", err)
		os.Exit(1)
	}

	if scanResp.Total == 0 {
		_, _ = fmt.Println("No SMB servers found")
	}
	for _, host := range scanResp.Hosts {
		_, _ = fmt.Printf("%s (%s", host.Name, host.Host)
		if host.Addr != "" {
			_, _ = fmt.Printf(", %s", host.Addr)
		}
		_, _ = fmt.Printf(") port %d\n", host.Port)
	}
	os.Exit(0)
}

// Post actions all remaining common flags that require the environment to
// be set up. Logging is allowed.
func (f *Flags) Post(cfg *config.Instance) {
	switch {
	case isFlagPassed("mount"):
		if *f.Mount == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: mount flag requires a value\n")
			os.Exit(1)
		}
		mountFlag(cfg, *f.Mount)
	case isFlagPassed("unmount"):
		if *f.Unmount == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: unmount flag requires a value\n")
			os.Exit(1)
		}
		unmountFlag(cfg, *f.Unmount)
	case *f.AutoMount:
		resp := apiCall(cfg, models.MethodMountsAutoMount, "")
		_, _ = fmt.Println(resp)
		os.Exit(0)
	case *f.Status:
		statusFlag(cfg)
	case *f.Scan:
		scanFlag(cfg)
	case isFlagPassed("api"):
		if *f.API == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: api flag requires a value\n")
			os.Exit(1)
		}

		ps := strings.SplitN(*f.API, ":", 2)
		method := ps[0]
		params := ""
		if len(ps) > 1 {
			params = ps[1]
		}

		resp := apiCall(cfg, method, params)
		_, _ = fmt.Println(resp)
		os.Exit(0)
	case *f.Reload:
		apiCall(cfg, models.MethodSettingsReload, "")
		os.Exit(0)
	}
}

// Setup initializes the user config and logging. Returns a user config
// object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	// Ensure directories exist before logging initialization
	for _, dir := range []string{helpers.ConfigDir(), helpers.DataDir(), helpers.TempDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
			os.Exit(1)
		}
	}

	if err := helpers.InitLogging(writers); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(
		cfg.TelemetryEnabled(),
		cfg.DeviceID(),
		config.AppVersion,
		runtime.GOOS,
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
