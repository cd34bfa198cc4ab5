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

// Package systray runs the menu bar icon for the desktop service.
package systray

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"fyne.io/systray"
	"github.com/ShareMountProject/sharemount-core/pkg/api/client"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
)

// statusRefresh is how often the menu's mounted-share list updates.
const statusRefresh = 15 * time.Second

// maxVolumeSlots caps how many mounted shares the menu lists. The menu
// item set can't shrink once built, so slots are preallocated and hidden.
const maxVolumeSlots = 8

type volumeSlot struct {
	item       *systray.MenuItem
	mountPoint string
}

func openCommand() string {
	switch runtime.GOOS {
	case "windows":
		return "explorer"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

func fetchMounts(cfg *config.Instance) (*models.MountsResponse, error) {
	resp, err := client.LocalClient(context.Background(), cfg, models.MethodMounts, "")
	if err != nil {
		return nil, fmt.Errorf("query mounts: %w", err)
	}
	var mountsResp models.MountsResponse
	if err := json.Unmarshal([]byte(resp), &mountsResp); err != nil {
		return nil, fmt.Errorf("decode mounts response: %w", err)
	}
	return &mountsResp, nil
}

func countLabel(count int) string {
	switch count {
	case 0:
		return "No shares mounted"
	case 1:
		return "1 share mounted"
	default:
		return fmt.Sprintf("%d shares mounted", count)
	}
}

func statusGlyph(status mounts.Status) string {
	switch status {
	case mounts.StatusMounted:
		return "●"
	case mounts.StatusReconnecting:
		return "↻"
	case mounts.StatusDisconnected, mounts.StatusError:
		return "⚠"
	default:
		return "·"
	}
}

func refreshVolumes(cfg *config.Instance, mStatus *systray.MenuItem, slots []*volumeSlot) {
	resp, err := fetchMounts(cfg)
	if err != nil {
		mStatus.SetTitle("Service not running")
		for _, slot := range slots {
			slot.mountPoint = ""
			slot.item.Hide()
		}
		return
	}

	mStatus.SetTitle(countLabel(len(resp.Volumes)))
	for i, slot := range slots {
		if i < len(resp.Volumes) {
			vol := resp.Volumes[i]
			slot.mountPoint = vol.MountPoint
			slot.item.SetTitle(fmt.Sprintf("%s //%s/%s",
				statusGlyph(vol.Status), vol.Server, vol.Share))
			slot.item.SetTooltip("Unmount " + vol.MountPoint)
			slot.item.Show()
		} else {
			slot.mountPoint = ""
			slot.item.Hide()
		}
	}
}

func scanNetwork(cfg *config.Instance) {
	resp, err := client.LocalClient(context.Background(), cfg, models.MethodNetworkScan, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to scan network")
		dialog.Message("Network scan failed: %v", err).Title("Scan Network").Error()
		return
	}

	var scanResp models.NetworkScanResponse
	if err := json.Unmarshal([]byte(resp), &scanResp); err != nil {
		log.Error().Err(err).Msg("failed to decode scan response")
		return
	}

	if scanResp.Total == 0 {
		dialog.Message("No SMB servers found on the local network.").
			Title("Scan Network").Info()
		return
	}

	var sb strings.Builder
	for _, host := range scanResp.Hosts {
		_, _ = fmt.Fprintf(&sb, "%s (%s)\n", host.Name, host.Host)
	}
	dialog.Message("Found %d SMB server(s):\n\n%s", scanResp.Total, sb.String()).
		Title("Scan Network").Info()
}

func systrayOnReady(cfg *config.Instance, icon []byte) func() {
	return func() {
		openCmd := openCommand()

		systray.SetIcon(icon)
		if runtime.GOOS != "darwin" {
			systray.SetTitle("ShareMount")
		}
		systray.SetTooltip("ShareMount")

		mStatus := systray.AddMenuItem("Checking service...", "")
		mStatus.Disable()

		slots := make([]*volumeSlot, maxVolumeSlots)
		slotClicks := make(chan int)
		for i := range slots {
			item := systray.AddMenuItem("", "")
			item.Hide()
			slots[i] = &volumeSlot{item: item}
			go func(idx int, clicked chan struct{}) {
				for range clicked {
					slotClicks <- idx
				}
			}(i, item.ClickedCh)
		}
		systray.AddSeparator()

		mMountAll := systray.AddMenuItem("Mount All", "Mount every share configured for auto-mount")
		mScan := systray.AddMenuItem("Scan Network", "Find SMB servers on the local network")
		mEditConfig := systray.AddMenuItem("Edit Config", "Edit ShareMount config file")
		mReloadConfig := systray.AddMenuItem("Reload", "Reload ShareMount settings from disk")
		mOpenLog := systray.AddMenuItem("View Log", "View ShareMount log file")

		if cfg.DebugLogging() {
			systray.AddSeparator()
		}
		mOpenDataDir := systray.AddMenuItem("Data (Debug)", "Open ShareMount data directory")
		mOpenDataDir.Hide()
		if cfg.DebugLogging() {
			mOpenDataDir.Show()
		}

		systray.AddSeparator()
		mVersion := systray.AddMenuItem("Version "+config.AppVersion, "")
		mVersion.Disable()
		mAbout := systray.AddMenuItem("About ShareMount", "")

		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Quit and stop ShareMount service")

		refreshVolumes(cfg, mStatus, slots)

		go func() {
			ticker := time.NewTicker(statusRefresh)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					refreshVolumes(cfg, mStatus, slots)
				case idx := <-slotClicks:
					mountPoint := slots[idx].mountPoint
					if mountPoint == "" {
						continue
					}
					params, err := json.Marshal(&models.UnmountParams{
						MountPoint: mountPoint,
					})
					if err != nil {
						continue
					}
					_, err = client.LocalClient(
						context.Background(), cfg,
						models.MethodMountsUnmount, string(params))
					if err != nil {
						log.Error().Err(err).
							Str("mountPoint", mountPoint).
							Msg("failed to unmount share")
					}
					refreshVolumes(cfg, mStatus, slots)
				case <-mMountAll.ClickedCh:
					_, err := client.LocalClient(
						context.Background(), cfg, models.MethodMountsAutoMount, "")
					if err != nil {
						log.Error().Err(err).Msg("failed to start auto-mount")
					}
					refreshVolumes(cfg, mStatus, slots)
				case <-mScan.ClickedCh:
					scanNetwork(cfg)
				case <-mEditConfig.ClickedCh:
					err := exec.Command(openCmd,
						filepath.Join(helpers.ConfigDir(), config.CfgFile)).Start()
					if err != nil {
						log.Error().Err(err).Msg("failed to open config file")
					}
				case <-mReloadConfig.ClickedCh:
					_, err := client.LocalClient(
						context.Background(), cfg, models.MethodSettingsReload, "")
					if err != nil {
						log.Error().Err(err).Msg("failed to reload config")
					} else {
						log.Info().Msg("reloaded config")
					}
				case <-mOpenLog.ClickedCh:
					err := exec.Command(openCmd, helpers.LogPath()).Start()
					if err != nil {
						log.Error().Err(err).Msg("failed to open log file")
					}
				case <-mOpenDataDir.ClickedCh:
					err := exec.Command(openCmd, helpers.DataDir()).Start()
					if err != nil {
						log.Error().Err(err).Msg("failed to open data dir")
					}
				case <-mAbout.ClickedCh:
					msg := "ShareMount\n" +
						"Version v%s\n\n" +
						"© %d ShareMount Contributors\n" +
						"License: GPLv3"
					dialog.Message(msg, config.AppVersion, time.Now().Year()).
						Title("About ShareMount").Info()
				case <-mQuit.ClickedCh:
					systray.Quit()
				}
			}
		}()
	}
}

// Run blocks running the menu bar icon until Quit is chosen, then calls
// exit.
func Run(cfg *config.Instance, icon []byte, exit func()) {
	systray.Run(systrayOnReady(cfg, icon), exit)
}
