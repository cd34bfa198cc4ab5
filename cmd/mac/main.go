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

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ShareMountProject/sharemount-core/pkg/backends/netfs"
	"github.com/ShareMountProject/sharemount-core/pkg/backends/smbcheck"
	"github.com/ShareMountProject/sharemount-core/pkg/cli"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers"
	"github.com/ShareMountProject/sharemount-core/pkg/service"
	"github.com/ShareMountProject/sharemount-core/pkg/ui/systray"
	"github.com/rs/zerolog/log"

	_ "embed"
)

//go:embed app/systrayicon.png
var systrayIcon []byte

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func startService(cfg *config.Instance) (func() error, error) {
	backend := netfs.New(smbcheck.New())
	stop, _, err := service.Start(cfg, backend)
	if err != nil {
		return nil, fmt.Errorf("error starting service: %w", err)
	}
	return stop, nil
}

func run() error {
	flags := cli.SetupFlags()

	daemonMode := flag.Bool(
		"daemon",
		false,
		"run service in foreground with no menu bar icon",
	)
	serviceFlag := flag.String(
		"service",
		"",
		"manage the service daemon (start|stop|restart|status)",
	)

	flags.Pre()

	if os.Geteuid() == 0 {
		return errors.New("sharemount cannot be run as root")
	}

	var logWriters []io.Writer
	if *daemonMode || *serviceFlag == "exec" {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	svc, err := helpers.NewService(helpers.ServiceArgs{
		Entry: func() (func() error, error) {
			return startService(cfg)
		},
	})
	if err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}
	if *serviceFlag != "" {
		if err := svc.ServiceHandler(serviceFlag); err != nil {
			return err
		}
		return nil
	}

	flags.Post(cfg)

	if !helpers.IsServiceRunning(cfg) {
		stopSvc, err := startService(cfg)
		if err != nil {
			log.Error().Err(err).Msg("error starting service")
			return err
		}
		defer func() {
			if err := stopSvc(); err != nil {
				log.Error().Err(err).Msg("error stopping service")
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	exit := make(chan bool, 1)
	defer close(exit)

	if *daemonMode {
		log.Info().Msg("started in daemon mode")
	} else {
		systray.Run(cfg, systrayIcon, func() {
			exit <- true
		})
	}

	select {
	case <-sigs:
	case <-exit:
	}

	return nil
}
