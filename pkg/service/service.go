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

// Package service runs the mount service: the mount manager and its event
// loop, the notification broker, the local API, mDNS advertising and the
// optional MQTT publishers, wired together by Start.
package service

import (
	"context"
	"fmt"
	"os"

	"github.com/ShareMountProject/sharemount-core/pkg/api"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/api/notifications"
	"github.com/ShareMountProject/sharemount-core/pkg/backends"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers"
	"github.com/ShareMountProject/sharemount-core/pkg/notifier"
	"github.com/ShareMountProject/sharemount-core/pkg/service/broker"
	"github.com/ShareMountProject/sharemount-core/pkg/service/discovery"
	"github.com/ShareMountProject/sharemount-core/pkg/service/publishers"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/ShareMountProject/sharemount-core/pkg/syncer"
	"github.com/ShareMountProject/sharemount-core/pkg/vault"
	"github.com/ShareMountProject/sharemount-core/pkg/volumes"
	"github.com/rs/zerolog/log"
)

// internetWaitTries bounds how long the startup auto-mount batch waits
// for the network to come up before attempting anyway.
const internetWaitTries = 30

func setupEnvironment() error {
	log.Info().Msg("creating service directories")
	dirs := []string{
		helpers.ConfigDir(),
		helpers.DataDir(),
		helpers.TempDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Start brings the whole service up and returns a stop function that
// winds it down. done closes once cleanup has finished, for callers that
// watch shutdown without initiating it.
func Start(
	cfg *config.Instance,
	backend backends.Backend,
) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	st, ns := state.NewState() // global state, notification queue (source)

	// Broadcasts service notifications to the API, publishers and any
	// other consumer.
	notifBroker := broker.NewBroker(ns)
	brokerDone := notifBroker.Start(st.GetContext())

	if err := setupEnvironment(); err != nil {
		log.Error().Err(err).Msg("error setting up environment")
		return nil, nil, err
	}

	vlt, err := vault.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("error opening credential vault")
		return nil, nil, err
	}

	ntf := notifier.New(cfg)
	watcher := volumes.NewPoller(cfg.PollInterval(), nil, nil)
	sync := syncer.New(cfg, nil, st.Notifications, ntf, nil)

	manager := NewMountManager(cfg, st, backend, watcher, vlt, ntf, sync, nil)

	log.Info().Msg("starting mount manager")
	if err := manager.Start(); err != nil {
		log.Error().Err(err).Msg("error starting mount manager")
		return nil, nil, err
	}

	log.Info().Msg("starting mDNS discovery service")
	discoveryService := discovery.New(cfg)
	if discoveryErr := discoveryService.Start(); discoveryErr != nil {
		log.Error().Err(discoveryErr).
			Msg("mDNS discovery failed to start (continuing without discovery)")
	}

	log.Info().Msg("starting API service")
	apiNotifications, _ := notifBroker.Subscribe(100)
	go api.Start(cfg, st, manager, vlt, apiNotifications)

	log.Info().Msg("starting publishers")
	publisherNotifications, _ := notifBroker.Subscribe(100)
	activePublishers, cancelPublisherFanOut := startPublishers(st, cfg, publisherNotifications)

	if cfg.AutoMountOnStart() {
		log.Info().Msg("scheduling startup auto-mount")
		go func() {
			if !helpers.WaitForInternet(internetWaitTries) {
				log.Warn().Msg("no network detected, attempting auto-mount anyway")
			}
			manager.AutoMount(st.GetContext())
			for _, mcfg := range cfg.MountConfigs() {
				if mcfg.SyncEnabled && !mcfg.AutoMount {
					// Sync-enabled shares that were already mounted
					// outside the batch still get their mirrors.
					if st.TracksMountPoint(mcfg.EffectiveMountPoint()) && mcfg.SyncPath != "" {
						if syncErr := sync.Enable(mcfg.EffectiveMountPoint(), mcfg.SyncPath); syncErr != nil {
							log.Error().Err(syncErr).Msg("could not enable sync at startup")
						}
					}
				}
			}
		}()
	}

	notifications.Running(st.Notifications)
	log.Info().Msg("service fully initialized")

	doneCh := make(chan struct{})
	go func() {
		<-st.GetContext().Done()
		log.Info().Msg("service context cancelled, running cleanup")

		manager.Stop()
		sync.Stop()
		discoveryService.Stop()
		cancelPublisherFanOut()
		for _, publisher := range activePublishers {
			publisher.Stop()
		}
		<-brokerDone

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		st.StopService()
		<-doneCh
		return nil
	}
	done = doneCh
	return stop, done, nil
}

// startPublishers initializes every configured MQTT publisher and starts
// the fan-out draining broker notifications into them. The drain runs
// even with zero publishers so the subscription never backs up.
func startPublishers(
	st *state.State,
	cfg *config.Instance,
	notifChan <-chan models.Notification,
) ([]*publishers.MQTTPublisher, context.CancelFunc) {
	activePublishers := make([]*publishers.MQTTPublisher, 0)

	for _, mqttCfg := range cfg.GetMQTTPublishers() {
		// nil Enabled means enabled by default
		if mqttCfg.Enabled != nil && !*mqttCfg.Enabled {
			continue
		}

		log.Info().Msgf("starting MQTT publisher: %s (topic: %s)", mqttCfg.Broker, mqttCfg.Topic)

		publisher := publishers.NewMQTTPublisher(mqttCfg.Broker, mqttCfg.Topic, mqttCfg.Filter)
		if err := publisher.Start(); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", mqttCfg.Broker)
			continue
		}

		activePublishers = append(activePublishers, publisher)
	}

	if len(activePublishers) > 0 {
		log.Info().Msgf("started %d MQTT publisher(s)", len(activePublishers))
	}

	ctx, cancel := context.WithCancel(st.GetContext())
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("mqtt publisher fan-out: stopping")
				return
			case notif, ok := <-notifChan:
				if !ok {
					log.Debug().Msg("mqtt publisher fan-out: notification channel closed")
					return
				}
				for _, pub := range activePublishers {
					if err := pub.Publish(notif); err != nil {
						log.Warn().Err(err).Msgf("failed to publish %s notification", notif.Method)
					}
				}
			}
		}
	}()

	return activePublishers, cancel
}
