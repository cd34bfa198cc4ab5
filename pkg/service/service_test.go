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

package service

import (
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publisherConfig builds a config whose publisher list cannot be set
// through the usual accessors, so it goes in through the defaults.
func publisherConfig(t *testing.T, mqtt []config.MQTTPublisher) *config.Instance {
	t.Helper()
	defaults := config.BaseDefaults
	defaults.Service.Publishers.MQTT = mqtt
	cfg, err := config.NewConfig(t.TempDir(), defaults)
	require.NoError(t, err)
	return cfg
}

func TestStartPublishersNoneConfigured(t *testing.T) {
	t.Parallel()

	cfg := publisherConfig(t, nil)
	st, _ := state.NewState()
	t.Cleanup(st.StopService)

	notifChan := make(chan models.Notification, 4)
	active, cancel := startPublishers(st, cfg, notifChan)
	t.Cleanup(cancel)

	assert.Empty(t, active)

	// The fan-out must keep draining even with nothing to publish to,
	// otherwise the broker subscription backs up.
	for range 4 {
		notifChan <- models.Notification{Method: models.NotificationRunning}
	}
	assert.Eventually(t, func() bool {
		return len(notifChan) == 0
	}, waitFor, tick)
}

func TestStartPublishersSkipsDisabled(t *testing.T) {
	t.Parallel()

	disabled := false
	cfg := publisherConfig(t, []config.MQTTPublisher{
		{
			Enabled: &disabled,
			Broker:  "broker.local:1883",
			Topic:   "sharemount/events",
		},
	})
	st, _ := state.NewState()
	t.Cleanup(st.StopService)

	notifChan := make(chan models.Notification, 1)
	active, cancel := startPublishers(st, cfg, notifChan)
	t.Cleanup(cancel)

	assert.Empty(t, active, "disabled publishers must not be started")
}

func TestStartPublishersFanOutStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := publisherConfig(t, nil)
	st, _ := state.NewState()
	t.Cleanup(st.StopService)

	notifChan := make(chan models.Notification, 1)
	_, cancel := startPublishers(st, cfg, notifChan)
	cancel()

	// After cancel the drain goroutine exits, so a queued notification
	// stays queued.
	notifChan <- models.Notification{Method: models.NotificationRunning}
	assert.Never(t, func() bool {
		return len(notifChan) == 0
	}, 100*tick, tick)
}

func TestStartPublishersFanOutStopsOnClosedChannel(t *testing.T) {
	t.Parallel()

	cfg := publisherConfig(t, nil)
	st, _ := state.NewState()
	t.Cleanup(st.StopService)

	notifChan := make(chan models.Notification)
	_, cancel := startPublishers(st, cfg, notifChan)
	t.Cleanup(cancel)

	// Closing the subscription is a clean shutdown path, not a panic.
	close(notifChan)
}
