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

// Package publishers bridges service notifications to external systems.
// The MQTT publisher lets home-automation setups react to mount events.
package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// publishTimeout bounds one broker publish so a slow broker cannot stall
// the notification fan-out.
const publishTimeout = 5 * time.Second

// MQTTPublisher publishes service notifications to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
	broker string
	topic  string
	filter []string
}

// mqttMessage is the wire form of one published notification.
type mqttMessage struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewMQTTPublisher creates a publisher for the given broker and topic.
// An empty filter publishes every notification; otherwise only the listed
// methods are published.
func NewMQTTPublisher(broker, topic string, filter []string) *MQTTPublisher {
	return &MQTTPublisher{
		broker: broker,
		topic:  topic,
		filter: filter,
	}
}

// Start connects to the MQTT broker.
func (p *MQTTPublisher) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", p.broker))
	opts.SetClientID("sharemount-publisher-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Msgf("mqtt publisher: connected to %s", p.broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt publisher: connection lost")
	}

	p.client = mqtt.NewClient(opts)

	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Msgf("mqtt publisher: connected to %s (topic: %s)", p.broker, p.topic)
	return nil
}

// Stop disconnects from the MQTT broker.
func (p *MQTTPublisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		log.Debug().Msg("mqtt publisher: disconnecting")
		p.client.Disconnect(250)
	}
}

// Publish forwards one notification to the broker, subject to the filter.
func (p *MQTTPublisher) Publish(notif models.Notification) error {
	if !p.matchesFilter(notif.Method) {
		return nil
	}

	payload, err := json.Marshal(mqttMessage{
		Method: notif.Method,
		Params: notif.Params,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", p.broker)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", p.broker, token.Error())
	}

	log.Debug().Msgf("mqtt publisher: published %s notification", notif.Method)
	return nil
}

// matchesFilter reports whether a notification method passes the filter.
// An empty filter publishes everything.
func (p *MQTTPublisher) matchesFilter(method string) bool {
	if len(p.filter) == 0 {
		return true
	}
	for _, f := range p.filter {
		if f == method {
			return true
		}
	}
	return false
}
