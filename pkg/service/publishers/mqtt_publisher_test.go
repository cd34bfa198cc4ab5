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

package publishers

import (
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMQTTPublisher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		broker string
		topic  string
		filter []string
	}{
		{
			name:   "with filter",
			broker: "localhost:1883",
			topic:  "sharemount/events",
			filter: []string{models.NotificationVolumesMounted, models.NotificationVolumesUnmounted},
		},
		{
			name:   "without filter",
			broker: "broker.example.com:8883",
			topic:  "notifications",
			filter: nil,
		},
		{
			name:   "empty filter",
			broker: "test:1883",
			topic:  "test/topic",
			filter: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := NewMQTTPublisher(tt.broker, tt.topic, tt.filter)

			assert.NotNil(t, publisher)
			assert.Equal(t, tt.broker, publisher.broker)
			assert.Equal(t, tt.topic, publisher.topic)
			assert.Equal(t, tt.filter, publisher.filter)
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		wantMsg string
		filter  []string
		want    bool
	}{
		{
			name:    "empty filter matches all",
			filter:  []string{},
			method:  models.NotificationVolumesMounted,
			want:    true,
			wantMsg: "empty filter should match all notifications",
		},
		{
			name:    "nil filter matches all",
			filter:  nil,
			method:  models.NotificationVolumesDisconnected,
			want:    true,
			wantMsg: "nil filter should match all notifications",
		},
		{
			name:    "method in filter",
			filter:  []string{models.NotificationVolumesMounted, models.NotificationVolumesUnmounted},
			method:  models.NotificationVolumesMounted,
			want:    true,
			wantMsg: "should match when method is in filter",
		},
		{
			name:    "method not in filter",
			filter:  []string{models.NotificationVolumesMounted, models.NotificationVolumesUnmounted},
			method:  models.NotificationSyncCompleted,
			want:    false,
			wantMsg: "should not match when method not in filter",
		},
		{
			name:    "single item filter match",
			filter:  []string{models.NotificationVolumesReconnecting},
			method:  models.NotificationVolumesReconnecting,
			want:    true,
			wantMsg: "should match single item in filter",
		},
		{
			name:    "case sensitive",
			filter:  []string{models.NotificationVolumesMounted},
			method:  "Volumes.Mounted",
			want:    false,
			wantMsg: "filter matching should be case-sensitive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := &MQTTPublisher{
				filter: tt.filter,
			}

			result := publisher.matchesFilter(tt.method)

			assert.Equal(t, tt.want, result, tt.wantMsg)
		})
	}
}

func TestPublish_Success(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("localhost:1883", "test/topic", nil)
	publisher.client = mockClient

	err := publisher.Publish(models.Notification{
		Method: models.NotificationVolumesMounted,
		Params: []byte(`{"volume_name":"projects","mount_point":"/Volumes/projects"}`),
	})
	require.NoError(t, err)

	require.Equal(t, 1, mockClient.getPublishedCount())

	msg := mockClient.getPublished(0)
	assert.Equal(t, "test/topic", msg.topic)
	payload, ok := msg.payload.([]byte)
	require.True(t, ok, "payload should be raw bytes")
	assert.JSONEq(t, `{
		"method": "volumes.mounted",
		"params": {"volume_name":"projects","mount_point":"/Volumes/projects"}
	}`, string(payload))
}

func TestPublish_FilteredOut(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("localhost:1883", "test/topic",
		[]string{models.NotificationSyncCompleted})
	publisher.client = mockClient

	err := publisher.Publish(models.Notification{
		Method: models.NotificationVolumesMounted,
		Params: []byte(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mockClient.getPublishedCount())

	err = publisher.Publish(models.Notification{
		Method: models.NotificationSyncCompleted,
		Params: []byte(`{"mount_point":"/Volumes/projects","copied":3}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, mockClient.getPublishedCount())
}

func TestPublish_Error(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true
	mockClient.publishError = assert.AnError

	publisher := NewMQTTPublisher("localhost:1883", "test/topic", nil)
	publisher.client = mockClient

	err := publisher.Publish(models.Notification{
		Method: models.NotificationVolumesUnmounted,
		Params: []byte(`{}`),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestStop_WithConnectedClient(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("localhost:1883", "test", nil)
	publisher.client = mockClient

	publisher.Stop()

	assert.Equal(t, 1, mockClient.disconnectCall)
	assert.False(t, mockClient.IsConnected())
}

func TestStop_NoClient(t *testing.T) {
	t.Parallel()

	publisher := NewMQTTPublisher("localhost:1883", "test", nil)

	// Stop before Start must not panic.
	publisher.Stop()
}
