/*
ShareMount Core
Copyright (c) 2026 The ShareMount Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of ShareMount Core.

ShareMount Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ShareMount Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ShareMount Core.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package broker fans service notifications out to multiple consumers, such
// as the WebSocket broadcaster and MQTT publishers, without letting a slow
// consumer block the service.
package broker

import (
	"context"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

type subscriber struct {
	ch      chan models.Notification
	methods map[string]bool
}

func (s *subscriber) wants(method string) bool {
	return len(s.methods) == 0 || s.methods[method]
}

// Broker reads notifications from a source channel and broadcasts each one
// to every subscriber whose filter matches. Sends are non-blocking: a full
// subscriber buffer drops the notification for that subscriber only.
type Broker struct {
	source      <-chan models.Notification
	subscribers map[int]*subscriber
	mu          syncutil.RWMutex
	nextID      int
}

func NewBroker(source <-chan models.Notification) *Broker {
	return &Broker{
		source:      source,
		subscribers: make(map[int]*subscriber),
	}
}

// Start runs the broadcast loop in a goroutine until the source channel
// closes or the context is cancelled, then closes all subscriber channels.
// The returned channel closes when the loop has exited.
func (b *Broker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case notif, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source channel closed")
					b.closeAllSubscribers()
					return
				}
				b.broadcast(notif)
			case <-ctx.Done():
				log.Debug().Msg("broker: context cancelled, shutting down")
				b.closeAllSubscribers()
				return
			}
		}
	}()
	return done
}

func (b *Broker) broadcast(notif models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		if !sub.wants(notif.Method) {
			continue
		}
		select {
		case sub.ch <- notif:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("method", notif.Method).
				Msg("subscriber channel full, dropping notification")
		}
	}
}

// Subscribe registers a consumer for every notification method. The
// bufferSize determines how many notifications can queue before further
// ones are dropped for this subscriber.
//
// Returns the notification channel and a subscription ID for Unsubscribe.
func (b *Broker) Subscribe(bufferSize int) (notifChan <-chan models.Notification, id int) {
	return b.subscribe(bufferSize, nil)
}

// SubscribeMethods registers a consumer that only receives the named
// methods. An empty method list behaves like Subscribe.
func (b *Broker) SubscribeMethods(
	bufferSize int, methods ...string,
) (notifChan <-chan models.Notification, id int) {
	return b.subscribe(bufferSize, methods)
}

func (b *Broker) subscribe(
	bufferSize int, methods []string,
) (notifChan <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	sub := &subscriber{ch: make(chan models.Notification, bufferSize)}
	if len(methods) > 0 {
		sub.methods = make(map[string]bool, len(methods))
		for _, m := range methods {
			sub.methods[m] = true
		}
	}
	b.subscribers[id] = sub

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Int("methods", len(methods)).
		Msg("new subscriber registered")

	notifChan = sub.ch
	return
}

// Unsubscribe removes a subscription and closes its channel.
// It's safe to call this multiple times with the same ID.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
		log.Debug().Int("subscriber_id", id).Msg("subscriber unsubscribed")
	}
}

// Stop closes all subscriber channels. Safe to call more than once; the
// broadcast loop also calls it on its way out.
func (b *Broker) Stop() {
	b.closeAllSubscribers()
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		close(sub.ch)
		log.Debug().Int("subscriber_id", id).Msg("closed subscriber channel on shutdown")
	}
	b.subscribers = make(map[int]*subscriber)
}
