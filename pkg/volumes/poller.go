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

package volumes

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"
)

const reachProbeTimeout = 2 * time.Second

// ReachFunc reports whether an SMB server currently answers on its
// service port. The poller uses it to tell an intentional eject (server
// still reachable) from a connection loss when a tracked mount point
// disappears from the mount table.
type ReachFunc func(ctx context.Context, server string) bool

type watchedMount struct {
	server  string
	share   string
	present bool
}

// Poller derives volume events by polling the system mount table. Events
// are edge-triggered: a state change is reported once, not on every tick
// the state persists.
type Poller struct {
	clock    clockwork.Clock
	reach    ReachFunc
	list     func(ctx context.Context) ([]disk.PartitionStat, error)
	watched  map[string]*watchedMount
	lastSeen map[string]bool
	events   chan mounts.Event
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
	mu       sync.Mutex
	running  bool
}

// NewPoller creates a mount table poller. A nil clock falls back to the
// wall clock and a nil reach falls back to a plain TCP dial of port 445.
func NewPoller(interval time.Duration, clock clockwork.Clock, reach ReachFunc) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if reach == nil {
		reach = dialReach
	}
	return &Poller{
		clock:    clock,
		reach:    reach,
		interval: interval,
		list: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, true)
		},
		watched:  make(map[string]*watchedMount),
		lastSeen: make(map[string]bool),
		events:   make(chan mounts.Event, 64),
	}
}

func dialReach(ctx context.Context, server string) bool {
	dialer := &net.Dialer{Timeout: reachProbeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(server, "445"))
	if err != nil {
		return false
	}
	if closeErr := conn.Close(); closeErr != nil {
		log.Debug().Err(closeErr).Msg("error closing reachability probe")
	}
	return true
}

func (p *Poller) Events() <-chan mounts.Event {
	return p.events
}

func (p *Poller) StartMonitoring() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		log.Debug().Msg("volume poller already running")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.running = true
	p.mu.Unlock()

	// Take a silent baseline so mounts that predate monitoring do not
	// produce spurious events on the first tick.
	p.baseline(ctx)

	go p.run(ctx, done)
	return nil
}

func (p *Poller) StopMonitoring() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.running = false
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Poller) AddMountPoint(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.watched[path]; ok {
		return
	}
	// present starts true: registration happens right after a successful
	// mount, so the first tick must not report it as newly mounted.
	p.watched[path] = &watchedMount{present: true}
}

func (p *Poller) RemoveMountPoint(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.watched, path)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log.Debug().Msgf("volume poller started, interval %s", p.interval)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("volume poller stopped")
			return
		case <-ticker.Chan():
			p.tick(ctx)
		}
	}
}

func (p *Poller) baseline(ctx context.Context) {
	current, err := p.smbMounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("volume poller baseline read failed")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = make(map[string]bool, len(current))
	for mp, part := range current {
		p.lastSeen[mp] = true
		if w, ok := p.watched[mp]; ok {
			w.present = true
			w.server, w.share = mounts.ParseDevice(part.Device)
		}
	}
	for mp, w := range p.watched {
		if _, ok := current[mp]; !ok {
			w.present = false
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	current, err := p.smbMounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("volume poller could not read mount table")
		return
	}

	var appeared []mounts.Event
	type disappearance struct {
		mountPoint string
		server     string
	}
	var gone []disappearance

	p.mu.Lock()
	for mp, w := range p.watched {
		part, ok := current[mp]
		if ok {
			w.server, w.share = mounts.ParseDevice(part.Device)
			if !w.present {
				w.present = true
				appeared = append(appeared, p.mountedEvent(mp, part))
			}
			continue
		}
		if w.present {
			w.present = false
			gone = append(gone, disappearance{mountPoint: mp, server: w.server})
		}
	}
	for mp, part := range current {
		if _, ok := p.watched[mp]; ok {
			continue
		}
		if !p.lastSeen[mp] {
			appeared = append(appeared, p.mountedEvent(mp, part))
		}
	}
	p.lastSeen = make(map[string]bool, len(current))
	for mp := range current {
		p.lastSeen[mp] = true
	}
	p.mu.Unlock()

	// Reachability probes and channel sends happen outside the lock.
	for _, d := range gone {
		kind := mounts.EventDisconnected
		if d.server != "" && p.reach(ctx, d.server) {
			kind = mounts.EventUnmounted
		}
		log.Info().Msgf("volume %s: %s", d.mountPoint, kind)
		p.send(ctx, mounts.Event{Kind: kind, MountPoint: d.mountPoint})
	}
	for _, ev := range appeared {
		log.Info().Msgf("volume %s: %s", ev.MountPoint, ev.Kind)
		p.send(ctx, ev)
	}
}

func (p *Poller) mountedEvent(mountPoint string, part disk.PartitionStat) mounts.Event {
	server, share := mounts.ParseDevice(part.Device)
	return mounts.Event{
		Kind:       mounts.EventMounted,
		MountPoint: mountPoint,
		Volume: &mounts.Volume{
			ID:         uuid.NewString(),
			Server:     server,
			Share:      share,
			MountPoint: mountPoint,
			VolumeName: filepath.Base(mountPoint),
			Status:     mounts.StatusMounted,
			MountedAt:  p.clock.Now(),
		},
	}
}

func (p *Poller) send(ctx context.Context, ev mounts.Event) {
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}

func (p *Poller) smbMounts(ctx context.Context) (map[string]disk.PartitionStat, error) {
	parts, err := p.list(ctx)
	if err != nil {
		return nil, err
	}
	current := make(map[string]disk.PartitionStat)
	for _, part := range parts {
		if strings.EqualFold(part.Fstype, "smbfs") {
			current[part.Mountpoint] = part
		}
	}
	return current, nil
}
