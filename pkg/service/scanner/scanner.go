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

// Package scanner discovers SMB servers on the local network over mDNS.
package scanner

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

// ServiceType is the DNS-SD service type advertised by SMB servers.
const ServiceType = "_smb._tcp"

// mdnsDomain is the conventional mDNS domain.
const mdnsDomain = "local."

// Scan browses for SMB servers for up to timeout and returns everything
// that answered, deduplicated by hostname and sorted by name. The timeout
// elapsing is the normal end of a scan, not an error; a parent context
// ending early surfaces as cancelled or scan_timeout.
func Scan(ctx context.Context, timeout time.Duration) ([]models.ScanHost, error) {
	if err := ctx.Err(); err != nil {
		return nil, scanErr(mounts.ErrCancelled, err)
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, scanErr(mounts.ErrScannerInit, err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []models.ScanHost, 1)
	go func() {
		collected <- collect(entries)
	}()

	log.Info().Msgf("scanning network for SMB servers (%s)", timeout)
	if err := resolver.Browse(browseCtx, ServiceType, mdnsDomain, entries); err != nil {
		// Browse never took ownership of the channel, so close it here
		// to release the collector.
		close(entries)
		<-collected
		return nil, scanErr(mounts.ErrScannerInit, err)
	}

	// Browse closes the entries channel once the context ends.
	<-browseCtx.Done()
	hosts := <-collected

	// Distinguish this scan running its course from the caller's context
	// cutting it short.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return hosts, scanErr(mounts.ErrScanTimeout, ctxErr)
		}
		return hosts, scanErr(mounts.ErrCancelled, ctxErr)
	}

	log.Info().Msgf("network scan found %d SMB server(s)", len(hosts))
	return hosts, nil
}

func collect(entries <-chan *zeroconf.ServiceEntry) []models.ScanHost {
	seen := make(map[string]bool)
	var hosts []models.ScanHost
	for entry := range entries {
		host := hostFromEntry(entry)
		if host.Host == "" || seen[host.Host] {
			continue
		}
		seen[host.Host] = true
		hosts = append(hosts, host)
		log.Debug().Msgf("scan: found %s (%s)", host.Name, host.Host)
	}
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Name < hosts[j].Name
	})
	return hosts
}

func hostFromEntry(entry *zeroconf.ServiceEntry) models.ScanHost {
	host := models.ScanHost{
		Name: entry.Instance,
		Host: strings.TrimSuffix(entry.HostName, "."),
		Port: entry.Port,
	}
	if host.Name == "" {
		host.Name = host.Host
	}
	switch {
	case len(entry.AddrIPv4) > 0:
		host.Addr = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host.Addr = entry.AddrIPv6[0].String()
	}
	return host
}

func scanErr(kind mounts.ErrorKind, err error) error {
	return &mounts.Error{
		Op:   "scan",
		Kind: kind,
		Err:  err,
	}
}
