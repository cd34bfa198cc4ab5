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

package helpers

import (
	"context"
	"net/http"
	"time"

	"github.com/ShareMountProject/sharemount-core/pkg/api/client"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/rs/zerolog/log"
)

// WaitForInternet blocks until something answers on the network or maxTries
// runs out. Used before the startup auto-mount batch so shares have a
// chance of resolving.
func WaitForInternet(maxTries int) bool {
	for i := 0; i < maxTries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com", http.NoBody)
		if err != nil {
			cancel()
			continue
		}

		resp, err := http.DefaultClient.Do(req)
		cancel()
		if err == nil && resp != nil {
			if err := resp.Body.Close(); err != nil {
				log.Error().Err(err).Msg("error closing response body")
			}
			return true
		}
		time.Sleep(1 * time.Second)
	}
	return false
}

// IsServiceRunning reports whether a local service instance is answering
// on the configured API port.
func IsServiceRunning(cfg *config.Instance) bool {
	_, err := client.LocalClient(context.Background(), cfg, models.MethodVersion, "")
	if err != nil {
		log.Debug().Err(err).Msg("error checking if service running")
		return false
	}
	return true
}
