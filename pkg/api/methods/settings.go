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

package methods

import (
	"errors"
	"fmt"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models/requests"
	"github.com/ShareMountProject/sharemount-core/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

func HandleSettings(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received settings request")

	return models.SettingsResponse{
		DebugLogging:         env.Config.DebugLogging(),
		AutoReconnect:        env.Config.AutoReconnect(),
		AutoMountOnStart:     env.Config.AutoMountOnStart(),
		NotificationsEnabled: env.Config.NotificationsEnabled(),
		TelemetryEnabled:     env.Config.TelemetryEnabled(),
		VaultBackend:         env.Config.VaultBackend(),
		MountTimeout:         env.Config.MountTimeout().String(),
		ReconnectDelay:       env.Config.ReconnectDelay().String(),
		PollInterval:         env.Config.PollInterval().String(),
		ScanTimeout:          env.Config.ScanTimeout().String(),
		SyncInterval:         env.Config.SyncInterval().String(),
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}

	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
	}

	if params.AutoReconnect != nil {
		log.Info().Bool("autoReconnect", *params.AutoReconnect).Msg("update")
		env.Config.SetAutoReconnect(*params.AutoReconnect)
	}

	if params.AutoMountOnStart != nil {
		log.Info().Bool("autoMountOnStart", *params.AutoMountOnStart).Msg("update")
		env.Config.SetAutoMountOnStart(*params.AutoMountOnStart)
	}

	if params.NotificationsEnabled != nil {
		log.Info().Bool("notificationsEnabled", *params.NotificationsEnabled).Msg("update")
		env.Config.SetNotificationsEnabled(*params.NotificationsEnabled)
	}

	if params.TelemetryEnabled != nil {
		log.Info().Bool("telemetryEnabled", *params.TelemetryEnabled).Msg("update")
		env.Config.SetTelemetryEnabled(*params.TelemetryEnabled)
	}

	if params.VaultBackend != nil {
		log.Info().Str("vaultBackend", *params.VaultBackend).Msg("update")
		if err := env.Config.SetVaultBackend(*params.VaultBackend); err != nil {
			return nil, fmt.Errorf("setting vault backend: %w", err)
		}
	}

	if params.MountTimeout != nil {
		log.Info().Str("mountTimeout", *params.MountTimeout).Msg("update")
		if err := env.Config.SetMountTimeout(*params.MountTimeout); err != nil {
			return nil, fmt.Errorf("setting mount timeout: %w", err)
		}
	}

	if params.ReconnectDelay != nil {
		log.Info().Str("reconnectDelay", *params.ReconnectDelay).Msg("update")
		if err := env.Config.SetReconnectDelay(*params.ReconnectDelay); err != nil {
			return nil, fmt.Errorf("setting reconnect delay: %w", err)
		}
	}

	if params.ScanTimeout != nil {
		log.Info().Str("scanTimeout", *params.ScanTimeout).Msg("update")
		if err := env.Config.SetScanTimeout(*params.ScanTimeout); err != nil {
			return nil, fmt.Errorf("setting scan timeout: %w", err)
		}
	}

	if params.SyncInterval != nil {
		log.Info().Str("syncInterval", *params.SyncInterval).Msg("update")
		if err := env.Config.SetSyncInterval(*params.SyncInterval); err != nil {
			return nil, fmt.Errorf("setting sync interval: %w", err)
		}
	}

	if err := env.Config.Save(); err != nil {
		log.Error().Err(err).Msg("saving settings")
		return nil, errors.New("error saving settings")
	}

	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsReload(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings reload request")

	if !env.IsLocal {
		return nil, ErrNotAllowed
	}

	if err := env.Config.Load(); err != nil {
		log.Error().Err(err).Msg("error loading settings")
		return nil, errors.New("error loading settings")
	}

	return NoContent{}, nil
}
