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
	"fmt"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models"
	"github.com/ShareMountProject/sharemount-core/pkg/api/models/requests"
	"github.com/ShareMountProject/sharemount-core/pkg/api/validation"
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/rs/zerolog/log"
)

func HandleConfigs(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received configs request")
	return models.ConfigsResponse{
		Configs: env.Config.MountConfigs(),
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleNewConfig(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received new config request")

	var params models.NewConfigParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	cfg := mounts.NewConfig(params.Server, params.Share)
	cfg.MountPoint = params.MountPoint
	cfg.SyncPath = params.SyncPath
	cfg.AutoMount = params.AutoMount
	cfg.SaveCredentials = params.SaveCredentials
	cfg.SyncEnabled = params.SyncEnabled

	saved, err := env.Config.AddMountConfig(cfg)
	if err != nil {
		log.Error().Err(err).Msg("adding mount config")
		return nil, fmt.Errorf("adding config: %w", err)
	}

	if params.Username != nil && saved.SaveCredentials {
		creds := credentialsFromParams(params.Username, params.Password, params.Domain)
		err := env.Vault.Store(env.State.GetContext(), saved.Server, saved.Share, *creds)
		if err != nil {
			log.Error().Err(err).
				Str("server", saved.Server).
				Str("share", saved.Share).
				Msg("storing credentials for new config")
		}
	}

	return saved, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleUpdateConfig(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received update config request")

	var params models.UpdateConfigParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	cfg, err := env.Config.MountConfig(params.ID)
	if err != nil {
		return nil, fmt.Errorf("unknown config: %w", err)
	}

	if params.Server != nil {
		cfg.Server = *params.Server
	}
	if params.Share != nil {
		cfg.Share = *params.Share
	}
	if params.MountPoint != nil {
		cfg.MountPoint = *params.MountPoint
	}
	if params.SyncPath != nil {
		cfg.SyncPath = *params.SyncPath
	}
	if params.AutoMount != nil {
		cfg.AutoMount = *params.AutoMount
	}
	if params.SaveCredentials != nil {
		cfg.SaveCredentials = *params.SaveCredentials
	}
	if params.SyncEnabled != nil {
		cfg.SyncEnabled = *params.SyncEnabled
	}

	updated, err := env.Config.UpdateMountConfig(cfg)
	if err != nil {
		log.Error().Err(err).Str("id", params.ID).Msg("updating mount config")
		return nil, fmt.Errorf("updating config: %w", err)
	}

	return updated, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleDeleteConfig(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received delete config request")

	var params models.DeleteConfigParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	cfg, err := env.Config.MountConfig(params.ID)
	if err != nil {
		return nil, fmt.Errorf("unknown config: %w", err)
	}

	if err := env.Config.RemoveMountConfig(params.ID); err != nil {
		log.Error().Err(err).Str("id", params.ID).Msg("removing mount config")
		return nil, fmt.Errorf("deleting config: %w", err)
	}

	// Saved credentials go with the config. Another config for the same
	// share keeps them alive.
	if cfg.SaveCredentials && !shareStillConfigured(env, cfg) {
		err := env.Vault.Delete(env.State.GetContext(), cfg.Server, cfg.Share)
		if err != nil {
			log.Error().Err(err).
				Str("server", cfg.Server).
				Str("share", cfg.Share).
				Msg("deleting credentials for removed config")
		}
	}

	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func shareStillConfigured(env requests.RequestEnv, cfg mounts.Config) bool {
	for _, other := range env.Config.MountConfigs() {
		if other.ID != cfg.ID && other.Server == cfg.Server && other.Share == cfg.Share {
			return true
		}
	}
	return false
}
