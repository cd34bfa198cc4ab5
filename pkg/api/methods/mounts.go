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
	"github.com/ShareMountProject/sharemount-core/pkg/mounts"
	"github.com/rs/zerolog/log"
)

// Shared handler errors. The server maps these onto JSON-RPC error objects.
var (
	ErrMissingParams = validation.ErrMissingParams
	ErrInvalidParams = validation.ErrInvalidParams
	ErrNotAllowed    = errors.New("not allowed")
)

// NoContent is returned by handlers that succeed with nothing to report.
type NoContent struct{}

func HandleMounts(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received mounts request")

	resp := models.MountsResponse{
		Volumes: env.State.MountedVolumes(),
	}

	if lastErr := env.State.LastMountError(); lastErr != nil {
		resp.LastError = lastErr
	}

	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleMount(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received mount request")

	var params models.MountParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	cfg, err := mountConfigFromParams(env, params)
	if err != nil {
		return nil, err
	}

	creds := credentialsFromParams(params.Username, params.Password, params.Domain)

	if params.Remember && creds != nil {
		err := env.Vault.Store(env.State.GetContext(), cfg.Server, cfg.Share, *creds)
		if err != nil {
			// The mount can still go ahead, the user just won't get the
			// saved login next time.
			log.Error().Err(err).
				Str("server", cfg.Server).
				Str("share", cfg.Share).
				Msg("storing credentials")
		}
	}

	volume, err := env.Mounts.Mount(env.State.GetContext(), cfg, creds)
	if err != nil {
		log.Error().Err(err).
			Str("server", cfg.Server).
			Str("share", cfg.Share).
			Msg("mount failed")
		return nil, fmt.Errorf("mount failed: %w", err)
	}

	return volume, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleUnmount(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received unmount request")

	var params models.UnmountParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	err := env.Mounts.Unmount(env.State.GetContext(), params.MountPoint)
	if err != nil {
		log.Error().Err(err).
			Str("mountPoint", params.MountPoint).
			Msg("unmount failed")
		return nil, fmt.Errorf("unmount failed: %w", err)
	}

	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleAutoMount(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received automount request")
	return env.Mounts.AutoMount(env.State.GetContext()), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleAutoMountCancel(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received automount cancel request")
	env.Mounts.CancelAutoMount()
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleReconnectCancel(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received reconnect cancel request")

	// No params at all means cancel everything, same as an empty mount point.
	var params models.ReconnectCancelParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, err
		}
	}

	if params.MountPoint == "" {
		cancelled := env.Mounts.CancelReconnects()
		log.Info().Int("cancelled", cancelled).Msg("cancelled all pending reconnects")
		return NoContent{}, nil
	}

	if !env.Mounts.CancelReconnect(params.MountPoint) {
		return nil, fmt.Errorf("no pending reconnect for %s", params.MountPoint)
	}

	return NoContent{}, nil
}

// mountConfigFromParams resolves the mount target for a mount request,
// either a saved configuration by ID or an ad hoc server and share.
func mountConfigFromParams(
	env requests.RequestEnv, //nolint:gocritic // single-use parameter in API handler
	params models.MountParams,
) (mounts.Config, error) {
	if params.ConfigID != nil {
		cfg, err := env.Config.MountConfig(*params.ConfigID)
		if err != nil {
			return mounts.Config{}, fmt.Errorf("unknown config: %w", err)
		}
		return cfg, nil
	}

	if params.Server == nil || params.Share == nil {
		return mounts.Config{}, ErrInvalidParams
	}

	cfg := mounts.NewConfig(*params.Server, *params.Share)
	if params.MountPoint != nil {
		cfg.MountPoint = *params.MountPoint
	}
	return cfg, nil
}

// credentialsFromParams builds Credentials from optional request fields,
// returning nil when no username was given so the mount falls back to the
// vault or a guest session.
func credentialsFromParams(username, password, domain *string) *mounts.Credentials {
	if username == nil {
		return nil
	}
	creds := mounts.Credentials{Username: *username}
	if password != nil {
		creds.Password = *password
	}
	if domain != nil {
		creds.Domain = *domain
	}
	return &creds
}
