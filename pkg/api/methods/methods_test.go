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
	"encoding/json"
	"testing"

	"github.com/ShareMountProject/sharemount-core/pkg/api/models/requests"
	"github.com/ShareMountProject/sharemount-core/pkg/config"
	"github.com/ShareMountProject/sharemount-core/pkg/service/state"
	"github.com/ShareMountProject/sharemount-core/pkg/testing/mocks"
	"github.com/stretchr/testify/require"
)

// testEnv bundles a request environment with its mocks for handler tests.
type testEnv struct {
	cfg      *config.Instance
	st       *state.State
	mountSvc *mocks.MockMountService
	vault    *mocks.MockVault
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	st, _ := state.NewState()
	t.Cleanup(st.StopService)

	return &testEnv{
		cfg:      cfg,
		st:       st,
		mountSvc: mocks.NewMockMountService(),
		vault:    mocks.NewMockVault(),
	}
}

// env builds a RequestEnv with the given params already marshalled. A nil
// value leaves the params empty, as an id-only request would.
func (te *testEnv) env(t *testing.T, params any) requests.RequestEnv {
	t.Helper()

	env := requests.RequestEnv{
		Mounts:  te.mountSvc,
		Vault:   te.vault,
		Config:  te.cfg,
		State:   te.st,
		IsLocal: true,
	}

	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		env.Params = data
	}

	return env
}
