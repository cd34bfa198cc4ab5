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

package state

import (
	"context"

	"github.com/ShareMountProject/sharemount-core/pkg/helpers/syncutil"
)

// RunScope hands out the context governing an exclusive run of one
// operation, such as an auto-mount batch or a network scan. Starting a new
// run cancels the previous run's context, so goroutines from a superseded
// run can detect they have been replaced and stand down.
type RunScope struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     syncutil.RWMutex
}

func NewRunScope() *RunScope {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunScope{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the current run's context.
// It is canceled when a new run starts or the scope is canceled.
func (rs *RunScope) Context() context.Context {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.ctx
}

// NewRun cancels the current run and starts a new one derived from parent,
// so a run also ends when the service that owns the parent shuts down.
// Returns the new run's context.
func (rs *RunScope) NewRun(parent context.Context) context.Context {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cancel != nil {
		rs.cancel()
	}

	rs.ctx, rs.cancel = context.WithCancel(parent)
	return rs.ctx
}

// Cancel aborts the current run without starting a new one. Canceling an
// already-finished run is a no-op.
func (rs *RunScope) Cancel() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cancel != nil {
		rs.cancel()
	}
}
