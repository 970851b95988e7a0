// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jit

import "sync/atomic"

// CancellationToken is consulted at chunk boundaries only: the hot row
// loop never checks it mid-chunk. A query aborts at the start of the
// next before_chunk once Cancelled reports true.
type CancellationToken interface {
	Cancelled() bool
}

// signalCancellationToken is a chan-backed CancellationToken: once ch
// is closed, Cancelled reports true forever after; a value sent on ch
// instead is consumed by the one Cancelled call that receives it.
// cmd/jitdemo closes this channel from an os/signal handler so Ctrl-C
// stops the demo query at the next chunk boundary.
type signalCancellationToken struct {
	ch <-chan struct{}
}

// NewSignalCancellationToken returns a CancellationToken backed by ch.
func NewSignalCancellationToken(ch <-chan struct{}) CancellationToken {
	return &signalCancellationToken{ch: ch}
}

func (t *signalCancellationToken) Cancelled() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// noopCancellationToken never cancels.
type noopCancellationToken struct{}

func (noopCancellationToken) Cancelled() bool { return false }

// NoCancellation is the shared no-op CancellationToken, used wherever
// no external cancellation source is wired.
var NoCancellation CancellationToken = noopCancellationToken{}

// ManualCancellationToken is an atomic-bool-backed CancellationToken a
// caller can flip directly, without a channel or signal behind it.
type ManualCancellationToken struct {
	flag atomic.Bool
}

// Cancel requests that the next before_chunk stop iteration.
func (t *ManualCancellationToken) Cancel() { t.flag.Store(true) }

// Cancelled reports whether Cancel has been called.
func (t *ManualCancellationToken) Cancelled() bool { return t.flag.Load() }
