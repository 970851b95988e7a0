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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Visible_FourRowScenario(t *testing.T) {
	// Mirrors the four-row MVCC visibility walkthrough: a row committed
	// before the snapshot, a row deleted before the snapshot, a row
	// inserted by this same transaction, and a row inserted by another
	// in-flight transaction.
	snap := Snapshot{TxnID: 100, SnapshotCommitID: 50}

	tests := []struct {
		name  string
		begin CommitID
		end   CommitID
		tid   TxnID
		want  bool
	}{
		{"committed_before_snapshot_not_deleted", 10, MaxCommitID, 1, true},
		{"deleted_before_snapshot", 10, 20, 1, false},
		{"deleted_after_snapshot_still_visible", 10, 60, 1, true},
		{"inserted_after_snapshot_by_other_txn", 60, MaxCommitID, 2, false},
		{"inserted_by_this_txn_own_write", 60, MaxCommitID, 100, true},
		{"inserted_by_this_txn_but_not_committed_yet", 10, MaxCommitID, 100, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Visible(snap, tc.begin, tc.end, tc.tid))
		})
	}
}

func Test_VisibleAt_IndexesArrays(t *testing.T) {
	snap := Snapshot{TxnID: 100, SnapshotCommitID: 50}
	arrays := &MVCCArrays{
		BeginCid: []CommitID{10, 10, 60},
		EndCid:   []CommitID{MaxCommitID, 20, MaxCommitID},
		Tid:      []TxnID{1, 1, 2},
	}
	assert.True(t, VisibleAt(snap, arrays, 0))
	assert.False(t, VisibleAt(snap, arrays, 1))
	assert.False(t, VisibleAt(snap, arrays, 2))
}

func Test_reentryLock_SameGoroutineReenters(t *testing.T) {
	l := newReentryLock()
	l.Lock()
	l.Lock() // same goroutine: must not deadlock
	l.Unlock()
	l.Unlock()
}

func Test_reentryLock_UnlockWithoutLockAsserts(t *testing.T) {
	l := newReentryLock()
	assert.Panics(t, func() { l.Unlock() })
}

func Test_ReadTuples_BeforeChunk_HoldsGuardAcrossChunkNotWithinIt(t *testing.T) {
	mvcc := &MVCCArrays{
		BeginCid: []CommitID{0},
		EndCid:   []CommitID{MaxCommitID},
		Tid:      []TxnID{1},
	}
	chunk0 := NewMemChunk(0, 1, nil, mvcc)
	chunk1 := NewMemChunk(1, 1, nil, mvcc)

	r := &ReadTuples{NeedsMVCC: true}
	ctx := NewRuntimeContext(nil, nil)

	_, err := r.BeforeChunk(ctx, chunk0)
	assert.NoError(t, err)
	assert.True(t, ctx.mvccLocked, "guard held for the duration of the chunk")

	_, err = r.BeforeChunk(ctx, chunk1)
	assert.NoError(t, err)
	assert.True(t, ctx.mvccLocked, "guard released and immediately re-acquired for the new chunk")

	// The lock count must be balanced (one hold per chunk, not one per
	// call ever accumulating): a single Unlock fully releases it.
	assert.NotPanics(t, func() { ctx.mvccGuard.Unlock() })
	assert.Panics(t, func() { ctx.mvccGuard.Unlock() }, "already released")
}

func Test_ReadTuples_BeforeChunk_NoGuardWhenMVCCNotNeeded(t *testing.T) {
	chunk := NewMemChunk(0, 1, nil, nil)
	r := &ReadTuples{NeedsMVCC: false}
	ctx := NewRuntimeContext(nil, nil)

	_, err := r.BeforeChunk(ctx, chunk)
	assert.NoError(t, err)
	assert.False(t, ctx.mvccLocked)
}
