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
	"math"
	"sync"

	"github.com/petermattis/goid"
)

// CommitID is a commit sequence number.
type CommitID uint64

// TxnID identifies the transaction owning a row version.
type TxnID uint64

// MaxCommitID is the sentinel commit id marking "not deleted".
const MaxCommitID CommitID = math.MaxUint64

// Snapshot is the (transaction_id, snapshot_commit_id) pair that
// defines MVCC visibility for one query execution.
type Snapshot struct {
	TxnID            TxnID
	SnapshotCommitID CommitID
	CurrentCommitID  CommitID // this transaction's own uncommitted writes, if any
}

// MVCCArrays are the parallel per-row version arrays attached to a
// data chunk.
type MVCCArrays struct {
	BeginCid []CommitID
	EndCid   []CommitID
	Tid      []TxnID
}

// Visible reports whether a row version is visible to snap:
//
//   - visible if tid == tx and the row was inserted by this
//     transaction (begin_cid > snap and end_cid == MAX);
//   - otherwise visible if begin_cid <= snap and (end_cid == MAX or
//     end_cid > snap) and tid != tx.
func Visible(snap Snapshot, begin, end CommitID, tid TxnID) bool {
	if tid == snap.TxnID {
		return begin > snap.SnapshotCommitID && end == MaxCommitID
	}
	return begin <= snap.SnapshotCommitID && (end == MaxCommitID || end > snap.SnapshotCommitID) && tid != snap.TxnID
}

// VisibleAt is Visible indexed against a chunk's MVCC arrays.
func VisibleAt(snap Snapshot, arrays *MVCCArrays, row int) bool {
	return Visible(snap, arrays.BeginCid[row], arrays.EndCid[row], arrays.Tid[row])
}

// reentryLock is a goroutine-reentrant mutex: the same query-owning
// goroutine may legitimately re-acquire it across successive
// before_chunk calls without deadlocking itself.
type reentryLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	count uint64
}

func newReentryLock() *reentryLock {
	l := &reentryLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *reentryLock) Lock() {
	rid := goid.Get()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner == rid {
		l.count++
		return
	}
	for l.owner != 0 {
		l.cond.Wait()
	}
	l.owner = rid
	l.count = 1
}

func (l *reentryLock) Unlock() {
	rid := goid.Get()
	l.mu.Lock()
	defer l.mu.Unlock()
	assertFunc(l.count != 0 && l.owner == rid, "unlock of unheld mvcc guard")
	l.count--
	if l.count == 0 {
		l.owner = 0
		l.cond.Signal()
	}
}
