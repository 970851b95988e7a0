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

// LiteralInstall installs a build-time literal into a tuple slot once
// per query, at before_query.
type LiteralInstall struct {
	Slot  int
	Value Value
}

// ParameterInstall installs an externally-supplied parameter into a
// tuple slot once per query.
type ParameterInstall struct {
	Slot  int
	Param ParameterID
}

// ValueIDPredicate names a comparison the Translator accelerated: the
// literal/parameter slot it targets must be re-derived from the
// chunk's dictionary at every before_chunk, since value-ids are only
// stable within one chunk's dictionary.
type ValueIDPredicate struct {
	// BindingIndex is the index into ReadTuples.Bindings of the
	// dictionary-backed column side of the comparison.
	BindingIndex int
	LiteralSlot  int
	Kind         NodeKind
	Literal      Value
}

// ReadTuples is the chain's head: it owns reader bindings, literal and
// parameter slots, the value-id predicate list, and (via Chain.Execute
// in driver.go) the row loop. It is deliberately not an Operator: it
// does not itself sit in the successor chain.
type ReadTuples struct {
	Bindings     []ColumnBinding
	Literals     []LiteralInstall
	Parameters   []ParameterInstall
	ValueIDPreds []ValueIDPredicate
	// LimitExpr, if set, is evaluated once at before_query and its
	// integer result seeds context.limit_rows.
	LimitExpr *ExpressionNode
	// NeedsMVCC requests before_chunk to snapshot MVCC arrays / the
	// referenced table + position list for this chunk.
	NeedsMVCC bool

	First Operator // the chain's first real consumer, or nil (bare scan)

	readers          []SegmentReader
	fingerprints     []EncodingFingerprint
	haveFingerprints bool
}

// BeforeQuery runs once per query execution: sizes nothing (the
// RuntimeContext is already sized by the caller), installs literal and
// parameter values, and evaluates the optional Limit row count.
func (r *ReadTuples) BeforeQuery(ctx *RuntimeContext, params map[ParameterID]Value) error {
	r.haveFingerprints = false
	ctx.limitRows = -1
	for _, l := range r.Literals {
		ctx.Tuple.SetValue(l.Slot, l.Value)
	}
	for _, p := range r.Parameters {
		v, ok := params[p.Param]
		if !ok {
			return invalidValuef("no value supplied for parameter %d", p.Param)
		}
		ctx.Tuple.SetValue(p.Slot, v)
	}
	if r.LimitExpr != nil {
		Evaluate(r.LimitExpr, ctx)
		if ctx.Tuple.IsNull(r.LimitExpr.Result.Index) {
			return invalidValuef("limit expression evaluated to null")
		}
		n := ctx.Tuple.GetInt64(r.LimitExpr.Result.Index)
		if n < 0 {
			return invalidValuef("limit expression evaluated to negative value %d", n)
		}
		ctx.limitRows = int(n)
	}
	return nil
}

// BeforeChunk runs once per chunk: (re)binds readers, installs
// per-chunk value-id predicates, and snapshots MVCC state. It
// returns true iff every reader's fingerprint matches the previous
// chunk's (the same-type fast path).
//
// The fingerprints are computed straight from the chunk's segments
// (fingerprintsOfBindings), before any reader is built, so that a
// same-type chunk skips bindReaders entirely: the existing readers are
// repointed at the new segments in place via Rebind instead of being
// reallocated.
func (r *ReadTuples) BeforeChunk(ctx *RuntimeContext, chunk Chunk) (sameType bool, err error) {
	fps := fingerprintsOfBindings(chunk, r.Bindings)
	sameType = r.haveFingerprints && fingerprintsEqual(fps, r.fingerprints)

	if sameType {
		for i, b := range r.Bindings {
			r.readers[i].Rebind(chunk.GetSegment(b.ColumnIndex))
		}
	} else {
		r.readers = bindReaders(chunk, r.Bindings)
	}
	r.fingerprints = fps
	r.haveFingerprints = true

	for _, vp := range r.ValueIDPreds {
		seg, ok := chunk.GetSegment(r.Bindings[vp.BindingIndex].ColumnIndex).(*DictionarySegment)
		if !ok {
			return false, typeMismatchf("value-id predicate bound to a non-dictionary column")
		}
		id := PrecomputeValueID(seg, vp.Literal, vp.Kind)
		ctx.Tuple.SetInt64(vp.LiteralSlot, int64(id))
	}

	ctx.chunkSize = chunk.Size()
	ctx.chunkOffset = 0
	ctx.chunkID = chunk.ChunkID()
	ctx.readers = r.readers

	// The previous chunk's MVCC read window closes here; the guard is
	// held from one before_chunk to the next, not for the duration of a
	// single row.
	if ctx.mvccLocked {
		ctx.mvccGuard.Unlock()
		ctx.mvccLocked = false
	}
	if r.NeedsMVCC {
		ctx.mvccGuard.Lock()
		ctx.mvccLocked = true
		if chunk.HasMVCCData() {
			ctx.mvcc = chunk.MVCCArrays()
			ctx.positions = nil
			ctx.refTable = nil
		} else {
			ctx.positions = chunk.PositionList()
			ctx.refTable = chunk.ReferencedTable()
			ctx.mvcc = nil
		}
	}
	return sameType, nil
}

// advanceReaders moves every bound reader to the next row, called once
// per row after the chain has run on it.
func advanceReaders(readers []SegmentReader) {
	for _, r := range readers {
		r.Advance()
	}
}
