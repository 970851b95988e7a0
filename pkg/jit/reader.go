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

// EncodingFingerprint is the compact tag identifying (segment kind,
// payload type, nullability) used to decide the same-type fast path.
type EncodingFingerprint struct {
	Kind     SegmentKind
	Payload  DataType
	Nullable bool
}

// SegmentReader binds one declared input column of the current chunk
// to a slot writer.
type SegmentReader interface {
	// ReadInto writes the reader's current row into the tuple slot.
	ReadInto(ctx *RuntimeContext, slot int)
	// Advance moves the reader to the next row; called once per row,
	// after the chain has run on the current row.
	Advance()
	// Reset rewinds the reader to row 0 of a newly bound chunk.
	Reset()
	Fingerprint() EncodingFingerprint
	// Rebind repoints the reader at a new chunk's segment without
	// re-resolving its encoding: valid only when seg's fingerprint
	// matches the one the reader was already bound with.
	Rebind(seg Segment)
}

// ColumnBinding is one declared input column: which table column, the
// slot it materialises into, and whether it should be read in
// value-id mode (selected by the Translator for predicates amenable
// to dictionary acceleration).
type ColumnBinding struct {
	ColumnIndex int
	Slot        int
	UseValueID  bool
}

// valueReader reads a ValueSegment row-by-row into a slot.
type valueReader struct {
	seg  *ValueSegment
	pos  int
	slot int
}

func (r *valueReader) Reset()   { r.pos = 0 }
func (r *valueReader) Advance() { r.pos++ }
func (r *valueReader) Fingerprint() EncodingFingerprint {
	return EncodingFingerprint{Kind: SegValue, Payload: r.seg.DataType(), Nullable: r.seg.Nullable()}
}
func (r *valueReader) Rebind(seg Segment) {
	r.seg = seg.(*ValueSegment)
	r.pos = 0
}
func (r *valueReader) ReadInto(ctx *RuntimeContext, slot int) {
	if r.seg.IsNull(r.pos) {
		ctx.Tuple.SetNull(slot, true)
		return
	}
	switch r.seg.DataType() {
	case Int32, Int64, Bool:
		ctx.Tuple.SetInt64(slot, r.seg.Int64(r.pos))
	case Float, Double:
		ctx.Tuple.SetFloat64(slot, r.seg.Float64(r.pos))
	case String:
		ctx.Tuple.SetString(slot, r.seg.String_(r.pos))
	}
}

// dictReader reads a DictionarySegment either decoded into value
// space, or as a raw value-id (value-id mode).
type dictReader struct {
	seg        *DictionarySegment
	pos        int
	useValueID bool
}

func (r *dictReader) Reset()   { r.pos = 0 }
func (r *dictReader) Advance() { r.pos++ }
func (r *dictReader) Fingerprint() EncodingFingerprint {
	payload := r.seg.DataType()
	if r.useValueID {
		payload = ValueIDType
	}
	return EncodingFingerprint{Kind: SegDictionary, Payload: payload, Nullable: r.seg.Nullable()}
}
func (r *dictReader) Rebind(seg Segment) {
	r.seg = seg.(*DictionarySegment)
	r.pos = 0
}
func (r *dictReader) ReadInto(ctx *RuntimeContext, slot int) {
	id := r.seg.ValueID(r.pos)
	if r.useValueID {
		if id == InvalidValueID {
			ctx.Tuple.SetNull(slot, true)
			return
		}
		ctx.Tuple.SetInt64(slot, int64(id))
		return
	}
	v := r.seg.Decode(r.pos)
	ctx.Tuple.SetValue(slot, v)
}

// referenceValueReader resolves a reference segment's position list
// through the referenced table's underlying data chunk, one row at a
// time, and delegates to a freshly bound reader for the resolved
// concrete segment. Reference resolution is polymorphic per row, so
// the fingerprint is a constant and every later reference chunk takes
// the same-type fast path (Rebind swaps in the new position list).
type referenceValueReader struct {
	seg        *ReferenceSegment
	refTable   Table
	colIndex   int
	useValueID bool
	pos        int
}

func (r *referenceValueReader) Reset()   { r.pos = 0 }
func (r *referenceValueReader) Advance() { r.pos++ }
func (r *referenceValueReader) Fingerprint() EncodingFingerprint {
	return EncodingFingerprint{Kind: SegReference, Payload: NullType, Nullable: true}
}
func (r *referenceValueReader) Rebind(seg Segment) {
	r.seg = seg.(*ReferenceSegment)
	r.pos = 0
}
func (r *referenceValueReader) ReadInto(ctx *RuntimeContext, slot int) {
	rowPos := r.seg.At(r.pos)
	chunk := r.refTable.GetChunk(int(rowPos.ChunkID))
	seg := chunk.GetSegment(r.colIndex)
	inner := bindOne(seg, r.refTable, r.useValueID, r.colIndex)
	for i := 0; i < rowPos.RowOffset; i++ {
		inner.Advance()
	}
	inner.ReadInto(ctx, slot)
}

// bindOne resolves the concrete encoding of seg and returns a fresh,
// rewound reader for it, without installing it into a chain's reader
// list. Used both by bindReaders (first chunk or an encoding change)
// and by referenceValueReader (row-by-row resolution).
func bindOne(seg Segment, refTable Table, useValueID bool, colIndex int) SegmentReader {
	switch s := seg.(type) {
	case *ValueSegment:
		return &valueReader{seg: s}
	case *DictionarySegment:
		return &dictReader{seg: s, useValueID: useValueID}
	case *ReferenceSegment:
		return &referenceValueReader{seg: s, refTable: refTable, colIndex: colIndex, useValueID: useValueID}
	default:
		assertFunc(false, "unsupported segment implementation %T", seg)
		return nil
	}
}

// fingerprintOfSegment computes a column's fingerprint directly from
// its segment, without constructing a reader. before_chunk uses this
// to decide the same-type fast path before paying for bindReaders.
func fingerprintOfSegment(seg Segment, useValueID bool) EncodingFingerprint {
	switch s := seg.(type) {
	case *ValueSegment:
		return EncodingFingerprint{Kind: SegValue, Payload: s.DataType(), Nullable: s.Nullable()}
	case *DictionarySegment:
		payload := s.DataType()
		if useValueID {
			payload = ValueIDType
		}
		return EncodingFingerprint{Kind: SegDictionary, Payload: payload, Nullable: s.Nullable()}
	case *ReferenceSegment:
		return EncodingFingerprint{Kind: SegReference, Payload: NullType, Nullable: true}
	default:
		assertFunc(false, "unsupported segment implementation %T", seg)
		return EncodingFingerprint{}
	}
}

// fingerprintsOfBindings is fingerprintOfSegment applied across a
// chunk's declared column bindings, in binding order.
func fingerprintsOfBindings(chunk Chunk, bindings []ColumnBinding) []EncodingFingerprint {
	out := make([]EncodingFingerprint, len(bindings))
	for i, b := range bindings {
		out[i] = fingerprintOfSegment(chunk.GetSegment(b.ColumnIndex), b.UseValueID)
	}
	return out
}

// bindReaders walks the declared column bindings and produces one
// SegmentReader per column. It returns the readers in binding order.
func bindReaders(chunk Chunk, bindings []ColumnBinding) []SegmentReader {
	readers := make([]SegmentReader, len(bindings))
	for i, b := range bindings {
		seg := chunk.GetSegment(b.ColumnIndex)
		readers[i] = bindOne(seg, chunk.ReferencedTable(), b.UseValueID, b.ColumnIndex)
	}
	return readers
}

// fingerprintsEqual compares two fingerprint slices for the same-type
// fast path decision in before_chunk.
func fingerprintsEqual(a, b []EncodingFingerprint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
