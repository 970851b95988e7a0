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

	"github.com/tidwall/btree"
)

// SegmentKind is the closed set of column encodings a chunk's columns
// may use.
type SegmentKind int

const (
	SegValue SegmentKind = iota
	SegDictionary
	SegReference
)

func (k SegmentKind) String() string {
	switch k {
	case SegValue:
		return "value"
	case SegDictionary:
		return "dictionary"
	case SegReference:
		return "reference"
	}
	return "unknown"
}

// Segment is the common shape every column encoding satisfies.
type Segment interface {
	Kind() SegmentKind
	Len() int
	DataType() DataType
	Nullable() bool
}

// ValueSegment is a contiguous typed array plus an optional null
// bitmap.
type ValueSegment struct {
	typ      DataType
	nullable bool
	i64      []int64
	f64      []float64
	str      []string
	valid    []bool // true = not null; nil means no nulls are possible
}

// NewValueSegment allocates a Value segment of n rows for typ.
func NewValueSegment(typ DataType, nullable bool, n int) *ValueSegment {
	seg := &ValueSegment{typ: typ, nullable: nullable}
	switch typ {
	case Int32, Int64, ValueIDType, Bool:
		seg.i64 = make([]int64, n)
	case Float, Double:
		seg.f64 = make([]float64, n)
	case String:
		seg.str = make([]string, n)
	default:
		assertFunc(false, "unsupported value segment type %s", typ)
	}
	if nullable {
		seg.valid = make([]bool, n)
		for i := range seg.valid {
			seg.valid[i] = true
		}
	}
	return seg
}

func (s *ValueSegment) Kind() SegmentKind { return SegValue }
func (s *ValueSegment) DataType() DataType { return s.typ }
func (s *ValueSegment) Nullable() bool     { return s.nullable }
func (s *ValueSegment) Len() int {
	switch s.typ {
	case String:
		return len(s.str)
	case Float, Double:
		return len(s.f64)
	default:
		return len(s.i64)
	}
}

// IsNull reports whether row i is null; a segment with no validity
// bitmap never has nulls.
func (s *ValueSegment) IsNull(i int) bool {
	if s.valid == nil {
		return false
	}
	return !s.valid[i]
}

func (s *ValueSegment) SetInt64(i int, v int64)     { s.i64[i] = v; s.setValid(i) }
func (s *ValueSegment) SetFloat64(i int, v float64) { s.f64[i] = v; s.setValid(i) }
func (s *ValueSegment) SetString(i int, v string)   { s.str[i] = v; s.setValid(i) }

func (s *ValueSegment) SetNull(i int) {
	assertFunc(s.nullable, "cannot set null on non-nullable value segment")
	if s.valid == nil {
		s.valid = make([]bool, s.Len())
		for j := range s.valid {
			s.valid[j] = true
		}
	}
	s.valid[i] = false
}

func (s *ValueSegment) setValid(i int) {
	if s.valid != nil {
		s.valid[i] = true
	}
}

func (s *ValueSegment) Int64(i int) int64     { return s.i64[i] }
func (s *ValueSegment) Float64(i int) float64 { return s.f64[i] }
func (s *ValueSegment) String_(i int) string  { return s.str[i] }

// InvalidValueID is the reserved value-id sentinel marking null and
// the value installed for an equality predicate whose literal is
// absent from the chunk's dictionary.
const InvalidValueID uint32 = math.MaxUint32

// dictEntry pairs a dictionary value with the value-id (its rank in
// sorted order) assigned to it, the unit stored in the ordered index.
type dictEntry struct {
	val Value
	id  uint32
}

// DictionarySegment is a sorted dictionary array plus an attribute
// vector of value-ids. LowerBound/UpperBound are answered via an
// ordered tidwall/btree.BTreeG index instead of a linear scan.
type DictionarySegment struct {
	typ       DataType
	nullable  bool
	dict      []Value // sorted ascending, dict[i] has value-id i
	attribute []uint32
	index     *btree.BTreeG[dictEntry]
}

func dictLess(typ DataType) func(a, b dictEntry) bool {
	return func(a, b dictEntry) bool {
		return compareValues(a.val, b.val, typ) < 0
	}
}

// NewDictionarySegment builds a dictionary segment from an already
// column of raw values (nulls represented by Value.Null) and its
// declared type; the sorted distinct dictionary and attribute vector
// are derived here, exactly as a storage layer would when encoding a
// column.
func NewDictionarySegment(typ DataType, nullable bool, rows []Value) *DictionarySegment {
	seg := &DictionarySegment{typ: typ, nullable: nullable}
	seg.index = btree.NewBTreeG(dictLess(typ))

	seen := make(map[string]uint32)
	for _, v := range rows {
		if v.Null {
			continue
		}
		key := valueKey(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = 0
		seg.dict = append(seg.dict, v)
	}
	sortValues(seg.dict, typ)
	for i, v := range seg.dict {
		seen[valueKey(v)] = uint32(i)
	}
	seg.attribute = make([]uint32, len(rows))
	for i, v := range rows {
		if v.Null {
			seg.attribute[i] = InvalidValueID
			continue
		}
		seg.attribute[i] = seen[valueKey(v)]
	}
	for i, v := range seg.dict {
		seg.index.Set(dictEntry{val: v, id: uint32(i)})
	}
	return seg
}

func (s *DictionarySegment) Kind() SegmentKind { return SegDictionary }
func (s *DictionarySegment) DataType() DataType { return s.typ }
func (s *DictionarySegment) Nullable() bool     { return s.nullable }
func (s *DictionarySegment) Len() int           { return len(s.attribute) }

// ValueID returns the raw value-id stored for row i; InvalidValueID
// marks a null row.
func (s *DictionarySegment) ValueID(i int) uint32 { return s.attribute[i] }

// Decode returns the decoded Value for row i, following the attribute
// vector through the dictionary; a null row decodes to a null Value.
func (s *DictionarySegment) Decode(i int) Value {
	id := s.attribute[i]
	if id == InvalidValueID {
		return NullValue(s.typ)
	}
	return s.dict[id]
}

// LowerBound returns the value-id of the first dictionary entry >= v
// (len(dict) if v is greater than every entry).
func (s *DictionarySegment) LowerBound(v Value) uint32 {
	var found uint32 = uint32(len(s.dict))
	s.index.Ascend(dictEntry{val: v}, func(e dictEntry) bool {
		found = e.id
		return false
	})
	return found
}

// UpperBound returns the value-id of the first dictionary entry > v
// (len(dict) if none).
func (s *DictionarySegment) UpperBound(v Value) uint32 {
	lb := s.LowerBound(v)
	if lb < uint32(len(s.dict)) && compareValues(s.dict[lb], v, s.typ) == 0 {
		return lb + 1
	}
	return lb
}

// RowPos identifies one row of an underlying data table by chunk id
// and offset within that chunk.
type RowPos struct {
	ChunkID   uint64
	RowOffset int
}

// PositionList backs a reference segment and the output of
// Write-Offsets.
type PositionList []RowPos

// ReferenceSegment borrows a position list referencing an underlying
// data table; it carries no payload of its own, values are resolved
// through Chunk.ReferencedTable().
type ReferenceSegment struct {
	positions PositionList
}

func NewReferenceSegment(positions PositionList) *ReferenceSegment {
	return &ReferenceSegment{positions: positions}
}

func (s *ReferenceSegment) Kind() SegmentKind { return SegReference }
func (s *ReferenceSegment) DataType() DataType { return NullType }
func (s *ReferenceSegment) Nullable() bool     { return true }
func (s *ReferenceSegment) Len() int           { return len(s.positions) }
func (s *ReferenceSegment) At(i int) RowPos    { return s.positions[i] }

// Chunk is an immutable columnar slab of segments of identical
// length, plus optional MVCC arrays or a position list when it is a
// reference chunk.
type Chunk interface {
	Size() int
	GetSegment(col int) Segment
	HasMVCCData() bool
	MVCCArrays() *MVCCArrays
	PositionList() PositionList
	ReferencedTable() Table
	ChunkID() uint64
}

// Table is a chunked column-oriented table.
type Table interface {
	ChunkCount() int
	GetChunk(id int) Chunk
	ColumnCount() int
	ColumnIsNullable(col int) bool
	ColumnType(col int) DataType
}
