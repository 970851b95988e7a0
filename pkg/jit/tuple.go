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

// TupleSlot is a {data_type, nullable, slot_index} triple known at
// chain build time. Two slots compare equal iff their Index matches;
// Typ and Nullable are compile-time contracts, not runtime state.
type TupleSlot struct {
	Typ      DataType
	Nullable bool
	Index    int
}

// tupleCell is the fixed-width variant payload of one RuntimeTuple
// slot. Only one of I64/F64 is meaningful, selected by the owning
// slot's declared DataType; strings never live here, see
// RuntimeTuple.strings.
type tupleCell struct {
	i64 int64
	f64 float64
}

// RuntimeTuple is the fixed-size scratch record reused for every row
// of a chunk. N is decided once at chain-construction time. Unused
// cells are undefined between rows: a producer must populate a slot
// before any consumer reads it.
type RuntimeTuple struct {
	cells   []tupleCell
	null    []bool
	typs    []DataType
	nulls_  []bool // declared nullability, for debug checks
	strings map[int]string
}

// NewRuntimeTuple sizes a tuple to N slots with the given per-slot
// declared types and nullability, both indexed by slot index.
func NewRuntimeTuple(typs []DataType, nullable []bool) *RuntimeTuple {
	n := len(typs)
	return &RuntimeTuple{
		cells:   make([]tupleCell, n),
		null:    make([]bool, n),
		typs:    append([]DataType(nil), typs...),
		nulls_:  append([]bool(nil), nullable...),
		strings: make(map[int]string),
	}
}

// Len returns the tuple's slot count N.
func (t *RuntimeTuple) Len() int { return len(t.cells) }

func (t *RuntimeTuple) checkIndex(idx int) {
	assertFunc(idx >= 0 && idx < len(t.cells), "slot %d out of range [0,%d)", idx, len(t.cells))
}

// IsNull reports the null flag of slot idx, independent of whether
// the slot was declared nullable.
func (t *RuntimeTuple) IsNull(idx int) bool {
	t.checkIndex(idx)
	return t.null[idx]
}

// SetNull sets the null flag of slot idx. Declared non-nullable slots
// must never be set null; this is debug-checked.
func (t *RuntimeTuple) SetNull(idx int, isNull bool) {
	t.checkIndex(idx)
	if isNull {
		assertFunc(t.nulls_[idx], "slot %d declared non-nullable set null", idx)
	}
	t.null[idx] = isNull
}

// GetInt64 reads an Int32/Int64/ValueID/Bool-typed slot widened to
// int64.
func (t *RuntimeTuple) GetInt64(idx int) int64 {
	t.checkIndex(idx)
	return t.cells[idx].i64
}

// SetInt64 writes an Int32/Int64/ValueID/Bool-typed slot and clears
// its null flag.
func (t *RuntimeTuple) SetInt64(idx int, v int64) {
	t.checkIndex(idx)
	t.cells[idx].i64 = v
	t.null[idx] = false
}

// GetFloat64 reads a Float/Double-typed slot widened to float64.
func (t *RuntimeTuple) GetFloat64(idx int) float64 {
	t.checkIndex(idx)
	return t.cells[idx].f64
}

// SetFloat64 writes a Float/Double-typed slot and clears its null
// flag.
func (t *RuntimeTuple) SetFloat64(idx int, v float64) {
	t.checkIndex(idx)
	t.cells[idx].f64 = v
	t.null[idx] = false
}

// GetBool reads a Bool-typed slot.
func (t *RuntimeTuple) GetBool(idx int) bool {
	return t.GetInt64(idx) != 0
}

// SetBool writes a Bool-typed slot.
func (t *RuntimeTuple) SetBool(idx int, v bool) {
	i := int64(0)
	if v {
		i = 1
	}
	t.SetInt64(idx, i)
}

// GetString reads a String-typed slot from the side table, keeping
// tupleCell fixed-width and avoiding heap churn for non-string rows.
func (t *RuntimeTuple) GetString(idx int) string {
	t.checkIndex(idx)
	return t.strings[idx]
}

// SetString writes a String-typed slot's side-table entry and clears
// its null flag.
func (t *RuntimeTuple) SetString(idx int, v string) {
	t.checkIndex(idx)
	t.strings[idx] = v
	t.null[idx] = false
}

// SetValue installs a build-time Value (a literal or parameter) into
// slot idx, decoding into a typed cell rather than a value-id.
func (t *RuntimeTuple) SetValue(idx int, v Value) {
	if v.Null {
		t.SetNull(idx, true)
		return
	}
	switch v.Typ {
	case Int32, Int64, ValueIDType, Bool:
		t.SetInt64(idx, v.I64)
	case Float, Double:
		t.SetFloat64(idx, v.F64)
	case String:
		t.SetString(idx, v.Str)
	default:
		assertFunc(false, "cannot install value of type %s", v.Typ)
	}
}
