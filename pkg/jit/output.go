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

// outputBuilder accumulates result rows into in-memory chunks, flushing
// once they reach the configured target chunk size. One instance
// serves either the Write-Tuples path (typed columns copied out of the
// tuple) or the Write-Offsets path (a shared position list into the
// input table), never both.
type outputBuilder struct {
	colTypes    []DataType
	colNullable []bool
	maxChunk    int

	bufI64  [][]int64
	bufF64  [][]float64
	bufStr  [][]string
	bufNull [][]bool
	bufRows int

	usingOffsets bool
	refTable     Table
	bufPositions PositionList

	chunks      []Chunk
	nextChunkID uint64
}

// newOutputBuilder constructs the Write-Tuples variant.
func newOutputBuilder(colTypes []DataType, colNullable []bool, maxChunk int) *outputBuilder {
	b := &outputBuilder{colTypes: colTypes, colNullable: colNullable, maxChunk: maxChunk}
	n := len(colTypes)
	b.bufI64 = make([][]int64, n)
	b.bufF64 = make([][]float64, n)
	b.bufStr = make([][]string, n)
	b.bufNull = make([][]bool, n)
	return b
}

// newOffsetsOutputBuilder constructs the Write-Offsets variant. colTypes
// and colNullable describe the output columns for the resulting table's
// schema even though no typed buffering happens on this path.
func newOffsetsOutputBuilder(refTable Table, colTypes []DataType, colNullable []bool, maxChunk int) *outputBuilder {
	return &outputBuilder{usingOffsets: true, refTable: refTable, maxChunk: maxChunk, colTypes: colTypes, colNullable: colNullable}
}

// AppendRow copies the declared output slots of tuple into the current
// buffered chunk (Write-Tuples).
func (b *outputBuilder) AppendRow(tuple *RuntimeTuple, slots []TupleSlot) {
	for i, s := range slots {
		isNull := tuple.IsNull(s.Index)
		b.bufNull[i] = append(b.bufNull[i], isNull)
		var i64 int64
		var f64 float64
		var str string
		if !isNull {
			switch b.colTypes[i] {
			case Int32, Int64, Bool, ValueIDType:
				i64 = tuple.GetInt64(s.Index)
			case Float, Double:
				f64 = tuple.GetFloat64(s.Index)
			case String:
				str = tuple.GetString(s.Index)
			}
		}
		b.bufI64[i] = append(b.bufI64[i], i64)
		b.bufF64[i] = append(b.bufF64[i], f64)
		b.bufStr[i] = append(b.bufStr[i], str)
	}
	b.bufRows++
	if b.bufRows >= b.maxChunk {
		b.flush()
	}
}

// AppendPosition appends the source position of the current row
// (Write-Offsets), sharing one position list across every output
// column.
func (b *outputBuilder) AppendPosition(pos RowPos) {
	b.bufPositions = append(b.bufPositions, pos)
	if len(b.bufPositions) >= b.maxChunk {
		b.flush()
	}
}

func (b *outputBuilder) flush() {
	if b.usingOffsets {
		if len(b.bufPositions) == 0 {
			return
		}
		chunk := NewReferenceChunk(b.nextChunkID, append(PositionList(nil), b.bufPositions...), b.refTable, len(b.colTypes))
		b.chunks = append(b.chunks, chunk)
		b.nextChunkID++
		b.bufPositions = b.bufPositions[:0]
		return
	}
	if b.bufRows == 0 {
		return
	}
	segs := make([]Segment, len(b.colTypes))
	for i, typ := range b.colTypes {
		seg := NewValueSegment(typ, b.colNullable[i], b.bufRows)
		for row := 0; row < b.bufRows; row++ {
			if b.bufNull[i][row] {
				seg.SetNull(row)
				continue
			}
			switch typ {
			case Int32, Int64, Bool, ValueIDType:
				seg.SetInt64(row, b.bufI64[i][row])
			case Float, Double:
				seg.SetFloat64(row, b.bufF64[i][row])
			case String:
				seg.SetString(row, b.bufStr[i][row])
			}
		}
		segs[i] = seg
	}
	b.chunks = append(b.chunks, NewMemChunk(b.nextChunkID, b.bufRows, segs, nil))
	b.nextChunkID++
	b.bufRows = 0
	for i := range b.bufI64 {
		b.bufI64[i] = b.bufI64[i][:0]
		b.bufF64[i] = b.bufF64[i][:0]
		b.bufStr[i] = b.bufStr[i][:0]
		b.bufNull[i] = b.bufNull[i][:0]
	}
}

// Finish flushes any partial buffered chunk and returns the assembled
// output table.
func (b *outputBuilder) Finish() Table {
	b.flush()
	return NewMemTable(b.chunks, b.colTypes, b.colNullable)
}
