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

// memChunk and memTable are the in-memory Chunk/Table reference
// implementation: what a caller's already-loaded columnar storage
// looks like from the chain's point of view, and what
// Write-Tuples/Write-Offsets build as output.
type memChunk struct {
	id        uint64
	size      int
	segments  []Segment
	mvcc      *MVCCArrays
	positions PositionList
	refTable  Table
}

// NewMemChunk builds a plain data chunk of the given segments, with an
// optional MVCC array set.
func NewMemChunk(id uint64, size int, segments []Segment, mvcc *MVCCArrays) *memChunk {
	return &memChunk{id: id, size: size, segments: segments, mvcc: mvcc}
}

// NewReferenceChunk builds a reference chunk borrowing positions into
// refTable, with a single reference segment per output column (all
// sharing the same position list, one shared list in practice).
func NewReferenceChunk(id uint64, positions PositionList, refTable Table, numCols int) *memChunk {
	segs := make([]Segment, numCols)
	for i := range segs {
		segs[i] = NewReferenceSegment(positions)
	}
	return &memChunk{id: id, size: len(positions), segments: segs, positions: positions, refTable: refTable}
}

func newMemChunk(id uint64, size int, segments []Segment, mvcc *MVCCArrays, positions PositionList, refTable Table) *memChunk {
	return &memChunk{id: id, size: size, segments: segments, mvcc: mvcc, positions: positions, refTable: refTable}
}

func (c *memChunk) Size() int                  { return c.size }
func (c *memChunk) GetSegment(col int) Segment { return c.segments[col] }
func (c *memChunk) HasMVCCData() bool          { return c.mvcc != nil }
func (c *memChunk) MVCCArrays() *MVCCArrays    { return c.mvcc }
func (c *memChunk) PositionList() PositionList { return c.positions }
func (c *memChunk) ReferencedTable() Table     { return c.refTable }
func (c *memChunk) ChunkID() uint64            { return c.id }

type memTable struct {
	chunks   []Chunk
	colTypes []DataType
	colNull  []bool
}

// NewMemTable assembles a Table from already-built chunks.
func NewMemTable(chunks []Chunk, colTypes []DataType, colNullable []bool) *memTable {
	return &memTable{chunks: chunks, colTypes: colTypes, colNull: colNullable}
}

func newMemTable(chunks []Chunk, colTypes []DataType, colNullable []bool) *memTable {
	return NewMemTable(chunks, colTypes, colNullable)
}

func (t *memTable) ChunkCount() int             { return len(t.chunks) }
func (t *memTable) GetChunk(id int) Chunk       { return t.chunks[id] }
func (t *memTable) ColumnCount() int            { return len(t.colTypes) }
func (t *memTable) ColumnIsNullable(c int) bool { return t.colNull[c] }
func (t *memTable) ColumnType(c int) DataType   { return t.colTypes[c] }

// unionTable presents several physical tables of identical schema as
// one logical Table by concatenating their chunk id spaces, letting
// an LQPUnion node be handled without threading multiple tables
// through the Chain/driver machinery: Write-Offsets' (chunk_id,
// row_offset) positions resolve back through this same wrapper.
type unionTable struct {
	tables    []Table
	chunkBase []int // chunkBase[i] is the first global chunk id of tables[i]
}

func newUnionTable(tables []Table) *unionTable {
	u := &unionTable{tables: tables, chunkBase: make([]int, len(tables))}
	base := 0
	for i, t := range tables {
		u.chunkBase[i] = base
		base += t.ChunkCount()
	}
	return u
}

func (u *unionTable) ChunkCount() int {
	n := 0
	for _, t := range u.tables {
		n += t.ChunkCount()
	}
	return n
}

func (u *unionTable) locate(id int) (Table, int) {
	for i := len(u.tables) - 1; i >= 0; i-- {
		if id >= u.chunkBase[i] {
			return u.tables[i], id - u.chunkBase[i]
		}
	}
	assertFunc(false, "chunk id %d out of range for union table", id)
	return nil, 0
}

func (u *unionTable) GetChunk(id int) Chunk {
	t, local := u.locate(id)
	return &unionChunkView{Chunk: t.GetChunk(local), id: uint64(id)}
}

// unionChunkView overrides ChunkID so that positions captured while
// iterating a unionTable (Validate, Write-Offsets) carry the global
// chunk id the union presents, not the wrapped table's own local id;
// resolving such a position later re-enters through the same
// unionTable.GetChunk.
type unionChunkView struct {
	Chunk
	id uint64
}

func (v *unionChunkView) ChunkID() uint64 { return v.id }

func (u *unionTable) ColumnCount() int            { return u.tables[0].ColumnCount() }
func (u *unionTable) ColumnIsNullable(c int) bool { return u.tables[0].ColumnIsNullable(c) }
func (u *unionTable) ColumnType(c int) DataType   { return u.tables[0].ColumnType(c) }
