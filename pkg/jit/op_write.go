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

// WriteTuplesOp is a terminal operator appending one output row per
// call, reading the declared output slots.
type WriteTuplesOp struct {
	terminal
	OutputSlots []TupleSlot
}

func NewWriteTuplesOp(slots []TupleSlot) *WriteTuplesOp {
	return &WriteTuplesOp{OutputSlots: slots}
}

func (o *WriteTuplesOp) Name() string { return "WriteTuples" }

func (o *WriteTuplesOp) Consume(ctx *RuntimeContext) error {
	ctx.out.AppendRow(ctx.Tuple, o.OutputSlots)
	return nil
}

// WriteOffsetsOp is a terminal operator specialised for output whose
// every column is a direct reference to an input column: it appends
// the row's own (chunk_id, row_offset) to the shared output position
// list instead of copying values.
type WriteOffsetsOp struct {
	terminal
}

func NewWriteOffsetsOp() *WriteOffsetsOp { return &WriteOffsetsOp{} }

func (o *WriteOffsetsOp) Name() string { return "WriteOffsets" }

func (o *WriteOffsetsOp) Consume(ctx *RuntimeContext) error {
	ctx.out.AppendPosition(RowPos{ChunkID: ctx.chunkID, RowOffset: ctx.chunkOffset})
	return nil
}
