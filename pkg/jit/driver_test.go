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

// These exercise Chain.Execute end to end by hand-assembling chains
// with the operator/chain constructors, the same shapes the Translator
// would produce for a Scan+Predicate / Aggregate / Limit sub-plan.

func collectInt64Column(t *testing.T, table Table, col int) []int64 {
	t.Helper()
	var out []int64
	for i := 0; i < table.ChunkCount(); i++ {
		chunk := table.GetChunk(i)
		seg := chunk.GetSegment(col).(*ValueSegment)
		for r := 0; r < chunk.Size(); r++ {
			out = append(out, seg.Int64(r))
		}
	}
	return out
}

func Test_Chain_ScanAndFilter(t *testing.T) {
	seg := NewValueSegment(Int64, false, 5)
	for i, v := range []int64{1, 2, 3, 4, 5} {
		seg.SetInt64(i, v)
	}
	table := NewMemTable([]Chunk{NewMemChunk(0, 5, []Segment{seg}, nil)}, []DataType{Int64}, []bool{false})

	filterExpr := &ExpressionNode{
		Kind:   NodeGreaterThan,
		Left:   columnNode(0, Int64),
		Right:  &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: Int64, Index: 1}},
		Result: TupleSlot{Typ: Bool, Index: 2},
	}
	readVal := NewInsertReadValueOp(0, 0)
	compute := NewComputeOp(filterExpr)
	filter := NewFilterOp(2)
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	readVal.SetSuccessor(compute)
	compute.SetSuccessor(filter)
	filter.SetSuccessor(write)

	read := &ReadTuples{
		Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}},
		Literals: []LiteralInstall{{Slot: 1, Value: IntValue(Int64, 3)}},
		First:    readVal,
	}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64, Int64, Bool},
		TupleNullable:     []bool{false, false, true},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}

	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, collectInt64Column(t, out, 0))
}

func Test_Chain_NullPropagationInFilter(t *testing.T) {
	seg := NewValueSegment(Int64, true, 3)
	seg.SetInt64(0, 1)
	seg.SetNull(1)
	seg.SetInt64(2, 3)
	table := NewMemTable([]Chunk{NewMemChunk(0, 3, []Segment{seg}, nil)}, []DataType{Int64}, []bool{true})

	isNotNull := &ExpressionNode{Kind: NodeIsNotNull, Left: columnNode(0, Int64), Result: TupleSlot{Typ: Bool, Index: 1}}
	readVal := NewInsertReadValueOp(0, 0)
	compute := NewComputeOp(isNotNull)
	filter := NewFilterOp(1)
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	readVal.SetSuccessor(compute)
	compute.SetSuccessor(filter)
	filter.SetSuccessor(write)

	read := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}, First: readVal}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64, Bool},
		TupleNullable:     []bool{true, true},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{true},
	}

	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, collectInt64Column(t, out, 0))
}

func Test_Chain_ValueIDAcceleratedPredicate(t *testing.T) {
	dict := NewDictionarySegment(String, false, []Value{
		StringValue("apple"), StringValue("banana"), StringValue("cherry"), StringValue("date"),
	})
	table := NewMemTable([]Chunk{NewMemChunk(0, 4, []Segment{dict}, nil)}, []DataType{String}, []bool{false})

	// column (value-id mode) == literal-value-id(slot 1, refreshed per chunk)
	eq := &ExpressionNode{
		Kind:   NodeEquals,
		Left:   &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: ValueIDType, Index: 0}},
		Right:  &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: ValueIDType, Index: 1}},
		Result: TupleSlot{Typ: Bool, Index: 2},
	}
	readVal := NewInsertReadValueOp(0, 0)
	compute := NewComputeOp(eq)
	filter := NewFilterOp(2)
	write := NewWriteOffsetsOp()
	readVal.SetSuccessor(compute)
	compute.SetSuccessor(filter)
	filter.SetSuccessor(write)

	read := &ReadTuples{
		Bindings:     []ColumnBinding{{ColumnIndex: 0, Slot: 0, UseValueID: true}},
		ValueIDPreds: []ValueIDPredicate{{BindingIndex: 0, LiteralSlot: 1, Kind: NodeEquals, Literal: StringValue("cherry")}},
		First:        readVal,
	}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{ValueIDType, ValueIDType, Bool},
		TupleNullable:     []bool{false, false, true},
		Read:              read,
		OutputColTypes:    []DataType{String},
		OutputColNullable: []bool{false},
		UsingOffsets:      true,
	}

	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, 1, out.ChunkCount())
	assert.Equal(t, 1, out.GetChunk(0).Size())
}

func Test_Chain_ValueIDAcceleration_AbsentLiteralNotEqualsMatchesEveryRow(t *testing.T) {
	dict := NewDictionarySegment(String, false, []Value{StringValue("apple"), StringValue("banana")})
	table := NewMemTable([]Chunk{NewMemChunk(0, 2, []Segment{dict}, nil)}, []DataType{String}, []bool{false})

	neq := &ExpressionNode{
		Kind:   NodeNotEquals,
		Left:   &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: ValueIDType, Index: 0}},
		Right:  &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: ValueIDType, Index: 1}},
		Result: TupleSlot{Typ: Bool, Index: 2},
	}
	readVal := NewInsertReadValueOp(0, 0)
	compute := NewComputeOp(neq)
	filter := NewFilterOp(2)
	write := NewWriteOffsetsOp()
	readVal.SetSuccessor(compute)
	compute.SetSuccessor(filter)
	filter.SetSuccessor(write)

	read := &ReadTuples{
		Bindings:     []ColumnBinding{{ColumnIndex: 0, Slot: 0, UseValueID: true}},
		ValueIDPreds: []ValueIDPredicate{{BindingIndex: 0, LiteralSlot: 1, Kind: NodeNotEquals, Literal: StringValue("missing")}},
		First:        readVal,
	}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{ValueIDType, ValueIDType, Bool},
		TupleNullable:     []bool{false, false, true},
		Read:              read,
		OutputColTypes:    []DataType{String},
		OutputColNullable: []bool{false},
		UsingOffsets:      true,
	}

	// "!=" against a literal absent from the dictionary installs the
	// sentinel value-id, which every real row's value-id is unequal to,
	// so every row should pass.
	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, 2, out.GetChunk(0).Size())
}

func Test_Chain_MVCCVisibility_FourRows(t *testing.T) {
	seg := NewValueSegment(Int64, false, 4)
	for i, v := range []int64{10, 20, 30, 40} {
		seg.SetInt64(i, v)
	}
	mvcc := &MVCCArrays{
		BeginCid: []CommitID{10, 10, 60, 60},
		EndCid:   []CommitID{MaxCommitID, 20, MaxCommitID, MaxCommitID},
		Tid:      []TxnID{1, 1, 2, 100},
	}
	table := NewMemTable([]Chunk{NewMemChunk(0, 4, []Segment{seg}, mvcc)}, []DataType{Int64}, []bool{false})

	readVal := NewInsertReadValueOp(0, 0)
	validate := NewValidateOp()
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	readVal.SetSuccessor(validate)
	validate.SetSuccessor(write)

	read := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}, NeedsMVCC: true, First: readVal}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64},
		TupleNullable:     []bool{false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}

	snap := Snapshot{TxnID: 100, SnapshotCommitID: 50}
	out, err := chain.Execute(table, nil, snap, NoCancellation)
	assert.NoError(t, err)
	// row0: committed before snapshot, never deleted -> visible (10)
	// row1: deleted before snapshot -> invisible
	// row2: inserted after snapshot by another txn -> invisible
	// row3: inserted by this txn's own write -> visible (40)
	assert.Equal(t, []int64{10, 40}, collectInt64Column(t, out, 0))
}

func Test_Chain_Limit(t *testing.T) {
	seg := NewValueSegment(Int64, false, 5)
	for i, v := range []int64{1, 2, 3, 4, 5} {
		seg.SetInt64(i, v)
	}
	table := NewMemTable([]Chunk{NewMemChunk(0, 5, []Segment{seg}, nil)}, []DataType{Int64}, []bool{false})

	readVal := NewInsertReadValueOp(0, 0)
	limit := NewLimitOp()
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	readVal.SetSuccessor(limit)
	limit.SetSuccessor(write)

	read := &ReadTuples{
		Bindings:  []ColumnBinding{{ColumnIndex: 0, Slot: 0}},
		LimitExpr: &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: Int64, Index: 1}},
		First:     readVal,
	}
	read.Literals = []LiteralInstall{{Slot: 1, Value: IntValue(Int64, 2)}}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64, Int64},
		TupleNullable:     []bool{false, false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}

	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, collectInt64Column(t, out, 0))
}

func Test_Chain_LimitZeroYieldsNoRows(t *testing.T) {
	seg := NewValueSegment(Int64, false, 3)
	for i, v := range []int64{1, 2, 3} {
		seg.SetInt64(i, v)
	}
	table := NewMemTable([]Chunk{NewMemChunk(0, 3, []Segment{seg}, nil)}, []DataType{Int64}, []bool{false})

	limit := NewLimitOp()
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	limit.SetSuccessor(write)

	read := &ReadTuples{
		Bindings:  []ColumnBinding{{ColumnIndex: 0, Slot: 0}},
		LimitExpr: &ExpressionNode{Kind: NodeColumn, Result: TupleSlot{Typ: Int64, Index: 1}},
		Literals:  []LiteralInstall{{Slot: 1, Value: IntValue(Int64, 0)}},
		First:     limit,
	}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64, Int64},
		TupleNullable:     []bool{false, false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}

	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, 0, out.ChunkCount())
}

func Test_Chain_AggregateSumGroupBy(t *testing.T) {
	keySeg := NewValueSegment(Int64, false, 6)
	valSeg := NewValueSegment(Int64, false, 6)
	keys := []int64{1, 1, 2, 2, 2, 3}
	vals := []int64{10, 20, 1, 2, 3, 100}
	for i := range keys {
		keySeg.SetInt64(i, keys[i])
		valSeg.SetInt64(i, vals[i])
	}
	table := NewMemTable([]Chunk{NewMemChunk(0, 6, []Segment{keySeg, valSeg}, nil)}, []DataType{Int64, Int64}, []bool{false, false})

	agg := NewAggregateOp(
		[]TupleSlot{{Typ: Int64, Index: 0}},
		[]AggSpec{{Func: AggSum, Input: TupleSlot{Typ: Int64, Index: 1}, Result: TupleSlot{Typ: Int64, Index: 2}}},
	)
	readKey := NewInsertReadValueOp(0, 0)
	readVal := NewInsertReadValueOp(1, 1)
	readKey.SetSuccessor(readVal)
	readVal.SetSuccessor(agg)
	read := &ReadTuples{
		Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}, {ColumnIndex: 1, Slot: 1}},
		First:    readKey,
	}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64, Int64, Int64},
		TupleNullable:     []bool{false, false, true},
		Read:              read,
		Aggregate:         agg,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}, {Typ: Int64, Index: 2}},
		OutputColTypes:    []DataType{Int64, Int64},
		OutputColNullable: []bool{false, true},
	}

	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)

	sums := map[int64]int64{}
	for i := 0; i < out.ChunkCount(); i++ {
		chunk := out.GetChunk(i)
		ks := chunk.GetSegment(0).(*ValueSegment)
		vs := chunk.GetSegment(1).(*ValueSegment)
		for r := 0; r < chunk.Size(); r++ {
			sums[ks.Int64(r)] = vs.Int64(r)
		}
	}
	assert.Equal(t, int64(30), sums[1])
	assert.Equal(t, int64(6), sums[2])
	assert.Equal(t, int64(100), sums[3])
}

func Test_Chain_EmptyInput(t *testing.T) {
	table := NewMemTable(nil, []DataType{Int64}, []bool{false})
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	read := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}, First: write}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64},
		TupleNullable:     []bool{false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}
	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, 0, out.ChunkCount())
}

func Test_Chain_ZeroSizeChunkIsSkipped(t *testing.T) {
	empty := NewMemChunk(0, 0, []Segment{NewValueSegment(Int64, false, 0)}, nil)
	seg := NewValueSegment(Int64, false, 1)
	seg.SetInt64(0, 7)
	real := NewMemChunk(1, 1, []Segment{seg}, nil)
	table := NewMemTable([]Chunk{empty, real}, []DataType{Int64}, []bool{false})

	readVal := NewInsertReadValueOp(0, 0)
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	readVal.SetSuccessor(write)
	read := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}, First: readVal}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64},
		TupleNullable:     []bool{false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}
	out, err := chain.Execute(table, nil, Snapshot{}, NoCancellation)
	assert.NoError(t, err)
	assert.Equal(t, []int64{7}, collectInt64Column(t, out, 0))
}

func Test_Chain_CancellationStopsAtChunkBoundary(t *testing.T) {
	seg0 := NewValueSegment(Int64, false, 1)
	seg0.SetInt64(0, 1)
	seg1 := NewValueSegment(Int64, false, 1)
	seg1.SetInt64(0, 2)
	table := NewMemTable([]Chunk{
		NewMemChunk(0, 1, []Segment{seg0}, nil),
		NewMemChunk(1, 1, []Segment{seg1}, nil),
	}, []DataType{Int64}, []bool{false})

	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	read := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}, First: write}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64},
		TupleNullable:     []bool{false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}

	cancel := &ManualCancellationToken{}
	cancel.Cancel()
	out, err := chain.Execute(table, nil, Snapshot{}, cancel)
	assert.NoError(t, err)
	assert.Equal(t, 0, out.ChunkCount())
}

func Test_Chain_Clone_IndependentState(t *testing.T) {
	write := NewWriteTuplesOp([]TupleSlot{{Typ: Int64, Index: 0}})
	read := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}, First: write}
	chain := &Chain{
		Config:            DefaultEngineConfig(),
		TupleTypes:        []DataType{Int64},
		TupleNullable:     []bool{false},
		Read:              read,
		OutputSlots:       []TupleSlot{{Typ: Int64, Index: 0}},
		OutputColTypes:    []DataType{Int64},
		OutputColNullable: []bool{false},
	}
	clone := chain.Clone()
	clone.Read.Bindings[0].Slot = 5
	assert.Equal(t, 0, chain.Read.Bindings[0].Slot)
	assert.Equal(t, 5, clone.Read.Bindings[0].Slot)
}
