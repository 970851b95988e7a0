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

// buildAggChain assembles a minimal Read -> Aggregate chain over the
// given group-by/agg slots for direct Consume-driven testing, bypassing
// the Translator.
func buildAggChain(groupBy []TupleSlot, aggs []AggSpec) (*AggregateOp, *RuntimeContext) {
	agg := NewAggregateOp(groupBy, aggs)
	ctx := NewRuntimeContext([]DataType{Int64, Int64}, []bool{true, true})
	outWidth := len(groupBy) + len(aggs)
	outTypes := make([]DataType, outWidth)
	outNullable := make([]bool, outWidth)
	for i := range outTypes {
		outTypes[i] = Int64
		outNullable[i] = true
	}
	ctx.out = newOutputBuilder(outTypes, outNullable, 1024)
	return agg, ctx
}

func Test_AggregateOp_GlobalSum(t *testing.T) {
	agg, ctx := buildAggChain(nil, []AggSpec{{Func: AggSum, Input: TupleSlot{Typ: Int64, Index: 0}, Result: TupleSlot{Typ: Int64, Index: 1}}})
	for _, v := range []int64{1, 2, 3, 4} {
		ctx.Tuple.SetInt64(0, v)
		assert.NoError(t, agg.Consume(ctx))
	}
	agg.Finalize(ctx, []TupleSlot{{Typ: Int64, Index: 1}})
	out := ctx.out.Finish()
	assert.Equal(t, 1, out.ChunkCount())
	seg := out.GetChunk(0).GetSegment(0).(*ValueSegment)
	assert.Equal(t, int64(10), seg.Int64(0))
}

func Test_AggregateOp_SumOverZeroRowsIsNull(t *testing.T) {
	agg, ctx := buildAggChain(nil, []AggSpec{{Func: AggSum, Input: TupleSlot{Typ: Int64, Index: 0}, Result: TupleSlot{Typ: Int64, Index: 1}}})
	agg.Finalize(ctx, []TupleSlot{{Typ: Int64, Index: 1}})
	out := ctx.out.Finish()
	// A global aggregate over zero input rows emits no group at all.
	assert.Equal(t, 0, out.ChunkCount())

	// A group whose only input row is null has zero contributing rows,
	// so its SUM is null.
	agg, ctx = buildAggChain(nil, []AggSpec{{Func: AggSum, Input: TupleSlot{Typ: Int64, Index: 0}, Result: TupleSlot{Typ: Int64, Index: 1}}})
	ctx.Tuple.SetNull(0, true)
	assert.NoError(t, agg.Consume(ctx))
	agg.Finalize(ctx, []TupleSlot{{Typ: Int64, Index: 1}})
	out = ctx.out.Finish()
	assert.Equal(t, 1, out.ChunkCount())
	seg := out.GetChunk(0).GetSegment(0).(*ValueSegment)
	assert.True(t, seg.IsNull(0))
}

func Test_AggregateOp_GroupBy(t *testing.T) {
	agg, ctx := buildAggChain(
		[]TupleSlot{{Typ: Int64, Index: 0}},
		[]AggSpec{{Func: AggCountStar, Result: TupleSlot{Typ: Int64, Index: 1}}},
	)
	rows := []int64{1, 1, 2, 2, 2}
	for _, v := range rows {
		ctx.Tuple.SetInt64(0, v)
		assert.NoError(t, agg.Consume(ctx))
	}
	agg.Finalize(ctx, []TupleSlot{{Typ: Int64, Index: 0}, {Typ: Int64, Index: 1}})
	out := ctx.out.Finish()

	counts := map[int64]int64{}
	for i := 0; i < out.ChunkCount(); i++ {
		chunk := out.GetChunk(i)
		keySeg := chunk.GetSegment(0).(*ValueSegment)
		cntSeg := chunk.GetSegment(1).(*ValueSegment)
		for r := 0; r < chunk.Size(); r++ {
			counts[keySeg.Int64(r)] = cntSeg.Int64(r)
		}
	}
	assert.Equal(t, int64(2), counts[1])
	assert.Equal(t, int64(3), counts[2])
}

func Test_AggregateOp_CountSkipsNulls(t *testing.T) {
	agg, ctx := buildAggChain(nil, []AggSpec{{Func: AggCount, Input: TupleSlot{Typ: Int64, Index: 0}, Result: TupleSlot{Typ: Int64, Index: 1}}})
	ctx.Tuple.SetInt64(0, 1)
	assert.NoError(t, agg.Consume(ctx))
	ctx.Tuple.SetNull(0, true)
	assert.NoError(t, agg.Consume(ctx))
	ctx.Tuple.SetInt64(0, 2)
	assert.NoError(t, agg.Consume(ctx))

	agg.Finalize(ctx, []TupleSlot{{Typ: Int64, Index: 1}})
	out := ctx.out.Finish()
	seg := out.GetChunk(0).GetSegment(0).(*ValueSegment)
	assert.Equal(t, int64(2), seg.Int64(0))
}

func Test_AggregateOp_Min(t *testing.T) {
	agg, ctx := buildAggChain(nil, []AggSpec{
		{Func: AggMin, Input: TupleSlot{Typ: Int64, Index: 0}, Result: TupleSlot{Typ: Int64, Index: 1}},
	})
	for _, v := range []int64{5, 2, 8, 1, 9} {
		ctx.Tuple.SetInt64(0, v)
		assert.NoError(t, agg.Consume(ctx))
	}
	agg.Finalize(ctx, []TupleSlot{{Typ: Int64, Index: 1}})
	out := ctx.out.Finish()
	seg := out.GetChunk(0).GetSegment(0).(*ValueSegment)
	assert.Equal(t, int64(1), seg.Int64(0))
}
