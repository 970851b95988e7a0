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

// Execute runs the chain once, end to end, over an input table,
// parameters, and an MVCC snapshot, producing an output table. Chunks
// are visited in ascending chunk-id order; within a chunk, rows are
// visited in index order.
func (c *Chain) Execute(table Table, params map[ParameterID]Value, snapshot Snapshot, cancel CancellationToken) (out Table, err error) {
	defer recoverAssertion(&err)

	ctx := NewRuntimeContext(c.TupleTypes, c.TupleNullable)
	defer func() {
		if ctx.mvccLocked {
			ctx.mvccGuard.Unlock()
		}
	}()
	ctx.snapshot = snapshot
	if c.UsingOffsets {
		ctx.out = newOffsetsOutputBuilder(table, c.OutputColTypes, c.OutputColNullable, c.Config.MaxOutputChunkSize)
	} else {
		ctx.out = newOutputBuilder(c.OutputColTypes, c.OutputColNullable, c.Config.MaxOutputChunkSize)
	}

	if err := c.Read.BeforeQuery(ctx, params); err != nil {
		return nil, err
	}

	for i := 0; i < table.ChunkCount(); i++ {
		if cancel != nil && cancel.Cancelled() {
			break
		}
		chunk := table.GetChunk(i)
		if chunk.Size() == 0 {
			continue
		}
		if _, err := c.Read.BeforeChunk(ctx, chunk); err != nil {
			return nil, err
		}
		if err := c.runChunk(ctx); err != nil {
			return nil, err
		}
	}

	if c.Aggregate != nil {
		c.Aggregate.Finalize(ctx, c.OutputSlots)
	}
	return ctx.out.Finish(), nil
}

// runChunk drives the row loop over the currently bound chunk: the
// limit check happens before the chain runs, and every reader advances
// only after the chain has finished with the current row so a
// lazy-load binding can still observe the row at its current offset.
func (c *Chain) runChunk(ctx *RuntimeContext) error {
	for offset := 0; offset < ctx.chunkSize; offset++ {
		if ctx.limitRows == 0 {
			break
		}
		if c.Read.First != nil {
			resetLazyLatchesOf(c.Read.First)
			if err := c.Read.First.Consume(ctx); err != nil {
				return err
			}
		}
		advanceReaders(ctx.readers)
		ctx.chunkOffset++
	}
	return nil
}

// resetLazyLatchesOf clears every lazy-load latch reachable from op's
// expression trees before a new row starts, so a column read lazily on
// row N is re-read (not skipped) on row N+1.
func resetLazyLatchesOf(op Operator) {
	switch o := op.(type) {
	case *ComputeOp:
		o.Expr.resetLazyLatches()
	case *FilterOp:
		// FilterOp itself holds no expression; the ComputeOp feeding
		// its slot resets its own tree.
	}
	if next := op.Successor(); next != nil {
		resetLazyLatchesOf(next)
	}
}
