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

package main

import (
	"fmt"

	"github.com/daviszhen/rowjit/pkg/jit"
)

// buildDemoTable generates a two-column (id int64, age int64) table of
// rows chunkSize at a time, cycling ages 18..77 so an age>30 filter
// keeps 47 of every 60 rows (roughly four fifths).
func buildDemoTable(rows, chunkSize int) jit.Table {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	var chunks []jit.Chunk
	var chunkID uint64
	for start := 0; start < rows; start += chunkSize {
		n := chunkSize
		if start+n > rows {
			n = rows - start
		}
		idSeg := jit.NewValueSegment(jit.Int64, false, n)
		ageSeg := jit.NewValueSegment(jit.Int64, false, n)
		for i := 0; i < n; i++ {
			row := start + i
			idSeg.SetInt64(i, int64(row))
			ageSeg.SetInt64(i, int64(18+row%60))
		}
		chunks = append(chunks, jit.NewMemChunk(chunkID, n, []jit.Segment{idSeg, ageSeg}, nil))
		chunkID++
	}
	return jit.NewMemTable(chunks, []jit.DataType{jit.Int64, jit.Int64}, []bool{false, false})
}

// ageFilterPlan builds the logical plan `select id, age from t where
// age > threshold`, a scan+filter+project scenario.
func ageFilterPlan(table jit.Table, threshold int64) *jit.LQPNode {
	scan := &jit.LQPNode{Kind: jit.LQPScan, Table: table}
	pred := &jit.LQPNode{
		Kind: jit.LQPPredicate,
		Predicate: &jit.LQPExpr{
			Kind: jit.LQPExprGreater,
			Left: &jit.LQPExpr{Kind: jit.LQPExprColumn, ColumnIndex: 1, Typ: jit.Int64},
			Right: &jit.LQPExpr{
				Kind:    jit.LQPExprLiteral,
				Literal: jit.IntValue(jit.Int64, threshold),
			},
		},
		Children: []*jit.LQPNode{scan},
	}
	return &jit.LQPNode{
		Kind: jit.LQPProjection,
		Projections: []*jit.LQPExpr{
			{Kind: jit.LQPExprColumn, ColumnIndex: 0, Typ: jit.Int64},
			{Kind: jit.LQPExprColumn, ColumnIndex: 1, Typ: jit.Int64},
		},
		Children: []*jit.LQPNode{pred},
	}
}

func printOutput(out jit.Table) {
	printed := 0
	const maxPrint = 20
	// int64At resolves a Write-Offsets reference chunk through its
	// referenced table; a materialised chunk is read directly.
	int64At := func(chunk jit.Chunk, col, row int) int64 {
		if ref, ok := chunk.GetSegment(col).(*jit.ReferenceSegment); ok {
			pos := ref.At(row)
			chunk = chunk.ReferencedTable().GetChunk(int(pos.ChunkID))
			row = pos.RowOffset
		}
		return chunk.GetSegment(col).(*jit.ValueSegment).Int64(row)
	}
	for i := 0; i < out.ChunkCount() && printed < maxPrint; i++ {
		chunk := out.GetChunk(i)
		for r := 0; r < chunk.Size() && printed < maxPrint; r++ {
			fmt.Printf("id=%d age=%d\n", int64At(chunk, 0, r), int64At(chunk, 1, r))
			printed++
		}
	}
	if printed == maxPrint {
		fmt.Println("...")
	}
}
