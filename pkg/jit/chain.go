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
	"fmt"

	"github.com/huandu/go-clone"
	"github.com/xlab/treeprint"
)

// Chain is a compiled, immutable fused operator chain: the output of
// the Plan Translator and the input to Execute. It may be shared
// across queries only via Clone, which produces an independent chain
// with fresh per-query state.
type Chain struct {
	Config EngineConfig

	TupleTypes    []DataType
	TupleNullable []bool

	Read      *ReadTuples
	Aggregate *AggregateOp // set iff the chain's terminal is Aggregate

	OutputSlots       []TupleSlot // Write-Tuples/Aggregate output columns
	OutputColTypes    []DataType
	OutputColNullable []bool
	UsingOffsets      bool // true iff the terminal is Write-Offsets
}

// Clone deep-copies the chain. The clone shares no mutable state with
// the original: the operator graph, the expression trees and every
// literal/parameter slot are copied.
func (c *Chain) Clone() *Chain {
	return clone.Clone(c).(*Chain)
}

// Explain renders the chain as a tree, following the successor chain
// from Read.First, in the style of plan.go's LogicalOperator.String().
func (c *Chain) Explain() string {
	tree := treeprint.NewWithRoot("Chain:")
	tree.AddMetaNode("tuple slots", fmt.Sprintf("%d", len(c.TupleTypes)))
	explainReadTuples(tree, c.Read)
	explainOperator(tree, c.Read.First)
	return tree.String()
}

func explainReadTuples(tree treeprint.Tree, r *ReadTuples) {
	branch := tree.AddBranch("ReadTuples:")
	branch.AddMetaNode("columns", fmt.Sprintf("%d", len(r.Bindings)))
	if len(r.Literals) > 0 {
		branch.AddMetaNode("literals", fmt.Sprintf("%d", len(r.Literals)))
	}
	if len(r.Parameters) > 0 {
		branch.AddMetaNode("parameters", fmt.Sprintf("%d", len(r.Parameters)))
	}
	if len(r.ValueIDPreds) > 0 {
		branch.AddMetaNode("value-id predicates", fmt.Sprintf("%d", len(r.ValueIDPreds)))
	}
	if r.LimitExpr != nil {
		branch.AddMetaNode("limit expr", "set")
	}
}

func explainOperator(tree treeprint.Tree, op Operator) {
	if op == nil {
		return
	}
	branch := tree.AddBranch(op.Name() + ":")
	switch o := op.(type) {
	case *ComputeOp:
		branch.AddMetaNode("kind", o.Expr.Kind.String())
	case *FilterOp:
		branch.AddMetaNode("slot", fmt.Sprintf("%d", o.Slot))
	case *AggregateOp:
		branch.AddMetaNode("group by", fmt.Sprintf("%d slots", len(o.GroupBy)))
		branch.AddMetaNode("aggregates", fmt.Sprintf("%d", len(o.Aggs)))
	case *WriteTuplesOp:
		branch.AddMetaNode("output slots", fmt.Sprintf("%d", len(o.OutputSlots)))
	}
	explainOperator(branch, op.Successor())
}
