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

import "fmt"

// NodeKind is the closed set of expression node kinds the engine
// evaluates.
type NodeKind int

const (
	NodeColumn NodeKind = iota
	NodeAddition
	NodeSubtraction
	NodeMultiplication
	NodeDivision
	NodeModulo
	NodeEquals
	NodeNotEquals
	NodeLessThan
	NodeLessThanEquals
	NodeGreaterThan
	NodeGreaterThanEquals
	NodeBetween
	NodeAnd
	NodeOr
	NodeNot
	NodeIsNull
	NodeIsNotNull
)

func (k NodeKind) String() string {
	names := [...]string{
		"Column", "Addition", "Subtraction", "Multiplication", "Division",
		"Modulo", "Equals", "NotEquals", "LessThan", "LessThanEquals",
		"GreaterThan", "GreaterThanEquals", "Between", "And", "Or", "Not",
		"IsNull", "IsNotNull",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

func (k NodeKind) isArithmetic() bool {
	switch k {
	case NodeAddition, NodeSubtraction, NodeMultiplication, NodeDivision, NodeModulo:
		return true
	}
	return false
}

func (k NodeKind) isComparison() bool {
	switch k {
	case NodeEquals, NodeNotEquals, NodeLessThan, NodeLessThanEquals, NodeGreaterThan, NodeGreaterThanEquals:
		return true
	}
	return false
}

// LazyLoadBinding attaches a segment reader to the first expression
// node that observes a lazily-placed column.
type LazyLoadBinding struct {
	Reader SegmentReader
	loaded bool // per-row latch: this row's read_into has already fired
}

// ExpressionNode is one node of the binary expression tree evaluated
// against a RuntimeTuple. Column nodes have no children; every other
// kind has one, two (binary) or three (Between) children.
type ExpressionNode struct {
	Kind     NodeKind
	Left     *ExpressionNode
	Right    *ExpressionNode
	Third    *ExpressionNode // Between's hi bound
	Result   TupleSlot
	LazyLoad *LazyLoadBinding

	// valueIDMode marks a column or literal operand node of a
	// comparison rewritten to compare raw value-ids rather than decoded
	// values.
	valueIDMode bool
}

// resetLazyLatches clears the per-row "already loaded" latch on every
// lazy-load binding in the tree, called once per row before
// evaluation.
func (n *ExpressionNode) resetLazyLatches() {
	if n == nil {
		return
	}
	if n.LazyLoad != nil {
		n.LazyLoad.loaded = false
	}
	n.Left.resetLazyLatches()
	n.Right.resetLazyLatches()
	n.Third.resetLazyLatches()
}

func (n *ExpressionNode) maybeLoad(ctx *RuntimeContext) {
	if n.LazyLoad != nil && !n.LazyLoad.loaded {
		n.LazyLoad.Reader.ReadInto(ctx, n.Result.Index)
		n.LazyLoad.loaded = true
	}
}

// Evaluate computes the subtree rooted at n and writes its scalar
// result into n.Result.Index.
func Evaluate(n *ExpressionNode, ctx *RuntimeContext) {
	switch n.Kind {
	case NodeColumn:
		n.maybeLoad(ctx)
	case NodeAddition, NodeSubtraction, NodeMultiplication, NodeDivision, NodeModulo:
		evalArithmetic(n, ctx)
	case NodeEquals, NodeNotEquals, NodeLessThan, NodeLessThanEquals, NodeGreaterThan, NodeGreaterThanEquals:
		evalComparison(n, ctx)
	case NodeBetween:
		evalBetween(n, ctx)
	case NodeAnd:
		evalAnd(n, ctx)
	case NodeOr:
		evalOr(n, ctx)
	case NodeNot:
		evalNot(n, ctx)
	case NodeIsNull:
		Evaluate(n.Left, ctx)
		ctx.Tuple.SetBool(n.Result.Index, ctx.Tuple.IsNull(n.Left.Result.Index))
	case NodeIsNotNull:
		Evaluate(n.Left, ctx)
		ctx.Tuple.SetBool(n.Result.Index, !ctx.Tuple.IsNull(n.Left.Result.Index))
	default:
		assertFunc(false, "unhandled expression node kind %s", n.Kind)
	}
}
