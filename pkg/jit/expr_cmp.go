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

import "math"

// evalComparison evaluates children in the common type; null
// propagates. In value-id mode both operands are raw dictionary
// value-ids and the comparison is a plain integer comparison.
func evalComparison(n *ExpressionNode, ctx *RuntimeContext) {
	Evaluate(n.Left, ctx)
	Evaluate(n.Right, ctx)
	l, r := n.Left.Result, n.Right.Result
	if ctx.Tuple.IsNull(l.Index) || ctx.Tuple.IsNull(r.Index) {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	cmp := compareOperands(ctx, l, r)
	ctx.Tuple.SetBool(n.Result.Index, applyComparison(n.Kind, cmp))
}

// compareOperands returns -1/0/1, or 2 if the operands are
// incomparable (a NaN operand), following compareValues' contract.
func compareOperands(ctx *RuntimeContext, l, r TupleSlot) int {
	typ := l.Typ
	if typ == ValueIDType || r.Typ == ValueIDType {
		lv, rv := ctx.Tuple.GetInt64(l.Index), ctx.Tuple.GetInt64(r.Index)
		switch {
		case lv < rv:
			return -1
		case lv > rv:
			return 1
		default:
			return 0
		}
	}
	switch typ {
	case String:
		return compareValues(StringValue(ctx.Tuple.GetString(l.Index)), StringValue(ctx.Tuple.GetString(r.Index)), String)
	case Float, Double:
		lv, rv := ctx.Tuple.GetFloat64(l.Index), ctx.Tuple.GetFloat64(r.Index)
		if math.IsNaN(lv) || math.IsNaN(rv) {
			return 2
		}
		switch {
		case lv < rv:
			return -1
		case lv > rv:
			return 1
		default:
			return 0
		}
	default:
		lv, rv := ctx.Tuple.GetInt64(l.Index), ctx.Tuple.GetInt64(r.Index)
		switch {
		case lv < rv:
			return -1
		case lv > rv:
			return 1
		default:
			return 0
		}
	}
}

func applyComparison(kind NodeKind, cmp int) bool {
	if cmp == 2 { // NaN: never less/greater, and per IEEE also never equal
		return kind == NodeNotEquals
	}
	switch kind {
	case NodeEquals:
		return cmp == 0
	case NodeNotEquals:
		return cmp != 0
	case NodeLessThan:
		return cmp < 0
	case NodeLessThanEquals:
		return cmp <= 0
	case NodeGreaterThan:
		return cmp > 0
	case NodeGreaterThanEquals:
		return cmp >= 0
	}
	assertFunc(false, "unhandled comparison kind %s", kind)
	return false
}

// evalBetween implements the ternary Between: lo <= x <= hi, null in
// any operand yields null.
func evalBetween(n *ExpressionNode, ctx *RuntimeContext) {
	Evaluate(n.Left, ctx)
	Evaluate(n.Right, ctx)
	Evaluate(n.Third, ctx)
	x, lo, hi := n.Left.Result, n.Right.Result, n.Third.Result
	if ctx.Tuple.IsNull(x.Index) || ctx.Tuple.IsNull(lo.Index) || ctx.Tuple.IsNull(hi.Index) {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	geLo := applyComparison(NodeGreaterThanEquals, compareOperands(ctx, x, lo))
	leHi := applyComparison(NodeLessThanEquals, compareOperands(ctx, x, hi))
	ctx.Tuple.SetBool(n.Result.Index, geLo && leHi)
}

// ValueIDBound selects which dictionary bound a comparison kind uses
// when rewritten to a value-id predicate, and what comparison to run
// after the rewrite.
type ValueIDBound int

const (
	BoundLower ValueIDBound = iota
	BoundUpper
)

// TableOneRewrite returns, for a comparison kind against a
// dictionary-backed column, which bound to use and the (possibly
// rewritten) comparison kind to run against the precomputed value-id.
func TableOneRewrite(kind NodeKind) (bound ValueIDBound, rewritten NodeKind) {
	switch kind {
	case NodeEquals, NodeNotEquals, NodeLessThan, NodeGreaterThanEquals:
		return BoundLower, kind
	case NodeLessThanEquals:
		return BoundUpper, NodeLessThan
	case NodeGreaterThan:
		return BoundUpper, NodeGreaterThanEquals
	}
	assertFunc(false, "kind %s is not value-id acceleratable", kind)
	return BoundLower, kind
}

// PrecomputeValueID resolves the value-id a literal/parameter should
// compare against for a dictionary-accelerated predicate, using the
// bound TableOneRewrite selects. For an = or != predicate whose literal is
// absent from the dictionary, the sentinel InvalidValueID (== math's
// MaxUint32, guaranteed larger than any real value-id) is installed,
// which makes "=" false and "!=" true for every non-null row.
func PrecomputeValueID(seg *DictionarySegment, lit Value, kind NodeKind) uint32 {
	bound, _ := TableOneRewrite(kind)
	var id uint32
	if bound == BoundLower {
		id = seg.LowerBound(lit)
	} else {
		id = seg.UpperBound(lit)
	}
	if kind == NodeEquals || kind == NodeNotEquals {
		lb := seg.LowerBound(lit)
		absent := lb >= uint32(len(seg.dict)) || compareValues(seg.dict[lb], lit, seg.typ) != 0
		if absent {
			// literal absent from the dictionary: install the
			// sentinel, which no real row's value-id ever equals, so
			// "=" is false and "!=" is true for every (non-null) row.
			return InvalidValueID
		}
	}
	return id
}
