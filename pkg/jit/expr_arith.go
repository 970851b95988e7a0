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

// evalArithmetic evaluates children; if either is null, sets result
// null; otherwise computes in the promoted type. Division and Modulo
// by zero yield null, not an error.
func evalArithmetic(n *ExpressionNode, ctx *RuntimeContext) {
	Evaluate(n.Left, ctx)
	Evaluate(n.Right, ctx)
	l, r := n.Left.Result, n.Right.Result
	if ctx.Tuple.IsNull(l.Index) || ctx.Tuple.IsNull(r.Index) {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	if n.Result.Typ == Float || n.Result.Typ == Double {
		lv := floatOperand(ctx, l)
		rv := floatOperand(ctx, r)
		res, isNull := applyFloatArith(n.Kind, lv, rv)
		if isNull {
			ctx.Tuple.SetNull(n.Result.Index, true)
			return
		}
		ctx.Tuple.SetFloat64(n.Result.Index, res)
		return
	}
	lv := ctx.Tuple.GetInt64(l.Index)
	rv := ctx.Tuple.GetInt64(r.Index)
	res, isNull := applyIntArith(n.Kind, lv, rv)
	if isNull {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	ctx.Tuple.SetInt64(n.Result.Index, res)
}

func floatOperand(ctx *RuntimeContext, slot TupleSlot) float64 {
	if slot.Typ == Float || slot.Typ == Double {
		return ctx.Tuple.GetFloat64(slot.Index)
	}
	return float64(ctx.Tuple.GetInt64(slot.Index))
}

func applyIntArith(kind NodeKind, l, r int64) (res int64, isNull bool) {
	switch kind {
	case NodeAddition:
		return l + r, false
	case NodeSubtraction:
		return l - r, false
	case NodeMultiplication:
		return l * r, false
	case NodeDivision:
		if r == 0 {
			return 0, true
		}
		return l / r, false
	case NodeModulo:
		if r == 0 {
			return 0, true
		}
		return l % r, false
	}
	assertFunc(false, "unhandled integer arithmetic kind %s", kind)
	return 0, true
}

func applyFloatArith(kind NodeKind, l, r float64) (res float64, isNull bool) {
	switch kind {
	case NodeAddition:
		return l + r, false
	case NodeSubtraction:
		return l - r, false
	case NodeMultiplication:
		return l * r, false
	case NodeDivision:
		if r == 0 {
			return 0, true
		}
		return l / r, false
	case NodeModulo:
		if r == 0 {
			return 0, true
		}
		return math.Mod(l, r), false
	}
	assertFunc(false, "unhandled float arithmetic kind %s", kind)
	return 0, true
}
