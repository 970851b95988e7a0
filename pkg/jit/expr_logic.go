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

// andWithNull and orWithNull implement three-valued logic: each takes
// both operands' values and null flags and returns (resultIsNull,
// resultValue).

func andWithNull(left, right, lnull, rnull bool) (isNull, result bool) {
	switch {
	case lnull && rnull:
		return true, false
	case lnull:
		// NULL AND false = false; NULL AND true = NULL
		return right, false
	case rnull:
		return left, false
	default:
		return false, left && right
	}
}

func orWithNull(left, right, lnull, rnull bool) (isNull, result bool) {
	switch {
	case lnull && rnull:
		return true, false
	case lnull:
		// NULL OR true = true; NULL OR false = NULL
		return !right, true
	case rnull:
		return !left, true
	default:
		return false, left || right
	}
}

// evalAnd implements three-valued AND: false AND null = false,
// otherwise null propagates unless both operands are non-null.
// Short-circuit evaluation is permitted but only observable through
// skipped lazy loads: the left is always evaluated, and the right is
// skipped only when the left is non-null false, which already proves
// the result.
func evalAnd(n *ExpressionNode, ctx *RuntimeContext) {
	Evaluate(n.Left, ctx)
	lNull := ctx.Tuple.IsNull(n.Left.Result.Index)
	if !lNull && !ctx.Tuple.GetBool(n.Left.Result.Index) {
		// false AND anything = false; skip the right entirely,
		// including its lazy loads.
		ctx.Tuple.SetBool(n.Result.Index, false)
		return
	}
	Evaluate(n.Right, ctx)
	rNull := ctx.Tuple.IsNull(n.Right.Result.Index)
	var lVal, rVal bool
	if !lNull {
		lVal = ctx.Tuple.GetBool(n.Left.Result.Index)
	}
	if !rNull {
		rVal = ctx.Tuple.GetBool(n.Right.Result.Index)
	}
	isNull, res := andWithNull(lVal, rVal, lNull, rNull)
	if isNull {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	ctx.Tuple.SetBool(n.Result.Index, res)
}

// evalOr implements three-valued OR: true OR null = true, otherwise
// null propagates unless both operands are non-null.
func evalOr(n *ExpressionNode, ctx *RuntimeContext) {
	Evaluate(n.Left, ctx)
	lNull := ctx.Tuple.IsNull(n.Left.Result.Index)
	if !lNull && ctx.Tuple.GetBool(n.Left.Result.Index) {
		// true OR anything = true; skip the right entirely.
		ctx.Tuple.SetBool(n.Result.Index, true)
		return
	}
	Evaluate(n.Right, ctx)
	rNull := ctx.Tuple.IsNull(n.Right.Result.Index)
	var lVal, rVal bool
	if !lNull {
		lVal = ctx.Tuple.GetBool(n.Left.Result.Index)
	}
	if !rNull {
		rVal = ctx.Tuple.GetBool(n.Right.Result.Index)
	}
	isNull, res := orWithNull(lVal, rVal, lNull, rNull)
	if isNull {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	ctx.Tuple.SetBool(n.Result.Index, res)
}

// evalNot flips a non-null boolean; null stays null.
func evalNot(n *ExpressionNode, ctx *RuntimeContext) {
	Evaluate(n.Left, ctx)
	if ctx.Tuple.IsNull(n.Left.Result.Index) {
		ctx.Tuple.SetNull(n.Result.Index, true)
		return
	}
	ctx.Tuple.SetBool(n.Result.Index, !ctx.Tuple.GetBool(n.Left.Result.Index))
}
