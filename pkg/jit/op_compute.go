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

// ComputeOp evaluates one derived expression into its result slot and
// forwards unconditionally.
type ComputeOp struct {
	base
	Expr *ExpressionNode
}

func NewComputeOp(expr *ExpressionNode) *ComputeOp {
	return &ComputeOp{Expr: expr}
}

func (o *ComputeOp) Name() string { return "Compute" }

func (o *ComputeOp) Consume(ctx *RuntimeContext) error {
	Evaluate(o.Expr, ctx)
	return o.next.Consume(ctx)
}
