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

// InsertReadValueOp materialises one bound reader's current row into a
// tuple slot. The Translator places one for every column binding,
// ahead of the operator that first consumes that column, including
// Compute and Filter consumers; it does not choose a placement per
// consumer count and never attaches a LazyLoadBinding (expr.go) to an
// expression node instead.
type InsertReadValueOp struct {
	base
	ReaderIndex int
	Slot        int
}

func NewInsertReadValueOp(readerIndex, slot int) *InsertReadValueOp {
	return &InsertReadValueOp{ReaderIndex: readerIndex, Slot: slot}
}

func (o *InsertReadValueOp) Name() string { return "InsertReadValue" }

func (o *InsertReadValueOp) Consume(ctx *RuntimeContext) error {
	ctx.readers[o.ReaderIndex].ReadInto(ctx, o.Slot)
	return o.next.Consume(ctx)
}
