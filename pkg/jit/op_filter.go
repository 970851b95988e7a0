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

// FilterOp forwards a row only if the boolean at Slot is true and not
// null. The predicate expression itself is evaluated upstream by a
// ComputeOp the Translator inserts into the same slot; FilterOp only
// reads it.
type FilterOp struct {
	base
	Slot int
}

func NewFilterOp(slot int) *FilterOp {
	return &FilterOp{Slot: slot}
}

func (o *FilterOp) Name() string { return "Filter" }

func (o *FilterOp) Consume(ctx *RuntimeContext) error {
	if ctx.Tuple.IsNull(o.Slot) || !ctx.Tuple.GetBool(o.Slot) {
		return nil
	}
	return o.next.Consume(ctx)
}
