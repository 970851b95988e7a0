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

// Operator is one member of the fused chain: it does its work and,
// unless it short-circuits the row or is terminal, forwards to its
// successor.
type Operator interface {
	// Consume drives one row through this operator.
	Consume(ctx *RuntimeContext) error
	// Successor returns the next operator, or nil for a terminal one.
	Successor() Operator
	// SetSuccessor links this operator to its successor; used once,
	// by the Translator, while assembling the chain.
	SetSuccessor(op Operator)
	// Name identifies the operator kind for Explain output.
	Name() string
}

// base is embedded by every non-terminal operator to hold the single
// successor pointer the chain's linear, acyclic shape requires: each
// operator has exactly one successor.
type base struct {
	next Operator
}

func (b *base) Successor() Operator      { return b.next }
func (b *base) SetSuccessor(op Operator) { b.next = op }

// terminal is embedded by Aggregate/WriteTuples/WriteOffsets, which
// have no successor.
type terminal struct{}

func (terminal) Successor() Operator    { return nil }
func (terminal) SetSuccessor(Operator)  {}
