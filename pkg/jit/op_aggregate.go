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

import "strings"

// AggFunc is the closed set of aggregate functions the fused chain
// supports. CountStar increments unconditionally; every other function
// skips null inputs.
type AggFunc int

const (
	AggCountStar AggFunc = iota
	AggCount
	AggSum
	AggAvg
	AggMin
	AggMax
)

// AggSpec is one aggregate column of an Aggregate operator: which
// function, which input slot (ignored for CountStar), and which result
// slot the finalized value is written into.
type AggSpec struct {
	Func   AggFunc
	Input  TupleSlot
	Result TupleSlot
}

// accumulator is the per-group, per-aggregate running state. Sum/Avg
// keep separate integer and float running totals so that an
// integer-typed SUM never round-trips through float64.
type accumulator struct {
	count int64
	sumI  int64
	sumF  float64
	min   Value
	max   Value
	set   bool
}

func (a *accumulator) update(spec AggSpec, tuple *RuntimeTuple) {
	switch spec.Func {
	case AggCountStar:
		a.count++
		return
	case AggCount:
		if !tuple.IsNull(spec.Input.Index) {
			a.count++
		}
		return
	}
	if tuple.IsNull(spec.Input.Index) {
		return
	}
	switch spec.Func {
	case AggSum, AggAvg:
		if spec.Input.Typ == Float || spec.Input.Typ == Double {
			a.sumF += tuple.GetFloat64(spec.Input.Index)
		} else {
			a.sumI += tuple.GetInt64(spec.Input.Index)
		}
		a.count++
	case AggMin, AggMax:
		v := readSlotValue(tuple, spec.Input)
		if !a.set {
			a.min, a.max, a.set = v, v, true
			return
		}
		if compareValues(v, a.min, spec.Input.Typ) < 0 {
			a.min = v
		}
		if compareValues(v, a.max, spec.Input.Typ) > 0 {
			a.max = v
		}
	}
}

// finalize computes the closed-form result: AVG (and, by the same
// reasoning, SUM) over zero contributing rows is null; MIN/MAX over
// zero rows is null; COUNT is always well-defined.
func (a *accumulator) finalize(spec AggSpec) Value {
	switch spec.Func {
	case AggCountStar, AggCount:
		return IntValue(Int64, a.count)
	case AggSum:
		if a.count == 0 {
			return NullValue(spec.Result.Typ)
		}
		if spec.Result.Typ == Float || spec.Result.Typ == Double {
			return FloatValue(spec.Result.Typ, a.sumF+float64(a.sumI))
		}
		return IntValue(spec.Result.Typ, a.sumI)
	case AggAvg:
		if a.count == 0 {
			return NullValue(spec.Result.Typ)
		}
		return FloatValue(spec.Result.Typ, (a.sumF+float64(a.sumI))/float64(a.count))
	case AggMin:
		if !a.set {
			return NullValue(spec.Result.Typ)
		}
		return a.min
	case AggMax:
		if !a.set {
			return NullValue(spec.Result.Typ)
		}
		return a.max
	}
	assertFunc(false, "unhandled aggregate function %d", spec.Func)
	return NullValue(spec.Result.Typ)
}

// readSlotValue snapshots a tuple slot into a build-time Value, used to
// carry group-by keys and MIN/MAX candidates outside the tuple's
// per-row lifetime.
func readSlotValue(tuple *RuntimeTuple, slot TupleSlot) Value {
	if tuple.IsNull(slot.Index) {
		return NullValue(slot.Typ)
	}
	switch slot.Typ {
	case Float, Double:
		return FloatValue(slot.Typ, tuple.GetFloat64(slot.Index))
	case String:
		return StringValue(tuple.GetString(slot.Index))
	default:
		return IntValue(slot.Typ, tuple.GetInt64(slot.Index))
	}
}

// groupState is one row of the group-by hash map: the decoded key
// values (for re-installation into the output tuple) plus one
// accumulator per aggregate column.
type groupState struct {
	keyValues []Value
	accs      []accumulator
}

// aggregateState is the Aggregate operator's per-query accumulator,
// owned by RuntimeContext and never shared across queries.
type aggregateState struct {
	groups map[string]*groupState
}

// AggregateOp is a terminal operator maintaining a hash map from
// group-by key to an accumulator vector.
type AggregateOp struct {
	terminal
	GroupBy []TupleSlot
	Aggs    []AggSpec
}

func NewAggregateOp(groupBy []TupleSlot, aggs []AggSpec) *AggregateOp {
	return &AggregateOp{GroupBy: groupBy, Aggs: aggs}
}

func (o *AggregateOp) Name() string { return "Aggregate" }

func (o *AggregateOp) Consume(ctx *RuntimeContext) error {
	if ctx.aggState == nil {
		ctx.aggState = &aggregateState{groups: make(map[string]*groupState)}
	}
	key := o.encodeKey(ctx.Tuple)
	gs, ok := ctx.aggState.groups[key]
	if !ok {
		gs = &groupState{
			keyValues: make([]Value, len(o.GroupBy)),
			accs:      make([]accumulator, len(o.Aggs)),
		}
		for i, s := range o.GroupBy {
			gs.keyValues[i] = readSlotValue(ctx.Tuple, s)
		}
		ctx.aggState.groups[key] = gs
	}
	for i, spec := range o.Aggs {
		gs.accs[i].update(spec, ctx.Tuple)
	}
	return nil
}

// encodeKey builds a hashable key from the group-by slots' current
// values; a global aggregate (no GROUP BY) always encodes to the same
// key, collapsing every row into one group.
func (o *AggregateOp) encodeKey(tuple *RuntimeTuple) string {
	if len(o.GroupBy) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, s := range o.GroupBy {
		if tuple.IsNull(s.Index) {
			sb.WriteString("N;")
			continue
		}
		sb.WriteString(valueKey(readSlotValue(tuple, s)))
		sb.WriteByte(';')
	}
	return sb.String()
}

// Finalize walks the completed group map, once all chunks have been
// consumed, writing one output row per group by re-installing each
// group's key and finalized aggregate values into the shared tuple.
// Output order for groups is unspecified.
func (o *AggregateOp) Finalize(ctx *RuntimeContext, outSlots []TupleSlot) {
	if ctx.aggState == nil {
		return
	}
	for _, gs := range ctx.aggState.groups {
		for i, s := range o.GroupBy {
			ctx.Tuple.SetValue(s.Index, gs.keyValues[i])
		}
		for i, spec := range o.Aggs {
			ctx.Tuple.SetValue(spec.Result.Index, gs.accs[i].finalize(spec))
		}
		ctx.out.AppendRow(ctx.Tuple, outSlots)
	}
}
