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

// DataType is the closed set of scalar types the runtime tuple and the
// expression engine understand. ValueID stands in for a dictionary
// value-id; Null is the type of a literal null.
type DataType int

const (
	Int32 DataType = iota
	Int64
	Float
	Double
	String
	Bool
	ValueIDType
	NullType
)

func (t DataType) String() string {
	switch t {
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case String:
		return "String"
	case Bool:
		return "Bool"
	case ValueIDType:
		return "ValueID"
	case NullType:
		return "Null"
	}
	panic(fmt.Sprintf("usp data type %d", t))
}

// IsNumeric reports whether t participates in arithmetic promotion.
func (t DataType) IsNumeric() bool {
	switch t {
	case Int32, Int64, Float, Double:
		return true
	}
	return false
}

// isIntegral reports whether t is a whole-number payload (also used
// for value-id and boolean comparisons).
func (t DataType) isIntegral() bool {
	switch t {
	case Int32, Int64, Bool, ValueIDType:
		return true
	}
	return false
}

// promote computes the type-promotion join of two operand types: a
// node's result type is the join of its operand types. Promotion is
// only defined between compatible families (numeric-with-numeric, or
// identical types); anything else is a build-time TypeMismatch,
// surfaced by the caller.
func promote(l, r DataType) (DataType, bool) {
	if l == r {
		return l, true
	}
	if l == NullType {
		return r, true
	}
	if r == NullType {
		return l, true
	}
	if l.IsNumeric() && r.IsNumeric() {
		rank := map[DataType]int{Int32: 0, Int64: 1, Float: 2, Double: 3}
		if rank[l] >= rank[r] {
			return l, true
		}
		return r, true
	}
	return NullType, false
}

// Value is a build-time literal or externally-supplied parameter
// value: the payload an installer decodes into a RuntimeTuple cell at
// before_query/before_chunk time, never a raw value-id.
type Value struct {
	Typ  DataType
	I64  int64
	F64  float64
	Str  string
	Null bool
}

// AsBool reports the boolean payload of a non-null Bool value.
func (v Value) AsBool() bool { return v.I64 != 0 }

// IntValue builds a non-null integral Value.
func IntValue(t DataType, i int64) Value { return Value{Typ: t, I64: i} }

// FloatValue builds a non-null Float/Double Value.
func FloatValue(t DataType, f float64) Value { return Value{Typ: t, F64: f} }

// StringValue builds a non-null String Value.
func StringValue(s string) Value { return Value{Typ: String, Str: s} }

// BoolValue builds a non-null Bool Value.
func BoolValue(b bool) Value {
	i := int64(0)
	if b {
		i = 1
	}
	return Value{Typ: Bool, I64: i}
}

// NullValue builds a null Value of the given declared type.
func NullValue(t DataType) Value { return Value{Typ: t, Null: true} }

// ParameterID stably identifies an external parameter across
// executions of the same compiled Chain.
type ParameterID int
