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

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// compareValues orders two non-null Values of the same declared
// column type. Ordering on strings is lexicographic; on floats NaN
// compares unequal to everything and is never less/greater.
func compareValues(a, b Value, typ DataType) int {
	switch typ {
	case String:
		return strings.Compare(a.Str, b.Str)
	case Float, Double:
		if math.IsNaN(a.F64) || math.IsNaN(b.F64) {
			return 2 // sentinel: neither <, ==, nor > holds
		}
		switch {
		case a.F64 < b.F64:
			return -1
		case a.F64 > b.F64:
			return 1
		default:
			return 0
		}
	default: // Int32, Int64, Bool, ValueIDType
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	}
}

// valueKey returns a hashable/orderable string key for deduplicating
// dictionary entries during construction.
func valueKey(v Value) string {
	switch v.Typ {
	case String:
		return "s:" + v.Str
	case Float, Double:
		return fmt.Sprintf("f:%v", v.F64)
	default:
		return fmt.Sprintf("i:%d", v.I64)
	}
}

// sortValues sorts a dictionary array in place per compareValues.
func sortValues(vals []Value, typ DataType) {
	sort.Slice(vals, func(i, j int) bool {
		return compareValues(vals[i], vals[j], typ) < 0
	})
}
