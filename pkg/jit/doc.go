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

// Package jit implements a fused, tuple-at-a-time execution core for a
// small chain of relational operators: scan, MVCC-validate, filter,
// compute, limit, aggregate and write. A Chain walks one Chunk of a
// column-oriented Table at a time, materialises each row into a
// fixed-size RuntimeTuple, evaluates an expression tree against it and
// either forwards the row to the next operator or accumulates it into
// an aggregate.
package jit
