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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ReadTuples_BeforeChunk_ReusesReadersOnSameType(t *testing.T) {
	seg0 := NewValueSegment(Int64, false, 2)
	chunk0 := NewMemChunk(0, 2, []Segment{seg0}, nil)
	seg1 := NewValueSegment(Int64, false, 2)
	chunk1 := NewMemChunk(1, 2, []Segment{seg1}, nil)

	r := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}}
	ctx := NewRuntimeContext([]DataType{Int64}, []bool{true})

	sameType, err := r.BeforeChunk(ctx, chunk0)
	assert.NoError(t, err)
	assert.False(t, sameType, "no prior chunk to compare against")
	firstReader := r.readers[0]

	sameType, err = r.BeforeChunk(ctx, chunk1)
	assert.NoError(t, err)
	assert.True(t, sameType, "both chunks hold an Int64 value segment")
	assert.Same(t, firstReader, r.readers[0], "same-type chunk reuses the reader instead of rebuilding it")
}

func Test_ReadTuples_BeforeChunk_RebindsReaderToNewSegment(t *testing.T) {
	seg0 := NewValueSegment(Int64, false, 1)
	seg0.SetInt64(0, 111)
	chunk0 := NewMemChunk(0, 1, []Segment{seg0}, nil)
	seg1 := NewValueSegment(Int64, false, 1)
	seg1.SetInt64(0, 222)
	chunk1 := NewMemChunk(1, 1, []Segment{seg1}, nil)

	r := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}}
	ctx := NewRuntimeContext([]DataType{Int64}, []bool{true})

	_, err := r.BeforeChunk(ctx, chunk0)
	assert.NoError(t, err)
	r.readers[0].ReadInto(ctx, 0)
	assert.Equal(t, int64(111), ctx.Tuple.GetInt64(0))

	_, err = r.BeforeChunk(ctx, chunk1)
	assert.NoError(t, err)
	r.readers[0].ReadInto(ctx, 0)
	assert.Equal(t, int64(222), ctx.Tuple.GetInt64(0), "reused reader must read from the new chunk's segment")
}

func Test_ReadTuples_BeforeChunk_RebuildsReadersOnEncodingChange(t *testing.T) {
	seg0 := NewValueSegment(Int64, false, 1)
	chunk0 := NewMemChunk(0, 1, []Segment{seg0}, nil)
	seg1 := NewDictionarySegment(Int64, false, []Value{IntValue(Int64, 1)})
	chunk1 := NewMemChunk(1, 1, []Segment{seg1}, nil)

	r := &ReadTuples{Bindings: []ColumnBinding{{ColumnIndex: 0, Slot: 0}}}
	ctx := NewRuntimeContext([]DataType{Int64}, []bool{true})

	_, err := r.BeforeChunk(ctx, chunk0)
	assert.NoError(t, err)
	firstReader := r.readers[0]

	sameType, err := r.BeforeChunk(ctx, chunk1)
	assert.NoError(t, err)
	assert.False(t, sameType, "value segment then dictionary segment is not the same encoding")
	assert.NotSame(t, firstReader, r.readers[0], "encoding change must rebuild readers, not rebind stale ones")
}
