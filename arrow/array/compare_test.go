// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package array_test

import (
	"math"
	"strings"
	"testing"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromJSON(t *testing.T, mem memory.Allocator, dtype arrow.DataType, doc string) array.Interface {
	t.Helper()
	arr, _, err := array.FromJSON(mem, dtype, strings.NewReader(doc))
	require.NoError(t, err)
	return arr
}

func TestArrayEqual(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	for _, tc := range []struct {
		name        string
		dtype       arrow.DataType
		left, right string
		equal       bool
	}{
		{"int8", arrow.PrimitiveTypes.Int8, `[1, 2, null]`, `[1, 2, null]`, true},
		{"int16 values", arrow.PrimitiveTypes.Int16, `[1, 2, 3]`, `[1, 2, 4]`, false},
		{"int32 nulls", arrow.PrimitiveTypes.Int32, `[1, null, 3]`, `[1, 2, 3]`, false},
		{"int64 null positions", arrow.PrimitiveTypes.Int64, `[null, 2]`, `[2, null]`, false},
		{"uint8 length", arrow.PrimitiveTypes.Uint8, `[1, 2]`, `[1, 2, 3]`, false},
		{"uint16", arrow.PrimitiveTypes.Uint16, `[65535]`, `[65535]`, true},
		{"uint32", arrow.PrimitiveTypes.Uint32, `[7, 8]`, `[7, 9]`, false},
		{"uint64", arrow.PrimitiveTypes.Uint64, `[18446744073709551615]`, `[18446744073709551615]`, true},
		{"float32", arrow.PrimitiveTypes.Float32, `[1.5, null]`, `[1.5, null]`, true},
		{"float64", arrow.PrimitiveTypes.Float64, `[1.5, 2.5]`, `[1.5, 2.25]`, false},
		{"boolean", arrow.FixedWidthTypes.Boolean, `[true, false, null]`, `[true, false, null]`, true},
		{"boolean values", arrow.FixedWidthTypes.Boolean, `[true, false]`, `[true, true]`, false},
		{"string", arrow.BinaryTypes.String, `["a", "", null, "bcd"]`, `["a", "", null, "bcd"]`, true},
		{"string values", arrow.BinaryTypes.String, `["a", "bc"]`, `["ab", "c"]`, false},
		{"binary", arrow.BinaryTypes.Binary, `["AAE=", null]`, `["AAE=", null]`, true},
		{"date32", arrow.FixedWidthTypes.Date32, `["2020-03-01", null]`, `["2020-03-01", null]`, true},
		{"date64", arrow.FixedWidthTypes.Date64, `[86400000]`, `[0]`, false},
		{"timestamp", arrow.FixedWidthTypes.Timestamp_ms, `[1, 2]`, `[1, 2]`, true},
		{"all nulls", arrow.PrimitiveTypes.Int32, `[null, null]`, `[null, null]`, true},
		{"empty", arrow.BinaryTypes.String, `[]`, `[]`, true},
		{"struct", pointType, `[{"x": 1, "label": "a"}, null]`, `[{"x": 1, "label": "a"}, null]`, true},
		{"struct values", pointType, `[{"x": 1, "label": "a"}]`, `[{"x": 1, "label": "b"}]`, false},
		{"struct child nulls", pointType, `[{"x": 1}, null]`, `[{"x": 1, "label": null}, null]`, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			left := fromJSON(t, mem, tc.dtype, tc.left)
			defer left.Release()
			right := fromJSON(t, mem, tc.dtype, tc.right)
			defer right.Release()

			assert.Equal(t, tc.equal, array.ArrayEqual(left, right))
			assert.Equal(t, tc.equal, array.ArrayEqual(right, left))
			assert.True(t, array.ArrayEqual(left, left))
		})
	}
}

func TestArrayEqualDifferentTypes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	i32 := fromJSON(t, mem, arrow.PrimitiveTypes.Int32, `[1, 2]`)
	defer i32.Release()
	u32 := fromJSON(t, mem, arrow.PrimitiveTypes.Uint32, `[1, 2]`)
	defer u32.Release()
	ts := fromJSON(t, mem, arrow.FixedWidthTypes.Timestamp_s, `[1, 2]`)
	defer ts.Release()
	tms := fromJSON(t, mem, arrow.FixedWidthTypes.Timestamp_ms, `[1, 2]`)
	defer tms.Release()

	assert.False(t, array.ArrayEqual(i32, u32))
	assert.False(t, array.ArrayEqual(ts, tms))
}

func TestArrayEqualIgnoresNullSlots(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	// slot 1 is null in both, with different payloads
	nulls := memory.NewBufferBytes([]byte{0x05})
	lvals := memory.NewBufferBytes(arrow.CastToBytes([]int32{1, 99, 3}))
	rvals := memory.NewBufferBytes(arrow.CastToBytes([]int32{1, 0, 3}))

	ldata := array.NewData(arrow.PrimitiveTypes.Int32, 3, []*memory.Buffer{nulls, lvals}, nil, 1, 0)
	defer ldata.Release()
	rdata := array.NewData(arrow.PrimitiveTypes.Int32, 3, []*memory.Buffer{nulls, rvals}, nil, 1, 0)
	defer rdata.Release()

	left := array.NewFixedData[int32](ldata)
	defer left.Release()
	right := array.NewFixedData[int32](rdata)
	defer right.Release()

	assert.True(t, array.ArrayEqual(left, right))
}

func TestArrayEqualNaN(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	nan := buildFloat64(t, mem, []float64{1, math.NaN()}, nil)
	defer nan.Release()

	assert.False(t, array.ArrayEqual(nan, nan))
}

func TestArrayEqualSlices(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	full := fromJSON(t, mem, arrow.BinaryTypes.String, `["x", "a", null, "b", "y"]`)
	defer full.Release()
	want := fromJSON(t, mem, arrow.BinaryTypes.String, `["a", null, "b"]`)
	defer want.Release()

	slice := array.NewSlice(full, 1, 4)
	defer slice.Release()

	assert.True(t, array.ArrayEqual(slice, want))

	bools := fromJSON(t, mem, arrow.FixedWidthTypes.Boolean, `[true, true, false, null, true]`)
	defer bools.Release()
	wantBools := fromJSON(t, mem, arrow.FixedWidthTypes.Boolean, `[false, null]`)
	defer wantBools.Release()

	bslice := array.NewSlice(bools, 2, 4)
	defer bslice.Release()

	assert.True(t, array.ArrayEqual(bslice, wantBools))
}

func TestChunkedEqual(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a1 := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[1, 2, 3]`)
	defer a1.Release()
	a2 := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[4, null]`)
	defer a2.Release()
	b1 := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[1]`)
	defer b1.Release()
	b2 := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[2, 3, 4, null]`)
	defer b2.Release()
	c1 := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[1, 2, 3, 4, 5]`)
	defer c1.Release()

	left := array.NewChunked(arrow.PrimitiveTypes.Int64, []array.Interface{a1, a2})
	defer left.Release()
	right := array.NewChunked(arrow.PrimitiveTypes.Int64, []array.Interface{b1, b2})
	defer right.Release()
	other := array.NewChunked(arrow.PrimitiveTypes.Int64, []array.Interface{c1})
	defer other.Release()
	empty := array.NewChunked(arrow.PrimitiveTypes.Int64, nil)
	defer empty.Release()

	assert.True(t, array.ChunkedEqual(left, left))
	assert.True(t, array.ChunkedEqual(left, right))
	assert.True(t, array.ChunkedEqual(right, left))
	assert.False(t, array.ChunkedEqual(left, other))
	assert.False(t, array.ChunkedEqual(left, empty))
}

func TestRecordEqual(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	})

	parse := func(doc string) *array.Record {
		rec, _, err := array.RecordFromJSON(mem, schema, strings.NewReader(doc))
		require.NoError(t, err)
		return rec
	}

	r1 := parse(`[{"id": 1, "name": "a"}, {"id": 2}]`)
	defer r1.Release()
	r2 := parse(`[{"name": "a", "id": 1}, {"id": 2, "name": null}]`)
	defer r2.Release()
	r3 := parse(`[{"id": 1, "name": "a"}, {"id": 3}]`)
	defer r3.Release()

	assert.True(t, array.RecordEqual(r1, r2))
	assert.False(t, array.RecordEqual(r1, r3))

	head := r1.NewSlice(0, 1)
	defer head.Release()
	assert.False(t, array.RecordEqual(r1, head))

	ids, err := r1.ColumnByIndex(0)
	require.NoError(t, err)
	other, err := array.NewRecord(arrow.NewSchema([]arrow.Field{
		{Name: "key", Type: arrow.PrimitiveTypes.Int32},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}), []array.Interface{ids, r1.Column(1)})
	require.NoError(t, err)
	defer other.Release()
	assert.False(t, array.RecordEqual(r1, other))
}

func TestTableEqual(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
	})

	var recs []*array.Record
	for _, doc := range []string{`[{"id": 1}, {"id": 2}]`, `[{"id": 3}]`, `[{"id": 1}, {"id": 2}, {"id": 3}]`} {
		rec, _, err := array.RecordFromJSON(mem, schema, strings.NewReader(doc))
		require.NoError(t, err)
		defer rec.Release()
		recs = append(recs, rec)
	}

	chunked, err := array.NewTableFromRecords(recs[:2])
	require.NoError(t, err)
	defer chunked.Release()
	flat, err := array.NewTableFromRecords(recs[2:])
	require.NoError(t, err)
	defer flat.Release()
	short, err := array.NewTableFromRecords(recs[:1])
	require.NoError(t, err)
	defer short.Release()

	assert.True(t, array.TableEqual(chunked, flat))
	assert.False(t, array.TableEqual(chunked, short))
}
