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
	"strings"
	"testing"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFloat64(t *testing.T, mem memory.Allocator, vals []float64, valid []bool) *array.Float64 {
	t.Helper()
	b, err := array.NewFixedBuilder[float64](mem)
	require.NoError(t, err)
	defer b.Release()
	b.AppendValues(vals, valid)
	return b.NewFixedArray()
}

func TestRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: "f1-i32", Type: arrow.PrimitiveTypes.Int32},
			{Name: "f2-f64", Type: arrow.PrimitiveTypes.Float64},
		},
	)
	col1 := buildInt32(t, mem, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)
	defer col1.Release()
	col2 := buildFloat64(t, mem, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)
	defer col2.Release()

	cols := []array.Interface{col1, col2}
	rec, err := array.NewRecord(schema, cols)
	require.NoError(t, err)
	defer rec.Release()

	rec.Retain()
	rec.Release()

	if got, want := rec.Schema(), schema; !got.Equal(want) {
		t.Fatalf("invalid schema: got=%#v, want=%#v", got, want)
	}

	if got, want := rec.NumRows(), int64(10); got != want {
		t.Fatalf("invalid number of rows: got=%d, want=%d", got, want)
	}
	if got, want := rec.NumCols(), int64(2); got != want {
		t.Fatalf("invalid number of columns: got=%d, want=%d", got, want)
	}
	if got, want := rec.Column(0), cols[0]; got != want {
		t.Fatalf("invalid column: got=%v, want=%v", got, want)
	}
	if got, want := rec.ColumnName(0), schema.Field(0).Name; got != want {
		t.Fatalf("invalid column name: got=%q, want=%q", got, want)
	}

	col, err := rec.ColumnByName("f2-f64")
	require.NoError(t, err)
	assert.Same(t, col2, col)

	col, err = rec.ColumnByIndex(0)
	require.NoError(t, err)
	assert.Same(t, col1, col)

	_, err = rec.ColumnByName("f3")
	assert.ErrorIs(t, err, arrow.ErrIndex)
	_, err = rec.ColumnByIndex(2)
	assert.ErrorIs(t, err, arrow.ErrIndex)

	for _, tc := range []struct {
		i, j int64
		err  bool
	}{
		{i: 0, j: 10, err: false},
		{i: 1, j: 10, err: false},
		{i: 1, j: 9, err: false},
		{i: 0, j: 0, err: false},
		{i: 1, j: 1, err: false},
		{i: 10, j: 10, err: false},
		{i: 1, j: 0, err: true},
		{i: 1, j: 11, err: true},
	} {
		t.Run("", func(t *testing.T) {
			if tc.err {
				assert.Panics(t, func() { rec.NewSlice(tc.i, tc.j) })
				return
			}

			sub := rec.NewSlice(tc.i, tc.j)
			defer sub.Release()

			assert.Equal(t, tc.j-tc.i, sub.NumRows())
			assert.Equal(t, int64(2), sub.NumCols())
		})
	}
}

func TestNewRecordErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		{Name: "b", Type: arrow.PrimitiveTypes.Float64},
	})

	i3 := buildInt32(t, mem, []int32{1, 2, 3}, nil)
	defer i3.Release()
	f3 := buildFloat64(t, mem, []float64{1, 2, 3}, nil)
	defer f3.Release()
	f2 := buildFloat64(t, mem, []float64{1, 2}, nil)
	defer f2.Release()

	tests := []struct {
		name string
		cols []array.Interface
		err  error
	}{
		{"no columns", nil, arrow.ErrEmptyInput},
		{"too few columns", []array.Interface{i3}, arrow.ErrInvalid},
		{"wrong column type", []array.Interface{f3, i3}, arrow.ErrInvalid},
		{"short column", []array.Interface{i3, f2}, arrow.ErrLengthMismatch},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec, err := array.NewRecord(schema, test.cols)
			assert.ErrorIs(t, err, test.err)
			assert.Nil(t, rec)
		})
	}
}

func TestRecordBatchBuilder(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ids := buildInt32(t, mem, []int32{1, 2, 3, 4, 5}, nil)
	defer ids.Release()
	scores := buildFloat64(t, mem, []float64{0.5, 1, 0, 2.5, 3}, []bool{true, true, false, true, true})
	defer scores.Release()
	names := buildString(mem, []string{"a", "b", "c", "d", "e"}, nil)
	defer names.Release()
	short := buildString(mem, []string{"a", "b", "c", "d"}, nil)
	defer short.Release()

	rec, err := array.NewRecordBatchBuilder().
		AddColumn("id", ids).
		AddColumn("score", scores).
		AddColumn("name", names).
		Finish()
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(5), rec.NumRows())
	assert.Equal(t, int64(3), rec.NumCols())
	assert.False(t, rec.Schema().Field(0).Nullable)
	assert.True(t, rec.Schema().Field(1).Nullable, "columns holding nulls are nullable")

	rec, err = array.NewRecordBatchBuilder().
		AddColumn("id", ids).
		AddColumn("name", short).
		AddColumn("score", scores).
		Finish()
	assert.ErrorIs(t, err, arrow.ErrLengthMismatch)
	assert.Nil(t, rec)

	_, err = array.NewRecordBatchBuilder().Finish()
	assert.ErrorIs(t, err, arrow.ErrEmptyInput)

	b := array.NewRecordBatchBuilder().
		AddField(arrow.Field{Name: "id", Type: arrow.PrimitiveTypes.Int32, Nullable: true}, ids)
	b.Release()
}

func TestRecordBuilder(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "f1-i32", Type: arrow.PrimitiveTypes.Int32},
		{Name: "f2-f64", Type: arrow.PrimitiveTypes.Float64},
		{Name: "f3-str", Type: arrow.BinaryTypes.String, Nullable: true},
	})

	b, err := array.NewRecordBuilder(mem, schema)
	require.NoError(t, err)
	defer b.Release()

	b.Retain()
	b.Release()

	assert.Same(t, schema, b.Schema())
	require.Len(t, b.Fields(), 3)

	b.Reserve(10)
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2, 3, 4, 5}, nil)
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{6, 7, 8, 9, 10}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)
	b.Field(2).(*array.BinaryBuilder).AppendStringValues(
		[]string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		[]bool{true, true, true, false, true, true, true, true, true, true},
	)

	rec, err := b.NewRecord()
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(10), rec.NumRows())
	assert.Equal(t, 1, rec.Column(2).NullN())

	// builders are reset and can be reused
	b.Field(0).AppendNull()
	_, err = b.NewRecord()
	assert.ErrorIs(t, err, arrow.ErrLengthMismatch)

	for i := range b.Fields() {
		assert.Zero(t, b.Field(i).Len(), "failed record discards the rows")
	}

	_, err = array.NewRecordBuilder(mem, arrow.NewSchema([]arrow.Field{{Name: "n", Type: testNullType{}}}))
	assert.ErrorIs(t, err, arrow.ErrUnknownType)
}

func TestRecordBuilder_UnmarshalJSON(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ok", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "point", Type: pointType, Nullable: true},
	})

	b, err := array.NewRecordBuilder(mem, schema)
	require.NoError(t, err)
	defer b.Release()

	const input = `[
		{"id": 1, "ok": true, "point": {"x": 1, "label": "a"}},
		{"id": 2, "point": null},
		{"id": 3, "ok": false, "unknown": "skipped"}
	]`
	require.NoError(t, b.UnmarshalJSON([]byte(input)))

	rec, err := b.NewRecord()
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"ok":true,"point":{"x":1,"label":"a"}},
		{"id":2,"ok":null,"point":null},
		{"id":3,"ok":false,"point":null}
	]`, string(out))

	assert.Error(t, b.UnmarshalJSON([]byte(`[1, 2]`)))
	assert.Error(t, b.UnmarshalJSON([]byte(`[{"id": 1, "id": 2}]`)))
}

func TestRecordFromJSON(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "day", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
	})

	rec, _, err := array.RecordFromJSON(mem, schema, strings.NewReader(`[{"name": "a", "day": "2020-03-01"}, {"name": "b"}]`))
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
	day, ok, err := array.ValueAt[arrow.Date32](rec.Column(1), 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, arrow.Date32(18322), day)
	assert.True(t, rec.Column(1).IsNull(1))

	_, off, err := array.RecordFromJSON(mem, schema, strings.NewReader(`[{"name": 1}]`))
	assert.Error(t, err)
	assert.NotZero(t, off)
}

func TestRecordReader(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "f1-i32", Type: arrow.PrimitiveTypes.Int32},
	})

	var recs []*array.Record
	for _, vals := range [][]int32{{1, 2, 3}, {4, 5}, {6}} {
		col := buildInt32(t, mem, vals, nil)
		rec, err := array.NewRecord(schema, []array.Interface{col})
		require.NoError(t, err)
		col.Release()
		recs = append(recs, rec)
	}
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()

	itr, err := array.NewRecordReader(schema, recs)
	require.NoError(t, err)
	defer itr.Release()

	itr.Retain()
	itr.Release()

	assert.True(t, itr.Schema().Equal(schema))

	n := 0
	for itr.Next() {
		assert.Same(t, recs[n], itr.Record())
		n++
	}
	assert.Equal(t, len(recs), n)
	assert.NoError(t, itr.Err())

	other := arrow.NewSchema([]arrow.Field{{Name: "other", Type: arrow.PrimitiveTypes.Int32}})
	_, err = array.NewRecordReader(other, recs)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}
