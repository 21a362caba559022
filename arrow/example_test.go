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

package arrow_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
)

// This example demonstrates how to build an array of int64 values using a builder and Append.
func Example_minimal() {
	// Create an allocator.
	pool := memory.NewGoAllocator()

	// Create an int64 array builder.
	builder, err := array.NewFixedBuilder[int64](pool)
	if err != nil {
		log.Fatal(err)
	}
	defer builder.Release()

	builder.Append(1)
	builder.Append(2)
	builder.Append(3)
	builder.AppendNull()
	builder.Append(5)

	// Finish building the int64 array and reset the builder.
	ints := builder.NewFixedArray()
	defer ints.Release()

	// Enumerate the values.
	for i, v := range ints.Values() {
		fmt.Printf("ints[%d] = ", i)
		if ints.IsNull(i) {
			fmt.Println(array.NullValueStr)
		} else {
			fmt.Println(v)
		}
	}
	fmt.Printf("ints = %v\n", ints)

	// Output:
	// ints[0] = 1
	// ints[1] = 2
	// ints[2] = 3
	// ints[3] = (null)
	// ints[4] = 5
	// ints = [1 2 3 (null) 5]
}

// This example demonstrates creating an array, sourcing the values and
// validity from slices.
func Example_fromSlices() {
	pool := memory.NewGoAllocator()

	b := array.NewBinaryBuilder(pool, arrow.BinaryTypes.String)
	defer b.Release()

	b.AppendStringValues(
		[]string{"hello", "", "world", "!"},
		[]bool{true, false, true, true},
	)

	strs := b.NewStringArray()
	defer strs.Release()

	fmt.Printf("len=%d nulls=%d\n", strs.Len(), strs.NullN())
	fmt.Printf("strs = %v\n", strs)
	fmt.Printf("offsets = %v\n", strs.ValueOffsets())

	// Output:
	// len=4 nulls=1
	// strs = ["hello" (null) "world" "!"]
	// offsets = [0 5 5 10 11]
}

// This example demonstrates how to create a record batch, field by field,
// with a record builder.
func Example_record() {
	pool := memory.NewGoAllocator()

	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: "f1-i32", Type: arrow.PrimitiveTypes.Int32},
			{Name: "f2-f64", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		},
	)

	b, err := array.NewRecordBuilder(pool, schema)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Release()

	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2, 3, 4, 5, 6}, nil)
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{7, 8, 9, 10}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, []bool{true, true, false, true, true, true, true, true, false, true})

	rec, err := b.NewRecord()
	if err != nil {
		log.Fatal(err)
	}
	defer rec.Release()

	for i, col := range rec.Columns() {
		fmt.Printf("column[%d] %q: %v\n", i, rec.ColumnName(i), col)
	}

	// Output:
	// column[0] "f1-i32": [1 2 3 4 5 6 7 8 9 10]
	// column[1] "f2-f64": [1 2 (null) 4 5 6 7 8 (null) 10]
}

// This example demonstrates how to decode rows from JSON into a record and
// encode them back.
func Example_recordFromJSON() {
	pool := memory.NewGoAllocator()

	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int64},
			{Name: "day", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
			{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		},
	)

	rec, _, err := array.RecordFromJSON(pool, schema, strings.NewReader(`[
		{"id": 1, "day": "2020-03-01", "name": "a"},
		{"id": 2, "name": null},
		{"name": "c", "id": 3, "day": "1969-12-31"}
	]`))
	if err != nil {
		log.Fatal(err)
	}
	defer rec.Release()

	fmt.Printf("rows: %d\n", rec.NumRows())
	out, err := rec.MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))

	// Output:
	// rows: 3
	// [{"id":1,"day":"2020-03-01","name":"a"},{"id":2,"day":null,"name":null},{"id":3,"day":"1969-12-31","name":"c"}]
}

// This example demonstrates how to assemble record batches into a table and
// iterate over it in fixed-size record batches.
func Example_tableReader() {
	pool := memory.NewGoAllocator()

	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: "f1-i32", Type: arrow.PrimitiveTypes.Int32},
			{Name: "f2-f64", Type: arrow.PrimitiveTypes.Float64},
		},
	)

	b, err := array.NewRecordBuilder(pool, schema)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Release()

	b.Field(0).(*array.Int32Builder).AppendValues([]int32{1, 2, 3, 4, 5, 6}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{1, 2, 3, 4, 5, 6}, nil)
	rec1, err := b.NewRecord()
	if err != nil {
		log.Fatal(err)
	}
	defer rec1.Release()

	b.Field(0).(*array.Int32Builder).AppendValues([]int32{7, 8, 9, 10}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{7, 8, 9, 10}, nil)
	rec2, err := b.NewRecord()
	if err != nil {
		log.Fatal(err)
	}
	defer rec2.Release()

	tbl, err := array.NewTableFromRecords([]*array.Record{rec1, rec2})
	if err != nil {
		log.Fatal(err)
	}
	defer tbl.Release()

	tr := array.NewTableReader(tbl, 5)
	defer tr.Release()

	n := 0
	for tr.Next() {
		rec := tr.Record()
		for i, col := range rec.Columns() {
			fmt.Printf("rec[%d][%q]: %v\n", n, rec.ColumnName(i), col)
		}
		n++
	}

	// Output:
	// rec[0]["f1-i32"]: [1 2 3 4 5]
	// rec[0]["f2-f64"]: [1 2 3 4 5]
	// rec[1]["f1-i32"]: [6]
	// rec[1]["f2-f64"]: [6]
	// rec[2]["f1-i32"]: [7 8 9 10]
	// rec[2]["f2-f64"]: [7 8 9 10]
}

// This example shows how to look up a single value of a column that is
// split across chunks.
func Example_chunkedValueAt() {
	pool := memory.NewGoAllocator()

	b := array.NewBinaryBuilder(pool, arrow.BinaryTypes.String)
	defer b.Release()

	b.AppendStringValues([]string{"a", "b"}, nil)
	c1 := b.NewArray()
	defer c1.Release()

	b.AppendStringValues([]string{"c", "", "e"}, []bool{true, false, true})
	c2 := b.NewArray()
	defer c2.Release()

	chunked := array.NewChunked(arrow.BinaryTypes.String, []array.Interface{c1, c2})
	defer chunked.Release()

	for i := 0; i < chunked.Len(); i++ {
		chunk, local := chunked.Locate(i)
		v, ok, err := array.ChunkedValueAt[string](chunked, i)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("slot %d: chunk=%d index=%d value=%q valid=%v\n", i, chunk, local, v, ok)
	}

	// Output:
	// slot 0: chunk=0 index=0 value="a" valid=true
	// slot 1: chunk=0 index=1 value="b" valid=true
	// slot 2: chunk=1 index=0 value="c" valid=true
	// slot 3: chunk=1 index=1 value="" valid=false
	// slot 4: chunk=1 index=2 value="e" valid=true
}
