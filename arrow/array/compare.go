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

package array

import (
	"bytes"
	"fmt"

	"github.com/arrowbuf/arrowbuf/arrow"
)

// ArrayEqual reports whether the two provided arrays are equal: same data
// type, length, null positions and values in every valid slot. Values held
// by null slots are ignored.
func ArrayEqual(left, right Interface) bool {
	switch {
	case !baseArrayEqual(left, right):
		return false
	case left.Len() == 0:
		return true
	case left.NullN() == left.Len():
		return true
	}

	// at this point, we know both arrays have same type, same length, same number of nulls
	// and nulls at the same place.
	// compare the values.

	switch l := left.(type) {
	case *Boolean:
		return booleanArrayEqual(l, right.(*Boolean))
	case *Binary:
		return binaryArrayEqual(l, right.(*Binary))
	case *String:
		return stringArrayEqual(l, right.(*String))
	case *Int8:
		return fixedArrayEqual(l, right.(*Int8))
	case *Int16:
		return fixedArrayEqual(l, right.(*Int16))
	case *Int32:
		return fixedArrayEqual(l, right.(*Int32))
	case *Int64:
		return fixedArrayEqual(l, right.(*Int64))
	case *Uint8:
		return fixedArrayEqual(l, right.(*Uint8))
	case *Uint16:
		return fixedArrayEqual(l, right.(*Uint16))
	case *Uint32:
		return fixedArrayEqual(l, right.(*Uint32))
	case *Uint64:
		return fixedArrayEqual(l, right.(*Uint64))
	case *Float32:
		return fixedArrayEqual(l, right.(*Float32))
	case *Float64:
		return fixedArrayEqual(l, right.(*Float64))
	case *Date32:
		return fixedArrayEqual(l, right.(*Date32))
	case *Date64:
		return fixedArrayEqual(l, right.(*Date64))
	case *Timestamp:
		return fixedArrayEqual(l, right.(*Timestamp))
	case *Struct:
		return structArrayEqual(l, right.(*Struct))

	default:
		panic(fmt.Errorf("arrow/array: unknown array type %T", l))
	}
}

func baseArrayEqual(left, right Interface) bool {
	switch {
	case left.Len() != right.Len():
		return false
	case left.NullN() != right.NullN():
		return false
	case !arrow.TypeEqual(left.DataType(), right.DataType()):
		return false
	case !validityBitmapEqual(left, right):
		return false
	}
	return true
}

func validityBitmapEqual(left, right Interface) bool {
	n := left.Len()
	if n != right.Len() {
		return false
	}
	if left.NullN() == 0 && right.NullN() == 0 {
		return true
	}
	for i := 0; i < n; i++ {
		if left.IsNull(i) != right.IsNull(i) {
			return false
		}
	}
	return true
}

func fixedArrayEqual[T arrow.FixedWidth](left, right *Fixed[T]) bool {
	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) {
			continue
		}
		if left.Value(i) != right.Value(i) {
			return false
		}
	}
	return true
}

func booleanArrayEqual(left, right *Boolean) bool {
	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) {
			continue
		}
		if left.Value(i) != right.Value(i) {
			return false
		}
	}
	return true
}

func binaryArrayEqual(left, right *Binary) bool {
	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) {
			continue
		}
		if !bytes.Equal(left.Value(i), right.Value(i)) {
			return false
		}
	}
	return true
}

func stringArrayEqual(left, right *String) bool {
	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) {
			continue
		}
		if left.Value(i) != right.Value(i) {
			return false
		}
	}
	return true
}

// structArrayEqual compares children slot by slot, skipping the slots where
// the struct itself is null.
func structArrayEqual(left, right *Struct) bool {
	if left.NullN() == 0 {
		for i, lf := range left.fields {
			if !ArrayEqual(lf, right.fields[i]) {
				return false
			}
		}
		return true
	}

	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) {
			continue
		}
		for j, lf := range left.fields {
			l := NewSlice(lf, int64(i), int64(i+1))
			r := NewSlice(right.fields[j], int64(i), int64(i+1))
			eq := ArrayEqual(l, r)
			l.Release()
			r.Release()
			if !eq {
				return false
			}
		}
	}
	return true
}

// ChunkedEqual reports whether two chunked arrays hold the same logical
// values, regardless of how they are split into chunks.
func ChunkedEqual(left, right *Chunked) bool {
	switch {
	case left == right:
		return true
	case left.Len() != right.Len():
		return false
	case left.NullN() != right.NullN():
		return false
	case !arrow.TypeEqual(left.DataType(), right.DataType()):
		return false
	}

	for beg := 0; beg < left.Len(); {
		lc, li := left.Locate(beg)
		rc, ri := right.Locate(beg)
		lchunk, rchunk := left.Chunk(lc), right.Chunk(rc)
		n := min(lchunk.Len()-li, rchunk.Len()-ri)

		l := NewSlice(lchunk, int64(li), int64(li+n))
		r := NewSlice(rchunk, int64(ri), int64(ri+n))
		eq := ArrayEqual(l, r)
		l.Release()
		r.Release()
		if !eq {
			return false
		}
		beg += n
	}
	return true
}

// RecordEqual reports whether the two provided records have equal schemas
// and equal columns.
func RecordEqual(left, right *Record) bool {
	switch {
	case left.NumCols() != right.NumCols():
		return false
	case left.NumRows() != right.NumRows():
		return false
	case !left.Schema().Equal(right.Schema()):
		return false
	}

	for i := range left.Columns() {
		if !ArrayEqual(left.Column(i), right.Column(i)) {
			return false
		}
	}
	return true
}

// TableEqual reports whether the two provided tables have equal schemas and
// equal columns, whatever their chunking.
func TableEqual(left, right *Table) bool {
	switch {
	case left.NumCols() != right.NumCols():
		return false
	case left.NumRows() != right.NumRows():
		return false
	case !left.Schema().Equal(right.Schema()):
		return false
	}

	for i := 0; i < int(left.NumCols()); i++ {
		if !ChunkedEqual(left.Column(i).Data(), right.Column(i).Data()) {
			return false
		}
	}
	return true
}
