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
	"sync/atomic"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/bitutil"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"golang.org/x/xerrors"
)

// Interface is the read-only view shared by every array kind. Typed access
// goes through the concrete types, As or ValueAt.
//
// Arrays are immutable: they are safe for concurrent reads and for
// concurrent Retain and Release calls.
type Interface interface {
	// DataType returns the type metadata for this instance.
	DataType() arrow.DataType

	// NullN returns the number of null values in the array.
	NullN() int

	// Len returns the number of elements in the array.
	Len() int

	// IsNull returns true if value at index is null.
	// NOTE: IsNull will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
	IsNull(i int) bool

	// IsValid returns true if value at index is not null.
	// NOTE: IsValid will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
	IsValid(i int) bool

	// Data returns the buffers and metadata backing the array.
	Data() *Data

	// ValueAny returns the value at slot i as an opaque value, nil when the
	// slot is null.
	ValueAny(i int) any

	// ValueStr returns the value at slot i in the form accepted by the
	// builder's AppendValueFromString.
	ValueStr(i int) string

	// GetOneForMarshal returns the JSON-marshalable form of slot i.
	GetOneForMarshal(i int) any

	MarshalJSON() ([]byte, error)

	// Retain increases the reference count by 1.
	// Retain may be called simultaneously from multiple goroutines.
	Retain()

	// Release decreases the reference count by 1.
	// Release may be called simultaneously from multiple goroutines.
	// When the reference count goes to zero, the memory is freed.
	Release()
}

type array struct {
	refCount atomic.Int64
	data     *Data
	nulls    *memory.Buffer
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (a *array) Retain() {
	a.refCount.Add(1)
}

// Release decreases the reference count by 1.
// Release may be called simultaneously from multiple goroutines.
// When the reference count goes to zero, the memory is freed.
func (a *array) Release() {
	debug.Assert(a.refCount.Load() > 0, "too many releases")

	if a.refCount.Add(-1) == 0 {
		a.data.Release()
		a.data, a.nulls = nil, nil
	}
}

// DataType returns the type metadata for this instance.
func (a *array) DataType() arrow.DataType { return a.data.dtype }

// NullN returns the number of null values in the array.
func (a *array) NullN() int { return a.data.nullN }

// Len returns the number of elements in the array.
func (a *array) Len() int { return a.data.length }

// IsNull returns true if value at index is null.
func (a *array) IsNull(i int) bool {
	if i < 0 || i >= a.data.length {
		panic("arrow/array: index out of range")
	}
	return !bitutil.IsValid(a.data.offset+i, a.nulls)
}

// IsValid returns true if value at index is not null.
func (a *array) IsValid(i int) bool { return !a.IsNull(i) }

func (a *array) Data() *Data { return a.data }

func (a *array) setData(data *Data) {
	// Retain before releasing in case a.data is the same as data.
	data.Retain()

	if a.data != nil {
		a.data.Release()
	}

	if len(data.buffers) > 0 {
		a.nulls = data.buffers[0]
	}
	a.data = data
}

func (a *array) Offset() int {
	return a.data.Offset()
}

// MakeFromData constructs the array type matching data's data type.
// Unsupported types fail with arrow.ErrUnknownType and buffer lists that
// do not match the layout with arrow.ErrInvalid.
func MakeFromData(data *Data) (Interface, error) {
	if want := arrow.Layout(data.dtype).NumBuffers(); want != len(data.buffers) {
		if want == 0 {
			return nil, xerrors.Errorf("arrow/array: no array for data type %v: %w", data.dtype, arrow.ErrUnknownType)
		}
		return nil, xerrors.Errorf("arrow/array: %v array needs %d buffers, got %d: %w",
			data.dtype, want, len(data.buffers), arrow.ErrInvalid)
	}
	if err := validateBuffers(data); err != nil {
		return nil, err
	}

	switch data.dtype.ID() {
	case arrow.BOOL:
		return NewBooleanData(data), nil
	case arrow.INT8:
		return NewFixedData[int8](data), nil
	case arrow.INT16:
		return NewFixedData[int16](data), nil
	case arrow.INT32:
		return NewFixedData[int32](data), nil
	case arrow.INT64:
		return NewFixedData[int64](data), nil
	case arrow.UINT8:
		return NewFixedData[uint8](data), nil
	case arrow.UINT16:
		return NewFixedData[uint16](data), nil
	case arrow.UINT32:
		return NewFixedData[uint32](data), nil
	case arrow.UINT64:
		return NewFixedData[uint64](data), nil
	case arrow.FLOAT32:
		return NewFixedData[float32](data), nil
	case arrow.FLOAT64:
		return NewFixedData[float64](data), nil
	case arrow.DATE32:
		return NewFixedData[arrow.Date32](data), nil
	case arrow.DATE64:
		return NewFixedData[arrow.Date64](data), nil
	case arrow.TIMESTAMP:
		return NewFixedData[arrow.Timestamp](data), nil
	case arrow.BINARY:
		return NewBinaryData(data), nil
	case arrow.STRING:
		return NewStringData(data), nil
	case arrow.STRUCT:
		arr, err := newStructData(data)
		if err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, xerrors.Errorf("arrow/array: no array for data type %v: %w", data.dtype, arrow.ErrUnknownType)
}

func bufLen(b *memory.Buffer) int {
	if b == nil {
		return 0
	}
	return len(b.Bytes())
}

// validateBuffers checks that data's buffers are long enough to back
// offset+length slots of its layout.
func validateBuffers(data *Data) error {
	if data.length == 0 {
		return nil
	}
	end := data.offset + data.length

	if n := bufLen(data.buffers[0]); n > 0 && n < bitutil.BytesForBits(end) {
		return xerrors.Errorf("arrow/array: %v validity bitmap has %d bytes, need %d: %w",
			data.dtype, n, bitutil.BytesForBits(end), arrow.ErrInvalid)
	}

	switch arrow.Layout(data.dtype) {
	case arrow.LayoutBoolean:
		if n := bufLen(data.buffers[1]); n < bitutil.BytesForBits(end) {
			return xerrors.Errorf("arrow/array: %v values bitmap has %d bytes, need %d: %w",
				data.dtype, n, bitutil.BytesForBits(end), arrow.ErrInvalid)
		}
	case arrow.LayoutFixed:
		width := data.dtype.(arrow.FixedWidthDataType).BitWidth() / 8
		if n := bufLen(data.buffers[1]); n < end*width {
			return xerrors.Errorf("arrow/array: %v values buffer has %d bytes, need %d: %w",
				data.dtype, n, end*width, arrow.ErrInvalid)
		}
	case arrow.LayoutVariable:
		if n := bufLen(data.buffers[1]); n < (end+1)*arrow.Int32SizeBytes {
			return xerrors.Errorf("arrow/array: %v offsets buffer has %d bytes, need %d: %w",
				data.dtype, n, (end+1)*arrow.Int32SizeBytes, arrow.ErrInvalid)
		}
		offsets := arrow.CastFromBytesTo[int32](data.buffers[1].Bytes())[data.offset : end+1]
		for i, o := range offsets {
			if o < 0 || (i > 0 && o < offsets[i-1]) {
				return xerrors.Errorf("arrow/array: %v offsets are not monotonic at slot %d: %w",
					data.dtype, data.offset+i, arrow.ErrInvalid)
			}
		}
		if last, n := int(offsets[len(offsets)-1]), bufLen(data.buffers[2]); last > n {
			return xerrors.Errorf("arrow/array: %v offsets reach byte %d of a %d byte values buffer: %w",
				data.dtype, last, n, arrow.ErrInvalid)
		}
	}
	return nil
}

func mustMakeFromData(data *Data) Interface {
	arr, err := MakeFromData(data)
	if err != nil {
		panic(err)
	}
	return arr
}

// NewSlice returns a new zero-copy slice of the array with the indicated
// indices i and j, corresponding to array[i:j].
// The returned array must be Release()'d after use.
//
// NewSlice panics if the slice is outside the valid range of the input array.
// NewSlice panics if j < i.
func NewSlice(arr Interface, i, j int64) Interface {
	data := NewSliceData(arr.Data(), i, j)
	slice := mustMakeFromData(data)
	data.Release()
	return slice
}

// As returns arr as the concrete array type A, failing with arrow.ErrType
// when arr is of another kind.
func As[A Interface](arr Interface) (A, error) {
	out, ok := arr.(A)
	if !ok {
		return out, xerrors.Errorf("arrow/array: cannot use %v array as %T: %w", arr.DataType(), out, arrow.ErrType)
	}
	return out, nil
}

// ValueAt returns the value at slot i of arr as a T. The boolean is false
// when the slot is null. Slots outside the array fail with arrow.ErrIndex
// and values that are not T fail with arrow.ErrType.
//
// T is the type returned by the array's ValueAny: the element type for
// fixed-width arrays (arrow.Date32 for date32 columns and so on), bool,
// []byte, string, or map[string]any for structs.
func ValueAt[T any](arr Interface, i int) (T, bool, error) {
	var zero T
	if i < 0 || i >= arr.Len() {
		return zero, false, xerrors.Errorf("arrow/array: slot %d outside array of length %d: %w", i, arr.Len(), arrow.ErrIndex)
	}
	if arr.IsNull(i) {
		return zero, false, nil
	}

	v, ok := arr.ValueAny(i).(T)
	if !ok {
		return zero, false, xerrors.Errorf("arrow/array: %v value is not a %T: %w", arr.DataType(), zero, arrow.ErrType)
	}
	return v, true, nil
}
