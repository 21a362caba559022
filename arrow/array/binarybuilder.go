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
	"encoding/base64"
	"fmt"
	"math"
	"reflect"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
)

const (
	binaryArrayMaximumCapacity = math.MaxInt32
)

// A BinaryBuilder is used to build a Binary or String array using the Append
// methods. Slot i spans values[offsets[i]:offsets[i+1]]; offsets grow with
// the slot count and values with the byte count.
type BinaryBuilder struct {
	builder

	dtype   arrow.BinaryDataType
	offsets *memory.Buffer
	values  *memory.Buffer
}

// NewBinaryBuilder creates a new binary builder. It uses 32-bit integers for the offsets.
func NewBinaryBuilder(mem memory.Allocator, dtype arrow.BinaryDataType) *BinaryBuilder {
	b := &BinaryBuilder{
		builder: newBuilder(mem),
		dtype:   dtype,
	}
	b.refCount.Store(1)
	return b
}

func (b *BinaryBuilder) Type() arrow.DataType { return b.dtype }

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (b *BinaryBuilder) Release() {
	if b.builder.release() {
		b.releaseBuffers()
	}
}

func (b *BinaryBuilder) releaseBuffers() {
	if b.offsets != nil {
		b.offsets.Release()
		b.offsets = nil
	}
	if b.values != nil {
		b.values.Release()
		b.values = nil
	}
}

// Append appends the byte slice to the binary builder.
func (b *BinaryBuilder) Append(v []byte) {
	b.Reserve(1)
	b.appendPayload(v)
	b.appendValid(true)
}

// AppendString appends the string to the binary builder.
func (b *BinaryBuilder) AppendString(v string) {
	b.Append([]byte(v))
}

// AppendNull appends a null value to the binary builder. It adds no bytes.
func (b *BinaryBuilder) AppendNull() {
	b.Reserve(1)
	b.appendPayload(nil)
	b.appendValid(false)
}

func (b *BinaryBuilder) AppendNulls(n int) {
	for i := 0; i < n; i++ {
		b.AppendNull()
	}
}

// AppendValues will append the values in the v slice. The valid slice determines which values
// in v are valid (not null). The valid slice must either be empty or be equal in length to v. If empty,
// all values in v are appended and considered valid.
func (b *BinaryBuilder) AppendValues(v [][]byte, valid []bool) {
	if len(v) != len(valid) && len(valid) != 0 {
		panic("len(v) != len(valid) && len(valid) != 0")
	}

	for i, vv := range v {
		if len(valid) == 0 || valid[i] {
			b.Append(vv)
		} else {
			b.AppendNull()
		}
	}
}

// AppendStringValues will append the values in the v slice. The valid slice determines which values
// in v are valid (not null). The valid slice must either be empty or be equal in length to v. If empty,
// all values in v are appended and considered valid.
func (b *BinaryBuilder) AppendStringValues(v []string, valid []bool) {
	if len(v) != len(valid) && len(valid) != 0 {
		panic("len(v) != len(valid) && len(valid) != 0")
	}

	for i, vv := range v {
		if len(valid) == 0 || valid[i] {
			b.AppendString(vv)
		} else {
			b.AppendNull()
		}
	}
}

// appendPayload copies v at the current end of the values buffer and
// records the new end offset for the next slot.
func (b *BinaryBuilder) appendPayload(v []byte) {
	cur := b.offsetAt(b.length)
	next := cur + len(v)
	if next > binaryArrayMaximumCapacity {
		panic(fmt.Sprintf("arrow/array: binary append of %d bytes would overflow int32 offsets", len(v)))
	}

	b.ReserveData(len(v))
	b.values.WriteBytesAt(cur, v)
	b.values.SetLen(next)

	memory.WriteAt(b.offsets, (b.length+1)*arrow.Int32SizeBytes, int32(next))
	b.offsets.SetLen(b.length + 2)
}

func (b *BinaryBuilder) offsetAt(i int) int {
	return int(memory.ReadAt[int32](b.offsets, i*arrow.Int32SizeBytes))
}

// Value returns the bytes of slot i. The slice is only valid until the
// next append.
func (b *BinaryBuilder) Value(i int) []byte {
	if i < 0 || i >= b.length {
		panic("arrow/array: index out of range")
	}
	return b.values.Bytes()[b.offsetAt(i):b.offsetAt(i+1)]
}

// ValueOffsets returns the length+1 offsets written so far.
func (b *BinaryBuilder) ValueOffsets() []int32 {
	if b.offsets == nil {
		return []int32{0}
	}
	return arrow.CastFromBytesTo[int32](b.offsets.Bytes())
}

// DataLen returns the number of bytes in the data array.
func (b *BinaryBuilder) DataLen() int {
	if b.values == nil {
		return 0
	}
	return b.values.Len()
}

// DataCap returns the total number of bytes that can be stored
// without allocating additional memory.
func (b *BinaryBuilder) DataCap() int {
	if b.values == nil {
		return 0
	}
	return b.values.Cap()
}

// Reserve ensures there is enough space for appending n elements
// by checking the capacity and calling Resize if necessary.
func (b *BinaryBuilder) Reserve(n int) {
	b.builder.reserve(n, b.Resize)
}

// ReserveData ensures there is enough space for appending n bytes
// by checking the capacity and resizing the data buffer if necessary.
func (b *BinaryBuilder) ReserveData(n int) {
	if target := b.DataLen() + n; target > b.DataCap() {
		b.values = growBuffer(b.mem, b.values, nextCapacity(b.DataCap(), target), 1, b.DataLen())
	}
}

// Resize grows the space allocated by b to at least n elements. Only the
// offsets follow the slot count; the values buffer grows on its own.
func (b *BinaryBuilder) Resize(n int) {
	if n < minBuilderCapacity {
		n = minBuilderCapacity
	}
	if n <= b.capacity {
		return
	}
	b.builder.resize(n)
	b.offsets = growBuffer(b.mem, b.offsets, n+1, arrow.Int32SizeBytes, b.length+1)
	if b.values == nil {
		b.values = memory.NewBuffer(b.mem, n, 1)
	}
}

// Finish returns the null bitmap, the length+1 offsets and the payload bytes
// trimmed to their live size, and resets the builder.
func (b *BinaryBuilder) Finish() []*memory.Buffer {
	bufs := []*memory.Buffer{
		b.finishNulls(),
		trimBuffer(b.mem, b.offsets, b.length+1, arrow.Int32SizeBytes),
		trimBuffer(b.mem, b.values, b.DataLen(), 1),
	}
	b.reset()
	return bufs
}

func (b *BinaryBuilder) reset() {
	b.releaseBuffers()
	b.builder.reset()
}

// NewArray creates a Binary or String array, depending on the builder's data
// type, from the memory buffers used by the builder and resets the
// BinaryBuilder so it can be used to build a new array.
func (b *BinaryBuilder) NewArray() Interface {
	if b.dtype.IsUtf8() {
		return b.NewStringArray()
	}
	return b.NewBinaryArray()
}

// NewBinaryArray creates a Binary array from the memory buffers used by the builder and resets the BinaryBuilder
// so it can be used to build a new array.
func (b *BinaryBuilder) NewBinaryArray() (a *Binary) {
	data := b.newData()
	a = NewBinaryData(data)
	data.Release()
	return
}

// NewStringArray creates a String array from the memory buffers used by the builder and resets the BinaryBuilder
// so it can be used to build a new array.
func (b *BinaryBuilder) NewStringArray() (a *String) {
	data := b.newData()
	a = NewStringData(data)
	data.Release()
	return
}

func (b *BinaryBuilder) newData() *Data {
	length, nullN := b.length, b.nullN
	bufs := b.Finish()
	defer releaseBuffers(bufs)
	return NewData(b.dtype, length, bufs, nil, nullN, 0)
}

// AppendValueFromString appends s as is for strings and base64-decoded for
// binary columns.
func (b *BinaryBuilder) AppendValueFromString(s string) error {
	if s == NullValueStr {
		b.AppendNull()
		return nil
	}

	if b.dtype.IsUtf8() {
		b.AppendString(s)
		return nil
	}

	decodedVal, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("could not decode base64 string: %w", err)
	}
	b.Append(decodedVal)
	return nil
}

func (b *BinaryBuilder) UnmarshalOne(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := t.(type) {
	case string:
		if b.dtype.IsUtf8() {
			b.AppendString(v)
			return nil
		}
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return err
		}
		b.Append(data)
	case []byte:
		b.Append(v)
	case nil:
		b.AppendNull()
	default:
		return &json.UnmarshalTypeError{
			Value:  fmt.Sprint(v),
			Type:   reflect.TypeOf([]byte{}),
			Offset: dec.InputOffset(),
		}
	}
	return nil
}

func (b *BinaryBuilder) Unmarshal(dec *json.Decoder) error {
	for dec.More() {
		if err := b.UnmarshalOne(dec); err != nil {
			return err
		}
	}
	return nil
}

func (b *BinaryBuilder) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	t, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("binary builder must unpack from json array, found %s", delim)
	}

	return b.Unmarshal(dec)
}

var (
	_ ArrayBuilder = (*BinaryBuilder)(nil)
)
