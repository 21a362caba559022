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
	"reflect"
	"strconv"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/bitutil"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
)

// BooleanBuilder builds a boolean column. Values are bit-packed like the
// null bitmap, so both buffers are sized in bytes for Cap() bits.
type BooleanBuilder struct {
	builder

	values *memory.Buffer
}

func NewBooleanBuilder(mem memory.Allocator) *BooleanBuilder {
	b := &BooleanBuilder{builder: newBuilder(mem)}
	b.refCount.Store(1)
	return b
}

func (b *BooleanBuilder) Type() arrow.DataType { return arrow.FixedWidthTypes.Boolean }

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (b *BooleanBuilder) Release() {
	if b.builder.release() && b.values != nil {
		b.values.Release()
		b.values = nil
	}
}

func (b *BooleanBuilder) Append(v bool) {
	b.Reserve(1)
	b.unsafeAppend(v)
	b.appendValid(true)
}

func (b *BooleanBuilder) AppendByte(v byte) {
	b.Append(v != 0)
}

func (b *BooleanBuilder) AppendNull() {
	b.Reserve(1)
	b.unsafeAppend(false)
	b.appendValid(false)
}

func (b *BooleanBuilder) AppendNulls(n int) {
	for i := 0; i < n; i++ {
		b.AppendNull()
	}
}

// AppendValues will append the values in the v slice. The valid slice determines which values
// in v are valid (not null). The valid slice must either be empty or be equal in length to v. If empty,
// all values in v are appended and considered valid.
func (b *BooleanBuilder) AppendValues(v []bool, valid []bool) {
	if len(v) != len(valid) && len(valid) != 0 {
		panic("len(v) != len(valid) && len(valid) != 0")
	}

	if len(v) == 0 {
		return
	}

	b.Reserve(len(v))
	for i, vv := range v {
		ok := len(valid) == 0 || valid[i]
		b.unsafeAppend(vv && ok)
		b.appendValid(ok)
	}
}

func (b *BooleanBuilder) unsafeAppend(v bool) {
	pos := b.length + b.offset
	debug.Assert(bitutil.BitmapBytes(pos) <= b.values.Cap(), "arrow/array: boolean values buffer too small")
	bitutil.SetBitTo(pos, b.values, v)
	b.values.SetLen(bitutil.BytesForBits(pos + 1))
}

// Value returns the value appended at slot i.
func (b *BooleanBuilder) Value(i int) bool {
	if i < 0 || i >= b.length {
		panic("arrow/array: index out of range")
	}
	return bitutil.IsSet(i+b.offset, b.values)
}

// Reserve ensures there is enough space for appending n elements
// by checking the capacity and calling Resize if necessary.
func (b *BooleanBuilder) Reserve(n int) {
	b.builder.reserve(n, b.Resize)
}

// Resize grows the space allocated by b to at least n elements. It never
// shrinks the builder.
func (b *BooleanBuilder) Resize(n int) {
	if n < minBuilderCapacity {
		n = minBuilderCapacity
	}
	if n <= b.capacity {
		return
	}
	b.builder.resize(n)
	b.values = growBuffer(b.mem, b.values, bitutil.BitmapBytes(n+b.offset), 1, bitutil.BytesForBits(b.length+b.offset))
}

// Finish returns the null bitmap and bit-packed values, both trimmed to
// BitmapBytes(Len()) bytes, and resets the builder.
func (b *BooleanBuilder) Finish() []*memory.Buffer {
	bufs := []*memory.Buffer{
		b.finishNulls(),
		trimBuffer(b.mem, b.values, bitutil.BitmapBytes(b.length+b.offset), 1),
	}
	b.reset()
	return bufs
}

func (b *BooleanBuilder) reset() {
	if b.values != nil {
		b.values.Release()
		b.values = nil
	}
	b.builder.reset()
}

// NewArray creates a Boolean array from the memory buffers used by the builder and resets the BooleanBuilder
// so it can be used to build a new array.
func (b *BooleanBuilder) NewArray() Interface {
	return b.NewBooleanArray()
}

// NewBooleanArray creates a Boolean array from the memory buffers used by the builder and resets the BooleanBuilder
// so it can be used to build a new array.
func (b *BooleanBuilder) NewBooleanArray() (a *Boolean) {
	data := b.newData()
	a = NewBooleanData(data)
	data.Release()
	return
}

func (b *BooleanBuilder) newData() *Data {
	length, nullN := b.length, b.nullN
	bufs := b.Finish()
	defer releaseBuffers(bufs)
	return NewData(arrow.FixedWidthTypes.Boolean, length, bufs, nil, nullN, 0)
}

func (b *BooleanBuilder) AppendValueFromString(s string) error {
	if s == NullValueStr {
		b.AppendNull()
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.Append(val)
	return nil
}

func (b *BooleanBuilder) UnmarshalOne(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := t.(type) {
	case bool:
		b.Append(v)
	case string:
		val, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		b.Append(val)
	case json.Number:
		val, err := strconv.ParseBool(v.String())
		if err != nil {
			return err
		}
		b.Append(val)
	case nil:
		b.AppendNull()
	default:
		return &json.UnmarshalTypeError{
			Value:  fmt.Sprint(t),
			Type:   reflect.TypeOf(true),
			Offset: dec.InputOffset(),
		}
	}
	return nil
}

func (b *BooleanBuilder) Unmarshal(dec *json.Decoder) error {
	for dec.More() {
		if err := b.UnmarshalOne(dec); err != nil {
			return err
		}
	}
	return nil
}

func (b *BooleanBuilder) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	t, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("boolean builder must unpack from json array, found %s", delim)
	}

	return b.Unmarshal(dec)
}

var (
	_ ArrayBuilder = (*BooleanBuilder)(nil)
)
