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
	"github.com/arrowbuf/arrowbuf/internal/json"
	"golang.org/x/xerrors"
)

const (
	minBuilderCapacity = 1 << 4
)

// NullValueStr is the string form of a null slot, as returned by ValueStr
// and accepted by AppendValueFromString.
const NullValueStr = "(null)"

// Builder provides an interface to build arrow arrays one slot at a time.
//
// A Builder is owned by a single goroutine; none of its methods are safe for
// concurrent use.
type Builder interface {
	// Retain increases the reference count by 1.
	Retain()

	// Release decreases the reference count by 1.
	// When the reference count goes to zero, the working buffers are freed.
	Release()

	// Type returns the data type of the column being built.
	Type() arrow.DataType

	// Len returns the number of slots appended so far.
	Len() int

	// Cap returns the number of slots that can be appended without
	// allocating.
	Cap() int

	// NullN returns the number of null slots appended so far.
	NullN() int

	// Offset returns the bit offset applied to every bitmap operation.
	Offset() int

	// IsNull reports whether slot i was appended as null.
	IsNull(i int) bool

	// AppendNull adds a new null slot.
	AppendNull()

	// AppendValueFromString parses s and appends the resulting value.
	// NullValueStr appends a null slot.
	AppendValueFromString(s string) error

	// Reserve ensures there is enough space for appending n slots.
	Reserve(n int)

	// Resize grows the builder to hold at least n slots.
	Resize(n int)

	// Finish returns the column's buffers trimmed to Len slots and resets the
	// builder so it can be used to build a new column. The caller owns the
	// returned buffers and must Release them.
	Finish() []*memory.Buffer

	// UnmarshalJSON appends the elements of a JSON array.
	UnmarshalJSON([]byte) error

	// UnmarshalOne appends the next JSON value read from dec.
	UnmarshalOne(dec *json.Decoder) error

	// Unmarshal appends JSON values from dec until the enclosing array ends.
	Unmarshal(dec *json.Decoder) error
}

// ArrayBuilder is a Builder that can wrap its finished buffers into an array.
type ArrayBuilder interface {
	Builder

	// NewArray creates an array from the buffers held by the builder and
	// resets it so it can be used to build a new array.
	NewArray() Interface
}

// builder holds the state shared by every layout: slot accounting and the
// null bitmap. Values buffers belong to the concrete builders.
type builder struct {
	refCount atomic.Int64
	mem      memory.Allocator
	nulls    *memory.Buffer
	length   int
	capacity int
	nullN    int
	offset   int
}

func newBuilder(mem memory.Allocator) builder {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return builder{mem: mem}
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (b *builder) Retain() {
	b.refCount.Add(1)
}

// Len returns the number of elements in the array builder.
func (b *builder) Len() int { return b.length }

// Cap returns the total number of elements that can be stored without allocating additional memory.
func (b *builder) Cap() int { return b.capacity }

// NullN returns the number of null values in the array builder.
func (b *builder) NullN() int { return b.nullN }

// Offset returns the bitmap offset, zero for every builder in this package.
func (b *builder) Offset() int { return b.offset }

func (b *builder) IsNull(i int) bool {
	if i < 0 || i >= b.length {
		panic("arrow/array: index out of range")
	}
	if b.nullN == 0 {
		return false
	}
	return !bitutil.IsSet(i+b.offset, b.nulls)
}

// release drops the null bitmap once the last reference is gone. It reports
// whether the concrete builder should free its own buffers too.
func (b *builder) release() bool {
	debug.Assert(b.refCount.Load() > 0, "too many releases")

	if b.refCount.Add(-1) == 0 {
		if b.nulls != nil {
			b.nulls.Release()
			b.nulls = nil
		}
		return true
	}
	return false
}

// reserve grows the builder through resize when appending n slots would
// exceed its capacity.
func (b *builder) reserve(n int, resize func(int)) {
	if target := b.length + n; target > b.capacity {
		resize(nextCapacity(b.capacity, target))
	}
}

// resize grows the null bitmap to cover n slots.
func (b *builder) resize(n int) {
	b.nulls = growBuffer(b.mem, b.nulls, bitutil.BitmapBytes(n+b.offset), 1, bitutil.BytesForBits(b.length+b.offset))
	b.capacity = n
}

// appendValid records the validity of the next slot and advances the length.
func (b *builder) appendValid(v bool) {
	bitutil.SetBitTo(b.length+b.offset, b.nulls, v)
	if !v {
		b.nullN++
	}
	b.length++
	b.nulls.SetLen(bitutil.BytesForBits(b.length + b.offset))
}

// finishNulls returns the trimmed null bitmap. A column without nulls gets
// an empty bitmap.
func (b *builder) finishNulls() *memory.Buffer {
	if b.nullN == 0 {
		return memory.NewBuffer(b.mem, 0, 1)
	}
	return trimBuffer(b.mem, b.nulls, bitutil.BitmapBytes(b.length+b.offset), 1)
}

func (b *builder) reset() {
	if b.nulls != nil {
		b.nulls.Release()
		b.nulls = nil
	}
	b.length = 0
	b.capacity = 0
	b.nullN = 0
}

// nextCapacity returns the capacity to grow to from cur so that at least
// target slots fit. Without a target, or when doubling already covers it,
// capacity doubles; otherwise it jumps to twice the target.
func nextCapacity(cur, target int) int {
	if target == 0 || target < 2*cur {
		return max(2*cur, minBuilderCapacity)
	}
	return 2 * target
}

// growBuffer allocates a buffer of slots elements, copies the first live
// slots of old into it and releases old. It never resizes in place.
func growBuffer(mem memory.Allocator, old *memory.Buffer, slots, elemSize, live int) *memory.Buffer {
	nb := memory.NewBuffer(mem, slots, elemSize)
	if old != nil {
		debug.Logf("arrow/array: grow buffer from %d to %d slots of %d bytes", old.Cap(), slots, elemSize)
		old.CopyInto(nb, live)
		nb.SetLen(live)
		old.Release()
	}
	return nb
}

// trimBuffer returns a new buffer holding exactly the first slots elements
// of buf.
func trimBuffer(mem memory.Allocator, buf *memory.Buffer, slots, elemSize int) *memory.Buffer {
	out := memory.NewBuffer(mem, slots, elemSize)
	if buf != nil && slots > 0 {
		buf.CopyInto(out, slots)
	}
	out.SetLen(slots)
	return out
}

// NewBuilder creates a new array builder for dtype. Types with no defined
// layout fail with arrow.ErrUnknownType.
func NewBuilder(mem memory.Allocator, dtype arrow.DataType) (ArrayBuilder, error) {
	switch dtype.ID() {
	case arrow.BOOL:
		return NewBooleanBuilder(mem), nil
	case arrow.INT8:
		return fixedBuilderOf[int8](mem, dtype)
	case arrow.INT16:
		return fixedBuilderOf[int16](mem, dtype)
	case arrow.INT32:
		return fixedBuilderOf[int32](mem, dtype)
	case arrow.INT64:
		return fixedBuilderOf[int64](mem, dtype)
	case arrow.UINT8:
		return fixedBuilderOf[uint8](mem, dtype)
	case arrow.UINT16:
		return fixedBuilderOf[uint16](mem, dtype)
	case arrow.UINT32:
		return fixedBuilderOf[uint32](mem, dtype)
	case arrow.UINT64:
		return fixedBuilderOf[uint64](mem, dtype)
	case arrow.FLOAT32:
		return fixedBuilderOf[float32](mem, dtype)
	case arrow.FLOAT64:
		return fixedBuilderOf[float64](mem, dtype)
	case arrow.DATE32:
		return NewDate32Builder(mem), nil
	case arrow.DATE64:
		return NewDate64Builder(mem), nil
	case arrow.TIMESTAMP:
		if typ, ok := dtype.(*arrow.TimestampType); ok {
			return NewTimestampBuilder(mem, typ), nil
		}
	case arrow.BINARY, arrow.STRING:
		if typ, ok := dtype.(arrow.BinaryDataType); ok {
			return NewBinaryBuilder(mem, typ), nil
		}
	case arrow.STRUCT:
		if typ, ok := dtype.(*arrow.StructType); ok {
			sb, err := NewStructColumnBuilder(mem, typ)
			if err != nil {
				return nil, err
			}
			return sb, nil
		}
	}
	return nil, xerrors.Errorf("arrow/array: no builder for data type %v: %w", dtype, arrow.ErrUnknownType)
}

func fixedBuilderOf[T arrow.FixedWidth](mem memory.Allocator, dtype arrow.DataType) (ArrayBuilder, error) {
	b, err := NewFixedBuilderWithType[T](mem, dtype)
	if err != nil {
		return nil, err
	}
	return b, nil
}
