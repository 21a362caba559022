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
	"time"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
	"golang.org/x/xerrors"
)

// FixedBuilder builds a fixed-width column of T values: a null bitmap plus a
// values buffer of Len()*sizeof(T) bytes. Null slots hold T's zero value.
type FixedBuilder[T arrow.FixedWidth] struct {
	builder

	dtype  arrow.FixedWidthDataType
	size   int
	values *memory.Buffer
}

type (
	Int8Builder    = FixedBuilder[int8]
	Int16Builder   = FixedBuilder[int16]
	Int32Builder   = FixedBuilder[int32]
	Int64Builder   = FixedBuilder[int64]
	Uint8Builder   = FixedBuilder[uint8]
	Uint16Builder  = FixedBuilder[uint16]
	Uint32Builder  = FixedBuilder[uint32]
	Uint64Builder  = FixedBuilder[uint64]
	Float32Builder = FixedBuilder[float32]
	Float64Builder = FixedBuilder[float64]
)

// NewFixedBuilder returns a builder for the data type T maps to. Types
// outside the fixed-width catalog fail with arrow.ErrUnknownType.
func NewFixedBuilder[T arrow.FixedWidth](mem memory.Allocator) (*FixedBuilder[T], error) {
	dt, err := arrow.FixedWidthTypeOf[T]()
	if err != nil {
		return nil, err
	}
	return newFixedBuilder[T](mem, dt), nil
}

// NewFixedBuilderWithType returns a builder of T values for dtype, which must
// be the data type T maps to (any unit or time zone for timestamps).
func NewFixedBuilderWithType[T arrow.FixedWidth](mem memory.Allocator, dtype arrow.DataType) (*FixedBuilder[T], error) {
	want, err := arrow.FixedWidthTypeOf[T]()
	if err != nil {
		return nil, err
	}
	fw, ok := dtype.(arrow.FixedWidthDataType)
	if !ok || want.ID() != dtype.ID() {
		return nil, xerrors.Errorf("arrow/array: %v column cannot hold %v values: %w", dtype, reflect.TypeFor[T](), arrow.ErrUnknownType)
	}
	return newFixedBuilder[T](mem, fw), nil
}

func newFixedBuilder[T arrow.FixedWidth](mem memory.Allocator, dtype arrow.FixedWidthDataType) *FixedBuilder[T] {
	b := &FixedBuilder[T]{
		builder: newBuilder(mem),
		dtype:   dtype,
		size:    arrow.SizeOf[T](),
	}
	b.refCount.Store(1)
	return b
}

func (b *FixedBuilder[T]) Type() arrow.DataType { return b.dtype }

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
func (b *FixedBuilder[T]) Release() {
	if b.builder.release() && b.values != nil {
		b.values.Release()
		b.values = nil
	}
}

func (b *FixedBuilder[T]) Append(v T) {
	b.Reserve(1)
	b.unsafeAppend(v)
	b.appendValid(true)
}

// AppendNull appends a null slot holding the zero value of T.
func (b *FixedBuilder[T]) AppendNull() {
	var zero T
	b.Reserve(1)
	b.unsafeAppend(zero)
	b.appendValid(false)
}

func (b *FixedBuilder[T]) AppendNulls(n int) {
	for i := 0; i < n; i++ {
		b.AppendNull()
	}
}

// AppendValues will append the values in the v slice. The valid slice determines which values
// in v are valid (not null). The valid slice must either be empty or be equal in length to v. If empty,
// all values in v are appended and considered valid.
func (b *FixedBuilder[T]) AppendValues(v []T, valid []bool) {
	if len(v) != len(valid) && len(valid) != 0 {
		panic("len(v) != len(valid) && len(valid) != 0")
	}

	if len(v) == 0 {
		return
	}

	var zero T
	b.Reserve(len(v))
	for i, vv := range v {
		ok := len(valid) == 0 || valid[i]
		if !ok {
			vv = zero
		}
		b.unsafeAppend(vv)
		b.appendValid(ok)
	}
}

func (b *FixedBuilder[T]) unsafeAppend(v T) {
	memory.WriteAt(b.values, b.length*b.size, v)
	b.values.SetLen(b.length + 1)
}

// Value returns the value held by slot i.
func (b *FixedBuilder[T]) Value(i int) T {
	if i < 0 || i >= b.length {
		panic("arrow/array: index out of range")
	}
	return memory.ReadAt[T](b.values, i*b.size)
}

// Values returns the values appended so far. The slice is only valid until
// the next append.
func (b *FixedBuilder[T]) Values() []T {
	if b.values == nil {
		return nil
	}
	return arrow.CastFromBytesTo[T](b.values.Bytes())
}

// Reserve ensures there is enough space for appending n elements
// by checking the capacity and calling Resize if necessary.
func (b *FixedBuilder[T]) Reserve(n int) {
	b.builder.reserve(n, b.Resize)
}

// Resize grows the space allocated by b to at least n elements. It never
// shrinks the builder.
func (b *FixedBuilder[T]) Resize(n int) {
	if n < minBuilderCapacity {
		n = minBuilderCapacity
	}
	if n <= b.capacity {
		return
	}
	b.builder.resize(n)
	b.values = growBuffer(b.mem, b.values, n, b.size, b.length)
}

// Finish returns the null bitmap and values buffers trimmed to Len slots and
// resets the builder.
func (b *FixedBuilder[T]) Finish() []*memory.Buffer {
	bufs := []*memory.Buffer{
		b.finishNulls(),
		trimBuffer(b.mem, b.values, b.length, b.size),
	}
	b.reset()
	return bufs
}

func (b *FixedBuilder[T]) reset() {
	if b.values != nil {
		b.values.Release()
		b.values = nil
	}
	b.builder.reset()
}

// NewFixedArray creates an array from the memory buffers used by the builder
// and resets the builder so it can be used to build a new array.
func (b *FixedBuilder[T]) NewFixedArray() (a *Fixed[T]) {
	data := b.newData()
	a = NewFixedData[T](data)
	data.Release()
	return
}

func (b *FixedBuilder[T]) NewArray() Interface {
	return b.NewFixedArray()
}

func (b *FixedBuilder[T]) newData() *Data {
	length, nullN := b.length, b.nullN
	bufs := b.Finish()
	defer releaseBuffers(bufs)
	return NewData(b.dtype, length, bufs, nil, nullN, 0)
}

func (b *FixedBuilder[T]) AppendValueFromString(s string) error {
	if s == NullValueStr {
		b.AppendNull()
		return nil
	}

	v, err := parseFixed[T](b.dtype, s)
	if err != nil {
		return err
	}
	b.Append(v)
	return nil
}

func (b *FixedBuilder[T]) UnmarshalOne(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}

	var s string
	switch v := t.(type) {
	case nil:
		b.AppendNull()
		return nil
	case json.Number:
		s = v.String()
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return &json.UnmarshalTypeError{
			Value:  fmt.Sprint(t),
			Type:   reflect.TypeFor[T](),
			Offset: dec.InputOffset(),
		}
	}

	v, err := parseFixed[T](b.dtype, s)
	if err != nil {
		return &json.UnmarshalTypeError{
			Value:  s,
			Type:   reflect.TypeFor[T](),
			Offset: dec.InputOffset(),
		}
	}
	b.Append(v)
	return nil
}

func (b *FixedBuilder[T]) Unmarshal(dec *json.Decoder) error {
	for dec.More() {
		if err := b.UnmarshalOne(dec); err != nil {
			return err
		}
	}
	return nil
}

func (b *FixedBuilder[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("fixed-width builder must unpack from json array, found %s", delim)
	}

	return b.Unmarshal(dec)
}

// timeLayouts are tried in order when parsing date64 and timestamp values.
var timeLayouts = []string{
	time.RFC3339Nano,
	timestampLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseTime(s string) (t time.Time, err error) {
	for _, layout := range timeLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return t, err
}

// parseFixed converts the string form of a dt value into T. Temporal
// values are accepted either formatted or as raw integer counts.
func parseFixed[T arrow.FixedWidth](dt arrow.FixedWidthDataType, s string) (T, error) {
	var (
		out T
		err error
	)
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		var v int64
		v, err = strconv.ParseInt(s, 10, dt.BitWidth())
		out = T(v)
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		var v uint64
		v, err = strconv.ParseUint(s, 10, dt.BitWidth())
		out = T(v)
	case arrow.FLOAT32, arrow.FLOAT64:
		var v float64
		v, err = strconv.ParseFloat(s, dt.BitWidth())
		out = T(v)
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		var v int64
		v, err = parseTemporal(dt, s)
		out = T(v)
	default:
		return out, xerrors.Errorf("arrow/array: cannot parse %v values: %w", dt, arrow.ErrUnknownType)
	}
	if err != nil {
		var zero T
		return zero, xerrors.Errorf("arrow/array: invalid %v value %q: %w", dt, s, err)
	}
	return out, nil
}

func parseTemporal(dt arrow.FixedWidthDataType, s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, dt.BitWidth()); err == nil {
		return v, nil
	}

	switch dt := dt.(type) {
	case *arrow.Date32Type:
		tm, err := time.Parse("2006-01-02", s)
		return int64(arrow.Date32FromTime(tm)), err
	case *arrow.Date64Type:
		tm, err := parseTime(s)
		return int64(arrow.Date64FromTime(tm)), err
	default:
		tm, err := parseTime(s)
		return int64(arrow.TimestampFromTime(tm, dt.(*arrow.TimestampType).Unit)), err
	}
}

var (
	_ ArrayBuilder = (*FixedBuilder[int32])(nil)
	_ ArrayBuilder = (*FixedBuilder[float64])(nil)
)
