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
	"strings"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
	"golang.org/x/xerrors"
)

// StructBuilder tracks the presence of each struct slot and the fields of
// the struct type. It owns no child data: children are built separately
// and handed to NewStructArray, or managed by a StructColumnBuilder.
type StructBuilder struct {
	builder

	dtype *arrow.StructType
}

// NewStructBuilder returns a builder for the null bitmap of a dtype column.
func NewStructBuilder(mem memory.Allocator, dtype *arrow.StructType) *StructBuilder {
	b := &StructBuilder{builder: newBuilder(mem), dtype: dtype}
	b.refCount.Store(1)
	return b
}

// InitTypeInfo replaces the child field description of the builder.
func (b *StructBuilder) InitTypeInfo(fields []arrow.Field) {
	b.dtype = arrow.StructOf(fields...)
}

func (b *StructBuilder) Type() arrow.DataType { return b.dtype }

// NumField returns the number of child fields.
func (b *StructBuilder) NumField() int { return b.dtype.NumFields() }

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
func (b *StructBuilder) Release() {
	b.builder.release()
}

// Append records a present (valid) or null struct slot.
func (b *StructBuilder) Append(v bool) {
	b.Reserve(1)
	b.appendValid(v)
}

// AppendValues appends one slot per entry of valids.
func (b *StructBuilder) AppendValues(valids []bool) {
	b.Reserve(len(valids))
	for _, v := range valids {
		b.appendValid(v)
	}
}

func (b *StructBuilder) AppendNull() { b.Append(false) }

func (b *StructBuilder) AppendNulls(n int) {
	for i := 0; i < n; i++ {
		b.AppendNull()
	}
}

// Reserve ensures there is enough space for appending n elements
// by checking the capacity and calling Resize if necessary.
func (b *StructBuilder) Reserve(n int) {
	b.builder.reserve(n, b.Resize)
}

// Resize grows the null bitmap to hold at least n elements.
func (b *StructBuilder) Resize(n int) {
	if n < minBuilderCapacity {
		n = minBuilderCapacity
	}
	if n <= b.capacity {
		return
	}
	b.builder.resize(n)
}

// Finish returns the trimmed null bitmap and resets the builder.
func (b *StructBuilder) Finish() []*memory.Buffer {
	bufs := []*memory.Buffer{b.finishNulls()}
	b.builder.reset()
	return bufs
}

// NewStructArray assembles a struct array from the slots appended so far and
// one finished child array per field. The children are retained. The
// builder is reset on success and left untouched on failure.
func (b *StructBuilder) NewStructArray(children ...Interface) (*Struct, error) {
	if err := validateStructChildren(b.dtype, b.length, children); err != nil {
		return nil, err
	}

	childData := make([]*Data, len(children))
	for i, c := range children {
		childData[i] = c.Data()
	}

	length, nullN := b.length, b.nullN
	bufs := b.Finish()
	data := NewData(b.dtype, length, bufs, childData, nullN, 0)
	releaseBuffers(bufs)
	defer data.Release()

	return newStructData(data)
}

func validateStructChildren(dtype *arrow.StructType, length int, children []Interface) error {
	if len(children) != dtype.NumFields() {
		return xerrors.Errorf("arrow/array: struct %v has %d fields, got %d children: %w",
			dtype, dtype.NumFields(), len(children), arrow.ErrInvalid)
	}
	for i, c := range children {
		f := dtype.Field(i)
		if !arrow.TypeEqual(f.Type, c.DataType()) {
			return xerrors.Errorf("arrow/array: struct field %q is %v, child is %v: %w",
				f.Name, f.Type, c.DataType(), arrow.ErrInvalid)
		}
		if c.Len() != length {
			return xerrors.Errorf("arrow/array: struct field %q has %d slots, struct has %d: %w",
				f.Name, c.Len(), length, arrow.ErrLengthMismatch)
		}
	}
	return nil
}

// AppendValueFromString only accepts NullValueStr: struct values need child
// builders, see StructColumnBuilder.
func (b *StructBuilder) AppendValueFromString(s string) error {
	if s == NullValueStr {
		b.AppendNull()
		return nil
	}
	return xerrors.Errorf("arrow/array: struct builder without children cannot parse %q: %w", s, arrow.ErrInvalid)
}

func (b *StructBuilder) UnmarshalOne(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	if t != nil {
		return xerrors.Errorf("arrow/array: struct builder without children cannot decode %v: %w", t, arrow.ErrInvalid)
	}
	b.AppendNull()
	return nil
}

func (b *StructBuilder) Unmarshal(dec *json.Decoder) error {
	for dec.More() {
		if err := b.UnmarshalOne(dec); err != nil {
			return err
		}
	}
	return nil
}

func (b *StructBuilder) UnmarshalJSON(data []byte) error {
	return unmarshalJSONArray(b, data, "struct")
}

// StructColumnBuilder builds a complete struct column: it owns a
// StructBuilder for the slot nulls plus one child builder per field.
//
// Append only records the struct slot; values are appended to the children
// through FieldBuilder. AppendNull also appends a null to every child.
type StructColumnBuilder struct {
	*StructBuilder

	fields []ArrayBuilder
}

// NewStructColumnBuilder creates the struct builder and a child builder for
// every field of dtype. It fails with arrow.ErrUnknownType if a field type
// has no builder.
func NewStructColumnBuilder(mem memory.Allocator, dtype *arrow.StructType) (*StructColumnBuilder, error) {
	b := &StructColumnBuilder{
		StructBuilder: NewStructBuilder(mem, dtype),
		fields:        make([]ArrayBuilder, 0, dtype.NumFields()),
	}
	for _, f := range dtype.Fields() {
		fb, err := NewBuilder(mem, f.Type)
		if err != nil {
			b.Release()
			return nil, xerrors.Errorf("arrow/array: struct field %q: %w", f.Name, err)
		}
		b.fields = append(b.fields, fb)
	}
	return b, nil
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the struct and child builders are freed.
func (b *StructColumnBuilder) Release() {
	if b.builder.release() {
		for _, f := range b.fields {
			f.Release()
		}
		b.fields = nil
	}
}

// FieldBuilder returns the builder of child field i.
func (b *StructColumnBuilder) FieldBuilder(i int) ArrayBuilder { return b.fields[i] }

func (b *StructColumnBuilder) AppendNull() {
	b.StructBuilder.AppendNull()
	for _, f := range b.fields {
		f.AppendNull()
	}
}

func (b *StructColumnBuilder) AppendNulls(n int) {
	for i := 0; i < n; i++ {
		b.AppendNull()
	}
}

// Reserve ensures the struct and every child can take n more slots.
func (b *StructColumnBuilder) Reserve(n int) {
	b.StructBuilder.Reserve(n)
	for _, f := range b.fields {
		f.Reserve(n)
	}
}

// Resize grows the struct and every child to hold at least n slots.
func (b *StructColumnBuilder) Resize(n int) {
	b.StructBuilder.Resize(n)
	for _, f := range b.fields {
		f.Resize(n)
	}
}

// NewStruct finishes every child and assembles them into a struct array.
// It fails with arrow.ErrLengthMismatch when a child received a different
// number of slots than the struct.
func (b *StructColumnBuilder) NewStruct() (*Struct, error) {
	for i, f := range b.fields {
		if f.Len() != b.length {
			return nil, xerrors.Errorf("arrow/array: struct field %q has %d slots, struct has %d: %w",
				b.dtype.Field(i).Name, f.Len(), b.length, arrow.ErrLengthMismatch)
		}
	}

	children := make([]Interface, len(b.fields))
	for i, f := range b.fields {
		children[i] = f.NewArray()
	}
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()

	return b.StructBuilder.NewStructArray(children...)
}

// NewArray creates a Struct array from the builder and its children.
//
// NewArray panics if a child length differs from the struct length.
func (b *StructColumnBuilder) NewArray() Interface {
	arr, err := b.NewStruct()
	if err != nil {
		panic(err)
	}
	return arr
}

// AppendValueFromString appends a struct slot from its JSON object form.
func (b *StructColumnBuilder) AppendValueFromString(s string) error {
	if s == NullValueStr {
		b.AppendNull()
		return nil
	}

	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("%w: invalid string for struct should be be of form: {*}", arrow.ErrInvalid)
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	return b.UnmarshalOne(dec)
}

// UnmarshalOne appends a struct slot from a JSON object. Fields missing from
// the object are appended as nulls and unknown keys are skipped.
func (b *StructColumnBuilder) UnmarshalOne(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}

	switch t {
	case json.Delim('{'):
		b.Append(true)
		keylist := make(map[string]bool)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}

			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("%w: missing key", arrow.ErrInvalid)
			}

			if keylist[key] {
				return fmt.Errorf("%w: json object has duplicate key %q", arrow.ErrInvalid, key)
			}

			keylist[key] = true
			idx, ok := b.dtype.FieldIdx(key)
			if !ok {
				var extra any
				if err := dec.Decode(&extra); err != nil {
					return err
				}
				continue
			}

			if err := b.fields[idx].UnmarshalOne(dec); err != nil {
				return err
			}
		}

		// Append null values to all optional fields that were not presented in the json input
		for i, f := range b.dtype.Fields() {
			if !keylist[f.Name] {
				b.fields[i].AppendNull()
			}
		}

		// consume '}'
		_, err := dec.Token()
		return err
	case nil:
		b.AppendNull()
	default:
		return &json.UnmarshalTypeError{
			Value:  fmt.Sprint(t),
			Type:   reflect.TypeOf(map[string]any{}),
			Offset: dec.InputOffset(),
		}
	}
	return nil
}

func (b *StructColumnBuilder) Unmarshal(dec *json.Decoder) error {
	for dec.More() {
		if err := b.UnmarshalOne(dec); err != nil {
			return err
		}
	}
	return nil
}

func (b *StructColumnBuilder) UnmarshalJSON(data []byte) error {
	return unmarshalJSONArray(b, data, "struct")
}

// unmarshalJSONArray feeds the elements of the JSON array in data to b.
func unmarshalJSONArray(b Builder, data []byte, kind string) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("%s builder must unpack from json array, found %s", kind, delim)
	}

	return b.Unmarshal(dec)
}

var (
	_ Builder      = (*StructBuilder)(nil)
	_ ArrayBuilder = (*StructColumnBuilder)(nil)
)
