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
	"strings"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
	"golang.org/x/xerrors"
)

// Struct represents an ordered sequence of relative types.
type Struct struct {
	array
	fields []Interface
}

// NewStructArray constructs a new Struct Array out of the columns passed
// in and the field names. The length of all cols must be the same and
// there should be the same number of columns as names.
func NewStructArray(cols []Interface, names []string) (*Struct, error) {
	if len(cols) != len(names) {
		return nil, xerrors.Errorf("arrow/array: %d columns for %d names: %w", len(cols), len(names), arrow.ErrInvalid)
	}
	if len(cols) == 0 {
		return nil, xerrors.Errorf("arrow/array: struct array needs at least one column: %w", arrow.ErrEmptyInput)
	}

	var (
		length    = cols[0].Len()
		fields    = make([]arrow.Field, len(cols))
		childData = make([]*Data, len(cols))
	)
	for i, c := range cols {
		if c.Len() != length {
			return nil, xerrors.Errorf("arrow/array: column %q has %d slots, want %d: %w", names[i], c.Len(), length, arrow.ErrLengthMismatch)
		}
		fields[i] = arrow.Field{Name: names[i], Type: c.DataType(), Nullable: true}
		childData[i] = c.Data()
	}

	nulls := memory.NewBufferBytes(nil)
	defer nulls.Release()

	data := NewData(arrow.StructOf(fields...), length, []*memory.Buffer{nulls}, childData, 0, 0)
	defer data.Release()

	return newStructData(data)
}

// NewStructData returns a new Struct array value from data.
//
// NewStructData panics if a child cannot be turned into an array.
func NewStructData(data *Data) *Struct {
	a, err := newStructData(data)
	if err != nil {
		panic(err)
	}
	return a
}

func newStructData(data *Data) (*Struct, error) {
	dtype, ok := data.dtype.(*arrow.StructType)
	if !ok {
		return nil, xerrors.Errorf("arrow/array: %v is not a struct type: %w", data.dtype, arrow.ErrType)
	}
	if len(data.childData) != dtype.NumFields() {
		return nil, xerrors.Errorf("arrow/array: struct %v has %d fields, got %d children: %w",
			dtype, dtype.NumFields(), len(data.childData), arrow.ErrInvalid)
	}

	fields := make([]Interface, 0, len(data.childData))
	release := func() {
		for _, f := range fields {
			f.Release()
		}
	}
	for i, child := range data.childData {
		if child.length != data.length {
			release()
			return nil, xerrors.Errorf("arrow/array: struct field %q has %d slots, struct has %d: %w",
				dtype.Field(i).Name, child.length, data.length, arrow.ErrLengthMismatch)
		}
		arr, err := MakeFromData(child)
		if err != nil {
			release()
			return nil, err
		}
		fields = append(fields, arr)
	}

	a := &Struct{fields: fields}
	a.refCount.Store(1)
	a.array.setData(data)
	return a, nil
}

// Field returns the child array of field i.
func (a *Struct) Field(i int) Interface { return a.fields[i] }

// NumField returns the number of fields in the struct.
func (a *Struct) NumField() int { return len(a.fields) }

// ValueAny returns the slot as a map from field name to the children's
// ValueAny, or nil when the slot is null.
func (a *Struct) ValueAny(i int) any {
	if a.IsNull(i) {
		return nil
	}

	dtype := a.data.dtype.(*arrow.StructType)
	out := make(map[string]any, len(a.fields))
	for j, f := range a.fields {
		out[dtype.Field(j).Name] = f.ValueAny(i)
	}
	return out
}

// ValueStr returns the string representation (as json) of the value at index i.
func (a *Struct) ValueStr(i int) string {
	if a.IsNull(i) {
		return NullValueStr
	}

	data, err := json.Marshal(a.GetOneForMarshal(i))
	if err != nil {
		panic(err)
	}
	return string(data)
}

func (a *Struct) String() string {
	o := new(strings.Builder)
	o.WriteString("{")

	for i, v := range a.fields {
		if i > 0 {
			o.WriteString(" ")
		}
		fmt.Fprintf(o, "%v", v)
	}
	o.WriteString("}")
	return o.String()
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (a *Struct) Retain() {
	a.array.Retain()
	for _, f := range a.fields {
		f.Retain()
	}
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (a *Struct) Release() {
	a.array.Release()
	for _, f := range a.fields {
		f.Release()
	}
}

// GetOneForMarshal returns slot i as a JSON object with the fields in
// declaration order.
func (a *Struct) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}

	dtype := a.data.dtype.(*arrow.StructType)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for j, f := range a.fields {
		if j > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(dtype.Field(j).Name)
		if err != nil {
			panic(err)
		}
		val, err := json.Marshal(f.GetOneForMarshal(i))
		if err != nil {
			panic(err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return json.RawMessage(buf.Bytes())
}

func (a *Struct) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	buf.WriteByte('[')
	for i := 0; i < a.Len(); i++ {
		if i != 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(a.GetOneForMarshal(i)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

var (
	_ Interface = (*Struct)(nil)
)
