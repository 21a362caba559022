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
	"sync/atomic"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
	"golang.org/x/xerrors"
)

// Record is a collection of equal-length arrays matching a particular Schema.
//
// Record is immutable, so all methods are safe for concurrent use.
type Record struct {
	refCount atomic.Int64

	schema *arrow.Schema
	rows   int64
	arrs   []Interface
}

// NewRecord returns a basic, non-lazy in-memory record batch. The columns
// are retained.
//
// NewRecord fails with arrow.ErrEmptyInput without columns, arrow.ErrInvalid
// when the columns do not match the schema fields and
// arrow.ErrLengthMismatch when the columns differ in length.
func NewRecord(schema *arrow.Schema, cols []Interface) (*Record, error) {
	if len(cols) == 0 {
		return nil, xerrors.Errorf("arrow/array: record needs at least one column: %w", arrow.ErrEmptyInput)
	}
	if err := validateColumns(schema, cols); err != nil {
		return nil, err
	}

	rec := &Record{
		schema: schema,
		rows:   int64(cols[0].Len()),
		arrs:   make([]Interface, len(cols)),
	}
	rec.refCount.Store(1)
	copy(rec.arrs, cols)
	for _, arr := range rec.arrs {
		arr.Retain()
	}
	return rec, nil
}

func validateColumns(schema *arrow.Schema, cols []Interface) error {
	if len(cols) != schema.NumFields() {
		return xerrors.Errorf("arrow/array: number of columns/fields mismatch: got=%d, want=%d: %w",
			len(cols), schema.NumFields(), arrow.ErrInvalid)
	}

	rows := cols[0].Len()
	for i, arr := range cols {
		f := schema.Field(i)
		if !arrow.TypeEqual(f.Type, arr.DataType()) {
			return xerrors.Errorf("arrow/array: column %q type mismatch: got=%v, want=%v: %w",
				f.Name, arr.DataType(), f.Type, arrow.ErrInvalid)
		}
		if arr.Len() != rows {
			return xerrors.Errorf("arrow/array: mismatch number of rows in column %q: got=%d, want=%d: %w",
				f.Name, arr.Len(), rows, arrow.ErrLengthMismatch)
		}
	}
	return nil
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (rec *Record) Retain() {
	rec.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (rec *Record) Release() {
	debug.Assert(rec.refCount.Load() > 0, "too many releases")

	if rec.refCount.Add(-1) == 0 {
		for _, arr := range rec.arrs {
			arr.Release()
		}
		rec.arrs = nil
	}
}

func (rec *Record) Schema() *arrow.Schema   { return rec.schema }
func (rec *Record) NumRows() int64          { return rec.rows }
func (rec *Record) NumCols() int64          { return int64(len(rec.arrs)) }
func (rec *Record) Columns() []Interface    { return rec.arrs }
func (rec *Record) Column(i int) Interface  { return rec.arrs[i] }
func (rec *Record) ColumnName(i int) string { return rec.schema.Field(i).Name }

// ColumnByIndex returns column i, or arrow.ErrIndex if there is no such column.
func (rec *Record) ColumnByIndex(i int) (Interface, error) {
	if i < 0 || i >= len(rec.arrs) {
		return nil, xerrors.Errorf("arrow/array: column %d outside record of %d columns: %w", i, len(rec.arrs), arrow.ErrIndex)
	}
	return rec.arrs[i], nil
}

// ColumnByName returns the first column named name, or arrow.ErrIndex if the
// schema has no such field.
func (rec *Record) ColumnByName(name string) (Interface, error) {
	i := rec.schema.FieldIndex(name)
	if i < 0 {
		return nil, xerrors.Errorf("arrow/array: no column named %q: %w", name, arrow.ErrIndex)
	}
	return rec.arrs[i], nil
}

// NewSlice constructs a zero-copy slice of the record with the indicated
// indices i and j, corresponding to array[i:j].
// The returned record must be Release()'d after use.
//
// NewSlice panics if the slice is outside the valid range of the record array.
// NewSlice panics if j < i.
func (rec *Record) NewSlice(i, j int64) *Record {
	arrs := make([]Interface, len(rec.arrs))
	for ii, arr := range rec.arrs {
		arrs[ii] = NewSlice(arr, i, j)
	}
	defer func() {
		for _, arr := range arrs {
			arr.Release()
		}
	}()

	out, err := NewRecord(rec.schema, arrs)
	if err != nil {
		panic(err)
	}
	return out
}

// MarshalJSON encodes the record as a JSON array of row objects, the fields
// of each row in schema order.
func (rec *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for row := 0; row < int(rec.rows); row++ {
		if row > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, arr := range rec.arrs {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(rec.ColumnName(i))
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(arr.GetOneForMarshal(row))
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// RecordBatchBuilder accumulates (field, column) pairs and assembles them
// into a Record. The row-count check happens once, in Finish.
type RecordBatchBuilder struct {
	fields []arrow.Field
	cols   []Interface
}

func NewRecordBatchBuilder() *RecordBatchBuilder {
	return &RecordBatchBuilder{}
}

// AddColumn adds arr under a field named name. The field is nullable when
// arr holds nulls. arr is retained until Finish or Release.
func (b *RecordBatchBuilder) AddColumn(name string, arr Interface) *RecordBatchBuilder {
	return b.AddField(arrow.Field{Name: name, Type: arr.DataType(), Nullable: arr.NullN() != 0}, arr)
}

// AddField adds arr described by field. arr is retained until Finish or
// Release.
func (b *RecordBatchBuilder) AddField(field arrow.Field, arr Interface) *RecordBatchBuilder {
	arr.Retain()
	b.fields = append(b.fields, field)
	b.cols = append(b.cols, arr)
	return b
}

// Finish assembles the record from the columns added so far and empties
// the builder. No record is produced when the columns differ in length
// (arrow.ErrLengthMismatch) or when there are none (arrow.ErrEmptyInput).
func (b *RecordBatchBuilder) Finish() (*Record, error) {
	defer b.Release()
	return NewRecord(arrow.NewSchema(b.fields), b.cols)
}

// Release drops the columns held by the builder.
func (b *RecordBatchBuilder) Release() {
	for _, c := range b.cols {
		c.Release()
	}
	b.fields, b.cols = nil, nil
}

// RecordBuilder eases the process of building a Record, iteratively, from
// a known Schema.
type RecordBuilder struct {
	refCount atomic.Int64
	mem      memory.Allocator
	schema   *arrow.Schema
	fields   []ArrayBuilder
}

// NewRecordBuilder returns a builder, using the provided memory allocator and a schema.
// It fails with arrow.ErrUnknownType if a field type has no builder.
func NewRecordBuilder(mem memory.Allocator, schema *arrow.Schema) (*RecordBuilder, error) {
	b := &RecordBuilder{
		mem:    mem,
		schema: schema,
		fields: make([]ArrayBuilder, 0, schema.NumFields()),
	}
	b.refCount.Store(1)

	for _, f := range schema.Fields() {
		fb, err := NewBuilder(b.mem, f.Type)
		if err != nil {
			b.Release()
			return nil, xerrors.Errorf("arrow/array: field %q: %w", f.Name, err)
		}
		b.fields = append(b.fields, fb)
	}

	return b, nil
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (b *RecordBuilder) Retain() {
	b.refCount.Add(1)
}

// Release decreases the reference count by 1.
func (b *RecordBuilder) Release() {
	debug.Assert(b.refCount.Load() > 0, "too many releases")

	if b.refCount.Add(-1) == 0 {
		for _, f := range b.fields {
			f.Release()
		}
		b.fields = nil
	}
}

func (b *RecordBuilder) Schema() *arrow.Schema    { return b.schema }
func (b *RecordBuilder) Fields() []ArrayBuilder   { return b.fields }
func (b *RecordBuilder) Field(i int) ArrayBuilder { return b.fields[i] }

// Reserve ensures every field builder can take n more rows.
func (b *RecordBuilder) Reserve(size int) {
	for _, f := range b.fields {
		f.Reserve(size)
	}
}

// NewRecord creates a new record from the memory buffers and resets the
// RecordBuilder so it can be used to build a new record.
//
// The returned Record must be Release()'d after use. NewRecord fails with
// arrow.ErrLengthMismatch, discarding the appended rows, when the field
// builders do not hold the same number of rows.
func (b *RecordBuilder) NewRecord() (*Record, error) {
	cols := make([]Interface, len(b.fields))
	for i, f := range b.fields {
		cols[i] = f.NewArray()
	}
	defer func() {
		for _, col := range cols {
			col.Release()
		}
	}()

	return NewRecord(b.schema, cols)
}

// UnmarshalOne appends one row from a JSON object keyed by field name.
// Missing fields are appended as nulls and unknown keys are skipped.
func (b *RecordBuilder) UnmarshalOne(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record should be a json object, got %s", t)
	}

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
		idx := b.schema.FieldIndex(key)
		if idx < 0 {
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

	for i, f := range b.schema.Fields() {
		if !keylist[f.Name] {
			b.fields[i].AppendNull()
		}
	}

	_, err = dec.Token()
	return err
}

func (b *RecordBuilder) Unmarshal(dec *json.Decoder) error {
	for dec.More() {
		if err := b.UnmarshalOne(dec); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON appends the rows of a JSON array of objects.
func (b *RecordBuilder) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("record builder must unpack from json array, found %s", delim)
	}

	return b.Unmarshal(dec)
}

// RecordReader reads a stream of records.
type RecordReader interface {
	Retain()
	Release()

	Schema() *arrow.Schema

	Next() bool
	Record() *Record
	Err() error
}

// simpleRecords is a simple iterator over a collection of records.
type simpleRecords struct {
	refCount atomic.Int64

	schema *arrow.Schema
	recs   []*Record
	cur    *Record
}

// NewRecordReader returns a simple iterator over the given slice of records.
// Every record must share schema, otherwise arrow.ErrInvalid is returned.
func NewRecordReader(schema *arrow.Schema, recs []*Record) (RecordReader, error) {
	rs := &simpleRecords{
		schema: schema,
		recs:   recs,
		cur:    nil,
	}
	rs.refCount.Store(1)

	for _, rec := range rs.recs {
		rec.Retain()
	}

	for _, rec := range recs {
		if !rec.Schema().Equal(rs.schema) {
			rs.Release()
			return nil, xerrors.Errorf("arrow/array: mismatch schema: %w", arrow.ErrInvalid)
		}
	}

	return rs, nil
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (rs *simpleRecords) Retain() {
	rs.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (rs *simpleRecords) Release() {
	debug.Assert(rs.refCount.Load() > 0, "too many releases")

	if rs.refCount.Add(-1) == 0 {
		if rs.cur != nil {
			rs.cur.Release()
		}
		for _, rec := range rs.recs {
			rec.Release()
		}
		rs.recs = nil
	}
}

func (rs *simpleRecords) Schema() *arrow.Schema { return rs.schema }
func (rs *simpleRecords) Record() *Record       { return rs.cur }
func (rs *simpleRecords) Err() error            { return nil }

func (rs *simpleRecords) Next() bool {
	if len(rs.recs) == 0 {
		return false
	}
	if rs.cur != nil {
		rs.cur.Release()
	}
	rs.cur = rs.recs[0]
	rs.recs = rs.recs[1:]
	return true
}
