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

package csv

import (
	"encoding/csv"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"golang.org/x/xerrors"
)

// Reader wraps encoding/csv.Reader and creates array.Records from a schema.
type Reader struct {
	r      *csv.Reader
	schema *arrow.Schema

	refCount atomic.Int64
	bld      *array.RecordBuilder
	cur      *array.Record
	err      error

	chunk int
	done  bool
	next  func() bool

	mem memory.Allocator

	header bool
	once   sync.Once

	fieldConverter []func(field array.Builder, val string) error

	stringsCanBeNull bool
	nulls            []string
}

// NewReader returns a reader that reads from the CSV file and creates
// array.Records from the given schema.
//
// Every cell is parsed with the column builder's AppendValueFromString, so
// temporal columns accept the same text the writer emits and binary columns
// expect base64. NewReader fails with arrow.ErrUnknownType if the schema holds
// a column with no single-cell text form, such as a struct.
func NewReader(r io.Reader, schema *arrow.Schema, opts ...Option) (*Reader, error) {
	if err := validate(schema); err != nil {
		return nil, err
	}

	rr := &Reader{
		r:      csv.NewReader(r),
		schema: schema,
		chunk:  1,
	}
	rr.refCount.Store(1)
	rr.r.ReuseRecord = true
	// row widths are checked against the schema in validate.
	rr.r.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(rr)
	}

	if rr.mem == nil {
		rr.mem = memory.DefaultAllocator
	}

	var err error
	if rr.bld, err = array.NewRecordBuilder(rr.mem, rr.schema); err != nil {
		return nil, xerrors.Errorf("arrow/csv: %w", err)
	}

	switch {
	case rr.chunk < 0:
		rr.next = rr.nextall
	case rr.chunk > 1:
		rr.next = rr.nextn
	default:
		rr.next = rr.next1
	}

	// Create a table of functions that will parse columns. This optimization
	// allows us to specialize the implementation of each column's decoding
	// and hoist type-based branches outside the inner loop.
	rr.fieldConverter = make([]func(array.Builder, string) error, len(schema.Fields()))
	for idx, field := range schema.Fields() {
		rr.fieldConverter[idx] = rr.initFieldConverter(field)
	}

	return rr, nil
}

func (r *Reader) readHeader() error {
	records, err := r.r.Read()
	switch {
	case errors.Is(err, io.EOF):
		r.done = true
		return nil
	case err != nil:
		return xerrors.Errorf("arrow/csv: could not read header from file: %w", err)
	}

	if len(records) != len(r.schema.Fields()) {
		return xerrors.Errorf("arrow/csv: header has %d fields, want %d: %w",
			len(records), len(r.schema.Fields()), ErrMismatchFields)
	}

	fields := make([]arrow.Field, len(records))
	for idx, name := range records {
		fields[idx] = r.schema.Field(idx)
		fields[idx].Name = name
	}

	bld, err := array.NewRecordBuilder(r.mem, arrow.NewSchema(fields))
	if err != nil {
		return xerrors.Errorf("arrow/csv: %w", err)
	}
	r.bld.Release()
	r.bld = bld
	r.schema = bld.Schema()
	return nil
}

// Err returns the last error encountered during the iteration over the
// underlying CSV file.
func (r *Reader) Err() error { return r.err }

// Schema returns the schema of the records. With WithHeader(true) the field
// names come from the header row once Next has been called.
func (r *Reader) Schema() *arrow.Schema { return r.schema }

// Record returns the current record that has been extracted from the
// underlying CSV file.
// It is valid until the next call to Next.
func (r *Reader) Record() *array.Record { return r.cur }

// Next returns whether a Record could be extracted from the underlying CSV file.
//
// Next stops with a non-nil Err if a row does not have as many cells as the
// schema has fields, or if a cell cannot be parsed as its column's type.
func (r *Reader) Next() bool {
	if r.header {
		r.once.Do(func() {
			r.err = r.readHeader()
		})
	}

	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}

	if r.err != nil || r.done {
		return false
	}

	return r.next()
}

// readRow appends one CSV row to the record builder.
func (r *Reader) readRow() bool {
	recs, err := r.r.Read()
	if err != nil {
		r.done = true
		if !errors.Is(err, io.EOF) {
			r.err = xerrors.Errorf("arrow/csv: %w", err)
		}
		return false
	}

	if r.err = r.validate(recs); r.err != nil {
		r.done = true
		return false
	}

	if r.err = r.read(recs); r.err != nil {
		r.done = true
		return false
	}
	return true
}

func (r *Reader) newRecord() bool {
	r.cur, r.err = r.bld.NewRecord()
	if r.err != nil {
		r.done = true
		return false
	}
	return true
}

// next1 reads one row from the CSV file and creates a single Record
// from that row.
func (r *Reader) next1() bool {
	if !r.readRow() {
		return false
	}
	return r.newRecord()
}

// nextall reads the whole CSV file into memory and creates one single
// Record from all the CSV rows.
func (r *Reader) nextall() bool {
	n := 0
	for r.readRow() {
		n++
	}

	if r.err != nil || n == 0 {
		return false
	}
	return r.newRecord()
}

// nextn reads n rows from the CSV file, where n is the chunk size, and creates
// a Record from these rows.
func (r *Reader) nextn() bool {
	n := 0
	for i := 0; i < r.chunk && !r.done; i++ {
		if !r.readRow() {
			break
		}
		n++
	}

	if r.err != nil || n == 0 {
		return false
	}
	return r.newRecord()
}

func (r *Reader) validate(recs []string) error {
	if len(recs) != len(r.schema.Fields()) {
		line, _ := r.r.FieldPos(0)
		return xerrors.Errorf("arrow/csv: line %d has %d fields, want %d: %w",
			line, len(recs), len(r.schema.Fields()), ErrMismatchFields)
	}
	return nil
}

func (r *Reader) isNull(val string) bool {
	for _, v := range r.nulls {
		if v == val {
			return true
		}
	}
	return false
}

func (r *Reader) read(recs []string) error {
	for i, str := range recs {
		if err := r.fieldConverter[i](r.bld.Field(i), str); err != nil {
			line, col := r.r.FieldPos(i)
			return xerrors.Errorf("arrow/csv: line %d, column %d (%s): %w",
				line, col, r.schema.Field(i).Name, err)
		}
	}
	return nil
}

func (r *Reader) initFieldConverter(field arrow.Field) func(array.Builder, string) error {
	// specialize the implementation when we know we cannot have nulls
	if field.Type.ID() == arrow.STRING && !r.stringsCanBeNull {
		return func(field array.Builder, str string) error {
			field.(*array.BinaryBuilder).AppendString(str)
			return nil
		}
	}

	return func(field array.Builder, str string) error {
		if r.isNull(str) {
			field.AppendNull()
			return nil
		}
		return field.AppendValueFromString(str)
	}
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (r *Reader) Retain() {
	r.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (r *Reader) Release() {
	debug.Assert(r.refCount.Load() > 0, "too many releases")

	if r.refCount.Add(-1) == 0 {
		if r.cur != nil {
			r.cur.Release()
			r.cur = nil
		}
		r.bld.Release()
	}
}

var (
	_ array.RecordReader = (*Reader)(nil)
)
