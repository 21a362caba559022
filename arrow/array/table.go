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
	"fmt"
	"math"
	"sync/atomic"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"golang.org/x/xerrors"
)

// Column is an immutable column data structure consisting of
// a field (type metadata) and a chunked data array.
type Column struct {
	refCount atomic.Int64

	field arrow.Field
	data  *Chunked
}

// NewColumn returns a column from a field and a chunked data array.
//
// NewColumn panics if the field's data type is inconsistent with the data type
// of the chunked data array.
func NewColumn(field arrow.Field, chunks *Chunked) *Column {
	col := Column{
		field: field,
		data:  chunks,
	}
	col.refCount.Store(1)
	col.data.Retain()

	if !arrow.TypeEqual(col.data.DataType(), col.field.Type) {
		col.data.Release()
		panic("arrow/array: inconsistent data type")
	}

	return &col
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (col *Column) Retain() {
	col.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (col *Column) Release() {
	debug.Assert(col.refCount.Load() > 0, "too many releases")

	if col.refCount.Add(-1) == 0 {
		if col.data != nil {
			col.data.Release()
			col.data = nil
		}
	}
}

func (col *Column) Len() int                 { return col.data.Len() }
func (col *Column) NullN() int               { return col.data.NullN() }
func (col *Column) Data() *Chunked           { return col.data }
func (col *Column) Field() arrow.Field       { return col.field }
func (col *Column) Name() string             { return col.field.Name }
func (col *Column) DataType() arrow.DataType { return col.field.Type }

// Table represents a logical sequence of chunked arrays sharing one schema.
type Table struct {
	refCount atomic.Int64

	schema *arrow.Schema
	rows   int64
	cols   []*Column
}

// NewTable returns a new table from a schema and its columns. The columns
// are retained. The row count is the length of column 0.
//
// NewTable fails with arrow.ErrEmptyInput without columns, arrow.ErrInvalid
// when the columns do not match the schema fields and
// arrow.ErrLengthMismatch when the columns differ in length.
func NewTable(schema *arrow.Schema, cols []*Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, xerrors.Errorf("arrow/array: table needs at least one column: %w", arrow.ErrEmptyInput)
	}
	if len(cols) != schema.NumFields() {
		return nil, xerrors.Errorf("arrow/array: number of columns/fields mismatch: got=%d, want=%d: %w",
			len(cols), schema.NumFields(), arrow.ErrInvalid)
	}

	rows := cols[0].Len()
	for i, col := range cols {
		f := schema.Field(i)
		if !col.field.Equal(f) {
			return nil, xerrors.Errorf("arrow/array: column field %q is inconsistent with schema field %q: %w",
				col.Name(), f.Name, arrow.ErrInvalid)
		}
		if col.Len() != rows {
			return nil, xerrors.Errorf("arrow/array: mismatch number of rows in column %q: got=%d, want=%d: %w",
				col.Name(), col.Len(), rows, arrow.ErrLengthMismatch)
		}
	}

	tbl := &Table{
		schema: schema,
		rows:   int64(rows),
		cols:   make([]*Column, len(cols)),
	}
	tbl.refCount.Store(1)
	copy(tbl.cols, cols)
	for _, col := range tbl.cols {
		col.Retain()
	}

	debug.Logf("arrow/array: new table with %d columns and %d rows", len(cols), rows)
	return tbl, nil
}

// NewTableFromRecords returns a new table built by concatenating, column by
// column, records sharing one schema.
//
// NewTableFromRecords fails with arrow.ErrEmptyInput for zero records and
// with arrow.ErrInvalid when a record's schema differs from the first one.
func NewTableFromRecords(recs []*Record) (*Table, error) {
	if len(recs) == 0 {
		return nil, xerrors.Errorf("arrow/array: table from records: %w", arrow.ErrEmptyInput)
	}

	schema := recs[0].Schema()
	for i, rec := range recs[1:] {
		if !rec.Schema().Equal(schema) {
			return nil, xerrors.Errorf("arrow/array: record %d schema %v differs from %v: %w",
				i+1, rec.Schema(), schema, arrow.ErrInvalid)
		}
	}

	cols := make([]*Column, schema.NumFields())
	defer func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}()

	chunks := make([]Interface, len(recs))
	for i, field := range schema.Fields() {
		for j, rec := range recs {
			chunks[j] = rec.Column(i)
		}

		chunk := NewChunked(field.Type, chunks)
		cols[i] = NewColumn(field, chunk)
		chunk.Release()
	}

	tbl, err := NewTable(schema, cols)
	if err != nil {
		return nil, xerrors.Errorf("arrow/array: table from records: %w", err)
	}
	return tbl, nil
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (tbl *Table) Retain() {
	tbl.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (tbl *Table) Release() {
	debug.Assert(tbl.refCount.Load() > 0, "too many releases")

	if tbl.refCount.Add(-1) == 0 {
		for _, col := range tbl.cols {
			col.Release()
		}
		tbl.cols = nil
	}
}

func (tbl *Table) Schema() *arrow.Schema { return tbl.schema }
func (tbl *Table) NumRows() int64        { return tbl.rows }
func (tbl *Table) NumCols() int64        { return int64(len(tbl.cols)) }
func (tbl *Table) Column(i int) *Column  { return tbl.cols[i] }

// ColumnByIndex returns column i, or arrow.ErrIndex if there is no such column.
func (tbl *Table) ColumnByIndex(i int) (*Column, error) {
	if i < 0 || i >= len(tbl.cols) {
		return nil, xerrors.Errorf("arrow/array: column %d outside table of %d columns: %w", i, len(tbl.cols), arrow.ErrIndex)
	}
	return tbl.cols[i], nil
}

// ColumnByName returns the first column named name, or arrow.ErrIndex if the
// schema has no such field.
func (tbl *Table) ColumnByName(name string) (*Column, error) {
	i := tbl.schema.FieldIndex(name)
	if i < 0 {
		return nil, xerrors.Errorf("arrow/array: no column named %q: %w", name, arrow.ErrIndex)
	}
	return tbl.cols[i], nil
}

// TableBuilder accumulates named chunked columns and assembles them into a
// Table.
type TableBuilder struct {
	fields []arrow.Field
	cols   []*Chunked
}

func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// AddColumn adds arr as a single-chunk column named name. The field is
// nullable when arr holds nulls.
func (b *TableBuilder) AddColumn(name string, arr Interface) *TableBuilder {
	chunk := NewChunked(arr.DataType(), []Interface{arr})
	defer chunk.Release()
	return b.AddChunked(name, chunk)
}

// AddChunked adds c as a column named name. The field is nullable when c
// holds nulls.
func (b *TableBuilder) AddChunked(name string, c *Chunked) *TableBuilder {
	return b.AddField(arrow.Field{Name: name, Type: c.DataType(), Nullable: c.NullN() != 0}, c)
}

// AddField adds c described by field. c is retained until Finish or Release.
func (b *TableBuilder) AddField(field arrow.Field, c *Chunked) *TableBuilder {
	c.Retain()
	b.fields = append(b.fields, field)
	b.cols = append(b.cols, c)
	return b
}

// Finish assembles the table and empties the builder.
func (b *TableBuilder) Finish() (*Table, error) {
	defer b.Release()

	if len(b.cols) == 0 {
		return nil, xerrors.Errorf("arrow/array: table needs at least one column: %w", arrow.ErrEmptyInput)
	}

	cols := make([]*Column, len(b.cols))
	for i, c := range b.cols {
		if !arrow.TypeEqual(c.DataType(), b.fields[i].Type) {
			for _, col := range cols[:i] {
				col.Release()
			}
			return nil, xerrors.Errorf("arrow/array: column %q is %v, field is %v: %w",
				b.fields[i].Name, c.DataType(), b.fields[i].Type, arrow.ErrInvalid)
		}
		cols[i] = NewColumn(b.fields[i], c)
	}
	defer func() {
		for _, col := range cols {
			col.Release()
		}
	}()

	return NewTable(arrow.NewSchema(b.fields), cols)
}

// Release drops the columns held by the builder.
func (b *TableBuilder) Release() {
	for _, c := range b.cols {
		c.Release()
	}
	b.fields, b.cols = nil, nil
}

// TableReader is a Record iterator over a (possibly chunked) Table
type TableReader struct {
	refCount atomic.Int64

	tbl   *Table
	cur   int64   // current row
	max   int64   // total number of rows
	rec   *Record // current Record
	chksz int64   // chunk size

	chunks  []*Chunked
	slots   []int   // chunk indices
	offsets []int64 // chunk offsets
}

// NewTableReader returns a new TableReader to iterate over the (possibly chunked) Table.
// if chunkSize is <= 0, the biggest possible chunk will be selected.
func NewTableReader(tbl *Table, chunkSize int64) *TableReader {
	ncols := tbl.NumCols()
	tr := &TableReader{
		tbl:     tbl,
		cur:     0,
		max:     tbl.NumRows(),
		chksz:   chunkSize,
		chunks:  make([]*Chunked, ncols),
		slots:   make([]int, ncols),
		offsets: make([]int64, ncols),
	}
	tr.refCount.Store(1)
	tr.tbl.Retain()

	if tr.chksz <= 0 {
		tr.chksz = math.MaxInt64
	}

	for i := range tr.chunks {
		col := tr.tbl.Column(i)
		tr.chunks[i] = col.Data()
		tr.chunks[i].Retain()
	}
	return tr
}

func (tr *TableReader) Schema() *arrow.Schema { return tr.tbl.Schema() }
func (tr *TableReader) Record() *Record       { return tr.rec }
func (tr *TableReader) Err() error            { return nil }

func (tr *TableReader) Next() bool {
	if tr.cur >= tr.max {
		return false
	}

	if tr.rec != nil {
		tr.rec.Release()
	}

	// determine the minimum contiguous slice across all columns
	chunksz := min(tr.chksz, tr.max)
	chunks := make([]Interface, len(tr.chunks))
	for i := range chunks {
		j := tr.slots[i]
		chunk := tr.chunks[i].Chunk(j)
		remain := int64(chunk.Len()) - tr.offsets[i]
		if remain < chunksz {
			chunksz = remain
		}

		chunks[i] = chunk
	}

	// slice the chunks, advance each chunk slot as appropriate.
	batch := make([]Interface, len(tr.chunks))
	for i, chunk := range chunks {
		var slice Interface
		offset := tr.offsets[i]
		switch int64(chunk.Len()) - offset {
		case chunksz:
			tr.slots[i]++
			tr.offsets[i] = 0
			if offset > 0 {
				// need to slice
				slice = NewSlice(chunk, offset, offset+chunksz)
			} else {
				// no need to slice
				slice = chunk
				slice.Retain()
			}
		default:
			tr.offsets[i] += chunksz
			slice = NewSlice(chunk, offset, offset+chunksz)
		}
		batch[i] = slice
	}

	var err error
	tr.rec, err = NewRecord(tr.tbl.Schema(), batch)
	for _, arr := range batch {
		arr.Release()
	}
	if err != nil {
		panic(fmt.Errorf("arrow/array: table reader: %w", err))
	}
	tr.cur += chunksz
	return true
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (tr *TableReader) Retain() {
	tr.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (tr *TableReader) Release() {
	debug.Assert(tr.refCount.Load() > 0, "too many releases")

	if tr.refCount.Add(-1) == 0 {
		tr.tbl.Release()
		for _, chk := range tr.chunks {
			chk.Release()
		}
		if tr.rec != nil {
			tr.rec.Release()
		}
		tr.tbl = nil
		tr.chunks = nil
		tr.slots = nil
		tr.offsets = nil
	}
}

var (
	_ RecordReader = (*TableReader)(nil)
)
