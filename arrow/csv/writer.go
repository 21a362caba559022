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
	"io"
	"sync"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"golang.org/x/xerrors"
)

// Writer wraps encoding/csv.Writer and writes array.Record based on a schema.
type Writer struct {
	w      *csv.Writer
	schema *arrow.Schema
	header bool
	once   sync.Once
	null   string
}

// NewWriter returns a writer that writes array.Records to the CSV file
// with the given schema.
//
// NewWriter fails with arrow.ErrUnknownType if the schema holds a column with
// no single-cell text form, such as a struct.
func NewWriter(w io.Writer, schema *arrow.Schema, opts ...Option) (*Writer, error) {
	if err := validate(schema); err != nil {
		return nil, err
	}

	ww := &Writer{w: csv.NewWriter(w), schema: schema, null: array.NullValueStr}
	for _, opt := range opts {
		opt(ww)
	}

	return ww, nil
}

func (w *Writer) Schema() *arrow.Schema { return w.schema }

// Write writes a single Record as one row per record row to the CSV file.
// Cells are rendered with the column's ValueStr; null slots become the
// writer's null string.
func (w *Writer) Write(record *array.Record) error {
	if !record.Schema().Equal(w.schema) {
		return xerrors.Errorf("arrow/csv: record schema %v does not match writer schema: %w",
			record.Schema(), ErrMismatchFields)
	}

	var err error
	if w.header {
		w.once.Do(func() {
			err = w.writeHeader()
		})
		if err != nil {
			return err
		}
	}

	recs := make([][]string, record.NumRows())
	for i := range recs {
		recs[i] = make([]string, record.NumCols())
	}

	for j, col := range record.Columns() {
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				recs[i][j] = w.null
				continue
			}
			recs[i][j] = col.ValueStr(i)
		}
	}

	for _, rec := range recs {
		if err := w.w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying csv Writer.
// If an error occurred during the Flush, return it
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Error reports any error that has occurred during a previous Write or Flush.
func (w *Writer) Error() error {
	return w.w.Error()
}

func (w *Writer) writeHeader() error {
	headers := make([]string, len(w.schema.Fields()))
	for i := range headers {
		headers[i] = w.schema.Field(i).Name
	}
	return w.w.Write(headers)
}
