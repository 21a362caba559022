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

// Package json reads newline delimited JSON rows into records.
package json

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
	"golang.org/x/xerrors"
)

type Option func(config)
type config interface{}

// WithChunk sets the chunk size for reading in json records. The default is to
// read in one row per record batch as a single object. If chunk size is set to
// a negative value, then the entire file is read as a single record batch.
// Otherwise a record batch is read in with chunk size rows per record batch until
// it reaches EOF.
func WithChunk(n int) Option {
	return func(cfg config) {
		switch cfg := cfg.(type) {
		case *Reader:
			cfg.chunk = n
		default:
			panic(fmt.Errorf("arrow/json: unknown config type %T", cfg))
		}
	}
}

// WithAllocator specifies the allocator to use for creating the record batches,
// if it is not called, then memory.DefaultAllocator will be used.
func WithAllocator(mem memory.Allocator) Option {
	return func(cfg config) {
		switch cfg := cfg.(type) {
		case *Reader:
			cfg.mem = mem
		default:
			panic(fmt.Errorf("arrow/json: unknown config type %T", cfg))
		}
	}
}

// Reader is a json reader that meets the array.RecordReader interface definition.
//
// Each row is one JSON object keyed by field name. Missing fields are null
// and keys absent from the schema are skipped. To read a single JSON array
// of objects use array.RecordFromJSON instead.
//
// There's no matching writer: records implement MarshalJSON, and each
// element of the encoded array is a row in the format read here.
type Reader struct {
	r      *json.Decoder
	schema *arrow.Schema

	bldr *array.RecordBuilder

	refCount atomic.Int64
	cur      *array.Record
	err      error

	chunk int
	done  bool

	mem  memory.Allocator
	next func() bool
}

// NewReader returns a json RecordReader which expects to find one json object
// per row of dataset. Using WithChunk can control how many rows are processed
// per record, which is how many objects become a single record from the file.
//
// NewReader fails with arrow.ErrUnknownType if a field of schema has no
// builder.
func NewReader(r io.Reader, schema *arrow.Schema, opts ...Option) (*Reader, error) {
	rr := &Reader{
		r:      json.NewDecoder(r),
		schema: schema,
		chunk:  1,
	}
	rr.refCount.Store(1)
	rr.r.UseNumber()
	for _, o := range opts {
		o(rr)
	}

	if rr.mem == nil {
		rr.mem = memory.DefaultAllocator
	}

	var err error
	if rr.bldr, err = array.NewRecordBuilder(rr.mem, schema); err != nil {
		return nil, xerrors.Errorf("arrow/json: %w", err)
	}

	switch {
	case rr.chunk < 0:
		rr.next = rr.nextall
	case rr.chunk > 1:
		rr.next = rr.nextn
	default:
		rr.next = rr.next1
	}
	return rr, nil
}

// Err returns the last encountered error
func (r *Reader) Err() error { return r.err }

func (r *Reader) Schema() *arrow.Schema { return r.schema }

// Record returns the last read in record. The returned record is only valid
// until the next call to Next unless Retain is called on the record itself.
func (r *Reader) Record() *array.Record { return r.cur }

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
		r.bldr.Release()
		r.r = nil
	}
}

// Next returns true if it read in a record, which will be available via Record
// and false if there is either an error or the end of the reader.
func (r *Reader) Next() bool {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}

	if r.err != nil || r.done {
		return false
	}

	return r.next()
}

// readNext appends the next row to the builder.
func (r *Reader) readNext() bool {
	if !r.r.More() {
		r.done = true
		return false
	}

	r.err = r.bldr.UnmarshalOne(r.r)
	if r.err != nil {
		r.done = true
		if errors.Is(r.err, io.EOF) {
			r.err = io.ErrUnexpectedEOF
		}
		r.err = xerrors.Errorf("arrow/json: row at offset %d: %w", r.r.InputOffset(), r.err)
		return false
	}
	return true
}

func (r *Reader) newRecord() bool {
	r.cur, r.err = r.bldr.NewRecord()
	if r.err != nil {
		r.done = true
		return false
	}
	return true
}

func (r *Reader) nextall() bool {
	n := 0
	for r.readNext() {
		n++
	}

	if r.err != nil || n == 0 {
		return false
	}
	return r.newRecord()
}

func (r *Reader) next1() bool {
	if !r.readNext() {
		return false
	}
	return r.newRecord()
}

func (r *Reader) nextn() bool {
	var n = 0

	for i := 0; i < r.chunk && !r.done; i, n = i+1, n+1 {
		if !r.readNext() {
			break
		}
	}

	if r.err != nil || n == 0 {
		return false
	}
	return r.newRecord()
}

var (
	_ array.RecordReader = (*Reader)(nil)
)
