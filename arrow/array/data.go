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
)

// Data represents the memory and metadata of a finished column: its data
// type, slot count, null count, slot offset, the ordered buffer list of its
// layout and, for struct columns, one child Data per field.
//
// Data is immutable and safe for concurrent reads.
type Data struct {
	refCount  atomic.Int64
	dtype     arrow.DataType
	nullN     int
	offset    int
	length    int
	buffers   []*memory.Buffer
	childData []*Data
}

// NewData creates a new Data. Each buffer and child is retained.
func NewData(dtype arrow.DataType, length int, buffers []*memory.Buffer, childData []*Data, nullN, offset int) *Data {
	for _, b := range buffers {
		if b != nil {
			b.Retain()
		}
	}

	for _, child := range childData {
		if child != nil {
			child.Retain()
		}
	}

	d := &Data{
		dtype:     dtype,
		nullN:     nullN,
		length:    length,
		offset:    offset,
		buffers:   buffers,
		childData: childData,
	}
	d.refCount.Store(1)
	return d
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (d *Data) Retain() {
	d.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (d *Data) Release() {
	debug.Assert(d.refCount.Load() > 0, "too many releases")

	if d.refCount.Add(-1) == 0 {
		releaseBuffers(d.buffers)
		for _, b := range d.childData {
			b.Release()
		}
		d.buffers, d.childData = nil, nil
	}
}

// DataType returns the DataType of the data.
func (d *Data) DataType() arrow.DataType { return d.dtype }

// NullN returns the number of nulls.
func (d *Data) NullN() int { return d.nullN }

// Len returns the length.
func (d *Data) Len() int { return d.length }

// Offset returns the slot offset applied to every buffer.
func (d *Data) Offset() int { return d.offset }

// Buffers returns the ordered buffers of the column: [nulls],
// [nulls, values] or [nulls, offsets, values] depending on its layout.
// An empty nulls buffer means every slot is valid.
func (d *Data) Buffers() []*memory.Buffer { return d.buffers }

// Children returns the child Data of a struct column.
func (d *Data) Children() []*Data { return d.childData }

// NewSliceData returns a new slice that shares backing data with the input.
// The returned Data slice starts at i and extends j-i elements, such as:
//
//	slice := data[i:j]
//
// The returned value must be Release'd after use.
//
// NewSliceData panics if the slice is outside the valid range of the input Data.
// NewSliceData panics if j < i.
func NewSliceData(data *Data, i, j int64) *Data {
	if j > int64(data.length) || i > j || i < 0 {
		panic("arrow/array: index out of range")
	}

	children := make([]*Data, len(data.childData))
	for k, child := range data.childData {
		children[k] = NewSliceData(child, i, j)
	}
	defer func() {
		for _, child := range children {
			child.Release()
		}
	}()

	var (
		offset = data.offset + int(i)
		length = int(j - i)
		nullN  = 0
	)
	if data.nullN > 0 && length > 0 {
		nulls := data.buffers[0]
		if nulls != nil && nulls.Len() > 0 {
			nullN = length - bitutil.CountSetBits(nulls.Bytes(), offset, length)
		}
	}

	return NewData(data.dtype, length, data.buffers, children, nullN, offset)
}

func releaseBuffers(bufs []*memory.Buffer) {
	for _, b := range bufs {
		if b != nil {
			b.Release()
		}
	}
}
