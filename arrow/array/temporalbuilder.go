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
	"time"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
)

type temporal interface {
	arrow.Date32 | arrow.Date64 | arrow.Timestamp
}

// TemporalBuilder appends time.Time values to a fixed-width column, after
// converting them to the column's integer encoding. Every other operation is
// delegated to the embedded FixedBuilder.
type TemporalBuilder[T temporal] struct {
	*FixedBuilder[T]

	conv func(time.Time) T
}

type (
	Date32Builder    = TemporalBuilder[arrow.Date32]
	Date64Builder    = TemporalBuilder[arrow.Date64]
	TimestampBuilder = TemporalBuilder[arrow.Timestamp]
)

// NewDate32Builder returns a builder of days since the UNIX epoch.
func NewDate32Builder(mem memory.Allocator) *Date32Builder {
	return &Date32Builder{
		FixedBuilder: newFixedBuilder[arrow.Date32](mem, arrow.FixedWidthTypes.Date32),
		conv:         arrow.Date32FromTime,
	}
}

// NewDate64Builder returns a builder of milliseconds since the UNIX epoch.
func NewDate64Builder(mem memory.Allocator) *Date64Builder {
	return &Date64Builder{
		FixedBuilder: newFixedBuilder[arrow.Date64](mem, arrow.FixedWidthTypes.Date64),
		conv:         arrow.Date64FromTime,
	}
}

// NewTimestampBuilder returns a builder of dtype.Unit ticks since the UNIX
// epoch.
func NewTimestampBuilder(mem memory.Allocator, dtype *arrow.TimestampType) *TimestampBuilder {
	unit := dtype.Unit
	return &TimestampBuilder{
		FixedBuilder: newFixedBuilder[arrow.Timestamp](mem, dtype),
		conv: func(t time.Time) arrow.Timestamp {
			return arrow.TimestampFromTime(t, unit)
		},
	}
}

// Append converts t and appends it.
func (b *TemporalBuilder[T]) Append(t time.Time) {
	b.FixedBuilder.Append(b.conv(t))
}

// AppendValues converts and appends the values in v. The valid slice must
// either be empty or be equal in length to v.
func (b *TemporalBuilder[T]) AppendValues(v []time.Time, valid []bool) {
	if len(v) != len(valid) && len(valid) != 0 {
		panic("len(v) != len(valid) && len(valid) != 0")
	}

	raw := make([]T, len(v))
	for i, t := range v {
		if len(valid) == 0 || valid[i] {
			raw[i] = b.conv(t)
		}
	}
	b.FixedBuilder.AppendValues(raw, valid)
}

// ValueTime returns slot i as a UTC time.
func (b *TemporalBuilder[T]) ValueTime(i int) time.Time {
	return toTime(b.dtype, b.Value(i))
}

func toTime[T temporal](dt arrow.DataType, v T) time.Time {
	switch v := any(v).(type) {
	case arrow.Date32:
		return v.ToTime()
	case arrow.Date64:
		return v.ToTime()
	case arrow.Timestamp:
		return v.ToTime(dt.(*arrow.TimestampType).Unit)
	}
	return time.Time{}
}

var (
	_ ArrayBuilder = (*Date32Builder)(nil)
	_ ArrayBuilder = (*Date64Builder)(nil)
	_ ArrayBuilder = (*TimestampBuilder)(nil)
)
