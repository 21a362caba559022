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

package arrow_test

import (
	"testing"
	"time"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/stretchr/testify/assert"
)

// TestTimeUnit_String verifies each time unit matches its string representation.
func TestTimeUnit_String(t *testing.T) {
	tests := []struct {
		u   arrow.TimeUnit
		exp string
		mul time.Duration
	}{
		{arrow.Nanosecond, "ns", time.Nanosecond},
		{arrow.Microsecond, "us", time.Microsecond},
		{arrow.Millisecond, "ms", time.Millisecond},
		{arrow.Second, "s", time.Second},
	}
	for _, test := range tests {
		t.Run(test.exp, func(t *testing.T) {
			assert.Equal(t, test.exp, test.u.String())
			assert.Equal(t, test.mul, test.u.Multiplier())
		})
	}
}

func TestFixedWidthTypes(t *testing.T) {
	for _, tc := range []struct {
		dt       arrow.FixedWidthDataType
		id       arrow.Type
		name     string
		str      string
		bitWidth int
	}{
		{arrow.FixedWidthTypes.Boolean, arrow.BOOL, "bool", "bool", 1},
		{arrow.PrimitiveTypes.Int8, arrow.INT8, "int8", "int8", 8},
		{arrow.PrimitiveTypes.Int16, arrow.INT16, "int16", "int16", 16},
		{arrow.PrimitiveTypes.Int32, arrow.INT32, "int32", "int32", 32},
		{arrow.PrimitiveTypes.Int64, arrow.INT64, "int64", "int64", 64},
		{arrow.PrimitiveTypes.Uint8, arrow.UINT8, "uint8", "uint8", 8},
		{arrow.PrimitiveTypes.Uint16, arrow.UINT16, "uint16", "uint16", 16},
		{arrow.PrimitiveTypes.Uint32, arrow.UINT32, "uint32", "uint32", 32},
		{arrow.PrimitiveTypes.Uint64, arrow.UINT64, "uint64", "uint64", 64},
		{arrow.PrimitiveTypes.Float32, arrow.FLOAT32, "float32", "float32", 32},
		{arrow.PrimitiveTypes.Float64, arrow.FLOAT64, "float64", "float64", 64},
		{arrow.FixedWidthTypes.Date32, arrow.DATE32, "date32", "date32[day]", 32},
		{arrow.FixedWidthTypes.Date64, arrow.DATE64, "date64", "date64[ms]", 64},
		{arrow.FixedWidthTypes.Timestamp_s, arrow.TIMESTAMP, "timestamp", "timestamp[s, tz=UTC]", 64},
		{&arrow.TimestampType{Unit: arrow.Microsecond}, arrow.TIMESTAMP, "timestamp", "timestamp[us]", 64},
	} {
		t.Run(tc.str, func(t *testing.T) {
			if got, want := tc.dt.ID(), tc.id; got != want {
				t.Fatalf("invalid type ID: got=%v, want=%v", got, want)
			}

			if got, want := tc.dt.Name(), tc.name; got != want {
				t.Fatalf("invalid name: got=%q, want=%q", got, want)
			}

			if got, want := tc.dt.String(), tc.str; got != want {
				t.Fatalf("invalid stringer: got=%q, want=%q", got, want)
			}

			if got, want := tc.dt.BitWidth(), tc.bitWidth; got != want {
				t.Fatalf("invalid bitwidth: got=%d, want=%d", got, want)
			}
		})
	}
}

func TestDate32FromTime(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	for _, tc := range []struct {
		name string
		tm   time.Time
		want arrow.Date32
	}{
		{"epoch", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{"end of epoch day", time.Date(1970, 1, 1, 23, 59, 59, 0, time.UTC), 0},
		{"day before epoch", time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC), -1},
		{"last second before epoch", time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC), -1},
		{"two days before epoch", time.Date(1969, 12, 30, 12, 0, 0, 0, time.UTC), -2},
		{"leap day", time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 18322},
		{"wall clock date", time.Date(1970, 1, 2, 0, 30, 0, 0, cet), 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := arrow.Date32FromTime(tc.tm)
			assert.Equal(t, tc.want, got)
			y, m, d := tc.tm.Date()
			assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), got.ToTime())
		})
	}
}

func TestDateFormattedString(t *testing.T) {
	assert.Equal(t, "1970-01-01", arrow.Date32(0).FormattedString())
	assert.Equal(t, "1969-12-31", arrow.Date32(-1).FormattedString())
	assert.Equal(t, "2020-03-01", arrow.Date32(18322).FormattedString())

	assert.Equal(t, "1970-01-01T00:00:00.000Z", arrow.Date64(0).FormattedString())
	assert.Equal(t, "1970-01-02T00:00:01.500Z", arrow.Date64(86401500).FormattedString())

	tm := time.Date(2023, 2, 28, 10, 11, 12, 345e6, time.UTC)
	assert.Equal(t, arrow.Date64(tm.UnixMilli()), arrow.Date64FromTime(tm))
	assert.Equal(t, tm, arrow.Date64FromTime(tm).ToTime())
}

func TestTimestampFromTime(t *testing.T) {
	tm := time.Date(2023, 2, 28, 10, 11, 12, 345678912, time.UTC)
	for _, tc := range []struct {
		unit arrow.TimeUnit
		want arrow.Timestamp
		back time.Time
	}{
		{arrow.Second, arrow.Timestamp(tm.Unix()), tm.Truncate(time.Second)},
		{arrow.Millisecond, arrow.Timestamp(tm.UnixMilli()), tm.Truncate(time.Millisecond)},
		{arrow.Microsecond, arrow.Timestamp(tm.UnixMicro()), tm.Truncate(time.Microsecond)},
		{arrow.Nanosecond, arrow.Timestamp(tm.UnixNano()), tm},
	} {
		t.Run(tc.unit.String(), func(t *testing.T) {
			ts := arrow.TimestampFromTime(tm, tc.unit)
			assert.Equal(t, tc.want, ts)
			assert.Equal(t, tc.back, ts.ToTime(tc.unit))
			assert.Equal(t, time.UTC, ts.ToTime(tc.unit).Location())
		})
	}
}
