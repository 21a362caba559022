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

package arrow

import (
	"fmt"
	"time"
)

type BooleanType struct{}

func (t *BooleanType) ID() Type            { return BOOL }
func (t *BooleanType) Name() string        { return "bool" }
func (t *BooleanType) String() string      { return "bool" }
func (t *BooleanType) Fingerprint() string { return typeFingerprint(t) }

// BitWidth returns the number of bits required to store a single element of this data type in memory.
func (t *BooleanType) BitWidth() int { return 1 }

type (
	Int8Type    struct{}
	Int16Type   struct{}
	Int32Type   struct{}
	Int64Type   struct{}
	Uint8Type   struct{}
	Uint16Type  struct{}
	Uint32Type  struct{}
	Uint64Type  struct{}
	Float32Type struct{}
	Float64Type struct{}
)

func (t *Int8Type) ID() Type            { return INT8 }
func (t *Int8Type) Name() string        { return "int8" }
func (t *Int8Type) String() string      { return "int8" }
func (t *Int8Type) BitWidth() int       { return 8 }
func (t *Int8Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Int16Type) ID() Type            { return INT16 }
func (t *Int16Type) Name() string        { return "int16" }
func (t *Int16Type) String() string      { return "int16" }
func (t *Int16Type) BitWidth() int       { return 16 }
func (t *Int16Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Int32Type) ID() Type            { return INT32 }
func (t *Int32Type) Name() string        { return "int32" }
func (t *Int32Type) String() string      { return "int32" }
func (t *Int32Type) BitWidth() int       { return 32 }
func (t *Int32Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Int64Type) ID() Type            { return INT64 }
func (t *Int64Type) Name() string        { return "int64" }
func (t *Int64Type) String() string      { return "int64" }
func (t *Int64Type) BitWidth() int       { return 64 }
func (t *Int64Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Uint8Type) ID() Type            { return UINT8 }
func (t *Uint8Type) Name() string        { return "uint8" }
func (t *Uint8Type) String() string      { return "uint8" }
func (t *Uint8Type) BitWidth() int       { return 8 }
func (t *Uint8Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Uint16Type) ID() Type            { return UINT16 }
func (t *Uint16Type) Name() string        { return "uint16" }
func (t *Uint16Type) String() string      { return "uint16" }
func (t *Uint16Type) BitWidth() int       { return 16 }
func (t *Uint16Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Uint32Type) ID() Type            { return UINT32 }
func (t *Uint32Type) Name() string        { return "uint32" }
func (t *Uint32Type) String() string      { return "uint32" }
func (t *Uint32Type) BitWidth() int       { return 32 }
func (t *Uint32Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Uint64Type) ID() Type            { return UINT64 }
func (t *Uint64Type) Name() string        { return "uint64" }
func (t *Uint64Type) String() string      { return "uint64" }
func (t *Uint64Type) BitWidth() int       { return 64 }
func (t *Uint64Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Float32Type) ID() Type            { return FLOAT32 }
func (t *Float32Type) Name() string        { return "float32" }
func (t *Float32Type) String() string      { return "float32" }
func (t *Float32Type) BitWidth() int       { return 32 }
func (t *Float32Type) Fingerprint() string { return typeFingerprint(t) }

func (t *Float64Type) ID() Type            { return FLOAT64 }
func (t *Float64Type) Name() string        { return "float64" }
func (t *Float64Type) String() string      { return "float64" }
func (t *Float64Type) BitWidth() int       { return 64 }
func (t *Float64Type) Fingerprint() string { return typeFingerprint(t) }

type (
	Timestamp int64
	TimeUnit  int
	Date32    int32
	Date64    int64
)

const (
	Nanosecond TimeUnit = iota
	Microsecond
	Millisecond
	Second
)

const secondsPerDay = int64(24 * time.Hour / time.Second)

func (u TimeUnit) Multiplier() time.Duration {
	return [...]time.Duration{time.Nanosecond, time.Microsecond, time.Millisecond, time.Second}[uint(u)&3]
}

func (u TimeUnit) String() string { return [...]string{"ns", "us", "ms", "s"}[uint(u)&3] }

// Date32FromTime returns the number of whole days between t and the UNIX epoch,
// rounding towards negative infinity. The wall clock date of t is used.
func Date32FromTime(t time.Time) Date32 {
	if _, offset := t.Zone(); offset != 0 {
		t = t.Add(time.Duration(offset) * time.Second).UTC()
	}
	secs := t.Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return Date32(days)
}

// ToTime returns midnight UTC of the day d.
func (d Date32) ToTime() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Date32) FormattedString() string {
	return d.ToTime().Format("2006-01-02")
}

// Date64FromTime returns the number of milliseconds between t and the UNIX epoch.
func Date64FromTime(t time.Time) Date64 {
	return Date64(t.UnixMilli())
}

func (d Date64) ToTime() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

func (d Date64) FormattedString() string {
	return d.ToTime().Format("2006-01-02T15:04:05.000Z07:00")
}

// TimestampFromTime converts t to the number of unit ticks since the UNIX epoch.
func TimestampFromTime(t time.Time, unit TimeUnit) Timestamp {
	switch unit {
	case Second:
		return Timestamp(t.Unix())
	case Millisecond:
		return Timestamp(t.UnixMilli())
	case Microsecond:
		return Timestamp(t.UnixMicro())
	default:
		return Timestamp(t.UnixNano())
	}
}

// ToTime returns the UTC time represented by t in the given unit.
func (t Timestamp) ToTime(unit TimeUnit) time.Time {
	switch unit {
	case Second:
		return time.Unix(int64(t), 0).UTC()
	case Millisecond:
		return time.UnixMilli(int64(t)).UTC()
	case Microsecond:
		return time.UnixMicro(int64(t)).UTC()
	default:
		return time.Unix(0, int64(t)).UTC()
	}
}

// Date32Type is encoded as a 32-bit signed integer of days since the UNIX epoch.
type Date32Type struct{}

func (t *Date32Type) ID() Type            { return DATE32 }
func (t *Date32Type) Name() string        { return "date32" }
func (t *Date32Type) String() string      { return "date32[day]" }
func (t *Date32Type) BitWidth() int       { return 32 }
func (t *Date32Type) Fingerprint() string { return typeFingerprint(t) + "d" }

// Date64Type is encoded as a 64-bit signed integer of milliseconds since the UNIX epoch.
type Date64Type struct{}

func (t *Date64Type) ID() Type            { return DATE64 }
func (t *Date64Type) Name() string        { return "date64" }
func (t *Date64Type) String() string      { return "date64[ms]" }
func (t *Date64Type) BitWidth() int       { return 64 }
func (t *Date64Type) Fingerprint() string { return typeFingerprint(t) + "m" }

// TimestampType is encoded as a 64-bit signed integer since the UNIX epoch (1970-01-01T00:00:00Z).
// The zero-value is a nanosecond and time zone neutral. Time zone neutral can be
// considered UTC without having "UTC" as a time zone.
type TimestampType struct {
	Unit     TimeUnit
	TimeZone string
}

func (*TimestampType) ID() Type     { return TIMESTAMP }
func (*TimestampType) Name() string { return "timestamp" }
func (t *TimestampType) String() string {
	switch len(t.TimeZone) {
	case 0:
		return "timestamp[" + t.Unit.String() + "]"
	default:
		return "timestamp[" + t.Unit.String() + ", tz=" + t.TimeZone + "]"
	}
}

func (t *TimestampType) Fingerprint() string {
	return fmt.Sprintf("%s%d:%s", typeFingerprint(t)+string(timeUnitFingerprint(t.Unit)), len(t.TimeZone), t.TimeZone)
}

// BitWidth returns the number of bits required to store a single element of this data type in memory.
func (*TimestampType) BitWidth() int { return 64 }

var (
	PrimitiveTypes = struct {
		Int8    FixedWidthDataType
		Int16   FixedWidthDataType
		Int32   FixedWidthDataType
		Int64   FixedWidthDataType
		Uint8   FixedWidthDataType
		Uint16  FixedWidthDataType
		Uint32  FixedWidthDataType
		Uint64  FixedWidthDataType
		Float32 FixedWidthDataType
		Float64 FixedWidthDataType
		Date32  FixedWidthDataType
		Date64  FixedWidthDataType
	}{
		Int8:    &Int8Type{},
		Int16:   &Int16Type{},
		Int32:   &Int32Type{},
		Int64:   &Int64Type{},
		Uint8:   &Uint8Type{},
		Uint16:  &Uint16Type{},
		Uint32:  &Uint32Type{},
		Uint64:  &Uint64Type{},
		Float32: &Float32Type{},
		Float64: &Float64Type{},
		Date32:  &Date32Type{},
		Date64:  &Date64Type{},
	}

	FixedWidthTypes = struct {
		Boolean      FixedWidthDataType
		Date32       FixedWidthDataType
		Date64       FixedWidthDataType
		Timestamp_s  FixedWidthDataType
		Timestamp_ms FixedWidthDataType
		Timestamp_us FixedWidthDataType
		Timestamp_ns FixedWidthDataType
	}{
		Boolean:      &BooleanType{},
		Date32:       &Date32Type{},
		Date64:       &Date64Type{},
		Timestamp_s:  &TimestampType{Unit: Second, TimeZone: "UTC"},
		Timestamp_ms: &TimestampType{Unit: Millisecond, TimeZone: "UTC"},
		Timestamp_us: &TimestampType{Unit: Microsecond, TimeZone: "UTC"},
		Timestamp_ns: &TimestampType{Unit: Nanosecond, TimeZone: "UTC"},
	}

	_ FixedWidthDataType = (*BooleanType)(nil)
	_ FixedWidthDataType = (*TimestampType)(nil)
)
