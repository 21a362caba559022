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
	"strconv"

	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
)

// Type is a logical type. The set of types is closed: every Type maps to
// exactly one buffer layout and, for fixed-width types, one element width.
type Type int

const (
	// NULL type having no physical storage
	NULL Type = iota

	// BOOL is a 1 bit, LSB bit-packed ordering
	BOOL

	// UINT8 is an Unsigned 8-bit little-endian integer
	UINT8

	// INT8 is a Signed 8-bit little-endian integer
	INT8

	// UINT16 is an Unsigned 16-bit little-endian integer
	UINT16

	// INT16 is a Signed 16-bit little-endian integer
	INT16

	// UINT32 is an Unsigned 32-bit little-endian integer
	UINT32

	// INT32 is a Signed 32-bit little-endian integer
	INT32

	// UINT64 is an Unsigned 64-bit little-endian integer
	UINT64

	// INT64 is a Signed 64-bit little-endian integer
	INT64

	// FLOAT32 is a 4-byte floating point value
	FLOAT32

	// FLOAT64 is an 8-byte floating point value
	FLOAT64

	// STRING is a UTF8 variable-length string
	STRING

	// BINARY is a Variable-length byte type (no guarantee of UTF8-ness)
	BINARY

	// DATE32 is int32 days since the UNIX epoch
	DATE32

	// DATE64 is int64 milliseconds since the UNIX epoch
	DATE64

	// TIMESTAMP is an exact timestamp encoded with int64 since UNIX epoch
	TIMESTAMP

	// STRUCT of logical types
	STRUCT
)

var typeNames = [...]string{
	NULL:      "NULL",
	BOOL:      "BOOL",
	UINT8:     "UINT8",
	INT8:      "INT8",
	UINT16:    "UINT16",
	INT16:     "INT16",
	UINT32:    "UINT32",
	INT32:     "INT32",
	UINT64:    "UINT64",
	INT64:     "INT64",
	FLOAT32:   "FLOAT32",
	FLOAT64:   "FLOAT64",
	STRING:    "STRING",
	BINARY:    "BINARY",
	DATE32:    "DATE32",
	DATE64:    "DATE64",
	TIMESTAMP: "TIMESTAMP",
	STRUCT:    "STRUCT",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// LayoutKind identifies the buffer layout strategy used to store a type.
type LayoutKind int8

const (
	// LayoutNone is used by types without physical storage.
	LayoutNone LayoutKind = iota
	// LayoutFixed stores one fixed-size slot per element: [nulls, values].
	LayoutFixed
	// LayoutBoolean stores one bit per element: [nulls, values].
	LayoutBoolean
	// LayoutVariable stores int32 offsets and a byte payload: [nulls, offsets, values].
	LayoutVariable
	// LayoutStruct stores only validity; children are held separately: [nulls].
	LayoutStruct
)

// NumBuffers returns the number of buffers a finished column of this layout
// carries.
func (k LayoutKind) NumBuffers() int {
	switch k {
	case LayoutFixed, LayoutBoolean:
		return 2
	case LayoutVariable:
		return 3
	case LayoutStruct:
		return 1
	default:
		return 0
	}
}

func (k LayoutKind) String() string {
	switch k {
	case LayoutFixed:
		return "fixed"
	case LayoutBoolean:
		return "boolean"
	case LayoutVariable:
		return "variable"
	case LayoutStruct:
		return "struct"
	default:
		return "none"
	}
}

// DataType is the representation of an Arrow type.
type DataType interface {
	ID() Type
	// Name is name of the data type.
	Name() string
	Fingerprint() string
	String() string
}

// FixedWidthDataType is the representation of an Arrow type that
// requires a fixed number of bits in memory for each element.
type FixedWidthDataType interface {
	DataType
	// BitWidth returns the number of bits required to store a single element of this data type in memory.
	BitWidth() int
}

type BinaryDataType interface {
	DataType
	IsUtf8() bool
	binary()
}

// Layout reports the buffer layout used by values of dt.
func Layout(dt DataType) LayoutKind {
	switch dt.ID() {
	case BOOL:
		return LayoutBoolean
	case UINT8, INT8, UINT16, INT16, UINT32, INT32, UINT64, INT64,
		FLOAT32, FLOAT64, DATE32, DATE64, TIMESTAMP:
		return LayoutFixed
	case STRING, BINARY:
		return LayoutVariable
	case STRUCT:
		return LayoutStruct
	default:
		return LayoutNone
	}
}

func typeIDFingerprint(id Type) string {
	c := string(rune(int(id) + int('A')))
	return "@" + c
}

func typeFingerprint(typ DataType) string { return typeIDFingerprint(typ.ID()) }

func timeUnitFingerprint(unit TimeUnit) rune {
	switch unit {
	case Second:
		return 's'
	case Millisecond:
		return 'm'
	case Microsecond:
		return 'u'
	case Nanosecond:
		return 'n'
	default:
		debug.Assert(false, "unexpected time unit")
		return rune(0)
	}
}

// TypeEqual reports whether two data types describe the same logical type,
// including nested children and their nullability. A nil type equals nothing.
func TypeEqual(left, right DataType) bool {
	switch {
	case left == nil || right == nil:
		return false
	case left.ID() != right.ID():
		return false
	}

	switch l := left.(type) {
	case *TimestampType:
		r := right.(*TimestampType)
		return l.Unit == r.Unit && l.TimeZone == r.TimeZone
	case *StructType:
		r := right.(*StructType)
		if len(l.fields) != len(r.fields) {
			return false
		}
		for i := range l.fields {
			if !l.fields[i].Equal(r.fields[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
