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
	"unsafe"

	"golang.org/x/xerrors"
)

// FixedWidth is the set of Go types that can back a fixed-width column.
// Named types are accepted by the constraint but only the ones listed by
// FixedWidthTypeOf are part of the catalog.
type FixedWidth interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// FixedWidthTypeOf returns the data type stored by a column of T values.
// It returns ErrUnknownType for any T that has no defined encoding.
func FixedWidthTypeOf[T FixedWidth]() (FixedWidthDataType, error) {
	var zero T
	switch any(zero).(type) {
	case int8:
		return PrimitiveTypes.Int8, nil
	case int16:
		return PrimitiveTypes.Int16, nil
	case int32:
		return PrimitiveTypes.Int32, nil
	case int64:
		return PrimitiveTypes.Int64, nil
	case uint8:
		return PrimitiveTypes.Uint8, nil
	case uint16:
		return PrimitiveTypes.Uint16, nil
	case uint32:
		return PrimitiveTypes.Uint32, nil
	case uint64:
		return PrimitiveTypes.Uint64, nil
	case float32:
		return PrimitiveTypes.Float32, nil
	case float64:
		return PrimitiveTypes.Float64, nil
	case Date32:
		return PrimitiveTypes.Date32, nil
	case Date64:
		return PrimitiveTypes.Date64, nil
	case Timestamp:
		return &TimestampType{}, nil
	default:
		return nil, xerrors.Errorf("arrow: no default value for %T: %w", zero, ErrUnknownType)
	}
}

// SizeOf returns the number of bytes one T occupies in a values buffer.
func SizeOf[T FixedWidth]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// CastFromBytesTo reinterprets the slice b to a slice of type T.
//
// NOTE: len(b) must be a multiple of T's size.
func CastFromBytesTo[T FixedWidth](b []byte) []T {
	if cap(b) == 0 {
		return nil
	}
	ptr := (*T)(unsafe.Pointer(unsafe.SliceData(b)))
	size := SizeOf[T]()
	return unsafe.Slice(ptr, cap(b)/size)[:len(b)/size]
}

// CastToBytes reinterprets the slice b to a slice of bytes.
func CastToBytes[T FixedWidth](b []T) []byte {
	if cap(b) == 0 {
		return nil
	}
	size := SizeOf[T]()
	ptr := (*byte)(unsafe.Pointer(unsafe.SliceData(b)))
	return unsafe.Slice(ptr, cap(b)*size)[:len(b)*size]
}

// FixedWidthTypeFor checks that dt is a fixed-width type whose elements are
// exactly T sized.
func FixedWidthTypeFor[T FixedWidth](dt DataType) (FixedWidthDataType, error) {
	fw, ok := dt.(FixedWidthDataType)
	if !ok || Layout(dt) != LayoutFixed {
		return nil, xerrors.Errorf("arrow: %v is not a fixed-width type: %w", dt, ErrUnknownType)
	}
	if fw.BitWidth() != 8*SizeOf[T]() {
		var zero T
		return nil, xerrors.Errorf("arrow: %v cannot be stored as %T: %w", dt, zero, ErrUnknownType)
	}
	return fw, nil
}
