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
	"strconv"
	"strings"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/internal/json"
)

// timestampLayout is the string form of timestamp values.
const timestampLayout = "2006-01-02 15:04:05.999999999Z0700"

// Fixed represents an immutable sequence of fixed-width T values.
type Fixed[T arrow.FixedWidth] struct {
	array
	values []T
}

type (
	Int8      = Fixed[int8]
	Int16     = Fixed[int16]
	Int32     = Fixed[int32]
	Int64     = Fixed[int64]
	Uint8     = Fixed[uint8]
	Uint16    = Fixed[uint16]
	Uint32    = Fixed[uint32]
	Uint64    = Fixed[uint64]
	Float32   = Fixed[float32]
	Float64   = Fixed[float64]
	Date32    = Fixed[arrow.Date32]
	Date64    = Fixed[arrow.Date64]
	Timestamp = Fixed[arrow.Timestamp]
)

// NewFixedData returns a fixed-width array over data.
//
// NewFixedData panics if data's type is not a fixed-width type of T's size.
func NewFixedData[T arrow.FixedWidth](data *Data) *Fixed[T] {
	if _, err := arrow.FixedWidthTypeFor[T](data.dtype); err != nil {
		panic(err)
	}

	a := &Fixed[T]{}
	a.refCount.Store(1)
	a.setData(data)
	return a
}

func (a *Fixed[T]) setData(data *Data) {
	a.array.setData(data)
	a.values = nil
	if vals := data.buffers[1]; vals != nil {
		a.values = arrow.CastFromBytesTo[T](vals.Bytes())
		beg := a.array.data.offset
		end := beg + a.array.data.length
		a.values = a.values[beg:end]
	}
}

// Value returns the value at slot i. Null slots hold T's zero value.
func (a *Fixed[T]) Value(i int) T { return a.values[i] }

// Values returns the values.
func (a *Fixed[T]) Values() []T { return a.values }

func (a *Fixed[T]) ValueAny(i int) any {
	if a.IsNull(i) {
		return nil
	}
	return a.values[i]
}

func (a *Fixed[T]) ValueStr(i int) string {
	if a.IsNull(i) {
		return NullValueStr
	}
	return formatFixed(a.data.dtype, a.values[i])
}

func (a *Fixed[T]) String() string {
	o := new(strings.Builder)
	o.WriteString("[")
	for i := range a.values {
		if i > 0 {
			fmt.Fprintf(o, " ")
		}
		switch {
		case a.IsNull(i):
			o.WriteString(NullValueStr)
		default:
			o.WriteString(formatFixed(a.data.dtype, a.values[i]))
		}
	}
	o.WriteString("]")
	return o.String()
}

func (a *Fixed[T]) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}

	v := a.values[i]
	switch a.data.dtype.ID() {
	case arrow.FLOAT32, arrow.FLOAT64:
		f := float64(v)
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "+Inf"
		case math.IsInf(f, -1):
			return "-Inf"
		}
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return formatFixed(a.data.dtype, v)
	}
	return v
}

// MarshalJSON will marshal this array to JSON as an array of values with
// null slots as nulls.
func (a *Fixed[T]) MarshalJSON() ([]byte, error) {
	vals := make([]any, a.Len())
	for i := range vals {
		vals[i] = a.GetOneForMarshal(i)
	}
	return json.Marshal(vals)
}

// formatFixed returns the string form of a dt value held as T.
func formatFixed[T arrow.FixedWidth](dt arrow.DataType, v T) string {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return strconv.FormatInt(int64(v), 10)
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return strconv.FormatUint(uint64(v), 10)
	case arrow.FLOAT32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case arrow.DATE32:
		return arrow.Date32(v).FormattedString()
	case arrow.DATE64:
		return arrow.Date64(v).FormattedString()
	case arrow.TIMESTAMP:
		return arrow.Timestamp(v).ToTime(dt.(*arrow.TimestampType).Unit).Format(timestampLayout)
	default:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	}
}

var (
	_ Interface = (*Fixed[int64])(nil)
	_ Interface = (*Date32)(nil)
)
