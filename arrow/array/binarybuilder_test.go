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

package array_test

import (
	"bytes"
	"testing"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryBuilder(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)

	exp := [][]byte{[]byte("foo"), []byte("bar"), nil, []byte("sydney"), []byte("cameron")}
	for _, v := range exp {
		if v == nil {
			ab.AppendNull()
		} else {
			ab.Append(v)
		}
	}

	assert.Equal(t, len(exp), ab.Len(), "unexpected Len()")
	assert.Equal(t, 1, ab.NullN(), "unexpected NullN()")
	assert.Equal(t, []int32{0, 3, 6, 6, 12, 19}, ab.ValueOffsets())
	assert.Equal(t, 19, ab.DataLen())

	for i, v := range exp {
		if v == nil {
			v = []byte{}
		}
		assert.Equal(t, v, ab.Value(i))
	}

	ar := ab.NewBinaryArray()
	assert.Zero(t, ab.Len(), "unexpected ArrayBuilder.Len(), NewBinaryArray did not reset state")
	assert.Zero(t, ab.Cap(), "unexpected ArrayBuilder.Cap(), NewBinaryArray did not reset state")
	assert.Zero(t, ab.NullN(), "unexpected ArrayBuilder.NullN(), NewBinaryArray did not reset state")
	assert.Zero(t, ab.DataLen(), "unexpected ArrayBuilder.DataLen(), NewBinaryArray did not reset state")

	ab.Release()

	for i, v := range exp {
		if v == nil {
			assert.True(t, ar.IsNull(i))
			assert.Zero(t, ar.ValueLen(i))
			continue
		}
		assert.Equal(t, v, ar.Value(i))
	}
	assert.Equal(t, "foobarsydneycameron", string(ar.ValueBytes()))
	ar.Release()
}

func TestBinaryBuilder_Buffers(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := array.NewBinaryBuilder(mem, arrow.BinaryTypes.String)
	defer ab.Release()

	ab.AppendStringValues([]string{"a", "", "bc", "def"}, []bool{true, true, false, true})
	bufs := ab.Finish()
	defer func() {
		for _, b := range bufs {
			b.Release()
		}
	}()

	require.Len(t, bufs, 3)
	assert.Equal(t, []byte{0x0b, 0x00}, bufs[0].Bytes())
	assert.Equal(t, []int32{0, 1, 1, 1, 4}, arrow.CastFromBytesTo[int32](bufs[1].Bytes()))
	assert.Equal(t, "adef", string(bufs[2].Bytes()))
}

func TestBinaryBuilder_OffsetsMonotonic(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer ab.Release()

	const n = 10000
	total := 0
	for i := 0; i < n; i++ {
		if i%5 == 0 {
			ab.AppendNull()
			continue
		}
		v := bytes.Repeat([]byte{byte(i)}, i%13)
		total += len(v)
		ab.Append(v)
	}
	assert.Equal(t, total, ab.DataLen())
	assert.GreaterOrEqual(t, ab.DataCap(), total)

	arr := ab.NewBinaryArray()
	defer arr.Release()

	offsets := arr.ValueOffsets()
	require.Len(t, offsets, n+1)
	assert.Zero(t, offsets[0])
	assert.EqualValues(t, total, offsets[n])
	for i := 0; i < n; i++ {
		assert.LessOrEqual(t, offsets[i], offsets[i+1])
		if i%5 == 0 {
			assert.Equal(t, offsets[i], offsets[i+1], "null slot %d adds no bytes", i)
			continue
		}
		assert.Equal(t, bytes.Repeat([]byte{byte(i)}, i%13), arr.Value(i))
	}
}

func TestBinaryBuilder_Empty(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer ab.Release()

	assert.Equal(t, []int32{0}, ab.ValueOffsets())

	arr := ab.NewBinaryArray()
	assert.Zero(t, arr.Len())
	assert.Zero(t, arr.NullN())
	arr.Release()

	ab.AppendValues([][]byte{[]byte("x"), nil}, []bool{true, false})
	arr = ab.NewBinaryArray()
	assert.Equal(t, 2, arr.Len())
	assert.Equal(t, []byte("x"), arr.Value(0))
	assert.True(t, arr.IsNull(1))
	arr.Release()
}

func TestBinaryBuilder_AppendValueFromString(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer ab.Release()

	require.NoError(t, ab.AppendValueFromString("aGVsbG8="))
	require.NoError(t, ab.AppendValueFromString(array.NullValueStr))
	assert.Error(t, ab.AppendValueFromString("not base64!"))

	arr := ab.NewArray()
	defer arr.Release()

	bin, err := array.As[*array.Binary](arr)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), bin.Value(0))
	assert.Equal(t, "aGVsbG8=", bin.ValueStr(0))
	assert.Equal(t, array.NullValueStr, bin.ValueStr(1))
}

func TestStringBuilder_NewArray(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab, err := array.NewBuilder(mem, arrow.BinaryTypes.String)
	require.NoError(t, err)
	defer ab.Release()

	for _, s := range []string{"hello", "(null)", "", "世界"} {
		require.NoError(t, ab.AppendValueFromString(s))
	}

	arr := ab.NewArray()
	defer arr.Release()

	str, ok := arr.(*array.String)
	require.True(t, ok, "string builders produce String arrays")
	assert.Equal(t, "hello", str.Value(0))
	assert.True(t, str.IsNull(1))
	assert.Equal(t, "", str.Value(2))
	assert.Equal(t, "世界", str.Value(3))
	assert.Equal(t, `["hello" (null) "" "世界"]`, str.String())

	out, err := str.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["hello", null, "", "世界"]`, string(out))
}

func TestBinaryBuilder_UnmarshalJSON(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer ab.Release()

	require.NoError(t, ab.UnmarshalJSON([]byte(`["aGVsbG8=", null, ""]`)))
	assert.Error(t, ab.UnmarshalJSON([]byte(`[12]`)))

	arr := ab.NewBinaryArray()
	defer arr.Release()

	assert.Equal(t, 3, arr.Len())
	assert.Equal(t, []byte("hello"), arr.Value(0))
	assert.True(t, arr.IsNull(1))
	assert.Empty(t, arr.Value(2))

	out, err := arr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["aGVsbG8=", null, ""]`, string(out))
}
