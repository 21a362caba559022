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

package memory_test

import (
	"testing"

	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewBuffer(mem, 10, 4)
	defer buf.Release()

	assert.Equal(t, 10, buf.Cap())
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 4, buf.ElemSize())
	assert.Len(t, buf.Buf(), 40)
	assert.Empty(t, buf.Bytes())
	assert.Equal(t, make([]byte, 40), buf.Buf(), "capacity bytes must be zeroed")
	assert.Equal(t, 40, mem.CurrentAlloc())
}

func TestBufferZeroSlots(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewBuffer(mem, 0, 8)
	assert.Zero(t, buf.Cap())
	assert.Empty(t, buf.Bytes())
	buf.Release()
}

func TestBufferRetainRelease(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewBuffer(mem, 8, 1)
	buf.Retain() // refCount == 2

	buf.Release() // refCount == 1
	assert.NotNil(t, buf.Buf())

	buf.Release() // refCount == 0
	assert.Nil(t, buf.Buf())
	assert.Zero(t, buf.Len())
}

func TestBufferReadWriteAt(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewBuffer(mem, 4, 8)
	defer buf.Release()

	memory.WriteAt(buf, 0, int64(-42))
	memory.WriteAt(buf, 8, float64(3.5))
	memory.WriteAt(buf, 16, uint32(7))
	buf.SetLen(3)

	assert.Equal(t, int64(-42), memory.ReadAt[int64](buf, 0))
	assert.Equal(t, 3.5, memory.ReadAt[float64](buf, 8))
	assert.Equal(t, uint32(7), memory.ReadAt[uint32](buf, 16))
	assert.Len(t, buf.Bytes(), 24)

	// the last slot is addressable although it is beyond Len
	memory.WriteAt(buf, 24, int64(1))
	assert.Equal(t, int64(1), memory.ReadAt[int64](buf, 24))
}

func TestBufferBoundsFailFast(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewBuffer(mem, 2, 4)
	defer buf.Release()

	assert.Panics(t, func() { memory.WriteAt(buf, 8, int32(1)) })
	assert.Panics(t, func() { memory.WriteAt(buf, 6, int32(1)) })
	assert.Panics(t, func() { memory.ReadAt[int64](buf, 4) })
	assert.Panics(t, func() { memory.ReadAt[int8](buf, -1) })
	assert.Panics(t, func() { buf.WriteBytesAt(5, []byte{1, 2, 3, 4}) })
	assert.Panics(t, func() { buf.SetLen(3) })
	assert.NotPanics(t, func() { memory.WriteAt(buf, 4, int32(1)) })
}

func TestBufferCopyInto(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	src := memory.NewBuffer(mem, 4, 2)
	defer src.Release()
	for i := 0; i < 4; i++ {
		memory.WriteAt(src, 2*i, int16(i+1))
	}

	dst := memory.NewBuffer(mem, 8, 2)
	defer dst.Release()
	src.CopyInto(dst, 3)

	for i, want := range []int16{1, 2, 3, 0, 0, 0, 0, 0} {
		assert.Equal(t, want, memory.ReadAt[int16](dst, 2*i), "slot %d", i)
	}

	small := memory.NewBuffer(mem, 2, 2)
	defer small.Release()
	assert.Panics(t, func() { src.CopyInto(small, 3) })

	other := memory.NewBuffer(mem, 8, 1)
	defer other.Release()
	assert.Panics(t, func() { src.CopyInto(other, 1) })
}

func TestNewBufferBytes(t *testing.T) {
	data := []byte("some-bytes")
	buf := memory.NewBufferBytes(data)

	require.Equal(t, len(data), buf.Len())
	assert.Equal(t, data, buf.Bytes())
	assert.Equal(t, 1, buf.ElemSize())
	buf.Release()
}
