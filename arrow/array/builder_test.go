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
	"testing"

	"github.com/arrowbuf/arrowbuf/arrow/internal/testing/tools"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/stretchr/testify/assert"
)

func TestNextCapacity(t *testing.T) {
	tests := []struct {
		name        string
		cur, target int
		exp         int
	}{
		{"empty builder", 0, 1, 2},
		{"no target", 0, 0, minBuilderCapacity},
		{"doubling covers target", 16, 17, 32},
		{"doubling covers target exactly minus one", 16, 31, 32},
		{"target beyond doubling", 16, 40, 80},
		{"small capacity clamps to minimum", 4, 5, minBuilderCapacity},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, nextCapacity(test.cur, test.target))
		})
	}
}

func TestBuilder_Resize(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tests := []struct {
		name string
		cap  int
		size int
	}{
		{"07 bits", 7, 2},
		{"19 bits", 19, 4},
		{"64 bits", 64, 9},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ab := newBuilder(mem)
			ab.refCount.Store(1)
			ab.resize(test.cap)
			assert.Equal(t, test.cap, ab.Cap(), "invalid capacity")
			assert.Equal(t, test.size, ab.nulls.Cap(), "invalid bitmap size")
			assert.Zero(t, ab.nulls.Len())
			ab.release()
		})
	}
}

func TestBuilder_AppendValid(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := newBuilder(mem)
	ab.refCount.Store(1)
	defer ab.release()

	ab.resize(32)
	for _, v := range tools.Bools(0, 0, 0, 0, 0) {
		ab.appendValid(v)
	}
	assert.Equal(t, 5, ab.Len())
	assert.Equal(t, 5, ab.NullN())
	assert.Equal(t, []byte{0}, ab.nulls.Bytes())

	for i := 0; i < 12; i++ {
		ab.appendValid(true)
	}
	assert.Equal(t, 17, ab.Len())
	assert.Equal(t, tools.BitsLSB("0000_0111 1111_1111 1"), ab.nulls.Bytes())
	assert.True(t, ab.IsNull(4))
	assert.False(t, ab.IsNull(5))
	assert.Panics(t, func() { ab.IsNull(17) })
}

func TestBuilder_GrowKeepsBits(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := newBuilder(mem)
	ab.refCount.Store(1)
	defer ab.release()

	valid := tools.Bools(1, 0, 1, 1, 0, 1, 0, 0, 1, 1)
	for _, v := range valid {
		ab.reserve(1, ab.resize)
		ab.appendValid(v)
	}
	ab.resize(1000)
	assert.Equal(t, 1000, ab.Cap())
	for i, v := range valid {
		assert.Equal(t, !v, ab.IsNull(i), "slot %d", i)
	}
}

func TestBuilder_FinishNulls(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ab := newBuilder(mem)
	ab.refCount.Store(1)
	defer ab.release()

	ab.resize(minBuilderCapacity)
	for i := 0; i < 3; i++ {
		ab.appendValid(true)
	}
	nulls := ab.finishNulls()
	assert.Zero(t, nulls.Len(), "no nulls means an empty bitmap")
	nulls.Release()

	ab.appendValid(false)
	nulls = ab.finishNulls()
	assert.Equal(t, []byte{0x07, 0x00}, nulls.Bytes())
	nulls.Release()
}
