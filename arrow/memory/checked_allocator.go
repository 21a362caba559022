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

package memory

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"
)

// CheckedAllocator wraps an Allocator and records every live allocation
// together with its call site, so tests can assert that all buffers were
// released.
type CheckedAllocator struct {
	mem Allocator
	sz  atomic.Int64

	allocs sync.Map
}

func NewCheckedAllocator(mem Allocator) *CheckedAllocator {
	return &CheckedAllocator{mem: mem}
}

// CurrentAlloc returns the number of bytes currently allocated.
func (a *CheckedAllocator) CurrentAlloc() int { return int(a.sz.Load()) }

func (a *CheckedAllocator) Allocate(size int) []byte {
	a.sz.Add(int64(size))
	out := a.mem.Allocate(size)
	if size == 0 {
		return out
	}

	a.record(out, size, allocFrames+1)
	return out
}

func (a *CheckedAllocator) Reallocate(size int, b []byte) []byte {
	a.sz.Add(int64(size - len(b)))

	if len(b) > 0 {
		a.allocs.Delete(ptrOf(b))
	}
	out := a.mem.Reallocate(size, b)
	if size == 0 {
		return out
	}

	a.record(out, size, reallocFrames+1)
	return out
}

// record tracks b as live. When the stack is shallower than skip frames the
// allocation is still tracked, without a call site.
func (a *CheckedAllocator) record(b []byte, size, skip int) {
	info := &dalloc{sz: size}
	if pc, _, l, ok := runtime.Caller(skip); ok {
		info.pc, info.line = pc, l
	}
	a.allocs.Store(ptrOf(b), info)
}

func (a *CheckedAllocator) Free(b []byte) {
	a.sz.Add(int64(len(b) * -1))
	defer a.mem.Free(b)

	if len(b) == 0 {
		return
	}
	a.allocs.Delete(ptrOf(b))
}

func ptrOf(b []byte) uintptr { return uintptr(unsafe.Pointer(unsafe.SliceData(b))) }

const (
	defAllocFrames   = 4
	defReallocFrames = 3
)

// Number of stack frames skipped when recording the call site of an
// allocation, configurable through ARROW_CHECKED_ALLOC_FRAMES and
// ARROW_CHECKED_REALLOC_FRAMES.
var allocFrames, reallocFrames int = defAllocFrames, defReallocFrames

func init() {
	allocFrames = envInt("ARROW_CHECKED_ALLOC_FRAMES", defAllocFrames)
	reallocFrames = envInt("ARROW_CHECKED_REALLOC_FRAMES", defReallocFrames)
}

func envInt(key string, def int) int {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.Atoi(val); err == nil {
			return f
		}
	}
	return def
}

type dalloc struct {
	pc   uintptr
	line int
	sz   int
}

type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize reports every allocation still alive as a leak and fails t if
// the number of allocated bytes differs from sz.
func (a *CheckedAllocator) AssertSize(t TestingT, sz int) {
	a.allocs.Range(func(_, value interface{}) bool {
		info := value.(*dalloc)
		name := "unknown"
		if f := runtime.FuncForPC(info.pc); f != nil {
			name = f.Name()
		}
		t.Errorf("LEAK of %d bytes FROM %s line %d\n", info.sz, name, info.line)
		return true
	})

	if got := a.CurrentAlloc(); got != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, got)
	}
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
)
