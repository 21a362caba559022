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
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"golang.org/x/exp/constraints"
)

// Scalar is the set of types that can be read from or written to a Buffer
// at a byte offset.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Buffer is a contiguous, fixed-capacity region of slots, each ElemSize
// bytes wide. Every byte up to Cap()*ElemSize() is allocated and zeroed when
// the buffer is created, independently of Len.
//
// A Buffer never changes capacity. Growing means allocating a larger Buffer,
// copying the live prefix with CopyInto and releasing the old one.
type Buffer struct {
	refCount atomic.Int64
	buf      []byte
	length   int
	elemSize int
	mem      Allocator
}

// NewBuffer allocates a buffer able to hold slots elements of elemSize bytes
// each. Its length is zero.
func NewBuffer(mem Allocator, slots, elemSize int) *Buffer {
	if slots < 0 || elemSize <= 0 {
		panic(fmt.Sprintf("arrow/memory: invalid buffer shape slots=%d elemSize=%d", slots, elemSize))
	}

	b := &Buffer{elemSize: elemSize, mem: mem}
	b.refCount.Store(1)
	if n := slots * elemSize; n > 0 {
		b.buf = mem.Allocate(n)
		Set(b.buf, 0)
	}
	return b
}

// NewBufferBytes wraps data in a Buffer of 1-byte slots whose length and
// capacity are len(data). The bytes are not copied and are not returned to
// any allocator on release.
func NewBufferBytes(data []byte) *Buffer {
	b := &Buffer{buf: data, length: len(data), elemSize: 1}
	b.refCount.Store(1)
	return b
}

// Retain increases the reference count by 1.
func (b *Buffer) Retain() {
	b.refCount.Add(1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is returned to the allocator.
func (b *Buffer) Release() {
	debug.Assert(b.refCount.Load() > 0, "too many releases")

	if b.refCount.Add(-1) == 0 {
		if b.mem != nil && b.buf != nil {
			b.mem.Free(b.buf)
		}
		b.buf, b.length = nil, 0
	}
}

// Len returns the number of slots in use.
func (b *Buffer) Len() int { return b.length }

// Cap returns the number of slots allocated.
func (b *Buffer) Cap() int { return len(b.buf) / b.elemSize }

// ElemSize returns the width of one slot in bytes.
func (b *Buffer) ElemSize() int { return b.elemSize }

// SetLen marks the first n slots as in use.
func (b *Buffer) SetLen(n int) {
	if n < 0 || n > b.Cap() {
		panic(fmt.Sprintf("arrow/memory: length %d exceeds buffer capacity %d", n, b.Cap()))
	}
	b.length = n
}

// Bytes returns the bytes of the slots in use.
func (b *Buffer) Bytes() []byte { return b.buf[:b.length*b.elemSize] }

// Buf returns every allocated byte, including the ones beyond Len.
func (b *Buffer) Buf() []byte { return b.buf }

// CopyInto copies the first slots slots of b into dst, byte for byte.
// Both buffers must have the same element size and room for slots elements.
func (b *Buffer) CopyInto(dst *Buffer, slots int) {
	if dst.elemSize != b.elemSize {
		panic(fmt.Sprintf("arrow/memory: copy between element sizes %d and %d", b.elemSize, dst.elemSize))
	}
	n := slots * b.elemSize
	b.checkBounds(0, n)
	dst.checkBounds(0, n)
	copy(dst.buf[:n], b.buf[:n])
}

// WriteBytesAt copies p into the buffer starting at byte offset off.
func (b *Buffer) WriteBytesAt(off int, p []byte) {
	b.checkBounds(off, len(p))
	copy(b.buf[off:], p)
}

func (b *Buffer) checkBounds(off, n int) {
	if off < 0 || n < 0 || off+n > len(b.buf) {
		panic(fmt.Sprintf("arrow/memory: access of %d bytes at offset %d outside buffer capacity of %d bytes", n, off, len(b.buf)))
	}
}

// ReadAt returns the T stored at byte offset off of b.
func ReadAt[T Scalar](b *Buffer, off int) T {
	var v T
	b.checkBounds(off, int(unsafe.Sizeof(v)))
	return *(*T)(unsafe.Pointer(&b.buf[off]))
}

// WriteAt stores v at byte offset off of b.
func WriteAt[T Scalar](b *Buffer, off int, v T) {
	b.checkBounds(off, int(unsafe.Sizeof(v)))
	*(*T)(unsafe.Pointer(&b.buf[off])) = v
}
