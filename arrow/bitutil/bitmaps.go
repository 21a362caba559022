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

package bitutil

import (
	"fmt"

	"github.com/arrowbuf/arrowbuf/arrow/memory"
)

// BitmapBytes returns the size in bytes of a null bitmap holding n slots:
// the bytes needed for n bits plus one byte of slack.
func BitmapBytes(n int) int { return BytesForBits(n) + 1 }

func byteFor(buf *memory.Buffer, i int) int {
	b := i >> 3
	if i < 0 || b >= len(buf.Buf()) {
		panic(fmt.Sprintf("arrow/bitutil: bit %d outside bitmap of %d bytes", i, len(buf.Buf())))
	}
	return b
}

// IsSet reports whether bit index of buf is set. index is the absolute bit
// position, any bitmap offset already applied.
func IsSet(index int, buf *memory.Buffer) bool {
	return buf.Buf()[byteFor(buf, index)]&BitMask[index&7] != 0
}

// SetBit sets bit index of buf.
func SetBit(index int, buf *memory.Buffer) {
	buf.Buf()[byteFor(buf, index)] |= BitMask[index&7]
}

// ClearBit clears bit index of buf.
func ClearBit(index int, buf *memory.Buffer) {
	buf.Buf()[byteFor(buf, index)] &= FlippedBitMask[index&7]
}

// SetBitTo sets bit index of buf to val.
func SetBitTo(index int, buf *memory.Buffer, val bool) {
	if val {
		SetBit(index, buf)
	} else {
		ClearBit(index, buf)
	}
}

// IsValid reports whether slot index of a null bitmap holds a value.
// A nil or empty bitmap means no slot is null.
func IsValid(index int, bitmap *memory.Buffer) bool {
	if bitmap == nil || bitmap.Len() == 0 {
		return true
	}
	return IsSet(index, bitmap)
}
