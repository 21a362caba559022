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

// Package bitutil addresses bit-packed buffers: one bit per slot, eight slots
// per byte, slot i held by bit i%8 of byte i/8 (least significant bit first).
package bitutil

import (
	"encoding/binary"
	"math/bits"
)

var (
	BitMask        = [8]byte{1, 2, 4, 8, 16, 32, 64, 128}
	FlippedBitMask = [8]byte{254, 253, 251, 247, 239, 223, 191, 127}
)

// BytesForBits returns the number of bytes needed to hold n bits.
func BytesForBits(n int) int { return (n + 7) >> 3 }

// BitIsSet returns true if the bit at index i in buf is set (1).
func BitIsSet(buf []byte, i int) bool { return (buf[uint(i)/8] & BitMask[byte(i)%8]) != 0 }

// BitIsNotSet returns true if the bit at index i in buf is not set (0).
func BitIsNotSet(buf []byte, i int) bool { return (buf[uint(i)/8] & BitMask[byte(i)%8]) == 0 }

// SetBitInBytes sets the bit at index i in buf to 1.
func SetBitInBytes(buf []byte, i int) { buf[uint(i)/8] |= BitMask[byte(i)%8] }

// ClearBitInBytes sets the bit at index i in buf to 0.
func ClearBitInBytes(buf []byte, i int) { buf[uint(i)/8] &= FlippedBitMask[byte(i)%8] }

// CountSetBits counts the number of 1's in the n bits of buf starting at
// bit offset.
func CountSetBits(buf []byte, offset, n int) int {
	var (
		count = 0
		i     = offset
		end   = offset + n
	)

	// leading bits up to a byte boundary
	for ; i < end && i%8 != 0; i++ {
		if BitIsSet(buf, i) {
			count++
		}
	}

	for ; i+64 <= end; i += 64 {
		count += bits.OnesCount64(binary.LittleEndian.Uint64(buf[i/8:]))
	}

	for ; i+8 <= end; i += 8 {
		count += bits.OnesCount8(buf[i/8])
	}

	// tail bits
	for ; i < end; i++ {
		if BitIsSet(buf, i) {
			count++
		}
	}

	return count
}
