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
	"math"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/bitutil"
	"github.com/arrowbuf/arrowbuf/arrow/internal/debug"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"golang.org/x/xerrors"
)

// Concatenate creates a new array.Interface which is the concatenation of the
// passed in arrays. Returns nil if an error is encountered.
//
// The passed in arrays still need to be released manually, and will not be
// released by this function.
func Concatenate(arrs []Interface, mem memory.Allocator) (Interface, error) {
	if len(arrs) == 0 {
		return nil, xerrors.Errorf("arrow/array: must pass at least one array to concatenate: %w", arrow.ErrEmptyInput)
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	// gather Data of inputs
	data := make([]*Data, len(arrs))
	for i, ar := range arrs {
		if !arrow.TypeEqual(ar.DataType(), arrs[0].DataType()) {
			return nil, xerrors.Errorf("arrow/array: arrays to be concatenated must be identically typed, but %s and %s were encountered: %w",
				arrs[0].DataType(), ar.DataType(), arrow.ErrInvalid)
		}
		data[i] = ar.Data()
	}

	out, err := concat(data, mem)
	if err != nil {
		return nil, err
	}

	defer out.Release()
	return MakeFromData(out)
}

// Flatten concatenates the chunks of a into a single array.
func (a *Chunked) Flatten(mem memory.Allocator) (Interface, error) {
	if len(a.chunks) == 0 {
		bldr, err := NewBuilder(mem, a.dtype)
		if err != nil {
			return nil, err
		}
		defer bldr.Release()
		return bldr.NewArray(), nil
	}
	return Concatenate(a.chunks, mem)
}

// rng is a range of slots or bytes inside one input.
type rng struct {
	offset, len int
}

// concat is the implementation for actually performing the concatenation of the *array.Data
// objects that we can call internally for nested types.
func concat(data []*Data, mem memory.Allocator) (*Data, error) {
	var (
		dtype  = data[0].dtype
		length = 0
		nullN  = 0
	)
	for _, d := range data {
		length += d.length
		nullN += d.nullN
	}
	if length > math.MaxInt32 {
		return nil, xerrors.Errorf("arrow/array: length overflow when concatenating arrays: %w", arrow.ErrInvalid)
	}
	debug.Logf("arrow/array: concatenate %d %v arrays into %d slots", len(data), dtype, length)

	bufs := make([]*memory.Buffer, 0, arrow.Layout(dtype).NumBuffers())
	defer func() { releaseBuffers(bufs) }()

	if nullN == 0 {
		bufs = append(bufs, memory.NewBuffer(mem, 0, 1))
	} else {
		bufs = append(bufs, concatBitmaps(data, 0, length, mem))
	}

	var children []*Data
	switch dt := dtype.(type) {
	case *arrow.BooleanType:
		bufs = append(bufs, concatBitmaps(data, 1, length, mem))
	case arrow.FixedWidthDataType:
		bufs = append(bufs, concatFixed(data, dt.BitWidth()/8, length, mem))
	case arrow.BinaryDataType:
		offsets, ranges, err := concatOffsets(data, length, mem)
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, offsets, concatValues(data, ranges, mem))
	case *arrow.StructType:
		children = make([]*Data, dt.NumFields())
		defer func() {
			for _, c := range children {
				if c != nil {
					c.Release()
				}
			}
		}()
		for i := range children {
			gathered := make([]*Data, len(data))
			for j, d := range data {
				gathered[j] = d.childData[i]
			}
			child, err := concat(gathered, mem)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
	default:
		return nil, xerrors.Errorf("arrow/array: concatenate not implemented for type %s: %w", dt, arrow.ErrUnknownType)
	}

	return NewData(dtype, length, bufs, children, nullN, 0), nil
}

// concatBitmaps copies the bits of buffer idx of every input, starting at
// each input's offset, into one bitmap. An empty input bitmap is all set.
func concatBitmaps(data []*Data, idx, length int, mem memory.Allocator) *memory.Buffer {
	out := memory.NewBuffer(mem, bitutil.BitmapBytes(length), 1)
	out.SetLen(bitutil.BytesForBits(length))
	dst := out.Bytes()

	pos := 0
	for _, d := range data {
		src := d.buffers[idx]
		allSet := src == nil || src.Len() == 0
		for i := 0; i < d.length; i++ {
			if allSet || bitutil.BitIsSet(src.Bytes(), d.offset+i) {
				bitutil.SetBitInBytes(dst, pos)
			}
			pos++
		}
	}
	return out
}

// concatFixed copies the live values of every input, byteWidth bytes per
// slot, into one buffer.
func concatFixed(data []*Data, byteWidth, length int, mem memory.Allocator) *memory.Buffer {
	out := memory.NewBuffer(mem, length, byteWidth)
	out.SetLen(length)

	pos := 0
	for _, d := range data {
		if d.length == 0 {
			continue
		}
		src := d.buffers[1].Bytes()
		beg := d.offset * byteWidth
		end := beg + d.length*byteWidth
		out.WriteBytesAt(pos, src[beg:end])
		pos += end - beg
	}
	return out
}

// concatOffsets creates a single offset buffer which represents the concatenation of all of the
// offsets buffers, adjusting the offsets appropriately to their new relative locations.
//
// It also returns the byte ranges to copy from each value buffer.
func concatOffsets(data []*Data, length int, mem memory.Allocator) (*memory.Buffer, []rng, error) {
	out := memory.NewBuffer(mem, length+1, arrow.Int32SizeBytes)
	out.SetLen(length + 1)
	dst := arrow.CastFromBytesTo[int32](out.Bytes())

	var (
		ranges     = make([]rng, len(data))
		nextOffset = 0
		nextElem   = 0
	)
	for i, d := range data {
		if d.length == 0 {
			continue
		}

		src := arrow.CastFromBytesTo[int32](d.buffers[1].Bytes())[d.offset : d.offset+d.length+1]
		ranges[i] = rng{offset: int(src[0]), len: int(src[d.length] - src[0])}

		if nextOffset > math.MaxInt32-ranges[i].len {
			out.Release()
			return nil, nil, xerrors.Errorf("arrow/array: offset overflow while concatenating arrays: %w", arrow.ErrInvalid)
		}

		// adjust each offset by the difference between our last ending point and our starting point
		adj := int32(nextOffset) - src[0]
		for j, o := range src[:d.length] {
			dst[nextElem+j] = adj + o
		}
		nextElem += d.length
		nextOffset += ranges[i].len
	}

	// final offset should point to the end of the data
	dst[length] = int32(nextOffset)
	return out, ranges, nil
}

func concatValues(data []*Data, ranges []rng, mem memory.Allocator) *memory.Buffer {
	n := 0
	for _, r := range ranges {
		n += r.len
	}

	out := memory.NewBuffer(mem, n, 1)
	out.SetLen(n)

	pos := 0
	for i, d := range data {
		r := ranges[i]
		if r.len == 0 {
			continue
		}
		out.WriteBytesAt(pos, d.buffers[2].Bytes()[r.offset:r.offset+r.len])
		pos += r.len
	}
	return out
}
