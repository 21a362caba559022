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

// Package util reports the memory footprint of arrays, records and tables.
package util

import (
	"github.com/arrowbuf/arrowbuf/arrow/array"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
)

type seenBuffers map[*memory.Buffer]struct{}

func totalArrayDataSize(data *array.Data, seen seenBuffers) int64 {
	if data == nil {
		return 0
	}

	var sum int64
	for _, buf := range data.Buffers() {
		if buf == nil {
			continue
		}
		if _, ok := seen[buf]; !ok {
			sum += int64(len(buf.Bytes()))
			seen[buf] = struct{}{}
		}
	}
	for _, child := range data.Children() {
		sum += totalArrayDataSize(child, seen)
	}
	return sum
}

func totalRecordSize(rec *array.Record, seen seenBuffers) int64 {
	var sum int64
	for _, c := range rec.Columns() {
		sum += totalArrayDataSize(c.Data(), seen)
	}
	return sum
}

// TotalArraySize returns the number of bytes held by the buffers of arr and
// its children. A slice reports the full size of the buffers it shares.
func TotalArraySize(arr array.Interface) int64 {
	return totalArrayDataSize(arr.Data(), make(seenBuffers))
}

// TotalRecordSize returns the number of bytes held by the columns of rec.
// Buffers shared between columns are counted once.
func TotalRecordSize(rec *array.Record) int64 {
	return totalRecordSize(rec, make(seenBuffers))
}

// TotalTableSize returns the number of bytes held by every chunk of every
// column of tbl. Buffers shared between chunks or columns are counted once.
func TotalTableSize(tbl *array.Table) int64 {
	var (
		sum  int64
		seen = make(seenBuffers)
	)
	for i := 0; i < int(tbl.NumCols()); i++ {
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			sum += totalArrayDataSize(chunk.Data(), seen)
		}
	}
	return sum
}
