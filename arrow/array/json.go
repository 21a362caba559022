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
	"errors"
	"fmt"
	"io"

	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/memory"
	"github.com/arrowbuf/arrowbuf/internal/json"
)

// FromJSON creates an array of dtype from the JSON array read from r.
// Numbers keep their full precision and nulls become null slots.
//
// On failure the returned offset is the position in the input where
// decoding stopped.
func FromJSON(mem memory.Allocator, dtype arrow.DataType, r io.Reader) (arr Interface, offset int64, err error) {
	bldr, err := NewBuilder(mem, dtype)
	if err != nil {
		return nil, 0, err
	}
	defer bldr.Release()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	defer func() {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("failed parsing json: %w", io.ErrUnexpectedEOF)
		}
	}()

	t, err := dec.Token()
	if err != nil {
		return nil, dec.InputOffset(), err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return nil, dec.InputOffset(), fmt.Errorf("json doc must be an array, found %s", delim)
	}

	if err = bldr.Unmarshal(dec); err != nil {
		return nil, dec.InputOffset(), err
	}

	// consume the last ']'
	if _, err = dec.Token(); err != nil {
		return nil, dec.InputOffset(), err
	}

	return bldr.NewArray(), dec.InputOffset(), nil
}

// RecordFromJSON creates a record matching schema from a JSON array of row
// objects read from r. Missing fields are null.
//
// On failure the returned offset is the position in the input where
// decoding stopped.
func RecordFromJSON(mem memory.Allocator, schema *arrow.Schema, r io.Reader) (rec *Record, offset int64, err error) {
	bldr, err := NewRecordBuilder(mem, schema)
	if err != nil {
		return nil, 0, err
	}
	defer bldr.Release()

	dec := json.NewDecoder(r)
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil {
		return nil, dec.InputOffset(), err
	}

	if delim, ok := t.(json.Delim); !ok || delim != '[' {
		return nil, dec.InputOffset(), fmt.Errorf("json doc must be an array, found %s", delim)
	}

	for dec.More() {
		if err := bldr.UnmarshalOne(dec); err != nil {
			return nil, dec.InputOffset(), err
		}
	}

	rec, err = bldr.NewRecord()
	return rec, dec.InputOffset(), err
}
