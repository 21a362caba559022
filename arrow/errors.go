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

package arrow

import "errors"

var (
	// ErrUnknownType is returned when a builder or array is requested for a
	// type outside of the supported catalog. It is raised when the builder is
	// constructed, never while appending.
	ErrUnknownType = errors.New("unknown type")
	// ErrLengthMismatch is returned when columns that must be row aligned have
	// different lengths.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrEmptyInput is returned when a container is requested from nothing,
	// such as a table from zero record batches.
	ErrEmptyInput = errors.New("empty input")
	// ErrIndex is returned when a column is looked up by an index beyond the
	// column count or by a name absent from the schema.
	ErrIndex = errors.New("index out of range")
	// ErrInvalid is returned for any other structural inconsistency found while
	// assembling columns, records or tables.
	ErrInvalid = errors.New("invalid")
	// ErrType is returned when a checked conversion to a concrete array or
	// value type does not match the stored data.
	ErrType = errors.New("type error")
)
