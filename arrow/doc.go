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

/*
Package arrow provides the data types, schema and error values of an
implementation of the Apache Arrow columnar in-memory format.

Arrays are built one column at a time with the builders of the array package.
A builder appends values into growable buffers allocated from a
memory.Allocator, tracks validity in a null bitmap and, once finished, hands
its buffers over to an immutable array. Arrays of equal length are grouped into
a record batch; record batches sharing a schema are concatenated into a table
whose columns are chunked arrays.

Requirements

Go 1.22 or later.
*/
package arrow
