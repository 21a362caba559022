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
Package math provides mathematical functions for processing Arrow arrays.
*/
package math

import (
	"github.com/arrowbuf/arrowbuf/arrow"
	"github.com/arrowbuf/arrowbuf/arrow/array"
)

// Number is the set of element types Sum accepts: the element types of
// fixed-width columns.
type Number = arrow.FixedWidth

// Sum returns the sum of the valid elements of a. Integer sums wrap on
// overflow.
func Sum[T Number](a *array.Fixed[T]) T {
	var sum T
	vs := a.Values()
	if a.NullN() == 0 {
		for _, v := range vs {
			sum += v
		}
		return sum
	}
	for i, v := range vs {
		if a.IsValid(i) {
			sum += v
		}
	}
	return sum
}

// SumChunked returns the sum of the valid elements of every chunk of c.
//
// SumChunked panics if c does not hold *array.Fixed[T] chunks.
func SumChunked[T Number](c *array.Chunked) T {
	var sum T
	for _, chunk := range c.Chunks() {
		sum += Sum(chunk.(*array.Fixed[T]))
	}
	return sum
}

// Mean returns the mean of the valid elements of a, and false when a has
// none.
func Mean[T Number](a *array.Fixed[T]) (float64, bool) {
	n := a.Len() - a.NullN()
	if n == 0 {
		return 0, false
	}
	return float64(Sum(a)) / float64(n), true
}
