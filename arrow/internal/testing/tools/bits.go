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

package tools

// BitsLSB packs a pattern of '0' and '1' characters into bytes, the first
// character landing in bit 0 of byte 0. Spaces and underscores are skipped
// so patterns can be grouped by byte, as in "1101_0000 01".
func BitsLSB(pattern string) []byte {
	var (
		res []byte
		n   int
	)
	for _, c := range pattern {
		switch c {
		case ' ', '_':
			continue
		case '0', '1':
		default:
			panic("tools: invalid bit pattern character " + string(c))
		}
		if n%8 == 0 {
			res = append(res, 0)
		}
		if c == '1' {
			res[n/8] |= 1 << (n % 8)
		}
		n++
	}
	return res
}
