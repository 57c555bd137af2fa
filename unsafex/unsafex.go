/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package unsafex

import "unsafe"

// Offset returns the byte distance between the first element of base and the
// first element of b, and whether b starts inside base.
//
// Only the data pointer of b is inspected, so b may have zero length.
func Offset(base, b []byte) (int, bool) {
	if cap(base) == 0 || cap(b) == 0 {
		return 0, false
	}
	start := uintptr(unsafe.Pointer(unsafe.SliceData(base)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < start || p-start >= uintptr(len(base)) {
		return 0, false
	}
	return int(p - start), true
}

// Uint32s returns b viewed as a []uint32 of len(b)/4 elements without copy.
// It returns nil if b is too short or not 4-byte aligned.
func Uint32s(b []byte) []uint32 {
	if len(b) < 4 {
		return nil
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	if uintptr(p)&3 != 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(p), len(b)/4)
}
