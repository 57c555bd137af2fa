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

// Package mmap reserves anonymous memory outside the Go heap.
package mmap

import "errors"

// ErrUnsupported is returned on platforms without anonymous mappings.
var ErrUnsupported = errors.New("mmap: anonymous mappings not supported on this platform")

// ErrInvalidSize is returned for non-positive mapping sizes.
var ErrInvalidSize = errors.New("mmap: invalid size")

// MapAnon returns size bytes of private read-write memory.
// The memory is zeroed by the OS and is not tracked by the garbage collector.
func MapAnon(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return osMapAnon(size)
}

// Unmap releases a mapping returned by MapAnon.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return osUnmap(b)
}
