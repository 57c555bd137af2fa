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

package malloc

var defaultAllocator = mustNewBuddyAllocator(DefaultOptions())

func mustNewBuddyAllocator(opts *Options) *BuddyAllocator {
	a, err := NewBuddyAllocator(opts)
	if err != nil {
		panic(err)
	}
	return a
}

// Malloc allocates from the process-wide allocator, see (*BuddyAllocator).Alloc.
// Its arena of DefaultTotalSize bytes is reserved on first use.
func Malloc(size int) ([]byte, error) {
	return defaultAllocator.Alloc(size)
}

// Free releases a block of the process-wide allocator.
func Free(block []byte) error {
	return defaultAllocator.Free(block)
}

// Realloc resizes a block of the process-wide allocator.
func Realloc(block []byte, size int) ([]byte, error) {
	return defaultAllocator.Realloc(block, size)
}

// Calloc allocates a zeroed block from the process-wide allocator.
func Calloc(n, size int) ([]byte, error) {
	return defaultAllocator.Calloc(n, size)
}

// Reset frees every block of the process-wide allocator.
func Reset() error {
	return defaultAllocator.Reset()
}

// Default returns the process-wide allocator.
func Default() *BuddyAllocator {
	return defaultAllocator
}
