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

import "errors"

var (
	// ErrOutOfMemory is returned when no single free block is large enough.
	// The arena may still hold more free bytes in total than requested.
	ErrOutOfMemory = errors.New("malloc: no free block large enough")

	// ErrOverflow is returned by Calloc when n*size cannot be represented.
	ErrOverflow = errors.New("malloc: allocation size overflow")

	// ErrInvalidAddress is returned for an address that is not the start of a live allocation.
	ErrInvalidAddress = errors.New("malloc: address is not a live allocation")

	// ErrInvalidSize is returned for negative sizes.
	ErrInvalidSize = errors.New("malloc: negative size")

	// ErrArenaUnavailable is returned when the arena could not be reserved.
	// It is sticky: every operation of the allocator fails with it afterwards.
	ErrArenaUnavailable = errors.New("malloc: arena unavailable")
)
