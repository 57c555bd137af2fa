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

// Package arena supplies the raw memory regions a buddy allocator manages.
//
// A Provider is consulted lazily and at most a couple of times during the
// lifetime of an allocator: once for the data arena and once for the block
// tree. Regions are never given back; they stay valid for the rest of the
// process.
package arena

import (
	"errors"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/cloudwego/buddymem/internal/mmap"
)

var (
	// ErrInvalidLength is returned for non-positive reservation lengths.
	ErrInvalidLength = errors.New("arena: invalid reservation length")

	// ErrReservationLimit is returned when a reservation would exceed the budget of a Limited provider.
	ErrReservationLimit = errors.New("arena: reservation limit exceeded")

	// ErrUnsupported is returned by Mmap on platforms without anonymous mappings.
	ErrUnsupported = mmap.ErrUnsupported
)

// Provider reserves contiguous memory regions.
type Provider interface {
	// Reserve returns exactly n bytes of addressable memory, or an error
	// if the environment cannot satisfy the request.
	Reserve(n int) ([]byte, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(n int) ([]byte, error)

// Reserve calls f(n).
func (f ProviderFunc) Reserve(n int) ([]byte, error) {
	return f(n)
}

type heapProvider struct{}

// Heap returns a Provider backed by the Go heap.
// Reserved memory is NOT zeroed.
func Heap() Provider {
	return heapProvider{}
}

func (heapProvider) Reserve(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	return dirtmake.Bytes(n, n), nil
}

type mmapProvider struct{}

// Mmap returns a Provider backed by anonymous memory mappings,
// which live outside the Go heap and are never scanned by the GC.
func Mmap() Provider {
	return mmapProvider{}
}

func (mmapProvider) Reserve(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	return mmap.MapAnon(n)
}
