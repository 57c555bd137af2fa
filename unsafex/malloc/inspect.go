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

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Stats is a point-in-time view of a BuddyAllocator.
type Stats struct {
	TotalSize int // arena size
	MinSize   int // minimum block size
	Allocated int // bytes held by live blocks, block sizes not requested sizes
	Free      int // bytes not held by live blocks
	Largest   int // largest block Alloc can serve
	Blocks    int // number of live blocks
}

// Stats returns the current usage of the arena.
func (a *BuddyAllocator) Stats() Stats {
	st := Stats{TotalSize: a.totalSize, MinSize: a.minSize}
	if err := a.Init(); err != nil {
		return st
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st.Largest = int(a.tree[0])
	a.scan(0, a.totalSize, func(_, blockSize int, free bool) {
		if free {
			st.Free += blockSize
		} else {
			st.Allocated += blockSize
			st.Blocks++
		}
	})
	return st
}

// Available returns the number of free bytes, whether contiguous or not.
func (a *BuddyAllocator) Available() int {
	return a.Stats().Free
}

// FreeMap returns the free minimum-size blocks of the arena:
// bit i is set if the MinSize bytes at offset i*MinSize are free.
func (a *BuddyAllocator) FreeMap() *roaring.Bitmap {
	bm := roaring.New()
	if err := a.Init(); err != nil {
		return bm
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.scan(0, a.totalSize, func(off, blockSize int, free bool) {
		if free {
			bm.AddRange(uint64(off/a.minSize), uint64((off+blockSize)/a.minSize))
		}
	})
	return bm
}

// scan calls fn for every free or allocated block, leftmost first.
// It stops at free and allocated nodes and never reads below their children.
func (a *BuddyAllocator) scan(idx, blockSize int, fn func(off, blockSize int, free bool)) {
	switch v := a.tree[idx]; {
	case v == uint32(blockSize):
		fn(nodeOffset(idx, blockSize, a.totalSize), blockSize, true)
	case v == 0 && !a.splitFull(idx, blockSize):
		fn(nodeOffset(idx, blockSize, a.totalSize), blockSize, false)
	case blockSize > a.minSize:
		a.scan(leftChild(idx), blockSize/2, fn)
		a.scan(rightChild(idx), blockSize/2, fn)
	}
}

// splitFull reports whether node idx, holding 0, is split with both halves in
// use rather than allocated itself. Children of an allocated node keep their
// full size, so a zero left child only occurs under a split node.
func (a *BuddyAllocator) splitFull(idx, blockSize int) bool {
	return blockSize > a.minSize && a.tree[leftChild(idx)] == 0
}
