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

import "math/bits"

// The block tree is a complete binary tree stored in a flat slice.
// Node 0 is the whole arena, level L holds 2^L nodes of TotalSize>>L bytes.
//
// Each node holds the size of the largest free block below it:
//   - its own block size: one free block, never split or fully merged back;
//   - 0: this exact block is allocated, or it is split and nothing below
//     is free (then its left child holds 0 too);
//   - anything else: split, max(left, right).
//
// Nodes below a free or allocated node are stale and are never read as
// authoritative. The children of an allocated node keep their full size.

func leftChild(i int) int {
	return i*2 + 1
}

func rightChild(i int) int {
	return i*2 + 2
}

func parent(i int) int {
	return (i+1)/2 - 1
}

func isPow2(x int) bool {
	return x&(x-1) == 0
}

// roundUpPow2 returns the smallest power of two >= x, for x > 0.
func roundUpPow2(x int) int {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(x-1))
}

// resetTree marks every node free, root is total bytes.
func resetTree(tree []uint32, total int) {
	size := uint64(total) * 2
	for i := range tree {
		if isPow2(i + 1) {
			size /= 2
		}
		tree[i] = uint32(size)
	}
}

// nodeOffset returns the arena offset of node i holding blocks of blockSize bytes.
func nodeOffset(i, blockSize, total int) int {
	return blockSize*(i+1) - total
}
