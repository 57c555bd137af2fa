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
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cloudwego/buddymem/arena"
	"github.com/cloudwego/buddymem/unsafex"
)

// BuddyAllocator manages a single fixed-size arena with the buddy algorithm.
//
// The arena is split on demand into power-of-two blocks and free buddies are
// merged back on Free. Placement is deterministic: a request is served by the
// leftmost block of its size that is free.
//
// Blocks are returned as slices of the arena: len is the requested size and
// cap is the block size. A slice with zero cap is the null block.
//
// All methods are safe for concurrent use.
type BuddyAllocator struct {
	mu sync.Mutex

	once    sync.Once
	initErr error

	// arena is the memory handed out to callers.
	arena []byte

	// tree holds the 2*nblocks-1 nodes of the block tree, see tree.go.
	tree []uint32

	totalSize int
	minSize   int
	nblocks   int

	provider arena.Provider
	logger   *slog.Logger
}

// NewBuddyAllocator creates a buddy allocator. A nil opts means DefaultOptions().
//
// No memory is reserved here: the arena and the block tree are obtained
// from the provider on first use.
func NewBuddyAllocator(opts *Options) (*BuddyAllocator, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	p := opts.Provider
	if p == nil {
		p = arena.Heap()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BuddyAllocator{
		totalSize: opts.TotalSize,
		minSize:   opts.MinSize,
		nblocks:   opts.TotalSize / opts.MinSize,
		provider:  p,
		logger:    logger,
	}, nil
}

// Init reserves the arena if it is not reserved yet.
// Calling it is optional, every operation does it on demand.
func (a *BuddyAllocator) Init() error {
	a.once.Do(a.reserve)
	return a.initErr
}

func (a *BuddyAllocator) reserve() {
	mem, err := a.provider.Reserve(a.totalSize)
	if err == nil && len(mem) < a.totalSize {
		err = fmt.Errorf("got %d bytes, want %d", len(mem), a.totalSize)
	}
	if err != nil {
		a.initErr = fmt.Errorf("%w: data: %w", ErrArenaUnavailable, err)
		return
	}

	treeBytes := a.nblocks * 2 * 4
	buf, err := a.provider.Reserve(treeBytes)
	if err == nil && len(buf) < treeBytes {
		err = fmt.Errorf("got %d bytes, want %d", len(buf), treeBytes)
	}
	if err != nil {
		a.initErr = fmt.Errorf("%w: tree: %w", ErrArenaUnavailable, err)
		return
	}
	tree := unsafex.Uint32s(buf[:treeBytes])
	if tree == nil {
		a.initErr = fmt.Errorf("%w: tree: storage is not 4-byte aligned", ErrArenaUnavailable)
		return
	}

	a.arena = mem[:a.totalSize:a.totalSize]
	a.tree = tree[:2*a.nblocks-1]
	resetTree(a.tree, a.totalSize)

	if a.debug() {
		a.logger.Debug("buddy: arena reserved",
			"total", a.totalSize, "min", a.minSize, "nodes", len(a.tree))
	}
}

// Alloc allocates a block of at least size bytes.
//
// The block size is size rounded up to a power of two and to at least the
// minimum block size. Alloc(0) returns nil without error. ErrOutOfMemory is
// returned when no free block of that size exists, which may happen while
// the arena still has enough free bytes in total, scattered over smaller blocks.
func (a *BuddyAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if err := a.Init(); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}

	a.mu.Lock()
	off, blockSize, err := a.alloc(size)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return a.block(off, size, blockSize), nil
}

// Free returns a block to the allocator and merges it with its free buddies.
//
// A nil block and blocks outside the arena are ignored. ErrInvalidAddress is
// returned, and nothing is changed, if block does not start a live
// allocation: a double free, or a block resliced from its start.
func (a *BuddyAllocator) Free(block []byte) error {
	if cap(block) == 0 {
		return nil
	}
	if err := a.Init(); err != nil {
		return err
	}
	off, ok := unsafex.Offset(a.arena, block)
	if !ok {
		if a.debug() {
			a.logger.Debug("buddy: free ignored, block not in arena")
		}
		return nil
	}
	return a.freeAt(off)
}

// FreeAt is Free for the block starting at the given arena offset.
func (a *BuddyAllocator) FreeAt(offset int) error {
	if err := a.Init(); err != nil {
		return err
	}
	if offset < 0 || offset >= a.totalSize {
		return nil
	}
	return a.freeAt(offset)
}

func (a *BuddyAllocator) freeAt(off int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, blockSize, ok := a.lookup(off)
	if !ok {
		if a.debug() {
			a.logger.Debug("buddy: free of unknown block", "offset", off)
		}
		return ErrInvalidAddress
	}
	a.release(idx, blockSize)
	if a.debug() {
		a.logger.Debug("buddy: free", "offset", off, "block", blockSize, "largest", a.tree[0])
	}
	return nil
}

// Realloc resizes block to size bytes.
//
// A nil block behaves like Alloc(size) and a zero size like Free(block).
// Blocks never shrink: if size fits into the current block the same block is
// returned, resliced to size. Otherwise a new block is allocated, the old
// block's contents are copied and the old block is freed. If that
// allocation fails, block is returned unchanged along with ErrOutOfMemory
// and stays valid.
//
// ErrInvalidAddress is returned for blocks outside the arena or not starting
// a live allocation.
func (a *BuddyAllocator) Realloc(block []byte, size int) ([]byte, error) {
	if cap(block) == 0 {
		return a.Alloc(size)
	}
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return nil, a.Free(block)
	}
	if err := a.Init(); err != nil {
		return nil, err
	}
	off, ok := unsafex.Offset(a.arena, block)
	if !ok {
		return nil, ErrInvalidAddress
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	idx, blockSize, ok := a.lookup(off)
	if !ok {
		return nil, ErrInvalidAddress
	}
	if size <= blockSize {
		if a.debug() {
			a.logger.Debug("buddy: realloc in place", "offset", off, "block", blockSize, "size", size)
		}
		return a.block(off, size, blockSize), nil
	}

	noff, nblockSize, err := a.alloc(size)
	if err != nil {
		return block, err
	}
	copy(a.arena[noff:noff+blockSize], a.arena[off:off+blockSize])
	a.release(idx, blockSize)
	if a.debug() {
		a.logger.Debug("buddy: realloc moved", "from", off, "to", noff, "block", nblockSize)
	}
	return a.block(noff, size, nblockSize), nil
}

// Calloc allocates a zeroed block for n elements of size bytes each.
//
// ErrOverflow is returned, before anything is allocated, if n*size
// overflows or does not fit the 32-bit block sizes of the tree.
func (a *BuddyAllocator) Calloc(n, size int) ([]byte, error) {
	total, err := mulSize(n, size)
	if err != nil {
		return nil, err
	}
	b, err := a.Alloc(total)
	if err != nil || b == nil {
		return b, err
	}
	clear(b[:cap(b)])
	return b, nil
}

func mulSize(n, size int) (int, error) {
	if n < 0 || size < 0 {
		return 0, ErrInvalidSize
	}
	if n == 0 || size == 0 {
		return 0, nil
	}
	p := uint(n) * uint(size)
	if p/uint(n) != uint(size) || p > math.MaxUint32 || p > math.MaxInt {
		return 0, ErrOverflow
	}
	return int(p), nil
}

// SizeOf returns the block size of a live allocation.
func (a *BuddyAllocator) SizeOf(block []byte) (int, error) {
	if err := a.Init(); err != nil {
		return 0, err
	}
	off, ok := unsafex.Offset(a.arena, block)
	if !ok {
		return 0, ErrInvalidAddress
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, blockSize, ok := a.lookup(off)
	if !ok {
		return 0, ErrInvalidAddress
	}
	return blockSize, nil
}

// Reset frees every block at once. The arena is kept.
// Blocks handed out before must not be used afterwards.
func (a *BuddyAllocator) Reset() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.mu.Lock()
	resetTree(a.tree, a.totalSize)
	a.mu.Unlock()
	return nil
}

// Largest returns the size of the largest block Alloc can currently serve.
// It also returns 0 if the arena could not be reserved, use Init to tell
// that apart from a full arena.
func (a *BuddyAllocator) Largest() int {
	if err := a.Init(); err != nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.tree[0])
}

// TotalSize returns the arena size.
func (a *BuddyAllocator) TotalSize() int {
	return a.totalSize
}

// MinSize returns the minimum block size.
func (a *BuddyAllocator) MinSize() int {
	return a.minSize
}

// debug reports whether debug records are wanted, the level may change at runtime.
func (a *BuddyAllocator) debug() bool {
	return a.logger.Enabled(context.Background(), slog.LevelDebug)
}

//---- tree operations, a.mu must be held

func (a *BuddyAllocator) block(off, size, blockSize int) []byte {
	return a.arena[off : off+size : off+blockSize]
}

func (a *BuddyAllocator) normalize(size int) int {
	n := roundUpPow2(size)
	if n < a.minSize {
		n = a.minSize
	}
	return n
}

func (a *BuddyAllocator) alloc(size int) (offset, blockSize int, err error) {
	if size > a.totalSize {
		return 0, 0, ErrOutOfMemory
	}
	n := a.normalize(size)
	if uint32(n) > a.tree[0] {
		if a.debug() {
			a.logger.Debug("buddy: out of memory", "size", size, "block", n, "largest", a.tree[0])
		}
		return 0, 0, ErrOutOfMemory
	}

	// Descend to the leftmost node of size n with room for it.
	idx := 0
	for blockSize = a.totalSize; blockSize != n; blockSize >>= 1 {
		if a.tree[leftChild(idx)] >= uint32(n) {
			idx = leftChild(idx)
		} else {
			idx = rightChild(idx)
		}
	}
	a.tree[idx] = 0
	for i := idx; i > 0; {
		i = parent(i)
		a.tree[i] = max(a.tree[leftChild(i)], a.tree[rightChild(i)])
	}

	offset = nodeOffset(idx, n, a.totalSize)
	if a.debug() {
		a.logger.Debug("buddy: alloc", "size", size, "block", n, "node", idx, "offset", offset)
	}
	return offset, n, nil
}

// lookup finds the allocated node whose block starts at off, for
// 0 <= off < totalSize. It walks up from the leaf covering off to the first
// node holding 0, which is the only non-stale one on that path.
// The tree is not modified.
func (a *BuddyAllocator) lookup(off int) (idx, blockSize int, ok bool) {
	idx = off/a.minSize + a.nblocks - 1
	blockSize = a.minSize
	for idx > 0 && a.tree[idx] != 0 {
		idx = parent(idx)
		blockSize <<= 1
	}
	if a.tree[idx] != 0 || nodeOffset(idx, blockSize, a.totalSize) != off {
		return 0, 0, false
	}
	return idx, blockSize, true
}

// release marks node idx free and merges buddies bottom-up.
func (a *BuddyAllocator) release(idx, blockSize int) {
	a.tree[idx] = uint32(blockSize)
	for idx > 0 {
		idx = parent(idx)
		half := uint32(blockSize)
		blockSize <<= 1

		l, r := a.tree[leftChild(idx)], a.tree[rightChild(idx)]
		if l == half && r == half {
			a.tree[idx] = uint32(blockSize)
		} else {
			a.tree[idx] = max(l, r)
		}
	}
}
