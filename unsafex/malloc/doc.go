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

// Package malloc implements a buddy allocator over one fixed-size arena.
//
// The arena is a power of two bytes, split on demand into power-of-two blocks
// no smaller than a configured minimum. A complete binary tree, stored
// in a flat slice, tracks for every block the largest free block below it.
// Allocation walks down the tree to the leftmost fitting block, Free walks up
// and merges free buddies, both in O(log(TotalSize/MinSize)).
//
// Because blocks are powers of two and only buddies merge, an allocation can
// fail with ErrOutOfMemory while more free bytes remain in total than were
// requested. Largest reports the biggest block that can be served.
//
// The arena and the tree are reserved lazily, once, from an arena.Provider.
// They are never given back.
package malloc
