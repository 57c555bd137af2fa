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
	"fmt"
	"log/slog"
	"math"

	"github.com/cloudwego/buddymem/arena"
)

const (
	// DefaultTotalSize is the default arena size (32MB).
	DefaultTotalSize = 32 << 20

	// DefaultMinSize is the default minimum block size.
	DefaultMinSize = 8

	// MaxTotalSize is the largest supported arena, block sizes are kept in uint32.
	MaxTotalSize = min(1<<31, math.MaxInt)
)

// Options configures a BuddyAllocator.
type Options struct {
	// TotalSize is the arena size in bytes, a power of two.
	TotalSize int

	// MinSize is the smallest block handed out, a power of two <= TotalSize.
	// Every request is rounded up to at least MinSize.
	MinSize int

	// Provider reserves the arena and the block tree on first use.
	// Nil means arena.Heap().
	Provider arena.Provider

	// Logger receives debug records of every operation. Its level is
	// checked on every record, so a slog.LevelVar may be changed later.
	// Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the default values of Options.
func DefaultOptions() *Options {
	return &Options{
		TotalSize: DefaultTotalSize,
		MinSize:   DefaultMinSize,
		Provider:  arena.Heap(),
	}
}

func (o *Options) validate() error {
	if o.TotalSize <= 0 || !isPow2(o.TotalSize) {
		return fmt.Errorf("TotalSize must be a power of two, got %d", o.TotalSize)
	}
	if o.TotalSize > MaxTotalSize {
		return fmt.Errorf("TotalSize must be <= %d, got %d", MaxTotalSize, o.TotalSize)
	}
	if o.MinSize <= 0 || !isPow2(o.MinSize) {
		return fmt.Errorf("MinSize must be a power of two, got %d", o.MinSize)
	}
	if o.MinSize > o.TotalSize {
		return fmt.Errorf("MinSize (%d) must be <= TotalSize (%d)", o.MinSize, o.TotalSize)
	}
	return nil
}
