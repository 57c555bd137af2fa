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

package arena

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Limited caps the total number of bytes reserved through a Provider.
// It is safe for concurrent use.
type Limited struct {
	p        Provider
	max      int64
	sem      *semaphore.Weighted
	reserved atomic.Int64
}

var _ Provider = &Limited{}

// Limit wraps p so that no more than maxBytes are ever reserved through it.
func Limit(p Provider, maxBytes int64) *Limited {
	return &Limited{
		p:   p,
		max: maxBytes,
		sem: semaphore.NewWeighted(maxBytes),
	}
}

// Reserve implements Provider.
// It never blocks: a request exceeding the remaining budget fails with ErrReservationLimit.
func (l *Limited) Reserve(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	if !l.sem.TryAcquire(int64(n)) {
		return nil, ErrReservationLimit
	}
	b, err := l.p.Reserve(n)
	if err != nil {
		l.sem.Release(int64(n))
		return nil, err
	}
	l.reserved.Add(int64(n))
	return b, nil
}

// Reserved returns the number of bytes reserved so far.
func (l *Limited) Reserved() int64 {
	return l.reserved.Load()
}

// Limit returns the budget in bytes.
func (l *Limited) Limit() int64 {
	return l.max
}
