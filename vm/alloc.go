// Copyright 2026 The Paravita Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Allocator is consulted before every fallible allocation point in the
// core: data-stack growth, array growth, atom interning, and object cell
// creation. It models the "allocator exhaustion" failure mode described in
// the design without requiring callers to actually exhaust host memory.
type Allocator interface {
	// Reserve accounts for n additional bytes. It returns ErrAllocationFailure
	// (or a wrap of it) if the reservation cannot be granted.
	Reserve(n int) error
}

// UnlimitedAllocator never fails. It is the default Allocator for a
// Process and an AtomTable created without an explicit WithAllocator
// option.
type UnlimitedAllocator struct{}

// Reserve always succeeds.
func (UnlimitedAllocator) Reserve(int) error { return nil }

// budgetAllocator enforces a hard byte ceiling. It exists so the test
// suite can trigger AllocationFailure deterministically; a real embedding
// kernel would instead back this with its page allocator's free-space
// count.
type budgetAllocator struct {
	remaining atomic.Int64
}

// NewBudgetAllocator returns an Allocator that fails once more than
// maxBytes total have been reserved through it.
func NewBudgetAllocator(maxBytes int) Allocator {
	a := &budgetAllocator{}
	a.remaining.Store(int64(maxBytes))
	return a
}

func (a *budgetAllocator) Reserve(n int) error {
	if n <= 0 {
		return nil
	}
	for {
		cur := a.remaining.Load()
		if int64(n) > cur {
			return errors.Wrapf(ErrAllocationFailure, "budget exhausted: requested %d, %d remaining", n, cur)
		}
		if a.remaining.CompareAndSwap(cur, cur-int64(n)) {
			return nil
		}
	}
}
