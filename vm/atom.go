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
	"sync"

	"github.com/pkg/errors"
)

// Atom is an interned handle to an immutable short byte string. The zero
// value is invalid and reserved so that an Atom can sit in a nullable
// one-word field.
type Atom uint32

// Valid reports whether a is a handle returned by some AtomTable.Intern
// call (as opposed to the zero value).
func (a Atom) Valid() bool { return a != 0 }

// AtomTable is a process-global intern table: strings go in, compact
// 32-bit handles come out. It never shrinks and never frees a string once
// interned. Safe for concurrent use from any number of goroutines.
type AtomTable struct {
	alloc Allocator

	mu       sync.RWMutex
	byString map[string]Atom
	strings  []string // index i holds the bytes for handle i+1
}

// NewAtomTable creates an empty atom table. alloc may be nil, in which
// case interning never fails due to budget exhaustion.
func NewAtomTable(alloc Allocator) *AtomTable {
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	return &AtomTable{
		alloc:    alloc,
		byString: make(map[string]Atom),
	}
}

// Intern returns the existing handle for s if already interned, or assigns
// and records a new one. Concurrent interning of the same string yields
// the same handle; concurrent interning of distinct strings yields
// distinct handles.
func (t *AtomTable) Intern(s []byte) (Atom, error) {
	str := string(s) // copies s, so the map key doesn't alias caller memory

	t.mu.RLock()
	if a, ok := t.byString[str]; ok {
		t.mu.RUnlock()
		return a, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check: another writer may have interned str while we waited for
	// the write lock. This preserves injectivity under races.
	if a, ok := t.byString[str]; ok {
		return a, nil
	}
	if err := t.alloc.Reserve(len(str)); err != nil {
		return 0, errors.Wrapf(err, "intern %q", str)
	}
	t.strings = append(t.strings, str)
	a := Atom(len(t.strings))
	t.byString[str] = a
	return a, nil
}

// Resolve returns the interned bytes for a as a string, valid for the
// lifetime of the table. ok is false if a is
// invalid or was never returned by Intern on this table.
func (t *AtomTable) Resolve(a Atom) (s string, ok bool) {
	if !a.Valid() {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx := int(a) - 1
	if idx < 0 || idx >= len(t.strings) {
		return "", false
	}
	return t.strings[idx], true
}

// Count returns the number of interned strings.
func (t *AtomTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.strings)
}
