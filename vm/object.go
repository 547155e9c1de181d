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
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ObjectKind identifies the payload carried by an object cell.
type ObjectKind uint8

const (
	// ObjectMap is an insertion-ordered, hash-looked-up PVString->Value map.
	ObjectMap ObjectKind = iota
	// ObjectArray is a dense ordered sequence of Values.
	ObjectArray
	// ObjectString is a single PVString (an Atom or an owned byte string).
	ObjectString
	// ObjectUserData is an opaque host-supplied debug-printable object.
	ObjectUserData
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectMap:
		return "map"
	case ObjectArray:
		return "array"
	case ObjectString:
		return "string"
	case ObjectUserData:
		return "userdata"
	default:
		return "invalid-object-kind"
	}
}

// UserData is the capability a host must implement to attach opaque data
// to an object cell. Any non-trivial UserData implementation is out of
// scope for this core (spec.md §1); only the capability is defined here.
type UserData interface {
	fmt.Stringer
}

// PVString is a Paravita string: either an interned Atom or an owned byte
// string. It is comparable so it can be used directly as a Map key.
type PVString struct {
	Atom  Atom
	Owned string
}

// AtomString builds a PVString backed by an already-interned Atom.
func AtomString(a Atom) PVString { return PVString{Atom: a} }

// OwnedString builds a PVString that owns its own byte string (not
// interned).
func OwnedString(s string) PVString { return PVString{Owned: s} }

// IsAtom reports whether s is backed by an Atom rather than an owned string.
func (s PVString) IsAtom() bool { return s.Atom.Valid() }

// Resolve returns the byte content of s. For an Atom-backed PVString this
// looks the bytes up in table; for an owned PVString it returns Owned
// directly. ok is false only if s is Atom-backed and the Atom is not
// present in table.
func (s PVString) Resolve(table *AtomTable) (string, bool) {
	if s.IsAtom() {
		return table.Resolve(s.Atom)
	}
	return s.Owned, true
}

// approxValueSize is a conservative estimate of a Value's in-memory
// footprint, used to size Allocator.Reserve calls for object cell creation,
// Duplicate, array growth, map insertion, and operand stack growth; it need
// not be exact.
const approxValueSize = 32

// object is the heap cell referenced by an Object Value. Exactly one of
// its payload fields is meaningful, selected by kind. Interior mutability
// is provided by a small non-blocking borrow-state machine rather than
// sync.RWMutex, because the design requires a conflicting acquisition to
// be a detectable programmer error (a panic), not something that blocks a
// goroutine forever.
type object struct {
	kind ObjectKind

	// borrow: 0 = free, -1 = exclusively borrowed, n>0 = n shared borrows.
	borrow atomic.Int32

	m   *orderedmap.OrderedMap[PVString, Value]
	arr []Value
	str PVString
	ud  UserData
}

func (c *object) lockShared() {
	for {
		v := c.borrow.Load()
		if v < 0 {
			panic("paravita: object borrowed mutably elsewhere")
		}
		if c.borrow.CompareAndSwap(v, v+1) {
			return
		}
	}
}

func (c *object) unlockShared() { c.borrow.Add(-1) }

func (c *object) lockExclusive() {
	if !c.borrow.CompareAndSwap(0, -1) {
		panic("paravita: object already borrowed")
	}
}

func (c *object) unlockExclusive() { c.borrow.Store(0) }

// Object is an opaque, shared-ownership handle to a heap object cell. The
// zero Object is invalid; Objects are produced by MakeMap, MakeArray,
// StringObject, and NewUserData, or extracted from a Value via IsObject.
type Object struct {
	cell *object
}

// Valid reports whether o refers to a live cell.
func (o Object) Valid() bool { return o.cell != nil }

// Kind returns the object's kind.
func (o Object) Kind() ObjectKind { return o.cell.kind }

// Value wraps o as a Value.
func (o Object) Value() Value { return objectValue(o.cell) }

// MakeMap allocates a fresh, empty Map cell.
func MakeMap(alloc Allocator) (Object, error) {
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	if err := alloc.Reserve(approxValueSize); err != nil {
		return Object{}, errors.Wrap(err, "make map")
	}
	return Object{cell: &object{kind: ObjectMap, m: orderedmap.New[PVString, Value]()}}, nil
}

// MakeArray allocates a fresh, empty Array cell.
func MakeArray(alloc Allocator) (Object, error) {
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	if err := alloc.Reserve(approxValueSize); err != nil {
		return Object{}, errors.Wrap(err, "make array")
	}
	return Object{cell: &object{kind: ObjectArray}}, nil
}

// StringObject builds a String cell from s. Building a cell is itself
// infallible here (no backing allocation beyond the PVString's own
// storage, which the caller already paid for), matching the original's
// infallible Atom-to-PVObject conversion.
func StringObject(s PVString) Object {
	return Object{cell: &object{kind: ObjectString, str: s}}
}

// NewUserData wraps host-supplied data in a UserData cell.
func NewUserData(alloc Allocator, ud UserData) (Object, error) {
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	if err := alloc.Reserve(approxValueSize); err != nil {
		return Object{}, errors.Wrap(err, "make userdata")
	}
	return Object{cell: &object{kind: ObjectUserData, ud: ud}}, nil
}

// Load returns a copy of the element at index idx. It only ever returns a
// value for Array cells; for any other kind, or an out-of-range index, it
// reports absent rather than erroring (matching the §4.3 cell-level
// contract — the stricter TypeMismatch behavior lives at the Operation
// layer, in Process.RunOp, per the corrected SetArray/IndexArray design in
// spec.md §9).
func (o Object) Load(idx int) (Value, bool) {
	if o.cell.kind != ObjectArray {
		return Value{}, false
	}
	o.cell.lockShared()
	defer o.cell.unlockShared()
	if idx < 0 || idx >= len(o.cell.arr) {
		return Value{}, false
	}
	return o.cell.arr[idx], true
}

// Store grows an Array cell to contain idx (appending Nulls as needed)
// then overwrites element idx. On a non-Array cell it is a silent no-op,
// per the §4.3 cell-level contract. On allocation failure during growth,
// the array is left unchanged.
func (o Object) Store(idx int, v Value, alloc Allocator) error {
	if o.cell.kind != ObjectArray {
		return nil
	}
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	o.cell.lockExclusive()
	defer o.cell.unlockExclusive()
	if idx < 0 {
		return nil
	}
	if idx >= len(o.cell.arr) {
		grow := idx - len(o.cell.arr) + 1
		if err := alloc.Reserve(grow * approxValueSize); err != nil {
			return errors.Wrapf(err, "grow array to %d elements", idx+1)
		}
		o.cell.arr = append(o.cell.arr, make([]Value, grow)...)
	}
	o.cell.arr[idx] = v
	return nil
}

// Len returns an Array's length, or a Map's entry count. It is 0 for
// String and UserData cells.
func (o Object) Len() int {
	switch o.cell.kind {
	case ObjectArray:
		o.cell.lockShared()
		defer o.cell.unlockShared()
		return len(o.cell.arr)
	case ObjectMap:
		o.cell.lockShared()
		defer o.cell.unlockShared()
		return o.cell.m.Len()
	default:
		return 0
	}
}

// MapGet looks up key in a Map cell. ok is false for any other cell kind
// or a missing key.
func (o Object) MapGet(key PVString) (v Value, ok bool) {
	if o.cell.kind != ObjectMap {
		return Value{}, false
	}
	o.cell.lockShared()
	defer o.cell.unlockShared()
	return o.cell.m.Get(key)
}

// MapSet inserts or overwrites key in a Map cell. On any other cell kind
// it is a no-op, matching Store's non-Array behavior.
func (o Object) MapSet(key PVString, v Value, alloc Allocator) error {
	if o.cell.kind != ObjectMap {
		return nil
	}
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	o.cell.lockExclusive()
	defer o.cell.unlockExclusive()
	if _, present := o.cell.m.Get(key); !present {
		if err := alloc.Reserve(approxValueSize); err != nil {
			return errors.Wrap(err, "map insert")
		}
	}
	o.cell.m.Set(key, v)
	return nil
}

// MapDelete removes key from a Map cell, reporting whether it was present.
func (o Object) MapDelete(key PVString) bool {
	if o.cell.kind != ObjectMap {
		return false
	}
	o.cell.lockExclusive()
	defer o.cell.unlockExclusive()
	_, present := o.cell.m.Delete(key)
	return present
}

// String returns the PVString held by a String cell, or the zero
// PVString for any other kind.
func (o Object) String(_ *AtomTable) (PVString, bool) {
	if o.cell.kind != ObjectString {
		return PVString{}, false
	}
	return o.cell.str, true
}

// UserData returns the UserData held by a UserData cell.
func (o Object) UserData() (UserData, bool) {
	if o.cell.kind != ObjectUserData {
		return nil, false
	}
	return o.cell.ud, true
}

// Duplicate returns a new, independently-owned cell with a one-level copy
// of o's contents: a Map or Array is shallow-copied (its Values are copied,
// but any Object Values inside are still shared with the original), a
// String's PVString is copied verbatim, and UserData is shared (mirroring
// the original's Rc<dyn PVUserData> clone, which shares the referent).
func (o Object) Duplicate(alloc Allocator) (Object, error) {
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	o.cell.lockShared()
	defer o.cell.unlockShared()
	switch o.cell.kind {
	case ObjectMap:
		if err := alloc.Reserve(approxValueSize * o.cell.m.Len()); err != nil {
			return Object{}, errors.Wrap(err, "duplicate map")
		}
		nm := orderedmap.New[PVString, Value](o.cell.m.Len())
		for pair := o.cell.m.Oldest(); pair != nil; pair = pair.Next() {
			nm.Set(pair.Key, pair.Value)
		}
		return Object{cell: &object{kind: ObjectMap, m: nm}}, nil
	case ObjectArray:
		if err := alloc.Reserve(approxValueSize * len(o.cell.arr)); err != nil {
			return Object{}, errors.Wrap(err, "duplicate array")
		}
		na := make([]Value, len(o.cell.arr))
		copy(na, o.cell.arr)
		return Object{cell: &object{kind: ObjectArray, arr: na}}, nil
	case ObjectString:
		return Object{cell: &object{kind: ObjectString, str: o.cell.str}}, nil
	case ObjectUserData:
		return Object{cell: &object{kind: ObjectUserData, ud: o.cell.ud}}, nil
	default:
		return Object{}, errors.Errorf("duplicate: unknown object kind %v", o.cell.kind)
	}
}

// equal implements the cell-level equality rules: Map/Array/String compare
// structurally and recursively, UserData never compares equal to anything
// (including itself).
func (c *object) equal(other *object) bool {
	if c == other {
		return c.kind != ObjectUserData
	}
	if c == nil || other == nil {
		return false
	}
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case ObjectUserData:
		return false
	case ObjectString:
		c.lockShared()
		defer c.unlockShared()
		other.lockShared()
		defer other.unlockShared()
		return c.str == other.str
	case ObjectArray:
		c.lockShared()
		defer c.unlockShared()
		other.lockShared()
		defer other.unlockShared()
		if len(c.arr) != len(other.arr) {
			return false
		}
		for i := range c.arr {
			if !c.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case ObjectMap:
		c.lockShared()
		defer c.unlockShared()
		other.lockShared()
		defer other.unlockShared()
		if c.m.Len() != other.m.Len() {
			return false
		}
		for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
			ov, ok := other.m.Get(pair.Key)
			if !ok || !pair.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
