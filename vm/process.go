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
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// defaultStackCapacity is the initial capacity a Process allocates for its
// operand stack when WithStackCapacity is not given.
const defaultStackCapacity = 64

// Process is one Paravita execution context: a pid, an operand stack, and
// the Allocator/AtomTable/debug sink it was built with. A Process is not
// safe for concurrent use by multiple goroutines; each Process is meant to
// run on a single OS or green thread at a time (spec.md §5).
type Process struct {
	pid   Pid
	stack []Value
	atoms *AtomTable
	alloc Allocator
	debug io.Writer
}

// Option configures a Process at construction time.
type Option func(*Process) error

// WithStackCapacity preallocates the operand stack to hold n Values before
// the first allocator-accounted growth.
func WithStackCapacity(n int) Option {
	return func(p *Process) error {
		p.stack = make([]Value, 0, n)
		return nil
	}
}

// WithAllocator sets the Allocator consulted for stack growth, array
// growth, map insertion, and object cell creation. The default is
// UnlimitedAllocator.
func WithAllocator(a Allocator) Option {
	return func(p *Process) error {
		p.alloc = a
		return nil
	}
}

// WithAtomTable attaches an existing AtomTable, typically shared across
// several Processes. The default is a fresh, process-private table.
func WithAtomTable(t *AtomTable) Option {
	return func(p *Process) error {
		p.atoms = t
		return nil
	}
}

// WithDebugSink sets where DebugOut writes. The default is no sink, in
// which case DebugOut is a no-op.
func WithDebugSink(w io.Writer) Option {
	return func(p *Process) error {
		p.debug = w
		return nil
	}
}

// NewProcess builds a Process identified by pid, applying opts in order.
func NewProcess(pid Pid, opts ...Option) (*Process, error) {
	p := &Process{
		pid:   pid,
		alloc: UnlimitedAllocator{},
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, errors.Wrap(err, "new process")
		}
	}
	if p.stack == nil {
		p.stack = make([]Value, 0, defaultStackCapacity)
	}
	if p.atoms == nil {
		p.atoms = NewAtomTable(p.alloc)
	}
	return p, nil
}

// Pid returns the process's identifier.
func (p *Process) Pid() Pid { return p.pid }

// Atoms returns the process's atom table.
func (p *Process) Atoms() *AtomTable { return p.atoms }

// Depth returns the number of Values currently on the operand stack.
func (p *Process) Depth() int { return len(p.stack) }

// Top returns the top-of-stack Value without popping it, for host
// introspection between RunOp calls. ok is false on an empty stack.
func (p *Process) Top() (Value, bool) {
	if len(p.stack) == 0 {
		return Value{}, false
	}
	return p.stack[len(p.stack)-1], true
}

// PopValue pops and returns the top-of-stack Value, for host introspection
// (e.g. reading a process's result after it halts). ok is false on an
// empty stack, in which case the stack is left unchanged.
func (p *Process) PopValue() (Value, bool) {
	if len(p.stack) == 0 {
		return Value{}, false
	}
	return p.pop(), true
}

// requireDepth reports ErrStackUnderflow if fewer than n Values are on the
// stack. Callers check this before popping anything, so a failing
// operation never leaves the stack partially consumed.
func (p *Process) requireDepth(n int) error {
	if len(p.stack) < n {
		return errors.Wrapf(ErrStackUnderflow, "need %d operand(s), have %d", n, len(p.stack))
	}
	return nil
}

// peek returns the Value n positions below the top (0 is the top itself).
// Callers must have already checked requireDepth(n+1).
func (p *Process) peek(n int) Value { return p.stack[len(p.stack)-1-n] }

func (p *Process) pop() Value {
	v := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return v
}

// pop2 pops the top two Values, returning them as (y, x) to match the
// ( y x -- ... ) stack-effect comments on Operation's constructors: x was
// pushed last (the top), y below it.
func (p *Process) pop2() (y, x Value) {
	x = p.pop()
	y = p.pop()
	return
}

// push appends v to the stack, consulting the Allocator when the backing
// slice must grow.
func (p *Process) push(v Value) error {
	if len(p.stack) == cap(p.stack) {
		if err := p.alloc.Reserve(approxValueSize); err != nil {
			return errors.Wrap(err, "stack growth")
		}
	}
	p.stack = append(p.stack, v)
	return nil
}

// requireInt checks only that v is tagged Int, not that its stored kind
// matches kind: arithmetic ops decode both operands at the op's declared
// kind regardless of how they were constructed (spec.md §4.2/§4.4).
func requireInt(v Value) error {
	if _, ok := v.IsInt(); !ok {
		return errors.Wrap(ErrTypeMismatch, "expected an int operand")
	}
	return nil
}

// asIndex extracts an int from any Int Value, reading it at its own stored
// kind rather than a kind asserted by the caller; array/map indices are not
// width-checked against a declared kind the way arithmetic operands are.
func asIndex(v Value) (int, bool) {
	kind, ok := v.IsInt()
	if !ok {
		return 0, false
	}
	switch kind {
	case KindU8:
		return int(v.AsU8()), true
	case KindI8:
		return int(v.AsI8()), true
	case KindU16:
		return int(v.AsU16()), true
	case KindI16:
		return int(v.AsI16()), true
	case KindU32:
		return int(v.AsU32()), true
	case KindI32:
		return int(v.AsI32()), true
	case KindU64:
		return int(v.AsU64()), true
	case KindI64:
		return int(v.AsI64()), true
	default:
		return 0, false
	}
}

// Wrapping two's-complement arithmetic, generic over every supported
// width. Go's fixed-width integer types already wrap on overflow, so these
// are just named identity for the three operators computeAdd/Sub/Mul
// dispatch to per kind.
func wrapAdd[T constraints.Integer](a, b T) T { return a + b }
func wrapSub[T constraints.Integer](a, b T) T { return a - b }
func wrapMul[T constraints.Integer](a, b T) T { return a * b }

func computeAdd(kind PrimOpKind, y, x Value) Value {
	switch kind {
	case KindU8:
		return ValueFromU8(wrapAdd(y.AsU8(), x.AsU8()))
	case KindI8:
		return ValueFromI8(wrapAdd(y.AsI8(), x.AsI8()))
	case KindU16:
		return ValueFromU16(wrapAdd(y.AsU16(), x.AsU16()))
	case KindI16:
		return ValueFromI16(wrapAdd(y.AsI16(), x.AsI16()))
	case KindU32:
		return ValueFromU32(wrapAdd(y.AsU32(), x.AsU32()))
	case KindI32:
		return ValueFromI32(wrapAdd(y.AsI32(), x.AsI32()))
	case KindU64:
		return ValueFromU64(wrapAdd(y.AsU64(), x.AsU64()))
	case KindI64:
		return ValueFromI64(wrapAdd(y.AsI64(), x.AsI64()))
	default:
		panic("unreachable: kind validated before dispatch")
	}
}

func computeSub(kind PrimOpKind, y, x Value) Value {
	switch kind {
	case KindU8:
		return ValueFromU8(wrapSub(x.AsU8(), y.AsU8()))
	case KindI8:
		return ValueFromI8(wrapSub(x.AsI8(), y.AsI8()))
	case KindU16:
		return ValueFromU16(wrapSub(x.AsU16(), y.AsU16()))
	case KindI16:
		return ValueFromI16(wrapSub(x.AsI16(), y.AsI16()))
	case KindU32:
		return ValueFromU32(wrapSub(x.AsU32(), y.AsU32()))
	case KindI32:
		return ValueFromI32(wrapSub(x.AsI32(), y.AsI32()))
	case KindU64:
		return ValueFromU64(wrapSub(x.AsU64(), y.AsU64()))
	case KindI64:
		return ValueFromI64(wrapSub(x.AsI64(), y.AsI64()))
	default:
		panic("unreachable: kind validated before dispatch")
	}
}

func computeMul(kind PrimOpKind, y, x Value) Value {
	switch kind {
	case KindU8:
		return ValueFromU8(wrapMul(y.AsU8(), x.AsU8()))
	case KindI8:
		return ValueFromI8(wrapMul(y.AsI8(), x.AsI8()))
	case KindU16:
		return ValueFromU16(wrapMul(y.AsU16(), x.AsU16()))
	case KindI16:
		return ValueFromI16(wrapMul(y.AsI16(), x.AsI16()))
	case KindU32:
		return ValueFromU32(wrapMul(y.AsU32(), x.AsU32()))
	case KindI32:
		return ValueFromI32(wrapMul(y.AsI32(), x.AsI32()))
	case KindU64:
		return ValueFromU64(wrapMul(y.AsU64(), x.AsU64()))
	case KindI64:
		return ValueFromI64(wrapMul(y.AsI64(), x.AsI64()))
	default:
		panic("unreachable: kind validated before dispatch")
	}
}

func computeImm(kind PrimOpKind, imm Immediate) Value {
	switch kind {
	case KindU8:
		return ValueFromU8(imm.ReadU8(kind))
	case KindI8:
		return ValueFromI8(imm.ReadI8(kind))
	case KindU16:
		return ValueFromU16(imm.ReadU16(kind))
	case KindI16:
		return ValueFromI16(imm.ReadI16(kind))
	case KindU32:
		return ValueFromU32(imm.ReadU32(kind))
	case KindI32:
		return ValueFromI32(imm.ReadI32(kind))
	case KindU64:
		return ValueFromU64(imm.ReadU64(kind))
	case KindI64:
		return ValueFromI64(imm.ReadI64(kind))
	default:
		panic("unreachable: kind validated before dispatch")
	}
}

func computeAddImm(kind PrimOpKind, x Value, imm Immediate) Value {
	return computeAdd(kind, computeImm(kind, imm), x)
}

func computeSubImm(kind PrimOpKind, x Value, imm Immediate) Value {
	return computeSub(kind, computeImm(kind, imm), x)
}

func computeMulImm(kind PrimOpKind, x Value, imm Immediate) Value {
	return computeMul(kind, computeImm(kind, imm), x)
}

// RunOp executes one Operation against the process's operand stack. A
// failing Operation never mutates the stack: every precondition (stack
// depth, operand tags and kinds) is checked against peeked Values before
// anything is popped.
func (p *Process) RunOp(o Operation) error {
	switch o.Op {
	case OpTrap:
		return errors.Wrap(ErrUnimplemented, "trap")

	case OpAdd, OpSub, OpMul:
		if !o.Kind.Valid() {
			return errors.Wrapf(ErrTypeMismatch, "%s: invalid kind %d", o.Op, o.Kind)
		}
		if err := p.requireDepth(2); err != nil {
			return errors.Wrapf(err, "%s", o.Op)
		}
		x, y := p.peek(0), p.peek(1)
		if err := requireInt(x); err != nil {
			return errors.Wrapf(err, "%s", o.Op)
		}
		if err := requireInt(y); err != nil {
			return errors.Wrapf(err, "%s", o.Op)
		}
		yv, xv := p.pop2()
		var r Value
		switch o.Op {
		case OpAdd:
			r = computeAdd(o.Kind, yv, xv)
		case OpSub:
			r = computeSub(o.Kind, yv, xv)
		case OpMul:
			r = computeMul(o.Kind, yv, xv)
		}
		return errors.Wrapf(p.push(r), "%s", o.Op)

	case OpAddImm, OpSubImm, OpMulImm:
		if !o.Kind.Valid() {
			return errors.Wrapf(ErrTypeMismatch, "%s: invalid kind %d", o.Op, o.Kind)
		}
		if err := p.requireDepth(1); err != nil {
			return errors.Wrapf(err, "%s", o.Op)
		}
		x := p.peek(0)
		if err := requireInt(x); err != nil {
			return errors.Wrapf(err, "%s", o.Op)
		}
		xv := p.pop()
		var r Value
		switch o.Op {
		case OpAddImm:
			r = computeAddImm(o.Kind, xv, o.Imm)
		case OpSubImm:
			r = computeSubImm(o.Kind, xv, o.Imm)
		case OpMulImm:
			r = computeMulImm(o.Kind, xv, o.Imm)
		}
		return errors.Wrapf(p.push(r), "%s", o.Op)

	case OpDiv, OpDivImm:
		return errors.Wrapf(ErrUnimplemented, "%s", o.Op)

	case OpPushImm:
		if !o.Kind.Valid() {
			return errors.Wrapf(ErrTypeMismatch, "%s: invalid kind %d", o.Op, o.Kind)
		}
		return errors.Wrapf(p.push(computeImm(o.Kind, o.Imm)), "%s", o.Op)

	case OpPushAtom:
		return errors.Wrap(p.push(StringObject(AtomString(o.Atom)).Value()), "push.atom")

	case OpMakeObject:
		obj, err := MakeMap(p.alloc)
		if err != nil {
			return errors.Wrap(err, "make.object")
		}
		return errors.Wrap(p.push(obj.Value()), "make.object")

	case OpMakeArray:
		obj, err := MakeArray(p.alloc)
		if err != nil {
			return errors.Wrap(err, "make.array")
		}
		return errors.Wrap(p.push(obj.Value()), "make.array")

	case OpIndexArray:
		if err := p.requireDepth(2); err != nil {
			return errors.Wrap(err, "index.array")
		}
		arrV, idxV := p.peek(0), p.peek(1)
		obj, ok := arrV.IsObject()
		if !ok || obj.Kind() != ObjectArray {
			return errors.Wrap(ErrTypeMismatch, "index.array: not an array")
		}
		idx, ok := asIndex(idxV)
		if !ok {
			return errors.Wrap(ErrTypeMismatch, "index.array: index not an int")
		}
		p.pop() // arr
		p.pop() // idx
		// Load reports !ok both for a genuinely out-of-range index and for
		// a non-Array cell; the kind check above already ruled out the
		// latter, so the only remaining case is out-of-range, which reads
		// back as Null rather than erroring (spec.md §4.4).
		v, ok := obj.Load(idx)
		if !ok {
			v = NullValue()
		}
		return errors.Wrap(p.push(v), "index.array")

	case OpSetArray:
		if err := p.requireDepth(3); err != nil {
			return errors.Wrap(err, "set.array")
		}
		arrV, idxV := p.peek(0), p.peek(1)
		obj, ok := arrV.IsObject()
		if !ok || obj.Kind() != ObjectArray {
			return errors.Wrap(ErrTypeMismatch, "set.array: not an array")
		}
		idx, ok := asIndex(idxV)
		if !ok {
			return errors.Wrap(ErrTypeMismatch, "set.array: index not an int")
		}
		// Store before popping so that an allocation failure while growing
		// the array leaves the stack untouched.
		if err := obj.Store(idx, p.peek(2), p.alloc); err != nil {
			return errors.Wrap(err, "set.array")
		}
		p.pop() // arr
		p.pop() // idx
		p.pop() // val
		return nil

	case OpDrop:
		if err := p.requireDepth(1); err != nil {
			return errors.Wrap(err, "drop")
		}
		p.pop()
		return nil

	case OpDup:
		if err := p.requireDepth(1); err != nil {
			return errors.Wrap(err, "dup")
		}
		return errors.Wrap(p.push(p.peek(0)), "dup")

	case OpSwap:
		if err := p.requireDepth(2); err != nil {
			return errors.Wrap(err, "swap")
		}
		y, x := p.pop2()
		if err := p.push(x); err != nil {
			return errors.Wrap(err, "swap")
		}
		return errors.Wrap(p.push(y), "swap")

	case OpDebugOut:
		if err := p.requireDepth(1); err != nil {
			return errors.Wrap(err, "debug.out")
		}
		v := p.pop()
		if p.debug != nil {
			fmt.Fprintln(p.debug, p.describe(v))
		}
		return nil

	default:
		return errors.Wrapf(ErrUnimplemented, "run op: unknown opcode %d", o.Op)
	}
}

// describe renders v for DebugOut. It is best-effort and never fails: an
// object cell it can't introspect is rendered by its kind alone.
func (p *Process) describe(v Value) string {
	if v.IsNull() {
		return "null"
	}
	if kind, ok := v.IsInt(); ok {
		switch kind {
		case KindU8:
			return fmt.Sprintf("%s:%d", kind, v.AsU8())
		case KindI8:
			return fmt.Sprintf("%s:%d", kind, v.AsI8())
		case KindU16:
			return fmt.Sprintf("%s:%d", kind, v.AsU16())
		case KindI16:
			return fmt.Sprintf("%s:%d", kind, v.AsI16())
		case KindU32:
			return fmt.Sprintf("%s:%d", kind, v.AsU32())
		case KindI32:
			return fmt.Sprintf("%s:%d", kind, v.AsI32())
		case KindU64:
			return fmt.Sprintf("%s:%d", kind, v.AsU64())
		case KindI64:
			return fmt.Sprintf("%s:%d", kind, v.AsI64())
		}
	}
	obj, _ := v.IsObject()
	switch obj.Kind() {
	case ObjectMap:
		return fmt.Sprintf("map[%d]", obj.Len())
	case ObjectArray:
		return fmt.Sprintf("array[%d]", obj.Len())
	case ObjectString:
		s, _ := obj.String(p.atoms)
		str, _ := s.Resolve(p.atoms)
		return fmt.Sprintf("string(%q)", str)
	case ObjectUserData:
		ud, _ := obj.UserData()
		return fmt.Sprintf("userdata(%s)", ud)
	default:
		return "object(invalid)"
	}
}
