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

import "testing"

func newTestProcess(t *testing.T) *Process {
	t.Helper()
	p, err := NewProcess(NewPid(Pid{}))
	if err != nil {
		t.Fatalf("NewProcess: %v", err)
	}
	return p
}

func TestRunOpStackUnderflowLeavesStackUnchanged(t *testing.T) {
	p := newTestProcess(t)
	if err := p.RunOp(Add(KindI32)); err == nil {
		t.Fatal("expected error on empty stack")
	}
	if p.Depth() != 0 {
		t.Fatalf("stack depth = %d after failing op, want 0", p.Depth())
	}
}

func TestRunOpTypeMismatchLeavesStackUnchanged(t *testing.T) {
	p := newTestProcess(t)
	must(t, p, PushImm(KindI32, ImmediateFromI32(1)))
	must(t, p, MakeArray()) // not an Int at all
	before := p.Depth()
	if err := p.RunOp(Add(KindI32)); err == nil {
		t.Fatal("expected type mismatch (operand is not an int)")
	}
	if p.Depth() != before {
		t.Fatalf("stack depth changed after failing op: %d != %d", p.Depth(), before)
	}
}

// Arithmetic decodes both operands at the op's declared Kind, not at
// whatever kind they were constructed with (spec.md §4.2/§4.4): a stored
// kind mismatch is not itself a type error.
func TestRunOpArithmeticDecodesAtDeclaredKindRegardlessOfStoredKind(t *testing.T) {
	p := newTestProcess(t)
	must(t, p, PushImm(KindU64, ImmediateFromU64(1)))
	must(t, p, AddImm(KindU8, ImmediateFromU8(1)))
	top, _ := p.Top()
	if top.AsU8() != 2 {
		t.Fatalf("AddImm(U8) on a U64-tagged operand = %d, want 2", top.AsU8())
	}
}

func TestRunOpStackEffectOnSuccess(t *testing.T) {
	p := newTestProcess(t)
	ops := []Operation{
		PushImm(KindI32, ImmediateFromI32(1)),
		PushImm(KindI32, ImmediateFromI32(2)),
	}
	for _, op := range ops {
		if err := p.RunOp(op); err != nil {
			t.Fatal(err)
		}
	}
	if p.Depth() != 2 {
		t.Fatalf("depth after two pushes = %d, want 2", p.Depth())
	}
	if err := p.RunOp(Add(KindI32)); err != nil {
		t.Fatal(err)
	}
	if p.Depth() != 1 {
		t.Fatalf("depth after Add = %d, want 1", p.Depth())
	}
}

func TestRunOpDropDupSwap(t *testing.T) {
	p := newTestProcess(t)
	must(t, p, PushImm(KindU8, ImmediateFromU8(1)))
	must(t, p, PushImm(KindU8, ImmediateFromU8(2)))
	must(t, p, Dup())
	if p.Depth() != 3 {
		t.Fatalf("depth after dup = %d, want 3", p.Depth())
	}
	top, _ := p.Top()
	if top.AsU8() != 2 {
		t.Fatalf("top after dup = %d, want 2", top.AsU8())
	}
	must(t, p, Drop())
	must(t, p, Swap())
	a, _ := p.PopValue()
	b, _ := p.PopValue()
	if a.AsU8() != 1 || b.AsU8() != 2 {
		t.Fatalf("swap result = %d, %d; want 1, 2", a.AsU8(), b.AsU8())
	}
}

func TestRunOpDivUnimplemented(t *testing.T) {
	p := newTestProcess(t)
	must(t, p, PushImm(KindI32, ImmediateFromI32(10)))
	must(t, p, PushImm(KindI32, ImmediateFromI32(2)))
	if err := p.RunOp(Div(KindI32)); err == nil {
		t.Fatal("expected ErrUnimplemented for Div")
	}
	if p.Depth() != 2 {
		t.Fatalf("depth after failing Div = %d, want 2", p.Depth())
	}
}

func TestRunOpTrapUnimplemented(t *testing.T) {
	p := newTestProcess(t)
	if err := p.RunOp(Trap()); err == nil {
		t.Fatal("expected error from Trap")
	}
}

func TestRunOpPushAtom(t *testing.T) {
	p := newTestProcess(t)
	a, err := p.Atoms().Intern([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.RunOp(PushAtom(a)); err != nil {
		t.Fatal(err)
	}
	top, _ := p.Top()
	obj, ok := top.IsObject()
	if !ok || obj.Kind() != ObjectString {
		t.Fatalf("PushAtom result = %v, %v; want a String object", obj, ok)
	}
}

func TestRunOpMakeArrayIndexSetArray(t *testing.T) {
	p := newTestProcess(t)
	// Stack order for SetArray is ( val idx arr -- ), arr on top, so push
	// val and idx first and let MakeArray supply the top element.
	must(t, p, PushImm(KindU32, ImmediateFromU32(7))) // val
	must(t, p, PushImm(KindU32, ImmediateFromU32(2))) // idx
	must(t, p, MakeArray())                           // arr
	arrV, _ := p.Top()
	must(t, p, SetArray())
	if p.Depth() != 0 {
		t.Fatalf("depth after SetArray = %d, want 0", p.Depth())
	}

	obj, ok := arrV.IsObject()
	if !ok {
		t.Fatal("captured top was not an Object")
	}
	got, ok := obj.Load(2)
	if !ok || got.AsU32() != 7 {
		t.Fatalf("Load(2) = %v, %v; want 7, true", got, ok)
	}
	zero, ok := obj.Load(0)
	if !ok || !zero.IsNull() {
		t.Fatalf("Load(0) = %v, %v; want Null, true", zero, ok)
	}

	// IndexArray is ( idx arr -- v ), arr on top again.
	must(t, p, PushImm(KindU32, ImmediateFromU32(2)))
	if err := p.push(arrV); err != nil {
		t.Fatal(err)
	}
	must(t, p, IndexArray())
	out, _ := p.PopValue()
	if out.AsU32() != 7 {
		t.Fatalf("IndexArray(2) = %d, want 7", out.AsU32())
	}
}

func TestRunOpIndexArrayOutOfRangeYieldsNull(t *testing.T) {
	p := newTestProcess(t)
	// IndexArray is ( idx arr -- v ): idx first (deeper), arr last (on top).
	must(t, p, PushImm(KindU32, ImmediateFromU32(5)))
	must(t, p, MakeArray())
	before := p.Depth()
	if err := p.RunOp(IndexArray()); err != nil {
		t.Fatalf("out-of-range index returned an error instead of Null: %v", err)
	}
	if p.Depth() != before-1 {
		t.Fatalf("depth after IndexArray = %d, want %d", p.Depth(), before-1)
	}
	top, _ := p.Top()
	if !top.IsNull() {
		t.Fatalf("out-of-range IndexArray result = %v, want Null", top)
	}
}

func TestRunOpIndexArrayTypeMismatch(t *testing.T) {
	p := newTestProcess(t)
	must(t, p, PushImm(KindU8, ImmediateFromU8(0)))
	must(t, p, PushImm(KindU8, ImmediateFromU8(0)))
	if err := p.RunOp(IndexArray()); err == nil {
		t.Fatal("expected type mismatch indexing a non-array")
	}
}

func must(t *testing.T, p *Process, op Operation) {
	t.Helper()
	if err := p.RunOp(op); err != nil {
		t.Fatalf("RunOp(%s): %v", op.Op, err)
	}
}
