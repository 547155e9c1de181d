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

func TestInternIdempotentAndInjective(t *testing.T) {
	tbl := NewAtomTable(nil)

	a1, err := tbl.Intern([]byte("foo"))
	if err != nil {
		t.Fatal(err)
	}
	a2, err := tbl.Intern([]byte("foo"))
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Errorf("intern(foo) != intern(foo): %d != %d", a1, a2)
	}

	b, err := tbl.Intern([]byte("bar"))
	if err != nil {
		t.Fatal(err)
	}
	if a1 == b {
		t.Errorf("intern(foo) == intern(bar): %d", a1)
	}

	s, ok := tbl.Resolve(a1)
	if !ok || s != "foo" {
		t.Errorf("resolve(intern(foo)) = %q, %v; want \"foo\", true", s, ok)
	}
}

func TestInternStability(t *testing.T) {
	tbl := NewAtomTable(nil)
	a, err := tbl.Intern([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if _, err := tbl.Intern([]byte{byte('a' + i%26), byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	s, ok := tbl.Resolve(a)
	if !ok || s != "x" {
		t.Errorf("resolve after churn = %q, %v; want \"x\", true", s, ok)
	}
}

func TestAtomZeroInvalid(t *testing.T) {
	var a Atom
	if a.Valid() {
		t.Error("zero Atom reports Valid")
	}
	tbl := NewAtomTable(nil)
	if _, ok := tbl.Resolve(a); ok {
		t.Error("Resolve(zero Atom) reports ok")
	}
}

func TestInternBudgetExhaustion(t *testing.T) {
	tbl := NewAtomTable(NewBudgetAllocator(2))
	if _, err := tbl.Intern([]byte("ab")); err != nil {
		t.Fatalf("first intern under budget failed: %v", err)
	}
	if _, err := tbl.Intern([]byte("cd")); err == nil {
		t.Fatal("expected allocation failure once budget is exhausted")
	}
}

func TestCount(t *testing.T) {
	tbl := NewAtomTable(nil)
	if tbl.Count() != 0 {
		t.Fatalf("fresh table count = %d, want 0", tbl.Count())
	}
	if _, err := tbl.Intern([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Intern([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Intern([]byte("b")); err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 2 {
		t.Fatalf("count = %d, want 2", tbl.Count())
	}
}
