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

func TestNewPidDistinctFromSamePrefix(t *testing.T) {
	var prefix Pid
	a := NewPid(prefix)
	b := NewPid(prefix)
	if a == b {
		t.Fatalf("NewPid(prefix) == NewPid(prefix): %s", a)
	}
	for i := 0; i < 8; i++ {
		if a[i] != prefix[i] || b[i] != prefix[i] {
			t.Errorf("byte %d of derived pid diverges from prefix", i)
		}
	}
}

func TestNewPidManyDistinct(t *testing.T) {
	var prefix Pid
	seen := make(map[Pid]bool)
	for i := 0; i < 1000; i++ {
		p := NewPid(prefix)
		if seen[p] {
			t.Fatalf("duplicate pid %s after %d allocations", p, i)
		}
		seen[p] = true
	}
}
