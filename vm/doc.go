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

// Package vm implements the Paravita core: an atom table, a tagged Value
// representation, heap object cells (maps, arrays, strings, and opaque
// host userdata), and a Process type that dispatches Operations against an
// operand stack.
//
// The package has no notion of an instruction pointer, a program image, or
// a host I/O port table; it only executes one Operation at a time via
// Process.RunOp, leaving fetch/decode/looping to the embedder. This keeps
// the core usable both as a library inside a conventional process and as
// the kernel of a bare-metal or no_std-equivalent host.
//
// Allocation failure is modeled explicitly through the Allocator
// interface rather than relied on the Go runtime's actual memory limits,
// so an embedder can exercise ErrAllocationFailure deterministically.
package vm
