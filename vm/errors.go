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

import "github.com/pkg/errors"

// Sentinel error kinds. Every failing RunOp returns an error that wraps
// exactly one of these via errors.Wrap/Wrapf, so callers can classify
// failures with errors.Is.
var (
	// ErrStackUnderflow is returned when an operation demands more operands
	// than are present on the stack.
	ErrStackUnderflow = errors.New("paravita: stack underflow")

	// ErrTypeMismatch is returned when a popped Value's tag, kind, or
	// object kind does not satisfy the operation.
	ErrTypeMismatch = errors.New("paravita: type mismatch")

	// ErrAllocationFailure is returned when the configured Allocator
	// refuses a reservation for stack growth, array growth, atom
	// interning, or object cell creation.
	ErrAllocationFailure = errors.New("paravita: allocation failure")

	// ErrUnimplemented is returned by Trap, by Div and DivImm (which RunOp
	// does not implement), and by an opcode outside the defined set.
	ErrUnimplemented = errors.New("paravita: unimplemented operation")
)
