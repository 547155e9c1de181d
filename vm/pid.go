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
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

// pidCounter is process-wide (package-global, not per-Process) and
// lock-free; the only guarantee it provides is uniqueness, not cross-call
// ordering, which is all NewPid needs.
var pidCounter atomic.Uint64

// Pid is a 128-bit process identifier, represented as a UUID-shaped
// 16-byte array so String can print it in the canonical UUID form. Pid
// defines only String; it does not inherit uuid.UUID's other methods
// (MarshalText and the like).
type Pid uuid.UUID

// String returns the canonical dashed hex representation.
func (p Pid) String() string { return uuid.UUID(p).String() }

// NewPid overlays a monotonically increasing 64-bit counter onto the low
// 64 bits of prefix and returns the result. Two Pids derived from the same
// prefix are always distinct; the differing bits are confined to the low
// 8 bytes.
func NewPid(prefix Pid) Pid {
	p := prefix
	count := pidCounter.Add(1) - 1
	binary.BigEndian.PutUint64(p[8:16], count)
	return p
}
