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

import "encoding/binary"

// PrimOpKind is the declared numeric width and signedness of an Int Value
// or of an arithmetic Operation. The declaration order is load-bearing: it
// is also the byte value used to encode a Kind on the wire (see
// encoding.go).
type PrimOpKind uint8

// Supported primitive integer kinds.
const (
	KindU8 PrimOpKind = iota
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
)

var kindNames = [...]string{"u8", "i8", "u16", "i16", "u32", "i32", "u64", "i64"}

// String returns the kind's assembly-style name (e.g. "u8", "i32").
func (k PrimOpKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid-kind"
}

// Size returns the width of k in bytes.
func (k PrimOpKind) Size() int {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32:
		return 4
	case KindU64, KindI64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether k is one of the eight supported kinds.
func (k PrimOpKind) Valid() bool { return int(k) < len(kindNames) }

type valueTag uint8

const (
	tagNull valueTag = iota
	tagInt
	tagObject
)

// Value is one cell on the operand stack: a tagged sum of Null, a
// fixed-width Int, or a shared-ownership Object handle. The zero Value is
// Null, matching the design's default-construction requirement.
//
// A Value is safe to copy by assignment in all three cases: Object sharing
// is just a Go pointer copy, backed by the garbage collector rather than
// manual reference counting (see DESIGN.md for why that substitution is
// safe here).
type Value struct {
	tag     valueTag
	kind    PrimOpKind
	payload [8]byte
	obj     *object
}

// NullValue returns the Null Value. Equivalent to the zero Value.
func NullValue() Value { return Value{} }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.tag == tagNull }

// IsInt reports whether v is an Int, and if so its kind.
func (v Value) IsInt() (PrimOpKind, bool) {
	if v.tag != tagInt {
		return 0, false
	}
	return v.kind, true
}

// IsObject reports whether v is an Object, and if so returns the handle.
func (v Value) IsObject() (Object, bool) {
	if v.tag != tagObject {
		return Object{}, false
	}
	return Object{cell: v.obj}, true
}

func newIntValue(kind PrimOpKind, raw uint64) Value {
	var v Value
	v.tag = tagInt
	v.kind = kind
	binary.LittleEndian.PutUint64(v.payload[:], raw)
	return v
}

func objectValue(c *object) Value {
	return Value{tag: tagObject, obj: c}
}

// Construction from each of the eight primitive integer widths, tagging
// the Value with the matching PrimOpKind.

// ValueFromU8 builds a U8 Value.
func ValueFromU8(n uint8) Value { return newIntValue(KindU8, uint64(n)) }

// ValueFromI8 builds an I8 Value.
func ValueFromI8(n int8) Value { return newIntValue(KindI8, uint64(uint8(n))) }

// ValueFromU16 builds a U16 Value.
func ValueFromU16(n uint16) Value { return newIntValue(KindU16, uint64(n)) }

// ValueFromI16 builds an I16 Value.
func ValueFromI16(n int16) Value { return newIntValue(KindI16, uint64(uint16(n))) }

// ValueFromU32 builds a U32 Value.
func ValueFromU32(n uint32) Value { return newIntValue(KindU32, uint64(n)) }

// ValueFromI32 builds an I32 Value.
func ValueFromI32(n int32) Value { return newIntValue(KindI32, uint64(uint32(n))) }

// ValueFromU64 builds a U64 Value.
func ValueFromU64(n uint64) Value { return newIntValue(KindU64, n) }

// ValueFromI64 builds an I64 Value.
func ValueFromI64(n int64) Value { return newIntValue(KindI64, uint64(n)) }

// AsU8 reinterprets the payload as a U8. For Null it returns 0; for Object
// it returns 0 (a program error, but it must not crash the VM per the
// design). It does not itself validate that v's stored kind is U8 — that
// contract is the caller's (the dispatcher decodes operands using the
// op's declared kind, not the operand's stored kind, by design).
func (v Value) AsU8() uint8 {
	if v.tag != tagInt {
		return 0
	}
	return v.payload[0]
}

// AsI8 reinterprets the payload as an I8.
func (v Value) AsI8() int8 { return int8(v.AsU8()) }

// AsU16 reinterprets the payload as a U16.
func (v Value) AsU16() uint16 {
	if v.tag != tagInt {
		return 0
	}
	return binary.LittleEndian.Uint16(v.payload[:2])
}

// AsI16 reinterprets the payload as an I16.
func (v Value) AsI16() int16 { return int16(v.AsU16()) }

// AsU32 reinterprets the payload as a U32.
func (v Value) AsU32() uint32 {
	if v.tag != tagInt {
		return 0
	}
	return binary.LittleEndian.Uint32(v.payload[:4])
}

// AsI32 reinterprets the payload as an I32.
func (v Value) AsI32() int32 { return int32(v.AsU32()) }

// AsU64 reinterprets the payload as a U64.
func (v Value) AsU64() uint64 {
	if v.tag != tagInt {
		return 0
	}
	return binary.LittleEndian.Uint64(v.payload[:8])
}

// AsI64 reinterprets the payload as an I64.
func (v Value) AsI64() int64 { return int64(v.AsU64()) }

// Equal implements Value equality: structural for Null and Int (same kind,
// same in-range bytes), and for Object, equal iff the referenced cells
// compare equal under the cell's own equality rules.
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case tagNull:
		return true
	case tagInt:
		return v.kind == other.kind && v.payload == other.payload
	case tagObject:
		return v.obj.equal(other.obj)
	default:
		return false
	}
}
