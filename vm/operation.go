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

// OpCode identifies one Operation. Trap is reserved as the zero value so
// that a zeroed Operation is never silently mistaken for a harmless op.
type OpCode uint8

// Operation codes, in the order the instruction-encoding discriminant
// (spec.md §6) is assigned.
const (
	OpTrap OpCode = iota
	OpAdd
	OpAddImm
	OpSub
	OpSubImm
	OpMul
	OpMulImm
	OpDiv
	OpDivImm
	OpPushImm
	OpPushAtom
	OpMakeObject
	OpMakeArray
	OpIndexArray
	OpSetArray
	OpDrop
	OpDup
	OpSwap
	OpDebugOut

	// opCodeCount is one past the last valid OpCode; it is the published
	// constant encoders/decoders range-check against.
	opCodeCount
)

// OpCodeCount is the number of OpCode discriminants defined, published
// so encoders/decoders can range-check a wire discriminant byte.
const OpCodeCount = int(opCodeCount)

var opNames = [...]string{
	OpTrap:       "trap",
	OpAdd:        "add",
	OpAddImm:     "add.imm",
	OpSub:        "sub",
	OpSubImm:     "sub.imm",
	OpMul:        "mul",
	OpMulImm:     "mul.imm",
	OpDiv:        "div",
	OpDivImm:     "div.imm",
	OpPushImm:    "push.imm",
	OpPushAtom:   "push.atom",
	OpMakeObject: "make.object",
	OpMakeArray:  "make.array",
	OpIndexArray: "index.array",
	OpSetArray:   "set.array",
	OpDrop:       "drop",
	OpDup:        "dup",
	OpSwap:       "swap",
	OpDebugOut:   "debug.out",
}

// String returns the opcode's mnemonic, or "op.invalid" for an out-of-range
// discriminant.
func (o OpCode) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op.invalid"
}

// Valid reports whether o is one of the defined discriminants (Div and
// DivImm are valid here even though RunOp does not implement them).
func (o OpCode) Valid() bool { return int(o) < OpCodeCount }

// Immediate is the raw 8-byte blob carried by *Imm operations and
// PushImm. Only the first sizeOf(kind) bytes are meaningful; they are
// interpreted in little-endian order, per the corrected behavior noted in
// spec.md §9 (one draft of the original only ever read 2 bytes regardless
// of kind — that bug is not reproduced here).
type Immediate [8]byte

// ImmediateFromU8 builds an Immediate carrying a U8 payload.
func ImmediateFromU8(v uint8) Immediate { return Immediate{0: v} }

// ImmediateFromI8 builds an Immediate carrying an I8 payload.
func ImmediateFromI8(v int8) Immediate { return ImmediateFromU8(uint8(v)) }

// ImmediateFromU16 builds an Immediate carrying a U16 payload.
func ImmediateFromU16(v uint16) Immediate {
	var im Immediate
	binary.LittleEndian.PutUint16(im[:2], v)
	return im
}

// ImmediateFromI16 builds an Immediate carrying an I16 payload.
func ImmediateFromI16(v int16) Immediate { return ImmediateFromU16(uint16(v)) }

// ImmediateFromU32 builds an Immediate carrying a U32 payload.
func ImmediateFromU32(v uint32) Immediate {
	var im Immediate
	binary.LittleEndian.PutUint32(im[:4], v)
	return im
}

// ImmediateFromI32 builds an Immediate carrying an I32 payload.
func ImmediateFromI32(v int32) Immediate { return ImmediateFromU32(uint32(v)) }

// ImmediateFromU64 builds an Immediate carrying a U64 payload.
func ImmediateFromU64(v uint64) Immediate {
	var im Immediate
	binary.LittleEndian.PutUint64(im[:8], v)
	return im
}

// ImmediateFromI64 builds an Immediate carrying an I64 payload.
func ImmediateFromI64(v int64) Immediate { return ImmediateFromU64(uint64(v)) }

// ReadU8 decodes the Immediate as U8. kind must be KindU8; a mismatch is a
// programmer error (malformed instruction stream) and panics.
func (im Immediate) ReadU8(kind PrimOpKind) uint8 {
	mustKind(kind, KindU8)
	return im[0]
}

// ReadI8 decodes the Immediate as I8.
func (im Immediate) ReadI8(kind PrimOpKind) int8 {
	mustKind(kind, KindI8)
	return int8(im[0])
}

// ReadU16 decodes the Immediate as U16.
func (im Immediate) ReadU16(kind PrimOpKind) uint16 {
	mustKind(kind, KindU16)
	return binary.LittleEndian.Uint16(im[:2])
}

// ReadI16 decodes the Immediate as I16.
func (im Immediate) ReadI16(kind PrimOpKind) int16 {
	mustKind(kind, KindI16)
	return int16(binary.LittleEndian.Uint16(im[:2]))
}

// ReadU32 decodes the Immediate as U32.
func (im Immediate) ReadU32(kind PrimOpKind) uint32 {
	mustKind(kind, KindU32)
	return binary.LittleEndian.Uint32(im[:4])
}

// ReadI32 decodes the Immediate as I32.
func (im Immediate) ReadI32(kind PrimOpKind) int32 {
	mustKind(kind, KindI32)
	return int32(binary.LittleEndian.Uint32(im[:4]))
}

// ReadU64 decodes the Immediate as U64.
func (im Immediate) ReadU64(kind PrimOpKind) uint64 {
	mustKind(kind, KindU64)
	return binary.LittleEndian.Uint64(im[:8])
}

// ReadI64 decodes the Immediate as I64.
func (im Immediate) ReadI64(kind PrimOpKind) int64 {
	mustKind(kind, KindI64)
	return int64(binary.LittleEndian.Uint64(im[:8]))
}

func mustKind(got, want PrimOpKind) {
	if got != want {
		panic("paravita: immediate read kind mismatch: expected " + want.String() + ", got " + got.String())
	}
}

// Operation is one VM instruction. Only the fields relevant to Op are
// meaningful; Go has no tagged union, so this mirrors the original
// #[repr(u8)] enum Operation as a flat struct instead, grounded on the
// same discriminant + payload shape spec.md §6 describes for the wire
// encoding.
type Operation struct {
	Op   OpCode
	Kind PrimOpKind // Add/Sub/Mul(Imm), Div(Imm), PushImm
	Imm  Immediate  // *Imm ops, PushImm
	Atom Atom       // PushAtom
	Cap  uint32     // MakeObject: reserved capacity hint, may be ignored
}

// Convenience constructors for the no-payload/simple-payload ops.

// Trap builds the reserved fatal Trap operation.
func Trap() Operation { return Operation{Op: OpTrap} }

// Add builds ( y x -- r ), r = x + y computed as kind.
func Add(kind PrimOpKind) Operation { return Operation{Op: OpAdd, Kind: kind} }

// AddImm builds ( x -- r ), r = x + imm computed as kind.
func AddImm(kind PrimOpKind, imm Immediate) Operation {
	return Operation{Op: OpAddImm, Kind: kind, Imm: imm}
}

// Sub builds ( y x -- r ), r = x - y computed as kind.
func Sub(kind PrimOpKind) Operation { return Operation{Op: OpSub, Kind: kind} }

// SubImm builds ( x -- r ), r = x - imm computed as kind.
func SubImm(kind PrimOpKind, imm Immediate) Operation {
	return Operation{Op: OpSubImm, Kind: kind, Imm: imm}
}

// Mul builds ( y x -- r ), r = x * y computed as kind.
func Mul(kind PrimOpKind) Operation { return Operation{Op: OpMul, Kind: kind} }

// MulImm builds ( x -- r ), r = x * imm computed as kind.
func MulImm(kind PrimOpKind, imm Immediate) Operation {
	return Operation{Op: OpMulImm, Kind: kind, Imm: imm}
}

// Div builds ( y x -- q r ). Specified but not implemented; RunOp always
// fails with ErrUnimplemented.
func Div(kind PrimOpKind) Operation { return Operation{Op: OpDiv, Kind: kind} }

// DivImm builds ( x -- q r ). Specified but not implemented.
func DivImm(kind PrimOpKind, imm Immediate) Operation {
	return Operation{Op: OpDivImm, Kind: kind, Imm: imm}
}

// PushImm builds ( -- v ), pushing an Int Value built from imm as kind.
func PushImm(kind PrimOpKind, imm Immediate) Operation {
	return Operation{Op: OpPushImm, Kind: kind, Imm: imm}
}

// PushAtom builds ( -- v ), pushing an Object whose cell is String(a).
func PushAtom(a Atom) Operation { return Operation{Op: OpPushAtom, Atom: a} }

// MakeObject builds ( -- m ), pushing a fresh empty Map cell. cap is a
// reserved capacity hint and may be ignored.
func MakeObject(cap uint32) Operation { return Operation{Op: OpMakeObject, Cap: cap} }

// MakeArray builds ( -- a ), pushing a fresh empty Array cell.
func MakeArray() Operation { return Operation{Op: OpMakeArray} }

// IndexArray builds ( idx arr -- v ).
func IndexArray() Operation { return Operation{Op: OpIndexArray} }

// SetArray builds ( val idx arr -- ).
func SetArray() Operation { return Operation{Op: OpSetArray} }

// Drop builds ( v -- ).
func Drop() Operation { return Operation{Op: OpDrop} }

// Dup builds ( v -- v v ).
func Dup() Operation { return Operation{Op: OpDup} }

// Swap builds ( y x -- x y ).
func Swap() Operation { return Operation{Op: OpSwap} }

// DebugOut builds ( v -- ), emitting v's debug representation to the
// configured debug sink, or no-op if none is configured.
func DebugOut() Operation { return Operation{Op: OpDebugOut} }
