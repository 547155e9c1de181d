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
	"io"

	"github.com/pkg/errors"
)

// EncodeOperation writes o's wire representation to w: a 1-byte
// discriminant at a fixed offset, followed by whatever payload o.Op
// carries (spec.md §6). This is the core-owned encode/decode contract; it
// is not a loader, assembler, or disassembler format — those remain out
// of scope (spec.md §1).
func EncodeOperation(w io.Writer, o Operation) error {
	if !o.Op.Valid() {
		return errors.Errorf("encode: invalid opcode %d", o.Op)
	}
	if _, err := w.Write([]byte{byte(o.Op)}); err != nil {
		return errors.Wrap(err, "write discriminant")
	}
	switch o.Op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return writeKind(w, o.Kind)
	case OpAddImm, OpSubImm, OpMulImm, OpDivImm, OpPushImm:
		if err := writeKind(w, o.Kind); err != nil {
			return err
		}
		if _, err := w.Write(o.Imm[:]); err != nil {
			return errors.Wrap(err, "write immediate")
		}
		return nil
	case OpPushAtom:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(o.Atom))
		if _, err := w.Write(b[:]); err != nil {
			return errors.Wrap(err, "write atom handle")
		}
		return nil
	case OpMakeObject:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], o.Cap)
		if _, err := w.Write(b[:]); err != nil {
			return errors.Wrap(err, "write capacity hint")
		}
		return nil
	default:
		// Trap, MakeArray, IndexArray, SetArray, Drop, Dup, Swap, DebugOut
		// carry no payload.
		return nil
	}
}

func writeKind(w io.Writer, k PrimOpKind) error {
	if !k.Valid() {
		return errors.Errorf("encode: invalid kind %d", k)
	}
	_, err := w.Write([]byte{byte(k)})
	return errors.Wrap(err, "write kind")
}

// DecodeOperation reads one Operation from r in the format EncodeOperation
// writes. A clean end of stream between operations is reported as a bare
// io.EOF (check with err == io.EOF or errors.Is); an end of stream in the
// middle of an operation is a wrapped io.ErrUnexpectedEOF instead.
func DecodeOperation(r io.Reader) (Operation, error) {
	var discByte [1]byte
	if _, err := io.ReadFull(r, discByte[:]); err != nil {
		if err == io.EOF {
			return Operation{}, io.EOF
		}
		return Operation{}, errors.Wrap(err, "read discriminant")
	}
	op := OpCode(discByte[0])
	if !op.Valid() {
		return Operation{}, errors.Errorf("decode: invalid opcode %d", op)
	}

	o := Operation{Op: op}
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		k, err := readKind(r)
		if err != nil {
			return Operation{}, err
		}
		o.Kind = k
	case OpAddImm, OpSubImm, OpMulImm, OpDivImm, OpPushImm:
		k, err := readKind(r)
		if err != nil {
			return Operation{}, err
		}
		o.Kind = k
		if _, err := io.ReadFull(r, o.Imm[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Operation{}, errors.Wrap(err, "read immediate")
		}
	case OpPushAtom:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Operation{}, errors.Wrap(err, "read atom handle")
		}
		o.Atom = Atom(binary.LittleEndian.Uint32(b[:]))
	case OpMakeObject:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Operation{}, errors.Wrap(err, "read capacity hint")
		}
		o.Cap = binary.LittleEndian.Uint32(b[:])
	}
	return o, nil
}

func readKind(r io.Reader) (PrimOpKind, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, errors.Wrap(err, "read kind")
	}
	k := PrimOpKind(b[0])
	if !k.Valid() {
		return 0, errors.Errorf("decode: invalid kind %d", b[0])
	}
	return k, nil
}
