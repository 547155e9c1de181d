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

func TestValueRoundTrip(t *testing.T) {
	if v := ValueFromU8(0xff); v.AsU8() != 0xff {
		t.Errorf("u8 round-trip: got %d", v.AsU8())
	}
	if v := ValueFromI8(-1); v.AsI8() != -1 {
		t.Errorf("i8 round-trip: got %d", v.AsI8())
	}
	if v := ValueFromU16(0xffff); v.AsU16() != 0xffff {
		t.Errorf("u16 round-trip: got %d", v.AsU16())
	}
	if v := ValueFromI16(-32768); v.AsI16() != -32768 {
		t.Errorf("i16 round-trip: got %d", v.AsI16())
	}
	if v := ValueFromU32(0xffffffff); v.AsU32() != 0xffffffff {
		t.Errorf("u32 round-trip: got %d", v.AsU32())
	}
	if v := ValueFromI32(-2147483648); v.AsI32() != -2147483648 {
		t.Errorf("i32 round-trip: got %d", v.AsI32())
	}
	if v := ValueFromU64(1<<64 - 1); v.AsU64() != 1<<64-1 {
		t.Errorf("u64 round-trip: got %d", v.AsU64())
	}
	if v := ValueFromI64(-9223372036854775808); v.AsI64() != -9223372036854775808 {
		t.Errorf("i64 round-trip: got %d", v.AsI64())
	}
}

func TestValueIsIntTag(t *testing.T) {
	v := ValueFromI32(7)
	kind, ok := v.IsInt()
	if !ok || kind != KindI32 {
		t.Fatalf("IsInt() = %v, %v; want KindI32, true", kind, ok)
	}
	if NullValue().IsNull() == false {
		t.Error("NullValue().IsNull() = false")
	}
	if _, ok := NullValue().IsInt(); ok {
		t.Error("NullValue().IsInt() reports ok")
	}
}

func TestValueZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Error("zero Value is not Null")
	}
	if !v.Equal(NullValue()) {
		t.Error("zero Value != NullValue()")
	}
}

func TestValueEqualNullAndInt(t *testing.T) {
	if !NullValue().Equal(NullValue()) {
		t.Error("Null != Null")
	}
	if ValueFromI32(1).Equal(NullValue()) {
		t.Error("Int(1) == Null")
	}
	if !ValueFromI32(5).Equal(ValueFromI32(5)) {
		t.Error("Int(I32, 5) != Int(I32, 5)")
	}
	if ValueFromI32(5).Equal(ValueFromU32(5)) {
		t.Error("Int(I32, 5) == Int(U32, 5), kinds differ")
	}
}

func TestKindStringAndValid(t *testing.T) {
	if !KindI64.Valid() {
		t.Error("KindI64 reports invalid")
	}
	if PrimOpKind(255).Valid() {
		t.Error("PrimOpKind(255) reports valid")
	}
	if KindU8.String() != "u8" {
		t.Errorf("KindU8.String() = %q", KindU8.String())
	}
	if KindI64.Size() != 8 {
		t.Errorf("KindI64.Size() = %d, want 8", KindI64.Size())
	}
}
