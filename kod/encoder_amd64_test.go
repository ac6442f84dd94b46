//go:build amd64

/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package kod

import "testing"

func TestMovRegRegSameRegisterEmitsNothing(t *testing.T) {
	a := NewAssembler()
	a.Mov(Reg(RAX), Reg(RAX))
	if len(a.Buf) != 0 {
		t.Errorf("Mov(RAX, RAX) emitted %d bytes, want 0", len(a.Buf))
	}
}

func TestMovRegRegDistinctRegisters(t *testing.T) {
	a := NewAssembler()
	a.Mov(Reg(RBX), Reg(RAX))
	if len(a.Buf) == 0 {
		t.Fatal("Mov(RBX, RAX) emitted no bytes")
	}
}

func TestMovRegImmZeroUsesXor(t *testing.T) {
	a := NewAssembler()
	a.Mov(Reg(RAX), Imm(0))
	// xor r32, r32 (0x31) implicitly zeroes the full 64-bit register, so no
	// REX prefix is needed for a low register operand.
	if len(a.Buf) != 2 || a.Buf[0] != 0x31 {
		t.Errorf("Mov(RAX, 0) = % x, want 31 /r with no REX prefix", a.Buf)
	}
}

func TestEncodeModRMMemRBPZeroDispForcesDisp8(t *testing.T) {
	a := NewAssembler()
	a.Mov(Reg(RAX), Mem(RBP, 0))
	// mod=00 with rm=101 (RBP/R13) means RIP-relative on real hardware, so a
	// zero-displacement access to RBP/R13 must be encoded as mod=01 disp8=0
	// instead of mod=00.
	modByte := a.Buf[len(a.Buf)-2]
	mod := modByte >> 6
	if mod != 1 {
		t.Errorf("ModR/M mod field = %d, want 1 (disp8) for zero-disp RBP base", mod)
	}
}

func TestEncodeModRMMemRAXZeroDispUsesModZero(t *testing.T) {
	a := NewAssembler()
	a.Mov(Reg(RCX), Mem(RAX, 0))
	modByte := a.Buf[len(a.Buf)-1]
	mod := modByte >> 6
	if mod != 0 {
		t.Errorf("ModR/M mod field = %d, want 0 for zero-disp RAX base", mod)
	}
}

func TestRexOmittedWhenNoExtensionNeeded(t *testing.T) {
	a := NewAssembler()
	a.Push(Reg(RAX))
	if len(a.Buf) != 1 {
		t.Errorf("Push(RAX) = % x, want a single opcode byte (no REX)", a.Buf)
	}
}

func TestRexEmittedForExtendedRegister(t *testing.T) {
	a := NewAssembler()
	a.Push(Reg(R8))
	if len(a.Buf) != 2 {
		t.Errorf("Push(R8) = % x, want REX.B + opcode", a.Buf)
	}
}

func TestPushPopRoundTripLength(t *testing.T) {
	a := NewAssembler()
	a.Push(Reg(RAX))
	a.Pop(Reg(RBX))
	if len(a.Buf) != 2 {
		t.Errorf("Push+Pop of low registers = % x, want 2 bytes total", a.Buf)
	}
}

func TestCmpRegImmPrefersByteForm(t *testing.T) {
	a := NewAssembler()
	a.CmpRegImm(RAX, 5)
	if a.Buf[len(a.Buf)-3] != 0x83 {
		t.Errorf("CmpRegImm(RAX, 5) did not use the 8-bit immediate opcode form")
	}
}

func TestCmpRegImmWidensForLargeValue(t *testing.T) {
	a := NewAssembler()
	a.CmpRegImm(RAX, 1000000)
	found := false
	for _, b := range a.Buf {
		if b == 0x81 {
			found = true
		}
	}
	if !found {
		t.Error("CmpRegImm with a large immediate did not use the 32-bit opcode form")
	}
}

func TestJmp32PlaceholderWritesDeadbeef(t *testing.T) {
	a := NewAssembler()
	end := a.Jmp32Placeholder()
	if end != a.Len() {
		t.Fatalf("Jmp32Placeholder returned %d, Len() = %d", end, a.Len())
	}
	if a.Buf[1] != 0xEF || a.Buf[2] != 0xBE || a.Buf[3] != 0xAD || a.Buf[4] != 0xDE {
		t.Errorf("Jmp32Placeholder did not write the little-endian 0xDEADBEEF sentinel: % x", a.Buf)
	}
}
