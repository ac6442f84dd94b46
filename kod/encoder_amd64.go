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

import "encoding/binary"

// Assembler emits individual x86-64 instructions as bytes into a growable
// buffer. It owns no label state (that's LabelTable, label.go) and no
// knowledge of bytecode (that's the lowerer, lowerer_amd64.go) — it only
// knows how to turn one instruction's operands into the correct byte
// sequence, which is what makes the "encoding idempotence" testable property
// true: there is no hidden state beyond the growing buffer itself.
type Assembler struct {
	Buf []byte
}

// NewAssembler returns an empty encoder.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Len returns the current buffer length, i.e. the native offset the next
// emitted byte will land at.
func (a *Assembler) Len() int32 {
	return int32(len(a.Buf))
}

func (a *Assembler) emit(b ...byte) {
	a.Buf = append(a.Buf, b...)
}

func (a *Assembler) emitU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	a.Buf = append(a.Buf, tmp[:]...)
}

func (a *Assembler) emitU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	a.Buf = append(a.Buf, tmp[:]...)
}

// rexByte packs the REX prefix: 0100 | W | R | X | B.
func rexByte(w, r, x, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 1 << 3
	}
	if r {
		v |= 1 << 2
	}
	if x {
		v |= 1 << 1
	}
	if b {
		v |= 1
	}
	return v
}

// emitRex applies REX economy: the prefix is only emitted if W is requested
// or one of the extension bits is set. Never emitted speculatively.
func (a *Assembler) emitRex(w, r, x, b bool) {
	if w || r || x || b {
		a.emit(rexByte(w, r, x, b))
	}
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | (rm & 7)
}

// encodeModRMMem encodes a memory operand's ModR/M byte (and displacement, if
// any) with the given reg-field value. SIB addressing is out of scope (§3:
// "X is set (SIB index, not used in this core)"), so base must not be
// RSP/R12 — both require a SIB byte on real hardware and the lowerer never
// generates such an operand.
func (a *Assembler) encodeModRMMem(regField byte, base Register, disp int64) {
	rm := base.Index() & 7
	mustUseDisp8ForZero := base == RBP || base == R13
	switch {
	case disp == 0 && !mustUseDisp8ForZero:
		a.emit(modrm(0, regField, rm))
	case disp >= -128 && disp <= 127:
		a.emit(modrm(1, regField, rm))
		a.emit(byte(int8(disp)))
	default:
		a.emit(modrm(2, regField, rm))
		a.emitU32(uint32(int32(disp)))
	}
}

// Mov implements all four operand-shape combinations used by the lowerer.
// Register-to-register mov of identical hardware registers emits nothing.
func (a *Assembler) Mov(dst, src Operand) {
	switch {
	case dst.Kind == OpKindReg && src.Kind == OpKindReg:
		if dst.Reg == src.Reg {
			return
		}
		a.emitRex(true, src.Reg.NeedsRexExtension(), false, dst.Reg.NeedsRexExtension())
		a.emit(0x89)
		a.emit(modrm(3, src.Reg.Index()&7, dst.Reg.Index()&7))
	case dst.Kind == OpKindReg && src.Kind == OpKindImm:
		a.movRegImm(dst.Reg, src.Imm)
	case dst.Kind == OpKindReg && src.Kind == OpKindMem:
		a.emitRex(true, dst.Reg.NeedsRexExtension(), false, src.Reg.NeedsRexExtension())
		a.emit(0x8B)
		a.encodeModRMMem(dst.Reg.Index()&7, src.Reg, src.Disp)
	case dst.Kind == OpKindMem && src.Kind == OpKindReg:
		a.emitRex(true, src.Reg.NeedsRexExtension(), false, dst.Reg.NeedsRexExtension())
		a.emit(0x89)
		a.encodeModRMMem(src.Reg.Index()&7, dst.Reg, dst.Disp)
	default:
		panic("kod: unsupported mov operand combination")
	}
}

// movRegImm implements the three-case immediate rule from SPEC_FULL.md §4.1.
func (a *Assembler) movRegImm(dst Register, imm uint64) {
	switch {
	case imm == 0:
		a.emitRex(false, dst.NeedsRexExtension(), false, dst.NeedsRexExtension())
		a.emit(0x31) // xor r/m32, r32 — a 32-bit write zeroes the full register
		a.emit(modrm(3, dst.Index()&7, dst.Index()&7))
	case imm <= 0xFFFFFFFF:
		a.emitRex(false, false, false, dst.NeedsRexExtension())
		a.emit(0xB8 + dst.Index()&7)
		a.emitU32(uint32(imm))
	default:
		a.emitRex(true, false, false, dst.NeedsRexExtension())
		a.emit(0xB8 + dst.Index()&7)
		a.emitU64(imm)
	}
}

// Push encodes a register or immediate push.
func (a *Assembler) Push(op Operand) {
	switch op.Kind {
	case OpKindReg:
		a.emitRex(false, false, false, op.Reg.NeedsRexExtension())
		a.emit(0x50 + op.Reg.Index()&7)
	case OpKindImm:
		v := int64(op.Imm)
		if v >= -128 && v <= 127 {
			a.emit(0x6A)
			a.emit(byte(int8(v)))
		} else if v >= -1<<31 && v <= 1<<31-1 {
			a.emit(0x68)
			a.emitU32(uint32(int32(v)))
		} else {
			panic("kod: push immediate does not fit a sign-extended 32-bit field")
		}
	default:
		panic("kod: push requires a register or immediate operand")
	}
}

// Pop encodes a register pop.
func (a *Assembler) Pop(op Operand) {
	if op.Kind != OpKindReg {
		panic("kod: pop requires a register operand")
	}
	a.emitRex(false, false, false, op.Reg.NeedsRexExtension())
	a.emit(0x58 + op.Reg.Index()&7)
}

// Add computes dst += src on 64-bit general-purpose registers.
func (a *Assembler) Add(dst, src Register) {
	a.emitRex(true, src.NeedsRexExtension(), false, dst.NeedsRexExtension())
	a.emit(0x01)
	a.emit(modrm(3, src.Index()&7, dst.Index()&7))
}

// And computes dst &= src on 64-bit general-purpose registers — used by the
// lowerer to re-tag BINARY_ADD's fast-path sum as Int by masking its high 16
// bits to zero (lowerer_amd64.go's emitIntFastSlowPathBinary).
func (a *Assembler) And(dst, src Register) {
	a.emitRex(true, src.NeedsRexExtension(), false, dst.NeedsRexExtension())
	a.emit(0x21)
	a.emit(modrm(3, src.Index()&7, dst.Index()&7))
}

// CmpRegImm compares a 64-bit register against an immediate (`cmp r, imm`),
// preferring the 8-bit sign-extended immediate form when it fits.
func (a *Assembler) CmpRegImm(r Register, imm int64) {
	a.emitRex(true, false, false, r.NeedsRexExtension())
	if imm >= -128 && imm <= 127 {
		a.emit(0x83)
		a.emit(modrm(3, 7, r.Index()&7))
		a.emit(byte(int8(imm)))
	} else {
		a.emit(0x81)
		a.emit(modrm(3, 7, r.Index()&7))
		a.emitU32(uint32(int32(imm)))
	}
}

// Shr computes r >>= imm8 (logical, zero-filled — §3 pins shift fill to
// zero).
func (a *Assembler) Shr(r Register, imm8 uint8) {
	a.emitRex(true, false, false, r.NeedsRexExtension())
	a.emit(0xC1)
	a.emit(modrm(3, 5, r.Index()&7))
	a.emit(imm8)
}

// Jmp32Placeholder emits an unconditional near jump with a 4-byte
// 0xDEADBEEF placeholder and returns the slot-end offset (the position right
// after the placeholder) for registration with a Label.
func (a *Assembler) Jmp32Placeholder() int32 {
	a.emit(0xE9)
	a.emitU32(0xDEADBEEF)
	return a.Len()
}

// JccPlaceholder emits a conditional near jump (0F 8c cd) with the same
// placeholder policy as Jmp32Placeholder.
func (a *Assembler) JccPlaceholder(cond Cond) int32 {
	a.emit(0x0F, 0x80|byte(cond))
	a.emitU32(0xDEADBEEF)
	return a.Len()
}

// shadowSpace is the Windows x64 ABI's mandatory 32-byte reservation below
// the return address, reserved by the caller before a call even when the
// callee takes fewer than four arguments.
const shadowSpace = 0x20

// subRSP32 emits `sub rsp, shadowSpace` (REX.W 83 /5 ib).
func (a *Assembler) subRSP32() {
	a.emitRex(true, false, false, false)
	a.emit(0x83, modrm(3, 5, RSP.Index()&7), shadowSpace)
}

// addRSP32 emits `add rsp, shadowSpace` (REX.W 83 /0 ib).
func (a *Assembler) addRSP32() {
	a.emitRex(true, false, false, false)
	a.emit(0x83, modrm(3, 0, RSP.Index()&7), shadowSpace)
}

// CallAbsolute materializes addr into scratch and calls through it
// (`mov scratch, addr; call scratch`) — x86-64 has no direct CALL imm64 form.
// The call crosses into Windows x64 ABI code (the runtime trampolines), so
// every call reserves and releases the mandatory 32-byte shadow space around
// it.
func (a *Assembler) CallAbsolute(scratch Register, addr uint64) {
	a.subRSP32()
	a.Mov(Reg(scratch), Imm(addr))
	a.emitRex(true, false, false, scratch.NeedsRexExtension())
	a.emit(0xFF)
	a.emit(modrm(3, 2, scratch.Index()&7))
	a.addRSP32()
}

// Ret emits a bare return.
func (a *Assembler) Ret() {
	a.emit(0xC3)
}

// RetPop emits a return that additionally pops n bytes off the stack.
func (a *Assembler) RetPop(n uint16) {
	a.emit(0xC2)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], n)
	a.emit(tmp[:]...)
}

// Enter pushes BP and moves SP into BP — the function prologue.
func (a *Assembler) Enter() {
	a.Push(Reg(RBP))
	a.Mov(Reg(RBP), Reg(RSP))
}

// Exit emits `leave; ret` — the function epilogue. Saving callee-saved
// registers is offered separately (PushCalleeSaved/PopCalleeSaved) but the
// lowerer does not currently call them (open question, documented not
// fixed — SPEC_FULL.md §4.1).
func (a *Assembler) Exit() {
	a.emit(0xC9) // leave
	a.emit(0xC3) // ret
}

// PushCalleeSaved and PopCalleeSaved save/restore RBX, RSI, RDI, R12-R15 —
// offered for a future lowerer that needs more than the scratch registers
// it currently uses, unused by lowerer_amd64.go today.
func (a *Assembler) PushCalleeSaved() {
	for _, r := range []Register{RBX, RSI, RDI, R12, R13, R14, R15} {
		a.Push(Reg(r))
	}
}

func (a *Assembler) PopCalleeSaved() {
	regs := []Register{RBX, RSI, RDI, R12, R13, R14, R15}
	for i := len(regs) - 1; i >= 0; i-- {
		a.Pop(Reg(regs[i]))
	}
}

// AddSD/SubSD/UComISD are the SSE2 scalar double forms mentioned in §4.1;
// the JIT subset's lowerer does not emit floats today (BINARY_ADD's fast
// path is integer-only) but the encoder must still uphold the mandatory
// prefix ordering so direct encoder tests can exercise it.
func (a *Assembler) AddSD(dst, src Register) {
	a.emit(0xF2)
	a.emitRex(false, dst.NeedsRexExtension(), false, src.NeedsRexExtension())
	a.emit(0x0F, 0x58)
	a.emit(modrm(3, dst.Index()&7, src.Index()&7))
}

func (a *Assembler) SubSD(dst, src Register) {
	a.emit(0xF2)
	a.emitRex(false, dst.NeedsRexExtension(), false, src.NeedsRexExtension())
	a.emit(0x0F, 0x5C)
	a.emit(modrm(3, dst.Index()&7, src.Index()&7))
}

func (a *Assembler) UComISD(a1, a2 Register) {
	a.emit(0x66)
	a.emitRex(false, a1.NeedsRexExtension(), false, a2.NeedsRexExtension())
	a.emit(0x0F, 0x2E)
	a.emit(modrm(3, a1.Index()&7, a2.Index()&7))
}
