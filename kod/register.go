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

// Register is the closed 32-value enumeration from SPEC_FULL.md §3: 16
// general-purpose integer registers followed by 16 SIMD registers, each
// carrying a dense 4-bit hardware index. Indices 8..15 within either half
// require the REX prefix's extension bits.
type Register uint8

const (
	RAX Register = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

const xmmBase Register = 16

const (
	XMM0 Register = xmmBase + iota
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
	XMM8
	XMM9
	XMM10
	XMM11
	XMM12
	XMM13
	XMM14
	XMM15
)

// Index returns the register's 4-bit hardware index (0..15), independent of
// its integer/float class.
func (r Register) Index() byte {
	return byte(r) & 0xF
}

// IsFloat reports whether r names one of the 16 SIMD registers.
func (r Register) IsFloat() bool {
	return r >= xmmBase
}

// NeedsRexExtension reports whether referencing r requires setting the
// corresponding REX extension bit (R, X, or B depending on position).
func (r Register) NeedsRexExtension() bool {
	return r.Index() >= 8
}

// OperandKind is the tag of the Operand sum type (SPEC_FULL.md §3).
type OperandKind int

const (
	OpKindReg OperandKind = iota
	OpKindMem
	OpKindImm
)

// Operand is the sum of the three operand shapes: Register, Memory (base +
// displacement) and Immediate. Only the fields relevant to Kind are
// meaningful, following the tagged-sum discipline used throughout instead of
// one interface per shape.
type Operand struct {
	Kind    OperandKind
	Reg     Register // Register operand, or Memory operand's base
	Disp    int64    // Memory operand's displacement
	Imm     uint64   // Immediate operand's value, little-endian at encode time
	IsFloat bool     // Register operand: redundant float-class flag (§3)
}

// Reg builds a register operand.
func Reg(r Register) Operand {
	return Operand{Kind: OpKindReg, Reg: r, IsFloat: r.IsFloat()}
}

// Mem builds a memory operand: [base + disp].
func Mem(base Register, disp int64) Operand {
	return Operand{Kind: OpKindMem, Reg: base, Disp: disp}
}

// Imm builds an immediate operand from a raw bit pattern.
func Imm(v uint64) Operand {
	return Operand{Kind: OpKindImm, Imm: v}
}

// ImmI builds an immediate operand from a signed value, bit-reinterpreted.
func ImmI(v int64) Operand {
	return Imm(uint64(v))
}

// Equal reports whether two operands name the same location — used by the
// peephole optimizer to detect `Push(r); Pop(r)` on the identical operand.
func (o Operand) Equal(other Operand) bool {
	return o.Kind == other.Kind && o.Reg == other.Reg && o.Disp == other.Disp && o.Imm == other.Imm
}

// Cond is the closed condition-code enumeration; its value is the low nibble
// of the corresponding Jcc/SETcc/CMOVcc opcode (SPEC_FULL.md §4.1).
type Cond uint8

const (
	CondOverflow       Cond = 0x0
	CondNotOverflow    Cond = 0x1
	CondBelow          Cond = 0x2 // UnsignedLessThan
	CondAboveOrEqual   Cond = 0x3
	CondEqual          Cond = 0x4
	CondNotEqual       Cond = 0x5
	CondBelowOrEqual   Cond = 0x6
	CondAbove          Cond = 0x7 // UnsignedGreaterThan
	CondSign           Cond = 0x8
	CondNotSign        Cond = 0x9
	CondParityEven     Cond = 0xA // Unordered
	CondParityOdd      Cond = 0xB
	CondLess           Cond = 0xC
	CondGreaterOrEqual Cond = 0xD
	CondLessOrEqual    Cond = 0xE
	CondGreater        Cond = 0xF
)
