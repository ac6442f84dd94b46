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

// Opcode is a single bytecode instruction byte. The enumeration and its byte
// values are an external contract (SPEC_FULL.md §3): the compiler collaborator
// (compiler.go) and the lowerer/interpreter must agree on these exact values.
type Opcode byte

const (
	OpLoadConst Opcode = 0x00
	OpLoadName  Opcode = 0x01
	OpLoadAttr  Opcode = 0x02
	OpLoadMethod Opcode = 0x03

	OpStoreName Opcode = 0x04
	OpStoreAttr Opcode = 0x05

	OpPopTop Opcode = 0x06

	OpUnaryNot    Opcode = 0x07
	OpUnaryNeg    Opcode = 0x08
	OpBinaryAdd   Opcode = 0x09
	OpBinarySub   Opcode = 0x0A
	OpBinaryMul   Opcode = 0x0B
	OpBinaryDiv   Opcode = 0x0C
	OpBinaryMod   Opcode = 0x0D
	OpBinaryAnd   Opcode = 0x0E
	OpBinaryOr    Opcode = 0x0F
	OpBinaryXor   Opcode = 0x10
	OpBinaryShl   Opcode = 0x11
	OpBinaryShr   Opcode = 0x12

	OpBinaryBooleanLessThan      Opcode = 0x13
	OpBinaryBooleanGreaterThan   Opcode = 0x14
	OpBinaryBooleanLessEqual     Opcode = 0x15
	OpBinaryBooleanGreaterEqual  Opcode = 0x16
	OpBinaryBooleanEqual         Opcode = 0x17
	OpBinaryBooleanNotEqual      Opcode = 0x18
	OpBinaryBooleanAnd           Opcode = 0x19
	OpBinaryBooleanOr            Opcode = 0x1A

	OpCall   Opcode = 0x1B
	OpReturn Opcode = 0x1C

	OpJump            Opcode = 0x1D
	OpPopJumpIfFalse  Opcode = 0x1E

	OpBuildTuple Opcode = 0x1F
	OpBuildList  Opcode = 0x20
	OpBuildDict  Opcode = 0x21
	OpListExtend Opcode = 0x22
	OpSubscript  Opcode = 0x23
	OpStoreSubscript Opcode = 0x24

	OpDup       Opcode = 0x25
	OpRotTwo    Opcode = 0x26
	OpLoadNull  Opcode = 0x27
	OpUnpackSequence Opcode = 0x28
)

var opcodeNames = map[Opcode]string{
	OpLoadConst: "LOAD_CONST", OpLoadName: "LOAD_NAME", OpLoadAttr: "LOAD_ATTR",
	OpLoadMethod: "LOAD_METHOD", OpStoreName: "STORE_NAME", OpStoreAttr: "STORE_ATTR",
	OpPopTop: "POP_TOP", OpUnaryNot: "UNARY_NOT", OpUnaryNeg: "UNARY_NEG",
	OpBinaryAdd: "BINARY_ADD", OpBinarySub: "BINARY_SUB", OpBinaryMul: "BINARY_MUL",
	OpBinaryDiv: "BINARY_DIV", OpBinaryMod: "BINARY_MOD", OpBinaryAnd: "BINARY_AND",
	OpBinaryOr: "BINARY_OR", OpBinaryXor: "BINARY_XOR", OpBinaryShl: "BINARY_SHL",
	OpBinaryShr: "BINARY_SHR",
	OpBinaryBooleanLessThan: "BINARY_BOOLEAN_LESS_THAN", OpBinaryBooleanGreaterThan: "BINARY_BOOLEAN_GREATER_THAN",
	OpBinaryBooleanLessEqual: "BINARY_BOOLEAN_LESS_EQUAL", OpBinaryBooleanGreaterEqual: "BINARY_BOOLEAN_GREATER_EQUAL",
	OpBinaryBooleanEqual: "BINARY_BOOLEAN_EQUAL", OpBinaryBooleanNotEqual: "BINARY_BOOLEAN_NOT_EQUAL",
	OpBinaryBooleanAnd: "BINARY_BOOLEAN_AND", OpBinaryBooleanOr: "BINARY_BOOLEAN_OR",
	OpCall: "CALL", OpReturn: "RETURN", OpJump: "JUMP", OpPopJumpIfFalse: "POP_JUMP_IF_FALSE",
	OpBuildTuple: "BUILD_TUPLE", OpBuildList: "BUILD_LIST", OpBuildDict: "BUILD_DICT",
	OpListExtend: "LIST_EXTEND", OpSubscript: "SUBSCRIPT", OpStoreSubscript: "STORE_SUBSCRIPT",
	OpDup: "DUP", OpRotTwo: "ROT_TWO", OpLoadNull: "LOAD_NULL", OpUnpackSequence: "UNPACK_SEQUENCE",
}

// Name returns the opcode's diagnostic name, used in lowerer/interpreter
// error messages. Bytes with no entry in the table read back as "UNKNOWN".
func (op Opcode) Name() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "UNKNOWN"
}

// jitSubset is the documented nine-opcode set the lowerer (lowerer_amd64.go)
// knows how to translate to native code (SPEC_FULL.md §4.5). Anything else in
// a code object forces that whole code object to run under the direct
// interpreter (§4.8) — never a partial JIT compile.
var jitSubset = map[Opcode]bool{
	OpLoadConst: true, OpLoadName: true, OpStoreName: true, OpPopTop: true,
	OpReturn: true, OpBinaryAdd: true, OpBinaryBooleanLessThan: true,
	OpJump: true, OpPopJumpIfFalse: true,
}

// InJITSubset reports whether op is one of the nine opcodes the lowerer can
// translate to native code.
func (op Opcode) InJITSubset() bool {
	return jitSubset[op]
}

// ConstantKind enumerates the constant pool's value shapes.
type ConstantKind int

const (
	ConstNull ConstantKind = iota
	ConstInt
	ConstFloat
	ConstString
	ConstCode
	ConstTuple
)

// Constant is one constant-pool entry. Exactly one of the fields matching
// Kind is meaningful; this mirrors the tagged-sum discipline used throughout
// (SPEC_FULL.md Design Notes) rather than a Go interface per kind.
type Constant struct {
	Kind   ConstantKind
	Int    int64
	Float  float64
	String string
	Code   *Code
	Tuple  []Constant
}

// Code is one compiled function body: a name, its formal parameter names, and
// a flat byte string of opcodes (some followed by a little-endian uint32
// immediate — a pool index or an absolute bytecode offset).
type Code struct {
	Name   string
	Params []string
	Bytes  []byte
}

// Emit appends a bare opcode byte.
func (c *Code) Emit(op Opcode) {
	c.Bytes = append(c.Bytes, byte(op))
}

// EmitWithOperand appends an opcode followed by its 32-bit little-endian
// operand (a pool index or a jump target).
func (c *Code) EmitWithOperand(op Opcode, operand uint32) {
	c.Bytes = append(c.Bytes, byte(op))
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], operand)
	c.Bytes = append(c.Bytes, tmp[:]...)
}

// PatchOperand overwrites the 32-bit operand that follows the opcode byte at
// opcodeOffset — used by the compiler to back-patch forward jump targets once
// they're known.
func (c *Code) PatchOperand(opcodeOffset int, operand uint32) {
	binary.LittleEndian.PutUint32(c.Bytes[opcodeOffset+1:opcodeOffset+5], operand)
}

// ReadOperand reads the 32-bit little-endian operand following the opcode
// byte at offset.
func (c *Code) ReadOperand(offset int) uint32 {
	return binary.LittleEndian.Uint32(c.Bytes[offset+1 : offset+5])
}

// Module is a compiled translation unit: a name, an ordered name pool, an
// ordered constant pool, and an entry code object (SPEC_FULL.md §3/§6).
type Module struct {
	Name         string
	NamePool     []string
	ConstantPool []Constant
	Entry        *Code
}
