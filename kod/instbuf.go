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

// InstKind enumerates the pseudo-instruction kinds from SPEC_FULL.md §3. A
// single tagged struct carries the union of every kind's fields, dispatched
// through one type switch at lowering time — not a family of interfaces with
// per-kind optional methods (SPEC_FULL.md Design Notes item 1).
type InstKind int

const (
	InstMov InstKind = iota
	InstPush
	InstPop
	InstJumpBytecode
	InstJumpBytecodeIfCmp
	InstExit
	InstCall
	InstShr
	InstIntFastSlowPathBinary
)

// Inst is one pseudo-instruction: a kind tag, the operand tuple required to
// emit it, the source bytecode offset it corresponds to, a native byte
// offset filled in during emission (pass 1 of lowerer_amd64.go), and an
// optional owned label: a JumpBytecode* instruction registers its own
// displacement slot with it, and pass 2 binds it to the jump's target.
type Inst struct {
	Kind InstKind

	// Mov
	Dst, Src Operand

	// Push / Pop
	Op Operand

	// Shr
	ShrReg Register
	ShrImm uint8

	// JumpBytecode / JumpBytecodeIfCmp
	TargetBC int32
	Cond     Cond
	CmpLHS   Operand
	CmpRHS   Operand

	// Call
	CalleeAddr uint64
	CalleeName string // diagnostic only

	// IntFastSlowPathBinary
	VMPtr         uint64
	SlowHelperPtr uint64

	BytecodeOffset int32 // offset into the source Code.Bytes this instruction implements
	NativeOffset   int32 // filled during pass 1 emission
	OwnLabel       int32 // -1 unless this is a JumpBytecode* with a label for its own slot
}

// InstBuffer is the linear sequence of pseudo-instructions the optimizer and
// the lowerer operate on; raw machine bytes come later, from emission.
type InstBuffer struct {
	Insts []Inst
}

// Append adds an instruction and returns its index.
func (b *InstBuffer) Append(in Inst) int {
	b.Insts = append(b.Insts, in)
	return len(b.Insts) - 1
}

// JumpTargets returns the set of bytecode offsets that appear as the target
// of some JumpBytecode/JumpBytecodeIfCmp instruction in the buffer — used by
// the peephole optimizer to avoid folding across a jump landing point. Pass 2
// of the lowerer resolves labels through its own bytecode-to-native map.
func (b *InstBuffer) JumpTargets() map[int32]bool {
	targets := make(map[int32]bool)
	for _, in := range b.Insts {
		if in.Kind == InstJumpBytecode || in.Kind == InstJumpBytecodeIfCmp {
			targets[in.TargetBC] = true
		}
	}
	return targets
}
