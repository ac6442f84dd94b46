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

// Peephole runs the single forward scan over in, rewriting the two windows
// required by SPEC_FULL.md §4.4:
//
//	Mov(r, s); Push(r); Pop(d)  ->  Mov(d, s)      (r a register, r not s's base)
//	Push(r); Pop(r)             ->  (deleted)       (identical operand)
//
// Neither rewrite is allowed to cross a jump-landing point: a window is
// skipped whenever any instruction it would consume — other than the very
// last one folded into the replacement — has a bytecode offset that some
// JumpBytecode/JumpBytecodeIfCmp elsewhere in the buffer targets. This is a
// hard correctness requirement (SPEC_FULL.md resolves the open question the
// original code left as a latent bug): deleting or merging an instruction
// that a jump lands on would make that jump unresolvable in pass 2.
func Peephole(in *InstBuffer) *InstBuffer {
	targets := in.JumpTargets()
	out := &InstBuffer{}
	insts := in.Insts

	i := 0
	for i < len(insts) {
		if i+2 < len(insts) {
			a, b, c := insts[i], insts[i+1], insts[i+2]
			if movPushPopFoldable(a, b, c, targets) {
				out.Append(Inst{
					Kind:           InstMov,
					Dst:            c.Op,
					Src:            a.Src,
					BytecodeOffset: c.BytecodeOffset,
					NativeOffset:   a.NativeOffset,
					OwnLabel:       c.OwnLabel,
				})
				i += 3
				continue
			}
		}
		if i+1 < len(insts) {
			a, b := insts[i], insts[i+1]
			if pushPopElidable(a, b, targets) {
				i += 2
				continue
			}
		}
		out.Append(insts[i])
		i++
	}
	return out
}

// movPushPopFoldable checks the `Mov(r,s); Push(r); Pop(d)` precondition:
// b pushes exactly the register a just moved into, and that register is not
// s's memory base (folding would then read s after d may have overwritten
// its base register).
func movPushPopFoldable(a, b, c Inst, targets map[int32]bool) bool {
	if a.Kind != InstMov || b.Kind != InstPush || c.Kind != InstPop {
		return false
	}
	if a.Dst.Kind != OpKindReg || b.Op.Kind != OpKindReg || b.Op.Reg != a.Dst.Reg {
		return false
	}
	if a.Src.Kind == OpKindMem && a.Src.Reg == a.Dst.Reg {
		return false
	}
	if targets[a.BytecodeOffset] || targets[b.BytecodeOffset] {
		return false
	}
	return true
}

// pushPopElidable checks the `Push(r); Pop(r)` precondition: identical
// operand, and deleting both instructions outright must not erase a
// bytecode offset some jump targets.
func pushPopElidable(a, b Inst, targets map[int32]bool) bool {
	if a.Kind != InstPush || b.Kind != InstPop {
		return false
	}
	if !a.Op.Equal(b.Op) {
		return false
	}
	if targets[a.BytecodeOffset] || targets[b.BytecodeOffset] {
		return false
	}
	return true
}
