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

func TestPeepholeFoldsMovPushPop(t *testing.T) {
	in := &InstBuffer{Insts: []Inst{
		{Kind: InstMov, Dst: Reg(RAX), Src: Imm(7), BytecodeOffset: 0},
		{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: 0},
		{Kind: InstPop, Op: Reg(RBX), BytecodeOffset: 1},
	}}
	out := Peephole(in)
	if len(out.Insts) != 1 {
		t.Fatalf("len(out.Insts) = %d, want 1", len(out.Insts))
	}
	got := out.Insts[0]
	if got.Kind != InstMov || got.Dst.Reg != RBX || got.Src.Imm != 7 {
		t.Errorf("folded instruction = %+v, want Mov(RBX, Imm(7))", got)
	}
}

func TestPeepholeElidesPushPopSameOperand(t *testing.T) {
	in := &InstBuffer{Insts: []Inst{
		{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: 0},
		{Kind: InstPop, Op: Reg(RAX), BytecodeOffset: 0},
		{Kind: InstExit, BytecodeOffset: 1},
	}}
	out := Peephole(in)
	if len(out.Insts) != 1 || out.Insts[0].Kind != InstExit {
		t.Fatalf("out.Insts = %+v, want just the Exit instruction", out.Insts)
	}
}

func TestPeepholeDoesNotFoldAcrossJumpTarget(t *testing.T) {
	// The Push lands on bytecode offset 1, which some jump targets — folding
	// it away would make that jump unresolvable.
	in := &InstBuffer{Insts: []Inst{
		{Kind: InstMov, Dst: Reg(RAX), Src: Imm(7), BytecodeOffset: 0},
		{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: 1},
		{Kind: InstPop, Op: Reg(RBX), BytecodeOffset: 2},
		{Kind: InstJumpBytecode, TargetBC: 1, BytecodeOffset: 3},
	}}
	out := Peephole(in)
	if len(out.Insts) != 4 {
		t.Fatalf("len(out.Insts) = %d, want 4 (no folding across a jump target)", len(out.Insts))
	}
}

func TestPeepholeDoesNotElidePushPopAcrossJumpTarget(t *testing.T) {
	in := &InstBuffer{Insts: []Inst{
		{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: 0},
		{Kind: InstPop, Op: Reg(RAX), BytecodeOffset: 0},
		{Kind: InstJumpBytecode, TargetBC: 0, BytecodeOffset: 1},
	}}
	out := Peephole(in)
	if len(out.Insts) != 3 {
		t.Fatalf("len(out.Insts) = %d, want 3 (Push/Pop at a jump target must survive)", len(out.Insts))
	}
}

func TestPeepholeDoesNotFoldWhenMovSourceAliasesPushedRegister(t *testing.T) {
	// Mov(RAX, [RAX+0]); Push(RAX); Pop(RBX) must not fold, since folding
	// would need to read [RAX+0] after RBX may have clobbered RAX — except
	// here the hazard is the reverse: the fold's precondition specifically
	// guards against a.Src using a.Dst as its own memory base.
	in := &InstBuffer{Insts: []Inst{
		{Kind: InstMov, Dst: Reg(RAX), Src: Mem(RAX, 0), BytecodeOffset: 0},
		{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: 0},
		{Kind: InstPop, Op: Reg(RBX), BytecodeOffset: 1},
	}}
	out := Peephole(in)
	if len(out.Insts) != 3 {
		t.Fatalf("len(out.Insts) = %d, want 3 (unsafe fold must not happen)", len(out.Insts))
	}
}
