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

import "fmt"

// buildInstructions walks code's opcode stream and produces the pseudo-
// instruction buffer for the nine-opcode JIT subset (SPEC_FULL.md §4.5).
// Encountering an opcode outside the subset is returned as an error, not a
// panic — the caller (driver.go, §4.8) decides whether to fall back to the
// direct interpreter for the whole code object.
func buildInstructions(vm *VM, code *Code) (*InstBuffer, error) {
	buf := &InstBuffer{}
	vmPtr := vm.vmPtr()

	offset := 0
	for offset < len(code.Bytes) {
		op := Opcode(code.Bytes[offset])
		if !op.InJITSubset() {
			return nil, fmt.Errorf("kod: opcode %s is outside the JIT subset", op.Name())
		}
		bcOff := int32(offset)

		switch op {
		case OpLoadConst:
			idx := code.ReadOperand(offset)
			tagged, err := vm.MaterializeConstant(idx)
			if err != nil {
				return nil, err
			}
			// x86-64 has no push imm64, so the full tagged word goes through RAX.
			buf.Append(movImm(RAX, uint64(tagged), bcOff))
			buf.Append(Inst{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			offset += 5

		case OpLoadName:
			idx := code.ReadOperand(offset)
			buf.Append(movImm(RCX, vmPtr, bcOff))
			buf.Append(movImm(RDX, uint64(idx), bcOff))
			buf.Append(Inst{Kind: InstCall, CalleeAddr: trampolineAddr(trampolineLoadName), CalleeName: "load_name", BytecodeOffset: bcOff, OwnLabel: -1})
			buf.Append(Inst{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			offset += 5

		case OpStoreName:
			idx := code.ReadOperand(offset)
			buf.Append(Inst{Kind: InstPop, Op: Reg(R8), BytecodeOffset: bcOff, OwnLabel: -1})
			buf.Append(movImm(RCX, vmPtr, bcOff))
			buf.Append(movImm(RDX, uint64(idx), bcOff))
			buf.Append(Inst{Kind: InstCall, CalleeAddr: trampolineAddr(trampolineStoreName), CalleeName: "store_name", BytecodeOffset: bcOff, OwnLabel: -1})
			offset += 5

		case OpPopTop:
			buf.Append(Inst{Kind: InstPop, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			offset++

		case OpReturn:
			buf.Append(Inst{Kind: InstPop, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			buf.Append(Inst{Kind: InstExit, BytecodeOffset: bcOff, OwnLabel: -1})
			offset++

		case OpBinaryAdd:
			buf.Append(Inst{Kind: InstPop, Op: Reg(R8), BytecodeOffset: bcOff, OwnLabel: -1})  // rhs
			buf.Append(Inst{Kind: InstPop, Op: Reg(RDX), BytecodeOffset: bcOff, OwnLabel: -1}) // lhs
			buf.Append(Inst{
				Kind:          InstIntFastSlowPathBinary,
				VMPtr:         vmPtr,
				SlowHelperPtr: trampolineAddr(trampolineRustAdd),
				BytecodeOffset: bcOff,
				OwnLabel:      -1,
			})
			buf.Append(Inst{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			offset++

		case OpBinaryBooleanLessThan:
			buf.Append(Inst{Kind: InstPop, Op: Reg(R8), BytecodeOffset: bcOff, OwnLabel: -1})  // rhs
			buf.Append(Inst{Kind: InstPop, Op: Reg(RDX), BytecodeOffset: bcOff, OwnLabel: -1}) // lhs
			buf.Append(movImm(RCX, vmPtr, bcOff))
			buf.Append(Inst{Kind: InstCall, CalleeAddr: trampolineAddr(trampolineRustLt), CalleeName: "rust_lt", BytecodeOffset: bcOff, OwnLabel: -1})
			buf.Append(Inst{Kind: InstPush, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			offset++

		case OpJump:
			target := int32(code.ReadOperand(offset))
			buf.Append(Inst{Kind: InstJumpBytecode, TargetBC: target, BytecodeOffset: bcOff, OwnLabel: -1})
			offset += 5

		case OpPopJumpIfFalse:
			target := int32(code.ReadOperand(offset))
			buf.Append(Inst{Kind: InstPop, Op: Reg(RAX), BytecodeOffset: bcOff, OwnLabel: -1})
			buf.Append(Inst{
				Kind:     InstJumpBytecodeIfCmp,
				Cond:     CondEqual, // falsy <=> raw word == 0, see Object.Truthy
				CmpLHS:   Reg(RAX),
				CmpRHS:   Imm(0),
				TargetBC: target,
				BytecodeOffset: bcOff,
				OwnLabel: -1,
			})
			offset += 5

		default:
			return nil, fmt.Errorf("kod: opcode %s has no lowering defined", op.Name())
		}
	}
	return buf, nil
}

func movImm(dst Register, v uint64, bcOff int32) Inst {
	return Inst{Kind: InstMov, Dst: Reg(dst), Src: Imm(v), BytecodeOffset: bcOff, OwnLabel: -1}
}

// LowerAndEmit runs the full pipeline for one code object: build pseudo-
// instructions, run the peephole optimizer, then the two-pass emission
// (SPEC_FULL.md §4.5). It returns the finished native byte buffer, ready for
// Commit (execmem.go).
func LowerAndEmit(vm *VM, code *Code) ([]byte, error) {
	raw, err := buildInstructions(vm, code)
	if err != nil {
		return nil, err
	}
	optimized := Peephole(raw)
	return emitTwoPass(optimized)
}

// emitTwoPass implements SPEC_FULL.md §4.5's two-pass emission: pass 1
// encodes every pseudo-instruction in order while recording native offsets;
// pass 2 resolves every JumpBytecode/JumpBytecodeIfCmp by looking up the
// native offset of the instruction whose bytecode offset equals the target.
func emitTwoPass(buf *InstBuffer) ([]byte, error) {
	asm := NewAssembler()
	labels := NewLabelTable()
	bcToNative := make(map[int32]int32)

	asm.Enter()

	type pendingJump struct {
		labelID  int32
		targetBC int32
	}
	var pending []pendingJump

	for i := range buf.Insts {
		in := &buf.Insts[i]
		in.NativeOffset = asm.Len()
		if _, seen := bcToNative[in.BytecodeOffset]; !seen {
			bcToNative[in.BytecodeOffset] = in.NativeOffset
		}

		switch in.Kind {
		case InstMov:
			asm.Mov(in.Dst, in.Src)
		case InstPush:
			asm.Push(in.Op)
		case InstPop:
			asm.Pop(in.Op)
		case InstShr:
			asm.Shr(in.ShrReg, in.ShrImm)
		case InstExit:
			asm.Exit()
		case InstCall:
			asm.CallAbsolute(R11, in.CalleeAddr)
		case InstIntFastSlowPathBinary:
			emitIntFastSlowPathBinary(asm, *in)
		case InstJumpBytecode:
			id := labels.New()
			in.OwnLabel = id
			slotEnd := asm.Jmp32Placeholder()
			labels.AddJump(asm.Buf, id, slotEnd)
			pending = append(pending, pendingJump{id, in.TargetBC})
		case InstJumpBytecodeIfCmp:
			asm.CmpRegImm(in.CmpLHS.Reg, int64(in.CmpRHS.Imm))
			id := labels.New()
			in.OwnLabel = id
			slotEnd := asm.JccPlaceholder(in.Cond)
			labels.AddJump(asm.Buf, id, slotEnd)
			pending = append(pending, pendingJump{id, in.TargetBC})
		default:
			return nil, fmt.Errorf("kod: unhandled pseudo-instruction kind %d", in.Kind)
		}
	}

	for _, pj := range pending {
		target, ok := bcToNative[pj.targetBC]
		if !ok {
			return nil, fmt.Errorf("kod: jump target bytecode offset %d does not begin any lowered instruction", pj.targetBC)
		}
		labels.Bind(asm.Buf, pj.labelID, target)
	}

	if !labels.CheckAllBound() {
		panic("kod: unbound label at commit time")
	}

	return asm.Buf, nil
}

// emitIntFastSlowPathBinary lowers the IntFastSlowPathBinary pseudo-
// instruction: BINARY_ADD's fast/slow path (SPEC_FULL.md §4.5). rhs is in
// R8, lhs in RDX — which happen to already sit in the Windows-ABI arg2/arg3
// registers rust_add(vm, lhs, rhs) expects, so the slow path only needs to
// set up RCX.
//
// The fast path re-tags its result as Int by masking the high 16 bits to
// zero (TagInt == 0), fixing the bug SPEC_FULL.md §4.5 requires fixed: the
// original left the fast-path sum untagged.
func emitIntFastSlowPathBinary(asm *Assembler, in Inst) {
	asm.Mov(Reg(RAX), Reg(RDX))
	asm.Shr(RAX, 48)
	asm.Mov(Reg(RBX), Reg(R8))
	asm.Shr(RBX, 48)

	asm.CmpRegImm(RAX, int64(TagInt))
	toSlowLHS := asm.JccPlaceholder(CondNotEqual)
	asm.CmpRegImm(RBX, int64(TagInt))
	toSlowRHS := asm.JccPlaceholder(CondNotEqual)

	// fast path
	asm.Add(R8, RDX)
	asm.Mov(Reg(R9), Imm(payloadMask))
	asm.And(R8, R9)
	asm.Mov(Reg(RAX), Reg(R8))
	toEnd := asm.Jmp32Placeholder()

	slowOffset := asm.Len()
	asm.Mov(Reg(RCX), Imm(in.VMPtr))
	asm.CallAbsolute(R11, in.SlowHelperPtr)

	endOffset := asm.Len()

	patchSlot(asm.Buf, toSlowLHS, slowOffset)
	patchSlot(asm.Buf, toSlowRHS, slowOffset)
	patchSlot(asm.Buf, toEnd, endOffset)
}
