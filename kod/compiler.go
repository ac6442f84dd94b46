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

// Compiler lowers an AST (ast.go/parser.go) into the Module bytecode
// contract (bytecode.go). Every name — globals, function parameters, and
// plain assignments alike — shares one flat NamePool; the language has no
// lexical block scoping (SPEC_FULL.md §11 Design Notes: decided as an Open
// Question, a toy language's simplest workable binding model).
type Compiler struct {
	module    *Module
	nameIndex map[string]uint32
}

// NewCompilerForSession returns a Compiler that emits into an
// already-existing module instead of a fresh one, so a REPL session
// (repl.go) can compile one line at a time while accumulating NamePool and
// ConstantPool entries across lines.
func NewCompilerForSession(m *Module) *Compiler {
	idx := make(map[string]uint32, len(m.NamePool))
	for i, n := range m.NamePool {
		idx[n] = uint32(i)
	}
	return &Compiler{module: m, nameIndex: idx}
}

// CompileProgram compiles a parsed program into a ready-to-run Module.
func CompileProgram(name string, program *Node) (*Module, error) {
	c := &Compiler{
		module:    &Module{Name: name},
		nameIndex: make(map[string]uint32),
	}
	entry := &Code{Name: "<module>"}
	if err := c.compileBlock(entry, program); err != nil {
		return nil, err
	}
	entry.Emit(OpLoadNull)
	entry.Emit(OpReturn)
	c.module.Entry = entry
	return c.module, nil
}

func (c *Compiler) nameID(name string) uint32 {
	if idx, ok := c.nameIndex[name]; ok {
		return idx
	}
	idx := uint32(len(c.module.NamePool))
	c.module.NamePool = append(c.module.NamePool, name)
	c.nameIndex[name] = idx
	return idx
}

func (c *Compiler) constID(k Constant) uint32 {
	idx := uint32(len(c.module.ConstantPool))
	c.module.ConstantPool = append(c.module.ConstantPool, k)
	return idx
}

func (c *Compiler) compileBlock(code *Code, block *Node) error {
	for _, stmt := range block.Stmts {
		if err := c.compileStmt(code, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(code *Code, n *Node) error {
	switch n.Kind {
	case NodeExprStmt:
		if err := c.compileExpr(code, n.X); err != nil {
			return err
		}
		code.Emit(OpPopTop)
		return nil

	case NodeAssign:
		if err := c.compileExpr(code, n.Value); err != nil {
			return err
		}
		code.EmitWithOperand(OpStoreName, c.nameID(n.Name))
		return nil

	case NodeReturn:
		if err := c.compileExpr(code, n.Value); err != nil {
			return err
		}
		code.Emit(OpReturn)
		return nil

	case NodeIf:
		return c.compileIf(code, n)

	case NodeWhile:
		return c.compileWhile(code, n)

	case NodeBlock:
		return c.compileBlock(code, n)

	case NodeFuncDecl:
		fnCode := &Code{Name: n.Name, Params: n.Params}
		if err := c.compileBlock(fnCode, n.FnBody); err != nil {
			return err
		}
		fnCode.Emit(OpLoadNull)
		fnCode.Emit(OpReturn)
		idx := c.constID(Constant{Kind: ConstCode, Code: fnCode})
		code.EmitWithOperand(OpLoadConst, idx)
		code.EmitWithOperand(OpStoreName, c.nameID(n.Name))
		return nil

	default:
		return fmt.Errorf("kod: compiler: %d is not a statement", n.Kind)
	}
}

// compileIf emits: Cond; POP_JUMP_IF_FALSE else; Then; JUMP end; else: Else; end:
func (c *Compiler) compileIf(code *Code, n *Node) error {
	if err := c.compileExpr(code, n.Cond); err != nil {
		return err
	}
	jumpToElseAt := len(code.Bytes)
	code.EmitWithOperand(OpPopJumpIfFalse, 0)

	if err := c.compileBlock(code, n.Then); err != nil {
		return err
	}

	if n.Else == nil {
		code.PatchOperand(jumpToElseAt, uint32(len(code.Bytes)))
		return nil
	}

	jumpToEndAt := len(code.Bytes)
	code.EmitWithOperand(OpJump, 0)
	code.PatchOperand(jumpToElseAt, uint32(len(code.Bytes)))

	if n.Else.Kind == NodeIf {
		if err := c.compileIf(code, n.Else); err != nil {
			return err
		}
	} else if err := c.compileBlock(code, n.Else); err != nil {
		return err
	}
	code.PatchOperand(jumpToEndAt, uint32(len(code.Bytes)))
	return nil
}

// compileWhile emits: top: Cond; POP_JUMP_IF_FALSE end; Body; JUMP top; end:
func (c *Compiler) compileWhile(code *Code, n *Node) error {
	top := uint32(len(code.Bytes))
	if err := c.compileExpr(code, n.Cond); err != nil {
		return err
	}
	jumpToEndAt := len(code.Bytes)
	code.EmitWithOperand(OpPopJumpIfFalse, 0)

	if err := c.compileBlock(code, n.Body); err != nil {
		return err
	}
	code.EmitWithOperand(OpJump, top)
	code.PatchOperand(jumpToEndAt, uint32(len(code.Bytes)))
	return nil
}

var binOpcode = map[BinOp]Opcode{
	BinAdd: OpBinaryAdd, BinSub: OpBinarySub, BinMul: OpBinaryMul,
	BinDiv: OpBinaryDiv, BinMod: OpBinaryMod,
	BinAnd: OpBinaryAnd, BinOr: OpBinaryOr, BinXor: OpBinaryXor,
	BinShl: OpBinaryShl, BinShr: OpBinaryShr,
	BinLt: OpBinaryBooleanLessThan, BinGt: OpBinaryBooleanGreaterThan,
	BinLe: OpBinaryBooleanLessEqual, BinGe: OpBinaryBooleanGreaterEqual,
	BinEq: OpBinaryBooleanEqual, BinNe: OpBinaryBooleanNotEqual,
	BinBoolAnd: OpBinaryBooleanAnd, BinBoolOr: OpBinaryBooleanOr,
}

func (c *Compiler) compileExpr(code *Code, n *Node) error {
	switch n.Kind {
	case NodeIntLit:
		code.EmitWithOperand(OpLoadConst, c.constID(Constant{Kind: ConstInt, Int: n.Int}))
	case NodeFloatLit:
		code.EmitWithOperand(OpLoadConst, c.constID(Constant{Kind: ConstFloat, Float: n.Float}))
	case NodeStringLit:
		code.EmitWithOperand(OpLoadConst, c.constID(Constant{Kind: ConstString, String: n.Str}))
	case NodeNullLit:
		code.Emit(OpLoadNull)
	case NodeBoolLit:
		v := int64(0)
		if n.Bool {
			v = 1
		}
		code.EmitWithOperand(OpLoadConst, c.constID(Constant{Kind: ConstInt, Int: v}))
	case NodeIdent:
		code.EmitWithOperand(OpLoadName, c.nameID(n.Name))
	case NodeUnary:
		if err := c.compileExpr(code, n.X); err != nil {
			return err
		}
		switch n.UOp {
		case UnNeg:
			code.Emit(OpUnaryNeg)
		case UnNot:
			code.Emit(OpUnaryNot)
		}
	case NodeBinary:
		if err := c.compileExpr(code, n.L); err != nil {
			return err
		}
		if err := c.compileExpr(code, n.R); err != nil {
			return err
		}
		op, ok := binOpcode[n.BOp]
		if !ok {
			return fmt.Errorf("kod: compiler: unknown binary operator %d", n.BOp)
		}
		code.Emit(op)
	case NodeCall:
		if err := c.compileExpr(code, n.Callee); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := c.compileExpr(code, a); err != nil {
				return err
			}
		}
		code.EmitWithOperand(OpCall, uint32(len(n.Args)))
	case NodeListLit:
		for _, item := range n.Items {
			if err := c.compileExpr(code, item); err != nil {
				return err
			}
		}
		code.EmitWithOperand(OpBuildList, uint32(len(n.Items)))
	case NodeDictLit:
		for i := range n.Keys {
			if err := c.compileExpr(code, n.Keys[i]); err != nil {
				return err
			}
			if err := c.compileExpr(code, n.Vals[i]); err != nil {
				return err
			}
		}
		code.EmitWithOperand(OpBuildDict, uint32(len(n.Keys)))
	case NodeSubscript:
		if err := c.compileExpr(code, n.Base); err != nil {
			return err
		}
		if err := c.compileExpr(code, n.Index); err != nil {
			return err
		}
		code.Emit(OpSubscript)
	default:
		return fmt.Errorf("kod: compiler: %d is not an expression", n.Kind)
	}
	return nil
}
