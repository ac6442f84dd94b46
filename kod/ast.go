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

// NodeKind is the tagged-sum discriminator for AST nodes — one Node struct
// carrying every shape's fields, following the same discipline the bytecode
// and pseudo-instruction layers use (SPEC_FULL.md Design Notes item 1)
// instead of an interface with one type per node.
type NodeKind int

const (
	NodeIntLit NodeKind = iota
	NodeFloatLit
	NodeStringLit
	NodeNullLit
	NodeBoolLit
	NodeIdent
	NodeUnary
	NodeBinary
	NodeAssign
	NodeCall
	NodeListLit
	NodeDictLit
	NodeSubscript
	NodeIf
	NodeWhile
	NodeBlock
	NodeReturn
	NodeExprStmt
	NodeFuncDecl
)

// BinOp/UnOp enumerate the operators the parser recognizes; the compiler
// maps each onto the matching bytecode opcode (compiler.go).
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinBoolAnd
	BinBoolOr
)

type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
)

// Node is one AST node. Only the fields relevant to Kind are meaningful.
type Node struct {
	Kind NodeKind

	// literals
	Int    int64
	Float  float64
	Str    string
	Bool   bool

	// NodeIdent / NodeAssign's target / NodeFuncDecl's name
	Name string

	// NodeUnary
	UOp UnOp
	X   *Node

	// NodeBinary
	BOp  BinOp
	L, R *Node

	// NodeAssign: Name = Value
	Value *Node

	// NodeCall: Callee(Args...)
	Callee *Node
	Args   []*Node

	// NodeListLit
	Items []*Node

	// NodeDictLit
	Keys, Vals []*Node

	// NodeSubscript: Base[Index]
	Base, Index *Node

	// NodeIf: if Cond { Then } else { Else }
	Cond       *Node
	Then, Else *Node

	// NodeWhile: while Cond { Body }
	Body *Node

	// NodeBlock
	Stmts []*Node

	// NodeFuncDecl
	Params []string
	FnBody *Node
}
