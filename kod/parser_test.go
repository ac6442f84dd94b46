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

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), not (1 + 2) * 3.
	prog, err := ParseSource("1 + 2 * 3;")
	if err != nil {
		t.Fatal(err)
	}
	expr := prog.Stmts[0].X
	if expr.Kind != NodeBinary || expr.BOp != BinAdd {
		t.Fatalf("top node = %+v, want a top-level +", expr)
	}
	if expr.R.Kind != NodeBinary || expr.R.BOp != BinMul {
		t.Fatalf("right operand = %+v, want a nested *", expr.R)
	}
}

func TestParseSamePrecedenceIsLeftAssociative(t *testing.T) {
	prog, err := ParseSource("1 - 2 - 3;")
	if err != nil {
		t.Fatal(err)
	}
	expr := prog.Stmts[0].X
	// (1 - 2) - 3: outer node's left side is itself a subtraction.
	if expr.Kind != NodeBinary || expr.BOp != BinSub {
		t.Fatalf("top node = %+v", expr)
	}
	if expr.L.Kind != NodeBinary || expr.L.BOp != BinSub {
		t.Fatalf("left operand = %+v, want a nested -", expr.L)
	}
	if expr.R.Kind != NodeIntLit || expr.R.Int != 3 {
		t.Fatalf("right operand = %+v, want IntLit(3)", expr.R)
	}
}

func TestParseIfElseIfChain(t *testing.T) {
	prog, err := ParseSource(`
		if (a) { 1; } else if (b) { 2; } else { 3; }
	`)
	if err != nil {
		t.Fatal(err)
	}
	top := prog.Stmts[0]
	if top.Kind != NodeIf {
		t.Fatalf("top = %+v, want NodeIf", top)
	}
	if top.Else == nil || top.Else.Kind != NodeIf {
		t.Fatalf("top.Else = %+v, want a nested NodeIf (else-if)", top.Else)
	}
	if top.Else.Else == nil || top.Else.Else.Kind != NodeBlock {
		t.Fatalf("innermost else = %+v, want a plain block", top.Else.Else)
	}
}

func TestParseFuncDeclParamsAndCall(t *testing.T) {
	prog, err := ParseSource(`
		fn add(a, b) { return a + b; }
		add(1, 2);
	`)
	if err != nil {
		t.Fatal(err)
	}
	fn := prog.Stmts[0]
	if fn.Kind != NodeFuncDecl || fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	call := prog.Stmts[1].X
	if call.Kind != NodeCall || call.Callee.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("call = %+v", call)
	}
}

func TestParseAssignRejectsNonIdentTarget(t *testing.T) {
	if _, err := ParseSource("1 = 2;"); err == nil {
		t.Fatal("parser accepted an assignment to a non-identifier")
	}
}

func TestParseListAndDictLiterals(t *testing.T) {
	prog, err := ParseSource(`[1, 2, 3]; {"a": 1, "b": 2};`)
	if err != nil {
		t.Fatal(err)
	}
	list := prog.Stmts[0].X
	if list.Kind != NodeListLit || len(list.Items) != 3 {
		t.Fatalf("list = %+v", list)
	}
	dict := prog.Stmts[1].X
	if dict.Kind != NodeDictLit || len(dict.Keys) != 2 {
		t.Fatalf("dict = %+v", dict)
	}
}

func TestParseSubscriptChain(t *testing.T) {
	prog, err := ParseSource("a[0][1];")
	if err != nil {
		t.Fatal(err)
	}
	outer := prog.Stmts[0].X
	if outer.Kind != NodeSubscript {
		t.Fatalf("outer = %+v, want NodeSubscript", outer)
	}
	if outer.Base.Kind != NodeSubscript {
		t.Fatalf("outer.Base = %+v, want a nested subscript", outer.Base)
	}
}

func TestParseUnterminatedBlockErrors(t *testing.T) {
	_, err := ParseSource("fn f() { return 1;")
	if err == nil {
		t.Fatal("parser accepted an unterminated block")
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog, err := ParseSource("while (x) { x = x - 1; }")
	if err != nil {
		t.Fatal(err)
	}
	if prog.Stmts[0].Kind != NodeWhile {
		t.Fatalf("top = %+v, want NodeWhile", prog.Stmts[0])
	}
}
