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

func compileAndRun(t *testing.T, source string) Object {
	t.Helper()
	prog, err := ParseSource(source)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	m, err := CompileProgram("<test>", prog)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	vm := NewVM(m)
	return vm.Run(m.Entry)
}

func TestCompileAndRunArithmetic(t *testing.T) {
	got := compileAndRun(t, "return 1 + 2 * 3;")
	if got.Tag() != TagInt || got.Int() != 7 {
		t.Errorf("got %v, want Int(7)", got)
	}
}

func TestCompileAndRunIfElse(t *testing.T) {
	got := compileAndRun(t, `
		if (1 < 2) { return 10; } else { return 20; }
	`)
	if got.Int() != 10 {
		t.Errorf("got %v, want Int(10)", got)
	}
}

func TestCompileAndRunWhileLoop(t *testing.T) {
	got := compileAndRun(t, `
		i = 0;
		sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		return sum;
	`)
	if got.Int() != 10 {
		t.Errorf("got %v, want Int(10) (0+1+2+3+4)", got)
	}
}

func TestCompileAndRunFunctionCall(t *testing.T) {
	got := compileAndRun(t, `
		fn square(x) { return x * x; }
		return square(6);
	`)
	if got.Int() != 36 {
		t.Errorf("got %v, want Int(36)", got)
	}
}

func TestCompileAndRunRecursion(t *testing.T) {
	got := compileAndRun(t, `
		fn fact(n) {
			if (n <= 1) { return 1; }
			return n * fact(n - 1);
		}
		return fact(5);
	`)
	if got.Int() != 120 {
		t.Errorf("got %v, want Int(120)", got)
	}
}

func TestCompilerNameIDIsStableAcrossReferences(t *testing.T) {
	prog, err := ParseSource("x = 1; x = x + 1;")
	if err != nil {
		t.Fatal(err)
	}
	m, err := CompileProgram("<test>", prog)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, n := range m.NamePool {
		if n == "x" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("NamePool contains %d entries for \"x\", want exactly 1", count)
	}
}

func TestNewCompilerForSessionReusesExistingNamePool(t *testing.T) {
	m := &Module{Name: "<session>"}
	c := NewCompilerForSession(m)
	code := &Code{}
	if err := c.compileStmt(code, &Node{Kind: NodeAssign, Name: "y", Value: &Node{Kind: NodeIntLit, Int: 1}}); err != nil {
		t.Fatal(err)
	}
	if len(m.NamePool) != 1 || m.NamePool[0] != "y" {
		t.Fatalf("NamePool = %v, want [y]", m.NamePool)
	}

	c2 := NewCompilerForSession(m)
	code2 := &Code{}
	if err := c2.compileExpr(code2, &Node{Kind: NodeIdent, Name: "y"}); err != nil {
		t.Fatal(err)
	}
	if len(m.NamePool) != 1 {
		t.Errorf("second session compiler appended a duplicate NamePool entry: %v", m.NamePool)
	}
}
