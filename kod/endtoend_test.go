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

// TestEndToEndBuiltinCalledFromCompiledCode regression-tests the ordering a
// host program must follow: a native must be bound into the same module a
// program is compiled against, or the program's NamePool index for the
// builtin's name never resolves to it. See BindGlobal.
func TestEndToEndBuiltinCalledFromCompiledCode(t *testing.T) {
	module := &Module{Name: "<test>", Entry: &Code{Name: "<module>"}}
	vm := NewVM(module)

	var got []Object
	vm.BindGlobal("record", func(vm *VM, args []Object) Object {
		got = append(got, args...)
		return NewNull()
	})

	prog, err := ParseSource(`record(1, 2, 3);`)
	if err != nil {
		t.Fatal(err)
	}
	compiler := NewCompilerForSession(module)
	code := &Code{Name: "<module>"}
	for _, stmt := range prog.Stmts {
		if err := compiler.compileStmt(code, stmt); err != nil {
			t.Fatal(err)
		}
	}
	code.Emit(OpLoadNull)
	code.Emit(OpReturn)
	vm.Run(code)

	if len(got) != 3 || got[0].Int() != 1 || got[1].Int() != 2 || got[2].Int() != 3 {
		t.Fatalf("record saw %v, want [1 2 3]", got)
	}
}

// TestEndToEndDictWithRuntimeStringKeys exercises the full pipeline on a
// program that builds a dict literal with string keys and reads it back with
// a subscript built from a separately-interned string, relying on the
// content-equality fallback rather than pointer identity.
func TestEndToEndDictWithRuntimeStringKeys(t *testing.T) {
	got := compileAndRun(t, `
		d = {"x": 1, "y": 2};
		return d["y"];
	`)
	if got.Int() != 2 {
		t.Errorf("got %v, want Int(2)", got)
	}
}

// TestEndToEndListMutationThroughSubscriptAssign exercises OpBuildList
// followed by OpStoreSubscript end to end through the compiler.
func TestEndToEndListMutationThroughSubscriptAssign(t *testing.T) {
	got := compileAndRun(t, `
		xs = [1, 2, 3];
		xs[1] = 99;
		return xs[1];
	`)
	if got.Int() != 99 {
		t.Errorf("got %v, want Int(99)", got)
	}
}

// TestEndToEndNestedFunctionCallsShareFlatNamespace documents the toy
// language's single shared binding namespace: a callee's parameter
// overwrites the caller's variable of the same name once the callee body
// executes, but a copy stored into another global before the call is
// unaffected because Object is copied by value.
func TestEndToEndNestedFunctionCallsShareFlatNamespace(t *testing.T) {
	got := compileAndRun(t, `
		fn identity(n) { return n; }
		n = 7;
		first = n;
		identity(1000);
		return first;
	`)
	if got.Int() != 7 {
		t.Errorf("got %v, want Int(7): a local copy taken before the call must survive the callee overwriting the shared global", got)
	}
}
