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

func TestInterpretBuildListAndSubscript(t *testing.T) {
	m := &Module{ConstantPool: []Constant{
		{Kind: ConstInt, Int: 10}, {Kind: ConstInt, Int: 20}, {Kind: ConstInt, Int: 1},
	}}
	vm := NewVM(m)
	code := &Code{}
	code.EmitWithOperand(OpLoadConst, 0)
	code.EmitWithOperand(OpLoadConst, 1)
	code.EmitWithOperand(OpBuildList, 2)
	code.EmitWithOperand(OpLoadConst, 2)
	code.Emit(OpSubscript)
	code.Emit(OpReturn)

	got := vm.Interpret(code)
	if got.Int() != 20 {
		t.Errorf("got %v, want Int(20)", got)
	}
}

func TestInterpretDictWithStringKeysFromSeparateConstants(t *testing.T) {
	// Two constant-pool entries with identical string content materialize to
	// two distinct heap pointers (constants.go caches by index), so a dict
	// built with one and looked up with the other matches only through
	// dictLookup's content-equality fallback.
	m := &Module{ConstantPool: []Constant{
		{Kind: ConstString, String: "k"}, {Kind: ConstInt, Int: 99}, {Kind: ConstString, String: "k"},
	}}
	vm := NewVM(m)
	code := &Code{}
	code.EmitWithOperand(OpLoadConst, 0) // key "k"
	code.EmitWithOperand(OpLoadConst, 1) // value 99
	code.EmitWithOperand(OpBuildDict, 1)
	code.EmitWithOperand(OpLoadConst, 2) // key "k" again, from a separate constant slot
	code.Emit(OpSubscript)
	code.Emit(OpReturn)

	got := vm.Interpret(code)
	if got.Int() != 99 {
		t.Errorf("got %v, want Int(99)", got)
	}
}

func TestInterpretDictLookupFallsBackToContentEquality(t *testing.T) {
	// A runtime-built string (not from the constant cache) must still find a
	// dict entry keyed by an equal-content string allocated separately.
	m := &Module{}
	vm := NewVM(m)
	dictObj := vm.AllocDict()
	d := HeapObjectAt(dictObj)
	d.Dict[vm.AllocString("hello")] = NewInt(5)

	lookupKey := vm.AllocString("hello") // distinct allocation, same content
	if got := subscript(dictObj, lookupKey); got.Int() != 5 {
		t.Errorf("subscript by content-equal string = %v, want Int(5)", got)
	}
}

func TestInterpretStringEquality(t *testing.T) {
	m := &Module{}
	vm := NewVM(m)
	a := vm.AllocString("same")
	b := vm.AllocString("same")
	if a == b {
		t.Fatal("two separate AllocString calls returned the same pointer")
	}
	if !objectsEqual(a, b) {
		t.Error("objectsEqual(a, b) = false for equal-content strings")
	}
}

func TestInterpretBoundsCheckedGlobalLoadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("loadName on an unset global index did not panic")
		}
	}()
	m := &Module{}
	vm := NewVM(m)
	code := &Code{}
	code.EmitWithOperand(OpLoadName, 0)
	code.Emit(OpReturn)
	vm.Interpret(code)
}

func TestInterpretUnaryNeg(t *testing.T) {
	m := &Module{ConstantPool: []Constant{{Kind: ConstInt, Int: 5}}}
	vm := NewVM(m)
	code := &Code{}
	code.EmitWithOperand(OpLoadConst, 0)
	code.Emit(OpUnaryNeg)
	code.Emit(OpReturn)
	got := vm.Interpret(code)
	if got.Int() != -5 {
		t.Errorf("got %v, want Int(-5)", got)
	}
}

func TestInterpretCallNative(t *testing.T) {
	m := &Module{}
	vm := NewVM(m)
	var seen []Object
	vm.BindGlobal("sum3", func(vm *VM, args []Object) Object {
		seen = args
		total := int64(0)
		for _, a := range args {
			total += a.Int()
		}
		return NewInt(total)
	})
	code := &Code{}
	nameIdx := vm.NamePoolIndex("sum3")
	code.EmitWithOperand(OpLoadName, nameIdx)
	idx1 := uint32(len(m.ConstantPool))
	m.ConstantPool = append(m.ConstantPool, Constant{Kind: ConstInt, Int: 1})
	idx2 := uint32(len(m.ConstantPool))
	m.ConstantPool = append(m.ConstantPool, Constant{Kind: ConstInt, Int: 2})
	idx3 := uint32(len(m.ConstantPool))
	m.ConstantPool = append(m.ConstantPool, Constant{Kind: ConstInt, Int: 3})
	code.EmitWithOperand(OpLoadConst, idx1)
	code.EmitWithOperand(OpLoadConst, idx2)
	code.EmitWithOperand(OpLoadConst, idx3)
	code.EmitWithOperand(OpCall, 3)
	code.Emit(OpReturn)

	got := vm.Interpret(code)
	if got.Int() != 6 {
		t.Errorf("got %v, want Int(6)", got)
	}
	if len(seen) != 3 {
		t.Errorf("native saw %d args, want 3", len(seen))
	}
}
