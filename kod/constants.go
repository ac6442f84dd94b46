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

// MaterializeConstant turns constant-pool entry idx into a tagged Object,
// shared by both the interpreter's LOAD_CONST and the JIT lowerer
// (lowerer_amd64.go). Heap-backed constants (strings, code) are materialized
// once per VM and cached by index: re-executing the same LOAD_CONST must
// keep returning the identical pointer, or the same string literal used
// twice as a dict key (SPEC_FULL.md's collaborator scope, §2) would compare
// unequal to itself.
func (vm *VM) MaterializeConstant(idx uint32) (Object, error) {
	if int(idx) >= len(vm.Module.ConstantPool) {
		return 0, fmt.Errorf("kod: LOAD_CONST: constant index %d out of range", idx)
	}
	if len(vm.constCache) < len(vm.Module.ConstantPool) {
		// A REPL session keeps appending to the same ConstantPool, so the
		// cache grows with it; entries already cached keep their pointers.
		grownCache := make([]Object, len(vm.Module.ConstantPool))
		copy(grownCache, vm.constCache)
		grownCached := make([]bool, len(vm.Module.ConstantPool))
		copy(grownCached, vm.constCached)
		vm.constCache, vm.constCached = grownCache, grownCached
	}
	if vm.constCached[idx] {
		return vm.constCache[idx], nil
	}

	c := vm.Module.ConstantPool[idx]
	var obj Object
	switch c.Kind {
	case ConstNull:
		obj = NewNull()
	case ConstInt:
		obj = NewInt(c.Int)
	case ConstFloat:
		obj = NewFloat(c.Float)
	case ConstString:
		obj = vm.AllocString(c.String)
	case ConstCode:
		obj = vm.AllocCode(c.Code)
	default:
		return 0, fmt.Errorf("kod: LOAD_CONST: constant kind %d has no materialization", c.Kind)
	}
	vm.constCache[idx] = obj
	vm.constCached[idx] = true
	return obj, nil
}
