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

import (
	"fmt"
	"unsafe"
)

// The four functions below are the runtime callback surface (SPEC_FULL.md
// §4.7): the only interface generated native code has into the rest of the
// VM. Each is exposed to the JIT through a small assembly trampoline
// (runtime_trampoline_amd64.s) that receives arguments in the Windows x64
// integer registers (RCX, RDX, R8, R9) the lowerer places them in, and
// reshuffles them into an ordinary Go call — these Go-level functions never
// need to know about that boundary themselves.

// storeName grows vm's globals vector to cover idx if needed (filling with
// Null), writes obj, and returns obj.
func storeName(vm *VM, idx uint32, obj Object) Object {
	if int(idx) >= len(vm.globals) {
		grown := make([]Object, idx+1)
		copy(grown, vm.globals)
		for i := len(vm.globals); i < len(grown); i++ {
			grown[i] = NewNull()
		}
		vm.globals = grown
	}
	vm.globals[idx] = obj
	return obj
}

// loadName reads globals[idx]; out-of-range access is fatal, matching the
// "runtime helper precondition failure" entry in SPEC_FULL.md §7.
func loadName(vm *VM, idx uint32) Object {
	if int(idx) >= len(vm.globals) {
		panic(fmt.Sprintf("kod: load_name: index %d out of range (globals has %d entries)", idx, len(vm.globals)))
	}
	return vm.globals[idx]
}

// rustAdd requires both tags equal; only Int is implemented, matching
// original_source's rust_add exactly (spec.md only asks for the JIT
// fast-path's tag-preservation bug to be fixed, not for the slow path to
// grow a full numeric tower it never had).
func rustAdd(vm *VM, lhs, rhs Object) Object {
	if lhs.Tag() != rhs.Tag() {
		panic(fmt.Sprintf("kod: rust_add: mismatched tags %s and %s", lhs.Tag(), rhs.Tag()))
	}
	switch lhs.Tag() {
	case TagInt:
		return NewInt(lhs.Int() + rhs.Int())
	default:
		panic(fmt.Sprintf("kod: rust_add: unimplemented for tag %s", lhs.Tag()))
	}
}

// rustLt is boolean-valued, returning a tagged Int of 0 or 1. Float
// comparison reinterprets the payload as IEEE-754 bits before comparing —
// this fixes the bug spec.md flags: the original compared the raw 48-bit
// integer payload, which is semantically wrong for floats.
func rustLt(vm *VM, lhs, rhs Object) Object {
	if lhs.Tag() != rhs.Tag() {
		panic(fmt.Sprintf("kod: rust_lt: mismatched tags %s and %s", lhs.Tag(), rhs.Tag()))
	}
	var less bool
	switch lhs.Tag() {
	case TagInt:
		less = lhs.Int() < rhs.Int()
	case TagFloat:
		less = lhs.Float() < rhs.Float()
	default:
		panic(fmt.Sprintf("kod: rust_lt: unimplemented for tag %s", lhs.Tag()))
	}
	if less {
		return NewInt(1)
	}
	return NewInt(0)
}

// vmFromPtr recovers a *VM from the raw pointer value the lowerer baked into
// the generated code as an Imm64 (see lowerer_amd64.go's vmPtr usage).
func vmFromPtr(p uint64) *VM {
	return (*VM)(unsafe.Pointer(uintptr(p)))
}

// trampolineStoreNameImpl, trampolineLoadNameImpl, trampolineRustAddImpl and
// trampolineRustLtImpl are the Go-side halves of the assembly trampolines in
// runtime_trampoline_amd64.s. Each signature mirrors the raw 64-bit values
// the trampoline has already moved off the Windows-ABI argument registers
// and onto the Go stack, so these are ordinary, callable-from-Go functions
// for testing even though the JIT never calls them this way.
func trampolineStoreNameImpl(vmp, idx, obj uint64) uint64 {
	return uint64(storeName(vmFromPtr(vmp), uint32(idx), Object(obj)))
}

func trampolineLoadNameImpl(vmp, idx uint64) uint64 {
	return uint64(loadName(vmFromPtr(vmp), uint32(idx)))
}

func trampolineRustAddImpl(vmp, lhs, rhs uint64) uint64 {
	return uint64(rustAdd(vmFromPtr(vmp), Object(lhs), Object(rhs)))
}

func trampolineRustLtImpl(vmp, lhs, rhs uint64) uint64 {
	return uint64(rustLt(vmFromPtr(vmp), Object(lhs), Object(rhs)))
}
