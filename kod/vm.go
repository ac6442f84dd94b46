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

// NativeFunc is the signature every builtin registered into a VM must have.
// It is deliberately variadic-free and simple: the interpreter (component L)
// is the only caller for now, since the JIT subset never issues a CALL.
type NativeFunc func(vm *VM, args []Object) Object

// VM is the single execution lineage described in SPEC_FULL.md §5: one
// goroutine builds bytecode, drives the lowerer or the interpreter, and owns
// every piece of mutable state a running program can touch.
type VM struct {
	Module  *Module
	globals []Object
	roots   []*HeapObject
	natives []NativeFunc
	nameOf  []string // natives' names, parallel to natives, for diagnostics

	jitCache map[*Code]*jitEntry // driver.go's per-code-object JIT cache

	constCache  []Object // constants.go's per-Module materialization cache
	constCached []bool

	Trace *Tracer // nil unless -trace was given
}

// NewVM returns a VM ready to run module m.
func NewVM(m *Module) *VM {
	return &VM{Module: m}
}

// RegisterNative adds a builtin and returns the tagged NativeFunc value that
// refers to it.
func (vm *VM) RegisterNative(name string, fn NativeFunc) Object {
	idx := len(vm.natives)
	vm.natives = append(vm.natives, fn)
	vm.nameOf = append(vm.nameOf, name)
	return NewNativeFunc(uint32(idx))
}

// BindGlobal registers fn as a native and binds it to name in vm's current
// module, so compiled code that refers to name resolves to it. Used by
// main.go to install builtins — registration alone (RegisterNative) is not
// enough, since it never touches the NamePool/globals a compiled program
// actually looks names up through.
func (vm *VM) BindGlobal(name string, fn NativeFunc) {
	obj := vm.RegisterNative(name, fn)
	idx := vm.NamePoolIndex(name)
	storeName(vm, idx, obj)
}

// CallNative invokes a previously registered builtin by index.
func (vm *VM) CallNative(idx uint32, args []Object) Object {
	if int(idx) >= len(vm.natives) {
		panic(fmt.Sprintf("kod: call to unregistered native function #%d", idx))
	}
	return vm.natives[idx](vm, args)
}

// Reset rebinds vm to a freshly (re)compiled module, clearing every piece of
// per-module state: globals, the JIT cache, and the constant-materialization
// cache. Watch mode (main.go) uses this so editing a file and re-running it
// never leaks globals or stale compiled code from the previous run.
func (vm *VM) Reset(m *Module) {
	vm.Module = m
	vm.globals = nil
	vm.jitCache = nil
	vm.constCache = nil
	vm.constCached = nil
}

// vmPtr returns the VM's own address, passed to every runtime callback as
// the first argument (SPEC_FULL.md §4.7). It's a uint64 because that's the
// register width the lowerer materializes it into.
func (vm *VM) vmPtr() uint64 {
	return uint64(uintptr(unsafe.Pointer(vm)))
}
