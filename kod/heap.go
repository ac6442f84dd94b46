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

import "unsafe"

// HeapKind enumerates the shapes a heap-allocated object can take. Tagged
// Pointer values (value.go) point at one of these.
type HeapKind int

const (
	HeapString HeapKind = iota
	HeapTuple
	HeapList
	HeapDict
	HeapCode
)

// HeapObject is one garbage-collected-in-name-only allocation. Per
// SPEC_FULL.md §5/§9 Design Notes, this design omits tracing GC entirely:
// every HeapObject ever allocated is kept alive by VM.roots for the process
// lifetime (spec.md Design Notes option (a), "keep strong references from
// roots and skip GC entirely at this stage").
type HeapObject struct {
	Kind  HeapKind
	Str   string
	Tuple []Object
	List  []Object
	Dict  map[Object]Object
	Code  *Code
}

// AllocString heap-allocates a string and returns a Pointer-tagged Object.
func (vm *VM) AllocString(s string) Object {
	return vm.alloc(&HeapObject{Kind: HeapString, Str: s})
}

// AllocTuple heap-allocates an immutable tuple.
func (vm *VM) AllocTuple(items []Object) Object {
	return vm.alloc(&HeapObject{Kind: HeapTuple, Tuple: items})
}

// AllocList heap-allocates a mutable list.
func (vm *VM) AllocList(items []Object) Object {
	return vm.alloc(&HeapObject{Kind: HeapList, List: items})
}

// AllocDict heap-allocates a mutable dict.
func (vm *VM) AllocDict() Object {
	return vm.alloc(&HeapObject{Kind: HeapDict, Dict: make(map[Object]Object)})
}

// AllocCode heap-allocates a reference to a compiled Code object, so it can
// be materialized by LOAD_CONST like any other heap value.
func (vm *VM) AllocCode(c *Code) Object {
	return vm.alloc(&HeapObject{Kind: HeapCode, Code: c})
}

func (vm *VM) alloc(h *HeapObject) Object {
	vm.roots = append(vm.roots, h)
	return NewPointer(uintptr(unsafe.Pointer(h)))
}

// HeapObjectAt reinterprets a Pointer-tagged Object's payload as a
// *HeapObject. The caller is responsible for only calling this on values it
// knows are Pointer-tagged and were produced by one of the Alloc* methods
// above — there is no runtime type check here, mirroring the "runtime
// helper precondition failure is fatal" policy (SPEC_FULL.md §7).
func HeapObjectAt(o Object) *HeapObject {
	return (*HeapObject)(unsafe.Pointer(o.Pointer()))
}
