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

// jitEntry caches one code object's committed native mapping, so a function
// called in a loop is only ever lowered and mmap'd once per VM (SPEC_FULL.md
// §4.8, grounded on jit_entry.go's cache-by-Scmer-function-pointer scheme,
// adapted to cache by *Code instead).
type jitEntry struct {
	mem   *ExecutableMemory
	error error // sticky: a code object that failed to lower never retries
}

// Run executes code to completion and returns the value left on top of the
// stack. Every code object in vm.Module is either entirely inside the JIT
// subset — compiled once, cached, and invoked natively — or contains at
// least one opcode the lowerer does not know, in which case the whole
// object always runs under the direct interpreter. SPEC_FULL.md §4.8 is
// explicit that this boundary is per-code-object, never per-opcode or
// partial: a code object is not split between native and interpreted
// execution.
func (vm *VM) Run(code *Code) Object {
	entry := vm.jitEntryFor(code)
	if entry != nil && entry.error == nil {
		if vm.Trace != nil {
			vm.Trace.RecordDispatch(code.Name, "jit")
		}
		return entry.mem.Invoke()
	}
	if vm.Trace != nil {
		vm.Trace.RecordDispatch(code.Name, "interpreter")
	}
	return vm.Interpret(code)
}

// jitEntryFor returns code's cached jitEntry, attempting to lower and commit
// it on first use. It never returns nil: a code object that cannot be
// lowered or committed gets an entry carrying that error, and on platforms
// without a native encoder driver_fallback.go's compileEntry always returns
// such an entry, so Run takes the interpreter path.
func (vm *VM) jitEntryFor(code *Code) *jitEntry {
	if vm.jitCache == nil {
		vm.jitCache = make(map[*Code]*jitEntry)
	}
	if e, ok := vm.jitCache[code]; ok {
		return e
	}
	e := vm.compileEntry(code)
	vm.jitCache[code] = e
	return e
}
