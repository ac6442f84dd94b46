//go:build amd64 && unix

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

// compileEntry is the only place LowerAndEmit (lowerer_amd64.go) and Commit
// (execmem.go) are wired together: amd64 supplies the encoder, unix supplies
// mmap/mprotect. A lowering failure — typically "opcode outside the JIT
// subset" — is cached so the code object falls straight to the interpreter
// on every future call instead of re-attempting compilation.
func (vm *VM) compileEntry(code *Code) *jitEntry {
	native, err := LowerAndEmit(vm, code)
	if err != nil {
		return &jitEntry{error: err}
	}
	mem, err := Commit(native)
	if err != nil {
		return &jitEntry{error: err}
	}
	return &jitEntry{mem: mem}
}
