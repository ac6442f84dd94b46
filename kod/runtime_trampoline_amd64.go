//go:build amd64

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

import "reflect"

// trampolineStoreName, trampolineLoadName, trampolineRustAdd and
// trampolineRustLt have no Go body — their implementation lives in
// runtime_trampoline_amd64.s. They take no declared Go arguments because
// they are never entered through a normal Go call site: the JIT places
// arguments in RCX/RDX/R8/R9 per the Windows x64 convention
// (lowerer_amd64.go) and transfers control with a bare `call` instruction.
// The Go declaration exists only so the linker gives the symbol an address
// we can take with reflect, the same technique jit.go uses.
func trampolineStoreName()
func trampolineLoadName()
func trampolineRustAdd()
func trampolineRustLt()

// trampolineAddr returns the entry address of one of the four trampolines
// above, for CallAbsolute to embed as an immediate.
func trampolineAddr(fn func()) uint64 {
	return uint64(reflect.ValueOf(fn).Pointer())
}
