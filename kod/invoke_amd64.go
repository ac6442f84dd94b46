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

import "unsafe"

// funcval is the run-time representation of a Go func value with no captured
// variables: a single word holding the function's entry address. Building
// one by hand is the standard trick for turning a bare code pointer into
// something callable without cgo.
type funcval struct {
	entry uintptr
}

// Invoke transfers control to offset zero of the committed mapping. The
// generated function takes no parameters and returns the tagged value left
// in RAX by the RETURN opcode (SPEC_FULL.md §4.6).
func (e *ExecutableMemory) Invoke() Object {
	fv := funcval{entry: e.entryAddr()}
	var fn func() uint64
	*(*unsafe.Pointer)(unsafe.Pointer(&fn)) = unsafe.Pointer(&fv)
	return Object(fn())
}
