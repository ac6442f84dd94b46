//go:build arm64

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

// TODO: port the x86-64 lowerer (lowerer_amd64.go) to AArch64 encoding.
// x86-64 is the only architecture SPEC_FULL.md's encoder and register model
// describe (§3's Register enumeration is the AMD64 GPR/XMM set); arm64 gets
// a stub that always falls back to the direct interpreter (driver.go) rather
// than a half-finished encoder nobody can exercise.

// LowerAndEmit always fails on arm64: there is no native encoder for this
// architecture yet, so driver.go's fallback sends every code object through
// the interpreter.
func LowerAndEmit(vm *VM, code *Code) ([]byte, error) {
	return nil, fmt.Errorf("kod: native lowering is not implemented on arm64")
}
