//go:build !(amd64 && unix)

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

// compileEntry on any platform that isn't amd64+unix (no executable-memory
// commit layer, no native encoder, or both) always reports a sticky error so
// driver.go's Run falls back to the direct interpreter for every code
// object. x86-64 is the only architecture SPEC_FULL.md's encoder covers
// (Non-goals); Windows/unix split only at the mmap layer, which this build
// never reaches.
func (vm *VM) compileEntry(code *Code) *jitEntry {
	return &jitEntry{error: fmt.Errorf("kod: native JIT unavailable on this platform")}
}
