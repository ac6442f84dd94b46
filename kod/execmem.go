//go:build unix

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

	"golang.org/x/sys/unix"
)

// ExecutableMemory is the non-copyable handle component F returns from
// Commit. Copying it would double-free the mapping, so every method has a
// pointer receiver and callers are expected to hold it by pointer only
// (mirrors jit.go's execBuf, adapted from syscall.Mmap/Mprotect to
// golang.org/x/sys/unix — the commit layer is the single OS-coupling point,
// SPEC_FULL.md §4.6/§10).
type ExecutableMemory struct {
	mem      []byte
	freed    bool
	_        [0]func() // no-copy marker: a struct with a field of function
	// type cannot be compared, which is a cheap way to catch accidental == use
}

// Commit maps at least len(code) bytes of read-write memory, copies code into
// it, switches the mapping to read-execute, and returns a handle whose
// Entry() points at offset zero of the mapping. The mapping is never writable
// and executable at the same time.
func Commit(code []byte) (*ExecutableMemory, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("kod: cannot commit empty code buffer")
	}
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("kod: mmap executable memory: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("kod: mprotect executable memory: %w", err)
	}
	return &ExecutableMemory{mem: mem}, nil
}

// Release unmaps the region. The handle must not be invoked again afterward.
func (e *ExecutableMemory) Release() error {
	if e.freed {
		return nil
	}
	e.freed = true
	return unix.Munmap(e.mem)
}

// entryAddr returns the address of offset zero in the mapping, for Invoke
// (invoke_amd64.go) to transfer control to.
func (e *ExecutableMemory) entryAddr() uintptr {
	return uintptr(unsafe.Pointer(&e.mem[0]))
}
