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

import "encoding/binary"

// LabelTable owns every label for one in-progress code buffer. It is the
// adaptation of the teacher's JITWriter label API (jit_writer.go's
// DefineLabel/ReserveLabel/MarkLabel/AddFixup/ResolveFixups) to a growable
// []byte plus integer offsets instead of live mmap'd pointers — the two-stage
// design SPEC_FULL.md §4.2 calls for, matching original_source's separate
// assembler-buffer/JitFunction split.
type LabelTable struct {
	offsets []int32   // -1 while unbound
	fixups  [][]int32 // pending slot-end positions per label, cleared on bind
}

// NewLabelTable returns an empty table.
func NewLabelTable() *LabelTable {
	return &LabelTable{}
}

// New allocates a fresh, unbound label and returns its id.
func (lt *LabelTable) New() int32 {
	id := int32(len(lt.offsets))
	lt.offsets = append(lt.offsets, -1)
	lt.fixups = append(lt.fixups, nil)
	return id
}

// AddJump records that the 4 bytes ending at slotEnd in buf are a 32-bit
// signed displacement referring to label id. If the label is already bound,
// the slot is patched immediately; otherwise the slot is queued until Bind.
func (lt *LabelTable) AddJump(buf []byte, id int32, slotEnd int32) {
	if lt.offsets[id] >= 0 {
		patchSlot(buf, slotEnd, lt.offsets[id])
		return
	}
	lt.fixups[id] = append(lt.fixups[id], slotEnd)
}

// Bind fixes a label's target offset and patches every slot registered
// against it so far. A second bind of the same label is a programming error.
func (lt *LabelTable) Bind(buf []byte, id int32, target int32) {
	if lt.offsets[id] >= 0 {
		panic("kod: label already bound")
	}
	lt.offsets[id] = target
	for _, slotEnd := range lt.fixups[id] {
		patchSlot(buf, slotEnd, target)
	}
	lt.fixups[id] = nil
}

// Bound reports whether a label has been bound yet.
func (lt *LabelTable) Bound(id int32) bool {
	return lt.offsets[id] >= 0
}

// Offset returns a bound label's target offset; callers must check Bound
// first (an unbound label has no meaningful offset).
func (lt *LabelTable) Offset(id int32) int32 {
	return lt.offsets[id]
}

// CheckAllBound reports whether every label in the table has been bound. It
// does not panic itself; the caller (emitTwoPass in lowerer_amd64.go) panics
// on false, which is the "unbound label at commit time" fatal condition from
// SPEC_FULL.md §7.
func (lt *LabelTable) CheckAllBound() bool {
	for _, off := range lt.offsets {
		if off < 0 {
			return false
		}
	}
	return true
}

// patchSlot writes little_endian_i32(target - slotEnd) into buf[slotEnd-4:slotEnd].
func patchSlot(buf []byte, slotEnd int32, target int32) {
	disp := target - slotEnd
	binary.LittleEndian.PutUint32(buf[slotEnd-4:slotEnd], uint32(disp))
}
