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
	"encoding/binary"
	"testing"
)

func TestLabelBindBeforeJump(t *testing.T) {
	lt := NewLabelTable()
	id := lt.New()
	lt.Bind(nil, id, 100)

	buf := make([]byte, 10)
	slotEnd := int32(8)
	lt.AddJump(buf, id, slotEnd) // already bound: patches immediately

	disp := int32(binary.LittleEndian.Uint32(buf[4:8]))
	if disp != 100-slotEnd {
		t.Errorf("disp = %d, want %d", disp, 100-slotEnd)
	}
}

func TestLabelJumpBeforeBind(t *testing.T) {
	lt := NewLabelTable()
	id := lt.New()
	buf := make([]byte, 10)
	slotEnd := int32(8)
	lt.AddJump(buf, id, slotEnd) // unbound: queued as a fixup

	lt.Bind(buf, id, 200)
	disp := int32(binary.LittleEndian.Uint32(buf[4:8]))
	if disp != 200-slotEnd {
		t.Errorf("disp = %d, want %d", disp, 200-slotEnd)
	}
}

func TestLabelCheckAllBound(t *testing.T) {
	lt := NewLabelTable()
	a := lt.New()
	b := lt.New()
	if lt.CheckAllBound() {
		t.Fatal("CheckAllBound() = true before either label is bound")
	}
	lt.Bind(nil, a, 0)
	if lt.CheckAllBound() {
		t.Fatal("CheckAllBound() = true with one label still unbound")
	}
	lt.Bind(nil, b, 0)
	if !lt.CheckAllBound() {
		t.Fatal("CheckAllBound() = false after every label is bound")
	}
}

func TestLabelDoubleBindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("binding a label twice must panic")
		}
	}()
	lt := NewLabelTable()
	id := lt.New()
	lt.Bind(nil, id, 0)
	lt.Bind(nil, id, 1)
}

func TestLabelMultipleFixupsToSameLabel(t *testing.T) {
	lt := NewLabelTable()
	id := lt.New()
	buf := make([]byte, 20)
	lt.AddJump(buf, id, 8)
	lt.AddJump(buf, id, 16)
	lt.Bind(buf, id, 40)

	if got := int32(binary.LittleEndian.Uint32(buf[4:8])); got != 40-8 {
		t.Errorf("first fixup disp = %d, want %d", got, 40-8)
	}
	if got := int32(binary.LittleEndian.Uint32(buf[12:16])); got != 40-16 {
		t.Errorf("second fixup disp = %d, want %d", got, 40-16)
	}
}
