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
	"os"
	"path/filepath"
	"testing"
)

func TestModuleCacheKeyIsStableAndContentAddressed(t *testing.T) {
	mc, err := NewModuleCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	k1 := mc.Key("same source")
	k2 := mc.Key("same source")
	k3 := mc.Key("different source")
	if k1 != k2 {
		t.Errorf("Key is not stable: %q != %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("Key collided for different source text")
	}
}

func TestModuleCacheStoreThenLoadRoundTrip(t *testing.T) {
	mc, err := NewModuleCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	source := "return 1 + 2;"
	prog, err := ParseSource(source)
	if err != nil {
		t.Fatal(err)
	}
	want, err := CompileProgram("<test>", prog)
	if err != nil {
		t.Fatal(err)
	}

	if err := mc.Store(source, want); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok := mc.Load(source)
	if !ok {
		t.Fatal("Load reported a miss right after Store")
	}
	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if len(got.NamePool) != len(want.NamePool) {
		t.Errorf("NamePool = %v, want %v", got.NamePool, want.NamePool)
	}
	if len(got.Entry.Bytes) != len(want.Entry.Bytes) {
		t.Errorf("Entry.Bytes length = %d, want %d", len(got.Entry.Bytes), len(want.Entry.Bytes))
	}
}

func TestModuleCacheLoadMissForUnknownSource(t *testing.T) {
	mc, err := NewModuleCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mc.Load("never stored"); ok {
		t.Fatal("Load reported a hit for source that was never stored")
	}
}

func TestModuleCacheLoadTreatsCorruptFileAsMiss(t *testing.T) {
	dir := t.TempDir()
	mc, err := NewModuleCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	source := "garbage"
	path := filepath.Join(dir, mc.Key(source)+".kodc")
	if err := os.WriteFile(path, []byte("not a valid xz/gob stream"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := mc.Load(source); ok {
		t.Fatal("Load reported a hit for a corrupt cache file")
	}
}
