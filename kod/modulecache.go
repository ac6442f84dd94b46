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
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/ulikunitz/xz"
)

// ModuleCache stores compiled Module values on disk, keyed by the SHA-256 of
// the source text that produced them, so re-running the same script skips
// lexing/parsing/compiling entirely (SPEC_FULL.md §6). Entries are xz-
// compressed gob streams, grounded on streams.go's xz stream builtin — the
// same library, used here for persistence instead of a language-level
// stream filter.
type ModuleCache struct {
	Dir string
}

// NewModuleCache returns a cache rooted at dir, creating it if necessary.
func NewModuleCache(dir string) (*ModuleCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kod: create module cache dir: %w", err)
	}
	return &ModuleCache{Dir: dir}, nil
}

// Key hashes source text into the cache's lookup key.
func (mc *ModuleCache) Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

func (mc *ModuleCache) path(key string) string {
	return filepath.Join(mc.Dir, key+".kodc")
}

// Load returns the cached Module for source, or (nil, false) on a cache
// miss — including a miss caused by a corrupt cache file, which is treated
// as absent rather than fatal (SPEC_FULL.md §7: cache corruption never
// blocks execution, it just costs a recompile).
func (mc *ModuleCache) Load(source string) (*Module, bool) {
	f, err := os.Open(mc.path(mc.Key(source)))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, false
	}
	var m Module
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, false
	}
	return &m, true
}

// Store persists m under source's key, compressed with xz.
func (mc *ModuleCache) Store(source string, m *Module) error {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("kod: create xz writer: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		w.Close()
		return fmt.Errorf("kod: gob-encode module: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("kod: close xz writer: %w", err)
	}
	if err := os.WriteFile(mc.path(mc.Key(source)), buf.Bytes(), 0o644); err != nil {
		return err
	}
	if isDebugEnv() {
		fmt.Fprintf(os.Stderr, "kod: cached module entry: %s\n", units.HumanSize(float64(buf.Len())))
	}
	return nil
}
