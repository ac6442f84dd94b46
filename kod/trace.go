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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"
)

// traceEvent is one line of the execution trace (SPEC_FULL.md §6/§9):
// dispatch decisions (jit vs interpreter) and compile-cache hits/misses, one
// JSON object per line rather than trace.go's single JSON array — a session
// can be interrupted without corrupting the file, and lz4 frames compress a
// stream of small objects fine without buffering them all in memory first.
type traceEvent struct {
	Session string `json:"session"`
	TS      int64  `json:"ts_us"`
	Code    string `json:"code"`
	Event   string `json:"event"`
}

// Tracer is the execution trace writer: one per VM, created only when
// -trace/KOD_TRACE_DIR asks for it (SPEC_FULL.md §6). Writes go through an
// lz4 frame writer so a long REPL session doesn't leave an uncompressed file
// growing unbounded on disk.
type Tracer struct {
	session string
	start   time.Time
	mu      sync.Mutex
	enc     *json.Encoder
	lz      *lz4.Writer
	file    io.Closer
}

// NewTracer creates a fresh compressed trace file under dir, named by a
// random session id so concurrent VMs never collide.
func NewTracer(dir string) (*Tracer, error) {
	session := uuid.NewString()
	path := fmt.Sprintf("%s/trace_%s.json.lz4", dir, session)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("kod: create trace file: %w", err)
	}
	lz := lz4.NewWriter(f)
	return &Tracer{
		session: session,
		start:   time.Now(),
		enc:     json.NewEncoder(lz),
		lz:      lz,
		file:    f,
	}, nil
}

// RecordDispatch logs one Run decision: which code object ran, and whether
// it went through the JIT or the interpreter (driver.go).
func (t *Tracer) RecordDispatch(codeName, event string) {
	t.write(traceEvent{
		Session: t.session,
		TS:      time.Since(t.start).Microseconds(),
		Code:    codeName,
		Event:   event,
	})
}

// RecordCache logs one module-cache lookup outcome ("hit" or "miss",
// modulecache.go).
func (t *Tracer) RecordCache(moduleName, event string) {
	t.write(traceEvent{
		Session: t.session,
		TS:      time.Since(t.start).Microseconds(),
		Code:    moduleName,
		Event:   "cache_" + event,
	})
}

func (t *Tracer) write(e traceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enc.Encode(e); err != nil {
		fmt.Fprintf(os.Stderr, "kod: trace write failed: %v\n", err)
	}
}

// Close flushes the lz4 frame and closes the underlying file.
func (t *Tracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.lz.Close(); err != nil {
		return err
	}
	return t.file.Close()
}
