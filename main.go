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
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dc0d/onexit"
	"github.com/fsnotify/fsnotify"

	"github.com/launix-de/kod/kod"
)

func main() {
	fmt.Print(`kod Copyright (C) 2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;
`)

	traceFlag := flag.Bool("trace", false, "write a compressed execution trace (or set KOD_TRACE_DIR)")
	watchFlag := flag.Bool("watch", false, "re-run the given file whenever it changes on disk")
	cacheDir := flag.String("cachedir", ".kod-cache", "directory for compiled-module cache entries")
	flag.Parse()

	vm, tracer := newSession(*traceFlag)
	if tracer != nil {
		onexit.Register(func() { tracer.Close() })
	}
	registerBuiltins(vm)

	cache, err := kod.NewModuleCache(*cacheDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kod: module cache disabled:", err)
		cache = nil
	}

	args := flag.Args()
	if len(args) == 0 {
		// registerBuiltins already populated vm.Module's NamePool, so the
		// session compiler's nameIndex snapshot below includes "print".
		compiler := kod.NewCompilerForSession(vm.Module)
		kod.Repl(vm, compiler)
		return
	}

	path := args[0]
	if *watchFlag {
		runWatch(path, cache, vm, tracer)
		return
	}
	if err := runFile(path, cache, vm); err != nil {
		fmt.Fprintln(os.Stderr, "kod:", err)
		os.Exit(1)
	}
}

func newSession(trace bool) (*kod.VM, *kod.Tracer) {
	module := &kod.Module{Name: "<session>", Entry: &kod.Code{Name: "<module>"}}
	vm := kod.NewVM(module)

	traceDir := os.Getenv("KOD_TRACE_DIR")
	if traceDir == "" {
		traceDir = "."
	}
	if trace || os.Getenv("KOD_TRACE_DIR") != "" {
		tracer, err := kod.NewTracer(traceDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "kod: trace disabled:", err)
			return vm, nil
		}
		vm.Trace = tracer
		return vm, tracer
	}
	return vm, nil
}

// registerBuiltins binds every native function into vm's current module, so
// compiled code that refers to them by name resolves correctly. It must run
// after vm.Module is the module that will actually be compiled/run against,
// since BindGlobal writes into that module's NamePool.
func registerBuiltins(vm *kod.VM) {
	vm.BindGlobal("print", func(vm *kod.VM, args []kod.Object) kod.Object {
		for i, a := range args {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(kod.Describe(vm, a))
		}
		fmt.Println()
		return kod.NewNull()
	})
}

// runFile loads source from path — from cache when available — compiles it
// if needed, stores the result, and runs its entry code object to
// completion. Builtins are (re-)bound into the freshly loaded module before
// running it, since a cache hit or a fresh compile both produce a module
// whose NamePool was built without them.
func runFile(path string, cache *kod.ModuleCache, vm *kod.VM) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var module *kod.Module
	if cache != nil {
		if m, ok := cache.Load(string(source)); ok {
			if vm.Trace != nil {
				vm.Trace.RecordCache(path, "hit")
			}
			module = m
		}
	}
	if module == nil {
		if vm.Trace != nil && cache != nil {
			vm.Trace.RecordCache(path, "miss")
		}
		program, err := kod.ParseSource(string(source))
		if err != nil {
			return err
		}
		module, err = kod.CompileProgram(path, program)
		if err != nil {
			return err
		}
		if cache != nil {
			if err := cache.Store(string(source), module); err != nil {
				fmt.Fprintln(os.Stderr, "kod: could not write module cache:", err)
			}
		}
	}

	vm.Module = module
	registerBuiltins(vm)
	vm.Run(module.Entry)
	return nil
}

// runWatch re-runs path every time fsnotify reports it changed, until the
// process is interrupted. Each run resets the same VM (VM.Reset) to an empty
// module first, so global state never leaks between executions of the
// edited file.
func runWatch(path string, cache *kod.ModuleCache, vm *kod.VM, tracer *kod.Tracer) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, "kod: watch disabled:", err)
		if err := runFile(path, cache, vm); err != nil {
			fmt.Fprintln(os.Stderr, "kod:", err)
		}
		return
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		fmt.Fprintln(os.Stderr, "kod: watch disabled:", err)
		return
	}

	run := func() {
		vm.Reset(&kod.Module{Name: path, Entry: &kod.Code{Name: "<module>"}})
		if err := runFile(path, cache, vm); err != nil {
			fmt.Fprintln(os.Stderr, "kod:", err)
		}
	}
	run()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				run()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintln(os.Stderr, "kod: watch error:", err)
		}
	}
}
