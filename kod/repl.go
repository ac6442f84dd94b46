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
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/chzyer/readline"
)

const (
	replPrompt     = "\033[32m>\033[0m "
	replContPrompt = "\033[32m.\033[0m "
	replResult     = "\033[31m=\033[0m "
)

// Repl runs an interactive read-eval-print loop against vm, one line (or
// brace-balanced group of lines) at a time. Grounded on prompt.go's
// readline-driven loop and its anti-panic recover wrapper, adapted from a
// single global Env to this package's Compiler/VM split.
func Repl(vm *VM, compiler *Compiler) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       ".kod-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if line == "" {
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r)
					if isDebugEnv() {
						fmt.Println(string(debug.Stack()))
					}
					oldline = ""
					l.SetPrompt(replPrompt)
				}
			}()
			result, err := evalLine(vm, compiler, line)
			if err != nil {
				if isUnterminatedBlock(err) {
					// "{" without its matching "}" yet: keep accumulating.
					oldline = line + "\n"
					l.SetPrompt(replContPrompt)
					return
				}
				fmt.Println(err)
				oldline = ""
				l.SetPrompt(replPrompt)
				return
			}
			fmt.Print(replResult)
			fmt.Println(describeObject(vm, result))
			oldline = ""
			l.SetPrompt(replPrompt)
		}()
	}
}

// evalLine compiles one REPL line into the shared module/VM and runs it.
// If the line's only statement is an expression, its value is returned
// directly instead of being discarded, so the REPL can echo it.
func evalLine(vm *VM, compiler *Compiler, line string) (Object, error) {
	block, err := ParseSource(line)
	if err != nil {
		return 0, err
	}

	lineCode := &Code{Name: "<repl>"}
	if len(block.Stmts) == 1 && block.Stmts[0].Kind == NodeExprStmt {
		if err := compiler.compileExpr(lineCode, block.Stmts[0].X); err != nil {
			return 0, err
		}
	} else {
		if err := compiler.compileBlock(lineCode, block); err != nil {
			return 0, err
		}
		lineCode.Emit(OpLoadNull)
	}
	lineCode.Emit(OpReturn)
	return vm.Run(lineCode), nil
}

// Describe renders a value for display — the REPL's result line and the
// print builtin (main.go) share this formatting.
func Describe(vm *VM, o Object) string {
	return describeObject(vm, o)
}

func describeObject(vm *VM, o Object) string {
	switch o.Tag() {
	case TagInt:
		return fmt.Sprintf("%d", o.Int())
	case TagFloat:
		return fmt.Sprintf("%g", o.Float())
	case TagNull:
		return "null"
	case TagNativeFunc:
		return fmt.Sprintf("<native #%d>", o.NativeFuncIndex())
	case TagPointer:
		h := HeapObjectAt(o)
		switch h.Kind {
		case HeapString:
			return h.Str
		case HeapCode:
			return fmt.Sprintf("<function %s>", h.Code.Name)
		default:
			return fmt.Sprintf("<%v>", h.Kind)
		}
	default:
		return fmt.Sprintf("<%s>", o.Tag())
	}
}

func isUnterminatedBlock(err error) bool {
	return strings.Contains(err.Error(), "unterminated block")
}

func isDebugEnv() bool {
	return os.Getenv("KOD_DEBUG") != ""
}
