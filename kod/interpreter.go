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

// Interpret runs every opcode bytecode.go defines, not just the JIT subset
// (SPEC_FULL.md §4.8/§2 component L). driver.go's Run calls this for any
// code object the lowerer rejects; it is never partial — a code object runs
// either entirely natively or entirely here.
func (vm *VM) Interpret(code *Code) Object {
	var stack []Object
	push := func(o Object) { stack = append(stack, o) }
	pop := func() Object {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return o
	}

	offset := 0
	for offset < len(code.Bytes) {
		op := Opcode(code.Bytes[offset])
		switch op {
		case OpLoadConst:
			idx := code.ReadOperand(offset)
			obj, err := vm.MaterializeConstant(idx)
			if err != nil {
				panic(err)
			}
			push(obj)
			offset += 5

		case OpLoadName:
			push(loadName(vm, code.ReadOperand(offset)))
			offset += 5

		case OpStoreName:
			storeName(vm, code.ReadOperand(offset), pop())
			offset += 5

		case OpLoadNull:
			push(NewNull())
			offset++

		case OpPopTop:
			pop()
			offset++

		case OpDup:
			top := stack[len(stack)-1]
			push(top)
			offset++

		case OpRotTwo:
			n := len(stack)
			stack[n-1], stack[n-2] = stack[n-2], stack[n-1]
			offset++

		case OpUnaryNot:
			push(boolObject(!pop().Truthy()))
			offset++

		case OpUnaryNeg:
			x := pop()
			switch x.Tag() {
			case TagInt:
				push(NewInt(-x.Int()))
			case TagFloat:
				push(NewFloat(-x.Float()))
			default:
				panic(fmt.Sprintf("kod: UNARY_NEG: unsupported tag %s", x.Tag()))
			}
			offset++

		case OpBinaryAdd:
			rhs, lhs := pop(), pop()
			push(rustAdd(vm, lhs, rhs))
			offset++

		case OpBinarySub, OpBinaryMul, OpBinaryDiv, OpBinaryMod,
			OpBinaryAnd, OpBinaryOr, OpBinaryXor, OpBinaryShl, OpBinaryShr:
			rhs, lhs := pop(), pop()
			push(arith(op, lhs, rhs))
			offset++

		case OpBinaryBooleanLessThan:
			rhs, lhs := pop(), pop()
			push(rustLt(vm, lhs, rhs))
			offset++

		case OpBinaryBooleanGreaterThan:
			rhs, lhs := pop(), pop()
			push(rustLt(vm, rhs, lhs))
			offset++

		case OpBinaryBooleanLessEqual:
			rhs, lhs := pop(), pop()
			push(boolObject(!rustLt(vm, rhs, lhs).Truthy()))
			offset++

		case OpBinaryBooleanGreaterEqual:
			rhs, lhs := pop(), pop()
			push(boolObject(!rustLt(vm, lhs, rhs).Truthy()))
			offset++

		case OpBinaryBooleanEqual:
			rhs, lhs := pop(), pop()
			push(boolObject(objectsEqual(lhs, rhs)))
			offset++

		case OpBinaryBooleanNotEqual:
			rhs, lhs := pop(), pop()
			push(boolObject(!objectsEqual(lhs, rhs)))
			offset++

		case OpBinaryBooleanAnd:
			rhs, lhs := pop(), pop()
			push(boolObject(lhs.Truthy() && rhs.Truthy()))
			offset++

		case OpBinaryBooleanOr:
			rhs, lhs := pop(), pop()
			push(boolObject(lhs.Truthy() || rhs.Truthy()))
			offset++

		case OpJump:
			offset = int(code.ReadOperand(offset))

		case OpPopJumpIfFalse:
			target := code.ReadOperand(offset)
			if !pop().Truthy() {
				offset = int(target)
			} else {
				offset += 5
			}

		case OpReturn:
			return pop()

		case OpCall:
			argc := int(code.ReadOperand(offset))
			args := make([]Object, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = pop()
			}
			callee := pop()
			push(vm.call(callee, args))
			offset += 5

		case OpBuildTuple:
			n := int(code.ReadOperand(offset))
			items := popN(&stack, n)
			push(vm.AllocTuple(items))
			offset += 5

		case OpBuildList:
			n := int(code.ReadOperand(offset))
			items := popN(&stack, n)
			push(vm.AllocList(items))
			offset += 5

		case OpBuildDict:
			n := int(code.ReadOperand(offset))
			pairs := popN(&stack, n*2)
			dictObj := vm.AllocDict()
			d := HeapObjectAt(dictObj)
			for i := 0; i < len(pairs); i += 2 {
				d.Dict[pairs[i]] = pairs[i+1]
			}
			push(dictObj)
			offset += 5

		case OpListExtend:
			other := pop()
			base := pop()
			list := HeapObjectAt(base)
			list.List = append(list.List, HeapObjectAt(other).List...)
			push(base)
			offset++

		case OpSubscript:
			index := pop()
			base := pop()
			push(subscript(base, index))
			offset++

		case OpStoreSubscript:
			value := pop()
			index := pop()
			base := pop()
			storeSubscript(base, index, value)
			offset++

		case OpLoadAttr, OpLoadMethod:
			idx := code.ReadOperand(offset)
			obj := pop()
			push(dictGetByName(HeapObjectAt(obj), vm.Module.NamePool[idx]))
			offset += 5

		case OpStoreAttr:
			idx := code.ReadOperand(offset)
			value := pop()
			obj := pop()
			dictSetByName(vm, HeapObjectAt(obj), vm.Module.NamePool[idx], value)
			offset += 5

		case OpUnpackSequence:
			n := int(code.ReadOperand(offset))
			seq := pop()
			items := sequenceItems(seq)
			if len(items) != n {
				panic(fmt.Sprintf("kod: UNPACK_SEQUENCE: expected %d items, got %d", n, len(items)))
			}
			for i := n - 1; i >= 0; i-- {
				push(items[i])
			}
			offset += 5

		default:
			panic(fmt.Sprintf("kod: interpreter: unknown opcode %s", op.Name()))
		}
	}
	return NewNull()
}

// call dispatches a CALL opcode's callee: a NativeFunc index runs through
// vm.CallNative, a heap-allocated Code object binds its parameters into
// globals by name and runs recursively through vm.Run (so a called
// function's own code still gets the JIT-or-interpret choice §4.8 makes for
// every other code object).
func (vm *VM) call(callee Object, args []Object) Object {
	switch callee.Tag() {
	case TagNativeFunc:
		return vm.CallNative(callee.NativeFuncIndex(), args)
	case TagPointer:
		h := HeapObjectAt(callee)
		if h.Kind != HeapCode {
			panic(fmt.Sprintf("kod: CALL: object is not callable (heap kind %d)", h.Kind))
		}
		if len(args) != len(h.Code.Params) {
			panic(fmt.Sprintf("kod: CALL: %s expects %d argument(s), got %d", h.Code.Name, len(h.Code.Params), len(args)))
		}
		for i, p := range h.Code.Params {
			storeName(vm, vm.NamePoolIndex(p), args[i])
		}
		return vm.Run(h.Code)
	default:
		panic(fmt.Sprintf("kod: CALL: tag %s is not callable", callee.Tag()))
	}
}

// NamePoolIndex finds or appends name in the module's NamePool. Binding a
// function parameter always needs the same index storeName/loadName agree
// on, and a parameter name might not otherwise appear in the caller's code;
// it is also how main.go binds a native builtin to the name a compiled
// program refers to it by.
func (vm *VM) NamePoolIndex(name string) uint32 {
	for i, n := range vm.Module.NamePool {
		if n == name {
			return uint32(i)
		}
	}
	idx := uint32(len(vm.Module.NamePool))
	vm.Module.NamePool = append(vm.Module.NamePool, name)
	return idx
}

func boolObject(b bool) Object {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

func popN(stack *[]Object, n int) []Object {
	s := *stack
	items := make([]Object, n)
	copy(items, s[len(s)-n:])
	*stack = s[:len(s)-n]
	return items
}

// arith implements the non-fast-pathed binary arithmetic/bitwise opcodes —
// everything BINARY_ADD's JIT fast path and rust_add (callbacks.go) don't
// cover. Int-only, matching rust_add's own scope (SPEC_FULL.md §4.7 doesn't
// ask the slow path to grow a numeric tower the original never had).
func arith(op Opcode, lhs, rhs Object) Object {
	if lhs.Tag() != TagInt || rhs.Tag() != TagInt {
		panic(fmt.Sprintf("kod: %s: unsupported operand tags %s, %s", op.Name(), lhs.Tag(), rhs.Tag()))
	}
	a, b := lhs.Int(), rhs.Int()
	switch op {
	case OpBinarySub:
		return NewInt(a - b)
	case OpBinaryMul:
		return NewInt(a * b)
	case OpBinaryDiv:
		if b == 0 {
			panic("kod: BINARY_DIV: division by zero")
		}
		return NewInt(a / b)
	case OpBinaryMod:
		if b == 0 {
			panic("kod: BINARY_MOD: division by zero")
		}
		return NewInt(a % b)
	case OpBinaryAnd:
		return NewInt(a & b)
	case OpBinaryOr:
		return NewInt(a | b)
	case OpBinaryXor:
		return NewInt(a ^ b)
	case OpBinaryShl:
		return NewInt(a << uint(b))
	case OpBinaryShr:
		return NewInt(a >> uint(b))
	default:
		panic(fmt.Sprintf("kod: %s: not an arithmetic opcode", op.Name()))
	}
}

// objectsEqual implements BINARY_BOOLEAN_EQUAL's value equality: raw word
// equality for everything except Pointer-tagged strings, which compare by
// content — two separately-allocated strings with the same text must
// compare equal even though their pointers differ.
func objectsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a.Tag() == TagPointer && b.Tag() == TagPointer {
		ha, hb := HeapObjectAt(a), HeapObjectAt(b)
		if ha.Kind == HeapString && hb.Kind == HeapString {
			return ha.Str == hb.Str
		}
	}
	return false
}

func subscript(base, index Object) Object {
	h := HeapObjectAt(base)
	switch h.Kind {
	case HeapList:
		return h.List[index.Int()]
	case HeapTuple:
		return h.Tuple[index.Int()]
	case HeapDict:
		return dictLookup(h, index)
	case HeapString:
		return NewInt(int64(h.Str[index.Int()]))
	default:
		panic(fmt.Sprintf("kod: SUBSCRIPT: heap kind %d is not subscriptable", h.Kind))
	}
}

func storeSubscript(base, index, value Object) {
	h := HeapObjectAt(base)
	switch h.Kind {
	case HeapList:
		h.List[index.Int()] = value
	case HeapDict:
		dictStore(h, index, value)
	default:
		panic(fmt.Sprintf("kod: STORE_SUBSCRIPT: heap kind %d does not support item assignment", h.Kind))
	}
}

// dictLookup/dictStore implement map[Object]Object access that still treats
// two equal-content strings as the same key, by falling back to a linear
// scan with objectsEqual when a direct hash lookup misses (string keys hash
// by pointer, via Object's raw word, not by content).
func dictLookup(h *HeapObject, key Object) Object {
	if v, ok := h.Dict[key]; ok {
		return v
	}
	for k, v := range h.Dict {
		if objectsEqual(k, key) {
			return v
		}
	}
	return NewNull()
}

func dictStore(h *HeapObject, key, value Object) {
	if _, ok := h.Dict[key]; ok {
		h.Dict[key] = value
		return
	}
	for k := range h.Dict {
		if objectsEqual(k, key) {
			h.Dict[k] = value
			return
		}
	}
	h.Dict[key] = value
}

func dictGetByName(h *HeapObject, name string) Object {
	for k, v := range h.Dict {
		if k.Tag() == TagPointer {
			if kh := HeapObjectAt(k); kh.Kind == HeapString && kh.Str == name {
				return v
			}
		}
	}
	return NewNull()
}

func dictSetByName(vm *VM, h *HeapObject, name string, value Object) {
	key := vm.AllocString(name)
	dictStore(h, key, value)
}

func sequenceItems(o Object) []Object {
	h := HeapObjectAt(o)
	switch h.Kind {
	case HeapList:
		return h.List
	case HeapTuple:
		return h.Tuple
	default:
		panic(fmt.Sprintf("kod: UNPACK_SEQUENCE: heap kind %d is not a sequence", h.Kind))
	}
}
