package lox

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const stackMax = 256

// maxGlobals bounds the globals table the way spec.md documents: exceeding
// it silently drops later definitions rather than erroring, a known limit
// carried forward unchanged from the teacher's design (see DESIGN.md).
const maxGlobals = 256

// Status is the terminal outcome of a VM run.
type Status int

const (
	StatusOK Status = iota
	StatusRuntimeError
)

// VM is a stack-based bytecode interpreter. Globals persist on the struct so
// a caller (the REPL) can reuse one VM across many Interpret calls while a
// one-shot script run simply discards a fresh one afterwards.
type VM struct {
	chunk *Chunk
	ip    int

	stack    []Value
	stackTop int

	globals map[string]Value

	debug bool
}

// NewVM returns a VM with an empty globals table.
func NewVM() *VM {
	vm := &VM{stack: make([]Value, 0, stackMax), globals: make(map[string]Value)}
	vm.resetStack()
	return vm
}

// SetDebug toggles trace-execution logging for subsequent runs.
func (vm *VM) SetDebug(debug bool) { vm.debug = debug }

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

func (vm *VM) push(v Value) {
	if vm.stackTop == len(vm.stack) {
		vm.stack = append(vm.stack, v)
	} else {
		vm.stack[vm.stackTop] = v
	}
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

// Run executes chunk to completion, returning StatusOK or StatusRuntimeError.
// The operand stack is reset before running; the globals table is not.
func (vm *VM) Run(chunk *Chunk) Status {
	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()
	return vm.run()
}

func (vm *VM) readByte() uint8 {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() uint16 {
	hi := vm.chunk.Code[vm.ip]
	lo := vm.chunk.Code[vm.ip+1]
	vm.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant() Value {
	return vm.chunk.Constants[vm.readByte()]
}

func (vm *VM) readString() string {
	return vm.readConstant().AsString()
}

func (vm *VM) run() Status {
	for {
		if vm.debug {
			vm.traceStack()
			DisassembleInstruction(vm.chunk, vm.ip)
		}

		switch OpCode(vm.readByte()) {
		case OpConstant:
			vm.push(vm.readConstant())

		case OpNil:
			vm.push(NilVal())
		case OpTrue:
			vm.push(BoolVal(true))
		case OpFalse:
			vm.push(BoolVal(false))
		case OpPop:
			vm.pop()

		case OpGetGlobal:
			name := vm.readString()
			value, ok := vm.globals[name]
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name)
				return StatusRuntimeError
			}
			vm.push(value)

		case OpDefineGlobal:
			name := vm.readString()
			if len(vm.globals) < maxGlobals {
				vm.globals[name] = vm.peek(0)
			}
			vm.pop()

		case OpSetGlobal:
			name := vm.readString()
			if _, ok := vm.globals[name]; !ok {
				vm.runtimeError("Undefined variable '%s'.", name)
				return StatusRuntimeError
			}
			vm.globals[name] = vm.peek(0)

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolVal(ValuesEqual(a, b)))

		case OpGreater:
			if !vm.binaryNumericOK() {
				return StatusRuntimeError
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(BoolVal(a > b))

		case OpLess:
			if !vm.binaryNumericOK() {
				return StatusRuntimeError
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(BoolVal(a < b))

		case OpAdd:
			if !vm.binaryNumericOK() {
				return StatusRuntimeError
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a + b))

		case OpSubtract:
			if !vm.binaryNumericOK() {
				return StatusRuntimeError
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a - b))

		case OpMultiply:
			if !vm.binaryNumericOK() {
				return StatusRuntimeError
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a * b))

		case OpDivide:
			if !vm.binaryNumericOK() {
				return StatusRuntimeError
			}
			if vm.peek(0).AsNumber() == 0 {
				vm.runtimeError("Division by zero.")
				return StatusRuntimeError
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(NumberVal(a / b))

		case OpNot:
			vm.push(BoolVal(!vm.pop().Truthy()))

		case OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return StatusRuntimeError
			}
			vm.push(NumberVal(-vm.pop().AsNumber()))

		case OpPrint:
			fmt.Println(vm.pop().String())

		case OpJump:
			offset := vm.readShort()
			vm.ip += int(offset)

		case OpJumpIfFalse:
			offset := vm.readShort()
			if !vm.peek(0).Truthy() {
				vm.ip += int(offset)
			}

		case OpLoop:
			offset := vm.readShort()
			vm.ip -= int(offset)

		case OpReturn:
			return StatusOK
		}
	}
}

// binaryNumericOK reports whether the two values on top of the stack are
// both numbers, raising the shared runtime error if not.
func (vm *VM) binaryNumericOK() bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	return true
}

func (vm *VM) traceStack() {
	logrus.Debugln(vm.stackTrace())
}

func (vm *VM) stackTrace() string {
	s := "          "
	for i := 0; i < vm.stackTop; i++ {
		s += "[ " + vm.stack[i].String() + " ]"
	}
	return s
}

func (vm *VM) runtimeError(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	line := vm.chunk.Lines[vm.ip-1]
	fmt.Fprintf(os.Stderr, "Runtime error: %s\n", message)
	logrus.Debugf("runtime error at line %d: %s", line, message)
	vm.resetStack()
}
