package lox

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DisassembleChunk logs every instruction in chunk under name, one line per
// instruction, in the teacher's column format (offset, line-or-"|", mnemonic,
// operand, decoded constant where applicable).
func DisassembleChunk(chunk *Chunk, name string) {
	logrus.Debugf("== %s ==", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(chunk, offset)
	}
}

// DisassembleInstruction logs the instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(chunk *Chunk, offset int) int {
	line := fmt.Sprintf("%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		line += "   | "
	} else {
		line += fmt.Sprintf("%4d ", chunk.Lines[offset])
	}

	instruction := OpCode(chunk.Code[offset])
	switch instruction {
	case OpConstant:
		return constantInstruction(line, "OP_CONSTANT", chunk, offset)
	case OpNil:
		return simpleInstruction(line, "OP_NIL", offset)
	case OpTrue:
		return simpleInstruction(line, "OP_TRUE", offset)
	case OpFalse:
		return simpleInstruction(line, "OP_FALSE", offset)
	case OpPop:
		return simpleInstruction(line, "OP_POP", offset)
	case OpGetGlobal:
		return constantInstruction(line, "OP_GET_GLOBAL", chunk, offset)
	case OpDefineGlobal:
		return constantInstruction(line, "OP_DEFINE_GLOBAL", chunk, offset)
	case OpSetGlobal:
		return constantInstruction(line, "OP_SET_GLOBAL", chunk, offset)
	case OpEqual:
		return simpleInstruction(line, "OP_EQUAL", offset)
	case OpGreater:
		return simpleInstruction(line, "OP_GREATER", offset)
	case OpLess:
		return simpleInstruction(line, "OP_LESS", offset)
	case OpAdd:
		return simpleInstruction(line, "OP_ADD", offset)
	case OpSubtract:
		return simpleInstruction(line, "OP_SUBTRACT", offset)
	case OpMultiply:
		return simpleInstruction(line, "OP_MULTIPLY", offset)
	case OpDivide:
		return simpleInstruction(line, "OP_DIVIDE", offset)
	case OpNot:
		return simpleInstruction(line, "OP_NOT", offset)
	case OpNegate:
		return simpleInstruction(line, "OP_NEGATE", offset)
	case OpPrint:
		return simpleInstruction(line, "OP_PRINT", offset)
	case OpJump:
		return jumpInstruction(line, "OP_JUMP", 1, chunk, offset)
	case OpJumpIfFalse:
		return jumpInstruction(line, "OP_JUMP_IF_FALSE", 1, chunk, offset)
	case OpLoop:
		return jumpInstruction(line, "OP_LOOP", -1, chunk, offset)
	case OpReturn:
		return simpleInstruction(line, "OP_RETURN", offset)
	default:
		logrus.Debugf("%sUnknown opcode %d", line, instruction)
		return offset + 1
	}
}

func constantInstruction(prefix, name string, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	logrus.Debugf("%s%-16s %4d '%s'", prefix, name, constant, chunk.Constants[constant].String())
	return offset + 2
}

func simpleInstruction(prefix, name string, offset int) int {
	logrus.Debugf("%s%s", prefix, name)
	return offset + 1
}

func jumpInstruction(prefix, name string, sign int, chunk *Chunk, offset int) int {
	jump := uint16(chunk.Code[offset+1])<<8 | uint16(chunk.Code[offset+2])
	logrus.Debugf("%s%-16s %4d -> %d", prefix, name, offset, offset+3+sign*int(jump))
	return offset + 3
}
