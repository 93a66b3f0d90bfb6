package lox

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// syncTokens are the leading tokens synchronize() treats as a fresh
// declaration boundary — the set of statement-starting keywords.
var syncTokens = []TokenType{
	TokenClass, TokenFun, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn,
}

// maxJump is the largest offset a 16-bit jump operand can encode.
const maxJump = 1<<16 - 1

// maxConstants bounds the constant pool to what a single byte can index.
const maxConstants = 1<<8 - 1

// CompileError is one diagnostic raised by the scanner or compiler, tagged
// with the location text spec.md §6 prescribes: " at end", " at 'LEXEME'",
// or empty for scanner-originated errors.
type CompileError struct {
	Line     int
	Location string
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Location, e.Message)
}

// compiler holds all single-pass compilation state: the scanner it pulls
// tokens from, the current/previous token pair, panic-mode bookkeeping, the
// chunk it emits into, and the aggregated diagnostics collected so far.
type compiler struct {
	scanner *Scanner
	chunk   *Chunk
	rules   []parseRule

	current   Token
	previous  Token
	hadError  bool
	panicMode bool

	diagnostics *multierror.Error
	debug       bool
}

// Compile runs the scanner and single-pass compiler over source, emitting
// into chunk. It returns whether compilation succeeded and an aggregate of
// every diagnostic that survived panic-mode suppression (nil if none).
func Compile(source string, chunk *Chunk, debug bool) (bool, error) {
	c := &compiler{
		scanner: NewScanner(source),
		chunk:   chunk,
		rules:   newRuleTable(),
		debug:   debug,
	}

	c.advance()
	for !c.match(TokenEOF) {
		c.declaration()
	}
	c.endCompiler()

	if c.diagnostics != nil {
		c.diagnostics.ErrorFormat = oneLinePerError
	}
	var err error
	if c.diagnostics != nil {
		err = c.diagnostics
	}
	return !c.hadError, err
}

func oneLinePerError(errs []error) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "\n"
		}
		s += e.Error()
	}
	return s
}

func (c *compiler) currentChunk() *Chunk { return c.chunk }

func (c *compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Type != TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *compiler) consume(t TokenType, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *compiler) check(t TokenType) bool {
	return c.current.Type == t
}

func (c *compiler) match(t TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *compiler) endCompiler() {
	c.emitReturn()
	if c.debug && !c.hadError {
		DisassembleChunk(c.currentChunk(), "code")
	}
}

// --- declarations & statements ---------------------------------------------

func (c *compiler) declaration() {
	if c.match(TokenVar) {
		c.varDeclaration()
	} else {
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(TokenEqual) {
		c.expression()
	} else {
		c.emitByte(uint8(OpNil))
	}
	c.consume(TokenSemicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *compiler) statement() {
	switch {
	case c.match(TokenPrint):
		c.printStatement()
	case c.match(TokenIf):
		c.ifStatement()
	case c.match(TokenWhile):
		c.whileStatement()
	case c.match(TokenLeftBrace):
		c.block()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) printStatement() {
	c.expression()
	c.consume(TokenSemicolon, "Expect ';' after value.")
	c.emitByte(uint8(OpPrint))
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(TokenSemicolon, "Expect ';' after expression.")
	c.emitByte(uint8(OpPop))
}

func (c *compiler) block() {
	for !c.check(TokenRightBrace) && !c.check(TokenEOF) {
		c.declaration()
	}
	c.consume(TokenRightBrace, "Expect '}' after block.")
}

func (c *compiler) ifStatement() {
	c.consume(TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitByte(uint8(OpPop))
	c.declaration()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitByte(uint8(OpPop))

	if c.match(TokenElse) {
		c.declaration()
	}
	c.patchJump(elseJump)
}

func (c *compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitByte(uint8(OpPop))
	c.declaration()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitByte(uint8(OpPop))
}

func (c *compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != TokenEOF {
		if c.previous.Type == TokenSemicolon {
			return
		}
		if slices.Contains(syncTokens, c.current.Type) {
			return
		}
		c.advance()
	}
}

// --- expressions -------------------------------------------------------------

func (c *compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *compiler) parsePrecedence(precedence Precedence) {
	c.advance()
	prefixRule := c.getRule(c.previous.Type).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := precedence <= PrecAssignment
	prefixRule(c, canAssign)

	for precedence <= c.getRule(c.current.Type).precedence {
		c.advance()
		infixRule := c.getRule(c.previous.Type).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func (c *compiler) grouping(_ bool) {
	c.expression()
	c.consume(TokenRightParen, "Expect ')' after expression.")
}

func (c *compiler) unary(_ bool) {
	operatorType := c.previous.Type
	c.parsePrecedence(PrecUnary)

	switch operatorType {
	case TokenBang:
		c.emitByte(uint8(OpNot))
	case TokenMinus:
		c.emitByte(uint8(OpNegate))
	}
}

func (c *compiler) binary(_ bool) {
	operatorType := c.previous.Type
	rule := c.getRule(operatorType)
	c.parsePrecedence(rule.precedence + 1)

	switch operatorType {
	case TokenBangEqual:
		c.emitBytes(uint8(OpEqual), uint8(OpNot))
	case TokenEqualEqual:
		c.emitByte(uint8(OpEqual))
	case TokenGreater:
		c.emitByte(uint8(OpGreater))
	case TokenGreaterEqual:
		c.emitBytes(uint8(OpLess), uint8(OpNot))
	case TokenLess:
		c.emitByte(uint8(OpLess))
	case TokenLessEqual:
		c.emitBytes(uint8(OpGreater), uint8(OpNot))
	case TokenPlus:
		c.emitByte(uint8(OpAdd))
	case TokenMinus:
		c.emitByte(uint8(OpSubtract))
	case TokenStar:
		c.emitByte(uint8(OpMultiply))
	case TokenSlash:
		c.emitByte(uint8(OpDivide))
	}
}

func (c *compiler) literal(_ bool) {
	switch c.previous.Type {
	case TokenFalse:
		c.emitByte(uint8(OpFalse))
	case TokenNil:
		c.emitByte(uint8(OpNil))
	case TokenTrue:
		c.emitByte(uint8(OpTrue))
	}
}

func (c *compiler) number(_ bool) {
	value, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(NumberVal(value))
}

func (c *compiler) string(_ bool) {
	// Lexeme is the raw token including the surrounding quotes.
	lexeme := c.previous.Lexeme
	c.emitConstant(StringVal(lexeme[1 : len(lexeme)-1]))
}

// variable lets an identifier take a directly following "=" in any position,
// so "a + b = c" compiles as "a + (b = c)".
func (c *compiler) variable(_ bool) {
	c.namedVariable(c.previous, true)
}

func (c *compiler) namedVariable(name Token, canAssign bool) {
	arg := c.identifierConstant(name)

	if canAssign && c.match(TokenEqual) {
		c.expression()
		c.emitBytes(uint8(OpSetGlobal), arg)
	} else {
		c.emitBytes(uint8(OpGetGlobal), arg)
	}
}

// --- variables ---------------------------------------------------------------

func (c *compiler) parseVariable(errorMessage string) uint8 {
	c.consume(TokenIdentifier, errorMessage)
	return c.identifierConstant(c.previous)
}

func (c *compiler) identifierConstant(name Token) uint8 {
	return c.makeConstant(StringVal(name.Lexeme))
}

func (c *compiler) defineVariable(global uint8) {
	c.emitBytes(uint8(OpDefineGlobal), global)
}

// --- emission ------------------------------------------------------------

func (c *compiler) makeConstant(value Value) uint8 {
	constant := c.currentChunk().AddConstant(value)
	if constant > maxConstants {
		logrus.Panicln("too many constants in one chunk")
	}
	return uint8(constant)
}

func (c *compiler) emitConstant(value Value) {
	c.emitBytes(uint8(OpConstant), c.makeConstant(value))
}

func (c *compiler) emitReturn() {
	c.emitByte(uint8(OpReturn))
}

func (c *compiler) emitByte(b uint8) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *compiler) emitBytes(b1, b2 uint8) {
	c.emitByte(b1)
	c.emitByte(b2)
}

// emitJump writes the opcode followed by a two-byte placeholder and returns
// the placeholder's offset, to be filled in later by patchJump.
func (c *compiler) emitJump(op OpCode) int {
	c.emitByte(uint8(op))
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > maxJump {
		logrus.Panicln("too much code to jump over")
	}
	c.currentChunk().Code[offset] = uint8((jump >> 8) & 0xff)
	c.currentChunk().Code[offset+1] = uint8(jump & 0xff)
}

func (c *compiler) emitLoop(loopStart int) {
	c.emitByte(uint8(OpLoop))

	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > maxJump {
		logrus.Panicln("loop body too large")
	}
	c.emitByte(uint8((offset >> 8) & 0xff))
	c.emitByte(uint8(offset & 0xff))
}

// --- diagnostics -----------------------------------------------------------

func (c *compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *compiler) errorAt(token Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	ce := &CompileError{Line: token.Line, Message: message}
	switch token.Type {
	case TokenEOF:
		ce.Location = " at end"
	case TokenError:
		// Nothing; the scanner's own message is already the message.
	default:
		ce.Location = fmt.Sprintf(" at '%s'", token.Lexeme)
	}

	logrus.Debugln(ce.Error())
	c.diagnostics = multierror.Append(c.diagnostics, ce)
	c.hadError = true
}
