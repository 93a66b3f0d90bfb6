package lox

// Precedence orders binary operators from loosest to tightest binding.
// PrecAssignment is the loosest level. An identifier consumes a directly
// following "=" wherever it appears, which is why "a + b = c" compiles as
// "a + (b = c)" — see SPEC_FULL.md §4.4's known-ambiguity note; a "=" left
// after any other expression is reported as an invalid assignment target.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecPrimary
)

// parseFn is either a prefix or an infix parselet, bound to the compiler that
// owns the parser state it mutates.
type parseFn func(c *compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is indexed by TokenType; built once in newRuleTable so the table
// doesn't depend on package init order across files.
func newRuleTable() []parseRule {
	r := make([]parseRule, TokenEOF+1)
	r[TokenLeftParen] = parseRule{prefix: (*compiler).grouping}
	r[TokenMinus] = parseRule{prefix: (*compiler).unary, infix: (*compiler).binary, precedence: PrecTerm}
	r[TokenPlus] = parseRule{infix: (*compiler).binary, precedence: PrecTerm}
	r[TokenSlash] = parseRule{infix: (*compiler).binary, precedence: PrecFactor}
	r[TokenStar] = parseRule{infix: (*compiler).binary, precedence: PrecFactor}
	r[TokenBang] = parseRule{prefix: (*compiler).unary}
	r[TokenBangEqual] = parseRule{infix: (*compiler).binary, precedence: PrecEquality}
	r[TokenEqualEqual] = parseRule{infix: (*compiler).binary, precedence: PrecEquality}
	r[TokenGreater] = parseRule{infix: (*compiler).binary, precedence: PrecComparison}
	r[TokenGreaterEqual] = parseRule{infix: (*compiler).binary, precedence: PrecComparison}
	r[TokenLess] = parseRule{infix: (*compiler).binary, precedence: PrecComparison}
	r[TokenLessEqual] = parseRule{infix: (*compiler).binary, precedence: PrecComparison}
	r[TokenIdentifier] = parseRule{prefix: (*compiler).variable}
	r[TokenString] = parseRule{prefix: (*compiler).string}
	r[TokenNumber] = parseRule{prefix: (*compiler).number}
	r[TokenFalse] = parseRule{prefix: (*compiler).literal}
	r[TokenNil] = parseRule{prefix: (*compiler).literal}
	r[TokenTrue] = parseRule{prefix: (*compiler).literal}
	return r
}

func (c *compiler) getRule(t TokenType) parseRule {
	return c.rules[t]
}
