package syntax

import (
	"github.com/xarkenz/icd-example/pkg/token"
)

// Precedence ranks operations by the order in which they should be
// evaluated relative to each other. The levels come from the C operator
// precedence table with the numbering reversed, so a higher level binds
// tighter. The zero value means "no parent" during Pratt parsing.
type Precedence int

const (
	PrecedenceComma Precedence = iota + 1
	PrecedenceAssignment
	PrecedenceConditional
	PrecedenceLogicalOr
	PrecedenceLogicalAnd
	PrecedenceBitwiseOr
	PrecedenceBitwiseXor
	PrecedenceBitwiseAnd
	PrecedenceEquality
	PrecedenceInequality
	PrecedenceBitShift
	PrecedenceAdditive
	PrecedenceMultiplicative
	PrecedencePrefix
	PrecedencePostfix
)

// Operation enumerates the kinds of operation an Operator node can carry.
type Operation int

const (
	Assignment Operation = iota
	Equal
	NotEqual
	LessThan
	GreaterThan
	LessEqual
	GreaterEqual
	Addition
	Subtraction
	Multiplication
	Division
	Remainder
)

// operationInfo binds each operation to its key token and precedence level.
var operationInfo = map[Operation]struct {
	token      token.BasicToken
	precedence Precedence
}{
	Assignment:     {token.Equal, PrecedenceAssignment},
	Equal:          {token.DoubleEqual, PrecedenceEquality},
	NotEqual:       {token.NotEqual, PrecedenceEquality},
	LessThan:       {token.Less, PrecedenceInequality},
	GreaterThan:    {token.Greater, PrecedenceInequality},
	LessEqual:      {token.LessEqual, PrecedenceInequality},
	GreaterEqual:   {token.GreaterEqual, PrecedenceInequality},
	Addition:       {token.Plus, PrecedenceAdditive},
	Subtraction:    {token.Minus, PrecedenceAdditive},
	Multiplication: {token.Star, PrecedenceMultiplicative},
	Division:       {token.Slash, PrecedenceMultiplicative},
	Remainder:      {token.Percent, PrecedenceMultiplicative},
}

// Token returns the key token denoting this operation.
func (op Operation) Token() token.BasicToken {
	return operationInfo[op].token
}

// Precedence returns the precedence level assigned to this operation.
func (op Operation) Precedence() Precedence {
	return operationInfo[op].precedence
}

func (op Operation) String() string {
	return op.Token().Content()
}

// OperationFromToken finds the operation denoted by a token, if one exists.
// The mapping deliberately excludes '=': assignment is recognized by the
// statement parser only, never folded by the expression parser.
func OperationFromToken(t token.Token) (Operation, bool) {
	switch t {
	case token.DoubleEqual:
		return Equal, true
	case token.NotEqual:
		return NotEqual, true
	case token.Less:
		return LessThan, true
	case token.Greater:
		return GreaterThan, true
	case token.LessEqual:
		return LessEqual, true
	case token.GreaterEqual:
		return GreaterEqual, true
	case token.Plus:
		return Addition, true
	case token.Minus:
		return Subtraction, true
	case token.Star:
		return Multiplication, true
	case token.Slash:
		return Division, true
	case token.Percent:
		return Remainder, true
	}
	return 0, false
}
