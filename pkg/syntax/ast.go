// Package syntax defines the abstract syntax tree for the language and the
// parser which builds it from a token stream.
package syntax

import (
	"fmt"
	"strings"

	"github.com/xarkenz/icd-example/pkg/token"
)

// Node is the sealed interface implemented by all AST variants. The String
// form of a node is an S-expression rendering used for debug output.
type Node interface {
	fmt.Stringer
	implNode()
}

// IntegerLiteral is the AST leaf for an integer literal, wrapping the token
// directly so the parser can pass the current token straight into the tree.
type IntegerLiteral struct {
	token.IntegerLiteral
}

func (n IntegerLiteral) implNode() {}

// Identifier is the AST leaf for an identifier, wrapping the token directly.
type Identifier struct {
	token.Identifier
}

func (n Identifier) implNode() {}

// Operator is a binary operation applied to exactly two operands. When the
// operation is Assignment, the first operand is always an Identifier.
type Operator struct {
	Operation Operation
	Operands  [2]Node
}

func (n Operator) String() string {
	return "(" + n.Operands[0].String() + " " + n.Operation.String() + " " + n.Operands[1].String() + ")"
}

func (n Operator) implNode() {}

// FunctionCall is a call to a named function as part of an expression.
type FunctionCall struct {
	Callee    string
	Arguments []Node
}

func (n FunctionCall) String() string {
	var output strings.Builder
	output.WriteString("(" + n.Callee + "(")
	for _, argument := range n.Arguments {
		output.WriteString(argument.String() + ", ")
	}
	output.WriteString("))")
	return output.String()
}

func (n FunctionCall) implNode() {}

// Block is a sequence of statements enclosed in curly braces.
type Block struct {
	Statements []Node
}

func (n Block) String() string {
	var output strings.Builder
	output.WriteString("{ ")
	for _, statement := range n.Statements {
		output.WriteString(statement.String() + "; ")
	}
	output.WriteString("}")
	return output.String()
}

func (n Block) implNode() {}

// VariableDeclaration declares a local variable. All variables are implied
// to be int.
type VariableDeclaration struct {
	Name string
}

func (n VariableDeclaration) String() string {
	return "(int " + n.Name + ")"
}

func (n VariableDeclaration) implNode() {}

// Print is a print statement, writing the value of its printee expression
// to standard output at runtime.
type Print struct {
	Printee Node
}

func (n Print) String() string {
	return "(print " + n.Printee.String() + ")"
}

func (n Print) implNode() {}

// Conditional is an if statement with an optional else path. A nil
// Alternative means the alternative behavior is to skip past the consequent.
type Conditional struct {
	Condition   Node
	Consequent  Node
	Alternative Node
}

func (n Conditional) String() string {
	var output strings.Builder
	output.WriteString("(if " + n.Condition.String() + " " + n.Consequent.String())
	if n.Alternative != nil {
		output.WriteString(" " + n.Alternative.String())
	}
	output.WriteString(")")
	return output.String()
}

func (n Conditional) implNode() {}

// WhileLoop checks its condition at the beginning of every iteration and
// breaks once it is false.
type WhileLoop struct {
	Condition Node
	Body      Node
}

func (n WhileLoop) String() string {
	return "(while " + n.Condition.String() + " " + n.Body.String() + ")"
}

func (n WhileLoop) implNode() {}

// Return returns a value from the current function.
type Return struct {
	Value Node
}

func (n Return) String() string {
	return "(return " + n.Value.String() + ")"
}

func (n Return) implNode() {}

// FunctionDefinition is a top-level function definition. All parameter and
// return types are implied to be int.
type FunctionDefinition struct {
	Name       string
	Parameters []VariableDeclaration
	Body       Node
}

func (n FunctionDefinition) String() string {
	var output strings.Builder
	output.WriteString("(int " + n.Name + "(")
	for _, parameter := range n.Parameters {
		output.WriteString(parameter.String() + ", ")
	}
	output.WriteString(") " + n.Body.String() + ")")
	return output.String()
}

func (n FunctionDefinition) implNode() {}
