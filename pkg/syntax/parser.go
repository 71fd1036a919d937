package syntax

import (
	"fmt"

	"github.com/xarkenz/icd-example/pkg/token"
)

// Parser turns a sequence of scanned tokens into abstract syntax trees.
// Statements are parsed by recursive descent; binary expressions use a
// recursive implementation of Pratt parsing based on the C operator
// precedence table.
type Parser struct {
	scanner *token.Scanner
}

// NewParser creates a parser over an existing scanner, priming it with the
// first token of the source program.
func NewParser(scanner *token.Scanner) (*Parser, error) {
	if _, err := scanner.ScanToken(); err != nil {
		return nil, err
	}
	return &Parser{scanner: scanner}, nil
}

// expectBasic checks that the current token is the given basic token, then
// advances past it.
func (p *Parser) expectBasic(expected token.BasicToken) error {
	current, err := p.scanner.ExpectToken()
	if err != nil {
		return err
	}
	if current != expected {
		return fmt.Errorf("expected '%s', got '%s'", expected.Content(), current)
	}
	_, err = p.scanner.ScanToken()
	return err
}

// expectIdentifier checks that the current token is an identifier, then
// advances past it and returns it.
func (p *Parser) expectIdentifier() (token.Identifier, error) {
	current, err := p.scanner.ExpectToken()
	if err != nil {
		return token.Identifier{}, err
	}
	identifier, ok := current.(token.Identifier)
	if !ok {
		return token.Identifier{}, fmt.Errorf("expected an identifier, got '%s'", current)
	}
	if _, err := p.scanner.ScanToken(); err != nil {
		return token.Identifier{}, err
	}
	return identifier, nil
}

// ParseTopLevelStatement parses the next top-level statement, which must be
// a function definition. A nil node (with a nil error) means the end of the
// input was reached.
//
// Postcondition: the current token is the first token of the next top-level
// statement.
func (p *Parser) ParseTopLevelStatement() (Node, error) {
	if p.scanner.GetToken() == nil {
		return nil, nil
	}

	// 'int' NAME '(' parameters? ')' BLOCK
	if err := p.expectBasic(token.Int); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.ParenLeft); err != nil {
		return nil, err
	}

	// Greedily parse the parameter list, which is a comma-separated sequence
	// of 'int' NAME declarations
	var parameters []VariableDeclaration
	current, err := p.scanner.ExpectToken()
	if err != nil {
		return nil, err
	}
	if current != token.ParenRight {
		for {
			if err := p.expectBasic(token.Int); err != nil {
				return nil, err
			}
			parameterName, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			parameters = append(parameters, VariableDeclaration{Name: parameterName.Name})

			current, err := p.scanner.ExpectToken()
			if err != nil {
				return nil, err
			}
			if current != token.Comma {
				break
			}
			if _, err := p.scanner.ScanToken(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectBasic(token.ParenRight); err != nil {
		return nil, err
	}

	// The function body must be a block statement
	current, err = p.scanner.ExpectToken()
	if err != nil {
		return nil, err
	}
	if current != token.CurlyLeft {
		return nil, fmt.Errorf("expected a block for function body, got '%s'", current)
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}

	return FunctionDefinition{Name: name.Name, Parameters: parameters, Body: body}, nil
}

// ParseStatement parses a statement, dispatching on the current token.
//
// Precondition: the current token is the first token of the statement.
// Postcondition: the current token is the first token of the next statement.
func (p *Parser) ParseStatement() (Node, error) {
	firstToken, err := p.scanner.ExpectToken()
	if err != nil {
		return nil, err
	}

	switch firstToken {
	case token.CurlyLeft:
		return p.parseBlock()
	case token.Int:
		return p.parseVariableDeclaration()
	case token.Print:
		return p.parsePrint()
	case token.If:
		return p.parseConditional()
	case token.While:
		return p.parseWhileLoop()
	case token.Return:
		return p.parseReturn()
	}

	if identifier, ok := firstToken.(token.Identifier); ok {
		return p.parseAssignmentOrCall(identifier)
	}

	return nil, fmt.Errorf("unexpected token '%s'", firstToken)
}

// parseBlock parses a block of statements enclosed in curly braces. The
// current token is the opening brace.
func (p *Parser) parseBlock() (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}

	// Gather statements until reaching the end of the block
	var statements []Node
	for {
		current, err := p.scanner.ExpectToken()
		if err != nil {
			return nil, err
		}
		if current == token.CurlyRight {
			break
		}
		statement, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}

	return Block{Statements: statements}, nil
}

// parseVariableDeclaration parses a local variable declaration. The current
// token is the 'int' keyword.
func (p *Parser) parseVariableDeclaration() (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	identifier, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.Semicolon); err != nil {
		return nil, err
	}

	return VariableDeclaration{Name: identifier.Name}, nil
}

// parsePrint parses a print statement. The current token is the 'print'
// keyword.
func (p *Parser) parsePrint() (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	printee, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.Semicolon); err != nil {
		return nil, err
	}

	return Print{Printee: printee}, nil
}

// parseConditional parses an if statement, including the else path if one
// exists. The current token is the 'if' keyword.
func (p *Parser) parseConditional() (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.ParenLeft); err != nil {
		return nil, err
	}
	condition, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.ParenRight); err != nil {
		return nil, err
	}
	// The consequent is not required to be a block statement
	consequent, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}

	// Greedily check for an 'else' path, binding it to the nearest 'if'
	// (the usual resolution of the dangling-else problem)
	var alternative Node
	if p.scanner.GetToken() == token.Else {
		if _, err := p.scanner.ScanToken(); err != nil {
			return nil, err
		}
		alternative, err = p.ParseStatement()
		if err != nil {
			return nil, err
		}
	}

	return Conditional{Condition: condition, Consequent: consequent, Alternative: alternative}, nil
}

// parseWhileLoop parses a while loop. The current token is the 'while'
// keyword.
func (p *Parser) parseWhileLoop() (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.ParenLeft); err != nil {
		return nil, err
	}
	condition, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.ParenRight); err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}

	return WhileLoop{Condition: condition, Body: body}, nil
}

// parseReturn parses a return statement. The current token is the 'return'
// keyword.
func (p *Parser) parseReturn() (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.Semicolon); err != nil {
		return nil, err
	}

	return Return{Value: value}, nil
}

// parseAssignmentOrCall parses a statement beginning with an identifier,
// which is either an assignment or a function call used as a statement. The
// token immediately following the identifier decides which.
func (p *Parser) parseAssignmentOrCall(identifier token.Identifier) (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	next, err := p.scanner.ExpectToken()
	if err != nil {
		return nil, err
	}

	if next == token.ParenLeft {
		call, err := p.parseFunctionCall(identifier.Name)
		if err != nil {
			return nil, err
		}
		if err := p.expectBasic(token.Semicolon); err != nil {
			return nil, err
		}
		return call, nil
	}

	if next != token.Equal {
		return nil, fmt.Errorf("expected an equals sign for assignment, got '%s'", next)
	}
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}
	rightHandSide, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectBasic(token.Semicolon); err != nil {
		return nil, err
	}

	return Operator{
		Operation: Assignment,
		Operands:  [2]Node{Identifier{identifier}, rightHandSide},
	}, nil
}

// parseFunctionCall parses the argument list of a call to the named
// function. The current token is the opening parenthesis.
//
// Postcondition: the current token is the token following the closing
// parenthesis.
func (p *Parser) parseFunctionCall(callee string) (Node, error) {
	if _, err := p.scanner.ScanToken(); err != nil {
		return nil, err
	}

	var arguments []Node
	current, err := p.scanner.ExpectToken()
	if err != nil {
		return nil, err
	}
	if current != token.ParenRight {
		for {
			argument, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, argument)

			current, err := p.scanner.ExpectToken()
			if err != nil {
				return nil, err
			}
			if current != token.Comma {
				break
			}
			if _, err := p.scanner.ScanToken(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectBasic(token.ParenRight); err != nil {
		return nil, err
	}

	return FunctionCall{Callee: callee, Arguments: arguments}, nil
}

// ParseExpression parses an expression with no parent operator.
//
// Postcondition: the current token is the token which terminated the
// expression (e.g. a semicolon).
func (p *Parser) ParseExpression() (Node, error) {
	return p.parseExpression(0)
}

// parseExpression parses an expression using recursive Pratt parsing.
// Operators are folded as long as their precedence level strictly exceeds
// parentPrecedence, which enforces left associativity; a parentPrecedence of
// zero means there is no parent operator.
func (p *Parser) parseExpression(parentPrecedence Precedence) (Node, error) {
	// Parse an operand, which becomes the left subtree of the next operator
	// (unless the loop exits early). This variable remains the root of the
	// subtree throughout.
	subtree, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	// Keep folding operators until reaching a token which is not recognized
	// as an operator, or until the parent operator takes precedence
	for {
		current, err := p.scanner.ExpectToken()
		if err != nil {
			return nil, err
		}
		operation, ok := OperationFromToken(current)
		if !ok {
			break
		}
		// If the parent takes precedence, it must be made into a subtree
		// before this operator can be incorporated
		if parentPrecedence >= operation.Precedence() {
			break
		}

		// Recursively parse the right child of the operator, then fold with
		// left-to-right associativity
		if _, err := p.scanner.ScanToken(); err != nil {
			return nil, err
		}
		rightHandSide, err := p.parseExpression(operation.Precedence())
		if err != nil {
			return nil, err
		}
		subtree = Operator{Operation: operation, Operands: [2]Node{subtree, rightHandSide}}
	}

	return subtree, nil
}

// parseOperand parses a single operand of an expression: an integer
// literal, an identifier, or a function call introduced by an identifier
// followed by an opening parenthesis.
func (p *Parser) parseOperand() (Node, error) {
	current, err := p.scanner.ExpectToken()
	if err != nil {
		return nil, err
	}

	switch leaf := current.(type) {
	case token.IntegerLiteral:
		if _, err := p.scanner.ScanToken(); err != nil {
			return nil, err
		}
		return IntegerLiteral{leaf}, nil
	case token.Identifier:
		if _, err := p.scanner.ScanToken(); err != nil {
			return nil, err
		}
		if p.scanner.GetToken() == token.ParenLeft {
			return p.parseFunctionCall(leaf.Name)
		}
		return Identifier{leaf}, nil
	}

	return nil, fmt.Errorf("expected an operand, got '%s'", current)
}
