package codegen

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xarkenz/icd-example/pkg/syntax"
)

// Generator walks abstract syntax trees and handles semantic analysis and
// code generation, driving an Emitter to write the LLVM-IR. External code
// uses the Generate function rather than constructing a Generator directly.
type Generator struct {
	emitter *Emitter
	// Local symbols for the function currently being generated; cleared
	// each time a function finishes generating.
	localSymbolTable *SymbolTable
	// Global symbols, which persist across the whole program. Currently
	// holds function symbols only.
	globalSymbolTable *SymbolTable
	// Numeric identifier for the next virtual register. LLVM requires these
	// to count up from 0 in the order the registers are defined within a
	// function body.
	nextRegisterNumber int
	// Numeric suffix for the next basic block label.
	nextLabelNumber int
}

// Generate consumes statements from the parser until the end of the input,
// generating and emitting the LLVM code for each into the sink. The source
// filename only describes the location of the source code for runtime
// debugging purposes. If debug is set, each parsed statement is traced to
// standard output.
func Generate(sink io.Writer, parser *syntax.Parser, sourceFilename string, debug bool) error {
	emitter := NewEmitter(sink)
	emitter.EmitPreamble(sourceFilename)

	generator := &Generator{
		emitter:           emitter,
		localSymbolTable:  NewSymbolTable(),
		globalSymbolTable: NewSymbolTable(),
	}

	for {
		statement, err := parser.ParseTopLevelStatement()
		if err != nil {
			return err
		}
		if statement == nil {
			break
		}

		if debug {
			fmt.Println("parsed statement:", statement)
		}
		if _, err := generator.generateNode(statement); err != nil {
			return err
		}
	}

	emitter.EmitPostamble()
	return emitter.Flush()
}

// createRegister creates a new virtual register with the next unused
// numeric identifier. These identifiers are treated specially by LLVM: they
// must count up from 0 in the order that the registers are defined.
func (g *Generator) createRegister(bitCount int) Register {
	identifier := strconv.Itoa(g.nextRegisterNumber)
	g.nextRegisterNumber++
	return Register{Identifier: identifier, Bits: bitCount}
}

// createLabel creates a new basic block label of the form .block.N. Labels
// use their own numbering rather than the register sequence because the
// generator needs label identifiers before they are defined, making it
// impractical to predict where they would fall in the register ordering.
func (g *Generator) createLabel() Label {
	identifier := ".block." + strconv.Itoa(g.nextLabelNumber)
	g.nextLabelNumber++
	return Label{Identifier: identifier}
}

// localSymbol finds a symbol in the local symbol table by name.
func (g *Generator) localSymbol(name string) (Symbol, error) {
	symbol := g.localSymbolTable.Find(name)
	if symbol == nil {
		return nil, fmt.Errorf("undefined local symbol '%s'", name)
	}
	return symbol, nil
}

// globalFunctionSymbol finds a function symbol in the global symbol table
// by name.
func (g *Generator) globalFunctionSymbol(name string) (FunctionSymbol, error) {
	symbol := g.globalSymbolTable.Find(name)
	if symbol == nil {
		return FunctionSymbol{}, fmt.Errorf("undefined global function symbol '%s'", name)
	}
	functionSymbol, ok := symbol.(FunctionSymbol)
	if !ok {
		return FunctionSymbol{}, fmt.Errorf("global symbol '%s' is not a function", name)
	}
	return functionSymbol, nil
}

// convertValueType converts a value to the given integer width, emitting
// instructions as needed. If the value already has the desired width, it is
// returned unchanged.
func (g *Generator) convertValueType(value Value, targetBitCount int) (Value, error) {
	if value.BitCount() == targetBitCount {
		return value, nil
	}

	// Regardless of the direction, an output register is needed
	result := g.createRegister(targetBitCount)

	switch {
	case value.BitCount() == 1:
		// Widening a boolean: zero-extend rather than sign-extend so the
		// boolean is not treated as a sign bit
		g.emitter.EmitZeroExtension(result, value)
	case targetBitCount == 1:
		// Narrowing to a boolean: compare against 0 rather than truncating
		// so the result is not derived from the least significant bit only
		g.emitter.EmitComparison(result, "ne", value, ImmediateInt32{Value: 0})
	default:
		return nil, fmt.Errorf("unsupported conversion from i%d to i%d", value.BitCount(), targetBitCount)
	}

	return result, nil
}

// generateNode recursively generates and emits the LLVM code for an AST
// using a postorder traversal, returning the resulting value of the subtree
// if it produces one.
func (g *Generator) generateNode(node syntax.Node) (Value, error) {
	switch node := node.(type) {
	case syntax.IntegerLiteral:
		// The literal simply becomes an immediate value
		return ImmediateInt32{Value: node.Value}, nil

	case syntax.Identifier:
		// Load the local variable's value through its stack pointer
		symbol, err := g.localSymbol(node.Name)
		if err != nil {
			return nil, err
		}
		result := g.createRegister(32)
		g.emitter.EmitLoad(result, symbol.SymbolRegister())
		return result, nil

	case syntax.Operator:
		return g.generateOperator(node)

	case syntax.FunctionCall:
		return g.generateFunctionCall(node)

	case syntax.Block:
		// Generate and emit each statement of the block in order
		for _, statement := range node.Statements {
			if _, err := g.generateNode(statement); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case syntax.VariableDeclaration:
		// Allocate stack space for the new variable, with a named register
		// holding the pointer
		pointer := Register{Identifier: node.Name, Bits: 32}
		g.emitter.EmitStackAllocation(pointer)
		g.localSymbolTable.Insert(VariableSymbol{Name: node.Name, Register: pointer})
		return nil, nil

	case syntax.Print:
		printee, err := g.generateNode(node.Printee)
		if err != nil {
			return nil, err
		}
		printee, err = g.convertValueType(printee, 32)
		if err != nil {
			return nil, err
		}
		// printf returns a value, so a register is created to hold it
		// (and is subsequently never used again)
		discardedResult := g.createRegister(32)
		g.emitter.EmitPrint(discardedResult, printee)
		return nil, nil

	case syntax.Conditional:
		return nil, g.generateConditional(node)

	case syntax.WhileLoop:
		return nil, g.generateWhileLoop(node)

	case syntax.Return:
		value, err := g.generateNode(node.Value)
		if err != nil {
			return nil, err
		}
		g.emitter.EmitReturn(value)
		// ret is a terminator, so LLVM implicitly inserts a label after it
		// if none is present; bump the register number to account for it
		g.nextRegisterNumber++
		return nil, nil

	case syntax.FunctionDefinition:
		return nil, g.generateFunctionDefinition(node)

	default:
		// Node is a sealed interface, so no other variants can exist
		panic(fmt.Sprintf("unhandled AST node %T", node))
	}
}

// generateOperator generates an Operator node. Assignment stores into the
// left-hand identifier and produces no value; every other operation
// produces a value in a fresh register.
func (g *Generator) generateOperator(operator syntax.Operator) (Value, error) {
	if operator.Operation == syntax.Assignment {
		// Generate and emit the right-hand side as usual
		rhs, err := g.generateNode(operator.Operands[1])
		if err != nil {
			return nil, err
		}
		rhs, err = g.convertValueType(rhs, 32)
		if err != nil {
			return nil, err
		}
		// If the operator was parsed properly, the first operand must be an
		// identifier
		identifier := operator.Operands[0].(syntax.Identifier)
		symbol, err := g.localSymbol(identifier.Name)
		if err != nil {
			return nil, err
		}
		g.emitter.EmitStore(rhs, symbol.SymbolRegister())
		return nil, nil
	}

	// Binary operator: recursively generate both operands first
	lhs, err := g.generateNode(operator.Operands[0])
	if err != nil {
		return nil, err
	}
	lhs, err = g.convertValueType(lhs, 32)
	if err != nil {
		return nil, err
	}
	rhs, err := g.generateNode(operator.Operands[1])
	if err != nil {
		return nil, err
	}
	rhs, err = g.convertValueType(rhs, 32)
	if err != nil {
		return nil, err
	}

	switch operator.Operation {
	case syntax.Addition:
		result := g.createRegister(32)
		g.emitter.EmitAddition(result, lhs, rhs)
		return result, nil
	case syntax.Subtraction:
		result := g.createRegister(32)
		g.emitter.EmitSubtraction(result, lhs, rhs)
		return result, nil
	case syntax.Multiplication:
		result := g.createRegister(32)
		g.emitter.EmitMultiplication(result, lhs, rhs)
		return result, nil
	case syntax.Division:
		result := g.createRegister(32)
		g.emitter.EmitDivision(result, lhs, rhs)
		return result, nil
	case syntax.Remainder:
		result := g.createRegister(32)
		g.emitter.EmitRemainder(result, lhs, rhs)
		return result, nil
	case syntax.Equal:
		result := g.createRegister(1)
		g.emitter.EmitComparison(result, "eq", lhs, rhs)
		return result, nil
	case syntax.NotEqual:
		result := g.createRegister(1)
		g.emitter.EmitComparison(result, "ne", lhs, rhs)
		return result, nil
	case syntax.LessThan:
		result := g.createRegister(1)
		g.emitter.EmitComparison(result, "slt", lhs, rhs)
		return result, nil
	case syntax.GreaterThan:
		result := g.createRegister(1)
		g.emitter.EmitComparison(result, "sgt", lhs, rhs)
		return result, nil
	case syntax.LessEqual:
		result := g.createRegister(1)
		g.emitter.EmitComparison(result, "sle", lhs, rhs)
		return result, nil
	case syntax.GreaterEqual:
		result := g.createRegister(1)
		g.emitter.EmitComparison(result, "sge", lhs, rhs)
		return result, nil
	default:
		return nil, fmt.Errorf("operation '%s' not implemented", operator.Operation)
	}
}

// generateFunctionCall generates a call to a previously defined function,
// checking that the argument count matches the callee's parameter count.
func (g *Generator) generateFunctionCall(call syntax.FunctionCall) (Value, error) {
	callee, err := g.globalFunctionSymbol(call.Callee)
	if err != nil {
		return nil, err
	}
	if len(call.Arguments) != callee.ParameterCount {
		return nil, fmt.Errorf("function '%s' expects %d arguments but %d were given",
			callee.Name, callee.ParameterCount, len(call.Arguments))
	}

	argumentValues := make([]Value, len(call.Arguments))
	for index, argument := range call.Arguments {
		argumentValue, err := g.generateNode(argument)
		if err != nil {
			return nil, err
		}
		argumentValues[index] = argumentValue
	}

	result := g.createRegister(32)
	g.emitter.EmitFunctionCall(result, callee.Register, argumentValues)
	return result, nil
}

// generateConditional generates an if statement. With no alternative path
// two labels are needed; with one, three.
func (g *Generator) generateConditional(conditional syntax.Conditional) error {
	condition, err := g.generateNode(conditional.Condition)
	if err != nil {
		return err
	}
	condition, err = g.convertValueType(condition, 1)
	if err != nil {
		return err
	}

	if conditional.Alternative == nil {
		consequentLabel := g.createLabel()
		tailLabel := g.createLabel()
		g.emitter.EmitConditionalBranch(condition, consequentLabel, tailLabel)

		g.emitter.EmitLabel(consequentLabel)
		if _, err := g.generateNode(conditional.Consequent); err != nil {
			return err
		}
		g.emitter.EmitUnconditionalBranch(tailLabel)

		g.emitter.EmitLabel(tailLabel)
		return nil
	}

	consequentLabel := g.createLabel()
	alternativeLabel := g.createLabel()
	tailLabel := g.createLabel()
	g.emitter.EmitConditionalBranch(condition, consequentLabel, alternativeLabel)

	g.emitter.EmitLabel(consequentLabel)
	if _, err := g.generateNode(conditional.Consequent); err != nil {
		return err
	}
	g.emitter.EmitUnconditionalBranch(tailLabel)

	g.emitter.EmitLabel(alternativeLabel)
	if _, err := g.generateNode(conditional.Alternative); err != nil {
		return err
	}
	g.emitter.EmitUnconditionalBranch(tailLabel)

	g.emitter.EmitLabel(tailLabel)
	return nil
}

// generateWhileLoop generates a while loop. The condition is recalculated
// at the beginning of each iteration, so it gets its own basic block.
func (g *Generator) generateWhileLoop(loop syntax.WhileLoop) error {
	continueLabel := g.createLabel()
	g.emitter.EmitUnconditionalBranch(continueLabel)
	g.emitter.EmitLabel(continueLabel)

	condition, err := g.generateNode(loop.Condition)
	if err != nil {
		return err
	}
	condition, err = g.convertValueType(condition, 1)
	if err != nil {
		return err
	}

	loopBodyLabel := g.createLabel()
	breakLabel := g.createLabel()
	g.emitter.EmitConditionalBranch(condition, loopBodyLabel, breakLabel)

	g.emitter.EmitLabel(loopBodyLabel)
	if _, err := g.generateNode(loop.Body); err != nil {
		return err
	}
	g.emitter.EmitUnconditionalBranch(continueLabel)

	g.emitter.EmitLabel(breakLabel)
	return nil
}

// generateFunctionDefinition generates a top-level function definition. The
// function symbol is inserted into the global table before the body is
// generated, which allows recursive calls.
func (g *Generator) generateFunctionDefinition(definition syntax.FunctionDefinition) error {
	// Parameter value registers consume the first numeric identifiers
	parameterValues := make([]Register, len(definition.Parameters))
	for index := range definition.Parameters {
		parameterValues[index] = g.createRegister(32)
	}

	function := Register{Identifier: definition.Name, Global: true}
	g.globalSymbolTable.Insert(FunctionSymbol{
		Name:           definition.Name,
		Register:       function,
		ParameterCount: len(definition.Parameters),
	})

	g.emitter.EmitFunctionStart(function, parameterValues)
	// Explicitly label the first basic block, suppressing LLVM's implicit
	// label zero
	g.emitter.EmitLabel(g.createLabel())

	// Store each parameter on the stack so it can be used like any other
	// local variable
	for index, parameter := range definition.Parameters {
		pointer := Register{Identifier: parameter.Name, Bits: 32}
		g.emitter.EmitStackAllocation(pointer)
		g.emitter.EmitStore(parameterValues[index], pointer)
		g.localSymbolTable.Insert(VariableSymbol{Name: parameter.Name, Register: pointer})
	}

	if _, err := g.generateNode(definition.Body); err != nil {
		return err
	}
	g.emitter.EmitFunctionEnd()

	// Reset the per-function state for the next definition
	g.localSymbolTable.Clear()
	g.nextRegisterNumber = 0
	g.nextLabelNumber = 0
	return nil
}
