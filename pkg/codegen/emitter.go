package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Emitter is the abstraction layer between the Generator and the output
// writer. Each method formats a single line of LLVM-IR from the values,
// labels and identifiers it is given; no validation is performed.
// Instruction lines are indented with one tab, label definitions are not.
//
// Write errors are sticky in the underlying buffered writer and surface
// from Flush.
type Emitter struct {
	writer *bufio.Writer
}

// NewEmitter creates an Emitter over the given sink.
func NewEmitter(sink io.Writer) *Emitter {
	return &Emitter{writer: bufio.NewWriter(sink)}
}

// Flush writes any buffered output to the sink and reports the first write
// error encountered, if any.
func (e *Emitter) Flush() error {
	return e.writer.Flush()
}

// EmitPreamble emits the header of the LLVM file: the source filename (for
// debugging purposes), the target triple, and the format string constant
// used to print integers.
func (e *Emitter) EmitPreamble(sourceFilename string) {
	fmt.Fprintf(e.writer, "source_filename = %q\n", sourceFilename)
	fmt.Fprintf(e.writer, "target triple = %q\n", "x86_64-pc-linux-gnu")
	fmt.Fprintln(e.writer)
	e.writer.WriteString("@print_int_fstring = private unnamed_addr constant [4 x i8] c\"%d\\0A\\00\"\n")
	fmt.Fprintln(e.writer)
}

// EmitPostamble emits the external declaration of printf, which closes the
// LLVM file.
func (e *Emitter) EmitPostamble() {
	fmt.Fprintln(e.writer, "declare i32 @printf(i8*, ...)")
}

// EmitFunctionStart emits a function definition header, for example:
//
//	define i32 @f(i32 %0, i32 %1) {
func (e *Emitter) EmitFunctionStart(function Register, parameters []Register) {
	parameterList := make([]string, len(parameters))
	for index, parameter := range parameters {
		parameterList[index] = "i32 " + parameter.String()
	}
	fmt.Fprintf(e.writer, "define i32 %s(%s) {\n", function, strings.Join(parameterList, ", "))
}

// EmitFunctionEnd closes a function definition.
func (e *Emitter) EmitFunctionEnd() {
	fmt.Fprintln(e.writer, "}")
	fmt.Fprintln(e.writer)
}

// EmitStackAllocation emits the alloca instruction, which allocates stack
// space and outputs a pointer to it: %pointer = alloca i32
func (e *Emitter) EmitStackAllocation(pointer Register) {
	fmt.Fprintf(e.writer, "\t%s = alloca i32\n", pointer)
}

// EmitStore emits the store instruction, which assigns a value to a
// location in memory: store i32 %value, i32* %pointer
func (e *Emitter) EmitStore(value Value, pointer Value) {
	fmt.Fprintf(e.writer, "\tstore i32 %s, i32* %s\n", value, pointer)
}

// EmitLoad emits the load instruction, which reads the value at a location
// in memory into a register: %result = load i32, i32* %pointer
func (e *Emitter) EmitLoad(result Register, pointer Value) {
	fmt.Fprintf(e.writer, "\t%s = load i32, i32* %s\n", result, pointer)
}

// EmitZeroExtension emits the zext instruction, which widens an integer by
// padding the upper bits with zeroes: %result = zext i1 %value to i32
func (e *Emitter) EmitZeroExtension(result Register, value Value) {
	fmt.Fprintf(e.writer, "\t%s = zext i%d %s to i%d\n", result, value.BitCount(), value, result.BitCount())
}

// EmitAddition emits the add instruction: %result = add nsw i32 %lhs, %rhs
func (e *Emitter) EmitAddition(result Register, lhs Value, rhs Value) {
	fmt.Fprintf(e.writer, "\t%s = add nsw i32 %s, %s\n", result, lhs, rhs)
}

// EmitSubtraction emits the sub instruction: %result = sub nsw i32 %lhs, %rhs
func (e *Emitter) EmitSubtraction(result Register, lhs Value, rhs Value) {
	fmt.Fprintf(e.writer, "\t%s = sub nsw i32 %s, %s\n", result, lhs, rhs)
}

// EmitMultiplication emits the mul instruction: %result = mul nsw i32 %lhs, %rhs
func (e *Emitter) EmitMultiplication(result Register, lhs Value, rhs Value) {
	fmt.Fprintf(e.writer, "\t%s = mul nsw i32 %s, %s\n", result, lhs, rhs)
}

// EmitDivision emits the sdiv instruction for signed division:
// %result = sdiv i32 %lhs, %rhs
func (e *Emitter) EmitDivision(result Register, lhs Value, rhs Value) {
	fmt.Fprintf(e.writer, "\t%s = sdiv i32 %s, %s\n", result, lhs, rhs)
}

// EmitRemainder emits the srem instruction for signed remainder:
// %result = srem i32 %lhs, %rhs
func (e *Emitter) EmitRemainder(result Register, lhs Value, rhs Value) {
	fmt.Fprintf(e.writer, "\t%s = srem i32 %s, %s\n", result, lhs, rhs)
}

// EmitComparison emits the icmp instruction, which compares two integers
// and outputs a boolean result: %result = icmp slt i32 %lhs, %rhs
//
// The comparison kinds used are eq, ne, slt, sgt, sle and sge.
func (e *Emitter) EmitComparison(result Register, cmpKind string, lhs Value, rhs Value) {
	fmt.Fprintf(e.writer, "\t%s = icmp %s i32 %s, %s\n", result, cmpKind, lhs, rhs)
}

// EmitLabel emits the definition of a basic block label, which is its
// identifier (without the % prefix) followed by a colon.
func (e *Emitter) EmitLabel(label Label) {
	fmt.Fprintf(e.writer, "%s:\n", label.Identifier)
}

// EmitUnconditionalBranch emits the unconditional form of the br
// instruction: br label %target
func (e *Emitter) EmitUnconditionalBranch(target Label) {
	fmt.Fprintf(e.writer, "\tbr label %s\n", target)
}

// EmitConditionalBranch emits the conditional form of the br instruction,
// which uses an i1 condition to pick one of two labels:
// br i1 %condition, label %trueTarget, label %falseTarget
func (e *Emitter) EmitConditionalBranch(condition Value, trueTarget Label, falseTarget Label) {
	fmt.Fprintf(e.writer, "\tbr i1 %s, label %s, label %s\n", condition, trueTarget, falseTarget)
}

// EmitFunctionCall emits a call instruction:
// %result = call i32 @f(i32 %0, i32 %1)
func (e *Emitter) EmitFunctionCall(result Register, function Register, arguments []Value) {
	argumentList := make([]string, len(arguments))
	for index, argument := range arguments {
		argumentList[index] = "i32 " + argument.String()
	}
	fmt.Fprintf(e.writer, "\t%s = call i32 %s(%s)\n", result, function, strings.Join(argumentList, ", "))
}

// EmitReturn emits the ret instruction: ret i32 %value
func (e *Emitter) EmitReturn(value Value) {
	fmt.Fprintf(e.writer, "\tret i32 %s\n", value)
}

// EmitPrint emits a call to printf printing an integer value followed by a
// newline. The result register receives the number of characters printed
// and is never used again.
func (e *Emitter) EmitPrint(result Register, printee Value) {
	fmt.Fprintf(e.writer, "\t%s = call i32(i8*, ...) @printf(i8* bitcast ([4 x i8]* @print_int_fstring to i8*), i32 %s)\n", result, printee)
}
