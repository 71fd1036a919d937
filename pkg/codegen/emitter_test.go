package codegen

import (
	"bytes"
	"testing"
)

func TestValueStrings(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
		bits     int
	}{
		{Register{Identifier: "0", Bits: 32}, "%0", 32},
		{Register{Identifier: "x", Bits: 32}, "%x", 32},
		{Register{Identifier: "main", Global: true}, "@main", 0},
		{ImmediateInt32{Value: -7}, "-7", 32},
		{ImmediateBool{Value: true}, "true", 1},
		{ImmediateBool{Value: false}, "false", 1},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
		if got := tt.value.BitCount(); got != tt.bits {
			t.Errorf("%s: expected bit count %d, got %d", tt.expected, tt.bits, got)
		}
	}
}

func TestEmitterInstructionForms(t *testing.T) {
	var output bytes.Buffer
	emitter := NewEmitter(&output)

	result := Register{Identifier: "2", Bits: 32}
	boolResult := Register{Identifier: "3", Bits: 1}
	pointer := Register{Identifier: "x", Bits: 32}

	emitter.EmitStackAllocation(pointer)
	emitter.EmitStore(Register{Identifier: "0", Bits: 32}, pointer)
	emitter.EmitLoad(result, pointer)
	emitter.EmitAddition(result, ImmediateInt32{Value: 1}, Register{Identifier: "1", Bits: 32})
	emitter.EmitSubtraction(result, ImmediateInt32{Value: 1}, ImmediateInt32{Value: 2})
	emitter.EmitMultiplication(result, ImmediateInt32{Value: 2}, ImmediateInt32{Value: 3})
	emitter.EmitDivision(result, ImmediateInt32{Value: 6}, ImmediateInt32{Value: 2})
	emitter.EmitRemainder(result, ImmediateInt32{Value: 7}, ImmediateInt32{Value: 2})
	emitter.EmitComparison(boolResult, "slt", ImmediateInt32{Value: 1}, ImmediateInt32{Value: 2})
	emitter.EmitZeroExtension(result, boolResult)
	emitter.EmitLabel(Label{Identifier: ".block.0"})
	emitter.EmitUnconditionalBranch(Label{Identifier: ".block.1"})
	emitter.EmitConditionalBranch(boolResult, Label{Identifier: ".block.1"}, Label{Identifier: ".block.2"})
	emitter.EmitFunctionCall(result, Register{Identifier: "f", Global: true}, []Value{ImmediateInt32{Value: 1}, pointer})
	emitter.EmitReturn(ImmediateInt32{Value: 0})
	emitter.EmitPrint(result, Register{Identifier: "1", Bits: 32})
	if err := emitter.Flush(); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	expected := "\t%x = alloca i32\n" +
		"\tstore i32 %0, i32* %x\n" +
		"\t%2 = load i32, i32* %x\n" +
		"\t%2 = add nsw i32 1, %1\n" +
		"\t%2 = sub nsw i32 1, 2\n" +
		"\t%2 = mul nsw i32 2, 3\n" +
		"\t%2 = sdiv i32 6, 2\n" +
		"\t%2 = srem i32 7, 2\n" +
		"\t%3 = icmp slt i32 1, 2\n" +
		"\t%2 = zext i1 %3 to i32\n" +
		".block.0:\n" +
		"\tbr label %.block.1\n" +
		"\tbr i1 %3, label %.block.1, label %.block.2\n" +
		"\t%2 = call i32 @f(i32 1, i32 %x)\n" +
		"\tret i32 0\n" +
		"\t%2 = call i32(i8*, ...) @printf(i8* bitcast ([4 x i8]* @print_int_fstring to i8*), i32 %1)\n"

	if output.String() != expected {
		t.Errorf("emitted output mismatch:\nexpected:\n%s\ngot:\n%s", expected, output.String())
	}
}

func TestEmitterFunctionBoundaries(t *testing.T) {
	var output bytes.Buffer
	emitter := NewEmitter(&output)

	emitter.EmitPreamble("sample.c")
	emitter.EmitFunctionStart(Register{Identifier: "add", Global: true}, []Register{
		{Identifier: "0", Bits: 32},
		{Identifier: "1", Bits: 32},
	})
	emitter.EmitFunctionEnd()
	emitter.EmitPostamble()
	if err := emitter.Flush(); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	expected := "source_filename = \"sample.c\"\n" +
		"target triple = \"x86_64-pc-linux-gnu\"\n" +
		"\n" +
		"@print_int_fstring = private unnamed_addr constant [4 x i8] c\"%d\\0A\\00\"\n" +
		"\n" +
		"define i32 @add(i32 %0, i32 %1) {\n" +
		"}\n" +
		"\n" +
		"declare i32 @printf(i8*, ...)\n"

	if output.String() != expected {
		t.Errorf("emitted output mismatch:\nexpected:\n%s\ngot:\n%s", expected, output.String())
	}
}
