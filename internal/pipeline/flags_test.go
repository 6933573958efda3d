package pipeline

import (
	"testing"

	"github.com/axiomates/cil2cpp/internal/ir"
	"github.com/axiomates/cil2cpp/internal/metadata"
)

func TestFieldFlagsMapsAccessAndModifiers(t *testing.T) {
	f := fieldFlags(metadata.FieldPublic | metadata.FieldInitOnly | metadata.FieldLiteral)
	if f&ir.FieldPublic == 0 {
		t.Error("expected FieldPublic")
	}
	if f&ir.FieldPrivate != 0 {
		t.Error("did not expect FieldPrivate")
	}
	if f&ir.FieldInitOnly == 0 {
		t.Error("expected FieldInitOnly")
	}
	if f&ir.FieldLiteral == 0 {
		t.Error("expected FieldLiteral")
	}
}

func TestMethodFlagsMapsAccessAndModifiers(t *testing.T) {
	f := methodFlags(metadata.MethodFamily | metadata.MethodHideBySig)
	if f&ir.MethodFamily == 0 {
		t.Error("expected MethodFamily")
	}
	if f&ir.MethodHideBySig == 0 {
		t.Error("expected MethodHideBySig")
	}
	if f&ir.MethodPublic != 0 {
		t.Error("did not expect MethodPublic")
	}
}

func TestLiteralValueInt(t *testing.T) {
	lv := literalValue(metadata.ConstantValue{Type: metadata.ElemI4, I64: 42})
	if lv.Kind != ir.LiteralInt || lv.I64 != 42 {
		t.Errorf("got %+v", lv)
	}
}

func TestLiteralValueString(t *testing.T) {
	lv := literalValue(metadata.ConstantValue{Type: metadata.ElemString, Str: "hi"})
	if lv.Kind != ir.LiteralString || lv.Str != "hi" {
		t.Errorf("got %+v", lv)
	}
}

func TestLiteralValueNullClass(t *testing.T) {
	lv := literalValue(metadata.ConstantValue{Type: metadata.ElemClass, IsNull: true})
	if lv.Kind != ir.LiteralNull {
		t.Errorf("got %+v", lv)
	}
}

func TestPinvokeDescriptorMapsCallingConventionAndCharset(t *testing.T) {
	row := metadata.PInvokeRow{
		ModuleName:      "kernel32.dll",
		EntryPointName:  "Sleep",
		CallConvStdcall: true,
		CharsetUnicode:  true,
		SupportsLastError: true,
	}
	d := pinvokeDescriptor(row)
	if d.Module != "kernel32.dll" || d.EntryPointName != "Sleep" {
		t.Errorf("got %+v", d)
	}
	if d.CallingConv != ir.CallConvStdcall {
		t.Errorf("calling convention = %v", d.CallingConv)
	}
	if d.Charset != ir.CharsetUnicode {
		t.Errorf("charset = %v", d.Charset)
	}
	if !d.SetLastError {
		t.Error("expected SetLastError")
	}
}

func TestPinvokeDescriptorDefaultsToWinapiAndAnsi(t *testing.T) {
	d := pinvokeDescriptor(metadata.PInvokeRow{ModuleName: "user32.dll", EntryPointName: "MessageBoxW"})
	if d.CallingConv != ir.CallConvWinapi {
		t.Errorf("calling convention = %v", d.CallingConv)
	}
	if d.Charset != ir.CharsetAnsi {
		t.Errorf("charset = %v", d.Charset)
	}
}
