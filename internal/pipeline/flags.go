package pipeline

import (
	"github.com/axiomates/cil2cpp/internal/ir"
	"github.com/axiomates/cil2cpp/internal/metadata"
)

func fieldFlags(a metadata.FieldAttributes) ir.FieldFlags {
	var f ir.FieldFlags
	switch a & metadata.FieldAccessMask {
	case metadata.FieldPublic:
		f |= ir.FieldPublic
	case metadata.FieldPrivate:
		f |= ir.FieldPrivate
	case metadata.FieldFamily:
		f |= ir.FieldFamily
	case metadata.FieldAssembly:
		f |= ir.FieldAssembly
	}
	if a&metadata.FieldInitOnly != 0 {
		f |= ir.FieldInitOnly
	}
	if a&metadata.FieldLiteral != 0 {
		f |= ir.FieldLiteral
	}
	if a&metadata.FieldNotSerialized != 0 {
		f |= ir.FieldNotSerialized
	}
	if a&metadata.FieldSpecialName != 0 {
		f |= ir.FieldSpecialName
	}
	return f
}

func methodFlags(a metadata.MethodAttributes) ir.MethodFlags {
	var f ir.MethodFlags
	switch a & metadata.MethodAccessMask {
	case metadata.MethodPublic:
		f |= ir.MethodPublic
	case metadata.MethodPrivate:
		f |= ir.MethodPrivate
	case metadata.MethodFamily:
		f |= ir.MethodFamily
	case metadata.MethodAssembly:
		f |= ir.MethodAssembly
	}
	if a&metadata.MethodSpecialName != 0 {
		f |= ir.MethodSpecialName
	}
	if a&metadata.MethodRTSpecialName != 0 {
		f |= ir.MethodRTSpecialName
	}
	if a&metadata.MethodHideBySig != 0 {
		f |= ir.MethodHideBySig
	}
	return f
}

func literalValue(c metadata.ConstantValue) *ir.LiteralValue {
	switch c.Type {
	case metadata.ElemBoolean:
		return &ir.LiteralValue{Kind: ir.LiteralBool, Bool: c.Bool}
	case metadata.ElemR4, metadata.ElemR8:
		return &ir.LiteralValue{Kind: ir.LiteralFloat, F64: c.F64}
	case metadata.ElemString:
		return &ir.LiteralValue{Kind: ir.LiteralString, Str: c.Str}
	case metadata.ElemClass:
		return &ir.LiteralValue{Kind: ir.LiteralNull}
	default:
		return &ir.LiteralValue{Kind: ir.LiteralInt, I64: c.I64}
	}
}

func pinvokeDescriptor(row metadata.PInvokeRow) *ir.PInvokeDescriptor {
	d := &ir.PInvokeDescriptor{
		Module:         row.ModuleName,
		EntryPointName: row.EntryPointName,
		SetLastError:   row.SupportsLastError,
	}
	switch {
	case row.CallConvCdecl:
		d.CallingConv = ir.CallConvCdecl
	case row.CallConvStdcall:
		d.CallingConv = ir.CallConvStdcall
	case row.CallConvThiscall:
		d.CallingConv = ir.CallConvThiscall
	case row.CallConvFastcall:
		d.CallingConv = ir.CallConvFastcall
	default:
		d.CallingConv = ir.CallConvWinapi
	}
	switch {
	case row.CharsetUnicode:
		d.Charset = ir.CharsetUnicode
	case row.CharsetAuto:
		d.Charset = ir.CharsetAuto
	default:
		d.Charset = ir.CharsetAnsi
	}
	return d
}
