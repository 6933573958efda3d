package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomates/cil2cpp/internal/ir"
)

func sampleModule() *ir.Module {
	mod := ir.NewModule()
	mod.Primitives["System.Int32"] = ir.PrimitiveInfo{Mangled: "System_Int32", Scalar: "int32_t"}
	mod.RegisterStringLiteral("hello")

	add := &ir.Method{
		OwningTypeFullName: "Calculator",
		CILName:            "Add",
		ReturnTypeName:     "System.Int32",
		Parameters:         []ir.Parameter{{Name: "a", TypeName: "System.Int32"}, {Name: "b", TypeName: "System.Int32"}},
		BasicBlocks: []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{
			&ir.BinaryOp{Op: "+", Left: "a", Right: "b", Result: "__t0", TypeName: "System.Int32"},
			&ir.Return{Value: "__t0"},
		}}},
	}
	mod.AddType(&ir.Type{FullName: "Calculator", Methods: []*ir.Method{add}})
	mod.EntryPoint = &ir.MethodRef{TypeFullName: "Calculator", MethodName: "Add"}
	return mod
}

func TestModuleViewExposesObservationalAccessors(t *testing.T) {
	v := NewModuleView(sampleModule())

	require.Len(t, v.Types(), 1)
	require.NotNil(t, v.FindType("Calculator"))
	require.Len(t, v.Methods(), 1)

	lits := v.StringLiterals()
	require.Len(t, lits, 1)
	assert.Equal(t, "hello", lits[0].Content)

	prim, ok := v.Primitives()["System.Int32"]
	require.True(t, ok)
	assert.Equal(t, "int32_t", prim.Scalar)

	require.NotNil(t, v.EntryPoint())
	assert.Equal(t, "Calculator", v.EntryPoint().TypeFullName)
}

func TestModuleViewMethodInstructionsFlattensBasicBlocks(t *testing.T) {
	v := NewModuleView(sampleModule())
	m := v.Methods()[0]
	instrs := v.MethodInstructions(m)
	require.Len(t, instrs, 2)
	_, isBinOp := instrs[0].(*ir.BinaryOp)
	assert.True(t, isBinOp)
}

func TestModuleViewStubReflectsGateDecision(t *testing.T) {
	m := &ir.Method{OwningTypeFullName: "Widget", CILName: "Ghost", StubReason: ir.StubCLRInternalDependency}
	mod := ir.NewModule()
	mod.AddType(&ir.Type{FullName: "Widget", Methods: []*ir.Method{m}})
	v := NewModuleView(mod)

	info := v.Stub(m)
	assert.True(t, info.IsStub)
	assert.Equal(t, "CLRInternalDependency", info.Reason)
}

func TestRenderLineBinaryOpAndReturn(t *testing.T) {
	assert.Equal(t, "__t0 = a + b;", RenderLine(&ir.BinaryOp{Op: "+", Left: "a", Right: "b", Result: "__t0"}))
	assert.Equal(t, "return __t0;", RenderLine(&ir.Return{Value: "__t0"}))
	assert.Equal(t, "return;", RenderLine(&ir.Return{}))
}

func TestRenderLineCallMarksVirtualDispatch(t *testing.T) {
	line := RenderLine(&ir.Call{CalleeName: "Widget.ToString", IsVirtual: true, VTableSlot: 2, Result: "__t1"})
	assert.Contains(t, line, "vtable slot 2")
	assert.Contains(t, line, "__t1 = Widget.ToString")
}

func TestRenderLineNewArrUsesArrayCreateForRankOne(t *testing.T) {
	line := RenderLine(&ir.NewArr{ElementTypeName: "System.Int32", LengthTemp: "__t0", Rank: 1, Result: "__t1"})
	assert.Equal(t, "__t1 = cil2cpp::array_create<System.Int32>(__t0);", line)
}

func TestRenderLineExceptionMarkers(t *testing.T) {
	begin := RenderLine(&ir.ExceptionMarker{Kind: ir.TryBeginMarker, RegionID: 0})
	assert.Contains(t, begin, "try {")
	catch := RenderLine(&ir.ExceptionMarker{Kind: ir.CatchBeginMarker, RegionID: 0, CatchTypeName: "System.Exception", ExceptionVar: "e"})
	assert.Contains(t, catch, "catch (System.Exception& e)")
}
