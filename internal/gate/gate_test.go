package gate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/ir"
)

func moduleWith(methods ...*ir.Method) *ir.Module {
	mod := ir.NewModule()
	t := &ir.Type{FullName: "Widget", Methods: methods}
	mod.AddType(t)
	return mod
}

func TestGateStubsCLRInternalDependency(t *testing.T) {
	m := &ir.Method{
		OwningTypeFullName: "Widget",
		CILName:            "Bind",
		Parameters:         []ir.Parameter{{Name: "h", TypeName: "System.RuntimeTypeHandle"}},
		BasicBlocks:        []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{&ir.Return{}}}},
	}
	mod := moduleWith(m)
	faults := diag.NewCollector()
	New(faults).Run(mod)

	assert.Equal(t, ir.StubCLRInternalDependency, m.StubReason)
	require.Len(t, faults.Faults(), 1)
	assert.Equal(t, "Widget.Bind", faults.Faults()[0].Method)
}

func TestGateStubsKnownBrokenPattern(t *testing.T) {
	m := &ir.Method{
		OwningTypeFullName: "Widget",
		CILName:            "Accelerate",
		ReturnTypeName:     "System.Runtime.Intrinsics.Vector256`1",
		BasicBlocks:        []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{&ir.Return{}}}},
	}
	mod := moduleWith(m)
	New(diag.NewCollector()).Run(mod)
	assert.Equal(t, ir.StubKnownBrokenPattern, m.StubReason)
}

func TestGateStubsRenderedBodyError(t *testing.T) {
	m := &ir.Method{
		OwningTypeFullName: "Widget",
		CILName:            "Wrap",
		ReturnTypeName:     "T",
		BasicBlocks:        []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{&ir.Return{}}}},
	}
	mod := moduleWith(m)
	New(diag.NewCollector()).Run(mod)
	assert.Equal(t, ir.StubRenderedBodyError, m.StubReason)
}

func TestGateStubsUndeclaredReference(t *testing.T) {
	m := &ir.Method{
		OwningTypeFullName: "Widget",
		CILName:            "Dispatch",
		BasicBlocks: []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{
			&ir.Call{CalleeName: "Ghost.Helper", Result: ""},
			&ir.Return{},
		}}},
	}
	mod := moduleWith(m)
	New(diag.NewCollector()).Run(mod)
	assert.Equal(t, ir.StubUndeclaredReference, m.StubReason)
}

func TestGateStubsLoweringFailure(t *testing.T) {
	m := &ir.Method{
		OwningTypeFullName: "Widget",
		CILName:            "Measure",
		ReturnTypeName:     "System.Int32",
		BasicBlocks:        []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{&ir.Comment{Text: "unhandled opcode sizeof"}}}},
	}
	mod := moduleWith(m)
	faults := diag.NewCollector()
	faults.Record("Widget.Measure", diag.KindLoweringFailure, "unhandled CIL opcode \"sizeof\" at offset 4")
	New(faults).Run(mod)

	assert.Equal(t, ir.StubLoweringFailure, m.StubReason)
	require.Len(t, m.BasicBlocks, 1)
	assert.Equal(t, &ir.RawTargetCode{Text: "return {};"}, m.BasicBlocks[0].Instructions[0])
}

func TestGateLeavesCleanMethodAlone(t *testing.T) {
	m := &ir.Method{
		OwningTypeFullName: "Widget",
		CILName:            "Add",
		ReturnTypeName:     "System.Int32",
		BasicBlocks:        []*ir.BasicBlock{{ID: 0, Instructions: []ir.Instruction{&ir.Return{Value: "__t0"}}}},
	}
	mod := moduleWith(m)
	New(diag.NewCollector()).Run(mod)
	assert.Equal(t, ir.StubNone, m.StubReason)
}

func TestGateSkipsAbstractExternAndICallMethods(t *testing.T) {
	abstract := &ir.Method{OwningTypeFullName: "Widget", CILName: "Abs", IsAbstract: true}
	extern := &ir.Method{OwningTypeFullName: "Widget", CILName: "Native", PInvoke: &ir.PInvokeDescriptor{Module: "libc"}}
	icall := &ir.Method{OwningTypeFullName: "Widget", CILName: "Redirected", IsICall: true}
	mod := moduleWith(abstract, extern, icall)
	New(diag.NewCollector()).Run(mod)

	assert.Equal(t, ir.StubNone, abstract.StubReason)
	assert.Equal(t, ir.StubNone, extern.StubReason)
	assert.Equal(t, ir.StubNone, icall.StubReason)
}

func TestReportSortsByCanonicalName(t *testing.T) {
	zed := &ir.Method{OwningTypeFullName: "Widget", CILName: "Zed", Parameters: []ir.Parameter{{Name: "h", TypeName: "System.RuntimeTypeHandle"}}, BasicBlocks: []*ir.BasicBlock{{ID: 0}}}
	alpha := &ir.Method{OwningTypeFullName: "Widget", CILName: "Alpha", Parameters: []ir.Parameter{{Name: "h", TypeName: "System.RuntimeTypeHandle"}}, BasicBlocks: []*ir.BasicBlock{{ID: 0}}}
	mod := moduleWith(zed, alpha)
	New(diag.NewCollector()).Run(mod)

	entries := Report(mod)
	require.Len(t, entries, 2)
	assert.Equal(t, "Widget.Alpha", entries[0].MethodFullName)
	assert.Equal(t, "Widget.Zed", entries[1].MethodFullName)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, entries))
	assert.Contains(t, buf.String(), "Widget.Alpha\tCLRInternalDependency\n")
}
