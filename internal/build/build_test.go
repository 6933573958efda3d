package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/ir"
	"github.com/axiomates/cil2cpp/internal/metadata"
)

// fakeSource is a hand-built Source for exercising the eight passes
// without a real metadata reader behind it.
type fakeSource struct {
	types        []TypeDesc
	openGenerics map[string]TypeDesc
	initialInsts []GenericInstantiationRequest
	icalls       map[string]string
}

func (f *fakeSource) ReachableTypes() []TypeDesc { return f.types }

func (f *fakeSource) OpenGenericDefinition(name string) (TypeDesc, bool) {
	d, ok := f.openGenerics[name]
	return d, ok
}

func (f *fakeSource) InitialInstantiations() []GenericInstantiationRequest {
	return f.initialInsts
}

func (f *fakeSource) ICallSymbol(typeFullName, methodName string, arity int, firstParamTypeName string) (string, bool) {
	sym, ok := f.icalls[typeFullName+"::"+methodName+"/"+itoaTest(arity)]
	return sym, ok
}

func (f *fakeSource) MangledTypeName(fullName string) string { return "T_" + fullName }

func (f *fakeSource) MangledMethodName(typeFullName, methodName string, paramTypeNames []string) string {
	return "M_" + typeFullName + "_" + methodName
}

func (f *fakeSource) Primitive(fullName string) (ir.PrimitiveInfo, bool) { return ir.PrimitiveInfo{}, false }

func itoaTest(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	out := []byte{}
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}

func baseFixture() *fakeSource {
	return &fakeSource{
		openGenerics: map[string]TypeDesc{},
		icalls:       map[string]string{},
		types: []TypeDesc{
			{
				FullName: "System.Object",
				Methods: []MethodDesc{
					{Name: "ToString", IsVirtual: true, ReturnTypeName: "System.String"},
					{Name: "Equals", IsVirtual: true, ReturnTypeName: "System.Boolean", Parameters: []ir.Parameter{{Name: "o", TypeName: "System.Object"}}},
					{Name: "GetHashCode", IsVirtual: true, ReturnTypeName: "System.Int32"},
				},
			},
			{
				FullName:     "Widget",
				BaseTypeName: "System.Object",
				Fields: []FieldDesc{
					{Name: "count", FieldTypeName: "System.Int32"},
					{Name: "flag", FieldTypeName: "System.Boolean"},
				},
				Methods: []MethodDesc{
					{Name: "ToString", IsVirtual: true, ReturnTypeName: "System.String"},
					{
						Name: "Add", Parameters: []ir.Parameter{{Name: "a", TypeName: "System.Int32"}, {Name: "b", TypeName: "System.Int32"}},
						ReturnTypeName: "System.Int32",
						Body: &MethodBody{
							Instructions: []DecodedInstr{
								{Offset: 0, Info: metadata.OpcodeInfo{Mnemonic: "ldarg.1"}},
								{Offset: 1, Info: metadata.OpcodeInfo{Mnemonic: "ldarg.2"}},
								{Offset: 2, Info: metadata.OpcodeInfo{Mnemonic: "add"}},
								{Offset: 3, Info: metadata.OpcodeInfo{Mnemonic: "ret"}},
							},
						},
					},
				},
			},
			{
				FullName:     "Gadget",
				BaseTypeName: "Widget",
				Methods: []MethodDesc{
					{Name: "ToString", IsVirtual: true, ReturnTypeName: "System.String"},
				},
			},
		},
	}
}

func TestPass1CreatesShellForEveryReachableType(t *testing.T) {
	mod := New(baseFixture(), diag.NewCollector()).Run()
	assert.NotNil(t, mod.FindType("Widget"))
	assert.NotNil(t, mod.FindType("Gadget"))
	assert.NotNil(t, mod.FindType("System.Object"))
}

func TestPass2LaysOutFieldsTightestFirst(t *testing.T) {
	mod := New(baseFixture(), diag.NewCollector()).Run()
	widget := mod.FindType("Widget")
	require.Len(t, widget.InstanceFields, 2)
	// InstanceFields keeps declaration order; the layout places flag
	// (1 byte) ahead of count (4 bytes) by offset.
	assert.Equal(t, "count", widget.InstanceFields[0].CILName)
	assert.Equal(t, "flag", widget.InstanceFields[1].CILName)
	assert.Less(t, widget.InstanceFields[1].Offset, widget.InstanceFields[0].Offset)
	assert.Greater(t, widget.InstanceSize, 0)
}

func TestPass5BuildsStableVTableSlotsAcrossOverride(t *testing.T) {
	mod := New(baseFixture(), diag.NewCollector()).Run()
	widget := mod.FindType("Widget")
	gadget := mod.FindType("Gadget")

	widgetSlot := findSlotByName(widget.VTable, "ToString", "")
	gadgetSlot := findSlotByName(gadget.VTable, "ToString", "")
	require.NotEqual(t, -1, widgetSlot)
	require.NotEqual(t, -1, gadgetSlot)
	assert.Equal(t, widget.VTable[widgetSlot].Slot, gadget.VTable[gadgetSlot].Slot)
	assert.Equal(t, "Gadget", gadget.VTable[gadgetSlot].MethodTypeFullName)
}

func TestPass7LowersArithmeticIntoBasicBlocks(t *testing.T) {
	mod := New(baseFixture(), diag.NewCollector()).Run()
	widget := mod.FindType("Widget")
	var add *ir.Method
	for _, m := range widget.Methods {
		if m.CILName == "Add" {
			add = m
		}
	}
	require.NotNil(t, add)
	require.Len(t, add.BasicBlocks, 1)
	found := false
	for _, instr := range add.BasicBlocks[0].Instructions {
		if bop, ok := instr.(*ir.BinaryOp); ok && bop.Op == "+" {
			found = true
		}
	}
	assert.True(t, found, "expected a lowered + BinaryOp in Add's body")
}

func TestPass7LowersLdlenToArrayLength(t *testing.T) {
	src := &fakeSource{
		icalls:       map[string]string{},
		openGenerics: map[string]TypeDesc{},
		types: []TypeDesc{
			{FullName: "System.Object"},
			{
				FullName: "Widget",
				Methods: []MethodDesc{
					{
						Name:           "Count",
						ReturnTypeName: "System.Int32",
						Parameters:     []ir.Parameter{{Name: "items", TypeName: "System.Int32[]"}},
						Body: &MethodBody{
							Instructions: []DecodedInstr{
								{Offset: 0, Info: metadata.OpcodeInfo{Mnemonic: "ldarg.1"}},
								{Offset: 1, Info: metadata.OpcodeInfo{Mnemonic: "ldlen"}},
								{Offset: 2, Info: metadata.OpcodeInfo{Mnemonic: "ret"}},
							},
						},
					},
				},
			},
		},
	}
	mod := New(src, diag.NewCollector()).Run()
	widget := mod.FindType("Widget")
	var count *ir.Method
	for _, m := range widget.Methods {
		if m.CILName == "Count" {
			count = m
		}
	}
	require.NotNil(t, count)
	require.Len(t, count.BasicBlocks, 1)
	var load *ir.Load
	for _, instr := range count.BasicBlocks[0].Instructions {
		if l, ok := instr.(*ir.Load); ok && l.Kind == ir.LoadArrayLength {
			load = l
		}
	}
	require.NotNil(t, load, "expected a lowered LoadArrayLength")
	assert.NotEmpty(t, load.BaseTemp)
}

func TestPass7RecordsFaultForUnhandledOpcode(t *testing.T) {
	src := &fakeSource{
		icalls:       map[string]string{},
		openGenerics: map[string]TypeDesc{},
		types: []TypeDesc{
			{FullName: "System.Object"},
			{
				FullName: "Widget",
				Methods: []MethodDesc{
					{
						Name: "Measure",
						Body: &MethodBody{
							Instructions: []DecodedInstr{
								{Offset: 0, Info: metadata.OpcodeInfo{Mnemonic: "sizeof"}},
								{Offset: 1, Info: metadata.OpcodeInfo{Mnemonic: "pop"}},
								{Offset: 2, Info: metadata.OpcodeInfo{Mnemonic: "ret"}},
							},
						},
					},
				},
			},
		},
	}
	faults := diag.NewCollector()
	New(src, faults).Run()

	var found bool
	for _, f := range faults.Faults() {
		if f.Method == "Widget.Measure" && f.Kind == diag.KindLoweringFailure {
			found = true
		}
	}
	assert.True(t, found, "expected a lowering-failure fault recorded for Widget.Measure")
}

func TestFindSlotByNameRequiresMatchingSignature(t *testing.T) {
	vtable := []ir.VTableEntry{
		{Slot: 0, Name: "Equals", Signature: "System.Object"},
	}
	if idx := findSlotByName(vtable, "Equals", "System.String"); idx != -1 {
		t.Fatalf("Equals(string) must not bind to the Equals(Object) slot, got index %d", idx)
	}
	if idx := findSlotByName(vtable, "Equals", "System.Object"); idx != 0 {
		t.Fatalf("Equals(Object) should bind to slot 0, got %d", idx)
	}
}

func TestVTableSlotMatchingDistinguishesOverloads(t *testing.T) {
	src := &fakeSource{
		icalls:       map[string]string{},
		openGenerics: map[string]TypeDesc{},
		types: []TypeDesc{
			{
				FullName: "System.Object",
				Methods: []MethodDesc{
					{Name: "Equals", IsVirtual: true, ReturnTypeName: "System.Boolean",
						Parameters: []ir.Parameter{{Name: "o", TypeName: "System.Object"}}},
				},
			},
			{
				FullName:     "Widget",
				BaseTypeName: "System.Object",
				Methods: []MethodDesc{
					{Name: "Equals", IsVirtual: true, ReturnTypeName: "System.Boolean",
						Parameters: []ir.Parameter{{Name: "s", TypeName: "System.String"}}},
				},
			},
		},
	}
	mod := New(src, diag.NewCollector()).Run()
	object := mod.FindType("System.Object")
	widget := mod.FindType("Widget")

	var widgetEquals *ir.Method
	for _, m := range widget.Methods {
		if m.CILName == "Equals" {
			widgetEquals = m
		}
	}
	require.NotNil(t, widgetEquals)
	// Not NewSlot and no matching base signature: gets its own slot plus
	// an invariant fault, rather than silently reusing Object.Equals's slot.
	assert.NotEqual(t, object.VTable[0].Slot, widgetEquals.VTableSlot,
		"Equals(Object) and Equals(string) must occupy distinct v-table slots")
}

func TestGenericInstantiationSubstitutesFieldType(t *testing.T) {
	src := &fakeSource{
		icalls: map[string]string{},
		openGenerics: map[string]TypeDesc{
			"Box`1": {
				FullName:          "Box`1",
				GenericParamNames: []string{"T"},
				Fields:            []FieldDesc{{Name: "value", FieldTypeName: "T"}},
				Methods:           []MethodDesc{{Name: "Get", ReturnTypeName: "T"}},
			},
		},
		initialInsts: []GenericInstantiationRequest{
			{OpenDefinitionName: "Box`1", TypeArgNames: []string{"System.Int32"}},
		},
		types: []TypeDesc{{FullName: "System.Object"}},
	}
	mod := New(src, diag.NewCollector()).Run()
	closed := mod.FindType("Box`1<System.Int32>")
	require.NotNil(t, closed)
	require.Len(t, closed.InstanceFields, 1)
	assert.Equal(t, "System.Int32", closed.InstanceFields[0].FieldTypeName)
}

func TestRecordSynthesisEmitsEqualsAndToString(t *testing.T) {
	src := &fakeSource{
		icalls:       map[string]string{},
		openGenerics: map[string]TypeDesc{},
		types: []TypeDesc{
			{FullName: "System.Object"},
			{
				FullName: "Point",
				IsRecord: true,
				Fields: []FieldDesc{
					{Name: "X", FieldTypeName: "System.Int32"},
					{Name: "Y", FieldTypeName: "System.Int32"},
				},
			},
		},
	}
	mod := New(src, diag.NewCollector()).Run()
	point := mod.FindType("Point")
	require.NotNil(t, point)

	eq := recordMethod(point, "Equals")
	require.NotNil(t, eq)
	assert.NotEmpty(t, eq.BasicBlocks)

	ts := recordMethod(point, "ToString")
	require.NotNil(t, ts)
	require.NotEmpty(t, ts.BasicBlocks)
	for _, instr := range ts.BasicBlocks[0].Instructions {
		if l, ok := instr.(*ir.Load); ok && l.Kind == ir.LoadField {
			assert.Equal(t, "this", l.BaseTemp, "synthesized ToString field load must read through this")
		}
	}

	var sawNullCheck bool
	for _, instr := range eq.BasicBlocks[0].Instructions {
		if raw, ok := instr.(*ir.RawTargetCode); ok && raw.Text == "if (other == nullptr) return false;" {
			sawNullCheck = true
		}
	}
	assert.True(t, sawNullCheck, "reference-record Equals must null-check its parameter")
}

func TestRecordStructEqualityHasNoNullCheck(t *testing.T) {
	src := &fakeSource{
		icalls:       map[string]string{},
		openGenerics: map[string]TypeDesc{},
		types: []TypeDesc{
			{FullName: "System.Object"},
			{
				FullName:    "Coord",
				IsRecord:    true,
				IsValueType: true,
				Fields: []FieldDesc{
					{Name: "X", FieldTypeName: "System.Int32"},
				},
			},
		},
	}
	mod := New(src, diag.NewCollector()).Run()
	coord := mod.FindType("Coord")
	require.NotNil(t, coord)

	eq := recordMethod(coord, "Equals")
	require.NotNil(t, eq)
	for _, instr := range eq.BasicBlocks[0].Instructions {
		if raw, ok := instr.(*ir.RawTargetCode); ok {
			assert.NotEqual(t, "if (other == nullptr) return false;", raw.Text, "value-type records can't be null")
		}
	}
}
