package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleAddAndFindType(t *testing.T) {
	m := NewModule()
	ty := &Type{FullName: "MyApp.Widget", MangledName: "MyApp_Widget"}
	m.AddType(ty)

	require.Len(t, m.Types, 1)
	assert.Same(t, ty, m.FindType("MyApp.Widget"))
	assert.Nil(t, m.FindType("MyApp.DoesNotExist"))
}

func TestModuleGetAllMethodsPreservesTypeThenMethodOrder(t *testing.T) {
	m := NewModule()
	a := &Type{FullName: "A", Methods: []*Method{{CILName: "Foo"}, {CILName: "Bar"}}}
	b := &Type{FullName: "B", Methods: []*Method{{CILName: "Baz"}}}
	m.AddType(a)
	m.AddType(b)

	got := m.GetAllMethods()
	require.Len(t, got, 3)
	assert.Equal(t, "Foo", got[0].CILName)
	assert.Equal(t, "Bar", got[1].CILName)
	assert.Equal(t, "Baz", got[2].CILName)
}

func TestRegisterStringLiteralIsIdempotentAndInsertionOrdered(t *testing.T) {
	m := NewModule()
	id0 := m.RegisterStringLiteral("hello")
	id1 := m.RegisterStringLiteral("world")
	idAgain := m.RegisterStringLiteral("hello")

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, id0, idAgain)
	assert.Equal(t, "__str_0", StringLiteralID(id0))

	entries := m.StringLiterals()
	want := []StringLiteralEntry{
		{ID: 0, Content: "hello"},
		{ID: 1, Content: "world"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("StringLiterals() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterArrayInitDataCopiesInputAndAssignsDenseIDs(t *testing.T) {
	m := NewModule()
	data := []byte{1, 2, 3}
	id0 := m.RegisterArrayInitData(data)
	data[0] = 99 // mutate caller's slice after registering

	assert.Equal(t, "__arr_init_0", id0)
	blobs := m.ArrayInitBlobs()
	require.Len(t, blobs, 1)
	assert.Equal(t, []byte{1, 2, 3}, blobs[0].Bytes, "registered blob must not alias caller's slice")

	id1 := m.RegisterArrayInitData([]byte{4, 5})
	assert.Equal(t, "__arr_init_1", id1)
}

func TestInstructionVariantsSatisfyInterfaceAndCarryDebugInfo(t *testing.T) {
	d := &DebugInfo{File: "Widget.cs", Line: 10, Column: 2, ILOffset: 0x1a}

	variants := []Instruction{
		&Comment{Text: "note"},
		&Assign{Result: "t0", Value: "1"},
		&Load{Kind: LoadLocal, Name: "x", Result: "t1"},
		&Store{Kind: StoreField, Name: "_count", ValueTemp: "t1"},
		&BinaryOp{Op: "+", Left: "t0", Right: "t1", Result: "t2"},
		&Branch{TargetLabel: "BB_3"},
		&Call{CalleeName: "MyApp.Widget.Foo", Arguments: []string{"t2"}, Result: "t3", VTableSlot: -1},
		&Return{Value: "t3"},
	}

	for _, v := range variants {
		v.SetDebug(d)
		assert.Same(t, d, v.Debug())
	}
}

func TestExceptionMarkersAreDistinctVariants(t *testing.T) {
	// Scenario: a try/catch/finally region lowers to a balanced run of
	// markers sharing one RegionID, each a distinct concrete type rather
	// than a single marker type with a free-form tag string.
	region := 7
	seq := []Instruction{
		&ExceptionMarker{Kind: TryBeginMarker, RegionID: region},
		&Comment{Text: "protected body"},
		&ExceptionMarker{Kind: TryEndMarker, RegionID: region},
		&ExceptionMarker{Kind: CatchBeginMarker, RegionID: region, CatchTypeName: "System.Exception", ExceptionVar: "ex"},
		&Rethrow{},
		&ExceptionMarker{Kind: FinallyBeginMarker, RegionID: region},
	}

	var kinds []ExceptionMarkerKind
	for _, inst := range seq {
		if em, ok := inst.(*ExceptionMarker); ok {
			kinds = append(kinds, em.Kind)
			assert.Equal(t, region, em.RegionID)
		}
	}
	assert.Equal(t, []ExceptionMarkerKind{TryBeginMarker, TryEndMarker, CatchBeginMarker, FinallyBeginMarker}, kinds)
}

func TestMethodQualifiedNameAndStubReason(t *testing.T) {
	m := &Method{OwningTypeFullName: "MyApp.Widget", CILName: "Render"}
	assert.Equal(t, "MyApp.Widget.Render", m.QualifiedName())
	assert.False(t, m.IsStubbed())

	m.StubReason = StubCLRInternalDependency
	assert.True(t, m.IsStubbed())
	assert.Equal(t, "CLRInternalDependency", m.StubReason.String())
}

func TestSourceKindString(t *testing.T) {
	assert.Equal(t, "User", SourceUser.String())
	assert.Equal(t, "RuntimeProvided", SourceRuntimeProvided.String())
	assert.Equal(t, "Unknown", SourceKind(99).String())
}
