// Package build implements the eight-pass construction of an
// internal/ir Module from a reachable surface described by the Source
// interface: type shells, fields, method shells, generic
// monomorphization, v-tables, interface-implementation mapping, method
// bodies, and record synthesis.
package build

import "github.com/axiomates/cil2cpp/internal/ir"

// TypeDesc is the builder's input description of one reachable type,
// decoupled from any particular metadata representation so the eight
// passes never reach back into raw ECMA-335 rows.
type TypeDesc struct {
	FullName     string
	BaseTypeName string
	Interfaces   []string

	IsValueType       bool
	IsEnum            bool
	IsInterface       bool
	IsAbstract        bool
	IsDelegate        bool
	IsRecord          bool
	IsThirdParty      bool
	IsRuntimeProvided bool

	EnumUnderlyingTypeName string

	Fields  []FieldDesc
	Methods []MethodDesc

	Attributes []AttributeDesc

	// GenericDefinitionName is set only for an open generic definition
	// (never itself added to the Module; pass 4 reads it off the
	// instantiation request instead).
	GenericParamNames []string
}

// FieldDesc describes one field of a TypeDesc.
type FieldDesc struct {
	Name          string
	FieldTypeName string
	IsStatic      bool
	Flags         ir.FieldFlags
	Literal       *ir.LiteralValue
	Attributes    []AttributeDesc
}

// MethodDesc describes one method of a TypeDesc, prior to body lowering.
type MethodDesc struct {
	Name           string
	IsStatic       bool
	IsConstructor  bool
	IsStaticCtor   bool
	IsFinalizer    bool
	IsVirtual      bool
	IsAbstract     bool
	IsNewSlot      bool
	IsExtern       bool
	IsEntryPoint   bool
	OperatorName   string
	Parameters        []ir.Parameter
	ReturnTypeName    string
	Flags             ir.MethodFlags
	Attributes        []AttributeDesc
	PInvoke           *ir.PInvokeDescriptor
	ExplicitOverrides []ir.ExplicitOverride

	// Body is nil for abstract/extern methods; it holds the raw decoded
	// CIL instruction stream pass 7 lowers.
	Body *MethodBody
}

// AttributeDesc describes one reachable custom attribute application.
type AttributeDesc struct {
	ConstructorTypeFullName string
	FixedArgs               []string
}

// GenericInstantiationRequest is one closed generic tuple reachability
// seeded, consumed by pass 4.
type GenericInstantiationRequest struct {
	OpenDefinitionName string
	TypeArgNames       []string
}

// Source is everything the builder needs from the reader/reachability
// stage: the closed set of reachable type descriptions, plus any
// generic instantiations reachability seeded (pass 4 may discover and
// request more as it substitutes signatures; the builder asks Source to
// resolve each new request against the open definition it already
// holds).
type Source interface {
	// ReachableTypes returns every non-generic-instantiation type the
	// reachability analyzer closed over, in a stable order (declaration
	// order within an assembly, assemblies in load order).
	ReachableTypes() []TypeDesc

	// OpenGenericDefinition returns the TypeDesc for an open generic
	// definition by canonical name (its field/method type names contain
	// the definition's own generic parameter names, e.g. "T"), used by
	// pass 4 to build a closed instantiation.
	OpenGenericDefinition(name string) (TypeDesc, bool)

	// InitialInstantiations returns the generic instantiations seeded
	// directly by reachable call-sites and typerefs (before pass 4 finds
	// any further nested ones).
	InitialInstantiations() []GenericInstantiationRequest

	// ICallSymbol resolves a call-site to its runtime-primitive name, if
	// the signature matches the ICall registry.
	ICallSymbol(typeFullName, methodName string, arity int, firstParamTypeName string) (string, bool)

	// MangledTypeName and MangledMethodName return the Name mapper's
	// collision-free output identifiers for a type or method.
	MangledTypeName(fullName string) string
	MangledMethodName(typeFullName, methodName string, paramTypeNames []string) string

	// Primitive returns the mangled identifier and scalar target name
	// for a primitive CIL type, if fullName names one.
	Primitive(fullName string) (ir.PrimitiveInfo, bool)
}
