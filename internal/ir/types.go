package ir

// Variance tags a generic instantiation's per-parameter variance.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// Type is one member of Module.Types.
type Type struct {
	FullName    string // CIL full name
	MangledName string // target-mangled name

	Source SourceKind

	IsValueType       bool
	IsEnum            bool
	IsInterface       bool
	IsAbstract        bool
	IsDelegate        bool
	IsRecord          bool
	IsGenericInstance bool
	IsRuntimeProvided bool

	// BaseTypeName is a weak by-name reference to another Type, or "" if
	// there is none (e.g. System.Object, or an interface).
	BaseTypeName string

	// Interfaces lists the CIL full names of implemented interfaces, in
	// declaration order.
	Interfaces []string

	InstanceFields []*Field
	StaticFields   []*Field

	// InstanceSize is computed in pass 2 using a deterministic layout:
	// object-header bytes prepended for reference types, natural
	// alignment, tightest-first among same-alignment groups.
	InstanceSize int

	Methods []*Method

	// VTable is the dense per-type v-table built in pass 5. Its slot
	// numbering is stable within an inheritance chain.
	VTable []VTableEntry

	// InterfaceImpls holds one InterfaceImpl per entry of Interfaces,
	// built in pass 6.
	InterfaceImpls []*InterfaceImpl

	// Finalizer is a weak reference to the type's finalizer method name,
	// or "" if none.
	Finalizer string

	Attributes []Attribute

	// HasCctor is set in pass 2 by scanning for a static constructor.
	HasCctor bool

	// --- Generic instantiation fields (set only when IsGenericInstance) ---

	// GenericDefinitionName is the open generic definition's CIL full
	// name. The open definition never appears as a standalone entry of
	// Module.Types; only closed instantiations do.
	GenericDefinitionName string
	GenericArguments      []string // concrete argument CIL full names
	GenericVariance       []Variance

	// EnumUnderlyingTypeName is set iff IsEnum.
	EnumUnderlyingTypeName string
}

// VTableEntry is one dense slot of a Type's v-table.
type VTableEntry struct {
	Slot int
	Name string // virtual method's declared name, shared across an override chain

	// MethodTypeFullName + MethodName name the Method currently occupying
	// this slot, by weak reference. Both are "" for an unfilled abstract
	// slot.
	MethodTypeFullName string
	MethodName         string

	// Signature is the slot's parameter-type-name fingerprint, set when
	// the slot is created. An override only binds to a base slot sharing
	// both Name and Signature, so overloaded virtuals (e.g. two
	// Equals(...) overloads) never cross-bind.
	Signature string
}

// InterfaceImpl maps one implemented interface's methods to their
// implementations for a single class. MethodImpls is indexed identically
// to the interface's non-constructor, non-static-constructor method
// declaration order.
type InterfaceImpl struct {
	InterfaceFullName string

	// MethodImpls is indexed identically to the interface's non-ctor,
	// non-cctor method declaration order. Each entry is a weak reference
	// to the implementing Method (by type+name), or nil if unfilled.
	MethodImpls []*InterfaceMethodImpl
}

// InterfaceMethodImpl names the method implementing one interface slot,
// and how it was resolved.
type InterfaceMethodImpl struct {
	TypeFullName string
	MethodName   string
	Kind         ImplKind
}

// ImplKind records which resolution rule filled an InterfaceMethodImpl
// slot: an explicit interface-method override, a plain name match, an
// inherited implementation from a base class, or a default interface
// method body.
type ImplKind int

const (
	ImplExplicitOverride ImplKind = iota
	ImplNameMatch
	ImplInherited
	ImplDefaultInterfaceMethod
)

// Attribute is a reachable custom attribute application: a constructor
// reference plus its already-materialized fixed-argument values. Named
// arguments are out of scope — callers only need enough to drive
// reflection-at-build-time queries.
type Attribute struct {
	ConstructorTypeFullName string
	FixedArgs               []string
}
