package ir

// MethodFlags mirrors the subset of ECMA-335 method attribute flags the
// core threads through to the emitter.
type MethodFlags uint32

const (
	MethodPublic MethodFlags = 1 << iota
	MethodPrivate
	MethodFamily
	MethodAssembly
	MethodSpecialName
	MethodRTSpecialName
	MethodHideBySig
)

// Parameter is one formal parameter of a Method.
type Parameter struct {
	Name string
	// TypeName is the CIL full name of the parameter's type, a weak
	// reference resolved through Module.FindType.
	TypeName string
}

// PInvokeCallingConvention enumerates the calling conventions a
// PInvokeDescriptor can carry.
type PInvokeCallingConvention int

const (
	CallConvWinapi PInvokeCallingConvention = iota
	CallConvCdecl
	CallConvStdcall
	CallConvThiscall
	CallConvFastcall
)

// PInvokeCharset enumerates the marshaling charset a P/Invoke
// declaration can request.
type PInvokeCharset int

const (
	CharsetAnsi PInvokeCharset = iota
	CharsetUnicode
	CharsetAuto
)

// PInvokeDescriptor carries the external-method binding data a
// P/Invoke-declared method needs: module, entry-point name, calling
// convention, charset, and last-error propagation.
type PInvokeDescriptor struct {
	Module         string
	EntryPointName string
	CallingConv    PInvokeCallingConvention
	Charset        PInvokeCharset
	SetLastError   bool
}

// ExplicitOverride names one interface slot a method satisfies by
// explicit binding rather than by name match.
type ExplicitOverride struct {
	InterfaceFullName string
	MethodName        string
}

// Method is one member of a Type's Methods list.
type Method struct {
	// OwningTypeFullName is a weak reference to the declaring Type.
	OwningTypeFullName string

	CILName     string
	MangledName string

	IsStatic      bool
	IsConstructor bool
	IsStaticCtor  bool
	IsFinalizer   bool
	IsOperator    bool
	IsPropertyGet bool
	IsPropertySet bool

	IsVirtual  bool
	IsAbstract bool
	IsNewSlot  bool

	// VTableSlot is >= 0 if this method is dispatched virtually, else -1.
	VTableSlot int

	IsEntryPoint bool

	IsGenericInstance bool
	GenericArguments  []string

	Parameters []Parameter
	// ReturnTypeName is the CIL full name of the return type, or ""
	// for void.
	ReturnTypeName string

	// BasicBlocks is empty for abstract, extern, or ICall-mapped methods.
	BasicBlocks []*BasicBlock

	ExplicitOverrides []ExplicitOverride

	Flags      MethodFlags
	Attributes []Attribute

	PInvoke *PInvokeDescriptor

	// IsICall is true when the builder redirected this method's
	// call-sites to the ICall registry's runtime-primitive name instead
	// of lowering a body; BasicBlocks stays empty.
	IsICall          bool
	ICallRuntimeName string

	// OperatorName is set for overloaded operators (op_Addition,
	// op_Equality, …).
	OperatorName string

	// --- Safety-net gate annotations (set by internal/gate) ---
	StubReason StubReason
}

// StubReason records why (if at all) the safety-net gate replaced a
// method's body with a default-value stub.
type StubReason int

const (
	// StubNone means the method was emitted normally (or never needed
	// gating: abstract/extern/ICall).
	StubNone StubReason = iota
	StubCLRInternalDependency
	StubKnownBrokenPattern
	StubRenderedBodyError
	StubUndeclaredReference
	StubLoweringFailure
)

func (r StubReason) String() string {
	switch r {
	case StubNone:
		return "None"
	case StubCLRInternalDependency:
		return "CLRInternalDependency"
	case StubKnownBrokenPattern:
		return "KnownBrokenPattern"
	case StubRenderedBodyError:
		return "RenderedBodyError"
	case StubUndeclaredReference:
		return "UndeclaredReference"
	case StubLoweringFailure:
		return "LoweringFailure"
	default:
		return "Unknown"
	}
}

// IsStubbed reports whether the gate replaced this method's body.
func (m *Method) IsStubbed() bool {
	return m.StubReason != StubNone
}

// QualifiedName is the method's canonical "TypeFullName.MethodName" form
// used for stub-report sorting and diagnostics.
func (m *Method) QualifiedName() string {
	return m.OwningTypeFullName + "." + m.CILName
}
