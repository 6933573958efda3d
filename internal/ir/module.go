// Package ir implements the language-neutral intermediate representation
// a build produces: Module, Type, Method, Field, Parameter, BasicBlock,
// the tagged Instruction union, VTableEntry, InterfaceImpl, DebugInfo,
// and Attribute.
//
// Each instruction kind is its own concrete tagged struct rather than a
// deep interface hierarchy, so consumers dispatch with a type switch
// instead of virtual calls.
//
// Every cross-reference between Types, Methods, and Fields is a weak
// reference by canonical name or dense id, never a raw back-pointer into
// another entity's owned storage: the Module is the sole owner of every
// Type and Method, which keeps the ownership graph acyclic even though
// the logical graph (base/derived, type/method/call-target) is not.
package ir

import "strconv"

// SourceKind classifies where a Type came from.
type SourceKind int

const (
	SourceUser SourceKind = iota
	SourceThirdParty
	SourceRuntimeProvided
	SourceBclProxy
)

func (k SourceKind) String() string {
	switch k {
	case SourceUser:
		return "User"
	case SourceThirdParty:
		return "ThirdParty"
	case SourceRuntimeProvided:
		return "RuntimeProvided"
	case SourceBclProxy:
		return "BclProxy"
	default:
		return "Unknown"
	}
}

// PrimitiveInfo maps a primitive CIL type fullname to its mangled
// identifier and target scalar name, e.g. "System.Int32" ->
// {System_Int32, int32_t}.
type PrimitiveInfo struct {
	Mangled string
	Scalar  string
}

// Module owns every Type reachable in a build, plus the module-wide
// interned string-literal and array-initializer-blob tables, the
// primitive-type-info table, and an optional entry point. Immutable once
// the builder's final pass returns.
type Module struct {
	Types []*Type

	// EntryPoint is nil for a static-library build (no entry point found
	// during reachability root selection).
	EntryPoint *MethodRef

	// stringLiterals interns string literal content to a dense,
	// insertion-ordered id. RegisterStringLiteral is idempotent.
	stringLiterals    map[string]int
	stringLiteralsOrd []string

	// arrayInitBlobs holds array-initializer byte blobs in insertion
	// order, each addressable by its zero-based index.
	arrayInitBlobs [][]byte

	// Primitives maps a primitive CIL type fullname to its mangled
	// identifier and target scalar name.
	Primitives map[string]PrimitiveInfo

	typesByName map[string]*Type
}

// MethodRef is a weak, by-name reference to a Method owned by some Type
// in the Module — never a raw pointer into another entity's storage.
type MethodRef struct {
	TypeFullName   string
	MethodName     string
	ParamTypeNames []string // disambiguates overloads
}

// NewModule returns an empty Module ready for pass 1 to populate.
func NewModule() *Module {
	return &Module{
		stringLiterals: make(map[string]int),
		Primitives:     make(map[string]PrimitiveInfo),
		typesByName:    make(map[string]*Type),
	}
}

// AddType registers a newly created Type and indexes it by CIL full
// name. Passes 1-4 are the only callers; later passes look types up by
// name but never add new ones except pass 4's generic instantiations.
func (m *Module) AddType(t *Type) {
	m.Types = append(m.Types, t)
	m.typesByName[t.FullName] = t
}

// FindType looks up a Type by CIL full name. Returns nil if absent —
// every name referenced by a reachable entity must resolve here once
// the shell-creation pass has run; the module is closed after that
// point, so a nil result past that pass indicates a builder defect, not
// a legitimate external reference.
func (m *Module) FindType(fullName string) *Type {
	return m.typesByName[fullName]
}

// GetAllMethods iterates every Method owned by every Type in the
// Module, in Type-then-Method declaration order.
func (m *Module) GetAllMethods() []*Method {
	var out []*Method
	for _, t := range m.Types {
		out = append(out, t.Methods...)
	}
	return out
}

// RegisterStringLiteral interns content and returns its dense id,
// assigned in insertion order as __str_0, __str_1, …. Idempotent:
// repeated calls for the same content return the same id.
func (m *Module) RegisterStringLiteral(content string) int {
	if id, ok := m.stringLiterals[content]; ok {
		return id
	}
	id := len(m.stringLiteralsOrd)
	m.stringLiterals[content] = id
	m.stringLiteralsOrd = append(m.stringLiteralsOrd, content)
	return id
}

// StringLiteralID is the rendered identifier for a string literal's
// dense id, e.g. "__str_0".
func StringLiteralID(id int) string {
	return "__str_" + strconv.Itoa(id)
}

// StringLiteralEntry pairs an interned string literal with its dense id.
type StringLiteralEntry struct {
	ID      int
	Content string
}

// StringLiterals returns the interned string-literal table as
// content -> {id, value} pairs, in insertion order.
func (m *Module) StringLiterals() []StringLiteralEntry {
	out := make([]StringLiteralEntry, len(m.stringLiteralsOrd))
	for i, s := range m.stringLiteralsOrd {
		out[i] = StringLiteralEntry{ID: i, Content: s}
	}
	return out
}

// RegisterArrayInitData appends bytes to the array-initializer blob list
// and returns its rendered identifier __arr_init_<k>, where k is the
// zero-based pre-insert count. The bytes are copied so later mutation of
// the caller's slice cannot retroactively change a previously registered
// blob.
func (m *Module) RegisterArrayInitData(data []byte) string {
	k := len(m.arrayInitBlobs)
	cp := make([]byte, len(data))
	copy(cp, data)
	m.arrayInitBlobs = append(m.arrayInitBlobs, cp)
	return "__arr_init_" + strconv.Itoa(k)
}

// ArrayInitBlob pairs a registered array-initializer blob with its
// dense id.
type ArrayInitBlob struct {
	ID    int
	Bytes []byte
}

// ArrayInitBlobs returns the registered array-init blobs in insertion
// order, each paired with its dense id.
func (m *Module) ArrayInitBlobs() []ArrayInitBlob {
	out := make([]ArrayInitBlob, len(m.arrayInitBlobs))
	for i, b := range m.arrayInitBlobs {
		out[i] = ArrayInitBlob{ID: i, Bytes: b}
	}
	return out
}

