package pipeline

import (
	"strconv"
	"strings"

	"github.com/axiomates/cil2cpp/internal/assemblyset"
	"github.com/axiomates/cil2cpp/internal/build"
	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/icall"
	"github.com/axiomates/cil2cpp/internal/ir"
	"github.com/axiomates/cil2cpp/internal/mangle"
	"github.com/axiomates/cil2cpp/internal/metadata"
)

// primitives maps a CIL scalar type's full name to its mangled
// identifier and C++ target type. Only true value-type scalars are
// listed; System.String and System.Object are reference types and
// flow through the ordinary Type/Method path instead.
var primitives = map[string]ir.PrimitiveInfo{
	"System.Void":    {Mangled: "System_Void", Scalar: "void"},
	"System.Boolean": {Mangled: "System_Boolean", Scalar: "bool"},
	"System.Char":    {Mangled: "System_Char", Scalar: "char16_t"},
	"System.SByte":   {Mangled: "System_SByte", Scalar: "int8_t"},
	"System.Byte":    {Mangled: "System_Byte", Scalar: "uint8_t"},
	"System.Int16":   {Mangled: "System_Int16", Scalar: "int16_t"},
	"System.UInt16":  {Mangled: "System_UInt16", Scalar: "uint16_t"},
	"System.Int32":   {Mangled: "System_Int32", Scalar: "int32_t"},
	"System.UInt32":  {Mangled: "System_UInt32", Scalar: "uint32_t"},
	"System.Int64":   {Mangled: "System_Int64", Scalar: "int64_t"},
	"System.UInt64":  {Mangled: "System_UInt64", Scalar: "uint64_t"},
	"System.Single":  {Mangled: "System_Single", Scalar: "float"},
	"System.Double":  {Mangled: "System_Double", Scalar: "double"},
	"System.IntPtr":  {Mangled: "System_IntPtr", Scalar: "intptr_t"},
	"System.UIntPtr": {Mangled: "System_UIntPtr", Scalar: "uintptr_t"},
}

// Primitive implements build.Source.
func (b *Bridge) Primitive(fullName string) (ir.PrimitiveInfo, bool) {
	p, ok := primitives[fullName]
	return p, ok
}

// MangledTypeName implements build.Source, interning through a table
// shared across the whole build so every caller sees the same
// collision-resolved identifier for a given CIL full name.
func (b *Bridge) MangledTypeName(fullName string) string {
	if strings.ContainsAny(fullName, "<>") {
		return b.typeNames.Intern(fullName, mangle.Synthetic)
	}
	if b.isOpenGenericDefinition(fullName) {
		return b.typeNames.Intern(fullName, mangle.OpenTypeTemplate)
	}
	return b.typeNames.Intern(fullName, mangle.Type)
}

func (b *Bridge) isOpenGenericDefinition(fullName string) bool {
	e, ok := b.byFullName[fullName]
	if !ok {
		return false
	}
	return strings.HasSuffix(e.td.Name, "`1") || strings.Contains(e.td.Name, "`")
}

// methodKey is the deterministic string a Bridge interns a method
// identity by: declaring type, method name, and parameter type names,
// joined so two methods differing only in overload never collide.
func methodKey(typeFullName, methodName string, paramTypeNames []string) string {
	return typeFullName + "::" + methodName + "(" + strings.Join(paramTypeNames, ",") + ")"
}

// MangledMethodName implements build.Source.
func (b *Bridge) MangledMethodName(typeFullName, methodName string, paramTypeNames []string) string {
	key := methodKey(typeFullName, methodName, paramTypeNames)
	return b.methodIDs.Intern(key, func(string) string {
		return mangle.Synthetic(typeFullName + "_" + methodName + "_" + strconv.Itoa(len(paramTypeNames)))
	})
}

// ICallSymbol implements build.Source.
func (b *Bridge) ICallSymbol(typeFullName, methodName string, arity int, firstParamTypeName string) (string, bool) {
	return b.icalls.Lookup(icall.Signature{
		TypeFullName:        typeFullName,
		MethodName:          methodName,
		Arity:               arity,
		FirstParamTypeName:  firstParamTypeName,
	})
}

// ReachableTypes implements build.Source: every TypeDesc the
// reachability sweep closed over, in load order. SetReachability must
// already have run; an un-narrowed Bridge reports every indexed type,
// since that is also what EdgeSource traversal must see.
func (b *Bridge) ReachableTypes() []build.TypeDesc {
	var reachableNames map[string]bool
	if b.reachable != nil {
		reachableNames = b.reachable.ReachableTypes
	}

	var out []build.TypeDesc
	for _, fullName := range b.order {
		if reachableNames != nil && !reachableNames[fullName] {
			continue
		}
		if b.isOpenGenericDefinition(fullName) {
			continue // only instantiated through OpenGenericDefinition, never added directly
		}
		out = append(out, b.buildTypeDesc(fullName))
	}
	return out
}

// OpenGenericDefinition implements build.Source.
func (b *Bridge) OpenGenericDefinition(name string) (build.TypeDesc, bool) {
	if _, ok := b.byFullName[name]; !ok {
		return build.TypeDesc{}, false
	}
	return b.buildTypeDesc(name), true
}

// InitialInstantiations implements build.Source.
func (b *Bridge) InitialInstantiations() []build.GenericInstantiationRequest {
	if b.reachable == nil {
		return nil
	}
	out := make([]build.GenericInstantiationRequest, 0, len(b.reachable.Instantiations))
	for _, inst := range b.reachable.Instantiations {
		out = append(out, build.GenericInstantiationRequest{
			OpenDefinitionName: inst.OpenDefinitionName,
			TypeArgNames:       inst.TypeArgNames,
		})
	}
	return out
}

func (b *Bridge) buildTypeDesc(fullName string) build.TypeDesc {
	e := b.byFullName[fullName]
	r := e.asm.Reader

	var baseType string
	if e.td.Row.Extends != 0 {
		baseType, _ = r.ResolveTypeDefOrRef(e.td.Row.Extends)
	}

	desc := build.TypeDesc{
		FullName:          fullName,
		BaseTypeName:      baseType,
		Interfaces:        r.Interfaces(e.td),
		IsInterface:       e.td.Row.Flags.IsInterface(),
		IsAbstract:        e.td.Row.Flags.IsAbstract(),
		IsThirdParty:      e.asm.Classification == assemblyset.ClassThirdParty,
		IsRuntimeProvided: e.asm.Classification == assemblyset.ClassBCL,
	}
	desc.IsValueType = b.derivesFrom(fullName, "System.ValueType") && fullName != "System.Enum"
	desc.IsEnum = b.derivesFrom(fullName, "System.Enum")
	desc.IsDelegate = b.derivesFrom(fullName, "System.MulticastDelegate")
	desc.GenericParamNames = r.GenericParamNames(0, e.td.RowIndex+1)
	desc.Attributes = attributeDescs(r.TypeAttributes(e.td))
	desc.IsRecord = b.hasCloneMethod(e.td, r)

	fields, err := r.Fields(e.td)
	if err != nil {
		b.faults.RecordFatal(diag.Wrap(diag.KindMetadataFormatError, "reading fields of "+fullName, err))
		fields = nil
	}
	for _, fd := range fields {
		isStatic := fd.Row.Flags&metadata.FieldStatic != 0
		ft := metadata.DecodeFieldSignature(fd.Signature, r.ResolveTypeDefOrRef)
		fdesc := build.FieldDesc{
			Name:          fd.Name,
			FieldTypeName: ft,
			IsStatic:      isStatic,
			Flags:         fieldFlags(fd.Row.Flags),
		}
		if fd.Row.Flags&metadata.FieldLiteral != 0 {
			if cv, ok := r.ConstantForField(fd.RowIndex); ok {
				fdesc.Literal = literalValue(cv)
			}
		}
		fdesc.Attributes = attributeDescs(r.FieldAttributes(fd))
		desc.Fields = append(desc.Fields, fdesc)
		if desc.IsEnum && fd.Name == "value__" {
			desc.EnumUnderlyingTypeName = ft
		}
	}

	methods, err := r.Methods(e.td)
	if err != nil {
		b.faults.RecordFatal(diag.Wrap(diag.KindMetadataFormatError, "reading methods of "+fullName, err))
		methods = nil
	}
	for _, md := range methods {
		desc.Methods = append(desc.Methods, b.buildMethodDesc(fullName, e.asm, md))
		if methodNodeName(fullName, md.Name, paramCountOf(r, md)) == b.entryPointKey() {
			desc.Methods[len(desc.Methods)-1].IsEntryPoint = true
		}
	}
	return desc
}

func (b *Bridge) entryPointKey() string {
	entry := b.set.Entry
	if entry == nil || entry.Reader.EntryPointToken() == 0 {
		return ""
	}
	tok, ok := entry.Reader.ResolveToken(entry.Reader.EntryPointToken())
	if !ok {
		return ""
	}
	return methodNodeName(tok.TypeFullName, tok.MemberName, tok.ParamCount)
}

func (b *Bridge) derivesFrom(typeName, ancestor string) bool {
	seen := map[string]bool{}
	for typeName != "" && !seen[typeName] {
		if typeName == ancestor {
			return true
		}
		seen[typeName] = true
		e, ok := b.byFullName[typeName]
		if !ok || e.td.Row.Extends == 0 {
			return false
		}
		base, ok := e.asm.Reader.ResolveTypeDefOrRef(e.td.Row.Extends)
		if !ok {
			return false
		}
		typeName = base
	}
	return false
}

func (b *Bridge) buildMethodDesc(typeFullName string, asm *assemblyset.LoadedAssembly, md metadata.MethodDef) build.MethodDesc {
	r := asm.Reader
	sig, err := r.BlobAt(md.Row.Signature)
	var msig metadata.MethodSignature
	if err == nil {
		msig = metadata.DecodeMethodSignature(sig, r.ResolveTypeDefOrRef)
	}

	desc := build.MethodDesc{
		Name:          md.Name,
		IsStatic:      md.Row.Flags&metadata.MethodStatic != 0,
		IsConstructor: md.Name == ".ctor",
		IsStaticCtor:  md.Name == ".cctor",
		IsFinalizer:   md.Name == "Finalize",
		IsVirtual:     md.Row.Flags.IsVirtual(),
		IsAbstract:    md.Row.Flags.IsAbstract(),
		IsNewSlot:     md.Row.Flags.IsNewSlot(),
		IsExtern:      md.Body == nil && !md.Row.Flags.IsAbstract(),
		ReturnTypeName: msig.ReturnTypeName,
		Flags:         methodFlags(md.Row.Flags),
	}
	if strings.HasPrefix(md.Name, "op_") {
		desc.OperatorName = md.Name
	}
	for i, pt := range msig.ParamTypeNames {
		desc.Parameters = append(desc.Parameters, ir.Parameter{
			Name:     "arg" + strconv.Itoa(i),
			TypeName: pt,
		})
	}
	if pinvoke, ok := r.PInvokeForMethod(md.RowIndex); ok {
		desc.PInvoke = pinvokeDescriptor(pinvoke)
	}
	desc.Attributes = attributeDescs(r.MethodAttributes(md))
	if md.Body != nil {
		if body := b.decodeBody(r, md); body != nil {
			desc.Body = body
		}
	}
	return desc
}

// attributeDescs adapts the metadata layer's CustomAttributeRef rows
// (constructor-target-only, per its own doc comment) into the
// builder's AttributeDesc; fixed-argument values are never available
// at this layer, so FixedArgs is always empty.
func attributeDescs(refs []metadata.CustomAttributeRef) []build.AttributeDesc {
	if len(refs) == 0 {
		return nil
	}
	out := make([]build.AttributeDesc, len(refs))
	for i, ref := range refs {
		out[i] = build.AttributeDesc{ConstructorTypeFullName: ref.ConstructorTypeFullName}
	}
	return out
}

// hasCloneMethod reports whether td declares the compiler-synthesized
// "<Clone>$" method, the one ABI-visible marker a record type's
// metadata carries (record-ness itself is an erased compile-time
// concept by the time CIL is emitted).
func (b *Bridge) hasCloneMethod(td metadata.TypeDef, r *metadata.Reader) bool {
	methods, err := r.Methods(td)
	if err != nil {
		return false
	}
	for _, md := range methods {
		if md.Name == "<Clone>$" {
			return true
		}
	}
	return false
}
