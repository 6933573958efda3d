package build

import "github.com/axiomates/cil2cpp/internal/ir"

// objectHeaderSize is the fixed number of bytes every reference-type
// instance reserves ahead of its first declared field (type pointer +
// sync/monitor slot), mirroring a two-pointer-word header layout.
const objectHeaderSize = 16

// pass2FieldsAndBaseWiring populates ordered instance/static field
// lists, checks that each base-type reference resolves to a pass-1 Type
// record (references stay by-name; interface references are not
// checked here), sets HasCctor,
// and computes instance size with natural alignment, tightest-first
// among same-alignment groups.
func (b *Builder) pass2FieldsAndBaseWiring(descs []TypeDesc) {
	for _, d := range descs {
		t := b.module.FindType(d.FullName)
		if t == nil {
			continue
		}

		if d.BaseTypeName != "" && b.module.FindType(d.BaseTypeName) == nil && !d.IsRuntimeProvided {
			b.invariantFault(d.FullName, "base type \""+d.BaseTypeName+"\" not found among reachable types")
		}

		if d.IsEnum {
			b.layoutEnum(t, d)
			continue
		}

		for _, fd := range d.Fields {
			f := &ir.Field{
				OwningTypeFullName: d.FullName,
				CILName:            fd.Name,
				MangledName:        fd.Name,
				FieldTypeName:      fd.FieldTypeName,
				IsStatic:           fd.IsStatic,
				Flags:              fd.Flags,
				LiteralValue:       fd.Literal,
				Attributes:         toIRAttributes(fd.Attributes),
			}
			if fd.IsStatic {
				t.StaticFields = append(t.StaticFields, f)
			} else {
				t.InstanceFields = append(t.InstanceFields, f)
			}
		}

		t.InstanceSize = b.layoutInstanceFields(t)

		for _, md := range d.Methods {
			if md.IsStaticCtor {
				t.HasCctor = true
				break
			}
		}

		t.Attributes = toIRAttributes(d.Attributes)
	}
}

// layoutEnum hoists an enum's constant members into StaticFields with
// their literal values and omits the value__ backing field from
// Fields, matching managed enum representation.
func (b *Builder) layoutEnum(t *ir.Type, d TypeDesc) {
	for _, fd := range d.Fields {
		if !fd.IsStatic || fd.Literal == nil {
			continue
		}
		t.StaticFields = append(t.StaticFields, &ir.Field{
			OwningTypeFullName: d.FullName,
			CILName:            fd.Name,
			MangledName:        fd.Name,
			FieldTypeName:      d.EnumUnderlyingTypeName,
			IsStatic:           true,
			Flags:              fd.Flags,
			LiteralValue:       fd.Literal,
		})
	}
	t.InstanceSize = scalarSize(d.EnumUnderlyingTypeName)
}

// layoutInstanceFields assigns each instance field a byte offset using
// natural alignment, ordering same-alignment groups tightest-first (so
// e.g. all 1-byte fields pack before 4-byte fields, rather than in
// declaration order) and returns the resulting total instance size,
// header-prefixed for reference types.
func (b *Builder) layoutInstanceFields(t *ir.Type) int {
	header := 0
	if !t.IsValueType {
		header = objectHeaderSize
	}

	order := append([]*ir.Field(nil), t.InstanceFields...)
	sortFieldsByAlignment(order, func(f *ir.Field) int { return fieldAlignment(f.FieldTypeName) })

	offset := header
	for _, f := range order {
		align := fieldAlignment(f.FieldTypeName)
		if rem := offset % align; rem != 0 {
			offset += align - rem
		}
		f.Offset = offset
		offset += scalarSize(f.FieldTypeName)
	}
	if align := structAlignment(t); align > 1 {
		if rem := offset % align; rem != 0 {
			offset += align - rem
		}
	}
	return offset
}

func sortFieldsByAlignment(fields []*ir.Field, alignOf func(*ir.Field) int) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && alignOf(fields[j]) < alignOf(fields[j-1]); j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}

func structAlignment(t *ir.Type) int {
	max := 1
	for _, f := range t.InstanceFields {
		if a := fieldAlignment(f.FieldTypeName); a > max {
			max = a
		}
	}
	return max
}

// fieldAlignment and scalarSize give a deterministic default for
// primitives and a conservative pointer-sized default for anything the
// builder can't otherwise size (reference types, not-yet-laid-out value
// types): both are resolved more precisely once the primitive/struct
// table is fully populated, but a stable fallback keeps pass 2
// idempotent regardless of processing order.
func fieldAlignment(typeName string) int {
	return scalarSize(typeName)
}

func scalarSize(typeName string) int {
	switch typeName {
	case "System.Boolean", "System.Byte", "System.SByte":
		return 1
	case "System.Char", "System.Int16", "System.UInt16":
		return 2
	case "System.Int32", "System.UInt32", "System.Single":
		return 4
	case "System.Int64", "System.UInt64", "System.Double", "System.IntPtr", "System.UIntPtr":
		return 8
	default:
		return 8 // reference/pointer-sized default
	}
}

func toIRAttributes(in []AttributeDesc) []ir.Attribute {
	if in == nil {
		return nil
	}
	out := make([]ir.Attribute, len(in))
	for i, a := range in {
		out[i] = ir.Attribute{ConstructorTypeFullName: a.ConstructorTypeFullName, FixedArgs: a.FixedArgs}
	}
	return out
}
