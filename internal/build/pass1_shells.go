package build

import "github.com/axiomates/cil2cpp/internal/ir"

// knownBCLInterfaces lists BCL interfaces that get a synthesized proxy
// Type when a reachable user type implements them but the interface
// itself was not independently reached (the reachability analyzer only
// follows a type's own Interfaces edges, which does cover this case in
// practice, but a proxy is synthesized defensively since pass 5/6 both
// need a Type record to attach v-table/interface-impl data to).
var knownBCLInterfaces = map[string]bool{
	"System.IDisposable":                        true,
	"System.Collections.IEnumerable":            true,
	"System.Collections.Generic.IEnumerable`1":  true,
	"System.IComparable":                        true,
	"System.IComparable`1":                      true,
	"System.IEquatable`1":                       true,
	"System.ICloneable":                         true,
}

// pass1Shells creates a Type record for every reachable TypeDesc,
// populated with names, kind flags, namespace-derived full name, and a
// weak base-type reference by name only. No fields, methods, or
// v-tables are filled in here; later passes look types up by name, so
// every shell must exist before pass 2 runs.
func (b *Builder) pass1Shells(descs []TypeDesc) {
	for _, d := range descs {
		t := &ir.Type{
			FullName:               d.FullName,
			MangledName:            b.src.MangledTypeName(d.FullName),
			BaseTypeName:           d.BaseTypeName,
			Interfaces:             append([]string(nil), d.Interfaces...),
			IsValueType:            d.IsValueType,
			IsEnum:                 d.IsEnum,
			IsInterface:            d.IsInterface,
			IsAbstract:             d.IsAbstract,
			IsDelegate:             d.IsDelegate,
			IsRecord:               d.IsRecord,
			EnumUnderlyingTypeName: d.EnumUnderlyingTypeName,
		}
		switch {
		case d.IsRuntimeProvided:
			t.Source = ir.SourceRuntimeProvided
		case d.IsThirdParty:
			t.Source = ir.SourceThirdParty
		default:
			t.Source = ir.SourceUser
		}
		b.module.AddType(t)

		for _, iface := range d.Interfaces {
			if knownBCLInterfaces[iface] && b.module.FindType(iface) == nil {
				b.module.AddType(&ir.Type{
					FullName:          iface,
					MangledName:       b.src.MangledTypeName(iface),
					Source:            ir.SourceBclProxy,
					IsInterface:       true,
					IsRuntimeProvided: true,
				})
			}
		}
	}
}
