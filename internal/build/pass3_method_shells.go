package build

import "github.com/axiomates/cil2cpp/internal/ir"

// pass3MethodShells creates a Method record for every reachable method
// of every Type, filled with name, mangled name, role flags,
// virtual/abstract/newslot flags, parameters, and return type. No
// instruction bodies are attached yet — call-sites in other method
// bodies reference these shells by name, so every shell must exist
// before pass 7 lowers anything.
func (b *Builder) pass3MethodShells(descs []TypeDesc) {
	for _, d := range descs {
		t := b.module.FindType(d.FullName)
		if t == nil {
			continue
		}
		for _, md := range d.Methods {
			paramTypeNames := make([]string, len(md.Parameters))
			for i, p := range md.Parameters {
				paramTypeNames[i] = p.TypeName
			}

			m := &ir.Method{
				OwningTypeFullName: d.FullName,
				CILName:            md.Name,
				MangledName:        b.src.MangledMethodName(d.FullName, md.Name, paramTypeNames),
				IsStatic:           md.IsStatic,
				IsConstructor:      md.IsConstructor,
				IsStaticCtor:       md.IsStaticCtor,
				IsFinalizer:        md.IsFinalizer,
				IsOperator:         md.OperatorName != "",
				OperatorName:       md.OperatorName,
				IsVirtual:          md.IsVirtual,
				IsAbstract:         md.IsAbstract,
				IsNewSlot:          md.IsNewSlot,
				VTableSlot:         -1,
				IsEntryPoint:       md.IsEntryPoint,
				Parameters:         append([]ir.Parameter(nil), md.Parameters...),
				ReturnTypeName:     md.ReturnTypeName,
				ExplicitOverrides:  append([]ir.ExplicitOverride(nil), md.ExplicitOverrides...),
				Flags:              md.Flags,
				Attributes:         toIRAttributes(md.Attributes),
				PInvoke:            md.PInvoke,
			}

			if md.IsFinalizer {
				t.Finalizer = m.CILName
			}

			firstParam := ""
			if len(paramTypeNames) > 0 {
				firstParam = paramTypeNames[0]
			}
			if sym, ok := b.src.ICallSymbol(d.FullName, md.Name, len(paramTypeNames), firstParam); ok {
				m.IsICall = true
				m.ICallRuntimeName = sym
			}

			t.Methods = append(t.Methods, m)

			if md.IsEntryPoint {
				b.module.EntryPoint = &ir.MethodRef{
					TypeFullName:   d.FullName,
					MethodName:     md.Name,
					ParamTypeNames: paramTypeNames,
				}
			}
		}
	}
}
