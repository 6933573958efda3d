package build

import (
	"strings"

	"github.com/axiomates/cil2cpp/internal/ir"
)

// instantiationKey canonicalizes a request so repeats collapse.
func instantiationKey(openName string, args []string) string {
	return openName + "<" + strings.Join(args, ",") + ">"
}

// mangledInstantiationName renders an open generic definition's closed
// name, e.g. "System.Collections.Generic.List`1<System.Int32>".
func mangledInstantiationName(openName string, args []string) string {
	return openName + "<" + strings.Join(args, ",") + ">"
}

// pass4Generics synthesizes a closed Type for every generic
// instantiation reachability seeded, substituting each field's and
// method's type names using the instantiation's argument tuple. Runs to
// a fixpoint: pass-4-synthesized methods may themselves reference
// further instantiations in their own parameter or return types (e.g.
// List<Widget>'s GetEnumerator returns IEnumerator<Widget>), so newly discovered
// requests are queued and processed until none remain.
func (b *Builder) pass4Generics() {
	b.instantiationQueue = append(b.instantiationQueue, b.src.InitialInstantiations()...)

	for len(b.instantiationQueue) > 0 {
		req := b.instantiationQueue[0]
		b.instantiationQueue = b.instantiationQueue[1:]

		key := instantiationKey(req.OpenDefinitionName, req.TypeArgNames)
		if b.instantiated[key] {
			continue
		}
		b.instantiated[key] = true

		open, ok := b.src.OpenGenericDefinition(req.OpenDefinitionName)
		if !ok {
			b.invariantFault(req.OpenDefinitionName, "generic instantiation requested for unknown open definition")
			continue
		}

		closedName := mangledInstantiationName(req.OpenDefinitionName, req.TypeArgNames)
		if b.module.FindType(closedName) != nil {
			continue
		}

		subst := make(map[string]string, len(open.GenericParamNames))
		for i, p := range open.GenericParamNames {
			if i < len(req.TypeArgNames) {
				subst[p] = req.TypeArgNames[i]
			}
		}

		t := &ir.Type{
			FullName:              closedName,
			MangledName:           b.src.MangledTypeName(closedName),
			Source:                ir.SourceUser,
			IsValueType:           open.IsValueType,
			IsInterface:           open.IsInterface,
			IsAbstract:            open.IsAbstract,
			IsDelegate:            open.IsDelegate,
			IsRecord:              open.IsRecord,
			IsGenericInstance:     true,
			GenericDefinitionName: req.OpenDefinitionName,
			GenericArguments:      append([]string(nil), req.TypeArgNames...),
			GenericVariance:       make([]ir.Variance, len(req.TypeArgNames)),
			BaseTypeName:          substituteTypeName(open.BaseTypeName, subst),
		}
		for _, iface := range open.Interfaces {
			t.Interfaces = append(t.Interfaces, substituteTypeName(iface, subst))
		}
		b.module.AddType(t)

		for _, fd := range open.Fields {
			f := &ir.Field{
				OwningTypeFullName: closedName,
				CILName:            fd.Name,
				MangledName:        fd.Name,
				FieldTypeName:      substituteTypeName(fd.FieldTypeName, subst),
				IsStatic:           fd.IsStatic,
				Flags:              fd.Flags,
			}
			if fd.IsStatic {
				t.StaticFields = append(t.StaticFields, f)
			} else {
				t.InstanceFields = append(t.InstanceFields, f)
			}
		}
		t.InstanceSize = b.layoutInstanceFields(t)

		for _, md := range open.Methods {
			params := make([]ir.Parameter, len(md.Parameters))
			paramTypeNames := make([]string, len(md.Parameters))
			for i, p := range md.Parameters {
				subName := substituteTypeName(p.TypeName, subst)
				params[i] = ir.Parameter{Name: p.Name, TypeName: subName}
				paramTypeNames[i] = subName
				if subName != p.TypeName {
					b.queueIfInstantiation(subName)
				}
			}
			retName := substituteTypeName(md.ReturnTypeName, subst)
			if retName != md.ReturnTypeName {
				b.queueIfInstantiation(retName)
			}

			m := &ir.Method{
				OwningTypeFullName: closedName,
				CILName:            md.Name,
				MangledName:        b.src.MangledMethodName(closedName, md.Name, paramTypeNames),
				IsStatic:           md.IsStatic,
				IsConstructor:      md.IsConstructor,
				IsVirtual:          md.IsVirtual,
				IsAbstract:         md.IsAbstract,
				IsNewSlot:          md.IsNewSlot,
				VTableSlot:         -1,
				Parameters:         params,
				ReturnTypeName:     retName,
				IsGenericInstance:  true,
				GenericArguments:   append([]string(nil), req.TypeArgNames...),
			}
			t.Methods = append(t.Methods, m)
		}
	}
}

// queueIfInstantiation enqueues name for pass-4 processing if it is
// itself a closed generic instantiation name (contains "<") and hasn't
// been queued or built yet.
func (b *Builder) queueIfInstantiation(name string) {
	open, args, ok := parseInstantiationName(name)
	if !ok {
		return
	}
	key := instantiationKey(open, args)
	if b.instantiated[key] {
		return
	}
	b.instantiationQueue = append(b.instantiationQueue, GenericInstantiationRequest{OpenDefinitionName: open, TypeArgNames: args})
}

func parseInstantiationName(name string) (open string, args []string, ok bool) {
	i := strings.Index(name, "<")
	if i < 0 || !strings.HasSuffix(name, ">") {
		return "", nil, false
	}
	open = name[:i]
	inner := name[i+1 : len(name)-1]
	if inner == "" {
		return open, nil, true
	}
	return open, strings.Split(inner, ","), true
}

// substituteTypeName replaces any generic-parameter occurrence of
// typeName with its bound argument from subst; non-parameter names pass
// through unchanged.
func substituteTypeName(typeName string, subst map[string]string) string {
	if bound, ok := subst[typeName]; ok {
		return bound
	}
	return typeName
}
