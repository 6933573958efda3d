package build

import "github.com/axiomates/cil2cpp/internal/ir"

// pass6InterfaceImpls produces an InterfaceImpl per implemented
// interface for every class, filling each method slot by priority:
// explicit interface override, name+signature match on a C-owned
// method, inheritance from a base class's InterfaceImpl for the same
// interface, or the interface's own default-method body. Unfilled slots
// stay nil and are left for the gate to flag.
func (b *Builder) pass6InterfaceImpls() {
	for _, t := range b.module.Types {
		if t.IsInterface || len(t.Interfaces) == 0 {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			iface := b.module.FindType(ifaceName)
			if iface == nil {
				continue
			}
			t.InterfaceImpls = append(t.InterfaceImpls, b.resolveInterfaceImpl(t, iface))
		}
	}
}

func (b *Builder) resolveInterfaceImpl(t, iface *ir.Type) *ir.InterfaceImpl {
	impl := &ir.InterfaceImpl{InterfaceFullName: iface.FullName}
	ifaceMethods := nonCtorMethods(iface)
	impl.MethodImpls = make([]*ir.InterfaceMethodImpl, len(ifaceMethods))

	base := b.module.FindType(t.BaseTypeName)
	var baseImpl *ir.InterfaceImpl
	if base != nil {
		for _, bi := range base.InterfaceImpls {
			if bi.InterfaceFullName == iface.FullName {
				baseImpl = bi
				break
			}
		}
	}

	for i, slotMethod := range ifaceMethods {
		if resolved := findExplicitOverride(t, iface.FullName, slotMethod.CILName); resolved != nil {
			impl.MethodImpls[i] = &ir.InterfaceMethodImpl{TypeFullName: t.FullName, MethodName: resolved.CILName, Kind: ir.ImplExplicitOverride}
			continue
		}
		if resolved := findMethodByName(t, slotMethod.CILName, vtableSignature(slotMethod)); resolved != nil {
			impl.MethodImpls[i] = &ir.InterfaceMethodImpl{TypeFullName: t.FullName, MethodName: resolved.CILName, Kind: ir.ImplNameMatch}
			continue
		}
		if baseImpl != nil && i < len(baseImpl.MethodImpls) && baseImpl.MethodImpls[i] != nil {
			inherited := baseImpl.MethodImpls[i]
			impl.MethodImpls[i] = &ir.InterfaceMethodImpl{TypeFullName: inherited.TypeFullName, MethodName: inherited.MethodName, Kind: ir.ImplInherited}
			continue
		}
		if !slotMethod.IsAbstract {
			impl.MethodImpls[i] = &ir.InterfaceMethodImpl{TypeFullName: iface.FullName, MethodName: slotMethod.CILName, Kind: ir.ImplDefaultInterfaceMethod}
			continue
		}
		impl.MethodImpls[i] = nil
	}
	return impl
}

func nonCtorMethods(t *ir.Type) []*ir.Method {
	var out []*ir.Method
	for _, m := range t.Methods {
		if m.IsConstructor || m.IsStaticCtor {
			continue
		}
		out = append(out, m)
	}
	return out
}

func findExplicitOverride(t *ir.Type, ifaceName, methodName string) *ir.Method {
	for _, m := range t.Methods {
		for _, eo := range m.ExplicitOverrides {
			if eo.InterfaceFullName == ifaceName && eo.MethodName == methodName {
				return m
			}
		}
	}
	return nil
}

func findMethodByName(t *ir.Type, name, signature string) *ir.Method {
	for _, m := range t.Methods {
		if m.CILName == name && vtableSignature(m) == signature && !m.IsConstructor && !m.IsStaticCtor {
			return m
		}
	}
	return nil
}
