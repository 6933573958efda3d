package build

import "github.com/axiomates/cil2cpp/internal/ir"

// pass5VTables walks the inheritance chain from System.Object downward
// for every class, building each Type's dense v-table: new virtual
// methods append a slot; overrides replace the matching base slot's
// method reference while holding the slot index stable; methods flagged
// as overrides with no matching base slot are an invariant violation
// reported against that method alone.
func (b *Builder) pass5VTables() {
	memo := make(map[string][]ir.VTableEntry)
	var build func(t *ir.Type) []ir.VTableEntry
	build = func(t *ir.Type) []ir.VTableEntry {
		if t == nil {
			return nil
		}
		if v, ok := memo[t.FullName]; ok {
			return v
		}
		var base []ir.VTableEntry
		if t.BaseTypeName != "" {
			base = build(b.module.FindType(t.BaseTypeName))
		}
		// A type with no base (only ever true of System.Object itself,
		// among classes) has no inherited slots to match against: its own
		// virtual methods establish the canonical root slots directly,
		// same as if each were marked NewSlot.
		isRoot := t.BaseTypeName == ""

		vtable := append([]ir.VTableEntry(nil), base...)
		for _, m := range t.Methods {
			if !m.IsVirtual && !m.IsAbstract {
				continue
			}
			sig := vtableSignature(m)
			if m.IsNewSlot || isRoot {
				slot := len(vtable)
				vtable = append(vtable, ir.VTableEntry{Slot: slot, Name: m.CILName, Signature: sig, MethodTypeFullName: t.FullName, MethodName: m.CILName})
				m.VTableSlot = slot
				continue
			}

			idx := findSlotByName(vtable, m.CILName, sig)
			if idx == -1 {
				// Non-newslot virtual with no matching base slot: an
				// override that doesn't override anything.
				b.invariantFault(m.QualifiedName(), "virtual method is not NewSlot but no base v-table slot matches its name+signature")
				slot := len(vtable)
				vtable = append(vtable, ir.VTableEntry{Slot: slot, Name: m.CILName, Signature: sig, MethodTypeFullName: t.FullName, MethodName: m.CILName})
				m.VTableSlot = slot
				continue
			}
			vtable[idx].MethodTypeFullName = t.FullName
			vtable[idx].MethodName = m.CILName
			m.VTableSlot = vtable[idx].Slot
		}

		memo[t.FullName] = vtable
		t.VTable = vtable
		return vtable
	}

	for _, t := range b.module.Types {
		if t.IsInterface || t.IsValueType {
			continue
		}
		build(t)
	}
}

func findSlotByName(vtable []ir.VTableEntry, name, signature string) int {
	for i, e := range vtable {
		if e.Name == name && e.Signature == signature {
			return i
		}
	}
	return -1
}

// vtableSignature is a v-table slot's overload fingerprint: the
// parameter type names joined in declaration order. Return type plays
// no part, matching CLR override-matching rules (same name + same
// parameter signature).
func vtableSignature(m *ir.Method) string {
	var b []byte
	for i, p := range m.Parameters {
		if i > 0 {
			b = append(b, ';')
		}
		b = append(b, p.TypeName...)
	}
	return string(b)
}
