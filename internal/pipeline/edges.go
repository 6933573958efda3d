package pipeline

import (
	"strings"

	"github.com/axiomates/cil2cpp/internal/diag"
	"github.com/axiomates/cil2cpp/internal/metadata"
	"github.com/axiomates/cil2cpp/internal/reach"
)

// callMnemonics are the opcodes whose resolved token names a call
// target or constructor target.
var callMnemonics = map[string]bool{
	"call": true, "callvirt": true, "newobj": true,
	"ldftn": true, "ldvirtftn": true,
}

// typeTokenMnemonics are the opcodes whose resolved token names a bare
// type reference (cast, box, array element, token-of, field-owner type
// already covered separately).
var typeTokenMnemonics = map[string]bool{
	"castclass": true, "isinst": true, "box": true, "unbox": true,
	"unbox.any": true, "newarr": true, "initobj": true, "sizeof": true,
	"ldtoken": true, "constrained.": true, "mkrefany": true, "refanyval": true,
	"cpobj": true, "ldobj": true, "stobj": true, "ldelem": true, "stelem": true,
	"ldelema": true,
}

// MethodEdges decodes methodName's body and reports every call target,
// constructed type, referenced field's declaring type, operand type
// token, and catch-clause exception type it names.
func (b *Bridge) MethodEdges(methodName string) (methods []string, types []string) {
	typeFullName, name, arity, ok := parseMethodNode(methodName)
	if !ok {
		return nil, nil
	}
	md, asm, ok := b.findMethod(typeFullName, name, arity)
	if !ok || md.Body == nil {
		return nil, nil
	}
	body := b.decodeBody(asm.Reader, md)
	if body == nil {
		return nil, nil
	}

	seenM := map[string]bool{}
	seenT := map[string]bool{}
	addM := func(n string) {
		if n != "" && !seenM[n] {
			seenM[n] = true
			methods = append(methods, n)
		}
	}
	addT := func(n string) {
		if n != "" && !seenT[n] {
			seenT[n] = true
			types = append(types, n)
		}
	}

	for _, instr := range body.Instructions {
		switch {
		case callMnemonics[instr.Info.Mnemonic] && instr.StrOp != "":
			addM(methodNodeName(instr.StrOp2, instr.StrOp, int(instr.IntOp)))
			addT(instr.StrOp2)
		case instr.Info.Mnemonic == "ldfld" || instr.Info.Mnemonic == "ldflda" ||
			instr.Info.Mnemonic == "stfld" || instr.Info.Mnemonic == "ldsfld" ||
			instr.Info.Mnemonic == "ldsflda" || instr.Info.Mnemonic == "stsfld":
			addT(instr.StrOp2)
			addT(baseGenericName(instr.StrOp3))
		case typeTokenMnemonics[instr.Info.Mnemonic]:
			addT(baseGenericName(instr.StrOp))
		}
	}
	for _, locals := range body.LocalTypeNames {
		addT(baseGenericName(locals))
	}
	for _, region := range body.Regions {
		addT(region.CatchTypeName)
	}
	return methods, types
}

// TypeEdges reports typeName's field-declaring types (the field's own
// type, not its owner), base type, and implemented interfaces.
func (b *Bridge) TypeEdges(typeName string) (fieldDeclaringTypes []string, baseType string, interfaces []string) {
	e, ok := b.byFullName[typeName]
	if !ok {
		return nil, "", nil
	}
	if e.td.Row.Extends != 0 {
		if name, ok := e.asm.Reader.ResolveTypeDefOrRef(e.td.Row.Extends); ok {
			baseType = name
		}
	}
	interfaces = e.asm.Reader.Interfaces(e.td)

	fields, err := e.asm.Reader.Fields(e.td)
	if err != nil {
		b.faults.RecordFatal(diag.Wrap(diag.KindMetadataFormatError, "reading fields of "+typeName, err))
		return nil, baseType, interfaces
	}
	seen := map[string]bool{}
	for _, fd := range fields {
		ft := metadata.DecodeFieldSignature(fd.Signature, e.asm.Reader.ResolveTypeDefOrRef)
		ft = baseGenericName(ft)
		if ft != "" && !seen[ft] {
			seen[ft] = true
			fieldDeclaringTypes = append(fieldDeclaringTypes, ft)
		}
	}
	return fieldDeclaringTypes, baseType, interfaces
}

// VirtualOverrides returns every reachable type's method named slotName
// that descends from declaringType — a conservative scan of every
// indexed type's base-type chain, rather than a precomputed derived-type
// index (the reader exposes no reverse base-type lookup).
func (b *Bridge) VirtualOverrides(declaringType, slotName string) []string {
	var out []string
	for _, fullName := range b.order {
		if fullName == declaringType {
			continue
		}
		if !b.isDescendantOf(fullName, declaringType) {
			continue
		}
		e := b.byFullName[fullName]
		methods, err := e.asm.Reader.Methods(e.td)
		if err != nil {
			continue
		}
		for _, md := range methods {
			if md.Name == slotName {
				out = append(out, methodNodeName(fullName, md.Name, paramCountOf(e.asm.Reader, md)))
			}
		}
	}
	return out
}

func (b *Bridge) isDescendantOf(typeName, ancestor string) bool {
	seen := map[string]bool{}
	for typeName != "" && !seen[typeName] {
		seen[typeName] = true
		e, ok := b.byFullName[typeName]
		if !ok {
			return false
		}
		if e.td.Row.Extends == 0 {
			return false
		}
		base, ok := e.asm.Reader.ResolveTypeDefOrRef(e.td.Row.Extends)
		if !ok {
			return false
		}
		if base == ancestor {
			return true
		}
		typeName = base
	}
	return false
}

// GenericSeeds scans methodName's decoded operand and local-variable
// type names for a closed generic-instantiation string (the
// "Open`N<Arg1, Arg2>" form decodeOneType produces) and reports each
// distinct one found.
func (b *Bridge) GenericSeeds(methodName string) []reach.GenericInstantiation {
	typeFullName, name, arity, ok := parseMethodNode(methodName)
	if !ok {
		return nil
	}
	md, asm, ok := b.findMethod(typeFullName, name, arity)
	if !ok || md.Body == nil {
		return nil
	}
	body := b.decodeBody(asm.Reader, md)
	if body == nil {
		return nil
	}

	var out []reach.GenericInstantiation
	seen := map[string]bool{}
	add := func(name string) {
		if inst, ok := parseGenericInstanceName(name); ok {
			key := inst.OpenDefinitionName + "|" + strings.Join(inst.TypeArgNames, ",")
			if !seen[key] {
				seen[key] = true
				out = append(out, inst)
			}
		}
	}
	for _, instr := range body.Instructions {
		add(instr.StrOp)
		add(instr.StrOp2)
		add(instr.StrOp3)
	}
	for _, l := range body.LocalTypeNames {
		add(l)
	}
	return out
}
