package build

import (
	"strconv"

	"github.com/axiomates/cil2cpp/internal/ir"
)

// pass8Synthesis replaces the compiler-generated equality/hashing/print
// bodies of record types with deterministic emitted bodies, since the
// originals reference host-specific EqualityComparer machinery that
// cannot be lowered.
func (b *Builder) pass8Synthesis() {
	for _, t := range b.module.Types {
		if !t.IsRecord {
			continue
		}
		if t.IsValueType {
			b.synthesizeRecordStructEquality(t)
			continue
		}
		b.synthesizeToString(t)
		b.synthesizeEquals(t)
		b.synthesizeGetHashCode(t)
		b.synthesizeClone(t)
	}
}

func recordMethod(t *ir.Type, name string) *ir.Method {
	for _, m := range t.Methods {
		if m.CILName == name {
			return m
		}
	}
	return nil
}

// synthesizeToString replaces ToString with a body that concatenates
// "{TypeName} { F1 = v1, F2 = v2, … }" using string-concat ICalls.
func (b *Builder) synthesizeToString(t *ir.Type) {
	m := recordMethod(t, "ToString")
	if m == nil {
		m = &ir.Method{OwningTypeFullName: t.FullName, CILName: "ToString", MangledName: "ToString", IsVirtual: true, ReturnTypeName: "System.String"}
		t.Methods = append(t.Methods, m)
	}

	acc := b.module.RegisterStringLiteral(recordTypeDisplayName(t) + " { ")
	block := &ir.BasicBlock{ID: 0}
	resultTemp := "__t0"
	block.Instructions = append(block.Instructions, &ir.Load{Kind: ir.LoadConstString, Result: resultTemp, Name: ir.StringLiteralID(acc)})

	tempN := 1
	for i, f := range t.InstanceFields {
		sep := ", "
		if i == 0 {
			sep = ""
		}
		label := b.module.RegisterStringLiteral(sep + f.CILName + " = ")
		labelTemp := tempID(tempN)
		tempN++
		fieldTemp := tempID(tempN)
		tempN++
		concatTemp := tempID(tempN)
		tempN++
		block.Instructions = append(block.Instructions,
			&ir.Load{Kind: ir.LoadConstString, Result: labelTemp, Name: ir.StringLiteralID(label)},
			&ir.Call{CalleeName: "cil2cpp::icall::String_Concat2", Arguments: []string{resultTemp, labelTemp}, Result: concatTemp},
			&ir.Load{Kind: ir.LoadField, Result: fieldTemp, BaseTemp: "this", Name: f.CILName, TypeName: f.FieldTypeName},
			&ir.Call{CalleeName: "cil2cpp::icall::String_Concat2", Arguments: []string{concatTemp, fieldTemp}, Result: concatTemp},
		)
		resultTemp = concatTemp
	}
	closing := b.module.RegisterStringLiteral(" }")
	closingTemp := tempID(tempN)
	tempN++
	final := tempID(tempN)
	block.Instructions = append(block.Instructions,
		&ir.Load{Kind: ir.LoadConstString, Result: closingTemp, Name: ir.StringLiteralID(closing)},
		&ir.Call{CalleeName: "cil2cpp::icall::String_Concat2", Arguments: []string{resultTemp, closingTemp}, Result: final},
		&ir.Return{Value: final},
	)
	m.BasicBlocks = []*ir.BasicBlock{block}
}

// synthesizeEquals replaces Equals(RecordType) with a null-check
// (reference records only) followed by pairwise field comparison.
func (b *Builder) synthesizeEquals(t *ir.Type) {
	m := recordMethod(t, "Equals")
	if m == nil {
		m = &ir.Method{OwningTypeFullName: t.FullName, CILName: "Equals", ReturnTypeName: "System.Boolean",
			Parameters: []ir.Parameter{{Name: "other", TypeName: t.FullName}}}
		t.Methods = append(t.Methods, m)
	}

	block := &ir.BasicBlock{ID: 0}
	if !t.IsValueType {
		block.Instructions = append(block.Instructions, &ir.RawTargetCode{Text: "if (other == nullptr) return false;"})
	}
	resultTemp := "__t0"
	if len(t.InstanceFields) == 0 {
		block.Instructions = append(block.Instructions, &ir.Load{Kind: ir.LoadConstInt, Result: resultTemp, Name: "1", TypeName: "System.Boolean"})
	} else {
		tempN := 0
		for i, f := range t.InstanceFields {
			left := tempID(tempN)
			tempN++
			right := tempID(tempN)
			tempN++
			cmp := tempID(tempN)
			tempN++
			block.Instructions = append(block.Instructions,
				&ir.Load{Kind: ir.LoadField, Result: left, BaseTemp: "this", Name: f.CILName, TypeName: f.FieldTypeName},
				&ir.Load{Kind: ir.LoadField, Result: right, BaseTemp: "other", Name: f.CILName, TypeName: f.FieldTypeName},
				&ir.BinaryOp{Op: "==", Left: left, Right: right, Result: cmp, TypeName: "System.Boolean"},
			)
			if i == 0 {
				resultTemp = cmp
			} else {
				combined := tempID(tempN)
				tempN++
				block.Instructions = append(block.Instructions, &ir.BinaryOp{Op: "&&", Left: resultTemp, Right: cmp, Result: combined})
				resultTemp = combined
			}
		}
	}
	block.Instructions = append(block.Instructions, &ir.Return{Value: resultTemp})
	m.BasicBlocks = []*ir.BasicBlock{block}
}

// synthesizeGetHashCode hash-combines every field, seeded by the
// type-id hash, using the same mixing primitive across all synthesized
// hashes.
func (b *Builder) synthesizeGetHashCode(t *ir.Type) {
	m := recordMethod(t, "GetHashCode")
	if m == nil {
		m = &ir.Method{OwningTypeFullName: t.FullName, CILName: "GetHashCode", IsVirtual: true, ReturnTypeName: "System.Int32"}
		t.Methods = append(t.Methods, m)
	}

	block := &ir.BasicBlock{ID: 0}
	seed := "__t0"
	block.Instructions = append(block.Instructions, &ir.Call{CalleeName: "cil2cpp::icall::type_id_hash", Arguments: []string{"\"" + t.FullName + "\""}, Result: seed})

	tempN := 1
	acc := seed
	for _, f := range t.InstanceFields {
		fieldTemp := tempID(tempN)
		tempN++
		hashTemp := tempID(tempN)
		tempN++
		block.Instructions = append(block.Instructions,
			&ir.Load{Kind: ir.LoadField, Result: fieldTemp, BaseTemp: "this", Name: f.CILName, TypeName: f.FieldTypeName},
			&ir.Call{CalleeName: "cil2cpp::icall::hash_combine", Arguments: []string{acc, fieldTemp}, Result: hashTemp},
		)
		acc = hashTemp
	}
	block.Instructions = append(block.Instructions, &ir.Return{Value: acc})
	m.BasicBlocks = []*ir.BasicBlock{block}
}

// synthesizeClone emits a field-wise copy via the runtime's
// object_memberwise_clone for the compiler-generated <Clone>$ method.
func (b *Builder) synthesizeClone(t *ir.Type) {
	m := recordMethod(t, "<Clone>$")
	if m == nil {
		m = &ir.Method{OwningTypeFullName: t.FullName, CILName: "<Clone>$", ReturnTypeName: t.FullName}
		t.Methods = append(t.Methods, m)
	}
	block := &ir.BasicBlock{ID: 0}
	result := "__t0"
	block.Instructions = append(block.Instructions,
		&ir.Call{CalleeName: "cil2cpp::icall::object_memberwise_clone", Arguments: []string{"this"}, Result: result},
		&ir.Return{Value: result},
	)
	m.BasicBlocks = []*ir.BasicBlock{block}
}

// synthesizeRecordStructEquality synthesizes op_Equality and a
// value-taking Equals(RecordType) for a record struct, with no
// null-check since value types can't be null.
func (b *Builder) synthesizeRecordStructEquality(t *ir.Type) {
	b.synthesizeEquals(t)

	op := recordMethod(t, "op_Equality")
	if op == nil {
		op = &ir.Method{OwningTypeFullName: t.FullName, CILName: "op_Equality", IsStatic: true, IsOperator: true, OperatorName: "op_Equality", ReturnTypeName: "System.Boolean",
			Parameters: []ir.Parameter{{Name: "left", TypeName: t.FullName}, {Name: "right", TypeName: t.FullName}}}
		t.Methods = append(t.Methods, op)
	}
	block := &ir.BasicBlock{ID: 0}
	result := "__t0"
	block.Instructions = append(block.Instructions,
		&ir.Call{CalleeName: t.FullName + ".Equals", Arguments: []string{"left", "right"}, Result: result},
		&ir.Return{Value: result},
	)
	op.BasicBlocks = []*ir.BasicBlock{block}
}

func recordTypeDisplayName(t *ir.Type) string {
	if i := lastDot(t.FullName); i >= 0 {
		return t.FullName[i+1:]
	}
	return t.FullName
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func tempID(n int) string {
	return "__t" + strconv.Itoa(n)
}
