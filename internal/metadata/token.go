package metadata

// TokenKind classifies which table a resolved metadata token names a
// row in, per ECMA-335 II.22.2's token tag byte (the table ID packed
// into the token's top byte).
type TokenKind int

const (
	TokenTypeDef TokenKind = iota
	TokenTypeRef
	TokenTypeSpec
	TokenField
	TokenMethodDef
	TokenMemberRefMethod
	TokenMemberRefField
	TokenMethodSpec
	TokenUserString
)

// ResolvedToken is everything the disassembler needs from a call,
// field-access, or type-reference operand token without re-deriving
// table layout at the lowering layer.
type ResolvedToken struct {
	Kind          TokenKind
	TypeFullName  string
	MemberName    string
	ParamCount    int
	ReturnsVoid   bool
	UserString    string
	FieldTypeName string // only set for TokenField/TokenMemberRefField
}

// ResolveToken decodes a metadata token (table tag in the top byte, a
// 1-based row index in the low 3 bytes) to the type/member it names.
// TypeSpec operands (a generic instantiation or array/pointer type used
// directly as a call-site or cast target) resolve the Kind but not a
// TypeFullName: the caller's lowering falls back to its own default for
// an unresolved reference, matching ResolveTypeDefOrRef's TypeSpec scope
// limit.
func (r *Reader) ResolveToken(token uint32) (ResolvedToken, bool) {
	table := TableID(token >> 24)
	rid := token & 0x00FFFFFF
	switch table {
	case TableTypeDef:
		name, ok := r.typeDefFullNameByRowIndex(rid)
		return ResolvedToken{Kind: TokenTypeDef, TypeFullName: name}, ok
	case TableTypeRef:
		name, ok := r.typeRefFullName(rid)
		return ResolvedToken{Kind: TokenTypeRef, TypeFullName: name}, ok
	case TableTypeSpec:
		return ResolvedToken{Kind: TokenTypeSpec}, true
	case TableField:
		return r.resolveFieldToken(rid)
	case TableMethodDef:
		return r.resolveMethodDefToken(rid)
	case TableMemberRef:
		return r.resolveMemberRefToken(rid)
	case TableMethodSpec:
		return r.resolveMethodSpecToken(rid)
	case 0x70: // US heap "token": the top byte ECMA-335 reserves for ldstr operands
		s, err := r.heaps.UserString(rid)
		if err != nil {
			return ResolvedToken{}, false
		}
		return ResolvedToken{Kind: TokenUserString, UserString: s}, true
	default:
		return ResolvedToken{}, false
	}
}

// fieldOwner finds the TypeDef owning the Field-table row rid, by
// walking the same adjacent-row FieldList ranges Fields() computes per
// type, scanning for the range containing rid.
func (r *Reader) fieldOwner(rid uint32) (TypeDef, bool) {
	base := r.tableOffsets[TableTypeDef]
	rowSize := r.rowSize(TableTypeDef)
	str := r.indexSizes.stringHeap
	tdor := r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)
	fieldListOff := func(row uint32) uint32 { return base + row*rowSize + 4 + str*2 + tdor }
	simpleFieldIdx := func(off uint32) uint32 {
		if r.tableRowCounts[TableField] > 0xFFFF {
			return r.readU32(off)
		}
		return uint32(r.readU16(off))
	}
	count := r.tableRowCounts[TableTypeDef]
	for _, td := range r.typeDefs {
		start := simpleFieldIdx(fieldListOff(td.RowIndex))
		var end uint32
		if td.RowIndex+1 < count {
			end = simpleFieldIdx(fieldListOff(td.RowIndex + 1))
		} else {
			end = r.tableRowCounts[TableField] + 1
		}
		if rid >= start && rid < end {
			return td, true
		}
	}
	return TypeDef{}, false
}

func (r *Reader) resolveFieldToken(rid uint32) (ResolvedToken, bool) {
	count := r.tableRowCounts[TableField]
	if rid == 0 || rid > count {
		return ResolvedToken{}, false
	}
	owner, ok := r.fieldOwner(rid)
	if !ok {
		return ResolvedToken{}, false
	}
	base := r.tableOffsets[TableField]
	rowSize := r.rowSize(TableField)
	str := r.indexSizes.stringHeap
	blob := r.indexSizes.blobHeap
	off := base + (rid-1)*rowSize
	nameOff := r.readHeapIndex(off+2, str)
	sigOff := r.readHeapIndex(off+2+str, blob)
	name, err := r.heaps.String(nameOff)
	if err != nil {
		return ResolvedToken{}, false
	}
	fieldType := ""
	if sigBytes, err := r.heaps.Blob(sigOff); err == nil {
		fieldType = DecodeFieldSignature(sigBytes, r.ResolveTypeDefOrRef)
	}
	return ResolvedToken{Kind: TokenField, TypeFullName: owner.FullName, MemberName: name, FieldTypeName: fieldType}, true
}

// methodOwner mirrors fieldOwner for the MethodDef table's adjacent-row
// MethodList ranges.
func (r *Reader) methodOwner(rid uint32) (TypeDef, bool) {
	base := r.tableOffsets[TableTypeDef]
	rowSize := r.rowSize(TableTypeDef)
	str := r.indexSizes.stringHeap
	tdor := r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)
	fieldIdxSize := simpleIdxSize(r.tableRowCounts[TableField])
	methodListOff := func(row uint32) uint32 { return base + row*rowSize + 4 + str*2 + tdor + fieldIdxSize }
	simpleMethodIdx := func(off uint32) uint32 {
		if r.tableRowCounts[TableMethodDef] > 0xFFFF {
			return r.readU32(off)
		}
		return uint32(r.readU16(off))
	}
	count := r.tableRowCounts[TableTypeDef]
	for _, td := range r.typeDefs {
		start := simpleMethodIdx(methodListOff(td.RowIndex))
		var end uint32
		if td.RowIndex+1 < count {
			end = simpleMethodIdx(methodListOff(td.RowIndex + 1))
		} else {
			end = r.tableRowCounts[TableMethodDef] + 1
		}
		if rid >= start && rid < end {
			return td, true
		}
	}
	return TypeDef{}, false
}

func (r *Reader) resolveMethodDefToken(rid uint32) (ResolvedToken, bool) {
	count := r.tableRowCounts[TableMethodDef]
	if rid == 0 || rid > count {
		return ResolvedToken{}, false
	}
	owner, ok := r.methodOwner(rid)
	if !ok {
		return ResolvedToken{}, false
	}
	base := r.tableOffsets[TableMethodDef]
	rowSize := r.rowSize(TableMethodDef)
	str := r.indexSizes.stringHeap
	blob := r.indexSizes.blobHeap
	off := base + (rid-1)*rowSize
	nameOff := r.readHeapIndex(off+8, str)
	sigOff := r.readHeapIndex(off+8+str, blob)
	name, err := r.heaps.String(nameOff)
	if err != nil {
		return ResolvedToken{}, false
	}
	sigBytes, err := r.heaps.Blob(sigOff)
	if err != nil {
		return ResolvedToken{}, false
	}
	sig := DecodeMethodSignature(sigBytes, r.ResolveTypeDefOrRef)
	return ResolvedToken{
		Kind:         TokenMethodDef,
		TypeFullName: owner.FullName,
		MemberName:   name,
		ParamCount:   len(sig.ParamTypeNames),
		ReturnsVoid:  sig.ReturnTypeName == "",
	}, true
}

// resolveMemberRefToken reads a MemberRef row's Class (a
// MemberRefParent coded index: 0=TypeDef, 1=TypeRef, 2=ModuleRef,
// 3=MethodDef, 4=TypeSpec), Name, and Signature, classifying the
// signature's leading calling-convention byte to tell a field
// reference from a method reference. ModuleRef/TypeSpec/MethodDef
// parents (a vararg global function or a member of a generic
// instantiation) resolve without a TypeFullName; the disassembler's
// fallback behaves the same as any other unresolved reference.
func (r *Reader) resolveMemberRefToken(rid uint32) (ResolvedToken, bool) {
	count := r.tableRowCounts[TableMemberRef]
	if rid == 0 || rid > count {
		return ResolvedToken{}, false
	}
	base := r.tableOffsets[TableMemberRef]
	rowSize := r.rowSize(TableMemberRef)
	str := r.indexSizes.stringHeap
	blob := r.indexSizes.blobHeap
	parentSize := r.codedIndexSize(3, TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec)

	off := base + (rid-1)*rowSize
	parentCoded := r.readHeapIndex(off, parentSize)
	nameOff := r.readHeapIndex(off+parentSize, str)
	sigOff := r.readHeapIndex(off+parentSize+str, blob)

	name, err := r.heaps.String(nameOff)
	if err != nil {
		return ResolvedToken{}, false
	}
	sigBytes, err := r.heaps.Blob(sigOff)
	if err != nil {
		return ResolvedToken{}, false
	}

	var typeName string
	tag := parentCoded & 0x7
	rowIdx := parentCoded >> 3
	switch tag {
	case 0:
		typeName, _ = r.typeDefFullNameByRowIndex(rowIdx)
	case 1:
		typeName, _ = r.typeRefFullName(rowIdx)
	}

	if len(sigBytes) > 0 && sigBytes[0]&0x06 == 0x06 {
		fieldType := DecodeFieldSignature(sigBytes, r.ResolveTypeDefOrRef)
		return ResolvedToken{Kind: TokenMemberRefField, TypeFullName: typeName, MemberName: name, FieldTypeName: fieldType}, true
	}
	sig := DecodeMethodSignature(sigBytes, r.ResolveTypeDefOrRef)
	return ResolvedToken{
		Kind:         TokenMemberRefMethod,
		TypeFullName: typeName,
		MemberName:   name,
		ParamCount:   len(sig.ParamTypeNames),
		ReturnsVoid:  sig.ReturnTypeName == "",
	}, true
}

// resolveMethodSpecToken follows a MethodSpec (a generic method
// instantiation) to the underlying MethodDef/MemberRef it wraps,
// discarding the instantiation's own type-argument list: the builder
// has no first-class generic-method call site distinct from its
// declaring method's name, only generic type instantiation (pass 4).
func (r *Reader) resolveMethodSpecToken(rid uint32) (ResolvedToken, bool) {
	count := r.tableRowCounts[TableMethodSpec]
	if rid == 0 || rid > count {
		return ResolvedToken{}, false
	}
	base := r.tableOffsets[TableMethodSpec]
	rowSize := r.rowSize(TableMethodSpec)
	methodSize := r.codedIndexSize(1, TableMethodDef, TableMemberRef)

	off := base + (rid-1)*rowSize
	coded := r.readHeapIndex(off, methodSize)
	tag := coded & 0x1
	rowIdx := coded >> 1
	if tag == 0 {
		tok, ok := r.resolveMethodDefToken(rowIdx)
		tok.Kind = TokenMethodSpec
		return tok, ok
	}
	tok, ok := r.resolveMemberRefToken(rowIdx)
	tok.Kind = TokenMethodSpec
	return tok, ok
}
