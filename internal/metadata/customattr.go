package metadata

// CustomAttributeRef is one CustomAttribute table row resolved just
// far enough for reachability/attribute-presence checks: the
// constructor's declaring type. Fixed/named argument values are not
// decoded (ECMA-335 §II.23.3's attribute blob needs the constructor's
// full parameter signature to parse positionally, and the builder only
// ever asks "is this attribute present", never for an argument value).
type CustomAttributeRef struct {
	ConstructorTypeFullName string
}

// CustomAttributesFor returns every CustomAttribute row attached to an
// owner, identified by its HasCustomAttribute tag (tablesForHasCustomAttribute
// index) and row index.
func (r *Reader) CustomAttributesFor(ownerTag uint32, ownerRowIndex uint32) []CustomAttributeRef {
	count := r.tableRowCounts[TableCustomAttribute]
	if count == 0 {
		return nil
	}
	base := r.tableOffsets[TableCustomAttribute]
	rowSize := r.rowSize(TableCustomAttribute)
	hasCustomAttrSize := r.codedIndexSize(5, tablesForHasCustomAttribute()...)
	typeSize := r.codedIndexSize(3, TableMethodDef, TableMemberRef)

	var out []CustomAttributeRef
	for i := uint32(1); i <= count; i++ {
		off := base + (i-1)*rowSize
		parent := r.readHeapIndex(off, hasCustomAttrSize)
		tag := parent & 0x1F
		rowIdx := parent >> 5
		if tag != ownerTag || rowIdx != ownerRowIndex {
			continue
		}
		typeCoded := r.readHeapIndex(off+hasCustomAttrSize, typeSize)
		typeTag := typeCoded & 0x7
		typeRow := typeCoded >> 3

		var typeName string
		switch typeTag {
		case 2: // MethodDef: the attribute type's .ctor method
			if owner, ok := r.methodOwner(typeRow); ok {
				typeName = owner.FullName
			}
		case 3: // MemberRef: the attribute type's .ctor, possibly from another assembly
			if tok, ok := r.resolveMemberRefToken(typeRow); ok {
				typeName = tok.TypeFullName
			}
		}
		if typeName != "" {
			out = append(out, CustomAttributeRef{ConstructorTypeFullName: typeName})
		}
	}
	return out
}

// hasCustomAttributeTag returns the tablesForHasCustomAttribute tag for
// t, or -1 if t never carries custom attributes in this reader's model.
func hasCustomAttributeTag(t TableID) int {
	for i, candidate := range tablesForHasCustomAttribute() {
		if candidate == t {
			return i
		}
	}
	return -1
}

// TypeAttributes returns the custom attributes applied directly to td.
func (r *Reader) TypeAttributes(td TypeDef) []CustomAttributeRef {
	return r.CustomAttributesFor(uint32(hasCustomAttributeTag(TableTypeDef)), td.RowIndex+1)
}

// FieldAttributes returns the custom attributes applied directly to fd.
func (r *Reader) FieldAttributes(fd FieldDef) []CustomAttributeRef {
	return r.CustomAttributesFor(uint32(hasCustomAttributeTag(TableField)), fd.RowIndex)
}

// MethodAttributes returns the custom attributes applied directly to md.
func (r *Reader) MethodAttributes(md MethodDef) []CustomAttributeRef {
	return r.CustomAttributesFor(uint32(hasCustomAttributeTag(TableMethodDef)), md.RowIndex)
}
