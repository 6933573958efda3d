package metadata

// ResolveTypeDefOrRef resolves a coded TypeDefOrRef index (ECMA-335
// II.24.2.6, tag bits 2: 0=TypeDef, 1=TypeRef, 2=TypeSpec) to a CIL full
// name. TypeSpec targets (a generic instantiation or array used directly
// as a base/extends reference) are not resolved here; callers fall back
// to whatever default they use for an unresolved reference.
func (r *Reader) ResolveTypeDefOrRef(coded uint32) (string, bool) {
	if coded == 0 {
		return "", false
	}
	tag := coded & 0x3
	rowIndex := coded >> 2
	switch tag {
	case 0: // TypeDef
		return r.typeDefFullNameByRowIndex(rowIndex)
	case 1: // TypeRef
		return r.typeRefFullName(rowIndex)
	default: // TypeSpec, or an unrecognized tag
		return "", false
	}
}

func (r *Reader) typeDefFullNameByRowIndex(rowIndex uint32) (string, bool) {
	for _, td := range r.typeDefs {
		if td.RowIndex+1 == rowIndex {
			return td.FullName, true
		}
	}
	return "", false
}

// typeRefFullName reads a TypeRef row directly: ResolutionScope (coded
// index) + Name + Namespace string-heap offsets. The resolution scope
// itself (which module/assembly the reference resolves against) is not
// tracked here; the builder only needs the CIL full name to key a weak
// Module.FindType lookup, not the originating assembly.
func (r *Reader) typeRefFullName(rowIndex uint32) (string, bool) {
	count := r.tableRowCounts[TableTypeRef]
	if rowIndex == 0 || rowIndex > count {
		return "", false
	}
	base := r.tableOffsets[TableTypeRef]
	rowSize := r.rowSize(TableTypeRef)
	str := r.indexSizes.stringHeap
	resScope := r.codedIndexSize(2, 0x00, TableModuleRef, TableAssemblyRef, TableTypeRef)

	off := base + (rowIndex-1)*rowSize
	nameOff := r.readHeapIndex(off+resScope, str)
	nsOff := r.readHeapIndex(off+resScope+str, str)

	name, err := r.heaps.String(nameOff)
	if err != nil {
		return "", false
	}
	ns, err := r.heaps.String(nsOff)
	if err != nil {
		return "", false
	}
	if ns == "" {
		return name, true
	}
	return ns + "." + name, true
}
