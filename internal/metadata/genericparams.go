package metadata

// GenericParamNames returns the declared generic parameter names (in
// Number order) for a TypeDef or MethodDef row, identified by its
// TypeOrMethodDef coded-index tag (0=TypeDef, 1=MethodDef) and row
// index. Most rows have none; only an open generic type/method
// definition carries GenericParam rows at all.
func (r *Reader) GenericParamNames(ownerTag uint32, ownerRowIndex uint32) []string {
	count := r.tableRowCounts[TableGenericParam]
	if count == 0 {
		return nil
	}
	base := r.tableOffsets[TableGenericParam]
	rowSize := r.rowSize(TableGenericParam)
	ownerSize := r.codedIndexSize(1, TableTypeDef, TableMethodDef)
	str := r.indexSizes.stringHeap

	type numbered struct {
		num  uint16
		name string
	}
	var params []numbered
	for i := uint32(1); i <= count; i++ {
		off := base + (i-1)*rowSize
		num := r.readU16(off)
		owner := r.readHeapIndex(off+2+2, ownerSize)
		tag := owner & 0x1
		rowIdx := owner >> 1
		if tag != ownerTag || rowIdx != ownerRowIndex {
			continue
		}
		nameOff := r.readHeapIndex(off+2+2+ownerSize, str)
		name, err := r.heaps.String(nameOff)
		if err != nil {
			continue
		}
		params = append(params, numbered{num: num, name: name})
	}
	if params == nil {
		return nil
	}
	// Rows are usually already in Number order per ECMA-335 II.22.20's
	// "logical ordering" constraint, but sort defensively since the
	// table's physical row order is only required to group by owner.
	for i := 1; i < len(params); i++ {
		for j := i; j > 0 && params[j].num < params[j-1].num; j-- {
			params[j], params[j-1] = params[j-1], params[j]
		}
	}
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.name
	}
	return out
}
