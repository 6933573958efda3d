package metadata

// LocalVarSigTypeNames resolves a MethodDef's LocalVarSigTok (a
// StandAloneSig table token, or 0 if the method declares no locals) to
// the CIL full name of each declared local, in slot order.
func (r *Reader) LocalVarSigTypeNames(token uint32) ([]string, error) {
	if token == 0 {
		return nil, nil
	}
	rid := token & 0x00FFFFFF
	count := r.tableRowCounts[TableStandAloneSig]
	if rid == 0 || rid > count {
		return nil, nil
	}
	base := r.tableOffsets[TableStandAloneSig]
	rowSize := r.rowSize(TableStandAloneSig)
	blobIdx := r.indexSizes.blobHeap

	off := base + (rid-1)*rowSize
	sigOff := r.readHeapIndex(off, blobIdx)
	blob, err := r.heaps.Blob(sigOff)
	if err != nil {
		return nil, err
	}
	return decodeLocalVarSig(blob, r.ResolveTypeDefOrRef), nil
}

// decodeLocalVarSig decodes a LOCAL_SIG blob (ECMA-335 §II.23.2.6): a
// leading 0x07 calling-convention byte, a compressed count, then each
// local's type. A BYREF or PINNED modifier prefix on a local is folded
// into decodeOneType's existing Ptr/ByRef/Pinned handling.
func decodeLocalVarSig(blob []byte, resolve func(uint32) (string, bool)) []string {
	c := &sigCursor{b: blob}
	if c.done() {
		return nil
	}
	c.readByte() // LOCAL_SIG calling convention (0x07)
	count := c.readCompressed()
	out := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if c.done() {
			break
		}
		out = append(out, decodeOneType(c, resolve))
	}
	return out
}
