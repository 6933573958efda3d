package metadata

// PInvokeRow is one ECMA-335 ImplMap table row, resolved to its plain
// names: the platform-invoke binding a MethodDef row declares via an
// extern method with a DllImport-style attribute.
type PInvokeRow struct {
	ModuleName     string
	EntryPointName string
	NoMangle       bool
	CharsetAnsi    bool
	CharsetUnicode bool
	CharsetAuto    bool
	SupportsLastError bool
	CallConvWinapi    bool
	CallConvCdecl     bool
	CallConvStdcall   bool
	CallConvThiscall  bool
	CallConvFastcall  bool
}

// PInvokeForMethod finds the ImplMap row forwarding methodRowIndex (a
// MethodDef table row), if any. Most methods have none; only
// extern-flagged methods carry an ImplMap entry.
func (r *Reader) PInvokeForMethod(methodRowIndex uint32) (PInvokeRow, bool) {
	count := r.tableRowCounts[TableImplMap]
	if count == 0 {
		return PInvokeRow{}, false
	}
	base := r.tableOffsets[TableImplMap]
	rowSize := r.rowSize(TableImplMap)
	str := r.indexSizes.stringHeap
	forwardedSize := r.codedIndexSize(1, TableField, TableMethodDef)
	moduleRefSize := simpleIdxSize(r.tableRowCounts[TableModuleRef])

	for i := uint32(1); i <= count; i++ {
		off := base + (i-1)*rowSize
		flags := r.readU16(off)
		forwarded := r.readHeapIndex(off+2, forwardedSize)
		tag := forwarded & 0x1
		rowIdx := forwarded >> 1
		if tag != 1 || rowIdx != methodRowIndex { // tag 1 == MethodDef
			continue
		}

		nameOff := r.readHeapIndex(off+2+forwardedSize, str)
		scopeIdx := r.readHeapIndex(off+2+forwardedSize+str, moduleRefSize)

		name, err := r.heaps.String(nameOff)
		if err != nil {
			return PInvokeRow{}, false
		}
		moduleName := ""
		if moduleRefBase := r.tableOffsets[TableModuleRef]; scopeIdx > 0 && scopeIdx <= r.tableRowCounts[TableModuleRef] {
			modOff := moduleRefBase + (scopeIdx-1)*r.rowSize(TableModuleRef)
			modNameOff := r.readHeapIndex(modOff, str)
			moduleName, _ = r.heaps.String(modNameOff)
		}

		return PInvokeRow{
			ModuleName:        moduleName,
			EntryPointName:    name,
			NoMangle:          flags&0x0001 != 0,
			CharsetAnsi:       flags&0x0006 == 0x0002,
			CharsetUnicode:    flags&0x0006 == 0x0004,
			CharsetAuto:       flags&0x0006 == 0x0006,
			SupportsLastError: flags&0x0040 != 0,
			CallConvWinapi:    flags&0x0700 == 0x0100,
			CallConvCdecl:     flags&0x0700 == 0x0200,
			CallConvStdcall:   flags&0x0700 == 0x0300,
			CallConvThiscall:  flags&0x0700 == 0x0400,
			CallConvFastcall:  flags&0x0700 == 0x0500,
		}, true
	}
	return PInvokeRow{}, false
}
