package metadata

// Fields returns the instance/static fields owned by td, resolved
// through the adjacent-row range the TypeDef table encodes (the next
// row's FieldList, or the Field table's row count for the last type).
func (r *Reader) Fields(td TypeDef) ([]FieldDef, error) {
	base := r.tableOffsets[TableTypeDef]
	rowSize := r.rowSize(TableTypeDef)
	str := r.indexSizes.stringHeap

	fieldListOff := base + td.RowIndex*rowSize + 4 + str*2 + r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)
	simpleFieldIdx := func(off uint32) uint32 {
		if r.tableRowCounts[TableField] > 0xFFFF {
			return r.readU32(off)
		}
		return uint32(r.readU16(off))
	}
	start := simpleFieldIdx(fieldListOff)

	var end uint32
	typeDefCount := r.tableRowCounts[TableTypeDef]
	if td.RowIndex+1 < typeDefCount {
		nextOff := base + (td.RowIndex+1)*rowSize + 4 + str*2 + r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)
		end = simpleFieldIdx(nextOff)
	} else {
		end = r.tableRowCounts[TableField] + 1
	}

	var out []FieldDef
	fieldBase := r.tableOffsets[TableField]
	fieldRowSize := r.rowSize(TableField)
	for i := start; i < end; i++ {
		off := fieldBase + (i-1)*fieldRowSize
		flags := FieldAttributes(r.readU16(off))
		nameOff := r.readHeapIndex(off+2, str)
		sigOff := r.readHeapIndex(off+2+str, r.indexSizes.blobHeap)
		name, err := r.heaps.String(nameOff)
		if err != nil {
			return nil, err
		}
		sig, err := r.heaps.Blob(sigOff)
		if err != nil {
			return nil, err
		}
		out = append(out, FieldDef{
			RowIndex: i,
			Name:     name,
			Row:      FieldRow{Flags: flags, Name: nameOff, Signature: sigOff},
			Signature: sig,
		})
	}
	return out, nil
}

// FieldDef is a defined field exposed by the reader, scoped to its
// owning TypeDef.
type FieldDef struct {
	RowIndex  uint32
	Name      string
	Row       FieldRow
	Signature []byte // raw #Blob bytes; the builder decodes the field-type signature
}

// Methods returns the methods owned by td, each with its raw CIL body
// (nil if the method is abstract/extern/RVA-less).
func (r *Reader) Methods(td TypeDef) ([]MethodDef, error) {
	base := r.tableOffsets[TableTypeDef]
	rowSize := r.rowSize(TableTypeDef)
	str := r.indexSizes.stringHeap
	tdor := r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)
	fieldIdxSize := simpleIdxSize(r.tableRowCounts[TableField])

	methodListOff := base + td.RowIndex*rowSize + 4 + str*2 + tdor + fieldIdxSize
	simpleMethodIdx := func(off uint32) uint32 {
		if r.tableRowCounts[TableMethodDef] > 0xFFFF {
			return r.readU32(off)
		}
		return uint32(r.readU16(off))
	}
	start := simpleMethodIdx(methodListOff)

	var end uint32
	typeDefCount := r.tableRowCounts[TableTypeDef]
	if td.RowIndex+1 < typeDefCount {
		nextOff := base + (td.RowIndex+1)*rowSize + 4 + str*2 + tdor + fieldIdxSize
		end = simpleMethodIdx(nextOff)
	} else {
		end = r.tableRowCounts[TableMethodDef] + 1
	}

	var out []MethodDef
	methodBase := r.tableOffsets[TableMethodDef]
	methodRowSize := r.rowSize(TableMethodDef)
	for i := start; i < end; i++ {
		off := methodBase + (i-1)*methodRowSize
		rva := r.readU32(off)
		implFlags := r.readU16(off + 4)
		flags := MethodAttributes(r.readU16(off + 6))
		nameOff := r.readHeapIndex(off+8, str)
		sigOff := r.readHeapIndex(off+8+str, r.indexSizes.blobHeap)

		name, err := r.heaps.String(nameOff)
		if err != nil {
			return nil, err
		}

		md := MethodDef{
			RowIndex: i,
			Name:     name,
			Row: MethodDefRow{
				RVA:       rva,
				ImplFlags: implFlags,
				Flags:     flags,
				Name:      nameOff,
				Signature: sigOff,
			},
		}
		if rva != 0 {
			rb, err := r.readRawMethodBody(rva)
			if err != nil {
				return nil, err
			}
			md.Body = rb.Code
			md.MaxStack = rb.MaxStack
			md.LocalVarSigTok = rb.LocalVarSigTok
			md.ExceptionClauses = rb.ExceptionClauses
		}
		out = append(out, md)
	}
	return out, nil
}

func simpleIdxSize(rowCount uint32) uint32 {
	if rowCount > 0xFFFF {
		return 4
	}
	return 2
}

// rawMethodBody is readRawMethodBody's decoded result: the pure CIL
// byte stream plus the fat header's locals/stack metadata and any
// trailing exception-data sections.
type rawMethodBody struct {
	Code             []byte
	MaxStack         int
	LocalVarSigTok   uint32
	ExceptionClauses []ExceptionClause
}

// readRawMethodBody reads a method body at its RVA, handling both the
// tiny format (single-byte header, max stack 8, no locals, no
// exceptions) and the fat format (12-byte header, one or more
// CorILMethod_Sect data sections may follow the code, 4-byte aligned).
func (r *Reader) readRawMethodBody(rva uint32) (rawMethodBody, error) {
	off, err := r.rvaToFileOffsetCached(rva)
	if err != nil {
		return rawMethodBody{}, err
	}
	header := r.mm[off]
	if header&0x3 == 0x2 { // tiny format
		size := uint32(header) >> 2
		return rawMethodBody{Code: r.mm[off+1 : off+1+size], MaxStack: 8}, nil
	}

	// Fat format: flags(2) maxStack(2) codeSize(4) localVarSigTok(4).
	flags := r.readU16(off)
	maxStack := r.readU16(off + 2)
	codeSize := r.readU32(off + 4)
	localVarSigTok := r.readU32(off + 8)
	headerSize := uint32(flags>>12) * 4 // dword count in the top 4 bits of the flags word
	bodyOff := off + headerSize
	code := r.mm[bodyOff : bodyOff+codeSize]

	body := rawMethodBody{Code: code, MaxStack: int(maxStack), LocalVarSigTok: localVarSigTok}
	if flags&0x08 == 0 { // no CorILMethod_MoreSects
		return body, nil
	}

	sectOff := (bodyOff + codeSize + 3) &^ 3 // 4-byte aligned
	for {
		if sectOff+4 > uint32(len(r.mm)) {
			break
		}
		kind := r.mm[sectOff]
		var dataSize uint32
		if kind&0x40 != 0 {
			dataSize = uint32(r.mm[sectOff+1]) | uint32(r.mm[sectOff+2])<<8 | uint32(r.mm[sectOff+3])<<16
		} else {
			dataSize = uint32(r.mm[sectOff+1])
		}
		sect := r.mm[sectOff : sectOff+dataSize]
		if kind&0x01 != 0 { // EHTable
			body.ExceptionClauses = append(body.ExceptionClauses, decodeEHSection(sect)...)
		}
		more := kind&0x80 != 0
		sectOff = (sectOff + dataSize + 3) &^ 3
		if !more {
			break
		}
	}
	return body, nil
}

// rvaToFileOffsetCached re-resolves an RVA using the section table
// already located during Open. The header offsets are small and cheap
// to recompute; no separate cache is kept.
func (r *Reader) rvaToFileOffsetCached(rva uint32) (uint32, error) {
	peOffset := r.readU32(dosHeaderPELfanewOffset)
	coffOff := peOffset + peSignatureSize
	numSections := r.readU16(coffOff + 2)
	optHeaderSize := r.readU16(coffOff + 16)
	sectionHeadersOff := coffOff + coffHeaderSize + uint32(optHeaderSize)
	return r.rvaToFileOffset(sectionHeadersOff, numSections, rva)
}
