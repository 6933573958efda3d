package metadata

import (
	"encoding/binary"
	"os"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"

	"github.com/axiomates/cil2cpp/internal/diag"
)

// dosHeaderSize and the PE/COFF offsets below follow the Microsoft PE
// format, section 2.
const (
	dosHeaderPELfanewOffset = 0x3C
	peSignatureSize         = 4
	coffHeaderSize          = 20
)

// SequencePoint is one entry of a method's debug sequence-point table.
// StartLine carries the sentinel 0xFEEFEE for a hidden sequence point.
type SequencePoint struct {
	SourceFile string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
	ILOffset   int
	IsHidden   bool
}

const hiddenSequencePointLine = 0xFEEFEE

// TypeDef is a defined type exposed by the reader, with its raw row plus
// already-resolved string-heap names.
type TypeDef struct {
	RowIndex  uint32
	Namespace string
	Name      string
	FullName  string
	Row       TypeDefRow
}

// MethodDef is a defined method exposed by the reader, scoped to its
// owning TypeDef.
type MethodDef struct {
	RowIndex uint32
	Name     string
	Row      MethodDefRow
	Params   []ParamRow
	Body     []byte // raw CIL byte stream, nil if RVA == 0 (abstract/extern)

	// MaxStack, LocalVarSigTok, and ExceptionClauses are only meaningful
	// when Body is non-nil; the tiny body format always implies
	// MaxStack 8, LocalVarSigTok 0, and no exception clauses.
	MaxStack         int
	LocalVarSigTok   uint32
	ExceptionClauses []ExceptionClause
}

// Reader exposes one opened assembly's ECMA-335 metadata. Resources
// (the memory-mapped file) release deterministically on Close; a second
// Close is a no-op.
type Reader struct {
	path string
	f    *os.File
	mm   mmap.MMap

	heaps heaps

	assemblyName string
	hasDebug     bool
	entryPointToken uint32

	tableRowCounts map[TableID]uint32
	tableOffsets   map[TableID]uint32
	indexSizes     struct {
		stringHeap, guidHeap, blobHeap uint32 // 2 or 4
		tableIndex                     map[TableID]uint32
	}

	typeDefs    []TypeDef
	typeDefByFN map[string]int

	assemblyRefs []AssemblyRefRow

	closeOnce sync.Once
	closeErr  error
}

// Open memory-maps path and parses its PE/CLR/ECMA-335 metadata headers.
// wantDebugSymbols requests that a companion .pdb be probed for and, if
// found and embeddable, reflected in HasDebugSymbols.
func Open(path string, wantDebugSymbols bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindIOError, "opening "+path, err)
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, diag.Wrap(diag.KindIOError, "mapping "+path, err)
	}

	r := &Reader{
		path:           path,
		f:              f,
		mm:             mm,
		tableRowCounts: make(map[TableID]uint32),
		tableOffsets:   make(map[TableID]uint32),
		typeDefByFN:    make(map[string]int),
	}
	r.indexSizes.tableIndex = make(map[TableID]uint32)

	if err := r.parse(); err != nil {
		r.Close()
		return nil, err
	}

	if wantDebugSymbols {
		if _, statErr := os.Stat(strings.TrimSuffix(path, ".dll") + ".pdb"); statErr == nil {
			r.hasDebug = true
		}
		if _, statErr := os.Stat(strings.TrimSuffix(path, ".exe") + ".pdb"); statErr == nil {
			r.hasDebug = true
		}
	}

	return r, nil
}

// Close releases the memory mapping and underlying file handle. Safe to
// call more than once.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		if r.mm != nil {
			r.closeErr = r.mm.Unmap()
		}
		if r.f != nil {
			if err := r.f.Close(); err != nil && r.closeErr == nil {
				r.closeErr = err
			}
		}
	})
	return r.closeErr
}

// AssemblyName returns the defining assembly's simple name.
func (r *Reader) AssemblyName() string { return r.assemblyName }

// HasDebugSymbols reports whether a companion symbol file exists and
// debug symbols were requested when opening.
func (r *Reader) HasDebugSymbols() bool { return r.hasDebug }

// EntryPointToken returns the COR20 header's EntryPointToken field: a
// MethodDef token naming the assembly's Main method, or 0 for a
// library with no managed entry point.
func (r *Reader) EntryPointToken() uint32 { return r.entryPointToken }

// TypeDefs returns every defined type, excluding the `<Module>`
// pseudo-type at row 0.
func (r *Reader) TypeDefs() []TypeDef {
	return r.typeDefs
}

// FindTypeDef looks up a defined type by its CIL full name.
func (r *Reader) FindTypeDef(fullName string) (TypeDef, bool) {
	i, ok := r.typeDefByFN[fullName]
	if !ok {
		return TypeDef{}, false
	}
	return r.typeDefs[i], true
}

// AssemblyRefs returns every referenced assembly's raw row, names
// resolved through the #Strings heap by the caller via StringAt.
func (r *Reader) AssemblyRefs() []AssemblyRefRow {
	return r.assemblyRefs
}

// StringAt exposes the #Strings heap for callers that hold a raw
// offset (e.g. from an AssemblyRefRow).
func (r *Reader) StringAt(offset uint32) (string, error) {
	return r.heaps.String(offset)
}

// BlobAt reads a length-prefixed #Blob heap entry at offset, returning
// its content bytes (the length prefix itself is not included).
func (r *Reader) BlobAt(offset uint32) ([]byte, error) {
	return r.heaps.Blob(offset)
}

// readU16/readU32 read little-endian integers at a byte offset into the
// mapped image.
func (r *Reader) readU16(off uint32) uint16 { return binary.LittleEndian.Uint16(r.mm[off:]) }
func (r *Reader) readU32(off uint32) uint32 { return binary.LittleEndian.Uint32(r.mm[off:]) }

// parse walks the DOS/PE/COFF/optional headers to the CLR header, then
// the CLR header to the metadata root, then the metadata root to the
// stream headers and the #~ table stream.
func (r *Reader) parse() error {
	if len(r.mm) < dosHeaderPELfanewOffset+4 {
		return diag.New(diag.KindMetadataFormatError, "file too small for a DOS header")
	}
	if r.mm[0] != 'M' || r.mm[1] != 'Z' {
		return diag.New(diag.KindMetadataFormatError, "missing MZ signature")
	}

	peOffset := r.readU32(dosHeaderPELfanewOffset)
	if int(peOffset)+peSignatureSize+coffHeaderSize > len(r.mm) {
		return diag.New(diag.KindMetadataFormatError, "PE header out of bounds")
	}
	if string(r.mm[peOffset:peOffset+4]) != "PE\x00\x00" {
		return diag.New(diag.KindMetadataFormatError, "missing PE signature")
	}

	coffOff := peOffset + peSignatureSize
	numSections := r.readU16(coffOff + 2)
	optHeaderSize := r.readU16(coffOff + 16)
	optHeaderOff := coffOff + coffHeaderSize

	// The CLR (COM+ 2.0) header RVA/size live in the optional header's
	// data directory. PE32 and PE32+ differ only in where that directory
	// begins; the magic field at the top of the optional header
	// disambiguates.
	magic := r.readU16(optHeaderOff)
	var dataDirOff uint32
	if magic == 0x10b { // PE32
		dataDirOff = optHeaderOff + 96
	} else { // PE32+ (0x20b)
		dataDirOff = optHeaderOff + 112
	}
	const clrHeaderDirIndex = 14
	clrDirOff := dataDirOff + uint32(clrHeaderDirIndex)*8
	clrRVA := r.readU32(clrDirOff)
	if clrRVA == 0 {
		return diag.New(diag.KindMetadataFormatError, "image has no CLR header: not a managed assembly")
	}

	sectionHeadersOff := optHeaderOff + uint32(optHeaderSize)
	clrFileOff, err := r.rvaToFileOffset(sectionHeadersOff, numSections, clrRVA)
	if err != nil {
		return err
	}

	// IMAGE_COR20_HEADER.MetaData is a {RVA, Size} pair at byte offset 8.
	metadataRVA := r.readU32(clrFileOff + 8)
	metadataFileOff, err := r.rvaToFileOffset(sectionHeadersOff, numSections, metadataRVA)
	if err != nil {
		return err
	}

	// EntryPointToken sits after cb(4)+MajorRuntimeVersion(2)+
	// MinorRuntimeVersion(2)+MetaData RVA/Size(8)+Flags(4).
	r.entryPointToken = r.readU32(clrFileOff + 20)

	return r.parseMetadataRoot(metadataFileOff)
}

func (r *Reader) rvaToFileOffset(sectionHeadersOff uint32, numSections uint16, rva uint32) (uint32, error) {
	const sectionHeaderSize = 40
	for i := uint16(0); i < numSections; i++ {
		base := sectionHeadersOff + uint32(i)*sectionHeaderSize
		virtualSize := r.readU32(base + 8)
		virtualAddr := r.readU32(base + 12)
		rawSize := r.readU32(base + 16)
		rawPtr := r.readU32(base + 20)
		if rva >= virtualAddr && rva < virtualAddr+maxu32(virtualSize, rawSize) {
			return rawPtr + (rva - virtualAddr), nil
		}
	}
	return 0, diag.New(diag.KindMetadataFormatError, "RVA does not map to any section")
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// parseMetadataRoot parses the metadata root header (ECMA-335 II.24.2.1)
// and the stream headers that follow it.
func (r *Reader) parseMetadataRoot(off uint32) error {
	if r.readU32(off) != 0x424A5342 { // "BSJB" magic
		return diag.New(diag.KindMetadataFormatError, "missing metadata root signature")
	}
	versionLen := r.readU32(off + 12)
	streamCountOff := off + 16 + roundUp4(versionLen) + 2
	streamCount := r.readU16(streamCountOff)

	cursor := streamCountOff + 2
	for i := uint16(0); i < streamCount; i++ {
		streamOff := r.readU32(cursor)
		streamSize := r.readU32(cursor + 4)
		nameOff := cursor + 8
		name, nlen := r.readCString(nameOff)
		cursor = nameOff + roundUp4(uint32(nlen+1))

		streamStart := off + streamOff
		streamEnd := streamStart + streamSize
		switch name {
		case "#Strings":
			r.heaps.strings = r.mm[streamStart:streamEnd]
		case "#GUID":
			r.heaps.guid = r.mm[streamStart:streamEnd]
		case "#Blob":
			r.heaps.blob = r.mm[streamStart:streamEnd]
		case "#US":
			r.heaps.us = r.mm[streamStart:streamEnd]
		case "#~", "#-":
			if err := r.parseTableStream(streamStart); err != nil {
				return err
			}
		}
	}

	return r.materializeRows()
}

func (r *Reader) readCString(off uint32) (string, int) {
	end := off
	for r.mm[end] != 0 {
		end++
	}
	return string(r.mm[off:end]), int(end - off)
}

func roundUp4(n uint32) uint32 { return (n + 3) &^ 3 }

// parseTableStream parses the #~ stream header (ECMA-335 II.24.2.6):
// heap-size flags, the valid/sorted table bitmasks, and the row-count
// array, then computes each present table's row size and file offset.
func (r *Reader) parseTableStream(off uint32) error {
	heapSizes := r.mm[off+6]
	r.indexSizes.stringHeap = heapSizeOf(heapSizes, 0x01)
	r.indexSizes.guidHeap = heapSizeOf(heapSizes, 0x02)
	r.indexSizes.blobHeap = heapSizeOf(heapSizes, 0x04)

	valid := binary.LittleEndian.Uint64(r.mm[off+8:])

	cursor := off + 24 // past Reserved, MajorVersion, MinorVersion, HeapSizes, Reserved2, Valid, Sorted
	var present []TableID
	for t := TableID(0); t < 64; t++ {
		if valid&(1<<uint(t)) != 0 {
			count := r.readU32(cursor)
			r.tableRowCounts[t] = count
			present = append(present, t)
			cursor += 4
		}
	}

	rowOff := cursor
	for _, t := range present {
		r.tableOffsets[t] = rowOff
		rowSize := r.rowSize(t)
		rowOff += rowSize * r.tableRowCounts[t]
	}
	return nil
}

func heapSizeOf(flags byte, bit byte) uint32 {
	if flags&bit != 0 {
		return 4
	}
	return 2
}

// rowSize computes a table's fixed per-row byte size given the current
// heap index widths and cross-table row-count-dependent coded-index
// widths. A conservative fixed layout covering the tables the builder
// actually consumes; tables outside that set are skipped by row count
// alone (their presence still had to be accounted for in the stream
// layout above).
func (r *Reader) rowSize(t TableID) uint32 {
	str := r.indexSizes.stringHeap
	blob := r.indexSizes.blobHeap
	guid := r.indexSizes.guidHeap
	tdor := r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)
	hasConstant := r.codedIndexSize(2, TableField, TableParam, TableProperty)
	hasCustomAttr := r.codedIndexSize(5, tablesForHasCustomAttribute()...)
	memberRefParent := r.codedIndexSize(3, TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec)
	memberForwarded := r.codedIndexSize(1, TableField, TableMethodDef)
	typeOrMethodDef := r.codedIndexSize(1, TableTypeDef, TableMethodDef)
	simpleIdx := func(target TableID) uint32 {
		if r.tableRowCounts[target] > 0xFFFF {
			return 4
		}
		return 2
	}

	switch t {
	case TableModule:
		return 2 + str + guid*3
	case TableTypeRef:
		return r.codedIndexSize(2, 0x00, TableModuleRef, TableAssemblyRef, TableTypeRef) + str*2
	case TableTypeDef:
		return 4 + str*2 + tdor + simpleIdx(TableField) + simpleIdx(TableMethodDef)
	case TableField:
		return 2 + str + blob
	case TableMethodDef:
		return 4 + 2 + 2 + str + blob + simpleIdx(TableParam)
	case TableParam:
		return 2 + 2 + str
	case TableInterfaceImpl:
		return simpleIdx(TableTypeDef) + tdor
	case TableMemberRef:
		return memberRefParent + str + blob
	case TableConstant:
		return 2 + hasConstant + blob
	case TableCustomAttribute:
		return hasCustomAttr + r.codedIndexSize(3, TableMethodDef, TableMemberRef) + blob
	case TableClassLayout:
		return 2 + 4 + simpleIdx(TableTypeDef)
	case TableStandAloneSig:
		return blob
	case TableNestedClass:
		return simpleIdx(TableTypeDef) * 2
	case TableImplMap:
		return 2 + memberForwarded + str + simpleIdx(TableModuleRef)
	case TableAssemblyRef:
		return 2*4 + 4 + blob + str*2 + blob + str*2
	case TableGenericParam:
		return 2 + 2 + typeOrMethodDef + str
	case TableMethodSpec:
		return r.codedIndexSize(1, TableMethodDef, TableMemberRef) + blob
	case TableModuleRef:
		return str
	default:
		return 0
	}
}

// tablesForHasCustomAttribute enumerates the HasCustomAttribute coded
// index's 22 candidate tables in ECMA-335 II.24.2.6's fixed tag order;
// a row's 5-bit tag is this slice's index, not an arbitrary grouping.
func tablesForHasCustomAttribute() []TableID {
	return []TableID{
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam, TableInterfaceImpl,
		TableMemberRef, TableModule, TableDeclSecurity, TableProperty, TableEvent, TableStandAloneSig,
		TableModuleRef, TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile, TableExportedType,
		TableManifestResource, TableGenericParam, TableGenericParamConstraint, TableMethodSpec,
	}
}

// codedIndexSize computes a coded index's row-reference width (2 or 4
// bytes) per ECMA-335 II.24.2.6: 2 bytes if every candidate table's row
// count fits within the tag-adjusted 16-bit budget, else 4.
func (r *Reader) codedIndexSize(tagBits uint, tables ...TableID) uint32 {
	maxRows := uint32(0)
	for _, t := range tables {
		if c := r.tableRowCounts[t]; c > maxRows {
			maxRows = c
		}
	}
	limit := uint32(1) << (16 - tagBits)
	if maxRows >= limit {
		return 4
	}
	return 2
}

// materializeRows decodes TypeDef, Field, MethodDef, Param, and
// AssemblyRef rows into the Reader's higher-level views.
func (r *Reader) materializeRows() error {
	if err := r.materializeAssembly(); err != nil {
		return err
	}
	if err := r.materializeAssemblyRefs(); err != nil {
		return err
	}
	return r.materializeTypeDefs()
}

func (r *Reader) materializeAssembly() error {
	count := r.tableRowCounts[TableAssembly]
	if count == 0 {
		r.assemblyName = ""
		return nil
	}
	base := r.tableOffsets[TableAssembly]
	// HashAlgId(4) MajorVersion(2) MinorVersion(2) BuildNumber(2)
	// RevisionNumber(2) Flags(4) PublicKey(blob) Name(string) Culture(string)
	nameFieldOff := base + 4 + 2*4 + 4 + r.indexSizes.blobHeap
	nameOff := r.readHeapIndex(nameFieldOff, r.indexSizes.stringHeap)
	name, err := r.heaps.String(nameOff)
	if err != nil {
		return err
	}
	r.assemblyName = name
	return nil
}

func (r *Reader) materializeAssemblyRefs() error {
	count := r.tableRowCounts[TableAssemblyRef]
	if count == 0 {
		return nil
	}
	base := r.tableOffsets[TableAssemblyRef]
	rowSize := r.rowSize(TableAssemblyRef)
	r.assemblyRefs = make([]AssemblyRefRow, count)
	for i := uint32(0); i < count; i++ {
		off := base + i*rowSize
		row := AssemblyRefRow{
			MajorVersion: r.readU16(off),
			MinorVersion: r.readU16(off + 2),
			BuildNumber:  r.readU16(off + 4),
			RevisionNumber: r.readU16(off + 6),
			Flags:        r.readU32(off + 8),
		}
		cur := off + 12
		row.PublicKeyOrToken = r.readHeapIndex(cur, r.indexSizes.blobHeap)
		cur += r.indexSizes.blobHeap
		row.Name = r.readHeapIndex(cur, r.indexSizes.stringHeap)
		cur += r.indexSizes.stringHeap
		row.Culture = r.readHeapIndex(cur, r.indexSizes.stringHeap)
		r.assemblyRefs[i] = row
	}
	return nil
}

func (r *Reader) materializeTypeDefs() error {
	count := r.tableRowCounts[TableTypeDef]
	if count == 0 {
		return nil
	}
	base := r.tableOffsets[TableTypeDef]
	rowSize := r.rowSize(TableTypeDef)
	str := r.indexSizes.stringHeap
	tdorSize := r.codedIndexSize(2, TableTypeDef, TableTypeRef, 0x1B)

	r.typeDefs = make([]TypeDef, 0, count-1)
	// Row 0 is the `<Module>` pseudo-type; skip it per the reader's
	// contract.
	for i := uint32(1); i < count; i++ {
		off := base + i*rowSize
		flags := TypeAttributes(r.readU32(off))
		nameOff := r.readHeapIndex(off+4, str)
		nsOff := r.readHeapIndex(off+4+str, str)
		extends := r.readHeapIndex(off+4+str*2, tdorSize)

		name, err := r.heaps.String(nameOff)
		if err != nil {
			return err
		}
		ns, err := r.heaps.String(nsOff)
		if err != nil {
			return err
		}

		full := name
		if ns != "" {
			full = ns + "." + name
		}

		td := TypeDef{
			RowIndex:  i,
			Namespace: ns,
			Name:      name,
			FullName:  full,
			Row: TypeDefRow{
				Flags:         flags,
				TypeName:      nameOff,
				TypeNamespace: nsOff,
				Extends:       extends,
			},
		}
		r.typeDefByFN[full] = len(r.typeDefs)
		r.typeDefs = append(r.typeDefs, td)
	}
	return nil
}

func (r *Reader) readHeapIndex(off uint32, size uint32) uint32 {
	if size == 2 {
		return uint32(r.readU16(off))
	}
	return r.readU32(off)
}
