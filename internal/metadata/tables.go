package metadata

// TableID identifies one of the ECMA-335 II.22 metadata tables by its
// fixed numeric index within the #~ stream's valid-table bitmask.
type TableID int

const (
	TableModule                 TableID = 0x00
	TableTypeRef                TableID = 0x01
	TableTypeDef                TableID = 0x02
	TableFieldPtr                TableID = 0x03
	TableField                  TableID = 0x04
	TableMethodPtr               TableID = 0x05
	TableMethodDef               TableID = 0x06
	TableParamPtr                TableID = 0x07
	TableParam                  TableID = 0x08
	TableInterfaceImpl          TableID = 0x09
	TableMemberRef              TableID = 0x0A
	TableConstant                TableID = 0x0B
	TableCustomAttribute         TableID = 0x0C
	TableFieldMarshal            TableID = 0x0D
	TableDeclSecurity            TableID = 0x0E
	TableClassLayout             TableID = 0x0F
	TableFieldLayout             TableID = 0x10
	TableStandAloneSig           TableID = 0x11
	TableEventMap                TableID = 0x12
	TableEventPtr                 TableID = 0x13
	TableEvent                  TableID = 0x14
	TablePropertyMap             TableID = 0x15
	TablePropertyPtr              TableID = 0x16
	TableProperty                TableID = 0x17
	TableMethodSemantics         TableID = 0x18
	TableMethodImpl              TableID = 0x19
	TableModuleRef               TableID = 0x1A
	TableTypeSpec                TableID = 0x1B
	TableImplMap                 TableID = 0x1C
	TableFieldRVA                TableID = 0x1D
	TableAssembly                TableID = 0x20
	TableAssemblyRef             TableID = 0x23
	TableFile                   TableID = 0x26
	TableExportedType            TableID = 0x27
	TableManifestResource        TableID = 0x28
	TableNestedClass             TableID = 0x29
	TableGenericParam            TableID = 0x2A
	TableMethodSpec              TableID = 0x2B
	TableGenericParamConstraint  TableID = 0x2C
)

// TypeAttributes is the subset of ECMA-335 II.23.1.15 TypeDef flags the
// reader threads through to the type-shell pass.
type TypeAttributes uint32

const (
	TypeVisibilityMask     TypeAttributes = 0x00000007
	TypePublic             TypeAttributes = 0x00000001
	TypeNestedPublic       TypeAttributes = 0x00000002
	TypeLayoutMask         TypeAttributes = 0x00000018
	TypeClassSemanticsMask TypeAttributes = 0x00000020
	TypeInterface          TypeAttributes = 0x00000020
	TypeAbstract           TypeAttributes = 0x00000080
	TypeSealed             TypeAttributes = 0x00000100
	TypeSpecialName        TypeAttributes = 0x00000400
)

func (a TypeAttributes) IsInterface() bool { return a&TypeClassSemanticsMask == TypeInterface }
func (a TypeAttributes) IsAbstract() bool  { return a&TypeAbstract != 0 }

// FieldAttributes is the subset of ECMA-335 II.23.1.5 Field flags.
type FieldAttributes uint16

const (
	FieldAccessMask  FieldAttributes = 0x0007
	FieldPublic      FieldAttributes = 0x0006
	FieldPrivate     FieldAttributes = 0x0001
	FieldFamily      FieldAttributes = 0x0004
	FieldAssembly    FieldAttributes = 0x0003
	FieldStatic      FieldAttributes = 0x0010
	FieldInitOnly    FieldAttributes = 0x0020
	FieldLiteral     FieldAttributes = 0x0040
	FieldNotSerialized FieldAttributes = 0x0080
	FieldSpecialName FieldAttributes = 0x0200
)

// MethodAttributes is the subset of ECMA-335 II.23.1.10 Method flags.
type MethodAttributes uint16

const (
	MethodAccessMask    MethodAttributes = 0x0007
	MethodPublic        MethodAttributes = 0x0006
	MethodPrivate       MethodAttributes = 0x0001
	MethodFamily        MethodAttributes = 0x0004
	MethodAssembly      MethodAttributes = 0x0003
	MethodStatic        MethodAttributes = 0x0010
	MethodFinal         MethodAttributes = 0x0020
	MethodVirtual       MethodAttributes = 0x0040
	MethodHideBySig     MethodAttributes = 0x0080
	MethodNewSlot       MethodAttributes = 0x0100
	MethodAbstract      MethodAttributes = 0x0400
	MethodSpecialName   MethodAttributes = 0x0800
	MethodPInvokeImpl   MethodAttributes = 0x2000
	MethodRTSpecialName MethodAttributes = 0x1000
)

func (a MethodAttributes) IsStatic() bool      { return a&MethodStatic != 0 }
func (a MethodAttributes) IsVirtual() bool     { return a&MethodVirtual != 0 }
func (a MethodAttributes) IsAbstract() bool    { return a&MethodAbstract != 0 }
func (a MethodAttributes) IsNewSlot() bool     { return a&MethodNewSlot != 0 }
func (a MethodAttributes) IsSpecialName() bool { return a&MethodSpecialName != 0 }

// TypeDefRow is one raw row of the TypeDef table, with coded-index
// fields already resolved to row indices (not yet names — the reader
// resolves those via the #Strings heap and cross-table lookups).
type TypeDefRow struct {
	Flags          TypeAttributes
	TypeName       uint32 // #Strings heap offset
	TypeNamespace  uint32 // #Strings heap offset
	Extends        uint32 // coded TypeDefOrRef index, 0 if none
	FieldList      uint32 // 1-based starting index into Field table
	MethodList     uint32 // 1-based starting index into MethodDef table
}

// FieldRow is one raw row of the Field table.
type FieldRow struct {
	Flags FieldAttributes
	Name  uint32 // #Strings heap offset
	Signature uint32 // #Blob heap offset
}

// MethodDefRow is one raw row of the MethodDef table.
type MethodDefRow struct {
	RVA        uint32
	ImplFlags  uint16
	Flags      MethodAttributes
	Name       uint32 // #Strings heap offset
	Signature  uint32 // #Blob heap offset
	ParamList  uint32 // 1-based starting index into Param table
}

// ParamRow is one raw row of the Param table.
type ParamRow struct {
	Flags    uint16
	Sequence uint16
	Name     uint32 // #Strings heap offset
}

// InterfaceImplRow is one raw row of the InterfaceImpl table.
type InterfaceImplRow struct {
	Class     uint32 // TypeDef row index
	Interface uint32 // coded TypeDefOrRef index
}

// MemberRefRow is one raw row of the MemberRef table.
type MemberRefRow struct {
	Class     uint32 // coded MemberRefParent index
	Name      uint32 // #Strings heap offset
	Signature uint32 // #Blob heap offset
}

// ConstantRow is one raw row of the Constant table.
type ConstantRow struct {
	Type   byte // CIL element type of the stored value
	Parent uint32 // coded HasConstant index
	Value  uint32 // #Blob heap offset
}

// CustomAttributeRow is one raw row of the CustomAttribute table.
type CustomAttributeRow struct {
	Parent uint32 // coded HasCustomAttribute index
	Type   uint32 // coded CustomAttributeType index
	Value  uint32 // #Blob heap offset
}

// NestedClassRow is one raw row of the NestedClass table.
type NestedClassRow struct {
	NestedClass    uint32 // TypeDef row index
	EnclosingClass uint32 // TypeDef row index
}

// ClassLayoutRow is one raw row of the ClassLayout table.
type ClassLayoutRow struct {
	PackingSize uint16
	ClassSize   uint32
	Parent      uint32 // TypeDef row index
}

// ImplMapRow is one raw row of the ImplMap table (P/Invoke bindings).
type ImplMapRow struct {
	MappingFlags   uint16
	MemberForwarded uint32 // coded MemberForwarded index
	ImportName     uint32 // #Strings heap offset
	ImportScope    uint32 // ModuleRef row index
}

// AssemblyRefRow is one raw row of the AssemblyRef table.
type AssemblyRefRow struct {
	MajorVersion uint16
	MinorVersion uint16
	BuildNumber  uint16
	RevisionNumber uint16
	Flags        uint32
	PublicKeyOrToken uint32 // #Blob heap offset
	Name         uint32 // #Strings heap offset
	Culture      uint32 // #Strings heap offset
}

// GenericParamRow is one raw row of the GenericParam table.
type GenericParamRow struct {
	Number uint16
	Flags  uint16 // variance bits in the low 2 bits
	Owner  uint32 // coded TypeOrMethodDef index
	Name   uint32 // #Strings heap offset
}

// GenericParamVariance extracts the variance encoded in a
// GenericParamRow's Flags (ECMA-335 II.23.1.7).
func GenericParamVariance(flags uint16) int {
	return int(flags & 0x3)
}
