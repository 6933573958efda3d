package metadata

// ElementType is one ECMA-335 §II.23.1.16 signature element-type byte.
type ElementType byte

const (
	ElemEnd     ElementType = 0x00
	ElemVoid    ElementType = 0x01
	ElemBoolean ElementType = 0x02
	ElemChar    ElementType = 0x03
	ElemI1      ElementType = 0x04
	ElemU1      ElementType = 0x05
	ElemI2      ElementType = 0x06
	ElemU2      ElementType = 0x07
	ElemI4      ElementType = 0x08
	ElemU4      ElementType = 0x09
	ElemI8      ElementType = 0x0A
	ElemU8      ElementType = 0x0B
	ElemR4      ElementType = 0x0C
	ElemR8      ElementType = 0x0D
	ElemString  ElementType = 0x0E
	ElemPtr     ElementType = 0x0F
	ElemByRef   ElementType = 0x10
	ElemValueType ElementType = 0x11
	ElemClass   ElementType = 0x12
	ElemVar     ElementType = 0x13
	ElemArray   ElementType = 0x14
	ElemGenericInst ElementType = 0x15
	ElemTypedByRef  ElementType = 0x16
	ElemI       ElementType = 0x18
	ElemU       ElementType = 0x19
	ElemFnPtr   ElementType = 0x1B
	ElemObject  ElementType = 0x1C
	ElemSZArray ElementType = 0x1D
	ElemMVar    ElementType = 0x1E
	ElemCModReqd ElementType = 0x1F
	ElemCModOpt ElementType = 0x20
	ElemPinned  ElementType = 0x45
)

var primitiveElementNames = map[ElementType]string{
	ElemVoid:    "System.Void",
	ElemBoolean: "System.Boolean",
	ElemChar:    "System.Char",
	ElemI1:      "System.SByte",
	ElemU1:      "System.Byte",
	ElemI2:      "System.Int16",
	ElemU2:      "System.UInt16",
	ElemI4:      "System.Int32",
	ElemU4:      "System.UInt32",
	ElemI8:      "System.Int64",
	ElemU8:      "System.UInt64",
	ElemR4:      "System.Single",
	ElemR8:      "System.Double",
	ElemString:  "System.String",
	ElemI:       "System.IntPtr",
	ElemU:       "System.UIntPtr",
	ElemObject:  "System.Object",
	ElemTypedByRef: "System.TypedReference",
}

// sigCursor walks a #Blob-heap signature byte slice.
type sigCursor struct {
	b   []byte
	pos int
}

func (c *sigCursor) done() bool { return c.pos >= len(c.b) }

func (c *sigCursor) readByte() byte {
	if c.done() {
		return 0
	}
	v := c.b[c.pos]
	c.pos++
	return v
}

// readCompressed decodes an ECMA-335 §II.23.2 compressed unsigned
// integer: 1, 2, or 4 bytes depending on the leading bit pattern.
func (c *sigCursor) readCompressed() uint32 {
	if c.done() {
		return 0
	}
	b0 := c.readByte()
	switch {
	case b0&0x80 == 0:
		return uint32(b0)
	case b0&0xC0 == 0x80:
		b1 := c.readByte()
		return uint32(b0&0x3F)<<8 | uint32(b1)
	default:
		b1 := c.readByte()
		b2 := c.readByte()
		b3 := c.readByte()
		return uint32(b0&0x1F)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
	}
}

// DecodeTypeSignature decodes one type from a field or parameter
// signature's type-blob suffix, returning its CIL full name. VAR/MVAR
// placeholders come out as "!N"/"!!N", since the signature only carries
// a zero-based index, not the declaring generic's parameter name.
// resolve looks up a TypeDefOrRef coded token; pass r.ResolveTypeDefOrRef.
func DecodeTypeSignature(blob []byte, resolve func(coded uint32) (string, bool)) string {
	c := &sigCursor{b: blob}
	return decodeOneType(c, resolve)
}

func decodeOneType(c *sigCursor, resolve func(uint32) (string, bool)) string {
	if c.done() {
		return "System.Object"
	}
	et := ElementType(c.readByte())
	switch et {
	case ElemCModReqd, ElemCModOpt:
		c.readCompressed() // modifier TypeDefOrRef token, not surfaced
		return decodeOneType(c, resolve)
	case ElemPtr:
		return decodeOneType(c, resolve) + "*"
	case ElemByRef:
		return decodeOneType(c, resolve) + "&"
	case ElemPinned:
		return decodeOneType(c, resolve)
	case ElemValueType, ElemClass:
		coded := c.readCompressed()
		if name, ok := resolve(coded); ok {
			return name
		}
		return "System.Object"
	case ElemSZArray:
		return decodeOneType(c, resolve) + "[]"
	case ElemArray:
		elem := decodeOneType(c, resolve)
		rank := c.readCompressed()
		// Skip the bound/lower-bound count lists; only rank matters to
		// the builder's mdarray_* ICall redirection.
		numSizes := c.readCompressed()
		for i := uint32(0); i < numSizes; i++ {
			c.readCompressed()
		}
		numLoBounds := c.readCompressed()
		for i := uint32(0); i < numLoBounds; i++ {
			c.readCompressed()
		}
		if rank <= 1 {
			return elem + "[]"
		}
		return elem + "[,]"
	case ElemGenericInst:
		// ELEMENT_TYPE_CLASS|VALUETYPE, TypeDefOrRef token, arg count, args.
		c.readByte() // the CLASS/VALUETYPE tag byte
		coded := c.readCompressed()
		base, ok := resolve(coded)
		if !ok {
			base = "System.Object"
		}
		argCount := c.readCompressed()
		args := make([]string, 0, argCount)
		for i := uint32(0); i < argCount; i++ {
			args = append(args, decodeOneType(c, resolve))
		}
		name := base
		for i, a := range args {
			if i == 0 {
				name += "<"
			} else {
				name += ", "
			}
			name += a
		}
		if argCount > 0 {
			name += ">"
		}
		return name
	case ElemVar:
		idx := c.readCompressed()
		return genericParamPlaceholder("!", idx)
	case ElemMVar:
		idx := c.readCompressed()
		return genericParamPlaceholder("!!", idx)
	case ElemFnPtr:
		// Skip the embedded method signature's calling-convention byte,
		// param count, and return+param types; the builder has no
		// first-class function-pointer type, so this collapses to
		// System.IntPtr like the runtime's own representation.
		skipMethodSignature(c, resolve)
		return "System.IntPtr"
	default:
		if name, ok := primitiveElementNames[et]; ok {
			return name
		}
		return "System.Object"
	}
}

func genericParamPlaceholder(prefix string, idx uint32) string {
	digits := "0123456789"
	if idx == 0 {
		return prefix + "0"
	}
	var out []byte
	n := idx
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return prefix + string(out)
}

func skipMethodSignature(c *sigCursor, resolve func(uint32) (string, bool)) {
	c.readByte() // calling convention
	paramCount := c.readCompressed()
	decodeOneType(c, resolve) // return type
	for i := uint32(0); i < paramCount; i++ {
		decodeOneType(c, resolve)
	}
}

// DecodeFieldSignature decodes a Field table row's signature blob: a
// leading FIELD calling-convention byte (0x06) followed by the field's
// type.
func DecodeFieldSignature(blob []byte, resolve func(coded uint32) (string, bool)) string {
	c := &sigCursor{b: blob}
	c.readByte() // FIELD calling-convention byte
	return decodeOneType(c, resolve)
}

// MethodSignature is a decoded MethodDef signature: return type plus
// parameter types, in declaration order.
type MethodSignature struct {
	ReturnTypeName string
	ParamTypeNames []string
	HasThis        bool
}

// DecodeMethodSignature decodes a MethodDef table row's signature blob:
// calling-convention byte, param count, return type, then each
// parameter's type in order.
func DecodeMethodSignature(blob []byte, resolve func(coded uint32) (string, bool)) MethodSignature {
	c := &sigCursor{b: blob}
	callConv := c.readByte()
	if callConv&0x10 != 0 { // generic: skip the generic-param count
		c.readCompressed()
	}
	paramCount := c.readCompressed()
	ret := decodeOneType(c, resolve)
	params := make([]string, 0, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		params = append(params, decodeOneType(c, resolve))
	}
	if ret == "System.Void" {
		ret = ""
	}
	return MethodSignature{ReturnTypeName: ret, ParamTypeNames: params, HasThis: callConv&0x20 != 0}
}
