package metadata

import (
	"encoding/binary"
	"math"
)

// ConstantValue is a decoded Constant table row: the CIL element-type
// tag the value was stored as plus the value itself, pre-split by kind
// so callers never re-parse the #Blob bytes.
type ConstantValue struct {
	Type ElementType
	I64  int64
	F64  float64
	Str  string
	Bool bool
	IsNull bool
}

// ConstantForField finds the Constant table row attached to the Field
// table row fieldRowIndex (a 1-based row index), if any: literal/const
// fields and enum members carry one, ordinary fields don't.
func (r *Reader) ConstantForField(fieldRowIndex uint32) (ConstantValue, bool) {
	count := r.tableRowCounts[TableConstant]
	if count == 0 {
		return ConstantValue{}, false
	}
	base := r.tableOffsets[TableConstant]
	rowSize := r.rowSize(TableConstant)
	hasConstant := r.codedIndexSize(2, TableField, TableParam, TableProperty)

	for i := uint32(1); i <= count; i++ {
		off := base + (i-1)*rowSize
		typ := ElementType(r.mm[off])
		parent := r.readHeapIndex(off+2, hasConstant)
		tag := parent & 0x3
		rowIdx := parent >> 2
		if tag != 0 || rowIdx != fieldRowIndex { // tag 0 == Field
			continue
		}
		valOff := r.readHeapIndex(off+2+hasConstant, r.indexSizes.blobHeap)
		blob, err := r.heaps.Blob(valOff)
		if err != nil {
			return ConstantValue{}, false
		}
		return decodeConstantBlob(typ, blob), true
	}
	return ConstantValue{}, false
}

func decodeConstantBlob(typ ElementType, blob []byte) ConstantValue {
	le := func(n int) int64 {
		var v int64
		for i := 0; i < n && i < len(blob); i++ {
			v |= int64(blob[i]) << (8 * i)
		}
		return v
	}
	switch typ {
	case ElemBoolean:
		return ConstantValue{Type: typ, Bool: len(blob) > 0 && blob[0] != 0}
	case ElemChar, ElemU2:
		return ConstantValue{Type: typ, I64: le(2)}
	case ElemI1:
		return ConstantValue{Type: typ, I64: int64(int8(le(1)))}
	case ElemU1:
		return ConstantValue{Type: typ, I64: le(1)}
	case ElemI2:
		return ConstantValue{Type: typ, I64: int64(int16(le(2)))}
	case ElemI4:
		return ConstantValue{Type: typ, I64: int64(int32(le(4)))}
	case ElemU4:
		return ConstantValue{Type: typ, I64: le(4)}
	case ElemI8:
		return ConstantValue{Type: typ, I64: le(8)}
	case ElemU8:
		return ConstantValue{Type: typ, I64: le(8)}
	case ElemR4:
		return ConstantValue{Type: typ, F64: float64(math.Float32frombits(uint32(le(4))))}
	case ElemR8:
		return ConstantValue{Type: typ, F64: math.Float64frombits(uint64(le(8)))}
	case ElemString:
		units := make([]uint16, len(blob)/2)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(blob[i*2:])
		}
		return ConstantValue{Type: typ, Str: decodeUTF16(units)}
	case ElemClass: // only ever the null literal: 4-byte zero blob
		return ConstantValue{Type: typ, IsNull: true}
	default:
		return ConstantValue{Type: typ}
	}
}
