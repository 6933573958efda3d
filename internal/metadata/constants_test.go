package metadata

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeConstantBlobSignedAndUnsignedInts(t *testing.T) {
	cv := decodeConstantBlob(ElemI4, []byte{0xFE, 0xFF, 0xFF, 0xFF}) // -2
	assert.Equal(t, int64(-2), cv.I64)

	cv = decodeConstantBlob(ElemU4, []byte{0x02, 0x00, 0x00, 0x00})
	assert.Equal(t, int64(2), cv.I64)
}

func TestDecodeConstantBlobBoolean(t *testing.T) {
	assert.True(t, decodeConstantBlob(ElemBoolean, []byte{0x01}).Bool)
	assert.False(t, decodeConstantBlob(ElemBoolean, []byte{0x00}).Bool)
}

func TestDecodeConstantBlobFloats(t *testing.T) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(1.5))
	cv := decodeConstantBlob(ElemR4, buf[:])
	assert.InDelta(t, 1.5, cv.F64, 0.0001)

	var buf8 [8]byte
	binary.LittleEndian.PutUint64(buf8[:], math.Float64bits(2.25))
	cv = decodeConstantBlob(ElemR8, buf8[:])
	assert.InDelta(t, 2.25, cv.F64, 0.0001)
}

func TestDecodeConstantBlobString(t *testing.T) {
	// "Hi" as UTF-16LE.
	blob := []byte{'H', 0x00, 'i', 0x00}
	cv := decodeConstantBlob(ElemString, blob)
	assert.Equal(t, "Hi", cv.Str)
}

func TestDecodeConstantBlobNullClassLiteral(t *testing.T) {
	cv := decodeConstantBlob(ElemClass, []byte{0x00, 0x00, 0x00, 0x00})
	assert.True(t, cv.IsNull)
}
