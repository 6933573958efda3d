package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCompressedUintOneTwoFourByteForms(t *testing.T) {
	n, consumed, err := decodeCompressedUint([]byte{0x03})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x03), n)
	assert.Equal(t, 1, consumed)

	n, consumed, err = decodeCompressedUint([]byte{0x80, 0x80})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80), n)
	assert.Equal(t, 2, consumed)

	n, consumed, err = decodeCompressedUint([]byte{0xC0, 0x00, 0x40, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4000), n)
	assert.Equal(t, 4, consumed)
}

func TestDecodeCompressedUintTruncatedIsMetadataFormatError(t *testing.T) {
	_, _, err := decodeCompressedUint(nil)
	assert.Error(t, err)
}

func TestHeapsStringReadsNullTerminated(t *testing.T) {
	h := &heaps{strings: []byte("\x00Foo\x00Bar\x00")}
	s, err := h.String(1)
	require.NoError(t, err)
	assert.Equal(t, "Foo", s)

	s, err = h.String(5)
	require.NoError(t, err)
	assert.Equal(t, "Bar", s)
}

func TestHeapsBlobReadsLengthPrefixedRun(t *testing.T) {
	h := &heaps{blob: []byte{0x00, 0x03, 0xAA, 0xBB, 0xCC}}
	b, err := h.Blob(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, b)
}

func TestHeapsUserStringDecodesUTF16(t *testing.T) {
	// "Hi" in UTF-16LE plus the trailing flag byte, length-prefixed.
	h := &heaps{us: []byte{0x00, 0x05, 'H', 0x00, 'i', 0x00, 0x00}}
	s, err := h.UserString(1)
	require.NoError(t, err)
	assert.Equal(t, "Hi", s)
}

func TestCodedIndexSizeGrowsWithRowCount(t *testing.T) {
	r := &Reader{tableRowCounts: map[TableID]uint32{TableTypeDef: 10}}
	assert.Equal(t, uint32(2), r.codedIndexSize(2, TableTypeDef, TableTypeRef))

	r.tableRowCounts[TableTypeDef] = 1 << 20
	assert.Equal(t, uint32(4), r.codedIndexSize(2, TableTypeDef, TableTypeRef))
}

func TestOpcodeLookupSingleAndTwoByte(t *testing.T) {
	op, info, n, ok := Lookup([]byte{0x28, 0x01, 0x00, 0x00, 0x0A})
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "call", info.Mnemonic)
	assert.Equal(t, Opcode(0x28), op)

	op, info, n, ok = Lookup([]byte{0xFE, 0x01})
	require.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ceq", info.Mnemonic)
	assert.Equal(t, Opcode(0xFE01), op)
}

func TestOpcodeLookupUnknownByte(t *testing.T) {
	_, _, _, ok := Lookup([]byte{0xF0})
	assert.False(t, ok)
}

func TestDecodeSequencePointBlobHiddenAndVisible(t *testing.T) {
	// localSignatureToken=0, first record: il-delta=0, hidden (0,0),
	// second record: il-delta=5, lines=1, cols=2.
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x05, 0x01, 0x02}
	points, err := decodeSequencePointBlob(data)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].IsHidden)
	assert.Equal(t, hiddenSequencePointLine, points[0].StartLine)
	assert.False(t, points[1].IsHidden)
	assert.Equal(t, 5, points[1].ILOffset)
}
