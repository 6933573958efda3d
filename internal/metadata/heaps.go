package metadata

import (
	"encoding/binary"

	"github.com/axiomates/cil2cpp/internal/diag"
)

// heaps holds the four metadata heap streams an ECMA-335 image carries:
// #Strings (UTF-8, null-terminated), #GUID (16-byte records), #Blob
// (length-prefixed byte runs), and #US (length-prefixed UTF-16 user
// strings). Each is a raw byte slice view into the mapped image; heap
// accessors never copy unless the caller needs an owned string.
type heaps struct {
	strings []byte
	guid    []byte
	blob    []byte
	us      []byte
}

// String reads a null-terminated UTF-8 string from the #Strings heap at
// the given offset.
func (h *heaps) String(offset uint32) (string, error) {
	if int(offset) >= len(h.strings) {
		return "", diag.New(diag.KindMetadataFormatError, "strings heap offset out of range")
	}
	end := offset
	for end < uint32(len(h.strings)) && h.strings[end] != 0 {
		end++
	}
	return string(h.strings[offset:end]), nil
}

// GUID reads a 16-byte GUID record from the #GUID heap. index is
// 1-based per ECMA-335 II.24.2.4.
func (h *heaps) GUID(index uint32) ([16]byte, error) {
	var out [16]byte
	if index == 0 {
		return out, nil
	}
	start := (index - 1) * 16
	if int(start+16) > len(h.guid) {
		return out, diag.New(diag.KindMetadataFormatError, "guid heap index out of range")
	}
	copy(out[:], h.guid[start:start+16])
	return out, nil
}

// Blob reads a length-prefixed byte run from the #Blob heap, decoding
// the compressed-integer length prefix per ECMA-335 II.23.2.
func (h *heaps) Blob(offset uint32) ([]byte, error) {
	if int(offset) >= len(h.blob) {
		return nil, diag.New(diag.KindMetadataFormatError, "blob heap offset out of range")
	}
	n, consumed, err := decodeCompressedUint(h.blob[offset:])
	if err != nil {
		return nil, err
	}
	start := offset + uint32(consumed)
	end := start + n
	if int(end) > len(h.blob) {
		return nil, diag.New(diag.KindMetadataFormatError, "blob run exceeds heap bounds")
	}
	return h.blob[start:end], nil
}

// UserString reads a length-prefixed UTF-16LE string literal from the
// #US heap, dropping the trailing single-byte "has special chars" flag
// ECMA-335 II.24.2.4 appends.
func (h *heaps) UserString(offset uint32) (string, error) {
	if int(offset) >= len(h.us) {
		return "", diag.New(diag.KindMetadataFormatError, "us heap offset out of range")
	}
	n, consumed, err := decodeCompressedUint(h.us[offset:])
	if err != nil {
		return "", err
	}
	start := offset + uint32(consumed)
	end := start + n
	if int(end) > len(h.us) || n == 0 {
		return "", nil
	}
	// n includes the trailing flag byte; the UTF-16 payload is n-1 bytes.
	payload := h.us[start : end-1]
	units := make([]uint16, len(payload)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(payload[i*2:])
	}
	return decodeUTF16(units), nil
}

func decodeUTF16(units []uint16) string {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := (rune(u-0xD800)<<10 | rune(lo-0xDC00)) + 0x10000
				runes = append(runes, r)
				i++
				continue
			}
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}

// decodeCompressedUint decodes an ECMA-335 II.23.2 compressed unsigned
// integer and returns its value plus the number of bytes consumed.
func decodeCompressedUint(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, diag.New(diag.KindMetadataFormatError, "compressed integer truncated")
	}
	first := b[0]
	switch {
	case first&0x80 == 0:
		return uint32(first), 1, nil
	case first&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, diag.New(diag.KindMetadataFormatError, "compressed integer truncated")
		}
		return (uint32(first&0x3F) << 8) | uint32(b[1]), 2, nil
	case first&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, diag.New(diag.KindMetadataFormatError, "compressed integer truncated")
		}
		return (uint32(first&0x1F) << 24) | (uint32(b[1]) << 16) | (uint32(b[2]) << 8) | uint32(b[3]), 4, nil
	default:
		return 0, 0, diag.New(diag.KindMetadataFormatError, "invalid compressed integer prefix")
	}
}
