package build

import (
	"encoding/binary"
	"math"

	"github.com/axiomates/cil2cpp/internal/metadata"
)

// DecodeMethodBody walks a MethodDef's raw CIL byte stream into the
// MethodBody pass 7 lowers, resolving every token/string/field operand
// against r so Source implementations never need their own opcode
// table or branch-target arithmetic.
func DecodeMethodBody(r *metadata.Reader, md metadata.MethodDef) (*MethodBody, error) {
	locals, err := r.LocalVarSigTypeNames(md.LocalVarSigTok)
	if err != nil {
		return nil, err
	}

	instrs, err := decodeInstructions(r, md.Body)
	if err != nil {
		return nil, err
	}

	regions := make([]ExceptionRegion, 0, len(md.ExceptionClauses))
	for _, c := range md.ExceptionClauses {
		regions = append(regions, convertExceptionClause(r, c))
	}

	maxStack := md.MaxStack
	if maxStack == 0 {
		maxStack = 8
	}
	return &MethodBody{
		Instructions:   instrs,
		LocalTypeNames: locals,
		Regions:        regions,
		MaxStack:       maxStack,
	}, nil
}

func convertExceptionClause(r *metadata.Reader, c metadata.ExceptionClause) ExceptionRegion {
	region := ExceptionRegion{
		TryStart:     c.TryOffset,
		TryEnd:       c.TryOffset + c.TryLength,
		HandlerStart: c.HandlerStart,
		HandlerEnd:   c.HandlerEnd,
		FilterStart:  c.FilterStart,
	}
	switch c.Kind {
	case metadata.ClauseCatch:
		region.Kind = RegionCatch
		if tok, ok := r.ResolveToken(c.ClassToken); ok {
			region.CatchTypeName = tok.TypeFullName
		}
	case metadata.ClauseFilter:
		region.Kind = RegionFilter
	case metadata.ClauseFinally:
		region.Kind = RegionFinally
	case metadata.ClauseFault:
		region.Kind = RegionFault
	}
	return region
}

// decodeInstructions decodes a pure CIL byte stream into DecodedInstr
// values, one per opcode, resolving branch targets to absolute offsets
// and token/string operands against r.
func decodeInstructions(r *metadata.Reader, code []byte) ([]DecodedInstr, error) {
	var out []DecodedInstr
	pos := 0
	for pos < len(code) {
		start := pos
		op, info, width, ok := metadata.Lookup(code[pos:])
		if !ok {
			// An unrecognized opcode byte: stop decoding rather than
			// walk off the end of a stream we can no longer interpret
			// the shape of.
			break
		}
		pos += width

		instr := DecodedInstr{Offset: start, Opcode: op, Info: info}
		switch info.Operand {
		case metadata.OperandNone:
			// no operand bytes
		case metadata.OperandInt8:
			instr.IntOp = int64(int8(code[pos]))
			pos++
		case metadata.OperandUint8:
			instr.IntOp = int64(code[pos])
			pos++
		case metadata.OperandVar:
			if width == 1 { // short (.s) forms carry a 1-byte index
				instr.IntOp = int64(code[pos])
				pos++
			} else {
				instr.IntOp = int64(binary.LittleEndian.Uint16(code[pos:]))
				pos += 2
			}
		case metadata.OperandInt32:
			instr.IntOp = int64(int32(binary.LittleEndian.Uint32(code[pos:])))
			pos += 4
		case metadata.OperandInt64:
			instr.IntOp = int64(binary.LittleEndian.Uint64(code[pos:]))
			pos += 8
		case metadata.OperandFloat32:
			instr.FloatOp = float64(math.Float32frombits(binary.LittleEndian.Uint32(code[pos:])))
			pos += 4
		case metadata.OperandFloat64:
			instr.FloatOp = math.Float64frombits(binary.LittleEndian.Uint64(code[pos:]))
			pos += 8
		case metadata.OperandBranchTarget8:
			delta := int64(int8(code[pos]))
			pos++
			instr.TargetOffsets = []int{pos + int(delta)}
		case metadata.OperandBranchTarget32:
			delta := int32(binary.LittleEndian.Uint32(code[pos:]))
			pos += 4
			instr.TargetOffsets = []int{pos + int(delta)}
		case metadata.OperandSwitch:
			count := binary.LittleEndian.Uint32(code[pos:])
			pos += 4
			after := pos + int(count)*4
			targets := make([]int, 0, count)
			for i := uint32(0); i < count; i++ {
				delta := int32(binary.LittleEndian.Uint32(code[pos:]))
				pos += 4
				targets = append(targets, after+int(delta))
			}
			instr.TargetOffsets = targets
		case metadata.OperandString:
			token := binary.LittleEndian.Uint32(code[pos:])
			pos += 4
			if tok, ok := r.ResolveToken(token); ok {
				instr.StrOp = tok.UserString
			}
		case metadata.OperandToken, metadata.OperandSig:
			token := binary.LittleEndian.Uint32(code[pos:])
			pos += 4
			applyResolvedToken(r, &instr, token)
		}
		out = append(out, instr)
	}
	return out, nil
}

// applyResolvedToken fills in a token operand's name fields per its
// resolved kind: a member reference carries both a declaring type
// (StrOp2) and its own name (StrOp), plus arity/void-return for a
// method; a bare type reference (cast/box/newarr/initobj/sizeof
// targets) carries only StrOp. A TypeSpec or otherwise-unresolvable
// token leaves every field blank; the lowering switch's own fallback
// (FindType returning nil, ICallSymbol missing) takes over from there.
func applyResolvedToken(r *metadata.Reader, instr *DecodedInstr, token uint32) {
	tok, ok := r.ResolveToken(token)
	if !ok {
		return
	}
	switch tok.Kind {
	case metadata.TokenMethodDef, metadata.TokenMemberRefMethod, metadata.TokenMethodSpec:
		instr.StrOp = tok.MemberName
		instr.StrOp2 = tok.TypeFullName
		instr.IntOp = int64(tok.ParamCount)
		if tok.ReturnsVoid {
			instr.IntOp2 = 1
		}
	case metadata.TokenField, metadata.TokenMemberRefField:
		instr.StrOp = tok.MemberName
		instr.StrOp2 = tok.TypeFullName
		instr.StrOp3 = tok.FieldTypeName
	case metadata.TokenTypeDef, metadata.TokenTypeRef:
		instr.StrOp = tok.TypeFullName
	}
}
