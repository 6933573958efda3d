package build

import "sort"

// blockBoundaries computes the IL offsets at which a basic block must
// start: offset 0, every branch target, the instruction right after
// every branch/ret/throw/endfilter, and every exception-region entry
// boundary (try-start, handler-start, filter-start).
func blockBoundaries(body *MethodBody) []int {
	starts := map[int]bool{0: true}

	for i, instr := range body.Instructions {
		switch mnemonicCategory(instr.Info.Mnemonic) {
		case catBranch, catCondBranch:
			for _, target := range instr.TargetOffsets {
				starts[target] = true
			}
			if i+1 < len(body.Instructions) {
				starts[body.Instructions[i+1].Offset] = true
			}
		case catSwitch:
			for _, target := range instr.TargetOffsets {
				starts[target] = true
			}
			if i+1 < len(body.Instructions) {
				starts[body.Instructions[i+1].Offset] = true
			}
		case catReturn, catThrow:
			if i+1 < len(body.Instructions) {
				starts[body.Instructions[i+1].Offset] = true
			}
		}
	}

	for _, r := range body.Regions {
		starts[r.TryStart] = true
		starts[r.HandlerStart] = true
		if r.Kind == RegionFilter {
			starts[r.FilterStart] = true
		}
	}

	out := make([]int, 0, len(starts))
	for off := range starts {
		out = append(out, off)
	}
	sort.Ints(out)
	return out
}

// opcodeCategory coarsely classifies a mnemonic for control-flow
// purposes; the full per-opcode lowering switch in lower_opcodes.go
// classifies more finely for instruction emission.
type opcodeCategory int

const (
	catOther opcodeCategory = iota
	catBranch
	catCondBranch
	catSwitch
	catReturn
	catThrow
)

func mnemonicCategory(mnemonic string) opcodeCategory {
	switch mnemonic {
	case "br", "br.s", "leave", "leave.s":
		return catBranch
	case "brtrue", "brtrue.s", "brfalse", "brfalse.s",
		"beq", "beq.s", "bne.un", "bne.un.s",
		"bgt", "bgt.s", "bgt.un", "bgt.un.s",
		"blt", "blt.s", "blt.un", "blt.un.s",
		"ble", "ble.s", "ble.un", "ble.un.s",
		"bge", "bge.s", "bge.un", "bge.un.s":
		return catCondBranch
	case "switch":
		return catSwitch
	case "ret":
		return catReturn
	case "throw", "rethrow", "endfilter":
		return catThrow
	default:
		return catOther
	}
}
