package metadata

// Opcode identifies one CIL instruction, by its single-byte or
// 0xFE-prefixed two-byte encoding (ECMA-335 III.3 and the partition III
// instruction tables).
type Opcode uint16

// OperandKind tags how many bytes follow an opcode and how to interpret
// them.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandInt8
	OperandUint8
	OperandInt32
	OperandInt64
	OperandFloat32
	OperandFloat64
	OperandString   // US heap token
	OperandToken    // metadata token (type/method/field ref)
	OperandBranchTarget8
	OperandBranchTarget32
	OperandSwitch // uint32 count + count * int32 targets
	OperandVar    // local/arg index, 1 or 2 bytes depending on the opcode form
	OperandSig    // StandAloneSig token (calli)
)

// OpcodeInfo describes one opcode's mnemonic and operand shape.
type OpcodeInfo struct {
	Mnemonic string
	Operand  OperandKind
}

// Table maps every opcode this reader recognizes to its OpcodeInfo.
// Single-byte opcodes use their raw byte value; two-byte (0xFE-prefixed)
// opcodes are offset by 0xFE00 so both families share one map.
var Table = map[Opcode]OpcodeInfo{
	0x00: {"nop", OperandNone},
	0x01: {"break", OperandNone},
	0x02: {"ldarg.0", OperandNone},
	0x03: {"ldarg.1", OperandNone},
	0x04: {"ldarg.2", OperandNone},
	0x05: {"ldarg.3", OperandNone},
	0x06: {"ldloc.0", OperandNone},
	0x07: {"ldloc.1", OperandNone},
	0x08: {"ldloc.2", OperandNone},
	0x09: {"ldloc.3", OperandNone},
	0x0A: {"stloc.0", OperandNone},
	0x0B: {"stloc.1", OperandNone},
	0x0C: {"stloc.2", OperandNone},
	0x0D: {"stloc.3", OperandNone},
	0x0E: {"ldarg.s", OperandVar},
	0x0F: {"ldarga.s", OperandVar},
	0x10: {"starg.s", OperandVar},
	0x11: {"ldloc.s", OperandVar},
	0x12: {"ldloca.s", OperandVar},
	0x13: {"stloc.s", OperandVar},
	0x14: {"ldnull", OperandNone},
	0x15: {"ldc.i4.m1", OperandNone},
	0x16: {"ldc.i4.0", OperandNone},
	0x17: {"ldc.i4.1", OperandNone},
	0x18: {"ldc.i4.2", OperandNone},
	0x19: {"ldc.i4.3", OperandNone},
	0x1A: {"ldc.i4.4", OperandNone},
	0x1B: {"ldc.i4.5", OperandNone},
	0x1C: {"ldc.i4.6", OperandNone},
	0x1D: {"ldc.i4.7", OperandNone},
	0x1E: {"ldc.i4.8", OperandNone},
	0x1F: {"ldc.i4.s", OperandInt8},
	0x20: {"ldc.i4", OperandInt32},
	0x21: {"ldc.i8", OperandInt64},
	0x22: {"ldc.r4", OperandFloat32},
	0x23: {"ldc.r8", OperandFloat64},
	0x25: {"dup", OperandNone},
	0x26: {"pop", OperandNone},
	0x27: {"jmp", OperandToken},
	0x28: {"call", OperandToken},
	0x29: {"calli", OperandSig},
	0x2A: {"ret", OperandNone},
	0x2B: {"br.s", OperandBranchTarget8},
	0x2C: {"brfalse.s", OperandBranchTarget8},
	0x2D: {"brtrue.s", OperandBranchTarget8},
	0x2E: {"beq.s", OperandBranchTarget8},
	0x2F: {"bge.s", OperandBranchTarget8},
	0x30: {"bgt.s", OperandBranchTarget8},
	0x31: {"ble.s", OperandBranchTarget8},
	0x32: {"blt.s", OperandBranchTarget8},
	0x33: {"bne.un.s", OperandBranchTarget8},
	0x34: {"bge.un.s", OperandBranchTarget8},
	0x35: {"bgt.un.s", OperandBranchTarget8},
	0x36: {"ble.un.s", OperandBranchTarget8},
	0x37: {"blt.un.s", OperandBranchTarget8},
	0x38: {"br", OperandBranchTarget32},
	0x39: {"brfalse", OperandBranchTarget32},
	0x3A: {"brtrue", OperandBranchTarget32},
	0x3B: {"beq", OperandBranchTarget32},
	0x3C: {"bge", OperandBranchTarget32},
	0x3D: {"bgt", OperandBranchTarget32},
	0x3E: {"ble", OperandBranchTarget32},
	0x3F: {"blt", OperandBranchTarget32},
	0x40: {"bne.un", OperandBranchTarget32},
	0x41: {"bge.un", OperandBranchTarget32},
	0x42: {"bgt.un", OperandBranchTarget32},
	0x43: {"ble.un", OperandBranchTarget32},
	0x44: {"blt.un", OperandBranchTarget32},
	0x45: {"switch", OperandSwitch},
	0x46: {"ldind.i1", OperandNone},
	0x47: {"ldind.u1", OperandNone},
	0x48: {"ldind.i2", OperandNone},
	0x49: {"ldind.u2", OperandNone},
	0x4A: {"ldind.i4", OperandNone},
	0x4B: {"ldind.u4", OperandNone},
	0x4C: {"ldind.i8", OperandNone},
	0x4D: {"ldind.i", OperandNone},
	0x4E: {"ldind.r4", OperandNone},
	0x4F: {"ldind.r8", OperandNone},
	0x50: {"ldind.ref", OperandNone},
	0x51: {"stind.ref", OperandNone},
	0x52: {"stind.i1", OperandNone},
	0x53: {"stind.i2", OperandNone},
	0x54: {"stind.i4", OperandNone},
	0x55: {"stind.i8", OperandNone},
	0x56: {"stind.r4", OperandNone},
	0x57: {"stind.r8", OperandNone},
	0x58: {"add", OperandNone},
	0x59: {"sub", OperandNone},
	0x5A: {"mul", OperandNone},
	0x5B: {"div", OperandNone},
	0x5C: {"div.un", OperandNone},
	0x5D: {"rem", OperandNone},
	0x5E: {"rem.un", OperandNone},
	0x5F: {"and", OperandNone},
	0x60: {"or", OperandNone},
	0x61: {"xor", OperandNone},
	0x62: {"shl", OperandNone},
	0x63: {"shr", OperandNone},
	0x64: {"shr.un", OperandNone},
	0x65: {"neg", OperandNone},
	0x66: {"not", OperandNone},
	0x67: {"conv.i1", OperandNone},
	0x68: {"conv.i2", OperandNone},
	0x69: {"conv.i4", OperandNone},
	0x6A: {"conv.i8", OperandNone},
	0x6B: {"conv.r4", OperandNone},
	0x6C: {"conv.r8", OperandNone},
	0x6D: {"conv.u4", OperandNone},
	0x6E: {"conv.u8", OperandNone},
	0x6F: {"callvirt", OperandToken},
	0x70: {"cpobj", OperandToken},
	0x71: {"ldobj", OperandToken},
	0x72: {"ldstr", OperandString},
	0x73: {"newobj", OperandToken},
	0x74: {"castclass", OperandToken},
	0x75: {"isinst", OperandToken},
	0x76: {"conv.r.un", OperandNone},
	0x79: {"unbox", OperandToken},
	0x7A: {"throw", OperandNone},
	0x7B: {"ldfld", OperandToken},
	0x7C: {"ldflda", OperandToken},
	0x7D: {"stfld", OperandToken},
	0x7E: {"ldsfld", OperandToken},
	0x7F: {"ldsflda", OperandToken},
	0x80: {"stsfld", OperandToken},
	0x81: {"stobj", OperandToken},
	0x82: {"conv.ovf.i1.un", OperandNone},
	0x83: {"conv.ovf.i2.un", OperandNone},
	0x84: {"conv.ovf.i4.un", OperandNone},
	0x85: {"conv.ovf.i8.un", OperandNone},
	0x86: {"conv.ovf.u1.un", OperandNone},
	0x87: {"conv.ovf.u2.un", OperandNone},
	0x88: {"conv.ovf.u4.un", OperandNone},
	0x89: {"conv.ovf.u8.un", OperandNone},
	0x8A: {"conv.ovf.i.un", OperandNone},
	0x8B: {"conv.ovf.u.un", OperandNone},
	0x8C: {"box", OperandToken},
	0x8D: {"newarr", OperandToken},
	0x8E: {"ldlen", OperandNone},
	0x8F: {"ldelema", OperandToken},
	0x90: {"ldelem.i1", OperandNone},
	0x91: {"ldelem.u1", OperandNone},
	0x92: {"ldelem.i2", OperandNone},
	0x93: {"ldelem.u2", OperandNone},
	0x94: {"ldelem.i4", OperandNone},
	0x95: {"ldelem.u4", OperandNone},
	0x96: {"ldelem.i8", OperandNone},
	0x97: {"ldelem.i", OperandNone},
	0x98: {"ldelem.r4", OperandNone},
	0x99: {"ldelem.r8", OperandNone},
	0x9A: {"ldelem.ref", OperandNone},
	0x9B: {"stelem.i", OperandNone},
	0x9C: {"stelem.i1", OperandNone},
	0x9D: {"stelem.i2", OperandNone},
	0x9E: {"stelem.i4", OperandNone},
	0x9F: {"stelem.i8", OperandNone},
	0xA0: {"stelem.r4", OperandNone},
	0xA1: {"stelem.r8", OperandNone},
	0xA2: {"stelem.ref", OperandNone},
	0xA3: {"ldelem", OperandToken},
	0xA4: {"stelem", OperandToken},
	0xA5: {"unbox.any", OperandToken},
	0xB3: {"conv.ovf.i1", OperandNone},
	0xB4: {"conv.ovf.u1", OperandNone},
	0xB5: {"conv.ovf.i2", OperandNone},
	0xB6: {"conv.ovf.u2", OperandNone},
	0xB7: {"conv.ovf.i4", OperandNone},
	0xB8: {"conv.ovf.u4", OperandNone},
	0xB9: {"conv.ovf.i8", OperandNone},
	0xBA: {"conv.ovf.u8", OperandNone},
	0xC2: {"refanyval", OperandToken},
	0xC3: {"ckfinite", OperandNone},
	0xC6: {"mkrefany", OperandToken},
	0xD0: {"ldtoken", OperandToken},
	0xD1: {"conv.u2", OperandNone},
	0xD2: {"conv.u1", OperandNone},
	0xD3: {"conv.i", OperandNone},
	0xD4: {"conv.ovf.i", OperandNone},
	0xD5: {"conv.ovf.u", OperandNone},
	0xD6: {"add.ovf", OperandNone},
	0xD7: {"add.ovf.un", OperandNone},
	0xD8: {"mul.ovf", OperandNone},
	0xD9: {"mul.ovf.un", OperandNone},
	0xDA: {"sub.ovf", OperandNone},
	0xDB: {"sub.ovf.un", OperandNone},
	0xDC: {"endfinally", OperandNone},
	0xDD: {"leave", OperandBranchTarget32},
	0xDE: {"leave.s", OperandBranchTarget8},
	0xDF: {"stind.i", OperandNone},
	0xE0: {"conv.u", OperandNone},

	// Two-byte opcodes, offset by 0xFE00.
	0xFE00: {"arglist", OperandNone},
	0xFE01: {"ceq", OperandNone},
	0xFE02: {"cgt", OperandNone},
	0xFE03: {"cgt.un", OperandNone},
	0xFE04: {"clt", OperandNone},
	0xFE05: {"clt.un", OperandNone},
	0xFE06: {"ldftn", OperandToken},
	0xFE07: {"ldvirtftn", OperandToken},
	0xFE09: {"ldarg", OperandVar},
	0xFE0A: {"ldarga", OperandVar},
	0xFE0B: {"starg", OperandVar},
	0xFE0C: {"ldloc", OperandVar},
	0xFE0D: {"ldloca", OperandVar},
	0xFE0E: {"stloc", OperandVar},
	0xFE0F: {"localloc", OperandNone},
	0xFE11: {"endfilter", OperandNone},
	0xFE12: {"unaligned.", OperandUint8},
	0xFE13: {"volatile.", OperandNone},
	0xFE14: {"tail.", OperandNone},
	0xFE15: {"initobj", OperandToken},
	0xFE16: {"constrained.", OperandToken},
	0xFE17: {"cpblk", OperandNone},
	0xFE18: {"initblk", OperandNone},
	0xFE19: {"rethrow", OperandNone},
	0xFE1A: {"sizeof", OperandToken},
	0xFE1B: {"refanytype", OperandNone},
	0xFE1C: {"readonly.", OperandNone},
}

// Lookup decodes the opcode at the front of code and returns its info
// plus how many prefix bytes (1 or 2) it occupied.
func Lookup(code []byte) (Opcode, OpcodeInfo, int, bool) {
	if len(code) == 0 {
		return 0, OpcodeInfo{}, 0, false
	}
	if code[0] == 0xFE {
		if len(code) < 2 {
			return 0, OpcodeInfo{}, 0, false
		}
		op := Opcode(0xFE00) | Opcode(code[1])
		info, ok := Table[op]
		return op, info, 2, ok
	}
	op := Opcode(code[0])
	info, ok := Table[op]
	return op, info, 1, ok
}
