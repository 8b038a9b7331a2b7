package cpu

import "pcecore/internal/irq"

type opFunc func(c *CPU, bus Bus, mode addrMode)

type opEntry struct {
	fn     opFunc
	mode   addrMode
	cycles uint64
}

// execute dispatches a single fetched opcode byte, returning base CPU
// cycles (before the speed divisor is applied). Unassigned opcodes run
// as a 2-cycle NOP, matching the documented illegal-opcode behavior.
func (c *CPU) execute(bus Bus, irqc *irq.Controller, opcode uint8) uint64 {
	if opcode == 0x44 { // BSR rel — relative subroutine call
		return c.opBSR(bus)
	}
	if entry, ok := opTable[opcode]; ok {
		if isBlockMove[opcode] {
			return c.execBlockMove(bus, opcode)
		}
		entry.fn(c, bus, entry.mode)
		return entry.cycles
	}
	return 2
}

func (c *CPU) opBSR(bus Bus) uint64 {
	off := int8(bus.Read(c.PC))
	c.PC++
	target := uint16(int32(c.PC) + int32(off))
	c.push16(bus, c.PC-1) // same return-address convention as JSR/RTS
	c.PC = target
	return 8
}

var isBlockMove = map[uint8]bool{
	0x73: true, 0xC3: true, 0xE3: true, 0xF3: true, 0xD3: true,
}

// opTable maps opcode byte to handler, addressing mode, and base cycle
// count. Byte assignments follow the real 6502/65C02/HuC6280 map.
var opTable = map[uint8]opEntry{
	// Loads
	0xA9: {opLDA, immediateMode, 2}, 0xA5: {opLDA, zeroPageMode, 3},
	0xB5: {opLDA, zeroPageXMode, 4}, 0xAD: {opLDA, absoluteMode, 4},
	0xBD: {opLDA, absoluteXMode, 4}, 0xB9: {opLDA, absoluteYMode, 4},
	0xA1: {opLDA, indexedIndirectXMode, 6}, 0xB1: {opLDA, indirectIndexedYMode, 5},
	0xB2: {opLDA, zeroPageIndMode, 5},

	0xA2: {opLDX, immediateMode, 2}, 0xA6: {opLDX, zeroPageMode, 3},
	0xB6: {opLDX, zeroPageYMode, 4}, 0xAE: {opLDX, absoluteMode, 4},
	0xBE: {opLDX, absoluteYMode, 4},

	0xA0: {opLDY, immediateMode, 2}, 0xA4: {opLDY, zeroPageMode, 3},
	0xB4: {opLDY, zeroPageXMode, 4}, 0xAC: {opLDY, absoluteMode, 4},
	0xBC: {opLDY, absoluteXMode, 4},

	// Stores
	0x85: {opSTA, zeroPageMode, 3}, 0x95: {opSTA, zeroPageXMode, 4},
	0x8D: {opSTA, absoluteMode, 4}, 0x9D: {opSTA, absoluteXMode, 5},
	0x99: {opSTA, absoluteYMode, 5}, 0x81: {opSTA, indexedIndirectXMode, 6},
	0x91: {opSTA, indirectIndexedYMode, 6}, 0x92: {opSTA, zeroPageIndMode, 5},

	0x86: {opSTX, zeroPageMode, 3}, 0x96: {opSTX, zeroPageYMode, 4}, 0x8E: {opSTX, absoluteMode, 4},
	0x84: {opSTY, zeroPageMode, 3}, 0x94: {opSTY, zeroPageXMode, 4}, 0x8C: {opSTY, absoluteMode, 4},
	0x64: {opSTZ, zeroPageMode, 3}, 0x74: {opSTZ, zeroPageXMode, 4},
	0x9C: {opSTZ, absoluteMode, 4}, 0x9E: {opSTZ, absoluteXMode, 5},

	// Transfers / stack
	0xAA: {opTAX, impliedMode, 2}, 0xA8: {opTAY, impliedMode, 2},
	0x8A: {opTXA, impliedMode, 2}, 0x98: {opTYA, impliedMode, 2},
	0xBA: {opTSX, impliedMode, 2}, 0x9A: {opTXS, impliedMode, 2},
	0x48: {opPHA, impliedMode, 3}, 0x68: {opPLA, impliedMode, 4},
	0x08: {opPHP, impliedMode, 3}, 0x28: {opPLP, impliedMode, 4},
	0xDA: {opPHX, impliedMode, 3}, 0xFA: {opPLX, impliedMode, 4},
	0x5A: {opPHY, impliedMode, 3}, 0x7A: {opPLY, impliedMode, 4},

	// Logic
	0x29: {opAND, immediateMode, 2}, 0x25: {opAND, zeroPageMode, 3},
	0x35: {opAND, zeroPageXMode, 4}, 0x2D: {opAND, absoluteMode, 4},
	0x3D: {opAND, absoluteXMode, 4}, 0x39: {opAND, absoluteYMode, 4},
	0x21: {opAND, indexedIndirectXMode, 6}, 0x31: {opAND, indirectIndexedYMode, 5},
	0x32: {opAND, zeroPageIndMode, 5},

	0x09: {opORA, immediateMode, 2}, 0x05: {opORA, zeroPageMode, 3},
	0x15: {opORA, zeroPageXMode, 4}, 0x0D: {opORA, absoluteMode, 4},
	0x1D: {opORA, absoluteXMode, 4}, 0x19: {opORA, absoluteYMode, 4},
	0x01: {opORA, indexedIndirectXMode, 6}, 0x11: {opORA, indirectIndexedYMode, 5},
	0x12: {opORA, zeroPageIndMode, 5},

	0x49: {opEOR, immediateMode, 2}, 0x45: {opEOR, zeroPageMode, 3},
	0x55: {opEOR, zeroPageXMode, 4}, 0x4D: {opEOR, absoluteMode, 4},
	0x5D: {opEOR, absoluteXMode, 4}, 0x59: {opEOR, absoluteYMode, 4},
	0x41: {opEOR, indexedIndirectXMode, 6}, 0x51: {opEOR, indirectIndexedYMode, 5},
	0x52: {opEOR, zeroPageIndMode, 5},

	// Arithmetic
	0x69: {opADC, immediateMode, 2}, 0x65: {opADC, zeroPageMode, 3},
	0x75: {opADC, zeroPageXMode, 4}, 0x6D: {opADC, absoluteMode, 4},
	0x7D: {opADC, absoluteXMode, 4}, 0x79: {opADC, absoluteYMode, 4},
	0x61: {opADC, indexedIndirectXMode, 6}, 0x71: {opADC, indirectIndexedYMode, 5},
	0x72: {opADC, zeroPageIndMode, 5},

	0xE9: {opSBC, immediateMode, 2}, 0xE5: {opSBC, zeroPageMode, 3},
	0xF5: {opSBC, zeroPageXMode, 4}, 0xED: {opSBC, absoluteMode, 4},
	0xFD: {opSBC, absoluteXMode, 4}, 0xF9: {opSBC, absoluteYMode, 4},
	0xE1: {opSBC, indexedIndirectXMode, 6}, 0xF1: {opSBC, indirectIndexedYMode, 5},
	0xF2: {opSBC, zeroPageIndMode, 5},

	0xC9: {opCMP, immediateMode, 2}, 0xC5: {opCMP, zeroPageMode, 3},
	0xD5: {opCMP, zeroPageXMode, 4}, 0xCD: {opCMP, absoluteMode, 4},
	0xDD: {opCMP, absoluteXMode, 4}, 0xD9: {opCMP, absoluteYMode, 4},
	0xC1: {opCMP, indexedIndirectXMode, 6}, 0xD1: {opCMP, indirectIndexedYMode, 5},
	0xD2: {opCMP, zeroPageIndMode, 5},

	0xE0: {opCPX, immediateMode, 2}, 0xE4: {opCPX, zeroPageMode, 3}, 0xEC: {opCPX, absoluteMode, 4},
	0xC0: {opCPY, immediateMode, 2}, 0xC4: {opCPY, zeroPageMode, 3}, 0xCC: {opCPY, absoluteMode, 4},

	// Inc/dec
	0xE6: {opINC, zeroPageMode, 5}, 0xF6: {opINC, zeroPageXMode, 6},
	0xEE: {opINC, absoluteMode, 6}, 0xFE: {opINC, absoluteXMode, 7}, 0x1A: {opINC, accumMode, 2},
	0xC6: {opDEC, zeroPageMode, 5}, 0xD6: {opDEC, zeroPageXMode, 6},
	0xCE: {opDEC, absoluteMode, 6}, 0xDE: {opDEC, absoluteXMode, 7}, 0x3A: {opDEC, accumMode, 2},
	0xE8: {opINX, impliedMode, 2}, 0xC8: {opINY, impliedMode, 2},
	0xCA: {opDEX, impliedMode, 2}, 0x88: {opDEY, impliedMode, 2},

	// Shifts
	0x0A: {opASL, accumMode, 2}, 0x06: {opASL, zeroPageMode, 5},
	0x16: {opASL, zeroPageXMode, 6}, 0x0E: {opASL, absoluteMode, 6}, 0x1E: {opASL, absoluteXMode, 7},
	0x4A: {opLSR, accumMode, 2}, 0x46: {opLSR, zeroPageMode, 5},
	0x56: {opLSR, zeroPageXMode, 6}, 0x4E: {opLSR, absoluteMode, 6}, 0x5E: {opLSR, absoluteXMode, 7},
	0x2A: {opROL, accumMode, 2}, 0x26: {opROL, zeroPageMode, 5},
	0x36: {opROL, zeroPageXMode, 6}, 0x2E: {opROL, absoluteMode, 6}, 0x3E: {opROL, absoluteXMode, 7},
	0x6A: {opROR, accumMode, 2}, 0x66: {opROR, zeroPageMode, 5},
	0x76: {opROR, zeroPageXMode, 6}, 0x6E: {opROR, absoluteMode, 6}, 0x7E: {opROR, absoluteXMode, 7},

	// Bit test / trb/tsb
	0x89: {opBITImm, immediateMode, 2},
	0x24: {opBIT, zeroPageMode, 3}, 0x34: {opBIT, zeroPageXMode, 4},
	0x2C: {opBIT, absoluteMode, 4}, 0x3C: {opBIT, absoluteXMode, 4},
	0x14: {opTRB, zeroPageMode, 5}, 0x1C: {opTRB, absoluteMode, 6},
	0x04: {opTSB, zeroPageMode, 5}, 0x0C: {opTSB, absoluteMode, 6},

	// Jumps / calls
	0x4C: {opJMP, absoluteMode, 3}, 0x6C: {opJMP, indirectMode, 6},
	0x20: {opJSR, absoluteMode, 6}, 0x60: {opRTS, impliedMode, 6}, 0x40: {opRTI, impliedMode, 6},
	0x00: {opBRK, impliedMode, 7},

	// Branches
	0x90: {opBranch(flagC, false), relativeMode, 2}, 0xB0: {opBranch(flagC, true), relativeMode, 2},
	0xF0: {opBranch(flagZ, true), relativeMode, 2}, 0xD0: {opBranch(flagZ, false), relativeMode, 2},
	0x30: {opBranch(flagN, true), relativeMode, 2}, 0x10: {opBranch(flagN, false), relativeMode, 2},
	0x70: {opBranch(flagV, true), relativeMode, 2}, 0x50: {opBranch(flagV, false), relativeMode, 2},
	0x80: {opBRA, relativeMode, 3},

	// Flags
	0x18: {opCLC, impliedMode, 2}, 0x38: {opSEC, impliedMode, 2},
	0x58: {opCLI, impliedMode, 2}, 0x78: {opSEI, impliedMode, 2},
	0xD8: {opCLD, impliedMode, 2}, 0xF8: {opSED, impliedMode, 2},
	0xB8: {opCLV, impliedMode, 2},

	0xEA: {opNOP, impliedMode, 2},
	0xCB: {opWAI, impliedMode, 2},

	// HuC6280 extensions
	0x03: {opST0, immediateMode, 5}, 0x13: {opST1, immediateMode, 5}, 0x23: {opST2, immediateMode, 5},
	0x43: {opTMA, immediateMode, 4}, 0x53: {opTAM, immediateMode, 5},
	0x54: {opCSL, impliedMode, 3}, 0xD4: {opCSH, impliedMode, 3},
	0xF4: {opSET, impliedMode, 2},

	0x73: {nil, impliedMode, 17}, 0xC3: {nil, impliedMode, 17},
	0xE3: {nil, impliedMode, 17}, 0xF3: {nil, impliedMode, 17}, 0xD3: {nil, impliedMode, 17},
}
