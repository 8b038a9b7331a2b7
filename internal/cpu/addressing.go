package cpu

// addrMode identifies an addressing mode; operand resolves to an
// effective address, except accumMode which operates on A directly.
type addrMode uint8

const (
	impliedMode addrMode = iota
	accumMode
	immediateMode
	zeroPageMode
	zeroPageXMode
	zeroPageYMode
	zeroPageIndMode // 65C02 (zp)
	absoluteMode
	absoluteXMode
	absoluteYMode
	indirectMode
	indexedIndirectXMode // (zp,X)
	indirectIndexedYMode // (zp),Y
	relativeMode
)

// operand resolves the effective address for reg addressing modes that
// have one; the PC is advanced past the instruction's operand bytes.
func (c *CPU) operand(bus Bus, mode addrMode) uint16 {
	switch mode {
	case zeroPageMode:
		a := uint16(bus.Read(c.PC))
		c.PC++
		return a
	case zeroPageXMode:
		a := uint16(bus.Read(c.PC) + c.X)
		c.PC++
		return a
	case zeroPageYMode:
		a := uint16(bus.Read(c.PC) + c.Y)
		c.PC++
		return a
	case zeroPageIndMode:
		zp := uint16(bus.Read(c.PC))
		c.PC++
		return c.readZP16(bus, zp)
	case absoluteMode:
		a := bus.ReadU16(c.PC)
		c.PC += 2
		return a
	case absoluteXMode:
		a := bus.ReadU16(c.PC) + uint16(c.X)
		c.PC += 2
		return a
	case absoluteYMode:
		a := bus.ReadU16(c.PC) + uint16(c.Y)
		c.PC += 2
		return a
	case indirectMode:
		ptr := bus.ReadU16(c.PC)
		c.PC += 2
		return c.read16(bus, ptr) // 65C02 fixes the page-wrap bug via ReadU16 semantics
	case indexedIndirectXMode:
		zp := uint16(bus.Read(c.PC) + c.X)
		c.PC++
		return c.readZP16(bus, zp)
	case indirectIndexedYMode:
		zp := uint16(bus.Read(c.PC))
		c.PC++
		base := c.readZP16(bus, zp)
		return base + uint16(c.Y)
	case immediateMode:
		a := c.PC
		c.PC++
		return a
	case relativeMode:
		off := int8(bus.Read(c.PC))
		c.PC++
		return uint16(int32(c.PC) + int32(off))
	default:
		return 0
	}
}

// readZP16 reads a little-endian pointer out of zero page, wrapping
// within zero page on the high-byte fetch (the documented 6502
// behavior the 65C02's JMP (ind) fix does not apply to zp pointers).
func (c *CPU) readZP16(bus Bus, zp uint16) uint16 {
	lo := bus.Read(zp & 0xFF)
	hi := bus.Read((zp + 1) & 0xFF)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) read16(bus Bus, addr uint16) uint16 {
	lo := bus.Read(addr)
	hi := bus.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// tAddr consumes a pending SET latch (if any), redirecting the caller's
// accumulator site to $2000+X for this one use and clearing tFlag so a
// later accumMode op in a following instruction sees plain A again.
func (c *CPU) tAddr() (addr uint16, redirected bool) {
	if !c.tFlag {
		return 0, false
	}
	c.tFlag = false
	return 0x2000 + uint16(c.X), true
}

// load reads the value addressed by mode, reading A directly for
// accumMode (or $2000+X, per a pending SET) and immediate-style fetch
// for immediateMode.
func (c *CPU) load(bus Bus, mode addrMode) uint8 {
	if mode == accumMode {
		if addr, ok := c.tAddr(); ok {
			return bus.Read(addr)
		}
		return c.A
	}
	addr := c.operand(bus, mode)
	return bus.Read(addr)
}

// store writes v to the location addressed by mode.
func (c *CPU) store(bus Bus, mode addrMode, v uint8) {
	if mode == accumMode {
		if addr, ok := c.tAddr(); ok {
			bus.Write(addr, v)
			return
		}
		c.A = v
		return
	}
	addr := c.operand(bus, mode)
	bus.Write(addr, v)
}

// rmwSite resolves the effective address once (advancing PC past the
// operand exactly once) for read-modify-write instructions, returning
// a get/set pair bound to that site.
func (c *CPU) rmwSite(bus Bus, mode addrMode) (get func() uint8, set func(uint8)) {
	if mode == accumMode {
		if addr, ok := c.tAddr(); ok {
			return func() uint8 { return bus.Read(addr) }, func(v uint8) { bus.Write(addr, v) }
		}
		return func() uint8 { return c.A }, func(v uint8) { c.A = v }
	}
	addr := c.operand(bus, mode)
	return func() uint8 { return bus.Read(addr) }, func(v uint8) { bus.Write(addr, v) }
}
