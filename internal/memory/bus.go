// Package memory implements the HuC6280 bus's memory fabric: the
// 8-entry MPR bank table resolved eagerly to tagged slot descriptors,
// 8 KiB of work RAM, 2 KiB of battery-backed BRAM behind an unlock
// latch, and the low-8-KiB I/O fabric dispatch to the VDC/VCE/PSG/
// Timer/IRQ/Joypad peripherals.
package memory

import (
	"fmt"

	"pcecore/internal/debug"
	"pcecore/internal/irq"
	"pcecore/internal/joypad"
	"pcecore/internal/psg"
	"pcecore/internal/timer"
	"pcecore/internal/vce"
	"pcecore/internal/vdc"
)

const (
	PageSize = 8192
	numBanks = 8

	wramSize = 8192
	bramSize = 2048

	bramSpecialPage = 0xF7 // MPR value reserved for the BRAM window
)

// slotTag identifies which backing store an MPR entry currently
// resolves to.
type slotTag uint8

const (
	slotRAM slotTag = iota
	slotROM
	slotCartRAM
	slotBRAM
	slotHardware
)

type slot struct {
	tag  slotTag
	base int // byte offset into the tagged store, for RAM/ROM/CartRAM
}

// Bus is the Emulator's single aggregate root for everything the CPU
// can address: RAM, the loaded cartridge, BRAM, and every memory-mapped
// peripheral.
type Bus struct {
	MPR   [8]uint8
	banks [numBanks]slot

	WRAM         [wramSize]byte
	BRAM         [bramSize]byte
	bramUnlocked bool

	Cart *Cartridge

	VDC    *vdc.VDC
	VCE    *vce.VCE
	PSG    *psg.PSG
	Timer  *timer.Timer
	IRQ    *irq.Controller
	Joypad *joypad.Joypad

	logger *debug.Logger
}

// New returns a Bus with every peripheral constructed and an empty
// cartridge slot; LoadHuCard or LoadProgram must run before Reset for
// the address space to do anything useful.
func New(masterClockHz uint64, sampleRate uint32, audioChunkSize, frameWidth, frameHeight int, logger *debug.Logger) *Bus {
	b := &Bus{
		VDC:    vdc.New(frameWidth, frameHeight, logger),
		VCE:    vce.New(),
		PSG:    psg.New(masterClockHz, sampleRate, audioChunkSize, logger),
		Timer:  timer.New(),
		IRQ:    irq.New(logger),
		Joypad: joypad.New(),
		logger: logger,
	}
	return b
}

// Reset primes MPR[7] so the reset vector is visible, then resolves
// every bank and resets every peripheral.
func (b *Bus) Reset() {
	for i := range b.MPR {
		b.MPR[i] = 0
	}
	b.MPR[7] = 0
	for i := range b.banks {
		b.updateMPR(i)
	}
	b.bramUnlocked = false
	b.VDC.Reset()
	b.VCE.Reset()
	b.PSG.Reset()
	b.Timer.Reset()
	b.IRQ.Reset()
	b.Joypad.Reset()
}

// LoadHuCard parses and installs a cartridge image.
func (b *Bus) LoadHuCard(data []byte) error {
	cart, err := LoadHuCard(data)
	if err != nil {
		return fmt.Errorf("bus: %w", err)
	}
	b.Cart = cart
	for i := range b.banks {
		b.updateMPR(i)
	}
	return nil
}

// LoadProgram is a debug/test entry point: it places bytes at baseAddr
// as a flat ROM image occupying MPR bank (baseAddr>>13), primes the
// reset vector to baseAddr, and resets.
func (b *Bus) LoadProgram(baseAddr uint16, data []byte) {
	b.Cart = &Cartridge{ROM: padToPage(data)}
	b.Reset()
	bank := int(baseAddr >> 13)
	b.MPR[bank] = uint8(bank)
	b.updateMPR(bank)
	b.MPR[7] = uint8(bank)
	b.updateMPR(7)
	vector := baseAddr
	b.writeROMVector(0xFFFE, vector)
}

// writeROMVector pokes the reset vector directly into the cartridge
// image backing MPR[7]'s bank (a test/debug convenience; real carts
// bake this in at manufacture time).
func (b *Bus) writeROMVector(addr uint16, vector uint16) {
	if b.Cart == nil {
		return
	}
	offset := int(addr) % PageSize
	pageBase := (int(b.MPR[7]) % b.Cart.RomPages()) * PageSize
	if pageBase+offset+1 < len(b.Cart.ROM) {
		b.Cart.ROM[pageBase+offset] = uint8(vector & 0xFF)
		b.Cart.ROM[pageBase+offset+1] = uint8(vector >> 8)
	}
}

// updateMPR resolves bank's MPR value to a tagged slot descriptor,
// mirroring non-power-of-two ROM sizes across the 128-logical-bank
// space the way the original hardware's cart bus does.
func (b *Bus) updateMPR(bank int) {
	value := int(b.MPR[bank])
	romPages := b.romPages()
	cartPages := b.cartRamPages()

	var s slot
	switch {
	case value == 0xFF:
		s = slot{tag: slotHardware}
	case value == bramSpecialPage:
		s = slot{tag: slotBRAM}
	case value >= 0xF8 && value <= 0xFD:
		ramPages := 1 // fixed 8 KiB of WRAM; always page 0
		logical := (value - 0xF8) % ramPages
		s = slot{tag: slotRAM, base: logical * PageSize}
	case cartPages > 0 && value >= 0x80:
		cartPage := (value - 0x80) % cartPages
		s = slot{tag: slotCartRAM, base: cartPage * PageSize}
	case romPages > 0:
		page := mirrorRomBank(value, romPages)
		s = slot{tag: slotROM, base: page * PageSize}
	default:
		s = slot{tag: slotRAM, base: 0}
	}
	b.banks[bank] = s
}

func (b *Bus) romPages() int {
	if b.Cart == nil {
		return 0
	}
	return b.Cart.RomPages()
}

func (b *Bus) cartRamPages() int {
	if b.Cart == nil {
		return 0
	}
	return b.Cart.CartRamPages()
}

// mirrorRomBank maps a logical ROM bank (0..127) to a physical ROM
// page, splitting the 128-bank address space at bank 64 for
// non-power-of-two ROM sizes so each half mirrors within itself.
func mirrorRomBank(logical, romPages int) int {
	if romPages == 0 {
		return 0
	}
	if isPowerOfTwo(romPages) {
		return logical % romPages
	}
	lower := nextPowerOfTwo(romPages) >> 1
	upper := romPages - lower

	bank := logical & 0x7F
	if bank < 64 {
		return bank % max1(lower)
	}
	return (bank-64)%max1(upper) + lower
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// resolve returns the bank's slot and the page-local offset for addr.
func (b *Bus) resolve(addr uint16) (slot, int) {
	bank := int(addr >> 13)
	offset := int(addr) & (PageSize - 1)
	return b.banks[bank], offset
}

// Read returns the byte at addr, dispatching Hardware reads into the
// I/O fabric.
func (b *Bus) Read(addr uint16) uint8 {
	s, offset := b.resolve(addr)
	switch s.tag {
	case slotRAM:
		return b.WRAM[offset%wramSize]
	case slotROM:
		if b.Cart != nil && s.base+offset < len(b.Cart.ROM) {
			return b.Cart.ROM[s.base+offset]
		}
		return 0xFF
	case slotCartRAM:
		if b.Cart != nil && s.base+offset < len(b.Cart.CartRAM) {
			return b.Cart.CartRAM[s.base+offset]
		}
		return 0xFF
	case slotBRAM:
		if !b.bramUnlocked {
			return 0xFF
		}
		if offset < bramSize {
			return b.BRAM[offset]
		}
		return 0xFF
	case slotHardware:
		return b.readIO(uint16(offset))
	}
	return 0xFF
}

// Write stores v at addr; ROM writes are silently dropped.
func (b *Bus) Write(addr uint16, v uint8) {
	s, offset := b.resolve(addr)
	switch s.tag {
	case slotRAM:
		b.WRAM[offset%wramSize] = v
	case slotROM:
		// cartridge ROM is read-only
	case slotCartRAM:
		if b.Cart != nil && s.base+offset < len(b.Cart.CartRAM) {
			b.Cart.CartRAM[s.base+offset] = v
		}
	case slotBRAM:
		if b.bramUnlocked && offset < bramSize {
			b.BRAM[offset] = v
		}
	case slotHardware:
		b.writeIO(uint16(offset), v)
	}
}

// ReadU16 reads a little-endian word, used for vector fetches.
func (b *Bus) ReadU16(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteVDCSelect/WriteVDCDataLow/WriteVDCDataHigh satisfy cpu.Bus for
// the ST0/ST1/ST2 opcodes, which bypass the MPR and address the VDC
// directly.
func (b *Bus) WriteVDCSelect(v uint8)   { b.VDC.WriteAddr(v) }
func (b *Bus) WriteVDCDataLow(v uint8)  { b.VDC.WriteDataLow(v) }
func (b *Bus) WriteVDCDataHigh(v uint8) { b.VDC.WriteDataHigh(v) }

// WriteMPR and ReadMPR satisfy cpu.Bus for TAM/TMA: the MPR bank table
// is resolved here, in the memory fabric, since that's what actually
// uses it for address decode.
func (b *Bus) WriteMPR(index int, v uint8) {
	b.MPR[index] = v
	b.updateMPR(index)
}

func (b *Bus) ReadMPR(index int) uint8 {
	return b.MPR[index]
}

// RefreshMPR re-resolves every bank from the current MPR array; used
// after a bulk restore (e.g. LoadState) writes b.MPR directly.
func (b *Bus) RefreshMPR() {
	for i := range b.banks {
		b.updateMPR(i)
	}
}

// Advance steps every peripheral by masterCycles master cycles; called
// once per CPU instruction by the scheduler.
func (b *Bus) Advance(masterCycles uint64) {
	b.Timer.Advance(masterCycles, b.IRQ)
	b.PSG.Advance(masterCycles)
	b.VDC.Advance(masterCycles, b.IRQ, b.VCE)
}
