// Package emulator implements the Emulator, which owns the CPU and the
// memory Bus (and through it every peripheral), and the master-clock
// scheduler that drives them in lockstep.
package emulator

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"pcecore/internal/config"
	"pcecore/internal/cpu"
	"pcecore/internal/debug"
	"pcecore/internal/memory"
	"pcecore/internal/psg"
	"pcecore/internal/vdc"
)

// Emulator owns the CPU and the memory fabric (which in turn owns
// every peripheral) and drives the scheduling loop described in the
// component design.
type Emulator struct {
	CPU *cpu.CPU
	Bus *memory.Bus

	cfg    config.Config
	logger *debug.Logger

	audioPending [][]int16

	// TotalCycles is the cumulative master-cycle count since the
	// machine was last reset; part of the save-state snapshot.
	TotalCycles uint64
}

// New constructs an Emulator from cfg, with logging optionally enabled
// via logger (nil disables logging entirely).
func New(cfg config.Config, logger *debug.Logger) *Emulator {
	return &Emulator{
		CPU:    cpu.New(logger),
		Bus:    memory.New(cfg.MasterClockHz, cfg.AudioSampleRate, cfg.AudioChunkSize, cfg.FrameWidth, cfg.FrameHeight, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// LoadHuCard installs a cartridge image and resets the machine.
func (e *Emulator) LoadHuCard(data []byte) error {
	if err := e.Bus.LoadHuCard(data); err != nil {
		return fmt.Errorf("emulator: %w", err)
	}
	e.Bus.Reset()
	e.CPU.Reset(e.Bus)
	e.TotalCycles = 0
	return nil
}

// LoadProgram is the debug/test entry point described in the external
// interface: it places data at baseAddr, primes the reset vector, and
// resets the machine.
func (e *Emulator) LoadProgram(baseAddr uint16, data []byte) {
	e.Bus.LoadProgram(baseAddr, data)
	e.CPU.Reset(e.Bus)
	e.TotalCycles = 0
}

// SetJoypadInput records the host's current button state (active-low,
// bit 0 = I, per the joypad port's contract).
func (e *Emulator) SetJoypadInput(activeLowState uint8) {
	e.Bus.Joypad.SetButtons(activeLowState)
}

// LoadBackupRam and LoadBram restore persistent memory, failing if the
// supplied data does not match the currently configured region's size.
func (e *Emulator) LoadBackupRam(data []byte) error {
	want := 0
	if e.Bus.Cart != nil {
		want = len(e.Bus.Cart.CartRAM)
	}
	if e.Bus.Cart == nil || want != len(data) {
		return fmt.Errorf("emulator: backup RAM size mismatch (have %d, want %d)", len(data), want)
	}
	copy(e.Bus.Cart.CartRAM, data)
	return nil
}

func (e *Emulator) LoadBram(data []byte) error {
	if len(data) != len(e.Bus.BRAM) {
		return fmt.Errorf("emulator: bram size mismatch (have %d, want %d)", len(data), len(e.Bus.BRAM))
	}
	copy(e.Bus.BRAM[:], data)
	return nil
}

// SaveBackupRam and SaveBram export persistent memory for the host to
// write to disk.
func (e *Emulator) SaveBackupRam() []byte {
	if e.Bus.Cart == nil || len(e.Bus.Cart.CartRAM) == 0 {
		return nil
	}
	out := make([]byte, len(e.Bus.Cart.CartRAM))
	copy(out, e.Bus.Cart.CartRAM)
	return out
}

func (e *Emulator) SaveBram() []byte {
	out := make([]byte, len(e.Bus.BRAM))
	copy(out, e.Bus.BRAM[:])
	return out
}

// Tick runs exactly one CPU instruction (or interrupt dispatch) and
// advances every peripheral by the master cycles it consumed, per the
// scheduler's fixed pipeline order: CPU, then timer, PSG, VDC.
func (e *Emulator) Tick() uint64 {
	consumed := e.CPU.Step(e.Bus, e.Bus.IRQ)
	e.Bus.Advance(consumed)
	e.TotalCycles += consumed
	if chunk := e.Bus.PSG.TakeChunk(); chunk != nil {
		e.audioPending = append(e.audioPending, chunk)
	}
	return consumed
}

// RunUntil loops Tick until cycleBudget master cycles have been
// consumed, returning the actual total consumed (which may exceed the
// budget by at most one instruction's worth of cycles).
func (e *Emulator) RunUntil(cycleBudget uint64) uint64 {
	var total uint64
	for total < cycleBudget {
		total += e.Tick()
	}
	return total
}

// TakeFrame returns the most recently completed frame buffer, or nil.
func (e *Emulator) TakeFrame() []uint32 {
	return e.Bus.VDC.TakeFrame()
}

// TakeAudioSamples returns the oldest pending audio chunk, or nil if
// none has completed yet.
func (e *Emulator) TakeAudioSamples() []int16 {
	if len(e.audioPending) == 0 {
		return nil
	}
	chunk := e.audioPending[0]
	e.audioPending = e.audioPending[1:]
	return chunk
}

// DisplayWidth and DisplayHeight report the configured frame dimensions.
func (e *Emulator) DisplayWidth() int  { return e.cfg.FrameWidth }
func (e *Emulator) DisplayHeight() int { return e.cfg.FrameHeight }

// ReadMemory is an introspection accessor for the host hex viewer. It
// reads through Bus.Read, so RAM, ROM, cart RAM and BRAM reads have no
// side effects, but an address in a Hardware-mapped bank performs the
// same I/O read the CPU would, latch side effects included (a VDC
// status read, for example, clears its request bits and IRQ1).
func (e *Emulator) ReadMemory(addr uint16) uint8 {
	return e.Bus.Read(addr)
}

// CurrentScanline is a side-effect-free introspection accessor.
func (e *Emulator) CurrentScanline() int {
	return e.Bus.VDC.CurrentScanline()
}

const stateVersion = 2

// state is the gob-serializable snapshot of the entire machine,
// versioned so LoadState can reject an incompatible blob outright
// rather than partially applying it.
type state struct {
	Version int

	TotalCycles uint64

	A, X, Y, S, P uint8
	PC            uint16
	MPR           [8]uint8

	WRAM [8192]byte
	BRAM [2048]byte

	VDC vdcState
	VCE vceState
	PSG psgState

	TimerReload    uint8
	TimerCounter   uint8
	TimerEnabled   bool
	TimerPrescaler uint32

	IRQDisable uint8
	IRQRequest uint8
}

// vdcState is the VDC's save-state payload: register file, memories,
// and every piece of mid-frame timing state an in-progress frame
// needs to resume from exactly where it left off.
type vdcState struct {
	Regs [20]uint16
	VRAM [0x8000]uint16
	SAT  [256]uint16

	Status         uint8
	Busy           uint32
	SATBAutoReload bool

	Scanline   int
	PixelAccum uint64
	InVBlank   bool

	LineLatches [263]vdc.LineLatch

	VRAMDMAPending bool
	VRAMDMAWords   int
	SATDMAPending  bool
	SATDMARemain   int
}

type vceState struct {
	Palette [512]uint16
}

type psgState struct {
	Channels [6]psg.Channel
	Selected uint8

	MainBalanceL uint8
	MainBalanceR uint8

	LFOFreq    uint8
	LFOControl uint8

	CycleAccum uint64
}

// saveVDCState and loadVDCState copy the VDC's exported fields to and
// from the snapshot struct.
func saveVDCState(v *vdc.VDC) vdcState {
	return vdcState{
		Regs: v.Regs,
		VRAM: v.VRAM,
		SAT:  v.SAT,

		Status:         v.Status,
		Busy:           v.Busy,
		SATBAutoReload: v.SATBAutoReload,

		Scanline:   v.Scanline,
		PixelAccum: v.PixelAccum,
		InVBlank:   v.InVBlank,

		LineLatches: v.LineLatches,

		VRAMDMAPending: v.VRAMDMAPending,
		VRAMDMAWords:   v.VRAMDMAWords,
		SATDMAPending:  v.SATDMAPending,
		SATDMARemain:   v.SATDMARemain,
	}
}

func loadVDCState(v *vdc.VDC, s vdcState) {
	v.Regs = s.Regs
	v.VRAM = s.VRAM
	v.SAT = s.SAT

	v.Status = s.Status
	v.Busy = s.Busy
	v.SATBAutoReload = s.SATBAutoReload

	v.Scanline = s.Scanline
	v.PixelAccum = s.PixelAccum
	v.InVBlank = s.InVBlank

	v.LineLatches = s.LineLatches

	v.VRAMDMAPending = s.VRAMDMAPending
	v.VRAMDMAWords = s.VRAMDMAWords
	v.SATDMAPending = s.SATDMAPending
	v.SATDMARemain = s.SATDMARemain

	v.RecomputeWindow()
}

func savePSGState(p *psg.PSG) psgState {
	return psgState{
		Channels: p.Channels,
		Selected: p.Selected,

		MainBalanceL: p.MainBalanceL,
		MainBalanceR: p.MainBalanceR,

		LFOFreq:    p.LFOFreq,
		LFOControl: p.LFOControl,

		CycleAccum: p.CycleAccum,
	}
}

func loadPSGState(p *psg.PSG, s psgState) {
	p.Channels = s.Channels
	p.Selected = s.Selected

	p.MainBalanceL = s.MainBalanceL
	p.MainBalanceR = s.MainBalanceR

	p.LFOFreq = s.LFOFreq
	p.LFOControl = s.LFOControl

	p.CycleAccum = s.CycleAccum
	p.Pending = p.Pending[:0]
	p.ReadyChunks = nil
}

// SaveState serializes the entire core state into a tagged binary
// blob suitable for LoadState on a freshly constructed Emulator with
// the same cartridge loaded.
func (e *Emulator) SaveState() ([]byte, error) {
	s := state{
		Version:     stateVersion,
		TotalCycles: e.TotalCycles,

		A: e.CPU.A, X: e.CPU.X, Y: e.CPU.Y, S: e.CPU.S, P: e.CPU.P,
		PC:  e.CPU.PC,
		MPR: e.Bus.MPR,

		WRAM: e.Bus.WRAM,
		BRAM: e.Bus.BRAM,

		VDC: saveVDCState(e.Bus.VDC),
		VCE: vceState{Palette: e.Bus.VCE.Palette},
		PSG: savePSGState(e.Bus.PSG),

		TimerReload:    e.Bus.Timer.Reload,
		TimerCounter:   e.Bus.Timer.Counter,
		TimerEnabled:   e.Bus.Timer.Enabled,
		TimerPrescaler: e.Bus.Timer.Prescaler,

		IRQDisable: e.Bus.IRQ.Disable,
		IRQRequest: e.Bus.IRQ.Request,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a previously saved snapshot. On any error the
// Emulator's state is left untouched.
func (e *Emulator) LoadState(data []byte) error {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if s.Version != stateVersion {
		return fmt.Errorf("load state: version mismatch (have %d, want %d)", s.Version, stateVersion)
	}

	e.TotalCycles = s.TotalCycles

	e.CPU.A, e.CPU.X, e.CPU.Y, e.CPU.S, e.CPU.P = s.A, s.X, s.Y, s.S, s.P
	e.CPU.PC = s.PC
	e.Bus.MPR = s.MPR
	e.Bus.RefreshMPR()

	e.Bus.WRAM = s.WRAM
	e.Bus.BRAM = s.BRAM

	loadVDCState(e.Bus.VDC, s.VDC)
	e.Bus.VCE.Palette = s.VCE.Palette
	loadPSGState(e.Bus.PSG, s.PSG)

	e.Bus.Timer.Reload = s.TimerReload
	e.Bus.Timer.Counter = s.TimerCounter
	e.Bus.Timer.Enabled = s.TimerEnabled
	e.Bus.Timer.Prescaler = s.TimerPrescaler

	e.Bus.IRQ.Disable = s.IRQDisable
	e.Bus.IRQ.Request = s.IRQRequest
	return nil
}
