package vdc

import (
	"pcecore/internal/irq"
	"pcecore/internal/vce"
)

// dotsPerScanline is fixed regardless of HSR/HDR dot-clock selection;
// horizontal timing only changes which pixels within the line count as
// active, not the line's total duration in master cycles.
const dotsPerScanline = 1365

// Advance steps the VDC by masterCycles master cycles, crossing
// Scanline boundaries as needed, latching per-line scroll state,
// raising RCR/VBL requests, running any pending DMA, and rasterizing
// completed lines into the frame buffer.
func (v *VDC) Advance(masterCycles uint64, irqc *irq.Controller, palette *vce.VCE) {
	if v.Busy > 0 {
		if uint64(v.Busy) > masterCycles {
			v.Busy -= uint32(masterCycles)
		} else {
			v.Busy = 0
		}
	}

	v.PixelAccum += masterCycles
	for v.PixelAccum >= dotsPerScanline {
		v.PixelAccum -= dotsPerScanline
		v.advanceScanline(irqc, palette)
	}
}

func (v *VDC) advanceScanline(irqc *irq.Controller, palette *vce.VCE) {
	v.latchLine(v.Scanline)

	if v.Scanline >= v.activeStart && v.Scanline < v.activeEnd {
		rcrTarget := int(v.Regs[regRCR]&0x3FF) - 0x40
		if v.Scanline-v.activeStart == rcrTarget {
			v.Status |= statusRCR
			if v.Regs[regCR]&0x0004 != 0 {
				irqc.Set(irq.IRQ1)
			}
		}
		v.renderRow(v.Scanline-v.activeStart, palette)
	}

	if v.Scanline == v.activeEnd {
		v.InVBlank = true
		v.Status |= statusVBL
		if v.Regs[regCR]&0x0008 != 0 {
			irqc.Set(irq.IRQ1)
		}
		if v.SATBAutoReload {
			v.startSATDMA()
		}
		v.frameReady = true
	}

	if v.SATDMAPending && v.SATDMARemain > 0 {
		v.SATDMARemain--
		if v.SATDMARemain == 0 {
			v.runSATDMA()
		}
	}
	if v.VRAMDMAPending {
		v.runVRAMDMA()
	}

	v.Scanline++
	if v.Scanline >= totalScanlines {
		v.Scanline = 0
		v.InVBlank = false
	}
}

func (v *VDC) latchLine(line int) {
	if line < 0 || line >= totalScanlines {
		return
	}
	active := line >= v.activeStart && line < v.activeEnd
	v.LineLatches[line] = LineLatch{
		Bx:    v.Regs[regBXR] & 0x3FF,
		By:    v.Regs[regBYR] & 0x1FF,
		Valid: active,
	}
}
