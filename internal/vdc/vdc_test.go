package vdc

import "testing"

// TestAutoIncrementAddressing matches the documented scenario: CR set to
// the "+32" increment code, MAWR=0x0100, three data-port writes landing at
// 0x0100, 0x0120, 0x0140.
func TestAutoIncrementAddressing(t *testing.T) {
	v := New(256, 240, nil)

	v.WriteAddr(regCR)
	v.WriteDataLow(0x00)
	v.WriteDataHigh(0x08) // bits 11:12 = 01 -> +32

	v.WriteAddr(regMAWR)
	v.WriteDataLow(0x00)
	v.WriteDataHigh(0x01) // MAWR = 0x0100

	v.WriteAddr(regVWR)
	for _, b := range []uint8{0xAA, 0xBB, 0xCC} {
		v.Busy = 0 // bypass the write-busy cooldown between port writes
		v.WriteDataLow(b)
		v.WriteDataHigh(0x00)
	}

	if v.VRAM[0x0100] != 0x00AA {
		t.Errorf("VRAM[0x100] = %#x, want 0x00AA", v.VRAM[0x0100])
	}
	if v.VRAM[0x0120] != 0x00BB {
		t.Errorf("VRAM[0x120] = %#x, want 0x00BB", v.VRAM[0x0120])
	}
	if v.VRAM[0x0140] != 0x00CC {
		t.Errorf("VRAM[0x140] = %#x, want 0x00CC", v.VRAM[0x0140])
	}
}

func TestDataPortWriteIsBusyGated(t *testing.T) {
	v := New(256, 240, nil)
	v.WriteAddr(regMAWR)
	v.WriteDataLow(0x00)
	v.WriteDataHigh(0x00)

	v.WriteAddr(regVWR)
	v.WriteDataLow(0x11)
	v.WriteDataHigh(0x00) // lands, sets busy
	if v.VRAM[0] != 0x0011 {
		t.Fatalf("first write should land, VRAM[0] = %#x", v.VRAM[0])
	}
	v.WriteDataLow(0x22)
	v.WriteDataHigh(0x00) // dropped: still busy
	if v.VRAM[1] != 0 {
		t.Fatalf("second write should be dropped while busy, VRAM[1] = %#x", v.VRAM[1])
	}
}

// TestSpriteOverflow matches the documented scenario: 17 sprites covering
// row 50 with nonzero height sets the overflow status bit after evaluation.
func TestSpriteOverflow(t *testing.T) {
	v := New(256, 240, nil)
	for i := 0; i < 17; i++ {
		base := i * 4
		v.SAT[base+0] = 50 + 64    // y = 50
		v.SAT[base+1] = uint16(i*8) + 32 // x, spread out
		v.SAT[base+2] = 0          // pattern
		v.SAT[base+3] = 0x1000     // height code 1 -> 32 lines
	}

	idx := make([]uint16, v.width)
	opaque := make([]bool, v.width)
	prio := make([]bool, v.width)
	v.rasterSprites(50, idx, opaque, prio)

	if v.Status&statusOR == 0 {
		t.Fatal("17 sprites on one scanline should set the overflow status bit")
	}
}

func TestSpriteOverflowNotSetUnderLimit(t *testing.T) {
	v := New(256, 240, nil)
	for i := 0; i < 16; i++ {
		base := i * 4
		v.SAT[base+0] = 50 + 64
		v.SAT[base+1] = uint16(i*8) + 32
		v.SAT[base+3] = 0x1000
	}
	idx := make([]uint16, v.width)
	opaque := make([]bool, v.width)
	prio := make([]bool, v.width)
	v.rasterSprites(50, idx, opaque, prio)
	if v.Status&statusOR != 0 {
		t.Fatal("16 candidates is within the limit; overflow must not be set")
	}
}

func TestReadStatusClearsLatchedBitsButNotBusy(t *testing.T) {
	v := New(256, 240, nil)
	v.Status = statusVBL | statusRCR
	v.Busy = 4
	s := v.ReadStatus()
	if s&statusVBL == 0 || s&statusRCR == 0 {
		t.Fatal("ReadStatus should report the latched bits on the read that clears them")
	}
	if s&statusBUSY == 0 {
		t.Fatal("ReadStatus should report BUSY while busy > 0")
	}
	if v.Status != 0 {
		t.Fatalf("latched bits should be cleared after read, status = %#x", v.Status)
	}
}

func TestVRAMDMACopiesWords(t *testing.T) {
	v := New(256, 240, nil)
	v.VRAM[0x10] = 0xBEEF
	v.VRAM[0x11] = 0xCAFE
	v.Regs[regSOUR] = 0x10
	v.Regs[regDESR] = 0x20
	v.Regs[regLENR] = 1 // two words (LENR+1)
	v.startVRAMDMA()
	v.runVRAMDMA()
	if v.VRAM[0x20] != 0xBEEF || v.VRAM[0x21] != 0xCAFE {
		t.Fatalf("VRAM DMA did not copy correctly: %#x %#x", v.VRAM[0x20], v.VRAM[0x21])
	}
	if v.Status&statusDV == 0 {
		t.Fatal("VRAM DMA should set the DV status bit on completion")
	}
	v.ReadStatus()
	if v.Status&statusDV == 0 {
		t.Fatal("ReadStatus must not auto-clear DV")
	}
}

func TestSATDMACopiesFromVRAM(t *testing.T) {
	v := New(256, 240, nil)
	v.Regs[regSATB] = 0x200
	for i := 0; i < SATWords; i++ {
		v.VRAM[0x200+i] = uint16(i)
	}
	v.runSATDMA()
	for i := 0; i < SATWords; i++ {
		if v.SAT[i] != uint16(i) {
			t.Fatalf("SAT[%d] = %#x, want %#x", i, v.SAT[i], i)
		}
	}
}
