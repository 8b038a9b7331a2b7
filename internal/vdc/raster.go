package vdc

import "pcecore/internal/vce"

// mapDimensions decodes MWR's width/height code into tile-map
// dimensions, in tiles.
func (v *VDC) mapDimensions() (width, height int) {
	switch (v.Regs[regMWR] >> 4) & 0x03 {
	case 0:
		width = 32
	case 1:
		width = 64
	default:
		width = 128
	}
	if v.Regs[regMWR]&0x40 != 0 {
		height = 64
	} else {
		height = 32
	}
	return
}

// batEntry looks up the BAT entry covering tile (col, row).
func (v *VDC) batEntry(col, row, mapW int) uint16 {
	idx := (row*mapW + col) & (VRAMWords - 1)
	return v.VRAM[idx]
}

// planePixel decodes the 4-bit pixel value at (px, py) within a tile
// whose pattern starts at patternBase (a VRAM word address).
func (v *VDC) planePixel(patternBase uint16, px, py int) uint8 {
	row := uint16(py & 7)
	lo := v.VRAM[(patternBase+row)&(VRAMWords-1)]
	hi := v.VRAM[(patternBase+row+8)&(VRAMWords-1)]
	shift := uint(7 - (px & 7))
	p0 := uint8(lo>>shift) & 1
	p1 := uint8(lo>>(shift+8)) & 1
	p2 := uint8(hi>>shift) & 1
	p3 := uint8(hi>>(shift+8)) & 1
	return p0 | p1<<1 | p2<<2 | p3<<3
}

// renderRow rasterizes one active display row: background then
// sprites, composited per the priority rule, into v.frame.
func (v *VDC) renderRow(rowOffset int, palette *vce.VCE) {
	if rowOffset < 0 || rowOffset >= v.height {
		return
	}
	bx, by, valid := v.ScrollLatch(v.Scanline)
	if !valid {
		return
	}

	bgIndex := make([]uint16, v.width)
	bgOpaque := make([]bool, v.width)
	mapW, mapH := v.mapDimensions()
	sy := int(by) + rowOffset

	for x := 0; x < v.width; x++ {
		sx := int(bx) + x
		tileCol := (sx / 8) % mapW
		tileRow := (sy / 8) % mapH
		bat := v.batEntry(tileCol, tileRow, mapW)
		patternBase := (bat & 0x7FF) * 16
		palNum := (bat >> 12) & 0x0F
		value := v.planePixel(patternBase, sx&7, sy&7)
		if value != 0 {
			bgIndex[x] = uint16(palNum)*16 + uint16(value)
			bgOpaque[x] = true
		}
	}

	spriteIndex := make([]uint16, v.width)
	spriteOpaque := make([]bool, v.width)
	spritePriority := make([]bool, v.width)
	v.rasterSprites(v.Scanline, spriteIndex, spriteOpaque, spritePriority)

	base := rowOffset * v.width
	for x := 0; x < v.width; x++ {
		var colorIdx uint16
		switch {
		case spriteOpaque[x] && (spritePriority[x] || !bgOpaque[x]):
			colorIdx = vce.PaletteSize/2 + spriteIndex[x]
		case bgOpaque[x]:
			colorIdx = bgIndex[x]
		default:
			colorIdx = 0
		}
		v.frame[base+x] = palette.ColorARGB(colorIdx)
	}
}

// spriteEntry is a SAT row decoded into its fields.
type spriteEntry struct {
	y, x        int
	patternAddr uint16
	palette     uint16
	hFlip, vFlip bool
	priority    bool
	width, height int
}

func decodeSprite(sat [4]uint16) spriteEntry {
	y := int(sat[0]&0x3FF) - 64
	x := int(sat[1]&0x3FF) - 32
	pattern := sat[2] & 0x7FE
	attr := sat[3]
	widthCode := (attr >> 8) & 0x01
	heightCode := (attr >> 12) & 0x03
	w := 16
	if widthCode == 1 {
		w = 32
	}
	h := []int{16, 32, 64, 64}[int(heightCode)]
	return spriteEntry{
		y: y, x: x,
		patternAddr: pattern,
		palette:     (attr >> 0) & 0x0F,
		hFlip:       attr&0x0800 != 0,
		vFlip:       attr&0x8000 != 0,
		priority:    attr&0x0080 != 0,
		width:       w, height: h,
	}
}

// rasterSprites evaluates the SAT for one Scanline, setting composited
// sprite color index, opacity, and priority per output column, and
// flagging the overflow Status bit when more than 16 candidates match.
func (v *VDC) rasterSprites(line int, idx []uint16, opaque, prio []bool) {
	candidates := 0
	var matched [maxSpriteCandidates]spriteEntry
	matchedCount := 0

	for i := 0; i < len(v.SAT)/4; i++ {
		var raw [4]uint16
		copy(raw[:], v.SAT[i*4:i*4+4])
		sp := decodeSprite(raw)
		if line < sp.y || line >= sp.y+sp.height {
			continue
		}
		candidates++
		if candidates > maxSpriteCandidates {
			v.Status |= statusOR
			continue
		}
		matched[matchedCount] = sp
		matchedCount++
	}

	// Back-to-front in SAT index order: later-matched (higher index)
	// entries are drawn first so lower-index sprites win ties.
	for m := matchedCount - 1; m >= 0; m-- {
		sp := matched[m]
		dy := line - sp.y
		if sp.vFlip {
			dy = sp.height - 1 - dy
		}
		for dx := 0; dx < sp.width; dx++ {
			screenX := sp.x + dx
			if screenX < 0 || screenX >= len(idx) {
				continue
			}
			sampleX := dx
			if sp.hFlip {
				sampleX = sp.width - 1 - dx
			}
			value := v.spritePixel(sp, sampleX, dy)
			if value == 0 {
				continue
			}
			idx[screenX] = sp.palette*16 + uint16(value)
			opaque[screenX] = true
			prio[screenX] = sp.priority
		}
	}
}

// spritePixel decodes one 4-bit pixel from a sprite's pattern data.
// Sprite patterns are laid out as 16-pixel-wide, 16-line quadrant
// blocks of 64 words each (16 words per plane, 4 planes); a 32-wide or
// taller sprite occupies the quadrant selected by (dx/16, dy/16).
func (v *VDC) spritePixel(sp spriteEntry, dx, dy int) uint8 {
	quadCol := dx / 16
	quadRow := dy / 16
	localX := uint(dx % 16)
	localY := uint16(dy % 16)
	block := sp.patternAddr + uint16(quadRow*2+quadCol)*64

	shift := 15 - localX
	p0 := uint8(v.VRAM[(block+localY)&(VRAMWords-1)]>>shift) & 1
	p1 := uint8(v.VRAM[(block+16+localY)&(VRAMWords-1)]>>shift) & 1
	p2 := uint8(v.VRAM[(block+32+localY)&(VRAMWords-1)]>>shift) & 1
	p3 := uint8(v.VRAM[(block+48+localY)&(VRAMWords-1)]>>shift) & 1
	return p0 | p1<<1 | p2<<2 | p3<<3
}
