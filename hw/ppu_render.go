package hw

// convertColor converts a BGR555 color to a 0xAABBGGRR opaque pixel,
// expanding each 5-bit component to 8 bits.
func convertColor(c uint16) uint32 {
	r := uint32(c&0x1F) << 3
	g := uint32(c>>5&0x1F) << 3
	b := uint32(c>>10&0x1F) << 3
	r |= r >> 5
	g |= g >> 5
	b |= b >> 5
	return 0xFF<<24 | b<<16 | g<<8 | r
}

func (p *PPU) bgEnabled(bg int) bool {
	return p.DISPCNT.Value&(dispcntBG0<<bg) != 0
}

func (p *PPU) renderScanline(line int) {
	row := p.Framebuffer[line*ScreenWidth : (line+1)*ScreenWidth]
	dispcnt := p.DISPCNT.Value

	if dispcnt&dispcntForcedBlank != 0 {
		for x := range row {
			row[x] = 0xFFFFFFFF
		}
		return
	}

	backdrop := convertColor(p.PAL.Read16(0))
	for x := range row {
		row[x] = backdrop
	}

	switch dispcnt & dispcntModeMask {
	case 0:
		for bg := 3; bg >= 0; bg-- {
			if p.bgEnabled(bg) {
				p.renderTextBG(bg, line, row)
			}
		}
	case 1:
		if p.bgEnabled(2) {
			p.renderAffineBG(2, line, row)
		}
		if p.bgEnabled(1) {
			p.renderTextBG(1, line, row)
		}
		if p.bgEnabled(0) {
			p.renderTextBG(0, line, row)
		}
	case 2:
		if p.bgEnabled(3) {
			p.renderAffineBG(3, line, row)
		}
		if p.bgEnabled(2) {
			p.renderAffineBG(2, line, row)
		}
	case 3:
		p.renderBitmap16(line, row, 0, ScreenWidth)
	case 4:
		p.renderBitmap8(line, row)
	case 5:
		if line < 128 {
			p.renderBitmap16(line, row, p.frameBase(), 160)
		}
	}

	if dispcnt&dispcntOBJ != 0 {
		p.renderSprites(line, row)
	}
}

func (p *PPU) frameBase() uint32 {
	if p.DISPCNT.Value&dispcntFrameSelect != 0 {
		return 0xA000
	}
	return 0
}

// renderBitmap16 draws width direct-color pixels of line, from the bitmap at
// base in VRAM.
func (p *PPU) renderBitmap16(line int, row []uint32, base uint32, width int) {
	off := base + uint32(line*width*2)
	for x := range width {
		row[x] = convertColor(p.VRAM.Read16(off + uint32(x*2)))
	}
}

func (p *PPU) renderBitmap8(line int, row []uint32) {
	off := p.frameBase() + uint32(line*ScreenWidth)
	for x := range row {
		idx := p.VRAM.Read8(off + uint32(x))
		row[x] = convertColor(p.PAL.Read16(uint32(idx) * 2))
	}
}

// renderTextBG draws the tiled background bg on row.
func (p *PPU) renderTextBG(bg, line int, row []uint32) {
	cnt := p.bgcnt[bg].Value

	charBase := uint32(cnt>>2&3) * 0x4000
	pal256 := cnt&0x80 != 0
	screenBase := uint32(cnt>>8&0x1F) * 0x800
	mapw, maph := 32, 32
	if cnt&(1<<14) != 0 {
		mapw = 64
	}
	if cnt&(1<<15) != 0 {
		maph = 64
	}

	sx := int(p.hofs[bg].Value & 0x1FF)
	sy := int(p.vofs[bg].Value & 0x1FF)

	bgy := (line + sy) % (maph * 8)
	tiley, py := bgy/8, bgy%8

	for x := range row {
		bgx := (x + sx) % (mapw * 8)
		tilex, px := bgx/8, bgx%8

		entry := p.VRAM.Read16(screenBase + uint32(tiley*mapw+tilex)*2)
		tile := uint32(entry & 0x3FF)
		fx, fy := px, py
		if entry&(1<<10) != 0 {
			fx = 7 - px
		}
		if entry&(1<<11) != 0 {
			fy = 7 - py
		}
		palnum := uint32(entry >> 12)

		var idx uint32
		if pal256 {
			idx = uint32(p.VRAM.Read8(charBase + tile*64 + uint32(fy*8+fx)))
		} else {
			b := p.VRAM.Read8(charBase + tile*32 + uint32(fy*4+fx/2))
			if fx&1 != 0 {
				b >>= 4
			}
			idx = uint32(b & 0xF)
		}
		if idx == 0 {
			continue
		}

		if !pal256 {
			idx += palnum * 16
		}
		row[x] = convertColor(p.PAL.Read16(idx * 2))
	}
}

// renderAffineBG draws the rotation/scaling background bg. The affine
// transform is not implemented: the layer is drawn as a text background.
func (p *PPU) renderAffineBG(bg, line int, row []uint32) {
	p.renderTextBG(bg, line, row)
}

// Object attribute memory layout.
const (
	numSprites    = 128
	spriteEntrySz = 8
	objPalette    = 0x200
)

var spriteSizes = [4]int{8, 16, 32, 64}

// renderSprites draws the objects intersecting line. Shape and tile data
// are ignored: each object is a square of its size class filled with color
// 1 of the object palette.
func (p *PPU) renderSprites(line int, row []uint32) {
	const pixel = 1
	color := convertColor(p.PAL.Read16(objPalette + pixel*2))

	for i := range uint32(numSprites) {
		attr0 := p.OAM.Read16(i * spriteEntrySz)
		attr1 := p.OAM.Read16(i*spriteEntrySz + 2)

		if attr0&0x0300 == 0x0200 {
			continue // disabled
		}

		y := int(attr0 & 0xFF)
		if y >= ScreenHeight {
			y -= 256
		}
		size := spriteSizes[attr0>>14&3]
		if line < y || line >= y+size {
			continue
		}

		x := int(attr1 & 0x1FF)
		if x >= ScreenWidth {
			x -= 512
		}
		for sx := max(x, 0); sx < x+size && sx < ScreenWidth; sx++ {
			row[sx] = color
		}
	}
}
