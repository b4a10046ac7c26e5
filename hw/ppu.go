package hw

import (
	"image"

	"gbadv/emu/log"
	"gbadv/hw/hwio"
)

// Display geometry and timing.
const (
	ScreenWidth    = 240
	ScreenHeight   = 160
	DotsPerLine    = 308
	LinesPerFrame  = 228
	CyclesPerFrame = DotsPerLine * LinesPerFrame // 280896
)

// DISPCNT bits.
const (
	dispcntModeMask    = 0x0007
	dispcntFrameSelect = 0x0010
	dispcntForcedBlank = 0x0080
	dispcntBG0         = 0x0100
	dispcntOBJ         = 0x1000
)

// DISPSTAT bits.
const (
	dispstatVBlank     = 0
	dispstatHBlank     = 1
	dispstatVCount     = 2
	dispstatVBlankIRQ  = 3
	dispstatHBlankIRQ  = 4
	dispstatVCountIRQ  = 5
	dispstatVCountTrig = 8 // bits 8-15
)

// PPU is the display engine. It is stepped once per CPU cycle, each step
// being one dot.
type PPU struct {
	// I/O registers (bank 0, offsets in the I/O window).
	DISPCNT  hwio.Reg16 `hwio:"offset=0x00"`
	DISPSTAT hwio.Reg16 `hwio:"offset=0x04,rwmask=0xFFF8"`
	VCOUNT   hwio.Reg16 `hwio:"offset=0x06,readonly"`
	BG0CNT   hwio.Reg16 `hwio:"offset=0x08"`
	BG1CNT   hwio.Reg16 `hwio:"offset=0x0A"`
	BG2CNT   hwio.Reg16 `hwio:"offset=0x0C"`
	BG3CNT   hwio.Reg16 `hwio:"offset=0x0E"`
	BG0HOFS  hwio.Reg16 `hwio:"offset=0x10"`
	BG0VOFS  hwio.Reg16 `hwio:"offset=0x12"`
	BG1HOFS  hwio.Reg16 `hwio:"offset=0x14"`
	BG1VOFS  hwio.Reg16 `hwio:"offset=0x16"`
	BG2HOFS  hwio.Reg16 `hwio:"offset=0x18"`
	BG2VOFS  hwio.Reg16 `hwio:"offset=0x1A"`
	BG3HOFS  hwio.Reg16 `hwio:"offset=0x1C"`
	BG3VOFS  hwio.Reg16 `hwio:"offset=0x1E"`

	// Video memories (bank 1, absolute bus addresses).
	PAL  hwio.Mem `hwio:"bank=1,offset=0x05000000,size=0x400"`
	VRAM hwio.Mem `hwio:"bank=1,offset=0x06000000,size=0x18000"`
	OAM  hwio.Mem `hwio:"bank=1,offset=0x07000000,size=0x400"`

	Dot      int
	Scanline int
	Frames   int64 // number of completed frames (VBlank entries)

	// Framebuffer holds 0xAABBGGRR pixels.
	Framebuffer [ScreenWidth * ScreenHeight]uint32

	bgcnt [4]*hwio.Reg16
	hofs  [4]*hwio.Reg16
	vofs  [4]*hwio.Reg16

	irq IRQRaiser
}

func NewPPU(irq IRQRaiser) *PPU {
	p := &PPU{irq: irq}
	hwio.MustInitRegs(p)
	p.bgcnt = [4]*hwio.Reg16{&p.BG0CNT, &p.BG1CNT, &p.BG2CNT, &p.BG3CNT}
	p.hofs = [4]*hwio.Reg16{&p.BG0HOFS, &p.BG1HOFS, &p.BG2HOFS, &p.BG3HOFS}
	p.vofs = [4]*hwio.Reg16{&p.BG0VOFS, &p.BG1VOFS, &p.BG2VOFS, &p.BG3VOFS}
	return p
}

// Reset clears the registers, the timing state, the video memories and the
// framebuffer.
func (p *PPU) Reset() {
	p.DISPCNT.Value = 0
	p.DISPSTAT.Value = 0
	p.VCOUNT.Value = 0
	for i := range 4 {
		p.bgcnt[i].Value = 0
		p.hofs[i].Value = 0
		p.vofs[i].Value = 0
	}
	p.PAL.Reset()
	p.VRAM.Reset()
	p.OAM.Reset()

	p.Dot = 0
	p.Scanline = 0
	p.Frames = 0
	clear(p.Framebuffer[:])
}

// Position returns the current scanline and dot.
func (p *PPU) Position() (scanline, dot int) {
	return p.Scanline, p.Dot
}

func (p *PPU) raise(src IRQSource) {
	if err := p.irq.Raise(src); err != nil {
		log.ModPPU.ErrorZ("failed to raise interrupt").
			Stringer("src", src).
			Error("err", err).
			End()
	}
}

func (p *PPU) statusBit(n uint) bool {
	return hwio.GetBit(p.DISPSTAT.Value, n)
}

// Step advances the display by one dot.
func (p *PPU) Step() {
	p.Dot++

	if p.Dot == ScreenWidth {
		hwio.SetBit(&p.DISPSTAT.Value, dispstatHBlank)
		if p.statusBit(dispstatHBlankIRQ) {
			p.raise(IRQHBlank)
		}
	}

	if p.Dot < DotsPerLine {
		return
	}

	p.Dot = 0
	p.Scanline++
	p.VCOUNT.Value = uint16(p.Scanline)
	hwio.ClearBit(&p.DISPSTAT.Value, dispstatHBlank)

	if p.Scanline == int(p.DISPSTAT.Value>>dispstatVCountTrig) {
		already := p.statusBit(dispstatVCount)
		hwio.SetBit(&p.DISPSTAT.Value, dispstatVCount)
		if !already && p.statusBit(dispstatVCountIRQ) {
			p.raise(IRQVCount)
		}
	} else {
		hwio.ClearBit(&p.DISPSTAT.Value, dispstatVCount)
	}

	if p.Scanline == ScreenHeight {
		hwio.SetBit(&p.DISPSTAT.Value, dispstatVBlank)
		if p.statusBit(dispstatVBlankIRQ) {
			p.raise(IRQVBlank)
		}
		p.Frames++
		log.ModPPU.DebugZ("vblank").Int64("frame", p.Frames).End()
	}

	if p.Scanline >= LinesPerFrame {
		p.Scanline = 0
		p.VCOUNT.Value = 0
		hwio.ClearBit(&p.DISPSTAT.Value, dispstatVBlank)
	}

	if p.Scanline < ScreenHeight {
		p.renderScanline(p.Scanline)
	}
}

// Frame returns a copy of the framebuffer as an image.
func (p *PPU) Frame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for i, px := range p.Framebuffer {
		img.Pix[i*4+0] = uint8(px)
		img.Pix[i*4+1] = uint8(px >> 8)
		img.Pix[i*4+2] = uint8(px >> 16)
		img.Pix[i*4+3] = uint8(px >> 24)
	}
	return img
}
