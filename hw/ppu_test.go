package hw

import (
	"image/color"
	"testing"

	"gbadv/hw/hwio"
)

func newTestPPU(t *testing.T) (*PPU, *Interrupts) {
	t.Helper()
	irq := new(Interrupts)
	hwio.MustInitRegs(irq)
	p := NewPPU(irq)
	p.Reset()
	return p, irq
}

func stepN(p *PPU, n int) {
	for range n {
		p.Step()
	}
}

func (p *PPU) row(line int) []uint32 {
	return p.Framebuffer[line*ScreenWidth : (line+1)*ScreenWidth]
}

func TestPPUTiming(t *testing.T) {
	p, _ := newTestPPU(t)

	stepN(p, ScreenWidth)
	if !p.statusBit(dispstatHBlank) {
		t.Errorf("after %d steps: hblank flag not set", ScreenWidth)
	}
	if p.Dot != ScreenWidth || p.Scanline != 0 {
		t.Errorf("after %d steps: position = %d,%d, want 0,%d", ScreenWidth, p.Scanline, p.Dot, ScreenWidth)
	}

	stepN(p, DotsPerLine-ScreenWidth)
	if p.Dot != 0 || p.Scanline != 1 {
		t.Errorf("after %d steps: position = %d,%d, want 1,0", DotsPerLine, p.Scanline, p.Dot)
	}
	if p.statusBit(dispstatHBlank) {
		t.Errorf("after %d steps: hblank flag still set", DotsPerLine)
	}
	if p.VCOUNT.Value != 1 {
		t.Errorf("VCOUNT = %d, want 1", p.VCOUNT.Value)
	}

	stepN(p, DotsPerLine*(ScreenHeight-1))
	if p.Scanline != ScreenHeight {
		t.Fatalf("scanline = %d, want %d", p.Scanline, ScreenHeight)
	}
	if !p.statusBit(dispstatVBlank) {
		t.Error("vblank flag not set at scanline 160")
	}
	if p.Frames != 1 {
		t.Errorf("frames = %d, want 1", p.Frames)
	}

	stepN(p, DotsPerLine*(LinesPerFrame-ScreenHeight))
	if p.Scanline != 0 || p.Dot != 0 {
		t.Errorf("after a frame: position = %d,%d, want 0,0", p.Scanline, p.Dot)
	}
	if p.statusBit(dispstatVBlank) {
		t.Error("vblank flag still set after frame wrap")
	}
	if p.VCOUNT.Value != 0 {
		t.Errorf("VCOUNT = %d, want 0", p.VCOUNT.Value)
	}
}

func TestPPUInterrupts(t *testing.T) {
	p, irq := newTestPPU(t)

	stepN(p, ScreenWidth)
	if irq.IF.Value != 0 {
		t.Fatalf("IF = %04X with all display interrupts disabled", irq.IF.Value)
	}

	p.Reset()
	p.DISPSTAT.Value = 1<<dispstatHBlankIRQ | 1<<dispstatVBlankIRQ
	stepN(p, ScreenWidth)
	if irq.IF.Value != 1<<IRQHBlank {
		t.Errorf("IF = %04X, want %04X", irq.IF.Value, 1<<IRQHBlank)
	}
	irq.IF.Value = 0

	stepN(p, DotsPerLine*ScreenHeight-ScreenWidth)
	if irq.IF.Value&(1<<IRQVBlank) == 0 {
		t.Errorf("IF = %04X, vblank bit not set", irq.IF.Value)
	}
}

func TestPPUVCountMatch(t *testing.T) {
	p, irq := newTestPPU(t)
	p.DISPSTAT.Value = 5<<dispstatVCountTrig | 1<<dispstatVCountIRQ

	stepN(p, DotsPerLine*5)
	if !p.statusBit(dispstatVCount) {
		t.Error("vcount match flag not set at line 5")
	}
	if irq.IF.Value != 1<<IRQVCount {
		t.Errorf("IF = %04X, want %04X", irq.IF.Value, 1<<IRQVCount)
	}

	stepN(p, DotsPerLine)
	if p.statusBit(dispstatVCount) {
		t.Error("vcount match flag still set at line 6")
	}
}

func TestConvertColor(t *testing.T) {
	tests := []struct {
		in   uint16
		want uint32
	}{
		{0x7FFF, 0xFFFFFFFF},
		{0x0000, 0xFF000000},
		{0x001F, 0xFF0000FF},
		{0x03E0, 0xFF00FF00},
		{0x7C00, 0xFFFF0000},
		{0x0010, 0xFF000084},
	}
	for _, tt := range tests {
		if got := convertColor(tt.in); got != tt.want {
			t.Errorf("convertColor(%04X) = %08X, want %08X", tt.in, got, tt.want)
		}
	}
}

func TestForcedBlank(t *testing.T) {
	p, _ := newTestPPU(t)
	p.DISPCNT.Value = dispcntForcedBlank | 3 | dispcntBG0 | dispcntOBJ
	p.PAL.Write16(0, 0x001F)
	p.VRAM.Write16(0, 0x03E0)

	stepN(p, DotsPerLine)
	for x, px := range p.row(1) {
		if px != 0xFFFFFFFF {
			t.Fatalf("pixel %d = %08X, want FFFFFFFF", x, px)
		}
	}
}

func TestBackdrop(t *testing.T) {
	p, _ := newTestPPU(t)
	p.PAL.Write16(0, 0x001F)
	p.renderScanline(10)
	for x, px := range p.row(10) {
		if px != 0xFF0000FF {
			t.Fatalf("pixel %d = %08X, want FF0000FF", x, px)
		}
	}
}

func TestRenderBitmapModes(t *testing.T) {
	p, _ := newTestPPU(t)

	// Mode 3: 16bpp direct color.
	p.DISPCNT.Value = 3
	p.VRAM.Write16(uint32(2*ScreenWidth+1)*2, 0x7C00)
	p.renderScanline(2)
	if got := p.row(2)[1]; got != 0xFFFF0000 {
		t.Errorf("mode 3: pixel = %08X, want FFFF0000", got)
	}

	// Mode 4: 8bpp palettized, frame 1.
	p.DISPCNT.Value = 4 | dispcntFrameSelect
	p.PAL.Write16(7*2, 0x03E0)
	p.VRAM.Write8(0xA000+uint32(ScreenWidth)+5, 7)
	p.renderScanline(1)
	if got := p.row(1)[5]; got != 0xFF00FF00 {
		t.Errorf("mode 4: pixel = %08X, want FF00FF00", got)
	}

	// Mode 5: 160x128 16bpp, pixels past column 160 show the backdrop.
	p.DISPCNT.Value = 5
	p.PAL.Write16(0, 0x001F)
	p.VRAM.Write16(uint32(3*160+159)*2, 0x7FFF)
	p.renderScanline(3)
	row := p.row(3)
	if row[159] != 0xFFFFFFFF {
		t.Errorf("mode 5: pixel 159 = %08X, want FFFFFFFF", row[159])
	}
	if row[160] != 0xFF0000FF {
		t.Errorf("mode 5: pixel 160 = %08X, want backdrop", row[160])
	}
}

func setupTextBG(p *PPU, entry uint16) {
	p.DISPCNT.Value = dispcntBG0
	p.BG0CNT.Value = 1 << 8         // map at 0x800, tiles at 0, 4bpp
	p.VRAM.Write16(0x800, entry)    // tile map (0,0)
	p.VRAM.Write8(32, 0x02)         // tile 1, row 0: pixel 0 = 2, pixel 1 = 0
	p.PAL.Write16(0, 0x001F)        // backdrop
	p.PAL.Write16(2*2, 0x7C00)      // palette 0, color 2
	p.PAL.Write16((16+2)*2, 0x03E0) // palette 1, color 2
}

func TestRenderTextBG(t *testing.T) {
	const (
		backdrop = 0xFF0000FF
		blue     = 0xFFFF0000
		green    = 0xFF00FF00
	)

	tests := []struct {
		name       string
		entry      uint16
		cnt        uint16 // BG0CNT bits added to the setup ones
		hofs, vofs uint16
		setup      func(p *PPU)
		want       map[int]uint32
	}{
		{name: "plain", entry: 0x0001, want: map[int]uint32{0: blue, 1: backdrop, 7: backdrop}},
		{name: "hflip", entry: 0x0401, want: map[int]uint32{0: backdrop, 7: blue}},
		{name: "palette", entry: 0x1001, want: map[int]uint32{0: green}},
		{name: "scroll", entry: 0x0001, hofs: 0x1FF, want: map[int]uint32{0: backdrop, 1: blue}},
		{
			name:  "vflip",
			entry: 0x0801,
			setup: func(p *PPU) {
				p.VRAM.Write8(32+7*4, 0x20) // tile 1, row 7: pixel 1 = 2
			},
			want: map[int]uint32{0: backdrop, 1: blue},
		},
		{
			name:  "8bpp",
			entry: 0x1001, // palette bits ignored
			cnt:   0x80,
			setup: func(p *PPU) {
				p.VRAM.Write8(64+3, 5) // tile 1, row 0: pixel 3 = 5
				p.PAL.Write16(5*2, 0x03E0)
			},
			want: map[int]uint32{0: backdrop, 3: green},
		},
		{
			name:  "8bpp vflip",
			entry: 0x0801,
			cnt:   0x80,
			setup: func(p *PPU) {
				p.VRAM.Write8(64+7*8+2, 5) // tile 1, row 7: pixel 2 = 5
				p.PAL.Write16(5*2, 0x03E0)
			},
			want: map[int]uint32{0: backdrop, 2: green},
		},
		{
			name:  "64 tiles wide",
			entry: 0x0001,
			cnt:   1 << 14,
			hofs:  256,
			setup: func(p *PPU) {
				p.VRAM.Write16(0x800+32*2, 0x1001) // map (32,0)
			},
			want: map[int]uint32{0: green},
		},
		{
			name:  "32 tiles wide wraps",
			entry: 0x0001,
			hofs:  256,
			setup: func(p *PPU) {
				p.VRAM.Write16(0x800+32*2, 0x1001) // map (0,1)
			},
			want: map[int]uint32{0: blue},
		},
		{
			name:  "64 tiles tall",
			entry: 0x0001,
			cnt:   1 << 15,
			vofs:  256,
			setup: func(p *PPU) {
				p.VRAM.Write16(0x800+32*32*2, 0x1001) // map (0,32)
			},
			want: map[int]uint32{0: green},
		},
		{
			name:  "32 tiles tall wraps",
			entry: 0x0001,
			vofs:  256,
			setup: func(p *PPU) {
				p.VRAM.Write16(0x800+32*32*2, 0x1001)
			},
			want: map[int]uint32{0: blue},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPPU(t)
			setupTextBG(p, tt.entry)
			p.BG0CNT.Value |= tt.cnt
			p.BG0HOFS.Value = tt.hofs
			p.BG0VOFS.Value = tt.vofs
			if tt.setup != nil {
				tt.setup(p)
			}
			p.renderScanline(0)
			row := p.row(0)
			for x, want := range tt.want {
				if row[x] != want {
					t.Errorf("pixel %d = %08X, want %08X", x, row[x], want)
				}
			}
		})
	}
}

// setupLayers draws a different color at pixel (0,0) of BG0 (red, 8bpp),
// BG2 (green) and BG3 (blue), over a black backdrop.
func setupLayers(p *PPU) {
	p.BG0CNT.Value = 0x80 | 1<<2 | 1<<8 // 8bpp, tiles at 0x4000, map at 0x800
	p.BG2CNT.Value = 3 << 8             // map at 0x1800
	p.BG3CNT.Value = 2 << 8             // map at 0x1000

	p.VRAM.Write16(0x800, 0x0001)
	p.VRAM.Write16(0x1000, 0x0001)
	p.VRAM.Write16(0x1800, 0x1001)

	p.VRAM.Write8(0x4000+64, 3) // 8bpp tile 1, pixel 0 = 3
	p.VRAM.Write8(32, 0x02)     // 4bpp tile 1, pixel 0 = 2

	p.PAL.Write16(3*2, 0x001F)      // red
	p.PAL.Write16(2*2, 0x7C00)      // palette 0, color 2: blue
	p.PAL.Write16((16+2)*2, 0x03E0) // palette 1, color 2: green
}

func TestRenderModeLayers(t *testing.T) {
	const (
		black = 0xFF000000
		red   = 0xFF0000FF
		green = 0xFF00FF00
		blue  = 0xFFFF0000
	)
	bg := func(n ...int) uint16 {
		var v uint16
		for _, i := range n {
			v |= dispcntBG0 << i
		}
		return v
	}

	tests := []struct {
		mode    uint16
		enabled uint16
		want    uint32
	}{
		{0, bg(0, 3), red},
		{0, bg(3), blue},
		{0, bg(2, 3), green},
		{0, bg(0, 2, 3), red},
		{1, bg(0, 3), red},
		{1, bg(3), black},
		{1, bg(0, 2), red},
		{1, bg(2), green},
		{2, bg(0, 3), blue},
		{2, bg(2, 3), green},
		{2, bg(0), black},
	}
	for _, tt := range tests {
		p, _ := newTestPPU(t)
		setupLayers(p)
		p.DISPCNT.Value = tt.mode | tt.enabled
		p.renderScanline(0)
		if got := p.row(0)[0]; got != tt.want {
			t.Errorf("mode %d, DISPCNT %04X: pixel 0 = %08X, want %08X", tt.mode, p.DISPCNT.Value, got, tt.want)
		}
	}
}

func TestRenderTextBGDisabled(t *testing.T) {
	p, _ := newTestPPU(t)
	setupTextBG(p, 0x0001)
	p.DISPCNT.Value = 0
	p.renderScanline(0)
	if got := p.row(0)[0]; got != 0xFF0000FF {
		t.Errorf("pixel 0 = %08X, want backdrop", got)
	}
}

func TestRenderSprites(t *testing.T) {
	p, _ := newTestPPU(t)
	p.DISPCNT.Value = dispcntOBJ
	p.PAL.Write16(objPalette+2, 0x7FFF)
	for i := range uint32(numSprites) {
		p.OAM.Write16(i*spriteEntrySz, 0x0200) // disabled
	}
	// Sprite 0: 8x8 at (4, 0), sprite 1: 8x8 at (-4, 0).
	p.OAM.Write16(0, 0x0000)
	p.OAM.Write16(2, 4)
	p.OAM.Write16(spriteEntrySz, 0x0000)
	p.OAM.Write16(spriteEntrySz+2, 0x1FC)

	p.renderScanline(0)
	row := p.row(0)
	for x := range 16 {
		want := uint32(0xFFFFFFFF)
		if x >= 12 {
			want = 0xFF000000
		}
		if row[x] != want {
			t.Errorf("line 0 pixel %d = %08X, want %08X", x, row[x], want)
		}
	}

	p.renderScanline(8)
	if got := p.row(8)[4]; got != 0xFF000000 {
		t.Errorf("line 8 pixel 4 = %08X, want backdrop", got)
	}
}

func TestFrameImage(t *testing.T) {
	p, _ := newTestPPU(t)
	p.Framebuffer[ScreenWidth+2] = convertColor(0x001F)

	img := p.Frame()
	if got, want := img.RGBAAt(2, 1), (color.RGBA{R: 0xFF, A: 0xFF}); got != want {
		t.Errorf("pixel (2,1) = %v, want %v", got, want)
	}
	if got := img.Bounds().Size(); got.X != ScreenWidth || got.Y != ScreenHeight {
		t.Errorf("frame size = %v", got)
	}
}
