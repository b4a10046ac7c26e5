package hw

import (
	"fmt"
	"io"
	"sync/atomic"

	"gbadv/cart"
	"gbadv/emu/log"
	"gbadv/hw/hwio"
)

// Bus addresses.
const (
	BIOSBase  = 0x00000000
	EWRAMBase = 0x02000000
	IWRAMBase = 0x03000000
	IOBase    = 0x04000000
	PALBase   = 0x05000000
	VRAMBase  = 0x06000000
	OAMBase   = 0x07000000
	ROMBase   = 0x08000000

	BIOSSize = 0x4000
)

// memory holds the regions not owned by a peripheral.
type memory struct {
	BIOS  hwio.Mem    `hwio:"offset=0x00000000,size=0x4000,readonly"`
	EWRAM hwio.Mem    `hwio:"offset=0x02000000,size=0x40000"`
	IWRAM hwio.Mem    `hwio:"offset=0x03000000,size=0x8000"`
	IO    hwio.Device `hwio:"offset=0x04000000,size=0x400"`
}

// GBA is the whole system. It owns every component, distinct GBA values
// share no state.
type GBA struct {
	Bus *hwio.Table
	Mem memory
	ROM hwio.Mem
	IRQ Interrupts
	CPU *CPU
	PPU *PPU

	running atomic.Bool
}

// NewGBA creates and wires all components, then resets the system.
func NewGBA() *GBA {
	g := &GBA{
		Bus: hwio.NewTable("bus"),
		ROM: hwio.Mem{Name: "ROM", Flags: hwio.MemFlagReadOnly},
	}
	hwio.MustInitRegs(&g.Mem)
	hwio.MustInitRegs(&g.IRQ)
	g.PPU = NewPPU(&g.IRQ)
	g.CPU = NewCPU(g.Bus, &g.IRQ)

	g.Bus.MapBank(0, &g.Mem, 0)
	g.Bus.MapBank(0, g.PPU, 1)
	g.Mem.IO.MapBank(0, g.PPU, 0)
	g.Mem.IO.MapBank(0, &g.IRQ, 0)

	g.Reset()
	return g
}

// Reset resets the CPU, the display, the interrupt controller and zeroes
// all RAM. Loaded ROMs are kept.
func (g *GBA) Reset() {
	g.CPU.Reset()
	g.PPU.Reset()
	g.IRQ.Reset()
	g.Mem.EWRAM.Reset()
	g.Mem.IWRAM.Reset()
	log.ModEmu.InfoZ("system reset").End()
}

// LoadROM maps a copy of the cartridge ROM at ROMBase, replacing the
// previous one if any.
func (g *GBA) LoadROM(rom *cart.ROM) {
	g.Bus.Unmap(ROMBase)
	g.ROM.Load(rom.Data)
	if len(g.ROM.Data) != 0 {
		g.Bus.MapMem(ROMBase, &g.ROM)
	}
	log.ModEmu.InfoZ("ROM loaded").
		String("title", rom.Header.Title).
		String("code", rom.Header.GameCode).
		Int("size", len(rom.Data)).
		End()
}

// LoadBootROM copies data in the boot ROM region. Execution still starts at
// ResetPC.
func (g *GBA) LoadBootROM(data []byte) error {
	if len(data) > BIOSSize {
		return fmt.Errorf("boot ROM too big: %d bytes, max %d", len(data), BIOSSize)
	}
	clear(g.Mem.BIOS.Data)
	copy(g.Mem.BIOS.Data, data)
	return nil
}

// SetTraceOutput enables the CPU execution trace, written to w.
func (g *GBA) SetTraceOutput(w io.Writer) {
	g.CPU.SetTraceOutput(w, g.PPU)
}

// Start sets the running flag, Stop clears it. Both can be called from any
// goroutine, RunFrame notices the change at the next cycle.
func (g *GBA) Start()        { g.running.Store(true) }
func (g *GBA) Stop()         { g.running.Store(false) }
func (g *GBA) Running() bool { return g.running.Load() }

// RunFrame runs up to CyclesPerFrame cycles, stopping early if the running
// flag gets cleared. It returns the number of cycles run.
func (g *GBA) RunFrame() int {
	n := 0
	for n < CyclesPerFrame && g.running.Load() {
		g.CPU.Step()
		g.PPU.Step()
		n++
	}
	return n
}

// AddLogContext implements log.Context.
func (g *GBA) AddLogContext(z *log.EntryZ) {
	z.Hex32("pc", g.CPU.R[15])
	z.Int("line", g.PPU.Scanline)
}
