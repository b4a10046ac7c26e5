package hw

import (
	"errors"
	"fmt"
	"io"

	"gbadv/emu/log"
)

// Exception vectors.
const (
	VectorReset         = 0x00
	VectorUndefined     = 0x04
	VectorSWI           = 0x08
	VectorPrefetchAbort = 0x0C
	VectorDataAbort     = 0x10
	VectorIRQ           = 0x18
	VectorFIQ           = 0x1C
)

// Register values after reset.
const (
	ResetPC  = 0x08000000
	spUser   = 0x03007F00
	spIRQ    = 0x03007FA0
	spOthers = 0x03007FE0
)

// Bus is the CPU view of the memory bus.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, val uint8)
	Write16(addr uint32, val uint16)
	Write32(addr uint32, val uint32)
}

var ErrNoSPSR = errors.New("current mode has no saved status word")

// CPU is an ARM7TDMI core. R always holds the registers of the current mode,
// the registers of the other modes are kept in their banks and swapped in
// on mode switches.
type CPU struct {
	R    [16]uint32
	CPSR PSR
	SPSR [numBanks]PSR // indexed by bank, entry 0 (User/System) is unused

	bankSP [numBanks]uint32
	bankLR [numBanks]uint32
	fiqR   [5]uint32 // R8-R12 of FIQ mode
	usrR   [5]uint32 // R8-R12 of all other modes

	thumb  bool
	Cycles int64

	bus    Bus
	irq    IRQLine
	tracer *tracer
}

func NewCPU(bus Bus, irq IRQLine) *CPU {
	cpu := &CPU{bus: bus, irq: irq}
	cpu.Reset()
	return cpu
}

func (c *CPU) Reset() {
	c.R = [16]uint32{}
	c.R[15] = ResetPC
	c.CPSR = PSR(ModeSystem.Bits())
	c.SPSR = [numBanks]PSR{}
	c.bankSP = [numBanks]uint32{}
	c.bankLR = [numBanks]uint32{}
	c.fiqR = [5]uint32{}
	c.usrR = [5]uint32{}
	c.thumb = false
	c.Cycles = 0

	c.bankSP[ModeUser.bank()] = spUser
	c.bankSP[ModeIRQ.bank()] = spIRQ
	c.bankSP[ModeFIQ.bank()] = spOthers
	c.bankSP[ModeSupervisor.bank()] = spOthers
	c.bankSP[ModeAbort.bank()] = spOthers
	c.bankSP[ModeUndefined.bank()] = spOthers

	// Current mode registers must reflect the System bank.
	c.R[13] = c.bankSP[ModeSystem.bank()]
	c.R[14] = c.bankLR[ModeSystem.bank()]
}

// Mode returns the current privilege mode.
func (c *CPU) Mode() Mode {
	m, ok := c.CPSR.Mode()
	if !ok {
		log.ModCPU.WarnZ("invalid mode field, assuming System").
			Stringer("cpsr", c.CPSR).
			End()
		return ModeSystem
	}
	return m
}

// Thumb reports whether the CPU executes Thumb instructions.
func (c *CPU) Thumb() bool { return c.thumb }

func (c *CPU) SetTraceOutput(w io.Writer, pos ppuPosition) {
	c.tracer = &tracer{w: w, pos: pos}
}

// Step either enters the IRQ exception, if an interrupt is pending and not
// masked, or executes the next instruction.
func (c *CPU) Step() {
	if !c.CPSR.IRQDisabled() && c.irq.Pending() {
		c.handleIRQ()
		return
	}

	pc := c.R[15]
	if c.thumb {
		op := c.bus.Read16(pc)
		c.R[15] += 2
		if c.tracer != nil {
			c.trace(pc, uint32(op))
		}
		c.execThumb(op)
	} else {
		op := c.bus.Read32(pc)
		c.R[15] += 4
		if c.tracer != nil {
			c.trace(pc, op)
		}
		c.execARM(op)
	}
	c.Cycles++
}

func (c *CPU) trace(pc, op uint32) {
	c.tracer.write(cpuState{
		PC:     pc,
		Opcode: op,
		Thumb:  c.thumb,
		CPSR:   c.CPSR,
		R:      c.R,
		Cycles: c.Cycles,
	})
}

func (c *CPU) instrWidth() uint32 {
	if c.thumb {
		return 2
	}
	return 4
}

// enterException performs the common part of IRQ and FIQ entry.
func (c *CPU) enterException(mode Mode, vector uint32, mask PSR) {
	prior := c.Mode()
	saved := c.CPSR
	ret := c.R[15] - c.instrWidth()

	c.switchMode(mode)
	c.SPSR[mode.bank()] = saved
	c.R[14] = ret

	c.CPSR |= mask
	c.CPSR &^= flagT
	c.thumb = false
	c.R[15] = vector
	c.flushPipeline()
	c.Cycles += 3

	log.ModCPU.DebugZ("exception entry").
		Stringer("mode", mode).
		Stringer("from", prior).
		Hex32("lr", ret).
		Hex32("vector", vector).
		End()
}

func (c *CPU) handleIRQ() {
	c.enterException(ModeIRQ, VectorIRQ, flagI)
}

// FIQ enters the FIQ exception if FIQs are not masked. It reports whether
// the exception has been taken.
func (c *CPU) FIQ() bool {
	if c.CPSR.FIQDisabled() {
		return false
	}
	c.enterException(ModeFIQ, VectorFIQ, flagI|flagF)
	return true
}

// flushPipeline is a no-op, instructions are fetched one at a time.
func (c *CPU) flushPipeline() {}

// ReturnFromException restores the state saved at exception entry: the
// status word is restored from the saved one, the mode is switched back and
// execution resumes at the instruction that was about to be executed when
// the exception was taken.
func (c *CPU) ReturnFromException() error {
	cur := c.Mode()
	if !cur.hasSPSR() {
		return fmt.Errorf("return from exception in %s mode: %w", cur, ErrNoSPSR)
	}
	saved := c.SPSR[cur.bank()]
	target, ok := saved.Mode()
	if !ok {
		return fmt.Errorf("return from exception: invalid saved mode %#02x", uint32(saved)&modeMask)
	}
	lr := c.R[14]

	c.switchMode(target)
	c.CPSR = saved
	c.thumb = saved.Thumb()
	c.R[15] = lr + c.instrWidth()
	c.flushPipeline()

	log.ModCPU.DebugZ("exception return").
		Stringer("from", cur).
		Stringer("to", target).
		Hex32("pc", c.R[15]).
		End()
	return nil
}

// switchMode changes the current mode, saving the registers of the current
// mode to their bank and loading those of the new mode.
func (c *CPU) switchMode(mode Mode) {
	cur := c.Mode()
	if cur == mode {
		return
	}

	c.bankSP[cur.bank()] = c.R[13]
	c.bankLR[cur.bank()] = c.R[14]
	if cur == ModeFIQ {
		copy(c.fiqR[:], c.R[8:13])
	} else {
		copy(c.usrR[:], c.R[8:13])
	}

	c.CPSR.setMode(mode)

	c.R[13] = c.bankSP[mode.bank()]
	c.R[14] = c.bankLR[mode.bank()]
	if mode == ModeFIQ {
		copy(c.R[8:13], c.fiqR[:])
	} else {
		copy(c.R[8:13], c.usrR[:])
	}
}

// setFlags sets N and Z from result, C and V from carry and overflow.
func (c *CPU) setFlags(result uint32, carry, overflow bool) {
	c.CPSR.set(flagN, result&(1<<31) != 0)
	c.CPSR.set(flagZ, result == 0)
	c.CPSR.set(flagC, carry)
	c.CPSR.set(flagV, overflow)
}

func (c *CPU) checkCondition(cond uint32) bool {
	return checkCondition(cond, c.CPSR)
}
