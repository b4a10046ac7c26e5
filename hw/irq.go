package hw

import (
	"errors"
	"fmt"

	"gbadv/emu/log"
	"gbadv/hw/hwio"
)

//go:generate go tool stringer -type=IRQSource -trimprefix=IRQ

// IRQSource identifies an interrupt source, its value is its bit index in
// the IE and IF registers.
type IRQSource uint8

const (
	IRQVBlank IRQSource = iota
	IRQHBlank
	IRQVCount
	IRQTimer0
	IRQTimer1
	IRQTimer2
	IRQTimer3
	IRQSerial
	IRQDMA0
	IRQDMA1
	IRQDMA2
	IRQDMA3
	IRQKeypad
	IRQGamePak

	numIRQSources
)

var ErrInvalidIRQSource = errors.New("invalid interrupt source")

// IRQLine is polled by the CPU before each instruction.
type IRQLine interface {
	Pending() bool
}

// IRQRaiser is used by peripherals to request interrupts.
type IRQRaiser interface {
	Raise(src IRQSource) error
}

// Interrupts is the interrupt controller. Its registers are mapped in the
// I/O window.
type Interrupts struct {
	IE  hwio.Reg16 `hwio:"offset=0x200"`
	IF  hwio.Reg16 `hwio:"offset=0x202,w1c"`
	IME hwio.Reg32 `hwio:"offset=0x208"`
}

func (irq *Interrupts) Reset() {
	irq.IE.Value = 0
	irq.IF.Value = 0
	irq.IME.Value = 0
}

// Raise sets the IF bit of src. Raising an already raised source is a no-op.
func (irq *Interrupts) Raise(src IRQSource) error {
	if src >= numIRQSources {
		return fmt.Errorf("%w: %d", ErrInvalidIRQSource, src)
	}
	irq.IF.Value |= 1 << src

	log.ModIRQ.DebugZ("interrupt requested").
		Stringer("src", src).
		Hex16("if", irq.IF.Value).
		Hex16("ie", irq.IE.Value).
		End()
	return nil
}

// Pending reports whether the master enable is set and at least one enabled
// interrupt is requested.
func (irq *Interrupts) Pending() bool {
	return irq.IME.Value&1 != 0 && irq.IF.Value&irq.IE.Value != 0
}
