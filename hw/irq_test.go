package hw

import (
	"errors"
	"testing"

	"gbadv/hw/hwio"
)

func newTestInterrupts(t *testing.T) *Interrupts {
	t.Helper()
	irq := new(Interrupts)
	hwio.MustInitRegs(irq)
	return irq
}

func TestRaise(t *testing.T) {
	irq := newTestInterrupts(t)

	for src := range numIRQSources {
		if err := irq.Raise(src); err != nil {
			t.Fatalf("Raise(%s) = %v", src, err)
		}
		if irq.IF.Value&(1<<src) == 0 {
			t.Errorf("Raise(%s): IF = %04X, bit not set", src, irq.IF.Value)
		}
	}
	if irq.IF.Value != 0x3FFF {
		t.Errorf("IF = %04X, want 3FFF", irq.IF.Value)
	}

	// Idempotent.
	if err := irq.Raise(IRQKeypad); err != nil {
		t.Fatal(err)
	}
	if irq.IF.Value != 0x3FFF {
		t.Errorf("IF = %04X after raising twice, want 3FFF", irq.IF.Value)
	}
}

func TestRaiseInvalid(t *testing.T) {
	irq := newTestInterrupts(t)
	for _, src := range []IRQSource{numIRQSources, 15, 200} {
		err := irq.Raise(src)
		if !errors.Is(err, ErrInvalidIRQSource) {
			t.Errorf("Raise(%d) = %v, want %v", src, err, ErrInvalidIRQSource)
		}
	}
	if irq.IF.Value != 0 {
		t.Errorf("IF = %04X after invalid raises, want 0", irq.IF.Value)
	}
}

func TestPending(t *testing.T) {
	irq := newTestInterrupts(t)
	if irq.Pending() {
		t.Fatal("pending after reset")
	}

	irq.IE.Value = 1 << IRQVBlank
	if err := irq.Raise(IRQHBlank); err != nil {
		t.Fatal(err)
	}
	irq.IME.Value = 1
	if irq.Pending() {
		t.Error("pending with only a disabled source raised")
	}

	irq.IME.Value = 0
	if err := irq.Raise(IRQVBlank); err != nil {
		t.Fatal(err)
	}
	if irq.Pending() {
		t.Error("pending with master enable cleared")
	}

	irq.IME.Value = 1
	if !irq.Pending() {
		t.Error("not pending with enable, flag and master enable set")
	}

	// Only bit 0 of IME matters.
	irq.IME.Value = 0xFFFFFFFE
	if irq.Pending() {
		t.Error("pending with IME bit 0 cleared")
	}
}

func TestIRQSourceString(t *testing.T) {
	if got := IRQVCount.String(); got != "VCount" {
		t.Errorf("IRQVCount.String() = %q", got)
	}
	if got := IRQSource(20).String(); got != "IRQSource(20)" {
		t.Errorf("IRQSource(20).String() = %q", got)
	}
}
