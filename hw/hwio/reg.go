package hwio

import (
	"fmt"

	"gbadv/emu/log"
)

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
	W1CFlag // writing 1 to a bit clears it, writing 0 leaves it unchanged
)

// Reg16 is a 16-bit I/O register. Bits set in RoMask are not affected by
// writes.
type Reg16 struct {
	Name   string
	Value  uint16
	RoMask uint16

	Flags   RWFlags
	ReadCb  func(val uint16) uint16
	WriteCb func(old uint16, val uint16)
}

func (reg Reg16) String() string {
	s := fmt.Sprintf("%s{%04x", reg.Name, reg.Value)
	if reg.ReadCb != nil {
		s += ",r!"
	}
	if reg.WriteCb != nil {
		s += ",w!"
	}
	return s + "}"
}

func (reg *Reg16) write(val, mask uint16) {
	if reg.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.DebugZ("write to readonly reg discarded").
			String("name", reg.Name).
			Hex16("val", val).
			End()
		return
	}
	old := reg.Value
	mask &^= reg.RoMask
	if reg.Flags&W1CFlag != 0 {
		reg.Value &^= val & mask
	} else {
		reg.Value = (reg.Value &^ mask) | (val & mask)
	}
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

func (reg *Reg16) Read16() uint16 {
	if reg.Flags&WriteOnlyFlag != 0 {
		return 0
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg16) Write16(val uint16) {
	reg.write(val, 0xFFFF)
}

// Read8 reads the byte at offset off (0 or 1) of the register.
func (reg *Reg16) Read8(off uint32) uint8 {
	return uint8(reg.Read16() >> ((off & 1) * 8))
}

// Write8 writes the byte at offset off (0 or 1) of the register, the other
// byte is left untouched.
func (reg *Reg16) Write8(off uint32, val uint8) {
	shift := (off & 1) * 8
	reg.write(uint16(val)<<shift, 0xFF<<shift)
}

// Reg32 is a 32-bit I/O register. Bits set in RoMask are not affected by
// writes.
type Reg32 struct {
	Name   string
	Value  uint32
	RoMask uint32

	Flags   RWFlags
	ReadCb  func(val uint32) uint32
	WriteCb func(old uint32, val uint32)
}

func (reg Reg32) String() string {
	s := fmt.Sprintf("%s{%08x", reg.Name, reg.Value)
	if reg.ReadCb != nil {
		s += ",r!"
	}
	if reg.WriteCb != nil {
		s += ",w!"
	}
	return s + "}"
}

func (reg *Reg32) write(val, mask uint32) {
	if reg.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.DebugZ("write to readonly reg discarded").
			String("name", reg.Name).
			Hex32("val", val).
			End()
		return
	}
	old := reg.Value
	mask &^= reg.RoMask
	if reg.Flags&W1CFlag != 0 {
		reg.Value &^= val & mask
	} else {
		reg.Value = (reg.Value &^ mask) | (val & mask)
	}
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

func (reg *Reg32) Read32() uint32 {
	if reg.Flags&WriteOnlyFlag != 0 {
		return 0
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg32) Write32(val uint32) {
	reg.write(val, 0xFFFFFFFF)
}

// Read16 reads the half-word at offset off (0 or 2) of the register.
func (reg *Reg32) Read16(off uint32) uint16 {
	return uint16(reg.Read32() >> ((off & 2) * 8))
}

func (reg *Reg32) Write16(off uint32, val uint16) {
	shift := (off & 2) * 8
	reg.write(uint32(val)<<shift, 0xFFFF<<shift)
}

// Read8 reads the byte at offset off (0 to 3) of the register.
func (reg *Reg32) Read8(off uint32) uint8 {
	return uint8(reg.Read32() >> ((off & 3) * 8))
}

func (reg *Reg32) Write8(off uint32, val uint8) {
	shift := (off & 3) * 8
	reg.write(uint32(val)<<shift, 0xFF<<shift)
}
