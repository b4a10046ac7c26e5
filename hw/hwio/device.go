package hwio

import (
	"fmt"

	"gbadv/emu/log"
)

// Device is an I/O window made of 16-bit and 32-bit registers. It implements
// BankIO and decomposes the accesses no register handles at their width:
// a 32-bit access becomes two 16-bit accesses, a 16-bit access becomes two
// 8-bit accesses, and a byte is served by the register covering it.
// Offsets covered by no register read 0 and ignore writes.
type Device struct {
	Name string // name of the window (for debugging)
	Size uint32 // size of the window in bytes

	r16 []*Reg16 // indexed by offset/2
	r32 []*Reg32 // indexed by offset/4
}

func (d *Device) init(size uint32) {
	d.Size = size
	d.r16 = make([]*Reg16, (size+1)/2)
	d.r32 = make([]*Reg32, (size+3)/4)
}

func (d *Device) checkFree(off, size uint32, name string) {
	if off%size != 0 {
		panic(fmt.Errorf("hwio: %s: register %s at unaligned offset %03x", d.Name, name, off))
	}
	if off+size > d.Size {
		panic(fmt.Errorf("hwio: %s: register %s at offset %03x out of window", d.Name, name, off))
	}
	for o := off; o < off+size; o += 2 {
		if d.r16[o/2] != nil || d.r32[o/4] != nil {
			panic(fmt.Errorf("hwio: %s: register %s at offset %03x overlaps another register", d.Name, name, off))
		}
	}
}

func (d *Device) MapReg16(off uint32, reg *Reg16) {
	d.checkFree(off, 2, reg.Name)
	d.r16[off/2] = reg
}

func (d *Device) MapReg32(off uint32, reg *Reg32) {
	d.checkFree(off, 4, reg.Name)
	d.r32[off/4] = reg
}

// MapBank maps all the registers of bank having the given bank number, at
// their tag offset plus off.
func (d *Device) MapBank(off uint32, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Reg16:
			d.MapReg16(off+reg.offset, r)
		case *Reg32:
			d.MapReg32(off+reg.offset, r)
		default:
			panic(fmt.Errorf("hwio: %s: invalid reg type: %T", d.Name, r))
		}
	}
}

func (d *Device) unhandled(op string, off uint32) {
	log.ModHwIo.DebugZ("unhandled io access").
		String("dev", d.Name).
		String("op", op).
		Hex32("off", off).
		End()
}

func (d *Device) Read8(off uint32) uint8 {
	if off >= d.Size {
		return 0
	}
	if r := d.r16[off/2]; r != nil {
		return r.Read8(off & 1)
	}
	if r := d.r32[off/4]; r != nil {
		return r.Read8(off & 3)
	}
	d.unhandled("Read8", off)
	return 0
}

func (d *Device) Read16(off uint32) uint16 {
	off &^= 1
	if off < d.Size {
		if r := d.r16[off/2]; r != nil {
			return r.Read16()
		}
	}
	return uint16(d.Read8(off)) | uint16(d.Read8(off+1))<<8
}

func (d *Device) Read32(off uint32) uint32 {
	off &^= 3
	if off < d.Size {
		if r := d.r32[off/4]; r != nil {
			return r.Read32()
		}
	}
	return uint32(d.Read16(off)) | uint32(d.Read16(off+2))<<16
}

func (d *Device) Write8(off uint32, val uint8) {
	if off >= d.Size {
		return
	}
	if r := d.r16[off/2]; r != nil {
		r.Write8(off&1, val)
		return
	}
	if r := d.r32[off/4]; r != nil {
		r.Write8(off&3, val)
		return
	}
	d.unhandled("Write8", off)
}

func (d *Device) Write16(off uint32, val uint16) {
	off &^= 1
	if off < d.Size {
		if r := d.r16[off/2]; r != nil {
			r.Write16(val)
			return
		}
	}
	d.Write8(off, uint8(val))
	d.Write8(off+1, uint8(val>>8))
}

func (d *Device) Write32(off uint32, val uint32) {
	off &^= 3
	if off < d.Size {
		if r := d.r32[off/4]; r != nil {
			r.Write32(val)
			return
		}
	}
	d.Write16(off, uint16(val))
	d.Write16(off+2, uint16(val>>16))
}
