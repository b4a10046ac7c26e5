// Package hwio provides the building blocks of a memory-mapped bus: a 32-bit
// address decoder, byte stores, I/O registers and register windows.
package hwio

import (
	"fmt"
	"slices"

	"gbadv/emu/log"
)

// BankIO is implemented by everything that can be mapped in a Table. The
// address passed to the methods is the offset from the start of the mapped
// range, already aligned to the access width.
type BankIO interface {
	Read8(off uint32) uint8
	Read16(off uint32) uint16
	Read32(off uint32) uint32
	Write8(off uint32, val uint8)
	Write16(off uint32, val uint16)
	Write32(off uint32, val uint32)
}

type mapping struct {
	name       string
	start, end uint32 // inclusive
	io         BankIO
}

func (m *mapping) contains(addr uint32) bool {
	return addr >= m.start && addr <= m.end
}

// Table is a 32-bit address decoder. It holds an ordered list of
// non-overlapping ranges, each one forwarding accesses to a BankIO.
// Unmapped reads return 0, unmapped writes are discarded.
type Table struct {
	Name string

	ranges []mapping
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

func (t *Table) Reset() {
	t.ranges = t.ranges[:0]
}

// Map maps io at [addr, addr+size). It panics if the range is empty or
// overlaps an already mapped range.
func (t *Table) Map(name string, addr, size uint32, io BankIO) {
	if size == 0 {
		panic(fmt.Errorf("hwio: %s: mapping %q with zero size", t.Name, name))
	}
	end := addr + size - 1
	if end < addr {
		panic(fmt.Errorf("hwio: %s: mapping %q overflows address space", t.Name, name))
	}
	for _, m := range t.ranges {
		if addr <= m.end && end >= m.start {
			panic(fmt.Errorf("hwio: %s: %q [%08x-%08x] overlaps %q [%08x-%08x]",
				t.Name, name, addr, end, m.name, m.start, m.end))
		}
	}

	log.ModHwIo.DebugZ("mapping").
		String("bus", t.Name).
		String("area", name).
		Hex32("start", addr).
		Hex32("end", end).
		End()

	t.ranges = append(t.ranges, mapping{name: name, start: addr, end: end, io: io})
	slices.SortFunc(t.ranges, func(a, b mapping) int {
		switch {
		case a.start < b.start:
			return -1
		case a.start > b.start:
			return 1
		}
		return 0
	})
}

// MapMem maps a byte store, its size being the size of its buffer.
func (t *Table) MapMem(addr uint32, mem *Mem) {
	t.Map(mem.Name, addr, uint32(len(mem.Data)), mem)
}

// MapBank maps all the Mem and Device fields of bank having the given bank
// number. Fields must have an hwio struct tag with an offset, which is
// relative to addr. See InitRegs for the tag syntax.
func (t *Table) MapBank(addr uint32, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Device:
			t.Map(r.Name, addr+reg.offset, r.Size, r)
		default:
			panic(fmt.Errorf("hwio: %s: can't map %T directly, use a Device", t.Name, r))
		}
	}
}

// Unmap removes the range starting at addr, if any.
func (t *Table) Unmap(addr uint32) {
	t.ranges = slices.DeleteFunc(t.ranges, func(m mapping) bool { return m.start == addr })
}

func (t *Table) search(addr uint32) *mapping {
	for i := range t.ranges {
		if t.ranges[i].contains(addr) {
			return &t.ranges[i]
		}
	}
	return nil
}

func (t *Table) unmapped(op string, addr uint32) {
	log.ModHwIo.DebugZ("unmapped access").
		String("bus", t.Name).
		String("op", op).
		Hex32("addr", addr).
		End()
}

func (t *Table) Read8(addr uint32) uint8 {
	m := t.search(addr)
	if m == nil {
		t.unmapped("Read8", addr)
		return 0
	}
	return m.io.Read8(addr - m.start)
}

func (t *Table) Read16(addr uint32) uint16 {
	addr &^= 1
	m := t.search(addr)
	if m == nil {
		t.unmapped("Read16", addr)
		return 0
	}
	return m.io.Read16(addr - m.start)
}

func (t *Table) Read32(addr uint32) uint32 {
	addr &^= 3
	m := t.search(addr)
	if m == nil {
		t.unmapped("Read32", addr)
		return 0
	}
	return m.io.Read32(addr - m.start)
}

func (t *Table) Write8(addr uint32, val uint8) {
	m := t.search(addr)
	if m == nil {
		t.unmapped("Write8", addr)
		return
	}
	m.io.Write8(addr-m.start, val)
}

func (t *Table) Write16(addr uint32, val uint16) {
	addr &^= 1
	m := t.search(addr)
	if m == nil {
		t.unmapped("Write16", addr)
		return
	}
	m.io.Write16(addr-m.start, val)
}

func (t *Table) Write32(addr uint32, val uint32) {
	addr &^= 3
	m := t.search(addr)
	if m == nil {
		t.unmapped("Write32", addr)
		return
	}
	m.io.Write32(addr-m.start, val)
}
