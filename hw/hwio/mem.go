package hwio

import (
	"encoding/binary"

	"gbadv/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = (1 << iota) // writes are discarded
)

// Mem is a linear byte store. Every access goes through the aligned 32-bit
// word containing the addressed data, words are stored little-endian.
// Narrow writes are read-modify-write of that word.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer, its length is a multiple of 4
	Flags MemFlags // flags determining how the memory can be accessed
}

// NewMem returns a memory area of the given size, rounded up to a multiple
// of 4.
func NewMem(name string, size int, flags MemFlags) *Mem {
	return &Mem{
		Name:  name,
		Data:  make([]byte, (size+3)&^3),
		Flags: flags,
	}
}

// Load replaces the memory contents with a copy of buf, padded with zeroes
// to a multiple of 4.
func (m *Mem) Load(buf []byte) {
	m.Data = make([]byte, (len(buf)+3)&^3)
	copy(m.Data, buf)
}

// Reset zeroes the memory contents.
func (m *Mem) Reset() {
	clear(m.Data)
}

func (m *Mem) Read32(off uint32) uint32 {
	off &^= 3
	if uint64(off)+4 > uint64(len(m.Data)) {
		return 0
	}
	return binary.LittleEndian.Uint32(m.Data[off:])
}

func (m *Mem) Read16(off uint32) uint16 {
	w := m.Read32(off)
	return uint16(w >> ((off & 2) * 8))
}

func (m *Mem) Read8(off uint32) uint8 {
	w := m.Read32(off)
	return uint8(w >> ((off & 3) * 8))
}

func (m *Mem) Write32(off uint32, val uint32) {
	off &^= 3
	if m.Flags&MemFlagReadOnly != 0 {
		log.ModMem.DebugZ("write to readonly memory discarded").
			String("area", m.Name).
			Hex32("off", off).
			Hex32("val", val).
			End()
		return
	}
	if uint64(off)+4 > uint64(len(m.Data)) {
		return
	}
	binary.LittleEndian.PutUint32(m.Data[off:], val)
}

func (m *Mem) Write16(off uint32, val uint16) {
	shift := (off & 2) * 8
	w := m.Read32(off)
	w = w&^(0xFFFF<<shift) | uint32(val)<<shift
	m.Write32(off, w)
}

func (m *Mem) Write8(off uint32, val uint8) {
	shift := (off & 3) * 8
	w := m.Read32(off)
	w = w&^(0xFF<<shift) | uint32(val)<<shift
	m.Write32(off, w)
}
