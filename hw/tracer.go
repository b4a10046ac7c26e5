package hw

import (
	"io"

	"github.com/go-faster/jx"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	PC     uint32
	Opcode uint32
	Thumb  bool
	CPSR   PSR
	R      [16]uint32
	Cycles int64
}

type ppuPosition interface {
	Position() (scanline, dot int)
}

// tracer writes one JSON object per executed instruction (JSON lines).
type tracer struct {
	w   io.Writer
	pos ppuPosition
	enc jx.Encoder
	hex [8]byte
}

func hexEncode(dst []byte, v uint32) []byte {
	const hextable = "0123456789ABCDEF"
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = hextable[v&0xF]
		v >>= 4
	}
	return dst
}

func (t *tracer) hex32(v uint32) []byte { return hexEncode(t.hex[:8], v) }
func (t *tracer) hex16(v uint16) []byte { return hexEncode(t.hex[:4], uint32(v)) }

// write the execution trace for the current instruction.
func (t *tracer) write(state cpuState) {
	e := &t.enc
	e.Reset()

	e.ObjStart()
	e.FieldStart("pc")
	e.ByteStr(t.hex32(state.PC))
	e.FieldStart("op")
	if state.Thumb {
		e.ByteStr(t.hex16(uint16(state.Opcode)))
	} else {
		e.ByteStr(t.hex32(state.Opcode))
	}
	e.FieldStart("thumb")
	e.Bool(state.Thumb)
	e.FieldStart("cpsr")
	e.ByteStr(t.hex32(uint32(state.CPSR)))
	e.FieldStart("flags")
	e.Str(state.CPSR.String())
	e.FieldStart("r")
	e.ArrStart()
	for _, r := range state.R {
		e.ByteStr(t.hex32(r))
	}
	e.ArrEnd()
	e.FieldStart("cycles")
	e.Int(int(state.Cycles))
	if t.pos != nil {
		line, dot := t.pos.Position()
		e.FieldStart("line")
		e.Int(line)
		e.FieldStart("dot")
		e.Int(dot)
	}
	e.ObjEnd()

	buf := append(e.Bytes(), '\n')
	t.w.Write(buf)
}
