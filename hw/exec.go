package hw

import "gbadv/emu/log"

// Recognized encodings. Everything else is reported and skipped.
const (
	armSWPMask  = 0x0FB00FF0
	armSWPBits  = 0x01000090
	armSWIMask  = 0x0F000000
	armSWIBits  = 0x0F000000
	thumbSWIMsk = 0xFF00
	thumbSWI    = 0xDF00
)

// SUBS pc, lr, #4 returns from an exception. On hardware the banked LR
// points 4 bytes past the return address. Here enterException saves
// LR = PC - width, so ReturnFromException resumes at LR + width instead of
// LR - 4.
const (
	armRFEMask = 0x0FFFFFFF
	armRFEBits = 0x025EF004
)

func (c *CPU) execARM(op uint32) {
	if !c.checkCondition(op >> 28) {
		return
	}

	switch {
	case op&armRFEMask == armRFEBits:
		if err := c.ReturnFromException(); err != nil {
			log.ModCPU.WarnZ("SUBS pc, lr, #4").
				Hex32("pc", c.R[15]-4).
				Error("err", err).
				End()
		}
	case op&armSWPMask == armSWPBits:
		log.ModCPU.DebugZ("SWP").
			Hex32("op", op).
			Bool("byte", op&(1<<22) != 0).
			End()
	case op&armSWIMask == armSWIBits:
		log.ModCPU.DebugZ("SWI").
			Hex32("op", op).
			Hex32("comment", op&0x00FFFFFF).
			End()
	default:
		log.ModCPU.DebugZ("unimplemented ARM instruction").
			Hex32("op", op).
			Hex32("pc", c.R[15]-4).
			End()
	}
}

func (c *CPU) execThumb(op uint16) {
	switch {
	case op&thumbSWIMsk == thumbSWI:
		log.ModCPU.DebugZ("Thumb SWI").
			Hex16("op", op).
			Hex8("comment", uint8(op)).
			End()
	default:
		log.ModCPU.DebugZ("unimplemented Thumb instruction").
			Hex16("op", op).
			Hex32("pc", c.R[15]-2).
			End()
	}
}
