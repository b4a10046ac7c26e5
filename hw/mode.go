package hw

//go:generate go tool stringer -type=Mode -trimprefix=Mode

// Mode is a CPU privilege mode.
type Mode uint8

const (
	ModeUser Mode = iota
	ModeFIQ
	ModeIRQ
	ModeSupervisor
	ModeAbort
	ModeUndefined
	ModeSystem

	numModes
)

// numBanks is the number of SP/LR register banks, User and System share
// the same one.
const numBanks = 6

var modeInfos = [numModes]struct {
	bits  uint32 // encoding in the status word mode field
	bank  int    // index of the banked SP/LR
	short string
}{
	ModeUser:       {0x10, 0, "USR"},
	ModeFIQ:        {0x11, 1, "FIQ"},
	ModeIRQ:        {0x12, 2, "IRQ"},
	ModeSupervisor: {0x13, 3, "SVC"},
	ModeAbort:      {0x17, 4, "ABT"},
	ModeUndefined:  {0x1B, 5, "UND"},
	ModeSystem:     {0x1F, 0, "SYS"},
}

// Bits returns the 5-bit encoding of m.
func (m Mode) Bits() uint32 { return modeInfos[m].bits }

func (m Mode) bank() int { return modeInfos[m].bank }

// hasSPSR reports whether m owns a saved status word.
func (m Mode) hasSPSR() bool { return m != ModeUser && m != ModeSystem }

// modeFromBits decodes a 5-bit mode field.
func modeFromBits(bits uint32) (Mode, bool) {
	bits &= modeMask
	for m := range numModes {
		if modeInfos[m].bits == bits {
			return m, true
		}
	}
	return 0, false
}
