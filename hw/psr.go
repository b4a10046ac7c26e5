package hw

// PSR is a program status word.
type PSR uint32

const (
	flagN PSR = 1 << 31 // negative
	flagZ PSR = 1 << 30 // zero
	flagC PSR = 1 << 29 // carry
	flagV PSR = 1 << 28 // overflow
	flagI PSR = 1 << 7  // IRQ disable
	flagF PSR = 1 << 6  // FIQ disable
	flagT PSR = 1 << 5  // Thumb state

	modeMask = 0x1F
)

func (p PSR) N() bool           { return p&flagN != 0 }
func (p PSR) Z() bool           { return p&flagZ != 0 }
func (p PSR) C() bool           { return p&flagC != 0 }
func (p PSR) V() bool           { return p&flagV != 0 }
func (p PSR) IRQDisabled() bool { return p&flagI != 0 }
func (p PSR) FIQDisabled() bool { return p&flagF != 0 }
func (p PSR) Thumb() bool       { return p&flagT != 0 }

// Mode decodes the mode field.
func (p PSR) Mode() (Mode, bool) {
	return modeFromBits(uint32(p))
}

func (p *PSR) set(flag PSR, v bool) {
	if v {
		*p |= flag
	} else {
		*p &^= flag
	}
}

func (p *PSR) setMode(m Mode) {
	*p = *p&^modeMask | PSR(m.Bits())
}

func (p PSR) String() string {
	const bits = "nzcvNZCV"

	s := make([]byte, 0, 12)
	for i := range 4 {
		bit := 0
		if p&(1<<(31-i)) != 0 {
			bit = 4
		}
		s = append(s, bits[i+bit])
	}
	s = append(s, ' ')

	const ctl = "iftIFT"
	for i := range 3 {
		bit := 0
		if p&(1<<(7-i)) != 0 {
			bit = 3
		}
		s = append(s, ctl[i+bit])
	}
	s = append(s, ' ')

	if m, ok := p.Mode(); ok {
		s = append(s, modeInfos[m].short...)
	} else {
		s = append(s, "???"...)
	}
	return string(s)
}
