package hwio

type word interface {
	~uint8 | ~uint16 | ~uint32
}

func GetBit[T word](v T, n uint) bool {
	return v>>n&1 != 0
}

func SetBit[T word](v *T, n uint) {
	*v |= 1 << n
}

func ClearBit[T word](v *T, n uint) {
	*v &^= 1 << n
}

// SetBitTo sets bit n of v if set is true, clears it otherwise.
func SetBitTo[T word](v *T, n uint, set bool) {
	if set {
		SetBit(v, n)
	} else {
		ClearBit(v, n)
	}
}

// Bits extracts the bit field [lo, lo+width) of v.
func Bits[T word](v T, lo, width uint) T {
	return v >> lo & (1<<width - 1)
}
