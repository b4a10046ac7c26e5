package hw

// Condition codes, bits 31-28 of ARM instructions.
const (
	CondEQ = iota // Z set
	CondNE        // Z clear
	CondCS        // C set
	CondCC        // C clear
	CondMI        // N set
	CondPL        // N clear
	CondVS        // V set
	CondVC        // V clear
	CondHI        // C set and Z clear
	CondLS        // C clear or Z set
	CondGE        // N == V
	CondLT        // N != V
	CondGT        // Z clear and N == V
	CondLE        // Z set or N != V
	CondAL        // always
	CondNV        // never
)

func evalCond(cond uint32, n, z, c, v bool) bool {
	switch cond {
	case CondEQ:
		return z
	case CondNE:
		return !z
	case CondCS:
		return c
	case CondCC:
		return !c
	case CondMI:
		return n
	case CondPL:
		return !n
	case CondVS:
		return v
	case CondVC:
		return !v
	case CondHI:
		return c && !z
	case CondLS:
		return !c || z
	case CondGE:
		return n == v
	case CondLT:
		return n != v
	case CondGT:
		return !z && n == v
	case CondLE:
		return z || n != v
	case CondAL:
		return true
	}
	return false
}

// condTable[cond] has bit nzcv set if cond passes for these flags.
var condTable = func() (tbl [16]uint16) {
	for cond := range uint32(16) {
		for nzcv := range 16 {
			n, z, c, v := nzcv&8 != 0, nzcv&4 != 0, nzcv&2 != 0, nzcv&1 != 0
			if evalCond(cond, n, z, c, v) {
				tbl[cond] |= 1 << nzcv
			}
		}
	}
	return tbl
}()

// checkCondition reports whether condition code cond passes for the flags
// of p.
func checkCondition(cond uint32, p PSR) bool {
	return condTable[cond&0xF]>>(uint32(p)>>28)&1 != 0
}
