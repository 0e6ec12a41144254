// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arch

const (
	REG_BITS = 32 // Width of every architected register.

	CR_FIELDS     = 8 // Fields in the CR.
	CR_FIELD_BITS = 4 // Bits in one CR field.
)

// Bit offsets inside a CR field.
const (
	CR_LT = 0 // Negative / less than.
	CR_GT = 1 // Positive / greater than.
	CR_EQ = 2 // Zero / equal.
	CR_SO = 3 // Copy of XER[SO].
)

// XER bit numbers.
const (
	XER_BIT_SO    = 0  // Summary overflow.
	XER_BIT_OV    = 1  // Overflow.
	XER_BIT_CA    = 2  // Carry.
	XER_BIT_TBC   = 25 // First bit of the transfer byte count.
	XER_BIT_TBC_E = 31 // Last bit of the transfer byte count.
)

// XER masks.
const (
	XER_SO       = uint32(1) << (31 - XER_BIT_SO)
	XER_OV       = uint32(1) << (31 - XER_BIT_OV)
	XER_CA       = uint32(1) << (31 - XER_BIT_CA)
	XER_TBC_MASK = uint32(0x7f)
)

// Mask returns a right-aligned mask of width bits.
func Mask(width uint) uint32 {
	if width >= REG_BITS {
		return ^uint32(0)
	}
	return (uint32(1) << width) - 1
}

// Bits extracts the inclusive bit range [start, end] from value, right
// aligned, keeping the bit order. Out of range arguments return 0.
func Bits(value uint32, start, end uint) uint32 {
	if start > end || end >= REG_BITS {
		return 0
	}

	return (value >> (31 - end)) & Mask(end-start+1)
}

// SetBits replaces the inclusive bit range [start, end] of value with the
// low bits of field. Out of range arguments return value unchanged.
func SetBits(value uint32, start, end uint, field uint32) uint32 {
	if start > end || end >= REG_BITS {
		return value
	}

	shift := 31 - end
	mask := Mask(end-start+1) << shift

	return (value &^ mask) | ((field << shift) & mask)
}

// CRField returns the 4-bit field n (0..7) of a CR value.
func CRField(cr uint32, n int) uint32 {
	if n < 0 || n >= CR_FIELDS {
		return 0
	}

	start := uint(n * CR_FIELD_BITS)
	return Bits(cr, start, start+CR_FIELD_BITS-1)
}
