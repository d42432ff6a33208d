// One's-complement arithmetic for the AGC word formats.
//
// Single precision (SP) values are 15 bits: 14 bits of magnitude and a
// sign in bit 15 (0o40000). The 16-bit registers (A, Q) carry an extra
// bit, so that bits 16 and 15 together encode overflow. Double precision
// (DP) values are a pair of SP words, each with its own sign.
//
// Inside the package, "decent" is the name used for a DP value squeezed
// into a single 28-bit magnitude with one sign bit (plus one bit of sign
// extension), which is what multiply and divide operate on.
package arith

// Some numerical constants, in AGC format.
const (
	P0 uint16 = 0       // +0
	M0 uint16 = 0o77777 // -0
	P1 uint16 = 1       // +1
	M1 uint16 = 0o77776 // -1
)

// Copy the sign (bit 15) into bit 16.
func SignExtend(value uint16) uint16 {
	return (value & 0o77777) | ((value << 1) & 0o100000)
}

// Fold a 16-bit value back into 15 bits, taking the sign from bit 16.
func OverflowCorrected(value uint16) uint16 {
	return (value & 0o37777) | ((value >> 1) & 0o40000)
}

// Add two 16-bit values with end-around carry.
func AddSP16(addend1, addend2 uint16) uint16 {
	sum := uint32(addend1) + uint32(addend2)
	if sum&0o200000 != 0 {
		sum += uint32(P1)
		sum &= 0o177777
	}
	return uint16(sum)
}

// Absolute value of an SP value.
func AbsSP(value uint16) uint16 {
	if value&0o40000 != 0 {
		return 0o77777 & ^value
	}
	return value
}

func NegateSP(value uint16) uint16 {
	return 0o77777 & ^value
}

// Negation of a 16-bit register value.
func NegateSP16(value uint16) uint16 {
	return ^value
}

// Classify the overflow bits of a 16-bit value. Positive overflow gives
// P1, negative overflow gives M1 and no overflow gives P0.
func ValueOverflowed(value uint16) uint16 {
	switch value & 0o140000 {
	case 0o040000:
		return P1
	case 0o100000:
		return M1
	default:
		return P0
	}
}

// Dabs computes the "diminished absolute value", |x|-1 for |x| > 1 and
// +0 otherwise. Input and output are SP.
func Dabs(input uint16) uint16 {
	if input&0o40000 != 0 {
		input = 0o37777 & ^input
	}
	if input > 1 {
		return input - 1
	}
	return 0
}

// Odabs is Dabs for 16-bit registers; the overflow bit counts as
// magnitude.
func Odabs(input uint16) uint16 {
	if input&0o100000 != 0 {
		input = ^input
	}
	if input > 1 {
		return input - 1
	}
	return 0
}

// Convert an SP word to a native integer.
func ToNative(input uint16) int {
	if input&0o40000 != 0 {
		return -int(0o37777 & ^input)
	}
	return int(0o37777 & input)
}

// Convert a native integer to an SP word. Out of range values are
// truncated by discarding the high-order bits.
func FromNative(input int) uint16 {
	if input < 0 {
		return 0o77777 & ^uint16(-input)
	}
	return 0o77777 & uint16(input)
}

// Convert a decent DP value (28 bits plus sign) to a native integer.
func ToNative2(input uint32) int {
	if input&0o2000000000 != 0 {
		return -int(0o1777777777 & ^input)
	}
	return int(0o1777777777 & input)
}

// Convert a native integer to a decent DP value, truncating.
func FromNative2(input int) uint32 {
	if input < 0 {
		return 0o3777777777 & ^(0o1777777777 & uint32(-input))
	}
	return 0o1777777777 & uint32(input)
}

// SPToDecent joins a DP word pair into a single decent value, sign
// extended into bit 30. The signs of the two words need not agree.
func SPToDecent(msw, lsw uint16) uint32 {
	if msw == P0 || msw == M0 {
		// With a zero upper word the sign of the lower word wins, as
		// the DV instruction does it.
		value := uint32(SignExtend(lsw))
		if value&0o100000 != 0 {
			value |= ^uint32(0o177777)
		}
		return 0o7777777777 & value
	}
	if (lsw & 0o40000) != (msw & 0o40000) {
		if lsw == P0 || lsw == M0 {
			if msw&0o40000 == 0 {
				lsw = P0
			} else {
				lsw = M0
			}
		} else {
			// Work with a positive upper word.
			complement := msw&0o40000 != 0
			if complement {
				msw = NegateSP(msw)
				lsw = NegateSP(lsw)
			}
			// Borrow 1 from the upper word: that is 2^14 in the lower
			// word, plus 1 for the negative end-around.
			msw--
			lsw = (lsw + 0o40000 + P1) & 0o77777
			if complement {
				msw = NegateSP(msw)
				lsw = NegateSP(lsw)
			}
		}
	}
	value := (0o3777740000 & (uint32(msw) << 14)) | (0o37777 & uint32(lsw))
	if value&0o2000000000 != 0 {
		value |= 0o4000000000
	}
	return value
}

// DecentToSP splits a decent value into an SP pair with matching signs.
func DecentToSP(decent uint32) (msw, lsw uint16) {
	lsw = uint16(0o37777 & decent)
	if decent&0o4000000000 != 0 {
		lsw |= 0o40000
	}
	msw = OverflowCorrected(uint16(0o177777 & (decent >> 14)))
	return msw, lsw
}
