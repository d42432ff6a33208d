package cpu

import (
	"github.com/vatine/agc/pkg/arith"
)

// Whether a DV quotient comes out negative: the sign is taken from A,
// unless A is zero and the sign comes from L.
func (c *CPU) negativeQuotient(absA uint16) bool {
	if absA == 0 {
		return arith.SignExtend(c.ReadMemory(RegL))&0o100000 != 0
	}
	return c.ReadMemory(RegA)&0o100000 != 0
}

// The divisor as DV sees it. When K is A, L or Z, DV has already modified
// that register by the time the divisor is read.
func (c *CPU) divisor(k, absA uint16) uint16 {
	switch {
	case k == RegA:
		div := c.ReadMemory(RegA)
		if div&0o100000 == 0 {
			div = ^div
		}
		return div
	case k == RegL:
		div := arith.SignExtend(c.ReadMemory(RegL))
		if c.negativeQuotient(absA) {
			div = ^div
		}
		return arith.SignExtend(arith.OverflowCorrected(arith.AddSP16(div, 0o40000)))
	case k == RegZ:
		div := c.ReadMemory(RegZ)
		if c.negativeQuotient(absA) {
			div |= 0o100000
		}
		return div
	}
	return c.read16(k)
}

// DV K: divide A,L by K, quotient in A and remainder in L. Divisions the
// hardware can't do properly still produce a well defined answer, which
// simulateDV works out.
func execDV(c *CPU, op operand) {
	k := op.imm10()
	dividend := arith.SPToDecent(arith.OverflowCorrected(c.ReadMemory(RegA)), c.ReadMemory(RegL))
	upper, lower := arith.DecentToSP(dividend)
	absA := arith.AbsSP(upper)
	absL := arith.AbsSP(lower)

	div16 := c.divisor(k, absA)
	div := arith.OverflowCorrected(div16)
	absK := arith.AbsSP(div)

	switch {
	case absA > absK || (absA == absK && absL != arith.P0) || arith.ValueOverflowed(div16) != arith.P0:
		c.simulateDV(div16)

	case absA == 0 && absL == 0:
		// Zero dividend: the quotient is a signed zero, or the largest
		// value of that sign for a zero divisor. L is left alone.
		var q uint16
		if c.ReadMemory(RegL)&0o40000 == div&0o40000 {
			q = arith.P0
			if absK == 0 {
				q = 0o37777
			}
		} else {
			q = arith.M0
			if absK == 0 {
				q = 0o40000
			}
		}
		c.WriteMemory(RegA, arith.SignExtend(q))

	case absA == absK && absL == arith.P0:
		// Equal magnitudes: the quotient saturates.
		q := uint16(0o40000)
		if upper == div {
			q = 0o37777
		}
		c.WriteMemory(RegL, arith.SignExtend(upper))
		c.WriteMemory(RegA, arith.SignExtend(q))

	default:
		c.divideNative(arith.ToNative2(dividend), arith.ToNative(div))
	}
}

// The ordinary case, |dividend| < |divisor|, done with native integers.
// Go's truncating / and % follow the DV sign rules.
func (c *CPU) divideNative(dividend, divisor int) {
	quotient := dividend / divisor
	remainder := dividend % divisor

	if quotient == 0 && (dividend < 0) != (divisor < 0) {
		c.WriteMemory(RegA, arith.SignExtend(arith.M0))
	} else {
		c.WriteMemory(RegA, arith.SignExtend(arith.FromNative(quotient)))
	}

	switch {
	case remainder != 0:
		c.WriteMemory(RegL, arith.SignExtend(arith.FromNative(remainder)))
	case dividend >= 0:
		c.WriteMemory(RegL, arith.P0)
	default:
		c.WriteMemory(RegL, arith.SignExtend(arith.M0))
	}
}

// A model of the divide as the hardware does it, one quotient bit per
// step, for the cases that give "total nonsense" on the real machine. If
// the divisor was A, L or Z it has already been modified by the caller.
func (c *CPU) simulateDV(divisor uint16) {
	a := c.ReadMemory(RegA)
	l := arith.SignExtend(c.ReadMemory(RegL))

	// The dividend sign is in A, or in L if A is -0 once made negative.
	dividendSign := a & 0o100000
	if dividendSign == 0 {
		a = ^a
	}
	if a == 0o177777 {
		dividendSign = l & 0o100000
	}
	if dividendSign != 0 {
		l = ^l
	}

	l = arith.AddSP16(l, 0o40000)
	if arith.ValueOverflowed(l) != arith.P1 {
		a = arith.AddSP16(a, 1)
	}
	remainder := a

	divisorSign := divisor & 0o100000
	if divisorSign != 0 {
		divisor = ^divisor
	}

	// WYD on L: its sign goes to bits 16 and 1, bits 14-1 to bits 15-2.
	quotientSign := l & 0o100000
	quotient := quotientSign | ((l & 0o37777) << 1) | (quotientSign >> 15)

	for i := 0; i < 14; i++ {
		quotient <<= 1

		remainderSign := remainder & 0o100000
		remainder = remainderSign | ((remainder & 0o37777) << 1)
		if quotient&0o100000 == 0 {
			remainder |= remainderSign >> 15
		}

		sum := arith.AddSP16(remainder, divisor)
		if sum&0o100000 != 0 {
			quotient |= 1
			remainder = sum
		}
	}

	a = quotientSign | (quotient & 0o77777)
	if dividendSign != divisorSign {
		a = ^a
	}
	c.WriteMemory(RegA, a)

	if dividendSign != 0 {
		c.WriteMemory(RegL, remainder)
	} else {
		c.WriteMemory(RegL, ^remainder)
	}
}
