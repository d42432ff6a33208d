package cpu

import (
	"testing"

	"github.com/vatine/agc/pkg/arith"
)

func TestDV(t *testing.T) {
	cases := []struct {
		a, l, k uint16
		qA, rL  uint16
	}{
		{1, 0, 2, 0o20000, 0},
		{0, 5, 3, 1, 2},
		{1, 0, 0o77775, 0o157777, 0},
		{0o177776, 0o77777, 2, 0o157777, 0o77777},
		{0, 0o77772, 3, 0o177776, 0o77775},
		{0, 1, 3, 0, 1},
		{0, 0o77776, 3, 0o177777, 0o77776}, // -1 / 3
		{0, 0, 5, 0, 0},
		{0, 0, 0o77772, 0o177777, 0},
		{0, 0, 0, 0o37777, 0},
		{3, 0, 3, 0o37777, 3},
		{3, 0, 0o77774, 0o140000, 3},
	}

	for ix, tc := range cases {
		c := testCPU()
		load(c, 0o1000, 0o00006, 0o11100)
		c.WriteMemory(RegA, tc.a)
		c.WriteMemory(RegL, tc.l)
		c.WriteMemory(0o1100, tc.k)
		execOne(t, c)
		execOne(t, c)

		if a := c.reg(RegA); a != tc.qA {
			t.Errorf("Case #%d, A is %06o, expected %06o", ix, a, tc.qA)
		}
		if l := c.reg(RegL); l != tc.rL {
			t.Errorf("Case #%d, L is %05o, expected %05o", ix, l, tc.rL)
		}
	}
}

// In the range where both work, the hardware model and native division
// must agree.
func TestSimulateDVAgrees(t *testing.T) {
	cases := []struct {
		a, l, k uint16
	}{
		{1, 0, 2},
		{0, 5, 3},
		{1, 0, 0o77775},
		{0o177776, 0o77777, 2},
		{0, 0o77772, 3},
	}

	for ix, tc := range cases {
		native := testCPU()
		load(native, 0o1000, 0o00006, 0o11100)
		native.WriteMemory(RegA, tc.a)
		native.WriteMemory(RegL, tc.l)
		native.WriteMemory(0o1100, tc.k)
		execOne(t, native)
		execOne(t, native)

		sim := testCPU()
		sim.WriteMemory(RegA, tc.a)
		sim.WriteMemory(RegL, tc.l)
		sim.simulateDV(arith.SignExtend(tc.k))

		if native.reg(RegA) != sim.reg(RegA) || native.reg(RegL) != sim.reg(RegL) {
			t.Errorf("Case #%d, native gives %06o,%05o, simulation %06o,%05o", ix,
				native.reg(RegA), native.reg(RegL), sim.reg(RegA), sim.reg(RegL))
		}
	}
}

func TestDVOverflowedDivisor(t *testing.T) {
	c := testCPU()
	load(c, 0o1000, 0o00006, 0o10002) // DV Q
	c.WriteMemory(RegA, 1)
	c.WriteMemory(RegQ, 0o040002)
	execOne(t, c)
	execOne(t, c)

	if z := c.reg(RegZ); z != 0o1002 {
		t.Errorf("Z is %04o, expected 1002", z)
	}

	sim := testCPU()
	sim.WriteMemory(RegA, 1)
	sim.simulateDV(0o040002)
	if c.reg(RegA) != sim.reg(RegA) || c.reg(RegL) != sim.reg(RegL) {
		t.Errorf("DV gives %06o,%05o, simulation %06o,%05o",
			c.reg(RegA), c.reg(RegL), sim.reg(RegA), sim.reg(RegL))
	}
}
