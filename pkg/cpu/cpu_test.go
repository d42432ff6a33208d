package cpu

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testCPU() *CPU {
	c := NewCPU()
	l := logrus.New()
	l.Out = io.Discard
	c.Log = l
	return c
}

// Step until an instruction completes.
func execOne(t *testing.T, c *CPU) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if c.Step() {
			return
		}
	}
	t.Fatalf("no instruction completed in 100 steps, Z is %04o", c.reg(RegZ))
}

func load(c *CPU, addr uint16, words ...uint16) {
	for i, w := range words {
		c.WriteMemory(addr+uint16(i), w)
	}
	c.WriteMemory(RegZ, addr)
}

func TestPowerOn(t *testing.T) {
	c := testCPU()

	if z := c.reg(RegZ); z != 0o4000 {
		t.Errorf("Z is %04o, expected 4000", z)
	}
	if c.InterruptsEnabled() {
		t.Errorf("interrupts enabled at power on")
	}
	if c.CycleCounter() != 0 {
		t.Errorf("cycle counter is %d, expected 0", c.CycleCounter())
	}

	c.Step()
	if !c.PendingInterrupt(DOWNRUPT) {
		t.Errorf("DOWNRUPT not requested on the first step")
	}
	if c.CycleCounter() != 1 {
		t.Errorf("cycle counter is %d, expected 1", c.CycleCounter())
	}
}

func TestFirstInstruction(t *testing.T) {
	c := testCPU()
	// TC 4000, stored with a parity bit.
	if err := c.LoadROM(bytes.NewReader([]byte{0x10, 0x00})); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	if !c.Step() {
		t.Fatalf("TC did not complete in one step")
	}
	if q := c.reg(RegQ); q != 0o4001 {
		t.Errorf("Q is %05o, expected 04001", q)
	}
	if z := c.reg(RegZ); z != 0o4000 {
		t.Errorf("Z is %04o, expected 4000", z)
	}
}

func TestMultiCycleTiming(t *testing.T) {
	cases := []struct {
		word     uint16
		expected []bool
	}{
		{0o04100, []bool{true}},               // TC
		{0o31100, []bool{false, true}},        // CA
		{0o21101, []bool{false, false, true}}, // DAS
	}

	for ix, tc := range cases {
		c := testCPU()
		load(c, 0o1000, tc.word)
		for n, want := range tc.expected {
			if seen := c.Step(); seen != want {
				t.Errorf("Case #%d, step %d returned %v, expected %v", ix, n, seen, want)
			}
		}
		if z := c.reg(RegZ); z == 0o1000 {
			t.Errorf("Case #%d, instruction not executed", ix)
		}
	}
}

func TestDV6Cycles(t *testing.T) {
	c := testCPU()
	load(c, 0o1000, 0o00006, 0o11100)
	c.WriteMemory(0o1100, 3)
	execOne(t, c)

	steps := 0
	for !c.Step() {
		steps++
	}
	if steps != 5 {
		t.Errorf("DV took %d steps, expected 6", steps+1)
	}
}

func TestInterruptPriority(t *testing.T) {
	c := testCPU()
	c.intsEnabled = true
	c.RequestInterrupt(KEYRUPT1)
	c.RequestInterrupt(T3RUPT)

	if !c.Step() {
		t.Fatalf("vectoring did not report a used cycle")
	}
	if z := c.reg(RegZ); z != 0o4014 {
		t.Errorf("Z is %04o, expected 4014", z)
	}
	if zr := c.reg(RegZRUPT); zr != 0o4001 {
		t.Errorf("ZRUPT is %05o, expected 04001", zr)
	}
	if c.PendingInterrupt(T3RUPT) {
		t.Errorf("T3RUPT still pending")
	}
	if !c.PendingInterrupt(KEYRUPT1) {
		t.Errorf("KEYRUPT1 lost")
	}
	if c.LastInterrupt() != T3RUPT {
		t.Errorf("last interrupt is %d, expected %d", c.LastInterrupt(), T3RUPT)
	}
	if !c.InInterrupt() {
		t.Errorf("not in interrupt after vectoring")
	}

	// One cycle goes to saving ZRUPT and BRUPT.
	if c.Step() {
		t.Errorf("step after vectoring completed an instruction")
	}
}

func TestInterruptBlocked(t *testing.T) {
	cases := []struct {
		setup func(c *CPU)
		word  uint16
	}{
		{func(c *CPU) { c.intsEnabled = false }, 0o31100},
		{func(c *CPU) { c.inISR = true }, 0o31100},
		{func(c *CPU) { c.WriteMemory(RegA, 0o040000) }, 0o31100},
		{func(c *CPU) {}, 0o00004}, // INHINT
		{func(c *CPU) {}, 0o00006}, // EXTEND
		{func(c *CPU) { c.indexValue = 1 }, 0o31077},
	}

	for ix, tc := range cases {
		c := testCPU()
		c.intsEnabled = true
		c.downruptValid = false
		load(c, 0o1000, tc.word)
		tc.setup(c)
		c.RequestInterrupt(T5RUPT)
		execOne(t, c)

		if !c.PendingInterrupt(T5RUPT) {
			t.Errorf("Case #%d, interrupt taken", ix)
		}
		if z := c.reg(RegZ); z != 0o1001 {
			t.Errorf("Case #%d, Z is %04o, expected 1001", ix, z)
		}
	}
}

func TestResume(t *testing.T) {
	c := testCPU()
	c.inISR = true
	c.WriteMemory(RegZRUPT, 0o1001)
	c.WriteMemory(RegBRUPT, 0o31100) // CA 1100
	c.WriteMemory(0o1100, 0o1234)
	load(c, 0o1200, 0o50017) // RESUME

	execOne(t, c)
	if c.InInterrupt() {
		t.Errorf("still in interrupt after RESUME")
	}
	if z := c.reg(RegZ); z != 0o1000 {
		t.Errorf("Z is %04o after RESUME, expected 1000", z)
	}

	execOne(t, c)
	if a := c.reg(RegA); a != 0o1234 {
		t.Errorf("A is %06o, expected 001234", a)
	}
	if z := c.reg(RegZ); z != 0o1001 {
		t.Errorf("Z is %04o, expected 1001", z)
	}
}

func TestEDRUPT(t *testing.T) {
	c := testCPU()
	c.downruptValid = false
	load(c, 0o1000, 0o00006, 0o07000)

	execOne(t, c)
	execOne(t, c)
	if z := c.reg(RegZ); z != 0 {
		t.Errorf("Z is %04o, expected 0000", z)
	}
	if zr := c.reg(RegZRUPT); zr != 0o1002 {
		t.Errorf("ZRUPT is %05o, expected 01002", zr)
	}
	if br := c.reg(RegBRUPT); br != 0o07000 {
		t.Errorf("BRUPT is %05o, expected 07000", br)
	}
	if !c.InInterrupt() || c.ExtraCode() {
		t.Errorf("in interrupt %v, extracode %v", c.InInterrupt(), c.ExtraCode())
	}
}

func TestRelintInhint(t *testing.T) {
	c := testCPU()
	load(c, 0o1000, 0o00003, 0o00004)

	execOne(t, c)
	if !c.InterruptsEnabled() {
		t.Errorf("RELINT did not enable interrupts")
	}
	execOne(t, c)
	if c.InterruptsEnabled() {
		t.Errorf("INHINT did not disable interrupts")
	}
}

func TestUnimplemented(t *testing.T) {
	var seen []Event
	c := testCPU()
	c.SetEventSink(SinkFunc(func(e Event) { seen = append(seen, e) }))
	load(c, 0o1000, 0o00006, 0o25100) // AUG 1100
	c.WriteMemory(0o1100, 5)

	execOne(t, c)
	execOne(t, c)
	if v := c.ReadMemory(0o1100); v != 5 {
		t.Errorf("AUG changed memory to %05o", v)
	}
	if z := c.reg(RegZ); z != 0o1002 {
		t.Errorf("Z is %04o, expected 1002", z)
	}

	expected := Event{Kind: Unimplemented, Instr: AUG, Address: 0o1001}
	found := false
	for _, e := range seen {
		if e == expected {
			found = true
		}
	}
	if !found {
		t.Errorf("no %v event in %v", expected, seen)
	}
}

func TestSeparateInstances(t *testing.T) {
	c1 := testCPU()
	c2 := testCPU()
	c1.WriteMemory(0o1100, 0o777)
	c1.Step()

	if v := c2.ReadMemory(0o1100); v != 0 {
		t.Errorf("write leaked between instances: %05o", v)
	}
	if c2.CycleCounter() != 0 {
		t.Errorf("cycle counter leaked between instances")
	}
}
