package disasm_test

import (
	"testing"

	"github.com/vatine/agc/pkg/cpu"
	"github.com/vatine/agc/pkg/disasm"
)

func TestDisassemble(t *testing.T) {
	cases := []struct {
		addr, word uint16
		extra      bool
		text       string
		nextExtra  bool
	}{
		{0o4000, 0o04100, false, "TC    4100", false},
		{0o4000, 0o00002, false, "RETURN", false},
		{0o4000, 0o00006, false, "EXTEND", true},
		{0o4000, 0o14000, false, "NOOP", false},
		{0o4000, 0o14100, false, "TCF   4100", false},
		{0o4000, 0o10000, false, "CCS   A", false},
		{0o4000, 0o11100, false, "CCS   1100", false},
		{0o4000, 0o20001, false, "DDOUBL", false},
		{0o4000, 0o21101, false, "DAS   1100", false},
		{0o4000, 0o22007, false, "ZL", false},
		{0o4000, 0o30000, false, "NOOP", false},
		{0o4000, 0o40000, false, "COM", false},
		{0o4000, 0o50017, false, "RESUME", false},
		{0o4000, 0o50025, false, "INDEX TIME1", false},
		{0o4000, 0o52005, false, "DTCF", false},
		{0o4000, 0o52006, false, "DTCB", false},
		{0o4000, 0o53101, false, "DXCH  1100", false},
		{0o4000, 0o54000, false, "OVSK", false},
		{0o4000, 0o54005, false, "TCAA", false},
		{0o4000, 0o55100, false, "TS    1100", false},
		{0o4000, 0o60000, false, "DOUBLE", false},
		{0o4000, 0o71100, false, "MASK  1100", false},

		{0o4000, 0o00030, true, "READ  030", false},
		{0o4000, 0o05012, true, "WOR   012", false},
		{0o4000, 0o07000, true, "EDRUPT 000", false},
		{0o4000, 0o11100, true, "DV    1100", false},
		{0o4000, 0o22007, true, "ZQ", false},
		{0o4000, 0o25100, true, "AUG   1100", false},
		{0o4000, 0o31101, true, "DCA   1100", false},
		{0o4000, 0o40001, true, "DCOM", false},
		{0o4000, 0o41101, true, "DCS   1100", false},
		{0o4000, 0o50017, true, "INDEX BRUPT", true},
		{0o4000, 0o70000, true, "SQUARE", false},
		{0o4000, 0o71100, true, "MP    1100", false},
	}

	for ix, tc := range cases {
		text, next := disasm.Disassemble(tc.addr, tc.word, tc.extra)
		if text != tc.text {
			t.Errorf("Case #%d, %05o disassembles to %q, expected %q", ix, tc.word, text, tc.text)
		}
		if next != tc.nextExtra {
			t.Errorf("Case #%d, next extracode %v, expected %v", ix, next, tc.nextExtra)
		}
	}
}

type memory map[uint16]uint16

func (m memory) ReadMemory(addr uint16) uint16 {
	return m[addr]
}

func TestListing(t *testing.T) {
	m := memory{0o1000: 0o00006, 0o1001: 0o11100, 0o1002: 0o11100}
	expected := []string{
		"1000 00006   EXTEND",
		"1001 11100   DV    1100",
		"1002 11100   CCS   1100",
	}

	seen := disasm.Listing(m, 0o1000, 3)
	if len(seen) != len(expected) {
		t.Fatalf("listing has %d lines, expected %d", len(seen), len(expected))
	}
	for ix := range expected {
		if seen[ix] != expected[ix] {
			t.Errorf("Line #%d is %q, expected %q", ix, seen[ix], expected[ix])
		}
	}
}

func TestListingFromCPU(t *testing.T) {
	c := cpu.NewCPU()
	c.WriteMemory(0o1000, 0o31100)

	seen := disasm.Listing(c, 0o1000, 1)
	if seen[0] != "1000 31100   CA    1100" {
		t.Errorf("saw %q", seen[0])
	}
}
