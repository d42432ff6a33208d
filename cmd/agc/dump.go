package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/vatine/agc/pkg/cpu"
	"github.com/vatine/agc/pkg/disasm"
)

// What -dumpstate records about the machine.
type snapshot struct {
	Cycles    int32
	Registers map[string]uint16
	Channels  map[string]uint16
	Listing   []string
}

func takeSnapshot(c *cpu.CPU) snapshot {
	s := snapshot{
		Cycles:    c.CycleCounter(),
		Registers: map[string]uint16{},
		Channels:  map[string]uint16{},
	}
	for addr := uint16(0); addr < cpu.NumRegisters; addr++ {
		s.Registers[cpu.RegisterName(addr)] = c.ReadMemory(addr)
	}
	for _, ch := range []uint16{cpu.ChanHiScaler, cpu.ChanLoScaler, cpu.ChanSuperBank, cpu.ChanDSKY, cpu.ChanDSAlmOut, cpu.ChanKeyboard} {
		s.Channels[fmt.Sprintf("%03o", ch)] = c.ReadIO(ch)
	}
	s.Listing = disasm.Listing(c, c.ReadMemory(cpu.RegZ), 8)
	return s
}

func writeSnapshot(w io.Writer, c *cpu.CPU) {
	s := takeSnapshot(c)
	memviz.Map(w, &s)
}

// Write a graphviz description of the machine state to path.
func dumpState(c *cpu.CPU, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	writeSnapshot(f, c)
	return f.Close()
}
