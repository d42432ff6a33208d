package cpu

import (
	"github.com/sirupsen/logrus"
)

// A struct providing upper and lower bounds for a region of the address
// space.
type MemoryRange struct {
	Low, High uint16
}

func (r MemoryRange) contains(addr uint16) bool {
	return r.Low <= addr && addr <= r.High
}

type region int

const (
	regionRegisters region = iota
	regionUnswitchedErasable
	regionSwitchedErasable
	regionCommonFixed
	regionFixedFixed
)

var regionNames = map[region]string{
	regionRegisters:          "registers",
	regionUnswitchedErasable: "unswitched-erasable",
	regionSwitchedErasable:   "switched-erasable",
	regionCommonFixed:        "common-fixed",
	regionFixedFixed:         "fixed-fixed",
}

// The 12-bit address space, bottom up. Registers shadow the start of
// erasable bank 0.
var memoryMap = []struct {
	Range  MemoryRange
	Region region
}{
	{MemoryRange{0, NumRegisters - 1}, regionRegisters},
	{MemoryRange{NumRegisters, SwitchedErasableBase - 1}, regionUnswitchedErasable},
	{MemoryRange{SwitchedErasableBase, CommonFixedBase - 1}, regionSwitchedErasable},
	{MemoryRange{CommonFixedBase, FixedFixedBase - 1}, regionCommonFixed},
	{MemoryRange{FixedFixedBase, AddressMask}, regionFixedFixed},
}

// Return the region an address falls in.
func findRegion(addr uint16) region {
	for _, m := range memoryMap {
		if m.Range.contains(addr) {
			return m.Region
		}
	}
	// Unreachable for a masked address.
	return regionFixedFixed
}

// Registers that hold a full 16 bits, overflow included.
func is16Bit(addr uint16) bool {
	return addr == RegA || addr == RegQ
}

// Storage backing the address space. Erasable and fixed memory are flat
// arrays indexed by bank * bank size + offset.
type Memory struct {
	Regs [NumRegisters]uint16
	RAM  [ErasableBankCount * ErasableBankSize]uint16
	ROM  [FixedBankCount * FixedBankSize]uint16
}

// Erasable bank selected by EB.
func (c *CPU) erasableBank() int {
	return int(c.mem.Regs[RegEB]>>8) & 0o7
}

// Fixed bank selected by FB, with the superbank bit from channel 7
// applied to banks 030-037.
func (c *CPU) fixedBank() int {
	bank := int(c.mem.Regs[RegFB]>>10) & 0o37
	if bank&0o30 == 0o30 && c.channels[ChanSuperBank]&0o100 != 0 {
		bank += 0o10
	}
	return bank
}

// ReadMemory returns the word at a 12-bit address, as the CPU sees it
// with the current bank selection.
func (c *CPU) ReadMemory(addr uint16) uint16 {
	addr &= AddressMask

	switch findRegion(addr) {
	case regionRegisters:
		return c.mem.Regs[addr]
	case regionUnswitchedErasable:
		// Banks 0, 1 and 2, whatever EB says.
		return c.mem.RAM[addr]
	case regionSwitchedErasable:
		offset := int(addr - SwitchedErasableBase)
		return c.mem.RAM[c.erasableBank()*ErasableBankSize+offset]
	case regionCommonFixed:
		offset := int(addr - CommonFixedBase)
		return c.mem.ROM[c.fixedBank()*FixedBankSize+offset]
	default:
		// Banks 2 and 3, whatever FB says.
		offset := int(addr - FixedFixedBase)
		return c.mem.ROM[2*FixedBankSize+offset]
	}
}

// WriteMemory stores a word at a 12-bit address. Register writes are
// masked to the register width, EB, FB and BB keep each other up to date,
// and writes to ZERO or to fixed memory are dropped.
func (c *CPU) WriteMemory(addr uint16, value uint16) {
	addr &= AddressMask
	regs := &c.mem.Regs

	switch findRegion(addr) {
	case regionRegisters:
		switch addr {
		case RegA, RegQ:
			regs[addr] = value
		case RegZ:
			regs[RegZ] = value & 0o7777
		case RegEB:
			regs[RegEB] = value & 0o03400
			regs[RegBB] &= 0o76000
			regs[RegBB] |= (value >> 8) & 0o7
		case RegFB:
			regs[RegFB] = value & 0o76000
			regs[RegBB] &= 0o00007
			regs[RegBB] |= value & 0o76000
		case RegBB:
			regs[RegBB] = value & 0o76007
			regs[RegFB] = value & 0o76000
			regs[RegEB] = (value & 0o7) << 8
		case RegZero:
		default:
			regs[addr] = value & 0o77777
		}
	case regionUnswitchedErasable:
		c.mem.RAM[addr] = value & 0o77777
	case regionSwitchedErasable:
		offset := int(addr - SwitchedErasableBase)
		c.mem.RAM[c.erasableBank()*ErasableBankSize+offset] = value & 0o77777
	default:
		fields := logrus.Fields{
			"addr":   addr,
			"value":  value,
			"region": regionNames[findRegion(addr)],
		}
		c.Log.WithFields(fields).Debug("write to fixed memory ignored")
	}
}

func (c *CPU) reg(addr uint16) uint16 {
	return c.mem.Regs[addr]
}

// Z is kept to 12 bits however it is changed.
func (c *CPU) addZ(n uint16) {
	c.mem.Regs[RegZ] = (c.mem.Regs[RegZ] + n) & 0o7777
}
