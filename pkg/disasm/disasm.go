// Package disasm turns AGC instruction words back into assembler
// mnemonics, for traces and listings.
package disasm

import (
	"fmt"

	"github.com/vatine/agc/pkg/cpu"
)

// Anything that memory can be read from; *cpu.CPU is one.
type MemoryReader interface {
	ReadMemory(addr uint16) uint16
}

func address(addr uint16) string {
	return cpu.RegisterName(addr & cpu.AddressMask)
}

func channel(ch uint16) string {
	return fmt.Sprintf("%03o", ch)
}

func format(mnemonic, operand string) string {
	return fmt.Sprintf("%-5s %s", mnemonic, operand)
}

// Disassemble the instruction word found at addr. The extra flag says
// whether the word follows an EXTEND; the returned flag says whether the
// next word does.
func Disassemble(addr, word uint16, extra bool) (string, bool) {
	word &= 0o77777
	d := cpu.Decode(word, extra)
	return text(d.Instr, word, addr), d.Extra
}

func text(i cpu.Instr, word, addr uint16) string {
	imm12 := word & 0o7777
	imm10 := word & 0o1777
	imm9 := word & 0o777

	switch i {
	case cpu.XXALQ, cpu.XLQ, cpu.RETURN, cpu.RELINT, cpu.INHINT, cpu.EXTEND:
		return i.String()
	case cpu.TCF:
		if imm12 == addr&cpu.AddressMask {
			return "NOOP"
		}
	case cpu.DAS:
		if imm10 == cpu.RegL {
			return "DDOUBL"
		}
		return format("DAS", address(imm10-1))
	case cpu.LXCH:
		if imm10 == cpu.RegZero {
			return "ZL"
		}
	case cpu.QXCH:
		if imm10 == cpu.RegZero {
			return "ZQ"
		}
	case cpu.CA:
		if imm12 == cpu.RegA {
			return "NOOP"
		}
	case cpu.CS:
		if imm12 == cpu.RegA {
			return "COM"
		}
	case cpu.INDEX:
		if imm10 == cpu.RegBRUPT {
			return "RESUME"
		}
	case cpu.DXCH:
		switch imm10 {
		case cpu.RegZ:
			return "DTCF"
		case cpu.RegBB:
			return "DTCB"
		}
		return format("DXCH", address(imm10-1))
	case cpu.TS:
		switch imm10 {
		case cpu.RegA:
			return "OVSK"
		case cpu.RegZ:
			return "TCAA"
		}
	case cpu.AD:
		if imm12 == cpu.RegA {
			return "DOUBLE"
		}
	case cpu.MP:
		if imm12 == cpu.RegA {
			return "SQUARE"
		}
	case cpu.DCA, cpu.DCS:
		if i == cpu.DCS && imm12 == cpu.RegL {
			return "DCOM"
		}
		return format(i.String(), address(imm12-1))
	}

	switch i {
	case cpu.READ, cpu.WRITE, cpu.RAND, cpu.WAND, cpu.ROR, cpu.WOR, cpu.RXOR, cpu.EDRUPT:
		return format(i.String(), channel(imm9))
	case cpu.TC, cpu.TCF, cpu.CA, cpu.CS, cpu.AD, cpu.MASK, cpu.BZF, cpu.BZMF, cpu.MP, cpu.INDEX2:
		return format(i.String(), address(imm12))
	}
	return format(i.String(), address(imm10))
}

// Disassemble count consecutive words starting at start. Each line holds
// the address, the word and the instruction, all in octal.
func Listing(m MemoryReader, start uint16, count int) []string {
	var rv []string
	extra := false
	for n := 0; n < count; n++ {
		addr := (start + uint16(n)) & cpu.AddressMask
		word := m.ReadMemory(addr) & 0o77777
		var s string
		s, extra = Disassemble(addr, word, extra)
		rv = append(rv, fmt.Sprintf("%04o %05o   %s", addr, word, s))
	}
	return rv
}
