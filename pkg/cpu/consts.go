package cpu

import (
	"fmt"
)

// Register addresses. The register file occupies the bottom of the
// erasable address space.
const (
	RegA       uint16 = 0o00
	RegL       uint16 = 0o01
	RegQ       uint16 = 0o02
	RegEB      uint16 = 0o03
	RegFB      uint16 = 0o04
	RegZ       uint16 = 0o05
	RegBB      uint16 = 0o06
	RegZero    uint16 = 0o07
	RegARUPT   uint16 = 0o10
	RegLRUPT   uint16 = 0o11
	RegQRUPT   uint16 = 0o12
	RegSTIME2  uint16 = 0o13
	RegSTIME1  uint16 = 0o14
	RegZRUPT   uint16 = 0o15
	RegBBRUPT  uint16 = 0o16
	RegBRUPT   uint16 = 0o17
	RegCYR     uint16 = 0o20
	RegSR      uint16 = 0o21
	RegCYL     uint16 = 0o22
	RegEDOP    uint16 = 0o23
	RegTIME2   uint16 = 0o24
	RegTIME1   uint16 = 0o25
	RegTIME3   uint16 = 0o26
	RegTIME4   uint16 = 0o27
	RegTIME5   uint16 = 0o30
	RegTIME6   uint16 = 0o31
	RegCDUX    uint16 = 0o32
	RegCDUY    uint16 = 0o33
	RegCDUZ    uint16 = 0o34
	RegOPTX    uint16 = 0o35
	RegOPTY    uint16 = 0o36
	RegPIPAX   uint16 = 0o37
	RegPIPAY   uint16 = 0o40
	RegPIPAZ   uint16 = 0o41
	RegRHCP    uint16 = 0o42
	RegRHCY    uint16 = 0o43
	RegRHCR    uint16 = 0o44
	RegINLINK  uint16 = 0o45
	RegRNRAD   uint16 = 0o46
	RegGYROCMD uint16 = 0o47
	RegCDUXCMD uint16 = 0o50
	RegCDUYCMD uint16 = 0o51
	RegCDUZCMD uint16 = 0o52
	RegOPTYCMD uint16 = 0o53
	RegOPTXCMD uint16 = 0o54
	RegTHRUST  uint16 = 0o55
	RegLEMONM  uint16 = 0o56
	RegOUTLINK uint16 = 0o57
	RegALTM    uint16 = 0o60

	NumRegisters = 0o61
)

var registerNames = [NumRegisters]string{
	"A", "L", "Q", "EB", "FB", "Z", "BB", "ZERO",
	"ARUPT", "LRUPT", "QRUPT", "STIME2", "STIME1", "ZRUPT", "BBRUPT", "BRUPT",
	"CYR", "SR", "CYL", "EDOP", "TIME2", "TIME1", "TIME3", "TIME4",
	"TIME5", "TIME6", "CDUX", "CDUY", "CDUZ", "OPTX", "OPTY", "PIPAX",
	"PIPAY", "PIPAZ", "RHCP", "RHCY", "RHCR", "INLINK", "RNRAD", "GYROCMD",
	"CDUXCMD", "CDUYCMD", "CDUZCMD", "OPTYCMD", "OPTXCMD", "THRUST", "LEMONM", "OUTLINK",
	"ALTM",
}

// Return the name of a register, or the address in octal for anything
// outside the register file.
func RegisterName(addr uint16) string {
	if int(addr) < NumRegisters {
		return registerNames[addr]
	}
	return fmt.Sprintf("%04o", addr)
}

// Memory map.
const (
	UnswitchedErasableBase uint16 = 0o0000
	SwitchedErasableBase   uint16 = 0o1400
	ErasableBankSize              = 0o0400
	ErasableBankCount             = 8
	CommonFixedBase        uint16 = 0o2000
	FixedBankSize                 = 0o2000
	FixedBankCount                = 40
	FixedFixedBase         uint16 = 0o4000
	AddressMask            uint16 = 0o7777
)

// I/O channels with a fixed meaning to the emulator.
const (
	ChanHiScaler  uint16 = 0o03
	ChanLoScaler  uint16 = 0o04
	ChanPyJets    uint16 = 0o05
	ChanRollJets  uint16 = 0o06
	ChanSuperBank uint16 = 0o07
	ChanDSKY      uint16 = 0o10
	ChanDSAlmOut  uint16 = 0o11
	ChanChan12    uint16 = 0o12
	ChanChan13    uint16 = 0o13
	ChanKeyboard  uint16 = 0o15
	ChanChan30    uint16 = 0o30
	ChanChan31    uint16 = 0o31
	ChanChan32    uint16 = 0o32
	ChanChan33    uint16 = 0o33
	ChanDnTM1     uint16 = 0o34
	ChanDnTM2     uint16 = 0o35

	NumChannels = 512
)

// Interrupt request slots, in priority order (lowest number first).
const (
	T6RUPT   = 1
	T5RUPT   = 2
	T3RUPT   = 3
	T4RUPT   = 4
	KEYRUPT1 = 5
	KEYRUPT2 = 6
	UPRUPT   = 7
	DOWNRUPT = 8
	RADARUPT = 9
	HANDRUPT = 10

	NumInterrupts = 10
)

// The master clock is 1024 kHz, divided by 12 to give a machine cycle of
// just over 11.7 microseconds.
const CyclesPerSecond = (1024000 + 6) / 12

// Base of the interrupt vector table; each vector is four words long.
const interruptVectorBase uint16 = 0o4000
