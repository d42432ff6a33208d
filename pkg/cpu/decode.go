package cpu

import (
	"fmt"
)

// Instr identifies a decoded instruction.
type Instr int

const (
	TC Instr = iota
	XXALQ
	XLQ
	RETURN
	RELINT
	INHINT
	EXTEND
	CCS
	TCF
	DAS
	LXCH
	INCR
	ADS
	CA
	CS
	INDEX
	DXCH
	TS
	XCH
	AD
	MASK

	// Extracodes
	READ
	WRITE
	RAND
	WAND
	ROR
	WOR
	RXOR
	EDRUPT
	DV
	BZF
	MSU
	QXCH
	AUG
	DIM
	DCA
	DCS
	INDEX2
	SU
	BZMF
	MP

	numInstrs
)

var instrNames = [numInstrs]string{
	"TC", "XXALQ", "XLQ", "RETURN", "RELINT", "INHINT", "EXTEND", "CCS",
	"TCF", "DAS", "LXCH", "INCR", "ADS", "CA", "CS", "INDEX", "DXCH", "TS",
	"XCH", "AD", "MASK",
	"READ", "WRITE", "RAND", "WAND", "ROR", "WOR", "RXOR", "EDRUPT", "DV",
	"BZF", "MSU", "QXCH", "AUG", "DIM", "DCA", "DCS", "INDEX", "SU", "BZMF",
	"MP",
}

func (i Instr) String() string {
	if i < 0 || i >= numInstrs {
		return fmt.Sprintf("Instr(%d)", int(i))
	}
	return instrNames[i]
}

// The result of decoding one instruction word.
type Decoded struct {
	Instr  Instr
	Extra  bool // the following instruction is an extracode
	Cycles int  // machine cycles (MCT) taken
}

func basic(i Instr, cycles int) Decoded {
	return Decoded{Instr: i, Cycles: cycles}
}

// Decode an instruction word. The extra flag selects the extracode set,
// as set up by a preceding EXTEND. Every 15-bit word decodes to
// something, so a failure here is a bug in the decoder and panics.
func Decode(cmd uint16, extra bool) Decoded {
	code := (cmd >> 12) & 7
	qc := (cmd >> 10) & 3
	pc := (cmd >> 9) & 7

	if !extra {
		switch code {
		case 0:
			switch cmd {
			case 0:
				return basic(XXALQ, 1)
			case 1:
				return basic(XLQ, 1)
			case 2:
				return basic(RETURN, 2)
			case 3:
				return basic(RELINT, 1)
			case 4:
				return basic(INHINT, 1)
			case 6:
				return Decoded{Instr: EXTEND, Extra: true, Cycles: 1}
			}
			return basic(TC, 1)
		case 1:
			if qc == 0 {
				return basic(CCS, 2)
			}
			return basic(TCF, 1)
		case 2:
			switch qc {
			case 0:
				return basic(DAS, 3)
			case 1:
				return basic(LXCH, 2)
			case 2:
				return basic(INCR, 2)
			case 3:
				return basic(ADS, 2)
			}
		case 3:
			return basic(CA, 2)
		case 4:
			return basic(CS, 2)
		case 5:
			switch qc {
			case 0:
				return basic(INDEX, 2)
			case 1:
				return basic(DXCH, 3)
			case 2:
				return basic(TS, 2)
			case 3:
				return basic(XCH, 2)
			}
		case 6:
			return basic(AD, 2)
		case 7:
			return basic(MASK, 2)
		}
	} else {
		switch code {
		case 0:
			switch pc {
			case 0:
				return basic(READ, 2)
			case 1:
				return basic(WRITE, 2)
			case 2:
				return basic(RAND, 2)
			case 3:
				return basic(WAND, 2)
			case 4:
				return basic(ROR, 2)
			case 5:
				return basic(WOR, 2)
			case 6:
				return basic(RXOR, 2)
			case 7:
				return basic(EDRUPT, 3)
			}
		case 1:
			if qc == 0 {
				return basic(DV, 6)
			}
			return basic(BZF, 1)
		case 2:
			switch qc {
			case 0:
				return basic(MSU, 2)
			case 1:
				return basic(QXCH, 2)
			case 2:
				return basic(AUG, 2)
			case 3:
				return basic(DIM, 2)
			}
		case 3:
			return basic(DCA, 3)
		case 4:
			return basic(DCS, 3)
		case 5:
			return Decoded{Instr: INDEX2, Extra: true, Cycles: 2}
		case 6:
			if qc == 0 {
				return basic(SU, 2)
			}
			return basic(BZMF, 1)
		case 7:
			return basic(MP, 3)
		}
	}
	panic(fmt.Sprintf("cpu: cannot decode instruction %05o (extracode %v)", cmd, extra))
}
