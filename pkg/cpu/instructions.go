package cpu

import (
	"github.com/sirupsen/logrus"

	"github.com/vatine/agc/pkg/arith"
)

// An instruction word after indexing. The operand fields overlap; which
// one an instruction uses depends on its format.
type operand uint16

func (o operand) imm12() uint16 { return uint16(o) & 0o7777 }
func (o operand) imm10() uint16 { return uint16(o) & 0o1777 }
func (o operand) imm9() uint16  { return uint16(o) & 0o777 }

// Executes one decoded instruction. Z has already been advanced past it.
type handler func(c *CPU, op operand)

var instructionTable [numInstrs]handler

// Register a handler against a specific instruction
func registerFunction(i Instr, h handler) {
	instructionTable[i] = h
}

func init() {
	registerFunction(TC, execTC)
	registerFunction(XXALQ, execTC)
	registerFunction(XLQ, execTC)
	registerFunction(RETURN, execRETURN)
	registerFunction(RELINT, execRELINT)
	registerFunction(INHINT, execINHINT)
	registerFunction(EXTEND, execEXTEND)
	registerFunction(CCS, execCCS)
	registerFunction(TCF, execTCF)
	registerFunction(DAS, execDAS)
	registerFunction(LXCH, execLXCH)
	registerFunction(INCR, execINCR)
	registerFunction(ADS, execADS)
	registerFunction(CA, execCA)
	registerFunction(CS, execCS)
	registerFunction(INDEX, execINDEX)
	registerFunction(DXCH, execDXCH)
	registerFunction(TS, execTS)
	registerFunction(XCH, execXCH)
	registerFunction(AD, execAD)
	registerFunction(MASK, execMASK)

	registerFunction(READ, execREAD)
	registerFunction(WRITE, execWRITE)
	registerFunction(RAND, execRAND)
	registerFunction(WAND, execWAND)
	registerFunction(ROR, execROR)
	registerFunction(WOR, execWOR)
	registerFunction(RXOR, execRXOR)
	registerFunction(EDRUPT, execEDRUPT)
	registerFunction(DV, execDV)
	registerFunction(BZF, execBZF)
	registerFunction(MSU, execMSU)
	registerFunction(QXCH, execQXCH)
	registerFunction(DCA, execDCA)
	registerFunction(DCS, execDCS)
	registerFunction(INDEX2, execINDEX2)
	registerFunction(BZMF, execBZMF)
	registerFunction(MP, execMP)
}

func (c *CPU) execute(d Decoded, modCmd, addr uint16) {
	h := instructionTable[d.Instr]
	if h == nil {
		fields := logrus.Fields{
			"instr": d.Instr.String(),
			"addr":  addr,
			"op":    modCmd,
		}
		c.Log.WithFields(fields).Warn("Unimplemented instruction")
		c.emit(Event{Kind: Unimplemented, Instr: d.Instr, Address: addr})
		return
	}
	h(c, operand(modCmd))
}

// The editing registers (CYR, SR, CYL, EDOP) act on the value written to
// them, so some instructions write back what they read.
func editing(addr uint16) bool {
	return addr >= RegCYR && addr <= RegEDOP
}

// Read K, sign extended unless K is a 16-bit register.
func (c *CPU) read16(addr uint16) uint16 {
	if is16Bit(addr) {
		return c.ReadMemory(addr)
	}
	return arith.SignExtend(c.ReadMemory(addr))
}

// Branch to the skip target Z+n.
func (c *CPU) skip(n uint16) {
	c.addZ(n)
}

// TC K, also XXALQ (TC A) and XLQ (TC L). Q gets the return address.
func execTC(c *CPU, op operand) {
	c.WriteMemory(RegQ, c.reg(RegZ))
	c.WriteMemory(RegZ, op.imm12())
}

// RETURN is TC Q; the word in Q is a TC back to the caller.
func execRETURN(c *CPU, op operand) {
	c.WriteMemory(RegZ, RegQ)
}

func execRELINT(c *CPU, op operand) {
	c.intsEnabled = true
}

func execINHINT(c *CPU, op operand) {
	c.intsEnabled = false
}

func execEXTEND(c *CPU, op operand) {
	c.extraCode = true
}

// CCS K: A gets DABS(K), then a four-way branch on the original K. With
// a 16-bit K, overflow counts as a non-zero value of that sign.
func execCCS(c *CPU, op operand) {
	k := op.imm10()
	var raw, value uint16
	if is16Bit(k) {
		raw = c.ReadMemory(k)
		value = arith.OverflowCorrected(raw)
		c.WriteMemory(RegA, arith.Odabs(raw))
	} else {
		value = c.ReadMemory(k) & 0o77777
		c.WriteMemory(RegA, arith.Dabs(value))
		c.WriteMemory(k, value)
	}

	switch {
	case is16Bit(k) && arith.ValueOverflowed(raw) == arith.P1:
	case is16Bit(k) && arith.ValueOverflowed(raw) == arith.M1:
		c.skip(2)
	case value == arith.P0:
		c.skip(1)
	case value == arith.M0:
		c.skip(3)
	case value&0o40000 != 0:
		c.skip(2)
	}
}

func execTCF(c *CPU, op operand) {
	c.WriteMemory(RegZ, op.imm12())
}

// Fold the overflow of the lower word of a DP sum into the upper word.
func carryInto(msw, lsw uint16) uint16 {
	switch lsw & 0o140000 {
	case 0o040000:
		return arith.AddSP16(msw, arith.P1)
	case 0o100000:
		return arith.AddSP16(msw, arith.SignExtend(arith.M1))
	}
	return msw
}

// DAS K: add A,L into K,K+1. The operand addresses K+1. A is left
// holding the overflow (+1, -1 or +0) and L is cleared. DAS L is DDOUBL.
func execDAS(c *CPU, op operand) {
	k1 := op.imm10()
	k := k1 - 1
	valA := c.ReadMemory(RegA)
	valL := c.ReadMemory(RegL)

	if k1 == RegL {
		lsw := arith.AddSP16(arith.SignExtend(valL), arith.SignExtend(valL))
		msw := carryInto(arith.AddSP16(valA, valA), lsw)
		c.WriteMemory(RegA, msw)
		c.WriteMemory(RegL, arith.SignExtend(arith.OverflowCorrected(lsw)))
		return
	}

	lsw := arith.AddSP16(arith.SignExtend(valL), c.read16(k1))
	msw := carryInto(arith.AddSP16(valA, c.read16(k)), lsw)
	lsw = arith.OverflowCorrected(lsw)

	switch msw & 0o140000 {
	case 0o100000:
		c.WriteMemory(RegA, arith.SignExtend(arith.M1))
	case 0o040000:
		c.WriteMemory(RegA, arith.P1)
	default:
		c.WriteMemory(RegA, arith.P0)
	}
	c.WriteMemory(RegL, arith.P0)

	if is16Bit(k1) {
		c.WriteMemory(k1, arith.SignExtend(lsw))
	} else {
		c.WriteMemory(k1, lsw)
	}
	if is16Bit(k) {
		c.WriteMemory(k, msw)
	} else {
		c.WriteMemory(k, arith.OverflowCorrected(msw))
	}
}

// LXCH K; LXCH ZERO is ZL.
func execLXCH(c *CPU, op operand) {
	k := op.imm10()
	switch {
	case k == RegL:
	case k == RegZero:
		c.WriteMemory(RegL, 0)
	case is16Bit(k):
		valL := c.ReadMemory(RegL)
		valK := c.ReadMemory(k)
		c.WriteMemory(RegL, arith.OverflowCorrected(valK))
		c.WriteMemory(k, arith.SignExtend(valL))
	default:
		valL := c.ReadMemory(RegL)
		valK := c.ReadMemory(k)
		c.WriteMemory(RegL, valK)
		c.WriteMemory(k, valL)
	}
}

// INCR K. A 16-bit K counts through its overflow range.
func execINCR(c *CPU, op operand) {
	k := op.imm10()
	if is16Bit(k) {
		c.WriteMemory(k, arith.AddSP16(arith.P1, c.ReadMemory(k)))
		return
	}
	c.WriteMemory(k, arith.OverflowCorrected(arith.AddSP16(arith.P1, arith.SignExtend(c.ReadMemory(k)))))
}

// ADS K: A+K into both A and K.
func execADS(c *CPU, op operand) {
	k := op.imm10()
	acc := c.ReadMemory(RegA)
	if k == RegA {
		acc = arith.AddSP16(acc, acc)
	} else {
		acc = arith.AddSP16(acc, c.read16(k))
	}
	c.WriteMemory(RegA, acc)

	switch {
	case k == RegA:
	case is16Bit(k):
		c.WriteMemory(k, acc)
	default:
		c.WriteMemory(k, arith.OverflowCorrected(acc))
	}
}

// CA K; CA A is NOOP.
func execCA(c *CPU, op operand) {
	k := op.imm12()
	switch {
	case k == RegA:
	case is16Bit(k):
		c.WriteMemory(RegA, c.ReadMemory(k))
	default:
		val := c.ReadMemory(k)
		c.WriteMemory(RegA, arith.SignExtend(val))
		c.WriteMemory(k, val)
	}
}

// CS K; CS A is COM.
func execCS(c *CPU, op operand) {
	k := op.imm12()
	if k == RegA {
		c.WriteMemory(RegA, arith.NegateSP16(c.ReadMemory(RegA)))
		return
	}
	val := c.ReadMemory(k)
	c.WriteMemory(RegA, arith.SignExtend(arith.NegateSP(val)))
	c.WriteMemory(k, val)
}

// Return from an interrupt: continue at ZRUPT, executing BRUPT in place of
// whatever is stored there.
func (c *CPU) resume() {
	c.WriteMemory(RegZ, c.ReadMemory(RegZRUPT)-1)
	c.inISR = false
	c.substituteInstruction = true
}

// INDEX K: add K to the next instruction word. INDEX 17 is RESUME.
func execINDEX(c *CPU, op operand) {
	k := op.imm10()
	switch {
	case k == RegBRUPT:
		c.resume()
	case is16Bit(k):
		c.indexValue = arith.OverflowCorrected(c.ReadMemory(k))
	default:
		c.indexValue = c.ReadMemory(k)
	}
}

// DXCH K: swap A,L with K,K+1. The operand addresses K+1. DXCH L (DTCF,
// DTCB on Z) is left alone.
func execDXCH(c *CPU, op operand) {
	k1 := op.imm10()
	if k1 == RegL {
		return
	}
	k := k1 - 1

	val := c.ReadMemory(k1)
	if is16Bit(k1) {
		c.WriteMemory(k1, arith.SignExtend(c.ReadMemory(RegL)))
		c.WriteMemory(RegL, arith.OverflowCorrected(val))
	} else {
		c.WriteMemory(k1, c.ReadMemory(RegL))
		c.WriteMemory(RegL, val)
	}

	val = c.ReadMemory(k)
	if is16Bit(k) {
		c.WriteMemory(k, c.ReadMemory(RegA))
		c.WriteMemory(RegA, val)
	} else {
		c.WriteMemory(k, arith.OverflowCorrected(c.ReadMemory(RegA)))
		c.WriteMemory(RegA, arith.SignExtend(val))
	}
}

// TS K: store A in K. If A held overflow, A becomes +1 or -1 and the next
// instruction is skipped. TS A is OVSK and TS Z is TCAA.
func execTS(c *CPU, op operand) {
	k := op.imm10()
	acc := c.ReadMemory(RegA)
	ovf := arith.ValueOverflowed(acc)
	overflow := ovf != arith.P0

	switch k {
	case RegA:
		if overflow {
			c.skip(1)
		}
	case RegZ:
		c.WriteMemory(RegZ, acc&0o77777)
		if overflow {
			c.WriteMemory(RegA, arith.SignExtend(ovf))
		}
	default:
		if is16Bit(k) {
			c.WriteMemory(k, acc)
		} else {
			c.WriteMemory(k, arith.OverflowCorrected(acc))
		}
		if overflow {
			c.WriteMemory(RegA, arith.SignExtend(ovf))
			c.skip(1)
		}
	}
}

// XCH K: swap A and K.
func execXCH(c *CPU, op operand) {
	k := op.imm10()
	if k == RegA {
		return
	}
	valA := c.ReadMemory(RegA)
	if is16Bit(k) {
		c.WriteMemory(RegA, c.ReadMemory(k))
		c.WriteMemory(k, valA)
		return
	}
	c.WriteMemory(RegA, arith.SignExtend(c.ReadMemory(k)))
	c.WriteMemory(k, arith.OverflowCorrected(valA))
}

// AD K; AD A is DOUBLE. A keeps any overflow.
func execAD(c *CPU, op operand) {
	k := op.imm12()
	acc := c.ReadMemory(RegA)
	switch {
	case k == RegA:
		acc = arith.AddSP16(acc, acc)
	case is16Bit(k):
		acc = arith.AddSP16(acc, c.ReadMemory(k))
	default:
		val := c.ReadMemory(k)
		acc = arith.AddSP16(acc, arith.SignExtend(val))
		c.WriteMemory(k, val)
	}
	c.WriteMemory(RegA, acc)
}

func execMASK(c *CPU, op operand) {
	k := op.imm12()
	if is16Bit(k) {
		c.WriteMemory(RegA, c.ReadMemory(RegA)&c.ReadMemory(k))
		return
	}
	acc := arith.OverflowCorrected(c.ReadMemory(RegA))
	c.WriteMemory(RegA, arith.SignExtend(acc&c.ReadMemory(k)))
}

// The channel instructions. Channel 2 is Q, which they treat as a full
// 16-bit register.

func execREAD(c *CPU, op operand) {
	ch := op.imm9()
	if ch == RegQ {
		c.WriteMemory(RegA, c.ReadMemory(RegQ))
		return
	}
	c.WriteMemory(RegA, arith.SignExtend(c.ReadIO(ch)))
}

func execWRITE(c *CPU, op operand) {
	ch := op.imm9()
	if ch == RegQ {
		c.WriteMemory(RegQ, c.ReadMemory(RegA))
		return
	}
	c.WriteIO(ch, arith.OverflowCorrected(c.ReadMemory(RegA)))
}

// Combine A with a channel. With store set the result also goes back to
// the channel.
func (c *CPU) channelOp(ch uint16, store bool, f func(a, b uint16) uint16) {
	if ch == RegQ {
		val := f(c.ReadMemory(RegA), c.ReadMemory(RegQ))
		c.WriteMemory(RegA, val)
		if store {
			c.WriteMemory(RegQ, val)
		}
		return
	}
	val := f(arith.OverflowCorrected(c.ReadMemory(RegA)), c.ReadIO(ch))
	if store {
		c.WriteIO(ch, val)
	}
	c.WriteMemory(RegA, arith.SignExtend(val))
}

func andBits(a, b uint16) uint16 { return a & b }
func orBits(a, b uint16) uint16  { return a | b }
func xorBits(a, b uint16) uint16 { return a ^ b }

func execRAND(c *CPU, op operand) {
	c.channelOp(op.imm9(), false, andBits)
}

func execWAND(c *CPU, op operand) {
	c.channelOp(op.imm9(), true, andBits)
}

func execROR(c *CPU, op operand) {
	c.channelOp(op.imm9(), false, orBits)
}

func execWOR(c *CPU, op operand) {
	c.channelOp(op.imm9(), true, orBits)
}

func execRXOR(c *CPU, op operand) {
	c.channelOp(op.imm9(), false, xorBits)
}

// EDRUPT always vectors before it gets here.
func execEDRUPT(c *CPU, op operand) {
}

// BZF K: branch if A is +0 or -0 (and holds no overflow).
func execBZF(c *CPU, op operand) {
	acc := c.ReadMemory(RegA)
	if acc == 0 || acc == 0o177777 {
		c.WriteMemory(RegZ, op.imm12())
	}
}

// MSU K: the one's-complement difference of two two's-complement values.
func execMSU(c *CPU, op operand) {
	k := op.imm10()
	var ui, uj uint32
	if is16Bit(k) {
		ui = uint32(c.ReadMemory(RegA))
		uj = uint32(^c.ReadMemory(k))
	} else {
		ui = uint32(arith.OverflowCorrected(c.ReadMemory(RegA)) & 0o77777)
		uj = uint32(^c.ReadMemory(k) & 0o77777)
	}
	diff := ui + uj + 1
	// Sign extend bit 15 into bit 16, and take one off a negative result.
	if diff&0o40000 != 0 {
		diff |= 0o100000
		diff--
	}
	if k == RegQ {
		c.WriteMemory(RegA, uint16(diff&0o177777))
	} else {
		c.WriteMemory(RegA, arith.SignExtend(uint16(diff&0o77777)))
	}
	c.WriteMemory(k, c.ReadMemory(k))
}

// QXCH K; QXCH ZERO is ZQ.
func execQXCH(c *CPU, op operand) {
	k := op.imm10()
	switch {
	case k == RegQ:
	case k == RegZero:
		c.WriteMemory(RegQ, 0)
	case is16Bit(k):
		valQ := c.ReadMemory(RegQ)
		c.WriteMemory(RegQ, c.ReadMemory(k))
		c.WriteMemory(k, valQ)
	default:
		valQ := arith.OverflowCorrected(c.ReadMemory(RegQ))
		c.WriteMemory(RegQ, arith.SignExtend(c.ReadMemory(k)))
		c.WriteMemory(k, valQ)
	}
}

// DCA K: load A,L from K,K+1, lower word first. The operand addresses K+1.
func execDCA(c *CPU, op operand) {
	k1 := op.imm12()
	if k1 == RegL {
		c.WriteMemory(RegL, arith.OverflowCorrected(c.ReadMemory(RegL)))
		return
	}
	k := k1 - 1

	lower := c.ReadMemory(k1)
	if is16Bit(k1) {
		c.WriteMemory(RegL, arith.OverflowCorrected(lower))
	} else {
		c.WriteMemory(RegL, lower)
	}
	upper := c.ReadMemory(k)
	if is16Bit(k) {
		c.WriteMemory(RegA, upper)
	} else {
		c.WriteMemory(RegA, arith.SignExtend(upper))
	}

	if editing(k1) {
		c.WriteMemory(k1, lower)
	}
	if editing(k) {
		c.WriteMemory(k, upper)
	}
}

// DCS K: load A,L with the complement of K,K+1. DCS L is DCOM.
func execDCS(c *CPU, op operand) {
	k1 := op.imm12()
	if k1 == RegL {
		c.WriteMemory(RegA, arith.NegateSP16(c.ReadMemory(RegA)))
		c.WriteMemory(RegL, arith.NegateSP(c.ReadMemory(RegL)))
		return
	}
	k := k1 - 1

	lower := c.ReadMemory(k1)
	if is16Bit(k1) {
		c.WriteMemory(RegL, arith.OverflowCorrected(arith.NegateSP16(lower)))
	} else {
		c.WriteMemory(RegL, arith.NegateSP(lower))
	}
	upper := c.ReadMemory(k)
	if is16Bit(k) {
		c.WriteMemory(RegA, arith.NegateSP16(upper))
	} else {
		c.WriteMemory(RegA, arith.SignExtend(arith.NegateSP(upper)))
	}

	if editing(k1) {
		c.WriteMemory(k1, lower)
	}
	if editing(k) {
		c.WriteMemory(k, upper)
	}
}

// INDEX in extracode mode. The indexed instruction is an extracode too.
func execINDEX2(c *CPU, op operand) {
	c.extraCode = true
	k := op.imm12()
	switch {
	case k == RegBRUPT<<1:
		c.resume()
	case is16Bit(k):
		c.indexValue = arith.OverflowCorrected(c.ReadMemory(k))
	default:
		c.indexValue = c.ReadMemory(k)
	}
}

// BZMF K: branch if A is zero or negative. Negative overflow counts as
// negative, positive overflow does not count as zero.
func execBZMF(c *CPU, op operand) {
	acc := c.ReadMemory(RegA)
	if acc == 0 || acc&0o100000 != 0 {
		c.WriteMemory(RegZ, op.imm12())
	}
}

// MP K: A times K as a DP product in A,L. A zero product is +0 unless A
// was zero and K non-zero of the opposite sign.
func execMP(c *CPU, op operand) {
	k := op.imm12()
	a := arith.OverflowCorrected(c.ReadMemory(RegA))
	var b uint16
	if is16Bit(k) {
		b = arith.OverflowCorrected(c.ReadMemory(k))
	} else {
		b = c.ReadMemory(k)
	}

	var msw, lsw uint16
	switch {
	case b == arith.P0 || b == arith.M0:
		msw, lsw = arith.P0, arith.P0
	case a == arith.P0 || a == arith.M0:
		if (a == arith.P0 && b&0o40000 != 0) || (a == arith.M0 && b&0o40000 == 0) {
			msw, lsw = arith.M0, arith.M0
		} else {
			msw, lsw = arith.P0, arith.P0
		}
	default:
		product := arith.FromNative2(arith.ToNative(a) * arith.ToNative(b))
		if product&0o2000000000 != 0 {
			product |= 0o4000000000
		}
		msw, lsw = arith.DecentToSP(product)
	}
	c.WriteMemory(RegA, arith.SignExtend(msw))
	c.WriteMemory(RegL, lsw)
}
