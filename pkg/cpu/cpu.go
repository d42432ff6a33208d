// The AGC CPU package.
//
// After the block II Apollo Guidance Computer as described by the
// Virtual AGC project:
//   https://www.ibiblio.org/apollo/assembly_language_manual.html
//
// The cpu package includes the instruction decoder, the banked memory
// and I/O channel spaces, the scaler driven counters and the
// instruction engine. A CPU is advanced one machine cycle at a time by
// calling Step; everything else (pacing, displays, telemetry) is up to
// the caller.
package cpu

import (
	"github.com/sirupsen/logrus"

	"github.com/vatine/agc/pkg/arith"
)

// Basic CPU data structure. A CPU is not safe for concurrent use; see
// the shared package for a goroutine-owned wrapper.
type CPU struct {
	mem      Memory
	channels [NumChannels]uint16

	// Pending interrupt requests by slot; slot 0 records the last one
	// taken.
	interruptRequests [NumInterrupts + 1]uint16

	substituteInstruction bool   // RESUME: execute BRUPT next
	indexValue            uint16 // INDEX: added to the next instruction
	extraCode             bool   // EXTEND: next instruction is an extracode
	intsEnabled           bool
	inISR                 bool

	downlink      int // bits set by writes to channels 034/035
	downruptTime  uint64
	downruptValid bool

	cycleCounter  uint64
	scalerCounter int
	extraDelay    int
	pendFlag      bool
	pendDelay     int

	generatedWarning bool
	warningFilter    int

	ready func()
	sink  EventSink

	// Where diagnostics go. Defaults to the standard logrus logger.
	Log logrus.FieldLogger
}

func NewCPU() *CPU {
	var rv CPU
	rv.Log = logrus.StandardLogger()
	rv.Reset()

	return &rv
}

// Put the CPU in its power-on state. Fixed memory is left alone.
func (c *CPU) Reset() {
	for i := range c.mem.Regs {
		c.mem.Regs[i] = 0
	}
	for i := range c.mem.RAM {
		c.mem.RAM[i] = 0
	}
	c.mem.Regs[RegZ] = 0o4000
	c.resetChannels()

	for i := range c.interruptRequests {
		c.interruptRequests[i] = 0
	}
	c.substituteInstruction = false
	c.indexValue = 0
	c.extraCode = false
	c.intsEnabled = false
	c.inISR = false

	// A DOWNRUPT is due as soon as the clock starts.
	c.downruptValid = true
	c.downruptTime = 0

	c.cycleCounter = 0
	c.scalerCounter = 0
	c.extraDelay = 0
	c.pendFlag = false
	c.pendDelay = 0
	c.generatedWarning = false
	c.warningFilter = 0
}

// The cycle counter, truncated to 32 bits.
func (c *CPU) CycleCounter() int32 {
	return int32(c.cycleCounter)
}

// Request an interrupt. Slots outside 1..NumInterrupts are ignored.
func (c *CPU) RequestInterrupt(n int) {
	if n < 1 || n > NumInterrupts {
		return
	}
	c.interruptRequests[n] = 1
}

// Whether an interrupt request is waiting in a slot.
func (c *CPU) PendingInterrupt(n int) bool {
	if n < 1 || n > NumInterrupts {
		return false
	}
	return c.interruptRequests[n] != 0
}

// The last interrupt slot taken (0 if none, or EDRUPT).
func (c *CPU) LastInterrupt() int {
	return int(c.interruptRequests[0])
}

func (c *CPU) InterruptsEnabled() bool {
	return c.intsEnabled
}

// Whether the CPU is between taking an interrupt and its RESUME.
func (c *CPU) InInterrupt() bool {
	return c.inISR
}

// Whether the next instruction will be decoded as an extracode.
func (c *CPU) ExtraCode() bool {
	return c.extraCode
}

// Opcodes that must not be interrupted: RELINT, INHINT and EXTEND.
func protectedOpcode(cmd uint16) bool {
	return cmd == 3 || cmd == 4 || cmd == 6
}

// Make the CPU take another step: one machine cycle. Returns true when an
// instruction completed (or an interrupt was taken) during this cycle,
// and false when the cycle went to a multi-cycle instruction, a counter
// update or some other bookkeeping.
func (c *CPU) Step() bool {
	if c.downruptValid && c.cycleCounter >= c.downruptTime {
		c.RequestInterrupt(DOWNRUPT)
		c.downruptValid = false
	}

	c.cycleCounter++
	c.scalerCounter += scalerDivider

	// Branches that don't always take the same time.
	if c.extraDelay > 0 {
		c.extraDelay--
		return false
	}

	// Nothing of a multi-cycle instruction is done until its last cycle.
	if c.pendFlag && c.pendDelay > 0 {
		c.pendDelay--
		return false
	}

	for c.scalerCounter >= scalerOverflow {
		c.handleTimers()
		if c.extraDelay > 0 {
			c.extraDelay--
			return false
		}
	}

	addr := c.mem.Regs[RegZ]
	cmd := c.ReadMemory(addr) & 0o77777

	var modCmd uint16
	if c.substituteInstruction {
		modCmd = c.mem.Regs[RegBRUPT]
	} else {
		modCmd = arith.OverflowCorrected(arith.AddSP16(arith.SignExtend(c.indexValue), arith.SignExtend(cmd)))
	}
	modCmd &= 0o77777

	d := Decode(modCmd, c.extraCode)

	if c.checkInterrupts(addr, modCmd, d) {
		return true
	}

	if !c.pendFlag {
		if d.Cycles > 1 {
			c.pendFlag = true
			c.pendDelay = d.Cycles - 2
			return false
		}
	}
	c.pendFlag = false

	c.indexValue = 0
	c.addZ(1)
	c.extraCode = false
	c.substituteInstruction = false

	c.execute(d, modCmd, addr)
	return true
}

// Take an interrupt if one is allowed and pending. Returns true if the
// CPU vectored.
func (c *CPU) checkInterrupts(addr, modCmd uint16, d Decoded) bool {
	overflow := arith.ValueOverflowed(c.mem.Regs[RegA]) != arith.P0
	allowed := c.intsEnabled && !c.pendFlag && !c.inISR && !c.extraCode && !overflow &&
		!protectedOpcode(modCmd) && c.indexValue == 0
	if !allowed && d.Instr != EDRUPT {
		return false
	}

	// Slots are in priority order.
	taken := -1
	for i := 1; i <= NumInterrupts; i++ {
		if c.interruptRequests[i] != 0 {
			c.interruptRequests[i] = 0
			c.interruptRequests[0] = uint16(i)
			c.WriteMemory(RegZ, interruptVectorBase+4*uint16(i))
			taken = i
			break
		}
	}
	if taken < 0 && d.Instr == EDRUPT {
		c.WriteMemory(RegZ, 0)
		taken = 0
	}
	if taken < 0 {
		return false
	}

	fields := logrus.Fields{
		"interrupt": taken,
		"addr":      addr,
		"cmd":       modCmd,
	}
	c.Log.WithFields(fields).Debug("interrupt")

	c.WriteMemory(RegZRUPT, addr+1)
	c.WriteMemory(RegBRUPT, modCmd)
	// The index and substitution were already folded into BRUPT.
	c.extraCode = false
	c.indexValue = 0
	c.substituteInstruction = false
	c.inISR = true
	// One more cycle for filling ZRUPT and BRUPT.
	c.extraDelay++

	c.emit(Event{Kind: InterruptVectored, Interrupt: taken, Address: addr + 1})
	return true
}
