package cpu

import (
	"github.com/sirupsen/logrus"
)

// Channels read so often that logging them is just noise.
func quietChannel(addr uint16) bool {
	return addr == ChanSuperBank || addr == ChanDSKY || addr == ChanDSAlmOut
}

// Set the channels to what idle hardware presents.
func (c *CPU) resetChannels() {
	for i := range c.channels {
		c.channels[i] = 0
	}
	c.channels[ChanChan30] = 0o37777
	c.channels[ChanChan31] = 0o77777
	c.channels[ChanChan32] = 0o77777
	c.channels[ChanChan33] = 0o77777
	c.downlink = 0
}

// ReadIO returns the contents of an I/O channel. Channels 1 and 2 are the
// L and Q registers. Anything outside the channel space reads as 0.
func (c *CPU) ReadIO(addr uint16) uint16 {
	if int(addr) >= NumChannels {
		return 0
	}
	switch addr {
	case RegL:
		return c.mem.Regs[RegL]
	case RegQ:
		return c.mem.Regs[RegQ]
	}
	if !quietChannel(addr) {
		c.Log.WithFields(logrus.Fields{"channel": addr}).Debug("read channel")
	}
	return c.channels[addr]
}

// WriteIO stores a 15-bit value in an I/O channel. Writing both downlink
// channels (034 and 035) arms the DOWNRUPT timer.
func (c *CPU) WriteIO(addr uint16, value uint16) {
	value &= 0o77777
	if int(addr) >= NumChannels {
		return
	}
	switch addr {
	case RegL:
		c.mem.Regs[RegL] = value
		return
	case RegQ:
		c.mem.Regs[RegQ] = value
		return
	}

	c.channels[addr] = value
	if !quietChannel(addr) {
		fields := logrus.Fields{
			"channel": addr,
			"value":   value,
		}
		c.Log.WithFields(fields).Debug("write channel")
	}
	c.emit(Event{Kind: ChannelWritten, Channel: addr, Value: value})

	switch addr {
	case ChanDnTM1:
		c.downlink |= 1
	case ChanDnTM2:
		c.downlink |= 2
	}
	if c.downlink == 3 {
		c.downruptValid = true
		c.downruptTime = c.cycleCounter + CyclesPerSecond/50
		c.downlink = 0
	}
}

// KeyPressed latches a DSKY keycode into channel 015 and requests
// KEYRUPT1.
func (c *CPU) KeyPressed(code uint16) {
	c.Log.WithFields(logrus.Fields{"key": code}).Debug("key pressed")
	c.channels[ChanKeyboard] = code & 0o77777
	c.RequestInterrupt(KEYRUPT1)
}
