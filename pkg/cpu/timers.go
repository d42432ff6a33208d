package cpu

import (
	"github.com/sirupsen/logrus"
)

// The timers are driven off a 3200 Hz signal, which is scalerOverflow /
// scalerDivider machine cycles.
const (
	scalerOverflow = 80
	scalerDivider  = 3
)

// Warning filter model, a linear charge/discharge.
const (
	warningFilterIncrement = 15000
	warningFilterDecrement = 15
	warningFilterMax       = 140000
	warningFilterThreshold = 20000
)

func (c *CPU) alarm(a Alarm) {
	c.Log.WithFields(logrus.Fields{"alarm": a.String()}).Debug("scaler alarm check")
	c.emit(Event{Kind: AlarmRaised, Alarm: a})
}

// One pass over the counters, made every time the scaler overflows.
// Counter increments each cost a machine cycle, which is added to
// extraDelay.
func (c *CPU) handleTimers() {
	// SCALER1 and SCALER2 are views into the clock divider and take no
	// CPU time.
	c.scalerCounter -= scalerOverflow
	c.channels[ChanLoScaler]++
	if c.channels[ChanLoScaler] == 0o40000 {
		c.channels[ChanLoScaler] = 0
		c.channels[ChanHiScaler] = (c.channels[ChanHiScaler] + 1) & 0o37777
	}
	phase := c.channels[ChanLoScaler]

	switch {
	case phase&0o7777 == 0o4000:
		// Every 1.28s.
		c.alarm(NightWatchman)
	case phase&0o7777 == 0:
		// Every 1.28s, out of phase with the night watchman.
		c.alarm(StandbyCheck)
	case phase&0o7 == 0:
		c.updateWarningFilter(phase)
	}

	if phase&0o777 == 0o400 {
		// Every 160ms.
		c.alarm(RuptLock)
	}
	if phase&0o37 == 0o20 {
		// Every 5ms.
		c.alarm(TCTrap)
	}

	// TIME1 and TIME3 every 10ms.
	if phase&0o37 == 0o20 {
		c.extraDelay++
		if c.counterPINC(RegTIME1) {
			c.extraDelay++
			c.counterPINC(RegTIME2)
		}
		c.extraDelay++
		if c.counterPINC(RegTIME3) {
			c.RequestInterrupt(T3RUPT)
		}
	}

	// TIME5 is TIME3 5ms out of phase.
	if phase&0o37 == 0o00 {
		c.extraDelay++
		if c.counterPINC(RegTIME5) {
			c.RequestInterrupt(T5RUPT)
		}
	}

	// TIME4 is TIME3 7.5ms out of phase.
	if phase&0o37 == 0o10 {
		c.extraDelay++
		if c.counterPINC(RegTIME4) {
			c.RequestInterrupt(T4RUPT)
		}
	}

	// TODO: count TIME6 and raise T6RUPT; only the enable bit is checked so far.
	if c.channels[ChanChan13]&0o40000 != 0 && phase&0o1 == 0o1 {
		c.alarm(Time6Tick)
	}
}

// Once every 160ms the filter charges if a warning has been generated (or
// the lamp test bit is on), otherwise it discharges.
func (c *CPU) updateWarningFilter(phase uint16) {
	if phase&0o777 == 0o400 && (c.generatedWarning || c.channels[ChanChan13]&0o1000 != 0) {
		c.generatedWarning = false
		c.warningFilter += warningFilterIncrement
		if c.warningFilter > warningFilterMax {
			c.warningFilter = warningFilterMax
		}
		return
	}
	if c.warningFilter >= warningFilterDecrement {
		c.warningFilter -= warningFilterDecrement
	} else {
		c.warningFilter = 0
	}
}

// Whether the warning filter is charged past the lamp threshold.
func (c *CPU) WarningActive() bool {
	return c.warningFilter > warningFilterThreshold
}

// Raise a warning into the filter; it is consumed at the next charge.
func (c *CPU) GenerateWarning() {
	c.generatedWarning = true
}

// A one's-complement increment of a counter register, reporting
// overflow. 037777 wraps to +0, and -0 steps straight to +1.
func (c *CPU) counterPINC(counter uint16) bool {
	if c.mem.Regs[counter] == 0o37777 {
		c.mem.Regs[counter] = 0
		return true
	}
	c.mem.Regs[counter] = (c.mem.Regs[counter] + 1) & 0o77777
	if c.mem.Regs[counter] == 0 {
		c.mem.Regs[counter]++
	}
	return false
}
