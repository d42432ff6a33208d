package cpu

import (
	"fmt"
)

type EventKind int

const (
	// A value was written to an I/O channel.
	ChannelWritten EventKind = iota
	// The CPU took an interrupt (Interrupt is 0 for EDRUPT).
	InterruptVectored
	// One of the scaler-driven alarm checks fired.
	AlarmRaised
	// An instruction without an implementation was executed.
	Unimplemented
	// A program image finished loading.
	ProgramLoaded
)

// Alarm checks made by the scaler. They are only reported.
type Alarm int

const (
	NightWatchman Alarm = iota
	StandbyCheck
	RuptLock
	TCTrap
	Time6Tick
)

var alarmNames = map[Alarm]string{
	NightWatchman: "night watchman",
	StandbyCheck:  "standby circuit check",
	RuptLock:      "rupt lock",
	TCTrap:        "TC trap",
	Time6Tick:     "TIME6",
}

func (a Alarm) String() string {
	if s, ok := alarmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Alarm(%d)", int(a))
}

// Something the CPU did that a host may want to react to. Which fields
// are set depends on Kind.
type Event struct {
	Kind      EventKind
	Channel   uint16 // ChannelWritten
	Value     uint16 // ChannelWritten
	Interrupt int    // InterruptVectored
	Address   uint16 // InterruptVectored: return address; Unimplemented: instruction address
	Instr     Instr  // Unimplemented
	Alarm     Alarm  // AlarmRaised
	Words     int    // ProgramLoaded
}

func (e Event) String() string {
	switch e.Kind {
	case ChannelWritten:
		return fmt.Sprintf("channel %03o <- %05o", e.Channel, e.Value)
	case InterruptVectored:
		return fmt.Sprintf("interrupt %d, return to %04o", e.Interrupt, e.Address)
	case AlarmRaised:
		return fmt.Sprintf("alarm: %s", e.Alarm)
	case Unimplemented:
		return fmt.Sprintf("unimplemented %s at %04o", e.Instr, e.Address)
	case ProgramLoaded:
		return fmt.Sprintf("program loaded, %d words", e.Words)
	}
	return fmt.Sprintf("Event(%d)", int(e.Kind))
}

// The receiving end of CPU events. Notify is called synchronously from
// within Step, so it must not call back into the CPU.
type EventSink interface {
	Notify(Event)
}

// Adapt a plain function to an EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Notify(e Event) {
	f(e)
}

// A buffered channel of events. Events that do not fit are dropped, so a
// slow reader never stalls the CPU.
type ChannelSink chan Event

func NewChannelSink(size int) ChannelSink {
	return make(ChannelSink, size)
}

func (s ChannelSink) Notify(e Event) {
	select {
	case s <- e:
	default:
	}
}

// Attach an event sink; nil turns events off.
func (c *CPU) SetEventSink(s EventSink) {
	c.sink = s
}

func (c *CPU) emit(e Event) {
	if c.sink != nil {
		c.sink.Notify(e)
	}
}
