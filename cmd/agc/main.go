package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vatine/agc/pkg/cpu"
	"github.com/vatine/agc/pkg/disasm"
	"github.com/vatine/agc/pkg/script"
	"github.com/vatine/agc/pkg/shared"
)

var helpvar bool
var runvar bool
var tracevar bool
var eventsvar bool
var statsvar bool
var romvar string
var scriptvar string
var dumpvar string
var levelvar string
var stepsvar int
var ratevar float64

// Pacing granularity for -run.
const ticksPerSecond = 100

// Line ending for output; raw terminal mode needs a carriage return.
var eol = "\n"

const usage = "agc [flags] -rom image.bin"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.StringVar(&romvar, "rom", "", "Program image to load into fixed memory")
	flag.IntVar(&stepsvar, "steps", 0, "Number of step calls to make (0 means until interrupted with -run)")
	flag.BoolVar(&runvar, "run", false, "Run in real time, reading DSKY keys from the terminal")
	flag.Float64Var(&ratevar, "rate", 1.0, "Speed relative to real time, with -run")
	flag.BoolVar(&tracevar, "trace", false, "Print each instruction as it completes")
	flag.BoolVar(&eventsvar, "events", false, "Print DSKY channel writes")
	flag.StringVar(&levelvar, "loglevel", "warning", "Log level (trace, debug, info, warning, error)")
	flag.StringVar(&scriptvar, "script", "", "Lua script to drive the machine with")
	flag.StringVar(&dumpvar, "dumpstate", "", "Write a graphviz dump of the final state to this file")
	flag.BoolVar(&statsvar, "statsview", false, "Serve runtime statistics (needs the statsview build tag)")
}

func printf(format string, args ...interface{}) {
	fmt.Printf(format+eol, args...)
}

// Print writes to the DSKY channels.
func dskySink(e cpu.Event) {
	if e.Kind != cpu.ChannelWritten {
		return
	}
	switch e.Channel {
	case cpu.ChanDSKY, cpu.ChanDSAlmOut:
		printf("%s", e)
	}
}

func printRegisters(c *cpu.CPU) {
	for addr := cpu.RegA; addr <= cpu.RegBRUPT; addr++ {
		if addr == cpu.RegZero {
			continue
		}
		printf("%-6s %06o", cpu.RegisterName(addr), c.ReadMemory(addr))
	}
	printf("cycles %d", c.CycleCounter())
}

// Make n step calls, listing each completed instruction with -trace.
func headless(c *cpu.CPU, n int) {
	for i := 0; i < n; i++ {
		z := c.ReadMemory(cpu.RegZ)
		extra := c.ExtraCode()
		if c.Step() && tracevar {
			text, _ := disasm.Disassemble(z, c.ReadMemory(z), extra)
			printf("%04o %s", z, text)
		}
	}
}

// Pace the CPU at real time, scaled by -rate. Stops on ^C or after
// -steps step calls.
func run(c *cpu.CPU) {
	keys := make(chan byte, 16)
	t, err := startTerminal(keys)
	if err != nil {
		logrus.WithError(err).Warn("no keyboard input")
	} else {
		eol = "\r\n"
	}

	s := shared.NewSharedCPU(c)

	quit := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(quit) }) }

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for b := range keys {
			if b == 0x03 {
				stop()
				continue
			}
			if code, ok := keyCode(b); ok {
				s.KeyPressed(code)
			}
		}
	}()

	defer func() {
		if t != nil {
			t.Stop()
		}
		close(keys)
		wg.Wait()
		s.Close()
		eol = "\n"
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	perTick := int(float64(cpu.CyclesPerSecond) * ratevar / ticksPerSecond)
	if perTick < 1 {
		perTick = 1
	}
	fields := logrus.Fields{
		"rate":    ratevar,
		"perTick": perTick,
	}
	logrus.WithFields(fields).Info("running")

	ticker := time.NewTicker(time.Second / ticksPerSecond)
	defer ticker.Stop()

	total := 0
	for {
		select {
		case <-quit:
			return
		case <-sig:
			return
		case <-ticker.C:
			s.StepN(perTick)
			total += perTick
			if stepsvar > 0 && total >= stepsvar {
				return
			}
		}
	}
}

func agc() int {
	flag.Parse()

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	level, err := logrus.ParseLevel(levelvar)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)

	if romvar == "" && scriptvar == "" {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	if statsvar && !launchStats(os.Stderr) {
		logrus.Warn("statsview not available in this build")
	}

	c := cpu.NewCPU()
	if eventsvar {
		c.SetEventSink(cpu.SinkFunc(dskySink))
	}

	if romvar != "" {
		if err := c.LoadROMFile(romvar); err != nil {
			logrus.WithError(err).Error("cannot load program image")
			return 1
		}
	}

	switch {
	case scriptvar != "":
		r := script.New(c, logrus.StandardLogger())
		err := r.RunFile(scriptvar)
		r.Close()
		if err != nil {
			logrus.WithError(err).Error("script failed")
			return 1
		}
	case runvar:
		run(c)
	default:
		headless(c, stepsvar)
	}

	printRegisters(c)

	if dumpvar != "" {
		if err := dumpState(c, dumpvar); err != nil {
			logrus.WithError(err).Error("cannot dump state")
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(agc())
}
