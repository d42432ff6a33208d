package shared
// An AGC engine owned by a single goroutine, so that a run loop, a
// keyboard reader and a script can all drive it at the same time.

import (
	"github.com/sirupsen/logrus"

	"github.com/vatine/agc/pkg/cpu"
)

type op interface {
	execute(*sharedCPUBackend)
}

type SharedCPU struct {
	cmd  chan op
	done chan struct{}
}

type sharedCPUBackend struct {
	cpu  *cpu.CPU
	cmd  chan op
	done chan struct{}
}

type step struct {
	n   int
	ret chan int
}

type stepInstruction struct {
	ret chan int
}

type keyPressed struct {
	code uint16
	ret  chan struct{}
}

type readMemory struct {
	addr uint16
	ret  chan uint16
}

type writeMemory struct {
	addr  uint16
	value uint16
	ret   chan struct{}
}

type readIO struct {
	ch  uint16
	ret chan uint16
}

type cycleCounter struct {
	ret chan int32
}

// Executes n step calls, returning how many completed an instruction.
func (c step) execute(b *sharedCPUBackend) {
	logrus.WithFields(logrus.Fields{
		"op": "step",
		"n":  c.n,
	}).Trace("stepping")
	done := 0
	for i := 0; i < c.n; i++ {
		if b.cpu.Step() {
			done++
		}
	}
	c.ret <- done
}

// Steps until one instruction completes, returning the number of step
// calls it took.
func (c stepInstruction) execute(b *sharedCPUBackend) {
	n := 1
	for !b.cpu.Step() {
		n++
	}
	logrus.WithFields(logrus.Fields{
		"op":    "stepInstruction",
		"steps": n,
	}).Trace("instruction complete")
	c.ret <- n
}

func (c keyPressed) execute(b *sharedCPUBackend) {
	logrus.WithFields(logrus.Fields{
		"op":   "keyPressed",
		"code": c.code,
	}).Debug("key")
	b.cpu.KeyPressed(c.code)
	c.ret <- struct{}{}
}

func (c readMemory) execute(b *sharedCPUBackend) {
	c.ret <- b.cpu.ReadMemory(c.addr)
}

func (c writeMemory) execute(b *sharedCPUBackend) {
	logrus.WithFields(logrus.Fields{
		"op":    "writeMemory",
		"addr":  c.addr,
		"value": c.value,
	}).Debug("set value")
	b.cpu.WriteMemory(c.addr, c.value)
	c.ret <- struct{}{}
}

func (c readIO) execute(b *sharedCPUBackend) {
	c.ret <- b.cpu.ReadIO(c.ch)
}

func (c cycleCounter) execute(b *sharedCPUBackend) {
	c.ret <- b.cpu.CycleCounter()
}

func (b *sharedCPUBackend) run() {
	for cmd := range b.cmd {
		cmd.execute(b)
	}
	close(b.done)
}

// Hands c over to a new owning goroutine. After this call, c must only
// be reached through the returned SharedCPU.
func NewSharedCPU(c *cpu.CPU) SharedCPU {
	cmd := make(chan op)
	done := make(chan struct{})
	backend := sharedCPUBackend{cpu: c, cmd: cmd, done: done}
	go backend.run()

	return SharedCPU{cmd: cmd, done: done}
}

// Stops the owning goroutine and waits for it to finish any operation
// in progress. No other method may be called afterwards.
func (s SharedCPU) Close() {
	close(s.cmd)
	<-s.done
}

func (s SharedCPU) Step() bool {
	return s.StepN(1) == 1
}

func (s SharedCPU) StepN(n int) int {
	c := make(chan int)
	s.cmd <- step{n: n, ret: c}
	rv := <-c
	close(c)
	return rv
}

func (s SharedCPU) StepInstruction() int {
	c := make(chan int)
	s.cmd <- stepInstruction{ret: c}
	rv := <-c
	close(c)
	return rv
}

func (s SharedCPU) KeyPressed(code uint16) {
	c := make(chan struct{})
	s.cmd <- keyPressed{code: code, ret: c}
	<-c
	close(c)
}

func (s SharedCPU) ReadMemory(addr uint16) uint16 {
	c := make(chan uint16)
	s.cmd <- readMemory{addr: addr, ret: c}
	rv := <-c
	close(c)
	return rv
}

func (s SharedCPU) WriteMemory(addr uint16, value uint16) {
	c := make(chan struct{})
	s.cmd <- writeMemory{addr: addr, value: value, ret: c}
	<-c
	close(c)
}

func (s SharedCPU) ReadIO(ch uint16) uint16 {
	c := make(chan uint16)
	s.cmd <- readIO{ch: ch, ret: c}
	rv := <-c
	close(c)
	return rv
}

func (s SharedCPU) CycleCounter() int32 {
	c := make(chan int32)
	s.cmd <- cycleCounter{ret: c}
	rv := <-c
	close(c)
	return rv
}
