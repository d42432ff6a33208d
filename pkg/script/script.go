// Lua scripting for driving an AGC.
//
// A script sees the machine through a handful of globals:
//
//	step([n])          n step calls, returns how many completed an instruction
//	instr([n])         run n whole instructions, returns the step calls used
//	key(code)          press a DSKY key
//	peek(addr)         read memory
//	poke(addr, value)  write memory
//	channel(n)         read an I/O channel
//	cycles()           the cycle counter
//	disasm(addr[, x])  disassemble the word at addr, x for an extracode
//	log(msg)           log a message
//
// and a keys table with the DSKY keycodes, so that key(keys.VERB) does
// what it says.
package script

import (
	"fmt"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/vatine/agc/pkg/disasm"
)

// What a script can drive. Both *cpu.CPU and shared.SharedCPU will do.
type Machine interface {
	Step() bool
	KeyPressed(code uint16)
	ReadMemory(addr uint16) uint16
	WriteMemory(addr uint16, value uint16)
	ReadIO(ch uint16) uint16
	CycleCounter() int32
}

// DSKY keycodes, as delivered to channel 015.
var Keys = map[string]uint16{
	"0":      16,
	"1":      1,
	"2":      2,
	"3":      3,
	"4":      4,
	"5":      5,
	"6":      6,
	"7":      7,
	"8":      8,
	"9":      9,
	"VERB":   17,
	"NOUN":   31,
	"PLUS":   26,
	"MINUS":  27,
	"CLR":    30,
	"KEYREL": 25,
	"ENTR":   28,
	"RSET":   18,
}

type Runner struct {
	L   *lua.LState
	m   Machine
	log logrus.FieldLogger
}

func New(m Machine, log logrus.FieldLogger) *Runner {
	r := &Runner{L: lua.NewState(), m: m, log: log}

	funcs := map[string]lua.LGFunction{
		"step":    r.step,
		"instr":   r.instr,
		"key":     r.key,
		"peek":    r.peek,
		"poke":    r.poke,
		"channel": r.channel,
		"cycles":  r.cycles,
		"disasm":  r.disasm,
		"log":     r.logMessage,
	}
	for name, f := range funcs {
		r.L.SetGlobal(name, r.L.NewFunction(f))
	}

	keys := r.L.NewTable()
	for name, code := range Keys {
		r.L.SetField(keys, name, lua.LNumber(code))
	}
	r.L.SetGlobal("keys", keys)

	return r
}

func (r *Runner) Close() {
	r.L.Close()
}

func (r *Runner) RunString(src string) error {
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (r *Runner) RunFile(path string) error {
	r.log.WithFields(logrus.Fields{"script": path}).Info("running script")
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func checkWord(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0o177777 {
		L.ArgError(n, "not a 16-bit word")
	}
	return uint16(v)
}

func (r *Runner) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	done := 0
	for i := 0; i < n; i++ {
		if r.m.Step() {
			done++
		}
	}
	L.Push(lua.LNumber(done))
	return 1
}

func (r *Runner) instr(L *lua.LState) int {
	n := L.OptInt(1, 1)
	steps := 0
	for i := 0; i < n; i++ {
		steps++
		for !r.m.Step() {
			steps++
		}
	}
	L.Push(lua.LNumber(steps))
	return 1
}

func (r *Runner) key(L *lua.LState) int {
	r.m.KeyPressed(checkWord(L, 1))
	return 0
}

func (r *Runner) peek(L *lua.LState) int {
	L.Push(lua.LNumber(r.m.ReadMemory(checkWord(L, 1))))
	return 1
}

func (r *Runner) poke(L *lua.LState) int {
	r.m.WriteMemory(checkWord(L, 1), checkWord(L, 2))
	return 0
}

func (r *Runner) channel(L *lua.LState) int {
	L.Push(lua.LNumber(r.m.ReadIO(checkWord(L, 1))))
	return 1
}

func (r *Runner) cycles(L *lua.LState) int {
	L.Push(lua.LNumber(r.m.CycleCounter()))
	return 1
}

func (r *Runner) disasm(L *lua.LState) int {
	addr := checkWord(L, 1)
	text, extra := disasm.Disassemble(addr, r.m.ReadMemory(addr), L.OptBool(2, false))
	L.Push(lua.LString(text))
	L.Push(lua.LBool(extra))
	return 2
}

func (r *Runner) logMessage(L *lua.LState) int {
	r.log.WithFields(logrus.Fields{"source": "script"}).Info(L.CheckString(1))
	return 0
}
