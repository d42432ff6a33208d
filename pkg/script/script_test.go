package script

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	lua "github.com/yuin/gopher-lua"

	"github.com/vatine/agc/pkg/cpu"
	"github.com/vatine/agc/pkg/shared"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func testCPU() *cpu.CPU {
	c := cpu.NewCPU()
	c.Log = quiet()
	return c
}

// INCR 1100; TC 1000, starting at 1000. Lua has no octal literals.
const loop = `
poke(512, 10816)
poke(513, 512)
poke(5, 512)
`

func TestGlobals(t *testing.T) {
	cases := []struct {
		src      string
		expected lua.LValue
	}{
		{loop + "result = instr(4)", lua.LNumber(6)},
		{loop + "instr(4) result = peek(576)", lua.LNumber(2)},
		{loop + "result = step(3)", lua.LNumber(2)},
		{loop + "step(3) result = cycles()", lua.LNumber(3)},
		{loop + "result = disasm(512)", lua.LString("INCR  1100")},
		{"result = disasm(512, true)", lua.LString("READ  000")},
		{"key(keys.VERB) result = channel(13)", lua.LNumber(17)},
		{"key(keys['0']) result = channel(13)", lua.LNumber(16)},
		{"poke(1, 65535) result = peek(1)", lua.LNumber(0o77777)},
		{"result = keys.ENTR", lua.LNumber(28)},
	}

	for ix, tc := range cases {
		r := New(testCPU(), quiet())
		if err := r.RunString(tc.src); err != nil {
			t.Errorf("Case #%d, unexpected error: %v", ix, err)
			r.Close()
			continue
		}
		if seen := r.L.GetGlobal("result"); seen != tc.expected {
			t.Errorf("Case #%d, result is %v, expected %v", ix, seen, tc.expected)
		}
		r.Close()
	}
}

func TestBadArguments(t *testing.T) {
	cases := []string{
		"peek(-1)",
		"poke(70000, 1)",
		"key('x')",
		"nosuchfunction()",
	}

	for ix, src := range cases {
		r := New(testCPU(), quiet())
		if err := r.RunString(src); err == nil {
			t.Errorf("Case #%d, %q ran without error", ix, src)
		}
		r.Close()
	}
}

func TestLog(t *testing.T) {
	l, hook := test.NewNullLogger()
	r := New(testCPU(), l)
	defer r.Close()

	if err := r.RunString(`log("hello")`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hook.Entries) != 1 {
		t.Fatalf("expected 1 log entry, saw %d", len(hook.Entries))
	}
	if msg := hook.LastEntry().Message; msg != "hello" {
		t.Errorf("logged %q, expected %q", msg, "hello")
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.lua")
	if err := os.WriteFile(path, []byte(loop+"instr(10)"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := shared.NewSharedCPU(testCPU())
	defer s.Close()
	r := New(s, quiet())
	defer r.Close()

	if err := r.RunFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := s.ReadMemory(0o1100); v != 5 {
		t.Errorf("Expected 5 increments, saw %d", v)
	}

	if err := r.RunFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Errorf("missing script ran without error")
	}
}
