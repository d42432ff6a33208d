package main

import (
	"github.com/vatine/agc/pkg/script"
)

// Host keys for the DSKY keyboard.
var hostKeys = map[byte]string{
	'v':  "VERB",
	'n':  "NOUN",
	'+':  "PLUS",
	'=':  "PLUS",
	'-':  "MINUS",
	'c':  "CLR",
	'k':  "KEYREL",
	'e':  "ENTR",
	'\r': "ENTR",
	'\n': "ENTR",
	'r':  "RSET",
}

// The DSKY keycode for a host key, if there is one. Letters are taken
// in either case.
func keyCode(b byte) (uint16, bool) {
	if b >= '0' && b <= '9' {
		return script.Keys[string(b)], true
	}
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	name, ok := hostKeys[b]
	if !ok {
		return 0, false
	}
	return script.Keys[name], true
}
