//go:build !unix

package main

import (
	"errors"
)

type terminal struct{}

func startTerminal(keys chan<- byte) (*terminal, error) {
	return nil, errors.New("raw terminal input is not supported on this platform")
}

func (t *terminal) Stop() {}
