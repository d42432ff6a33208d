//go:build !statsview

package main

import (
	"io"
)

func launchStats(output io.Writer) bool {
	return false
}
