package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Size in bytes of a complete fixed memory image.
const ROMImageSize = FixedBankCount * FixedBankSize * 2

// Physical bank for a bank in the image. The first four banks are stored
// in the order 2, 3, 0, 1.
func romBank(bank int) int {
	switch bank {
	case 0:
		return 2
	case 1:
		return 3
	case 2:
		return 0
	case 3:
		return 1
	}
	return bank
}

// LoadROM fills fixed memory from a program image: big-endian 16-bit
// words, each shifted left by one over a parity bit. A short image is
// zero-filled. Once the image is in place the ready callback (if any) is
// called.
func (c *CPU) LoadROM(r io.Reader) error {
	image := make([]byte, ROMImageSize)
	n, err := io.ReadFull(r, image)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("reading program image: %w", err)
	}

	counter := 0
	for bank := 0; bank < FixedBankCount; bank++ {
		base := romBank(bank) * FixedBankSize
		for offset := 0; offset < FixedBankSize; offset, counter = offset+1, counter+2 {
			if counter+1 < n {
				c.mem.ROM[base+offset] = binary.BigEndian.Uint16(image[counter:]) >> 1
			} else {
				c.mem.ROM[base+offset] = 0
			}
		}
	}

	fields := logrus.Fields{
		"bytes": n,
		"words": n / 2,
	}
	c.Log.WithFields(fields).Info("program image loaded")
	c.emit(Event{Kind: ProgramLoaded, Words: n / 2})

	if c.ready != nil {
		c.ready()
	}
	return nil
}

// LoadROMFile loads a program image from a file.
func (c *CPU) LoadROMFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.LoadROM(f)
}

// Register a function to be called once a program image is loaded.
func (c *CPU) SetReadyCallback(f func()) {
	c.ready = f
}
