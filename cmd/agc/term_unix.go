//go:build unix

package main

import (
	"errors"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Raw, non-blocking stdin, delivered a byte at a time.
type terminal struct {
	fd      int
	old     *term.State
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func startTerminal(keys chan<- byte) (*terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, old)
		return nil, err
	}

	t := &terminal{
		fd:     fd,
		old:    old,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-t.stopCh:
				return
			default:
			}

			n, err := unix.Read(t.fd, buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-t.stopCh:
					return
				}
				continue
			}
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || n == 0 {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
		}
	}()

	return t, nil
}

// Stop reading and put the terminal back the way it was.
func (t *terminal) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	<-t.done
	_ = unix.SetNonblock(t.fd, false)
	_ = term.Restore(t.fd, t.old)
}
