package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/albenik/go-serial/v2"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/nvm"
	"github.com/moffa90/go-flxboot/protocol"
)

// lookupTarget resolves the --target flag.
func lookupTarget() (*nvm.Target, error) {
	t := nvm.ByName(targetName)
	if t == nil {
		return nil, errors.Errorf("unknown target %q (known: %s)", targetName, strings.Join(nvm.Names(), ", "))
	}
	return t, nil
}

// parseJEDEC parses "MM:DDDD" hex notation as printed by JEDECID.String.
func parseJEDEC(s string) (protocol.JEDECID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return protocol.JEDECID{}, errors.Errorf("bad jedec id %q, want MM:DDDD", s)
	}
	m, err := strconv.ParseUint(parts[0], 16, 8)
	if err != nil {
		return protocol.JEDECID{}, errors.Wrapf(err, "bad manufacturer in %q", s)
	}
	d, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return protocol.JEDECID{}, errors.Wrapf(err, "bad device in %q", s)
	}
	return protocol.JEDECID{Manufacturer: byte(m), Device: uint16(d)}, nil
}

// colorWriter prints everything written through it in one color.
type colorWriter struct {
	c *color.Color
	w io.Writer
}

func (cw colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// openDiagnostics returns the diagnostics writer: red text on stderr,
// mirrored to a serial console when port is set.
func openDiagnostics(port string, baud int) (io.Writer, io.Closer, error) {
	stderr := colorWriter{c: color.New(color.FgRed), w: os.Stderr}
	if port == "" {
		return stderr, nopCloser{}, nil
	}

	sp, err := serial.Open(port, serial.WithBaudrate(baud))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open console %s", port)
	}
	return io.MultiWriter(stderr, sp), sp, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
