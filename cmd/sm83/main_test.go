package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeROM writes a ROM only image running program to a temporary
// file and returns its path.
func writeROM(t *testing.T, program ...byte) string {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x100:], program)
	copy(rom[0x134:], "CMDTEST")
	path := filepath.Join(t.TempDir(), "test.gb")
	if err := os.WriteFile(path, rom, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// serialOK sends "ok" over the serial port, then spins.
var serialOK = []byte{
	0x3E, 'o',  // LD A, 'o'
	0xE0, 0x01, // LDH (SB), A
	0x3E, 0x81, // LD A, 0x81
	0xE0, 0x02, // LDH (SC), A
	0xF0, 0x02, // LDH A, (SC)
	0xCB, 0x7F, // BIT 7, A
	0x20, 0xFA, // JR NZ, -6
	0x3E, 'k',  // LD A, 'k'
	0xE0, 0x01, // LDH (SB), A
	0x3E, 0x81, // LD A, 0x81
	0xE0, 0x02, // LDH (SC), A
	0x18, 0xFE, // JR -2
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestSerialWatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	w := &serialWatcher{w: &out, until: "ok", cancel: cancel}
	w.Write([]byte("o"))
	if ctx.Err() != nil {
		t.Fatalf("expected the run to continue")
	}
	if n, err := w.Write([]byte("k")); n != 1 || err != nil {
		t.Errorf("unexpected write result %d %v", n, err)
	}
	if !w.found || ctx.Err() == nil || out.String() != "ok" {
		t.Errorf("expected the run to be cancelled once ok was seen, output %q", out.String())
	}

	w = &serialWatcher{w: failingWriter{}, cancel: cancel}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Errorf("expected the write error to be returned")
	}
}

func TestRun_Until(t *testing.T) {
	rom := writeROM(t, serialOK...)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-rom", rom, "-speed", "0", "-serial", "-until", "ok", "-timeout", "10s", "-log-level", "error"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit code %d, got %d: %s", exitOK, code, stderr.String())
	}
	if stdout.String() != "ok" {
		t.Errorf("expected serial output %q, got %q", "ok", stdout.String())
	}
}

func TestRun_Timeout(t *testing.T) {
	rom := writeROM(t, 0x18, 0xFE)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-rom", rom, "-until", "never", "-timeout", "50ms", "-log-level", "error"}, &stdout, &stderr)
	if code != exitTimeout {
		t.Errorf("expected exit code %d, got %d", exitTimeout, code)
	}
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log-level", "error"}, &stdout, &stderr); code != exitError {
		t.Errorf("expected an error without a rom, got %d", code)
	}
	if code := run([]string{"-rom", filepath.Join(t.TempDir(), "missing.gb"), "-log-level", "error"}, &stdout, &stderr); code != exitError {
		t.Errorf("expected an error for a missing rom, got %d", code)
	}
	rom := writeROM(t)
	if code := run([]string{"-rom", rom, "-driver", "missing", "-log-level", "error"}, &stdout, &stderr); code != exitError {
		t.Errorf("expected an error for an unknown driver, got %d", code)
	}
	if code := run([]string{"-rom", rom, "-log-level", "loud"}, &stdout, &stderr); code != exitError {
		t.Errorf("expected an error for a bad log level, got %d", code)
	}
	if code := run([]string{"-bogus"}, &stdout, &stderr); code != exitError {
		t.Errorf("expected an error for an unknown flag, got %d", code)
	}
}

func TestRun_StateAndProfile(t *testing.T) {
	rom := writeROM(t, serialOK...)
	dir := t.TempDir()
	state := filepath.Join(dir, "test.state")
	plot := filepath.Join(dir, "profile.png")

	var stdout, stderr bytes.Buffer
	args := []string{"-rom", rom, "-speed", "0", "-until", "ok", "-timeout", "10s", "-log-level", "error",
		"-save-state", state, "-profile", plot}
	if code := run(args, &stdout, &stderr); code != exitOK {
		t.Fatalf("expected exit code %d, got %d: %s", exitOK, code, stderr.String())
	}

	f, err := os.Open(plot)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("expected a png profile, got %v", err)
	}

	// the saved machine has already sent everything, so nothing
	// more arrives before the timeout
	args = []string{"-rom", rom, "-speed", "0", "-serial", "-state", state, "-until", "ok", "-timeout", "100ms", "-log-level", "error"}
	stdout.Reset()
	if code := run(args, &stdout, &stderr); code != exitTimeout {
		t.Errorf("expected exit code %d, got %d", exitTimeout, code)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no serial output after restoring, got %q", stdout.String())
	}
}
