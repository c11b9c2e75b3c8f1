// Command sm83 runs a DMG ROM headless or through one of the
// display drivers.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/thelolagemann/sm83/internal/gameboy"
	"github.com/thelolagemann/sm83/pkg/display"
	_ "github.com/thelolagemann/sm83/pkg/display/snapshot"
	_ "github.com/thelolagemann/sm83/pkg/display/terminal"
	_ "github.com/thelolagemann/sm83/pkg/display/web"
	"github.com/thelolagemann/sm83/pkg/log"
	"github.com/thelolagemann/sm83/pkg/profile"
	"github.com/thelolagemann/sm83/pkg/utils"
)

const (
	exitOK      = 0
	exitError   = 1
	exitTimeout = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// serialWatcher copies serial output to w, cancelling the run once
// the output contains until.
type serialWatcher struct {
	w      io.Writer
	until  string
	cancel context.CancelFunc
	seen   bytes.Buffer
	found  bool
}

func (s *serialWatcher) Write(p []byte) (int, error) {
	if s.until != "" && !s.found {
		s.seen.Write(p)
		if strings.Contains(s.seen.String(), s.until) {
			s.found = true
			s.cancel()
		}
	}
	return s.w.Write(p)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sm83", flag.ContinueOnError)
	fs.SetOutput(stderr)
	romFile := fs.String("rom", "", "The rom file to load")
	bootROM := fs.String("boot", "", "The boot rom file to load")
	driverName := fs.String("driver", "none", "The display driver to use: "+strings.Join(display.Names(), ", "))
	speed := fs.Float64("speed", 1, "The speed to run the emulator at, 0 for unlimited")
	logLevel := fs.String("log-level", "info", "The log level (debug, info, error)")
	stateFile := fs.String("state", "", "The state file to load")
	saveState := fs.String("save-state", "", "The file to save the state to on exit")
	serialOut := fs.Bool("serial", false, "Print serial output to stdout")
	until := fs.String("until", "", "Stop once serial output contains this string")
	timeout := fs.Duration("timeout", 0, "Stop with exit code 2 after this long")
	profileFile := fs.String("profile", "", "Write an instruction histogram to this PNG file")
	trace := fs.Bool("trace", false, "Log every instruction at debug level")
	stats := fs.String("statsview", "", "Serve runtime stats charts on this address, e.g. localhost:18066")
	display.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	logger, err := log.NewWithLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "invalid log level %q: %v\n", *logLevel, err)
		return exitError
	}
	if *romFile == "" {
		logger.Errorf("no rom given, use -rom")
		return exitError
	}

	rom, err := utils.LoadFile(*romFile)
	if err != nil {
		logger.Errorf("loading rom: %v", err)
		return exitError
	}

	driver := display.GetDriver(*driverName)
	if driver == nil {
		logger.Errorf("unknown driver %q, installed drivers: %s", *driverName, strings.Join(display.Names(), ", "))
		return exitError
	}
	if d, ok := driver.(interface{ SetLogger(log.Logger) }); ok {
		d.SetLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := &serialWatcher{w: io.Discard, until: *until, cancel: cancel}
	if *serialOut {
		watcher.w = stdout
	}

	opts := []gameboy.Opt{
		gameboy.WithLogger(logger),
		gameboy.Speed(*speed),
		gameboy.WithOutput(driver),
		gameboy.WithSerialWriter(watcher),
	}
	if *bootROM != "" {
		boot, err := utils.LoadFile(*bootROM)
		if err != nil {
			logger.Errorf("loading boot rom: %v", err)
			return exitError
		}
		opts = append(opts, gameboy.WithBootROM(boot))
	}
	if *stateFile != "" {
		state, err := os.ReadFile(*stateFile)
		if err != nil {
			logger.Errorf("loading state: %v", err)
			return exitError
		}
		opts = append(opts, gameboy.WithState(state))
	}

	var tracers profile.Tracers
	counter := &profile.Counter{}
	if *profileFile != "" {
		tracers = append(tracers, counter)
	}
	if *trace {
		tracers = append(tracers, profile.Logger{Log: logger})
	}
	switch len(tracers) {
	case 0:
	case 1:
		opts = append(opts, gameboy.WithTracer(tracers[0]))
	default:
		opts = append(opts, gameboy.WithTracer(tracers))
	}

	gb, err := gameboy.New(rom, opts...)
	if err != nil {
		logger.Errorf("%v", err)
		return exitError
	}

	if err := driver.Start(gb.Input()); err != nil {
		gb.Close()
		logger.Errorf("starting %s driver: %v", *driverName, err)
		return exitError
	}
	defer driver.Stop()

	if *stats != "" {
		defer launchStats(*stats, logger)()
	}

	start := time.Now()
	err = gb.Run(ctx)
	gb.Close()
	logger.Infof("stopped after %s, %d frames (%d dropped)", time.Since(start).Round(time.Millisecond), gb.PPU.Frames(), gb.PPU.Dropped())

	code := exitOK
	if errors.Is(err, context.DeadlineExceeded) && !watcher.found {
		logger.Errorf("timed out after %s", *timeout)
		code = exitTimeout
	}

	if *saveState != "" {
		if err := writeState(gb, *saveState); err != nil {
			logger.Errorf("saving state: %v", err)
			code = exitError
		}
	}
	if *profileFile != "" {
		if err := writePlot(counter, *profileFile); err != nil {
			logger.Errorf("writing profile: %v", err)
			code = exitError
		}
	}
	return code
}

func writeState(gb *gameboy.GameBoy, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gb.SaveState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePlot(c *profile.Counter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.WritePlot(f, 24); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
