/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

// tl-hachi runs a CHIP-8 program in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Francesco149/go-hachi/v2/config"
	_ "github.com/Francesco149/go-hachi/v2/drivers"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/Francesco149/go-hachi/v2/host"
	tl "github.com/JoelOtter/termloop"
	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

// just a wrapper entity to service the host loop on every frame
type emulatorWrapper struct{ loop *host.Loop }

// haltUnwind carries a halt out of the termloop game loop, which has no stop
// call. Game.Start closes the terminal in its deferred cleanup on the way
// out.
type haltUnwind struct{ err error }

func (e *emulatorWrapper) Draw(s *tl.Screen) {
	// we must use Draw because Tick is only called on input
	if err := e.loop.Service(time.Now()); err != nil {
		panic(haltUnwind{err})
	}
}
func (e *emulatorWrapper) Tick(ev tl.Event) {}

// startGame runs start until it returns or the emulator halts, in which case
// the halt error is returned.
func startGame(start func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h, ok := r.(haltUnwind)
			if !ok {
				panic(r)
			}
			err = h.err
		}
	}()
	start()
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			usageErr.showUsage(os.Stderr)
		} else {
			fmt.Fprintln(os.Stderr, ansi.Color(err.Error(), "red"))
		}
		os.Exit(1)
	}

	logger := createLogger(opts.Debug, opts.Quiet)
	if err = run(app.Context(), logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Interrupted")
			return
		}
		fmt.Fprintln(os.Stderr, ansi.Color(err.Error(), "red"))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err = cfg.Validate(); err != nil {
		return err
	}
	if cfg.Path != "" {
		logger.Debug("Loaded configuration", log.String("path", cfg.Path))
	}

	// termloop owns the terminal, so stay quiet unless asked to debug
	emuLogger := logger
	if opts.Driver == "termloop" && !opts.Debug {
		emuLogger = createLogger(false, true)
	}

	c, err := hachi.New(cfg.Settings(emuLogger))
	if err != nil {
		return err
	}
	size, err := c.Load(opts.ROM)
	if err != nil {
		return err
	}

	if opts.Disasm {
		program := c.Memory[hachi.ProgramStart : hachi.ProgramStart+int(size)]
		return printDisassembly(os.Stdout, program)
	}

	o := cfg.Options(emuLogger)
	o.MaxCycles = opts.Cycles
	loop, err := host.NewLoop(c, opts.Driver, o)
	if err != nil {
		return err
	}

	if opts.Driver == "termloop" {
		err = runTermloop(loop, cfg)
	} else {
		err = loop.Run(ctx)
	}
	if err != nil {
		return err
	}

	logger.Info("Emulation finished", log.Int("cycles", int(loop.Cycles())))
	return nil
}

func runTermloop(loop *host.Loop, cfg *config.Config) error {
	if err := loop.Init(); err != nil {
		return err
	}
	if m := cfg.CharMap(); m != nil {
		if err := loop.SetDriverData("char_map", m); err != nil {
			return err
		}
	}

	g, ok := loop.GetDriverData("ctx").(*tl.Game)
	if !ok || g == nil {
		return errors.New("driver context is not a termloop game")
	}

	g.Screen().AddEntity(&emulatorWrapper{loop})

	// returns once the end key is pressed or the emulator halts
	if err := startGame(g.Start); err != nil {
		return err
	}

	loop.Stop()
	return loop.Err()
}

// printDisassembly writes a listing of program, loaded at ProgramStart.
// A trailing odd byte is left out.
func printDisassembly(out io.Writer, program []byte) error {
	program = program[:len(program)&^1]
	lines, err := hachi.DisassembleSimple(program, hachi.ProgramStart)
	if err != nil {
		return err
	}

	w := new(tabwriter.Writer)
	w.Init(out, 8, 8, 0, '\t', 0)
	fmt.Fprintln(w, "addr\topcode\tpseudo-code\tascii\tdescription\t")

	for _, line := range lines {
		asciitext := ""
		if ascii := line.ASCII(); len(ascii) != 0 {
			asciitext = fmt.Sprintf("`%s`", ascii)
		}
		fmt.Fprintf(w, "%04X\t%04X\t%v\t%s\t%s\n", line.Address,
			line.Instruction.Opcode, line, asciitext, line.Description())
	}

	return w.Flush()
}
