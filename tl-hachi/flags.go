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

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/Francesco149/go-hachi/v2/config"
	"github.com/retroenv/retrogolib/log"
)

type options struct {
	ROM        string
	Config     string
	Driver     string
	ClockHz    int
	Cycles     uint64
	ShiftVX    bool
	IncrementI bool
	Trace      bool
	Debug      bool
	Quiet      bool
	Disasm     bool
}

// usageError is returned when the command line can't be used as is.
type usageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *usageError) Error() string { return e.msg }

func (e *usageError) showUsage(w io.Writer) {
	if e.msg != "" {
		fmt.Fprintf(w, "%s\n\n", e.msg)
	}
	fmt.Fprintf(w, "usage: tl-hachi [options] path/to/program\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := flag.NewFlagSet("tl-hachi", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVar(&opts.Config, "config", "",
		"configuration file, looked up in the user config folder if not given")
	flags.StringVar(&opts.Driver, "driver", "termloop",
		"host driver (termloop, null)")
	flags.IntVar(&opts.ClockHz, "clock", 0,
		"instructions per second, overrides the configuration")
	flags.Uint64Var(&opts.Cycles, "cycles", 0,
		"stop after this many instructions (0 = no limit)")
	flags.BoolVar(&opts.ShiftVX, "shift-vx", false,
		"8XY6/8XYE shift VX in place and ignore VY")
	flags.BoolVar(&opts.IncrementI, "increment-i", false,
		"FX55/FX65 leave I pointing past the last register")
	flags.BoolVar(&opts.Trace, "trace", false,
		"log every executed instruction (needs -debug)")
	flags.BoolVar(&opts.Debug, "debug", false,
		"enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")
	flags.BoolVar(&opts.Disasm, "disasm", false,
		"print a disassembly of the program and exit")

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, &usageError{flags: flags}
		}
		return opts, &usageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	switch {
	case len(rest) == 0:
		return opts, &usageError{flags: flags}
	case len(rest) > 1:
		return opts, &usageError{
			flags: flags,
			msg: fmt.Sprintf("unexpected argument %s after the program path, "+
				"options go before it", rest[1]),
		}
	}
	opts.ROM = rest[0]

	if opts.ClockHz < 0 {
		return opts, &usageError{flags: flags,
			msg: fmt.Sprintf("invalid clock %v", opts.ClockHz)}
	}
	return opts, nil
}

// apply overrides the configuration with the options set on the command line.
func (o options) apply(c *config.Config) {
	if o.ClockHz > 0 {
		c.CPU.ClockHz = o.ClockHz
	}
	if o.ShiftVX {
		c.CPU.ShiftUsesVY = false
	}
	if o.IncrementI {
		c.CPU.IncrementIndex = true
	}
	if o.Trace {
		c.CPU.Trace = true
	}
}

func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
