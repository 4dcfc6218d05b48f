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

// Package config loads the tl-hachi configuration file.
//
// The file is TOML:
//
//	[cpu]
//	clock_hz = 600
//	timer_hz = 60
//	shift_uses_vy = true
//	increment_index = false
//	trace = false
//
//	[input]
//	hold_ms = 100
//
//	[input.keymap]
//	"1" = 0x1
//	"q" = 0x4
//
// Every field is optional, missing ones keep their default value.
package config

import (
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/Francesco149/go-hachi/v2/host"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/shibukawa/configdir"
)

// FileName is the name looked up in the per-user configuration folders.
const FileName = "tl-hachi.toml"

const maxHoldMs = 60000

// CPU holds the emulation settings.
type CPU struct {
	ClockHz        int  `toml:"clock_hz"`
	TimerHz        int  `toml:"timer_hz"`
	ShiftUsesVY    bool `toml:"shift_uses_vy"`
	IncrementIndex bool `toml:"increment_index"`
	Trace          bool `toml:"trace"`
}

// Input holds the keyboard settings.
type Input struct {
	// HoldMs is how long a key stays down after the terminal reports it.
	HoldMs int `toml:"hold_ms"`
	// Keymap maps single characters to hex keys. Empty means the driver's
	// default layout.
	Keymap map[string]int `toml:"keymap"`
}

// Config is the whole configuration file.
type Config struct {
	CPU   CPU   `toml:"cpu"`
	Input Input `toml:"input"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		CPU: CPU{
			ClockHz:     host.DefaultOptions.ClockHz,
			TimerHz:     host.DefaultOptions.TimerHz,
			ShiftUsesVY: hachi.DefaultSettings.ShiftUsesVY,
		},
		Input: Input{HoldMs: 100},
	}
}

// Load reads the configuration at path. If path is empty, the per-user
// configuration folders are searched for FileName and the defaults are
// returned when none has it.
func Load(path string) (*Config, error) {
	var (
		data []byte
		err  error
	)

	if path == "" {
		dirs := configdir.New("go-hachi", "tl-hachi")
		folder := dirs.QueryFolderContainsFile(FileName)
		if folder == nil {
			return Default(), nil
		}
		path = filepath.Join(folder.Path, FileName)
		data, err = folder.ReadFile(FileName)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	c.Path = path
	return c, nil
}

// Parse decodes a TOML document on top of the defaults and validates the
// result. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key %s", undecoded[0])
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns an error when a value is out of range.
func (c *Config) Validate() error {
	if c.CPU.ClockHz <= 0 || c.CPU.ClockHz > host.MaxRateHz {
		return errors.Errorf("cpu.clock_hz must be in 1..%v, got %v",
			host.MaxRateHz, c.CPU.ClockHz)
	}
	if c.CPU.TimerHz <= 0 || c.CPU.TimerHz > host.MaxRateHz {
		return errors.Errorf("cpu.timer_hz must be in 1..%v, got %v",
			host.MaxRateHz, c.CPU.TimerHz)
	}
	if c.Input.HoldMs <= 0 || c.Input.HoldMs > maxHoldMs {
		return errors.Errorf("input.hold_ms must be in 1..%v, got %v",
			maxHoldMs, c.Input.HoldMs)
	}
	for char, key := range c.Input.Keymap {
		if utf8.RuneCountInString(char) != 1 {
			return errors.Errorf("input.keymap: %q is not a single character", char)
		}
		if key < 0 || key > 0xF {
			return errors.Errorf("input.keymap: %q maps to %#x, keys go from 0x0 to 0xF",
				char, key)
		}
	}
	return nil
}

// Settings returns the emulator settings described by the configuration.
func (c *Config) Settings(logger *log.Logger) *hachi.Settings {
	return &hachi.Settings{
		ShiftUsesVY:    c.CPU.ShiftUsesVY,
		IncrementIndex: c.CPU.IncrementIndex,
		Trace:          c.CPU.Trace,
		Logger:         logger,
	}
}

// Options returns the host loop options described by the configuration.
// The key hold time is rounded to whole timer ticks, at least one. The
// result is only usable when Validate succeeds.
func (c *Config) Options(logger *log.Logger) *host.Options {
	holdTicks := 1
	if c.CPU.TimerHz > 0 && c.CPU.TimerHz <= host.MaxRateHz {
		tick := time.Second / time.Duration(c.CPU.TimerHz)
		hold := time.Duration(c.Input.HoldMs) * time.Millisecond
		if n := int((hold + tick/2) / tick); n > 1 {
			holdTicks = n
		}
	}

	return &host.Options{
		ClockHz:   c.CPU.ClockHz,
		TimerHz:   c.CPU.TimerHz,
		HoldTicks: holdTicks,
		MaxLag:    host.DefaultOptions.MaxLag,
		Logger:    logger,
	}
}

// CharMap returns the character keymap, or nil when the file has none.
func (c *Config) CharMap() map[rune]uint8 {
	if len(c.Input.Keymap) == 0 {
		return nil
	}
	m := make(map[rune]uint8, len(c.Input.Keymap))
	for char, key := range c.Input.Keymap {
		r, _ := utf8.DecodeRuneInString(char)
		m[r] = uint8(key)
	}
	return m
}
