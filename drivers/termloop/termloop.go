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

// Package termloop implements a host driver for termloop.
//
// The driver initializes a termloop context which can then be retrieved from
// GetDriverData("ctx"). The caller must then set up an entity that calls
// Service() on the host loop on every Draw call.
//
// Key mappings can be modified through SetDriverData("key_map", myMap), where
// myMap is a map[termloop.Key]uint8 with termloop keys as keys and CHIP-8 key
// numbers (0x0-0xF) as values, and SetDriverData("char_map", myMap) with a
// map[rune]uint8 for printable keys.
package termloop

import (
	"fmt"
	"reflect"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/Francesco149/go-hachi/v2/host"
	tl "github.com/JoelOtter/termloop"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// position of the screen preview
const screenX, screenY = 20, 6

// DefaultKeyMap maps special keys to hex keys. Tab and F2-F10 cover 0-9,
// the arrows map to 8, 4, 6 and 2, which games typically use for
// directional input.
var DefaultKeyMap = map[tl.Key]uint8{
	tl.KeyTab:        0x0,
	tl.KeyF2:         0x1,
	tl.KeyF3:         0x2,
	tl.KeyF4:         0x3,
	tl.KeyF5:         0x4,
	tl.KeyF6:         0x5,
	tl.KeyF7:         0x6,
	tl.KeyF8:         0x7,
	tl.KeyF9:         0x8,
	tl.KeyF10:        0x9,
	tl.KeyArrowDown:  0x2,
	tl.KeyArrowLeft:  0x4,
	tl.KeyArrowRight: 0x6,
	tl.KeyArrowUp:    0x8,
	tl.KeyEnter:      0x5,
}

// DefaultCharMap lays the hex keypad over the left side of a qwerty
// keyboard:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultCharMap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// A TermloopDriver is a terminal-based driver that uses the termloop library.
// It shows the current emulator state in real time and the screen.
type TermloopDriver struct {
	g                 *tl.Game
	loop              *host.Loop
	memory            *tl.Text
	registers         *tl.Text
	pointersAndTimers *tl.Text
	devices           *tl.Text
	status            *tl.Text
	halted            *tl.Text
	stack             []*tl.Text
	syscalls          [10]*tl.Text
	screen            [][]*tl.Rectangle
	lastScreen        hachi.Screen
	keyMap            map[tl.Key]uint8
	charMap           map[rune]uint8
}

func (d *TermloopDriver) printSyscall(s string) {
	for i := len(d.syscalls) - 1; i > 0; i-- {
		d.syscalls[i].SetText(d.syscalls[i-1].Text())
	}
	d.syscalls[0].SetText(s)
}

// just a wrapper entity to handle input
type inputHandler struct{ d *TermloopDriver }

func (i *inputHandler) Draw(s *tl.Screen) {}

func (i *inputHandler) Tick(ev tl.Event) {
	if ev.Type != tl.EventKey {
		return
	}
	if key, ok := i.d.keyMap[ev.Key]; ok {
		i.d.loop.Keypad().Press(key)
		return
	}
	if key, ok := i.d.charMap[ev.Ch]; ok && ev.Ch != 0 {
		i.d.loop.Keypad().Press(key)
	}
}

func (d *TermloopDriver) OnInit(l *host.Loop) error {
	d.loop = l
	if d.keyMap == nil {
		d.keyMap = DefaultKeyMap
	}
	if d.charMap == nil {
		d.charMap = DefaultCharMap
	}

	// init termloop
	d.g = tl.NewGame()
	d.g.SetEndKey(tl.KeyEsc)
	scr := d.g.Screen()

	scr.AddEntity(&inputHandler{d})
	scr.AddEntity(tl.NewText(0, 0, "Stack   Syscalls",
		tl.ColorDefault, tl.ColorDefault))

	// stack
	d.stack = make([]*tl.Text, hachi.StackSize)
	for i := range d.stack {
		d.stack[i] = tl.NewText(0, i+1, "", tl.ColorDefault, tl.ColorDefault)
		scr.AddEntity(d.stack[i])
	}

	// syscall log
	for i := range d.syscalls {
		d.syscalls[i] = tl.NewText(8, i+1, "", tl.ColorDefault, tl.ColorDefault)
		scr.AddEntity(d.syscalls[i])
	}

	// chip info
	d.memory = tl.NewText(screenX, 0, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.memory)

	d.registers = tl.NewText(screenX, 1, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.registers)

	d.pointersAndTimers = tl.NewText(screenX, 2, "",
		tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.pointersAndTimers)

	d.devices = tl.NewText(screenX, 3, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.devices)

	d.status = tl.NewText(screenX, 4, "ESC quits", tl.ColorDefault,
		tl.ColorDefault)
	scr.AddEntity(d.status)

	d.halted = tl.NewText(screenX, 5, "", tl.ColorRed, tl.ColorDefault)
	scr.AddEntity(d.halted)

	// screen preview, pixels are added to the screen when they turn on
	d.screen = make([][]*tl.Rectangle, hachi.ScreenWidth)
	color := tl.ColorWhite // foreground

	for i := range d.screen {
		d.screen[i] = make([]*tl.Rectangle, hachi.ScreenHeight)

		for j := range d.screen[i] {
			d.screen[i][j] = tl.NewRectangle(
				screenX+i, screenY+j,
				1, 1, color,
			)
		}
	}

	d.lastScreen = hachi.Screen{}
	l.Logger().Debug("TermloopDriver initialized",
		log.Int("keys", len(d.keyMap)+len(d.charMap)))
	return nil
}

func (d *TermloopDriver) OnUpdate(l *host.Loop) {
	c := l.Chip8()

	// update chip info
	d.memory.SetText(fmt.Sprintf("Memory: %v bytes, Cycles: %v",
		len(c.Memory), l.Cycles()))
	d.registers.SetText(fmt.Sprintf("Registers: % 02X", c.V))
	d.pointersAndTimers.SetText(
		fmt.Sprintf("I: %04X SP: %v, PC: %04X, DT: %02X, ST: %02X",
			c.I, c.SP, c.PC, c.DT, c.ST))

	waiting := ""
	if c.Waiting() {
		waiting = " (waiting for key)"
	}
	d.devices.SetText(fmt.Sprintf("Keyboard: %016b, Screen: %v*%v%s",
		c.Keyboard, hachi.ScreenWidth, hachi.ScreenHeight, waiting))

	// update stack
	for i := range d.stack {
		if i < c.SP {
			d.stack[i].SetText(fmt.Sprintf("%04X", c.Stack[i]))
		} else {
			d.stack[i].SetText("")
		}
	}
}

func (d *TermloopDriver) UpdateScreen(c *hachi.Chip8) {
	d.printSyscall("DRW")

	scr := d.g.Screen()
	for x := 0; x < hachi.ScreenWidth; x++ {
		for y := 0; y < hachi.ScreenHeight; y++ {
			was, is := d.lastScreen.Pixel(x, y), c.Pixel(x, y)
			switch {
			case is && !was:
				// this pixel was activated
				scr.AddEntity(d.screen[x][y])
			case was && !is:
				// this pixel was deactivated
				scr.RemoveEntity(d.screen[x][y])
			}
		}
	}

	d.lastScreen = c.Screen
}

func (d *TermloopDriver) Beep() { d.printSyscall("BEEP") }

func (d *TermloopDriver) OnHalt(err error) {
	d.printSyscall("HALT")
	d.halted.SetText(fmt.Sprintf("halted: %v", err))
}

func (d *TermloopDriver) GetData(key string) interface{} {
	if key == "ctx" {
		return d.g
	}
	return nil
}

func (d *TermloopDriver) SetData(key string, value interface{}) error {
	switch key {
	case "key_map":
		newMap, ok := value.(map[tl.Key]uint8)
		if !ok {
			return errors.Errorf("invalid type %s for key_map", reflect.TypeOf(value))
		}
		d.keyMap = newMap
	case "char_map":
		newMap, ok := value.(map[rune]uint8)
		if !ok {
			return errors.Errorf("invalid type %s for char_map", reflect.TypeOf(value))
		}
		d.charMap = newMap
	default:
		return errors.Errorf("unknown data key '%s'", key)
	}
	return nil
}

// -----------------------------------------------------------------------------

func init() {
	err := host.RegisterDriver("termloop", &TermloopDriver{})
	if err != nil {
		panic(err)
	}
}
