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

// Package hachi implements various CHIP-8 utilities, including an emulator and
// a disassembler.
//
// The emulator only executes instructions. Timing, timers, input and
// rendering are driven from the outside (see package host): the caller writes
// the keypad state, calls Step at the CPU rate, calls TickTimers at 60hz and
// renders the screen whenever DrawFlag is set.
package hachi

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// Memory layout.
const (
	MemorySize   = 0x1000
	ProgramStart = 0x200
	FontStart    = 0x050
	// FontHeight is the size in bytes of each hex digit glyph.
	FontHeight = 5
	// StackSize is the maximum amount of nested calls.
	StackSize = 16
)

var font = [16 * FontHeight]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// -----------------------------------------------------------------------------

// Settings holds the configuration parameters for a Chip8 instance.
type Settings struct {
	// ShiftUsesVY makes SHR VX,VY and SHL VX,VY shift VY into VX. When false,
	// VX is shifted in place and VY is ignored.
	ShiftUsesVY bool
	// IncrementIndex makes LD [I],VX and LD VX,[I] leave I pointing past the
	// last register copied (I += X+1).
	IncrementIndex bool
	// Trace logs every executed instruction at debug level.
	Trace bool
	// Random is the source for RND VX,NN. A time seeded source is used when
	// nil.
	Random *rand.Rand
	// Logger receives load and trace messages. Errors only when nil.
	Logger *log.Logger
}

// Validate validates the settings.
// Returns an error when the settings aren't valid.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.New("settings are nil")
	}
	return nil
}

// The default settings for Chip8.
var DefaultSettings = &Settings{
	ShiftUsesVY:    true,
	IncrementIndex: false,
}

// -----------------------------------------------------------------------------

// Key flags for the Keyboard bitfield.
const (
	Key0 = 1 << iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Key flags mapped by number.
var KeyFlags = [16]uint16{Key0, Key1, Key2, Key3, Key4, Key5, Key6, Key7,
	Key8, Key9, KeyA, KeyB, KeyC, KeyD, KeyE, KeyF}

// -----------------------------------------------------------------------------

// Chip8 is an implementation of a CHIP-8 emulator. It holds the state of the
// virtual machine.
type Chip8 struct {
	// The memory where programs are loaded and executed.
	// Programs start at 0x200 because the original interpreter occupied
	// those first 512 bytes. The font lives at 0x050.
	Memory [MemorySize]byte
	// V[0x0]~V[0xF] are 8-bit registers. V[0xF] doubles as a carry flag.
	V [16]uint8
	// 16-bit address register. Used for memory operations.
	I uint16
	// The call stack, which holds return addresses.
	Stack [StackSize]uint16
	// The stack pointer. Number of return addresses on the stack.
	SP int
	// Program counter. Holds the address of the next instruction.
	PC uint16
	// Timers. The host counts these down at 60hz when they are non-zero.
	// DT/DelayTimer is intended to be used for timing events in games, while
	// ST/SoundTimer makes a beeping sound as long as its value is non-zero.
	DT uint8
	ST uint8
	// Keyboard is a hex keyboard with 16 keys. 8, 4, 6 and 2 are typically used
	// for directional input.
	// This is a bitfield, see the constants for the flags.
	Keyboard uint16
	// Screen buffer, 64x32 monochrome pixels.
	Screen Screen

	drawFlag bool
	waiting  bool
	settings Settings
	rnd      *rand.Rand
	logger   *log.Logger

	pLdMemory, pLdSetMemory func(c *Chip8, x uint8)
	pShr, pShl              func(c *Chip8, x, y uint8)
}

// -----------------------------------------------------------------------------

// function pointers for the quirk switches

type ldMemoryMap map[bool]func(c *Chip8, x uint8)

var ldMemory = ldMemoryMap{
	false: func(c *Chip8, x uint8) {
		for i := uint8(0); i <= x; i++ {
			c.V[i] = c.Memory[c.I+uint16(i)]
		}
	},
	true: func(c *Chip8, x uint8) {
		for i := uint8(0); i <= x; i++ {
			c.V[i] = c.Memory[c.I+uint16(i)]
		}
		c.I += uint16(x) + 1
	},
}

var ldSetMemory = ldMemoryMap{
	false: func(c *Chip8, x uint8) {
		for i := uint8(0); i <= x; i++ {
			c.Memory[c.I+uint16(i)] = c.V[i]
		}
	},
	true: func(c *Chip8, x uint8) {
		for i := uint8(0); i <= x; i++ {
			c.Memory[c.I+uint16(i)] = c.V[i]
		}
		c.I += uint16(x) + 1
	},
}

type shiftMap map[bool]func(c *Chip8, x, y uint8)

// the flag is written last so that VF as a destination ends up holding it

var shl = shiftMap{
	false: func(c *Chip8, x, y uint8) {
		src := c.V[x]
		c.V[x] = src << 1
		c.V[0xF] = src >> 7 // most significant bit
	},
	true: func(c *Chip8, x, y uint8) {
		src := c.V[y]
		c.V[x] = src << 1
		c.V[0xF] = src >> 7
	},
}

var shr = shiftMap{
	false: func(c *Chip8, x, y uint8) {
		src := c.V[x]
		c.V[x] = src >> 1
		c.V[0xF] = src & 0x01 // least significant bit
	},
	true: func(c *Chip8, x, y uint8) {
		src := c.V[y]
		c.V[x] = src >> 1
		c.V[0xF] = src & 0x01
	},
}

// -----------------------------------------------------------------------------

// New initializes a new instance of Chip8 with the given settings. If settings
// is nil, DefaultSettings will be used.
func New(s *Settings) (c *Chip8, err error) {
	if s == nil {
		s = DefaultSettings
	}

	err = s.Validate()
	if err != nil {
		return
	}

	c = &Chip8{
		settings:     *s,
		rnd:          s.Random,
		logger:       s.Logger,
		pLdMemory:    ldMemory[s.IncrementIndex],
		pLdSetMemory: ldSetMemory[s.IncrementIndex],
		pShr:         shr[s.ShiftUsesVY],
		pShl:         shl[s.ShiftUsesVY],
	}

	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		c.logger = log.NewWithConfig(cfg)
	}

	c.Reset()
	return
}

// Reset puts the machine back in its power-on state. Memory is cleared, so
// the program has to be loaded again.
func (c *Chip8) Reset() {
	c.Memory = [MemorySize]byte{}
	copy(c.Memory[FontStart:], font[:])
	c.V = [16]uint8{}
	c.I = 0
	c.Stack = [StackSize]uint16{}
	c.SP = 0
	c.PC = ProgramStart
	c.DT, c.ST = 0, 0
	c.Keyboard = 0
	c.Screen.clear()
	c.drawFlag = false
	c.waiting = false
}

// Settings returns a copy of the settings the instance was created with.
func (c *Chip8) Settings() Settings { return c.settings }

// String returns formatted information about the instance of the emulator.
func (c *Chip8) String() string {
	return fmt.Sprintf("Chip8{Registers: [% 02X] I: %04X, "+
		"Stack: % 04X, SP: %v, PC: %04X, DT: %02X, ST: %02X, "+
		"Keyboard: %016b}",
		c.V, c.I, c.Stack[:c.SP], c.SP, c.PC, c.DT, c.ST, c.Keyboard)
}

// Load opens a CHIP-8 binary file and loads it into memory.
// Returns the size, in bytes, of the program and an error if any.
func (c *Chip8) Load(path string) (size int64, err error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "reading program")
	}

	size = int64(len(program))
	if err = c.LoadRaw(program); err != nil {
		return size, errors.Wrapf(err, "loading %s", path)
	}

	c.logger.Info("Loaded program", log.String("file", path),
		log.Int("bytes", len(program)))
	return
}

// LoadRaw loads a byte array as a CHIP-8 binary into memory at 0x200.
func (c *Chip8) LoadRaw(program []byte) error {
	free := len(c.Memory) - ProgramStart
	if len(program) > free {
		return &OutOfMemoryErr{ProgramSize: int64(len(program)), Free: free}
	}
	copy(c.Memory[ProgramStart:], program)
	c.logger.Debug("Loaded raw program", log.Int("bytes", len(program)))
	return nil
}

// -----------------------------------------------------------------------------

// DrawFlag reports whether the screen changed since the flag was last
// cleared.
func (c *Chip8) DrawFlag() bool { return c.drawFlag }

// ClearDrawFlag is called by the renderer once it has consumed a frame.
func (c *Chip8) ClearDrawFlag() { c.drawFlag = false }

// Pixel returns whether the pixel at x,y is on.
func (c *Chip8) Pixel(x, y int) bool { return c.Screen.Pixel(x, y) }

// Waiting reports whether the last step is blocked on LD VX,K. The same
// instruction runs again on the next step.
func (c *Chip8) Waiting() bool { return c.waiting }

// SetKeys replaces the state of the whole keypad.
func (c *Chip8) SetKeys(keys [16]bool) {
	c.Keyboard = 0
	for i, pressed := range keys {
		if pressed {
			c.Keyboard |= KeyFlags[i]
		}
	}
}

// SetKey sets the state of a single key. Only the low nibble of key is used.
func (c *Chip8) SetKey(key uint8, pressed bool) {
	if pressed {
		c.Keyboard |= KeyFlags[key&0x0F]
	} else {
		c.Keyboard &^= KeyFlags[key&0x0F]
	}
}

// KeyPressed returns whether the key is held. Only the low nibble of key is
// used.
func (c *Chip8) KeyPressed(key uint8) bool {
	return c.Keyboard&KeyFlags[key&0x0F] != 0
}

func (c *Chip8) DelayTimer() uint8     { return c.DT }
func (c *Chip8) SoundTimer() uint8     { return c.ST }
func (c *Chip8) SetDelayTimer(v uint8) { c.DT = v }
func (c *Chip8) SetSoundTimer(v uint8) { c.ST = v }

// Sounding reports whether the sound timer is running.
func (c *Chip8) Sounding() bool { return c.ST > 0 }

// TickTimers counts both timers down by one. It is meant to be called at
// 60hz. soundStopped is true when the sound timer just reached zero.
func (c *Chip8) TickTimers() (soundStopped bool) {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
		soundStopped = c.ST == 0
	}
	return
}
