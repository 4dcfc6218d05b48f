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

// Package host drives a hachi emulator: it steps the CPU and counts the
// timers down at their own rates, feeds keypad state in and hands frames and
// sound events to a Driver.
//
// Everything runs on the goroutine that calls Service or Run. The only thing
// that may be called from elsewhere is Stop.
package host

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// MaxRateHz bounds ClockHz and TimerHz so their periods stay well above the
// resolution of time.Duration.
const MaxRateHz = 1000000

// Options holds the timing parameters of a Loop.
type Options struct {
	// ClockHz is the amount of instructions executed per second.
	ClockHz int
	// TimerHz is the rate the delay and sound timers count down at.
	TimerHz int
	// HoldTicks is how many timer ticks a key press lasts.
	HoldTicks int
	// MaxCycles stops the loop after that many instructions. 0 means no
	// limit.
	MaxCycles uint64
	// MaxLag is how far behind the loop may fall before it gives up on
	// catching up and resynchronizes with the clock.
	MaxLag time.Duration
	// Logger is used for loop events. Errors only when nil.
	Logger *log.Logger
}

// Validate returns an error when the options aren't usable.
func (o *Options) Validate() error {
	if o.ClockHz <= 0 || o.ClockHz > MaxRateHz {
		return errors.Errorf("clock must be in 1..%v, got %v", MaxRateHz, o.ClockHz)
	}
	if o.TimerHz <= 0 || o.TimerHz > MaxRateHz {
		return errors.Errorf("timer rate must be in 1..%v, got %v",
			MaxRateHz, o.TimerHz)
	}
	if o.HoldTicks < 1 {
		return errors.Errorf("key hold must be >= 1 tick, got %v", o.HoldTicks)
	}
	if o.MaxLag < 0 {
		return errors.Errorf("max lag must be >= 0, got %v", o.MaxLag)
	}
	return nil
}

// The default options: 600 instructions per second, 60hz timers and key
// presses that last 100ms.
var DefaultOptions = &Options{
	ClockHz:   600,
	TimerHz:   60,
	HoldTicks: 6,
	MaxLag:    250 * time.Millisecond,
}

// -----------------------------------------------------------------------------

// Loop owns the cadence of an emulator instance.
type Loop struct {
	c          *hachi.Chip8
	driver     Driver
	driverName string
	keypad     *Keypad
	logger     *log.Logger

	cpuInterval   time.Duration
	timerInterval time.Duration
	maxCycles     uint64
	maxLag        time.Duration

	lastStep, lastTimer time.Time
	cycles              uint64

	initialized bool
	stop        atomic.Bool
	err         error
}

// NewLoop creates a loop for c that talks to the driver registered as
// driver. If o is nil, DefaultOptions will be used.
func NewLoop(c *hachi.Chip8, driver string, o *Options) (*Loop, error) {
	if c == nil {
		return nil, errors.New("emulator is nil")
	}
	if o == nil {
		o = DefaultOptions
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	drv := LookupDriver(driver)
	if drv == nil {
		return nil, errors.Errorf("driver %s not found", driver)
	}

	logger := o.Logger
	if logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		logger = log.NewWithConfig(cfg)
	}

	return &Loop{
		c:             c,
		driver:        drv,
		driverName:    driver,
		keypad:        NewKeypad(o.HoldTicks),
		logger:        logger,
		cpuInterval:   time.Second / time.Duration(o.ClockHz),
		timerInterval: time.Second / time.Duration(o.TimerHz),
		maxCycles:     o.MaxCycles,
		maxLag:        o.MaxLag,
	}, nil
}

// Chip8 returns the emulator driven by the loop.
func (l *Loop) Chip8() *hachi.Chip8 { return l.c }

// Keypad returns the keypad drivers press keys on.
func (l *Loop) Keypad() *Keypad { return l.keypad }

// Logger returns the loop's logger.
func (l *Loop) Logger() *log.Logger { return l.logger }

// Driver returns the name of the driver in use.
func (l *Loop) Driver() string { return l.driverName }

// GetDriverData gets custom data from the driver.
func (l *Loop) GetDriverData(key string) interface{} {
	return l.driver.GetData(key)
}

// SetDriverData sets custom data on the driver.
func (l *Loop) SetDriverData(key string, value interface{}) error {
	return l.driver.SetData(key, value)
}

// Cycles returns the amount of instructions executed so far.
func (l *Loop) Cycles() uint64 { return l.cycles }

// Stop makes the loop return before executing anything else. It is safe to
// call from any goroutine.
func (l *Loop) Stop() { l.stop.Store(true) }

// Stopped reports whether the loop was stopped, ran out of cycles or halted.
func (l *Loop) Stopped() bool { return l.stop.Load() }

// Err returns the error the emulator halted on, if any.
func (l *Loop) Err() error { return l.err }

// Init initializes the driver. It is called by Run, callers using Service
// directly call it once beforehand.
func (l *Loop) Init() error {
	if l.initialized {
		return nil
	}
	if err := l.driver.OnInit(l); err != nil {
		return errors.Wrapf(err, "initializing driver %s", l.driverName)
	}
	l.initialized = true
	l.logger.Debug("Host loop initialized",
		log.String("driver", l.driverName),
		log.String("cpu_interval", l.cpuInterval.String()),
		log.String("timer_interval", l.timerInterval.String()))
	return nil
}

// Service runs every timer tick and instruction that became due by now, in
// the order they fell due, then hands the screen to the driver if it
// changed. Returns the error the emulator halted on, if any.
func (l *Loop) Service(now time.Time) error {
	if l.err != nil {
		return l.err
	}
	if l.Stopped() {
		return nil
	}

	if l.lastStep.IsZero() {
		l.lastStep, l.lastTimer = now, now
	}

	l.driver.OnUpdate(l)
	l.resync(now)

	for !l.Stopped() {
		nextTimer := l.lastTimer.Add(l.timerInterval)
		nextStep := l.lastStep.Add(l.cpuInterval)
		timerDue := !nextTimer.After(now)
		stepDue := !nextStep.After(now)

		if !timerDue && !stepDue {
			break
		}

		if timerDue && (!stepDue || nextTimer.Before(nextStep)) {
			l.lastTimer = nextTimer
			l.tick()
			continue
		}

		l.lastStep = nextStep
		if err := l.step(); err != nil {
			return err
		}
	}

	if l.c.DrawFlag() {
		l.driver.UpdateScreen(l.c)
		l.c.ClearDrawFlag()
	}
	return nil
}

// Run services the loop until it is stopped, runs out of cycles, the
// emulator halts or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Init(); err != nil {
		return err
	}

	interval := l.cpuInterval
	if l.timerInterval < interval {
		interval = l.timerInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !l.Stopped() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := l.Service(now); err != nil {
				return err
			}
		}
	}

	return l.err
}

// -----------------------------------------------------------------------------

// resync drops the time the loop is behind by when it exceeds maxLag, so a
// stall doesn't turn into a burst of instructions.
func (l *Loop) resync(now time.Time) {
	if l.maxLag == 0 {
		return
	}
	if lag := now.Sub(l.lastStep); lag > l.maxLag {
		l.logger.Debug("CPU fell behind, resyncing",
			log.String("lag", lag.String()))
		l.lastStep = now.Add(-l.cpuInterval)
	}
	if now.Sub(l.lastTimer) > l.maxLag {
		l.lastTimer = now.Add(-l.timerInterval)
	}
}

func (l *Loop) tick() {
	l.keypad.Decay()
	if l.c.TickTimers() {
		l.driver.Beep()
	}
}

func (l *Loop) step() error {
	if l.maxCycles > 0 && l.cycles >= l.maxCycles {
		l.logger.Info("Cycle limit reached", log.Int("cycles", int(l.cycles)))
		l.Stop()
		return nil
	}

	l.c.SetKeys(l.keypad.State())
	if err := l.c.Step(); err != nil {
		return l.halt(err)
	}
	l.cycles++
	return nil
}

func (l *Loop) halt(err error) error {
	l.err = errors.Wrapf(err, "emulator halted after %d cycles", l.cycles)
	l.Stop()
	l.logger.Debug("Emulator halted", log.Err(err), log.String("state", l.c.String()))
	l.driver.OnHalt(err)
	return l.err
}
