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

package host

import (
	"context"
	"testing"
	"time"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDriver struct {
	inits, updates, frames, beeps int
	halted                        error
	initErr                       error
	data                          map[string]interface{}
}

func (d *recordingDriver) OnInit(l *Loop) error           { d.inits++; return d.initErr }
func (d *recordingDriver) OnUpdate(l *Loop)               { d.updates++ }
func (d *recordingDriver) UpdateScreen(c *hachi.Chip8)    { d.frames++ }
func (d *recordingDriver) Beep()                          { d.beeps++ }
func (d *recordingDriver) OnHalt(err error)               { d.halted = err }
func (d *recordingDriver) GetData(key string) interface{} { return d.data[key] }
func (d *recordingDriver) SetData(key string, value interface{}) error {
	if d.data == nil {
		d.data = make(map[string]interface{})
	}
	d.data[key] = value
	return nil
}

// registerRecorder registers a fresh recording driver under the test's name.
func registerRecorder(t *testing.T) (*recordingDriver, string) {
	t.Helper()
	d := &recordingDriver{}
	name := "recorder/" + t.Name()
	require.NoError(t, RegisterDriver(name, d))
	t.Cleanup(func() { _ = UnregisterDriver(name) })
	return d, name
}

func newTestLoop(t *testing.T, o Options, program ...uint16) (*Loop, *recordingDriver) {
	t.Helper()
	c, err := hachi.New(&hachi.Settings{
		ShiftUsesVY: true,
		Logger:      log.NewTestLogger(t),
	})
	require.NoError(t, err)

	raw := make([]byte, 0, len(program)*2)
	for _, op := range program {
		raw = append(raw, byte(op>>8), byte(op))
	}
	require.NoError(t, c.LoadRaw(raw))

	d, name := registerRecorder(t)
	if o.Logger == nil {
		o.Logger = log.NewTestLogger(t)
	}
	l, err := NewLoop(c, name, &o)
	require.NoError(t, err)
	require.NoError(t, l.Init())
	return l, d
}

// 2ms instructions, 20ms timer ticks
var exactOptions = Options{ClockHz: 500, TimerHz: 50, HoldTicks: 3}

var t0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewLoopErrors(t *testing.T) {
	c, err := hachi.New(nil)
	require.NoError(t, err)

	_, err = NewLoop(nil, "null", nil)
	assert.Error(t, err)

	_, err = NewLoop(c, "does not exist", nil)
	assert.Error(t, err)

	_, err = NewLoop(c, "null", &Options{ClockHz: 0, TimerHz: 60, HoldTicks: 1})
	assert.Error(t, err)

	_, err = NewLoop(c, "null", &Options{ClockHz: 600, TimerHz: 60, HoldTicks: 0})
	assert.Error(t, err)

	_, err = NewLoop(c, "null", &Options{ClockHz: 600, TimerHz: 60, HoldTicks: 1,
		MaxLag: -time.Second})
	assert.Error(t, err)

	l, err := NewLoop(c, "null", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", l.Driver())
	assert.Same(t, c, l.Chip8())
}

func TestRateBounds(t *testing.T) {
	c, err := hachi.New(nil)
	require.NoError(t, err)

	for _, o := range []Options{
		{ClockHz: 2000000000, TimerHz: 60, HoldTicks: 1},
		{ClockHz: 600, TimerHz: 2000000000, HoldTicks: 1},
		{ClockHz: MaxRateHz + 1, TimerHz: 60, HoldTicks: 1},
	} {
		_, err = NewLoop(c, "null", &o)
		assert.Error(t, err, "%+v", o)
	}

	// the fastest accepted rates still advance by elapsed time only
	l, _ := newTestLoop(t, Options{ClockHz: MaxRateHz, TimerHz: MaxRateHz,
		HoldTicks: 1}, 0x1200)
	require.NoError(t, l.Service(t0))
	require.NoError(t, l.Service(t0.Add(time.Millisecond)))
	assert.Equal(t, uint64(1000), l.Cycles())
}

func TestServiceRunsDueWork(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x1200)
	l.Chip8().SetDelayTimer(200)

	// the first call only starts the clock
	require.NoError(t, l.Service(t0))
	assert.Equal(t, uint64(0), l.Cycles())

	require.NoError(t, l.Service(t0.Add(time.Second)))
	assert.Equal(t, uint64(500), l.Cycles())
	assert.Equal(t, uint8(150), l.Chip8().DelayTimer())
	assert.Equal(t, 2, d.updates)
	assert.Equal(t, 1, d.inits)

	// nothing new is due
	require.NoError(t, l.Service(t0.Add(time.Second+time.Millisecond)))
	assert.Equal(t, uint64(500), l.Cycles())
}

func TestCadencesAreIndependent(t *testing.T) {
	for _, clock := range []int{100, 500, 1000} {
		o := exactOptions
		o.ClockHz = clock
		l, _ := newTestLoop(t, o, 0x1200)
		l.Chip8().SetDelayTimer(200)

		require.NoError(t, l.Service(t0))
		require.NoError(t, l.Service(t0.Add(time.Second)))
		assert.Equal(t, uint64(clock), l.Cycles(), "clock %d", clock)
		assert.Equal(t, uint8(150), l.Chip8().DelayTimer(), "clock %d", clock)
		require.NoError(t, UnregisterDriver("recorder/"+t.Name()))
	}
}

func TestMaxCycles(t *testing.T) {
	o := exactOptions
	o.MaxCycles = 10
	l, _ := newTestLoop(t, o, 0x1200)

	require.NoError(t, l.Service(t0))
	require.NoError(t, l.Service(t0.Add(time.Second)))
	assert.Equal(t, uint64(10), l.Cycles())
	assert.True(t, l.Stopped())
	assert.NoError(t, l.Err())
}

func TestRunStopsAtMaxCycles(t *testing.T) {
	o := Options{ClockHz: 1000, TimerHz: 60, HoldTicks: 1, MaxCycles: 5}
	l, _ := newTestLoop(t, o, 0x1200)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, uint64(5), l.Cycles())
}

func TestRunCancelled(t *testing.T) {
	l, _ := newTestLoop(t, exactOptions, 0x1200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestHalt(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x6001, 0x00EE)

	require.NoError(t, l.Service(t0))
	err := l.Service(t0.Add(time.Second))
	require.Error(t, err)

	var underflow *hachi.StackUnderflowErr
	assert.True(t, errors.As(err, &underflow))
	assert.True(t, hachi.IsFatal(err))
	assert.True(t, l.Stopped())
	assert.Equal(t, err, l.Err())
	assert.Equal(t, uint64(1), l.Cycles())
	assert.Equal(t, uint8(1), l.Chip8().V[0])

	require.Error(t, d.halted)
	assert.True(t, errors.As(d.halted, &underflow))

	// halted for good
	assert.Equal(t, err, l.Service(t0.Add(2*time.Second)))
	assert.Equal(t, uint64(1), l.Cycles())
}

func TestBeepOnSoundTimerZero(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x1200)
	l.Chip8().SetSoundTimer(3)

	require.NoError(t, l.Service(t0))
	require.NoError(t, l.Service(t0.Add(40*time.Millisecond)))
	assert.Equal(t, 0, d.beeps)

	require.NoError(t, l.Service(t0.Add(time.Second)))
	assert.Equal(t, 1, d.beeps)
}

func TestScreenUpdate(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x00E0, 0x1202)

	require.NoError(t, l.Service(t0))
	require.NoError(t, l.Service(t0.Add(time.Second)))
	assert.Equal(t, 1, d.frames)
	assert.False(t, l.Chip8().DrawFlag())

	require.NoError(t, l.Service(t0.Add(2*time.Second)))
	assert.Equal(t, 1, d.frames)
}

func TestKeypadReachesEmulator(t *testing.T) {
	l, _ := newTestLoop(t, exactOptions, 0xF00A, 0x1202)

	require.NoError(t, l.Service(t0))
	require.NoError(t, l.Service(t0.Add(2*time.Millisecond)))
	assert.True(t, l.Chip8().Waiting())
	assert.Equal(t, uint16(0x200), l.Chip8().PC)

	l.Keypad().Press(0x5)
	require.NoError(t, l.Service(t0.Add(4*time.Millisecond)))
	assert.False(t, l.Chip8().Waiting())
	assert.Equal(t, uint8(0x5), l.Chip8().V[0])
	assert.Equal(t, uint16(0x202), l.Chip8().PC)

	// the press wears off after HoldTicks timer ticks
	require.NoError(t, l.Service(t0.Add(time.Second)))
	assert.False(t, l.Chip8().KeyPressed(0x5))
}

func TestResync(t *testing.T) {
	o := exactOptions
	o.MaxLag = 100 * time.Millisecond
	l, _ := newTestLoop(t, o, 0x1200)
	l.Chip8().SetDelayTimer(200)

	require.NoError(t, l.Service(t0))
	require.NoError(t, l.Service(t0.Add(10*time.Second)))
	assert.Equal(t, uint64(1), l.Cycles())
	assert.Equal(t, uint8(199), l.Chip8().DelayTimer())
}

func TestStop(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x1200)

	require.NoError(t, l.Service(t0))
	l.Stop()
	require.NoError(t, l.Service(t0.Add(time.Second)))
	assert.Equal(t, uint64(0), l.Cycles())
	assert.Equal(t, 1, d.updates)
	assert.NoError(t, l.Run(context.Background()))
}

func TestInitOnce(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x1200)
	require.NoError(t, l.Init())
	assert.Equal(t, 1, d.inits)
}

func TestInitError(t *testing.T) {
	c, err := hachi.New(nil)
	require.NoError(t, err)

	d, name := registerRecorder(t)
	d.initErr = errors.New("no terminal")

	l, err := NewLoop(c, name, nil)
	require.NoError(t, err)
	err = l.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no terminal")
}

func TestDriverData(t *testing.T) {
	l, d := newTestLoop(t, exactOptions, 0x1200)

	require.NoError(t, l.SetDriverData("answer", 42))
	assert.Equal(t, 42, d.data["answer"])
	assert.Equal(t, 42, l.GetDriverData("answer"))
}

func TestRegistry(t *testing.T) {
	_, name := registerRecorder(t)

	assert.Error(t, RegisterDriver(name, NullDriver{}))
	assert.NotNil(t, LookupDriver(name))
	assert.Nil(t, LookupDriver("recorder/missing"))
	assert.Error(t, UnregisterDriver("recorder/missing"))

	assert.NotNil(t, LookupDriver("null"))
	assert.Error(t, NullDriver{}.SetData("key", 1))
	assert.Nil(t, NullDriver{}.GetData("key"))
}
