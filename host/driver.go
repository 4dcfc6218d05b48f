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
	"sync"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/pkg/errors"
)

// A Driver is an interface through which the host loop performs platform
// specific calls: rendering, input polling and sound.
// Drivers should be registered by the RegisterDriver function in init().
type Driver interface {
	// Called once before the loop starts stepping the emulator.
	OnInit(l *Loop) error
	// Called on every Service call, should be used for input polling and
	// similar tasks. Pressed keys go to l.Keypad().
	OnUpdate(l *Loop)
	// Called when the emulator has set its draw flag. The flag is cleared
	// once this returns.
	UpdateScreen(c *hachi.Chip8)
	// Called when the sound timer reaches zero.
	Beep()
	// Called once when the emulator stops on an error it can't continue from.
	// The driver should shut down its display and input here.
	OnHalt(err error)
	// Returns custom data that can be retrieved through the loop by
	// calling GetDriverData()
	GetData(key string) interface{}
	// Sets custom data that can be set through the loop by
	// calling SetDriverData()
	SetData(key string, value interface{}) error
}

// -----------------------------------------------------------------------------

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver registers a driver to a name. The driver can then be used
// by passing its name to NewLoop.
func RegisterDriver(name string, drv Driver) error {
	driversMu.Lock()
	defer driversMu.Unlock()

	if drivers[name] != nil {
		return errors.Errorf("driver %s already exists", name)
	}
	drivers[name] = drv
	return nil
}

// UnregisterDriver unloads a previously registered driver.
func UnregisterDriver(name string) error {
	driversMu.Lock()
	defer driversMu.Unlock()

	if drivers[name] == nil {
		return errors.Errorf("driver %s does not exist", name)
	}
	delete(drivers, name)
	return nil
}

// LookupDriver returns the driver registered to name, or nil.
func LookupDriver(name string) Driver {
	driversMu.RLock()
	defer driversMu.RUnlock()
	return drivers[name]
}

// -----------------------------------------------------------------------------

// A NullDriver ignores all calls. It is used for headless runs.
type NullDriver struct{}

func (d NullDriver) OnInit(l *Loop) error           { return nil }
func (d NullDriver) OnUpdate(l *Loop)               {}
func (d NullDriver) UpdateScreen(c *hachi.Chip8)    {}
func (d NullDriver) Beep()                          {}
func (d NullDriver) OnHalt(err error)               {}
func (d NullDriver) GetData(key string) interface{} { return nil }
func (d NullDriver) SetData(key string, value interface{}) error {
	return errors.New("this driver has no settable data")
}

func init() {
	if err := RegisterDriver("null", NullDriver{}); err != nil {
		panic(err)
	}
}
