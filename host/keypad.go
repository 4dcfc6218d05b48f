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

// Keypad tracks the hex keys as seen by the host.
//
// Terminals only report key presses, never releases, so every press holds
// its key down for a number of timer ticks. Repeated presses from key
// auto-repeat keep refreshing the countdown.
type Keypad struct {
	// HoldTicks is how many Decay calls a press lasts.
	HoldTicks int

	hold [16]int
}

// NewKeypad returns a keypad whose presses last holdTicks timer ticks.
func NewKeypad(holdTicks int) *Keypad {
	if holdTicks < 1 {
		holdTicks = 1
	}
	return &Keypad{HoldTicks: holdTicks}
}

// Press marks the key as held. Only the low nibble of key is used.
func (k *Keypad) Press(key uint8) {
	k.hold[key&0x0F] = k.HoldTicks
}

// Release lets go of the key immediately.
func (k *Keypad) Release(key uint8) {
	k.hold[key&0x0F] = 0
}

// Decay counts every held key down by one tick.
func (k *Keypad) Decay() {
	for i := range k.hold {
		if k.hold[i] > 0 {
			k.hold[i]--
		}
	}
}

// Pressed returns whether the key is currently held.
func (k *Keypad) Pressed(key uint8) bool {
	return k.hold[key&0x0F] > 0
}

// State returns the held state of all 16 keys.
func (k *Keypad) State() (keys [16]bool) {
	for i, t := range k.hold {
		keys[i] = t > 0
	}
	return
}
