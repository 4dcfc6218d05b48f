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

package hachi

import (
	"fmt"

	"github.com/pkg/errors"
)

// An OutOfMemoryErr is returned upon attempting to load a program that
// exceeds the memory's capacity.
type OutOfMemoryErr struct {
	ProgramSize int64
	Free        int
}

func (e *OutOfMemoryErr) Error() string {
	return fmt.Sprintf("not enough memory (program size: %v, free memory: %v)",
		e.ProgramSize, e.Free)
}

// An UnknownOpcodeErr is returned when the emulator fetches a bit pattern
// that isn't part of the instruction set.
type UnknownOpcodeErr struct {
	Opcode uint16
	// PC is the address the opcode was fetched from.
	PC uint16
}

func (e *UnknownOpcodeErr) Error() string {
	return fmt.Sprintf("unknown opcode %04X at %04X", e.Opcode, e.PC)
}

// A StackOverflowErr is returned when a CALL is executed with a full stack.
type StackOverflowErr struct {
	PC    uint16
	Depth int
}

func (e *StackOverflowErr) Error() string {
	return fmt.Sprintf("stack overflow at %04X (depth %v)", e.PC, e.Depth)
}

// A StackUnderflowErr is returned when a RET is executed with an empty stack.
type StackUnderflowErr struct {
	PC uint16
}

func (e *StackUnderflowErr) Error() string {
	return fmt.Sprintf("stack underflow at %04X", e.PC)
}

// An AccessErr is returned when the program tries to read or write past the
// end of memory, either through I or by running off the end of it.
type AccessErr struct {
	Address int
	PC      uint16
}

func (e *AccessErr) Error() string {
	return fmt.Sprintf("out of bounds memory access (%04X) at %04X",
		e.Address, e.PC)
}

// IsFatal reports whether err (or anything it wraps) is an execution error
// the emulator can't continue from.
func IsFatal(err error) bool {
	var (
		unknown   *UnknownOpcodeErr
		overflow  *StackOverflowErr
		underflow *StackUnderflowErr
		access    *AccessErr
	)
	return errors.As(err, &unknown) || errors.As(err, &overflow) ||
		errors.As(err, &underflow) || errors.As(err, &access)
}
