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
	"math/bits"
	"strings"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

var descriptions = [opCount]string{
	OpUnknown: "Unknown / Raw Data",
	OpSys:     "0NNN: Calls RCA 1802 program at address NNN (ignored).",
	OpCls:     "00E0: Clears the screen.",
	OpRet:     "00EE: Returns from a subroutine.",
	OpJp:      "1NNN: Jumps to address NNN.",
	OpCall:    "2NNN: Calls subroutine at NNN.",
	OpSeByte:  "3XNN: Skips the next instruction if VX equals NN.",
	OpSneByte: "4XNN: Skips the next instruction if VX doesn't equal NN.",
	OpSeReg:   "5XY0: Skips the next instruction if VX equals VY.",
	OpLdByte:  "6XNN: Sets VX to NN.",
	OpAddByte: "7XNN: Adds NN to VX.",
	OpLdReg:   "8XY0: Sets VX to the value of VY.",
	OpOr:      "8XY1: Sets VX to VX | VY (bit-wise OR).",
	OpAnd:     "8XY2: Sets VX to VX & VY (bit-wise AND).",
	OpXor:     "8XY3: Sets VX to VX ^ VY (bit-wise XOR).",
	OpAddReg:  "8XY4: VX += VY. VF = 1 when there's a carry, 0 when there isn't.",
	OpSub:     "8XY5: VX -= VY. VF = 0 when there's a borrow, 1 when there isn't.",
	OpShr:     "8XY6: VX = VY >> 1. VF = least significant bit prior to the shift.",
	OpSubn:    "8XY7: VX = VY - VX. VF = 0 when there's a borrow, 1 when there isn't.",
	OpShl:     "8XYE: VX = VY << 1. VF = most significant bit prior to the shift.",
	OpSneReg:  "9XY0: Skips the next instruction if VX doesn't equal VY.",
	OpLdI:     "ANNN: Sets I to the address NNN.",
	OpJpV0:    "BNNN: Jumps to the address NNN plus V0.",
	OpRnd:     "CXNN: Sets VX to a random number (0-FF) & NN (bit-wise AND).",
	OpDrw:     "DXYN: Draws N rows of sprite pointed by I at VX,VY.",
	OpSkp:     "EX9E: Skips the next instruction if the key stored in VX is pressed.",
	OpSknp:    "EXA1: Skips the next instruction if the key stored in VX isn't pressed.",
	OpLdVxDT:  "FX07: Sets VX to the value of the delay timer.",
	OpLdVxK:   "FX0A: A key press is awaited, and then key number is stored in VX.",
	OpLdDTVx:  "FX15: Sets the delay timer to VX.",
	OpLdSTVx:  "FX18: Sets the sound timer to VX.",
	OpAddI:    "FX1E: Adds VX to I.",
	OpLdF:     "FX29: Sets I to the location of the sprite for the character in VX.",
	OpLdB:     "FX33: Store BCD representation of VX in memory at I, I+1, and I+2.",
	OpLdIVx:   "FX55: Stores V0 to VX in memory starting at address I.",
	OpLdVxI:   "FX65: Fills V0 to VX with values from memory starting at address I.",
}

// Description returns a detailed description of what the operation does.
func (o Op) Description() string {
	if o >= opCount {
		return descriptions[OpUnknown]
	}
	return descriptions[o]
}

// Mnemonic looks the opcode up in the retrogolib CHIP-8 instruction table and
// returns the upper case name it uses. Opcodes the table doesn't list fall
// back to the emulator's own name.
func Mnemonic(ins Instruction) string {
	name, best := "", -1
	for _, op := range chip8.Opcodes[int(ins.Opcode>>12)] {
		if op.Instruction == nil || op.Info.Mask&ins.Opcode != op.Info.Value {
			continue
		}
		// the most specific mask wins (00E0 over 0NNN)
		if n := bits.OnesCount16(uint16(op.Info.Mask)); n > best {
			name, best = op.Instruction.Name, n
		}
	}
	if name == "" {
		return ins.Op.String()
	}
	return strings.ToUpper(name)
}

// -----------------------------------------------------------------------------

// A Line is one disassembled word.
type Line struct {
	Address     uint16
	Instruction Instruction
	Data        []byte
}

// String returns a pseudo-asm representation of the line.
func (l Line) String() string {
	ins := l.Instruction
	if !ins.Known() {
		return fmt.Sprintf("DB % 02X", l.Data)
	}
	if ops := ins.Operands(); ops != "" {
		return Mnemonic(ins) + " " + ops
	}
	return Mnemonic(ins)
}

// Description returns a detailed description of what the instruction does.
func (l Line) Description() string { return l.Instruction.Op.Description() }

// ASCII returns the ASCII representation of the raw data for this line.
// Returns an empty string if the data is not printable ascii.
func (l Line) ASCII() (res string) {
	if isPrintableASCII(l.Data) {
		res = string(l.Data)
	}
	return
}

// DisassembleSimple disassembles raw data loaded at base and returns one line
// per 16-bit word. It's fast but it cannot handle odd-aligned opcodes or
// recognize raw data memory regions.
func DisassembleSimple(b []byte, base uint16) (res []Line, err error) {
	if len(b)%2 != 0 {
		err = errors.New("odd-aligned opcodes are not supported")
		return
	}

	res = make([]Line, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		opcode := uint16(b[i])<<8 | uint16(b[i+1])
		res = append(res, Line{
			Address:     base + uint16(i),
			Instruction: Decode(opcode),
			Data:        b[i : i+2],
		})
	}

	return
}

func isPrintableASCII(s []byte) bool {
	for _, c := range s {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}
