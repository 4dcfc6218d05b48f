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

import "fmt"

// Op identifies a decoded CHIP-8 operation.
type Op uint8

// Every operation the interpreter knows about. OpUnknown is what Decode
// returns for bit patterns that aren't part of the instruction set.
const (
	OpUnknown Op = iota
	OpSys        // 0NNN
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1NNN
	OpCall       // 2NNN
	OpSeByte     // 3XKK
	OpSneByte    // 4XKK
	OpSeReg      // 5XY_
	OpLdByte     // 6XKK
	OpAddByte    // 7XKK
	OpLdReg      // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpSubn       // 8XY7
	OpShl        // 8XYE
	OpSneReg     // 9XY_
	OpLdI        // ANNN
	OpJpV0       // BNNN
	OpRnd        // CXKK
	OpDrw        // DXYN
	OpSkp        // EX9E
	OpSknp       // EXA1
	OpLdVxDT     // FX07
	OpLdVxK      // FX0A
	OpLdDTVx     // FX15
	OpLdSTVx     // FX18
	OpAddI       // FX1E
	OpLdF        // FX29
	OpLdB        // FX33
	OpLdIVx      // FX55
	OpLdVxI      // FX65

	opCount
)

var opNames = [opCount]string{
	OpUnknown: "???",
	OpSys:     "SYS",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeByte:  "SE",
	OpSneByte: "SNE",
	OpSeReg:   "SE",
	OpLdByte:  "LD",
	OpAddByte: "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDT:  "LD",
	OpLdVxK:   "LD",
	OpLdDTVx:  "LD",
	OpLdSTVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpLdIVx:   "LD",
	OpLdVxI:   "LD",
}

// String returns the mnemonic of the operation.
func (o Op) String() string {
	if o >= opCount {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
	return opNames[o]
}

// -----------------------------------------------------------------------------

// Instruction is a decoded opcode. All operand fields are always filled in,
// whether or not the operation uses them.
type Instruction struct {
	Op     Op
	Opcode uint16
	// NNN is the 12-bit address literal.
	NNN uint16
	// KK is the low byte, used as an immediate.
	KK uint8
	// X and Y are register indices, N is the low nibble.
	X, Y, N uint8
}

// Decode splits a raw opcode into its operands and resolves which operation
// it encodes.
func Decode(opcode uint16) Instruction {
	ins := Instruction{
		Opcode: opcode,
		NNN:    opcode & 0x0FFF,
		KK:     uint8(opcode),
		X:      uint8(opcode>>8) & 0x0F,
		Y:      uint8(opcode>>4) & 0x0F,
		N:      uint8(opcode) & 0x0F,
	}

	switch opcode >> 12 {
	case 0x0:
		switch ins.KK {
		case 0xE0:
			ins.Op = OpCls
		case 0xEE:
			ins.Op = OpRet
		default:
			ins.Op = OpSys
		}
	case 0x1:
		ins.Op = OpJp
	case 0x2:
		ins.Op = OpCall
	case 0x3:
		ins.Op = OpSeByte
	case 0x4:
		ins.Op = OpSneByte
	case 0x5:
		ins.Op = OpSeReg
	case 0x6:
		ins.Op = OpLdByte
	case 0x7:
		ins.Op = OpAddByte
	case 0x8:
		switch ins.N {
		case 0x0:
			ins.Op = OpLdReg
		case 0x1:
			ins.Op = OpOr
		case 0x2:
			ins.Op = OpAnd
		case 0x3:
			ins.Op = OpXor
		case 0x4:
			ins.Op = OpAddReg
		case 0x5:
			ins.Op = OpSub
		case 0x6:
			ins.Op = OpShr
		case 0x7:
			ins.Op = OpSubn
		case 0xE:
			ins.Op = OpShl
		}
	case 0x9:
		ins.Op = OpSneReg
	case 0xA:
		ins.Op = OpLdI
	case 0xB:
		ins.Op = OpJpV0
	case 0xC:
		ins.Op = OpRnd
	case 0xD:
		ins.Op = OpDrw
	case 0xE:
		switch ins.KK {
		case 0x9E:
			ins.Op = OpSkp
		case 0xA1:
			ins.Op = OpSknp
		}
	case 0xF:
		switch ins.KK {
		case 0x07:
			ins.Op = OpLdVxDT
		case 0x0A:
			ins.Op = OpLdVxK
		case 0x15:
			ins.Op = OpLdDTVx
		case 0x18:
			ins.Op = OpLdSTVx
		case 0x1E:
			ins.Op = OpAddI
		case 0x29:
			ins.Op = OpLdF
		case 0x33:
			ins.Op = OpLdB
		case 0x55:
			ins.Op = OpLdIVx
		case 0x65:
			ins.Op = OpLdVxI
		}
	}

	return ins
}

// Known reports whether the instruction decoded to a real operation.
func (i Instruction) Known() bool { return i.Op != OpUnknown }

// Operands returns the pseudo-asm operand list of the instruction.
func (i Instruction) Operands() string {
	switch i.Op {
	case OpSys, OpJp, OpCall:
		return fmt.Sprintf("%03X", i.NNN)
	case OpSeByte, OpSneByte, OpLdByte, OpAddByte, OpRnd:
		return fmt.Sprintf("V%1X,%02X", i.X, i.KK)
	case OpSeReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr,
		OpSubn, OpShl, OpSneReg:
		return fmt.Sprintf("V%1X,V%1X", i.X, i.Y)
	case OpLdI:
		return fmt.Sprintf("I,%03X", i.NNN)
	case OpJpV0:
		return fmt.Sprintf("V0,%03X", i.NNN)
	case OpDrw:
		return fmt.Sprintf("V%1X,V%1X,%1X", i.X, i.Y, i.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("V%1X", i.X)
	case OpLdVxDT:
		return fmt.Sprintf("V%1X,DT", i.X)
	case OpLdVxK:
		return fmt.Sprintf("V%1X,K", i.X)
	case OpLdDTVx:
		return fmt.Sprintf("DT,V%1X", i.X)
	case OpLdSTVx:
		return fmt.Sprintf("ST,V%1X", i.X)
	case OpAddI:
		return fmt.Sprintf("I,V%1X", i.X)
	case OpLdF:
		return fmt.Sprintf("I,CHAR V%1X", i.X)
	case OpLdB:
		return fmt.Sprintf("[I],BCD V%1X", i.X)
	case OpLdIVx:
		return fmt.Sprintf("[I],V%1X", i.X)
	case OpLdVxI:
		return fmt.Sprintf("V%1X,[I]", i.X)
	}
	return ""
}

// String returns a pseudo-asm representation of the instruction.
func (i Instruction) String() string {
	if i.Op == OpUnknown {
		return fmt.Sprintf("DW %04X", i.Opcode)
	}
	if ops := i.Operands(); ops != "" {
		return i.Op.String() + " " + ops
	}
	return i.Op.String()
}
