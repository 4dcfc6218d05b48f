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

import "github.com/retroenv/retrogolib/log"

// Step fetches, decodes and executes one instruction. Returns an error if
// the instruction can't be executed, in which case the machine must not be
// stepped again.
func (c *Chip8) Step() error {
	pc := c.PC
	if int(pc)+1 >= len(c.Memory) {
		return &AccessErr{Address: int(pc), PC: pc}
	}

	opcode := uint16(c.Memory[pc])<<8 | uint16(c.Memory[pc+1])
	c.PC += 2
	c.waiting = false

	ins := Decode(opcode)
	if c.settings.Trace {
		c.logger.Debug("Step",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("instruction", ins.String()))
	}

	return c.execute(ins, pc)
}

// execute runs a decoded instruction. pc is the address it was fetched from,
// c.PC already points to the next one.
func (c *Chip8) execute(ins Instruction, pc uint16) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpSys:
		// machine code routines of the original interpreter, ignored

	case OpCls:
		c.Screen.clear()
		c.drawFlag = true

	case OpRet:
		if c.SP == 0 {
			return &StackUnderflowErr{PC: pc}
		}
		c.SP--
		c.PC = c.Stack[c.SP]

	case OpJp:
		c.PC = ins.NNN

	case OpCall:
		if c.SP >= len(c.Stack) {
			return &StackOverflowErr{PC: pc, Depth: c.SP}
		}
		// push return address
		c.Stack[c.SP] = c.PC
		c.SP++
		c.PC = ins.NNN

	case OpSeByte:
		if c.V[x] == ins.KK {
			c.PC += 2
		}

	case OpSneByte:
		if c.V[x] != ins.KK {
			c.PC += 2
		}

	case OpSeReg:
		if c.V[x] == c.V[y] {
			c.PC += 2
		}

	case OpLdByte:
		c.V[x] = ins.KK

	case OpAddByte:
		c.V[x] += ins.KK

	case OpLdReg:
		c.V[x] = c.V[y]

	case OpOr:
		c.V[x] |= c.V[y]

	case OpAnd:
		c.V[x] &= c.V[y]

	case OpXor:
		c.V[x] ^= c.V[y]

	case OpAddReg:
		sum := uint16(c.V[x]) + uint16(c.V[y])
		// only store the 8 least significant bits
		c.V[x] = uint8(sum)
		c.V[0xF] = flag(sum > 0xFF)

	case OpSub:
		noBorrow := c.V[x] >= c.V[y]
		c.V[x] -= c.V[y]
		c.V[0xF] = flag(noBorrow)

	case OpShr:
		c.pShr(c, x, y)

	case OpSubn:
		noBorrow := c.V[y] >= c.V[x]
		c.V[x] = c.V[y] - c.V[x]
		c.V[0xF] = flag(noBorrow)

	case OpShl:
		c.pShl(c, x, y)

	case OpSneReg:
		if c.V[x] != c.V[y] {
			c.PC += 2
		}

	case OpLdI:
		c.I = ins.NNN

	case OpJpV0:
		c.PC = ins.NNN + uint16(c.V[0])

	case OpRnd:
		c.V[x] = uint8(c.rnd.Intn(0x100)) & ins.KK

	case OpDrw:
		return c.drawSprite(x, y, ins.N)

	case OpSkp:
		if c.KeyPressed(c.V[x]) {
			c.PC += 2
		}

	case OpSknp:
		if !c.KeyPressed(c.V[x]) {
			c.PC += 2
		}

	case OpLdVxDT:
		c.V[x] = c.DT

	case OpLdVxK:
		// first pressed key in ascending order, otherwise run this
		// instruction again on the next step
		for key := uint8(0); key < 16; key++ {
			if c.KeyPressed(key) {
				c.V[x] = key
				return nil
			}
		}
		c.PC -= 2
		c.waiting = true

	case OpLdDTVx:
		c.DT = c.V[x]

	case OpLdSTVx:
		c.ST = c.V[x]

	case OpAddI:
		c.I += uint16(c.V[x])

	case OpLdF:
		c.I = FontStart + uint16(c.V[x])*FontHeight

	case OpLdB:
		if err := c.checkIndexed(2, pc); err != nil {
			return err
		}
		value := c.V[x]
		c.Memory[c.I+2] = value % 10 // ones
		value /= 10
		c.Memory[c.I+1] = value % 10 // tens
		c.Memory[c.I] = value / 10   // hundreds

	case OpLdIVx:
		if err := c.checkIndexed(x, pc); err != nil {
			return err
		}
		c.pLdSetMemory(c, x)

	case OpLdVxI:
		if err := c.checkIndexed(x, pc); err != nil {
			return err
		}
		c.pLdMemory(c, x)

	default:
		return &UnknownOpcodeErr{Opcode: ins.Opcode, PC: pc}
	}

	return nil
}

// checkIndexed makes sure I through I+last are valid addresses.
func (c *Chip8) checkIndexed(last uint8, pc uint16) error {
	if end := int(c.I) + int(last); end >= len(c.Memory) {
		return &AccessErr{Address: end, PC: pc}
	}
	return nil
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
