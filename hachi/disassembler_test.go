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
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		opcode uint16
		op     Op
		text   string
	}{
		{0x00E0, OpCls, "CLS"},
		{0x00EE, OpRet, "RET"},
		{0x0123, OpSys, "SYS 123"},
		{0x1ABC, OpJp, "JP ABC"},
		{0x2ABC, OpCall, "CALL ABC"},
		{0x3A12, OpSeByte, "SE VA,12"},
		{0x4A12, OpSneByte, "SNE VA,12"},
		{0x5AB0, OpSeReg, "SE VA,VB"},
		{0x5AB3, OpSeReg, "SE VA,VB"},
		{0x6A12, OpLdByte, "LD VA,12"},
		{0x7A12, OpAddByte, "ADD VA,12"},
		{0x8AB0, OpLdReg, "LD VA,VB"},
		{0x8AB1, OpOr, "OR VA,VB"},
		{0x8AB2, OpAnd, "AND VA,VB"},
		{0x8AB3, OpXor, "XOR VA,VB"},
		{0x8AB4, OpAddReg, "ADD VA,VB"},
		{0x8AB5, OpSub, "SUB VA,VB"},
		{0x8AB6, OpShr, "SHR VA,VB"},
		{0x8AB7, OpSubn, "SUBN VA,VB"},
		{0x8ABE, OpShl, "SHL VA,VB"},
		{0x8AB8, OpUnknown, "DW 8AB8"},
		{0x9AB0, OpSneReg, "SNE VA,VB"},
		{0xA123, OpLdI, "LD I,123"},
		{0xB123, OpJpV0, "JP V0,123"},
		{0xCA0F, OpRnd, "RND VA,0F"},
		{0xDAB5, OpDrw, "DRW VA,VB,5"},
		{0xEA9E, OpSkp, "SKP VA"},
		{0xEAA1, OpSknp, "SKNP VA"},
		{0xEA00, OpUnknown, "DW EA00"},
		{0xFA07, OpLdVxDT, "LD VA,DT"},
		{0xFA0A, OpLdVxK, "LD VA,K"},
		{0xFA15, OpLdDTVx, "LD DT,VA"},
		{0xFA18, OpLdSTVx, "LD ST,VA"},
		{0xFA1E, OpAddI, "ADD I,VA"},
		{0xFA29, OpLdF, "LD I,CHAR VA"},
		{0xFA33, OpLdB, "LD [I],BCD VA"},
		{0xFA55, OpLdIVx, "LD [I],VA"},
		{0xFA65, OpLdVxI, "LD VA,[I]"},
		{0xFFFF, OpUnknown, "DW FFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ins := Decode(tt.opcode)
			assert.Equal(t, tt.op, ins.Op)
			assert.Equal(t, tt.opcode, ins.Opcode)
			assert.Equal(t, tt.text, ins.String())
			assert.Equal(t, tt.op != OpUnknown, ins.Known())
		})
	}
}

func TestDecodeOperands(t *testing.T) {
	ins := Decode(0xD12F)
	assert.Equal(t, uint16(0x12F), ins.NNN)
	assert.Equal(t, uint8(0x2F), ins.KK)
	assert.Equal(t, uint8(0x1), ins.X)
	assert.Equal(t, uint8(0x2), ins.Y)
	assert.Equal(t, uint8(0xF), ins.N)
}

func TestMnemonic(t *testing.T) {
	tests := []struct {
		opcode uint16
		name   string
	}{
		{0x00E0, chip8.ClsName},
		{0x00EE, chip8.RetName},
		{0x1ABC, chip8.JpName},
		{0x2ABC, chip8.CallName},
		{0x3A12, chip8.SeName},
		{0x4A12, chip8.SneName},
		{0x6A12, chip8.LdName},
		{0x7A12, chip8.AddName},
		{0x8AB1, chip8.OrName},
		{0x8AB2, chip8.AndName},
		{0x8AB3, chip8.XorName},
		{0x8AB5, chip8.SubName},
		{0x8AB6, chip8.ShrName},
		{0x8AB7, chip8.SubnName},
		{0x8ABE, chip8.ShlName},
		{0xCA0F, chip8.RndName},
		{0xDAB5, chip8.DrwName},
		{0xEA9E, chip8.SkpName},
		{0xEAA1, chip8.SknpName},
	}

	for _, tt := range tests {
		ins := Decode(tt.opcode)
		assert.Equal(t, strings.ToUpper(tt.name), Mnemonic(ins))
	}
}

func TestDisassembleSimple(t *testing.T) {
	program := []byte{0x6A, 0x12, 0x00, 0xE0, 0x48, 0x49, 0xFF, 0xFF}

	lines, err := DisassembleSimple(program, ProgramStart)
	assert.NoError(t, err)
	assert.Len(t, lines, 4)

	assert.Equal(t, uint16(0x200), lines[0].Address)
	assert.Equal(t, strings.ToUpper(chip8.LdName)+" VA,12", lines[0].String())
	assert.Equal(t, descriptions[OpLdByte], lines[0].Description())

	assert.Equal(t, uint16(0x202), lines[1].Address)
	assert.Equal(t, strings.ToUpper(chip8.ClsName), lines[1].String())

	// "HI"
	assert.Equal(t, "HI", lines[2].ASCII())
	assert.Equal(t, "", lines[1].ASCII())

	assert.Equal(t, "DB FF FF", lines[3].String())
	assert.Equal(t, descriptions[OpUnknown], lines[3].Description())
}

func TestDisassembleSimpleOdd(t *testing.T) {
	_, err := DisassembleSimple([]byte{0x00, 0xE0, 0x12}, ProgramStart)
	assert.Error(t, err)
}

func TestOpDescription(t *testing.T) {
	for op := OpUnknown; op < opCount; op++ {
		assert.NotEmpty(t, op.Description())
		assert.NotEmpty(t, op.String())
	}
	assert.Equal(t, descriptions[OpUnknown], Op(200).Description())
}
