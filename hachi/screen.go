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

// Screen dimensions in pixels.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

/*
	Screen memory layout:
	                                     x ->
	  00000000 00000000 00000000 00000000 ...
	  00000000 01000000 00000000 00000000
	y 00000000 00000000 00000000 00000000
	| 00000000 00000000 00000000 00000000
	v ...

	each byte packs 8 horizontal pixels, most significant bit on the left.
	the 1 above is at 9,1: byte y*ScreenWidth/8 + x/8, mask 0x80 >> x%8.
*/

// Screen is the monochrome framebuffer.
type Screen [ScreenWidth * ScreenHeight / 8]byte

func screenIndex(x, y int) (index int, mask byte) {
	return y*ScreenWidth/8 + x/8, 0x80 >> uint(x%8)
}

// Pixel returns whether the pixel at x,y is on. Coordinates wrap around.
func (s *Screen) Pixel(x, y int) bool {
	x, y = wrap(x, ScreenWidth), wrap(y, ScreenHeight)
	index, mask := screenIndex(x, y)
	return s[index]&mask != 0
}

// flip xors the pixel at x,y and returns whether it was on before.
func (s *Screen) flip(x, y int) (wasOn bool) {
	index, mask := screenIndex(x, y)
	wasOn = s[index]&mask != 0
	s[index] ^= mask
	return
}

func (s *Screen) clear() {
	for i := range s {
		s[i] = 0
	}
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

// -----------------------------------------------------------------------------

// drawSprite xors an n-row sprite read from memory at I onto the screen at
// V[x],V[y]. Pixels that go past an edge wrap around to the other side.
func (c *Chip8) drawSprite(x, y, rows uint8) error {
	end := int(c.I) + int(rows)
	if rows != 0 && end > len(c.Memory) {
		return &AccessErr{Address: end - 1, PC: c.PC - 2}
	}

	c.V[0xF] = 0

	ox, oy := int(c.V[x]), int(c.V[y])

	for row := 0; row < int(rows); row++ {
		sprite := c.Memory[int(c.I)+row]
		py := (oy + row) % ScreenHeight

		for col := 0; col < 8; col++ {
			if sprite&(0x80>>uint(col)) == 0 {
				continue
			}
			if c.Screen.flip((ox+col)%ScreenWidth, py) {
				// collision
				c.V[0xF] = 1
			}
		}
	}

	c.drawFlag = true
	return nil
}
