package cpu

import "github.com/valerio/go-jeebie/jeebie/bit"

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) getBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) getDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) getHL() uint16 { return bit.Combine(c.h, c.l) }

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

// readImmediate fetches the byte at PC, advancing PC and ticking the bus.
func (c *CPU) readImmediate() uint8 {
	return c.fetch()
}

// readSignedImmediate fetches a signed 8-bit displacement.
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.fetch())
}

// readImmediateWord fetches a little-endian 16-bit immediate.
func (c *CPU) readImmediateWord() uint16 {
	low := c.fetch()
	high := c.fetch()
	return bit.Combine(high, low)
}
