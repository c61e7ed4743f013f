package cpu

import "encoding/binary"

// Marshal serializes the full register file and execution-state flags
// for a save state's core_state section.
func (c *CPU) Marshal() []byte {
	buf := make([]byte, 16)
	buf[0], buf[1], buf[2], buf[3] = c.a, c.f, c.b, c.c
	buf[4], buf[5], buf[6], buf[7] = c.d, c.e, c.h, c.l
	binary.LittleEndian.PutUint16(buf[8:10], c.sp)
	binary.LittleEndian.PutUint16(buf[10:12], c.pc)
	buf[12] = flagsByte(c.ime, c.imePending, c.halted, c.stopped, c.haltBug, c.doubleSpeed, c.illegalHalted, c.diDelayPending)
	buf[13] = uint8(c.model)
	buf[14] = c.illegalOp
	buf[15] = 0
	return buf
}

// Unmarshal restores state written by Marshal, tolerant of a shorter
// buffer (fields past the given length keep their current value).
func (c *CPU) Unmarshal(data []byte) {
	if len(data) >= 1 {
		c.a = data[0]
	}
	if len(data) >= 2 {
		c.f = data[1] &^ 0x0F
	}
	if len(data) >= 4 {
		c.b, c.c = data[2], data[3]
	}
	if len(data) >= 6 {
		c.d, c.e = data[4], data[5]
	}
	if len(data) >= 8 {
		c.h, c.l = data[6], data[7]
	}
	if len(data) >= 10 {
		c.sp = binary.LittleEndian.Uint16(data[8:10])
	}
	if len(data) >= 12 {
		c.pc = binary.LittleEndian.Uint16(data[10:12])
	}
	if len(data) >= 13 {
		c.ime, c.imePending, c.halted, c.stopped, c.haltBug, c.doubleSpeed, c.illegalHalted, c.diDelayPending = unpackFlagsByte(data[12])
	}
	if len(data) >= 14 {
		c.model = Model(data[13])
	}
	if len(data) >= 15 {
		c.illegalOp = data[14]
	}
}

func flagsByte(ime, imePending, halted, stopped, haltBug, doubleSpeed, illegalHalted, diDelayPending bool) uint8 {
	var v uint8
	set := func(bit uint, b bool) {
		if b {
			v |= 1 << bit
		}
	}
	set(0, ime)
	set(1, imePending)
	set(2, halted)
	set(3, stopped)
	set(4, haltBug)
	set(5, doubleSpeed)
	set(6, illegalHalted)
	set(7, diDelayPending)
	return v
}

func unpackFlagsByte(v uint8) (ime, imePending, halted, stopped, haltBug, doubleSpeed, illegalHalted, diDelayPending bool) {
	get := func(bit uint) bool { return v&(1<<bit) != 0 }
	return get(0), get(1), get(2), get(3), get(4), get(5), get(6), get(7)
}
