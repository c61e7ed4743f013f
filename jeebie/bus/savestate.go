package bus

import "encoding/binary"

// MarshalCore serializes the bus-level globals that belong in the
// core_state section alongside the CPU's own register file: interrupt
// enable/flag registers, the WRAM bank select, double-speed state, and
// CGB palette RAM with its auto-increment indices.
func (b *Bus) MarshalCore() []byte {
	buf := make([]byte, 0, 4+64+64)
	buf = append(buf, b.ie, b.ifReg, b.wramBank)
	buf = append(buf, boolByte(b.doubleSpeed), boolByte(b.speedSwitchReq))
	buf = append(buf, b.bgpIndex, b.objpIndex)
	buf = append(buf, b.bgPalette[:]...)
	buf = append(buf, b.objPalette[:]...)
	return buf
}

// UnmarshalCore restores state written by MarshalCore, tolerant of a
// shorter buffer.
func (b *Bus) UnmarshalCore(data []byte) {
	if len(data) >= 1 {
		b.ie = data[0]
	}
	if len(data) >= 2 {
		b.ifReg = data[1]
	}
	if len(data) >= 3 {
		b.wramBank = data[2]
	}
	if len(data) >= 4 {
		b.doubleSpeed = data[3] != 0
	}
	if len(data) >= 5 {
		b.speedSwitchReq = data[4] != 0
	}
	if len(data) >= 6 {
		b.bgpIndex = data[5]
	}
	if len(data) >= 7 {
		b.objpIndex = data[6]
	}
	rest := data[min(7, len(data)):]
	n := copy(b.bgPalette[:], rest)
	rest = rest[n:]
	copy(b.objPalette[:], rest)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MarshalHDMA serializes the CGB HDMA engine's registers and in-flight
// transfer state for the hdma section.
func (b *Bus) MarshalHDMA() []byte {
	buf := []byte{
		b.hdma.srcHigh, b.hdma.srcLow, b.hdma.dstHigh, b.hdma.dstLow,
		boolByte(b.hdma.active), boolByte(b.hdma.hblankMode),
	}
	buf = appendU16Bus(buf, b.hdma.lengthLeft)
	buf = appendU16Bus(buf, uint16(int32(b.hdma.chunkCycles)))
	return buf
}

// UnmarshalHDMA restores state written by MarshalHDMA, tolerant of a
// shorter buffer.
func (b *Bus) UnmarshalHDMA(data []byte) {
	if len(data) >= 1 {
		b.hdma.srcHigh = data[0]
	}
	if len(data) >= 2 {
		b.hdma.srcLow = data[1]
	}
	if len(data) >= 3 {
		b.hdma.dstHigh = data[2]
	}
	if len(data) >= 4 {
		b.hdma.dstLow = data[3]
	}
	if len(data) >= 5 {
		b.hdma.active = data[4] != 0
	}
	if len(data) >= 6 {
		b.hdma.hblankMode = data[5] != 0
	}
	if len(data) >= 8 {
		b.hdma.lengthLeft = binary.LittleEndian.Uint16(data[6:8])
	}
	if len(data) >= 10 {
		b.hdma.chunkCycles = int(int16(binary.LittleEndian.Uint16(data[8:10])))
	}
}

// HRAMBytes returns a copy of the 127-byte HRAM block for the hram section.
func (b *Bus) HRAMBytes() []byte {
	return append([]byte(nil), b.hram[:]...)
}

// LoadHRAMBytes restores HRAM from a savestate's hram section, tolerant
// of a size mismatch.
func (b *Bus) LoadHRAMBytes(data []byte) {
	copy(b.hram[:], data)
}

// WRAMBytes flattens all eight 4KB work-RAM banks for the ram section.
func (b *Bus) WRAMBytes() []byte {
	buf := make([]byte, 0, 8*0x1000)
	for i := range b.wram {
		buf = append(buf, b.wram[i][:]...)
	}
	return buf
}

// LoadWRAMBytes restores work RAM from a savestate's ram section,
// tolerant of a size mismatch: each bank is filled with min(len, 0x1000)
// bytes.
func (b *Bus) LoadWRAMBytes(data []byte) {
	for i := range b.wram {
		if len(data) == 0 {
			return
		}
		n := copy(b.wram[i][:], data)
		data = data[n:]
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func appendU16Bus(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}
