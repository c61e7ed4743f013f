package apu

import "encoding/binary"

// MarshalAPU serializes every register and internal channel counter
// needed to resume audio generation exactly where it left off: the
// frame sequencer position, the four channels' full runtime state, and
// wave RAM. The ring buffer and resampler accumulators are intentionally
// excluded — they hold host-audio-thread state that a fresh Drain cycle
// re-establishes within one callback period.
func (a *APU) MarshalAPU() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, boolByte(a.enabled), boolByte(a.vinLeft), boolByte(a.vinRight))
	buf = append(buf, a.volLeft, a.volRight)
	buf = append(buf, uint8(a.step))
	buf = appendU16(buf, uint16(a.cycles))
	buf = append(buf,
		a.NR10, a.NR11, a.NR12, a.NR13, a.NR14,
		a.NR21, a.NR22, a.NR23, a.NR24,
		a.NR30, a.NR31, a.NR32, a.NR33, a.NR34,
		a.NR41, a.NR42, a.NR43, a.NR44,
		a.NR50, a.NR51, a.NR52,
	)
	buf = append(buf, a.waveRAM[:]...)
	for i := range a.ch {
		buf = marshalChannel(buf, &a.ch[i])
	}
	return buf
}

// UnmarshalAPU restores state written by MarshalAPU, tolerant of a
// truncated buffer: each field keeps its current value once the data runs out.
func (a *APU) UnmarshalAPU(data []byte) {
	r := &byteReader{data: data}

	a.enabled = r.bool(a.enabled)
	a.vinLeft = r.bool(a.vinLeft)
	a.vinRight = r.bool(a.vinRight)
	a.volLeft = r.u8(a.volLeft)
	a.volRight = r.u8(a.volRight)
	a.step = int(r.u8(uint8(a.step)))
	a.cycles = int(r.u16(uint16(a.cycles)))

	a.NR10 = r.u8(a.NR10)
	a.NR11 = r.u8(a.NR11)
	a.NR12 = r.u8(a.NR12)
	a.NR13 = r.u8(a.NR13)
	a.NR14 = r.u8(a.NR14)
	a.NR21 = r.u8(a.NR21)
	a.NR22 = r.u8(a.NR22)
	a.NR23 = r.u8(a.NR23)
	a.NR24 = r.u8(a.NR24)
	a.NR30 = r.u8(a.NR30)
	a.NR31 = r.u8(a.NR31)
	a.NR32 = r.u8(a.NR32)
	a.NR33 = r.u8(a.NR33)
	a.NR34 = r.u8(a.NR34)
	a.NR41 = r.u8(a.NR41)
	a.NR42 = r.u8(a.NR42)
	a.NR43 = r.u8(a.NR43)
	a.NR44 = r.u8(a.NR44)
	a.NR50 = r.u8(a.NR50)
	a.NR51 = r.u8(a.NR51)
	a.NR52 = r.u8(a.NR52)

	for i := range a.waveRAM {
		a.waveRAM[i] = r.u8(a.waveRAM[i])
	}
	for i := range a.ch {
		unmarshalChannel(r, &a.ch[i])
	}
}

func marshalChannel(buf []byte, ch *Channel) []byte {
	buf = append(buf, boolByte(ch.enabled), boolByte(ch.left), boolByte(ch.right))
	buf = append(buf, ch.duty, ch.timer)
	buf = appendU16(buf, ch.length)
	buf = append(buf, ch.volume)
	buf = append(buf, ch.sweepPeriod, boolByte(ch.sweepDown), ch.sweepStep, boolByte(ch.sweepEnabled), ch.sweepTimer)
	buf = appendU16(buf, ch.shadowFreq)
	buf = append(buf, boolByte(ch.sweepNegUsed))
	buf = append(buf, ch.envelopePace, boolByte(ch.envelopeUp), ch.envelopeCounter, boolByte(ch.envelopeLatched))
	buf = appendU16(buf, ch.period)
	buf = append(buf, boolByte(ch.trigger), boolByte(ch.lengthEnable))
	buf = appendU32(buf, uint32(ch.freqTimer))
	buf = append(buf, ch.dutyStep, ch.waveIndex, ch.waveSample)
	buf = appendU32(buf, uint32(ch.noiseTimer))
	buf = appendU32(buf, uint32(ch.sampleCd))
	buf = appendU16(buf, ch.lfsr)
	buf = append(buf, boolByte(ch.use7bitLFSR), ch.shift, ch.divider, boolByte(ch.dacEnabled))
	return buf
}

func unmarshalChannel(r *byteReader, ch *Channel) {
	ch.enabled = r.bool(ch.enabled)
	ch.left = r.bool(ch.left)
	ch.right = r.bool(ch.right)
	ch.duty = r.u8(ch.duty)
	ch.timer = r.u8(ch.timer)
	ch.length = r.u16(ch.length)
	ch.volume = r.u8(ch.volume)
	ch.sweepPeriod = r.u8(ch.sweepPeriod)
	ch.sweepDown = r.bool(ch.sweepDown)
	ch.sweepStep = r.u8(ch.sweepStep)
	ch.sweepEnabled = r.bool(ch.sweepEnabled)
	ch.sweepTimer = r.u8(ch.sweepTimer)
	ch.shadowFreq = r.u16(ch.shadowFreq)
	ch.sweepNegUsed = r.bool(ch.sweepNegUsed)
	ch.envelopePace = r.u8(ch.envelopePace)
	ch.envelopeUp = r.bool(ch.envelopeUp)
	ch.envelopeCounter = r.u8(ch.envelopeCounter)
	ch.envelopeLatched = r.bool(ch.envelopeLatched)
	ch.period = r.u16(ch.period)
	ch.trigger = r.bool(ch.trigger)
	ch.lengthEnable = r.bool(ch.lengthEnable)
	ch.freqTimer = int(r.u32(uint32(ch.freqTimer)))
	ch.dutyStep = r.u8(ch.dutyStep)
	ch.waveIndex = r.u8(ch.waveIndex)
	ch.waveSample = r.u8(ch.waveSample)
	ch.noiseTimer = int(r.u32(uint32(ch.noiseTimer)))
	ch.sampleCd = int(r.u32(uint32(ch.sampleCd)))
	ch.lfsr = r.u16(ch.lfsr)
	ch.use7bitLFSR = r.bool(ch.use7bitLFSR)
	ch.shift = r.u8(ch.shift)
	ch.divider = r.u8(ch.divider)
	ch.dacEnabled = r.bool(ch.dacEnabled)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// byteReader reads fixed-width fields sequentially from a possibly-short
// buffer, returning the caller-supplied current value once it runs out.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) bool(current bool) bool {
	if r.pos >= len(r.data) {
		return current
	}
	v := r.data[r.pos] != 0
	r.pos++
	return v
}

func (r *byteReader) u8(current uint8) uint8 {
	if r.pos >= len(r.data) {
		return current
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *byteReader) u16(current uint16) uint16 {
	if r.pos+2 > len(r.data) {
		return current
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v
}

func (r *byteReader) u32(current uint32) uint32 {
	if r.pos+4 > len(r.data) {
		return current
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v
}
