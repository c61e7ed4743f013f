package ppu

// MarshalVideo serializes register state, both VRAM banks, and OAM. The
// in-flight pixel fetcher sub-state is intentionally not preserved: a
// restored PPU resumes at the start of whatever scanline it was on
// rather than mid-fetch, which every practical save point (the host
// calling back between frames) never observes anyway.
func (p *PPU) MarshalVideo() []byte {
	buf := make([]byte, 0, 2*0x2000+160+32)
	buf = append(buf, p.vram[0][:]...)
	buf = append(buf, p.vram[1][:]...)
	buf = append(buf, p.oam[:]...)
	buf = append(buf,
		p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc, p.bgp, p.obp0, p.obp1, p.wx, p.wy,
		p.vramBank, uint8(p.mode),
		uint8(p.cycles), uint8(p.cycles>>8),
		uint8(p.windowLine), uint8(p.windowLine>>8),
	)
	return buf
}

// UnmarshalVideo restores state written by MarshalVideo, tolerant of a
// shorter buffer (VRAM/OAM are restored byte-for-byte up to len(data);
// the register tail is skipped if truncated).
func (p *PPU) UnmarshalVideo(data []byte) {
	n := copy(p.vram[0][:], data)
	data = data[n:]
	n = copy(p.vram[1][:], data)
	data = data[n:]
	n = copy(p.oam[:], data)
	data = data[n:]

	read := func(i int) (uint8, bool) {
		if i >= len(data) {
			return 0, false
		}
		return data[i], true
	}

	if v, ok := read(0); ok {
		p.lcdc = v
	}
	if v, ok := read(1); ok {
		p.stat = v
	}
	if v, ok := read(2); ok {
		p.scy = v
	}
	if v, ok := read(3); ok {
		p.scx = v
	}
	if v, ok := read(4); ok {
		p.ly = v
	}
	if v, ok := read(5); ok {
		p.lyc = v
	}
	if v, ok := read(6); ok {
		p.bgp = v
	}
	if v, ok := read(7); ok {
		p.obp0 = v
	}
	if v, ok := read(8); ok {
		p.obp1 = v
	}
	if v, ok := read(9); ok {
		p.wx = v
	}
	if v, ok := read(10); ok {
		p.wy = v
	}
	if v, ok := read(11); ok {
		p.vramBank = v
	}
	if v, ok := read(12); ok {
		p.mode = Mode(v)
	}
	if lo, ok := read(13); ok {
		hi, _ := read(14)
		p.cycles = int(lo) | int(hi)<<8
	}
	if lo, ok := read(15); ok {
		hi, _ := read(16)
		p.windowLine = int(lo) | int(hi)<<8
	}

	p.fetch = fetchState{}
	p.spr.clear()
}
