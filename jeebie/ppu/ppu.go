// Package ppu implements the LCD controller: mode timing, background/
// window/sprite composition, STAT/LYC interrupts, and the VRAM/OAM access
// windows the bus consults to block CPU reads during active drawing.
package ppu

import (
	"github.com/valerio/go-jeebie/jeebie/addr"
	"github.com/valerio/go-jeebie/jeebie/bit"
)

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode int

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeVRAM   Mode = 3
)

const (
	oamScanCycles  = 80
	vramScanCycles = 172
	hblankCycles   = 204
	scanlineCycles = oamScanCycles + vramScanCycles + hblankCycles
	framesCycles   = scanlineCycles * 154
)

type statBit uint8

const (
	statLycIRQ  statBit = 6
	statOamIRQ  statBit = 5
	statVblank  statBit = 4
	statHblank  statBit = 3
	statLycFlag statBit = 2
)

type lcdcBit uint8

const (
	lcdcEnable      lcdcBit = 7
	lcdcWinMap      lcdcBit = 6
	lcdcWinEnable   lcdcBit = 5
	lcdcTileData    lcdcBit = 4
	lcdcBgMap       lcdcBit = 3
	lcdcObjSize     lcdcBit = 2
	lcdcObjEnable   lcdcBit = 1
	lcdcBgEnable    lcdcBit = 0
)

// Model distinguishes DMG from CGB. The PPU uses it only to enable VBK
// (CGB VRAM banking); mode timing and OAM/VRAM blocking are the same for
// both.
type Model int

const (
	ModelDMG Model = iota
	ModelCGB
)

// PPU owns VRAM, OAM, and the LCD register set, and drives the mode state
// machine that produces one composed frame every 70224 T-cycles.
type PPU struct {
	model Model

	vram    [2][0x2000]uint8 // bank 0 always; bank 1 is CGB-only
	vramBank uint8
	oam     [160]uint8

	lcdc, stat, scy, scx, ly, lyc, bgp, obp0, obp1, wx, wy uint8

	mode       Mode
	cycles     int
	windowLine int

	fetch fetchState

	fb     *FrameBuffer
	bgLine [Width]uint8 // color index (0-3) of bg/window for this line, for sprite priority
	spr    spritePriority

	// RequestInterrupt fires VBlank/LCDSTAT interrupts.
	RequestInterrupt func(addr.Interrupt)

	// FrameReady is invoked once per completed frame (at VBlank entry)
	// with the finished framebuffer.
	FrameReady func(*FrameBuffer)

	// HBlankEntered notifies an HDMA engine that a new HBlank period has
	// begun, so a pending HBlank-triggered VRAM DMA chunk can run.
	HBlankEntered func()
}

// New creates a PPU for the given model with all registers at their
// post-boot-ROM values.
func New(model Model) *PPU {
	p := &PPU{
		model:            model,
		mode:             ModeVBlank,
		ly:               144,
		fb:               NewFrameBuffer(),
		RequestInterrupt: func(addr.Interrupt) {},
		FrameReady:       func(*FrameBuffer) {},
		HBlankEntered:    func() {},
	}
	p.spr.clear()
	return p
}

func (p *PPU) Mode() Mode { return p.mode }

// VRAMBlocked reports whether the CPU's view of VRAM should currently
// read 0xFF / drop writes: true only during active drawing (Mode 3).
func (p *PPU) VRAMBlocked() bool {
	return p.lcdEnabled() && p.mode == ModeVRAM
}

// OAMBlocked reports whether OAM access should be blocked: during OAM
// scan (Mode 2) and active drawing (Mode 3).
func (p *PPU) OAMBlocked() bool {
	return p.lcdEnabled() && (p.mode == ModeOAM || p.mode == ModeVRAM)
}

func (p *PPU) lcdEnabled() bool {
	return bit.IsSet(uint8(lcdcEnable), p.lcdc)
}

// FrameBuffer returns the most recently composed frame.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.fb }

// ReadVRAM/WriteVRAM access the currently-banked 8KB VRAM window
// (0x8000-0x9FFF relative addressing, address passed with the 0x8000
// offset already subtracted).
func (p *PPU) ReadVRAM(offset uint16) uint8 {
	return p.vram[p.vramBank][offset]
}

func (p *PPU) WriteVRAM(offset uint16, value uint8) {
	p.vram[p.vramBank][offset] = value
}

// ReadVRAMBank reads from an explicit bank regardless of VBK, used by the
// HDMA engine and by CGB tile-attribute lookups (which always read bank 1).
func (p *PPU) ReadVRAMBank(bank uint8, offset uint16) uint8 {
	return p.vram[bank&1][offset]
}

func (p *PPU) ReadOAM(offset uint16) uint8 {
	if offset >= uint16(len(p.oam)) {
		return 0xFF
	}
	return p.oam[offset]
}

func (p *PPU) WriteOAM(offset uint16, value uint8) {
	if offset >= uint16(len(p.oam)) {
		return
	}
	p.oam[offset] = value
}

// ReadRegister/WriteRegister handle the LCDC..WX I/O register block
// (0xFF40-0xFF4B), including VBK (0xFF4F) for CGB VRAM banking.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	case addr.VBK:
		return p.vramBank | 0xFE
	default:
		return 0xFF
	}
}

func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		wasEnabled := p.lcdEnabled()
		p.lcdc = value
		if wasEnabled && !p.lcdEnabled() {
			p.disableLCD()
		}
	case addr.STAT:
		p.stat = (p.stat & 0x07) | (value & 0xF8)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only on hardware
	case addr.LYC:
		p.lyc = value
		p.compareLYC()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	case addr.VBK:
		if p.model == ModelCGB {
			p.vramBank = value & 0x01
		}
	}
}

func (p *PPU) disableLCD() {
	p.mode = ModeHBlank
	p.cycles = 0
	p.ly = 0
	p.windowLine = 0
	p.setStatMode(ModeHBlank)
}

// Tick advances the PPU's mode state machine by the given number of
// T-cycles, stepping the pixel fetcher while in Mode 3 and firing
// STAT/VBlank interrupts on mode transitions.
func (p *PPU) Tick(cycles int) {
	if !p.lcdEnabled() {
		return
	}

	for cycles > 0 {
		step := cycles
		if step > 4 {
			step = 4
		}
		cycles -= step
		p.tickStep(step)
	}
}

func (p *PPU) tickStep(cycles int) {
	p.cycles += cycles

	switch p.mode {
	case ModeOAM:
		if p.cycles >= oamScanCycles {
			p.cycles -= oamScanCycles
			p.enterMode(ModeVRAM)
			p.beginScanline()
		}
	case ModeVRAM:
		p.stepFetch(cycles)
		if p.cycles >= vramScanCycles {
			p.cycles -= vramScanCycles
			p.finishScanline()
			p.enterMode(ModeHBlank)
			if bit.IsSet(uint8(statHblank), p.stat) {
				p.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	case ModeHBlank:
		if p.cycles >= hblankCycles {
			p.cycles -= hblankCycles
			p.advanceLine()
		}
	case ModeVBlank:
		if p.cycles >= scanlineCycles {
			p.cycles -= scanlineCycles
			p.advanceLine()
		}
	}
}

func (p *PPU) advanceLine() {
	p.setLY(p.ly + 1)

	if p.ly == 144 {
		p.enterMode(ModeVBlank)
		p.windowLine = 0
		p.RequestInterrupt(addr.VBlankInterrupt)
		if bit.IsSet(uint8(statVblank), p.stat) {
			p.RequestInterrupt(addr.LCDSTATInterrupt)
		}
		p.FrameReady(p.fb)
		return
	}

	if p.ly > 153 {
		p.setLY(0)
		p.enterMode(ModeOAM)
		if bit.IsSet(uint8(statOamIRQ), p.stat) {
			p.RequestInterrupt(addr.LCDSTATInterrupt)
		}
		return
	}

	if p.mode == ModeHBlank {
		p.enterMode(ModeOAM)
		if bit.IsSet(uint8(statOamIRQ), p.stat) {
			p.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	}
}

func (p *PPU) enterMode(m Mode) {
	p.mode = m
	p.setStatMode(m)
	if m == ModeHBlank {
		p.HBlankEntered()
	}
}

func (p *PPU) setStatMode(m Mode) {
	p.stat = (p.stat &^ 0x03) | uint8(m)
}

func (p *PPU) setLY(line uint8) {
	p.ly = line
	p.compareLYC()
}

func (p *PPU) compareLYC() {
	if p.ly == p.lyc {
		p.stat = bit.Set(uint8(statLycFlag), p.stat)
		if bit.IsSet(uint8(statLycIRQ), p.stat) {
			p.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		p.stat = bit.Reset(uint8(statLycFlag), p.stat)
	}
}
