package ppu

import "github.com/valerio/go-jeebie/jeebie/bit"

// fetchState is the per-scanline pixel pipeline. Pixels are produced one
// per T-cycle from stepFetch (driven by Tick), rather than composing the
// whole line in one shot: outX is the resume cursor, and tileLow/tileHigh
// are the cached fetch for the 8-pixel run currently being emitted.
type fetchState struct {
	outX         int
	pixelInTile  int
	tileLow      uint8
	tileHigh     uint8
	windowActive bool
	windowHit    bool

	sprites    [10]spriteEntry
	spriteN    int
}

type spriteEntry struct {
	y, x      int
	tile      uint8
	flags     uint8
	oamIndex  int
	height    int
}

func (p *PPU) beginScanline() {
	// pixelInTile starts at 8 so the first pixel fetches a tile row.
	p.fetch = fetchState{pixelInTile: 8}
	p.scanSprites()
}

// stepFetch emits up to `cycles` background/window pixels into the
// framebuffer and bgLine priority buffer for the current scanline.
func (p *PPU) stepFetch(cycles int) {
	for i := 0; i < cycles && p.fetch.outX < Width; i++ {
		p.outputOnePixel()
	}
}

func (p *PPU) outputOnePixel() {
	x := p.fetch.outX
	lineWidth := int(p.ly)

	if !bit.IsSet(uint8(lcdcBgEnable), p.lcdc) {
		color0 := p.bgp & 0x03
		p.fb.Set(x, lineWidth, shadeRGBA(color0))
		p.bgLine[x] = 0
		p.fetch.outX++
		return
	}

	windowEnabled := bit.IsSet(uint8(lcdcWinEnable), p.lcdc)
	wx := int(p.wx) - 7
	inWindow := windowEnabled && int(p.wy) <= int(p.ly) && x >= wx && wx <= 159

	if inWindow != p.fetch.windowActive {
		// crossing into/out of the window forces a fresh tile fetch.
		p.fetch.pixelInTile = 8
	}
	p.fetch.windowActive = inWindow
	if inWindow {
		p.fetch.windowHit = true
	}

	if p.fetch.pixelInTile >= 8 {
		p.fetchTileRow(x, inWindow, wx)
		p.fetch.pixelInTile = 0
	}

	bitIndex := uint8(7 - p.fetch.pixelInTile)
	pixel := 0
	if bit.IsSet(bitIndex, p.fetch.tileLow) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, p.fetch.tileHigh) {
		pixel |= 2
	}

	color := (p.bgp >> (pixel * 2)) & 0x03
	p.fb.Set(x, lineWidth, shadeRGBA(color))
	p.bgLine[x] = uint8(pixel)

	p.fetch.pixelInTile++
	p.fetch.outX++
}

func (p *PPU) fetchTileRow(x int, inWindow bool, wx int) {
	useSigned := !bit.IsSet(uint8(lcdcTileData), p.lcdc)

	var mapBase uint16
	var tileCol, tileRow int

	if inWindow {
		if bit.IsSet(uint8(lcdcWinMap), p.lcdc) {
			mapBase = 0x9C00
		} else {
			mapBase = 0x9800
		}
		winX := x - wx
		tileCol = winX / 8
		tileRow = p.windowLine / 8
	} else {
		if bit.IsSet(uint8(lcdcBgMap), p.lcdc) {
			mapBase = 0x9C00
		} else {
			mapBase = 0x9800
		}
		mapPixelX := (x + int(p.scx)) & 0xFF
		mapPixelY := (int(p.ly) + int(p.scy)) & 0xFF
		tileCol = mapPixelX / 8
		tileRow = mapPixelY / 8
	}

	mapOffset := uint16(tileRow*32+tileCol) & 0x3FF
	tileNum := p.ReadVRAM(mapBase - 0x8000 + mapOffset)

	var rowOffset int
	if inWindow {
		rowOffset = p.windowLine % 8
	} else {
		rowOffset = (int(p.ly) + int(p.scy)) % 8
	}

	var tileAddr uint16
	if useSigned {
		tileAddr = uint16(0x9000 + int(int8(tileNum))*16 + rowOffset*2)
	} else {
		tileAddr = 0x8000 + uint16(int(tileNum)*16+rowOffset*2)
	}

	p.fetch.tileLow = p.ReadVRAM(tileAddr - 0x8000)
	p.fetch.tileHigh = p.ReadVRAM(tileAddr - 0x8000 + 1)
}

func shadeRGBA(v uint8) uint32 {
	switch v & 0x03 {
	case 0:
		return 0xFFFFFFFF
	case 1:
		return 0x989898FF
	case 2:
		return 0x4C4C4CFF
	default:
		return 0x000000FF
	}
}

func (p *PPU) scanSprites() {
	p.fetch.spriteN = 0
	if !bit.IsSet(uint8(lcdcObjEnable), p.lcdc) {
		return
	}

	height := 8
	if bit.IsSet(uint8(lcdcObjSize), p.lcdc) {
		height = 16
	}

	for i := 0; i < 40 && p.fetch.spriteN < 10; i++ {
		base := uint16(i * 4)
		y := int(p.oam[base]) - 16
		if y > int(p.ly) || y+height <= int(p.ly) {
			continue
		}
		p.fetch.sprites[p.fetch.spriteN] = spriteEntry{
			y:        y,
			x:        int(p.oam[base+1]) - 8,
			tile:     p.oam[base+2],
			flags:    p.oam[base+3],
			oamIndex: i,
			height:   height,
		}
		p.fetch.spriteN++
	}
}

func (p *PPU) finishScanline() {
	if bit.IsSet(uint8(lcdcWinEnable), p.lcdc) && p.fetch.windowHit {
		p.windowLine++
	}
	p.drawSprites()
}

func (p *PPU) drawSprites() {
	n := p.fetch.spriteN
	if n == 0 {
		return
	}

	p.spr.clear()
	for i := 0; i < n; i++ {
		s := p.fetch.sprites[i]
		for px := 0; px < 8; px++ {
			p.spr.tryClaim(s.x+px, s.oamIndex, s.x)
		}
	}

	lineWidth := int(p.ly)
	for i := 0; i < n; i++ {
		s := p.fetch.sprites[i]

		hasPixel := false
		for px := 0; px < 8; px++ {
			if p.spr.ownerOf(s.x+px) == s.oamIndex {
				hasPixel = true
				break
			}
		}
		if !hasPixel {
			continue
		}

		tileIndex := s.tile
		if s.height == 16 {
			tileIndex &= 0xFE
		}

		flipX := bit.IsSet(5, s.flags)
		flipY := bit.IsSet(6, s.flags)
		aboveBG := !bit.IsSet(7, s.flags)

		pixelY := int(p.ly) - s.y
		if flipY {
			pixelY = s.height - 1 - pixelY
		}

		rowOffset := pixelY * 2
		if s.height == 16 && pixelY >= 8 {
			rowOffset = (pixelY - 8) * 2
			tileIndex++
		}

		tileAddr := 0x8000 + uint16(int(tileIndex)*16+rowOffset)
		low := p.ReadVRAM(tileAddr - 0x8000)
		high := p.ReadVRAM(tileAddr - 0x8000 + 1)

		paletteReg := p.obp0
		if bit.IsSet(4, s.flags) {
			paletteReg = p.obp1
		}

		for px := 0; px < 8; px++ {
			bufX := s.x + px
			if bufX < 0 || bufX >= Width {
				continue
			}
			if p.spr.ownerOf(bufX) != s.oamIndex {
				continue
			}

			bitIdx := uint8(7 - px)
			if flipX {
				bitIdx = uint8(px)
			}

			pixel := 0
			if bit.IsSet(bitIdx, low) {
				pixel |= 1
			}
			if bit.IsSet(bitIdx, high) {
				pixel |= 2
			}
			if pixel == 0 {
				continue
			}

			if !aboveBG && p.bgLine[bufX] != 0 {
				continue
			}

			color := (paletteReg >> (pixel * 2)) & 0x03
			p.fb.Set(bufX, lineWidth, shadeRGBA(color))
		}
	}
}
