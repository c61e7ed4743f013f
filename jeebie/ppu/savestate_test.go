package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/addr"
)

func TestPPU_MarshalUnmarshalVideoRoundTrip(t *testing.T) {
	p := New(ModelCGB)
	p.vram[0][0x100] = 0xAB
	p.vram[1][0x200] = 0xCD
	p.oam[4] = 0xEF
	p.WriteRegister(addr.LCDC, 0x91)
	p.scy, p.scx = 7, 3
	p.ly = 42
	p.vramBank = 1
	p.mode = ModeHBlank
	p.cycles = 123
	p.windowLine = 17

	data := p.MarshalVideo()

	restored := New(ModelCGB)
	restored.UnmarshalVideo(data)

	assert.Equal(t, p.vram[0][0x100], restored.vram[0][0x100])
	assert.Equal(t, p.vram[1][0x200], restored.vram[1][0x200])
	assert.Equal(t, p.oam[4], restored.oam[4])
	assert.Equal(t, p.lcdc, restored.lcdc)
	assert.Equal(t, p.scy, restored.scy)
	assert.Equal(t, p.scx, restored.scx)
	assert.Equal(t, p.ly, restored.ly)
	assert.Equal(t, p.vramBank, restored.vramBank)
	assert.Equal(t, p.mode, restored.mode)
	assert.Equal(t, p.cycles, restored.cycles)
	assert.Equal(t, p.windowLine, restored.windowLine)
}

func TestPPU_UnmarshalVideoTruncatedBufferLeavesRegistersUntouched(t *testing.T) {
	p := New(ModelDMG)
	p.scy = 55

	short := make([]byte, 0x2000) // only a partial first VRAM bank
	p.UnmarshalVideo(short)

	assert.Equal(t, uint8(55), p.scy)
}
