package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_MarshalUnmarshalCoreRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.ie = 0x1F
	b.ifReg = 0x03
	b.wramBank = 5
	b.doubleSpeed = true
	b.speedSwitchReq = true
	b.bgpIndex = 0x81
	b.objpIndex = 0x42
	b.bgPalette[10] = 0x77
	b.objPalette[20] = 0x99

	data := b.MarshalCore()

	restored := newTestBus(t)
	restored.UnmarshalCore(data)

	assert.Equal(t, b.ie, restored.ie)
	assert.Equal(t, b.ifReg, restored.ifReg)
	assert.Equal(t, b.wramBank, restored.wramBank)
	assert.Equal(t, b.doubleSpeed, restored.doubleSpeed)
	assert.Equal(t, b.speedSwitchReq, restored.speedSwitchReq)
	assert.Equal(t, b.bgpIndex, restored.bgpIndex)
	assert.Equal(t, b.objpIndex, restored.objpIndex)
	assert.Equal(t, b.bgPalette[10], restored.bgPalette[10])
	assert.Equal(t, b.objPalette[20], restored.objPalette[20])
}

func TestBus_MarshalUnmarshalHDMARoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.hdma.srcHigh, b.hdma.srcLow = 0x40, 0x00
	b.hdma.dstHigh, b.hdma.dstLow = 0x80, 0x10
	b.hdma.active = true
	b.hdma.hblankMode = true
	b.hdma.lengthLeft = 0x0FF0
	b.hdma.chunkCycles = -7

	data := b.MarshalHDMA()

	restored := newTestBus(t)
	restored.UnmarshalHDMA(data)

	assert.Equal(t, b.hdma.srcHigh, restored.hdma.srcHigh)
	assert.Equal(t, b.hdma.srcLow, restored.hdma.srcLow)
	assert.Equal(t, b.hdma.dstHigh, restored.hdma.dstHigh)
	assert.Equal(t, b.hdma.dstLow, restored.hdma.dstLow)
	assert.Equal(t, b.hdma.active, restored.hdma.active)
	assert.Equal(t, b.hdma.hblankMode, restored.hdma.hblankMode)
	assert.Equal(t, b.hdma.lengthLeft, restored.hdma.lengthLeft)
	assert.Equal(t, b.hdma.chunkCycles, restored.hdma.chunkCycles)
}

func TestBus_HRAMBytesRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.hram[0] = 0x11
	b.hram[126] = 0x22

	data := b.HRAMBytes()
	assert.Len(t, data, 127)

	restored := newTestBus(t)
	restored.LoadHRAMBytes(data)

	assert.Equal(t, b.hram, restored.hram)
}

func TestBus_WRAMBytesRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.wram[0][0] = 0xAA
	b.wram[7][0x0FFF] = 0xBB

	data := b.WRAMBytes()
	assert.Len(t, data, 8*0x1000)

	restored := newTestBus(t)
	restored.LoadWRAMBytes(data)

	assert.Equal(t, b.wram, restored.wram)
}

func TestBus_LoadWRAMBytesTruncatedBufferLeavesRemainingBanksUntouched(t *testing.T) {
	b := newTestBus(t)
	b.wram[3][5] = 0x99

	short := make([]byte, 0x1000) // only bank 0
	short[0] = 0x55
	b.LoadWRAMBytes(short)

	assert.Equal(t, uint8(0x55), b.wram[0][0])
	assert.Equal(t, uint8(0x99), b.wram[3][5])
}
