package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/addr"
)

func TestAPU_MarshalUnmarshalRoundTrip(t *testing.T) {
	a := New(ModelDMG, 44100)
	a.WriteRegister(addr.NR52, 0x80)
	a.WriteRegister(addr.NR10, 0x12)
	a.WriteRegister(addr.NR50, 0x77)
	a.waveRAM[3] = 0x5A
	a.ch[0].enabled = true
	a.ch[0].volume = 12
	a.ch[0].period = 0x3FF
	a.ch[0].lfsr = 0x4321
	a.step = 3
	a.cycles = 999

	data := a.MarshalAPU()

	restored := New(ModelDMG, 44100)
	restored.UnmarshalAPU(data)

	assert.Equal(t, a.NR10, restored.NR10)
	assert.Equal(t, a.NR50, restored.NR50)
	assert.Equal(t, a.waveRAM[3], restored.waveRAM[3])
	assert.Equal(t, a.step, restored.step)
	assert.Equal(t, a.cycles, restored.cycles)
	assert.Equal(t, a.ch[0].enabled, restored.ch[0].enabled)
	assert.Equal(t, a.ch[0].volume, restored.ch[0].volume)
	assert.Equal(t, a.ch[0].period, restored.ch[0].period)
	assert.Equal(t, a.ch[0].lfsr, restored.ch[0].lfsr)
}

func TestAPU_UnmarshalTruncatedBufferLeavesRestUntouched(t *testing.T) {
	a := New(ModelDMG, 44100)
	a.NR50 = 0x11
	a.ch[2].volume = 9

	a.UnmarshalAPU([]byte{1, 0, 1}) // enabled, vinLeft, vinRight only

	assert.True(t, a.enabled)
	assert.Equal(t, uint8(0x11), a.NR50)
	assert.Equal(t, uint8(9), a.ch[2].volume)
}
