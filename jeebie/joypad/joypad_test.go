package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/addr"
)

func TestJoypad_ReadDefaultsToAllReleased(t *testing.T) {
	j := New()
	j.Write(0x30)

	assert.Equal(t, uint8(0xFF), j.Read())
}

func TestJoypad_SelectButtonsReportsButtonState(t *testing.T) {
	j := New()
	j.Press(A)
	j.Write(0x10) // select buttons (bit 5 low)

	assert.Equal(t, uint8(0xDE), j.Read())
}

func TestJoypad_SelectDpadReportsDpadState(t *testing.T) {
	j := New()
	j.Press(Up)
	j.Write(0x20) // select dpad (bit 4 low)

	assert.Equal(t, uint8(0xEB), j.Read())
}

func TestJoypad_PressFiresInterruptOnFallingEdge(t *testing.T) {
	fired := false
	j := New()
	j.RequestInterrupt = func(i addr.Interrupt) {
		if i == addr.JoypadInterrupt {
			fired = true
		}
	}

	j.Press(Start)

	assert.True(t, fired)
}

func TestJoypad_PressWhileAlreadyPressedDoesNotRefire(t *testing.T) {
	fired := 0
	j := New()
	j.RequestInterrupt = func(addr.Interrupt) { fired++ }

	j.Press(B)
	j.Press(B)

	assert.Equal(t, 1, fired)
}

func TestJoypad_ReleaseRestoresBit(t *testing.T) {
	j := New()
	j.Write(0x10)
	j.Press(A)
	j.Release(A)

	assert.Equal(t, uint8(0xDF), j.Read())
}

func TestJoypad_ApplyStatePressesMultipleKeys(t *testing.T) {
	j := New()

	// Bits: Right,Left,Up,Down,A,B,Select,Start - active low.
	// Press A (bit 4) and Start (bit 7), release everything else.
	bitmap := uint8(0xFF) &^ (1 << 4) &^ (1 << 7)
	j.ApplyState(bitmap)

	j.Write(0x10) // select buttons
	assert.Equal(t, uint8(0xD6), j.Read())
}

func TestJoypad_ApplyStateReleasesPreviouslyPressedKeys(t *testing.T) {
	j := New()
	j.Press(A)
	j.Press(Up)

	j.ApplyState(0xFF) // all released

	j.Write(0x10)
	assert.Equal(t, uint8(0xDF), j.Read())
	j.Write(0x20)
	assert.Equal(t, uint8(0xEF), j.Read())
}

func TestJoypad_ApplyStateFiresInterruptOnNewPress(t *testing.T) {
	fired := 0
	j := New()
	j.RequestInterrupt = func(addr.Interrupt) { fired++ }

	j.ApplyState(0xFF &^ (1 << 0)) // press Right
	assert.Equal(t, 1, fired)

	j.ApplyState(0xFF &^ (1 << 0)) // still pressed, no refire
	assert.Equal(t, 1, fired)
}
