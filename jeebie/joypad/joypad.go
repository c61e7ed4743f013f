// Package joypad models the P1 input matrix register: button/d-pad state,
// the active-low selection lines, and the high-to-low transition interrupt.
package joypad

import (
	"github.com/valerio/go-jeebie/jeebie/addr"
)

// Key identifies one of the eight physical buttons.
type Key int

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad tracks button/d-pad state and composes the P1 register value on
// demand. Buttons and d-pad directions are stored as separate active-low
// nibbles, matching the two physical matrix lines real hardware wires
// through the same four data pins.
type Joypad struct {
	buttons uint8 // bit layout: Start|Select|B|A, 1 = released
	dpad    uint8 // bit layout: Down|Up|Left|Right, 1 = released

	selectLine uint8 // raw bits 4-5 as last written to P1

	// RequestInterrupt is invoked when a key press takes a bit of either
	// matrix line from high to low, whichever line is selected onto P1.
	RequestInterrupt func(addr.Interrupt)
}

// New creates a Joypad with all buttons released and a no-op interrupt
// callback; callers wire RequestInterrupt themselves.
func New() *Joypad {
	return &Joypad{
		buttons:          0x0F,
		dpad:             0x0F,
		RequestInterrupt: func(addr.Interrupt) {},
	}
}

func (j *Joypad) selectButtons() bool { return j.selectLine&0x20 == 0 }
func (j *Joypad) selectDpad() bool    { return j.selectLine&0x10 == 0 }

// Read returns the current P1 register value: bits 6-7 always read high,
// bits 4-5 echo the last-written selection, and bits 0-3 report whichever
// line(s) are selected, wired-AND together when both are selected at once.
func (j *Joypad) Read() uint8 {
	lower := uint8(0x0F)
	if j.selectButtons() {
		lower &= j.buttons
	}
	if j.selectDpad() {
		lower &= j.dpad
	}
	if !j.selectButtons() && !j.selectDpad() {
		lower = 0x0F
	}
	return 0xC0 | j.selectLine | lower
}

// Write updates the selection bits (4-5); bits 0-3 are read-only on real
// hardware and ignored here.
func (j *Joypad) Write(value uint8) {
	j.selectLine = value & 0x30
}

func keyBit(key Key) uint8 {
	switch key {
	case Right, A:
		return 0
	case Left, B:
		return 1
	case Up, Select:
		return 2
	case Down, Start:
		return 3
	default:
		return 0
	}
}

// Press clears the given key's bit (active-low). The joypad interrupt
// fires whenever pressing the key causes either matrix line to transition
// a bit from high to low, mirroring real hardware's edge detector on the
// four data pins regardless of which line is currently selected onto P1.
func (j *Joypad) Press(key Key) {
	oldButtons, oldDpad := j.buttons, j.dpad

	b := keyBit(key)
	switch key {
	case Right, Left, Up, Down:
		j.dpad &^= 1 << b
	default:
		j.buttons &^= 1 << b
	}

	buttonTransitions := oldButtons &^ j.buttons
	dpadTransitions := oldDpad &^ j.dpad
	if buttonTransitions != 0 || dpadTransitions != 0 {
		j.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// ApplyState sets all eight keys at once from an active-low bitmap (bit
// index order matches the Key enum: Right,Left,Up,Down,A,B,Select,Start;
// 0 = pressed). This is the shape a host's input_poll callback returns.
func (j *Joypad) ApplyState(bitmap uint8) {
	for k := Key(0); k <= Start; k++ {
		if bitmap&(1<<uint(k)) == 0 {
			j.Press(k)
		} else {
			j.Release(k)
		}
	}
}

// Release sets the given key's bit back (no longer pressed).
func (j *Joypad) Release(key Key) {
	b := keyBit(key)
	switch key {
	case Right, Left, Up, Down:
		j.dpad |= 1 << b
	default:
		j.buttons |= 1 << b
	}
}
