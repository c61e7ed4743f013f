// Package gameboy implements the Machine aggregate: the host-facing
// lifecycle (init/load/power/step), host callback registration, and
// typed error surface tying the jeebie subsystem packages into one
// runnable Game Boy / Game Boy Color / Super Game Boy core.
package gameboy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-jeebie/jeebie/addr"
	"github.com/valerio/go-jeebie/jeebie/bus"
	"github.com/valerio/go-jeebie/jeebie/cartridge"
	"github.com/valerio/go-jeebie/jeebie/cpu"
	"github.com/valerio/go-jeebie/jeebie/joypad"
	"github.com/valerio/go-jeebie/jeebie/ppu"
	"github.com/valerio/go-jeebie/jeebie/sgb"
)

// Model selects which hardware revision the Machine emulates.
type Model int

const (
	ModelDMG Model = iota
	ModelCGB
	ModelSGB
)

// cyclesPerFrame is the base (single-speed) T-cycle count of one video
// frame: 154 scanlines x 456 cycles.
const cyclesPerFrame = 70224

// baseClockHz is the Game Boy's base oscillator rate, used to convert
// elapsed base cycles into real seconds for the cartridge RTC.
const baseClockHz = 4194304

var (
	// ErrLoadFailed wraps a cartridge header/MBC error from LoadROM.
	ErrLoadFailed = errors.New("gameboy: load failed")
	// ErrIllegalOpcode is surfaced once, the step an illegal opcode is
	// hit: interrupts are disabled and the core halts, but the process is
	// never aborted, so the Machine keeps running (idling) afterward.
	ErrIllegalOpcode = errors.New("gameboy: illegal opcode")
	// ErrSaveStateMismatch is returned by LoadState when the magic tag,
	// version, or cartridge RAM size doesn't match; core state is left
	// unchanged.
	ErrSaveStateMismatch = errors.New("gameboy: save state mismatch")
	// ErrHostCallbackMissing is never returned to the caller: a render
	// attempt without RGBEncode set is silently skipped, per spec. It
	// exists so callers can name the condition in their own logs.
	ErrHostCallbackMissing = errors.New("gameboy: host callback missing")
)

// Machine aggregates the CPU, memory bus, and cartridge into one runnable
// core, plus the host callback registrations that drive rendering, audio,
// and input at the boundary.
type Machine struct {
	model Model
	cpu   *cpu.CPU
	bus   *bus.Bus
	cart  *cartridge.Cartridge

	frameCycles int
	rtcCycles   int

	illegalReported bool

	Log *slog.Logger

	// FrameReady is called once per completed frame with a borrowed
	// framebuffer already translated through RGBEncode; it is not called
	// while RGBEncode is nil.
	FrameReady func(pixels []uint32, width, height int)
	// RGBEncode converts an internal RGB triplet into the host's native
	// pixel format. If nil, FrameReady delivery is silently skipped.
	RGBEncode func(r, g, b uint8) uint32
	// InputPoll is asked once per Step for the current 8-bit joypad
	// bitmap (active-low, bit order Right,Left,Up,Down,A,B,Select,Start).
	InputPoll func() uint8
	// VBlank is an optional hook invoked when the VBlank interrupt fires,
	// ahead of FrameReady, for host-side frame pacing.
	VBlank func()
	// AsyncInput is an optional hook invoked once per Step for debugger
	// command pumping or other out-of-band polling.
	AsyncInput func()
}

// New creates a Machine for the given model with no cartridge loaded;
// callers must call LoadROM before Step.
func New(model Model) *Machine {
	m := &Machine{
		model:      model,
		Log:        slog.Default(),
		FrameReady: func([]uint32, int, int) {},
		InputPoll:  func() uint8 { return 0xFF },
	}
	return m
}

func busModel(m Model) bus.Model {
	if m == ModelCGB {
		return bus.ModelCGB
	}
	return bus.ModelDMG
}

func cpuModel(m Model) cpu.Model {
	switch m {
	case ModelCGB:
		return cpu.ModelCGB
	case ModelSGB:
		return cpu.ModelSGB
	default:
		return cpu.ModelDMG
	}
}

// LoadROM parses a ROM image, builds the cartridge's MBC, and wires a
// fresh bus and CPU around it. The Machine is left in its pre-power state
// afterward; call Power to start execution from the post-boot-ROM state.
func (m *Machine) LoadROM(data []byte) error {
	cart, err := cartridge.New(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	m.cart = cart
	m.bus = bus.New(busModel(m.model), cart, nil)
	if m.model == ModelSGB {
		m.bus.SGB = sgb.NewDecoder()
	}
	m.bus.PPU.FrameReady = m.onFrameReady
	m.bus.PPU.RequestInterrupt = m.onPPUInterrupt
	m.cpu = cpu.New(m.bus, cpuModel(m.model))

	m.frameCycles = 0
	m.rtcCycles = 0
	m.illegalReported = false

	m.Log.Info("rom loaded", "title", cart.Header.Title, "kind", cart.Header.Kind)
	return nil
}

// Power resets the CPU and bus to the post-boot-ROM state. When reset is
// false, cartridge RAM (battery-backed save data) is preserved; the
// cartridge's own RAM is never touched by Power either way, since only
// LoadBattery/LoadRAMBytes replace it, so reset=true vs. false only
// differs in clearing WRAM/VRAM/HRAM/peripheral registers back to their
// power-on defaults.
func (m *Machine) Power(reset bool) {
	if m.bus == nil {
		return
	}
	if reset {
		m.bus = bus.New(busModel(m.model), m.cart, nil)
		if m.model == ModelSGB {
			m.bus.SGB = sgb.NewDecoder()
		}
		m.bus.PPU.FrameReady = m.onFrameReady
		m.bus.PPU.RequestInterrupt = m.onPPUInterrupt
	}
	m.cpu = cpu.New(m.bus, cpuModel(m.model))
	m.frameCycles = 0
	m.rtcCycles = 0
	m.illegalReported = false
}

// Step advances the core by one CPU instruction, or by four cycles if
// currently halted/stopped. It returns ErrIllegalOpcode exactly once, on
// the step that first hits an illegal opcode; the core itself never
// aborts and keeps idling in its halted state on every subsequent call.
func (m *Machine) Step() error {
	if m.AsyncInput != nil {
		m.AsyncInput()
	}
	if m.InputPoll != nil {
		m.bus.Joypad.ApplyState(m.InputPoll())
	}

	cycles := m.cpu.Exec()
	m.bus.SyncDoubleSpeed(m.cpu.DoubleSpeed())

	m.advanceRTC(cycles)

	m.frameCycles += cycles
	if m.frameCycles >= cyclesPerFrame {
		m.frameCycles -= cyclesPerFrame
	}

	if !m.illegalReported {
		if _, halted := m.cpu.IllegalOpcode(); halted {
			m.illegalReported = true
			return ErrIllegalOpcode
		}
	}

	return nil
}

// advanceRTC ticks the cartridge's real-time clock once per elapsed
// second of base-clock time, independent of CGB double-speed mode (the
// RTC free-runs off the same oscillator regardless of CPU speed).
func (m *Machine) advanceRTC(cycles int) {
	m.rtcCycles += cycles
	for m.rtcCycles >= baseClockHz {
		m.rtcCycles -= baseClockHz
		m.cart.TickRTC(1)
	}
}

func (m *Machine) onPPUInterrupt(interrupt addr.Interrupt) {
	if interrupt == addr.VBlankInterrupt && m.VBlank != nil {
		m.VBlank()
	}
	m.bus.RequestInterrupt(interrupt)
}

func (m *Machine) onFrameReady(fb *ppu.FrameBuffer) {
	if m.RGBEncode == nil {
		return
	}
	pixels := fb.Pixels()
	out := make([]uint32, len(pixels))
	for i, rgba := range pixels {
		r := uint8(rgba >> 24)
		g := uint8(rgba >> 16)
		b := uint8(rgba >> 8)
		out[i] = m.RGBEncode(r, g, b)
	}
	m.FrameReady(out, ppu.Width, ppu.Height)
}

// AudioDrain is the host's audio_drain pull interface: it fills dst (an
// interleaved L,R int16 buffer) with len(dst)/2 stereo samples.
func (m *Machine) AudioDrain(dst []int16) {
	m.bus.APU.Drain(dst)
}

// PressKey and ReleaseKey let a host drive input directly instead of
// through InputPoll, useful for frontends that deliver discrete key
// events rather than polling a bitmap every step.
func (m *Machine) PressKey(key joypad.Key)   { m.bus.Joypad.Press(key) }
func (m *Machine) ReleaseKey(key joypad.Key) { m.bus.Joypad.Release(key) }

// CurrentFrame returns the PPU's live framebuffer, for hosts that prefer
// to pull a frame on their own schedule rather than use FrameReady.
func (m *Machine) CurrentFrame() *ppu.FrameBuffer {
	return m.bus.PPU.FrameBuffer()
}
