// Package bus implements the memory bus: address decode and gating for
// every region (ROM/cartridge, VRAM, external RAM, work RAM, OAM, I/O,
// HRAM), the OAM DMA and CGB HDMA engines, and the scheduler that fans
// CPU cycle-advances out to the timer, APU, and PPU in a fixed order.
package bus

import (
	"log/slog"

	"github.com/valerio/go-jeebie/jeebie/addr"
	"github.com/valerio/go-jeebie/jeebie/apu"
	"github.com/valerio/go-jeebie/jeebie/bit"
	"github.com/valerio/go-jeebie/jeebie/cartridge"
	"github.com/valerio/go-jeebie/jeebie/cpu"
	"github.com/valerio/go-jeebie/jeebie/joypad"
	"github.com/valerio/go-jeebie/jeebie/ppu"
	"github.com/valerio/go-jeebie/jeebie/sgb"
	"github.com/valerio/go-jeebie/jeebie/timer"
)

// SerialPort is the minimal interface for a device connected to SB/SC.
// Implementations must only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// Model distinguishes DMG from CGB bus behavior: WRAM/VRAM bank counts,
// double-speed, and the CGB-only register block.
type Model int

const (
	ModelDMG Model = iota
	ModelCGB
)

var _ cpu.Bus = (*Bus)(nil)

// Bus wires every subsystem together and implements cpu.Bus.
type Bus struct {
	model Model

	Cart   *cartridge.Cartridge
	Timer  *timer.Timer
	Joypad *joypad.Joypad
	PPU    *ppu.PPU
	APU    *apu.APU
	Serial SerialPort
	SGB    *sgb.Decoder // nil unless the Machine runs as ModelSGB

	wram     [8][0x1000]uint8 // bank 0 fixed, 1-7 switchable on CGB
	wramBank uint8            // 1-7; DMG always behaves as bank 1
	hram     [127]uint8
	ie       uint8
	ifReg    uint8

	doubleSpeed    bool
	speedSwitchReq bool

	dma  oamDMA
	hdma hdmaEngine

	bgPalette  [64]uint8
	objPalette [64]uint8
	bgpIndex   uint8
	objpIndex  uint8

	logger *slog.Logger
}

// New creates a bus around the given cartridge with freshly constructed
// subsystems.
func New(model Model, cart *cartridge.Cartridge, serialPort SerialPort) *Bus {
	b := &Bus{
		model:    model,
		Cart:     cart,
		Timer:    timer.New(),
		Joypad:   joypad.New(),
		PPU:      ppu.New(ppuModel(model)),
		APU:      apu.New(apuModel(model), 44100),
		Serial:   serialPort,
		wramBank: 1,
		logger:   slog.Default(),
	}
	b.Timer.RequestInterrupt = b.RequestInterrupt
	b.Joypad.RequestInterrupt = b.RequestInterrupt
	b.PPU.RequestInterrupt = b.RequestInterrupt
	b.PPU.HBlankEntered = b.onHBlankEntered
	return b
}

func ppuModel(m Model) ppu.Model {
	if m == ModelCGB {
		return ppu.ModelCGB
	}
	return ppu.ModelDMG
}

func apuModel(m Model) apu.Model {
	if m == ModelCGB {
		return apu.ModelCGB
	}
	return apu.ModelDMG
}

// RequestInterrupt sets the corresponding IF bit.
func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.ifReg = bit.Set(ifBit(interrupt), b.ifReg)
}

func ifBit(i addr.Interrupt) uint8 {
	switch i {
	case addr.VBlankInterrupt:
		return 0
	case addr.LCDSTATInterrupt:
		return 1
	case addr.TimerInterrupt:
		return 2
	case addr.SerialInterrupt:
		return 3
	case addr.JoypadInterrupt:
		return 4
	default:
		return 0
	}
}

// ReadBit reads a single bit of a memory-mapped byte.
func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, b.Read(address))
}

// HDMAActive reports whether the CPU is currently stalled by an HDMA
// transfer: for the whole duration of a general-purpose transfer, or for
// one chunk's worth of cycles at the start of each HBlank period during
// an HBlank-mode transfer.
func (b *Bus) HDMAActive() bool {
	if b.hdma.active && !b.hdma.hblankMode {
		return true
	}
	return b.hdma.chunkCycles > 0
}

// Tick fans a CPU cycle-advance out to every peripheral in a fixed order:
// timer, APU, PPU, OAM DMA, HDMA.
func (b *Bus) Tick(cycles int) {
	b.Timer.Tick(cycles)
	b.APU.Tick(cycles)
	b.PPU.Tick(cycles)
	b.tickOAMDMA(cycles)
	b.tickHDMA(cycles)
	if b.Serial != nil {
		b.Serial.Tick(cycles)
	}
}

func (b *Bus) onHBlankEntered() {
	b.startHDMAChunkIfPending()
}
