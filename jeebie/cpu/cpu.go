package cpu

import "github.com/valerio/go-jeebie/jeebie/addr"

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// Bus is the CPU's view of the rest of the machine. Every memory access goes
// through it, and Tick is called inline, inside opcode bodies, so the
// PPU/APU/timer/DMA observe cycle deltas at sub-instruction granularity
// rather than once per opcode.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// Tick advances every peripheral by the given number of base cycles.
	Tick(cycles int)
	RequestInterrupt(interrupt addr.Interrupt)
	ReadBit(index uint8, address uint16) bool
	// HDMAActive reports whether an HDMA transfer (general-purpose, or an
	// HBlank chunk) is currently stalling the CPU (CGB only).
	HDMAActive() bool
}

// InterruptSource lists the five interrupt lines in fixed priority order
// (index 0 = highest priority).
var interruptSources = [5]struct {
	mask   uint8
	vector uint16
}{
	{0x01, 0x40}, // VBlank
	{0x02, 0x48}, // LCD STAT
	{0x04, 0x50}, // Timer
	{0x08, 0x58}, // Serial
	{0x10, 0x60}, // Joypad
}

// CPU holds the Z80-family (Sharp LR35902) register file and execution state.
type CPU struct {
	bus Bus

	a, b, c, d, e, h, l uint8
	f                   uint8 // low nibble always zero
	sp, pc              uint16

	ime        bool // interrupt master enable
	imePending bool // EI takes effect after the next instruction

	halted  bool
	stopped bool

	// haltBug reproduces the DMG "halt bug": HALT with IME=0 and a pending
	// interrupt fails to increment PC on the following fetch.
	haltBug bool

	doubleSpeed bool // CGB only; does not change opcode cycle counts, only wall time
	model       Model

	currentOpcode uint16

	// diDelayPending is carried through save states, but no instruction
	// sets it: DI clears IME immediately on every model, CGB included.
	diDelayPending bool

	// illegalHalted/illegalOp record that the CPU hit one of the 11
	// undefined opcodes and stopped; the host (Machine) surfaces this as
	// a typed error rather than the CPU returning one directly.
	illegalHalted bool
	illegalOp     uint8
}

// Model distinguishes CPU quirks that differ between hardware revisions.
type Model uint8

const (
	ModelDMG Model = iota
	ModelCGB
	ModelSGB
)

// New returns a CPU wired to the given bus, in the post-boot-ROM power-on state.
func New(bus Bus, model Model) *CPU {
	c := &CPU{bus: bus, model: model}
	c.Reset()
	return c
}

// Reset restores register values to the documented post-bootstrap state.
func (c *CPU) Reset() {
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.imePending = false
	c.halted = false
	c.stopped = false
	c.haltBug = false
	c.doubleSpeed = false
}

func (c *CPU) GetPC() uint16 { return c.pc }
func (c *CPU) SetPC(pc uint16) { c.pc = pc }
func (c *CPU) GetSP() uint16 { return c.sp }
func (c *CPU) IsHalted() bool { return c.halted }
func (c *CPU) IsStopped() bool { return c.stopped }
func (c *CPU) IME() bool { return c.ime }
func (c *CPU) DoubleSpeed() bool { return c.doubleSpeed }

// IllegalOpcode reports whether the CPU halted after executing one of the
// 11 undefined Sharp LR35902 opcodes, and which one.
func (c *CPU) IllegalOpcode() (uint8, bool) { return c.illegalOp, c.illegalHalted }

// illegalOpcode reproduces real hardware behavior for an undefined opcode:
// the CPU locks up (modelled here as a halt with interrupts disabled)
// rather than executing garbage.
func (c *CPU) illegalOpcode(op uint8) int {
	c.illegalOp = op
	c.illegalHalted = true
	c.ime = false
	c.halted = true
	return 4
}

// ToggleDoubleSpeed flips the CGB double-speed latch; called by stop when
// STOP is executed on CGB with KEY1 bit 0 set.
func (c *CPU) ToggleDoubleSpeed() {
	c.doubleSpeed = !c.doubleSpeed
	c.stopped = false
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

// Exec runs a single fetch-decode-execute step (or four idle cycles while
// halted/stopped or stalled by HDMA) and returns the number of base cycles
// consumed.
func (c *CPU) Exec() int {
	if c.stopped {
		c.bus.Tick(4)
		return 4
	}

	if c.bus.HDMAActive() {
		c.bus.Tick(4)
		return 4
	}

	if c.halted {
		if c.pendingInterrupt() {
			c.halted = false
		} else {
			c.bus.Tick(4)
			return 4
		}
	}

	// An EI from the previous step enables IME only after the instruction
	// that follows it has run, so no interrupt is serviced in between.
	enableIME := c.imePending

	if c.ime {
		if cycles, dispatched := c.serviceInterrupt(); dispatched {
			return cycles
		}
	}

	opcode := uint16(c.fetch())

	if c.haltBug {
		// The halt bug re-reads the same byte as the next opcode instead of
		// advancing PC, because the increment that should have happened
		// during HALT's interrupt check was skipped.
		c.pc--
		c.haltBug = false
	}

	if opcode == 0xCB {
		opcode = 0xCB00 | uint16(c.fetch())
	}

	c.currentOpcode = opcode
	cycles := decode(opcode)(c)
	if enableIME && c.imePending {
		c.imePending = false
		c.ime = true
	}
	return cycles
}

func (c *CPU) pendingInterrupt() bool {
	ie := c.bus.Read(addr.IE)
	iflag := c.bus.Read(addr.IF)
	return (ie & iflag & 0x1F) != 0
}

// serviceInterrupt dispatches the highest-priority pending, enabled
// interrupt. Returns (cycles, true) if one was dispatched.
func (c *CPU) serviceInterrupt() (int, bool) {
	ie := c.bus.Read(addr.IE)
	iflag := c.bus.Read(addr.IF)
	pending := ie & iflag & 0x1F
	if pending == 0 {
		return 0, false
	}

	for _, src := range interruptSources {
		if pending&src.mask == 0 {
			continue
		}

		c.ime = false
		c.bus.Write(addr.IF, iflag&^src.mask)
		c.bus.Tick(8)
		c.pushStack(c.pc)
		c.bus.Tick(8)
		c.pc = src.vector
		c.bus.Tick(4)
		return 20, true
	}

	return 0, false
}

func (c *CPU) fetch() uint8 {
	value := c.bus.Read(c.pc)
	c.bus.Tick(4)
	c.pc++
	return value
}

// halt puts the CPU into HALT state, reproducing the DMG halt bug when IME
// is clear and an interrupt is already pending.
func (c *CPU) halt() {
	if !c.ime && c.pendingInterrupt() && c.model == ModelDMG {
		c.haltBug = true
	} else {
		c.halted = true
	}
}

// stop halts the CPU and the PPU. On CGB, if KEY1 bit 0 (the speed-switch
// request) is set, it instead performs the double-speed toggle and resumes.
func (c *CPU) stop(key1 uint8) {
	if c.model == ModelCGB && key1&0x01 != 0 {
		c.ToggleDoubleSpeed()
		return
	}
	c.stopped = true
}
