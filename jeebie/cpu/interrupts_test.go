package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/addr"
)

func TestInterruptHandling(t *testing.T) {
	t.Run("serviceInterrupt dispatches without checking IME", func(t *testing.T) {
		cpu := newTestCPU()
		bus := cpu.bus.(*testBus)

		bus.Write(addr.IF, 0x01)
		bus.Write(addr.IE, 0x01)

		_, dispatched := cpu.serviceInterrupt()
		assert.True(t, dispatched)
		// serviceInterrupt itself doesn't gate on IME; Exec does that by only
		// calling it when c.ime is true.
		assert.Equal(t, uint16(0x40), cpu.pc)
	})

	t.Run("EI enables interrupts with delay", func(t *testing.T) {
		cpu := newTestCPU()

		opcode0xFB(cpu)
		assert.False(t, cpu.ime)
		assert.True(t, cpu.imePending)

		cpu.pc = 0x100
		cpu.Exec()

		assert.True(t, cpu.ime)
		assert.False(t, cpu.imePending)
	})

	t.Run("DI disables interrupts immediately", func(t *testing.T) {
		cpu := newTestCPU()
		cpu.ime = true

		opcode0xF3(cpu)
		assert.False(t, cpu.ime)
	})

	t.Run("interrupt priority order", func(t *testing.T) {
		cpu := newTestCPU()
		bus := cpu.bus.(*testBus)
		cpu.ime = true

		bus.Write(addr.IF, 0x1F)
		bus.Write(addr.IE, 0x1F)

		cpu.serviceInterrupt()

		assert.Equal(t, uint16(0x40), cpu.pc)
		assert.Equal(t, uint8(0x1E), bus.Read(addr.IF))
	})

	t.Run("RETI enables interrupts and returns", func(t *testing.T) {
		cpu := newTestCPU()
		cpu.ime = false
		cpu.sp = 0xFFFE
		cpu.pc = 0x200

		cpu.pushStack(0x150)

		opcode0xD9(cpu)

		assert.True(t, cpu.ime)
		assert.Equal(t, uint16(0x150), cpu.pc)
	})
}

func TestHALTBehavior(t *testing.T) {
	t.Run("HALT with IME=1 and pending interrupt wakes and services it", func(t *testing.T) {
		cpu := newTestCPU()
		bus := cpu.bus.(*testBus)
		cpu.ime = true
		cpu.pc = 0x150

		opcode0x76(cpu)
		assert.True(t, cpu.halted)

		bus.Write(addr.IF, 0x01)
		bus.Write(addr.IE, 0x01)

		cpu.Exec()

		assert.False(t, cpu.halted)
		assert.Equal(t, uint16(0x40), cpu.pc)
	})

	t.Run("HALT with IME=0 and pending interrupt triggers the halt bug", func(t *testing.T) {
		cpu := newTestCPU()
		bus := cpu.bus.(*testBus)
		cpu.ime = false
		cpu.pc = 0x100

		bus.Write(addr.IF, 0x01)
		bus.Write(addr.IE, 0x01)

		opcode0x76(cpu)

		assert.False(t, cpu.halted)
		assert.True(t, cpu.haltBug)
	})

	t.Run("HALT with IME=0 and no interrupt stays halted", func(t *testing.T) {
		cpu := newTestCPU()
		bus := cpu.bus.(*testBus)
		cpu.ime = false

		bus.Write(addr.IF, 0x00)
		bus.Write(addr.IE, 0x01)

		opcode0x76(cpu)

		assert.True(t, cpu.halted)
		assert.False(t, cpu.haltBug)
	})
}

func TestInterruptTiming(t *testing.T) {
	t.Run("interrupt dispatch takes 20 cycles", func(t *testing.T) {
		cpu := newTestCPU()
		bus := cpu.bus.(*testBus)
		cpu.ime = true

		bus.Write(addr.IF, 0x01)
		bus.Write(addr.IE, 0x01)

		startTicks := bus.ticks
		cycles, dispatched := cpu.serviceInterrupt()

		assert.True(t, dispatched)
		assert.Equal(t, 20, cycles)
		assert.Equal(t, 20, bus.ticks-startTicks)
	})
}

func TestIllegalOpcode(t *testing.T) {
	cpu := newTestCPU()
	cpu.ime = true

	cycles := opcode0xD3(cpu)

	op, halted := cpu.IllegalOpcode()
	assert.Equal(t, uint8(0xD3), op)
	assert.True(t, halted)
	assert.True(t, cpu.halted)
	assert.False(t, cpu.ime)
	assert.Equal(t, 4, cycles)
}
