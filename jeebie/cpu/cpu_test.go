package cpu

import "github.com/valerio/go-jeebie/jeebie/addr"

// testBus is a flat 64KB address space used to exercise the CPU in
// isolation, without depending on the real bus/MMU address decoding.
type testBus struct {
	mem        [0x10000]uint8
	ticks      int
	interrupts []addr.Interrupt
	hdmaActive bool
}

func newTestBus() *testBus {
	return &testBus{}
}

func (b *testBus) Read(address uint16) uint8 { return b.mem[address] }

func (b *testBus) Write(address uint16, value uint8) { b.mem[address] = value }

func (b *testBus) Tick(cycles int) { b.ticks += cycles }

func (b *testBus) RequestInterrupt(interrupt addr.Interrupt) {
	b.interrupts = append(b.interrupts, interrupt)
	b.mem[addr.IF] |= uint8(interrupt)
}

func (b *testBus) ReadBit(index uint8, address uint16) bool {
	return b.mem[address]&(1<<index) != 0
}

func (b *testBus) HDMAActive() bool { return b.hdmaActive }

func newTestCPU() *CPU {
	return New(newTestBus(), ModelDMG)
}
