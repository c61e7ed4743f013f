package cpu

import "testing"

func TestCPU_MarshalUnmarshalRoundTrip(t *testing.T) {
	c := newTestCPU()
	c.a, c.f, c.b, c.c = 0x11, 0xB0, 0x22, 0x33
	c.d, c.e, c.h, c.l = 0x44, 0x55, 0x66, 0x77
	c.sp = 0xFFFE
	c.SetPC(0x0150)
	c.ime = true
	c.halted = true
	c.doubleSpeed = true
	c.illegalHalted = true
	c.illegalOp = 0xD3

	data := c.Marshal()
	if len(data) != 16 {
		t.Fatalf("Marshal length = %d, want 16", len(data))
	}

	restored := newTestCPU()
	restored.Unmarshal(data)

	if restored.a != c.a || restored.b != c.b || restored.c != c.c {
		t.Errorf("registers not restored: a=%#x b=%#x c=%#x", restored.a, restored.b, restored.c)
	}
	if restored.f != c.f {
		t.Errorf("f = %#x, want %#x", restored.f, c.f)
	}
	if restored.sp != c.sp || restored.GetPC() != c.GetPC() {
		t.Errorf("sp/pc not restored: sp=%#x pc=%#x", restored.sp, restored.GetPC())
	}
	if restored.ime != c.ime || restored.halted != c.halted || restored.doubleSpeed != c.doubleSpeed {
		t.Errorf("flags not restored: ime=%v halted=%v doubleSpeed=%v", restored.ime, restored.halted, restored.doubleSpeed)
	}
	if restored.illegalHalted != c.illegalHalted || restored.illegalOp != c.illegalOp {
		t.Errorf("illegal opcode state not restored: halted=%v op=%#x", restored.illegalHalted, restored.illegalOp)
	}
}

func TestCPU_UnmarshalTruncatedBufferLeavesRestUntouched(t *testing.T) {
	c := newTestCPU()
	c.SetPC(0x1234)
	c.sp = 0xCAFE

	c.Unmarshal([]byte{0x99}) // only A register

	if c.a != 0x99 {
		t.Errorf("a = %#x, want 0x99", c.a)
	}
	if c.GetPC() != 0x1234 || c.sp != 0xCAFE {
		t.Errorf("pc/sp should be untouched by short buffer, got pc=%#x sp=%#x", c.GetPC(), c.sp)
	}
}
