package sgb

import "testing"

func writeBit(d *PacketDecoder, one bool) {
	d.ObserveP1Write(0x30) // pulse ready
	if one {
		d.ObserveP1Write(0x10) // one
	} else {
		d.ObserveP1Write(0x20) // zero
	}
}

func writeStop(d *PacketDecoder) {
	d.ObserveP1Write(0x30)
	d.ObserveP1Write(0x20)
}

func TestPacketDecoderAssemblesSinglePacketCommand(t *testing.T) {
	var got []uint8
	d := New()
	d.Commands = func(cmd []uint8) { got = append([]uint8(nil), cmd...) }

	d.ObserveP1Write(0x30) // pulse ready (P1 idle)
	d.ObserveP1Write(0x00) // start/reset, latches readyForWrite

	// command[0] = 0x08 -> id=1 (PAL23), size field = 0 -> 1 packet
	first := uint8(0x08)
	for i := 0; i < 8; i++ {
		writeBit(d, first&(1<<uint(i)) != 0)
	}
	for i := 0; i < 15*8; i++ {
		writeBit(d, false)
	}
	writeStop(d)

	if got == nil {
		t.Fatal("expected a completed command")
	}
	if len(got) != PacketSize {
		t.Fatalf("expected %d bytes, got %d", PacketSize, len(got))
	}
	if got[0] != first {
		t.Fatalf("expected first byte 0x%02x, got 0x%02x", first, got[0])
	}
}

func TestPacketDecoderIgnoresBitsWithoutPulse(t *testing.T) {
	called := false
	d := New()
	d.Commands = func([]uint8) { called = true }

	d.ObserveP1Write(0x10) // "one" with no preceding pulse: ignored
	if called {
		t.Fatal("should not assemble a command without a pulse phase")
	}
}

func TestDecoderMltReqUpdatesPlayerCount(t *testing.T) {
	dec := NewDecoder()
	dec.packets.SetPlayerCount(1) // simulate a decoded MLT_REQ for 2 players
	if dec.CurrentPlayer() != 1 {
		t.Fatalf("expected player index 1 (2 players), got %d", dec.CurrentPlayer())
	}
}
