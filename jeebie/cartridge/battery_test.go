package cartridge

import (
	"testing"
	"time"
)

func TestBattery_RoundTripsRAM(t *testing.T) {
	rom := makeHeaderROM(0x03, "GAME") // MBC1+battery
	rom[ramSizeAddress] = 0x02         // 1 ram bank

	c, err := New(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.mbc.Write(0x0000, 0x0A)
	c.mbc.Write(0xA000, 0x55)

	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	data := c.SaveBattery(now)

	c2, _ := New(rom)
	c2.mbc.Write(0x0000, 0x0A)
	stale, err := c2.LoadBattery(data, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stale {
		t.Errorf("should not report stale clock")
	}
	if got := c2.mbc.Read(0xA000); got != 0x55 {
		t.Errorf("restored ram = %#x, want 0x55", got)
	}
}

func TestBattery_FutureTimestampResetsRTC(t *testing.T) {
	rom := makeHeaderROM(0x10, "GAME") // MBC3+rtc+battery
	c, _ := New(rom)

	future := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	data := c.SaveBattery(future)

	c2, _ := New(rom)
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	stale, err := c2.LoadBattery(data, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stale {
		t.Errorf("expected stale clock to be reported for a future timestamp")
	}
}
