package cartridge

import "testing"

func makeHeaderROM(cartType uint8, title string) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[titleAddress:titleAddress+titleLength], title)
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = 0x00
	rom[ramSizeAddress] = 0x00
	return rom
}

func TestParseHeader_TitleCleanup(t *testing.T) {
	rom := makeHeaderROM(0x00, "TETRIS")

	h := ParseHeader(rom)

	if h.Title != "TETRIS" {
		t.Errorf("title = %q, want TETRIS", h.Title)
	}
}

func TestParseHeader_EmptyTitleBecomesUntitled(t *testing.T) {
	rom := makeHeaderROM(0x00, "")

	h := ParseHeader(rom)

	if h.Title != "(Untitled)" {
		t.Errorf("title = %q, want (Untitled)", h.Title)
	}
}

func TestParseHeader_ClassifiesMBC1WithBattery(t *testing.T) {
	rom := makeHeaderROM(0x03, "GAME")

	h := ParseHeader(rom)

	if h.Kind != KindMBC1 || !h.HasBattery {
		t.Errorf("kind=%v battery=%v, want MBC1+battery", h.Kind, h.HasBattery)
	}
}

func TestParseHeader_ClassifiesMBC3WithRTC(t *testing.T) {
	rom := makeHeaderROM(0x10, "GAME")

	h := ParseHeader(rom)

	if h.Kind != KindMBC3 || !h.HasRTC || !h.HasBattery {
		t.Errorf("kind=%v rtc=%v battery=%v, want MBC3+rtc+battery", h.Kind, h.HasRTC, h.HasBattery)
	}
}

func TestParseHeader_ClassifiesMBC5WithRumble(t *testing.T) {
	rom := makeHeaderROM(0x1C, "GAME")

	h := ParseHeader(rom)

	if h.Kind != KindMBC5 || !h.HasRumble {
		t.Errorf("kind=%v rumble=%v, want MBC5+rumble", h.Kind, h.HasRumble)
	}
}

func TestNew_RejectsShortROM(t *testing.T) {
	_, err := New(make([]byte, 0x10))

	if err == nil {
		t.Fatalf("expected error for short rom")
	}
}

func TestNew_BuildsNoMBCCartridge(t *testing.T) {
	rom := makeHeaderROM(0x00, "GAME")

	c, err := New(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Header.Kind != KindNoMBC {
		t.Errorf("kind = %v, want NoMBC", c.Header.Kind)
	}
}
