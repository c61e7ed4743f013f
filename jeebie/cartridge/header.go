// Package cartridge parses ROM headers, wires up the appropriate memory
// bank controller, and handles battery-backed save RAM and RTC
// persistence.
package cartridge

import (
	"strings"

	"github.com/valerio/go-jeebie/jeebie/bit"
)

const (
	entryPointAddress       = 0x100
	titleAddress            = 0x134
	titleLength             = 16
	cgbFlagAddress          = 0x143
	sgbFlagAddress          = 0x146
	cartridgeTypeAddress    = 0x147
	romSizeAddress          = 0x148
	ramSizeAddress          = 0x149
	versionNumberAddress    = 0x14C
	headerChecksumAddress   = 0x14D
	globalChecksumAddress   = 0x14E
)

// MBCKind identifies the memory bank controller family a cartridge uses.
type MBCKind int

const (
	KindNoMBC MBCKind = iota
	KindMBC1
	KindMBC1Multi
	KindMBC2
	KindMBC3
	KindMBC5
)

// Header is the parsed, typed contents of a ROM's 0x100-0x14F header block.
type Header struct {
	Title        string
	CGBSupport   bool
	SGBSupport   bool
	Kind         MBCKind
	HasBattery   bool
	HasRTC       bool
	HasRumble    bool
	ROMBankCount int
	RAMBankCount int

	HeaderChecksum uint8
	GlobalChecksum uint16
	Version        uint8
}

// ParseHeader extracts a Header from a ROM image. Bounds are not validated
// beyond what is needed to read the header itself; a short but header-sized
// buffer is assumed (callers should reject anything under 0x150 bytes
// before calling this).
func ParseHeader(rom []byte) Header {
	titleBytes := rom[titleAddress : titleAddress+titleLength]

	h := Header{
		Title:          cleanTitle(titleBytes),
		CGBSupport:     rom[cgbFlagAddress]&0x80 != 0,
		SGBSupport:     rom[sgbFlagAddress] == 0x03,
		HeaderChecksum: rom[headerChecksumAddress],
		GlobalChecksum: bit.Combine(rom[globalChecksumAddress], rom[globalChecksumAddress+1]),
		Version:        rom[versionNumberAddress],
		ROMBankCount:   romBankCount(rom[romSizeAddress]),
		RAMBankCount:   ramBankCount(rom[ramSizeAddress]),
	}

	h.Kind, h.HasBattery, h.HasRTC, h.HasRumble = classifyCartType(rom[cartridgeTypeAddress])

	return h
}

// classifyCartType maps the raw 0x147 cartridge-type byte to an MBC kind
// plus the battery/RTC/rumble feature flags real hardware derives from it.
func classifyCartType(t uint8) (kind MBCKind, battery, rtc, rumble bool) {
	switch t {
	case 0x00:
		return KindNoMBC, false, false, false
	case 0x01:
		return KindMBC1, false, false, false
	case 0x02:
		return KindMBC1, false, false, false
	case 0x03:
		return KindMBC1, true, false, false
	case 0x05:
		return KindMBC2, false, false, false
	case 0x06:
		return KindMBC2, true, false, false
	case 0x0F:
		return KindMBC3, true, true, false
	case 0x10:
		return KindMBC3, true, true, false
	case 0x11:
		return KindMBC3, false, false, false
	case 0x12:
		return KindMBC3, false, false, false
	case 0x13:
		return KindMBC3, true, false, false
	case 0x19:
		return KindMBC5, false, false, false
	case 0x1A:
		return KindMBC5, false, false, false
	case 0x1B:
		return KindMBC5, true, false, false
	case 0x1C:
		return KindMBC5, false, false, true
	case 0x1D:
		return KindMBC5, false, false, true
	case 0x1E:
		return KindMBC5, true, false, true
	default:
		return KindNoMBC, false, false, false
	}
}

func romBankCount(sizeByte uint8) int {
	if sizeByte > 0x08 {
		return 2
	}
	return 2 << sizeByte
}

func ramBankCount(sizeByte uint8) int {
	switch sizeByte {
	case 0x00:
		return 0
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// cleanTitle converts the raw title bytes into a printable string: nulls
// become spaces, non-printable bytes become '?', and the result is
// trimmed. An all-blank title becomes "(Untitled)".
func cleanTitle(raw []byte) string {
	out := make([]byte, len(raw))
	for i, b := range raw {
		switch {
		case b == 0:
			out[i] = ' '
		case b < 0x20 || b > 0x7E:
			out[i] = '?'
		default:
			out[i] = b
		}
	}

	title := strings.TrimSpace(string(out))
	if title == "" {
		return "(Untitled)"
	}
	return title
}

// DetectMulticart reports whether a ROM with an MBC1 cartridge type is
// actually an MBC1M multicart: these carry a second Nintendo logo at
// 0x104 in bank 0x10 (the first bank reachable when only the upper 4
// bits of the 5-bit ROM bank register are decoded), whereas regular MBC1
// ROMs of over 1MB do not.
func DetectMulticart(rom []byte, kind MBCKind) bool {
	if kind != KindMBC1 {
		return false
	}
	if len(rom) < 0x140000 {
		return false
	}
	const bankSize = 0x4000
	logoOffset := 0x10*bankSize + entryPointAddress + 4
	if logoOffset+0x30 > len(rom) {
		return false
	}
	matches := 0
	for i := 0; i < 0x30; i++ {
		if rom[logoOffset+i] == rom[entryPointAddress+4+i] {
			matches++
		}
	}
	return matches > 0x20
}
