package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrLoadFailed is returned when a ROM image is too short to contain a
// valid header. A cartridge-type byte that the header parser does not
// recognise is not rejected: the cartridge is loaded without an MBC.
var ErrLoadFailed = errors.New("cartridge: load failed")

// Cartridge owns the ROM image, its parsed header, and the wired-up MBC
// that handles all banking and external RAM/RTC access.
type Cartridge struct {
	Header Header
	mbc    MBC
}

// New parses rom and constructs the appropriate MBC for its header.
func New(rom []byte) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("%w: rom too short (%d bytes)", ErrLoadFailed, len(rom))
	}

	header := ParseHeader(rom)
	if header.Kind == KindMBC1 && DetectMulticart(rom, header.Kind) {
		header.Kind = KindMBC1Multi
	}

	mbc, err := buildMBC(rom, header)
	if err != nil {
		return nil, err
	}

	return &Cartridge{Header: header, mbc: mbc}, nil
}

func buildMBC(rom []byte, h Header) (MBC, error) {
	switch h.Kind {
	case KindNoMBC:
		return NewNoMBC(rom), nil
	case KindMBC1:
		return NewMBC1(rom, uint8(h.RAMBankCount), false), nil
	case KindMBC1Multi:
		return NewMBC1(rom, uint8(h.RAMBankCount), true), nil
	case KindMBC2:
		return NewMBC2(rom), nil
	case KindMBC3:
		return NewMBC3(rom, uint8(h.RAMBankCount), h.HasRTC), nil
	case KindMBC5:
		return NewMBC5(rom, uint8(h.RAMBankCount), h.HasRumble), nil
	default:
		return nil, fmt.Errorf("%w: unknown mbc kind %d", ErrLoadFailed, h.Kind)
	}
}

// Read dispatches to the underlying MBC.
func (c *Cartridge) Read(addr uint16) uint8 { return c.mbc.Read(addr) }

// Write dispatches to the underlying MBC.
func (c *Cartridge) Write(addr uint16, value uint8) { c.mbc.Write(addr, value) }

// TickRTC advances the cartridge's real-time clock, if it has one.
func (c *Cartridge) TickRTC(seconds int) {
	if m3, ok := c.mbc.(*MBC3); ok {
		m3.Tick(seconds)
	}
}

const batteryMagic = "JBAT"

// minBatteryTimestamp rejects timestamps predating the Game Boy Color's
// 1998 launch window as obviously corrupt save data rather than a
// legitimate elapsed-time gap.
var minBatteryTimestamp = time.Date(1997, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

// SaveBattery serializes external RAM (and RTC state, for cartridges that
// have one) plus the current UNIX timestamp, for persistence to a
// battery-save file alongside the ROM.
func (c *Cartridge) SaveBattery(now time.Time) []byte {
	ram := c.ramBytes()

	buf := make([]byte, 0, len(batteryMagic)+4+len(ram)+10+8)
	buf = append(buf, batteryMagic...)

	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(ram)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, ram...)

	if m3, ok := c.mbc.(*MBC3); ok && m3.hasRTC {
		rtc := m3.rtc.Marshal()
		buf = append(buf, rtc[:]...)
	}

	var tsBytes [8]byte
	binary.LittleEndian.PutUint64(tsBytes[:], uint64(now.Unix()))
	buf = append(buf, tsBytes[:]...)

	return buf
}

// LoadBattery restores external RAM (and RTC state) from a battery file
// previously produced by SaveBattery. If the embedded timestamp is in the
// future or predates 1997-01-01, the RTC is reset and hadStaleClock is
// returned true so the caller can surface a "battery dead" hint to the host.
func (c *Cartridge) LoadBattery(data []byte, now time.Time) (hadStaleClock bool, err error) {
	if len(data) < len(batteryMagic)+4 {
		return false, fmt.Errorf("%w: battery file too short", ErrLoadFailed)
	}
	if string(data[:len(batteryMagic)]) != batteryMagic {
		return false, fmt.Errorf("%w: bad battery file magic", ErrLoadFailed)
	}
	offset := len(batteryMagic)

	ramLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if offset+ramLen > len(data) {
		return false, fmt.Errorf("%w: battery file truncated", ErrLoadFailed)
	}
	c.loadRAMBytes(data[offset : offset+ramLen])
	offset += ramLen

	m3, hasRTC := c.mbc.(*MBC3)
	hasRTC = hasRTC && m3.hasRTC
	if hasRTC {
		if offset+10 > len(data) {
			return false, fmt.Errorf("%w: battery file missing rtc section", ErrLoadFailed)
		}
		var rtcBytes [10]uint8
		copy(rtcBytes[:], data[offset:offset+10])
		m3.rtc.Unmarshal(rtcBytes)
		offset += 10
	}

	if offset+8 > len(data) {
		return false, fmt.Errorf("%w: battery file missing timestamp", ErrLoadFailed)
	}
	savedUnix := int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	if hasRTC {
		if savedUnix < minBatteryTimestamp || savedUnix > now.Unix() {
			m3.rtc.Reset()
			return true, nil
		}
		elapsed := int(now.Unix() - savedUnix)
		m3.Tick(elapsed)
	}

	return false, nil
}

func (c *Cartridge) ramBytes() []byte {
	switch m := c.mbc.(type) {
	case *MBC1:
		return append([]byte(nil), m.ram...)
	case *MBC2:
		return append([]byte(nil), m.ram[:]...)
	case *MBC3:
		return append([]byte(nil), m.ram...)
	case *MBC5:
		return append([]byte(nil), m.ram...)
	default:
		return nil
	}
}

func (c *Cartridge) loadRAMBytes(data []byte) {
	switch m := c.mbc.(type) {
	case *MBC1:
		copy(m.ram, data)
	case *MBC2:
		copy(m.ram[:], data)
	case *MBC3:
		copy(m.ram, data)
	case *MBC5:
		copy(m.ram, data)
	}
}

// RAMBytes returns a copy of the cartridge's external RAM, or nil if it
// has none. Used by the savestate package's mbc_ram section.
func (c *Cartridge) RAMBytes() []byte { return c.ramBytes() }

// LoadRAMBytes restores external RAM from a savestate's mbc_ram section.
// Tolerant of a size mismatch: it copies min(len(data), current) bytes.
func (c *Cartridge) LoadRAMBytes(data []byte) { c.loadRAMBytes(data) }

// RTCBytes returns the cartridge's marshaled RTC state, or nil if it has
// no real-time clock. Used by the savestate package's rtc section.
func (c *Cartridge) RTCBytes() []byte {
	m3, ok := c.mbc.(*MBC3)
	if !ok || !m3.hasRTC {
		return nil
	}
	rtc := m3.rtc.Marshal()
	return rtc[:]
}

// LoadRTCBytes restores RTC state from a savestate's rtc section. A no-op
// if the cartridge has no real-time clock or data is short.
func (c *Cartridge) LoadRTCBytes(data []byte) {
	m3, ok := c.mbc.(*MBC3)
	if !ok || !m3.hasRTC || len(data) < 10 {
		return
	}
	var buf [10]uint8
	copy(buf[:], data[:10])
	m3.rtc.Unmarshal(buf)
}
