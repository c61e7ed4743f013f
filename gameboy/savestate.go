package gameboy

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/valerio/go-jeebie/jeebie/savestate"
)

var _ savestate.Source = (*Machine)(nil)

// MarshalSection implements savestate.Source, fanning each named section
// out to whichever subsystem owns that state.
func (m *Machine) MarshalSection(name string) ([]byte, bool) {
	switch name {
	case "core_state":
		return append(m.cpu.Marshal(), m.bus.MarshalCore()...), true
	case "hdma":
		return m.bus.MarshalHDMA(), true
	case "mbc":
		return m.cart.MBCStateBytes(), true
	case "hram":
		return m.bus.HRAMBytes(), true
	case "timing":
		return m.bus.Timer.Marshal(), true
	case "apu":
		return m.bus.APU.MarshalAPU(), true
	case "rtc":
		return m.cart.RTCBytes(), true
	case "video":
		return m.bus.PPU.MarshalVideo(), true
	case "mbc_ram":
		return m.cart.RAMBytes(), true
	case "ram":
		return m.bus.WRAMBytes(), true
	case "vram":
		// Already carried inside the video section (both VRAM banks
		// precede its register tail); this blob is written empty and
		// ignored on load rather than duplicating 16KB per save state.
		return nil, true
	default:
		return nil, false
	}
}

const cpuStateSize = 16 // matches cpu.CPU.Marshal's fixed buffer length

// UnmarshalSection implements savestate.Source. Every call is tolerant of
// a short buffer per the section's own Unmarshal/Load contract.
func (m *Machine) UnmarshalSection(name string, data []byte) error {
	switch name {
	case "core_state":
		n := cpuStateSize
		if len(data) < n {
			n = len(data)
		}
		m.cpu.Unmarshal(data[:n])
		if len(data) > cpuStateSize {
			m.bus.UnmarshalCore(data[cpuStateSize:])
		}
	case "hdma":
		m.bus.UnmarshalHDMA(data)
	case "mbc":
		m.cart.LoadMBCStateBytes(data)
	case "hram":
		m.bus.LoadHRAMBytes(data)
	case "timing":
		m.bus.Timer.Unmarshal(data)
	case "apu":
		m.bus.APU.UnmarshalAPU(data)
	case "rtc":
		m.cart.LoadRTCBytes(data)
	case "video":
		m.bus.PPU.UnmarshalVideo(data)
	case "mbc_ram":
		m.cart.LoadRAMBytes(data)
	case "ram":
		m.bus.LoadWRAMBytes(data)
	case "vram":
		// subsumed by video; nothing to do.
	}
	return nil
}

// SaveState serializes the Machine's full runtime state into an opaque,
// versioned blob per the savestate package's format.
func (m *Machine) SaveState() ([]byte, error) {
	return savestate.Save(m)
}

// LoadState restores state previously produced by SaveState. The magic
// tag, version, and cartridge RAM size are validated before anything is
// applied: a mismatch returns ErrSaveStateMismatch and leaves the Machine
// untouched.
func (m *Machine) LoadState(data []byte) error {
	if err := m.checkRAMSize(data); err != nil {
		return err
	}
	if err := savestate.Load(data, m); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveStateMismatch, err)
	}
	return nil
}

// checkRAMSize peeks at the save state's mbc_ram section length without
// applying anything, rejecting a save state made against a cartridge with
// a different external RAM size before any section is touched.
func (m *Machine) checkRAMSize(data []byte) error {
	r := bytes.NewReader(data)

	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveStateMismatch, err)
	}
	if magic != savestate.Magic {
		return fmt.Errorf("%w: bad magic", ErrSaveStateMismatch)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveStateMismatch, err)
	}
	if version != savestate.Version {
		return fmt.Errorf("%w: unsupported version %d", ErrSaveStateMismatch, version)
	}

	names := []string{"core_state", "hdma", "mbc", "hram", "timing", "apu", "rtc", "video"}
	for _, n := range names {
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return fmt.Errorf("%w: truncated before %q", ErrSaveStateMismatch, n)
		}
		if _, err := r.Seek(int64(length), 1); err != nil {
			return fmt.Errorf("%w: truncated section %q", ErrSaveStateMismatch, n)
		}
	}

	var mbcRAMLen uint32
	if err := binary.Read(r, binary.LittleEndian, &mbcRAMLen); err != nil {
		return fmt.Errorf("%w: truncated before mbc_ram", ErrSaveStateMismatch)
	}
	if int(mbcRAMLen) != len(m.cart.RAMBytes()) {
		return fmt.Errorf("%w: cartridge ram size %d, save state has %d", ErrSaveStateMismatch, len(m.cart.RAMBytes()), mbcRAMLen)
	}

	return nil
}
