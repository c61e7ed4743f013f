package sgb

// CommandID identifies an SGB command by its 5-bit opcode (command[0]>>3).
type CommandID uint8

const (
	CommandPAL01   CommandID = 0x00
	CommandPAL23   CommandID = 0x01
	CommandPAL03   CommandID = 0x02
	CommandPAL12   CommandID = 0x03
	CommandPALSet  CommandID = 0x0A
	CommandPALTrn  CommandID = 0x0B
	CommandDataSnd CommandID = 0x0F
	CommandMltReq  CommandID = 0x11
	CommandChrTrn  CommandID = 0x13
	CommandPctTrn  CommandID = 0x14
	CommandMaskEn  CommandID = 0x17
)

// MaskMode is the MASK_EN command's requested screen-freeze behavior.
type MaskMode uint8

const (
	MaskDisabled MaskMode = iota
	MaskFreeze
	MaskBlack
	MaskColor0
)

// Command is a decoded, dispatch-ready SGB command built from the raw
// bytes a PacketDecoder assembles.
type Command struct {
	ID  CommandID
	Raw []uint8
}

// Decoder wraps a PacketDecoder and turns assembled packets into decoded
// Commands, applying the few commands (MLT_REQ, MASK_EN) that affect
// decoding or joypad state directly.
type Decoder struct {
	packets  *PacketDecoder
	Mask     MaskMode
	Commands func(Command)
}

// NewDecoder creates a Decoder with a fresh underlying PacketDecoder.
func NewDecoder() *Decoder {
	d := &Decoder{packets: New(), Commands: func(Command) {}}
	d.packets.Commands = d.onCommand
	return d
}

// ObserveP1Write feeds a joypad-register write through the bit-serial
// protocol; see PacketDecoder.ObserveP1Write.
func (d *Decoder) ObserveP1Write(value uint8) {
	d.packets.ObserveP1Write(value)
}

// CurrentPlayer returns which player's buttons the joypad register
// should currently report.
func (d *Decoder) CurrentPlayer() uint8 {
	return d.packets.CurrentPlayer()
}

func (d *Decoder) onCommand(raw []uint8) {
	if len(raw) == 0 {
		return
	}
	id := CommandID(raw[0] >> 3)
	switch id {
	case CommandMltReq:
		if len(raw) > 1 {
			d.packets.SetPlayerCount(raw[1])
		}
	case CommandMaskEn:
		if len(raw) > 1 {
			d.Mask = MaskMode(raw[1] & 3)
		}
	}
	d.Commands(Command{ID: id, Raw: raw})
}
