package ppu

const (
	Width  = 160
	Height = 144
	Size   = Width * Height
)

// Color is a DMG shade index (0-3), white to black.
type Color uint8

const (
	White     Color = 0
	LightGrey Color = 1
	DarkGrey  Color = 2
	Black     Color = 3
)

// FrameBuffer holds one composed frame as packed RGBA8888 values, ready
// for a host's rgb_encode callback to translate into its native pixel
// format.
type FrameBuffer struct {
	buffer [Size]uint32
}

// NewFrameBuffer returns a zeroed (black) framebuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func (fb *FrameBuffer) Set(x, y int, rgba uint32) {
	fb.buffer[y*Width+x] = rgba
}

func (fb *FrameBuffer) Pixels() []uint32 {
	return fb.buffer[:]
}
