// Package terminal is a thin tcell-based host collaborator around
// gameboy.Machine: it renders the framebuffer as block characters, maps
// keyboard events to joypad presses, and paces emulation with a 60Hz
// ticker.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-jeebie/gameboy"
	"github.com/valerio/go-jeebie/jeebie/joypad"
	"github.com/valerio/go-jeebie/jeebie/ppu"
)

const frameTime = time.Second / 60

var shadeChars = []rune{'█', '▓', '▒', ' '}

// Frontend drives a gameboy.Machine with a tcell terminal screen.
type Frontend struct {
	screen  tcell.Screen
	machine *gameboy.Machine
	running bool

	frame     []uint32
	frameDone bool
}

// New creates a Frontend for the given machine.
func New(machine *gameboy.Machine) (*Frontend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal: init screen: %w", err)
	}

	f := &Frontend{
		screen:  screen,
		machine: machine,
		running: true,
		frame:   make([]uint32, ppu.Width*ppu.Height),
	}

	machine.RGBEncode = func(r, g, b uint8) uint32 {
		// Reduce to a 4-shade index by luma, matching the DMG's own
		// quantization, so the block-character renderer can pick a glyph.
		luma := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
		switch {
		case luma > 192:
			return 0
		case luma > 128:
			return 1
		case luma > 64:
			return 2
		default:
			return 3
		}
	}
	machine.FrameReady = f.onFrame

	f.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	f.screen.Clear()

	return f, nil
}

func (f *Frontend) onFrame(pixels []uint32, width, height int) {
	copy(f.frame, pixels)
	f.frameDone = true
}

// Run pumps keyboard events and steps the machine until the user quits.
func (f *Frontend) Run() error {
	defer f.screen.Fini()

	go f.pollInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for f.running {
		<-ticker.C

		f.frameDone = false
		for !f.frameDone && f.running {
			if err := f.machine.Step(); err != nil && err != gameboy.ErrIllegalOpcode {
				return err
			}
		}

		f.render()
		f.screen.Show()
	}

	return nil
}

func (f *Frontend) pollInput() {
	for f.running {
		ev := f.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			f.handleKey(ev)
		case *tcell.EventResize:
			f.screen.Sync()
		}
	}
}

func (f *Frontend) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		f.running = false
	case tcell.KeyEnter:
		f.machine.PressKey(joypad.Start)
	case tcell.KeyRight:
		f.machine.PressKey(joypad.Right)
	case tcell.KeyLeft:
		f.machine.PressKey(joypad.Left)
	case tcell.KeyUp:
		f.machine.PressKey(joypad.Up)
	case tcell.KeyDown:
		f.machine.PressKey(joypad.Down)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a':
			f.machine.PressKey(joypad.A)
		case 's':
			f.machine.PressKey(joypad.B)
		case 'q':
			f.machine.PressKey(joypad.Select)
		}
	}
}

func (f *Frontend) render() {
	termWidth, termHeight := f.screen.Size()
	if termWidth < ppu.Width || termHeight < ppu.Height {
		f.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", ppu.Width, ppu.Height)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		for i, ch := range msg {
			f.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			shade := f.frame[y*ppu.Width+x]
			f.screen.SetContent(x, y, shadeChars[shade&0x3], nil, style)
		}
	}
}
