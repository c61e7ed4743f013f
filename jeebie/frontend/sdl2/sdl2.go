//go:build sdl2

// Package sdl2 is a thin SDL2 host collaborator around gameboy.Machine:
// it owns a window/renderer/texture triple, pumps SDL events into the
// Machine's joypad, and presents each completed frame. Building it
// requires SDL2 development libraries; default builds skip it (see the
// sdl2 build tag) the same way the teacher's backend package does.
package sdl2

import (
	"fmt"
	"unsafe"

	"github.com/valerio/go-jeebie/gameboy"
	"github.com/valerio/go-jeebie/jeebie/joypad"
	"github.com/valerio/go-jeebie/jeebie/ppu"
	"github.com/veandco/go-sdl2/sdl"
)

const pixelScale = 3

// Frontend drives a gameboy.Machine with an SDL2 window.
type Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	machine  *gameboy.Machine

	running   bool
	pixels    []byte
	frameDone bool
}

// New creates a Frontend for the given machine, opening an SDL2 window
// titled with the ROM's header title.
func New(machine *gameboy.Machine, title string) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl2: init: %w", err)
	}

	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		ppu.Width*pixelScale, ppu.Height*pixelScale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl2: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl2: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, ppu.Width, ppu.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl2: create texture: %w", err)
	}

	f := &Frontend{
		window:   window,
		renderer: renderer,
		texture:  texture,
		machine:  machine,
		running:  true,
		pixels:   make([]byte, ppu.Width*ppu.Height*4),
	}

	machine.RGBEncode = func(r, g, b uint8) uint32 {
		return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
	}
	machine.FrameReady = f.onFrame

	return f, nil
}

func (f *Frontend) onFrame(pixels []uint32, width, height int) {
	for i, rgba := range pixels {
		off := i * 4
		f.pixels[off] = byte(rgba >> 24)
		f.pixels[off+1] = byte(rgba >> 16)
		f.pixels[off+2] = byte(rgba >> 8)
		f.pixels[off+3] = byte(rgba)
	}
	f.frameDone = true
}

// Run pumps SDL events and steps the machine until the window is closed.
func (f *Frontend) Run() error {
	defer f.Cleanup()

	for f.running {
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			f.handleEvent(ev)
		}
		if !f.running {
			break
		}

		f.frameDone = false
		for !f.frameDone {
			if err := f.machine.Step(); err != nil && err != gameboy.ErrIllegalOpcode {
				return err
			}
		}

		f.texture.Update(nil, unsafe.Pointer(&f.pixels[0]), ppu.Width*4)
		f.renderer.Clear()
		f.renderer.Copy(f.texture, nil, nil)
		f.renderer.Present()
	}

	return nil
}

func (f *Frontend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		f.running = false
	case *sdl.KeyboardEvent:
		key, ok := keyFor(e.Keysym.Sym)
		if !ok {
			if e.Keysym.Sym == sdl.K_ESCAPE {
				f.running = false
			}
			return
		}
		if e.Type == sdl.KEYDOWN {
			f.machine.PressKey(key)
		} else if e.Type == sdl.KEYUP {
			f.machine.ReleaseKey(key)
		}
	}
}

func keyFor(sym sdl.Keycode) (joypad.Key, bool) {
	switch sym {
	case sdl.K_RIGHT:
		return joypad.Right, true
	case sdl.K_LEFT:
		return joypad.Left, true
	case sdl.K_UP:
		return joypad.Up, true
	case sdl.K_DOWN:
		return joypad.Down, true
	case sdl.K_a:
		return joypad.A, true
	case sdl.K_s:
		return joypad.B, true
	case sdl.K_q:
		return joypad.Select, true
	case sdl.K_RETURN:
		return joypad.Start, true
	default:
		return 0, false
	}
}

// Cleanup tears down the SDL2 window, renderer, and texture.
func (f *Frontend) Cleanup() {
	if f.texture != nil {
		f.texture.Destroy()
	}
	if f.renderer != nil {
		f.renderer.Destroy()
	}
	if f.window != nil {
		f.window.Destroy()
	}
	sdl.Quit()
}
