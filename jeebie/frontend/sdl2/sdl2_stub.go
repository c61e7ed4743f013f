//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/valerio/go-jeebie/gameboy"
)

// Frontend stub used when SDL2 development libraries aren't available.
type Frontend struct{}

// New always fails; build with -tags sdl2 and SDL2 installed to use this frontend.
func New(machine *gameboy.Machine, title string) (*Frontend, error) {
	return nil, fmt.Errorf("sdl2 frontend not available - compile with -tags sdl2 and install SDL2 development libraries")
}

// Run is a no-op on the stub.
func (f *Frontend) Run() error { return nil }

// Cleanup is a no-op on the stub.
func (f *Frontend) Cleanup() {}
