package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-jeebie/gameboy"
	"github.com/valerio/go-jeebie/jeebie/frontend/sdl2"
	"github.com/valerio/go-jeebie/jeebie/frontend/terminal"
)

func main() {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A Game Boy / Game Boy Color / Super Game Boy emulator core"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "2.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.StringFlag{Name: "model", Value: "dmg", Usage: "Hardware model to emulate: dmg, cgb, sgb"},
		cli.BoolFlag{Name: "sdl2", Usage: "Use the SDL2 frontend instead of the terminal one"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a frontend, for a fixed number of frames"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in headless mode", Value: 0},
		cli.StringFlag{Name: "load-state", Usage: "Load a save state file before starting"},
		cli.StringFlag{Name: "save-state-on-exit", Usage: "Write a save state file here when the frontend exits"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("jeebie exited with an error", "error", err)
		os.Exit(1)
	}
}

func parseModel(s string) (gameboy.Model, error) {
	switch s {
	case "dmg":
		return gameboy.ModelDMG, nil
	case "cgb":
		return gameboy.ModelCGB, nil
	case "sgb":
		return gameboy.ModelSGB, nil
	default:
		return 0, fmt.Errorf("unknown model %q (want dmg, cgb, or sgb)", s)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	model, err := parseModel(c.String("model"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	machine := gameboy.New(model)
	if err := machine.LoadROM(data); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	machine.Power(true)

	if path := c.String("load-state"); path != "" {
		stateData, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading save state: %w", err)
		}
		if err := machine.LoadState(stateData); err != nil {
			return fmt.Errorf("loading save state: %w", err)
		}
	}

	if c.Bool("headless") {
		return runHeadless(machine, c.Int("frames"))
	}

	var front interface {
		Run() error
	}
	if c.Bool("sdl2") {
		front, err = sdl2.New(machine, "Jeebie")
	} else {
		front, err = terminal.New(machine)
	}
	if err != nil {
		return err
	}

	runErr := front.Run()

	if path := c.String("save-state-on-exit"); path != "" {
		stateData, err := machine.SaveState()
		if err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		if err := os.WriteFile(path, stateData, 0644); err != nil {
			return fmt.Errorf("writing save state: %w", err)
		}
	}

	return runErr
}

func runHeadless(machine *gameboy.Machine, frames int) error {
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	completed := 0
	machine.FrameReady = func(pixels []uint32, width, height int) {
		completed++
		if completed%10 == 0 {
			slog.Info("frame progress", "completed", completed, "total", frames)
		}
	}
	machine.RGBEncode = func(r, g, b uint8) uint32 {
		return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}

	for completed < frames {
		if err := machine.Step(); err != nil && err != gameboy.ErrIllegalOpcode {
			return err
		}
	}

	slog.Info("headless execution completed", "frames", completed)
	return nil
}
