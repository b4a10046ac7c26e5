// Package emu runs a GBA headlessly, frame after frame, until a frame limit
// or a stop request.
package emu

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gbadv/cart"
	"gbadv/emu/log"
	"gbadv/hw"
)

type Emulator struct {
	GBA *hw.GBA
	cfg Config

	// These are accessed concurrently by the emulator loop and the caller.
	quit   atomic.Bool
	paused atomic.Bool
	reset  atomic.Bool
	frames atomic.Int64
}

// Launch powers up the system, maps the ROM and the optional boot ROM and
// attaches the execution trace. It doesn't start the emulation loop, call
// Run() for that.
func Launch(rom *cart.ROM, cfg Config) (*Emulator, error) {
	gba := hw.NewGBA()
	gba.LoadROM(rom)

	if cfg.System.BootROM != "" {
		buf, err := os.ReadFile(cfg.System.BootROM)
		if err != nil {
			return nil, fmt.Errorf("boot ROM: %w", err)
		}
		if err := gba.LoadBootROM(buf); err != nil {
			return nil, err
		}
		log.ModEmu.InfoZ("boot ROM loaded").String("path", cfg.System.BootROM).End()
	}

	// CPU execution trace setup.
	if cfg.TraceOut != nil {
		gba.SetTraceOutput(cfg.TraceOut)
	}

	cfg.Video.Check()
	return &Emulator{GBA: gba, cfg: cfg}, nil
}

// RunOneFrame runs the system for one frame, or less if it gets stopped.
func (e *Emulator) RunOneFrame() {
	e.GBA.RunFrame()
	e.frames.Add(1)
}

func (e *Emulator) loop() {
	e.GBA.Start()
	for !e.shouldStop() {
		// Handle pause.
		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(100 * time.Millisecond)
		} else {
			e.RunOneFrame()
		}
		e.handleReset()
	}
	e.GBA.Stop()
}

// Run runs the emulation loop until Stop is called or the configured number
// of frames is reached. A screenshot is then saved if configured.
func (e *Emulator) Run() error {
	log.AddContext(e.GBA)
	defer log.RemoveContext(e.GBA)

	start := time.Now()
	e.loop()
	log.ModEmu.InfoZ("Emulation loop exited").
		Int("frames", e.Frames()).
		Duration("elapsed", time.Since(start)).
		End()

	if e.cfg.TraceOut != nil {
		if err := e.cfg.TraceOut.Close(); err != nil {
			log.ModEmu.WarnZ("Failed to close trace output").Error("err", err).End()
		}
	}

	if path := e.cfg.Video.Screenshot; path != "" {
		if err := SaveAsPNG(ScaleFrame(e.GBA.PPU.Frame(), e.cfg.Video.Scale), path); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		log.ModEmu.InfoZ("Screenshot saved").String("path", path).End()
	}
	return nil
}

// Frames returns the number of frames run so far. It can be called from any
// goroutine.
func (e *Emulator) Frames() int { return int(e.frames.Load()) }

// FrameHash returns a hash of the current framebuffer contents.
func (e *Emulator) FrameHash() uint64 {
	return FrameHash(e.GBA.PPU.Frame())
}

// SetPause, Stop and Reset allows to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }

// Stop requests the loop to exit. The current frame is interrupted at the
// next cycle.
func (e *Emulator) Stop() {
	e.quit.Store(true)
	e.GBA.Stop()
}

// Paused reports whether the emulation loop is paused.
func (e *Emulator) Paused() bool { return e.isPaused() }

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) shouldStop() bool {
	if e.quit.Load() {
		return true
	}
	return e.cfg.Emulation.Frames > 0 && e.Frames() >= e.cfg.Emulation.Frames
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing reset").End()
		e.GBA.Reset()
	}
}
