/*
DESCRIPTION
  sigen.go provides an implementation of the SampleSource interface that
  synthesises a composite-video test signal: vertical intervals, sync pulses
  and a bar-ramp picture, at the configured sample period and levels.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sigen provides a synthetic composite-video SampleSource, useful
// for exercising the decode pipeline without a digitiser attached.
package sigen

import (
	"errors"
	"sync"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/device"
	"github.com/ausocean/tv/viewer/config"
	"github.com/ausocean/utils/logging"
)

// syncLevel is the sync tip level in millivolts. Blanking and picture levels
// come from the configured black and white levels.
const syncLevel = 0

// Generator is a SampleSource producing an endless synthetic PAL-style
// signal. One frame of samples is synthesised at Start and replayed.
type Generator struct {
	frame     []pal.Sample
	pos       int
	isRunning bool
	set       bool
	log       logging.Logger
	mu        sync.Mutex

	// Configuration mirrored from config at Set.
	periodPS uint
	width    int
	height   int
	black    pal.Sample
	white    pal.Sample
}

// New returns a new Generator.
func New(l logging.Logger) *Generator { return &Generator{log: l} }

// Name returns the name of the device.
func (g *Generator) Name() string { return "Sigen" }

// Set configures the generator. The fields considered are SamplePeriodPS,
// FrameWidth, FrameHeight, BlackLevel and WhiteLevel.
func (g *Generator) Set(c config.Config) error {
	if c.SamplePeriodPS == 0 {
		return errors.New("sigen: sample period not set")
	}
	g.periodPS = c.SamplePeriodPS
	g.width = int(c.FrameWidth)
	g.height = int(c.FrameHeight)
	g.black = pal.Sample(c.BlackLevel)
	g.white = pal.Sample(c.WhiteLevel)
	g.set = true
	return nil
}

// Start synthesises the frame signal and readies the generator for reads.
func (g *Generator) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.set {
		return errors.New("generator has not been set with config")
	}
	g.frame = g.synthesise()
	g.pos = 0
	g.isRunning = true
	g.log.Debug("synthesised test signal", "samplesPerFrame", len(g.frame))
	return nil
}

// Stop stops the generator.
func (g *Generator) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.isRunning = false
	return nil
}

// IsRunning is used to determine if the generator is running.
func (g *Generator) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isRunning
}

// ReadChunk returns the next run of synthetic samples. The generator never
// drops samples and never ends.
func (g *Generator) ReadChunk(max int) ([]pal.Sample, uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.isRunning {
		if g.frame != nil {
			return nil, 0, device.ErrClosed
		}
		return nil, 0, errors.New("generator not started, can't read")
	}
	n := max
	if rem := len(g.frame) - g.pos; n > rem {
		n = rem
	}
	out := make([]pal.Sample, n)
	copy(out, g.frame[g.pos:g.pos+n])
	g.pos += n
	if g.pos == len(g.frame) {
		g.pos = 0
	}
	return out, 0, nil
}

// samples converts a duration in nanoseconds to a sample count at the
// generator's period.
func (g *Generator) samples(ns int) int {
	return int(uint64(ns) * 1000 / uint64(g.periodPS))
}

// synthesise builds one frame of signal: five equaliser pulses, five
// vertical sync pulses, five more equalisers, then height active lines
// carrying a horizontal ramp with inverted parity every other line.
func (g *Generator) synthesise() []pal.Sample {
	var s []pal.Sample
	run := func(n int, v pal.Sample) {
		for i := 0; i < n; i++ {
			s = append(s, v)
		}
	}

	halfLine := g.samples(pal.SyncNs)
	eqLow := g.samples(pal.EqualiserLowNs)
	vLow := g.samples(pal.VerticalSyncLowNs)
	line := g.samples(pal.LineNs)
	hLow := g.samples(pal.HorizontalSyncLowNs)
	back := g.samples(pal.BackPorchNs)
	front := g.samples(pal.FrontPorchNs)

	for i := 0; i < 5; i++ {
		run(eqLow, syncLevel)
		run(halfLine-eqLow, g.black)
	}
	for i := 0; i < 5; i++ {
		run(vLow, syncLevel)
		run(halfLine-vLow, g.black)
	}
	for i := 0; i < 5; i++ {
		run(eqLow, syncLevel)
		run(halfLine-eqLow, g.black)
	}

	// The ramp is quantised to width steps so each decoded column samples a
	// flat level.
	active := line - hLow - back - front
	for row := 0; row < g.height; row++ {
		run(hLow, syncLevel)
		run(back, g.black)
		for i := 0; i < active; i++ {
			step := (i*g.width + active/2) / active
			ramp := int(g.white-g.black) * step / g.width
			if row%2 == 1 {
				ramp = int(g.white-g.black) - ramp
			}
			s = append(s, g.black+pal.Sample(ramp))
		}
		run(front, g.black)
	}
	return s
}
