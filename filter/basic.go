/*
DESCRIPTION
  A filter that detects motion and discards frames without motion. The
  filter uses a difference method looking at each individual pixel to
  determine what is background and what is foreground.

AUTHORS
  Ella Pietraroia <ella@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"io"
	"sync"

	"github.com/ausocean/tv/viewer/config"
)

const (
	defaultBasicThreshold = 45
	defaultBasicPixels    = 1000
)

// Basic is a filter that provides basic motion detection via a difference
// method over raw grayscale frames.
type Basic struct {
	dst    io.WriteCloser
	bg     []float64
	thresh float64
	pix    uint
	w      int
	h      int
}

// NewBasic returns a pointer to a new Basic filter struct.
func NewBasic(dst io.WriteCloser, c config.Config) *Basic {
	// Validate parameters.
	if c.MotionThreshold <= 0 {
		c.LogInvalidField("MotionThreshold", defaultBasicThreshold)
		c.MotionThreshold = defaultBasicThreshold
	}
	if c.MotionPixels == 0 {
		c.LogInvalidField("MotionPixels", defaultBasicPixels)
		c.MotionPixels = defaultBasicPixels
	}

	return &Basic{
		dst:    dst,
		thresh: c.MotionThreshold,
		pix:    c.MotionPixels,
		w:      int(c.FrameWidth),
		h:      int(c.FrameHeight),
	}
}

// Implements io.Closer.
func (bf *Basic) Close() error { return nil }

// Implements io.Writer.
// Write applies the motion filter to the frame stream. Only frames with
// motion are written to the destination encoder, frames without are
// discarded. The background is updated as a running average so lighting
// drift is not read as motion.
func (bf *Basic) Write(f []byte) (int, error) {
	// First frame must be set as the first background image.
	if bf.bg == nil {
		bf.bg = make([]float64, len(f))
		for i, p := range f {
			bf.bg[i] = float64(p)
		}
		return len(f), nil
	}

	// Use one goroutine per quarter of the frame.
	const workers = 4
	counts := make([]uint, workers)
	var wg sync.WaitGroup
	rows := bf.h / workers
	for j := 0; j < workers; j++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			start := worker * rows * bf.w
			end := start + rows*bf.w
			if worker == workers-1 {
				end = len(f)
			}
			var moved uint
			for i := start; i < end; i++ {
				diff := float64(f[i]) - bf.bg[i]
				if diff < 0 {
					diff = -diff
				}
				if diff > bf.thresh {
					moved++
				}
				bf.bg[i] = 0.95*bf.bg[i] + 0.05*float64(f[i])
			}
			counts[worker] = moved
		}(j)
	}
	wg.Wait()

	var moved uint
	for _, c := range counts {
		moved += c
	}
	if moved > bf.pix {
		return bf.dst.Write(f)
	}
	return len(f), nil
}
