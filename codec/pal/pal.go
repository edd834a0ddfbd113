/*
DESCRIPTION
  pal.go provides package documentation, shared types and standard PAL
  timing values for the pal package.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pal provides decoding of 625-line PAL-family composite video from
// a stream of digitised voltage samples into grayscale raster frames.
//
// Samples arrive as offset-tagged chunks appended to a Buffer. The Decoder
// walks the buffered samples, detects sync pulses by threshold crossing,
// classifies them by duration against the PAL pulse taxonomy, recognises the
// multi-pulse vertical-interval patterns that delimit fields and frames, and
// samples the active region of each scan line into a row of the frame raster.
package pal

// Sample is a single digitised voltage reading in millivolts.
type Sample int32

// Offset is an absolute index into the conceptual infinite sample stream
// produced since capture start.
type Offset uint64

// Standard timings for 625-line PAL composite video, in nanoseconds.
// See http://martin.hinner.info/vga/pal.html.
const (
	LineNs              = 64000
	SyncNs              = LineNs / 2
	HorizontalSyncLowNs = 4700
	EqualiserLowNs      = 2350
	VerticalSyncLowNs   = SyncNs - HorizontalSyncLowNs
	FrontPorchNs        = 1650
	BackPorchNs         = 5700
	LineDataNs          = LineNs - (BackPorchNs + FrontPorchNs)

	// ToleranceNs is a comfortable default tolerance for pulse duration
	// comparison; much higher than needed for a clean signal.
	ToleranceNs = 250
)

// Raster dimensions for a full PAL frame.
const (
	FrameWidth  = 720
	FrameHeight = 625
)
