/*
DESCRIPTION
  levels.go estimates signal levels from a capture's sample distribution,
  for calibrating the sync threshold and black/white mapping of a decoder
  against an unknown source.

AUTHORS
  Russell Stanley <russell@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pal

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// minLevelSamples is the minimum capture length for level estimation; less
// than a line's worth of samples cannot cover sync tip and active video.
const minLevelSamples = 1000

// Levels describes the millivolt landmarks of a composite signal.
type Levels struct {
	// Sync is the sync tip level.
	Sync Sample

	// Black and White are the levels to map to raster 0 and 255.
	Black Sample
	White Sample

	// SyncThreshold is the comparator level separating sync tips from the
	// rest of the signal, midway between Sync and Black.
	SyncThreshold Sample
}

// Sample distribution quantiles used for level estimation. Sync tips occupy
// the lowest few percent of samples in time, blanking and black sit above
// them, and the brightest picture content defines white.
const (
	syncQuantile  = 0.01
	blackQuantile = 0.15
	whiteQuantile = 0.995
)

// EstimateLevels derives signal levels from a representative run of raw
// samples, spanning at least several scan lines of a live signal.
func EstimateLevels(s []Sample) (Levels, error) {
	if len(s) < minLevelSamples {
		return Levels{}, errors.Errorf("not enough samples for level estimation: %d < %d", len(s), minLevelSamples)
	}
	x := make([]float64, len(s))
	for i, v := range s {
		x[i] = float64(v)
	}
	sort.Float64s(x)
	sync := stat.Quantile(syncQuantile, stat.Empirical, x, nil)
	black := stat.Quantile(blackQuantile, stat.Empirical, x, nil)
	white := stat.Quantile(whiteQuantile, stat.Empirical, x, nil)
	if white <= black {
		return Levels{}, errors.Errorf("degenerate sample distribution: white %v <= black %v", white, black)
	}
	return Levels{
		Sync:          Sample(sync),
		Black:         Sample(black),
		White:         Sample(white),
		SyncThreshold: Sample((sync + black) / 2),
	}, nil
}
