/*
DESCRIPTION
  levels_test.go contains tests for signal level estimation.

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

import "testing"

func TestEstimateLevels(t *testing.T) {
	// Compose a signal with a known structure: 2% sync tip at 0mV, 20%
	// blanking at 300mV, the rest picture spread to 1000mV.
	var s []Sample
	for i := 0; i < 200; i++ {
		s = append(s, 0)
	}
	for i := 0; i < 2000; i++ {
		s = append(s, 300)
	}
	for i := 0; i < 7800; i++ {
		s = append(s, 300+Sample(i%700))
	}

	l, err := EstimateLevels(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Sync > 50 {
		t.Errorf("sync level %d, want near 0", l.Sync)
	}
	if l.Black < 250 || l.Black > 350 {
		t.Errorf("black level %d, want near 300", l.Black)
	}
	if l.White < 900 {
		t.Errorf("white level %d, want near 1000", l.White)
	}
	if l.SyncThreshold <= l.Sync || l.SyncThreshold >= l.Black {
		t.Errorf("threshold %d not between sync %d and black %d", l.SyncThreshold, l.Sync, l.Black)
	}
}

func TestEstimateLevelsTooFew(t *testing.T) {
	if _, err := EstimateLevels(make([]Sample, 10)); err == nil {
		t.Error("no error for undersized capture")
	}
}

func TestEstimateLevelsFlat(t *testing.T) {
	s := make([]Sample, 5000)
	for i := range s {
		s[i] = 300
	}
	if _, err := EstimateLevels(s); err == nil {
		t.Error("no error for flat signal")
	}
}
