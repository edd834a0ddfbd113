/*
DESCRIPTION
  sigen_test.go contains tests for the synthetic signal generator, including
  decoding its output back into frames.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sigen

import (
	"testing"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/viewer/config"
	"github.com/ausocean/utils/logging"
)

// testLogger will allow logging to be done by the testing pkg.
type testLogger testing.T

func (tl *testLogger) Debug(msg string, args ...interface{})   { tl.Log(logging.Debug, msg, args...) }
func (tl *testLogger) Info(msg string, args ...interface{})    { tl.Log(logging.Info, msg, args...) }
func (tl *testLogger) Warning(msg string, args ...interface{}) { tl.Log(logging.Warning, msg, args...) }
func (tl *testLogger) Error(msg string, args ...interface{})   { tl.Log(logging.Error, msg, args...) }
func (tl *testLogger) Fatal(msg string, args ...interface{})   { tl.Log(logging.Fatal, msg, args...) }
func (tl *testLogger) SetLevel(lvl int8)                       {}
func (tl *testLogger) Log(lvl int8, msg string, args ...interface{}) {
	(*testing.T)(tl).Logf(msg+" %v", args)
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Logger:         (*testLogger)(t),
		SamplePeriodPS: 50000,
		FrameWidth:     8,
		FrameHeight:    16,
		BlackLevel:     300,
		WhiteLevel:     1000,
	}
}

func TestGeneratorUnset(t *testing.T) {
	g := New((*testLogger)(t))
	if err := g.Start(); err == nil {
		t.Error("start without config did not error")
	}
	if _, _, err := g.ReadChunk(100); err == nil {
		t.Error("read before start did not error")
	}
}

func TestGeneratorContinuity(t *testing.T) {
	g := New((*testLogger)(t))
	if err := g.Set(testConfig(t)); err != nil {
		t.Fatalf("unexpected error from Set: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}
	defer g.Stop()

	var total int
	for i := 0; i < 100; i++ {
		s, dropped, err := g.ReadChunk(997)
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if dropped != 0 {
			t.Errorf("read %d dropped %d samples", i, dropped)
		}
		if len(s) == 0 {
			t.Fatalf("read %d returned no samples", i)
		}
		total += len(s)
	}
	if total == 0 {
		t.Fatal("generator produced no samples")
	}
}

// TestGeneratorDecodes feeds the synthetic signal into a decoder and expects
// frames carrying the generator's ramp pattern.
func TestGeneratorDecodes(t *testing.T) {
	cfg := testConfig(t)

	g := New((*testLogger)(t))
	if err := g.Set(cfg); err != nil {
		t.Fatalf("unexpected error from Set: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}
	defer g.Stop()

	d, err := pal.NewDecoder((*testLogger)(t), pal.Config{
		SamplePeriodPS:      cfg.SamplePeriodPS,
		FrameWidth:          int(cfg.FrameWidth),
		FrameHeight:         int(cfg.FrameHeight),
		SyncThreshold:       150,
		BlackLevel:          pal.Sample(cfg.BlackLevel),
		WhiteLevel:          pal.Sample(cfg.WhiteLevel),
		MaxBacklogSamples:   10000000,
		SyncDurationNs:      pal.SyncNs,
		LineDurationNs:      pal.LineNs,
		EqualiserLowNs:      pal.EqualiserLowNs,
		VerticalSyncLowNs:   pal.VerticalSyncLowNs,
		HorizontalSyncLowNs: pal.HorizontalSyncLowNs,
		FrontPorchNs:        pal.FrontPorchNs,
		BackPorchNs:         pal.BackPorchNs,
		ToleranceNs:         pal.ToleranceNs,
	})
	if err != nil {
		t.Fatalf("could not create decoder: %v", err)
	}

	// Pump two generated frames' worth of samples and capture the last
	// complete frame.
	var (
		frame  []byte
		frames int
		offset pal.Offset
	)
	for i := 0; i < 200 && frames < 2; i++ {
		s, _, err := g.ReadChunk(997)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		var in pal.Buffer
		c := in.Append(len(s))
		c.Offset = offset
		copy(c.Data, s)
		offset += pal.Offset(len(s))
		d.Ingest(&in)
		for {
			ok, err := d.ReadFrame()
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !ok {
				break
			}
			frames++
			frame = append(frame[:0], d.Frame()...)
		}
	}
	if frames < 2 {
		t.Fatalf("decoded %d frames, want at least 2", frames)
	}

	// The second frame carries the ramp: row 0 ascends, row 1 descends.
	w := int(cfg.FrameWidth)
	row0 := frame[:w]
	row1 := frame[w : 2*w]
	for i := 1; i < w; i++ {
		if row0[i] < row0[i-1] {
			t.Errorf("row 0 not ascending at col %d: %v", i, row0)
			break
		}
	}
	for i := 1; i < w; i++ {
		if row1[i] > row1[i-1] {
			t.Errorf("row 1 not descending at col %d: %v", i, row1)
			break
		}
	}
	if row0[w-1] < 200 {
		t.Errorf("ramp end %d, want near white", row0[w-1])
	}
	if row0[0] > 55 {
		t.Errorf("ramp start %d, want near black", row0[0])
	}
}
