/*
DESCRIPTION
  device_test.go contains tests for the ManualSource sample source.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import (
	"testing"
	"time"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/viewer/config"
)

func TestManualSourceNotStarted(t *testing.T) {
	m := NewManualSource()
	if _, err := m.Write([]pal.Sample{1}); err == nil {
		t.Error("write before start did not error")
	}
	if _, _, err := m.ReadChunk(10); err == nil {
		t.Error("read before start did not error")
	}
	if m.IsRunning() {
		t.Error("source running before start")
	}
}

func TestManualSourceRoundTrip(t *testing.T) {
	m := NewManualSource()
	if err := m.Set(config.Config{}); err != nil {
		t.Fatalf("unexpected error from Set: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}
	if !m.IsRunning() {
		t.Fatal("source not running after start")
	}

	want := []pal.Sample{10, 20, 30}
	go func() {
		m.Write(want)
	}()

	got, dropped, err := m.ReadChunk(100)
	if err != nil {
		t.Fatalf("unexpected error from ReadChunk: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestManualSourceStopUnblocks(t *testing.T) {
	m := NewManualSource()
	if err := m.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}

	done := make(chan error)
	go func() {
		_, _, err := m.ReadChunk(10)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if err := m.Stop(); err != nil {
		t.Fatalf("unexpected error from Stop: %v", err)
	}

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Errorf("blocked read returned %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stop did not unblock pending read")
	}
	if m.IsRunning() {
		t.Error("source still running after stop")
	}
}
