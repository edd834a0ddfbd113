/*
DESCRIPTION
  file_test.go contains tests for the file sample source, covering raw and
  WAV captures and looped playback.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package file

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

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

func writeRawCapture(t *testing.T, samples []int16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.s16le")
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("could not write capture: %v", err)
	}
	return path
}

func TestRawCapture(t *testing.T) {
	path := writeRawCapture(t, []int16{0, -300, 700, 32767, -32768})

	s := NewWith((*testLogger)(t), path, false)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}
	defer s.Stop()

	got, dropped, err := s.ReadChunk(100)
	if err != nil {
		t.Fatalf("unexpected error from ReadChunk: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	want := []pal.Sample{0, -300, 700, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	if _, _, err := s.ReadChunk(100); err != io.EOF {
		t.Errorf("read past end returned %v, want io.EOF", err)
	}
}

func TestRawCaptureLoop(t *testing.T) {
	path := writeRawCapture(t, []int16{1, 2, 3})

	s := New((*testLogger)(t))
	err := s.Set(config.Config{InputPath: path, Loop: true})
	if err != nil {
		t.Fatalf("unexpected error from Set: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}
	defer s.Stop()

	// Three reads of the whole file must all succeed when looping.
	for i := 0; i < 3; i++ {
		got, _, err := s.ReadChunk(3)
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if len(got) != 3 || got[0] != 1 {
			t.Errorf("read %d returned %v", i, got)
		}
	}
}

func TestWAVCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create wav: %v", err)
	}
	enc := wav.NewEncoder(f, 12700000, 16, 1, 1)
	err = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 12700000},
		SourceBitDepth: 16,
		Data:           []int{0, 300, -150, 1000},
	})
	if err != nil {
		t.Fatalf("could not write wav samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("could not close wav encoder: %v", err)
	}
	f.Close()

	s := NewWith((*testLogger)(t), path, false)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error from Start: %v", err)
	}
	defer s.Stop()

	got, _, err := s.ReadChunk(100)
	if err != nil {
		t.Fatalf("unexpected error from ReadChunk: %v", err)
	}
	want := []pal.Sample{0, 300, -150, 1000}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestStartUnset(t *testing.T) {
	s := New((*testLogger)(t))
	if err := s.Start(); err == nil {
		t.Error("start without config did not error")
	}
}
