/*
DESCRIPTION
  filter_test.go contains tests for the frame filters.

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"bytes"
	"testing"

	"github.com/ausocean/tv/viewer/config"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

type closingBuffer struct {
	bytes.Buffer
}

func (cb *closingBuffer) Close() error { return nil }

func TestNoOp(t *testing.T) {
	var dst closingBuffer
	f := NewNoOp(&dst)
	in := []byte{1, 2, 3, 4}
	n, err := f.Write(in)
	if err != nil || n != len(in) {
		t.Fatalf("write failed: n=%d err=%v", n, err)
	}
	if !bytes.Equal(dst.Bytes(), in) {
		t.Error("frame not passed through unchanged")
	}
	if err := f.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

// TestBasic feeds a static scene then a frame in which every pixel changes,
// expecting only the changed frame to pass.
func TestBasic(t *testing.T) {
	const w, h = 16, 16
	c := config.Config{
		Logger:       &dumbLogger{},
		FrameWidth:   w,
		FrameHeight:  h,
		MotionPixels: 50,
	}

	var dst closingBuffer
	f := NewBasic(&dst, c)

	static := make([]byte, w*h)
	for i := range static {
		static[i] = 100
	}

	// First write only primes the background.
	if _, err := f.Write(static); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// A second static frame must be discarded.
	if _, err := f.Write(static); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if dst.Len() != 0 {
		t.Fatal("static frame passed the motion filter")
	}

	// Every pixel moves far beyond the threshold.
	moving := make([]byte, w*h)
	for i := range moving {
		moving[i] = 255
	}
	if _, err := f.Write(moving); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if dst.Len() == 0 {
		t.Error("moving frame did not pass the motion filter")
	}
}
