/*
DESCRIPTION
  encoders_test.go contains tests for the JPEG frame encoder.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package viewer

import (
	"bytes"
	"image/jpeg"
	"testing"
)

type closingBuffer struct {
	bytes.Buffer
}

func (cb *closingBuffer) Close() error { return nil }

func TestJPEGEncoder(t *testing.T) {
	const w, h = 16, 8
	var dst closingBuffer
	e := newJPEGEncoder(&dst, w, h, 85, false)

	frame := make([]byte, w*h)
	for i := range frame {
		frame[i] = byte(i)
	}
	n, err := e.Write(frame)
	if err != nil {
		t.Fatalf("unexpected error from Write: %v", err)
	}
	if n != len(frame) {
		t.Errorf("n = %d, want %d", n, len(frame))
	}

	img, err := jpeg.Decode(bytes.NewReader(dst.Bytes()))
	if err != nil {
		t.Fatalf("emitted frame does not decode as JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != w || bounds.Dy() != h {
		t.Errorf("decoded dimensions %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), w, h)
	}
}

func TestJPEGEncoderProgressive(t *testing.T) {
	const w, h = 16, 8
	var dst closingBuffer
	e := newJPEGEncoder(&dst, w, h, 85, true)

	if _, err := e.Write(make([]byte, w*h)); err != nil {
		t.Fatalf("unexpected error from Write: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(dst.Bytes()))
	if err != nil {
		t.Fatalf("progressive frame does not decode as JPEG: %v", err)
	}
	if img.Bounds().Dx() != w {
		t.Errorf("decoded width %d, want %d", img.Bounds().Dx(), w)
	}
}

func TestJPEGEncoderBadSize(t *testing.T) {
	var dst closingBuffer
	e := newJPEGEncoder(&dst, 16, 8, 85, false)
	if _, err := e.Write(make([]byte, 10)); err == nil {
		t.Error("no error for wrong frame size")
	}
}
