/*
DESCRIPTION
  ring_test.go contains tests for the pattern ring.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pal

import "testing"

func TestRingPushOrder(t *testing.T) {
	r := newPatternRing(4)
	r.push('a')
	r.push('b')
	r.push('c')
	want := []byte{'c', 'b', 'a', 0}
	for i, w := range want {
		if r.buf[i] != w {
			t.Errorf("slot %d = %q, want %q", i, r.buf[i], w)
		}
	}
}

func TestRingOverflow(t *testing.T) {
	r := newPatternRing(3)
	for i := 0; i < 3; i++ {
		if !r.push('e') {
			t.Fatalf("push %d reported overflow on non-full ring", i)
		}
	}
	if r.push('e') {
		t.Error("push on full ring did not report overflow")
	}
	// The overflowing push still shifts and records.
	for i := range r.buf {
		if r.buf[i] != 'e' {
			t.Errorf("slot %d = %q after overflow push", i, r.buf[i])
		}
	}
}

func TestRingClear(t *testing.T) {
	r := newPatternRing(3)
	r.push('e')
	r.push('v')
	r.clear()
	for i := range r.buf {
		if r.buf[i] != 0 {
			t.Errorf("slot %d not zero after clear", i)
		}
	}
	if !r.push('e') {
		t.Error("push after clear reported overflow")
	}
}

// TestRingPartialMatch checks that a partially filled ring only matches
// references whose trailing bytes are unset.
func TestRingPartialMatch(t *testing.T) {
	r := newPatternRing(5)
	r.push('e')
	r.push('v')
	if !r.matches("ve") {
		t.Error("partial fill did not match its own prefix reference")
	}
	if r.matches("veeee") {
		t.Error("partial fill matched full-length reference")
	}
	if r.matches("ev") {
		t.Error("matched reversed reference in wrong order")
	}
}

func TestRingFullMatch(t *testing.T) {
	r := newPatternRing(patternLength)
	feed := "eeeeevvvvveeeee" // Source order: 5 equalisers, 5 verticals, 5 equalisers.
	for i := 0; i < len(feed); i++ {
		r.push(feed[i])
	}
	if !r.matches(patternNextFrame) {
		t.Error("full vertical interval did not match next-frame pattern")
	}
	if r.matches(patternNextField) {
		t.Error("matched next-field pattern without field pulse")
	}
}
