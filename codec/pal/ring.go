/*
DESCRIPTION
  ring.go provides the fixed-capacity shift register of classified pulse
  symbols used to recognise vertical-interval sync patterns.

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

// patternRing is a shift register of the most recent classified pulse
// symbols. Element [0] is the most recent symbol and trailing zero bytes mean
// not yet filled. Reference patterns are therefore stored reversed, most
// recent pulse first.
type patternRing struct {
	buf []byte
}

func newPatternRing(capacity int) *patternRing {
	return &patternRing{buf: make([]byte, capacity)}
}

// push shifts the ring by one and records sym as the most recent symbol. It
// returns false if the oldest slot was occupied, i.e. the ring was already
// full and a symbol has been lost.
func (r *patternRing) push(sym byte) bool {
	overflowed := r.buf[len(r.buf)-1] != 0
	copy(r.buf[1:], r.buf)
	r.buf[0] = sym
	return !overflowed
}

// clear zeroes the ring.
func (r *patternRing) clear() {
	for i := range r.buf {
		r.buf[i] = 0
	}
}

// matches reports whether the ring contents byte-equal the reversed reference
// pattern over the full capacity. The pattern must not be longer than the
// ring.
func (r *patternRing) matches(reverse string) bool {
	for i := range r.buf {
		var want byte
		if i < len(reverse) {
			want = reverse[i]
		}
		if r.buf[i] != want {
			return false
		}
	}
	return true
}
