/*
DESCRIPTION
  pulse.go provides the pulse extractor: an edge classifying Analyser and a
  chunk-walking StreamReader that together convert threshold crossings in the
  sample stream into timed pulses.

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

// Alignment selects which edge completes a pulse.
type Alignment int

const (
	// LeftAligned pulses are high then low, delimited by rising edges, and are
	// reported on the rising edge that closes them.
	LeftAligned Alignment = iota

	// RightAligned pulses are low then high, delimited by falling edges, and
	// are reported on the falling edge that closes them. Composite video sync
	// detection is right aligned: a pulse runs from the falling edge that
	// starts the sync tip to the falling edge that starts the next one.
	RightAligned
)

// PulseInfo describes one extracted pulse in absolute stream offsets, with
// Start < Transition < End. For a right-aligned pulse [Start,Transition) is
// the low portion and [Transition,End) the high portion; reversed when left
// aligned.
type PulseInfo struct {
	Start      Offset
	Transition Offset
	End        Offset
}

// Analyser converts a sequence of threshold transitions into pulses. It holds
// the offsets of the most recent rising and falling edges and emits a pulse
// each time the closing edge for its alignment arrives.
type Analyser struct {
	align     Alignment
	riseAt    Offset
	fallAt    Offset
	lastState bool
}

// NewAnalyser returns an Analyser with both edge records at initial.
func NewAnalyser(initial Offset, align Alignment) *Analyser {
	a := &Analyser{align: align}
	a.Reset(initial)
	a.lastState = align != RightAligned
	return a
}

// Transition feeds the analyser one edge: the sample at offset changed the
// comparator state to state. It returns a pulse and true iff the edge is a
// real change of state, is the closing edge for the analyser's alignment, and
// both a rise and a fall have been seen since the last reset.
func (a *Analyser) Transition(offset Offset, state bool) (PulseInfo, bool) {
	var info PulseInfo
	transitioned := state != a.lastState
	closing := state != (a.align == RightAligned)
	haveTimings := a.riseAt != a.fallAt
	ok := transitioned && closing && haveTimings
	if ok {
		if state {
			info = PulseInfo{Start: a.riseAt, Transition: a.fallAt, End: offset}
		} else {
			info = PulseInfo{Start: a.fallAt, Transition: a.riseAt, End: offset}
		}
		ok = info.End > info.Transition && info.Transition > info.Start
	}
	if state {
		a.riseAt = offset
	} else {
		a.fallAt = offset
	}
	a.lastState = state
	return info, ok
}

// Reset clears the analyser's edge history, placing both edge records at
// offset. No pulse can be emitted until two further edges arrive.
func (a *Analyser) Reset(offset Offset) {
	a.riseAt = offset
	a.fallAt = offset
}

// StreamReader scans one chunk at a time for threshold crossings and feeds
// them to an Analyser.
type StreamReader struct {
	analyser     *Analyser
	threshold    Sample
	prevState    bool
	chunk        *Chunk
	next         int
	resetPending bool
}

// NewStreamReader returns a StreamReader feeding a. Samples at or above
// threshold read as high. The reader starts unbound.
func NewStreamReader(a *Analyser, threshold Sample, initialState bool) *StreamReader {
	r := &StreamReader{analyser: a, threshold: threshold, prevState: initialState}
	r.Reset()
	return r
}

// Bind points the reader at c, restarting the scan cursor at the chunk's
// first sample. The analyser is left untouched.
func (r *StreamReader) Bind(c *Chunk) {
	r.chunk = c
	r.next = 0
}

// Reset flags the upcoming sample stream as discontinuous with what came
// before. The analyser is reset to the bound chunk's starting offset on the
// next call to Next.
func (r *StreamReader) Reset() {
	r.resetPending = true
}

// Next scans the bound chunk from the cursor forward and returns the next
// complete pulse, or false once the chunk is exhausted or if no chunk is
// bound.
func (r *StreamReader) Next() (PulseInfo, bool) {
	c := r.chunk
	if c == nil {
		return PulseInfo{}, false
	}
	if r.resetPending {
		r.resetPending = false
		r.analyser.Reset(c.Offset)
	}
	for r.next < len(c.Data) {
		i := r.next
		r.next++
		state := c.Data[i] >= r.threshold
		if state == r.prevState {
			continue
		}
		r.prevState = state
		if info, ok := r.analyser.Transition(c.Offset+Offset(i), state); ok {
			return info, true
		}
	}
	return PulseInfo{}, false
}
