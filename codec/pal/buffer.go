/*
DESCRIPTION
  buffer.go provides the chunked sample buffer used to hold digitised
  voltage samples between capture and decode.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pal

// Chunk is a block of consecutive samples tagged with the absolute offset of
// its first sample. Chunks are linked into a Buffer; Data is filled by the
// producer after Append and must not be resized thereafter.
type Chunk struct {
	prev, next *Chunk

	// Offset is the absolute stream offset of Data[0]. The buffer does not
	// validate offsets; contiguity is the producer's contract, and a gap
	// between consecutive chunks is read by the decoder as a desync marker.
	Offset Offset

	// Data holds the samples. Its length is fixed at Append time.
	Data []Sample
}

// Next returns the chunk holding the samples following c, or nil if c is the
// newest chunk in its buffer.
func (c *Chunk) Next() *Chunk { return c.next }

// Prev returns the chunk holding the samples preceding c, or nil if c is the
// oldest chunk in its buffer.
func (c *Chunk) Prev() *Chunk { return c.prev }

// Buffer is an append-only doubly-linked sequence of sample chunks. Samples
// accumulate at the head end, are consumed walking from the tail forward, and
// are trimmed from the tail end. The zero Buffer is empty and ready for use.
type Buffer struct {
	head, tail *Chunk
	chunks     int
	samples    int
}

// Append creates a new chunk of n samples at the head end of the buffer and
// returns it. The chunk's samples are zero valued; the caller fills Data and
// sets Offset.
func (b *Buffer) Append(n int) *Chunk {
	c := &Chunk{Data: make([]Sample, n), prev: b.head}
	if c.prev != nil {
		c.prev.next = c
	} else {
		b.tail = c
	}
	b.head = c
	b.chunks++
	b.samples += n
	return c
}

// TrimBefore removes all chunks strictly older than c. A nil c is a no-op.
func (b *Buffer) TrimBefore(c *Chunk) {
	if c == nil {
		return
	}
	b.TrimBeforeInclusive(c.prev)
}

// TrimBeforeInclusive removes c and all chunks older than it. After return c
// is no longer part of the buffer. A nil c is a no-op.
func (b *Buffer) TrimBeforeInclusive(c *Chunk) {
	if c == nil {
		return
	}
	next := c.next
	for c != nil {
		b.chunks--
		b.samples -= len(c.Data)
		victim := c
		c = c.prev
		victim.prev, victim.next = nil, nil
	}
	b.tail = next
	if next != nil {
		next.prev = nil
	} else {
		b.head = nil
	}
}

// Concatenate splices the contents of after onto the head end of b, leaving
// after empty. Chunk identities are preserved, so pointers held into after
// remain valid as members of b.
func (b *Buffer) Concatenate(after *Buffer) {
	if after.IsEmpty() {
		return
	}
	if b.IsEmpty() {
		b.head = after.head
		b.tail = after.tail
	} else {
		b.head.next = after.tail
		after.tail.prev = b.head
		b.head = after.head
	}
	b.chunks += after.chunks
	b.samples += after.samples
	after.head = nil
	after.tail = nil
	after.chunks = 0
	after.samples = 0
}

// Clear removes all chunks.
func (b *Buffer) Clear() {
	b.head = nil
	b.tail = nil
	b.chunks = 0
	b.samples = 0
}

// IsEmpty reports whether the buffer holds no chunks.
func (b *Buffer) IsEmpty() bool { return b.head == nil }

// Len returns the total number of buffered samples.
func (b *Buffer) Len() int { return b.samples }

// Chunks returns the number of buffered chunks.
func (b *Buffer) Chunks() int { return b.chunks }

// Head returns the newest chunk, or nil if the buffer is empty.
func (b *Buffer) Head() *Chunk { return b.head }

// Tail returns the oldest chunk, or nil if the buffer is empty.
func (b *Buffer) Tail() *Chunk { return b.tail }
