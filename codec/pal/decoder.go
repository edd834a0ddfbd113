/*
DESCRIPTION
  decoder.go provides the PAL frame decoder. The decoder owns a sample
  buffer, extracts and classifies sync pulses, recognises vertical-interval
  patterns and rasterises active lines into a grayscale frame.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pal

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// patternLength is the length of the longest vertical-interval sync pattern,
// and therefore the capacity of the pattern ring.
const patternLength = 15

// Classified pulse symbols. The byte values spell the reference patterns.
const (
	pulseNone       = 0
	pulseEqualiser  = 'e'
	pulseVertical   = 'v'
	pulseHorizontal = 'h'
	pulseField      = 'f'
)

// The vertical-interval patterns, reversed: the first byte is the most
// recent pulse. A full vertical sync run flanked by equaliser runs ends a
// frame; the same run ended by a field pulse switches to the second field.
const (
	patternNextFrame = "eeeeevvvvveeeee"
	patternNextField = "feeeevvvvveeeee"
)

// ErrSeekRange is returned by ReadFrame when line sampling requires an
// offset that no buffered chunk contains. It indicates a contract violation
// by the sample producer (a gap not flagged by chunk offsets).
var ErrSeekRange = errors.New("pal: seek offset outside buffered chunks")

// Config holds the decoder parameters. All fields are fixed once the decoder
// is constructed.
type Config struct {
	// SamplePeriodPS is the digitiser sample period in picoseconds.
	SamplePeriodPS uint

	// Interlaced selects two interleaved fields per frame. When false every
	// field starts at line 0 and lines advance by one.
	Interlaced bool

	// FrameWidth and FrameHeight are the output raster dimensions.
	FrameWidth  int
	FrameHeight int

	// SyncThreshold is the comparator level in millivolts; samples below it
	// read as sync, at or above as active.
	SyncThreshold Sample

	// BlackLevel and WhiteLevel are the millivolt levels mapped to raster
	// values 0 and 255.
	BlackLevel Sample
	WhiteLevel Sample

	// MaxBacklogSamples triggers trimming of old samples when exceeded. It
	// must exceed twice the frame duration in samples for decoding to keep
	// up with a healthy signal.
	MaxBacklogSamples int

	// Pulse duration references and the low-portion references for the pulse
	// taxonomy, in nanoseconds.
	SyncDurationNs       uint
	LineDurationNs       uint
	EqualiserLowNs       uint
	VerticalSyncLowNs    uint
	HorizontalSyncLowNs  uint

	// FrontPorchNs and BackPorchNs are the margins excluded from the active
	// region at the end and start of each line.
	FrontPorchNs uint
	BackPorchNs  uint

	// ToleranceNs is the symmetric tolerance applied to all pulse duration
	// comparisons.
	ToleranceNs uint
}

// Errors holds the decoder error counters. Counters only ever increase until
// collected by TakeErrors.
type Errors struct {
	// NoSignalOrOverrun counts backlog overruns that triggered trimming.
	NoSignalOrOverrun uint64

	// UnrecognisedPulseType counts pulses matching no row of the pulse
	// taxonomy.
	UnrecognisedPulseType uint64

	// LongSyncPattern counts symbols pushed onto an already full pattern
	// ring, i.e. an expected sync pattern that did not arrive in time.
	LongSyncPattern uint64

	// UnrecognisedSyncPattern is reported for interface completeness but is
	// not incremented by the current classification logic.
	UnrecognisedSyncPattern uint64
}

// Decoder converts buffered voltage samples into grayscale PAL frames.
// A Decoder is not safe for concurrent use; Ingest and ReadFrame must be
// called from a single goroutine.
type Decoder struct {
	cfg Config
	log logging.Logger

	// Sample buffer and scan cursor.
	buf        Buffer
	cursor     *Chunk
	nextOffset Offset

	// Pulse extractor.
	analyser *Analyser
	reader   *StreamReader

	// Vertical-interval recognition.
	ring *patternRing

	// Frame raster.
	frame      []byte
	nextLine   int
	frameReady bool

	errs Errors
}

// NewDecoder returns a Decoder configured with cfg, logging with l.
func NewDecoder(l logging.Logger, cfg Config) (*Decoder, error) {
	switch {
	case cfg.SamplePeriodPS == 0:
		return nil, errors.New("pal: sample period not set")
	case cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0:
		return nil, errors.Errorf("pal: invalid frame dimensions %dx%d", cfg.FrameWidth, cfg.FrameHeight)
	case cfg.WhiteLevel <= cfg.BlackLevel:
		return nil, errors.Errorf("pal: white level %d not above black level %d", cfg.WhiteLevel, cfg.BlackLevel)
	case cfg.MaxBacklogSamples <= 0:
		return nil, errors.New("pal: max backlog not set")
	}
	l.Info("initialising PAL decoder", "sampleRateMHz", 1e6/float64(cfg.SamplePeriodPS))
	d := &Decoder{
		cfg:      cfg,
		log:      l,
		analyser: NewAnalyser(0, RightAligned),
		ring:     newPatternRing(patternLength),
		frame:    make([]byte, cfg.FrameWidth*cfg.FrameHeight),
	}
	d.reader = NewStreamReader(d.analyser, cfg.SyncThreshold, false)
	d.resetFrame()
	return d, nil
}

// Ingest moves all chunks from in to the decoder's buffer, leaving in empty.
// If the decoder had consumed all previously buffered samples, scanning
// resumes at the first of the new chunks. If buffered samples now exceed the
// configured backlog, the oldest chunks are dropped until back under the
// limit and scanning restarts at the oldest surviving chunk.
func (d *Decoder) Ingest(in *Buffer) {
	if in.IsEmpty() {
		return
	}
	newTail := in.Tail()
	d.buf.Concatenate(in)
	if d.cursor == nil {
		d.bindChunk(newTail)
	}
	if d.overrun() {
		d.errs.NoSignalOrOverrun++
		d.log.Warning("sample backlog overrun, trimming", "buffered", d.buf.Len(), "limit", d.cfg.MaxBacklogSamples)
		for d.overrun() {
			d.buf.TrimBeforeInclusive(d.buf.Tail())
		}
		d.bindChunk(d.buf.Tail())
	}
}

// ReadFrame scans buffered samples until a complete frame has been decoded,
// returning true when the frame raster is ready to read, or false once all
// buffered samples are exhausted. A non-nil error indicates a producer
// contract violation; the decoder is not usable after an error.
func (d *Decoder) ReadFrame() (bool, error) {
	d.frameReady = false
	for d.cursor != nil {
		for {
			info, ok := d.reader.Next()
			if !ok {
				break
			}
			err := d.processPulse(info)
			if err != nil {
				return false, err
			}
			d.buf.TrimBefore(d.cursor)
			if d.frameReady {
				return true, nil
			}
		}
		d.bindChunk(d.cursor.next)
	}
	return false, nil
}

// Frame returns the decoded frame raster, FrameWidth×FrameHeight bytes in
// row-major order with 0 black. The raster is valid until the next call to
// ReadFrame.
func (d *Decoder) Frame() []byte { return d.frame }

// TakeErrors adds the current error counters into out, if non-nil, and
// zeroes them.
func (d *Decoder) TakeErrors(out *Errors) {
	if out != nil {
		out.NoSignalOrOverrun += d.errs.NoSignalOrOverrun
		out.UnrecognisedPulseType += d.errs.UnrecognisedPulseType
		out.LongSyncPattern += d.errs.LongSyncPattern
		out.UnrecognisedSyncPattern += d.errs.UnrecognisedSyncPattern
	}
	d.errs = Errors{}
}

// bindChunk points the scan cursor and stream reader at c. A chunk whose
// offset does not follow on from the previously scanned samples marks a
// capture discontinuity and resets decode state.
func (d *Decoder) bindChunk(c *Chunk) {
	d.cursor = c
	if c == nil {
		return
	}
	if c.Offset != d.nextOffset {
		d.log.Debug("sample stream desync", "expected", uint64(d.nextOffset), "got", uint64(c.Offset))
		d.handleDesync()
	}
	d.nextOffset = c.Offset + Offset(len(c.Data))
	d.reader.Bind(c)
}

// handleDesync wipes all state derived from the sample stream: the pulse
// analyser history, the pattern ring and the partially decoded frame.
func (d *Decoder) handleDesync() {
	d.reader.Reset()
	d.ring.clear()
	d.resetFrame()
}

func (d *Decoder) overrun() bool {
	return d.buf.Len() > d.cfg.MaxBacklogSamples
}

func (d *Decoder) resetFrame() {
	for i := range d.frame {
		d.frame[i] = 0
	}
	d.nextLine = 0
	d.frameReady = false
}

// nextLineRow returns the raster row for the next scan line and advances the
// line cursor, or nil if the current field has already filled its lines.
func (d *Decoder) nextLineRow() []byte {
	line := d.nextLine
	if line >= d.cfg.FrameHeight {
		return nil
	}
	if d.cfg.Interlaced {
		d.nextLine += 2
	} else {
		d.nextLine++
	}
	return d.frame[line*d.cfg.FrameWidth : (line+1)*d.cfg.FrameWidth]
}

// selectField points the line cursor at the first line of the given field.
func (d *Decoder) selectField(field int) {
	if d.cfg.Interlaced && field == 1 {
		d.nextLine = 1
		return
	}
	d.nextLine = 0
}

// seek returns the chunk containing offset, walking forward or backward from
// c. The offset must lie within the buffered sample range.
func (d *Decoder) seek(c *Chunk, offset Offset) (*Chunk, error) {
	if c == nil {
		return nil, nil
	}
	for c.next != nil && c.Offset+Offset(len(c.Data)) <= offset {
		c = c.next
	}
	for c.prev != nil && c.Offset > offset {
		c = c.prev
	}
	if offset < c.Offset || offset >= c.Offset+Offset(len(c.Data)) {
		return nil, errors.Wrapf(ErrSeekRange, "offset %d not in chunk [%d,%d)", offset, c.Offset, c.Offset+Offset(len(c.Data)))
	}
	return c, nil
}

// convertBrightness maps a millivolt sample onto [0,255] between the
// configured black and white levels.
func (d *Decoder) convertBrightness(v Sample) byte {
	black, white := d.cfg.BlackLevel, d.cfg.WhiteLevel
	switch {
	case v < black:
		return 0
	case v > white:
		return 255
	default:
		return byte(255 * int64(v-black) / int64(white-black))
	}
}

// processLine samples the active region of one scan line, spanning the high
// portion [highBegin,highEnd) of a horizontal pulse less the porch margins,
// into the next raster row.
func (d *Decoder) processLine(highBegin, highEnd Offset) error {
	line := d.nextLineRow()
	if line == nil {
		return nil
	}
	width := len(line)
	backPorch := Offset(uint64(d.cfg.BackPorchNs) * 1000 / uint64(d.cfg.SamplePeriodPS))
	frontPorch := Offset(uint64(d.cfg.FrontPorchNs) * 1000 / uint64(d.cfg.SamplePeriodPS))
	dataBegin := highBegin + backPorch
	dataEnd := highEnd - frontPorch
	dataDuration := dataEnd - dataBegin
	c := d.cursor
	for col := 0; col < width; col++ {
		offset := dataBegin + dataDuration*Offset(col)/Offset(width)
		var err error
		c, err = d.seek(c, offset)
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		line[col] = d.convertBrightness(c.Data[offset-c.Offset])
	}
	return nil
}

// tolerant reports whether measured is within the configured tolerance of
// reference.
func (d *Decoder) tolerant(measured, reference uint64) bool {
	diff := int64(measured) - int64(reference)
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(d.cfg.ToleranceNs)
}

// characterise classifies a pulse by its total duration and the duration of
// its low portion, both in nanoseconds. The reference tolerance windows are
// non-overlapping for sane configurations, so at most one row of the
// taxonomy matches.
func (d *Decoder) characterise(durationNs, lowNs uint64) byte {
	line := uint64(d.cfg.LineDurationNs)
	sync := uint64(d.cfg.SyncDurationNs)
	hsync := uint64(d.cfg.HorizontalSyncLowNs)
	eq := uint64(d.cfg.EqualiserLowNs)
	vsync := uint64(d.cfg.VerticalSyncLowNs)
	switch {
	case d.tolerant(durationNs, line) && d.tolerant(lowNs, hsync):
		return pulseHorizontal
	case d.tolerant(durationNs, line) && d.tolerant(lowNs, eq):
		return pulseField
	case d.tolerant(durationNs, sync) && d.tolerant(lowNs, hsync):
		return pulseField
	case d.tolerant(durationNs, sync) && d.tolerant(lowNs, vsync):
		return pulseVertical
	case d.tolerant(durationNs, sync) && d.tolerant(lowNs, eq):
		return pulseEqualiser
	default:
		return pulseNone
	}
}

// processPulse classifies one extracted pulse and acts on it: horizontal
// pulses rasterise a line, other recognised pulses feed vertical-interval
// pattern matching, and unrecognised pulses void any partial pattern.
func (d *Decoder) processPulse(info PulseInfo) error {
	period := uint64(d.cfg.SamplePeriodPS)
	// The extractor guarantees Start < Transition < End.
	durationNs := uint64(info.End-info.Start) * period / 1000
	highNs := uint64(info.End-info.Transition) * period / 1000
	sym := d.characterise(durationNs, durationNs-highNs)
	switch sym {
	case pulseHorizontal:
		return d.processLine(info.Transition, info.End)
	case pulseNone:
		d.errs.UnrecognisedPulseType++
		d.ring.clear()
	default:
		if !d.ring.push(sym) {
			d.errs.LongSyncPattern++
		}
		d.processPattern()
	}
	return nil
}

// processPattern tests the pattern ring against the vertical-interval
// patterns and resets the line cursor on a match.
func (d *Decoder) processPattern() {
	switch {
	case d.ring.matches(patternNextFrame):
		d.frameReady = true
		d.selectField(0)
	case d.ring.matches(patternNextField):
		d.selectField(1)
	default:
		return
	}
	d.ring.clear()
}
