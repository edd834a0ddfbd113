/*
DESCRIPTION
  encoders.go provides the JPEG frame encoder: an io.WriteCloser that takes
  raw grayscale rasters and writes encoded images to its destination.

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
	"fmt"
	"image"
	"io"

	"github.com/dlecorfec/progjpeg"
)

// jpegEncoder is an io.WriteCloser that encodes raw grayscale rasters to
// JPEG. Each Write must be one whole frame of w×h bytes.
type jpegEncoder struct {
	dst  io.WriteCloser
	w, h int
	opts progjpeg.Options
	buf  bytes.Buffer
}

// newJPEGEncoder returns a jpegEncoder writing to dst. When progressive is
// set frames are written as progressive scans, using the encoder's default
// grayscale scan script.
func newJPEGEncoder(dst io.WriteCloser, w, h, quality int, progressive bool) *jpegEncoder {
	return &jpegEncoder{
		dst:  dst,
		w:    w,
		h:    h,
		opts: progjpeg.Options{Quality: quality, Progressive: progressive},
	}
}

// Write implements io.Writer.
func (e *jpegEncoder) Write(f []byte) (int, error) {
	if len(f) != e.w*e.h {
		return 0, fmt.Errorf("frame size %d does not match raster %dx%d", len(f), e.w, e.h)
	}
	img := &image.Gray{
		Pix:    f,
		Stride: e.w,
		Rect:   image.Rect(0, 0, e.w, e.h),
	}
	e.buf.Reset()
	err := progjpeg.Encode(&e.buf, img, &e.opts)
	if err != nil {
		return 0, fmt.Errorf("could not encode frame: %w", err)
	}
	_, err = e.dst.Write(e.buf.Bytes())
	if err != nil {
		return 0, err
	}
	return len(f), nil
}

// Close implements io.Closer.
func (e *jpegEncoder) Close() error { return e.dst.Close() }
