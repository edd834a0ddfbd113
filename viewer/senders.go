/*
NAME
  senders.go

DESCRIPTION
  senders.go provides the senders to which encoded frames are written, and
  the pool-buffered frame queue that joins the decode and encode routines.

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

package viewer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ausocean/tv/filter"
	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/pool"
)

// Frame queue pool buffer read timeout.
const framePoolReadTimeout = 1 * time.Second

// frameQueue is a filter.Filter that buffers raw frames in a pool buffer and
// writes them to its destination from a separate output routine, decoupling
// the decode rate from the encode rate.
type frameQueue struct {
	dst  io.WriteCloser
	pool *pool.Buffer
	done chan struct{}
	log  logging.Logger
	wg   sync.WaitGroup
}

// Assert the frame queue can terminate a filter chain.
var _ filter.Filter = (*frameQueue)(nil)

// newFrameQueue returns a new frameQueue and starts its output routine.
func newFrameQueue(dst io.WriteCloser, log logging.Logger, rb *pool.Buffer) *frameQueue {
	q := &frameQueue{
		dst:  dst,
		pool: rb,
		done: make(chan struct{}),
		log:  log,
	}
	q.wg.Add(1)
	go q.output()
	return q
}

// output drains the pool buffer to the destination encoder.
func (q *frameQueue) output() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			q.log.Info("terminating frame queue output routine")
			return
		default:
			chunk, err := q.pool.Next(framePoolReadTimeout)
			switch err {
			case nil:
			case io.EOF, pool.ErrTimeout:
				continue
			default:
				q.log.Error("unexpected error from frame pool", "error", err.Error())
				continue
			}
			_, err = q.dst.Write(chunk.Bytes())
			if err != nil {
				q.log.Debug("failed frame write", "error", err.Error())
			}
			chunk.Close()
		}
	}
}

// Write implements io.Writer. Frames that cannot be queued are dropped with
// a warning; an overflowing queue means the encoder is not keeping up and
// stale frames are worth less than fresh ones.
func (q *frameQueue) Write(f []byte) (int, error) {
	n, err := q.pool.Write(f)
	if err == nil {
		q.pool.Flush()
		return n, nil
	}
	q.log.Warning("could not queue frame", "error", err.Error())
	return len(f), nil
}

// Close implements io.Closer. The output routine is stopped and the
// destination closed.
func (q *frameQueue) Close() error {
	close(q.done)
	q.wg.Wait()
	return q.dst.Close()
}

// fileSender implements io.WriteCloser to write frames to disk, either
// appending to the one file or writing a numbered file per frame.
type fileSender struct {
	file      *os.File
	path      string
	log       logging.Logger
	multiFile bool // Whether each write results in a new file.
	count     int
}

func newFileSender(l logging.Logger, path string, multiFile bool) *fileSender {
	return &fileSender{
		path:      path,
		log:       l,
		multiFile: multiFile,
	}
}

// Write implements io.Writer.
func (s *fileSender) Write(d []byte) (int, error) {
	s.log.Debug("checking disk space")
	var stat syscall.Statfs_t
	if err := syscall.Statfs("/", &stat); err != nil {
		return 0, fmt.Errorf("could not read system disk space, abandoning write: %w", err)
	}
	availableSpace := stat.Bavail * uint64(stat.Bsize)
	var spaceBuffer uint64 = 50000000 // 50MB.
	if availableSpace < spaceBuffer {
		return 0, fmt.Errorf("reached limit of disk space with a buffer of %v bytes, abandoning write", spaceBuffer)
	}

	if s.multiFile {
		name := filepath.Join(s.path, fmt.Sprintf("frame-%06d.jpg", s.count))
		s.count++
		s.log.Debug("writing frame file", "name", name)
		return len(d), os.WriteFile(name, d, 0644)
	}

	if s.file == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return 0, fmt.Errorf("could not create output file: %w", err)
		}
		s.file = f
	}
	return s.file.Write(d)
}

// Close implements io.Closer.
func (s *fileSender) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// stdoutSender implements io.WriteCloser to write frames to standard output,
// the way the decoder is composed with downstream tooling in a shell
// pipeline.
type stdoutSender struct{}

func newStdoutSender() *stdoutSender { return &stdoutSender{} }

func (s *stdoutSender) Write(d []byte) (int, error) { return os.Stdout.Write(d) }

func (s *stdoutSender) Close() error { return nil }
