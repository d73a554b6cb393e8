// Package scan turns a stream of camera frames into a decoded check-in
// code. The sampling loop is an explicit cancellable task: each cycle
// grabs one frame, tries to decode it, and either returns the code or
// waits for the next tick. "No code in this frame" is the normal case.
package scan

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"
)

var (
	// ErrPermissionDenied means the capture device refused access;
	// scanning never starts.
	ErrPermissionDenied = errors.New("scan: camera permission denied")
	// ErrCameraUnavailable means the capture device could not be
	// acquired (busy or missing); scanning never starts.
	ErrCameraUnavailable = errors.New("scan: camera unavailable")
	// ErrStopped is returned when the scan is cancelled before a code
	// is found.
	ErrStopped = errors.New("scan: stopped")
)

// FrameSource abstracts the capture device. Start acquires the device
// exclusively; Stop releases it and must be safe to call once after a
// successful Start on every exit path.
type FrameSource interface {
	Start(ctx context.Context) error
	Frame(ctx context.Context) (image.Image, error)
	Stop() error
}

// Decode inspects one frame and reports a code when one is present.
type Decode func(img image.Image) (string, bool)

// Scanner drives the per-frame sampling loop.
type Scanner struct {
	src      FrameSource
	decode   Decode
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

// New creates a scanner sampling at interval. Zero interval defaults to
// roughly display refresh rate.
func New(src FrameSource, decode Decode, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Scanner{src: src, decode: decode, interval: interval}
}

// Run acquires the source, samples frames until a code is decoded or ctx
// is cancelled, and releases the source before returning. The source is
// released exactly once on every path, including acquisition failure
// part-way through.
func (s *Scanner) Run(ctx context.Context) (string, error) {
	if err := s.src.Start(ctx); err != nil {
		return "", err
	}
	defer s.release()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ErrStopped
		case <-ticker.C:
		}

		frame, err := s.src.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSourceClosed) {
				return "", ErrStopped
			}
			// A dropped frame is not fatal; wait for the next tick.
			continue
		}
		if frame == nil {
			continue
		}
		if code, ok := s.decode(frame); ok {
			return code, nil
		}
	}
}

func (s *Scanner) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	_ = s.src.Stop()
}
