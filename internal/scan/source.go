package scan

import (
	"context"
	"errors"
	"image"
	"sync"
)

// ErrSourceClosed is returned by Frame once the source is released; the
// scanner treats it as terminal rather than a dropped frame.
var ErrSourceClosed = errors.New("scan: frame source closed")

// PushSource is a FrameSource fed by an external producer, used when
// frames arrive over HTTP from a browser or kiosk camera instead of from
// locally owned hardware.
type PushSource struct {
	frames chan image.Image

	mu     sync.Mutex
	closed bool
}

// NewPushSource creates a source buffering up to size frames. Frames
// pushed while the buffer is full are dropped, mirroring a camera that
// produces faster than the decoder samples.
func NewPushSource(size int) *PushSource {
	if size <= 0 {
		size = 4
	}
	return &PushSource{frames: make(chan image.Image, size)}
}

// Start acquires the source. A pushed source has no hardware to open.
func (s *PushSource) Start(ctx context.Context) error { return nil }

// Frame blocks until a frame is pushed, the source is closed, or ctx is
// cancelled.
func (s *PushSource) Frame(ctx context.Context) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case img, ok := <-s.frames:
		if !ok {
			return nil, ErrSourceClosed
		}
		return img, nil
	}
}

// Push offers a frame to the scanner. It reports false when the frame
// was dropped (buffer full) or the source is closed.
func (s *PushSource) Push(img image.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.frames <- img:
		return true
	default:
		return false
	}
}

// Stop releases the source. Safe to call more than once.
func (s *PushSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.frames)
	}
	return nil
}
