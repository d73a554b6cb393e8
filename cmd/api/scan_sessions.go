package main

import (
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"classtrack/internal/attendance"
	"classtrack/internal/scan"
)

// scanSession is one live camera scan. Frames are pushed in over HTTP
// and the scanner goroutine drains them until a code decodes, the
// session is cancelled, or the server shuts down.
type scanSession struct {
	id      string
	src     *scan.PushSource
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time

	mu      sync.Mutex
	outcome *attendance.Outcome
	err     error
}

func (s *scanSession) result() (*attendance.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.err
}

type scanSessions struct {
	mu   sync.Mutex
	live map[string]*scanSession
	att  *attendance.Service
}

func newScanSessions(att *attendance.Service) *scanSessions {
	return &scanSessions{live: make(map[string]*scanSession), att: att}
}

// open starts a session. Only one check-in may be in flight, so opening
// fails with ErrCheckInBusy while another scan or submission is active.
func (m *scanSessions) open() (*scanSession, error) {
	if !m.att.BeginScan() {
		return nil, attendance.ErrCheckInBusy
	}

	src := scan.NewPushSource(8)
	ctx, cancel := context.WithCancel(context.Background())
	sess := &scanSession{
		id:      uuid.New().String(),
		src:     src,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}

	m.mu.Lock()
	m.live[sess.id] = sess
	m.mu.Unlock()

	scanner := scan.New(src, scan.QRDecode(), 0)
	go func() {
		defer close(sess.done)
		code, err := scanner.Run(ctx)
		if err != nil {
			m.att.EndScan()
			if !errors.Is(err, scan.ErrStopped) {
				sess.mu.Lock()
				sess.err = err
				sess.mu.Unlock()
			}
			return
		}
		outcome, err := m.att.CheckIn(context.Background(), code)
		sess.mu.Lock()
		if err != nil {
			sess.err = err
		} else {
			sess.outcome = &outcome
		}
		sess.mu.Unlock()
	}()

	return sess, nil
}

func (m *scanSessions) get(id string) (*scanSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.live[id]
	return sess, ok
}

// close cancels a session and waits for its scanner goroutine to finish
// so the check-in state is settled before the response goes out.
func (m *scanSessions) close(id string) bool {
	m.mu.Lock()
	sess, ok := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	sess.cancel()
	sess.src.Stop()
	<-sess.done
	return true
}

func (m *scanSessions) closeAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.close(id)
	}
}

func registerScanRoutes(g *gin.RouterGroup, svc *services) {
	g.POST("/scan/sessions", func(c *gin.Context) {
		sess, err := svc.sessions.open()
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"session_id": sess.id, "started_at": sess.started})
	})

	// Frames arrive one per request as PNG or JPEG bodies. A full
	// buffer drops the frame; the client just sends the next one.
	g.POST("/scan/sessions/:id/frames", func(c *gin.Context) {
		sess, ok := svc.sessions.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		img, _, err := image.Decode(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "undecodable frame"})
			return
		}
		accepted := sess.src.Push(img)
		c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
	})

	g.GET("/scan/sessions/:id", func(c *gin.Context) {
		sess, ok := svc.sessions.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		select {
		case <-sess.done:
			outcome, err := sess.result()
			if err != nil {
				writeErr(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"state": "done", "outcome": outcome})
		default:
			c.JSON(http.StatusOK, gin.H{"state": "scanning", "pending": svc.sessions.att.Pending()})
		}
	})

	g.DELETE("/scan/sessions/:id", func(c *gin.Context) {
		if !svc.sessions.close(c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "closed"})
	})
}
