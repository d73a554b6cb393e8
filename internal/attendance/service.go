package attendance

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"classtrack/internal/account"
	"classtrack/internal/queue"
)

// Status of one attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Record is one recorded attendance. StudentName is a snapshot taken at
// recording time and never re-synced. LessonNumber is the raw ordinal.
type Record struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	StudentName  string    `json:"student_name"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Status       Status    `json:"status"`
	LessonNumber int       `json:"lesson_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// State of the check-in pipeline.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateProcessing
)

// ErrCheckInBusy rejects a submission while a prior code is in flight.
var ErrCheckInBusy = errors.New("attendance: check-in already in progress")

// RecordStore is the persistence surface of the pipeline; *Repository
// implements it.
type RecordStore interface {
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

// Resolver maps a check-in code to a student; *account.Resolver
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, code string) (account.Resolution, error)
}

// PaymentChecker answers whether a lesson ordinal is covered by a
// recorded payment.
type PaymentChecker interface {
	HasPaidForLesson(ctx context.Context, studentID string, rawOrdinal int) (bool, error)
}

// Outcome is a successful check-in's result, including the unpaid
// warning flag and which lookup tier resolved the student.
type Outcome struct {
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	RawOrdinal     int    `json:"lesson_number"`
	DisplayOrdinal int    `json:"display_lesson"`
	Paid           bool   `json:"paid"`
	ResolvedFrom   string `json:"resolved_from"`
	Record         Record `json:"record"`
}

// Service is the check-in orchestrator. For one check-in the steps run in
// fixed order: resolve, ordinal, payment check, record. A single atomic
// state word gates re-entrancy: a second submission while one is in
// flight fails with ErrCheckInBusy rather than interleaving.
type Service struct {
	records  RecordStore
	resolver Resolver
	payments PaymentChecker
	events   queue.Queue
	cycle    int

	state atomic.Int32

	mu      sync.Mutex
	pending string
}

// NewService wires the orchestrator.
func NewService(records RecordStore, resolver Resolver, payments PaymentChecker, events queue.Queue, cycle int) *Service {
	if cycle <= 0 {
		cycle = DefaultCycle
	}
	return &Service{
		records:  records,
		resolver: resolver,
		payments: payments,
		events:   events,
		cycle:    cycle,
	}
}

// State reports the pipeline state.
func (s *Service) State() State { return State(s.state.Load()) }

// BeginScan moves idle to scanning; it fails when a check-in is active.
func (s *Service) BeginScan() bool {
	return s.state.CompareAndSwap(int32(StateIdle), int32(StateScanning))
}

// EndScan returns from scanning to idle (user cancelled the camera).
func (s *Service) EndScan() {
	s.state.CompareAndSwap(int32(StateScanning), int32(StateIdle))
}

// Pending returns the buffered code of a failed check-in, kept so the
// operator can retry without re-entering it.
func (s *Service) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Service) setPending(code string) {
	s.mu.Lock()
	s.pending = code
	s.mu.Unlock()
}

// CheckIn runs one end-to-end check-in for a code obtained from the
// scanner or from manual entry; both sources share this path, so manual
// submissions get the same ordinal computation and payment check.
//
// The code buffer is cleared on success and on not-found (operator
// re-enters for a different student) but preserved on transient errors so
// a retry needs no re-entry. Unpaid lessons are recorded anyway; the flag
// is a warning, never a block.
func (s *Service) CheckIn(ctx context.Context, code string) (Outcome, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) &&
		!s.state.CompareAndSwap(int32(StateScanning), int32(StateProcessing)) {
		return Outcome{}, ErrCheckInBusy
	}
	defer s.state.Store(int32(StateIdle))

	s.setPending(code)

	res, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, account.ErrStudentNotFound) {
			s.setPending("")
			checkinTotal.WithLabelValues("not_found").Inc()
			return Outcome{}, err
		}
		checkinTotal.WithLabelValues("error").Inc()
		return Outcome{}, err
	}
	st := res.Student

	prior, err := s.records.CountByStudent(ctx, st.ID)
	if err != nil {
		checkinTotal.WithLabelValues("error").Inc()
		return Outcome{}, err
	}
	raw, display := NextOrdinal(prior, s.cycle)

	paid, err := s.payments.HasPaidForLesson(ctx, st.ID, raw)
	if err != nil {
		checkinTotal.WithLabelValues("error").Inc()
		return Outcome{}, err
	}

	rec, err := s.records.InsertRecord(ctx, Record{
		StudentID:    st.ID,
		StudentName:  st.Name,
		Status:       StatusPresent,
		LessonNumber: raw,
	})
	if err != nil {
		checkinTotal.WithLabelValues("error").Inc()
		return Outcome{}, err
	}

	s.setPending("")
	checkinTotal.WithLabelValues("success").Inc()
	if !paid {
		checkinUnpaid.Inc()
	}
	s.notifyCheckin(ctx, rec.ID)

	return Outcome{
		StudentID:      st.ID,
		StudentName:    st.Name,
		RawOrdinal:     raw,
		DisplayOrdinal: display,
		Paid:           paid,
		ResolvedFrom:   res.From,
		Record:         rec,
	}, nil
}

// Mark records a manual roster entry made by an administrator. The
// lesson ordinal is still computed, never caller-supplied.
func (s *Service) Mark(ctx context.Context, studentID, studentName string, status Status) (Record, error) {
	if status != StatusPresent && status != StatusAbsent {
		return Record{}, errors.New("attendance: status must be present or absent")
	}
	prior, err := s.records.CountByStudent(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	raw, _ := NextOrdinal(prior, s.cycle)
	return s.records.InsertRecord(ctx, Record{
		StudentID:    studentID,
		StudentName:  studentName,
		Status:       status,
		LessonNumber: raw,
	})
}

// Cycle exposes the configured lesson cycle length.
func (s *Service) Cycle() int { return s.cycle }

func (s *Service) notifyCheckin(ctx context.Context, recordID string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, queue.Message{Type: queue.TypeCheckin, Body: []byte(recordID)}); err != nil {
		log.Printf("checkin publish failed: %v", err)
	}
}
