package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"classtrack/internal/account"
)

type fakeRecords struct {
	records   []Record
	insertErr error
	countErr  error
}

func (f *fakeRecords) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if f.insertErr != nil {
		return Record{}, f.insertErr
	}
	rec.ID = fmt.Sprintf("rec-%d", len(f.records)+1)
	rec.Date = time.Now()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRecords) CountByStudent(ctx context.Context, studentID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, r := range f.records {
		if r.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

type fakeResolver struct {
	students map[string]account.Student
	err      error
	block    chan struct{}
}

func (f *fakeResolver) Resolve(ctx context.Context, code string) (account.Resolution, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return account.Resolution{}, f.err
	}
	st, ok := f.students[code]
	if !ok {
		return account.Resolution{}, account.ErrStudentNotFound
	}
	return account.Resolution{Student: st, From: account.TierStore}, nil
}

type fakePayments struct {
	paid map[string][]int
}

func (f *fakePayments) HasPaidForLesson(ctx context.Context, studentID string, rawOrdinal int) (bool, error) {
	for _, ord := range f.paid[studentID] {
		if ord == rawOrdinal {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(records *fakeRecords, resolver *fakeResolver, payments *fakePayments) *Service {
	if payments == nil {
		payments = &fakePayments{}
	}
	return NewService(records, resolver, payments, nil, 8)
}

func TestCheckInSuccess(t *testing.T) {
	records := &fakeRecords{}
	resolver := &fakeResolver{students: map[string]account.Student{
		"S001A2": {ID: "stu-1", Name: "Lina"},
	}}
	svc := newTestService(records, resolver, nil)

	out, err := svc.CheckIn(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if out.StudentID != "stu-1" || out.StudentName != "Lina" {
		t.Errorf("wrong student: %+v", out)
	}
	if out.RawOrdinal != 1 || out.DisplayOrdinal != 1 {
		t.Errorf("ordinals = (%d, %d), want (1, 1)", out.RawOrdinal, out.DisplayOrdinal)
	}
	if out.Paid {
		t.Error("no payment recorded, Paid should be false")
	}
	if out.Record.Status != StatusPresent {
		t.Errorf("status = %q, want present", out.Record.Status)
	}
	if svc.Pending() != "" {
		t.Errorf("pending = %q, want cleared", svc.Pending())
	}
	if svc.State() != StateIdle {
		t.Errorf("state = %d, want idle", svc.State())
	}
}

func TestCheckInNeverDeduplicates(t *testing.T) {
	records := &fakeRecords{}
	resolver := &fakeResolver{students: map[string]account.Student{
		"S001A2": {ID: "stu-1", Name: "Lina"},
	}}
	svc := newTestService(records, resolver, nil)

	first, err := svc.CheckIn(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}
	second, err := svc.CheckIn(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("second CheckIn: %v", err)
	}
	if first.Record.ID == second.Record.ID {
		t.Error("repeat check-in must produce a distinct record")
	}
	if second.RawOrdinal != 2 {
		t.Errorf("second raw ordinal = %d, want 2", second.RawOrdinal)
	}
	if len(records.records) != 2 {
		t.Errorf("records = %d, want 2", len(records.records))
	}
}

func TestCheckInUnknownCode(t *testing.T) {
	records := &fakeRecords{}
	resolver := &fakeResolver{students: map[string]account.Student{}}
	svc := newTestService(records, resolver, nil)

	_, err := svc.CheckIn(context.Background(), "NOSUCH")
	if !errors.Is(err, account.ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
	if len(records.records) != 0 {
		t.Error("unknown code must not create a record")
	}
	if svc.Pending() != "" {
		t.Error("unknown code clears the pending buffer")
	}
}

func TestCheckInTransientErrorKeepsPending(t *testing.T) {
	records := &fakeRecords{}
	resolver := &fakeResolver{err: errors.New("store unreachable")}
	svc := newTestService(records, resolver, nil)

	_, err := svc.CheckIn(context.Background(), "S001A2")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := svc.Pending(); got != "S001A2" {
		t.Errorf("pending = %q, want code preserved for retry", got)
	}
	if svc.State() != StateIdle {
		t.Errorf("state = %d, want idle after failure", svc.State())
	}
}

func TestCheckInRejectsReentry(t *testing.T) {
	block := make(chan struct{})
	records := &fakeRecords{}
	resolver := &fakeResolver{
		students: map[string]account.Student{"S001A2": {ID: "stu-1", Name: "Lina"}},
		block:    block,
	}
	svc := newTestService(records, resolver, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.CheckIn(context.Background(), "S001A2"); err != nil {
			t.Errorf("first CheckIn: %v", err)
		}
	}()

	// Wait for the first check-in to take the processing slot.
	deadline := time.After(time.Second)
	for svc.State() != StateProcessing {
		select {
		case <-deadline:
			t.Fatal("first check-in never entered processing")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := svc.CheckIn(context.Background(), "S002B3"); !errors.Is(err, ErrCheckInBusy) {
		t.Errorf("err = %v, want ErrCheckInBusy", err)
	}

	close(block)
	<-done
	if len(records.records) != 1 {
		t.Errorf("records = %d, want 1", len(records.records))
	}
}

func TestCheckInUnpaidIsWarningNotBlock(t *testing.T) {
	records := &fakeRecords{}
	resolver := &fakeResolver{students: map[string]account.Student{
		"S001A2": {ID: "stu-1", Name: "Lina"},
	}}
	payments := &fakePayments{paid: map[string][]int{"stu-1": {2}}}
	svc := newTestService(records, resolver, payments)

	out, err := svc.CheckIn(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if out.Paid {
		t.Error("lesson 1 is unpaid, Paid should be false")
	}
	if len(records.records) != 1 {
		t.Error("unpaid check-in must still be recorded")
	}

	out, err = svc.CheckIn(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("second CheckIn: %v", err)
	}
	if !out.Paid {
		t.Error("lesson 2 is paid, Paid should be true")
	}
}

func TestScanStateGuards(t *testing.T) {
	svc := newTestService(&fakeRecords{}, &fakeResolver{}, nil)

	if !svc.BeginScan() {
		t.Fatal("BeginScan from idle should succeed")
	}
	if svc.BeginScan() {
		t.Error("BeginScan while scanning should fail")
	}
	svc.EndScan()
	if svc.State() != StateIdle {
		t.Errorf("state = %d, want idle after EndScan", svc.State())
	}
}

func TestCheckInAcceptsScanningState(t *testing.T) {
	records := &fakeRecords{}
	resolver := &fakeResolver{students: map[string]account.Student{
		"S001A2": {ID: "stu-1", Name: "Lina"},
	}}
	svc := newTestService(records, resolver, nil)

	if !svc.BeginScan() {
		t.Fatal("BeginScan failed")
	}
	if _, err := svc.CheckIn(context.Background(), "S001A2"); err != nil {
		t.Fatalf("CheckIn from scanning: %v", err)
	}
	if svc.State() != StateIdle {
		t.Errorf("state = %d, want idle", svc.State())
	}
}

func TestMarkValidatesStatus(t *testing.T) {
	records := &fakeRecords{}
	svc := newTestService(records, &fakeResolver{}, nil)

	if _, err := svc.Mark(context.Background(), "stu-1", "Lina", "late"); err == nil {
		t.Error("Mark must reject unknown statuses")
	}
	rec, err := svc.Mark(context.Background(), "stu-1", "Lina", StatusAbsent)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if rec.LessonNumber != 1 {
		t.Errorf("lesson = %d, want 1", rec.LessonNumber)
	}
	if rec.Status != StatusAbsent {
		t.Errorf("status = %q, want absent", rec.Status)
	}
}
