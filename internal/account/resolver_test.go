package account

import (
	"context"
	"errors"
	"testing"
)

type fakeLookup struct {
	students map[string]Student
	err      error
	calls    int
}

func (f *fakeLookup) GetStudentByCode(ctx context.Context, code string) (Student, error) {
	f.calls++
	if f.err != nil {
		return Student{}, f.err
	}
	st, ok := f.students[code]
	if !ok {
		return Student{}, ErrNotFound
	}
	return st, nil
}

func snapshotWith(t *testing.T, students ...Student) *Snapshot {
	t.Helper()
	snap := NewSnapshot(nil, "")
	if err := snap.Replace(context.Background(), students); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	return snap
}

func TestResolveFromStore(t *testing.T) {
	primary := &fakeLookup{students: map[string]Student{
		"S001A2": {ID: "stu-1", Name: "Lina", Code: "S001A2"},
	}}
	r := NewResolver(primary, snapshotWith(t))

	res, err := r.Resolve(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.From != TierStore {
		t.Errorf("From = %q, want store", res.From)
	}
	if res.Student.ID != "stu-1" {
		t.Errorf("student = %+v", res.Student)
	}
}

func TestResolveStoreNotFoundIsFinal(t *testing.T) {
	// The snapshot would answer, but a definitive miss from the store
	// must not fall through to possibly stale data.
	primary := &fakeLookup{students: map[string]Student{}}
	snap := snapshotWith(t, Student{ID: "stu-9", Code: "GHOST9"})
	r := NewResolver(primary, snap)

	_, err := r.Resolve(context.Background(), "GHOST9")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestResolveFallsBackOnStoreFailure(t *testing.T) {
	primary := &fakeLookup{err: errors.New("connection refused")}
	snap := snapshotWith(t, Student{ID: "stu-1", Name: "Lina", Code: "S001A2"})
	r := NewResolver(primary, snap)

	res, err := r.Resolve(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.From != TierSnapshot {
		t.Errorf("From = %q, want snapshot", res.From)
	}

	// Repeat resolution is stable while the store stays down.
	again, err := r.Resolve(context.Background(), "S001A2")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if again.Student.ID != res.Student.ID || again.From != TierSnapshot {
		t.Errorf("second resolution differs: %+v", again)
	}
}

func TestResolveStoreFailureUnknownCode(t *testing.T) {
	primary := &fakeLookup{err: errors.New("connection refused")}
	r := NewResolver(primary, snapshotWith(t))

	_, err := r.Resolve(context.Background(), "NOSUCH")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestSnapshotReplaceSwapsWholeRoster(t *testing.T) {
	snap := snapshotWith(t, Student{ID: "stu-1", Code: "AAAAAA"})
	if _, ok := snap.Lookup("AAAAAA"); !ok {
		t.Fatal("expected AAAAAA in snapshot")
	}

	if err := snap.Replace(context.Background(), []Student{{ID: "stu-2", Code: "BBBBBB"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, ok := snap.Lookup("AAAAAA"); ok {
		t.Error("replaced roster must not retain old codes")
	}
	if _, ok := snap.Lookup("BBBBBB"); !ok {
		t.Error("expected BBBBBB after replace")
	}
}
