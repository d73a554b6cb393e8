package account

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	students map[string]Student
	parents  map[string]Parent
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{students: make(map[string]Student), parents: make(map[string]Parent)}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) InsertStudent(ctx context.Context, s Student) (Student, error) {
	s.ID = f.id()
	f.students[s.ID] = s
	return s, nil
}

func (f *fakeStore) UpdateStudent(ctx context.Context, s Student) error {
	if _, ok := f.students[s.ID]; !ok {
		return ErrNotFound
	}
	f.students[s.ID] = s
	return nil
}

func (f *fakeStore) DeleteStudent(ctx context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return ErrNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStore) GetStudent(ctx context.Context, id string) (Student, error) {
	s, ok := f.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) GetStudentByCode(ctx context.Context, code string) (Student, error) {
	for _, s := range f.students {
		if s.Code == code {
			return s, nil
		}
	}
	return Student{}, ErrNotFound
}

func (f *fakeStore) GetStudentByPhone(ctx context.Context, phone string) (Student, error) {
	for _, s := range f.students {
		if s.Phone == phone {
			return s, nil
		}
	}
	return Student{}, ErrNotFound
}

func (f *fakeStore) ListStudents(ctx context.Context) ([]Student, error) {
	out := make([]Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) InsertParent(ctx context.Context, p Parent) (Parent, error) {
	p.ID = f.id()
	f.parents[p.ID] = p
	return p, nil
}

func (f *fakeStore) UpdateParent(ctx context.Context, p Parent) error {
	if _, ok := f.parents[p.ID]; !ok {
		return ErrNotFound
	}
	f.parents[p.ID] = p
	return nil
}

func (f *fakeStore) DeleteParent(ctx context.Context, id string) error {
	if _, ok := f.parents[id]; !ok {
		return ErrNotFound
	}
	delete(f.parents, id)
	return nil
}

func (f *fakeStore) GetParentByPhone(ctx context.Context, phone string) (Parent, error) {
	for _, p := range f.parents {
		if p.Phone == phone {
			return p, nil
		}
	}
	return Parent{}, ErrNotFound
}

func (f *fakeStore) ListParents(ctx context.Context) ([]Parent, error) {
	out := make([]Parent, 0, len(f.parents))
	for _, p := range f.parents {
		out = append(out, p)
	}
	return out, nil
}

func newTestService(store Store) *Service {
	return NewService(store, NewSnapshot(nil, ""), nil, "01000000000", "admin-secret")
}

func TestCreateStudentIssuesCredentials(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	created, err := svc.CreateStudent(context.Background(), "Lina", "01012345678", "01087654321", "A", GradeFirst)
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if len(created.Code) != codeLength {
		t.Errorf("code %q has wrong length", created.Code)
	}
	if created.Password == "" {
		t.Error("initial password must be returned once")
	}
	if created.PasswordHash == created.Password {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(created.Password)); err != nil {
		t.Error("stored hash does not match issued password")
	}
}

func TestCreateStudentRejectsUnknownGrade(t *testing.T) {
	svc := newTestService(newFakeStore())
	if _, err := svc.CreateStudent(context.Background(), "Lina", "01012345678", "", "A", "fourth"); err == nil {
		t.Error("unknown grade must be rejected")
	}
}

func TestUpdateStudentKeepsCodeAndPassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	created, err := svc.CreateStudent(context.Background(), "Lina", "01012345678", "", "A", GradeFirst)
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	updated, err := svc.UpdateStudent(context.Background(), created.ID, "Lina M", "01099999999", "", "", "B", GradeSecond)
	if err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
	if updated.Code != created.Code {
		t.Error("update must not rotate the student code")
	}
	if updated.PasswordHash != created.PasswordHash {
		t.Error("empty password must keep the stored hash")
	}
	if updated.Name != "Lina M" || updated.Grade != GradeSecond {
		t.Errorf("fields not applied: %+v", updated)
	}
}

func TestLoginRoles(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	student, err := svc.CreateStudent(ctx, "Lina", "01012345678", "", "A", GradeFirst)
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	parent, err := svc.CreateParent(ctx, "01087654321", student.Code)
	if err != nil {
		t.Fatalf("CreateParent: %v", err)
	}

	tests := []struct {
		name     string
		phone    string
		password string
		wantRole Role
		wantErr  bool
	}{
		{"admin", "01000000000", "admin-secret", RoleAdmin, false},
		{"admin wrong password", "01000000000", "nope", "", true},
		{"student", "01012345678", student.Password, RoleStudent, false},
		{"student wrong password", "01012345678", "nope", "", true},
		{"parent", "01087654321", parent.Password, RoleParent, false},
		{"unknown phone", "01011112222", "whatever", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, err := svc.Login(ctx, tt.phone, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Fatalf("err = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if principal.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", principal.Role, tt.wantRole)
			}
		})
	}
}

func TestCreateParentRequiresKnownCode(t *testing.T) {
	svc := newTestService(newFakeStore())
	if _, err := svc.CreateParent(context.Background(), "01087654321", "NOSUCH"); !errors.Is(err, ErrUnknownStudentCode) {
		t.Fatalf("err = %v, want ErrUnknownStudentCode", err)
	}
}
