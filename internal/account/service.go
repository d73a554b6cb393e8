package account

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"classtrack/internal/queue"
)

var (
	// ErrInvalidCredentials is returned for any failed login, regardless
	// of which part of the credentials was wrong.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrStudentNotFound is returned when a check-in code matches no
	// student on any lookup tier.
	ErrStudentNotFound = errors.New("account: student not found")
	// ErrUnknownStudentCode is returned when linking a parent to a code
	// that matches no student.
	ErrUnknownStudentCode = errors.New("account: unknown student code")
)

// Store is the persistence surface the service needs. *Repository
// implements it.
type Store interface {
	InsertStudent(ctx context.Context, s Student) (Student, error)
	UpdateStudent(ctx context.Context, s Student) error
	DeleteStudent(ctx context.Context, id string) error
	GetStudent(ctx context.Context, id string) (Student, error)
	GetStudentByCode(ctx context.Context, code string) (Student, error)
	GetStudentByPhone(ctx context.Context, phone string) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	InsertParent(ctx context.Context, p Parent) (Parent, error)
	UpdateParent(ctx context.Context, p Parent) error
	DeleteParent(ctx context.Context, id string) error
	GetParentByPhone(ctx context.Context, phone string) (Parent, error)
	ListParents(ctx context.Context) ([]Parent, error)
}

// Service owns account lifecycle and login for all three roles.
type Service struct {
	store     Store
	snapshot  *Snapshot
	events    queue.Queue
	adminName string
	adminHash []byte
}

// NewService creates the account service. The admin principal is seeded
// from config; its password is hashed once here so the raw value is not
// kept around.
func NewService(store Store, snapshot *Snapshot, events queue.Queue, adminPhone, adminPassword string) *Service {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("admin password hash failed: %v", err)
	}
	return &Service{
		store:     store,
		snapshot:  snapshot,
		events:    events,
		adminName: adminPhone,
		adminHash: hash,
	}
}

// Login authenticates a phone/password pair against admin, then students,
// then parents, and returns the matching principal.
func (s *Service) Login(ctx context.Context, phone, password string) (Principal, error) {
	if phone == s.adminName {
		if bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) == nil {
			return Principal{ID: "admin", Name: "admin", Role: RoleAdmin}, nil
		}
		return Principal{}, ErrInvalidCredentials
	}

	if st, err := s.store.GetStudentByPhone(ctx, phone); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) == nil {
			stCopy := st
			return Principal{ID: st.ID, Name: st.Name, Role: RoleStudent, Student: &stCopy}, nil
		}
		return Principal{}, ErrInvalidCredentials
	} else if !errors.Is(err, ErrNotFound) {
		return Principal{}, err
	}

	if p, err := s.store.GetParentByPhone(ctx, phone); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil {
			pCopy := p
			return Principal{ID: p.ID, Name: "guardian of " + p.StudentName, Role: RoleParent, Parent: &pCopy}, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return Principal{}, err
	}

	return Principal{}, ErrInvalidCredentials
}

// CreatedStudent is returned from CreateStudent; Password carries the
// generated initial password exactly once.
type CreatedStudent struct {
	Student
	Password string `json:"password"`
}

// CreateStudent registers a student with a fresh unique code and a
// generated password.
func (s *Service) CreateStudent(ctx context.Context, name, phone, parentPhone, group string, grade GradeTier) (CreatedStudent, error) {
	if name == "" || phone == "" {
		return CreatedStudent{}, errors.New("account: name and phone required")
	}
	if !ValidGrade(grade) {
		return CreatedStudent{}, fmt.Errorf("account: unknown grade %q", grade)
	}

	password := NewPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return CreatedStudent{}, err
	}

	st := Student{
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		Code:         NewCode(),
		ParentPhone:  parentPhone,
		Group:        group,
		Grade:        grade,
	}
	st, err = s.store.InsertStudent(ctx, st)
	if err != nil {
		return CreatedStudent{}, err
	}

	s.notifyRosterChanged(ctx)
	return CreatedStudent{Student: st, Password: password}, nil
}

// UpdateStudent rewrites the mutable fields of a student. An empty
// password keeps the stored hash; a non-empty one replaces it.
func (s *Service) UpdateStudent(ctx context.Context, id, name, phone, password, parentPhone, group string, grade GradeTier) (Student, error) {
	if !ValidGrade(grade) {
		return Student{}, fmt.Errorf("account: unknown grade %q", grade)
	}
	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	st.Name = name
	st.Phone = phone
	st.ParentPhone = parentPhone
	st.Group = group
	st.Grade = grade
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Student{}, err
		}
		st.PasswordHash = string(hash)
	}
	if err := s.store.UpdateStudent(ctx, st); err != nil {
		return Student{}, err
	}
	s.notifyRosterChanged(ctx)
	return st, nil
}

// DeleteStudent removes a student; the database cascades attendance,
// grades, payments and linked parents.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.notifyRosterChanged(ctx)
	return nil
}

// ListStudents returns the roster.
func (s *Service) ListStudents(ctx context.Context) ([]Student, error) {
	return s.store.ListStudents(ctx)
}

// GetStudent returns a single student by id.
func (s *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return s.store.GetStudent(ctx, id)
}

// CreatedParent mirrors CreatedStudent for guardians.
type CreatedParent struct {
	Parent
	Password string `json:"password"`
}

// CreateParent registers a guardian against a student code.
func (s *Service) CreateParent(ctx context.Context, phone, studentCode string) (CreatedParent, error) {
	st, err := s.store.GetStudentByCode(ctx, studentCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return CreatedParent{}, ErrUnknownStudentCode
		}
		return CreatedParent{}, err
	}

	password := NewPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return CreatedParent{}, err
	}
	p, err := s.store.InsertParent(ctx, Parent{
		Phone:        phone,
		PasswordHash: string(hash),
		StudentCode:  studentCode,
		StudentName:  st.Name,
	})
	if err != nil {
		return CreatedParent{}, err
	}
	return CreatedParent{Parent: p, Password: password}, nil
}

// UpdateParent rewrites a guardian account, re-resolving the linked
// student so the denormalized name stays current.
func (s *Service) UpdateParent(ctx context.Context, id, phone, studentCode, password string) (Parent, error) {
	st, err := s.store.GetStudentByCode(ctx, studentCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Parent{}, ErrUnknownStudentCode
		}
		return Parent{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Parent{}, err
	}
	p := Parent{
		ID:           id,
		Phone:        phone,
		PasswordHash: string(hash),
		StudentCode:  studentCode,
		StudentName:  st.Name,
	}
	if err := s.store.UpdateParent(ctx, p); err != nil {
		return Parent{}, err
	}
	return p, nil
}

// DeleteParent removes a guardian account.
func (s *Service) DeleteParent(ctx context.Context, id string) error {
	return s.store.DeleteParent(ctx, id)
}

// ListParents returns all guardian accounts.
func (s *Service) ListParents(ctx context.Context) ([]Parent, error) {
	return s.store.ListParents(ctx)
}

func (s *Service) notifyRosterChanged(ctx context.Context) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, queue.Message{Type: queue.TypeRosterChanged}); err != nil {
		log.Printf("roster-changed publish failed: %v", err)
	}
}
