package account

import "time"

// Role discriminates the three kinds of principals that can log in.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// GradeTier is one of the three ordinal grade levels students belong to.
type GradeTier string

const (
	GradeFirst  GradeTier = "first"
	GradeSecond GradeTier = "second"
	GradeThird  GradeTier = "third"
)

// ValidGrade reports whether g names a known tier.
func ValidGrade(g GradeTier) bool {
	switch g {
	case GradeFirst, GradeSecond, GradeThird:
		return true
	}
	return false
}

// Student is a registered student account. Code is the unique
// human-enterable key used for QR check-in; it never changes after
// creation. PasswordHash is a bcrypt hash, never the raw password.
type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Code         string    `json:"code"`
	ParentPhone  string    `json:"parent_phone"`
	Group        string    `json:"group"`
	Grade        GradeTier `json:"grade"`
	CreatedAt    time.Time `json:"created_at"`
}

// Parent is a guardian account linked to exactly one student by code.
// StudentName is a denormalized display snapshot refreshed on update.
type Parent struct {
	ID           string    `json:"id"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	StudentCode  string    `json:"student_code"`
	StudentName  string    `json:"student_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the tagged variant returned by Login. Exactly one of the
// role payloads is populated, matching Role.
type Principal struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Role    Role     `json:"role"`
	Student *Student `json:"student,omitempty"`
	Parent  *Parent  `json:"parent,omitempty"`
}
