package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

// Roles
const (
	RoleAdmin = "admin"
)

// Tables holding rows that reference a user, in deletion order.
// The identity itself (auth_users) is always deleted after all of them.
var DependentTables = []string{
	"profiles",
	"verification_codes",
	"user_activity",
	"study_sessions",
	"exam_results",
	"essay_results",
	"user_roles",
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash []byte     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	LastLogin    *time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

type Profile struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	IsPremium bool      `json:"is_premium" db:"is_premium"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IsPremium *bool  `json:"is_premium"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

func (nu NewUser) Premium() bool {
	return nu.IsPremium != nil && *nu.IsPremium
}

// ActionContext describes a destructive admin operation.
// CallerRoles is the caller's resolved role set.
type ActionContext struct {
	CallerID    string
	CallerRoles []string
	TargetID    string
}

func (act ActionContext) CallerHasRole(role string) bool {
	for _, r := range act.CallerRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsCaller compares canonical ids, since the store matches UUIDs case-insensitively.
func (act ActionContext) IsCaller(id string) bool {
	return act.CallerID != "" && strings.EqualFold(strings.TrimSpace(act.CallerID), id)
}

// ProtectedSet lists the accounts that reject destructive operations whoever the caller is.
type ProtectedSet struct {
	IDs    []string
	Emails []string
}

func (ps ProtectedSet) HasID(id string) bool {
	for _, pid := range ps.IDs {
		if strings.EqualFold(strings.TrimSpace(pid), id) {
			return true
		}
	}
	return false
}

func (ps ProtectedSet) HasEmail(email string) bool {
	for _, pe := range ps.Emails {
		if strings.EqualFold(strings.TrimSpace(pe), email) {
			return true
		}
	}
	return false
}
