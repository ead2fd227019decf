package verification

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

type Purpose string

const (
	PurposePassword Purpose = "password"
	PurposeEmail    Purpose = "email"
)

func (p Purpose) Valid() bool {
	return p == PurposePassword || p == PurposeEmail
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail does the basic local@domain.tld shape check.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Code is one issued verification code. A null UsedAt means the code is still open.
type Code struct {
	ID        int64       `db:"id" json:"id"`
	UserID    string      `db:"user_id" json:"user_id"`
	Code      string      `db:"code" json:"-"`
	Purpose   Purpose     `db:"purpose" json:"purpose"`
	NewValue  null.String `db:"new_value" json:"new_value"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	ExpiresAt time.Time   `db:"expires_at" json:"expires_at"`
	UsedAt    null.Time   `db:"used_at" json:"used_at"`
}

func (c Code) IsOpen() bool {
	return !c.UsedAt.Valid
}

func (c Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type IssueRequest struct {
	Purpose   Purpose
	UserID    string
	UserEmail string
	NewEmail  string
}

type IssueResult struct {
	Delivered bool
	Code      string // only set when Delivered is false
}

// SendCodeRequest is the body of the issuing endpoint.
type SendCodeRequest struct {
	Type     string `json:"type" validate:"required"`
	NewEmail string `json:"new_email"`
}

func (r *SendCodeRequest) Validate(validate *validator.Validate) error {
	r.Type = core.CleanString(r.Type, true /* lower */)
	r.NewEmail = core.CleanString(r.NewEmail, true /* lower */)
	return validate.Struct(r)
}

// ConfirmCodeRequest is the body of the confirmation endpoint.
type ConfirmCodeRequest struct {
	Type string `json:"type" validate:"required"`
	Code string `json:"code" validate:"required,len=4,numeric"`
}

func (r *ConfirmCodeRequest) Validate(validate *validator.Validate) error {
	r.Type = core.CleanString(r.Type, true /* lower */)
	r.Code = core.CleanString(r.Code)
	return validate.Struct(r)
}
