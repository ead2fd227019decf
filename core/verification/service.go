package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

const (
	DefaultCodeTTL = 10 * time.Minute

	codeMin = 1000
	codeMax = 9999
)

var (
	// errors
	ErrInvalidPurpose     = core.NewError(core.KindBadRequest, "tipo de verificação inválido")
	ErrInvalidEmailFormat = core.NewError(core.KindBadRequest, "formato de e-mail inválido")
	ErrCodeInvalid        = core.NewError(core.KindBadRequest, "código inválido ou expirado")
	ErrNotFound           = errors.New("verification code not found")
)

type (
	Repository interface {
		// InvalidateOpenCodes marks every open code of (userID, purpose) as used at `at`.
		InvalidateOpenCodes(ctx context.Context, userID string, purpose Purpose, at time.Time) (int64, error)
		CreateCode(ctx context.Context, code Code) (Code, error)
		// GetOpenCode returns the most recent open code of (userID, purpose) matching `code`.
		GetOpenCode(ctx context.Context, userID string, purpose Purpose, code string) (Code, error)
		MarkUsed(ctx context.Context, id int64, at time.Time) error
	}

	Option func(*Service)

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		logger   core.Logger
		ttl      time.Duration
		now      func() time.Time
		generate func() (string, error)
	}
)

func WithTTL(ttl time.Duration) Option {
	return func(svc *Service) {
		if ttl > 0 {
			svc.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

func WithGenerator(gen func() (string, error)) Option {
	return func(svc *Service) { svc.generate = gen }
}

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger, opts ...Option) *Service {
	svc := &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		logger:   logger,
		ttl:      DefaultCodeTTL,
		now:      func() time.Time { return time.Now().UTC() },
		generate: GenerateCode,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GenerateCode returns a uniformly random 4-digit code in [1000, 9999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+codeMin), nil
}

// Issue creates a new code for (UserID, Purpose) and tries to email it.
// Only input validation and the insert are fatal; when the email cannot be delivered
// the code is handed back to the caller instead.
func (svc *Service) Issue(ctx context.Context, req IssueRequest) (IssueResult, error) {
	if !req.Purpose.Valid() {
		return IssueResult{}, ErrInvalidPurpose
	}

	target := req.UserEmail
	var newValue null.String
	if req.Purpose == PurposeEmail {
		email := core.CleanString(req.NewEmail, true /* lower */)
		if !ValidEmail(email) {
			return IssueResult{}, ErrInvalidEmailFormat
		}
		target = email
		newValue = null.StringFrom(email)
	}

	code, err := svc.generate()
	if err != nil {
		return IssueResult{}, errors.Wrap(err, "generating code")
	}

	now := svc.now()
	if n, err := svc.repo.InvalidateOpenCodes(ctx, req.UserID, req.Purpose, now); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating open %s codes of user %s", req.Purpose, req.UserID), err)
	} else if n > 0 {
		svc.logger.Debug(fmt.Sprintf("invalidated %d open %s codes of user %s", n, req.Purpose, req.UserID))
	}

	_, err = svc.repo.CreateCode(ctx, Code{
		UserID:    req.UserID,
		Code:      code,
		Purpose:   req.Purpose,
		NewValue:  newValue,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.ttl),
	})
	if err != nil {
		return IssueResult{}, errors.Wrap(err, "creating verification code")
	}

	if err = svc.deliver(ctx, target, code, req.Purpose); err != nil {
		svc.logger.Error(fmt.Sprintf("sending %s verification code to user %s", req.Purpose, req.UserID), err)
		return IssueResult{Delivered: false, Code: code}, nil
	}
	return IssueResult{Delivered: true}, nil
}

func (svc *Service) deliver(ctx context.Context, to, code string, purpose Purpose) error {
	if to == "" {
		return errors.New("no delivery address")
	}
	return svc.mailSvc.Send(ctx, &core.EmailMessage{
		To:           []mail.Address{{Address: to}},
		Subject:      "Seu código de verificação",
		TemplateName: "verification_code",
		TemplateData: map[string]interface{}{
			"Code":             code,
			"Purpose":          string(purpose),
			"ExpiresInMinutes": int(svc.ttl / time.Minute),
		},
	})
}

// Confirm consumes the open, unexpired code matching `code`.
func (svc *Service) Confirm(ctx context.Context, userID string, purpose Purpose, code string) (Code, error) {
	if !purpose.Valid() {
		return Code{}, ErrInvalidPurpose
	}

	c, err := svc.repo.GetOpenCode(ctx, userID, purpose, code)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Code{}, ErrCodeInvalid
		}
		return Code{}, errors.Wrap(err, "getting open code")
	}

	now := svc.now()
	if c.Expired(now) {
		return Code{}, ErrCodeInvalid
	}
	if err = svc.repo.MarkUsed(ctx, c.ID, now); err != nil {
		return Code{}, errors.Wrap(err, "marking code as used")
	}
	c.UsedAt = null.TimeFrom(now)
	return c, nil
}
