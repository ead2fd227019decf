package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email address has already been registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")

	errTargetRequired = core.NewError(core.KindBadRequest, "user_id is required")
	errTargetInvalid  = core.NewError(core.KindBadRequest, "user_id must be a valid UUID")
	errNotAdmin       = core.NewError(core.KindForbidden, "permission denied")
	errSelfDelete     = core.NewError(core.KindInvalidOperation, "you cannot delete your own account")
	errProtected      = core.NewError(core.KindForbidden, "this account is protected and cannot be deleted")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id string) error

		UpsertProfile(ctx context.Context, p Profile) (Profile, error)
		GetProfile(ctx context.Context, userID string) (Profile, error)

		HasRole(ctx context.Context, userID, role string) (bool, error)
		AddRole(ctx context.Context, userID, role string) error

		// DeleteUserRows deletes the rows of one of the DependentTables belonging to the user.
		DeleteUserRows(ctx context.Context, table, userID string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		HasRole(ctx context.Context, userID, role string) (bool, error)
		GrantRole(ctx context.Context, userID, role string) error
		SetPassword(ctx context.Context, email, pwd string) error
		Delete(ctx context.Context, act ActionContext) error
	}

	Service struct {
		repo      Repository
		mailSvc   core.EmailService
		logger    core.Logger
		protected ProtectedSet
		now       func() time.Time
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
		protected: ProtectedSet{
			IDs:    conf.Admin.ProtectedIDs,
			Emails: conf.Admin.ProtectedEmails,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new identity, then upserts its profile.
// The welcome email is sent in the background.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		ID:        uuid.New().String(),
		Email:     core.CleanString(nu.Email, true /* lower */),
		CreatedAt: svc.now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewError(core.KindBadRequest, ErrEmailExists.Error(), err)
		}
		return User{}, errors.Wrap(err, "creating user")
	}

	profile := Profile{
		UserID:    usr.ID,
		Email:     usr.Email,
		IsPremium: nu.Premium(),
		CreatedAt: usr.CreatedAt,
		UpdatedAt: usr.CreatedAt,
	}
	if _, err = svc.repo.UpsertProfile(ctx, profile); err != nil {
		return User{}, errors.Wrap(err, "upserting profile")
	}

	svc.sendWelcomeMail(usr, profile)
	return usr, nil
}

func (svc *Service) sendWelcomeMail(usr User, profile Profile) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Sua conta foi criada",
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{
			"Email":     usr.Email,
			"IsPremium": profile.IsPremium,
		},
	})
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := svc.now()
	usr.LastLogin = &now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting last login")
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) HasRole(ctx context.Context, userID, role string) (bool, error) {
	return svc.repo.HasRole(ctx, userID, role)
}

func (svc *Service) GrantRole(ctx context.Context, userID, role string) error {
	return svc.repo.AddRole(ctx, userID, role)
}

func (svc *Service) SetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}

// Delete removes the target's dependent rows table by table, then the identity.
// Any failure stops the chain before the identity is touched.
func (svc *Service) Delete(ctx context.Context, act ActionContext) error {
	if !act.CallerHasRole(RoleAdmin) {
		return errNotAdmin
	}
	raw := core.CleanString(act.TargetID)
	if raw == "" {
		return errTargetRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return errTargetInvalid
	}
	target := id.String()
	if act.IsCaller(target) {
		return errSelfDelete
	}
	if svc.protected.HasID(target) {
		return errProtected
	}

	usr, err := svc.repo.GetUserByID(ctx, target)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewError(core.KindBadRequest, ErrNotFound.Error(), err)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if act.IsCaller(usr.ID) {
		return errSelfDelete
	}
	if svc.protected.HasID(usr.ID) || svc.protected.HasEmail(usr.Email) {
		return errProtected
	}

	for _, table := range DependentTables {
		if err = svc.repo.DeleteUserRows(ctx, table, usr.ID); err != nil {
			return errors.Wrap(err, fmt.Sprintf("deleting %s rows", table))
		}
	}
	if err = svc.repo.DeleteUser(ctx, usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}

	svc.logger.Info(fmt.Sprintf("user %s deleted by %q", usr.ID, act.CallerID))
	return nil
}
