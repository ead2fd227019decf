package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
)

const codeColumns = "id, user_id, code, purpose, new_value, created_at, expires_at, used_at"

type verificationRepository struct {
	db *sqlx.DB
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(db *sqlx.DB) *verificationRepository {
	return &verificationRepository{db: db}
}

func (repo verificationRepository) InvalidateOpenCodes(ctx context.Context, userID string, purpose verification.Purpose, at time.Time) (int64, error) {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE verification_codes SET used_at = $3 WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL",
		userID, string(purpose), at.UTC(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "invalidating open codes")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting invalidated codes")
}

func (repo verificationRepository) CreateCode(ctx context.Context, code verification.Code) (verification.Code, error) {
	var out verification.Code
	err := repo.db.GetContext(ctx, &out, `
		INSERT INTO verification_codes (user_id, code, purpose, new_value, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+codeColumns,
		code.UserID, code.Code, string(code.Purpose), code.NewValue, code.CreatedAt.UTC(), code.ExpiresAt.UTC(),
	)
	return out, errors.Wrap(err, "inserting verification code")
}

func (repo verificationRepository) GetOpenCode(ctx context.Context, userID string, purpose verification.Purpose, code string) (verification.Code, error) {
	var out verification.Code
	err := repo.db.GetContext(ctx, &out, `
		SELECT `+codeColumns+`
		FROM verification_codes
		WHERE user_id = $1 AND purpose = $2 AND code = $3 AND used_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, string(purpose), code,
	)
	if err == sql.ErrNoRows {
		return verification.Code{}, verification.ErrNotFound
	}
	return out, errors.Wrap(err, "selecting open code")
}

func (repo verificationRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE verification_codes SET used_at = $2 WHERE id = $1", id, at.UTC())
	if err != nil {
		return errors.Wrap(err, "marking code as used")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return verification.ErrNotFound
	}
	return nil
}
