package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
)

type verificationRepository struct {
	db *DB
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(db *DB) *verificationRepository {
	return &verificationRepository{db: db}
}

func (repo *verificationRepository) InvalidateOpenCodes(_ context.Context, userID string, purpose verification.Purpose, at time.Time) (int64, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.failure("invalidate_codes"); err != nil {
		return 0, err
	}
	var n int64
	for _, c := range repo.db.codes {
		if c.UserID == userID && c.Purpose == purpose && c.IsOpen() {
			c.UsedAt = null.TimeFrom(at)
			n++
		}
	}
	return n, nil
}

func (repo *verificationRepository) CreateCode(_ context.Context, code verification.Code) (verification.Code, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.failure("create_code"); err != nil {
		return verification.Code{}, err
	}
	repo.db.codeSeq++
	code.ID = repo.db.codeSeq
	repo.db.codes = append(repo.db.codes, &code)
	return code, nil
}

func (repo *verificationRepository) GetOpenCode(_ context.Context, userID string, purpose verification.Purpose, code string) (verification.Code, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for i := len(repo.db.codes) - 1; i >= 0; i-- {
		c := repo.db.codes[i]
		if c.UserID == userID && c.Purpose == purpose && c.Code == code && c.IsOpen() {
			return *c, nil
		}
	}
	return verification.Code{}, verification.ErrNotFound
}

func (repo *verificationRepository) MarkUsed(_ context.Context, id int64, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, c := range repo.db.codes {
		if c.ID == id {
			c.UsedAt = null.TimeFrom(at)
			return nil
		}
	}
	return verification.ErrNotFound
}
