package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

const uniqueViolation = "23505"

type userRow struct {
	ID           string       `db:"id"`
	Email        string       `db:"email"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		t := r.LastLogin.Time.UTC()
		usr.LastLogin = &t
	}
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO auth_users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, created_at, last_login`,
		usr.ID, usr.Email, usr.PasswordHash, usr.CreatedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting auth user")
	}
	return row.toUser(), nil
}

func (repo userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := "SELECT id, email, password_hash, created_at, last_login FROM auth_users WHERE " + where
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting auth user")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, "id = $1", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = $1", email)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var lastLogin sql.NullTime
	if usr.LastLogin != nil {
		lastLogin = sql.NullTime{Time: usr.LastLogin.UTC(), Valid: true}
	}

	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE auth_users
		SET email = $2, password_hash = $3, last_login = COALESCE($4, last_login)
		WHERE id = $1
		RETURNING id, email, password_hash, created_at, last_login`,
		usr.ID, usr.Email, usr.PasswordHash, lastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating auth user")
	}
	return row.toUser(), nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM auth_users WHERE id = $1", id)
	return errors.Wrap(err, "deleting auth user")
}

func (repo userRepository) UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	var out user.Profile
	err := repo.db.GetContext(ctx, &out, `
		INSERT INTO profiles (user_id, email, is_premium, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email, is_premium = EXCLUDED.is_premium, updated_at = EXCLUDED.updated_at
		RETURNING user_id, email, is_premium, created_at, updated_at`,
		p.UserID, p.Email, p.IsPremium, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	return out, errors.Wrap(err, "upserting profile")
}

func (repo userRepository) GetProfile(ctx context.Context, userID string) (user.Profile, error) {
	var p user.Profile
	err := repo.db.GetContext(ctx, &p,
		"SELECT user_id, email, is_premium, created_at, updated_at FROM profiles WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return user.Profile{}, user.ErrNotFound
	}
	return p, errors.Wrap(err, "selecting profile")
}

func (repo userRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var found bool
	err := repo.db.GetContext(ctx, &found,
		"SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)", userID, role)
	return found, errors.Wrap(err, "checking user role")
}

func (repo userRepository) AddRole(ctx context.Context, userID, role string) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT (user_id, role) DO NOTHING", userID, role)
	return errors.Wrap(err, "inserting user role")
}

func (repo userRepository) DeleteUserRows(ctx context.Context, table, userID string) error {
	if !isDependentTable(table) {
		return errors.Errorf("unknown table %q", table)
	}
	// table names cannot be bound; only user.DependentTables get here
	q := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", pq.QuoteIdentifier(table))
	_, err := repo.db.ExecContext(ctx, q, userID)
	return errors.Wrapf(err, "deleting %s rows", table)
}

func isDependentTable(table string) bool {
	for _, t := range user.DependentTables {
		if t == table {
			return true
		}
	}
	return false
}
