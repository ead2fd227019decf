package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.failure("create_user"); err != nil {
		return user.User{}, err
	}
	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if usr.LastLogin != nil {
		origUsr.LastLogin = usr.LastLogin
	}
	origUsr.Email = usr.Email
	return *origUsr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.failure("delete_user"); err != nil {
		return err
	}
	delete(repo.db.users, id)
	repo.db.deletions = append(repo.db.deletions, "auth_users:"+id)
	return nil
}

func (repo *userRepository) UpsertProfile(_ context.Context, p user.Profile) (user.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if orig, ok := repo.db.profiles[p.UserID]; ok {
		p.CreatedAt = orig.CreatedAt
	}
	repo.db.profiles[p.UserID] = &p
	return p, nil
}

func (repo *userRepository) GetProfile(_ context.Context, userID string) (user.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.profiles[userID]; ok {
		return *p, nil
	}
	return user.Profile{}, user.ErrNotFound
}

func (repo *userRepository) HasRole(_ context.Context, userID, role string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.roles[userID][role], nil
}

func (repo *userRepository) AddRole(_ context.Context, userID, role string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.db.roles[userID] == nil {
		repo.db.roles[userID] = make(map[string]bool)
	}
	repo.db.roles[userID][role] = true
	return nil
}

func (repo *userRepository) DeleteUserRows(_ context.Context, table, userID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.failure("delete:" + table); err != nil {
		return err
	}
	switch table {
	case "profiles":
		delete(repo.db.profiles, userID)
	case "user_roles":
		delete(repo.db.roles, userID)
	case "verification_codes":
		kept := repo.db.codes[:0]
		for _, c := range repo.db.codes {
			if c.UserID != userID {
				kept = append(kept, c)
			}
		}
		repo.db.codes = kept
	default:
		if !isDependentTable(table) {
			return errors.Errorf("unknown table %q", table)
		}
		delete(repo.db.rows[table], userID)
	}
	repo.db.deletions = append(repo.db.deletions, table+":"+userID)
	return nil
}

func isDependentTable(table string) bool {
	for _, t := range user.DependentTables {
		if t == table {
			return true
		}
	}
	return false
}
