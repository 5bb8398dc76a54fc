package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var userDescriptor = EntityDescriptor[User, string]{
	Table:   "user",
	IDCol:   "id",
	Columns: []string{"id", "email", "password"},
	Scan: func(row Scanner) (User, error) {
		var u User
		err := row.Scan(&u.ID, &u.Email, &u.Password)
		return u, err
	},
	Values: func(u User) map[string]any {
		return map[string]any{
			"id":       u.ID,
			"email":    u.Email,
			"password": u.Password,
		}
	},
}

// UserRepository handles database operations for application accounts
type UserRepository struct {
	*CRUD[User, string]
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{CRUD: NewCRUD(db, userDescriptor), db: db}
}

// FindByEmail returns the account with the given email, or nil when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password FROM user WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &u, nil
}

// Create inserts a new account with a generated id and returns the id.
func (r *UserRepository) Create(ctx context.Context, email, password string) (string, error) {
	id := uuid.NewString()
	if err := r.Insert(ctx, User{ID: id, Email: email, Password: password}); err != nil {
		return "", err
	}

	return id, nil
}

// UpdateCredentials replaces the account's email and password. Returns the
// number of affected rows, zero when the id does not exist.
func (r *UserRepository) UpdateCredentials(ctx context.Context, id, email, password string) (int64, error) {
	return r.Update(ctx, id, map[string]any{
		"email":    email,
		"password": password,
	})
}
