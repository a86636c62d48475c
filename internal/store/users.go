package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
)

// UserStore backs the authentication boundary: users carry an opaque bearer
// token the API resolves to an actor.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (email, name, role, token, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
		RETURNING id, email, name, role, token, created_at, updated_at, version`

	err := s.db.QueryRowContext(ctx, query, email, name, role, uuid.NewString()).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Token,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *UserStore) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	return s.getUser(ctx, "token = $1", token)
}

func (s *UserStore) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, email, name, role, token, created_at, updated_at, version
		FROM users
		WHERE ` + where

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Token,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
