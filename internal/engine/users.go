package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ptaplan/internal/domain"
	"ptaplan/internal/repo"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords so
// the response does not reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserCreateOptions struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

func (e Engine) CreateUser(ctx context.Context, opts UserCreateOptions) (domain.User, error) {
	if opts.Email == "" {
		return domain.User{}, ValidationError{Field: "email", Reason: "is required"}
	}
	if len(opts.Password) < 8 {
		return domain.User{}, ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if opts.Role == "" {
		opts.Role = domain.RoleUser
	}
	if !opts.Role.Valid() {
		return domain.User{}, ValidationError{Field: "role", Reason: "must be admin, superviseur or user"}
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           opts.ID,
		Name:         opts.Name,
		Email:        opts.Email,
		Role:         opts.Role,
		PasswordHash: string(hash),
		CreatedAt:    e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UserUpdateOptions change a user in place. Empty fields keep the stored
// value; Password, when set, is re-hashed.
type UserUpdateOptions struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

func (e Engine) UpdateUser(ctx context.Context, opts UserUpdateOptions) (domain.User, error) {
	u, err := e.Repo.GetUser(ctx, opts.ID)
	if err != nil {
		return domain.User{}, err
	}
	if opts.Name != "" {
		u.Name = opts.Name
	}
	if opts.Email != "" {
		u.Email = opts.Email
	}
	if opts.Role != "" {
		if !opts.Role.Valid() {
			return domain.User{}, ValidationError{Field: "role", Reason: "must be admin, superviseur or user"}
		}
		u.Role = opts.Role
	}
	if opts.Password != "" {
		if len(opts.Password) < 8 {
			return domain.User{}, ValidationError{Field: "password", Reason: "must be at least 8 characters"}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := e.Repo.UpdateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (e Engine) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := e.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// SeedAdmin creates the configured admin account when the users table is
// empty, so a fresh install is reachable.
func (e Engine) SeedAdmin(ctx context.Context) error {
	if e.Config == nil || e.Config.Seed.AdminEmail == "" {
		return nil
	}
	n, err := e.Repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = e.CreateUser(ctx, UserCreateOptions{
		Name:     e.Config.Seed.AdminName,
		Email:    e.Config.Seed.AdminEmail,
		Password: e.Config.Seed.AdminPassword,
		Role:     domain.RoleAdmin,
	})
	return err
}
