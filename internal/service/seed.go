package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"marketplace_auth/internal/model"
	"marketplace_auth/internal/repository"
	"marketplace_auth/internal/utils"
)

// AdminCredentials identifies the bootstrap administrator.
type AdminCredentials struct {
	PhoneNumber string
	Password    string
	Name        string
}

// DefaultAdmin is used when no credentials are supplied through the
// environment. Override it outside of local development.
var DefaultAdmin = AdminCredentials{
	PhoneNumber: "1234567890",
	Password:    "admin",
	Name:        "admin",
}

type SeedResult int

const (
	SeedCreated SeedResult = iota + 1
	SeedAlreadyPresent
)

func (r SeedResult) String() string {
	switch r {
	case SeedCreated:
		return "created"
	case SeedAlreadyPresent:
		return "already present"
	default:
		return "unknown"
	}
}

// AdminSeeder makes sure the administrator account exists. Running it any
// number of times leaves exactly one account behind.
type AdminSeeder struct {
	repo  repository.UserRepository
	creds AdminCredentials
	log   *slog.Logger
}

func NewAdminSeeder(repo repository.UserRepository, creds AdminCredentials, log *slog.Logger) *AdminSeeder {
	return &AdminSeeder{repo: repo, creds: creds, log: log}
}

func (s *AdminSeeder) Seed(ctx context.Context) (SeedResult, error) {
	if blank(s.creds.PhoneNumber) || s.creds.Password == "" {
		return 0, errors.New("admin phone number and password must not be empty")
	}

	existing, err := s.repo.FindByPhone(ctx, s.creds.PhoneNumber)
	switch {
	case err == nil:
		if existing.Role != model.RoleAdmin {
			s.log.Warn("seed phone number belongs to a non-admin user", "phone", s.creds.PhoneNumber, "role", existing.Role)
		}
		s.log.Info("admin user already exists", "phone", s.creds.PhoneNumber)
		return SeedAlreadyPresent, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return 0, fmt.Errorf("failed to look up admin: %w", err)
	}

	hashedPassword, err := utils.HashPassword(s.creds.Password)
	if err != nil {
		return 0, err
	}

	name := s.creds.Name
	if blank(name) {
		name = DefaultAdmin.Name
	}
	admin := &model.User{
		PhoneNumber:  s.creds.PhoneNumber,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         model.RoleAdmin,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			s.log.Info("admin user already exists", "phone", s.creds.PhoneNumber)
			return SeedAlreadyPresent, nil
		}
		return 0, fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info("admin user created", "phone", s.creds.PhoneNumber, "user_id", admin.ID)
	return SeedCreated, nil
}
