package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"marketplace_auth/internal/model"
	"marketplace_auth/internal/repository"
	"marketplace_auth/internal/utils"

	"github.com/go-playground/validator/v10"
)

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	log      *slog.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, log *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		log:      log,
	}
}

// Signup registers a consumer or worker account. The phone number pre-check
// only gives an early answer; the unique constraint in the store decides.
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Name = strings.TrimSpace(req.Name)
	req.DrivingLicense = strings.TrimSpace(req.DrivingLicense)

	if err := validateSignup(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrPhoneTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         req.Role,
	}
	if req.Role == model.RoleWorker {
		user.Worker = &model.WorkerProfile{
			DrivingLicense: req.DrivingLicense,
			VehicleNumber:  req.VehicleNumber,
			VehicleRC:      req.VehicleRC,
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	s.log.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func validateSignup(req model.SignupRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate signup: %w", err)
	}

	tags := failedTags(err)
	switch {
	case anyFailed(tags, "PhoneNumber.required", "Password.required", "Name.required", "Role.required"):
		return invalid("Phone number, password, name and role are required")
	case tags["Role.oneof"]:
		return invalid("Invalid role. Must be 'consumer' or 'worker'")
	case tags["Password.min"]:
		return invalid("Password must be at least 8 characters long")
	case tags["DrivingLicense.required_if"]:
		return invalid("Driving license is required for workers")
	}
	return invalid("Invalid signup request")
}

// Login checks the credentials and issues a signed token. An unknown phone
// number and a wrong password produce the same error.
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := validate.Struct(req); err != nil {
		return nil, "", invalid("Phone number and password are required")
	}

	user, err := s.userRepo.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a comparison so unknown numbers cost the same as known ones.
			utils.CheckPasswordHash(req.Password, s.decoy())
			s.log.Info("login rejected", "phone", req.PhoneNumber)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error finding user by phone: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Info("login rejected", "phone", req.PhoneNumber)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user)
	if err != nil {
		if errors.Is(err, utils.ErrMissingSecret) {
			return nil, "", ErrSigningSecretMissing
		}
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (s *authService) decoy() string {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = utils.HashPassword("decoy-password-never-matches")
	})
	return s.decoyHash
}
