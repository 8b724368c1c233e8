package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace_auth/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicatePhone = errors.New("phone number already registered")
	// ErrProfileMismatch guards the worker profile invariant: a profile is
	// written if and only if the user is a worker.
	ErrProfileMismatch = errors.New("worker profile does not match role")
)

const (
	uniqueViolation = "23505"
	// phoneConstraint is the unique constraint on users.phone_number.
	phoneConstraint = "users_phone_number_key"
)

// DB is the subset of pgxpool.Pool used by the repositories. pgxmock pools
// satisfy it as well.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and, for workers, its profile in one transaction.
// A phone number collision surfaces as ErrDuplicatePhone.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if (user.Role == model.RoleWorker) != (user.Worker != nil) {
		return ErrProfileMismatch
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	sql := `INSERT INTO users (id, phone_number, hashed_password, name, role)
            VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err = tx.QueryRow(ctx, sql, user.ID, user.PhoneNumber, user.PasswordHash, user.Name, string(user.Role)).Scan(&user.CreatedAt)
	if err != nil {
		_ = tx.Rollback(ctx)
		return mapWriteError("failed to create user", err)
	}

	if user.Worker != nil {
		sql = `INSERT INTO worker_profiles (user_id, driving_license, vehicle_number, vehicle_rc)
               VALUES ($1, $2, $3, $4)`
		_, err = tx.Exec(ctx, sql, user.ID, user.Worker.DrivingLicense, user.Worker.VehicleNumber, user.Worker.VehicleRC)
		if err != nil {
			_ = tx.Rollback(ctx)
			return mapWriteError("failed to create worker profile", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return mapWriteError("failed to commit user", err)
	}
	return nil
}

// ExistsByPhone reports whether a user already owns the phone number
func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	sql := `SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1)`
	if err := r.db.QueryRow(ctx, sql, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return exists, nil
}

const selectUser = `SELECT u.id, u.phone_number, u.hashed_password, u.name, u.role, u.created_at,
            w.driving_license, w.vehicle_number, w.vehicle_rc
            FROM users u
            LEFT JOIN worker_profiles w ON w.user_id = u.id`

// FindByPhone retrieves a user by their phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUser+` WHERE u.phone_number = $1`, phone))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := scanUser(r.db.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	var role string
	var license, vehicleNumber, vehicleRC *string
	err := row.Scan(&user.ID, &user.PhoneNumber, &user.PasswordHash, &user.Name, &role, &user.CreatedAt,
		&license, &vehicleNumber, &vehicleRC)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Role = model.Role(role)
	if license != nil {
		user.Worker = &model.WorkerProfile{
			DrivingLicense: *license,
			VehicleNumber:  vehicleNumber,
			VehicleRC:      vehicleRC,
		}
	}
	return user, nil
}

func mapWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == phoneConstraint {
		return ErrDuplicatePhone
	}
	return fmt.Errorf("%s: %w", msg, err)
}
