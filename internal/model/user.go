package model

import "time"

// Role is the account type of a user. It is fixed at creation.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleConsumer Role = "consumer"
	RoleWorker   Role = "worker"
)

// SelfRegistrable reports whether the role can be chosen through signup.
// Admins are only created by the seeder.
func (r Role) SelfRegistrable() bool {
	return r == RoleConsumer || r == RoleWorker
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r.SelfRegistrable()
}

// User represents a credential record in the system
type User struct {
	ID           string         `json:"id"`
	PhoneNumber  string         `json:"phone_number"`
	PasswordHash string         `json:"-"` // Never leaves the server
	Name         string         `json:"name"`
	Role         Role           `json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	Worker       *WorkerProfile `json:"-"`
}

// WorkerProfile holds the vehicle data of a worker. It exists if and only if
// the owning user has RoleWorker.
type WorkerProfile struct {
	DrivingLicense string  `json:"driving_license"`
	VehicleNumber  *string `json:"vehicle_number,omitempty"`
	VehicleRC      *string `json:"vehicle_rc,omitempty"`
}

// SignupRequest is the body of POST /api/signup
type SignupRequest struct {
	PhoneNumber    string  `json:"phone_number" validate:"required"`
	Password       string  `json:"password" validate:"required,min=8"`
	Name           string  `json:"name" validate:"required"`
	Role           Role    `json:"role" validate:"required,oneof=consumer worker"`
	DrivingLicense string  `json:"driving_license" validate:"required_if=Role worker"`
	VehicleNumber  *string `json:"vehicle_number"`
	VehicleRC      *string `json:"vehicle_rc"`
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// UserView is the sanitized projection returned to API callers.
type UserView struct {
	ID             string `json:"id"`
	PhoneNumber    string `json:"phone_number"`
	Name           string `json:"name,omitempty"`
	Role           Role   `json:"role"`
	DrivingLicense string `json:"driving_license,omitempty"`
}

// NewUserView projects a freshly created user: id, phone, name, role and,
// for workers, the driving license.
func NewUserView(u *User) UserView {
	v := UserView{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		Name:        u.Name,
		Role:        u.Role,
	}
	if u.Worker != nil {
		v.DrivingLicense = u.Worker.DrivingLicense
	}
	return v
}

// NewLoginView is the narrower projection sent back by login.
func NewLoginView(u *User) UserView {
	return UserView{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
	}
}
