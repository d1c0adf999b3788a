package models

import "time"

// UserDB represents a user record in the database
type UserDB struct {
	UserID       int64     `json:"id" db:"user_id"`            // Primary key, assigned by the sequence
	FirstName    string    `json:"first_name" db:"first_name"` // Optional first name
	LastName     string    `json:"last_name" db:"last_name"`   // Optional last name
	Username     string    `json:"username" db:"username"`     // Unique among active users, case-sensitive
	Email        string    `json:"email" db:"email"`           // Unique among active users, stored lower-case
	PasswordHash string    `json:"-" db:"password_hash"`       // Bcrypt hash, never serialized
	IsDeleted    bool      `json:"-" db:"is_deleted"`          // Soft-delete flag
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// UserResponse is the public representation of a user
// swagger:model UserResponse
type UserResponse struct {
	// User identifier
	// example: 1
	ID int64 `json:"id"`

	// First name
	// example: Alice
	FirstName string `json:"first_name"`

	// Last name
	// example: Smith
	LastName string `json:"last_name"`

	// Username
	// example: alice
	Username string `json:"username"`

	// Email
	// example: alice@example.com
	Email string `json:"email"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Last update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse copies the public fields of u.
func NewUserResponse(u *UserDB) UserResponse {
	return UserResponse{
		ID:        u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserResponses converts a slice of records, returning an empty slice for no users.
func NewUserResponses(users []*UserDB) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, NewUserResponse(u))
	}
	return resp
}
