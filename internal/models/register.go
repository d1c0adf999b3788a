package models

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// First name
	// example: Alice
	FirstName string `json:"first_name" validate:"max=100,nonul"`

	// Last name
	// example: Smith
	LastName string `json:"last_name" validate:"max=100,nonul"`

	// Username
	// required: true
	// example: alice
	Username string `json:"username" validate:"required,max=50,nonul"`

	// Email
	// required: true
	// example: alice@example.com
	Email string `json:"email" validate:"required,email,max=255,nonul"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateUserRequest represents the JSON body for updating a user.
// An empty password keeps the current one.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// First name
	// example: Alice
	FirstName string `json:"first_name" validate:"max=100,nonul"`

	// Last name
	// example: Smith
	LastName string `json:"last_name" validate:"max=100,nonul"`

	// Username
	// required: true
	// example: alice
	Username string `json:"username" validate:"required,max=50,nonul"`

	// Email
	// required: true
	// example: alice@example.com
	Email string `json:"email" validate:"required,email,max=255,nonul"`

	// New password, optional
	// example: newsecret
	Password string `json:"password" validate:"max=72"`
}

// MessageResponse represents a plain confirmation message
// swagger:model MessageResponse
type MessageResponse struct {
	// Confirmation message
	// example: User soft deleted successfully
	Message string `json:"message"`
}

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// example: User not found
	Error string `json:"error"`
}
