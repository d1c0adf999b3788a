package models

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username
	// required: true
	// example: alice
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// Result message
	// example: Authentication successful
	Message string `json:"message"`

	// JWT token, usable as a Bearer token when authentication is enforced
	// example: JWT_TOKEN
	Token string `json:"token,omitempty"`
}
