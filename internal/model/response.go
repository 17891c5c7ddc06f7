package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SessionPayload is the body of successful login/register responses.
type SessionPayload struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

type VerifyPayload struct {
	User AuthUser `json:"user"`
}
