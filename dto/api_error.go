package dto

type APIErrorResponse struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"error_code"`
	// Messages details the invalid fields of a rejected payload.
	Messages []string `json:"messages,omitempty"`
}

type ErrorCode string

const (
	InvalidPayload ErrorCode = "invalid_payload"
	Unauthorized   ErrorCode = "unauthorized"
	Forbidden      ErrorCode = "forbidden"
	NotFound       ErrorCode = "not_found"
	Conflict       ErrorCode = "conflict"
	RemoteRejected ErrorCode = "remote_rejected"
	InternalError  ErrorCode = "internal_error"
)
