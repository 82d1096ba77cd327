package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrPayloadTooLarge ErrCode = "PAYLOAD_TOO_LARGE"

	// ─── Attempt ───────────────────────────────────────────────────────
	ErrQuestionMismatch ErrCode = "QUESTION_MISMATCH"
	ErrAttemptCompleted ErrCode = "ATTEMPT_COMPLETED"
	ErrSubmitBusy       ErrCode = "SUBMIT_IN_PROGRESS"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstreamRejected    ErrCode = "UPSTREAM_REJECTED"
	ErrUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."

	case ErrFileRequired:
		return "At least one file must be selected."
	case ErrPayloadTooLarge:
		return "Upload is too large."

	case ErrQuestionMismatch:
		return "This answer is not for the current question."
	case ErrAttemptCompleted:
		return "This quiz attempt has already been submitted."
	case ErrSubmitBusy:
		return "An answer for this attempt is already being submitted."

	case ErrUpstreamRejected:
		return "The quiz service rejected the request."
	case ErrUpstreamUnavailable:
		return "The quiz service could not be reached."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
