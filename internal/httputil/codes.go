package httputil

// Machine-readable error codes attached to error responses so clients can
// branch without parsing messages.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_failed"
	CodeNameTaken          = "name_taken"
	CodeEmailTaken         = "email_taken"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotVerified   = "email_not_verified"
	CodeInvalidCode        = "invalid_verification_code"
	CodeCodeExpired        = "verification_code_expired"
	CodeAlreadyVerified    = "already_verified"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"
	CodeMissingAuth        = "missing_authentication"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeInternalError      = "internal_error"
)
