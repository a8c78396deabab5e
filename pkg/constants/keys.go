package constants

// Context Keys
const (
	ContextKeyUser      = "user"
	ContextKeyToken     = "token"
	ContextKeyRequestID = "request_id"
)

// HTTP headers
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// Response keys
const (
	ResponseError = "error"
	FieldMessage  = "message"
)
