package util

// gin context keys
const (
	UserContextKey = "user"
	RequestIDKey   = "request_id"
)

const RequestIDHeader = "X-Request-ID"
