package errors

// Error codes shared by the HTTP and gRPC surfaces.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"
	// ErrUpstream marks a failure in a remote dependency (payment processor, CRM).
	ErrUpstream = "UPSTREAM"
	// ErrMisconfigured marks a missing secret or setting needed to serve the request.
	ErrMisconfigured = "MISCONFIGURED"
)
