package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "issue_session"

	SessionKeyLoggedIn       = "logged_in"
	SessionKeyUserID         = "user_id"
	SessionKeyUserName       = "user_name"
	SessionKeyUserEmail      = "user_email"
	SessionKeyIsAdmin        = "is_admin"
	SessionKeyCSRFToken      = "csrf_token"
	SessionKeyLastActivity   = "last_activity"
	SessionKeyFailedAttempts = "failed_attempts"
	SessionKeyLockedUntil    = "locked_until"

	ContextKeySession   = "session_state"
	ContextKeyRequestID = "request_id"
	ContextKeyTooLarge  = "body_too_large"

	CSRFFormField   = "csrf_token"
	RequestIDHeader = "X-Request-ID"
)

// Login state machine
const (
	MaxFailedLoginAttempts = 5
	LockoutDuration        = 15 * time.Minute
	SessionIdleTimeout     = 30 * time.Minute
	MinLoginDelay          = 100 * time.Millisecond
	MaxLoginDelay          = 300 * time.Millisecond
	MinPasswordLength      = 8
)

// Attachments
const (
	MaxAttachmentSize   = 2 * 1024 * 1024
	AttachmentExtension = ".pdf"
	AttachmentURLPrefix = "uploads/"
	AttachmentFormField = "pdf_attachment"

	// MaxRequestBodySize leaves room for the other form fields next to a
	// full size attachment.
	MaxRequestBodySize = MaxAttachmentSize + 512*1024
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Routes
const (
	LoginPath  = "/login"
	IssuesPath = "/issues"
)
