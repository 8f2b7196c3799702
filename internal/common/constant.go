package common

const (
	// TokenType is returned alongside every issued access token.
	TokenType = "bearer"

	// DefaultPageLimit is used by paginated listings when no limit is given.
	DefaultPageLimit = 100
)
