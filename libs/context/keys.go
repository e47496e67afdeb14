package context

import "errors"

// CTXKey - a type for context keys
type CTXKey string

const (
	// EnvironmentCTXKey - the key used for the deployment environment
	EnvironmentCTXKey CTXKey = "environment"
	// DebugLoggingCTXKey - context key for debug logging
	DebugLoggingCTXKey CTXKey = "debug_logging"
	// LogLevelCTXKey - context key for application logging level
	LogLevelCTXKey CTXKey = "log_level"
	// LogWriterCTXKey - context key for an alternate log writer
	LogWriterCTXKey CTXKey = "log_writer"
	// LoggerCTXKey - the context key for the logger
	LoggerCTXKey CTXKey = "logger"
	// VersionCTXKey - context key for version of code
	VersionCTXKey CTXKey = "version"
	// CommitCTXKey - context key for the commit of the code
	CommitCTXKey CTXKey = "commit"
	// BuildTimeCTXKey - context key for the build time of code
	BuildTimeCTXKey CTXKey = "build_time"
	// RateLimitPerMinuteCTXKey - rate limit per minute for the ingress
	RateLimitPerMinuteCTXKey CTXKey = "rate_limit_per_minute"
	// RateLimiterBurstCTXKey - rate limiter burst value
	RateLimiterBurstCTXKey CTXKey = "rate_limiter_burst"
	// CheckoutIDCTXKey - the id assigned to a single checkout attempt
	CheckoutIDCTXKey CTXKey = "checkout_id"
)

var (
	// ErrNotInContext - error you get when you ask for something not in the context.
	ErrNotInContext = errors.New("failed to get value from context")
	// ErrValueWrongType - error you get when you ask for something, and it is not the type you expected
	ErrValueWrongType = errors.New("context value of wrong type")
)
