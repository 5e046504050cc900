package constants

import "time"

const (
	DefaultTimeout        = 30 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	ShutdownTimeout       = 10 * time.Second

	ContextTokenData = "token_data"

	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
	ScopeOAuthState   = "oauth_state"
)

// Database pool defaults, overridden by config.
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
)

const (
	RedisKeyTokenBlacklist = "auth:blacklist:"
	RedisKeyOAuthState     = "auth:oauth_state:"
	RedisKeyLoginAttempt   = "auth:login_attempt:"
	OAuthStateTTL          = 10 * time.Minute

	MaxLoginAttempts   = 5
	LoginBlockDuration = 15 * time.Minute
)

const (
	ProviderGoogle = "google"

	CalendarTokenRefreshSkew = 5 * time.Minute
)

const (
	CoupleInvitationTTL         = 7 * 24 * time.Hour
	CoupleInvitationTokenLength = 32
)

const (
	TaskTypeNotificationSend = "notification:send"
	QueueDefault             = "default"
)

const (
	NotificationTypeCoupleInvitation = "couple_invitation"
	NotificationTypeCoupleAccepted   = "couple_accepted"
	NotificationTypeDatePlanReady    = "date_plan_ready"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)
