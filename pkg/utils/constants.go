package utils

const (
	VerifyPath  = "/api/genie/verify"
	MessagePath = "/api/genie/message"

	RedisRateLimitPrefix = "ratelimit"
)
