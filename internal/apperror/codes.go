package apperror

// Code identifies a class of failure.
type Code string

// General
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Upstream services
const (
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeServiceTimeout    Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeRPCError          Code = "RPC_ERROR"
	CodePublishFailed     Code = "PUBLISH_FAILED"
	CodeCircuitOpen       Code = "CIRCUIT_OPEN"
)

// Pricing and arbitrage
const (
	CodeNoPriceData        Code = "NO_PRICE_DATA"
	CodeEmptySelection     Code = "EMPTY_SELECTION"
	CodeInvalidBalance     Code = "INVALID_BALANCE"
	CodeZeroReserve        Code = "ZERO_RESERVE"
	CodeInsufficientVenues Code = "INSUFFICIENT_VENUES"
	CodeUnknownToken       Code = "UNKNOWN_TOKEN"
)
