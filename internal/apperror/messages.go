package apperror

var messages = map[Code]string{
	CodeInvalidInput:       "Invalid input provided",
	CodeNotFound:           "Resource not found",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeSourceUnavailable: "Price source unavailable",
	CodeServiceTimeout:    "Upstream request timed out",
	CodeRateLimitExceeded: "Rate limit exceeded",
	CodeMalformedResponse: "Upstream response is missing expected fields",
	CodeRPCError:          "Solana RPC call failed",
	CodePublishFailed:     "Failed to publish price",
	CodeCircuitOpen:       "Circuit breaker is open",

	CodeNoPriceData:        "No price source returned data",
	CodeEmptySelection:     "Nothing to select from",
	CodeInvalidBalance:     "Token balance is not a valid unsigned integer",
	CodeZeroReserve:        "Pool base reserve is zero",
	CodeInsufficientVenues: "Fewer than two venues quoted a price",
	CodeUnknownToken:       "Token is not configured",
}
