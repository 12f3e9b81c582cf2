package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeCacheMiss          ErrorCode = "COMMON_017"
	ErrCodeConfig             ErrorCode = "COMMON_018"
)

// Sentinel codes that never appear on a wire response.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// CGSmiles Module Error Codes
const (
	// ErrCodeGrammar: the notation or a fragment SMILES is malformed.
	ErrCodeGrammar ErrorCode = "CGS_001"
	// ErrCodeUndefinedFragment: the meta graph references a name the
	// dictionary does not define.
	ErrCodeUndefinedFragment ErrorCode = "CGS_002"
	// ErrCodeResolution: no compatible descriptor pair exists for a meta edge.
	ErrCodeResolution ErrorCode = "CGS_003"
	// ErrCodeGraph: an invalid graph mutation such as a self loop.
	ErrCodeGraph ErrorCode = "CGS_004"
	// ErrCodeNotationTooLarge: the notation exceeds configured limits.
	ErrCodeNotationTooLarge ErrorCode = "CGS_005"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeCacheMiss:          http.StatusNotFound,
	ErrCodeConfig:             http.StatusInternalServerError,

	ErrCodeGrammar:           http.StatusBadRequest,
	ErrCodeUndefinedFragment: http.StatusUnprocessableEntity,
	ErrCodeResolution:        http.StatusUnprocessableEntity,
	ErrCodeGraph:             http.StatusInternalServerError,
	ErrCodeNotationTooLarge:  http.StatusRequestEntityTooLarge,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeCacheMiss:          "cache miss",
	ErrCodeConfig:             "invalid configuration",

	ErrCodeGrammar:           "malformed CGSmiles notation",
	ErrCodeUndefinedFragment: "fragment not defined",
	ErrCodeResolution:        "no compatible bonding descriptors",
	ErrCodeGraph:             "invalid graph operation",
	ErrCodeNotationTooLarge:  "notation exceeds configured limits",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
