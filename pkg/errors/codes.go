package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeTimeout       ErrorCode = "COMMON_003"
	ErrCodeSerialization ErrorCode = "COMMON_004"
	ErrCodeCacheError    ErrorCode = "COMMON_005"
)

// Molecule parsing error codes.
const (
	ErrCodeMoleculeInvalidSMILES  ErrorCode = "MOL_001"
	ErrCodeMoleculeInvalidMolfile ErrorCode = "MOL_002"
)

// Pipeline error codes.  PIPE_001 and PIPE_002 are the two fatal
// configuration errors: they abort the whole pipeline before any output.
const (
	ErrCodeUnknownFormat   ErrorCode = "PIPE_001"
	ErrCodeUnknownMethod   ErrorCode = "PIPE_002"
	ErrCodeGraphEmpty      ErrorCode = "PIPE_003"
	ErrCodeModifierFailed  ErrorCode = "PIPE_004"
	ErrCodeInvalidInterval ErrorCode = "PIPE_005"
)

// External conversion tool error codes.  Tool failures are always fatal;
// there is no retry path.
const (
	ErrCodeToolExecFailed   ErrorCode = "TOOL_001"
	ErrCodeToolBadOutput    ErrorCode = "TOOL_002"
	ErrCodeToolNotAvailable ErrorCode = "TOOL_003"
)

// Aliases used at call sites throughout the codebase.
const (
	CodeOK            = ErrorCode("OK")
	CodeUnknown       = ErrorCode("UNKNOWN")
	CodeInternal      = ErrCodeInternal
	CodeInvalidParam  = ErrCodeBadRequest
	CodeTimeout       = ErrCodeTimeout
	CodeSerialization = ErrCodeSerialization
	CodeCacheError    = ErrCodeCacheError

	CodeInvalidSMILES  = ErrCodeMoleculeInvalidSMILES
	CodeInvalidMolfile = ErrCodeMoleculeInvalidMolfile

	CodeUnknownFormat   = ErrCodeUnknownFormat
	CodeUnknownMethod   = ErrCodeUnknownMethod
	CodeEmptyGraph      = ErrCodeGraphEmpty
	CodeModifierFailed  = ErrCodeModifierFailed
	CodeInvalidInterval = ErrCodeInvalidInterval

	CodeToolExecFailed   = ErrCodeToolExecFailed
	CodeToolBadOutput    = ErrCodeToolBadOutput
	CodeToolNotAvailable = ErrCodeToolNotAvailable
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeTimeout:       http.StatusGatewayTimeout,
	ErrCodeSerialization: http.StatusInternalServerError,
	ErrCodeCacheError:    http.StatusInternalServerError,

	ErrCodeMoleculeInvalidSMILES:  http.StatusBadRequest,
	ErrCodeMoleculeInvalidMolfile: http.StatusBadRequest,

	ErrCodeUnknownFormat:   http.StatusBadRequest,
	ErrCodeUnknownMethod:   http.StatusBadRequest,
	ErrCodeGraphEmpty:      http.StatusUnprocessableEntity,
	ErrCodeModifierFailed:  http.StatusInternalServerError,
	ErrCodeInvalidInterval: http.StatusBadRequest,

	ErrCodeToolExecFailed:   http.StatusBadGateway,
	ErrCodeToolBadOutput:    http.StatusBadGateway,
	ErrCodeToolNotAvailable: http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeTimeout:       "operation timed out",
	ErrCodeSerialization: "serialization failed",
	ErrCodeCacheError:    "cache error",

	ErrCodeMoleculeInvalidSMILES:  "invalid SMILES string",
	ErrCodeMoleculeInvalidMolfile: "invalid molfile record",

	ErrCodeUnknownFormat:   "unrecognized file format",
	ErrCodeUnknownMethod:   "unrecognized feature-extraction method",
	ErrCodeGraphEmpty:      "graph has no nodes",
	ErrCodeModifierFailed:  "vertex attribute modifier failed",
	ErrCodeInvalidInterval: "invalid interval parameters",

	ErrCodeToolExecFailed:   "external conversion tool failed",
	ErrCodeToolBadOutput:    "external conversion tool produced unparsable output",
	ErrCodeToolNotAvailable: "external conversion tool not available",
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

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
