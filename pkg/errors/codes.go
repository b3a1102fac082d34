package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeCacheError         ErrorCode = "COMMON_008"
	ErrCodeConfigInvalid      ErrorCode = "COMMON_009"
)

// Sentinel aliases used by Wrap and GetCode.
const (
	CodeUnknown ErrorCode = "UNKNOWN"
	CodeOK      ErrorCode = "OK"
)

// Reconciliation module error codes.
const (
	// ErrCodeSchemaDetection marks the one fatal core condition: the input
	// table has no recognizable Name or CAS column.
	ErrCodeSchemaDetection ErrorCode = "REC_001"

	// ErrCodeInputRead covers catastrophic input-file failures owned by the
	// table reader (unreadable file, malformed workbook).
	ErrCodeInputRead ErrorCode = "REC_002"

	// ErrCodeReportWrite covers failures persisting the verdict report.
	ErrCodeReportWrite ErrorCode = "REC_003"

	// ErrCodeRecordsRejected is the run-level signal that one or more records
	// ended up rejected; hosts map it to a non-zero exit code.
	ErrCodeRecordsRejected ErrorCode = "REC_004"
)

// PubChem lookup error codes.
const (
	ErrCodePubChemUnavailable ErrorCode = "PUB_001"
	ErrCodePubChemBadInput    ErrorCode = "PUB_002"
	ErrCodePubChemParse       ErrorCode = "PUB_003"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeConfigInvalid:      "invalid configuration",

	ErrCodeSchemaDetection: "could not detect table schema",
	ErrCodeInputRead:       "failed to read input table",
	ErrCodeReportWrite:     "failed to write report",
	ErrCodeRecordsRejected: "one or more records were rejected",

	ErrCodePubChemUnavailable: "PubChem unavailable",
	ErrCodePubChemBadInput:    "PubChem rejected the identifier",
	ErrCodePubChemParse:       "failed to parse PubChem response",
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
