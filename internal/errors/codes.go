// Package errors provides structured error handling for loreindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Embedding provider / network errors
//   - 4XX: Validation errors
//   - 5XX: Internal and storage errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryProvider indicates embedding-provider and network errors.
	CategoryProvider Category = "PROVIDER"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryStorage indicates index-store errors.
	CategoryStorage Category = "STORAGE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid     = "ERR_101_CONFIG_INVALID"
	ErrCodeCredentialMissing = "ERR_102_CREDENTIAL_MISSING"
	ErrCodeCredentialInvalid = "ERR_103_CREDENTIAL_INVALID"
	ErrCodeSearchDisabled    = "ERR_104_SEARCH_DISABLED"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileUnreadable = "ERR_202_FILE_UNREADABLE"

	// Provider errors (300-399)
	ErrCodeProviderRequest  = "ERR_301_PROVIDER_REQUEST"
	ErrCodeProviderResponse = "ERR_302_PROVIDER_RESPONSE"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal / storage errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
	ErrCodeStorage  = "ERR_502_STORAGE"
	ErrCodeSchema   = "ERR_503_SCHEMA"
	ErrCodeLocked   = "ERR_504_INDEX_LOCKED"
)

// categoryFromCode derives the category from the numeric range of the code.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryProvider
	case '4':
		return CategoryValidation
	default:
		return CategoryStorage
	}
}

// retryableCodes lists codes where the same operation may succeed later.
// Provider failures are retried on the next scheduler pass; a locked index
// clears once the competing pass finishes.
var retryableCodes = map[string]bool{
	ErrCodeProviderRequest:  true,
	ErrCodeProviderResponse: true,
	ErrCodeLocked:           true,
}

// isRetryableCode reports whether the code is retryable.
func isRetryableCode(code string) bool {
	return retryableCodes[code]
}
