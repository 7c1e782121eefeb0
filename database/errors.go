package database

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/feedback/errors"
)

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"connection closed",
	"driver: bad connection",
	"database is closed",
}

var transientPatterns = []string{
	"deadlock",
	"lock timeout",
	"database is locked",
	"too many connections",
}

func matchAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsConnectionError reports whether err means the database is unreachable.
func IsConnectionError(err error) bool {
	return err != nil && matchAny(err, connectionPatterns)
}

// IsRetryableError reports whether retrying the operation may succeed.
func IsRetryableError(err error) bool {
	return err != nil && (IsConnectionError(err) || matchAny(err, transientPatterns))
}

// IsNotFoundError reports a gorm record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique constraint violation. It relies on the
// connection being opened with TranslateError.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FromDatabase converts a database error into an AppError for resource.
func FromDatabase(err error, resource string) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case IsNotFoundError(err):
		return apperrors.NotFound(resource, "")
	case IsDuplicateError(err):
		return apperrors.AlreadyExists(resource).WithCause(err)
	case IsRetryableError(err):
		return apperrors.New(apperrors.ErrCodeServiceUnavailable,
			"Database is temporarily unavailable. Please try again.",
			http.StatusServiceUnavailable).WithCause(err)
	default:
		return apperrors.DatabaseError(err)
	}
}
