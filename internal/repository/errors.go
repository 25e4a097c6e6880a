package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type StorageErrorKind string

const (
	StorageErrorConnection StorageErrorKind = "connection"
	StorageErrorConstraint StorageErrorKind = "constraint"
	StorageErrorTimeout    StorageErrorKind = "timeout"
	StorageErrorData       StorageErrorKind = "data"
	StorageErrorOther      StorageErrorKind = "other"
)

// StorageError wraps a persistence failure. Error() returns the driver text
// unchanged; callers surface it as-is.
type StorageError struct {
	Op    string
	Kind  StorageErrorKind
	Cause error
}

func (e *StorageError) Error() string {
	return e.Cause.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// AsStorageError returns the StorageError in err's chain, if any.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Kind: classify(err), Cause: err}
}

func classify(err error) StorageErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StorageErrorTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"):
			return StorageErrorConnection
		case strings.HasPrefix(pgErr.Code, "23"):
			return StorageErrorConstraint
		case strings.HasPrefix(pgErr.Code, "22"):
			return StorageErrorData
		case pgErr.Code == "57014":
			return StorageErrorTimeout
		}
		return StorageErrorOther
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return StorageErrorConnection
	}

	// sqlite reports constraint failures only through the message text.
	if strings.Contains(strings.ToLower(err.Error()), "constraint failed") {
		return StorageErrorConstraint
	}

	return StorageErrorOther
}
