package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the closed set of failure classes the rest of the application is
// allowed to observe. Provider-specific error codes are mapped onto it once,
// at the database boundary, so upstream logic never inspects driver strings.
type Kind int

const (
	// KindValidation means caller-supplied data failed a precondition.
	KindValidation Kind = iota
	// KindNotFound means no row matched the lookup.
	KindNotFound
	// KindUnauthorizedOrNotFound deliberately conflates "not yours" and
	// "does not exist" so mutation attempts cannot probe for existence.
	KindUnauthorizedOrNotFound
	// KindTransient covers network blips and temporary backend
	// unavailability. Safe to retry.
	KindTransient
	// KindPermanent covers constraint violations, permission errors and
	// missing schema objects. Never retried.
	KindPermanent
)

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind with a short internal message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors are
// reported as permanent so nothing retries blindly.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindPermanent
}

// IsTransient reports whether the error is worth retrying.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// Postgres error codes treated as permanent.
const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgInsufficientPrivilege = "42501"
	pgUndefinedTable        = "42P01"
)

// FromDB classifies an error returned by the gorm/pq layer. Returns nil for
// a nil input so call sites can wrap unconditionally.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, "record not found", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return Wrap(KindPermanent, "constraint violation", err)
		case pgInsufficientPrivilege:
			return Wrap(KindPermanent, "permission denied", err)
		case pgUndefinedTable:
			return Wrap(KindPermanent, "schema object missing", err)
		}
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" { // connection exceptions
			return Wrap(KindTransient, "backend connection failure", err)
		}
		return Wrap(KindPermanent, "backend error", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Wrap(KindTransient, "network failure", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTransient, "backend timeout", err)
	}
	return Wrap(KindTransient, "backend unavailable", err)
}

// UserMessage translates an error into the string shown to the end user.
// Raw backend error text is never surfaced.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case KindValidation:
			if ae.Msg != "" {
				return ae.Msg
			}
			return "The submitted data is invalid."
		case KindNotFound:
			return "The requested entry could not be found."
		case KindUnauthorizedOrNotFound:
			return "The requested entry could not be found."
		case KindTransient:
			return "The service is temporarily unavailable. Please try again."
		case KindPermanent:
			return "Something went wrong while saving your data. Please try again later."
		}
	}
	return "An unexpected error occurred. Please try again later."
}
