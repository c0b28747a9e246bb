package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/moodlit/internal/logger"
)

// Sentinel kinds. Every failure returned by the journal core wraps exactly one
// of these so callers can branch with errors.Is.
var (
	ErrNetworkUnavailable    = stderrors.New("no internet connection")
	ErrAuthRequired          = stderrors.New("no signed-in user")
	ErrRemoteWrite           = stderrors.New("remote write failed")
	ErrRemoteDelete          = stderrors.New("remote delete failed")
	ErrRemoteRead            = stderrors.New("remote read failed")
	ErrDecode                = stderrors.New("malformed remote record")
	ErrValidation            = stderrors.New("validation failed")
	ErrTransactionInProgress = stderrors.New("another entry submission is in progress")
	ErrNoPendingReplace      = stderrors.New("no pending replacement")
)

// Error is a typed failure: Kind is one of the sentinels above, Op names the
// operation and Err is the underlying cause (may be nil).
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Is reports whether target matches the error kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps cause under kind for operation op.
func New(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf returns the sentinel kind carried by err, or nil if err is not a
// journal error.
func KindOf(err error) error {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	for _, kind := range []error{
		ErrNetworkUnavailable, ErrAuthRequired, ErrRemoteWrite, ErrRemoteDelete,
		ErrRemoteRead, ErrDecode, ErrValidation, ErrTransactionInProgress, ErrNoPendingReplace,
	} {
		if stderrors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Is is stderrors.Is, re-exported so callers need only one errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is stderrors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
