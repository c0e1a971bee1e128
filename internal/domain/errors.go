package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrUserNotFound = errors.New("user not found")
	ErrLoanNotFound = errors.New("loan not found")

	ErrBookUnavailable = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed = errors.New("you have already borrowed this book")

	ErrEmailTaken = errors.New("a user with this email already exists")
	ErrISBNTaken  = errors.New("a book with this ISBN already exists")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("your account is inactive or suspended")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSelfModification   = errors.New("you cannot modify your own account here")
)

// IsNotFound 缺失的 book / user / loan
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrLoanNotFound)
}

// IsUserFacing 可以原样展示给用户的业务错误
func IsUserFacing(err error) bool {
	for _, e := range []error{
		ErrBookNotFound, ErrUserNotFound, ErrLoanNotFound,
		ErrBookUnavailable, ErrAlreadyBorrowed,
		ErrEmailTaken, ErrISBNTaken,
		ErrInvalidCredentials, ErrAccountInactive,
		ErrPasswordMismatch, ErrWrongPassword, ErrSelfModification,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// ValidationError carries per-field messages from schema validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
