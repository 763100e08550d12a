package accounts

import (
	"errors"
	"fmt"
)

// ErrRejected is the base of every validation rejection. Callers that only
// care whether a failure is recoverable caller error (as opposed to an I/O
// failure) check errors.Is(err, ErrRejected).
var ErrRejected = errors.New("rejected")

// Specific rejection reasons, all wrapping ErrRejected.
var (
	ErrMissingUsername    = fmt.Errorf("%w: username is required", ErrRejected)
	ErrInvalidUsername    = fmt.Errorf("%w: username must not contain '@'", ErrRejected)
	ErrInvalidEmail       = fmt.Errorf("%w: email address is not valid", ErrRejected)
	ErrWeakPassword       = fmt.Errorf("%w: password must be 6-50 characters with at least one letter and one digit", ErrRejected)
	ErrMissingSecurityQA  = fmt.Errorf("%w: security question and answer are required", ErrRejected)
	ErrInvalidBirthday    = fmt.Errorf("%w: birthday must be a valid YYYY-MM-DD date", ErrRejected)
	ErrDuplicateUsername  = fmt.Errorf("%w: username already registered", ErrRejected)
	ErrDuplicateEmail     = fmt.Errorf("%w: email already registered", ErrRejected)
	ErrWrongSecurityReply = fmt.Errorf("%w: security answer does not match", ErrRejected)
)

// Lookup and authentication outcomes. These are expected results, not
// faults: an unknown identifier or a bad password is normal input.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
