package divedto

import "errors"

// Error codes raised by the game service and dive resolver.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidState    = "INVALID_STATE"
)

type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "treasure quest error"
}

func NotFound(msg string) error {
	return DomainError{Code: CodeNotFound, Message: msg}
}

func InvalidArgument(msg string) error {
	return DomainError{Code: CodeInvalidArgument, Message: msg}
}

func InvalidState(msg string) error {
	return DomainError{Code: CodeInvalidState, Message: msg}
}

func hasCode(err error, code string) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

func IsNotFound(err error) bool        { return hasCode(err, CodeNotFound) }
func IsInvalidArgument(err error) bool { return hasCode(err, CodeInvalidArgument) }
func IsInvalidState(err error) bool    { return hasCode(err, CodeInvalidState) }
