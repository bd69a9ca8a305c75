package rest

import "errors"

type errInvalidData struct {
	msg string
}

func (e *errInvalidData) SetMessage(msg string) error {
	e.msg = msg
	return e
}

func (e *errInvalidData) Error() string {
	return e.msg
}

var (
	ErrUnauthorized = errors.New("invalid or expired credentials")
	ErrInvalidData  = &errInvalidData{}
)

// FallbackMessage is shown when the backend fails without a usable message.
const FallbackMessage = "Sorry! Can't process your request. Please try again later."
