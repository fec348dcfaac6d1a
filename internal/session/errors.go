package session

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrBusy is returned by Begin while a ping check is outstanding.
	ErrBusy = errors.New("connection attempt already in progress")
	// ErrAlreadyConnected is returned by Begin while connected.
	ErrAlreadyConnected = errors.New("already connected, disconnect first")
	// ErrStale is returned by Finish when the attempt was superseded by a
	// disconnect or a newer attempt.
	ErrStale = errors.New("connection attempt superseded")
)

// ValidationError lists the required fields that were empty. Nothing is sent
// to the server when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill in all fields (missing: " + strings.Join(e.Fields, ", ") + ")"
}

type input struct {
	URL      string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
}

var fieldLabels = map[string]string{
	"URL":      "url",
	"Username": "username",
	"Password": "password",
}

var structValidator = validator.New()

func (in input) validate() error {
	err := structValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fieldLabels[fe.Field()])
	}
	return ve
}
