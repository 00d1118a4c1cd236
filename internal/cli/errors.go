package cli

import (
	"errors"
	"fmt"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/model"
	"inkwell-cli/internal/review"
	"inkwell-cli/internal/snapshot"
	"inkwell-cli/internal/store"
)

// Exit statuses returned by the inkwell binary.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitPublish  = 4
)

type flagError struct {
	flag string
	msg  string
}

func (e flagError) Error() string {
	return fmt.Sprintf("--%s: %s", e.flag, e.msg)
}

func errFlag(flag, msg string) error {
	return flagError{flag: flag, msg: msg}
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	var ve *model.ValidationError
	var fe flagError
	var pe *review.PublishError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ve), errors.As(err, &fe),
		errors.Is(err, gateway.ErrInvalidName), errors.Is(err, gateway.ErrInvalidData):
		return ExitInvalid
	case errors.Is(err, store.ErrNotFound), errors.Is(err, snapshot.ErrNotFound):
		return ExitNotFound
	case errors.As(err, &pe):
		return ExitPublish
	}
	return ExitFailure
}
