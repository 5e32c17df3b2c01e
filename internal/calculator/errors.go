package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when an allocation request violates the caller contract.
// Anomalies with a defined fallback (items exceeding the total, empty participant
// lists, zero-weight surcharges) are not errors.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
