package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// toConnectError maps domain errors to Connect codes. Unexpected errors are
// logged and returned as Internal without their details.
func toConnectError(op string, err error) error {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput), errors.Is(err, models.ErrInvalidEdit):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}
