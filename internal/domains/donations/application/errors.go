package application

import (
	"errors"

	"github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func mapError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if f, ok := failure.ValidationFrom("donation validation failed", err); ok {
		return f
	}
	if errors.Is(err, ports.ErrNotFound) {
		return failure.Wrap(failure.NotFound("donation", id), err)
	}
	return err
}
