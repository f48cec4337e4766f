package application

import (
	"errors"

	"github.com/Apurer/shelter-api/internal/domains/medical/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func mapError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if f, ok := failure.ValidationFrom("medical record validation failed", err); ok {
		return f
	}
	if errors.Is(err, ports.ErrNotFound) {
		return failure.Wrap(failure.NotFound("medical record", id), err)
	}
	return err
}

func animalNotFound(animalID int64, cause error) error {
	return failure.Wrap(failure.AnimalNotFound(animalID), cause)
}
