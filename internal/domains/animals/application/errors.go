package application

import (
	"errors"

	"github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func mapError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if f, ok := failure.ValidationFrom("animal validation failed", err); ok {
		return f
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return failure.Wrap(failure.NotFound("animal", id), err)
	case errors.Is(err, ports.ErrReferenced):
		return failure.Wrap(failure.StateConflict("animal is referenced by adoption or medical records", map[string]any{
			"animalId":  id,
			"adoptions": "referenced",
		}), err)
	case errors.Is(err, ports.ErrStatusChanged):
		return failure.Wrap(failure.StateConflict("animal status changed concurrently", map[string]any{
			"animalId": id,
		}), err)
	}
	return err
}
