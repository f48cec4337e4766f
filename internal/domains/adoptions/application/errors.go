package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animaldomain "github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func mapError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if f, ok := failure.ValidationFrom("adoption validation failed", err); ok {
		return f
	}
	var transition *domain.TransitionError
	switch {
	case errors.As(err, &transition):
		return currentStatusConflict(transition.Action, transition.From, err)
	case errors.Is(err, ports.ErrNotFound):
		return failure.Wrap(failure.NotFound("adoption", id), err)
	}
	return err
}

func currentStatusConflict(action domain.Action, status domain.Status, cause error) error {
	return failure.Wrap(failure.StateConflict(
		fmt.Sprintf("cannot %s adoption in status %s", action, status),
		map[string]any{"currentStatus": string(status)},
	), cause)
}

func animalStatusConflict(animalID int64, status animaldomain.Status, cause error) error {
	return failure.Wrap(failure.StateConflict(
		fmt.Sprintf("animal %d is %s", animalID, status),
		map[string]any{"animalId": animalID, "animalStatus": string(status)},
	), cause)
}

func idempotencyConflict(key string, cause error) error {
	return failure.Wrap(failure.StateConflict(
		"idempotency key was already used with a different request",
		map[string]any{"idempotencyKey": key},
	), cause)
}

func idempotencyInFlight(key string) error {
	return failure.Wrap(failure.StateConflict(
		"a request with this idempotency key is still being processed",
		map[string]any{"idempotencyKey": key},
	), ports.ErrIdempotencyInFlight)
}
