package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func mapError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if f, ok := failure.ValidationFrom("volunteer validation failed", err); ok {
		return f
	}
	var transition *domain.TransitionError
	switch {
	case errors.As(err, &transition):
		return currentStatusConflict(transition.Action, transition.From, err)
	case errors.Is(err, ports.ErrNotFound):
		return failure.Wrap(failure.NotFound("volunteer", id), err)
	}
	return err
}

func currentStatusConflict(action domain.Action, status domain.Status, cause error) error {
	return failure.Wrap(failure.StateConflict(
		fmt.Sprintf("cannot %s volunteer in status %s", action, status),
		map[string]any{"currentStatus": string(status)},
	), cause)
}
