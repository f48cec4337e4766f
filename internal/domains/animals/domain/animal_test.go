package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func intakeAttrs() Attributes {
	return Attributes{
		Name:       "Bori",
		Species:    "DOG",
		IntakeDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewAnimalDefaults(t *testing.T) {
	animal, err := NewAnimal(intakeAttrs())
	require.NoError(t, err)
	require.Equal(t, StatusSheltered, animal.Status)
	require.Equal(t, SexUnknown, animal.Sex)
	require.Nil(t, animal.AgeYears)
}

func TestNewAnimalCollectsEveryViolation(t *testing.T) {
	age := 31
	_, err := NewAnimal(Attributes{
		Name:     strings.Repeat("n", MaxNameLength+1),
		Sex:      "X",
		AgeYears: &age,
		Status:   "LOST",
	})
	require.Error(t, err)

	fields := failure.Fields(err)
	require.Equal(t, ErrSpeciesRequired.Error(), fields["species"])
	require.Equal(t, ErrIntakeDateRequired.Error(), fields["intakeDate"])
	require.Equal(t, ErrInvalidSex.Error(), fields["sex"])
	require.Equal(t, ErrInvalidAge.Error(), fields["ageYears"])
	require.Equal(t, ErrInvalidStatus.Error(), fields["status"])
	require.Equal(t, ErrTooLong.Error(), fields["name"])
}

func TestNewAnimalAcceptsAdoptedIntake(t *testing.T) {
	attrs := intakeAttrs()
	attrs.Status = StatusAdopted
	animal, err := NewAnimal(attrs)
	require.NoError(t, err)
	require.Equal(t, StatusAdopted, animal.Status)
	require.False(t, animal.Status.Adoptable())
}

func TestChangeStatusReservesAdopted(t *testing.T) {
	animal, err := NewAnimal(intakeAttrs())
	require.NoError(t, err)

	require.ErrorIs(t, animal.ChangeStatus(StatusAdopted), ErrAdoptedStatus)
	require.Equal(t, StatusSheltered, animal.Status)

	require.NoError(t, animal.ChangeStatus(StatusTempFoster))
	require.True(t, animal.Status.Adoptable())
	require.NoError(t, animal.ChangeStatus(StatusDeceased))
	require.False(t, animal.Status.Adoptable())
	require.ErrorIs(t, animal.ChangeStatus("GONE"), ErrInvalidStatus)
}

func TestCloneIsDeep(t *testing.T) {
	age := 3
	attrs := intakeAttrs()
	attrs.AgeYears = &age
	animal, err := NewAnimal(attrs)
	require.NoError(t, err)

	clone := animal.Clone()
	*clone.AgeYears = 9
	require.Equal(t, 3, *animal.AgeYears)
}
