package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

func TestNewVolunteerCollectsEveryFieldError(t *testing.T) {
	_, err := NewVolunteer(
		"  ",
		strings.Repeat("1", MaxPhoneLength+1),
		strings.Repeat("e", MaxEmailLength+1),
		strings.Repeat("n", MaxNoteLength+1),
		time.Time{},
	)
	fields := failure.Fields(err)
	require.Equal(t, ErrNameRequired.Error(), fields["name"])
	require.Equal(t, ErrTooLong.Error(), fields["phone"])
	require.Equal(t, ErrTooLong.Error(), fields["email"])
	require.Equal(t, ErrTooLong.Error(), fields["note"])
	require.Equal(t, ErrJoinedAtRequired.Error(), fields["joinedAt"])
}

func TestNewVolunteerStartsPending(t *testing.T) {
	joined := time.Date(2024, 5, 4, 10, 0, 0, 0, time.FixedZone("KST", 9*3600))
	v, err := NewVolunteer(" Kim Haneul ", "010-1234-5678", "haneul@example.com", "weekends", joined)
	require.NoError(t, err)
	assert.Equal(t, "Kim Haneul", v.Name)
	assert.Equal(t, StatusPending, v.Status)
	assert.Equal(t, time.UTC, v.JoinedAt.Location())
}

func TestNameLengthCountsRunes(t *testing.T) {
	v := &Volunteer{}
	require.NoError(t, v.ChangeName(strings.Repeat("봉", MaxNameLength)))
	require.Error(t, v.ChangeName(strings.Repeat("봉", MaxNameLength+1)))
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
		to     Status
		ok     bool
	}{
		{StatusPending, ActionApprove, StatusApproved, true},
		{StatusApproved, ActionSuspend, StatusSuspended, true},
		{StatusSuspended, ActionReinstate, StatusApproved, true},
		{StatusApproved, ActionApprove, "", false},
		{StatusPending, ActionSuspend, "", false},
		{StatusPending, ActionReinstate, "", false},
		{StatusSuspended, ActionSuspend, "", false},
		{StatusSuspended, ActionApprove, "", false},
		{StatusApproved, ActionReinstate, "", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.action)+"_from_"+string(tc.from), func(t *testing.T) {
			v := &Volunteer{Status: tc.from}
			err := v.Apply(tc.action)
			if !tc.ok {
				var transition *TransitionError
				require.ErrorAs(t, err, &transition)
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tc.from, v.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, v.Status)
		})
	}
}
