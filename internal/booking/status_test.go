package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignStatus(t *testing.T) {
	testCases := []struct {
		name        string
		privileged  bool
		maintenance bool
		expected    Status
	}{
		{"staff booking is confirmed", true, false, StatusConfirmed},
		{"staff maintenance block", true, true, StatusMaintenance},
		{"regular booking is pending", false, false, StatusPending},
		{"maintenance flag ignored for regular users", false, true, StatusPending},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AssignStatus(tc.privileged, tc.maintenance))
		})
	}
}

func TestStatus_Blocking(t *testing.T) {
	assert.True(t, StatusConfirmed.Blocking())
	assert.True(t, StatusPending.Blocking())
	assert.True(t, StatusMaintenance.Blocking())
	assert.False(t, StatusRejected.Blocking())
	assert.False(t, StatusCancelled.Blocking())
	assert.ElementsMatch(t, []string{"C", "P", "M"}, BlockingStatusCodes())
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "Pending", StatusPending.Label())
	assert.Equal(t, "Maintenance", StatusMaintenance.Label())
	assert.Equal(t, "Unknown", Status("Z").Label())
	assert.False(t, Status("Z").Valid())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusRejected))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusMaintenance, StatusCancelled))
	assert.False(t, CanTransition(StatusMaintenance, StatusConfirmed))
	assert.False(t, CanTransition(StatusCancelled, StatusPending))
	assert.False(t, CanTransition(StatusRejected, StatusConfirmed))
	assert.False(t, CanTransition(StatusConfirmed, StatusConfirmed))
}

func TestTransition(t *testing.T) {
	assert.NoError(t, Transition(StatusPending, StatusConfirmed))

	err := Transition(StatusCancelled, StatusConfirmed)
	var tErr *TransitionError
	assert.ErrorAs(t, err, &tErr)
	assert.Equal(t, "cannot change status from Cancelled to Confirmed", err.Error())
}
