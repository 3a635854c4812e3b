package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func int64p(v int64) *int64 { return &v }

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		bStart   time.Time
		bEnd     time.Time
		expected bool
	}{
		{"partial overlap", at(14, 0), at(15, 0), at(14, 30), at(15, 30), true},
		{"contained", at(14, 0), at(16, 0), at(14, 30), at(15, 0), true},
		{"containing", at(14, 30), at(15, 0), at(14, 0), at(16, 0), true},
		{"identical", at(14, 0), at(15, 0), at(14, 0), at(15, 0), true},
		{"touching end", at(14, 0), at(15, 0), at(15, 0), at(16, 0), false},
		{"touching start", at(15, 0), at(16, 0), at(14, 0), at(15, 0), false},
		{"disjoint", at(9, 0), at(10, 0), at(14, 0), at(15, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			assert.Equal(t, tc.expected, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd), "overlap must be symmetric")
		})
	}
}

func TestValidate(t *testing.T) {
	now := at(8, 0)
	confirmed := Slot{ID: 1, ResourceID: 10, Requester: "alice", Start: at(14, 0), End: at(15, 0), Status: StatusConfirmed}

	t.Run("conflicting request is rejected", func(t *testing.T) {
		candidate := Slot{ResourceID: 10, Start: at(14, 30), End: at(15, 30)}
		err := Validate(candidate, []Slot{confirmed}, nil, now)

		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, int64(1), conflict.Blocking.ID)
		assert.False(t, conflict.Maintenance())
		assert.Equal(t, "resource is already reserved by alice from 2030-03-04 14:00 to 2030-03-04 15:00", conflict.Error())
	})

	t.Run("touching boundary is accepted", func(t *testing.T) {
		candidate := Slot{ResourceID: 10, Start: at(15, 0), End: at(16, 0)}
		assert.NoError(t, Validate(candidate, []Slot{confirmed}, nil, now))
	})

	t.Run("other resources never conflict", func(t *testing.T) {
		candidate := Slot{ResourceID: 11, Start: at(14, 0), End: at(15, 0)}
		assert.NoError(t, Validate(candidate, []Slot{confirmed}, nil, now))
	})

	t.Run("equal start and end is an invalid interval", func(t *testing.T) {
		candidate := Slot{ResourceID: 10, Start: at(17, 0), End: at(17, 0)}
		var invalid *InvalidIntervalError
		assert.True(t, errors.As(Validate(candidate, nil, nil, now), &invalid))
	})

	t.Run("reversed interval is invalid even for edits", func(t *testing.T) {
		candidate := Slot{ID: 5, ResourceID: 10, Start: at(18, 0), End: at(17, 0)}
		var invalid *InvalidIntervalError
		assert.True(t, errors.As(Validate(candidate, nil, int64p(5), now), &invalid))
	})

	t.Run("creation in the past is rejected", func(t *testing.T) {
		candidate := Slot{ResourceID: 10, Start: at(7, 0), End: at(9, 0)}
		var past *PastStartError
		assert.True(t, errors.As(Validate(candidate, nil, nil, now), &past))
	})

	t.Run("edits are exempt from the past start rule", func(t *testing.T) {
		candidate := Slot{ID: 5, ResourceID: 10, Start: at(7, 0), End: at(9, 0)}
		assert.NoError(t, Validate(candidate, nil, int64p(5), now))
	})

	t.Run("the edited reservation does not conflict with itself", func(t *testing.T) {
		candidate := confirmed
		candidate.End = at(15, 30)
		assert.NoError(t, Validate(candidate, []Slot{confirmed}, int64p(confirmed.ID), now))
	})

	t.Run("inert statuses never block", func(t *testing.T) {
		rejected := confirmed
		rejected.Status = StatusRejected
		cancelled := confirmed
		cancelled.ID = 2
		cancelled.Status = StatusCancelled
		candidate := Slot{ResourceID: 10, Start: at(14, 0), End: at(15, 0)}
		assert.NoError(t, Validate(candidate, []Slot{rejected, cancelled}, nil, now))
	})

	t.Run("pending reservations block", func(t *testing.T) {
		pending := confirmed
		pending.Status = StatusPending
		candidate := Slot{ResourceID: 10, Start: at(14, 0), End: at(14, 15)}
		var conflict *ConflictError
		assert.True(t, errors.As(Validate(candidate, []Slot{pending}, nil, now), &conflict))
	})

	t.Run("maintenance blocks get a distinct message", func(t *testing.T) {
		maintenance := Slot{ID: 3, ResourceID: 10, Requester: "admin", Start: at(9, 0), End: at(12, 0), Status: StatusMaintenance}
		candidate := Slot{ResourceID: 10, Start: at(11, 0), End: at(13, 0)}
		var conflict *ConflictError
		require.True(t, errors.As(Validate(candidate, []Slot{maintenance}, nil, now), &conflict))
		assert.True(t, conflict.Maintenance())
		assert.Equal(t, "resource is blocked for maintenance from 2030-03-04 09:00 to 2030-03-04 12:00", conflict.Error())
		assert.NotContains(t, conflict.Error(), "admin")
	})

	t.Run("earliest blocker is reported", func(t *testing.T) {
		late := Slot{ID: 7, ResourceID: 10, Requester: "bob", Start: at(16, 0), End: at(17, 0), Status: StatusPending}
		candidate := Slot{ResourceID: 10, Start: at(13, 0), End: at(18, 0)}
		var conflict *ConflictError
		require.True(t, errors.As(Validate(candidate, []Slot{late, confirmed}, nil, now), &conflict))
		assert.Equal(t, int64(1), conflict.Blocking.ID)
	})
}

func TestConflictError_Describe(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	err := &ConflictError{Blocking: Slot{Requester: "carol", Start: at(14, 0), End: at(15, 0), Status: StatusConfirmed}}
	assert.Equal(t, "resource is already reserved by carol from 2030-03-04 11:00 to 2030-03-04 12:00", err.Describe(loc))
}

func TestBusyResources(t *testing.T) {
	reservations := []Slot{
		{ID: 1, ResourceID: 1, Start: at(14, 0), End: at(15, 0), Status: StatusConfirmed},
		{ID: 2, ResourceID: 2, Start: at(14, 0), End: at(15, 0), Status: StatusCancelled},
		{ID: 3, ResourceID: 3, Start: at(15, 0), End: at(16, 0), Status: StatusPending},
		{ID: 4, ResourceID: 4, Start: at(13, 0), End: at(18, 0), Status: StatusMaintenance},
	}

	busy := BusyResources(reservations, at(14, 0), at(15, 0))

	assert.Contains(t, busy, int64(1))
	assert.NotContains(t, busy, int64(2), "cancelled reservations are inert")
	assert.NotContains(t, busy, int64(3), "touching reservations do not make a resource busy")
	assert.Contains(t, busy, int64(4))
}
