package leave_test

import (
	"testing"
	"time"

	"go-hrpayroll/internal/leave"
	leaveerrors "go-hrpayroll/internal/leave/errors"
	"go-hrpayroll/internal/leavepolicy"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elPolicy() leavepolicy.Policy {
	return leavepolicy.NewPolicy("p-1", 1, []leavepolicy.LeaveType{
		{Type: "EL", Mode: leavepolicy.ModePaid, Frequency: leavepolicy.FrequencyYearly, MaxPerRequest: 5, NormalDays: 10},
		{Type: "SL", Mode: leavepolicy.ModeFree, Frequency: leavepolicy.FrequencyMonthly, MaxPerRequest: 3, NormalDays: 6},
	})
}

func day(d int) time.Time {
	return dateutil.Date(2026, time.March, d)
}

func TestValidateSubmission(t *testing.T) {
	approved := leave.Leave{
		ID:       uuid.New(),
		FromDate: day(10),
		ToDate:   day(15),
		Status:   leave.StatusApproved,
	}

	t.Run("invalid range comes first", func(t *testing.T) {
		_, err := leave.ValidateSubmission(elPolicy(), []leave.Leave{approved}, "NOPE", day(20), day(12), 0)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("unknown type before overlap", func(t *testing.T) {
		_, err := leave.ValidateSubmission(elPolicy(), []leave.Leave{approved}, "NOPE", day(12), day(20), 0)
		assert.ErrorIs(t, err, leaveerrors.ErrUnknownLeaveType)
	})

	t.Run("overlapping approved leave rejects", func(t *testing.T) {
		_, err := leave.ValidateSubmission(elPolicy(), []leave.Leave{approved}, "EL", day(12), day(20), 0)
		require.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.Contains(t, err.Error(), "from 2026-03-10 to 2026-03-15 with status APPROVED")
	})

	t.Run("adjacent range succeeds", func(t *testing.T) {
		eval, err := leave.ValidateSubmission(elPolicy(), []leave.Leave{approved}, "EL", day(16), day(20), 0)
		require.NoError(t, err)
		assert.Equal(t, 5, eval.TotalDays)
		assert.Empty(t, eval.Advisory)
		assert.Equal(t, 0, eval.LWPDays)
	})

	t.Run("rejected leave does not block", func(t *testing.T) {
		rejected := approved
		rejected.Status = leave.StatusRejected
		_, err := leave.ValidateSubmission(elPolicy(), []leave.Leave{rejected}, "EL", day(12), day(14), 0)
		assert.NoError(t, err)
	})

	t.Run("single shared day overlaps", func(t *testing.T) {
		pending := approved
		pending.Status = leave.StatusPending
		_, err := leave.ValidateSubmission(elPolicy(), []leave.Leave{pending}, "SL", day(15), day(15), 0)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
	})

	t.Run("limits only annotate", func(t *testing.T) {
		eval, err := leave.ValidateSubmission(elPolicy(), nil, "EL", day(1), day(7), 4)
		require.NoError(t, err)
		assert.Equal(t, 7, eval.TotalDays)
		assert.Equal(t, 6, eval.Remaining)
		assert.Equal(t, 1, eval.LWPDays)
		assert.Equal(t,
			"You can only apply for max 5 days per request for EL.; "+
				"You are requesting 7 days but only 6 days left for EL. Max allowed in a year: 10",
			eval.Advisory)
		assert.Equal(t, leavepolicy.ModePaid, eval.TypePolicy.Mode)
	})

	t.Run("overdrawn balance caps lwp at request", func(t *testing.T) {
		eval, err := leave.ValidateSubmission(elPolicy(), nil, "EL", day(1), day(3), 12)
		require.NoError(t, err)
		assert.Equal(t, -2, eval.Remaining)
		assert.Equal(t, 3, eval.LWPDays)
	})
}

func TestAnnotate(t *testing.T) {
	yearStart := dateutil.StartOfYear(2026)

	t.Run("unknown type", func(t *testing.T) {
		got := leave.Annotate(elPolicy(), leave.Leave{LeaveType: "X"}, 0, yearStart)
		assert.Equal(t, "Invalid leave type", got)
	})

	t.Run("clean", func(t *testing.T) {
		l := leave.Leave{LeaveType: "EL", TotalDays: 3, FromDate: day(1), Status: leave.StatusPending}
		assert.Empty(t, leave.Annotate(elPolicy(), l, 2, yearStart))
	})

	t.Run("both warnings joined", func(t *testing.T) {
		l := leave.Leave{LeaveType: "EL", TotalDays: 7, FromDate: day(1), Status: leave.StatusPending}
		got := leave.Annotate(elPolicy(), l, 5, yearStart)
		assert.Equal(t, "Max per request is 5 days, requested 7; Only 5 days left this year, requested 7", got)
	})

	t.Run("own approved days are not double counted", func(t *testing.T) {
		l := leave.Leave{LeaveType: "EL", TotalDays: 5, FromDate: day(1), Status: leave.StatusApproved}
		// usage of 10 includes this leave's 5
		assert.Empty(t, leave.Annotate(elPolicy(), l, 10, yearStart))
	})

	t.Run("own approved days from last year are not subtracted", func(t *testing.T) {
		l := leave.Leave{
			LeaveType: "EL",
			TotalDays: 5,
			FromDate:  dateutil.Date(2025, time.December, 29),
			Status:    leave.StatusApproved,
		}
		got := leave.Annotate(elPolicy(), l, 8, yearStart)
		assert.Equal(t, "Only 2 days left this year, requested 5", got)
	})

	t.Run("scenario seven day request", func(t *testing.T) {
		eval, err := leave.ValidateSubmission(elPolicy(), nil, "EL", day(1), day(7), 0)
		require.NoError(t, err)
		l := leave.Leave{LeaveType: "EL", TotalDays: eval.TotalDays, FromDate: day(1), Status: leave.StatusPending, LWPDays: eval.LWPDays}
		assert.NotEmpty(t, leave.Annotate(elPolicy(), l, 0, yearStart))
	})
}

func TestApplyDecision(t *testing.T) {
	decidedAt := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

	t.Run("approve with range recomputes days", func(t *testing.T) {
		l := &leave.Leave{Status: leave.StatusPending, FromDate: day(10), ToDate: day(15), TotalDays: 6, SeenByEmployee: true}
		from, to := day(11), day(12)

		err := leave.ApplyDecision(l, leave.Decision{
			Status: leave.StatusApproved, Message: "shortened",
			ApprovedFrom: &from, ApprovedTo: &to, DecidedAt: decidedAt,
		})
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, l.Status)
		assert.Equal(t, 2, l.ApprovedTotalDays)
		assert.Equal(t, 6, l.TotalDays)
		assert.Equal(t, "shortened", l.Message)
		assert.False(t, l.SeenByEmployee)
		require.NotNil(t, l.DecidedAt)
	})

	t.Run("approve without range clears approved fields", func(t *testing.T) {
		prev := day(1)
		l := &leave.Leave{Status: leave.StatusPending, ApprovedFromDate: &prev, ApprovedToDate: &prev, ApprovedTotalDays: 1}

		require.NoError(t, leave.ApplyDecision(l, leave.Decision{Status: leave.StatusApproved, DecidedAt: decidedAt}))
		assert.Nil(t, l.ApprovedFromDate)
		assert.Nil(t, l.ApprovedToDate)
		assert.Equal(t, 0, l.ApprovedTotalDays)
	})

	t.Run("reject ignores range", func(t *testing.T) {
		from, to := day(11), day(12)
		l := &leave.Leave{Status: leave.StatusPending}

		require.NoError(t, leave.ApplyDecision(l, leave.Decision{
			Status: leave.StatusRejected, Message: "no", ApprovedFrom: &from, ApprovedTo: &to, DecidedAt: decidedAt,
		}))
		assert.Equal(t, leave.StatusRejected, l.Status)
		assert.Nil(t, l.ApprovedFromDate)
		assert.Equal(t, 0, l.ApprovedTotalDays)
	})

	t.Run("decided leave is immutable", func(t *testing.T) {
		for _, status := range []string{leave.StatusApproved, leave.StatusRejected} {
			l := &leave.Leave{Status: status, Message: "kept"}
			err := leave.ApplyDecision(l, leave.Decision{Status: leave.StatusRejected, Message: "changed", DecidedAt: decidedAt})
			assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
			assert.Equal(t, "kept", l.Message)
		}
	})

	t.Run("inverted approved range", func(t *testing.T) {
		from, to := day(12), day(11)
		l := &leave.Leave{Status: leave.StatusPending}
		err := leave.ApplyDecision(l, leave.Decision{Status: leave.StatusApproved, ApprovedFrom: &from, ApprovedTo: &to})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
		assert.Equal(t, leave.StatusPending, l.Status)
	})

	t.Run("unsupported target", func(t *testing.T) {
		l := &leave.Leave{Status: leave.StatusPending}
		err := leave.ApplyDecision(l, leave.Decision{Status: leave.StatusPending})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDecision)
	})
}

func TestComputeBalances(t *testing.T) {
	policy := leavepolicy.NewPolicy("p", 1, []leavepolicy.LeaveType{
		{Type: "EL", Mode: "Paid", Frequency: "Yearly", MaxPerRequest: 5, NormalDays: 20},
		{Type: "SL", Mode: "Free", Frequency: "Monthly", MaxPerRequest: 2, NormalDays: 4},
	})

	rows := leave.ComputeBalances(policy, map[string]int{"EL": 5, "SL": 9, "OLD": 3})
	require.Len(t, rows, 2)
	assert.Equal(t, "EL", rows[0].Type)
	assert.Equal(t, 5, rows[0].Used)
	assert.Equal(t, 15, rows[0].Remaining)
	assert.Equal(t, 0, rows[1].Remaining)

	empty := leave.ComputeBalances(leavepolicy.Policy{}, nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
