package leave

import (
	"fmt"
	"strings"
	"time"

	leaveerrors "go-hrpayroll/internal/leave/errors"
	"go-hrpayroll/internal/leavepolicy"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Evaluation is the outcome of a submission that passed validation.
type Evaluation struct {
	TypePolicy leavepolicy.LeaveType
	TotalDays  int
	Remaining  int
	LWPDays    int
	Advisory   string
}

// IsActive reports whether the leave still blocks overlapping submissions.
func (l Leave) IsActive() bool {
	return l.Status == StatusPending || l.Status == StatusApproved
}

// Overlaps uses closed ranges: sharing a single day is an overlap.
func (l Leave) Overlaps(from, to time.Time) bool {
	return !l.FromDate.After(to) && !l.ToDate.Before(from)
}

// ValidateSubmission checks a new request against the policy and the
// employee's existing requests. usedThisYear is the approved total of the
// same type since Jan 1. Exceeding limits annotates the result; only range,
// type and overlap problems reject it.
func ValidateSubmission(policy leavepolicy.Policy, existing []Leave, leaveType string, from, to time.Time, usedThisYear int) (Evaluation, error) {
	from, to = dateutil.Truncate(from), dateutil.Truncate(to)
	if from.After(to) {
		return Evaluation{}, leaveerrors.ErrInvalidDateRange
	}

	typePolicy, ok := policy.Find(leaveType)
	if !ok {
		return Evaluation{}, leaveerrors.ErrUnknownLeaveType
	}

	for _, l := range existing {
		if l.IsActive() && l.Overlaps(from, to) {
			return Evaluation{}, leaveerrors.OverlapConflict(
				dateutil.Format(l.FromDate),
				dateutil.Format(l.ToDate),
				l.Status,
			)
		}
	}

	eval := Evaluation{
		TypePolicy: typePolicy,
		TotalDays:  dateutil.InclusiveDays(from, to),
		Remaining:  typePolicy.NormalDays - usedThisYear,
	}

	var advisories []string
	if eval.TotalDays > typePolicy.MaxPerRequest {
		advisories = append(advisories, fmt.Sprintf(
			"You can only apply for max %d days per request for %s.",
			typePolicy.MaxPerRequest, leaveType,
		))
	}
	if eval.TotalDays > eval.Remaining {
		advisories = append(advisories, fmt.Sprintf(
			"You are requesting %d days but only %d days left for %s. Max allowed in a year: %d",
			eval.TotalDays, eval.Remaining, leaveType, typePolicy.NormalDays,
		))
		// an overdrawn balance never makes more than the whole request unpaid
		eval.LWPDays = eval.TotalDays - max(eval.Remaining, 0)
	}
	eval.Advisory = strings.Join(advisories, "; ")

	return eval, nil
}

// Annotate returns the eligibility warning shown to HR for an existing
// request. usedThisYear is the approved total of the leave's type for its
// employee since yearStart, possibly including the leave itself.
func Annotate(policy leavepolicy.Policy, l Leave, usedThisYear int, yearStart time.Time) string {
	typePolicy, ok := policy.Find(l.LeaveType)
	if !ok {
		return "Invalid leave type"
	}

	var warnings []string
	if l.TotalDays > typePolicy.MaxPerRequest {
		warnings = append(warnings, fmt.Sprintf(
			"Max per request is %d days, requested %d",
			typePolicy.MaxPerRequest, l.TotalDays,
		))
	}

	used := usedThisYear
	if l.Status == StatusApproved && !l.FromDate.Before(yearStart) {
		used -= l.TotalDays
	}
	remaining := typePolicy.NormalDays - used
	if l.TotalDays > remaining {
		warnings = append(warnings, fmt.Sprintf(
			"Only %d days left this year, requested %d",
			remaining, l.TotalDays,
		))
	}

	return strings.Join(warnings, "; ")
}

// Decision is an HR status change. The approved range is optional.
type Decision struct {
	Status       string
	Message      string
	ApprovedFrom *time.Time
	ApprovedTo   *time.Time
	DecidedBy    *uuid.UUID
	DecidedAt    time.Time
}

// ApplyDecision moves a pending request to APPROVED or REJECTED. A decided
// request is never transitioned again.
func ApplyDecision(l *Leave, d Decision) error {
	if d.Status != StatusApproved && d.Status != StatusRejected {
		return leaveerrors.ErrInvalidDecision
	}
	if l.Status != StatusPending {
		return leaveerrors.ErrInvalidStatusTransition
	}

	if d.Status == StatusApproved && d.ApprovedFrom != nil && d.ApprovedTo != nil {
		from, to := dateutil.Truncate(*d.ApprovedFrom), dateutil.Truncate(*d.ApprovedTo)
		if from.After(to) {
			return leaveerrors.ErrInvalidDateRange
		}
		l.ApprovedFromDate = &from
		l.ApprovedToDate = &to
		l.ApprovedTotalDays = dateutil.InclusiveDays(from, to)
	} else {
		l.ApprovedFromDate = nil
		l.ApprovedToDate = nil
		l.ApprovedTotalDays = 0
	}

	decidedAt := d.DecidedAt
	l.Status = d.Status
	l.Message = d.Message
	l.SeenByEmployee = false
	l.DecidedBy = d.DecidedBy
	l.DecidedAt = &decidedAt
	return nil
}

// Balance is one policy leave type's usage for an employee.
type Balance struct {
	Type          string `json:"type"`
	TotalAllowed  int    `json:"total_allowed"`
	Used          int    `json:"used"`
	Remaining     int    `json:"remaining"`
	MaxPerRequest int    `json:"max_per_request"`
	Frequency     string `json:"frequency"`
	Mode          string `json:"mode"`
}

// ComputeBalances returns a row for every configured type, zero usage
// included. usedByType sums approved_total_days per type.
func ComputeBalances(policy leavepolicy.Policy, usedByType map[string]int) []Balance {
	types := policy.LeaveTypes()
	out := make([]Balance, 0, len(types))
	for _, t := range types {
		used := usedByType[t.Type]
		out = append(out, Balance{
			Type:          t.Type,
			TotalAllowed:  t.NormalDays,
			Used:          used,
			Remaining:     max(t.NormalDays-used, 0),
			MaxPerRequest: t.MaxPerRequest,
			Frequency:     t.Frequency,
			Mode:          t.Mode,
		})
	}
	return out
}
