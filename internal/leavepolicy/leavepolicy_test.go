package leavepolicy_test

import (
	"testing"

	"go-hrpayroll/internal/leavepolicy"
	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"

	"github.com/stretchr/testify/assert"
)

func sampleTypes() []leavepolicy.LeaveType {
	return []leavepolicy.LeaveType{
		{Type: "Casual", Mode: leavepolicy.ModePaid, Frequency: leavepolicy.FrequencyYearly, MaxPerRequest: 3, NormalDays: 12},
		{Type: "Sick", Mode: leavepolicy.ModeFree, Frequency: leavepolicy.FrequencyMonthly, MaxPerRequest: 2, NormalDays: 6},
	}
}

func TestPolicy_Find(t *testing.T) {
	types := sampleTypes()
	p := leavepolicy.NewPolicy("p-1", 2, types)

	lt, ok := p.Find("Casual")
	assert.True(t, ok)
	assert.True(t, lt.IsPaid())
	assert.Equal(t, 12, lt.NormalDays)

	_, ok = p.Find("casual")
	assert.False(t, ok)

	// mutating the input slice must not leak into the snapshot
	types[0].NormalDays = 99
	lt, _ = p.Find("Casual")
	assert.Equal(t, 12, lt.NormalDays)

	out := p.LeaveTypes()
	out[1].Mode = leavepolicy.ModePaid
	lt, _ = p.Find("Sick")
	assert.False(t, lt.IsPaid())

	assert.Equal(t, "p-1", p.ID())
	assert.Equal(t, 2, p.Version())
	assert.False(t, p.IsZero())
	assert.True(t, leavepolicy.Policy{}.IsZero())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]leavepolicy.LeaveType) []leavepolicy.LeaveType
		wantErr error
	}{
		{name: "valid", mutate: func(l []leavepolicy.LeaveType) []leavepolicy.LeaveType { return l }},
		{name: "empty", mutate: func([]leavepolicy.LeaveType) []leavepolicy.LeaveType { return nil }, wantErr: leavepolicyerrors.ErrEmptyPolicy},
		{name: "duplicate", mutate: func(l []leavepolicy.LeaveType) []leavepolicy.LeaveType {
			l[1].Type = "Casual"
			return l
		}, wantErr: leavepolicyerrors.ErrDuplicateLeaveType},
		{name: "mode", mutate: func(l []leavepolicy.LeaveType) []leavepolicy.LeaveType {
			l[0].Mode = "Unpaid"
			return l
		}, wantErr: leavepolicyerrors.ErrInvalidMode},
		{name: "frequency", mutate: func(l []leavepolicy.LeaveType) []leavepolicy.LeaveType {
			l[0].Frequency = "Weekly"
			return l
		}, wantErr: leavepolicyerrors.ErrInvalidFrequency},
		{name: "allowance", mutate: func(l []leavepolicy.LeaveType) []leavepolicy.LeaveType {
			l[1].NormalDays = 0
			return l
		}, wantErr: leavepolicyerrors.ErrInvalidAllowance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := leavepolicy.Validate(tt.mutate(sampleTypes()))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
