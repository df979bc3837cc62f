package leavepolicy

import (
	"strings"

	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"
)

const (
	ModePaid = "Paid"
	ModeFree = "Free"

	FrequencyMonthly = "Monthly"
	FrequencyYearly  = "Yearly"
)

// LeaveType is one configured leave category.
type LeaveType struct {
	Type              string
	Mode              string
	Frequency         string
	MaxPerRequest     int
	NormalDays        int
	AllowedAfterLimit bool
}

func (lt LeaveType) IsPaid() bool {
	return lt.Mode == ModePaid
}

// Policy is an immutable snapshot of one policy version. Evaluators receive
// it by value; nothing in it can be changed after construction.
type Policy struct {
	id      string
	version int
	types   []LeaveType
	index   map[string]int
}

func NewPolicy(id string, version int, types []LeaveType) Policy {
	p := Policy{
		id:      id,
		version: version,
		types:   make([]LeaveType, len(types)),
		index:   make(map[string]int, len(types)),
	}
	copy(p.types, types)
	for i, t := range p.types {
		p.index[t.Type] = i
	}
	return p
}

func (p Policy) ID() string   { return p.id }
func (p Policy) Version() int { return p.version }

// IsZero reports a policy that was never configured.
func (p Policy) IsZero() bool { return p.index == nil }

// Find matches the leave type key exactly.
func (p Policy) Find(leaveType string) (LeaveType, bool) {
	i, ok := p.index[leaveType]
	if !ok {
		return LeaveType{}, false
	}
	return p.types[i], true
}

// LeaveTypes returns a copy in configuration order.
func (p Policy) LeaveTypes() []LeaveType {
	out := make([]LeaveType, len(p.types))
	copy(out, p.types)
	return out
}

// Validate checks the rules every stored policy version must satisfy.
func Validate(types []LeaveType) error {
	if len(types) == 0 {
		return leavepolicyerrors.ErrEmptyPolicy
	}

	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		key := strings.TrimSpace(t.Type)
		if key == "" {
			return leavepolicyerrors.ErrEmptyPolicy
		}
		if _, dup := seen[key]; dup {
			return leavepolicyerrors.ErrDuplicateLeaveType
		}
		seen[key] = struct{}{}

		if t.Mode != ModePaid && t.Mode != ModeFree {
			return leavepolicyerrors.ErrInvalidMode
		}
		if t.Frequency != FrequencyMonthly && t.Frequency != FrequencyYearly {
			return leavepolicyerrors.ErrInvalidFrequency
		}
		if t.MaxPerRequest <= 0 || t.NormalDays <= 0 {
			return leavepolicyerrors.ErrInvalidAllowance
		}
	}
	return nil
}
