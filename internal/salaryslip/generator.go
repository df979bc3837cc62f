package salaryslip

import (
	"time"

	"go-hrpayroll/internal/leavepolicy"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/shopspring/decimal"
)

// UnpaidExcessKey collects approved days beyond the yearly allowance.
const UnpaidExcessKey = "UNPAID_EXCESS"

type EmployeeInfo struct {
	ID          string
	Name        string
	Designation string
	Salary      decimal.Decimal
}

// ApprovedLeave is an approved request whose approved range starts in the
// slip month.
type ApprovedLeave struct {
	LeaveType         string
	ApprovedTotalDays int
}

type Input struct {
	Employee EmployeeInfo
	Policy   leavepolicy.Policy
	Leaves   []ApprovedLeave
	// YearToDateUsed sums approved_total_days per type for requests starting
	// between Jan 1 and the end of the slip month.
	YearToDateUsed map[string]int
	Month          time.Month
	Year           int
}

type Slip struct {
	TotalWorkingDays int
	PresentDays      int
	PaidLeaves       int
	UnpaidLeaves     int
	GrossSalary      decimal.Decimal
	DeductionAmount  decimal.Decimal
	NetSalary        decimal.Decimal
	LeavesBreakup    map[string]int
}

// Generate computes one month's pay. It has no side effects; the same input
// always yields the same slip.
func Generate(in Input) Slip {
	total := dateutil.DaysInMonth(in.Year, in.Month)

	breakup := make(map[string]int)
	for _, t := range in.Policy.LeaveTypes() {
		breakup[t.Type] = 0
	}

	for _, l := range in.Leaves {
		typePolicy, ok := in.Policy.Find(l.LeaveType)
		if !ok {
			continue
		}

		remainingAllowed := max(typePolicy.NormalDays-in.YearToDateUsed[l.LeaveType], 0)
		paid := min(l.ApprovedTotalDays, remainingAllowed)
		unpaid := l.ApprovedTotalDays - paid

		if paid > 0 {
			breakup[l.LeaveType] += paid
		}
		if unpaid > 0 {
			breakup[UnpaidExcessKey] += unpaid
		}
	}

	var paidLeaves, unpaidLeaves int
	for _, t := range in.Policy.LeaveTypes() {
		if t.IsPaid() {
			paidLeaves += breakup[t.Type]
		} else {
			unpaidLeaves += breakup[t.Type]
		}
	}
	unpaidLeaves += breakup[UnpaidExcessKey]

	salary := in.Employee.Salary
	deduction := salary.Mul(decimal.NewFromInt(int64(unpaidLeaves))).Div(decimal.NewFromInt(int64(total)))
	// rounding a fractional salary up must not push net above gross
	net := decimal.Min(salary.Sub(deduction).Round(0), salary)

	return Slip{
		TotalWorkingDays: total,
		PresentDays:      total - paidLeaves - unpaidLeaves,
		PaidLeaves:       paidLeaves,
		UnpaidLeaves:     unpaidLeaves,
		GrossSalary:      salary,
		DeductionAmount:  deduction.Round(0),
		NetSalary:        net,
		LeavesBreakup:    breakup,
	}
}
