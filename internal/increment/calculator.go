package increment

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LevelFresher  = "Fresher"
	LevelMidLevel = "Mid-Level"
	LevelExpert   = "Expert"

	defaultLabel = "General"
	defaultRange = "1%"
)

const yearLength = 365 * 24 * time.Hour

// Employee is the calculator's view of one employee.
type Employee struct {
	ID            string
	Name          string
	DateOfJoining time.Time
	Salary        decimal.Decimal
}

// RatingStats is the sum and count of rated tasks for one employee.
type RatingStats struct {
	Total int64
	Rated int64
}

// FineSummary is the employee's fine ledger.
type FineSummary struct {
	Total      decimal.Decimal
	Deductions []Fine
}

type Result struct {
	Employee         Employee
	Level            string
	Experience       int
	AvgRating        int
	RatingLabel      string
	BaseIncrement    int
	SpecialIncrement int
	TotalIncrement   int
	GrossNewSalary   decimal.Decimal
	TotalFines       decimal.Decimal
	Deductions       []Fine
	NetNewSalary     decimal.Decimal
}

// Experience counts whole 365-day periods since joining.
func Experience(dateOfJoining, asOf time.Time) int {
	if asOf.Before(dateOfJoining) {
		return 0
	}
	return int(asOf.Sub(dateOfJoining) / yearLength)
}

// AverageRating rounds the mean half up; no rated tasks means 1.
func AverageRating(s RatingStats) int {
	if s.Rated <= 0 {
		return 1
	}
	return int((2*s.Total + s.Rated) / (2 * s.Rated))
}

func Level(experience int) string {
	switch {
	case experience >= 5:
		return LevelExpert
	case experience >= 2:
		return LevelMidLevel
	default:
		return LevelFresher
	}
}

// BasePercent is the leading integer of a range such as "10% - 15%". Zero
// or unparsable ranges give 1.
func BasePercent(incrementRange string) int {
	lower := strings.TrimSpace(strings.SplitN(incrementRange, "-", 2)[0])
	end := 0
	for end < len(lower) && lower[end] >= '0' && lower[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(lower[:end])
	if err != nil || n == 0 {
		return 1
	}
	return n
}

// SpecialIncrement applies the tenure tiers highest first.
func SpecialIncrement(experience, avgRating int) int {
	switch {
	case experience >= 15:
		return 45
	case experience >= 10:
		return 25
	case experience >= 5 && avgRating >= 3:
		return 15
	default:
		return 0
	}
}

func lookupCriterion(criteria []Criterion, rating int) (label, incrementRange string) {
	for _, c := range criteria {
		if c.Rating == rating {
			return c.Label, c.IncrementRange
		}
	}
	return defaultLabel, defaultRange
}

// Calculate computes one employee's proposed increment. It never writes.
func Calculate(emp Employee, ratings RatingStats, fines FineSummary, criteria []Criterion, asOf time.Time) Result {
	experience := Experience(emp.DateOfJoining, asOf)
	avg := AverageRating(ratings)
	label, incrementRange := lookupCriterion(criteria, avg)
	if label == "" {
		label = defaultLabel
	}

	base := BasePercent(incrementRange)
	special := SpecialIncrement(experience, avg)
	total := base + special

	gross := emp.Salary.Mul(decimal.NewFromInt(int64(100 + total))).Div(decimal.NewFromInt(100)).Round(0)

	deductions := fines.Deductions
	if deductions == nil {
		deductions = []Fine{}
	}

	return Result{
		Employee:         emp,
		Level:            Level(experience),
		Experience:       experience,
		AvgRating:        avg,
		RatingLabel:      label,
		BaseIncrement:    base,
		SpecialIncrement: special,
		TotalIncrement:   total,
		GrossNewSalary:   gross,
		TotalFines:       fines.Total,
		Deductions:       deductions,
		NetNewSalary:     gross.Sub(fines.Total),
	}
}

var milestoneYears = regexp.MustCompile(`(\d+)-Year`)

// ThresholdYears prefers the structured threshold and falls back to the
// "<n>-Year" label used by older policies.
func ThresholdYears(m Milestone) (int, bool) {
	if m.ThresholdYears > 0 {
		return m.ThresholdYears, true
	}
	match := milestoneYears.FindStringSubmatch(m.Milestone)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// MatchMilestone picks the highest milestone the tenure has reached.
func MatchMilestone(milestones []Milestone, years int) (Milestone, int, bool) {
	var (
		best     Milestone
		bestYear int
	)
	for _, m := range milestones {
		threshold, ok := ThresholdYears(m)
		if !ok {
			continue
		}
		if years >= threshold && threshold > bestYear {
			best, bestYear = m, threshold
		}
	}
	return best, bestYear, bestYear > 0
}

// DefaultPolicy is seeded when no increment policy exists.
func DefaultPolicy() Policy {
	return Policy{
		Title: "Annual Performance-Based Increments",
		Criteria: []Criterion{
			{Rating: 5, Label: "Outstanding", IncrementRange: "10% - 15%"},
			{Rating: 4, Label: "Exceeds Expectations", IncrementRange: "5% - 10%"},
			{Rating: 3, Label: "Meets Expectations", IncrementRange: "3% - 5%"},
			{Rating: 2, Label: "Average", IncrementRange: "2% - 3%"},
			{Rating: 1, Label: "General", IncrementRange: "1%"},
		},
		SpecialIncrements: []Milestone{
			{
				Milestone:      "5-Year Completion",
				ThresholdYears: 5,
				Details: []string{
					"One-time 10%-15% increment after 5 years",
					"Performance must be Meets Expectations or higher",
					"Effective after 5 years of service",
				},
			},
			{
				Milestone:      "10-Year Milestone",
				ThresholdYears: 10,
				Details: []string{
					"One-time 15%-25% increment",
					"Given in recognition of long-term contribution",
				},
			},
			{
				Milestone:      "15-Year Milestone",
				ThresholdYears: 15,
				Details: []string{
					"One-time 30%-45% increment",
					"Given in recognition of long-term contribution",
				},
			},
		},
	}
}
