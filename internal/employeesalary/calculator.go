package employeesalary

import (
	"strings"

	employeesalaryerrors "go-hrpayroll/internal/employeesalary/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type ComponentInput struct {
	Name     string
	Type     string
	Value    decimal.Decimal
	Percent  decimal.Decimal
	Base     []string
	Category string
}

type Breakdown struct {
	Components []AssignedComponent
	Basic      decimal.Decimal
	Gross      decimal.Decimal
	Net        decimal.Decimal
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Compute resolves every component amount. A percentage component takes
// its percent of the summed amounts of its bases, or of BASIC SALARY when
// it names none; bases may be listed in any order.
func Compute(inputs []ComponentInput) (Breakdown, error) {
	lines := make([]AssignedComponent, len(inputs))
	index := make(map[string]int, len(inputs))

	for i, in := range inputs {
		name := normalizeName(in.Name)
		if name == "" {
			return Breakdown{}, employeesalaryerrors.ErrInvalidComponent
		}
		if _, dup := index[name]; dup {
			return Breakdown{}, employeesalaryerrors.ErrDuplicateComponent
		}
		typ := strings.ToLower(strings.TrimSpace(in.Type))
		category := strings.ToLower(strings.TrimSpace(in.Category))
		if category == "" {
			category = CategoryEarning
		}
		if (typ != TypeFlat && typ != TypePercentage) ||
			(category != CategoryEarning && category != CategoryDeduction) ||
			in.Value.IsNegative() || in.Percent.IsNegative() {
			return Breakdown{}, employeesalaryerrors.ErrInvalidComponent
		}

		line := AssignedComponent{Name: name, Type: typ, Category: category, Base: []string{}}
		if typ == TypeFlat {
			line.Value = in.Value
		} else {
			line.Percent = in.Percent
			for _, b := range in.Base {
				if b = normalizeName(b); b != "" {
					line.Base = append(line.Base, b)
				}
			}
		}
		index[name] = i
		lines[i] = line
	}

	for _, line := range lines {
		for _, b := range line.Base {
			if _, ok := index[b]; !ok {
				return Breakdown{}, employeesalaryerrors.ErrUnknownBase
			}
		}
	}

	resolved := make([]bool, len(lines))
	remaining := len(lines)
	for remaining > 0 {
		progressed := false
		for i := range lines {
			if resolved[i] {
				continue
			}
			amount, ok := resolve(lines, index, resolved, i)
			if !ok {
				continue
			}
			lines[i].Amount = amount
			resolved[i] = true
			remaining--
			progressed = true
		}
		if !progressed {
			return Breakdown{}, employeesalaryerrors.ErrCyclicBase
		}
	}

	out := Breakdown{Components: lines, Basic: decimal.Zero, Gross: decimal.Zero, Net: decimal.Zero}
	deductions := decimal.Zero
	for _, line := range lines {
		if line.Name == BasicSalaryComponent {
			out.Basic = line.Amount
		}
		if line.Category == CategoryDeduction {
			deductions = deductions.Add(line.Amount)
			continue
		}
		out.Gross = out.Gross.Add(line.Amount)
	}
	out.Net = out.Gross.Sub(deductions)
	return out, nil
}

// resolve reports false while a base of line i is still unresolved.
func resolve(lines []AssignedComponent, index map[string]int, resolved []bool, i int) (decimal.Decimal, bool) {
	line := lines[i]
	if line.Type == TypeFlat {
		return line.Value.Round(2), true
	}

	bases := line.Base
	if len(bases) == 0 {
		j, ok := index[BasicSalaryComponent]
		if !ok {
			return decimal.Zero, true
		}
		if j == i {
			return decimal.Zero, false
		}
		bases = []string{BasicSalaryComponent}
	}

	sum := decimal.Zero
	for _, b := range bases {
		j := index[b]
		if !resolved[j] {
			return decimal.Zero, false
		}
		sum = sum.Add(lines[j].Amount)
	}
	return sum.Mul(line.Percent).Div(hundred).Round(2), true
}
