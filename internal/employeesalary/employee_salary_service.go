package employeesalary

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	employeesalaryerrors "go-hrpayroll/internal/employeesalary/errors"
	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/shared/contextutil"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetCatalog(ctx context.Context) (CatalogResponse, error)
	SaveCatalog(ctx context.Context, req SaveCatalogRequest) (CatalogResponse, bool, error)
	Assign(ctx context.Context, employeeID string, req AssignRequest) (AssignmentResponse, error)
	GetAssigned(ctx context.Context, employeeID, month string, year int) (AssignmentResponse, error)
	SeedFromEvent(ctx context.Context, event events.EmployeeCreatedEvent) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employeesalary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeesalary.service")
	}
	return &service{db: db, repo: repo, now: time.Now, logger: l}
}

func (s *service) GetCatalog(ctx context.Context) (CatalogResponse, error) {
	g, err := s.repo.FindCatalog(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CatalogResponse{Components: []CatalogComponent{}}, nil
		}
		return CatalogResponse{}, err
	}
	return mapCatalog(*g), nil
}

// SaveCatalog replaces the component catalog; the bool reports creation.
func (s *service) SaveCatalog(ctx context.Context, req SaveCatalogRequest) (CatalogResponse, bool, error) {
	components := make([]CatalogComponent, 0, len(req.Components))
	seen := make(map[string]bool, len(req.Components))
	for _, c := range req.Components {
		name := normalizeName(c.Name)
		if name == "" {
			return CatalogResponse{}, false, employeesalaryerrors.ErrInvalidComponent
		}
		if seen[name] {
			return CatalogResponse{}, false, employeesalaryerrors.ErrDuplicateComponent
		}
		seen[name] = true
		components = append(components, CatalogComponent{Name: name, Category: strings.ToLower(c.Category)})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("save catalog begin tx failed", zap.Error(err))
		return CatalogResponse{}, false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now().UTC()
	created := false

	g, err := qtx.FindCatalog(ctx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		g = &ComponentGroup{ID: uuid.New(), Name: defaultCatalog, Components: components, CreatedAt: now, UpdatedAt: now}
		if err := qtx.CreateCatalog(ctx, g); err != nil {
			s.logger.Error("save catalog create failed", zap.Error(err))
			return CatalogResponse{}, false, err
		}
		created = true
	case err != nil:
		return CatalogResponse{}, false, err
	default:
		g.Components = components
		g.UpdatedAt = now
		if err := qtx.UpdateCatalog(ctx, g); err != nil {
			s.logger.Error("save catalog update failed", zap.Error(err))
			return CatalogResponse{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("save catalog commit failed", zap.Error(err))
		return CatalogResponse{}, false, err
	}

	s.logger.Info("save catalog success", zap.Int("components", len(components)), zap.Bool("created", created))
	return mapCatalog(*g), created, nil
}

func (s *service) Assign(ctx context.Context, employeeID string, req AssignRequest) (AssignmentResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return AssignmentResponse{}, employeesalaryerrors.ErrInvalidEmployeeID
	}
	month, year, err := s.period(req.Month, req.Year)
	if err != nil {
		return AssignmentResponse{}, err
	}

	breakdown, err := Compute(toInputs(req.Components))
	if err != nil {
		return AssignmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("assign components begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	exists, err := qtx.EmployeeExists(ctx, employeeID)
	if err != nil {
		return AssignmentResponse{}, err
	}
	if !exists {
		return AssignmentResponse{}, employeesalaryerrors.ErrEmployeeNotFound
	}

	now := s.now().UTC()
	row := &EmployeeSalary{
		ID:          uuid.New(),
		EmployeeID:  empID,
		Month:       month,
		Year:        year,
		BasicSalary: breakdown.Basic,
		GrossSalary: breakdown.Gross,
		NetSalary:   breakdown.Net,
		Components:  breakdown.Components,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := qtx.Upsert(ctx, row); err != nil {
		s.logger.Error("assign components persist failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err)
	}
	saved, err := qtx.FindByPeriod(ctx, employeeID, month, year)
	if err != nil {
		return AssignmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("assign components commit failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, err
	}

	s.logger.Info("assign components success",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("month", month),
		zap.Int("year", year),
	)
	return mapAssignment(*saved), nil
}

// GetAssigned returns the salary for the period, or the latest one when no
// month is given. An employee without one gets an empty component list.
func (s *service) GetAssigned(ctx context.Context, employeeID, month string, year int) (AssignmentResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return AssignmentResponse{}, employeesalaryerrors.ErrInvalidEmployeeID
	}

	var (
		row *EmployeeSalary
		err error
	)
	if month == "" {
		row, err = s.repo.FindLatest(ctx, employeeID)
	} else {
		key, y, perr := s.period(month, year)
		if perr != nil {
			return AssignmentResponse{}, perr
		}
		row, err = s.repo.FindByPeriod(ctx, employeeID, key, y)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{EmployeeID: employeeID, Components: []AssignedComponentResponse{}}, nil
		}
		return AssignmentResponse{}, err
	}
	return mapAssignment(*row), nil
}

// SeedFromEvent gives a new employee a BASIC SALARY line for the joining
// month. A repeated event surfaces the unique violation to the caller.
func (s *service) SeedFromEvent(ctx context.Context, event events.EmployeeCreatedEvent) error {
	empID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return employeesalaryerrors.ErrInvalidEmployeeID
	}
	doj, err := dateutil.ParseDate(event.DateOfJoining)
	if err != nil {
		return employeesalaryerrors.ErrInvalidMonth
	}
	salary, err := decimal.NewFromString(event.Salary)
	if err != nil || salary.IsNegative() {
		return employeesalaryerrors.ErrInvalidComponent
	}

	breakdown, err := Compute([]ComponentInput{{
		Name:     BasicSalaryComponent,
		Type:     TypeFlat,
		Value:    salary,
		Category: CategoryEarning,
	}})
	if err != nil {
		return err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, &EmployeeSalary{
		ID:          uuid.New(),
		EmployeeID:  empID,
		Month:       dateutil.MonthKey(doj.Month()),
		Year:        doj.Year(),
		BasicSalary: breakdown.Basic,
		GrossSalary: breakdown.Gross,
		NetSalary:   breakdown.Net,
		Components:  breakdown.Components,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *service) period(month string, year int) (string, int, error) {
	now := s.now()
	m := now.Month()
	if strings.TrimSpace(month) != "" {
		parsed, err := dateutil.ParseMonth(month)
		if err != nil {
			return "", 0, employeesalaryerrors.ErrInvalidMonth
		}
		m = parsed
	}
	if year == 0 {
		year = now.Year()
	}
	if year < 1970 || year > 9999 {
		return "", 0, employeesalaryerrors.ErrInvalidYear
	}
	return dateutil.MonthKey(m), year, nil
}

func monthName(key string) string {
	m, err := dateutil.ParseMonth(key)
	if err != nil {
		return key
	}
	return m.String()
}
