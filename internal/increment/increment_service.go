package increment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-hrpayroll/internal/events"
	incrementerrors "go-hrpayroll/internal/increment/errors"
	"go-hrpayroll/internal/shared/apperror"
	"go-hrpayroll/internal/shared/contextutil"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Increments(ctx context.Context) ([]IncrementResponse, error)
	SpecialIncrements(ctx context.Context) ([]SpecialIncrementResponse, error)
	Export(ctx context.Context) ([]byte, string, error)
	GetPolicy(ctx context.Context) (PolicyResponse, error)
	UpdatePolicy(ctx context.Context, req PolicyRequest) (PolicyResponse, error)
	SeedDefaultPolicy(ctx context.Context) error
	AddFine(ctx context.Context, employeeID string, req AddFineRequest) (RecordResponse, error)
	CreateRecord(ctx context.Context, event events.EmployeeCreatedEvent) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("increment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("increment.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) loadPolicy(ctx context.Context) (*Policy, error) {
	p, err := s.repo.FindPolicy(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, incrementerrors.ErrPolicyNotFound
		}
		s.logger.Error("load increment policy failed", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// Increments recomputes the whole table on every call.
func (s *service) Increments(ctx context.Context) ([]IncrementResponse, error) {
	results, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]IncrementResponse, 0, len(results))
	for _, r := range results {
		out = append(out, mapResult(r))
	}
	return out, nil
}

func (s *service) compute(ctx context.Context) ([]Result, error) {
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if len(policy.Criteria) == 0 {
		return nil, incrementerrors.ErrPolicyNotFound
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("list employees for increments failed", zap.Error(err))
		return nil, err
	}

	ratings, err := s.repo.RatingStats(ctx)
	if err != nil {
		s.logger.Error("aggregate task ratings failed", zap.Error(err))
		return nil, err
	}

	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		s.logger.Error("list increment records failed", zap.Error(err))
		return nil, err
	}
	fines := make(map[string]FineSummary, len(records))
	for _, rec := range records {
		fines[rec.EmployeeID.String()] = FineSummary{Total: rec.TotalFineDeductions, Deductions: rec.Deductions}
	}

	asOf := s.now()
	results := make([]Result, 0, len(employees))
	for _, emp := range employees {
		results = append(results, Calculate(emp, ratings[emp.ID], fines[emp.ID], policy.Criteria, asOf))
	}

	s.logger.Debug("compute increments success", zap.Int("employees", len(results)))
	return results, nil
}

func (s *service) SpecialIncrements(ctx context.Context) ([]SpecialIncrementResponse, error) {
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("list employees for milestones failed", zap.Error(err))
		return nil, err
	}

	asOf := s.now()
	out := make([]SpecialIncrementResponse, 0)
	for _, emp := range employees {
		years := dateutil.CompletedYears(emp.DateOfJoining, asOf)
		m, threshold, ok := MatchMilestone(policy.SpecialIncrements, years)
		if !ok {
			continue
		}
		out = append(out, SpecialIncrementResponse{
			EmployeeID:     emp.ID,
			Name:           emp.Name,
			DateOfJoining:  dateutil.Format(emp.DateOfJoining),
			Years:          years,
			Milestone:      m.Milestone,
			ThresholdYears: threshold,
		})
	}
	return out, nil
}

func (s *service) Export(ctx context.Context) ([]byte, string, error) {
	rows, err := s.Increments(ctx)
	if err != nil {
		return nil, "", err
	}

	data, err := RenderIncrementsXLSX(rows)
	if err != nil {
		s.logger.Error("render increments xlsx failed", zap.Error(err))
		return nil, "", apperror.Wrap(err, incrementerrors.ErrExportFailed.Code, incrementerrors.ErrExportFailed.Message, incrementerrors.ErrExportFailed.HTTPStatus)
	}
	return data, "salary-increments-" + dateutil.Format(s.now()) + ".xlsx", nil
}

func (s *service) GetPolicy(ctx context.Context) (PolicyResponse, error) {
	p, err := s.loadPolicy(ctx)
	if err != nil {
		return PolicyResponse{}, err
	}
	return mapPolicy(*p), nil
}

func validatePolicy(p Policy) error {
	if p.Title == "" || len(p.Criteria) == 0 {
		return incrementerrors.ErrInvalidPolicy
	}
	seen := make(map[int]struct{}, len(p.Criteria))
	for _, c := range p.Criteria {
		if c.Rating < 1 || c.Rating > 5 {
			return incrementerrors.ErrInvalidRating
		}
		if _, dup := seen[c.Rating]; dup {
			return incrementerrors.ErrDuplicateRating
		}
		seen[c.Rating] = struct{}{}
	}
	return nil
}

func (s *service) UpdatePolicy(ctx context.Context, req PolicyRequest) (PolicyResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	incoming := req.toPolicy()
	if err := validatePolicy(incoming); err != nil {
		return PolicyResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update increment policy begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now().UTC()

	current, err := qtx.FindPolicy(ctx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		incoming.ID = uuid.New()
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		if err := qtx.CreatePolicy(ctx, &incoming); err != nil {
			s.logger.Error("create increment policy failed", zap.String("request_id", rid), zap.Error(err))
			return PolicyResponse{}, err
		}
		current = &incoming
	case err != nil:
		return PolicyResponse{}, err
	default:
		current.Title = incoming.Title
		current.Criteria = incoming.Criteria
		current.SpecialIncrements = incoming.SpecialIncrements
		current.UpdatedAt = now
		if err := qtx.UpdatePolicy(ctx, current); err != nil {
			s.logger.Error("update increment policy failed", zap.String("request_id", rid), zap.Error(err))
			return PolicyResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update increment policy commit failed", zap.String("request_id", rid), zap.Error(err))
		return PolicyResponse{}, err
	}

	s.logger.Info("update increment policy success", zap.String("request_id", rid), zap.String("policy_id", current.ID.String()))
	return mapPolicy(*current), nil
}

func (s *service) SeedDefaultPolicy(ctx context.Context) error {
	_, err := s.repo.FindPolicy(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	p := DefaultPolicy()
	now := s.now().UTC()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.CreatePolicy(ctx, &p); err != nil {
		return err
	}

	s.logger.Info("seeded default increment policy", zap.String("policy_id", p.ID.String()))
	return nil
}

func (s *service) AddFine(ctx context.Context, employeeID string, req AddFineRequest) (RecordResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, err := uuid.Parse(employeeID); err != nil {
		return RecordResponse{}, incrementerrors.ErrInvalidEmployeeID
	}
	date, err := dateutil.ParseDate(req.Date)
	if err != nil {
		return RecordResponse{}, incrementerrors.ErrInvalidFineDate
	}
	amount := decimal.NewFromFloat(req.Amount).Round(2)
	if !amount.IsPositive() {
		return RecordResponse{}, incrementerrors.ErrInvalidFineAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("add fine begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rec, err := qtx.FindRecordForUpdate(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordResponse{}, incrementerrors.ErrRecordNotFound
		}
		return RecordResponse{}, err
	}

	now := s.now().UTC()
	fine := Fine{
		ID:        uuid.New(),
		RecordID:  rec.ID,
		Date:      date,
		Amount:    amount,
		Reason:    req.Reason,
		CreatedAt: now,
	}
	if req.LeaveID != "" {
		id, err := uuid.Parse(req.LeaveID)
		if err == nil {
			fine.LeaveID = &id
		}
	}

	if err := qtx.AddFine(ctx, &fine); err != nil {
		s.logger.Error("add fine persist failed", zap.String("request_id", rid), zap.Error(err))
		return RecordResponse{}, err
	}
	if err := qtx.AddToFineTotal(ctx, rec.ID.String(), amount, now); err != nil {
		s.logger.Error("add fine total update failed", zap.String("request_id", rid), zap.Error(err))
		return RecordResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("add fine commit failed", zap.String("request_id", rid), zap.Error(err))
		return RecordResponse{}, err
	}

	rec.Deductions = append(rec.Deductions, fine)
	rec.TotalFineDeductions = rec.TotalFineDeductions.Add(amount)
	rec.UpdatedAt = now

	s.logger.Info("add fine success",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("amount", amount.String()),
	)
	return mapRecord(*rec), nil
}

// CreateRecord is driven by employee_created. A repeated event surfaces the
// unique violation so the consumer can skip it.
func (s *service) CreateRecord(ctx context.Context, event events.EmployeeCreatedEvent) error {
	employeeID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return incrementerrors.ErrInvalidEmployeeID
	}
	doj, err := dateutil.ParseDate(event.DateOfJoining)
	if err != nil {
		return incrementerrors.ErrInvalidDateOfJoining
	}
	salary := decimal.Zero
	if event.Salary != "" {
		salary, err = decimal.NewFromString(event.Salary)
		if err != nil {
			return err
		}
	}

	now := s.now().UTC()
	rec := Record{
		ID:                  uuid.New(),
		EmployeeID:          employeeID,
		Name:                event.Name,
		DateOfJoining:       doj,
		CurrentSalary:       salary,
		TotalFineDeductions: decimal.Zero,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.CreateRecord(ctx, &rec); err != nil {
		return err
	}

	s.logger.Info("increment record created",
		zap.String("request_id", event.RequestID),
		zap.String("employee_id", event.EmployeeID),
	)
	return nil
}
