package salaryslip

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/leavepolicy"
	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"
	"go-hrpayroll/internal/messaging/kafka"
	salarysliperrors "go-hrpayroll/internal/salaryslip/errors"
	"go-hrpayroll/internal/shared/apperror"
	"go-hrpayroll/internal/shared/contextutil"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recorder receives slip counters; *metrics.Metrics fits.
type Recorder interface {
	SlipGenerated(ok bool)
}

type Service interface {
	Generate(ctx context.Context, employeeID, month string, year int) (SlipResponse, error)
	GeneratePDF(ctx context.Context, employeeID, month string, year int) ([]byte, string, error)
	SaveAll(ctx context.Context, actorID string, req SaveAllRequest) (SnapshotResponse, bool, error)
	Run(ctx context.Context, actorID string, req RunRequest) (SnapshotResponse, bool, error)
	GetSnapshot(ctx context.Context, month string, year int) (SnapshotResponse, error)
	ExportSnapshot(ctx context.Context, month string, year int) ([]byte, string, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	policies leavepolicy.Provider
	outbox   kafka.OutboxRepository
	metrics  Recorder
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	policies leavepolicy.Provider,
	outbox kafka.OutboxRepository,
	metrics Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("salaryslip.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salaryslip.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		policies: policies,
		outbox:   outbox,
		metrics:  metrics,
		logger:   l,
	}
}

type period struct {
	month time.Month
	year  int
}

func parsePeriod(month string, year int) (period, error) {
	m, err := dateutil.ParseMonth(month)
	if err != nil {
		return period{}, salarysliperrors.ErrInvalidMonth
	}
	if year < 1970 || year > 9999 {
		return period{}, salarysliperrors.ErrInvalidYear
	}
	return period{month: m, year: year}, nil
}

func (s *service) Generate(ctx context.Context, employeeID, month string, year int) (resp SlipResponse, err error) {
	defer func() {
		if s.metrics != nil {
			s.metrics.SlipGenerated(err == nil)
		}
	}()

	p, err := parsePeriod(month, year)
	if err != nil {
		return SlipResponse{}, err
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return SlipResponse{}, salarysliperrors.ErrInvalidEmployeeID
	}

	emp, err := s.repo.FindEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SlipResponse{}, salarysliperrors.ErrEmployeeNotFound
		}
		s.logger.Error("generate slip employee lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return SlipResponse{}, err
	}

	policy, err := s.policies.Active(ctx)
	if err != nil {
		if errors.Is(err, leavepolicyerrors.ErrPolicyNotFound) {
			return SlipResponse{}, salarysliperrors.ErrPolicyNotConfigured
		}
		s.logger.Error("generate slip policy load failed", zap.Error(err))
		return SlipResponse{}, err
	}

	return s.generate(ctx, *emp, policy, p, month)
}

// generate loads the month's ledger state and runs the calculation. Any
// failed aggregation fails the slip rather than defaulting to zero usage.
func (s *service) generate(ctx context.Context, emp EmployeeInfo, policy leavepolicy.Policy, p period, monthLabel string) (SlipResponse, error) {
	monthStart := dateutil.StartOfMonth(p.year, p.month)
	monthEnd := dateutil.EndOfMonth(p.year, p.month)

	leaves, err := s.repo.ApprovedLeavesStartingBetween(ctx, emp.ID, monthStart, monthEnd)
	if err != nil {
		s.logger.Error("generate slip leave lookup failed", zap.String("employee_id", emp.ID), zap.Error(err))
		return SlipResponse{}, err
	}

	used, err := s.repo.ApprovedDaysByTypeBetween(ctx, emp.ID, dateutil.StartOfYear(p.year), monthEnd)
	if err != nil {
		s.logger.Error("generate slip usage aggregation failed", zap.String("employee_id", emp.ID), zap.Error(err))
		return SlipResponse{}, err
	}

	slip := Generate(Input{
		Employee:       emp,
		Policy:         policy,
		Leaves:         leaves,
		YearToDateUsed: used,
		Month:          p.month,
		Year:           p.year,
	})

	s.logger.Debug("generate slip success",
		zap.String("employee_id", emp.ID),
		zap.String("month", dateutil.MonthKey(p.month)),
		zap.Int("year", p.year),
		zap.Int("unpaid_leaves", slip.UnpaidLeaves),
	)

	return toSlipResponse(emp, monthLabel, p.year, slip), nil
}

func (s *service) GeneratePDF(ctx context.Context, employeeID, month string, year int) ([]byte, string, error) {
	slip, err := s.Generate(ctx, employeeID, month, year)
	if err != nil {
		return nil, "", err
	}

	data, err := RenderPDF(slip)
	if err != nil {
		s.logger.Error("render slip pdf failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, "", apperror.Wrap(err, salarysliperrors.ErrRenderFailed.Code, salarysliperrors.ErrRenderFailed.Message, salarysliperrors.ErrRenderFailed.HTTPStatus)
	}
	return data, "SalarySlip-" + slip.EmployeeID + "-" + slip.Month + "-" + strconv.Itoa(slip.Year) + ".pdf", nil
}

// SaveAll upserts the period snapshot. The bool reports a newly created
// snapshot.
func (s *service) SaveAll(ctx context.Context, actorID string, req SaveAllRequest) (SnapshotResponse, bool, error) {
	p, err := parsePeriod(req.Month, req.Year)
	if err != nil {
		return SnapshotResponse{}, false, err
	}
	if len(req.Slips) == 0 {
		return SnapshotResponse{}, false, salarysliperrors.ErrEmptySnapshot
	}
	return s.save(ctx, actorID, p, req.Slips)
}

func (s *service) save(ctx context.Context, actorID string, p period, slips []SaveSlipRequest) (SnapshotResponse, bool, error) {
	rid := contextutil.GetRequestID(ctx)
	monthKey := dateutil.MonthKey(p.month)
	s.logger.Debug("save salary slips requested",
		zap.String("request_id", rid),
		zap.String("month", monthKey),
		zap.Int("year", p.year),
		zap.Int("slips", len(slips)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("save salary slips begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return SnapshotResponse{}, false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()
	actor := parseUUIDPtr(actorID)

	created := false
	snapshot, err := qtx.LockSnapshot(ctx, monthKey, p.year)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		snapshot = &Snapshot{
			ID:          uuid.New(),
			Month:       monthKey,
			Year:        p.year,
			GeneratedBy: actor,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := qtx.CreateSnapshot(ctx, snapshot); err != nil {
			s.logger.Error("save salary slips create snapshot failed", zap.Error(err))
			return SnapshotResponse{}, false, mapPersistError(err)
		}
		created = true
	case err != nil:
		s.logger.Error("save salary slips lock snapshot failed", zap.Error(err))
		return SnapshotResponse{}, false, err
	default:
		snapshot.GeneratedBy = actor
		snapshot.UpdatedAt = now
		if err := qtx.TouchSnapshot(ctx, snapshot); err != nil {
			s.logger.Error("save salary slips update snapshot failed", zap.Error(err))
			return SnapshotResponse{}, false, err
		}
	}

	entries := make([]Entry, 0, len(slips))
	failed := 0
	for _, slip := range slips {
		e := slip.toEntry(snapshot.ID)
		e.CreatedAt = now
		if e.Status == EntryStatusFailed {
			failed++
		}
		entries = append(entries, e)
	}

	if err := qtx.ReplaceEntries(ctx, snapshot.ID.String(), entries); err != nil {
		s.logger.Error("save salary slips persist entries failed", zap.Error(err))
		return SnapshotResponse{}, false, err
	}
	snapshot.Entries = entries

	if s.outbox != nil {
		event, err := kafka.NewPendingEvent(rid, "salary_slip_snapshot", snapshot.ID.String(),
			events.SalarySlipSnapshotSavedType, events.SalarySlipSnapshotSavedTopic,
			events.SalarySlipSnapshotSavedEvent{
				EventType:  events.SalarySlipSnapshotSavedType,
				SnapshotID: snapshot.ID.String(),
				Month:      monthKey,
				Year:       p.year,
				Entries:    len(entries),
				Failed:     failed,
				SavedBy:    actorID,
				OccurredAt: now,
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return SnapshotResponse{}, false, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("save salary slips outbox persist failed", zap.Error(err))
			return SnapshotResponse{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("save salary slips commit failed", zap.String("request_id", rid), zap.Error(err))
		return SnapshotResponse{}, false, err
	}

	s.logger.Info("save salary slips success",
		zap.String("request_id", rid),
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Bool("created", created),
		zap.Int("entries", len(entries)),
		zap.Int("failed", failed),
	)

	return mapSnapshotResponse(*snapshot), created, nil
}

// Run generates every employee's slip server side. A failing employee is
// recorded as a failed row instead of aborting the batch.
func (s *service) Run(ctx context.Context, actorID string, req RunRequest) (SnapshotResponse, bool, error) {
	p, err := parsePeriod(req.Month, req.Year)
	if err != nil {
		return SnapshotResponse{}, false, err
	}

	policy, err := s.policies.Active(ctx)
	if err != nil {
		if errors.Is(err, leavepolicyerrors.ErrPolicyNotFound) {
			return SnapshotResponse{}, false, salarysliperrors.ErrPolicyNotConfigured
		}
		return SnapshotResponse{}, false, err
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("run salary slips list employees failed", zap.Error(err))
		return SnapshotResponse{}, false, err
	}
	if len(employees) == 0 {
		return SnapshotResponse{}, false, salarysliperrors.ErrEmptySnapshot
	}

	slips := make([]SaveSlipRequest, 0, len(employees))
	for _, emp := range employees {
		slip, err := s.generate(ctx, emp, policy, p, req.Month)
		if s.metrics != nil {
			s.metrics.SlipGenerated(err == nil)
		}
		if err != nil {
			s.logger.Warn("run salary slips employee failed",
				zap.String("employee_id", emp.ID),
				zap.Error(err),
			)
			slips = append(slips, SaveSlipRequest{
				EmployeeID:   emp.ID,
				EmployeeName: emp.Name,
				Designation:  emp.Designation,
				Status:       EntryStatusFailed,
				ErrorMessage: err.Error(),
			})
			continue
		}
		slips = append(slips, SaveSlipRequest{
			EmployeeID:       slip.EmployeeID,
			EmployeeName:     slip.EmployeeName,
			Designation:      slip.Designation,
			TotalWorkingDays: slip.TotalWorkingDays,
			PresentDays:      slip.PresentDays,
			PaidLeaves:       slip.PaidLeaves,
			UnpaidLeaves:     slip.UnpaidLeaves,
			GrossSalary:      slip.GrossSalary,
			DeductionAmount:  slip.DeductionAmount,
			NetSalary:        slip.NetSalary,
			LeavesBreakup:    slip.LeavesBreakup,
			Status:           EntryStatusSuccess,
		})
	}

	return s.save(ctx, actorID, p, slips)
}

func (s *service) GetSnapshot(ctx context.Context, month string, year int) (SnapshotResponse, error) {
	p, err := parsePeriod(month, year)
	if err != nil {
		return SnapshotResponse{}, err
	}

	snapshot, err := s.repo.FindSnapshot(ctx, dateutil.MonthKey(p.month), p.year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SnapshotResponse{}, salarysliperrors.ErrSnapshotNotFound
		}
		return SnapshotResponse{}, err
	}
	return mapSnapshotResponse(*snapshot), nil
}

func (s *service) ExportSnapshot(ctx context.Context, month string, year int) ([]byte, string, error) {
	snapshot, err := s.GetSnapshot(ctx, month, year)
	if err != nil {
		return nil, "", err
	}

	data, err := RenderSnapshotXLSX(snapshot)
	if err != nil {
		s.logger.Error("render snapshot xlsx failed", zap.Error(err))
		return nil, "", apperror.Wrap(err, salarysliperrors.ErrRenderFailed.Code, salarysliperrors.ErrRenderFailed.Message, salarysliperrors.ErrRenderFailed.HTTPStatus)
	}
	return data, "salary-slips-" + snapshot.Month + "-" + strconv.Itoa(snapshot.Year) + ".xlsx", nil
}

func mapPersistError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return salarysliperrors.ErrSnapshotConflict
	}
	return err
}

func parseUUIDPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
